package semantic

import (
	"strings"
	"testing"

	"github.com/khanglvm/paloma/internal/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandQuery(t *testing.T) {
	a := NewAnalyzer()

	got := a.ExpandQuery("Facture client")
	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, []string{"facture", "client"}, got[:2], "original words come first")
	assert.Contains(t, got, "invoice")
	assert.Contains(t, got, "facturation")
	assert.Contains(t, got, "customer")
}

func TestExpandQueryMatchesVariant(t *testing.T) {
	a := NewAnalyzer()

	got := a.ExpandQuery("invoice")
	assert.Contains(t, got, "facture")
	assert.Contains(t, got, "factures")
}

func TestExpandQueryDeduplicates(t *testing.T) {
	a := NewAnalyzer()

	got := a.ExpandQuery("facture factures facture")
	seen := map[string]bool{}
	for _, w := range got {
		assert.False(t, seen[w], "duplicate word %q", w)
		seen[w] = true
	}
}

func TestExpandQueryBlank(t *testing.T) {
	a := NewAnalyzer()

	assert.Equal(t, []string{""}, a.ExpandQuery(""))
	assert.Equal(t, []string{""}, a.ExpandQuery("   \t "))
}

func TestExpandQueryIsSupersetOnReexpansion(t *testing.T) {
	a := NewAnalyzer()

	queries := []string{
		"Comment créer une facture d'achat ?",
		"relance client impayé",
		"compte tva exercice",
		"zzzqqqxx_no_such_topic",
		"",
	}

	for _, q := range queries {
		first := a.ExpandQuery(q)
		second := a.ExpandQuery(strings.Join(first, " "))

		set := map[string]bool{}
		for _, w := range second {
			set[w] = true
		}
		for _, w := range first {
			if w == "" {
				continue
			}
			assert.True(t, set[w], "query %q: %q lost on re-expansion", q, w)
		}
	}
}

func TestDetectIntent(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		query string
		want  string
	}{
		{"Comment créer une facture d'achat ?", IntentHowTo},
		{"Quelles sont les étapes de la clôture", IntentHowTo},
		{"Qu'est-ce que le lettrage ?", IntentWhat},
		{"C'est quoi un amortissement", IntentWhat},
		{"Où se trouve le bilan ?", IntentWhere},
		{"J'ai une erreur à la validation", IntentProblem},
		{"Ouvrir le menu recouvrement", IntentNavigation},
		{"bilan 2024", IntentGeneral},
		{"", IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, a.DetectIntent(tt.query))
		})
	}
}

func TestDetectIntentDeclarationOrder(t *testing.T) {
	a := NewAnalyzer()

	// Matches both howTo and problem.
	assert.Equal(t, IntentHowTo, a.DetectIntent("Comment corriger une erreur de saisie ?"))
	assert.Equal(t, IntentHowTo, a.DetectIntent("HOW TO fix this error"))
	// Matches both where and navigation.
	assert.Equal(t, IntentWhere, a.DetectIntent("où trouver la page des ratios"))
}

func TestCalculateRelevance(t *testing.T) {
	a := NewAnalyzer()

	entry := knowledge.Entry{
		ID:          "bilan",
		Title:       "Consulter le Bilan",
		Description: "Afficher le bilan de l'exercice",
		Content:     "Le bilan présente la situation patrimoniale.",
		Keywords:    []string{"bilan", "actif"},
	}

	// "bilan" hits all four fields; group members "situation" (content) and
	// "état financier" (no hit) add the rest.
	assert.Equal(t, float64(5+3+4+2+2), a.CalculateRelevance("bilan", entry))

	assert.Zero(t, a.CalculateRelevance("zzzqqqxx_no_such_topic", entry))
	assert.Zero(t, a.CalculateRelevance("", entry))
}

func TestCalculateRelevanceKeywordCountedOnce(t *testing.T) {
	a := NewAnalyzerWithSynonyms(map[string][]string{})

	entry := knowledge.Entry{Keywords: []string{"tva", "tva collectée", "tva récupérable"}}
	assert.Equal(t, float64(weightKeyword), a.CalculateRelevance("tva", entry))
}

func TestCalculateRelevanceRanksTitleAboveContent(t *testing.T) {
	a := NewAnalyzerWithSynonyms(map[string][]string{})

	inTitle := knowledge.Entry{Title: "Lettrage"}
	inContent := knowledge.Entry{Content: "lettrage des comptes"}
	assert.Greater(t, a.CalculateRelevance("lettrage", inTitle), a.CalculateRelevance("lettrage", inContent))
}
