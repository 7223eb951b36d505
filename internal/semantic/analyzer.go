/*
Package semantic implements query understanding for the assistant: synonym
expansion, intent classification and entry relevance scoring.

All operations are pure and safe for concurrent use.
*/
package semantic

import (
	"regexp"
	"sort"
	"strings"

	"github.com/khanglvm/paloma/internal/knowledge"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Intent names returned by DetectIntent.
const (
	IntentHowTo      = "howTo"
	IntentWhat       = "what"
	IntentWhere      = "where"
	IntentProblem    = "problem"
	IntentNavigation = "navigation"
	IntentGeneral    = "general"
)

// Relevance weights per matched field.
const (
	weightTitle       = 5
	weightDescription = 3
	weightKeyword     = 4
	weightContent     = 2
)

type intentPattern struct {
	name    string
	pattern *regexp.Regexp
}

// DefaultSynonyms maps a canonical accounting term to its variants.
var DefaultSynonyms = map[string][]string{
	"facture":        {"invoice", "facturation", "factures"},
	"écriture":       {"ecriture", "écritures", "saisie", "entry"},
	"compte":         {"comptes", "account", "compte comptable"},
	"client":         {"clients", "customer", "débiteur"},
	"fournisseur":    {"fournisseurs", "supplier", "vendor", "créancier"},
	"immobilisation": {"immobilisations", "actif", "asset", "équipement"},
	"bilan":          {"balance sheet", "état financier", "situation"},
	"résultat":       {"resultat", "compte de résultat", "bénéfice", "perte"},
	"recouvrement":   {"relance", "créance", "impayé", "recovery"},
	"paiement":       {"règlement", "payment", "versement"},
	"trésorerie":     {"tresorerie", "banque", "caisse", "cash"},
	"exercice":       {"exercices", "période", "année fiscale"},
	"tva":            {"taxe", "vat", "tax"},
	"import":         {"importer", "importation", "reprise"},
	"utilisateur":    {"utilisateurs", "user", "permission", "droits"},
	"rapport":        {"rapports", "report", "état", "édition"},
}

// Analyzer expands queries, detects intents and scores entries.
type Analyzer struct {
	groups  map[string][]string // word -> group members, canonical first
	intents []intentPattern
}

// NewAnalyzer creates an analyzer over the default synonym table.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithSynonyms(DefaultSynonyms)
}

// NewAnalyzerWithSynonyms creates an analyzer over a custom synonym table.
func NewAnalyzerWithSynonyms(synonyms map[string][]string) *Analyzer {
	a := &Analyzer{
		groups: make(map[string][]string),
		intents: []intentPattern{
			{IntentHowTo, regexp.MustCompile(`(?i)(comment|how to|how do|procédure|étapes|marche à suivre|tutoriel)`)},
			{IntentWhat, regexp.MustCompile(`(?i)(qu'est-ce|qu’est-ce|c'est quoi|what is|définition|signifie|expliquer)`)},
			{IntentWhere, regexp.MustCompile(`(?i)(où|where|trouver|se trouve|localiser)`)},
			{IntentProblem, regexp.MustCompile(`(?i)(problème|erreur|bug|ne fonctionne pas|impossible|bloqué|error|issue)`)},
			{IntentNavigation, regexp.MustCompile(`(?i)(aller à|ouvrir|accéder|naviguer|afficher|menu|page|go to|open)`)},
		},
	}

	keys := make([]string, 0, len(synonyms))
	for key := range synonyms {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		variants := synonyms[key]
		group := make([]string, 0, len(variants)+1)
		group = append(group, lower(key))
		for _, v := range variants {
			group = append(group, lower(v))
		}
		for _, member := range group {
			// Only single words can match a whitespace-split query.
			if _, exists := a.groups[member]; !exists && !strings.ContainsAny(member, " \t") {
				a.groups[member] = group
			}
		}
	}

	return a
}

// lower applies French lower-casing. A Caser is not safe for concurrent use,
// so one is created per call.
func lower(s string) string {
	return cases.Lower(language.French).String(s)
}

// ExpandQuery returns the query words followed by every member of each
// synonym group a word belongs to, without duplicates. A blank query yields
// a single empty word.
func (a *Analyzer) ExpandQuery(query string) []string {
	words := strings.Fields(lower(query))
	if len(words) == 0 {
		return []string{""}
	}

	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	add := func(w string) {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}

	for _, w := range words {
		add(w)
	}
	for _, w := range words {
		for _, member := range a.groups[w] {
			add(member)
		}
	}

	return out
}

// DetectIntent returns the first matching intent in declaration order
// (howTo, what, where, problem, navigation), else general.
func (a *Analyzer) DetectIntent(query string) string {
	for _, ip := range a.intents {
		if ip.pattern.MatchString(query) {
			return ip.name
		}
	}
	return IntentGeneral
}

// CalculateRelevance scores entry against the expanded query. The score is
// ordinal and only meaningful for ranking.
func (a *Analyzer) CalculateRelevance(query string, entry knowledge.Entry) float64 {
	title := lower(entry.Title)
	description := lower(entry.Description)
	content := lower(entry.Content)
	keywords := make([]string, len(entry.Keywords))
	for i, k := range entry.Keywords {
		keywords[i] = lower(k)
	}

	var score float64
	for _, w := range a.ExpandQuery(query) {
		if w == "" {
			continue
		}
		if strings.Contains(title, w) {
			score += weightTitle
		}
		if strings.Contains(description, w) {
			score += weightDescription
		}
		for _, k := range keywords {
			if strings.Contains(k, w) {
				score += weightKeyword
				break
			}
		}
		if strings.Contains(content, w) {
			score += weightContent
		}
	}

	return score
}
