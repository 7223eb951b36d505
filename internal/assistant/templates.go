package assistant

import (
	"fmt"
	"strings"

	"github.com/khanglvm/paloma/internal/knowledge"
	"github.com/khanglvm/paloma/internal/semantic"
)

// Draft confidences per template.
const (
	confidenceHowTo       = 0.9
	confidenceProblem     = 0.7
	confidenceNavigation  = 0.85
	confidenceExplanation = 0.9
	confidenceGeneral     = 0.75
	confidenceNotFound    = 0.3
)

const (
	maxSuggestions = 4
	maxNavigate    = 3
	maxListed      = 3
	helpPath       = "/help"
)

// builder produces a draft response from non-empty results.
type builder func(query string, results []knowledge.Entry, kb knowledge.Source) IntelligentResponse

// builderFor maps an intent to its template.
func builderFor(intent string) builder {
	switch intent {
	case semantic.IntentHowTo:
		return buildHowTo
	case semantic.IntentProblem:
		return buildProblem
	case semantic.IntentNavigation, semantic.IntentWhere:
		return buildNavigation
	case semantic.IntentWhat:
		return buildExplanation
	}
	return buildGeneral
}

func buildHowTo(_ string, results []knowledge.Entry, kb knowledge.Source) IntelligentResponse {
	top := results[0]

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Voici comment procéder : %s\n\n", top.Title)
	if len(top.Examples) > 0 {
		for i, step := range top.Examples {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	} else {
		b.WriteString(top.Content)
		b.WriteString("\n")
	}
	if top.NavigationPath != "" {
		fmt.Fprintf(&b, "\n🧭 Accès direct : %s", top.NavigationPath)
	}

	actions := navigateActions(results)
	actions = append(actions, ResponseAction{
		Type:    ActionExecute,
		Label:   "Démarrer le guide pas à pas",
		Command: "start-guide:" + top.ID,
	})

	return IntelligentResponse{
		Message:     strings.TrimSpace(b.String()),
		Confidence:  confidenceHowTo,
		Sources:     results,
		Suggestions: relatedSuggestions(top, kb),
		Actions:     actions,
	}
}

func buildProblem(_ string, results []knowledge.Entry, kb knowledge.Source) IntelligentResponse {
	var b strings.Builder
	b.WriteString("⚠️ Vous rencontrez un problème. Voici ce qui peut vous aider :\n\n")
	for i, e := range results {
		if i == maxListed {
			break
		}
		fmt.Fprintf(&b, "• %s : %s\n", e.Title, e.Description)
	}
	b.WriteString("\nSi le problème persiste, contactez le support.")

	actions := navigateActions(results)
	actions = append(actions, ResponseAction{
		Type:  ActionHelp,
		Label: "Contacter le support",
		Path:  helpPath + "/support",
	})

	return IntelligentResponse{
		Message:     b.String(),
		Confidence:  confidenceProblem,
		Sources:     results,
		Suggestions: relatedSuggestions(results[0], kb),
		Actions:     actions,
	}
}

func buildNavigation(_ string, results []knowledge.Entry, kb knowledge.Source) IntelligentResponse {
	var b strings.Builder
	b.WriteString("🧭 Voici où trouver ce que vous cherchez :\n\n")
	listed := 0
	for _, e := range results {
		if e.NavigationPath == "" {
			continue
		}
		fmt.Fprintf(&b, "• %s → %s\n", e.Title, e.NavigationPath)
		listed++
		if listed == maxListed {
			break
		}
	}
	if listed == 0 {
		fmt.Fprintf(&b, "%s : %s\n", results[0].Title, results[0].Description)
	}

	return IntelligentResponse{
		Message:     strings.TrimSpace(b.String()),
		Confidence:  confidenceNavigation,
		Sources:     results,
		Suggestions: relatedSuggestions(results[0], kb),
		Actions:     navigateActions(results),
	}
}

func buildExplanation(_ string, results []knowledge.Entry, kb knowledge.Source) IntelligentResponse {
	top := results[0]

	var b strings.Builder
	fmt.Fprintf(&b, "💡 %s : %s\n\n%s", top.Title, top.Description, top.Content)
	if len(top.Examples) > 0 {
		fmt.Fprintf(&b, "\n\nPar exemple : %s.", strings.TrimSuffix(top.Examples[0], "."))
	}

	return IntelligentResponse{
		Message:     b.String(),
		Confidence:  confidenceExplanation,
		Sources:     results,
		Suggestions: relatedSuggestions(top, kb),
		Actions:     navigateActions(results),
	}
}

func buildGeneral(_ string, results []knowledge.Entry, kb knowledge.Source) IntelligentResponse {
	var b strings.Builder
	b.WriteString("Voici ce que j'ai trouvé :\n\n")
	for i, e := range results {
		if i == maxListed {
			break
		}
		fmt.Fprintf(&b, "• %s : %s\n", e.Title, e.Description)
	}

	return IntelligentResponse{
		Message:     strings.TrimSpace(b.String()),
		Confidence:  confidenceGeneral,
		Sources:     results,
		Suggestions: relatedSuggestions(results[0], kb),
		Actions:     navigateActions(results),
	}
}

// genericSuggestions are offered when nothing matched.
var genericSuggestions = []string{
	"Comment saisir une écriture comptable ?",
	"Où trouver le bilan ?",
	"Qu'est-ce que le lettrage ?",
	"Comment importer des données multi-exercices ?",
}

func buildNotFound(query string) IntelligentResponse {
	subject := strings.TrimSpace(query)
	msg := "🤔 Je n'ai pas trouvé d'information précise sur votre question."
	if subject != "" {
		msg = fmt.Sprintf("🤔 Je n'ai pas trouvé d'information précise sur « %s ».", subject)
	}
	msg += " Essayez de reformuler ou choisissez une des suggestions ci-dessous."

	return IntelligentResponse{
		Message:     msg,
		Confidence:  confidenceNotFound,
		Sources:     []knowledge.Entry{},
		Suggestions: append([]string(nil), genericSuggestions...),
		Actions: []ResponseAction{{
			Type:  ActionHelp,
			Label: "Consulter l'aide",
			Path:  helpPath,
		}},
	}
}

// relatedSuggestions resolves the related topics of entry, skipping ids
// that do not exist.
func relatedSuggestions(entry knowledge.Entry, kb knowledge.Source) []string {
	out := []string{}
	for _, id := range entry.RelatedTopics {
		related, ok := kb.Lookup(id)
		if !ok {
			continue
		}
		out = append(out, related.Title)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// navigateActions offers a navigate action per result with a path.
func navigateActions(results []knowledge.Entry) []ResponseAction {
	var actions []ResponseAction
	seen := make(map[string]bool)
	for _, e := range results {
		if e.NavigationPath == "" || seen[e.NavigationPath] {
			continue
		}
		seen[e.NavigationPath] = true
		actions = append(actions, ResponseAction{
			Type:  ActionNavigate,
			Label: "Ouvrir " + e.Title,
			Path:  e.NavigationPath,
		})
		if len(actions) == maxNavigate {
			break
		}
	}
	return actions
}
