package learning

import (
	"strings"
	"time"
)

const (
	fastResponse = 5 * time.Second

	// reformulationOverlap is the word overlap above which a query is taken
	// as a rewording of the previous one.
	reformulationOverlap = 0.5
)

var (
	reformulationMarkers = []string{
		"je veux dire", "autrement dit", "en d'autres termes", "plutôt", "non,", "pas ça", "i mean",
	}
	positiveWords = []string{
		"merci", "parfait", "super", "génial", "excellent", "top", "bravo", "thanks", "great",
	}
	negativeWords = []string{
		"nul", "inutile", "pas clair", "incompréhensible", "toujours pas", "ne marche pas", "useless", "wrong",
	}
)

// AnalyzeUserSatisfaction estimates satisfaction in [0, 1]. Explicit
// feedback sets the baseline (positive 0.9, negative 0.1, otherwise 0.5);
// implicit signals and the wording of the query then adjust it.
func (s *System) AnalyzeUserSatisfaction(query, response string, feedback Feedback, signals *ImplicitSignals) float64 {
	score := 0.5
	switch feedback {
	case FeedbackPositive:
		score = 0.9
	case FeedbackNegative:
		score = 0.1
	}

	if signals != nil {
		if signals.ResponseTime != 0 && signals.ResponseTime < fastResponse {
			score += 0.1
		}
		if len(signals.FollowUpActions) > 0 {
			score += 0.2
		}
		if isReformulation(query, signals.PreviousQuery) {
			score -= 0.2
		}
	}

	score += sentiment(query)

	return clamp01(score)
}

func isReformulation(query, previous string) bool {
	q := strings.ToLower(query)
	for _, m := range reformulationMarkers {
		if strings.Contains(q, m) {
			return true
		}
	}
	if previous == "" {
		return false
	}
	return jaccard(strings.Fields(q), strings.Fields(strings.ToLower(previous))) >= reformulationOverlap
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, w := range a {
		set[w] = true
	}
	union := len(set)
	inter := 0
	seen := make(map[string]bool, len(b))
	for _, w := range b {
		if seen[w] {
			continue
		}
		seen[w] = true
		if set[w] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

// sentiment returns +0.1 or -0.1 for clearly positive or negative wording.
func sentiment(text string) float64 {
	t := strings.ToLower(text)
	pos, neg := 0, 0
	for _, w := range positiveWords {
		if strings.Contains(t, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(t, w) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return 0.1
	case neg > pos:
		return -0.1
	}
	return 0
}
