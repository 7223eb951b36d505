package learning

import (
	"fmt"
	"sort"
)

const (
	// insightWindow is the number of recent interactions insights cover.
	insightWindow = 100

	topPatternCount = 5
)

// GenerateLearningInsights summarizes the last 100 interactions.
func (s *System) GenerateLearningInsights() LearningInsights {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recent := s.recentLocked(insightWindow)

	var scores []float64
	for _, in := range recent {
		if sat, ok := in.satisfaction(); ok {
			scores = append(scores, sat)
		}
	}

	insights := LearningInsights{
		TotalInteractions:   len(recent),
		AverageSatisfaction: mean(scores),
		ImprovementTrend:    s.improvementTrendLocked(),
		TopPatterns:         s.topPatternsLocked(topPatternCount),
		ProblematicAreas:    s.problematicAreasLocked(),
	}
	insights.Suggestions = suggestionsFor(insights)

	return insights
}

// ImprovementTrend returns the current satisfaction trend in [-1, 1].
func (s *System) ImprovementTrend() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.improvementTrendLocked()
}

func (s *System) improvementTrendLocked() float64 {
	var scores []float64
	for _, in := range s.interactions {
		if sat, ok := in.satisfaction(); ok {
			scores = append(scores, sat)
		}
	}
	t := s.trend(scores)
	if t < -1 {
		return -1
	}
	if t > 1 {
		return 1
	}
	return t
}

// topPatternsLocked ranks patterns by effectiveness, then occurrences, then
// recency.
func (s *System) topPatternsLocked(n int) []LearningPattern {
	ranked := append([]LearningPattern(nil), s.patterns...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Effectiveness != b.Effectiveness {
			return a.Effectiveness > b.Effectiveness
		}
		if a.Occurrences != b.Occurrences {
			return a.Occurrences > b.Occurrences
		}
		return a.LastSeen.After(b.LastSeen)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// problematicAreasLocked lists problematic intents across users, most
// frequent first.
func (s *System) problematicAreasLocked() []string {
	counts := make(map[string]int)
	for _, p := range s.profiles {
		for _, area := range p.ProblematicAreas {
			counts[area]++
		}
	}
	return sortedTopics(counts)
}

func suggestionsFor(in LearningInsights) []string {
	if in.TotalInteractions == 0 {
		return []string{"Pas encore assez d'interactions pour proposer des améliorations"}
	}

	var out []string
	if in.AverageSatisfaction > 0 && in.AverageSatisfaction < 0.5 {
		out = append(out, "Simplifier les réponses et ajouter des exemples concrets")
	}
	if in.ImprovementTrend < 0 {
		out = append(out, "La satisfaction baisse : revoir les réponses récentes les moins bien notées")
	}
	for i, area := range in.ProblematicAreas {
		if i == 2 {
			break
		}
		out = append(out, fmt.Sprintf("Améliorer les réponses de type %q", area))
	}
	if len(out) == 0 {
		out = append(out, "Continuer sur la lancée : les réponses actuelles sont bien reçues")
	}
	return out
}
