package learning

import (
	"fmt"
	"strings"

	"github.com/khanglvm/paloma/internal/semantic"
)

// goalThreshold is the topic count at which a deepening goal is set.
const goalThreshold = 5

// profileLocked returns the profile for userID, creating it on first use.
func (s *System) profileLocked(userID string) *UserProfile {
	p, ok := s.profiles[userID]
	if !ok {
		p = newUserProfile(userID)
		s.profiles[userID] = p
	}
	if p.FrequentTopics == nil {
		p.FrequentTopics = make(map[string]int)
	}
	return p
}

func (s *System) updateProfileLocked(in UserInteraction) {
	p := s.profileLocked(in.ContextAtTime.userID())

	topic := orNone(in.Intent)
	p.FrequentTopics[topic]++
	p.ExpertiseLevel = s.expertise.Infer(p.ExpertiseLevel, p.totalInteractions())

	if p.FrequentTopics[topic] == goalThreshold {
		p.LearningGoals = appendUnique(p.LearningGoals, "approfondir:"+topic)
	}

	sat, ok := in.satisfaction()
	if !ok || sat <= successThreshold {
		return
	}

	p.OptimalResponseLength = lengthBucket(in.Response)
	if semantic.HasSteps(in.Response) {
		p.PreferredCommunicationStyle = StyleStepByStep
	}
	switch {
	case semantic.HasEmoji(in.Response):
		p.PreferredTone = ToneEnthusiastic
	case !strings.Contains(in.Response, "!"):
		p.PreferredTone = ToneFormal
	default:
		p.PreferredTone = ToneFriendly
	}
	p.SuccessfulInteractionPatterns = appendUnique(p.SuccessfulInteractionPatterns, "intent:"+topic)
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func complexityFor(e Expertise) string {
	switch e {
	case ExpertiseExpert:
		return "advanced"
	case ExpertiseIntermediate:
		return "moderate"
	}
	return "simple"
}

func (p Personality) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", p.Tone, p.ResponseLength, p.Style, p.Complexity)
}

// AdaptPersonalityToUser derives the personality responses should use for
// userID, or DefaultPersonality when the user is unknown. Each derivation
// is appended to the profile's adaptation history.
func (s *System) AdaptPersonalityToUser(userID string) Personality {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return DefaultPersonality()
	}

	focus := sortedTopics(p.FrequentTopics)
	if len(focus) > 3 {
		focus = focus[:3]
	}

	personality := Personality{
		Tone:           p.PreferredTone,
		ResponseLength: p.OptimalResponseLength,
		Style:          p.PreferredCommunicationStyle,
		Complexity:     complexityFor(p.ExpertiseLevel),
		FocusAreas:     focus,
	}

	before := DefaultPersonality().String()
	if n := len(p.AdaptationHistory); n > 0 {
		before = p.AdaptationHistory[n-1].After
	}
	after := personality.String()
	impact := 0.0
	if before != after {
		impact = 1
	}

	p.AdaptationHistory = append(p.AdaptationHistory, AdaptationEvent{
		Timestamp: s.now(),
		Type:      "personality",
		Before:    before,
		After:     after,
		Trigger:   "adapt_personality",
		Impact:    impact,
	})
	if len(p.AdaptationHistory) > maxAdaptationHistory {
		p.AdaptationHistory = append([]AdaptationEvent(nil), p.AdaptationHistory[len(p.AdaptationHistory)-maxAdaptationHistory:]...)
	}

	return personality
}

var intentSuggestions = map[string]string{
	"howTo":      "Voir d'autres procédures pas à pas",
	"what":       "Explorer le glossaire SYSCOHADA",
	"where":      "Afficher le plan de navigation",
	"problem":    "Consulter les solutions aux erreurs fréquentes",
	"navigation": "Ouvrir les raccourcis du menu",
	"general":    "Découvrir les fonctionnalités principales",
}

// PersonalizationSuggestions returns up to two follow-up suggestions built
// from the user's learning goals and expertise.
func (s *System) PersonalizationSuggestions(userID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil
	}

	var out []string
	for _, goal := range p.LearningGoals {
		intent := strings.TrimPrefix(goal, "approfondir:")
		if text, ok := intentSuggestions[intent]; ok {
			out = appendUnique(out, text)
		}
		if len(out) == 2 {
			return out
		}
	}
	if len(out) < 2 && p.ExpertiseLevel == ExpertiseBeginner && len(p.ProblematicAreas) > 0 {
		out = appendUnique(out, "Suivre le guide de démarrage")
	}
	return out
}
