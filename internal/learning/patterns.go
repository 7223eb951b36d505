package learning

import (
	"fmt"
	"strings"
	"time"

	"github.com/khanglvm/paloma/internal/semantic"
)

const (
	successThreshold = 0.7
	failureThreshold = 0.4

	// highlyEffective is the effectiveness above which a pattern counts
	// toward the confidence bonus.
	highlyEffective = 0.8

	// initialConfidence is the confidence of a first observation.
	initialConfidence = 0.5

	retention = 30 * 24 * time.Hour

	// Response length buckets, in characters.
	shortResponse  = 200
	mediumResponse = 600
)

// Failure factors derived from a poorly rated interaction.
const (
	FactorTooLong           = "response_too_long"
	FactorTooTechnical      = "too_technical"
	FactorMissingExamples   = "missing_examples"
	FactorMissingNavigation = "missing_navigation"
)

func lengthBucket(s string) Length {
	n := len([]rune(s))
	switch {
	case n < shortResponse:
		return LengthShort
	case n < mediumResponse:
		return LengthMedium
	}
	return LengthLong
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// AddOrUpdatePattern merges p into the global patterns by PatternID and then
// runs the retention sweep.
func (s *System) AddOrUpdatePattern(p LearningPattern) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addOrUpdateLocked(p)
}

func (s *System) addOrUpdateLocked(p LearningPattern) {
	now := s.now()
	p.Effectiveness = clamp01(p.Effectiveness)

	merged := false
	for i := range s.patterns {
		existing := &s.patterns[i]
		if existing.PatternID != p.PatternID {
			continue
		}
		existing.Effectiveness = clamp01(0.8*existing.Effectiveness + 0.2*p.Effectiveness)
		existing.Confidence = clamp01(existing.Confidence + 0.05)
		existing.Occurrences++
		existing.LastSeen = now
		merged = true
		break
	}

	if !merged {
		if p.Occurrences < 1 {
			p.Occurrences = 1
		}
		if p.Confidence <= 0 {
			p.Confidence = initialConfidence
		}
		p.Confidence = clamp01(p.Confidence)
		if p.LastSeen.IsZero() {
			p.LastSeen = now
		}
		s.patterns = append(s.patterns, p)
	}

	s.sweepLocked()
}

// sweepLocked purges patterns unseen for 30 days that were only observed
// once.
func (s *System) sweepLocked() int {
	cutoff := s.now().Add(-retention)
	kept := s.patterns[:0]
	removed := 0
	for _, p := range s.patterns {
		if p.LastSeen.Before(cutoff) && p.Occurrences <= 1 {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	s.patterns = kept
	return removed
}

func effectivenessOf(in UserInteraction) float64 {
	if sat, ok := in.satisfaction(); ok {
		return sat
	}
	return 0.5
}

func (s *System) analyzeTemporalLocked(in UserInteraction) {
	t := in.Timestamp
	s.addOrUpdateLocked(LearningPattern{
		PatternID:     fmt.Sprintf("temporal_%d_%d", t.Hour(), t.Weekday()),
		Type:          PatternPreference,
		Pattern:       Payload{Temporal: &TemporalPayload{Hour: t.Hour(), Weekday: t.Weekday()}},
		Effectiveness: effectivenessOf(in),
	})
}

func (s *System) analyzeContentLocked(in UserInteraction) {
	c := &ContentPayload{
		Intent:         in.Intent,
		LengthBucket:   lengthBucket(in.Response),
		HasEmoji:       semantic.HasEmoji(in.Response),
		HasSteps:       semantic.HasSteps(in.Response),
		HasExamples:    semantic.HasExamples(in.Response),
		TechnicalTerms: semantic.CountTechnicalTerms(in.Response),
	}
	s.addOrUpdateLocked(LearningPattern{
		PatternID: fmt.Sprintf("content_%s_%s_%d_%d_%d",
			orNone(c.Intent), c.LengthBucket, flag(c.HasEmoji), flag(c.HasSteps), flag(c.HasExamples)),
		Type:          PatternContent,
		Pattern:       Payload{Content: c},
		Effectiveness: effectivenessOf(in),
	})
}

func (s *System) analyzeContextLocked(in UserInteraction) {
	ctx := in.ContextAtTime
	s.addOrUpdateLocked(LearningPattern{
		PatternID: fmt.Sprintf("context_%s_%s_%s", orNone(ctx.Module), orNone(ctx.UserRole), orNone(in.Intent)),
		Type:      PatternStyle,
		Pattern: Payload{Context: &ContextPayload{
			Module: ctx.Module,
			Role:   ctx.UserRole,
			Intent: in.Intent,
		}},
		Effectiveness: effectivenessOf(in),
	})
}

// LearnFromSuccess records a success pattern for the interaction's intent.
// It is a no-op below the success threshold.
func (s *System) LearnFromSuccess(in UserInteraction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.learnFromSuccessLocked(in)
}

func (s *System) learnFromSuccessLocked(in UserInteraction) {
	sat, ok := in.satisfaction()
	if !ok || sat < successThreshold {
		return
	}

	s.addOrUpdateLocked(LearningPattern{
		PatternID: "success_" + orNone(in.Intent),
		Type:      PatternSuccess,
		Pattern: Payload{Outcome: &OutcomePayload{
			Intent: in.Intent,
			Module: in.ContextAtTime.Module,
		}},
		Effectiveness: sat,
	})
}

// LearnFromFailure installs avoidance rules for the interaction's failure
// factors and marks its intent as problematic for the user. It is a no-op
// above the failure threshold.
func (s *System) LearnFromFailure(in UserInteraction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.learnFromFailureLocked(in)
}

func (s *System) learnFromFailureLocked(in UserInteraction) {
	sat, ok := in.satisfaction()
	if !ok || sat > failureThreshold {
		return
	}

	factors := failureFactors(in)
	for _, f := range factors {
		s.installRuleLocked(avoidanceRule(f, in.ContextAtTime.Module, in.Intent))
	}

	profile := s.profileLocked(in.ContextAtTime.userID())
	profile.ProblematicAreas = append(profile.ProblematicAreas, in.Intent)

	s.addOrUpdateLocked(LearningPattern{
		PatternID: "failure_" + orNone(in.Intent),
		Type:      PatternFailure,
		Pattern: Payload{Outcome: &OutcomePayload{
			Intent:  in.Intent,
			Module:  in.ContextAtTime.Module,
			Factors: factors,
		}},
		Effectiveness: sat,
	})
}

// failureFactors guesses why a response did not help.
func failureFactors(in UserInteraction) []string {
	var factors []string
	if len([]rune(in.Response)) > 500 {
		factors = append(factors, FactorTooLong)
	}
	if semantic.CountTechnicalTerms(in.Response) >= 3 {
		factors = append(factors, FactorTooTechnical)
	}
	if !semantic.HasExamples(in.Response) {
		factors = append(factors, FactorMissingExamples)
	}
	if !strings.Contains(in.Response, "/") && !strings.Contains(strings.ToLower(in.Response), "menu") {
		factors = append(factors, FactorMissingNavigation)
	}
	return factors
}

// HasHighlyEffectivePatterns reports whether any pattern has an
// effectiveness above 0.8.
func (s *System) HasHighlyEffectivePatterns() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.patterns {
		if p.Effectiveness > highlyEffective {
			return true
		}
	}
	return false
}
