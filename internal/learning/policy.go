package learning

import "math"

// ExpertisePolicy infers a user's expertise from their interaction count.
type ExpertisePolicy interface {
	Infer(current Expertise, interactions int) Expertise
}

// ThresholdPolicy promotes users after a fixed number of interactions. It
// never demotes.
type ThresholdPolicy struct {
	IntermediateAfter int
	ExpertAfter       int
}

// DefaultExpertisePolicy promotes to intermediate after 10 interactions and
// to expert after 50.
func DefaultExpertisePolicy() ThresholdPolicy {
	return ThresholdPolicy{IntermediateAfter: 10, ExpertAfter: 50}
}

// Infer implements ExpertisePolicy.
func (p ThresholdPolicy) Infer(current Expertise, interactions int) Expertise {
	inferred := ExpertiseBeginner
	switch {
	case p.ExpertAfter > 0 && interactions >= p.ExpertAfter:
		inferred = ExpertiseExpert
	case p.IntermediateAfter > 0 && interactions >= p.IntermediateAfter:
		inferred = ExpertiseIntermediate
	}

	if expertiseRank(inferred) < expertiseRank(current) {
		return current
	}
	return inferred
}

func expertiseRank(e Expertise) int {
	switch e {
	case ExpertiseIntermediate:
		return 1
	case ExpertiseExpert:
		return 2
	}
	return 0
}

// TrendFunc turns chronological satisfaction scores into a trend in [-1, 1].
type TrendFunc func(satisfactions []float64) float64

// trendWindow is the size of each half compared by WindowTrend.
const trendWindow = 20

// WindowTrend compares the mean of the last 20 scores with the mean of the
// 20 before them. It returns 0 when either window is empty.
func WindowTrend(satisfactions []float64) float64 {
	n := len(satisfactions)
	if n < 2 {
		return 0
	}

	recentStart := n - trendWindow
	if recentStart < n/2 {
		recentStart = n / 2
	}
	priorStart := recentStart - trendWindow
	if priorStart < 0 {
		priorStart = 0
	}

	recent := mean(satisfactions[recentStart:])
	prior := mean(satisfactions[priorStart:recentStart])

	return math.Max(-1, math.Min(1, recent-prior))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// PatternMatcher decides whether a pattern is relevant to a context.
type PatternMatcher func(p LearningPattern, ctx Context) bool

// SameIntentOrModule matches patterns sharing the context's intent or module.
func SameIntentOrModule(p LearningPattern, ctx Context) bool {
	if ctx.Intent != "" && p.Pattern.intent() == ctx.Intent {
		return true
	}
	return ctx.Module != "" && p.Pattern.module() == ctx.Module
}
