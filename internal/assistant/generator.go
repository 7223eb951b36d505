package assistant

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/khanglvm/paloma/internal/knowledge"
	"github.com/khanglvm/paloma/internal/learning"
	"github.com/khanglvm/paloma/internal/metrics"
	"github.com/khanglvm/paloma/internal/semantic"
	"github.com/rs/zerolog/log"
)

const (
	// maxHistory is the number of past queries kept for the conversation.
	maxHistory = 10

	// fallbackThreshold is the result count below which the analyzer scores
	// the whole catalog.
	fallbackThreshold = 3
	maxResults        = 5

	// learningHistory is how many recent interactions real-time adaptation
	// looks at.
	learningHistory = 10

	effectiveBonus = 0.1
	trendWeight    = 0.05
)

// Generator produces responses. It is safe for concurrent use.
type Generator struct {
	analyzer *semantic.Analyzer
	kb       knowledge.Source
	learning *learning.System
	now      func() time.Time

	mu      sync.Mutex
	history []string
}

// Option configures a Generator.
type Option func(*Generator)

// WithAnalyzer replaces the default semantic analyzer.
func WithAnalyzer(a *semantic.Analyzer) Option {
	return func(g *Generator) { g.analyzer = a }
}

// WithClock sets the time source used for metadata.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New creates a generator answering from kb and adapting with ls. A nil ls
// gets an in-memory learning system.
func New(kb knowledge.Source, ls *learning.System, opts ...Option) *Generator {
	if ls == nil {
		ls = learning.New(nil)
	}

	g := &Generator{
		analyzer: semantic.NewAnalyzer(),
		kb:       kb,
		learning: ls,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Learning returns the learning system the generator adapts with.
func (g *Generator) Learning() *learning.System {
	return g.learning
}

// GenerateResponse answers query. ctx may be nil.
func (g *Generator) GenerateResponse(query string, ctx *learning.Context) IntelligentResponse {
	intent := g.analyzer.DetectIntent(query)
	expanded := g.analyzer.ExpandQuery(query)
	results := g.enhancedSearch(strings.Join(expanded, " "))

	var draft IntelligentResponse
	outcome := "found"
	if len(results) == 0 {
		draft = buildNotFound(query)
		outcome = "not_found"
	} else {
		draft = builderFor(intent)(query, results, g.kb)
	}

	g.remember(query)

	resp := g.enhanceWithLearning(draft, intent, ctx)
	resp.Metadata.ExpandedQuery = expanded

	metrics.Responses.WithLabelValues(intent, outcome).Inc()
	metrics.ResponseConfidence.Observe(resp.Confidence)
	log.Debug().
		Str("intent", intent).
		Int("results", len(results)).
		Float64("confidence", resp.Confidence).
		Bool("adapted", resp.Metadata.Adapted).
		Msg("response generated")

	return resp
}

// enhancedSearch queries the knowledge base and, when it returns fewer
// than three entries, completes the results with the best analyzer scores.
func (g *Generator) enhancedSearch(query string) []knowledge.Entry {
	results := g.kb.SearchKnowledge(query)
	if len(results) >= fallbackThreshold {
		return results
	}

	type scored struct {
		entry knowledge.Entry
		score float64
	}
	var ranked []scored
	for _, e := range g.kb.Entries() {
		if s := g.analyzer.CalculateRelevance(query, e); s > 0 {
			ranked = append(ranked, scored{e, s})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}

	seen := make(map[string]bool, len(results)+len(ranked))
	merged := make([]knowledge.Entry, 0, maxResults)
	for _, e := range results {
		if !seen[e.ID] {
			seen[e.ID] = true
			merged = append(merged, e)
		}
	}
	for _, r := range ranked {
		if !seen[r.entry.ID] {
			seen[r.entry.ID] = true
			merged = append(merged, r.entry)
		}
	}
	if len(merged) > maxResults {
		merged = merged[:maxResults]
	}
	return merged
}

// enhanceWithLearning personalizes a draft response.
func (g *Generator) enhanceWithLearning(draft IntelligentResponse, intent string, ctx *learning.Context) IntelligentResponse {
	c := learning.Context{}
	if ctx != nil {
		c = *ctx
	}
	c.Intent = intent

	userID := c.UserID
	if userID == "" {
		userID = learning.DefaultUserID
	}

	message := g.learning.AdaptResponseInRealTime(draft.Message, &c, g.learning.RecentInteractions(learningHistory))
	personality := g.learning.AdaptPersonalityToUser(userID)
	message = applyPersonality(message, personality)

	confidence := draft.Confidence
	if g.learning.HasHighlyEffectivePatterns() {
		confidence += effectiveBonus
	}
	confidence += g.learning.ImprovementTrend() * trendWeight

	resp := draft
	resp.Message = message
	resp.Confidence = clamp01(confidence)
	resp.Suggestions = mergeSuggestions(draft.Suggestions, g.learning.PersonalizationSuggestions(userID))
	resp.Metadata = &ResponseMetadata{
		ResponseID:  uuid.NewString(),
		Intent:      intent,
		Adapted:     message != draft.Message,
		Personality: personality,
		GeneratedAt: g.now(),
	}
	return resp
}

func mergeSuggestions(base, extra []string) []string {
	out := make([]string, 0, maxSuggestions)
	seen := make(map[string]bool)
	for _, list := range [][]string{base, extra} {
		for _, s := range list {
			if len(out) == maxSuggestions {
				return out
			}
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// remember appends query to the bounded conversation history.
func (g *Generator) remember(query string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.history = append(g.history, query)
	if len(g.history) > maxHistory {
		g.history = append([]string(nil), g.history[len(g.history)-maxHistory:]...)
	}
}

// History returns the recent queries, oldest first.
func (g *Generator) History() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]string(nil), g.history...)
}

// previousQuery returns the query asked before the latest occurrence of
// query, if any.
func (g *Generator) previousQuery(query string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := len(g.history) - 1; i > 0; i-- {
		if g.history[i] == query {
			return g.history[i-1]
		}
	}
	return ""
}
