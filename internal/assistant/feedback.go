package assistant

import (
	"time"

	"github.com/google/uuid"
	"github.com/khanglvm/paloma/internal/learning"
)

// Feedback describes a user's reaction to a response.
type Feedback struct {
	Query    string
	Response IntelligentResponse
	Feedback learning.Feedback
	// ResponseTime is how long the user took to react.
	ResponseTime    time.Duration
	Context         *learning.Context
	FollowUpActions []string
}

// RecordInteractionFeedback records the user's reaction to a response.
func (g *Generator) RecordInteractionFeedback(query string, response IntelligentResponse, feedback learning.Feedback, responseTime time.Duration) {
	g.RecordFeedback(Feedback{
		Query:        query,
		Response:     response,
		Feedback:     feedback,
		ResponseTime: responseTime,
	})
}

// RecordFeedback records a reaction with its context and follow-up actions.
func (g *Generator) RecordFeedback(f Feedback) {
	intent := g.analyzer.DetectIntent(f.Query)
	if f.Response.Metadata != nil && f.Response.Metadata.Intent != "" {
		intent = f.Response.Metadata.Intent
	}

	satisfaction := g.learning.AnalyzeUserSatisfaction(f.Query, f.Response.Message, f.Feedback, &learning.ImplicitSignals{
		ResponseTime:    f.ResponseTime,
		FollowUpActions: f.FollowUpActions,
		PreviousQuery:   g.previousQuery(f.Query),
	})

	ctx := learning.Context{}
	if f.Context != nil {
		ctx = *f.Context
	}
	ctx.Intent = intent

	id := uuid.NewString()
	if f.Response.Metadata != nil && f.Response.Metadata.ResponseID != "" {
		id = f.Response.Metadata.ResponseID
	}

	g.learning.RecordInteraction(learning.UserInteraction{
		ID:               id,
		Timestamp:        g.now(),
		UserQuery:        f.Query,
		Intent:           intent,
		Response:         f.Response.Message,
		UserSatisfaction: &satisfaction,
		UserFeedback:     f.Feedback,
		ResponseTime:     f.ResponseTime,
		ContextAtTime:    ctx,
		WasHelpful:       f.Feedback == learning.FeedbackPositive || satisfaction > 0.7,
		FollowUpActions:  f.FollowUpActions,
	})
}

// GetLearningInsights returns the learning summary.
func (g *Generator) GetLearningInsights() learning.LearningInsights {
	return g.learning.GenerateLearningInsights()
}

// PersonalizedExperience is what the assistant knows about a user.
type PersonalizedExperience struct {
	UserID      string                `json:"userId"`
	Personality learning.Personality  `json:"personality"`
	Profile     *learning.UserProfile `json:"profile,omitempty"`
	Suggestions []string              `json:"suggestions"`
}

// GetPersonalizedExperience returns the personalization state of userID.
func (g *Generator) GetPersonalizedExperience(userID string) PersonalizedExperience {
	if userID == "" {
		userID = learning.DefaultUserID
	}

	exp := PersonalizedExperience{
		UserID:      userID,
		Personality: g.learning.AdaptPersonalityToUser(userID),
		Suggestions: g.learning.PersonalizationSuggestions(userID),
	}
	if p, ok := g.learning.Profile(userID); ok {
		exp.Profile = p
	}
	if exp.Suggestions == nil {
		exp.Suggestions = []string{}
	}
	return exp
}

// ExportLearningData returns a full dump of the learning state.
func (g *Generator) ExportLearningData() learning.ExportData {
	return g.learning.ExportLearningData()
}
