/*
Package learning implements the adaptive layer of the assistant.

A System records interactions, maintains per-user profiles and global
behavioural patterns, and uses them to adapt generated responses. State is
checkpointed as a single JSON blob in a storage.Store and is treated as a
best-effort cache: losing it only loses personalization.
*/
package learning

import (
	"time"
)

// DefaultUserID is the profile used when no user is identified.
const DefaultUserID = "current_user"

// Feedback is explicit user feedback on a response.
type Feedback string

const (
	FeedbackPositive Feedback = "positive"
	FeedbackNegative Feedback = "negative"
	FeedbackNeutral  Feedback = "neutral"
)

// Context describes where a query was asked. The zero value is valid and a
// nil *Context is accepted wherever one is taken.
type Context struct {
	UserID   string `json:"userId,omitempty"`
	Module   string `json:"module,omitempty"`
	UserRole string `json:"userRole,omitempty"`
	Intent   string `json:"intent,omitempty"`
	Mood     string `json:"mood,omitempty"`
}

func (c *Context) value() Context {
	if c == nil {
		return Context{}
	}
	return *c
}

func (c Context) userID() string {
	if c.UserID == "" {
		return DefaultUserID
	}
	return c.UserID
}

// UserInteraction is one query/response exchange.
type UserInteraction struct {
	ID               string        `json:"id"`
	Timestamp        time.Time     `json:"timestamp"`
	UserQuery        string        `json:"userQuery"`
	Intent           string        `json:"intent"`
	Response         string        `json:"response"`
	UserSatisfaction *float64      `json:"userSatisfaction,omitempty"`
	UserFeedback     Feedback      `json:"userFeedback,omitempty"`
	ResponseTime     time.Duration `json:"responseTime"`
	ContextAtTime    Context       `json:"contextAtTime"`
	WasHelpful       bool          `json:"wasHelpful"`
	FollowUpActions  []string      `json:"followUpActions,omitempty"`
}

// satisfaction returns the clamped satisfaction and whether one was given.
func (i UserInteraction) satisfaction() (float64, bool) {
	if i.UserSatisfaction == nil {
		return 0, false
	}
	return clamp01(*i.UserSatisfaction), true
}

// PatternType classifies a LearningPattern.
type PatternType string

const (
	PatternPreference PatternType = "preference"
	PatternSuccess    PatternType = "success"
	PatternFailure    PatternType = "failure"
	PatternStyle      PatternType = "style"
	PatternContent    PatternType = "content"
)

// Payload carries the data of a pattern. Exactly one variant is set.
type Payload struct {
	Temporal *TemporalPayload `json:"temporal,omitempty"`
	Content  *ContentPayload  `json:"content,omitempty"`
	Context  *ContextPayload  `json:"context,omitempty"`
	Outcome  *OutcomePayload  `json:"outcome,omitempty"`
}

// TemporalPayload buckets an interaction by hour of day and day of week.
type TemporalPayload struct {
	Hour    int          `json:"hour"`
	Weekday time.Weekday `json:"weekday"`
}

// ContentPayload describes the shape of a response.
type ContentPayload struct {
	Intent         string `json:"intent"`
	LengthBucket   Length `json:"lengthBucket"`
	HasEmoji       bool   `json:"hasEmoji"`
	HasSteps       bool   `json:"hasSteps"`
	HasExamples    bool   `json:"hasExamples"`
	TechnicalTerms int    `json:"technicalTerms"`
}

// ContextPayload records where an interaction happened.
type ContextPayload struct {
	Module string `json:"module,omitempty"`
	Role   string `json:"role,omitempty"`
	Intent string `json:"intent"`
}

// OutcomePayload records a success or failure for an intent.
type OutcomePayload struct {
	Intent  string   `json:"intent"`
	Module  string   `json:"module,omitempty"`
	Factors []string `json:"factors,omitempty"`
}

func (p Payload) intent() string {
	switch {
	case p.Content != nil:
		return p.Content.Intent
	case p.Context != nil:
		return p.Context.Intent
	case p.Outcome != nil:
		return p.Outcome.Intent
	}
	return ""
}

func (p Payload) module() string {
	switch {
	case p.Context != nil:
		return p.Context.Module
	case p.Outcome != nil:
		return p.Outcome.Module
	}
	return ""
}

// LearningPattern is a behavioural observation merged by PatternID.
type LearningPattern struct {
	PatternID     string      `json:"patternId"`
	Type          PatternType `json:"type"`
	Pattern       Payload     `json:"pattern"`
	Confidence    float64     `json:"confidence"`
	Occurrences   int         `json:"occurrences"`
	LastSeen      time.Time   `json:"lastSeen"`
	Effectiveness float64     `json:"effectiveness"`
}

// Expertise is a user's inferred expertise level.
type Expertise string

const (
	ExpertiseBeginner     Expertise = "beginner"
	ExpertiseIntermediate Expertise = "intermediate"
	ExpertiseExpert       Expertise = "expert"
)

// Style is a communication style.
type Style string

const (
	StyleDetailed   Style = "detailed"
	StyleStepByStep Style = "step-by-step"
	StyleConcise    Style = "concise"
)

// Length is a response length preference.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Tone is a response tone.
type Tone string

const (
	ToneFormal       Tone = "formal"
	ToneFriendly     Tone = "friendly"
	ToneEnthusiastic Tone = "enthusiastic"
)

// UserProfile is what the system knows about one user.
type UserProfile struct {
	UserID                        string            `json:"userId"`
	ExpertiseLevel                Expertise         `json:"expertiseLevel"`
	PreferredCommunicationStyle   Style             `json:"preferredCommunicationStyle"`
	FrequentTopics                map[string]int    `json:"frequentTopics"`
	SuccessfulInteractionPatterns []string          `json:"successfulInteractionPatterns"`
	ProblematicAreas              []string          `json:"problematicAreas"`
	OptimalResponseLength         Length            `json:"optimalResponseLength"`
	PreferredTone                 Tone              `json:"preferredTone"`
	LearningGoals                 []string          `json:"learningGoals"`
	AdaptationHistory             []AdaptationEvent `json:"adaptationHistory"`
}

func newUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:                      userID,
		ExpertiseLevel:              ExpertiseBeginner,
		PreferredCommunicationStyle: StyleDetailed,
		FrequentTopics:              make(map[string]int),
		OptimalResponseLength:       LengthMedium,
		PreferredTone:               ToneFriendly,
	}
}

func (p *UserProfile) clone() *UserProfile {
	c := *p
	c.FrequentTopics = make(map[string]int, len(p.FrequentTopics))
	for k, v := range p.FrequentTopics {
		c.FrequentTopics[k] = v
	}
	c.SuccessfulInteractionPatterns = append([]string(nil), p.SuccessfulInteractionPatterns...)
	c.ProblematicAreas = append([]string(nil), p.ProblematicAreas...)
	c.LearningGoals = append([]string(nil), p.LearningGoals...)
	c.AdaptationHistory = append([]AdaptationEvent(nil), p.AdaptationHistory...)
	return &c
}

func (p *UserProfile) totalInteractions() int {
	n := 0
	for _, c := range p.FrequentTopics {
		n += c
	}
	return n
}

// AdaptationEvent is an append-only audit record of a profile adaptation.
type AdaptationEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Before    string    `json:"before"`
	After     string    `json:"after"`
	Trigger   string    `json:"trigger"`
	Impact    float64   `json:"impact"`
}

// Personality describes how responses should be shaped for a user.
type Personality struct {
	Tone           Tone     `json:"tone"`
	ResponseLength Length   `json:"responseLength"`
	Style          Style    `json:"style"`
	Complexity     string   `json:"complexity"`
	FocusAreas     []string `json:"focusAreas"`
}

// DefaultPersonality is used for users without a profile.
func DefaultPersonality() Personality {
	return Personality{
		Tone:           ToneFriendly,
		ResponseLength: LengthMedium,
		Style:          StyleDetailed,
		Complexity:     "moderate",
		FocusAreas:     []string{},
	}
}

// ImplicitSignals are behavioural hints used to estimate satisfaction.
type ImplicitSignals struct {
	// ResponseTime is how long the user took to react. Zero means unknown.
	ResponseTime    time.Duration
	FollowUpActions []string
	// PreviousQuery is compared against the query to detect reformulation.
	PreviousQuery string
}

// LearningInsights summarizes recent learning.
type LearningInsights struct {
	TotalInteractions   int               `json:"totalInteractions"`
	AverageSatisfaction float64           `json:"averageSatisfaction"`
	ImprovementTrend    float64           `json:"improvementTrend"`
	TopPatterns         []LearningPattern `json:"topPatterns"`
	ProblematicAreas    []string          `json:"problematicAreas"`
	Suggestions         []string          `json:"suggestions"`
}

// ExportData is a full dump of the learning state.
type ExportData struct {
	Enabled      bool                    `json:"enabled"`
	ExportedAt   time.Time               `json:"exportedAt"`
	Interactions []UserInteraction       `json:"interactions"`
	Patterns     []LearningPattern       `json:"patterns"`
	UserProfiles map[string]*UserProfile `json:"userProfiles"`
	Rules        []string                `json:"rules"`
}

func clamp01(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
