/*
Package assistant turns user queries into adapted responses.

A Generator detects the intent of a query, retrieves knowledge entries,
builds an intent-specific response from templates and lets the learning
system personalize it before it is returned.
*/
package assistant

import (
	"time"

	"github.com/khanglvm/paloma/internal/knowledge"
	"github.com/khanglvm/paloma/internal/learning"
)

// ActionType is the kind of a ResponseAction.
type ActionType string

const (
	ActionNavigate ActionType = "navigate"
	ActionExecute  ActionType = "execute"
	ActionHelp     ActionType = "help"
)

// ResponseAction is something the UI can offer next to a response.
type ResponseAction struct {
	Type    ActionType `json:"type"`
	Label   string     `json:"label"`
	Path    string     `json:"path,omitempty"`
	Command string     `json:"command,omitempty"`
}

// IntelligentResponse is the answer to one query.
type IntelligentResponse struct {
	Message     string            `json:"message"`
	Confidence  float64           `json:"confidence"`
	Sources     []knowledge.Entry `json:"sources"`
	Suggestions []string          `json:"suggestions"`
	Actions     []ResponseAction  `json:"actions,omitempty"`
	Metadata    *ResponseMetadata `json:"metadata,omitempty"`
}

// ResponseMetadata describes how a response was produced. Its content is
// informational and may change.
type ResponseMetadata struct {
	ResponseID    string               `json:"responseId"`
	Intent        string               `json:"intent"`
	ExpandedQuery []string             `json:"expandedQuery"`
	Adapted       bool                 `json:"adapted"`
	Personality   learning.Personality `json:"personality"`
	GeneratedAt   time.Time            `json:"generatedAt"`
}
