/*
Package rpc serves the assistant over JSON-RPC 2.0 on stdio.

Requests and responses are newline-delimited JSON objects. Methods:
  - initialize: server name, version and method list
  - chat/ask: answer a query
  - chat/feedback: record the user's reaction to an answer
  - learning/insights: learning summary
  - learning/profile: personalization state of a user
  - learning/export: full learning dump
  - knowledge/search: raw catalog search
*/
package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/khanglvm/paloma/internal/assistant"
	"github.com/khanglvm/paloma/internal/knowledge"
	"github.com/khanglvm/paloma/internal/learning"
	"github.com/khanglvm/paloma/internal/metrics"
	"github.com/khanglvm/paloma/internal/version"
	"github.com/rs/zerolog/log"
)

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
)

// maxPending is the number of answered responses kept for feedback.
const maxPending = 100

// maxLineSize bounds a single request line.
const maxLineSize = 1 << 20

// Methods lists the supported methods in documentation order.
var Methods = []string{
	"initialize",
	"chat/ask",
	"chat/feedback",
	"learning/insights",
	"learning/profile",
	"learning/export",
	"knowledge/search",
}

// Server answers JSON-RPC requests with a Generator.
type Server struct {
	gen *assistant.Generator
	kb  knowledge.Source

	mu      sync.Mutex
	pending map[string]askRecord
	order   []string
	outMu   sync.Mutex
}

type askRecord struct {
	query    string
	response assistant.IntelligentResponse
	context  *learning.Context
}

// NewServer creates a server answering with gen and searching kb.
func NewServer(gen *assistant.Generator, kb knowledge.Source) *Server {
	return &Server{
		gen:     gen,
		kb:      kb,
		pending: make(map[string]askRecord),
	}
}

// Request represents an incoming JSON-RPC request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents an outgoing JSON-RPC response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents a JSON-RPC error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Run serves requests read from in until it is exhausted or ctx is done.
// When ctx is cancelled while a read from in is blocked, Run returns at once
// but the reading goroutine stays until that read returns; close in (or
// exit the process) to release it.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if len(strings.TrimSpace(string(line))) == 0 {
				continue
			}
			if resp := s.Handle(line); resp != nil {
				if err := s.send(out, resp); err != nil {
					return err
				}
			}
		}
	}
}

// Handle processes one request line. It returns nil for notifications.
func (s *Server) Handle(data []byte) *Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		metrics.RPCRequests.WithLabelValues("", "parse_error").Inc()
		return errorResponse(nil, CodeParseError, fmt.Sprintf("invalid JSON-RPC request: %v", err))
	}

	start := time.Now()
	result, rpcErr := s.dispatch(req)

	status := "ok"
	if rpcErr != nil {
		status = "error"
	}
	metrics.RPCRequests.WithLabelValues(req.Method, status).Inc()
	log.Debug().
		Str("method", req.Method).
		Str("status", status).
		Dur("elapsed", time.Since(start)).
		Msg("rpc request")

	if req.ID == nil {
		return nil
	}
	if rpcErr != nil {
		return &Response{JSONRPC: "2.0", ID: req.ID, Error: rpcErr}
	}
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func (s *Server) dispatch(req Request) (interface{}, *Error) {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(), nil
	case "chat/ask":
		return s.handleAsk(req.Params)
	case "chat/feedback":
		return s.handleFeedback(req.Params)
	case "learning/insights":
		return s.gen.GetLearningInsights(), nil
	case "learning/profile":
		return s.handleProfile(req.Params)
	case "learning/export":
		return s.gen.ExportLearningData(), nil
	case "knowledge/search":
		return s.handleSearch(req.Params)
	}
	if strings.HasPrefix(req.Method, "notifications/") {
		return nil, nil
	}
	return nil, &Error{Code: CodeMethodNotFound, Message: "Method not found"}
}

func (s *Server) handleInitialize() interface{} {
	return map[string]interface{}{
		"serverInfo": map[string]interface{}{
			"name":    "paloma",
			"version": version.Version,
			"build":   version.Get(),
		},
		"methods":         Methods,
		"learningEnabled": s.gen.Learning().IsEnabled(),
	}
}

// AskParams are the parameters of chat/ask.
type AskParams struct {
	Query   string            `json:"query"`
	Context *learning.Context `json:"context,omitempty"`
}

func (s *Server) handleAsk(raw json.RawMessage) (interface{}, *Error) {
	var p AskParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	resp := s.gen.GenerateResponse(p.Query, p.Context)
	s.remember(resp.Metadata.ResponseID, askRecord{query: p.Query, response: resp, context: p.Context})
	return resp, nil
}

// FeedbackParams are the parameters of chat/feedback. ResponseID refers to
// an answer returned by chat/ask; Query is only needed for answers the
// server no longer remembers.
type FeedbackParams struct {
	ResponseID      string            `json:"responseId"`
	Query           string            `json:"query,omitempty"`
	Feedback        learning.Feedback `json:"feedback"`
	ResponseTimeMs  int64             `json:"responseTimeMs,omitempty"`
	FollowUpActions []string          `json:"followUpActions,omitempty"`
	Context         *learning.Context `json:"context,omitempty"`
}

func (s *Server) handleFeedback(raw json.RawMessage) (interface{}, *Error) {
	var p FeedbackParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	switch p.Feedback {
	case "", learning.FeedbackPositive, learning.FeedbackNegative, learning.FeedbackNeutral:
	default:
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("unknown feedback %q", p.Feedback)}
	}

	rec, ok := s.recall(p.ResponseID)
	if !ok {
		if p.Query == "" {
			return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("unknown response %q and no query given", p.ResponseID)}
		}
		rec = askRecord{query: p.Query}
	}
	ctx := rec.context
	if p.Context != nil {
		ctx = p.Context
	}

	s.gen.RecordFeedback(assistant.Feedback{
		Query:           rec.query,
		Response:        rec.response,
		Feedback:        p.Feedback,
		ResponseTime:    time.Duration(p.ResponseTimeMs) * time.Millisecond,
		Context:         ctx,
		FollowUpActions: p.FollowUpActions,
	})

	return map[string]interface{}{"recorded": true}, nil
}

// ProfileParams are the parameters of learning/profile.
type ProfileParams struct {
	UserID string `json:"userId"`
}

func (s *Server) handleProfile(raw json.RawMessage) (interface{}, *Error) {
	var p ProfileParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return s.gen.GetPersonalizedExperience(p.UserID), nil
}

// SearchParams are the parameters of knowledge/search.
type SearchParams struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

func (s *Server) handleSearch(raw json.RawMessage) (interface{}, *Error) {
	var p SearchParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	entries := s.kb.SearchKnowledge(p.Query)
	if entries == nil {
		entries = []knowledge.Entry{}
	}
	if p.Limit > 0 && len(entries) > p.Limit {
		entries = entries[:p.Limit]
	}
	return map[string]interface{}{"entries": entries}, nil
}

// remember keeps rec for feedback, evicting the oldest answers.
func (s *Server) remember(id string, rec askRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[id]; !ok {
		s.order = append(s.order, id)
	}
	s.pending[id] = rec
	for len(s.order) > maxPending {
		delete(s.pending, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *Server) recall(id string) (askRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.pending[id]
	return rec, ok
}

func decodeParams(raw json.RawMessage, v interface{}) *Error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return nil
}

func errorResponse(id interface{}, code int, msg string) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Error: &Error{Code: code, Message: msg}}
}

// send writes resp as one line.
func (s *Server) send(out io.Writer, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()

	if _, err := out.Write(append(data, '\n')); err != nil {
		if errors.Is(err, io.ErrClosedPipe) {
			return nil
		}
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
