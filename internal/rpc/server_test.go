package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/khanglvm/paloma/internal/assistant"
	"github.com/khanglvm/paloma/internal/knowledge"
	"github.com/khanglvm/paloma/internal/learning"
	"github.com/khanglvm/paloma/internal/metrics"
	"github.com/khanglvm/paloma/internal/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	kb, err := knowledge.NewDefault()
	require.NoError(t, err)
	t.Cleanup(func() { kb.Close() })

	ls := learning.New(storage.NewMemoryStore())
	t.Cleanup(ls.Close)

	return NewServer(assistant.New(kb, ls), kb)
}

// call sends one request and decodes the result into out.
func call(t *testing.T, s *Server, method string, params interface{}, out interface{}) *Response {
	t.Helper()

	req := map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": method}
	if params != nil {
		req["params"] = params
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)

	resp := s.Handle(data)
	require.NotNil(t, resp)
	if out != nil && resp.Error == nil {
		raw, err := json.Marshal(resp.Result)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out))
	}
	return resp
}

func TestInitialize(t *testing.T) {
	s := newTestServer(t)
	before := testutil.ToFloat64(metrics.RPCRequests.WithLabelValues("initialize", "ok"))

	var result struct {
		ServerInfo struct {
			Name string `json:"name"`
		} `json:"serverInfo"`
		Methods         []string `json:"methods"`
		LearningEnabled bool     `json:"learningEnabled"`
	}
	resp := call(t, s, "initialize", nil, &result)

	require.Nil(t, resp.Error)
	assert.Equal(t, "paloma", result.ServerInfo.Name)
	assert.Equal(t, Methods, result.Methods)
	assert.True(t, result.LearningEnabled)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RPCRequests.WithLabelValues("initialize", "ok")))
}

func TestAskAndFeedback(t *testing.T) {
	s := newTestServer(t)

	var answer assistant.IntelligentResponse
	resp := call(t, s, "chat/ask", AskParams{
		Query:   "Comment créer une facture d'achat ?",
		Context: &learning.Context{UserID: "kofi", Module: "achats"},
	}, &answer)
	require.Nil(t, resp.Error)
	require.NotNil(t, answer.Metadata)
	assert.Equal(t, "howTo", answer.Metadata.Intent)
	assert.NotEmpty(t, answer.Sources)

	resp = call(t, s, "chat/feedback", FeedbackParams{
		ResponseID:     answer.Metadata.ResponseID,
		Feedback:       learning.FeedbackPositive,
		ResponseTimeMs: 1500,
	}, nil)
	require.Nil(t, resp.Error)

	interactions := s.gen.Learning().Interactions()
	require.Len(t, interactions, 1)
	assert.Equal(t, answer.Metadata.ResponseID, interactions[0].ID)
	assert.Equal(t, "kofi", interactions[0].ContextAtTime.UserID)
	assert.Equal(t, "achats", interactions[0].ContextAtTime.Module)

	var profile assistant.PersonalizedExperience
	resp = call(t, s, "learning/profile", ProfileParams{UserID: "kofi"}, &profile)
	require.Nil(t, resp.Error)
	require.NotNil(t, profile.Profile)
	assert.Equal(t, 1, profile.Profile.FrequentTopics["howTo"])
}

func TestFeedbackWithoutKnownResponse(t *testing.T) {
	s := newTestServer(t)

	resp := call(t, s, "chat/feedback", FeedbackParams{ResponseID: "missing", Feedback: learning.FeedbackNegative}, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)

	resp = call(t, s, "chat/feedback", FeedbackParams{ResponseID: "missing", Query: "tva", Feedback: learning.FeedbackNegative}, nil)
	require.Nil(t, resp.Error)
	assert.Len(t, s.gen.Learning().Interactions(), 1)

	resp = call(t, s, "chat/feedback", FeedbackParams{Query: "tva", Feedback: "meh"}, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)
}

func TestInsightsAndExport(t *testing.T) {
	s := newTestServer(t)

	var insights learning.LearningInsights
	resp := call(t, s, "learning/insights", nil, &insights)
	require.Nil(t, resp.Error)
	assert.Equal(t, 0, insights.TotalInteractions)

	var export learning.ExportData
	resp = call(t, s, "learning/export", nil, &export)
	require.Nil(t, resp.Error)
	assert.Empty(t, export.Interactions)
}

func TestKnowledgeSearch(t *testing.T) {
	s := newTestServer(t)

	var result struct {
		Entries []knowledge.Entry `json:"entries"`
	}
	resp := call(t, s, "knowledge/search", SearchParams{Query: "facture", Limit: 1}, &result)
	require.Nil(t, resp.Error)
	assert.Len(t, result.Entries, 1)

	resp = call(t, s, "knowledge/search", SearchParams{Query: ""}, &result)
	require.Nil(t, resp.Error)
	assert.NotNil(t, result.Entries)
	assert.Empty(t, result.Entries)
}

func TestHandleErrors(t *testing.T) {
	s := newTestServer(t)

	resp := s.Handle([]byte(`{not json`))
	require.NotNil(t, resp)
	assert.Equal(t, CodeParseError, resp.Error.Code)
	assert.Nil(t, resp.ID)

	resp = call(t, s, "tools/list", nil, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotFound, resp.Error.Code)

	resp = s.Handle([]byte(`{"jsonrpc":"2.0","id":7,"method":"chat/ask","params":"oops"}`))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)
	assert.Equal(t, float64(7), resp.ID)
}

func TestNotificationsGetNoResponse(t *testing.T) {
	s := newTestServer(t)

	assert.Nil(t, s.Handle([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)))
	assert.Nil(t, s.Handle([]byte(`{"jsonrpc":"2.0","method":"chat/ask","params":{"query":"tva"}}`)))
}

func TestPendingIsBounded(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < maxPending+5; i++ {
		s.remember(string(rune('a'+i%26))+strings.Repeat("x", i), askRecord{query: "q"})
	}
	assert.Len(t, s.pending, maxPending)
	assert.Len(t, s.order, maxPending)
	_, ok := s.recall("a")
	assert.False(t, ok, "oldest answer is evicted")
}

func TestRun(t *testing.T) {
	s := newTestServer(t)

	in := strings.NewReader(strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		``,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"chat/ask","params":{"query":"Où trouver le bilan ?"}}`,
		`{"jsonrpc":"2.0","id":3,"method":"nope"}`,
	}, "\n"))
	var out bytes.Buffer

	require.NoError(t, s.Run(context.Background(), in, &out))

	var responses []Response
	scanner := bufio.NewScanner(&out)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		var r Response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		responses = append(responses, r)
	}

	require.Len(t, responses, 3)
	assert.Equal(t, float64(1), responses[0].ID)
	assert.Nil(t, responses[0].Error)
	assert.Equal(t, float64(2), responses[1].ID)
	assert.Nil(t, responses[1].Error)
	assert.Equal(t, float64(3), responses[2].ID)
	assert.Equal(t, CodeMethodNotFound, responses[2].Error.Code)
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := s.Run(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`), &out)
	assert.NoError(t, err)
}

func TestRunCancelWhileReadBlocked(t *testing.T) {
	s := newTestServer(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	pr, pw := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, pr, io.Discard) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// Closing the input releases the blocked reader.
	pw.Close()
}
