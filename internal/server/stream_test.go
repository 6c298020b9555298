package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/akarsten/demodash-go/internal/chat"
	"github.com/akarsten/demodash-go/internal/instructions"
	"github.com/akarsten/demodash-go/internal/llm"
	"github.com/akarsten/demodash-go/internal/metrics"
	"github.com/akarsten/demodash-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLLM returns a canned stream or error and records how often it was
// called, which lets tests assert that rejected requests never reach the
// provider.
type fakeLLM struct {
	stream   *fakeStream
	err      error
	calls    int
	messages []chat.Message
}

func (f *fakeLLM) StreamCompletion(_ context.Context, messages []chat.Message) (llm.Stream, error) {
	f.calls++
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return f.stream, nil
}

func newTestServer(t *testing.T, client llm.Client) (*Server, string) {
	t.Helper()
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "public", "markdown"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(base, "public", "markdown", "acme-support.md"),
		[]byte("You are the Acme support assistant."), 0o644))

	st, err := store.New(base, 8, discardLogger())
	require.NoError(t, err)

	return New(st, instructions.New(base), client, metrics.NewCollector(), discardLogger()), base
}

func postStream(t *testing.T, s *Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/stream", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestStreamRejectsIncompleteRequests(t *testing.T) {
	client := &fakeLLM{stream: &fakeStream{}}
	s, _ := newTestServer(t, client)

	tests := map[string]map[string]any{
		"missing prompt":    {"assistantId": "support", "demoId": "acme"},
		"missing assistant": {"prompt": "hi", "demoId": "acme"},
		"missing demo":      {"prompt": "hi", "assistantId": "support"},
		"empty body":        {},
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := postStream(t, s, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Missing required fields"}`, rec.Body.String())
		})
	}
	assert.Zero(t, client.calls, "rejected requests must not reach the provider")
}

func TestStreamUnknownAssistant(t *testing.T) {
	client := &fakeLLM{stream: &fakeStream{}}
	s, _ := newTestServer(t, client)

	rec := postStream(t, s, map[string]any{
		"prompt": "hi", "assistantId": "nonexistent", "demoId": "acme",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Assistant instructions not found"}`, rec.Body.String())
	assert.Zero(t, client.calls)
}

func TestStreamConnectFailure(t *testing.T) {
	client := &fakeLLM{err: errors.New("401 invalid api key")}
	s, _ := newTestServer(t, client)

	rec := postStream(t, s, map[string]any{
		"prompt": "hi", "assistantId": "support", "demoId": "acme",
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to process chat request"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "api key")
}

func TestStreamWithoutProvider(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := postStream(t, s, map[string]any{
		"prompt": "hi", "assistantId": "support", "demoId": "acme",
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Chat streaming is not configured"}`, rec.Body.String())
}

func TestStreamSuccess(t *testing.T) {
	client := &fakeLLM{stream: &fakeStream{events: []llm.DeltaEvent{
		{ItemID: "msg_1", Delta: "Hello"},
		{ItemID: "msg_1", Delta: " there"},
	}}}
	s, _ := newTestServer(t, client)

	rec := postStream(t, s, map[string]any{
		"prompt": "greet me", "assistantId": "support", "demoId": "acme",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rec.Header().Get("Connection"))

	frames := parseFrames(t, rec.Body.String())
	require.Len(t, frames, 2)
	assert.Equal(t, "Hello", frames[0]["delta"])
	assert.Equal(t, " there", frames[1]["delta"])
	assert.Equal(t, 1, client.stream.closes)

	// Instructions ride along as the system message.
	require.NotEmpty(t, client.messages)
	assert.Equal(t, chat.RoleSystem, client.messages[0].Role)
	assert.Equal(t, "You are the Acme support assistant.", client.messages[0].Content)
	assert.Equal(t, chat.Message{Role: chat.RoleUser, Content: "greet me"}, client.messages[1])
}

func TestStreamUsesHistoryVerbatim(t *testing.T) {
	client := &fakeLLM{stream: &fakeStream{}}
	s, _ := newTestServer(t, client)

	rec := postStream(t, s, map[string]any{
		"prompt":      "and now?",
		"assistantId": "support",
		"demoId":      "acme",
		"messageHistory": []map[string]string{
			{"role": "user", "content": "first question"},
			{"role": "assistant", "content": "first answer"},
			{"role": "user", "content": "and now?"},
		},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, client.messages, 4)
	assert.Equal(t, chat.RoleSystem, client.messages[0].Role)
	assert.Equal(t, "and now?", client.messages[3].Content)
}
