package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lesson-notes-server/internal/config"
	"lesson-notes-server/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewOpenAIClient(config.OpenAIConfig{
		APIKey:      "sk-test",
		BaseURL:     srv.URL + "/",
		Model:       "gpt-3.5-turbo",
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	}, logger.Nop())
}

func TestOpenAIClient_GenerateText(t *testing.T) {
	var got chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
	})

	text, err := client.GenerateText(context.Background(), "sys", "usr")
	require.NoError(t, err)

	assert.Equal(t, "hello", text)
	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "sys"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "usr"}, got.Messages[1])
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	text, err := client.GenerateText(context.Background(), "sys", "usr")
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
}

func TestOpenAIClient_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	})

	_, err := client.GenerateText(context.Background(), "sys", "usr")
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
}

func TestOpenAIClient_NotConfigured(t *testing.T) {
	client := NewOpenAIClient(config.OpenAIConfig{BaseURL: "http://unused"}, logger.Nop())

	_, err := client.GenerateText(context.Background(), "sys", "usr")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
