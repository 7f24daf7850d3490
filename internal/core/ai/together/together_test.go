package together

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"cocktail-generator/internal/core/ai/image"
	"cocktail-generator/internal/core/ai/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatCompletionBody = `{
	"id": "cmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "mistralai/Mixtral-8x7B-Instruct-v0.1",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "gin, lime juice, mint"}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 12, "completion_tokens": 6, "total_tokens": 18}
}`

func TestTextClientGenerate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer tg-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatCompletionBody))
	}))
	defer srv.Close()

	client, err := NewTextClient(provider.Config{
		APIKey:  "tg-key",
		Model:   "mistralai/Mixtral-8x7B-Instruct-v0.1",
		BaseURL: srv.URL + "/v1",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	resp, err := client.Generate(context.Background(), &provider.Request{
		Messages:    provider.SystemAndUser("You are a skilled bartender.", "List ingredients"),
		MaxTokens:   100,
		Temperature: 0.9,
	})
	require.NoError(t, err)

	assert.Equal(t, "gin, lime juice, mint", resp.Content)
	assert.Equal(t, 18, resp.Usage.TotalTokens)
	assert.Equal(t, "mistralai/Mixtral-8x7B-Instruct-v0.1", got["model"])
	assert.EqualValues(t, 100, got["max_tokens"])
	assert.InDelta(t, 0.9, got["temperature"], 1e-9)

	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestTextClientDoesNotRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer srv.Close()

	client, err := NewTextClient(provider.Config{APIKey: "k", Model: "m", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), &provider.Request{
		Messages: provider.SystemAndUser("", "hi"),
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNewTextClientRequiresKeyAndModel(t *testing.T) {
	_, err := NewTextClient(provider.Config{Model: "m"})
	assert.Error(t, err)
	_, err = NewTextClient(provider.Config{APIKey: "k"})
	assert.Error(t, err)
}

func TestImageClientGenerate(t *testing.T) {
	var got imageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer tg-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"url":"https://img.example.com/a.png"}]}`))
	}))
	defer srv.Close()

	client, err := NewImageClient("tg-key", srv.URL, time.Second)
	require.NoError(t, err)

	url, err := client.Generate(context.Background(), &image.Request{
		Prompt: "A professional photograph",
		Model:  "black-forest-labs/FLUX.1-schnell",
		Steps:  8,
		Width:  1024,
		Height: 1024,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://img.example.com/a.png", url)
	assert.Equal(t, imageRequest{
		Model:  "black-forest-labs/FLUX.1-schnell",
		Prompt: "A professional photograph",
		Steps:  8,
		Width:  1024,
		Height: 1024,
		N:      1,
	}, got)
}

func TestImageClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"api error message", http.StatusBadRequest, `{"error":{"message":"invalid prompt"}}`, "invalid prompt"},
		{"plain error body", http.StatusBadGateway, `bad gateway`, "status 502"},
		{"empty data", http.StatusOK, `{"data":[]}`, "no image url"},
		{"empty url", http.StatusOK, `{"data":[{"url":""}]}`, "no image url"},
		{"invalid json", http.StatusOK, `not json`, "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, err := NewImageClient("k", srv.URL, time.Second)
			require.NoError(t, err)

			_, err = client.Generate(context.Background(), &image.Request{
				Prompt: "p", Model: "m", Steps: 1, Width: 1, Height: 1,
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestImageClientRejectsEmptyPrompt(t *testing.T) {
	client, err := NewImageClient("k", "http://127.0.0.1:0", time.Second)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), &image.Request{Model: "m", Steps: 1, Width: 1, Height: 1})
	assert.ErrorIs(t, err, image.ErrEmptyPrompt)
}
