package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"deutsch/src/config"
	apperrors "deutsch/src/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int) *OllamaClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewOllamaClient(&config.OllamaConfig{
		URL:        srv.URL + "/",
		Model:      "llama3.1",
		Timeout:    config.Duration{Duration: 2 * time.Second},
		MaxRetries: retries,
	}, zap.NewNop())
	c.backoff = time.Millisecond
	return c
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	var got generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(generateResponse{Response: "der Hund, die Hunde", Done: true})
	}, 0)

	out, err := c.Translate(context.Background(), "dog")
	require.NoError(t, err)
	assert.Equal(t, "der Hund, die Hunde", out)

	assert.Equal(t, "llama3.1", got.Model)
	assert.False(t, got.Stream)
	assert.Contains(t, got.Prompt, "'dog'")
	assert.Contains(t, got.Prompt, "plural")
}

func TestAnalyzePrompt(t *testing.T) {
	t.Parallel()

	var prompt string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompt = req.Prompt
		json.NewEncoder(w).Encode(generateResponse{Response: "### Grammar\nok"})
	}, 0)

	_, err := c.Analyze(context.Background(), "Ich gebe meiner Mutter das Buch.")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Ich gebe meiner Mutter das Buch.")
	assert.Contains(t, prompt, "grammar")
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "fine"})
	}, 2)

	out, err := c.Translate(context.Background(), "Haus")
	require.NoError(t, err)
	assert.Equal(t, "fine", out)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGenerateGivesUpAfterRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}, 1)

	_, err := c.Translate(context.Background(), "Haus")
	require.Error(t, err)

	var ae *apperrors.AssistantError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusInternalServerError, ae.StatusCode)
	assert.Equal(t, "boom", ae.Message)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}, 3)

	_, err := c.Translate(context.Background(), "Haus")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAssistantResponse)
	assert.False(t, apperrors.IsRetryable(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateRejectsUnusableResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>"},
		{"empty", `{"response":"   ","done":true}`},
		{"error field", `{"error":"out of memory"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}, 2)

			_, err := c.Analyze(context.Background(), "Ich bin hier.")
			assert.ErrorIs(t, err, apperrors.ErrAssistantResponse)
		})
	}
}

func TestGenerateConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewOllamaClient(&config.OllamaConfig{URL: url, Model: "m"}, nil)
	c.backoff = time.Millisecond

	_, err := c.Translate(context.Background(), "Haus")
	assert.ErrorIs(t, err, apperrors.ErrAssistantConnection)
	assert.True(t, apperrors.IsRetryable(err))
}

func TestGenerateTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c := NewOllamaClient(&config.OllamaConfig{
		URL:     srv.URL,
		Model:   "m",
		Timeout: config.Duration{Duration: 50 * time.Millisecond},
	}, nil)

	_, err := c.Translate(context.Background(), "Haus")
	assert.ErrorIs(t, err, apperrors.ErrAssistantTimeout)
}

func TestIsAvailable(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models":[{"name":"llama3.1:latest"}]}`))
	}, 0)
	assert.True(t, c.IsAvailable(context.Background()))

	other := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"mistral"}]}`))
	}, 0)
	assert.False(t, other.IsAvailable(context.Background()))
}

func TestSections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []Section
	}{
		{
			name: "headed parts",
			in:   "Analysis:\n### Grammar\nDativ after mit.\n\n### Meaning\nI go with my mother.\n",
			want: []Section{
				{Title: "", Body: "Analysis:"},
				{Title: "Grammar", Body: "Dativ after mit."},
				{Title: "Meaning", Body: "I go with my mother."},
			},
		},
		{
			name: "no headings",
			in:   "just text",
			want: []Section{{Body: "just text"}},
		},
		{
			name: "empty",
			in:   "  \n",
			want: nil,
		},
		{
			name: "heading without body",
			in:   "### Vocabulary\r\n",
			want: []Section{{Title: "Vocabulary"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Sections(tt.in))
		})
	}
}

func TestTranslationSections(t *testing.T) {
	t.Parallel()

	got := TranslationSections("der Hund (m), die Hunde\n### Notes\nregular plural")
	assert.Equal(t, []Section{
		{Title: "Translation", Body: "der Hund (m), die Hunde"},
		{Title: "Notes", Body: "regular plural"},
	}, got)
}
