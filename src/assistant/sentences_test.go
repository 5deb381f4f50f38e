package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	apperrors "deutsch/src/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSentences(t *testing.T) {
	t.Parallel()

	var got generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(generateResponse{
			Response: "```json\n[{\"german\": \"Ich helfe meiner Schwester.\", \"english\": \"I help my sister.\"}]\n```",
			Done:     true,
		})
	}, 0)

	pairs, err := c.GenerateSentences(context.Background(), "dative after helfen")
	require.NoError(t, err)
	assert.Equal(t, []SentencePair{{German: "Ich helfe meiner Schwester.", English: "I help my sister."}}, pairs)
	assert.Contains(t, got.Prompt, `"dative after helfen"`)
	assert.Contains(t, got.Prompt, "JSON array")
}

func TestGenerateSentencesUnusableResponse(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(generateResponse{Response: "Sorry, I can't do that.", Done: true})
	}, 2)

	_, err := c.GenerateSentences(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAssistantResponse)
	assert.Equal(t, int32(1), calls.Load())
}

func TestParseSentencePairs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		want     []SentencePair
		wantErr  bool
	}{
		{
			name:     "plain array",
			response: `[{"german": "Das ist mein Hund.", "english": "That is my dog."}]`,
			want:     []SentencePair{{German: "Das ist mein Hund.", English: "That is my dog."}},
		},
		{
			name:     "text around the array",
			response: "Here you go:\n[{\"german\": \" Guten Morgen! \", \"english\": \"Good morning!\"}]\nViel Spaß!",
			want:     []SentencePair{{German: "Guten Morgen!", English: "Good morning!"}},
		},
		{
			name:     "incomplete pairs dropped",
			response: `[{"german": "Danke.", "english": ""}, {"german": "Bitte.", "english": "Please."}]`,
			want:     []SentencePair{{German: "Bitte.", English: "Please."}},
		},
		{name: "no array", response: "no json here", wantErr: true},
		{name: "broken json", response: `[{"german": }]`, wantErr: true},
		{name: "only incomplete pairs", response: `[{"german": "Danke."}]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSentencePairs(tt.response)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrAssistantResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
