package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "deutsch/src/errors"
)

// SentencePair is a generated German sentence and its English translation
type SentencePair struct {
	German  string `json:"german"`
	English string `json:"english"`
}

func SentencesPrompt(instruction string) string {
	return fmt.Sprintf("Generate 8-10 German-English sentence pairs based on this instruction: %q\n\n"+
		"Requirements:\n"+
		"- Each sentence should demonstrate the requested grammar concept\n"+
		"- Keep sentences practical and conversational\n"+
		"- Provide the German sentence and its English translation\n"+
		"- Format as a JSON array of objects with \"german\" and \"english\" keys\n"+
		"- Use natural, spoken German appropriate for learners\n\n"+
		"Return ONLY the JSON array, no other text.", instruction)
}

// GenerateSentences asks for practice sentences that follow instruction.
func (c *OllamaClient) GenerateSentences(ctx context.Context, instruction string) ([]SentencePair, error) {
	resp, err := c.generate(ctx, "sentences", SentencesPrompt(instruction))
	if err != nil {
		return nil, err
	}

	pairs, err := ParseSentencePairs(resp)
	if err != nil {
		return nil, &apperrors.AssistantError{
			Model:     c.model,
			Operation: "sentences",
			Err:       err,
		}
	}
	return pairs, nil
}

// ParseSentencePairs reads the JSON array from a model response. Code
// fences and text around the array are ignored, as are pairs missing
// either side.
func ParseSentencePairs(response string) ([]SentencePair, error) {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON array in response", apperrors.ErrAssistantResponse)
	}

	var raw []SentencePair
	if err := json.Unmarshal([]byte(response[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrAssistantResponse, err)
	}

	pairs := make([]SentencePair, 0, len(raw))
	for _, p := range raw {
		p.German = strings.TrimSpace(p.German)
		p.English = strings.TrimSpace(p.English)
		if p.German == "" || p.English == "" {
			continue
		}
		pairs = append(pairs, p)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no sentence pairs", apperrors.ErrAssistantResponse)
	}
	return pairs, nil
}
