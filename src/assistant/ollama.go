// Package assistant asks a local language model to translate words and
// explain German sentences.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"deutsch/src/config"
	apperrors "deutsch/src/errors"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Assistant is the language model collaborator of the CLI.
type Assistant interface {
	Translate(ctx context.Context, text string) (string, error)
	Analyze(ctx context.Context, sentence string) (string, error)
	GenerateSentences(ctx context.Context, instruction string) ([]SentencePair, error)
}

const defaultTimeout = 60 * time.Second

var _ Assistant = (*OllamaClient)(nil)

type OllamaClient struct {
	baseURL    string
	model      string
	client     *http.Client
	maxRetries int
	backoff    time.Duration
	log        *zap.Logger
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

func NewOllamaClient(cfg *config.OllamaConfig, log *zap.Logger) *OllamaClient {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OllamaClient{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		backoff:    500 * time.Millisecond,
		client: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Model is the name of the model requests are sent to.
func (c *OllamaClient) Model() string {
	return c.model
}

// Translate translates between German and English. Single words come back
// with articles, gender and plural.
func (c *OllamaClient) Translate(ctx context.Context, text string) (string, error) {
	return c.generate(ctx, "translate", TranslatePrompt(text))
}

// Analyze explains the grammar, vocabulary and meaning of a German sentence.
func (c *OllamaClient) Analyze(ctx context.Context, sentence string) (string, error) {
	return c.generate(ctx, "analyze", AnalyzePrompt(sentence))
}

func TranslatePrompt(text string) string {
	return fmt.Sprintf("Translate the following German to English or English to German: '%s'.\n"+
		"If a single word is given, provide the singular and plural forms and articles. "+
		"Mention the gender of the articles.\n"+
		"Correct, if necessary.\n", text)
}

func AnalyzePrompt(sentence string) string {
	return fmt.Sprintf("Analyze the following German sentence: '%s'. "+
		"Explain the grammar, vocabulary, and meaning. "+
		"Start each part with a '### ' heading.", sentence)
}

func (c *OllamaClient) generate(ctx context.Context, op, prompt string) (string, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.backoff

	attempt := 0
	out, err := backoff.Retry(ctx, func() (string, error) {
		attempt++
		text, err := c.generateOnce(ctx, op, prompt)
		if err != nil && !apperrors.IsRetryable(err) {
			return "", backoff.Permanent(err)
		}
		return text, err
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.log.Warn("assistant request failed, retrying",
				zap.String("operation", op),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err))
		}),
	)
	if err != nil {
		return "", err
	}

	c.log.Debug("assistant answered",
		zap.String("operation", op),
		zap.String("model", c.model),
		zap.Int("attempts", attempt),
		zap.Int("chars", len(out)))
	return out, nil
}

func (c *OllamaClient) generateOnce(ctx context.Context, op, prompt string) (string, error) {
	jsonData, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", c.transportError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.transportError(op, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &apperrors.AssistantError{
			Model:      c.model,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Err:        apperrors.ErrAssistantResponse,
		}
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", &apperrors.AssistantError{
			Model:     c.model,
			Operation: op,
			Err:       fmt.Errorf("%w: %v", apperrors.ErrAssistantResponse, err),
		}
	}
	if genResp.Error != "" || strings.TrimSpace(genResp.Response) == "" {
		msg := genResp.Error
		if msg == "" {
			msg = "empty response"
		}
		return "", &apperrors.AssistantError{
			Model:     c.model,
			Operation: op,
			Err:       fmt.Errorf("%w: %s", apperrors.ErrAssistantResponse, msg),
		}
	}

	return genResp.Response, nil
}

func (c *OllamaClient) transportError(op string, err error) error {
	sentinel := apperrors.ErrAssistantConnection
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		sentinel = apperrors.ErrAssistantTimeout
	}
	return &apperrors.AssistantError{
		Model:     c.model,
		Operation: op,
		Err:       fmt.Errorf("%w: %v", sentinel, err),
	}
}

// IsAvailable checks that the server is up and has the configured model.
func (c *OllamaClient) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var tagsResp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tagsResp); err != nil {
		return false
	}

	for _, model := range tagsResp.Models {
		if model.Name == c.model || model.Name == c.model+":latest" {
			return true
		}
	}
	return false
}
