// Package feedback drafts reviewer notes for submitted mock interviews with
// an LLM.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/interview-prep/backend/internal/config"
	"github.com/interview-prep/backend/internal/models"
)

const (
	defaultAnthropicModel = "claude-opus-4-5-20251101"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultTimeout        = 20 * time.Second
)

// Drafter wraps an LLMClient with the mock-interview prompt.
type Drafter struct {
	llm     LLMClient
	model   string
	timeout time.Duration
}

func NewDrafter(llm LLMClient, model string) *Drafter {
	return &Drafter{llm: llm, model: model, timeout: defaultTimeout}
}

// New builds the drafter for the configured provider. It returns nil when
// feedback drafting is disabled.
func New(cfg config.FeedbackConfig) (*Drafter, error) {
	model := cfg.Model
	switch cfg.Provider {
	case config.FeedbackNone, "":
		return nil, nil
	case config.FeedbackMock:
		slog.Info("feedback drafts use mock data")
		return NewDrafter(NewMockClient(), "mock"), nil
	case config.FeedbackAnthropic:
		if model == "" {
			model = defaultAnthropicModel
		}
		slog.Info("feedback drafts use Anthropic API", "model", model)
		return NewDrafter(NewAPIClient(cfg.APIKey, model), model), nil
	case config.FeedbackOpenAI:
		if model == "" {
			model = defaultOpenAIModel
		}
		slog.Info("feedback drafts use OpenAI-compatible API", "model", model, "base_url", cfg.BaseURL)
		return NewDrafter(NewOpenAIClient(cfg.BaseURL, cfg.APIKey, model), model), nil
	default:
		return nil, fmt.Errorf("unknown feedback provider %q", cfg.Provider)
	}
}

func (d *Drafter) ModelName() string {
	return d.model
}

// Draft returns reviewer-facing text for a submitted mock interview.
func (d *Drafter) Draft(ctx context.Context, mock *models.MockInterview) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := d.llm.Generate(ctx, SystemPrompt(), BuildUserPrompt(mock))
	if err != nil {
		return "", fmt.Errorf("generate feedback: %w", err)
	}
	slog.Debug("feedback drafted", "mock", mock.ID, "prompt_tokens", resp.PromptTokens, "output_tokens", resp.OutputTokens)

	draft, err := ParseDraft(resp.Content)
	if err != nil {
		return "", fmt.Errorf("parse feedback: %w", err)
	}
	return draft.Render(), nil
}
