// Package ai answers free-form customer questions about a menu with a
// language model. It is optional: the conversation engine falls back to
// canned prompts when no answerer is configured or a call fails.
package ai

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/zhouzirui/menu-assistant/backend/internal/config"
	"github.com/zhouzirui/menu-assistant/backend/internal/model/chat"
)

// ErrEmptyAnswer is returned when the model replies with no content.
var ErrEmptyAnswer = errors.New("model returned an empty answer")

// Question is everything a model needs to answer one customer message.
type Question struct {
	BusinessType string
	BranchName   string
	MenuText     string
	History      []chat.Message
	Text         string
}

// Answerer produces a reply to a free-form question.
type Answerer interface {
	Answer(ctx context.Context, q Question) (string, error)
}

// NewAnswerer returns the answerer selected by cfg, or nil when no provider
// credentials are configured.
func NewAnswerer(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (Answerer, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel, "", logger), nil
	default:
		svc, err := NewService(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
}
