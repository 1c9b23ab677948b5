package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/zhouzirui/menu-assistant/backend/internal/config"
	"github.com/zhouzirui/menu-assistant/backend/internal/model/chat"
)

// Service answers questions through an eino chain: prompt template then chat model.
type Service struct {
	chain  compose.Runnable[map[string]any, *schema.Message]
	logger *zap.Logger
}

// NewService creates the chain over the Ark model described by cfg.
func NewService(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel, logger)
}

// NewServiceWithModel compiles the chain around an existing chat model.
func NewServiceWithModel(ctx context.Context, chatModel model.BaseChatModel, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{chain: runnable, logger: logger.Named("ai")}, nil
}

// Answer runs the chain for one customer question.
func (s *Service) Answer(ctx context.Context, q Question) (string, error) {
	response, err := s.chain.Invoke(ctx, map[string]any{
		"system":  BuildSystemPrompt(q),
		"history": buildHistoryMessages(q.History),
		"query":   q.Text,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	answer := strings.TrimSpace(response.Content)
	if answer == "" {
		return "", ErrEmptyAnswer
	}
	s.logger.Debug("generated answer", zap.Int("length", len(answer)))
	return answer, nil
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	messages = recentHistory(messages)
	if len(messages) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Sender {
		case chat.SenderCustomer:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.SenderAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}
