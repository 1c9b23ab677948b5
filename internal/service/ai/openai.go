package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/zhouzirui/menu-assistant/backend/internal/model/chat"
)

// OpenAIClient answers questions with the OpenAI chat completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIClient builds a client for apiKey. An empty model uses GPT-4o mini;
// a non-empty baseURL points the client at a compatible endpoint.
func NewOpenAIClient(apiKey, model, baseURL string, logger *zap.Logger) *OpenAIClient {
	if model == "" {
		model = openai.GPT4oMini
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger.Named("openai"),
	}
}

// Answer sends the system prompt, recent history and the question.
func (c *OpenAIClient) Answer(ctx context.Context, q Question) (string, error) {
	history := recentHistory(q.History)
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: BuildSystemPrompt(q),
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Sender == chat.SenderAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: q.Text,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		c.logger.Warn("empty choices", zap.String("model", c.model))
		return "", ErrEmptyAnswer
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}
