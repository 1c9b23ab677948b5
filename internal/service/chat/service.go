package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/menu-assistant/backend/internal/model/chat"
)

var ErrConversationRequired = errors.New("conversation id is required")

const defaultRetain = 50

// Service keeps a bounded transcript per conversation.
type Service struct {
	mu       sync.RWMutex
	retain   int
	messages map[string][]chat.Message
}

// NewService bootstraps the in-memory transcript service. retain caps the
// messages kept per conversation; values below 1 use the default.
func NewService(retain int) *Service {
	if retain < 1 {
		retain = defaultRetain
	}
	return &Service{
		retain:   retain,
		messages: make(map[string][]chat.Message),
	}
}

// SaveMessage appends a message to the conversation history, dropping the
// oldest turns beyond the retention cap.
func (s *Service) SaveMessage(_ context.Context, message chat.Message) error {
	if message.ConversationID == "" {
		return ErrConversationRequired
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.messages[message.ConversationID], message)
	if len(history) > s.retain {
		history = append([]chat.Message(nil), history[len(history)-s.retain:]...)
	}
	s.messages[message.ConversationID] = history
	return nil
}

// LoadTranscript returns up to limit of the most recent messages, oldest
// first. A limit below 1 returns everything retained.
func (s *Service) LoadTranscript(_ context.Context, conversationID string, limit int) ([]chat.Message, error) {
	if conversationID == "" {
		return nil, ErrConversationRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.messages[conversationID]
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// Clear forgets a conversation.
func (s *Service) Clear(_ context.Context, conversationID string) {
	s.mu.Lock()
	delete(s.messages, conversationID)
	s.mu.Unlock()
}
