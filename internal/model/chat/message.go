package chat

import "time"

const (
	SenderCustomer  = "user"
	SenderAssistant = "assistant"
)

// Message persists individual turns for audit/debug and for answer history.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Sender         string    `json:"sender"`
	Content        string    `json:"content"`
	Intent         string    `json:"intent,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
