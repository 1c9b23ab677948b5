package recommendation

import (
	"time"

	"github.com/zhouzirui/menu-assistant/backend/internal/model/catalog"
	"github.com/zhouzirui/menu-assistant/backend/internal/model/order"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Tier groups party sizes that share a question set.
type Tier string

const (
	TierSmall  Tier = "small"
	TierMedium Tier = "medium"
	TierLarge  Tier = "large"
)

// Answer is a resolved reply to one question.
type Answer struct {
	QuestionID string   `json:"questionId"`
	Option     string   `json:"option"`
	Tags       []string `json:"tags,omitempty"`
	Raw        string   `json:"raw"`
}

// Session is a guided question flow that ends in a suggested order.
type Session struct {
	ID                 string    `json:"id"`
	SenderID           string    `json:"senderId"`
	BranchID           string    `json:"branchId"`
	BusinessID         string    `json:"businessId"`
	PartySize          int       `json:"partySize"`
	MealContext        string    `json:"mealContext,omitempty"`
	Tier               Tier      `json:"tier"`
	Step               int       `json:"step"`
	TotalSteps         int       `json:"totalSteps"`
	QuestionIDs        []string  `json:"questionIds"`
	Answers            []Answer  `json:"answers"`
	QuestionSequenceID int       `json:"questionSequenceId"`
	WordingVariant     int       `json:"wordingVariant"`
	Status             Status    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Question is what the customer is asked at one step.
type Question struct {
	ID         string   `json:"id"`
	Prompt     string   `json:"prompt"`
	Options    []string `json:"options"`
	StepIndex  int      `json:"stepIndex"`
	TotalSteps int      `json:"totalSteps"`
}

// RankedItem is one product of a final recommendation.
type RankedItem struct {
	Entry    catalog.Entry `json:"entry"`
	Quantity int           `json:"quantity"`
	Score    int           `json:"score"`
}

// Final is the outcome of a completed session.
type Final struct {
	SessionID string       `json:"sessionId"`
	Items     []RankedItem `json:"items"`
	Suggested order.Cart   `json:"suggested"`
}

// Step is either the next question or the final recommendation.
type Step struct {
	Question *Question `json:"question,omitempty"`
	Final    *Final    `json:"final,omitempty"`
}
