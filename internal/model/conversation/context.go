package conversation

import (
	"strings"
	"time"

	"github.com/zhouzirui/menu-assistant/backend/internal/model/order"
)

// Context is the short-term state kept per sender and branch between turns.
type Context struct {
	SenderID             string      `json:"senderId"`
	BranchID             string      `json:"branchId"`
	LastIntent           string      `json:"lastIntent,omitempty"`
	PendingCart          *order.Cart `json:"pendingCart,omitempty"`
	AwaitingConfirmation bool        `json:"awaitingConfirmation"`
	AwaitingPartySize    bool        `json:"awaitingPartySize"`
	LastMenuShownAt      *time.Time  `json:"lastMenuShownAt,omitempty"`
	ActiveSessionID      string      `json:"activeSessionId,omitempty"`
	LastPartySize        int         `json:"lastPartySize,omitempty"`
	LastMealContext      string      `json:"lastMealContext,omitempty"`
	// RecentTemplates holds the ids of the last reply templates used, newest last.
	RecentTemplates []string `json:"recentTemplates,omitempty"`
	// LastReplyTemplates holds the template ids of the previous reply only.
	LastReplyTemplates []string  `json:"lastReplyTemplates,omitempty"`
	LastOrderID        string    `json:"lastOrderId,omitempty"`
	Turns              int       `json:"turns"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// HasPendingCart reports whether an unconfirmed, non-empty cart exists.
func (c *Context) HasPendingCart() bool {
	return c.PendingCart != nil && !c.PendingCart.IsEmpty()
}

// RememberTemplate records a template id, keeping at most limit entries.
func (c *Context) RememberTemplate(id string, limit int) {
	if id == "" {
		return
	}
	c.RecentTemplates = append(c.RecentTemplates, id)
	if limit > 0 && len(c.RecentTemplates) > limit {
		c.RecentTemplates = append([]string(nil), c.RecentTemplates[len(c.RecentTemplates)-limit:]...)
	}
}

// UsedRecently reports whether id is among the remembered templates.
func (c *Context) UsedRecently(id string) bool {
	for _, used := range c.RecentTemplates {
		if used == id {
			return true
		}
	}
	return false
}

// LastReplyUsed reports whether the previous reply used a template whose
// id starts with prefix.
func (c *Context) LastReplyUsed(prefix string) bool {
	for _, used := range c.LastReplyTemplates {
		if strings.HasPrefix(used, prefix) {
			return true
		}
	}
	return false
}

// TemplateAge reports how many templates were used since id was last used,
// 0 meaning it was the newest. It returns -1 when id is not remembered.
func (c *Context) TemplateAge(id string) int {
	for i := len(c.RecentTemplates) - 1; i >= 0; i-- {
		if c.RecentTemplates[i] == id {
			return len(c.RecentTemplates) - 1 - i
		}
	}
	return -1
}
