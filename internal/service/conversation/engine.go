// Package conversation turns one inbound chat message into one reply. It
// classifies the message, drives the order cart and the recommendation
// flow, and keeps per-sender state in a keyed record store.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zhouzirui/menu-assistant/backend/internal/analysis/intent"
	"github.com/zhouzirui/menu-assistant/backend/internal/keylock"
	"github.com/zhouzirui/menu-assistant/backend/internal/model/catalog"
	chatmodel "github.com/zhouzirui/menu-assistant/backend/internal/model/chat"
	model "github.com/zhouzirui/menu-assistant/backend/internal/model/conversation"
	"github.com/zhouzirui/menu-assistant/backend/internal/model/order"
	recomodel "github.com/zhouzirui/menu-assistant/backend/internal/model/recommendation"
	"github.com/zhouzirui/menu-assistant/backend/internal/service/ai"
	"github.com/zhouzirui/menu-assistant/backend/internal/service/chat"
	"github.com/zhouzirui/menu-assistant/backend/internal/service/orders"
	"github.com/zhouzirui/menu-assistant/backend/internal/service/recommendation"
	"github.com/zhouzirui/menu-assistant/backend/internal/store"
)

const contextNamespace = "conversation_context"

// Request is one inbound chat message.
type Request struct {
	BranchID     string            `json:"branchId"`
	SenderID     string            `json:"senderId"`
	Text         string            `json:"text"`
	BusinessType string            `json:"businessType,omitempty"`
	BusinessID   string            `json:"businessId,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Reply is the engine's answer to a Request. Text is always set.
type Reply struct {
	Text           string              `json:"text"`
	Intent         intent.Kind         `json:"intent"`
	Cart           *order.Cart         `json:"cart,omitempty"`
	Question       *recomodel.Question `json:"question,omitempty"`
	Recommendation *recomodel.Final    `json:"recommendation,omitempty"`
	SessionID      string              `json:"sessionId,omitempty"`
	OrderID        string              `json:"orderId,omitempty"`
}

// Options carries the optional collaborators and tunables of an Engine.
type Options struct {
	// RecentTemplates is how many reply templates are remembered per sender.
	RecentTemplates int
	// HistoryLimit caps the transcript handed to the answerer.
	HistoryLimit int
	Answerer     ai.Answerer
	Transcript   *chat.Service
	Logger       *zap.Logger
}

// Engine answers chat messages. It is safe for concurrent use; messages of
// the same sender at the same branch are handled one at a time.
type Engine struct {
	catalog    catalog.Accessor
	machine    *recommendation.Machine
	sink       orders.Sink
	contexts   *store.Records[model.Context]
	locks      *keylock.Map
	answerer   ai.Answerer
	transcript *chat.Service
	recent     int
	history    int
	logger     *zap.Logger
	now        func() time.Time
}

// NewEngine wires an engine over its collaborators.
func NewEngine(accessor catalog.Accessor, machine *recommendation.Machine, sink orders.Sink, s store.Store, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	recent := opts.RecentTemplates
	if recent < 1 {
		recent = 6
	}
	history := opts.HistoryLimit
	if history < 1 {
		history = 6
	}
	return &Engine{
		catalog:    accessor,
		machine:    machine,
		sink:       sink,
		contexts:   store.NewRecords[model.Context](s, contextNamespace),
		locks:      keylock.New(),
		answerer:   opts.Answerer,
		transcript: opts.Transcript,
		recent:     recent,
		history:    history,
		logger:     logger.Named("conversation"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// turn is the working state of one Respond call.
type turn struct {
	req  Request
	ctx  *model.Context
	used []string
}

// Respond handles one message. It never fails: internal errors and panics
// become an apologetic reply and are logged.
func (e *Engine) Respond(ctx context.Context, req Request) (reply Reply) {
	key := store.Key(req.SenderID, req.BranchID)
	logger := e.logger.With(zap.String("sender", req.SenderID), zap.String("branch", req.BranchID))

	unlock, err := e.locks.Lock(ctx, key)
	if err != nil {
		logger.Warn("message dropped while waiting for lock", zap.Error(err))
		return Reply{Text: phrases["error"][0], Intent: intent.Generic}
	}
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while handling message", zap.Any("panic", r), zap.Stack("stack"))
			reply = Reply{Text: phrases["error"][0], Intent: intent.Generic}
		}
	}()

	c, err := e.loadContext(ctx, key, req)
	if err != nil {
		logger.Error("load conversation context", zap.Error(err))
		return Reply{Text: phrases["error"][0], Intent: intent.Generic}
	}
	t := &turn{req: req, ctx: &c}

	e.syncSession(ctx, t)
	inReco := c.ActiveSessionID != ""
	res := intent.Classify(req.Text, intent.State{
		AwaitingConfirmation: c.AwaitingConfirmation && !inReco,
		HasPendingCart:       c.HasPendingCart() && !inReco,
		InRecommendation:     inReco,
		AwaitingPartySize:    c.AwaitingPartySize,
	})

	reply, err = e.dispatch(ctx, t, res)
	if err != nil {
		logger.Error("handle message", zap.String("intent", string(res.Kind)), zap.Error(err))
		return Reply{Text: t.pick("error"), Intent: res.Kind}
	}
	reply.Intent = res.Kind

	c.LastIntent = string(res.Kind)
	c.Turns++
	c.UpdatedAt = e.now()
	rememberTurn(&c, t.used, e.recent)
	if err := e.contexts.Put(ctx, key, c); err != nil {
		logger.Error("save conversation context", zap.Error(err))
		return Reply{Text: phrases["error"][1], Intent: res.Kind}
	}

	e.record(ctx, key, req.Text, reply)
	logger.Info("message handled",
		zap.String("intent", string(res.Kind)),
		zap.String("session", c.ActiveSessionID),
		zap.Any("metadata", req.Metadata))
	return reply
}

// Context returns the stored state of a conversation.
func (e *Engine) Context(ctx context.Context, senderID, branchID string) (model.Context, error) {
	return e.contexts.Get(ctx, store.Key(senderID, branchID))
}

// Evict forgets a conversation, abandoning its active recommendation
// session. It is the hook for idle-timeout policies run outside the engine.
func (e *Engine) Evict(ctx context.Context, senderID, branchID string) error {
	key := store.Key(senderID, branchID)
	unlock, err := e.locks.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()

	c, err := e.contexts.Get(ctx, key)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load conversation context: %w", err)
	}
	if c.ActiveSessionID != "" {
		if err := e.machine.Abandon(ctx, c.ActiveSessionID); err != nil && !errors.Is(err, recommendation.ErrSessionNotFound) {
			return fmt.Errorf("abandon session: %w", err)
		}
	}
	if err := e.contexts.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete conversation context: %w", err)
	}
	if e.transcript != nil {
		e.transcript.Clear(ctx, key)
	}
	e.logger.Info("conversation evicted", zap.String("sender", senderID), zap.String("branch", branchID))
	return nil
}

func (e *Engine) loadContext(ctx context.Context, key string, req Request) (model.Context, error) {
	c, err := e.contexts.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		now := e.now()
		return model.Context{SenderID: req.SenderID, BranchID: req.BranchID, CreatedAt: now, UpdatedAt: now}, nil
	}
	return c, err
}

// syncSession drops the session reference when the session was completed
// or abandoned behind the engine's back.
func (e *Engine) syncSession(ctx context.Context, t *turn) {
	if t.ctx.ActiveSessionID == "" {
		return
	}
	session, err := e.machine.GetSession(ctx, t.ctx.ActiveSessionID)
	if err != nil || session.Status != recomodel.StatusActive {
		t.ctx.ActiveSessionID = ""
	}
}

func (e *Engine) dispatch(ctx context.Context, t *turn, res intent.Result) (Reply, error) {
	if res.Kind != intent.Recommend && res.Kind != intent.Generic {
		t.ctx.AwaitingPartySize = false
	}

	switch res.Kind {
	case intent.Greeting:
		return e.handleGreeting(ctx, t, res)
	case intent.MenuRequest:
		return e.handleMenu(ctx, t)
	case intent.Order:
		return e.handleOrder(ctx, t)
	case intent.Recommend:
		return e.handleRecommend(ctx, t, res)
	case intent.Answer:
		return e.handleAnswer(ctx, t)
	case intent.Confirm:
		return e.handleConfirm(ctx, t)
	case intent.Cancel:
		return e.handleCancel(ctx, t)
	default:
		return e.handleGeneric(ctx, t, res)
	}
}

// record appends both sides of the turn to the transcript when one is kept.
func (e *Engine) record(ctx context.Context, key, text string, reply Reply) {
	if e.transcript == nil {
		return
	}
	for _, msg := range []chatmodel.Message{
		{ConversationID: key, Sender: chatmodel.SenderCustomer, Content: text, Intent: string(reply.Intent)},
		{ConversationID: key, Sender: chatmodel.SenderAssistant, Content: reply.Text},
	} {
		if err := e.transcript.SaveMessage(ctx, msg); err != nil {
			e.logger.Warn("save transcript", zap.Error(err))
			return
		}
	}
}
