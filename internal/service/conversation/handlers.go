package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zhouzirui/menu-assistant/backend/internal/analysis/intent"
	"github.com/zhouzirui/menu-assistant/backend/internal/analysis/orderparse"
	"github.com/zhouzirui/menu-assistant/backend/internal/model/catalog"
	"github.com/zhouzirui/menu-assistant/backend/internal/model/order"
	recomodel "github.com/zhouzirui/menu-assistant/backend/internal/model/recommendation"
	"github.com/zhouzirui/menu-assistant/backend/internal/service/ai"
	"github.com/zhouzirui/menu-assistant/backend/internal/service/recommendation"
	"github.com/zhouzirui/menu-assistant/backend/internal/store"
)

func (e *Engine) handleGreeting(ctx context.Context, t *turn, res intent.Result) (Reply, error) {
	// "hola, quiero 2 cafés" still places the order
	if !res.Question {
		reply, ok, err := e.tryOrder(ctx, t)
		if err != nil && !errors.Is(err, catalog.ErrCatalogUnavailable) {
			return Reply{}, err
		}
		if ok {
			return reply, nil
		}
	}
	return Reply{Text: t.pick(greetingGroup(t.req.BusinessType))}, nil
}

func (e *Engine) handleMenu(ctx context.Context, t *turn) (Reply, error) {
	menu, err := e.catalog.GetMenuText(ctx, t.req.BranchID)
	if errors.Is(err, catalog.ErrCatalogUnavailable) {
		return e.unavailable(t, err), nil
	}
	if err != nil {
		return Reply{}, err
	}
	now := e.now()
	t.ctx.LastMenuShownAt = &now
	return Reply{Text: joinLines(menu, t.pick("menu.followup"))}, nil
}

func (e *Engine) handleOrder(ctx context.Context, t *turn) (Reply, error) {
	reply, ok, err := e.tryOrder(ctx, t)
	if errors.Is(err, catalog.ErrCatalogUnavailable) {
		return e.unavailable(t, err), nil
	}
	if err != nil || ok {
		return reply, err
	}
	return Reply{Text: t.pick("order.notfound")}, nil
}

// tryOrder parses the message against the branch catalog and merges what it
// finds into the pending cart. ok is false when nothing was recognised.
func (e *Engine) tryOrder(ctx context.Context, t *turn) (Reply, bool, error) {
	cart, ok, err := e.mergeOrder(ctx, t)
	if err != nil || !ok {
		return Reply{}, false, err
	}
	return Reply{
		Text: joinLines(t.pick("order.added")+"\n"+cart.Summary(), t.pick("order.confirm")),
		Cart: &cart,
	}, true, nil
}

// mergeOrder adds the products named in the message to the pending cart and
// returns a copy of the result.
func (e *Engine) mergeOrder(ctx context.Context, t *turn) (order.Cart, bool, error) {
	entries, err := e.catalog.GetCatalog(ctx, t.req.BranchID)
	if err != nil {
		return order.Cart{}, false, err
	}

	parsed := orderparse.Parse(t.req.Text, entries)
	if parsed.IsEmpty() {
		return order.Cart{}, false, nil
	}

	if t.ctx.PendingCart == nil {
		t.ctx.PendingCart = &order.Cart{}
	}
	t.ctx.PendingCart.Merge(parsed)
	t.ctx.AwaitingConfirmation = true
	t.ctx.AwaitingPartySize = false
	return t.ctx.PendingCart.Clone(), true, nil
}

func (e *Engine) handleRecommend(ctx context.Context, t *turn, res intent.Result) (Reply, error) {
	if res.MealContext != "" {
		t.ctx.LastMealContext = res.MealContext
	}
	if res.PartySize < 1 {
		t.ctx.AwaitingPartySize = true
		return Reply{Text: t.pick("reco.ask_size")}, nil
	}
	return e.startSession(ctx, t, res.PartySize, "reco.start")
}

func (e *Engine) startSession(ctx context.Context, t *turn, partySize int, intro string) (Reply, error) {
	session, err := e.machine.CreateSession(ctx, t.req.SenderID, t.req.BranchID, t.req.BusinessID, partySize, t.ctx.LastMealContext)
	if err != nil {
		return Reply{}, fmt.Errorf("create session: %w", err)
	}
	t.ctx.ActiveSessionID = session.ID
	t.ctx.AwaitingPartySize = false
	t.ctx.LastPartySize = partySize
	t.ctx.LastMealContext = ""

	return e.advance(ctx, t, t.pick(intro))
}

func (e *Engine) handleAnswer(ctx context.Context, t *turn) (Reply, error) {
	accepted, err := e.machine.ProcessAnswer(ctx, t.ctx.ActiveSessionID, t.req.Text)
	if errors.Is(err, recommendation.ErrSessionNotFound) || errors.Is(err, recommendation.ErrSessionNotActive) {
		t.ctx.ActiveSessionID = ""
		if t.ctx.LastPartySize > 0 {
			return e.startSession(ctx, t, t.ctx.LastPartySize, "reco.restart")
		}
		t.ctx.AwaitingPartySize = true
		return Reply{Text: t.pick("reco.ask_size")}, nil
	}
	if err != nil {
		return Reply{}, fmt.Errorf("process answer: %w", err)
	}

	if accepted {
		return e.advance(ctx, t, "")
	}

	// "quiero 2 americanos" mid-session goes to the cart; the question stays open
	cart, ok, err := e.mergeOrder(ctx, t)
	if err != nil && !errors.Is(err, catalog.ErrCatalogUnavailable) {
		return Reply{}, err
	}
	if !ok {
		return e.advance(ctx, t, t.pick("reco.retry"))
	}
	reply, err := e.advance(ctx, t, t.pick("order.added")+"\n"+cart.Summary())
	if err != nil {
		return Reply{}, err
	}
	if reply.Cart == nil {
		reply.Cart = &cart
	}
	return reply, nil
}

// advance renders the session's next question, or its final recommendation
// which then becomes the pending cart.
func (e *Engine) advance(ctx context.Context, t *turn, intro string) (Reply, error) {
	sessionID := t.ctx.ActiveSessionID
	step, err := e.machine.NextQuestion(ctx, sessionID)
	if errors.Is(err, catalog.ErrCatalogUnavailable) {
		return e.unavailable(t, err), nil
	}
	if err != nil {
		return Reply{}, fmt.Errorf("next question: %w", err)
	}

	if step.Question != nil {
		return Reply{
			Text:      joinLines(intro, renderQuestion(step.Question)),
			Question:  step.Question,
			SessionID: sessionID,
		}, nil
	}

	t.ctx.ActiveSessionID = ""
	final := step.Final
	if final.Suggested.IsEmpty() {
		return Reply{Text: t.pick("reco.empty"), Recommendation: final, SessionID: sessionID}, nil
	}

	if t.ctx.PendingCart == nil {
		t.ctx.PendingCart = &order.Cart{}
	}
	t.ctx.PendingCart.Merge(final.Suggested)
	t.ctx.AwaitingConfirmation = true
	cart := t.ctx.PendingCart.Clone()

	text := t.pick("reco.final") + "\n" + final.Suggested.Summary()
	if extras := extraNames(final); len(extras) > 0 {
		text += "\n\n" + fmt.Sprintf(t.pick("reco.also"), strings.Join(extras, ", "))
	}
	if len(cart.Lines) != len(final.Suggested.Lines) {
		text += "\n\nCon lo que ya tenías, tu pedido queda así:\n" + cart.Summary()
	}
	return Reply{
		Text:           joinLines(text, t.pick("order.confirm")),
		Cart:           &cart,
		Recommendation: final,
		SessionID:      sessionID,
	}, nil
}

func (e *Engine) handleConfirm(ctx context.Context, t *turn) (Reply, error) {
	if !t.ctx.HasPendingCart() {
		t.ctx.AwaitingConfirmation = false
		return Reply{Text: t.pick("confirm.nothing")}, nil
	}

	// The cleared context is stored before the sink sees the cart, so a
	// repeated confirmation cannot submit the same order twice.
	key := store.Key(t.req.SenderID, t.req.BranchID)
	pending := *t.ctx
	cart := t.ctx.PendingCart.Clone()
	t.ctx.PendingCart = nil
	t.ctx.AwaitingConfirmation = false
	if err := e.contexts.Put(ctx, key, *t.ctx); err != nil {
		return Reply{}, fmt.Errorf("save context before finalizing: %w", err)
	}

	finalized := false
	defer func() {
		if finalized {
			return
		}
		if err := e.contexts.Put(ctx, key, pending); err != nil {
			e.logger.Error("restore pending cart", zap.String("sender", t.req.SenderID), zap.Error(err))
		}
	}()

	orderID, err := e.sink.FinalizeOrder(ctx, t.req.BranchID, t.req.SenderID, cart)
	if err != nil {
		return Reply{}, fmt.Errorf("finalize order: %w", err)
	}
	finalized = true
	t.ctx.LastOrderID = orderID

	text := fmt.Sprintf(t.pick("confirm.done"), shortID(orderID), cart.Subtotal())
	return Reply{Text: joinLines(text, t.closing()), Cart: &cart, OrderID: orderID}, nil
}

func (e *Engine) handleCancel(ctx context.Context, t *turn) (Reply, error) {
	hadSomething := t.ctx.HasPendingCart() || t.ctx.ActiveSessionID != "" || t.ctx.AwaitingPartySize
	if t.ctx.ActiveSessionID != "" {
		if err := e.machine.Abandon(ctx, t.ctx.ActiveSessionID); err != nil && !errors.Is(err, recommendation.ErrSessionNotFound) {
			return Reply{}, fmt.Errorf("abandon session: %w", err)
		}
	}
	t.ctx.PendingCart = nil
	t.ctx.AwaitingConfirmation = false
	t.ctx.AwaitingPartySize = false
	t.ctx.ActiveSessionID = ""

	group := "cancel.nothing"
	if hadSomething {
		group = "cancel.done"
	}
	return Reply{Text: joinLines(t.pick(group), t.closing())}, nil
}

func (e *Engine) handleGeneric(ctx context.Context, t *turn, res intent.Result) (Reply, error) {
	if t.ctx.AwaitingPartySize {
		return Reply{Text: t.pick("reco.ask_size")}, nil
	}
	if !res.Question {
		reply, ok, err := e.tryOrder(ctx, t)
		if err != nil && !errors.Is(err, catalog.ErrCatalogUnavailable) {
			return Reply{}, err
		}
		if ok {
			return reply, nil
		}
	}

	if res.Question && e.answerer != nil {
		if answer, ok := e.answer(ctx, t); ok {
			return Reply{Text: joinLines(answer, t.closing())}, nil
		}
	}

	if t.ctx.HasPendingCart() {
		return Reply{Text: t.pick("fallback.cart")}, nil
	}
	return Reply{Text: joinLines(t.pick("fallback"), t.closing())}, nil
}

// answer asks the configured model. Failures are logged and reported as !ok
// so the caller falls back to canned text.
func (e *Engine) answer(ctx context.Context, t *turn) (string, bool) {
	menu, err := e.catalog.GetMenuText(ctx, t.req.BranchID)
	if err != nil {
		menu = ""
	}
	q := ai.Question{BusinessType: t.req.BusinessType, MenuText: menu, Text: t.req.Text}
	if e.transcript != nil {
		q.History, _ = e.transcript.LoadTranscript(ctx, store.Key(t.req.SenderID, t.req.BranchID), e.history)
	}

	answer, err := e.answerer.Answer(ctx, q)
	if err != nil {
		e.logger.Warn("answerer failed", zap.String("sender", t.req.SenderID), zap.Error(err))
		return "", false
	}
	return answer, true
}

// unavailable is the order-free reply used while the catalog cannot be read.
func (e *Engine) unavailable(t *turn, cause error) Reply {
	e.logger.Warn("catalog unavailable", zap.String("branch", t.req.BranchID), zap.Error(cause))
	return Reply{Text: t.pick("unavailable")}
}

func renderQuestion(q *recomodel.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(%d/%d) %s", q.StepIndex+1, q.TotalSteps, q.Prompt)
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "\n%d. %s", i+1, opt)
	}
	return b.String()
}

// extraNames lists shortlisted products that are not in the suggested cart.
func extraNames(final *recomodel.Final) []string {
	inCart := make(map[string]bool, len(final.Suggested.Lines))
	for _, line := range final.Suggested.Lines {
		inCart[line.Product.Name] = true
	}
	var names []string
	for _, item := range final.Items {
		if !inCart[item.Entry.Name] {
			names = append(names, item.Entry.Name)
		}
	}
	return names
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}
