// Package recommendation runs the guided question flow that turns a party
// size and a few answers into a suggested order.
package recommendation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhouzirui/menu-assistant/backend/internal/keylock"
	"github.com/zhouzirui/menu-assistant/backend/internal/model/catalog"
	model "github.com/zhouzirui/menu-assistant/backend/internal/model/recommendation"
	"github.com/zhouzirui/menu-assistant/backend/internal/store"
)

var (
	ErrInvalidPartySize = errors.New("party size must be at least 1")
	ErrSessionNotFound  = errors.New("recommendation session not found")
	ErrSessionNotActive = errors.New("recommendation session is not active")
)

const (
	sessionNamespace = "recommendation_session"
	activeNamespace  = "recommendation_active"
)

// Machine owns recommendation sessions. All transitions of one session are
// serialized; different sessions proceed in parallel.
type Machine struct {
	catalog  catalog.Accessor
	sessions *store.Records[model.Session]
	active   *store.Records[string]
	locks    *keylock.Map
	policy   Policy
	logger   *zap.Logger
	now      func() time.Time
}

// NewMachine wires a machine over a catalog and a record store.
func NewMachine(accessor catalog.Accessor, s store.Store, policy Policy, logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{
		catalog:  accessor,
		sessions: store.NewRecords[model.Session](s, sessionNamespace),
		active:   store.NewRecords[string](s, activeNamespace),
		locks:    keylock.New(),
		policy:   policy.normalized(),
		logger:   logger.Named("recommendation"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Policy returns the thresholds the machine runs with.
func (m *Machine) Policy() Policy {
	return m.policy
}

// CreateSession starts a new flow for a sender at a branch. A still active
// session of the same sender and branch is abandoned.
func (m *Machine) CreateSession(ctx context.Context, senderID, branchID, businessID string, partySize int, mealContext string) (model.Session, error) {
	if partySize < 1 {
		return model.Session{}, ErrInvalidPartySize
	}

	ownerKey := store.Key(senderID, branchID)
	unlock, err := m.locks.Lock(ctx, "owner:"+ownerKey)
	if err != nil {
		return model.Session{}, err
	}
	defer unlock()

	if prevID, err := m.active.Get(ctx, ownerKey); err == nil && prevID != "" {
		if err := m.Abandon(ctx, prevID); err != nil && !errors.Is(err, ErrSessionNotFound) {
			return model.Session{}, fmt.Errorf("supersede session %s: %w", prevID, err)
		}
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return model.Session{}, fmt.Errorf("load active session: %w", err)
	}

	now := m.now()
	session := model.Session{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		BranchID:    branchID,
		BusinessID:  businessID,
		PartySize:   partySize,
		MealContext: mealContext,
		Tier:        m.policy.TierFor(partySize),
		Status:      model.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	session.QuestionIDs, session.QuestionSequenceID, session.WordingVariant = plan(session.ID, session.Tier, mealContext)
	session.TotalSteps = len(session.QuestionIDs)

	if err := m.sessions.Put(ctx, session.ID, session); err != nil {
		return model.Session{}, fmt.Errorf("save session: %w", err)
	}
	if err := m.active.Put(ctx, ownerKey, session.ID); err != nil {
		return model.Session{}, fmt.Errorf("save active session: %w", err)
	}

	m.logger.Debug("session created",
		zap.String("session", session.ID),
		zap.String("sender", senderID),
		zap.String("branch", branchID),
		zap.Int("partySize", partySize),
		zap.String("tier", string(session.Tier)),
		zap.Int("totalSteps", session.TotalSteps))
	return session, nil
}

// NextQuestion returns the question at the current step, or the final
// recommendation once every question is answered. Reaching the end marks
// the session completed; asking again returns the same recommendation.
func (m *Machine) NextQuestion(ctx context.Context, sessionID string) (model.Step, error) {
	unlock, err := m.locks.Lock(ctx, "session:"+sessionID)
	if err != nil {
		return model.Step{}, err
	}
	defer unlock()

	session, err := m.load(ctx, sessionID)
	if err != nil {
		return model.Step{}, err
	}
	if session.Status == model.StatusAbandoned {
		return model.Step{}, fmt.Errorf("%w: %s was abandoned", ErrSessionNotFound, sessionID)
	}

	if session.Step < session.TotalSteps {
		def, ok := questionBank[session.QuestionIDs[session.Step]]
		if !ok {
			return model.Step{}, fmt.Errorf("unknown question %q", session.QuestionIDs[session.Step])
		}
		q := render(def, session)
		return model.Step{Question: &q}, nil
	}

	entries, err := m.catalog.GetCatalog(ctx, session.BranchID)
	if err != nil {
		return model.Step{}, err
	}
	final := rank(session, entries, m.policy.Shortlist)

	if session.Status == model.StatusActive {
		session.Status = model.StatusCompleted
		session.UpdatedAt = m.now()
		if err := m.sessions.Put(ctx, session.ID, session); err != nil {
			return model.Step{}, fmt.Errorf("save session: %w", err)
		}
		m.logger.Debug("session completed",
			zap.String("session", session.ID),
			zap.Int("items", len(final.Items)))
	}
	return model.Step{Final: &final}, nil
}

// ProcessAnswer records a reply to the current question. It reports false
// when the reply does not resolve to an option, leaving the step unchanged.
func (m *Machine) ProcessAnswer(ctx context.Context, sessionID, raw string) (bool, error) {
	unlock, err := m.locks.Lock(ctx, "session:"+sessionID)
	if err != nil {
		return false, err
	}
	defer unlock()

	session, err := m.load(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if session.Status != model.StatusActive {
		return false, ErrSessionNotActive
	}
	if session.Step >= session.TotalSteps {
		return false, nil
	}

	def, ok := questionBank[session.QuestionIDs[session.Step]]
	if !ok {
		return false, fmt.Errorf("unknown question %q", session.QuestionIDs[session.Step])
	}
	idx := resolveOption(def, raw)
	if idx < 0 {
		m.logger.Debug("answer not understood",
			zap.String("session", sessionID),
			zap.String("question", def.id))
		return false, nil
	}

	opt := def.options[idx]
	session.Answers = append(session.Answers, model.Answer{
		QuestionID: def.id,
		Option:     opt.label,
		Tags:       opt.tags,
		Raw:        raw,
	})
	session.Step++
	session.UpdatedAt = m.now()
	if err := m.sessions.Put(ctx, session.ID, session); err != nil {
		return false, fmt.Errorf("save session: %w", err)
	}
	return true, nil
}

// Abandon moves an active session to abandoned. Completed or already
// abandoned sessions are left as they are.
func (m *Machine) Abandon(ctx context.Context, sessionID string) error {
	unlock, err := m.locks.Lock(ctx, "session:"+sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	session, err := m.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status != model.StatusActive {
		return nil
	}
	session.Status = model.StatusAbandoned
	session.UpdatedAt = m.now()
	if err := m.sessions.Put(ctx, session.ID, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	m.logger.Debug("session abandoned", zap.String("session", sessionID))
	return nil
}

// GetSession loads a session in any state.
func (m *Machine) GetSession(ctx context.Context, sessionID string) (model.Session, error) {
	return m.load(ctx, sessionID)
}

// ActiveSession returns the sender's active session at a branch, or
// ErrSessionNotFound when there is none.
func (m *Machine) ActiveSession(ctx context.Context, senderID, branchID string) (model.Session, error) {
	id, err := m.active.Get(ctx, store.Key(senderID, branchID))
	if errors.Is(err, store.ErrNotFound) {
		return model.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("load active session: %w", err)
	}
	session, err := m.load(ctx, id)
	if err != nil {
		return model.Session{}, err
	}
	if session.Status != model.StatusActive {
		return model.Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (m *Machine) load(ctx context.Context, sessionID string) (model.Session, error) {
	session, err := m.sessions.Get(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return session, nil
}
