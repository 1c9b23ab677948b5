package recommendation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/menu-assistant/backend/internal/model/catalog"
	model "github.com/zhouzirui/menu-assistant/backend/internal/model/recommendation"
	"github.com/zhouzirui/menu-assistant/backend/internal/service/recommendation"
	"github.com/zhouzirui/menu-assistant/backend/internal/store"
)

const branch = catalog.DemoBranchID

func newMachine(t *testing.T) *recommendation.Machine {
	t.Helper()
	return recommendation.NewMachine(
		catalog.NewMemoryStore(catalog.Seed()),
		store.NewMemoryStore(),
		recommendation.DefaultPolicy(),
		nil,
	)
}

type brokenCatalog struct{}

func (brokenCatalog) GetCatalog(context.Context, string) ([]catalog.Entry, error) {
	return nil, catalog.ErrCatalogUnavailable
}

func (brokenCatalog) GetMenuText(context.Context, string) (string, error) {
	return "", catalog.ErrCatalogUnavailable
}

func TestCreateSessionRejectsEmptyParty(t *testing.T) {
	m := newMachine(t)
	_, err := m.CreateSession(context.Background(), "s1", branch, "biz", 0, "")
	require.ErrorIs(t, err, recommendation.ErrInvalidPartySize)
}

func TestLargePartyCompletesAfterFiveAnswers(t *testing.T) {
	ctx := context.Background()
	m := newMachine(t)

	session, err := m.CreateSession(ctx, "s1", branch, "biz", 6, "")
	require.NoError(t, err)
	assert.Equal(t, model.TierLarge, session.Tier)
	assert.Equal(t, 5, session.TotalSteps)

	for i := 0; i < session.TotalSteps; i++ {
		step, err := m.NextQuestion(ctx, session.ID)
		require.NoError(t, err)
		require.NotNil(t, step.Question, "step %d", i)
		assert.Equal(t, i, step.Question.StepIndex)
		assert.Equal(t, 5, step.Question.TotalSteps)

		ok, err := m.ProcessAnswer(ctx, session.ID, "1")
		require.NoError(t, err)
		require.True(t, ok)
	}

	step, err := m.NextQuestion(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, step.Final)
	assert.NotEmpty(t, step.Final.Items)
	assert.False(t, step.Final.Suggested.IsEmpty())

	got, err := m.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, got.TotalSteps, got.Step)

	again, err := m.NextQuestion(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, again.Final)
	assert.Equal(t, step.Final.Suggested, again.Final.Suggested)

	_, err = m.ProcessAnswer(ctx, session.ID, "1")
	require.ErrorIs(t, err, recommendation.ErrSessionNotActive)
}

func TestUnresolvedAnswerKeepsStep(t *testing.T) {
	ctx := context.Background()
	m := newMachine(t)

	session, err := m.CreateSession(ctx, "s1", branch, "biz", 2, "")
	require.NoError(t, err)

	before, err := m.NextQuestion(ctx, session.ID)
	require.NoError(t, err)

	ok, err := m.ProcessAnswer(ctx, session.ID, "xyzzy qwerty")
	require.NoError(t, err)
	assert.False(t, ok)

	after, err := m.NextQuestion(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Question, after.Question)

	got, err := m.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Step)
}

func TestStepNeverDecreases(t *testing.T) {
	ctx := context.Background()
	m := newMachine(t)

	session, err := m.CreateSession(ctx, "s1", branch, "biz", 4, "comida")
	require.NoError(t, err)

	replies := []string{"nada que ver", "2", "", "la primera", "99", "hasta $80", "1"}
	last := 0
	for _, reply := range replies {
		_, err := m.ProcessAnswer(ctx, session.ID, reply)
		if errors.Is(err, recommendation.ErrSessionNotActive) {
			break
		}
		require.NoError(t, err)
		got, err := m.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.Step, last)
		assert.LessOrEqual(t, got.Step, got.TotalSteps)
		last = got.Step
	}
}

func TestAnswerByLabelAndKeyword(t *testing.T) {
	ctx := context.Background()
	m := newMachine(t)

	session, err := m.CreateSession(ctx, "s1", branch, "biz", 1, "desayuno")
	require.NoError(t, err)
	require.Equal(t, 2, session.TotalSteps)

	for session.Step < session.TotalSteps {
		step, err := m.NextQuestion(ctx, session.ID)
		require.NoError(t, err)
		reply := "algo dulce"
		if step.Question.ID == "bebida" {
			reply = "algo frío por favor"
		}
		ok, err := m.ProcessAnswer(ctx, session.ID, reply)
		require.NoError(t, err)
		require.True(t, ok, "reply %q to %s", reply, step.Question.ID)
		session, err = m.GetSession(ctx, session.ID)
		require.NoError(t, err)
	}

	step, err := m.NextQuestion(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, step.Final)
	require.NotEmpty(t, step.Final.Items)

	var hasCold bool
	for _, line := range step.Final.Suggested.Lines {
		assert.Equal(t, 1, line.Quantity)
		if line.Product.Category == "bebidas frias" {
			hasCold = true
		}
	}
	assert.True(t, hasCold)
}

func TestTierChangesQuestions(t *testing.T) {
	ctx := context.Background()
	m := newMachine(t)

	small, err := m.CreateSession(ctx, "a", branch, "biz", 2, "")
	require.NoError(t, err)
	large, err := m.CreateSession(ctx, "b", branch, "biz", 6, "")
	require.NoError(t, err)

	assert.NotEqual(t, small.TotalSteps, large.TotalSteps)
	assert.NotContains(t, small.QuestionIDs, "compartir")
	assert.Contains(t, large.QuestionIDs, "compartir")
}

func TestIndependentSessionsVary(t *testing.T) {
	ctx := context.Background()
	m := newMachine(t)

	seen := make(map[string]bool)
	for i := 0; i < 30; i++ {
		session, err := m.CreateSession(ctx, "s1", branch, "biz", 6, "")
		require.NoError(t, err)
		step, err := m.NextQuestion(ctx, session.ID)
		require.NoError(t, err)
		seen[step.Question.Prompt+"|"+session.QuestionIDs[1]] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestNewSessionSupersedesActiveOne(t *testing.T) {
	ctx := context.Background()
	m := newMachine(t)

	first, err := m.CreateSession(ctx, "s1", branch, "biz", 3, "")
	require.NoError(t, err)
	second, err := m.CreateSession(ctx, "s1", branch, "biz", 3, "")
	require.NoError(t, err)

	old, err := m.GetSession(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAbandoned, old.Status)

	active, err := m.ActiveSession(ctx, "s1", branch)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	_, err = m.NextQuestion(ctx, first.ID)
	require.ErrorIs(t, err, recommendation.ErrSessionNotFound)
	_, err = m.ProcessAnswer(ctx, first.ID, "1")
	require.ErrorIs(t, err, recommendation.ErrSessionNotActive)
}

func TestUnknownSession(t *testing.T) {
	ctx := context.Background()
	m := newMachine(t)

	_, err := m.NextQuestion(ctx, "missing")
	require.ErrorIs(t, err, recommendation.ErrSessionNotFound)
	_, err = m.ProcessAnswer(ctx, "missing", "1")
	require.ErrorIs(t, err, recommendation.ErrSessionNotFound)
	_, err = m.ActiveSession(ctx, "nobody", branch)
	require.ErrorIs(t, err, recommendation.ErrSessionNotFound)
}

func TestCatalogFailurePropagates(t *testing.T) {
	ctx := context.Background()
	m := recommendation.NewMachine(brokenCatalog{}, store.NewMemoryStore(), recommendation.DefaultPolicy(), nil)

	session, err := m.CreateSession(ctx, "s1", branch, "biz", 1, "cena")
	require.NoError(t, err)
	for i := 0; i < session.TotalSteps; i++ {
		ok, err := m.ProcessAnswer(ctx, session.ID, "1")
		require.NoError(t, err)
		require.True(t, ok)
	}
	_, err = m.NextQuestion(ctx, session.ID)
	require.ErrorIs(t, err, catalog.ErrCatalogUnavailable)
}

func TestPolicyThresholds(t *testing.T) {
	p := recommendation.Policy{SmallMax: 1, MediumMax: 3, Shortlist: 3}
	assert.Equal(t, model.TierSmall, p.TierFor(1))
	assert.Equal(t, model.TierMedium, p.TierFor(2))
	assert.Equal(t, model.TierMedium, p.TierFor(3))
	assert.Equal(t, model.TierLarge, p.TierFor(4))
}
