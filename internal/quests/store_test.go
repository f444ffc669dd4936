package quests

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/questd/internal/gateway"
	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/storage"
	"github.com/stretchr/testify/require"
)

type recordedNotice struct {
	QuestID string
	Title   string
	Type    model.NotificationType
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []recordedNotice
	cleared []string
}

func (f *fakeNotifier) Notify(questID, title, message string, typ model.NotificationType) model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, recordedNotice{QuestID: questID, Title: title, Type: typ})
	return model.Notification{QuestID: questID, Title: title, Message: message, Type: typ}
}

func (f *fakeNotifier) ClearQuest(questID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, questID)
	return 0
}

func (f *fakeNotifier) countType(typ model.NotificationType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, rec := range f.notices {
		if rec.Type == typ {
			n++
		}
	}
	return n
}

type fakePersister struct {
	mu    sync.Mutex
	saves []storage.Snapshot
	err   error
}

func (f *fakePersister) Save(_ context.Context, snap storage.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saves = append(f.saves, snap)
	return nil
}

func (f *fakePersister) Load(context.Context) (storage.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saves) == 0 {
		return storage.DefaultSnapshot(), nil
	}
	return f.saves[len(f.saves)-1], nil
}

func (f *fakePersister) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

type fakeGenerator struct {
	draft gateway.Draft
	err   error
	calls int
	hook  func(ctx context.Context)
}

func (g *fakeGenerator) GenerateQuest(ctx context.Context, _ gateway.GenerateRequest) (gateway.Draft, error) {
	g.calls++
	if g.hook != nil {
		g.hook(ctx)
	}
	return g.draft, g.err
}

type harness struct {
	store    *Store
	notifier *fakeNotifier
	persist  *fakePersister
	gen      *fakeGenerator
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	h := &harness{
		notifier: &fakeNotifier{},
		persist:  &fakePersister{},
		gen:      &fakeGenerator{draft: sampleDraft(now, 3, 250)},
		now:      now,
	}
	seq := 0
	h.store = NewStore(Options{
		Generator: h.gen,
		Notifier:  h.notifier,
		Persister: h.persist,
		Now:       func() time.Time { return h.now },
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	})
	return h
}

func sampleDraft(now time.Time, steps, xp int) gateway.Draft {
	d := gateway.Draft{
		Title:       "Learn Go",
		Category:    "Study",
		Description: "A quest",
		Difficulty:  model.DifficultyMedium,
		XP:          xp,
	}
	for i := 0; i < steps; i++ {
		d.Steps = append(d.Steps, gateway.DraftStep{
			Title:           fmt.Sprintf("step %d", i+1),
			ScheduledAt:     now.Add(time.Duration(i+1) * time.Hour),
			DurationMinutes: 30,
		})
	}
	return d
}

func (h *harness) create(t *testing.T, req CreateRequest) model.Quest {
	t.Helper()
	q, err := h.store.Create(t.Context(), req)
	require.NoError(t, err)
	return q
}

func TestCreateBuildsActiveQuest(t *testing.T) {
	h := newHarness(t)
	q := h.create(t, CreateRequest{Goal: "learn go", DurationMinutes: 7 * 24 * 60})

	require.Equal(t, model.QuestStatusActive, q.Status)
	require.Equal(t, h.now, q.StartDate)
	require.Equal(t, h.now.Add(7*24*time.Hour), q.EndDate)
	require.Equal(t, h.now, q.LastUpdate)
	require.Equal(t, "Study", q.Category)
	require.Len(t, q.Steps, 3)
	for _, st := range q.Steps {
		require.False(t, st.IsCompleted)
		require.NotEmpty(t, st.ID)
	}
	require.Equal(t, 1, h.persist.count())
	require.Equal(t, 1, h.notifier.countType(model.NotificationInfo))

	list := h.store.List(Filter{})
	require.Len(t, list, 1)
	require.Equal(t, q.ID, list[0].ID)
}

func TestCreatePrependsAndCategoryOverrides(t *testing.T) {
	h := newHarness(t)
	first := h.create(t, CreateRequest{Goal: "one", DurationMinutes: 60})
	second := h.create(t, CreateRequest{Goal: "two", DurationMinutes: 60, Category: "Fitness"})

	require.Equal(t, "Fitness", second.Category)
	list := h.store.List(Filter{})
	require.Equal(t, []string{second.ID, first.ID}, []string{list[0].ID, list[1].ID})
}

func TestCreateRejectsBadRequest(t *testing.T) {
	h := newHarness(t)
	_, err := h.store.Create(t.Context(), CreateRequest{Goal: "  ", DurationMinutes: 60})
	require.ErrorIs(t, err, ErrInvalidRequest)
	_, err = h.store.Create(t.Context(), CreateRequest{Goal: "x", DurationMinutes: 0})
	require.ErrorIs(t, err, ErrInvalidRequest)
	require.Zero(t, h.gen.calls)
}

func TestCreateFailureLeavesStateAndAlerts(t *testing.T) {
	h := newHarness(t)
	h.gen.err = fmt.Errorf("%w: upstream unavailable", gateway.ErrGeneration)

	_, err := h.store.Create(t.Context(), CreateRequest{Goal: "learn go", DurationMinutes: 60})
	require.ErrorIs(t, err, gateway.ErrGeneration)
	require.Empty(t, h.store.List(Filter{}))
	require.Zero(t, h.persist.count())
	require.Equal(t, 1, h.notifier.countType(model.NotificationAlert))
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	h := newHarness(t)
	h.gen.draft.Difficulty = "Legendary"

	_, err := h.store.Create(t.Context(), CreateRequest{Goal: "learn go", DurationMinutes: 60})
	require.ErrorIs(t, err, gateway.ErrGeneration)
	require.Empty(t, h.store.List(Filter{}))
	require.Equal(t, 1, h.notifier.countType(model.NotificationAlert))
}

func TestCreateDiscardsResultAfterCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(t.Context())
	h.gen.hook = func(context.Context) { cancel() }

	_, err := h.store.Create(ctx, CreateRequest{Goal: "learn go", DurationMinutes: 60})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, h.store.List(Filter{}))
	require.Zero(t, h.persist.count())
	require.Zero(t, h.notifier.countType(model.NotificationAlert))
}

func TestCreateDiscardsResultCancelledWhileBuilding(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(t.Context())
	ids := h.store.newID
	h.store.newID = func() string {
		cancel()
		return ids()
	}

	_, err := h.store.Create(ctx, CreateRequest{Goal: "learn go", DurationMinutes: 60})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, h.store.List(Filter{}))
	require.Zero(t, h.persist.count())
	require.Zero(t, h.notifier.countType(model.NotificationInfo))
}

func TestWhileActiveRunsOnlyForActiveQuests(t *testing.T) {
	h := newHarness(t)
	q := h.create(t, CreateRequest{Goal: "learn go", DurationMinutes: 60})

	ran := 0
	require.True(t, h.store.WhileActive(q.ID, func() { ran++ }))
	require.False(t, h.store.WhileActive("missing", func() { ran++ }))

	_, err := h.store.Abandon(t.Context(), q.ID, Confirmed)
	require.NoError(t, err)
	require.False(t, h.store.WhileActive(q.ID, func() { ran++ }))
	require.Equal(t, 1, ran)
}

func TestToggleStepCompletesQuestOnce(t *testing.T) {
	h := newHarness(t)
	q := h.create(t, CreateRequest{Goal: "learn go", DurationMinutes: 60})

	for i, st := range q.Steps {
		got, err := h.store.ToggleStep(q.ID, st.ID)
		require.NoError(t, err)
		if i < len(q.Steps)-1 {
			require.Equal(t, model.QuestStatusActive, got.Status)
		} else {
			require.Equal(t, model.QuestStatusCompleted, got.Status)
		}
	}

	stats := h.store.Stats()
	require.Equal(t, 250, stats.TotalXP)
	require.Equal(t, 1, stats.CompletedQuests)
	require.Equal(t, 1, stats.Level)
	require.Contains(t, h.notifier.cleared, q.ID)

	_, err := h.store.ToggleStep(q.ID, q.Steps[0].ID)
	require.ErrorIs(t, err, ErrQuestTerminal)
	require.Equal(t, 250, h.store.Stats().TotalXP)
}

func TestToggleStepUncheckKeepsQuestActive(t *testing.T) {
	h := newHarness(t)
	q := h.create(t, CreateRequest{Goal: "learn go", DurationMinutes: 60})

	_, err := h.store.ToggleStep(q.ID, q.Steps[0].ID)
	require.NoError(t, err)
	got, err := h.store.ToggleStep(q.ID, q.Steps[0].ID)
	require.NoError(t, err)
	require.False(t, got.Steps[0].IsCompleted)
	require.Equal(t, 0, got.CompletedSteps())
}

func TestToggleStepLevelUp(t *testing.T) {
	h := newHarness(t)
	h.gen.draft = sampleDraft(h.now, 3, 600)
	for i := 0; i < 2; i++ {
		q := h.create(t, CreateRequest{Goal: "grind", DurationMinutes: 60})
		for _, st := range q.Steps {
			_, err := h.store.ToggleStep(q.ID, st.ID)
			require.NoError(t, err)
		}
	}
	stats := h.store.Stats()
	require.Equal(t, 1200, stats.TotalXP)
	require.Equal(t, 2, stats.Level)
	require.Equal(t, 2, stats.CompletedQuests)
	require.Equal(t, 1, h.notifier.countType(model.NotificationLevelUp))
}

func TestToggleStepUnknownIDs(t *testing.T) {
	h := newHarness(t)
	q := h.create(t, CreateRequest{Goal: "learn go", DurationMinutes: 60})

	_, err := h.store.ToggleStep("missing", q.Steps[0].ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = h.store.ToggleStep(q.ID, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAbandonRequiresConfirmation(t *testing.T) {
	h := newHarness(t)
	q := h.create(t, CreateRequest{Goal: "learn go", DurationMinutes: 60})
	saves := h.persist.count()

	decline := ConfirmFunc(func(context.Context, model.Quest) bool { return false })
	_, err := h.store.Abandon(t.Context(), q.ID, decline)
	require.ErrorIs(t, err, ErrNotConfirmed)
	_, err = h.store.Abandon(t.Context(), q.ID, nil)
	require.ErrorIs(t, err, ErrNotConfirmed)
	require.Equal(t, saves, h.persist.count())

	got, err := h.store.Abandon(t.Context(), q.ID, Confirmed)
	require.NoError(t, err)
	require.Equal(t, model.QuestStatusAbandoned, got.Status)
	require.Equal(t, model.DefaultUserStats(), h.store.Stats())
	require.Contains(t, h.notifier.cleared, q.ID)

	_, err = h.store.Abandon(t.Context(), q.ID, Confirmed)
	require.ErrorIs(t, err, ErrQuestTerminal)
	_, err = h.store.ToggleStep(q.ID, q.Steps[0].ID)
	require.ErrorIs(t, err, ErrQuestTerminal)
}

func TestAbandonPublishesChange(t *testing.T) {
	h := newHarness(t)
	q := h.create(t, CreateRequest{Goal: "learn go", DurationMinutes: 60})
	changes := h.store.Subscribe()

	_, err := h.store.Abandon(t.Context(), q.ID, Confirmed)
	require.NoError(t, err)

	select {
	case c := <-changes:
		require.Equal(t, Change{Kind: ChangeAbandoned, QuestID: q.ID}, c)
	case <-time.After(time.Second):
		t.Fatal("expected abandon change")
	}
}

func TestListFilters(t *testing.T) {
	h := newHarness(t)
	today := h.create(t, CreateRequest{Goal: "short", DurationMinutes: 60, Category: "Home"})
	week := h.create(t, CreateRequest{Goal: "long", DurationMinutes: 7 * 24 * 60, Category: "Study"})
	dropped := h.create(t, CreateRequest{Goal: "drop", DurationMinutes: 60, Category: "Home"})
	_, err := h.store.Abandon(t.Context(), dropped.ID, Confirmed)
	require.NoError(t, err)

	ids := func(qs []model.Quest) []string {
		out := make([]string, 0, len(qs))
		for _, q := range qs {
			out = append(out, q.ID)
		}
		return out
	}

	require.Equal(t, []string{week.ID, today.ID}, ids(h.store.List(Filter{Status: model.QuestStatusActive})))
	require.Equal(t, []string{dropped.ID}, ids(h.store.List(Filter{Status: model.QuestStatusAbandoned})))
	require.Equal(t, []string{today.ID}, ids(h.store.List(Filter{DueToday: true})))
	require.Equal(t, []string{dropped.ID, today.ID}, ids(h.store.List(Filter{Category: "Home"})))
	require.Equal(t, []string{"Home", "Study"}, h.store.Categories())
}

func TestOverdueAndAttachStrategies(t *testing.T) {
	h := newHarness(t)
	q := h.create(t, CreateRequest{Goal: "learn go", DurationMinutes: 24 * 60})
	_, err := h.store.ToggleStep(q.ID, q.Steps[0].ID)
	require.NoError(t, err)

	later := h.now.Add(150 * time.Minute)
	refs := h.store.OverdueSteps(later)
	require.Len(t, refs, 1)
	require.Equal(t, q.Steps[1].ID, refs[0].StepID)

	saves := h.persist.count()
	applied := h.store.AttachStrategies([]StrategyResult{{Ref: refs[0], Strategy: "do it tonight"}})
	require.Equal(t, refs, applied)
	require.Equal(t, saves+1, h.persist.count())
	require.Empty(t, h.store.OverdueSteps(later))

	again := h.store.AttachStrategies([]StrategyResult{{Ref: refs[0], Strategy: "second"}})
	require.Empty(t, again)
	require.Equal(t, saves+1, h.persist.count())

	got, err := h.store.Get(q.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Steps[1].OverdueStrategy)
	require.Equal(t, "do it tonight", *got.Steps[1].OverdueStrategy)
}

func TestAttachStrategiesSkipsTerminalQuests(t *testing.T) {
	h := newHarness(t)
	q := h.create(t, CreateRequest{Goal: "learn go", DurationMinutes: 24 * 60})
	refs := h.store.OverdueSteps(h.now.Add(5 * time.Hour))
	require.Len(t, refs, 3)

	_, err := h.store.Abandon(t.Context(), q.ID, Confirmed)
	require.NoError(t, err)
	require.Empty(t, h.store.AttachStrategies([]StrategyResult{{Ref: refs[0], Strategy: "late"}}))
	require.Empty(t, h.store.OverdueSteps(h.now.Add(5*time.Hour)))
}

func TestMostInactive(t *testing.T) {
	h := newHarness(t)
	older := h.create(t, CreateRequest{Goal: "old", DurationMinutes: 60})
	h.now = h.now.Add(2 * time.Hour)
	h.create(t, CreateRequest{Goal: "new", DurationMinutes: 60})

	_, ok := h.store.MostInactive(h.now.Add(time.Hour), 24*time.Hour)
	require.False(t, ok)

	got, ok := h.store.MostInactive(h.now.Add(30*time.Hour), 24*time.Hour)
	require.True(t, ok)
	require.Equal(t, older.ID, got.ID)
}

func TestGetReturnsCopy(t *testing.T) {
	h := newHarness(t)
	q := h.create(t, CreateRequest{Goal: "learn go", DurationMinutes: 60})

	got, err := h.store.Get(q.ID)
	require.NoError(t, err)
	got.Steps[0].IsCompleted = true

	again, err := h.store.Get(q.ID)
	require.NoError(t, err)
	require.False(t, again.Steps[0].IsCompleted)
}

func TestLoadAndLanguage(t *testing.T) {
	h := newHarness(t)
	q := h.create(t, CreateRequest{Goal: "learn go", DurationMinutes: 60})
	h.store.SetLanguage(model.LanguageFrench)

	restored := NewStore(Options{Persister: h.persist})
	require.NoError(t, restored.Load(t.Context(), h.persist))
	require.Equal(t, model.LanguageFrench, restored.Language())
	got, err := restored.Get(q.ID)
	require.NoError(t, err)
	require.Equal(t, q.Title, got.Title)
}

func TestLoadError(t *testing.T) {
	s := NewStore(Options{})
	err := s.Load(t.Context(), failingLoader{})
	require.Error(t, err)
	require.Equal(t, model.DefaultUserStats(), s.Stats())
}

type failingLoader struct{}

func (failingLoader) Load(context.Context) (storage.Snapshot, error) {
	return storage.Snapshot{}, errors.New("disk gone")
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	h := newHarness(t)
	h.persist.err = errors.New("disk full")
	q := h.create(t, CreateRequest{Goal: "learn go", DurationMinutes: 60})

	_, err := h.store.Get(q.ID)
	require.NoError(t, err)
}

func TestSevenDayQuestWithOfflineGateway(t *testing.T) {
	notifier := &fakeNotifier{}
	persist := &fakePersister{}
	store := NewStore(Options{
		Generator: gateway.NewOfflineGateway(),
		Notifier:  notifier,
		Persister: persist,
	})

	q, err := store.Create(t.Context(), CreateRequest{Goal: "run a 5k", DurationMinutes: 7 * 24 * 60})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(q.Steps), gateway.MinSteps)
	require.LessOrEqual(t, len(q.Steps), gateway.MaxSteps)
	require.InDelta(t, (7 * 24 * time.Hour).Seconds(), q.EndDate.Sub(q.StartDate).Seconds(), 1)

	for _, st := range q.Steps {
		_, err := store.ToggleStep(q.ID, st.ID)
		require.NoError(t, err)
	}
	got, err := store.Get(q.ID)
	require.NoError(t, err)
	require.Equal(t, model.QuestStatusCompleted, got.Status)
	require.Equal(t, q.XP, store.Stats().TotalXP)

	snap, err := persist.Load(t.Context())
	require.NoError(t, err)
	require.Equal(t, model.QuestStatusCompleted, snap.Quests[0].Status)
	require.Equal(t, q.XP, snap.Stats.TotalXP)
}

func TestConcurrentTogglesAwardOnce(t *testing.T) {
	h := newHarness(t)
	q := h.create(t, CreateRequest{Goal: "learn go", DurationMinutes: 60})

	var wg sync.WaitGroup
	for _, st := range q.Steps {
		wg.Add(1)
		go func(stepID string) {
			defer wg.Done()
			_, _ = h.store.ToggleStep(q.ID, stepID)
		}(st.ID)
	}
	wg.Wait()

	require.Equal(t, 250, h.store.Stats().TotalXP)
	require.Equal(t, 1, h.store.Stats().CompletedQuests)
}
