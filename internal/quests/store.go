// Package quests owns the quest collection and the user's stats. Every
// mutation goes through Store, which persists the result and reports
// user-visible events to a Notifier.
package quests

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/questd/internal/gateway"
	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrNotFound       = errors.New("quests: not found")
	ErrQuestTerminal  = errors.New("quests: quest is no longer active")
	ErrNotConfirmed   = errors.New("quests: abandon not confirmed")
	ErrInvalidRequest = errors.New("quests: invalid create request")
)

const persistTimeout = 5 * time.Second

type Notifier interface {
	Notify(questID, title, message string, typ model.NotificationType) model.Notification
	ClearQuest(questID string) int
}

type Persister interface {
	Save(ctx context.Context, snap storage.Snapshot) error
}

type Loader interface {
	Load(ctx context.Context) (storage.Snapshot, error)
}

// Confirmer is asked before a quest is abandoned.
type Confirmer interface {
	Confirm(ctx context.Context, q model.Quest) bool
}

type ConfirmFunc func(ctx context.Context, q model.Quest) bool

func (f ConfirmFunc) Confirm(ctx context.Context, q model.Quest) bool { return f(ctx, q) }

// Confirmed is a Confirmer for callers that already asked the user.
var Confirmed Confirmer = ConfirmFunc(func(context.Context, model.Quest) bool { return true })

type Options struct {
	Generator gateway.Generator
	Notifier  Notifier
	Persister Persister
	Logger    *zap.Logger
	Now       func() time.Time
	NewID     func() string
}

type Store struct {
	mu     sync.Mutex
	quests []model.Quest
	stats  model.UserStats
	lang   model.Language
	subs   []chan Change

	version      uint64
	saveMu       sync.Mutex
	savedVersion uint64

	gen      gateway.Generator
	notifier Notifier
	persist  Persister
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

func NewStore(opts Options) *Store {
	s := &Store{
		quests:   []model.Quest{},
		stats:    model.DefaultUserStats(),
		lang:     model.DefaultLanguage,
		gen:      opts.Generator,
		notifier: opts.Notifier,
		persist:  opts.Persister,
		logger:   opts.Logger,
		now:      opts.Now,
		newID:    opts.NewID,
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Load replaces in-memory state with what the loader returns. It is meant
// to run once at startup and does not write back.
func (s *Store) Load(ctx context.Context, loader Loader) error {
	snap, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	s.mu.Lock()
	s.quests = make([]model.Quest, 0, len(snap.Quests))
	for _, q := range snap.Quests {
		s.quests = append(s.quests, q.Clone())
	}
	s.stats = snap.Stats
	s.lang = snap.Language
	s.mu.Unlock()

	s.logger.Info("state loaded", zap.Int("quests", len(snap.Quests)), zap.Int("level", snap.Stats.Level))
	s.publish(Change{Kind: ChangeLoaded})
	return nil
}

type CreateRequest struct {
	Goal            string
	DurationMinutes int
	Category        string
}

// Create asks the generator for a quest line and prepends it as an active
// quest. On failure nothing is stored and an alert is raised. If ctx ends
// before the generator answers, the result is dropped silently.
func (s *Store) Create(ctx context.Context, req CreateRequest) (model.Quest, error) {
	req.Goal = strings.TrimSpace(req.Goal)
	req.Category = strings.TrimSpace(req.Category)
	if req.Goal == "" {
		return model.Quest{}, fmt.Errorf("%w: goal is required", ErrInvalidRequest)
	}
	if req.DurationMinutes <= 0 {
		return model.Quest{}, fmt.Errorf("%w: duration must be positive", ErrInvalidRequest)
	}
	if s.gen == nil {
		return model.Quest{}, errors.New("quests: no generator configured")
	}

	lang := s.Language()
	draft, err := s.gen.GenerateQuest(ctx, gateway.GenerateRequest{
		Goal:            req.Goal,
		DurationMinutes: req.DurationMinutes,
		Language:        lang,
		Category:        req.Category,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return model.Quest{}, ctxErr
	}
	if err != nil {
		return model.Quest{}, s.creationFailed(req, err)
	}

	quest := s.buildQuest(draft, req)
	if err := quest.Validate(); err != nil {
		return model.Quest{}, s.creationFailed(req, fmt.Errorf("%w: %v", gateway.ErrGeneration, err))
	}

	s.mu.Lock()
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.mu.Unlock()
		return model.Quest{}, ctxErr
	}
	s.quests = append([]model.Quest{quest}, s.quests...)
	v, snap := s.commitLocked()
	s.mu.Unlock()
	s.save(v, snap)

	s.logger.Info("quest created",
		zap.String("quest_id", quest.ID),
		zap.Int("steps", len(quest.Steps)),
		zap.Int("xp", quest.XP))
	s.notifier.Notify(quest.ID, "Quest Accepted!", "Started: "+quest.Title, model.NotificationInfo)
	s.publish(Change{Kind: ChangeCreated, QuestID: quest.ID})
	return quest.Clone(), nil
}

func (s *Store) creationFailed(req CreateRequest, err error) error {
	s.logger.Warn("quest creation failed", zap.String("goal", req.Goal), zap.Error(err))
	s.notifier.Notify("", "Error", "Could not create quest. Try again.", model.NotificationAlert)
	return fmt.Errorf("create quest: %w", err)
}

func (s *Store) buildQuest(d gateway.Draft, req CreateRequest) model.Quest {
	now := s.now()
	category := d.Category
	if req.Category != "" {
		category = req.Category
	}
	xp := d.XP
	if xp < 0 {
		xp = 0
	}
	q := model.Quest{
		ID:          s.newID(),
		Title:       d.Title,
		Category:    category,
		Description: d.Description,
		StartDate:   now,
		EndDate:     now.Add(time.Duration(req.DurationMinutes) * time.Minute),
		Status:      model.QuestStatusActive,
		Difficulty:  d.Difficulty,
		XP:          xp,
		LastUpdate:  now,
		Steps:       make([]model.Step, 0, len(d.Steps)),
	}
	for _, ds := range d.Steps {
		q.Steps = append(q.Steps, model.Step{
			ID:              s.newID(),
			Title:           ds.Title,
			Description:     ds.Description,
			Recommendation:  ds.Recommendation,
			ScheduledAt:     ds.ScheduledAt,
			DurationMinutes: ds.DurationMinutes,
		})
	}
	return q
}

// ToggleStep flips a step's completion. Completing the last open step of an
// active quest completes the quest and awards its xp exactly once.
func (s *Store) ToggleStep(questID, stepID string) (model.Quest, error) {
	s.mu.Lock()
	idx := s.indexLocked(questID)
	if idx < 0 {
		s.mu.Unlock()
		return model.Quest{}, fmt.Errorf("%w: quest %s", ErrNotFound, questID)
	}
	q := &s.quests[idx]
	if q.Status.IsTerminal() {
		s.mu.Unlock()
		return model.Quest{}, fmt.Errorf("%w: %s is %s", ErrQuestTerminal, questID, q.Status)
	}
	si := q.StepIndex(stepID)
	if si < 0 {
		s.mu.Unlock()
		return model.Quest{}, fmt.Errorf("%w: step %s", ErrNotFound, stepID)
	}

	q.Steps[si].IsCompleted = !q.Steps[si].IsCompleted
	q.LastUpdate = s.now()

	completed, leveled := false, false
	if q.AllStepsCompleted() {
		q.Status = model.QuestStatusCompleted
		s.stats, leveled = s.stats.Award(q.XP)
		completed = true
	}
	out := q.Clone()
	stats := s.stats
	v, snap := s.commitLocked()
	s.mu.Unlock()
	s.save(v, snap)

	if !completed {
		s.publish(Change{Kind: ChangeUpdated, QuestID: questID})
		return out, nil
	}

	s.logger.Info("quest completed",
		zap.String("quest_id", questID),
		zap.Int("xp", out.XP),
		zap.Int("total_xp", stats.TotalXP),
		zap.Int("level", stats.Level))
	s.notifier.ClearQuest(questID)
	if leveled {
		s.notifier.Notify("", "LEVEL UP!", fmt.Sprintf("You reached Level %d!", stats.Level), model.NotificationLevelUp)
	}
	s.notifier.Notify("", "Quest Complete!", fmt.Sprintf("Gained %d XP", out.XP), model.NotificationInfo)
	s.publish(Change{Kind: ChangeCompleted, QuestID: questID})
	return out, nil
}

// Abandon asks confirm and, if accepted, marks the quest abandoned. No xp
// changes hands.
func (s *Store) Abandon(ctx context.Context, questID string, confirm Confirmer) (model.Quest, error) {
	current, err := s.activeQuest(questID)
	if err != nil {
		return model.Quest{}, err
	}
	if confirm == nil || !confirm.Confirm(ctx, current) {
		return model.Quest{}, ErrNotConfirmed
	}

	s.mu.Lock()
	idx := s.indexLocked(questID)
	if idx < 0 {
		s.mu.Unlock()
		return model.Quest{}, fmt.Errorf("%w: quest %s", ErrNotFound, questID)
	}
	q := &s.quests[idx]
	if q.Status.IsTerminal() {
		s.mu.Unlock()
		return model.Quest{}, fmt.Errorf("%w: %s is %s", ErrQuestTerminal, questID, q.Status)
	}
	q.Status = model.QuestStatusAbandoned
	q.LastUpdate = s.now()
	out := q.Clone()
	v, snap := s.commitLocked()
	s.mu.Unlock()
	s.save(v, snap)

	s.logger.Info("quest abandoned", zap.String("quest_id", questID))
	s.notifier.ClearQuest(questID)
	s.publish(Change{Kind: ChangeAbandoned, QuestID: questID})
	return out, nil
}

func (s *Store) SetLanguage(lang model.Language) {
	s.mu.Lock()
	if s.lang == lang {
		s.mu.Unlock()
		return
	}
	s.lang = lang
	v, snap := s.commitLocked()
	s.mu.Unlock()
	s.save(v, snap)
	s.publish(Change{Kind: ChangeLanguage})
}

func (s *Store) Get(questID string) (model.Quest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(questID)
	if idx < 0 {
		return model.Quest{}, fmt.Errorf("%w: quest %s", ErrNotFound, questID)
	}
	return s.quests[idx].Clone(), nil
}

func (s *Store) Stats() model.UserStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Store) Language() model.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

func (s *Store) Snapshot() storage.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

type Filter struct {
	Status   model.QuestStatus
	DueToday bool
	Category string
}

// List returns quests matching every set field of f, newest first.
func (s *Store) List(f Filter) []model.Quest {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Quest, 0, len(s.quests))
	for _, q := range s.quests {
		if f.Status != "" && q.Status != f.Status {
			continue
		}
		if f.DueToday && (q.Status != model.QuestStatusActive || !q.DueOn(now)) {
			continue
		}
		if f.Category != "" && q.Category != f.Category {
			continue
		}
		out = append(out, q.Clone())
	}
	return out
}

// Categories returns the distinct non-empty categories of all quests, sorted.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, q := range s.quests {
		if q.Category == "" || seen[q.Category] {
			continue
		}
		seen[q.Category] = true
		out = append(out, q.Category)
	}
	sort.Strings(out)
	return out
}

func (s *Store) activeQuest(questID string) (model.Quest, error) {
	q, err := s.Get(questID)
	if err != nil {
		return model.Quest{}, err
	}
	if q.Status.IsTerminal() {
		return model.Quest{}, fmt.Errorf("%w: %s is %s", ErrQuestTerminal, questID, q.Status)
	}
	return q, nil
}

func (s *Store) indexLocked(questID string) int {
	for i := range s.quests {
		if s.quests[i].ID == questID {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() storage.Snapshot {
	quests := make([]model.Quest, len(s.quests))
	for i, q := range s.quests {
		quests[i] = q.Clone()
	}
	return storage.Snapshot{Quests: quests, Stats: s.stats, Language: s.lang}
}

// commitLocked stamps a new version and captures the state to persist.
func (s *Store) commitLocked() (uint64, storage.Snapshot) {
	s.version++
	return s.version, s.snapshotLocked()
}

// save writes snap unless a newer version has already been written.
func (s *Store) save(version uint64, snap storage.Snapshot) {
	if s.persist == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if version <= s.savedVersion {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.persist.Save(ctx, snap); err != nil {
		s.logger.Error("persist state failed", zap.Uint64("version", version), zap.Error(err))
		return
	}
	s.savedVersion = version
}

type nopNotifier struct{}

func (nopNotifier) Notify(questID, title, message string, typ model.NotificationType) model.Notification {
	return model.Notification{QuestID: questID, Title: title, Message: message, Type: typ}
}

func (nopNotifier) ClearQuest(string) int { return 0 }
