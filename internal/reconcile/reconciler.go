// Package reconcile runs the background passes that attach catch-up advice
// to overdue steps and nudge quests that have gone quiet.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	cronlib "github.com/robfig/cron/v3"
	"github.com/sandeepkv93/questd/internal/gateway"
	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/quests"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultOverdueInterval     = time.Minute
	DefaultInactivityInterval  = time.Hour
	DefaultInactivityThreshold = 24 * time.Hour
	DefaultMaxConcurrent       = 4
)

type QuestStore interface {
	OverdueSteps(now time.Time) []quests.StepRef
	AttachStrategies(results []quests.StrategyResult) []quests.StepRef
	MostInactive(now time.Time, threshold time.Duration) (model.Quest, bool)
	Language() model.Language
	WhileActive(questID string, fn func()) bool
}

type Notifier interface {
	Notify(questID, title, message string, typ model.NotificationType) model.Notification
}

type Config struct {
	OverdueInterval     time.Duration
	InactivityInterval  time.Duration
	InactivityThreshold time.Duration
	MaxConcurrent       int
	Logger              *zap.Logger
}

type Reconciler struct {
	store    QuestStore
	advisor  gateway.Advisor
	notifier Notifier
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time

	mu     sync.Mutex
	cron   *cronlib.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(store QuestStore, advisor gateway.Advisor, notifier Notifier, cfg Config) *Reconciler {
	if cfg.OverdueInterval <= 0 {
		cfg.OverdueInterval = DefaultOverdueInterval
	}
	if cfg.InactivityInterval <= 0 {
		cfg.InactivityInterval = DefaultInactivityInterval
	}
	if cfg.InactivityThreshold <= 0 {
		cfg.InactivityThreshold = DefaultInactivityThreshold
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		store:    store,
		advisor:  advisor,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Start runs both checks once in the background and then schedules them. Each job is skipped
// while its previous run is still in flight.
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return errors.New("reconcile: already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	c := cronlib.New(cronlib.WithChain(cronlib.SkipIfStillRunning(cronlib.DiscardLogger)))
	if _, err := c.AddFunc(every(r.cfg.OverdueInterval), func() { r.runPass(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("schedule overdue pass: %w", err)
	}
	if _, err := c.AddFunc(every(r.cfg.InactivityInterval), func() { r.runInactivity(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("schedule inactivity check: %w", err)
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.runPass(ctx)
		r.runInactivity(ctx)
	}()

	c.Start()
	r.cron = c
	r.cancel = cancel
	r.logger.Info("reconciler started",
		zap.Duration("overdue_interval", r.cfg.OverdueInterval),
		zap.Duration("inactivity_interval", r.cfg.InactivityInterval))
	return nil
}

// Stop cancels in-flight passes and waits for running jobs to return.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	c, cancel := r.cron, r.cancel
	r.cron, r.cancel = nil, nil
	r.mu.Unlock()
	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
	r.wg.Wait()
	r.logger.Info("reconciler stopped")
}

func every(d time.Duration) string {
	return "@every " + d.String()
}

func (r *Reconciler) runPass(ctx context.Context) {
	if _, err := r.Pass(ctx); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Warn("overdue pass failed", zap.Error(err))
	}
}

func (r *Reconciler) runInactivity(ctx context.Context) {
	if err := r.CheckInactivity(ctx); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Warn("inactivity check failed", zap.Error(err))
	}
}

// Pass fetches a catch-up strategy for every eligible overdue step and
// attaches the successful ones in a single commit. It returns how many
// steps were updated.
func (r *Reconciler) Pass(ctx context.Context) (int, error) {
	refs := r.store.OverdueSteps(r.now())
	if len(refs) == 0 {
		return 0, nil
	}
	lang := r.store.Language()

	fetched := make([]*quests.StrategyResult, len(refs))
	var g errgroup.Group
	g.SetLimit(r.cfg.MaxConcurrent)
	for i, ref := range refs {
		g.Go(func() error {
			strategy, err := r.advisor.CatchUpStrategy(ctx, gateway.StrategyRequest{
				QuestTitle: ref.QuestTitle,
				StepTitle:  ref.StepTitle,
				Language:   lang,
			})
			if err != nil {
				r.logger.Warn("catch-up strategy fetch failed",
					zap.String("quest_id", ref.QuestID),
					zap.String("step_id", ref.StepID),
					zap.Error(err))
				return nil
			}
			fetched[i] = &quests.StrategyResult{Ref: ref, Strategy: strategy}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	results := make([]quests.StrategyResult, 0, len(fetched))
	for _, res := range fetched {
		if res != nil {
			results = append(results, *res)
		}
	}
	applied := r.store.AttachStrategies(results)
	for _, ref := range applied {
		raised := r.store.WhileActive(ref.QuestID, func() {
			r.notifier.Notify(ref.QuestID, "Step Overdue: "+ref.StepTitle, strategyFor(results, ref), model.NotificationAlert)
		})
		if !raised {
			r.logger.Debug("overdue alert skipped, quest closed", zap.String("quest_id", ref.QuestID))
		}
	}
	r.logger.Debug("overdue pass done",
		zap.Int("eligible", len(refs)),
		zap.Int("fetched", len(results)),
		zap.Int("applied", len(applied)))
	return len(applied), nil
}

func strategyFor(results []quests.StrategyResult, ref quests.StepRef) string {
	for _, res := range results {
		if res.Ref == ref {
			return res.Strategy
		}
	}
	return ""
}

// CheckInactivity nudges the quest that has gone longest without an update,
// if it is past the threshold. At most one nudge is sent per call.
func (r *Reconciler) CheckInactivity(ctx context.Context) error {
	quest, ok := r.store.MostInactive(r.now(), r.cfg.InactivityThreshold)
	if !ok {
		return nil
	}
	nudge, err := r.advisor.Nudge(ctx, gateway.NudgeRequest{
		QuestTitle: quest.Title,
		Language:   r.store.Language(),
	})
	if err != nil {
		return fmt.Errorf("nudge quest %s: %w", quest.ID, err)
	}
	sent := r.store.WhileActive(quest.ID, func() {
		r.notifier.Notify(quest.ID, "Quest Master's Nudge", nudge, model.NotificationReminder)
	})
	if !sent {
		r.logger.Debug("inactivity nudge skipped, quest closed", zap.String("quest_id", quest.ID))
		return nil
	}
	r.logger.Info("inactivity nudge sent", zap.String("quest_id", quest.ID))
	return nil
}
