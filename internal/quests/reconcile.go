package quests

import (
	"time"

	"github.com/sandeepkv93/questd/internal/model"
	"go.uber.org/zap"
)

// StepRef names one step of one quest.
type StepRef struct {
	QuestID    string
	QuestTitle string
	StepID     string
	StepTitle  string
}

type StrategyResult struct {
	Ref      StepRef
	Strategy string
}

// OverdueSteps lists open steps of active quests that are past schedule and
// have no catch-up strategy yet.
func (s *Store) OverdueSteps(now time.Time) []StepRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StepRef, 0)
	for _, q := range s.quests {
		if q.Status != model.QuestStatusActive {
			continue
		}
		for _, st := range q.Steps {
			if st.IsOverdue(now) {
				out = append(out, StepRef{QuestID: q.ID, QuestTitle: q.Title, StepID: st.ID, StepTitle: st.Title})
			}
		}
	}
	return out
}

// AttachStrategies stores each strategy on its step if the step still has
// none and its quest is still active. State is committed only when at least
// one step changed. The applied refs are returned.
func (s *Store) AttachStrategies(results []StrategyResult) []StepRef {
	if len(results) == 0 {
		return nil
	}
	now := s.now()
	s.mu.Lock()
	applied := make([]StepRef, 0, len(results))
	for _, r := range results {
		idx := s.indexLocked(r.Ref.QuestID)
		if idx < 0 {
			continue
		}
		q := &s.quests[idx]
		if q.Status != model.QuestStatusActive {
			continue
		}
		si := q.StepIndex(r.Ref.StepID)
		if si < 0 {
			continue
		}
		st := &q.Steps[si]
		if st.IsCompleted || st.OverdueStrategy != nil {
			continue
		}
		strategy := r.Strategy
		st.OverdueStrategy = &strategy
		q.LastUpdate = now
		applied = append(applied, r.Ref)
	}
	if len(applied) == 0 {
		s.mu.Unlock()
		return nil
	}
	v, snap := s.commitLocked()
	s.mu.Unlock()
	s.save(v, snap)

	s.logger.Info("catch-up strategies attached", zap.Int("steps", len(applied)))
	for _, ref := range applied {
		s.publish(Change{Kind: ChangeReconciled, QuestID: ref.QuestID})
	}
	return applied
}

// WhileActive runs fn under the store lock if the quest is still active and
// reports whether it ran. Completion and abandonment clear a quest's
// notifications only after its status changes, so a quest-scoped
// notification raised from fn is always cleared with the quest. fn must not
// call back into the store.
func (s *Store) WhileActive(questID string, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(questID)
	if idx < 0 || s.quests[idx].Status != model.QuestStatusActive {
		return false
	}
	fn()
	return true
}

// MostInactive returns the active quest whose last update is oldest, if that
// is more than threshold before now.
func (s *Store) MostInactive(now time.Time, threshold time.Duration) (model.Quest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	best := -1
	for i, q := range s.quests {
		if q.Status != model.QuestStatusActive || now.Sub(q.LastUpdate) <= threshold {
			continue
		}
		if best < 0 || q.LastUpdate.Before(s.quests[best].LastUpdate) {
			best = i
		}
	}
	if best < 0 {
		return model.Quest{}, false
	}
	return s.quests[best].Clone(), true
}
