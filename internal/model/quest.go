package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidStatus     = errors.New("model: invalid quest status")
	ErrInvalidDifficulty = errors.New("model: invalid quest difficulty")
)

type QuestStatus string

const (
	QuestStatusActive    QuestStatus = "active"
	QuestStatusCompleted QuestStatus = "completed"
	QuestStatusAbandoned QuestStatus = "abandoned"
)

func (s QuestStatus) IsValid() bool {
	switch s {
	case QuestStatusActive, QuestStatusCompleted, QuestStatusAbandoned:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s QuestStatus) IsTerminal() bool {
	return s == QuestStatusCompleted || s == QuestStatusAbandoned
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

type Step struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Recommendation  string    `json:"recommendation"`
	OverdueStrategy *string   `json:"overdueStrategy,omitempty"`
	IsCompleted     bool      `json:"isCompleted"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	DurationMinutes int       `json:"durationMinutes"`
}

// IsOverdue reports whether the step is past its schedule, still open, and
// has never received a catch-up strategy.
func (s Step) IsOverdue(now time.Time) bool {
	return !s.IsCompleted && s.OverdueStrategy == nil && s.ScheduledAt.Before(now)
}

func (s Step) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("model: step id is required")
	}
	if strings.TrimSpace(s.Title) == "" {
		return errors.New("model: step title is required")
	}
	if s.ScheduledAt.IsZero() {
		return errors.New("model: step scheduled_at is required")
	}
	if s.DurationMinutes < 0 {
		return errors.New("model: step duration must not be negative")
	}
	return nil
}

type Quest struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	StartDate   time.Time   `json:"startDate"`
	EndDate     time.Time   `json:"endDate"`
	Status      QuestStatus `json:"status"`
	Difficulty  Difficulty  `json:"difficulty"`
	XP          int         `json:"xp"`
	LastUpdate  time.Time   `json:"lastUpdate"`
	Steps       []Step      `json:"steps"`
}

func (q Quest) CompletedSteps() int {
	n := 0
	for _, s := range q.Steps {
		if s.IsCompleted {
			n++
		}
	}
	return n
}

// Progress is the completed share of steps as a percentage in [0,100].
func (q Quest) Progress() float64 {
	if len(q.Steps) == 0 {
		return 0
	}
	p := float64(q.CompletedSteps()) / float64(len(q.Steps)) * 100
	if p > 100 {
		return 100
	}
	return p
}

func (q Quest) AllStepsCompleted() bool {
	if len(q.Steps) == 0 {
		return false
	}
	return q.CompletedSteps() == len(q.Steps)
}

// DueOn reports whether the quest ends on the calendar day of now, in now's location.
func (q Quest) DueOn(now time.Time) bool {
	end := q.EndDate.In(now.Location())
	y1, m1, d1 := end.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (q Quest) StepIndex(stepID string) int {
	for i, s := range q.Steps {
		if s.ID == stepID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers cannot alias store-owned steps.
func (q Quest) Clone() Quest {
	out := q
	out.Steps = make([]Step, len(q.Steps))
	for i, s := range q.Steps {
		if s.OverdueStrategy != nil {
			v := *s.OverdueStrategy
			s.OverdueStrategy = &v
		}
		out.Steps[i] = s
	}
	return out
}

func (q Quest) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return errors.New("model: quest id is required")
	}
	if strings.TrimSpace(q.Title) == "" {
		return errors.New("model: quest title is required")
	}
	if !q.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, q.Status)
	}
	if !q.Difficulty.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, q.Difficulty)
	}
	if q.XP < 0 {
		return errors.New("model: quest xp must not be negative")
	}
	if q.StartDate.IsZero() || q.EndDate.IsZero() {
		return errors.New("model: quest start and end dates are required")
	}
	if q.EndDate.Before(q.StartDate) {
		return errors.New("model: quest end date precedes start date")
	}
	for i, s := range q.Steps {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}
