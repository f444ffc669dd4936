// Package gateway is the boundary to the text-generation service that drafts
// quests and writes nudges and catch-up advice.
package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/sandeepkv93/questd/internal/model"
)

// ErrGeneration marks a quest draft that could not be produced or trusted.
var ErrGeneration = errors.New("gateway: quest generation failed")

type GenerateRequest struct {
	Goal            string
	DurationMinutes int
	Language        model.Language
	Category        string
}

type NudgeRequest struct {
	QuestTitle string
	Language   model.Language
}

type StrategyRequest struct {
	QuestTitle string
	StepTitle  string
	Language   model.Language
}

// Draft is a generated quest before the store assigns identity and dates.
type Draft struct {
	Title       string
	Category    string
	Description string
	Difficulty  model.Difficulty
	XP          int
	Steps       []DraftStep
}

type DraftStep struct {
	Title           string
	Description     string
	Recommendation  string
	ScheduledAt     time.Time
	DurationMinutes int
}

type Generator interface {
	GenerateQuest(ctx context.Context, req GenerateRequest) (Draft, error)
}

type Advisor interface {
	Nudge(ctx context.Context, req NudgeRequest) (string, error)
	CatchUpStrategy(ctx context.Context, req StrategyRequest) (string, error)
	RecommendNext(ctx context.Context, completedTitle string, lang model.Language) ([]string, error)
}

// Gateway is the full set of calls the application makes.
type Gateway interface {
	Generator
	Advisor
}
