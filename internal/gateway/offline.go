package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/questd/internal/model"
)

// OfflineGateway drafts quests locally from templates. It is used when no
// API key is configured.
type OfflineGateway struct {
	now func() time.Time
}

func NewOfflineGateway() *OfflineGateway {
	return &OfflineGateway{now: time.Now}
}

var stageNames = []string{"Scout", "Prepare", "Practice", "Build", "Refine", "Prove", "Reflect"}

func (g *OfflineGateway) GenerateQuest(ctx context.Context, req GenerateRequest) (Draft, error) {
	if err := ctx.Err(); err != nil {
		return Draft{}, err
	}
	goal := strings.TrimSpace(req.Goal)
	if goal == "" || req.DurationMinutes <= 0 {
		return Draft{}, fmt.Errorf("%w: goal and duration are required", ErrGeneration)
	}

	days := (req.DurationMinutes + 24*60 - 1) / (24 * 60)
	n := days
	if n < MinSteps {
		n = MinSteps
	}
	if n > MaxSteps {
		n = MaxSteps
	}

	start := g.now()
	span := time.Duration(req.DurationMinutes) * time.Minute
	gap := span / time.Duration(n+1)
	stepMinutes := req.DurationMinutes / (n * 4)
	if stepMinutes < 15 {
		stepMinutes = 15
	}
	if stepMinutes > 120 {
		stepMinutes = 120
	}

	steps := make([]DraftStep, 0, n)
	for i := 0; i < n; i++ {
		stage := stageNames[i*len(stageNames)/n]
		steps = append(steps, DraftStep{
			Title:           fmt.Sprintf("%s: %s", stage, goal),
			Description:     fmt.Sprintf("Stage %d of %d toward %q.", i+1, n, goal),
			Recommendation:  fmt.Sprintf("Block %d focused minutes and finish one visible piece.", stepMinutes),
			ScheduledAt:     start.Add(gap * time.Duration(i+1)),
			DurationMinutes: stepMinutes,
		})
	}

	difficulty := model.DifficultyMedium
	switch {
	case days <= 1:
		difficulty = model.DifficultyEasy
	case days > 14:
		difficulty = model.DifficultyHard
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "General"
	}
	return Draft{
		Title:       "Quest: " + goal,
		Category:    category,
		Description: fmt.Sprintf("A %d-stage quest line to %s.", n, goal),
		Difficulty:  difficulty,
		XP:          100 * n,
		Steps:       steps,
	}, nil
}

func (g *OfflineGateway) Nudge(ctx context.Context, req NudgeRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return NudgeFallback(req.Language), nil
}

func (g *OfflineGateway) CatchUpStrategy(ctx context.Context, req StrategyRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return StrategyFallback(req.Language), nil
}

func (g *OfflineGateway) RecommendNext(ctx context.Context, completedTitle string, _ model.Language) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(strings.TrimPrefix(completedTitle, "Quest:"))
	if title == "" {
		return nil, errors.New("gateway: completed quest title is required")
	}
	return []string{
		"Teach someone else: " + title,
		"Go deeper: " + title,
		"Build a project with: " + title,
	}, nil
}
