package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/questd/internal/model"
)

func TestOfflineGenerateQuestStepBounds(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	g := NewOfflineGateway()
	g.now = func() time.Time { return now }

	cases := []struct {
		minutes   int
		wantSteps int
		wantDiff  model.Difficulty
	}{
		{30, 3, model.DifficultyEasy},
		{5 * 24 * 60, 5, model.DifficultyMedium},
		{7 * 24 * 60, 7, model.DifficultyMedium},
		{30 * 24 * 60, 7, model.DifficultyHard},
	}
	for _, tc := range cases {
		d, err := g.GenerateQuest(context.Background(), GenerateRequest{Goal: "Learn X", DurationMinutes: tc.minutes})
		if err != nil {
			t.Fatalf("%d minutes: %v", tc.minutes, err)
		}
		if len(d.Steps) != tc.wantSteps || d.Difficulty != tc.wantDiff {
			t.Fatalf("%d minutes: got %d steps %s, want %d %s", tc.minutes, len(d.Steps), d.Difficulty, tc.wantSteps, tc.wantDiff)
		}
		end := now.Add(time.Duration(tc.minutes) * time.Minute)
		for i, s := range d.Steps {
			if !s.ScheduledAt.After(now) || !s.ScheduledAt.Before(end) {
				t.Fatalf("%d minutes: step %d scheduled outside quest window: %v", tc.minutes, i, s.ScheduledAt)
			}
			if i > 0 && !s.ScheduledAt.After(d.Steps[i-1].ScheduledAt) {
				t.Fatalf("%d minutes: steps not in order at %d", tc.minutes, i)
			}
		}
	}
}

func TestOfflineGenerateQuestRejectsEmptyGoal(t *testing.T) {
	_, err := NewOfflineGateway().GenerateQuest(context.Background(), GenerateRequest{DurationMinutes: 60})
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}

func TestOfflineAdviceUsesLanguageFallbacks(t *testing.T) {
	g := NewOfflineGateway()
	nudge, _ := g.Nudge(context.Background(), NudgeRequest{Language: model.LanguageFrench})
	if nudge != NudgeFallback(model.LanguageFrench) {
		t.Fatalf("unexpected nudge %q", nudge)
	}
	if NudgeFallback(model.Language("zz")) != NudgeFallback(model.DefaultLanguage) {
		t.Fatal("expected unknown language to use the default fallback")
	}
}
