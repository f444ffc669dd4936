package gateway

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/questd/internal/model"
)

const questMasterInstruction = `You are an RPG Quest Master. Transform user goals into a gamified quest line.
Break the goal into 3-7 logical, sequential steps (sub-quests).
Provide realistic RFC 3339 timestamps for each step between the start and end of the quest.
Give every step one practical recommendation.
Output should be professional yet engaging.`

func generatePrompt(req GenerateRequest, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a detailed quest breakdown for the goal: %q.\n", req.Goal)
	fmt.Fprintf(&b, "It must be completed within %s, starting %s.\n",
		humanDuration(req.DurationMinutes), now.UTC().Format(time.RFC3339))
	if c := strings.TrimSpace(req.Category); c != "" {
		fmt.Fprintf(&b, "Use the category %q.\n", c)
	}
	fmt.Fprintf(&b, "Write all text in %s.", req.Language.Name())
	return b.String()
}

func nudgePrompt(req NudgeRequest) string {
	return fmt.Sprintf("The user hasn't made progress on their quest: %q. "+
		"Give them a short, punchy, RPG-themed motivational nudge to get back on track. Answer in %s.",
		req.QuestTitle, req.Language.Name())
}

func strategyPrompt(req StrategyRequest) string {
	return fmt.Sprintf("The user missed the scheduled time for the step %q of their quest %q. "+
		"Suggest a short, concrete catch-up strategy so they can recover without derailing the quest. Answer in %s.",
		req.StepTitle, req.QuestTitle, req.Language.Name())
}

func recommendPrompt(completedTitle string, lang model.Language) string {
	return fmt.Sprintf("Based on the completed quest %q, suggest 3 potential next quests that would naturally "+
		"follow up or expand the user's skill set. Answer in %s.", completedTitle, lang.Name())
}

func humanDuration(minutes int) string {
	switch {
	case minutes >= 24*60 && minutes%(24*60) == 0:
		return fmt.Sprintf("%d days", minutes/(24*60))
	case minutes >= 60 && minutes%60 == 0:
		return fmt.Sprintf("%d hours", minutes/60)
	default:
		return fmt.Sprintf("%d minutes", minutes)
	}
}
