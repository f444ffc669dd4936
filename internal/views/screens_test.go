package views

import (
	"strings"
	"testing"
)

func TestRenderQuestListEmpty(t *testing.T) {
	out := RenderQuestList(QuestListData{Tabs: []TabData{{Name: "Active", Key: "1", Active: true}}})
	if !strings.Contains(out, "No quests here") {
		t.Fatalf("expected empty hint: %q", out)
	}
}

func TestRenderQuestListMarksSelection(t *testing.T) {
	out := RenderQuestList(QuestListData{
		Rows: []QuestRowData{
			{ID: "a", Title: "Run 5k", Difficulty: "Medium", XP: 300, Done: 1, Total: 3},
			{ID: "b", Title: "Read book", Difficulty: "Easy", XP: 100, Done: 0, Total: 4},
		},
		SelectedID: "b",
	})
	if !strings.Contains(out, "> Read book [0/4] Easy 100xp") {
		t.Fatalf("expected selected row: %q", out)
	}
	if !strings.Contains(out, "  Run 5k [1/3] Medium 300xp") {
		t.Fatalf("expected unselected row: %q", out)
	}
}

func TestRenderQuestDetailSteps(t *testing.T) {
	out := RenderQuestDetail(QuestDetailData{
		Title:  "Run 5k",
		Status: "active",
		Steps: []StepData{
			{Title: "warm up", Completed: true},
			{Title: "intervals", Overdue: true, HasStrategy: false},
		},
		StepCursor:     1,
		ConfirmAbandon: true,
	})
	if !strings.Contains(out, "[x]") || !strings.Contains(out, "intervals (overdue)") {
		t.Fatalf("unexpected steps: %q", out)
	}
	if !strings.Contains(out, "Abandon this quest?") {
		t.Fatalf("expected confirmation prompt: %q", out)
	}
}

func TestRenderNotificationsKeepsOrder(t *testing.T) {
	out := RenderNotifications([]NotificationData{
		{Title: "LEVEL UP!", Message: "You reached Level 2!", Type: "level-up"},
		{Title: "Quest Complete!", Message: "Gained 300 XP", Type: "info"},
	})
	first := strings.Index(out, "LEVEL UP!")
	second := strings.Index(out, "Quest Complete!")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("unexpected order: %q", out)
	}
}

func TestRenderAdviceMarkdown(t *testing.T) {
	out := RenderAdvice("Stretch first", "Do it tonight", 40)
	if !strings.Contains(out, "Stretch") || !strings.Contains(out, "tonight") {
		t.Fatalf("expected advice text: %q", out)
	}
	if RenderAdvice("", "", 40) != "" {
		t.Fatal("expected empty advice")
	}
}
