package update

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/quests"
	"github.com/sandeepkv93/questd/internal/views"
)

const timeLayout = "Jan 2 15:04"

func (m Model) handleDetailKey(msg tea.KeyMsg) Model {
	q, ok := m.selectedQuest()
	if !ok {
		m.closeDetail()
		return m
	}
	switch msg.String() {
	case "esc", "backspace":
		m.closeDetail()
	case "j", "down":
		if m.StepCursor < len(q.Steps)-1 {
			m.StepCursor++
		}
	case "k", "up":
		if m.StepCursor > 0 {
			m.StepCursor--
		}
	case " ", "space":
		m.toggleSelectedStep(q)
	case "a":
		m.beginAbandon(q)
	}
	m.refresh()
	return m
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "y", "Y":
		m.abandonSelected()
	case "n", "N", "esc":
		m.Mode = ModeDetail
		m.Status = StatusBar{Text: "abandon cancelled"}
	}
	m.refresh()
	return m
}

func (m *Model) closeDetail() {
	m.Mode = ModeList
	m.StepCursor = 0
	m.refresh()
}

func (m *Model) toggleSelectedStep(q model.Quest) {
	if q.Status.IsTerminal() || m.StepCursor >= len(q.Steps) {
		m.Status = StatusBar{Text: fmt.Sprintf("quest is %s", q.Status), IsError: true}
		return
	}
	updated, err := m.store.ToggleStep(q.ID, q.Steps[m.StepCursor].ID)
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return
	}
	if updated.Status == model.QuestStatusCompleted {
		m.Status = StatusBar{Text: fmt.Sprintf("quest complete: +%d xp", updated.XP)}
		return
	}
	m.Status = StatusBar{Text: fmt.Sprintf("progress %d/%d", updated.CompletedSteps(), len(updated.Steps))}
}

func (m *Model) beginAbandon(q model.Quest) bool {
	if q.Status.IsTerminal() {
		m.Status = StatusBar{Text: fmt.Sprintf("quest is already %s", q.Status), IsError: true}
		return false
	}
	m.Mode = ModeConfirm
	m.Status = StatusBar{Text: "abandon quest? [y/n]"}
	return true
}

func (m *Model) abandonSelected() {
	_, err := m.store.Abandon(context.Background(), m.SelectedQuestID, quests.Confirmed)
	if err != nil && !errors.Is(err, quests.ErrNotConfirmed) {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.Mode = ModeDetail
		return
	}
	m.Status = StatusBar{Text: "quest abandoned"}
	m.Mode = ModeList
	m.StepCursor = 0
}

func (m Model) renderQuestDetail() string {
	q, ok := m.selectedQuest()
	if !ok {
		return "quest:\n(no selection)"
	}
	now := m.now()
	steps := make([]views.StepData, 0, len(q.Steps))
	for _, st := range q.Steps {
		steps = append(steps, views.StepData{
			Title:       st.Title,
			When:        st.ScheduledAt.Local().Format(timeLayout),
			Minutes:     st.DurationMinutes,
			Completed:   st.IsCompleted,
			Overdue:     !st.IsCompleted && st.ScheduledAt.Before(now),
			HasStrategy: st.OverdueStrategy != nil,
		})
	}
	detail := views.RenderQuestDetail(views.QuestDetailData{
		Title:          q.Title,
		Category:       q.Category,
		Description:    q.Description,
		Status:         string(q.Status),
		Difficulty:     string(q.Difficulty),
		XP:             q.XP,
		Window:         fmt.Sprintf("%s -> %s", q.StartDate.Local().Format(timeLayout), q.EndDate.Local().Format(timeLayout)),
		ProgressView:   m.questProgress.ViewAs(q.Progress() / 100),
		Steps:          steps,
		StepCursor:     m.StepCursor,
		ConfirmAbandon: m.Mode == ModeConfirm,
	})
	if advice := m.adviceViewport.View(); advice != "" {
		detail += "\n\n" + advice
	}
	return detail
}
