package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/questd/internal/views"
)

func (m Model) handleListKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "j", "down":
		if m.Cursor < len(m.Rows)-1 {
			m.Cursor++
		}
	case "k", "up":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "enter":
		if len(m.Rows) == 0 {
			return m
		}
		m.SelectedQuestID = m.Rows[m.Cursor].ID
		m.Mode = ModeDetail
		m.StepCursor = 0
	case "c":
		if m.CurrentView == ViewCategory {
			m.cycleCategory()
		}
	}
	m.refresh()
	return m
}

func (m *Model) switchView(v View, category string) {
	m.CurrentView = v
	m.Mode = ModeList
	m.Cursor = 0
	if v == ViewCategory && category != "" {
		m.Category = category
	}
	m.refresh()
}

func (m *Model) cycleCategory() {
	if m.store == nil {
		return
	}
	cats := m.store.Categories()
	if len(cats) == 0 {
		return
	}
	next := 0
	for i, c := range cats {
		if c == m.Category {
			next = (i + 1) % len(cats)
			break
		}
	}
	m.Category = cats[next]
	m.Cursor = 0
	m.Status = StatusBar{Text: fmt.Sprintf("category: %s", m.Category)}
}

func (m Model) renderQuestList() string {
	tabs := make([]views.TabData, 0, len(tabOrder))
	for _, v := range tabOrder {
		tabs = append(tabs, views.TabData{Name: string(v), Key: m.keyForView(v), Active: v == m.CurrentView})
	}
	category := ""
	if m.CurrentView == ViewCategory {
		category = m.Category
		if category == "" {
			category = "(none)"
		}
	}
	tableView := ""
	if len(m.Rows) > 0 {
		tableView = m.questTable.View()
	}
	return views.RenderQuestList(views.QuestListData{
		Tabs:       tabs,
		Category:   category,
		TableView:  tableView,
		SelectedID: m.SelectedQuestID,
	})
}

func (m Model) keyForView(v View) string {
	switch v {
	case ViewCompleted:
		return m.Keys.Completed
	case ViewAbandoned:
		return m.Keys.Abandoned
	case ViewToday:
		return m.Keys.Today
	case ViewCategory:
		return m.Keys.Category
	default:
		return m.Keys.Active
	}
}

func isKnownView(v View) bool {
	for _, known := range tabOrder {
		if v == known {
			return true
		}
	}
	return false
}
