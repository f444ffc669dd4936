package update

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/questd/internal/commands"
	"github.com/sandeepkv93/questd/internal/quests"
	"github.com/sandeepkv93/questd/internal/views"
)

type durationPreset struct {
	Label   string
	Minutes int
}

var durationPresets = []durationPreset{
	{Label: "15 min", Minutes: 15},
	{Label: "30 min", Minutes: 30},
	{Label: "1 hour", Minutes: 60},
	{Label: "2 hours", Minutes: 120},
}

func durationSteps() int {
	return len(durationPresets) + commands.MaxQuestDays
}

// durationAt maps a slider position to a label and a length in minutes.
func durationAt(pos int) (string, int) {
	if pos < len(durationPresets) {
		p := durationPresets[pos]
		return p.Label, p.Minutes
	}
	days := pos - len(durationPresets) + 1
	label := fmt.Sprintf("%d days", days)
	if days == 1 {
		label = "1 day"
	}
	return label, days * 24 * 60
}

func (m *Model) openCreateForm() tea.Cmd {
	m.Mode = ModeCreate
	m.Create = CreateFormState{Field: fieldGoal, DurationPos: 1}
	m.goalArea.Reset()
	m.categoryInput.SetValue("")
	m.categoryInput.Blur()
	m.Status = StatusBar{Text: "new quest"}
	return m.goalArea.Focus()
}

func (m Model) handleCreateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.Create.Pending {
		if msg.String() == "esc" {
			m.cancelPendingCreate()
			m.Mode = ModeList
			m.Status = StatusBar{Text: "quest creation cancelled"}
		}
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.Mode = ModeList
		m.goalArea.Blur()
		m.categoryInput.Blur()
		m.Status = StatusBar{Text: "quest creation closed"}
		return m, nil
	case "tab":
		m.focusField((m.Create.Field + 1) % 3)
		return m, nil
	case "shift+tab":
		m.focusField((m.Create.Field + 2) % 3)
		return m, nil
	case "enter":
		goal := strings.TrimSpace(m.goalArea.Value())
		_, minutes := durationAt(m.Create.DurationPos)
		return m.startCreate(quests.CreateRequest{
			Goal:            goal,
			DurationMinutes: minutes,
			Category:        strings.TrimSpace(m.categoryInput.Value()),
		})
	}

	switch m.Create.Field {
	case fieldDuration:
		switch msg.String() {
		case "left", "h":
			if m.Create.DurationPos > 0 {
				m.Create.DurationPos--
			}
		case "right", "l":
			if m.Create.DurationPos < durationSteps()-1 {
				m.Create.DurationPos++
			}
		}
	case fieldCategory:
		if msg.Type == tea.KeyRunes {
			m.categoryInput.SetValue(m.categoryInput.Value() + string(msg.Runes))
			return m, nil
		}
		var cmd tea.Cmd
		m.categoryInput, cmd = m.categoryInput.Update(msg)
		return m, cmd
	default:
		switch msg.Type {
		case tea.KeyRunes:
			m.goalArea.InsertString(string(msg.Runes))
			return m, nil
		case tea.KeySpace:
			m.goalArea.InsertString(" ")
			return m, nil
		}
		var cmd tea.Cmd
		m.goalArea, cmd = m.goalArea.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) focusField(f createField) {
	m.Create.Field = f
	m.goalArea.Blur()
	m.categoryInput.Blur()
	switch f {
	case fieldGoal:
		m.goalArea.Focus()
	case fieldCategory:
		m.categoryInput.Focus()
	}
}

// startCreate hands the request to the store in the background. Only one
// create runs from the form at a time.
func (m Model) startCreate(req quests.CreateRequest) (Model, tea.Cmd) {
	if req.Goal == "" {
		m.Status = StatusBar{Text: "a quest needs a goal", IsError: true}
		return m, nil
	}
	if m.store == nil {
		m.Status = StatusBar{Text: "no quest store", IsError: true}
		return m, nil
	}
	if m.Create.Pending {
		m.Status = StatusBar{Text: "a quest is already being drafted", IsError: true}
		return m, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelCreate = cancel
	m.Mode = ModeCreate
	m.Create.Pending = true
	m.Status = StatusBar{Text: "drafting quest..."}
	return m, tea.Batch(m.createSpinner.Tick, createQuestCmd(ctx, m.store, req))
}

func (m *Model) cancelPendingCreate() {
	if m.cancelCreate != nil {
		m.cancelCreate()
		m.cancelCreate = nil
	}
	m.Create.Pending = false
}

func createQuestCmd(ctx context.Context, store *quests.Store, req quests.CreateRequest) tea.Cmd {
	return func() tea.Msg {
		q, err := store.Create(ctx, req)
		if err != nil {
			return QuestCreateFailedMsg{Err: err}
		}
		return QuestCreatedMsg{Quest: q}
	}
}

func (m Model) onQuestCreated(msg QuestCreatedMsg) Model {
	m.cancelPendingCreate()
	m.goalArea.Reset()
	m.categoryInput.SetValue("")
	m.CurrentView = ViewActive
	m.Mode = ModeDetail
	m.SelectedQuestID = msg.Quest.ID
	m.StepCursor = 0
	m.Status = StatusBar{Text: fmt.Sprintf("quest accepted: %s", msg.Quest.Title)}
	m.refresh()
	for i, q := range m.Rows {
		if q.ID == msg.Quest.ID {
			m.Cursor = i
		}
	}
	return m
}

func (m Model) onQuestCreateFailed(msg QuestCreateFailedMsg) Model {
	if errors.Is(msg.Err, context.Canceled) {
		return m
	}
	m.cancelPendingCreate()
	m.LastError = msg.Err
	m.Status = StatusBar{Text: msg.Err.Error(), IsError: true}
	m.refresh()
	return m
}

func (m Model) renderCreateForm() string {
	label, _ := durationAt(m.Create.DurationPos)
	return views.RenderCreateForm(views.CreateFormData{
		GoalView:     m.goalArea.View(),
		CategoryView: m.categoryInput.View(),
		Duration:     label,
		Focus:        m.Create.Field.String(),
		Pending:      m.Create.Pending,
		SpinnerView:  m.createSpinner.View(),
	})
}
