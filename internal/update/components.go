package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/quests"
	"github.com/sandeepkv93/questd/internal/views"
)

const paneWidth = 54

func (m *Model) initBubbleComponents() {
	cols := []table.Column{
		{Title: "Quest", Width: 22},
		{Title: "Category", Width: 10},
		{Title: "Steps", Width: 5},
		{Title: "Diff", Width: 6},
		{Title: "XP", Width: 5},
	}
	m.questTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(10))

	m.goalArea = textarea.New()
	m.goalArea.SetWidth(paneWidth - 2)
	m.goalArea.SetHeight(3)
	m.goalArea.ShowLineNumbers = false
	m.goalArea.Placeholder = "What do you want to achieve?"
	m.goalArea.CharLimit = 500

	m.categoryInput = textinput.New()
	m.categoryInput.Prompt = "category> "
	m.categoryInput.CharLimit = 40
	m.categoryInput.Width = 32

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.xpProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(20), progress.WithoutPercentage())
	m.questProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(paneWidth-10))

	m.createSpinner = spinner.New()
	m.createSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.adviceViewport = viewport.New(paneWidth, 10)
}

// refresh re-reads everything the screen shows from the store and the feed.
func (m *Model) refresh() {
	if m.store != nil {
		m.Stats = m.store.Stats()
		m.Language = m.store.Language()
		m.Rows = m.store.List(m.currentFilter())
	}
	if m.feed != nil {
		m.Notifications = m.feed.Items()
	}
	if m.Cursor >= len(m.Rows) {
		m.Cursor = len(m.Rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Mode == ModeList {
		m.SelectedQuestID = ""
		if len(m.Rows) > 0 {
			m.SelectedQuestID = m.Rows[m.Cursor].ID
		}
	}
	m.syncBubbleData()
}

func (m *Model) currentFilter() quests.Filter {
	switch m.CurrentView {
	case ViewCompleted:
		return quests.Filter{Status: model.QuestStatusCompleted}
	case ViewAbandoned:
		return quests.Filter{Status: model.QuestStatusAbandoned}
	case ViewToday:
		return quests.Filter{DueToday: true}
	case ViewCategory:
		if m.Category == "" && m.store != nil {
			if cats := m.store.Categories(); len(cats) > 0 {
				m.Category = cats[0]
			}
		}
		if m.Category == "" {
			// No quests yet; match nothing rather than everything.
			return quests.Filter{Category: "\x00"}
		}
		return quests.Filter{Category: m.Category}
	default:
		return quests.Filter{Status: model.QuestStatusActive}
	}
}

func (m *Model) syncBubbleData() {
	rows := make([]table.Row, 0, len(m.Rows))
	for _, q := range m.Rows {
		rows = append(rows, table.Row{
			q.Title,
			q.Category,
			fmt.Sprintf("%d/%d", q.CompletedSteps(), len(q.Steps)),
			string(q.Difficulty),
			fmt.Sprintf("%d", q.XP),
		})
	}
	m.questTable.SetRows(rows)
	if len(rows) > 0 && m.Cursor < len(rows) {
		m.questTable.SetCursor(m.Cursor)
	}

	if m.Mode == ModeDetail || m.Mode == ModeConfirm {
		if q, ok := m.selectedQuest(); ok && m.StepCursor < len(q.Steps) {
			st := q.Steps[m.StepCursor]
			strategy := ""
			if st.OverdueStrategy != nil {
				strategy = *st.OverdueStrategy
			}
			m.adviceViewport.SetContent(views.RenderAdvice(st.Recommendation, strategy, paneWidth-2))
		}
	}
}

func (m Model) selectedQuest() (model.Quest, bool) {
	if m.store == nil || m.SelectedQuestID == "" {
		return model.Quest{}, false
	}
	q, err := m.store.Get(m.SelectedQuestID)
	if err != nil {
		return model.Quest{}, false
	}
	return q, true
}

func notificationData(items []model.Notification) []views.NotificationData {
	out := make([]views.NotificationData, 0, len(items))
	for _, n := range items {
		out = append(out, views.NotificationData{Title: n.Title, Message: n.Message, Type: string(n.Type)})
	}
	return out
}

func waitForChangeCmd(ch <-chan quests.Change) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return StoreChangedMsg{Change: c}
	}
}

func waitForFeedCmd(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return FeedChangedMsg{}
	}
}
