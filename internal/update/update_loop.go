package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/questd/internal/quests"
	"github.com/sandeepkv93/questd/internal/views"
	"go.uber.org/zap"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForChangeCmd(m.changes), waitForFeedCmd(m.feedCh))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.cancelPendingCreate()
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}
		if m.Mode == ModeCreate {
			return m.handleCreateKey(typed)
		}
		if m.Mode == ModeConfirm {
			return m.handleConfirmKey(typed), nil
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active", IsError: false}
			return m, nil
		case m.Keys.Active:
			m.switchView(ViewActive, "")
			return m, nil
		case m.Keys.Completed:
			m.switchView(ViewCompleted, "")
			return m, nil
		case m.Keys.Abandoned:
			m.switchView(ViewAbandoned, "")
			return m, nil
		case m.Keys.Today:
			m.switchView(ViewToday, "")
			return m, nil
		case m.Keys.Category:
			m.switchView(ViewCategory, "")
			return m, nil
		case m.Keys.New:
			cmd := m.openCreateForm()
			return m, cmd
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown", IsError: false}
			} else {
				m.Status = StatusBar{Text: "help hidden", IsError: false}
			}
			return m, nil
		case m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Mode == ModeDetail {
			return m.handleDetailKey(typed), nil
		}
		return m.handleListKey(typed), nil
	case spinner.TickMsg:
		if m.Create.Pending {
			var cmd tea.Cmd
			m.createSpinner, cmd = m.createSpinner.Update(typed)
			return m, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.switchView(typed.View, typed.Category)
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.logger.Warn("ui error", zap.Error(typed.Err))
		}
		return m, nil
	case StoreChangedMsg:
		if typed.Change.Kind == quests.ChangeAbandoned && typed.Change.QuestID == m.SelectedQuestID &&
			(m.Mode == ModeDetail || m.Mode == ModeConfirm) {
			m.Mode = ModeList
			m.StepCursor = 0
		}
		m.refresh()
		return m, waitForChangeCmd(m.changes)
	case FeedChangedMsg:
		m.refresh()
		return m, waitForFeedCmd(m.feedCh)
	case QuestCreatedMsg:
		return m.onQuestCreated(typed), nil
	case QuestCreateFailedMsg:
		return m.onQuestCreateFailed(typed), nil
	case SuggestionsMsg:
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			return m, nil
		}
		m.Suggestions = SuggestionState{ForTitle: typed.ForTitle, Ideas: typed.Ideas}
		m.Status = StatusBar{Text: fmt.Sprintf("%d quest ideas", len(typed.Ideas))}
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	leftPane := m.renderQuestList()
	if m.Mode == ModeCreate {
		leftPane = m.renderCreateForm()
	}

	return views.RenderApp(views.AppData{
		Header:       m.renderHeader(),
		LeftPane:     leftPane,
		RightPane:    m.renderRightPane(),
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: m.renderNotificationsView(),
		Footer: fmt.Sprintf("keys: %s-%s tabs | %s new | enter open | / cmd | %s help | %s quit",
			m.Keys.Active, m.Keys.Category, m.Keys.New, m.Keys.Help, m.Keys.Quit),
	})
}
