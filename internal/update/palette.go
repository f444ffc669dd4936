package update

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/questd/internal/commands"
	"github.com/sandeepkv93/questd/internal/gateway"
	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/quests"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m, nil
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var next tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		New: func(a commands.NewArgs) (commands.Result, error) {
			var started Model
			started, next = m.startCreate(quests.CreateRequest{Goal: a.Goal, DurationMinutes: a.DurationMinutes})
			if next == nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: started.Status.Text}
			}
			m = started
			return commands.Result{Message: fmt.Sprintf("drafting quest: %s", a.Goal)}, nil
		},
		Show: func(s commands.ShowArgs) (commands.Result, error) {
			view := viewForSubject(s.Subject)
			if view == ViewCategory && m.store != nil && !contains(m.store.Categories(), s.Category) {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no quests in category %q", s.Category)}
			}
			m.switchView(view, s.Category)
			return commands.Result{Message: fmt.Sprintf("showing %s quests", strings.ToLower(string(view)))}, nil
		},
		Abandon: func() (commands.Result, error) {
			q, ok := m.selectedQuest()
			if !ok || (m.Mode != ModeDetail && m.Mode != ModeConfirm) {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "open a quest before abandoning it"}
			}
			if !m.beginAbandon(q) {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: m.Status.Text}
			}
			return commands.Result{Message: "abandon quest? [y/n]"}, nil
		},
		Lang: func(l commands.LangArgs) (commands.Result, error) {
			lang := model.ParseLanguage(l.Tag)
			if m.store != nil {
				m.store.SetLanguage(lang)
			}
			m.Language = lang
			return commands.Result{Message: fmt.Sprintf("language set to %s", lang.Name())}, nil
		},
		Suggest: func() (commands.Result, error) {
			title, ok := m.suggestionSource()
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "complete a quest first"}
			}
			if m.advisor == nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeHandlerMissing, Message: "no advisor configured"}
			}
			next = suggestCmd(m.advisor, title, m.Language)
			return commands.Result{Message: fmt.Sprintf("asking for quests after %q", title)}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message, IsError: false}
	m.refresh()
	return m, next
}

func viewForSubject(s commands.Subject) View {
	switch s {
	case commands.SubjectCompleted:
		return ViewCompleted
	case commands.SubjectAbandoned:
		return ViewAbandoned
	case commands.SubjectToday:
		return ViewToday
	case commands.SubjectCategory:
		return ViewCategory
	default:
		return ViewActive
	}
}

// suggestionSource is the open quest if it is completed, otherwise the most
// recently completed one.
func (m Model) suggestionSource() (string, bool) {
	if q, ok := m.selectedQuest(); ok && m.Mode != ModeList && q.Status == model.QuestStatusCompleted {
		return q.Title, true
	}
	if m.store == nil {
		return "", false
	}
	done := m.store.List(quests.Filter{Status: model.QuestStatusCompleted})
	if len(done) == 0 {
		return "", false
	}
	latest := done[0]
	for _, q := range done[1:] {
		if q.LastUpdate.After(latest.LastUpdate) {
			latest = q
		}
	}
	return latest.Title, true
}

func suggestCmd(advisor gateway.Advisor, title string, lang model.Language) tea.Cmd {
	return func() tea.Msg {
		ideas, err := advisor.RecommendNext(context.Background(), title, lang)
		return SuggestionsMsg{ForTitle: title, Ideas: ideas, Err: err}
	}
}
