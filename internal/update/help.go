package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/questd/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.modeBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.Mode),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Active, Action: "active quests"},
		{Key: m.Keys.Completed, Action: "completed quests"},
		{Key: m.Keys.Abandoned, Action: "abandoned quests"},
		{Key: m.Keys.Today, Action: "due today"},
		{Key: m.Keys.Category, Action: "by category"},
		{Key: m.Keys.New, Action: "new quest"},
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) modeBindings() []KeyBinding {
	switch m.Mode {
	case ModeList:
		out := []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "enter", Action: "open quest"},
		}
		if m.CurrentView == ViewCategory {
			out = append(out, KeyBinding{Key: "c", Action: "next category"})
		}
		return out
	case ModeDetail:
		return []KeyBinding{
			{Key: "j/k", Action: "move step cursor"},
			{Key: "space", Action: "toggle step"},
			{Key: "a", Action: "abandon quest"},
			{Key: "esc", Action: "close quest"},
		}
	case ModeConfirm:
		return []KeyBinding{
			{Key: "y", Action: "confirm abandon"},
			{Key: "n", Action: "keep quest"},
		}
	case ModeCreate:
		return []KeyBinding{
			{Key: "tab", Action: "next field"},
			{Key: "left/right", Action: "change duration"},
			{Key: "enter", Action: "accept quest"},
			{Key: "esc", Action: "cancel"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.modeBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.modeBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
