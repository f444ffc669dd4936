package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type HeaderData struct {
	Level           int
	TotalXP         int
	XPIntoLevel     int
	XPPerLevel      int
	CompletedQuests int
	Language        string
	ProgressView    string
}

type TabData struct {
	Name   string
	Key    string
	Active bool
}

type QuestRowData struct {
	ID         string
	Title      string
	Category   string
	Difficulty string
	XP         int
	Done       int
	Total      int
	EndsIn     string
}

type QuestListData struct {
	Tabs       []TabData
	Category   string
	TableView  string
	Rows       []QuestRowData
	SelectedID string
}

type StepData struct {
	Title       string
	When        string
	Minutes     int
	Completed   bool
	Overdue     bool
	HasStrategy bool
}

type QuestDetailData struct {
	Title          string
	Category       string
	Description    string
	Status         string
	Difficulty     string
	XP             int
	Window         string
	ProgressView   string
	Steps          []StepData
	StepCursor     int
	AdviceView     string
	ConfirmAbandon bool
}

type CreateFormData struct {
	GoalView     string
	CategoryView string
	Duration     string
	Focus        string
	Pending      bool
	SpinnerView  string
}

type NotificationData struct {
	Title   string
	Message string
	Type    string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

var (
	tabActiveStyle  = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("12"))
	doneStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	overdueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	confirmStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	notifyTypeStyle = map[string]lipgloss.Style{
		"info":     lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		"reminder": lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		"level-up": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		"alert":    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
)

func RenderHeader(data HeaderData) string {
	return fmt.Sprintf("questd | LVL %d | XP %d (%d/%d) %s | completed: %d | lang: %s",
		data.Level,
		data.TotalXP,
		data.XPIntoLevel,
		data.XPPerLevel,
		data.ProgressView,
		data.CompletedQuests,
		data.Language,
	)
}

func RenderTabs(tabs []TabData) string {
	parts := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		label := fmt.Sprintf("[%s] %s", tab.Key, tab.Name)
		if tab.Active {
			label = tabActiveStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}

func RenderQuestList(data QuestListData) string {
	var b strings.Builder
	b.WriteString(RenderTabs(data.Tabs) + "\n")
	if data.Category != "" {
		b.WriteString(fmt.Sprintf("category: %s\n", data.Category))
	}
	if len(data.Rows) == 0 {
		b.WriteString(mutedStyle.Render("No quests here. Press [n] to embark on a journey!"))
		return b.String()
	}
	if data.TableView != "" {
		b.WriteString(data.TableView)
		return strings.TrimSpace(b.String())
	}
	for _, row := range data.Rows {
		cursor := " "
		if row.ID == data.SelectedID {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s [%d/%d] %s %dxp", cursor, row.Title, row.Done, row.Total, row.Difficulty, row.XP))
		if row.EndsIn != "" {
			b.WriteString(" " + mutedStyle.Render(row.EndsIn))
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderQuestDetail(data QuestDetailData) string {
	var b strings.Builder
	b.WriteString(accentStyle.Render(data.Title) + "\n")
	b.WriteString(fmt.Sprintf("%s | %s | %s | %dxp\n", data.Category, data.Difficulty, strings.ToUpper(data.Status), data.XP))
	if data.Window != "" {
		b.WriteString(mutedStyle.Render(data.Window) + "\n")
	}
	if data.Description != "" {
		b.WriteString(data.Description + "\n")
	}
	if data.ProgressView != "" {
		b.WriteString(data.ProgressView + "\n")
	}
	b.WriteString("\nsteps:\n")
	for i, st := range data.Steps {
		cursor := " "
		if i == data.StepCursor {
			cursor = ">"
		}
		box := "[ ]"
		title := st.Title
		switch {
		case st.Completed:
			box = "[x]"
			title = doneStyle.Render(title)
		case st.Overdue:
			title = overdueStyle.Render(title + " (overdue)")
		}
		b.WriteString(fmt.Sprintf("%s %s %s", cursor, box, title))
		if st.When != "" {
			b.WriteString(mutedStyle.Render(fmt.Sprintf(" @%s %dm", st.When, st.Minutes)))
		}
		if st.HasStrategy {
			b.WriteString(" *")
		}
		b.WriteString("\n")
	}
	if data.ConfirmAbandon {
		b.WriteString("\n" + confirmStyle.Render("Abandon this quest? No XP is granted. [y] confirm [n] cancel") + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderAdvice(recommendation, strategy string, width int) string {
	var md strings.Builder
	if strings.TrimSpace(recommendation) != "" {
		md.WriteString("### Recommendation\n\n" + recommendation + "\n\n")
	}
	if strings.TrimSpace(strategy) != "" {
		md.WriteString("### Catch-up strategy\n\n" + strategy + "\n")
	}
	return RenderMarkdown(md.String(), width)
}

func RenderCreateForm(data CreateFormData) string {
	var b strings.Builder
	b.WriteString(accentStyle.Render("NEW QUEST") + "\n")
	b.WriteString(marker(data.Focus == "goal") + "goal:\n" + data.GoalView + "\n")
	b.WriteString(marker(data.Focus == "category") + "category (optional):\n" + data.CategoryView + "\n")
	b.WriteString(marker(data.Focus == "duration") + "duration: < " + data.Duration + " >\n")
	if data.Pending {
		b.WriteString(data.SpinnerView + " The Quest Master is drafting your quest...\n")
	} else {
		b.WriteString(mutedStyle.Render("[tab] next field [left/right] duration [enter] accept [esc] cancel") + "\n")
	}
	return strings.TrimSpace(b.String())
}

func marker(focused bool) string {
	if focused {
		return "> "
	}
	return "  "
}

func RenderNotifications(items []NotificationData) string {
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(items))
	for _, n := range items {
		style, ok := notifyTypeStyle[n.Type]
		if !ok {
			style = lipgloss.NewStyle()
		}
		lines = append(lines, fmt.Sprintf("%s %s", style.Render(fmt.Sprintf("[%s] %s:", strings.ToUpper(n.Type), n.Title)), n.Message))
	}
	return strings.Join(lines, "\n")
}

func RenderSuggestions(forTitle string, ideas []string) string {
	if len(ideas) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("next quests after %q:\n", forTitle))
	for _, idea := range ideas {
		b.WriteString("- " + idea + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nview: %s\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
