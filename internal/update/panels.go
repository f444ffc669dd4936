package update

import (
	"strings"

	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/views"
)

func (m Model) renderHeader() string {
	return views.RenderHeader(views.HeaderData{
		Level:           m.Stats.Level,
		TotalXP:         m.Stats.TotalXP,
		XPIntoLevel:     m.Stats.XPIntoLevel(),
		XPPerLevel:      model.XPPerLevel,
		CompletedQuests: m.Stats.CompletedQuests,
		Language:        m.Language.Name(),
		ProgressView:    m.xpProgress.ViewAs(float64(m.Stats.XPIntoLevel()) / model.XPPerLevel),
	})
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func (m Model) renderNotificationsView() string {
	return views.RenderNotifications(notificationData(m.Notifications))
}

func (m Model) renderSuggestions() string {
	return views.RenderSuggestions(m.Suggestions.ForTitle, m.Suggestions.Ideas)
}

func (m Model) renderRightPane() string {
	var parts []string
	switch m.Mode {
	case ModeDetail, ModeConfirm:
		parts = append(parts, m.renderQuestDetail())
	default:
		if s := m.renderSuggestions(); s != "" {
			parts = append(parts, s)
		}
	}
	for _, extra := range []string{m.renderCommandPalette(), m.renderHelpIfVisible()} {
		if extra != "" {
			parts = append(parts, extra)
		}
	}
	if len(parts) == 0 {
		return "Select a quest and press [enter]."
	}
	return strings.Join(parts, "\n\n")
}
