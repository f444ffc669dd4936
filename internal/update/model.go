package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/sandeepkv93/questd/internal/gateway"
	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/notify"
	"github.com/sandeepkv93/questd/internal/quests"
	"go.uber.org/zap"
)

type View string

const (
	ViewActive    View = "Active"
	ViewCompleted View = "Completed"
	ViewAbandoned View = "Abandoned"
	ViewToday     View = "Today"
	ViewCategory  View = "Category"
)

var tabOrder = []View{ViewActive, ViewCompleted, ViewAbandoned, ViewToday, ViewCategory}

type Mode string

const (
	ModeList    Mode = "list"
	ModeDetail  Mode = "detail"
	ModeCreate  Mode = "create"
	ModeConfirm Mode = "confirm"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Active    string
	Completed string
	Abandoned string
	Today     string
	Category  string
	New       string
	Help      string
	Quit      string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type createField int

const (
	fieldGoal createField = iota
	fieldCategory
	fieldDuration
)

func (f createField) String() string {
	switch f {
	case fieldGoal:
		return "goal"
	case fieldCategory:
		return "category"
	default:
		return "duration"
	}
}

type CreateFormState struct {
	Field createField
	// DurationPos indexes durationPresets first, then whole days.
	DurationPos int
	Pending     bool
}

type SuggestionState struct {
	ForTitle string
	Ideas    []string
}

// Deps are the long-lived services the UI drives.
type Deps struct {
	Store   *quests.Store
	Feed    *notify.Feed
	Advisor gateway.Advisor
	Logger  *zap.Logger
}

type Model struct {
	CurrentView     View
	Category        string
	Mode            Mode
	Cursor          int
	SelectedQuestID string
	StepCursor      int
	Rows            []model.Quest
	Stats           model.UserStats
	Language        model.Language
	Notifications   []model.Notification
	Suggestions     SuggestionState
	Palette         CommandPaletteState
	Create          CreateFormState
	HelpVisible     bool
	Status          StatusBar
	Keys            GlobalKeyMap
	Quitting        bool
	LastError       error

	store   *quests.Store
	feed    *notify.Feed
	advisor gateway.Advisor
	logger  *zap.Logger
	changes <-chan quests.Change
	feedCh  <-chan struct{}
	now     func() time.Time
	// cancelCreate aborts the in-flight create; its result is then dropped.
	cancelCreate context.CancelFunc

	questTable     table.Model
	goalArea       textarea.Model
	categoryInput  textinput.Model
	commandInput   textinput.Model
	xpProgress     progress.Model
	questProgress  progress.Model
	createSpinner  spinner.Model
	helpModel      help.Model
	adviceViewport viewport.Model
}

type SwitchViewMsg struct {
	View     View
	Category string
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type StoreChangedMsg struct {
	Change quests.Change
}

type FeedChangedMsg struct{}

type QuestCreatedMsg struct {
	Quest model.Quest
}

type QuestCreateFailedMsg struct {
	Err error
}

type SuggestionsMsg struct {
	ForTitle string
	Ideas    []string
	Err      error
}

func NewModel(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := Model{
		CurrentView: ViewActive,
		Mode:        ModeList,
		Stats:       model.DefaultUserStats(),
		Language:    model.DefaultLanguage,
		store:       deps.Store,
		feed:        deps.Feed,
		advisor:     deps.Advisor,
		logger:      logger,
		now:         time.Now,
		Keys: GlobalKeyMap{
			Active:    "1",
			Completed: "2",
			Abandoned: "3",
			Today:     "4",
			Category:  "5",
			New:       "n",
			Help:      "?",
			Quit:      "q",
		},
	}
	if m.store != nil {
		m.changes = m.store.Subscribe()
	}
	if m.feed != nil {
		m.feedCh = m.feed.Subscribe()
	}
	m.initBubbleComponents()
	m.refresh()
	return m
}
