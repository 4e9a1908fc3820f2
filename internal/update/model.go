package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/runtrack/internal/model"
	"github.com/sandeepkv93/runtrack/internal/notify"
	"github.com/sandeepkv93/runtrack/internal/scheduler"
	"github.com/sandeepkv93/runtrack/internal/tracker"
)

type View string

const (
	ViewGoals         View = "Goals"
	ViewRuns          View = "Runs"
	ViewNotifications View = "Notifications"
	ViewStats         View = "Stats"
)

var allViews = []View{ViewGoals, ViewRuns, ViewNotifications, ViewStats}

type StatusBar struct {
	Text     string
	Severity notify.Severity
}

func (s StatusBar) IsError() bool {
	return s.Severity == notify.SeverityError
}

type GlobalKeyMap struct {
	Goals         string
	Runs          string
	Notifications string
	Stats         string
	Help          string
	Quit          string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Options struct {
	Service       *tracker.Service
	Scheduler     *scheduler.Engine
	Toasts        *ToastQueue
	ToastDuration time.Duration
	CheckInterval time.Duration
}

type Model struct {
	CurrentView   View
	Status        StatusBar
	Keys          GlobalKeyMap
	Palette       CommandPaletteState
	HelpVisible   bool
	Quitting      bool
	LastError     error
	Overview      tracker.Overview
	Notifications []model.Notification
	Unread        int
	GoalCursor    int
	NoteCursor    int
	Scheduler     *scheduler.Engine

	ctx           context.Context
	service       *tracker.Service
	toasts        *ToastQueue
	toastDuration time.Duration
	checkInterval time.Duration
	statusSeq     int

	goalProgress  progress.Model
	runTable      table.Model
	commandInput  textinput.Model
	helpModel     help.Model
	statsViewport viewport.Model
}

// Toast is one transient message for the status bar.
type Toast struct {
	Message  string
	Severity notify.Severity
}

// ToastQueue carries engine toasts into the UI loop. Toasts beyond the buffer
// are dropped.
type ToastQueue struct {
	ch chan Toast
}

func NewToastQueue(size int) *ToastQueue {
	if size <= 0 {
		size = 1
	}
	return &ToastQueue{ch: make(chan Toast, size)}
}

func (q *ToastQueue) Toast(message string, severity notify.Severity) {
	select {
	case q.ch <- Toast{Message: message, Severity: severity}:
	default:
	}
}

func (q *ToastQueue) C() <-chan Toast {
	return q.ch
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

// ClearStatusMsg expires the status set with the same sequence number.
type ClearStatusMsg struct {
	Seq int
}

type ToastMsg struct {
	Toast Toast
}

type AppErrorMsg struct {
	Err error
}

type SchedulerEventMsg struct {
	Event scheduler.Event
}

type RefreshMsg struct{}

func NewModel(ctx context.Context, opts Options) Model {
	if opts.ToastDuration <= 0 {
		opts.ToastDuration = 4 * time.Second
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = 15 * time.Minute
	}
	m := Model{
		CurrentView: ViewGoals,
		Scheduler:   opts.Scheduler,
		Keys: GlobalKeyMap{
			Goals:         "1",
			Runs:          "2",
			Notifications: "3",
			Stats:         "4",
			Help:          "?",
			Quit:          "q",
		},
		ctx:           ctx,
		service:       opts.Service,
		toasts:        opts.Toasts,
		toastDuration: opts.ToastDuration,
		checkInterval: opts.CheckInterval,
	}
	m.initBubbleComponents()
	m.reload()
	m.scheduleInitial()
	return m
}
