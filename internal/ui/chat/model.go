// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/tutor-tui/internal/mode"
	"github.com/jeranaias/tutor-tui/internal/model"
	"github.com/jeranaias/tutor-tui/internal/store"
	"github.com/jeranaias/tutor-tui/internal/ui/components"
	"github.com/jeranaias/tutor-tui/internal/ui/styles"
)

// =============================================================================
// VIEW STATE
// =============================================================================

// activeView identifies which surface the keyboard drives.
type activeView int

const (
	viewChat activeView = iota
	viewSessions
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures the chat model.
type Options struct {
	Store *store.Store
	Modes *mode.Controller
	Theme *styles.Theme

	// Sender delivers speech capture callbacks onto the Bubble Tea
	// loop. Usually the tea.Program itself, set after construction
	// through SetSender.
	Sender Sender

	// Online is the connectivity state at startup.
	Online bool

	// CodeStyle is the chroma style for code blocks.
	CodeStyle string

	// ShowTicks controls the delivery tick display on student messages.
	ShowTicks bool
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the tutoring conversation. All
// conversation state lives in the store; this struct holds
// presentation state only.
type Model struct {
	theme  *styles.Theme
	keyMap KeyMap

	width  int
	height int
	ready  bool

	store *store.Store
	modes *mode.Controller

	viewport  viewport.Model
	input     textinput.Model
	spin      spinner.Model
	statusBar *components.StatusBar

	view          activeView
	sessionCursor int
	sessionList   []model.Session

	streaming bool
	streamRaw string
	recording bool
	offline   bool
	showHelp  bool
	lastError string

	sender    Sender
	codeStyle string
	showTicks bool
}

// New creates the chat model.
func New(opts Options) *Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	if opts.CodeStyle == "" {
		opts.CodeStyle = components.DefaultCodeStyle
	}

	input := textinput.New()
	input.Placeholder = "Ask your tutor anything..."
	input.CharLimit = 4000
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = theme.Spinner

	bar := components.NewStatusBar(theme)
	bar.Offline = !opts.Online

	m := &Model{
		theme:     theme,
		keyMap:    DefaultKeyMap(),
		store:     opts.Store,
		modes:     opts.Modes,
		input:     input,
		spin:      spin,
		statusBar: bar,
		offline:   !opts.Online,
		sender:    opts.Sender,
		codeStyle: opts.CodeStyle,
		showTicks: opts.ShowTicks,
	}
	m.refreshSessions()
	return m
}

// SetSender wires the running program in for speech callbacks. Must be
// called before the first recording starts.
func (m *Model) SetSender(sender Sender) {
	m.sender = sender
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

// =============================================================================
// STATE HELPERS
// =============================================================================

// currentSessionID returns the store's current session id.
func (m *Model) currentSessionID() string {
	if m.store == nil {
		return ""
	}
	return m.store.CurrentSessionID()
}

// refreshSessions re-caches the session list for the picker.
func (m *Model) refreshSessions() {
	if m.store == nil {
		m.sessionList = nil
		return
	}
	m.sessionList = m.store.Sessions()
	if m.sessionCursor >= len(m.sessionList) {
		m.sessionCursor = len(m.sessionList) - 1
	}
	if m.sessionCursor < 0 {
		m.sessionCursor = 0
	}
}

// refreshTranscript rebuilds the viewport content from the store and
// keeps the scroll position pinned to the bottom when it was there.
// A visible, bottom-scrolled transcript also reports read receipts.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	wasAtBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if wasAtBottom {
		m.viewport.GotoBottom()
	}
	if m.view == viewChat && m.viewport.AtBottom() && m.store != nil {
		if sid := m.currentSessionID(); sid != "" {
			m.store.MarkRead(sid)
		}
	}
}

// mode returns the active response mode, text when no controller is
// wired.
func (m *Model) mode() model.ResponseMode {
	if m.modes == nil {
		return model.ModeText
	}
	return m.modes.Current()
}
