// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/tutor-tui/internal/model"
	"github.com/jeranaias/tutor-tui/internal/speech"
	"github.com/jeranaias/tutor-tui/internal/store"
)

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		if m.view == viewSessions {
			return m.handleSessionKeys(msg)
		}
		return m.handleChatKeys(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case MessageAppendedMsg, StatusChangedMsg:
		m.refreshTranscript()
		return m, nil

	case StreamDeltaMsg:
		// A delta notification can race its stream's commit and arrive
		// after StreamCommittedMsg; only a still-active stream may turn
		// the streaming indicator back on.
		if msg.SessionID == m.currentSessionID() && m.store.ActiveStream(msg.SessionID) != nil {
			m.streaming = true
			m.streamRaw = msg.Raw
			m.refreshTranscript()
		}
		return m, nil

	case StreamCommittedMsg:
		if msg.SessionID == m.currentSessionID() {
			m.streaming = false
			m.streamRaw = ""
		}
		m.refreshTranscript()
		return m, nil

	case StreamFailedMsg:
		if msg.SessionID == m.currentSessionID() {
			m.streaming = false
			m.streamRaw = ""
		}
		if msg.Err != nil {
			m.lastError = msg.Err.Error()
		}
		m.refreshTranscript()
		return m, nil

	case SessionsChangedMsg:
		m.refreshSessions()
		m.refreshTranscript()
		return m, nil

	case ConnectivityMsg:
		m.offline = !msg.Online
		if msg.Online {
			m.lastError = ""
		}
		return m, nil

	case TranscriptMsg:
		m.input.SetValue(msg.Text)
		m.input.CursorEnd()
		if msg.Final {
			m.recording = false
		}
		return m, nil

	case CaptureErrorMsg:
		m.recording = false
		if msg.Err != nil {
			m.lastError = msg.Err.Error()
		}
		return m, nil
	}

	return m, nil
}

// handleResize lays out the viewport on terminal size changes.
func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.statusBar.SetWidth(msg.Width)
	m.input.Width = msg.Width - 6

	viewportHeight := msg.Height - chromeHeight
	if viewportHeight < 3 {
		viewportHeight = 3
	}
	if !m.ready {
		m.viewport = viewport.New(msg.Width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = viewportHeight
	}
	m.refreshTranscript()
	m.viewport.GotoBottom()
	return m, nil
}

// =============================================================================
// CHAT VIEW KEYS
// =============================================================================

func (m *Model) handleChatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Submit):
		m.submit()
		return m, nil

	case key.Matches(msg, m.keyMap.Cancel):
		if m.store != nil && m.store.CancelActiveStream() {
			m.streaming = false
			m.streamRaw = ""
			m.refreshTranscript()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.NewSession):
		if m.store != nil {
			m.store.CreateSession(model.OwnerStudent)
			m.refreshSessions()
			m.streaming = false
			m.streamRaw = ""
			m.refreshTranscript()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Sessions):
		m.refreshSessions()
		m.view = viewSessions
		m.sessionCursor = 0
		return m, nil

	case key.Matches(msg, m.keyMap.CycleMode):
		m.cycleMode()
		return m, nil

	case key.Matches(msg, m.keyMap.Record):
		m.toggleRecording()
		return m, nil

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		m.refreshTranscript()
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		m.refreshTranscript()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the draft to the store. A rejected submit keeps the
// draft so nothing typed is ever lost.
func (m *Model) submit() {
	if m.store == nil {
		return
	}
	draft := strings.TrimSpace(m.input.Value())
	if draft == "" {
		return
	}

	_, err := m.store.SubmitUserMessage(draft)
	switch {
	case err == nil:
		m.input.Reset()
		m.streaming = true
		m.streamRaw = ""
		m.lastError = ""
		m.refreshSessions()
		m.refreshTranscript()
	case errors.Is(err, store.ErrNotReady):
		m.lastError = "offline - reconnect to send"
	case errors.Is(err, store.ErrStreamActive):
		m.lastError = "wait for the current response (Esc to stop it)"
	default:
		m.lastError = err.Error()
	}
}

// cycleMode walks text -> voice -> video -> text.
func (m *Model) cycleMode() {
	if m.modes == nil {
		return
	}
	var next model.ResponseMode
	switch m.modes.Current() {
	case model.ModeText:
		next = model.ModeVoice
	case model.ModeVoice:
		next = model.ModeVideo
	default:
		next = model.ModeText
	}
	if err := m.modes.Set(next); err != nil {
		m.lastError = err.Error()
		return
	}
	if !next.UsesCapture() {
		// the controller flushed any live capture on the way out
		m.recording = false
	}
}

// toggleRecording starts or stops speech capture in voice and video
// modes. Transcripts land in the input field through TranscriptMsg.
func (m *Model) toggleRecording() {
	if m.modes == nil || !m.mode().UsesCapture() {
		m.lastError = "switch to voice or video mode to record"
		return
	}
	capture := m.modes.Capture()
	if capture == nil || !capture.IsSupported() {
		m.lastError = speech.ErrUnsupported.Error()
		return
	}

	if m.recording {
		if err := capture.Stop(); err != nil && !errors.Is(err, speech.ErrNotRecording) {
			m.lastError = err.Error()
		}
		m.recording = false
		return
	}

	sender := m.sender
	err := capture.Start(speech.Events{
		OnInterim: func(text string) {
			if sender != nil {
				sender.Send(TranscriptMsg{Text: text})
			}
		},
		OnFinal: func(text string) {
			if sender != nil {
				sender.Send(TranscriptMsg{Text: text, Final: true})
			}
		},
		OnError: func(err error) {
			if sender != nil {
				sender.Send(CaptureErrorMsg{Err: err})
			}
		},
	})
	if err != nil {
		m.lastError = err.Error()
		return
	}
	m.recording = true
	m.lastError = ""
}

// =============================================================================
// SESSION PICKER KEYS
// =============================================================================

func (m *Model) handleSessionKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Sessions), key.Matches(msg, m.keyMap.Cancel):
		m.view = viewChat
		return m, nil

	case key.Matches(msg, m.keyMap.Up):
		if m.sessionCursor > 0 {
			m.sessionCursor--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		if m.sessionCursor < len(m.sessionList)-1 {
			m.sessionCursor++
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		if m.sessionCursor < len(m.sessionList) {
			id := m.sessionList[m.sessionCursor].ID
			if err := m.store.SwitchSession(id); err == nil {
				m.view = viewChat
				m.streaming = m.store.ActiveStream(id) != nil
				m.streamRaw = ""
				m.refreshTranscript()
				m.viewport.GotoBottom()
			}
		}
		return m, nil

	case key.Matches(msg, m.keyMap.NewSession):
		m.store.CreateSession(model.OwnerStudent)
		m.refreshSessions()
		m.view = viewChat
		m.streaming = false
		m.streamRaw = ""
		m.refreshTranscript()
		return m, nil

	case msg.String() == "x", msg.String() == "delete":
		if m.sessionCursor < len(m.sessionList) {
			id := m.sessionList[m.sessionCursor].ID
			if err := m.store.DeleteSession(id); err == nil {
				m.refreshSessions()
			}
		}
		return m, nil
	}

	return m, nil
}
