// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/tutor-tui/internal/connectivity"
	"github.com/jeranaias/tutor-tui/internal/markdown"
	"github.com/jeranaias/tutor-tui/internal/mode"
	"github.com/jeranaias/tutor-tui/internal/model"
	"github.com/jeranaias/tutor-tui/internal/store"
	"github.com/jeranaias/tutor-tui/internal/tutor"
)

// fakeSender records messages the bridge delivers.
type fakeSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (f *fakeSender) Send(msg tea.Msg) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

func newTestModel(t *testing.T, gen tutor.Generator, monitor *connectivity.Monitor) (*Model, *store.Store) {
	t.Helper()
	st := store.New(store.Options{
		Generator:     gen,
		Monitor:       monitor,
		DeliveryDelay: time.Hour,
		Logf:          t.Logf,
	})
	m := New(Options{
		Store:     st,
		Modes:     mode.NewController(nil),
		Online:    monitor == nil || monitor.IsOnline(),
		ShowTicks: true,
	})
	resized, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return resized.(*Model), st
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// =============================================================================
// BRIDGE TESTS
// =============================================================================

func TestBridge_ForwardsNotifications(t *testing.T) {
	sender := &fakeSender{}
	b := NewBridge(sender)

	b.MessageAppended("s1", model.Message{ID: "m1"})
	b.MessageStatusChanged("s1", "m1", model.StatusSent)
	b.StreamDelta("s1", markdown.Render("hi"), "hi")
	b.StreamCommitted("s1", model.Message{ID: "m2"})
	b.StreamFailed("s1", tutor.ErrGenerationFailed)
	b.SessionsChanged()
	b.ConnectivityChanged(false)

	if sender.count() != 7 {
		t.Fatalf("forwarded %d messages, want 7", sender.count())
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if _, ok := sender.msgs[0].(MessageAppendedMsg); !ok {
		t.Errorf("msg 0 = %T", sender.msgs[0])
	}
	if got, ok := sender.msgs[6].(ConnectivityMsg); !ok || got.Online {
		t.Errorf("msg 6 = %#v", sender.msgs[6])
	}
}

// =============================================================================
// MODEL TESTS
// =============================================================================

func TestModel_WelcomeBeforeFirstMessage(t *testing.T) {
	m, _ := newTestModel(t, &tutor.Scripted{}, nil)
	view := m.View()
	if !strings.Contains(view, "Welcome") {
		t.Error("empty transcript should show the welcome screen")
	}
}

func TestModel_SubmitClearsInput(t *testing.T) {
	m, st := newTestModel(t, &tutor.Scripted{Responses: []string{"sure"}}, nil)
	m.input.SetValue("help me factor x^2-4")

	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(*Model)

	if m.input.Value() != "" {
		t.Error("accepted submit should clear the draft")
	}
	if len(st.Sessions()) != 1 {
		t.Error("submit should create a session")
	}
	if !m.streaming {
		t.Error("submit should enter streaming state")
	}
}

func TestModel_OfflineSubmitKeepsDraft(t *testing.T) {
	monitor := connectivity.NewMonitor(false)
	m, st := newTestModel(t, &tutor.Scripted{}, monitor)
	m.input.SetValue("still here?")

	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(*Model)

	if m.input.Value() != "still here?" {
		t.Error("rejected submit must keep the draft")
	}
	if m.lastError == "" {
		t.Error("offline submit should surface an error")
	}
	if len(st.Sessions()) != 0 {
		t.Error("offline submit must not create a session")
	}
}

func TestModel_StreamDeltaUpdatesView(t *testing.T) {
	m, st := newTestModel(t, &tutor.Scripted{
		Responses: []string{"one two three four five six seven eight"},
		Delay:     150 * time.Millisecond,
	}, nil)

	m.input.SetValue("question")
	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(*Model)
	sid := st.CurrentSessionID()

	updated, _ = m.Update(StreamDeltaMsg{
		SessionID: sid,
		Nodes:     markdown.Render("partial answer"),
		Raw:       "partial answer",
	})
	m = updated.(*Model)

	if !m.streaming {
		t.Error("delta should mark the model streaming")
	}
	if !strings.Contains(m.View(), "partial answer") {
		t.Error("view missing the streamed content")
	}

	st.CancelStream(sid)
	updated, _ = m.Update(StreamCommittedMsg{SessionID: sid})
	m = updated.(*Model)
	if m.streaming {
		t.Error("commit should end the streaming state")
	}
}

func TestModel_LateDeltaAfterCommitIgnored(t *testing.T) {
	m, st := newTestModel(t, &tutor.Scripted{}, nil)
	sess := st.CreateSession(model.OwnerStudent)

	// the stream already committed; its slot is gone
	updated, _ := m.Update(StreamCommittedMsg{SessionID: sess.ID})
	m = updated.(*Model)

	updated, _ = m.Update(StreamDeltaMsg{SessionID: sess.ID, Raw: "straggler"})
	m = updated.(*Model)
	if m.streaming {
		t.Error("a late delta must not revive the streaming indicator")
	}
}

func TestModel_DeltaForOtherSessionIgnored(t *testing.T) {
	m, st := newTestModel(t, &tutor.Scripted{}, nil)
	st.CreateSession(model.OwnerStudent)

	updated, _ := m.Update(StreamDeltaMsg{SessionID: "sess_other", Raw: "elsewhere"})
	m = updated.(*Model)

	if m.streaming {
		t.Error("delta for another session must not affect this view")
	}
}

func TestModel_SessionPicker(t *testing.T) {
	m, st := newTestModel(t, &tutor.Scripted{}, nil)
	st.CreateSession(model.OwnerStudent)
	time.Sleep(2 * time.Millisecond)
	st.CreateSession(model.OwnerStudent)

	updated, _ := m.Update(keyMsg("ctrl+s"))
	m = updated.(*Model)
	if m.view != viewSessions {
		t.Fatal("ctrl+s should open the session picker")
	}
	if !strings.Contains(m.View(), "Sessions") {
		t.Error("picker view missing title")
	}

	updated, _ = m.Update(keyMsg("esc"))
	m = updated.(*Model)
	if m.view != viewChat {
		t.Error("esc should close the picker")
	}
}

func TestModel_CycleMode(t *testing.T) {
	m, _ := newTestModel(t, &tutor.Scripted{}, nil)

	want := []model.ResponseMode{model.ModeVoice, model.ModeVideo, model.ModeText}
	for _, expect := range want {
		updated, _ := m.Update(keyMsg("ctrl+t"))
		m = updated.(*Model)
		if got := m.mode(); got != expect {
			t.Errorf("mode = %v, want %v", got, expect)
		}
	}
}

func TestModel_RecordRequiresCaptureMode(t *testing.T) {
	m, _ := newTestModel(t, &tutor.Scripted{}, nil)

	m.toggleRecording()
	if m.recording {
		t.Error("recording must not start in text mode")
	}
	if m.lastError == "" {
		t.Error("text mode record attempt should explain itself")
	}
}

func TestModel_ConnectivityBadge(t *testing.T) {
	m, _ := newTestModel(t, &tutor.Scripted{}, nil)

	updated, _ := m.Update(ConnectivityMsg{Online: false})
	m = updated.(*Model)
	if !strings.Contains(m.View(), "OFFLINE") {
		t.Error("offline view missing badge")
	}

	updated, _ = m.Update(ConnectivityMsg{Online: true})
	m = updated.(*Model)
	if strings.Contains(m.View(), "OFFLINE") {
		t.Error("online view should drop the badge")
	}
}

func TestModel_TranscriptMsgFillsInput(t *testing.T) {
	m, _ := newTestModel(t, &tutor.Scripted{}, nil)
	m.recording = true

	updated, _ := m.Update(TranscriptMsg{Text: "what is gravity"})
	m = updated.(*Model)
	if m.input.Value() != "what is gravity" {
		t.Errorf("input = %q", m.input.Value())
	}
	if !m.recording {
		t.Error("interim transcript must not stop the recording")
	}

	updated, _ = m.Update(TranscriptMsg{Text: "what is gravity exactly", Final: true})
	m = updated.(*Model)
	if m.recording {
		t.Error("final transcript ends the recording")
	}
}
