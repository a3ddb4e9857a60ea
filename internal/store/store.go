// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/jeranaias/tutor-tui/internal/connectivity"
	"github.com/jeranaias/tutor-tui/internal/index"
	"github.com/jeranaias/tutor-tui/internal/lifecycle"
	"github.com/jeranaias/tutor-tui/internal/mode"
	"github.com/jeranaias/tutor-tui/internal/model"
	"github.com/jeranaias/tutor-tui/internal/storage"
	"github.com/jeranaias/tutor-tui/internal/stream"
	"github.com/jeranaias/tutor-tui/internal/tutor"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotReady is returned by SubmitUserMessage while offline. The
	// caller keeps the draft; nothing is mutated.
	ErrNotReady = errors.New("assistant is not ready")

	// ErrSessionNotFound is returned for operations on unknown sessions.
	ErrSessionNotFound = errors.New("session not found")

	// ErrStreamActive is returned when a session already has a response
	// streaming. A session holds at most one active stream.
	ErrStreamActive = errors.New("a response is already streaming")

	// ErrEmptyMessage is returned for whitespace-only submits.
	ErrEmptyMessage = errors.New("message is empty")
)

// =============================================================================
// STORE
// =============================================================================

// DefaultContextWindow is the number of recent messages sent with each
// generation request.
const DefaultContextWindow = 20

// Options configures a Store. Storage, Index, Monitor, Modes, and
// Observer are optional; Generator is required for submits to work.
type Options struct {
	// ContextWindow bounds the context sent per request (default 20)
	ContextWindow int

	// DeliveryDelay paces the sent->delivered status promotion
	DeliveryDelay time.Duration

	// Storage persists session transcripts (nil = in-memory only)
	Storage *storage.SessionStore

	// Index maintains message search rows (nil = no indexing)
	Index *index.MessageIndex

	// Generator produces tutor responses
	Generator tutor.Generator

	// Monitor gates submits on connectivity (nil = always online)
	Monitor *connectivity.Monitor

	// Modes supplies the desired response mode per request
	Modes *mode.Controller

	// Observer receives state change notifications
	Observer Observer

	// Logf overrides the logger, mainly for tests
	Logf func(format string, args ...any)
}

// Store holds every session, its transcript, and any in-progress
// streams. See the package comment for the serialization contract.
type Store struct {
	mu sync.Mutex

	sessions  []*model.Session           // most recently active first
	messages  map[string][]model.Message // session id -> ordered transcript
	streams   map[string]*stream.State   // session id -> active stream
	currentID string

	window   int
	tracker  *lifecycle.Tracker
	storage  *storage.SessionStore
	index    *index.MessageIndex
	gen      tutor.Generator
	monitor  *connectivity.Monitor
	modes    *mode.Controller
	observer Observer
	logf     func(format string, args ...any)
}

// New creates a Store, loading any persisted sessions. A corrupt or
// missing storage dir degrades to an empty session list.
func New(opts Options) *Store {
	if opts.ContextWindow <= 0 {
		opts.ContextWindow = DefaultContextWindow
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	if opts.Logf == nil {
		opts.Logf = log.Printf
	}

	s := &Store{
		messages: make(map[string][]model.Message),
		streams:  make(map[string]*stream.State),
		window:   opts.ContextWindow,
		storage:  opts.Storage,
		index:    opts.Index,
		gen:      opts.Generator,
		monitor:  opts.Monitor,
		modes:    opts.Modes,
		observer: opts.Observer,
		logf:     opts.Logf,
	}

	s.tracker = lifecycle.NewTracker(opts.DeliveryDelay, nil)
	s.tracker.SetElapsedFunc(s.onDeliveryElapsed)
	s.tracker.SetLogf(s.logf)

	if s.storage != nil {
		docs, err := s.storage.LoadAll()
		if err != nil {
			s.logf("store: could not load sessions: %v", err)
		}
		for _, doc := range docs {
			sess := doc.Session
			s.sessions = append(s.sessions, &sess)
			s.messages[sess.ID] = doc.Messages

			// A shutdown between the sent append and the delivery tick
			// leaves the message parked at sent forever. Re-arm the
			// timer so the pipeline resumes after restart.
			for _, msg := range doc.Messages {
				if msg.Role == model.RoleUser && msg.Status == model.StatusSent {
					s.tracker.ScheduleDelivered(sess.ID, msg.ID)
				}
			}
		}
		if len(s.sessions) > 0 {
			s.currentID = s.sessions[0].ID
		}
	}

	if s.monitor != nil {
		s.monitor.Subscribe(func(online bool) {
			s.observer.ConnectivityChanged(online)
		})
	}

	return s
}

// Tracker exposes the lifecycle tracker, mainly for tests.
func (s *Store) Tracker() *lifecycle.Tracker {
	return s.tracker
}

// =============================================================================
// SESSION MANAGEMENT
// =============================================================================

// CreateSession creates a session, makes it current, and returns it.
func (s *Store) CreateSession(owner model.OwnerRole) model.Session {
	s.mu.Lock()
	sess := model.NewSession(owner)
	s.sessions = append([]*model.Session{sess}, s.sessions...)
	s.messages[sess.ID] = nil
	s.currentID = sess.ID
	s.persistLocked(sess.ID)
	snapshot := *sess
	s.mu.Unlock()

	s.observer.SessionsChanged()
	return snapshot
}

// SwitchSession makes an existing session current. The transcript is
// not mutated; read receipts come separately from the viewport.
func (s *Store) SwitchSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findSessionLocked(id) == nil {
		return ErrSessionNotFound
	}
	s.currentID = id
	return nil
}

// DeleteSession removes a session, its transcript, its persisted
// document, and its index rows. When the current session is deleted,
// currency falls to the next most recently active session.
func (s *Store) DeleteSession(id string) error {
	s.mu.Lock()

	if s.findSessionLocked(id) == nil {
		s.mu.Unlock()
		return ErrSessionNotFound
	}

	if st := s.streams[id]; st != nil {
		st.Cancel()
		st.Finish()
		delete(s.streams, id)
	}
	s.tracker.CancelSession(id)

	for i, sess := range s.sessions {
		if sess.ID == id {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			break
		}
	}
	delete(s.messages, id)

	if s.currentID == id {
		s.currentID = ""
		if len(s.sessions) > 0 {
			s.currentID = s.sessions[0].ID
		}
	}

	if s.storage != nil {
		if err := s.storage.Delete(id); err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
			s.logf("store: could not delete session %s: %v", id, err)
		}
	}
	if s.index != nil {
		if err := s.index.RemoveSession(id); err != nil {
			s.logf("store: could not drop index rows for %s: %v", id, err)
		}
	}
	s.mu.Unlock()

	s.observer.SessionsChanged()
	return nil
}

// ClearSession removes a session's messages while keeping the session.
// Pending delivery timers die with the messages, and an in-progress
// stream is discarded rather than committed into the emptied transcript.
func (s *Store) ClearSession(id string) error {
	s.mu.Lock()

	if s.findSessionLocked(id) == nil {
		s.mu.Unlock()
		return ErrSessionNotFound
	}

	if st := s.streams[id]; st != nil {
		st.Cancel()
		st.Finish()
		delete(s.streams, id)
	}
	s.tracker.CancelSession(id)
	s.messages[id] = nil
	s.persistLocked(id)

	if s.index != nil {
		if err := s.index.RemoveSession(id); err != nil {
			s.logf("store: could not drop index rows for %s: %v", id, err)
		}
	}
	s.mu.Unlock()

	s.observer.SessionsChanged()
	return nil
}

// Sessions returns all sessions, most recently active first. Activity
// is message append; switching sessions does not reorder the list.
func (s *Store) Sessions() []model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = *sess
	}
	return out
}

// CurrentSessionID returns the current session id, empty when no
// session exists yet.
func (s *Store) CurrentSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// CurrentSession returns the current session, false when none exists.
func (s *Store) CurrentSession() (model.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.findSessionLocked(s.currentID)
	if sess == nil {
		return model.Session{}, false
	}
	return *sess, true
}

// Messages returns a copy of a session's transcript in append order.
func (s *Store) Messages(sessionID string) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[sessionID]
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out
}

// ActiveStream returns the session's in-progress stream, nil if none.
func (s *Store) ActiveStream(sessionID string) *stream.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streams[sessionID]
}

// =============================================================================
// READ RECEIPTS
// =============================================================================

// MarkRead promotes the session's delivered user messages to read.
// Called by the presentation layer when the transcript is visible.
// Messages still awaiting their delivery tick are left alone; the
// status pipeline never skips a stage.
func (s *Store) MarkRead(sessionID string) {
	s.mu.Lock()

	var changed []string
	msgs := s.messages[sessionID]
	for i := range msgs {
		if msgs[i].Role != model.RoleUser || msgs[i].Status != model.StatusDelivered {
			continue
		}
		if err := s.tracker.Advance(&msgs[i], model.StatusRead); err == nil {
			changed = append(changed, msgs[i].ID)
		}
	}
	if len(changed) > 0 {
		s.persistLocked(sessionID)
	}
	s.mu.Unlock()

	for _, id := range changed {
		s.observer.MessageStatusChanged(sessionID, id, model.StatusRead)
	}
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

// findSessionLocked returns the session pointer or nil. Caller holds mu.
func (s *Store) findSessionLocked(id string) *model.Session {
	if id == "" {
		return nil
	}
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// findMessageLocked returns a pointer into the transcript slice, valid
// only while mu is held and no append happens.
func (s *Store) findMessageLocked(sessionID, messageID string) *model.Message {
	msgs := s.messages[sessionID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			return &msgs[i]
		}
	}
	return nil
}

// touchLocked bumps a session's activity and moves it to the head of
// the most-recent-first order. Caller holds mu.
func (s *Store) touchLocked(sess *model.Session) {
	sess.Touch()
	sort.SliceStable(s.sessions, func(i, j int) bool {
		return s.sessions[i].LastActivityAt.After(s.sessions[j].LastActivityAt)
	})
}

// persistLocked writes one session's document. Persistence failures are
// logged; the in-memory state remains authoritative. Caller holds mu.
func (s *Store) persistLocked(sessionID string) {
	if s.storage == nil {
		return
	}
	sess := s.findSessionLocked(sessionID)
	if sess == nil {
		return
	}
	doc := &storage.SessionDoc{
		Session:  *sess,
		Messages: s.messages[sessionID],
	}
	if err := s.storage.Save(doc); err != nil {
		s.logf("store: could not persist session %s: %v", sessionID, err)
	}
}
