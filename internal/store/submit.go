// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jeranaias/tutor-tui/internal/markdown"
	"github.com/jeranaias/tutor-tui/internal/model"
	"github.com/jeranaias/tutor-tui/internal/stream"
	"github.com/jeranaias/tutor-tui/internal/tutor"
)

// sessionTitleLen bounds the auto-title derived from the first message.
const sessionTitleLen = 50

// =============================================================================
// SUBMIT
// =============================================================================

// SubmitUserMessage appends a user message to the current session and
// starts streaming a tutor response. When no session exists one is
// created on the fly. While offline the submit is rejected with
// ErrNotReady and nothing changes; the caller keeps the draft.
//
// A session carries at most one active stream. Submitting into a
// session that is still streaming returns ErrStreamActive.
func (s *Store) SubmitUserMessage(content string) (model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return model.Message{}, ErrEmptyMessage
	}
	if s.monitor != nil && !s.monitor.IsOnline() {
		return model.Message{}, ErrNotReady
	}

	s.mu.Lock()

	sess := s.findSessionLocked(s.currentID)
	createdSession := false
	if sess == nil {
		sess = model.NewSession(model.OwnerStudent)
		s.sessions = append([]*model.Session{sess}, s.sessions...)
		s.messages[sess.ID] = nil
		s.currentID = sess.ID
		createdSession = true
	}
	sid := sess.ID

	if st := s.streams[sid]; st != nil {
		s.mu.Unlock()
		return model.Message{}, ErrStreamActive
	}

	msg := model.NewUserMessage(sid, content)
	s.messages[sid] = append(s.messages[sid], *msg)
	if sess.Title == "" {
		sess.Title = msg.Preview(sessionTitleLen)
	}
	s.touchLocked(sess)

	// sending -> sent happens at submit time; delivered follows after
	// the tracker's delay, read only once the viewport reports it
	stored := s.findMessageLocked(sid, msg.ID)
	if err := s.tracker.Advance(stored, model.StatusSent); err != nil {
		s.logf("store: advance to sent: %v", err)
	}
	s.tracker.ScheduleDelivered(sid, msg.ID)
	snapshot := *stored

	s.persistLocked(sid)
	s.indexLocked(snapshot)

	req := s.buildRequestLocked(sid)
	st := stream.New(sid)
	ctx, cancel := context.WithCancel(context.Background())
	st.SetCancelFunc(cancel)
	s.streams[sid] = st
	s.mu.Unlock()

	if createdSession {
		s.observer.SessionsChanged()
	}
	s.observer.MessageAppended(sid, snapshot)
	s.observer.MessageStatusChanged(sid, snapshot.ID, model.StatusSent)

	go s.generate(ctx, st, req)

	return snapshot, nil
}

// buildRequestLocked assembles the generation request from the most
// recent context window, oldest first. The just-appended user message
// is the final entry. Caller holds mu.
func (s *Store) buildRequestLocked(sessionID string) tutor.Request {
	msgs := s.messages[sessionID]
	start := 0
	if len(msgs) > s.window {
		start = len(msgs) - s.window
	}

	req := tutor.Request{SessionID: sessionID}
	if s.modes != nil {
		req.Mode = s.modes.Current().String()
	} else {
		req.Mode = model.ModeText.String()
	}
	tokens := 0
	for _, m := range msgs[start:] {
		req.Messages = append(req.Messages, tutor.Message{
			Role:    m.Role.String(),
			Content: m.Content,
		})
		tokens += m.EstimateTokens()
	}
	s.logf("store: request for %s carries %d messages, ~%d tokens", sessionID, len(req.Messages), tokens)
	return req
}

// =============================================================================
// STREAMING
// =============================================================================

// generate runs one streaming request. Exactly one termination path
// commits: complete, cancel, or failure. The stream's one-shot Finish
// arbitrates when paths race.
func (s *Store) generate(ctx context.Context, st *stream.State, req tutor.Request) {
	if s.gen == nil {
		s.handleFailure(st, tutor.ErrUnreachable)
		return
	}

	var completed bool
	err := s.gen.Generate(ctx, req, func(ev tutor.Event) {
		switch ev.Type {
		case tutor.EventDelta:
			s.handleDelta(st, ev.Delta)
		case tutor.EventComplete:
			completed = true
			s.handleComplete(st, ev)
		}
	})

	if err != nil {
		if errors.Is(err, context.Canceled) {
			// deliberate cancel; CancelActiveStream already committed
			return
		}
		s.handleFailure(st, err)
		return
	}
	if !completed {
		// stream ended cleanly without a completion event; accept the
		// accumulated content as the full response
		s.handleComplete(st, tutor.Event{Type: tutor.EventComplete})
	}
}

// handleDelta folds one delta into the stream and re-renders the
// cumulative text. Deltas arriving after a cancel are discarded by the
// stream itself.
func (s *Store) handleDelta(st *stream.State, delta string) {
	if !st.Append(delta) {
		return
	}
	raw := st.Content()
	s.observer.StreamDelta(st.SessionID(), markdown.Render(raw), raw)
}

// handleComplete commits the finished response as a delivered
// assistant message, attaching any media the backend produced.
func (s *Store) handleComplete(st *stream.State, ev tutor.Event) {
	deltas, ttft, took := st.DeltaCount(), st.TTFT(), st.Elapsed()
	content, ok := st.Finish()
	if !ok {
		return
	}
	s.logf("store: stream in %s finished: %d deltas, first after %s, total %s",
		st.SessionID(), deltas, ttft.Round(time.Millisecond), took.Round(time.Millisecond))

	msg := model.NewAssistantMessage(st.SessionID(), content, model.StatusDelivered)
	msg.Media = model.Media{AudioURL: ev.AudioURL, VideoURL: ev.VideoURL}
	s.commitAssistant(st.SessionID(), *msg, nil)
}

// handleFailure surfaces a generation error. Partial content already
// streamed is committed as delivered before the error is reported; the
// transcript never gains synthetic apology text.
func (s *Store) handleFailure(st *stream.State, err error) {
	content, ok := st.Finish()
	if !ok {
		return
	}

	sid := st.SessionID()
	if content != "" {
		msg := model.NewAssistantMessage(sid, content, model.StatusDelivered)
		s.commitAssistant(sid, *msg, err)
		return
	}

	s.mu.Lock()
	delete(s.streams, sid)
	s.mu.Unlock()
	s.logf("store: generation failed in %s: %v", sid, err)
	s.observer.StreamFailed(sid, err)
}

// commitAssistant appends a finished assistant message, drops the
// stream slot, persists, and notifies. A non-nil err means the stream
// failed after the partial was committed.
func (s *Store) commitAssistant(sessionID string, msg model.Message, err error) {
	s.mu.Lock()
	delete(s.streams, sessionID)

	sess := s.findSessionLocked(sessionID)
	if sess == nil {
		// session deleted while the response was in flight
		s.mu.Unlock()
		return
	}
	s.messages[sessionID] = append(s.messages[sessionID], msg)
	s.touchLocked(sess)
	s.persistLocked(sessionID)
	s.indexLocked(msg)
	s.mu.Unlock()

	s.observer.StreamCommitted(sessionID, msg)
	s.observer.SessionsChanged()
	if err != nil {
		s.logf("store: generation failed in %s after partial: %v", sessionID, err)
		s.observer.StreamFailed(sessionID, err)
	}
}

// =============================================================================
// CANCELLATION
// =============================================================================

// CancelStream stops the stream in the given session, current or not.
// Content received so far is committed as a delivered message; a stream
// with nothing accumulated yet just disappears. Returns false when the
// session was not streaming.
func (s *Store) CancelStream(sid string) bool {
	s.mu.Lock()
	st := s.streams[sid]
	s.mu.Unlock()

	if st == nil {
		return false
	}

	st.Cancel()
	content, ok := st.Finish()
	if !ok {
		return true
	}

	if content == "" {
		s.mu.Lock()
		delete(s.streams, sid)
		s.mu.Unlock()
		return true
	}

	msg := model.NewAssistantMessage(sid, content, model.StatusDelivered)
	s.commitAssistant(sid, *msg, nil)
	return true
}

// CancelActiveStream stops the current session's stream.
func (s *Store) CancelActiveStream() bool {
	s.mu.Lock()
	sid := s.currentID
	s.mu.Unlock()
	return s.CancelStream(sid)
}

// =============================================================================
// DELIVERY TIMER
// =============================================================================

// onDeliveryElapsed promotes a user message from sent to delivered once
// the tracker's delay passes. Messages already past sent are left alone.
func (s *Store) onDeliveryElapsed(sessionID, messageID string) {
	s.mu.Lock()

	msg := s.findMessageLocked(sessionID, messageID)
	if msg == nil || msg.Status != model.StatusSent {
		s.mu.Unlock()
		return
	}
	if err := s.tracker.Advance(msg, model.StatusDelivered); err != nil {
		s.mu.Unlock()
		s.logf("store: advance to delivered: %v", err)
		return
	}
	s.persistLocked(sessionID)
	s.mu.Unlock()

	s.observer.MessageStatusChanged(sessionID, messageID, model.StatusDelivered)
}

// indexLocked adds one message to the search index. Caller holds mu.
func (s *Store) indexLocked(msg model.Message) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexMessage(msg); err != nil {
		s.logf("store: could not index message %s: %v", msg.ID, err)
	}
}
