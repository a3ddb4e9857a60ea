// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// SESSION WATCHER
// =============================================================================

// SessionWatcher re-indexes session files rewritten outside this
// process. Watches the session directory and applies changes to the
// index after a debounce window, so a burst of writes to one file
// costs one re-index.
type SessionWatcher struct {
	ix       *MessageIndex
	loadDoc  func(id string) error // re-index one session, by id
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]time.Time // session id -> last change time
	removed map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSessionWatcher creates a watcher over the session directory.
// reindex is called with a session id for created or rewritten files;
// deleted files are removed from the index directly.
func NewSessionWatcher(ix *MessageIndex, sessionDir string, debounce time.Duration, reindex func(id string) error) (*SessionWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(sessionDir); err != nil {
		w.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	sw := &SessionWatcher{
		ix:       ix,
		loadDoc:  reindex,
		watcher:  w,
		debounce: debounce,
		pending:  make(map[string]time.Time),
		removed:  make(map[string]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}

	go sw.processEvents()
	go sw.processPending()

	ix.mu.Lock()
	ix.watcher = sw
	ix.mu.Unlock()

	return sw, nil
}

// sessionIDFromPath extracts the session id from a session file path.
// Returns empty string for paths that are not session documents.
func sessionIDFromPath(path string) string {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".json") {
		return ""
	}
	return strings.TrimSuffix(name, ".json")
}

// processEvents folds filesystem events into the pending map.
func (sw *SessionWatcher) processEvents() {
	for {
		select {
		case <-sw.ctx.Done():
			return

		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}

			id := sessionIDFromPath(event.Name)
			if id == "" {
				continue
			}

			switch {
			case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
				sw.mu.Lock()
				sw.pending[id] = time.Now()
				delete(sw.removed, id)
				sw.mu.Unlock()

			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				sw.mu.Lock()
				sw.removed[id] = struct{}{}
				delete(sw.pending, id)
				sw.mu.Unlock()
			}

		case _, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// processPending applies debounced changes to the index.
func (sw *SessionWatcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sw.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			sw.mu.Lock()
			var toIndex, toRemove []string
			for id, changed := range sw.pending {
				if now.Sub(changed) >= sw.debounce {
					toIndex = append(toIndex, id)
					delete(sw.pending, id)
				}
			}
			for id := range sw.removed {
				toRemove = append(toRemove, id)
				delete(sw.removed, id)
			}
			sw.mu.Unlock()

			for _, id := range toIndex {
				sw.loadDoc(id)
			}
			for _, id := range toRemove {
				sw.ix.RemoveSession(id)
			}
		}
	}
}

// Close stops the watcher.
func (sw *SessionWatcher) Close() error {
	sw.cancel()
	return sw.watcher.Close()
}
