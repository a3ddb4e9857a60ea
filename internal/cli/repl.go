// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/tutor-tui/internal/config"
	"github.com/jeranaias/tutor-tui/internal/index"
	"github.com/jeranaias/tutor-tui/internal/markdown"
	"github.com/jeranaias/tutor-tui/internal/model"
	"github.com/jeranaias/tutor-tui/internal/storage"
	"github.com/jeranaias/tutor-tui/internal/store"
	"github.com/jeranaias/tutor-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle  = lipgloss.NewStyle().Foreground(styles.Teal).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(styles.TextSecondary)
	commandStyle = lipgloss.NewStyle().Foreground(styles.Emerald)
	warningStyle = lipgloss.NewStyle().Foreground(styles.Amber)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader wraps liner with persistent history.
type lineReader struct {
	line        *liner.State
	historyFile string
}

func newLineReader() *lineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	r := &lineReader{
		line:        line,
		historyFile: filepath.Join(configDir, "repl_history"),
	}
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

func (r *lineReader) read(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *lineReader) close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			r.line.WriteHistory(f)
			f.Close()
		}
	}
	r.line.Close()
}

// =============================================================================
// STREAM OBSERVER
// =============================================================================

// Observer echoes deltas to the terminal as they arrive and
// signals when the response terminates. Pass it to store.New before
// starting the REPL.
type Observer struct {
	store.NopObserver

	mu      sync.Mutex
	out     io.Writer
	printed int
	done    chan streamResult
}

type streamResult struct {
	message model.Message
	err     error
}

// NewObserver creates the observer the REPL shares with the store.
func NewObserver(out io.Writer) *Observer {
	return &Observer{
		out:  out,
		done: make(chan streamResult, 2),
	}
}

func (o *Observer) StreamDelta(sessionID string, nodes []markdown.Node, raw string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(raw) > o.printed {
		fmt.Fprint(o.out, raw[o.printed:])
		o.printed = len(raw)
	}
}

func (o *Observer) StreamCommitted(sessionID string, msg model.Message) {
	o.done <- streamResult{message: msg}
}

// StreamFailed prints the error itself. A failure after a partial
// commit produces both notifications and submit only waits for the
// first, so reporting cannot be left to the waiter.
func (o *Observer) StreamFailed(sessionID string, err error) {
	fmt.Fprintf(o.out, "\n%s %v\n", errorStyle.Render("[generation failed]"), err)
	o.done <- streamResult{err: err}
}

func (o *Observer) ConnectivityChanged(online bool) {
	if online {
		fmt.Fprintln(o.out, commandStyle.Render("[back online]"))
	} else {
		fmt.Fprintln(o.out, warningStyle.Render("[offline]"))
	}
}

// reset clears the echo position before a new submit.
func (o *Observer) reset() {
	o.mu.Lock()
	o.printed = 0
	o.mu.Unlock()
	// drain anything a previous cancelled wait left behind
	for {
		select {
		case <-o.done:
		default:
			return
		}
	}
}

// =============================================================================
// REPL
// =============================================================================

// Options wires the REPL to the conversation core.
type Options struct {
	Store    *store.Store
	Observer *Observer // the observer the store was constructed with
	Modes    modeController
	Index    *index.MessageIndex
	Storage  *storage.SessionStore
	Out      io.Writer
}

// modeController is the slice of mode.Controller the REPL uses.
type modeController interface {
	Current() model.ResponseMode
	Set(model.ResponseMode) error
}

// REPL is the plain-terminal conversation loop.
type REPL struct {
	store    *store.Store
	observer *Observer
	modes    modeController
	idx      *index.MessageIndex
	files    *storage.SessionStore
	out      io.Writer
	renderer *glamour.TermRenderer
}

// New creates a REPL. The observer must be the one the store was
// constructed with.
func New(opts Options) *REPL {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(TerminalWidth()),
	)
	return &REPL{
		store:    opts.Store,
		observer: opts.Observer,
		modes:    opts.Modes,
		idx:      opts.Index,
		files:    opts.Storage,
		out:      out,
		renderer: renderer,
	}
}

// Run drives the loop until quit or EOF.
func (r *REPL) Run() error {
	reader := newLineReader()
	defer reader.close()

	fmt.Fprintln(r.out, infoStyle.Render("tutor - type /help for commands, Ctrl+D to quit"))

	for {
		input, err := reader.read(promptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C or Ctrl+D ends the session
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				fmt.Fprintln(os.Stderr, err)
			}
			fmt.Fprintln(r.out)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			quit, err := r.handleCommand(input)
			if err != nil {
				fmt.Fprintf(r.out, "%s %v\n", errorStyle.Render("[error]"), err)
			}
			if quit {
				return nil
			}
			continue
		}

		r.submit(input)
	}
}

// submit sends one question and blocks until the response terminates.
func (r *REPL) submit(text string) {
	r.observer.reset()

	if _, err := r.store.SubmitUserMessage(text); err != nil {
		switch {
		case errors.Is(err, store.ErrNotReady):
			fmt.Fprintln(r.out, warningStyle.Render("[offline - your question was not sent]"))
		case errors.Is(err, store.ErrStreamActive):
			fmt.Fprintln(r.out, warningStyle.Render("[a response is still streaming]"))
		default:
			fmt.Fprintf(r.out, "%s %v\n", errorStyle.Render("[error]"), err)
		}
		return
	}

	result := <-r.observer.done
	fmt.Fprintln(r.out)

	if result.err != nil {
		// the observer already reported it; the partial, if any, was
		// committed and echoed
		return
	}

	// replace the raw echo with the rendered markdown
	if r.renderer != nil && result.message.Content != "" {
		if rendered, err := r.renderer.Render(result.message.Content); err == nil {
			fmt.Fprint(r.out, rendered)
		}
	}
	r.printMedia(result.message)

	// the transcript is on screen, report it read
	r.store.MarkRead(result.message.SessionID)
}

// printMedia lists the synthesized renditions of a voice or video
// response.
func (r *REPL) printMedia(msg model.Message) {
	if msg.Media.AudioURL != "" {
		fmt.Fprintln(r.out, infoStyle.Render("audio: "+msg.Media.AudioURL))
	}
	if msg.Media.VideoURL != "" {
		fmt.Fprintln(r.out, infoStyle.Render("video: "+msg.Media.VideoURL))
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleCommand dispatches one /command. Returns true to quit.
func (r *REPL) handleCommand(input string) (bool, error) {
	fields := strings.Fields(input)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "/help":
		r.printHelp()
	case "/quit", "/exit":
		return true, nil
	case "/sessions":
		r.printSessions()
	case "/new":
		sess := r.store.CreateSession(model.OwnerStudent)
		fmt.Fprintln(r.out, commandStyle.Render("started "+sess.DisplayTitle()))
	case "/switch":
		return false, r.switchSession(args)
	case "/delete":
		return false, r.deleteSession(args)
	case "/clear":
		if sid := r.store.CurrentSessionID(); sid != "" {
			return false, r.store.ClearSession(sid)
		}
	case "/mode":
		return false, r.setMode(args)
	case "/search":
		return false, r.search(strings.Join(args, " "))
	case "/export":
		return false, r.export(args)
	default:
		return false, fmt.Errorf("unknown command %s (try /help)", cmd)
	}
	return false, nil
}

func (r *REPL) printHelp() {
	help := [][2]string{
		{"/sessions", "list sessions, most recent first"},
		{"/new", "start a new session"},
		{"/switch N", "switch to session N from the list"},
		{"/delete N", "delete session N from the list"},
		{"/clear", "clear the current session's messages"},
		{"/mode M", "set response mode: text, voice, video"},
		{"/search Q", "search message history"},
		{"/export [file]", "export the current session as markdown"},
		{"/quit", "exit"},
	}
	for _, h := range help {
		fmt.Fprintf(r.out, "  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-14s", h[0])),
			infoStyle.Render(h[1]))
	}
}

func (r *REPL) printSessions() {
	sessions := r.store.Sessions()
	if len(sessions) == 0 {
		fmt.Fprintln(r.out, infoStyle.Render("no sessions yet"))
		return
	}
	currentID := r.store.CurrentSessionID()
	for i, sess := range sessions {
		marker := " "
		if sess.ID == currentID {
			marker = "*"
		}
		fmt.Fprintf(r.out, "%s %2d  %s  %s\n",
			marker, i+1,
			sess.DisplayTitle(),
			infoStyle.Render(sess.LastActivityAt.Format("Jan 2 15:04")))
	}
}

// sessionByArg resolves a 1-based list position.
func (r *REPL) sessionByArg(args []string) (model.Session, error) {
	if len(args) != 1 {
		return model.Session{}, errors.New("expected a session number (see /sessions)")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return model.Session{}, fmt.Errorf("not a session number: %s", args[0])
	}
	sessions := r.store.Sessions()
	if n < 1 || n > len(sessions) {
		return model.Session{}, fmt.Errorf("no session %d", n)
	}
	return sessions[n-1], nil
}

func (r *REPL) switchSession(args []string) error {
	sess, err := r.sessionByArg(args)
	if err != nil {
		return err
	}
	if err := r.store.SwitchSession(sess.ID); err != nil {
		return err
	}
	fmt.Fprintln(r.out, commandStyle.Render("switched to "+sess.DisplayTitle()))
	return nil
}

func (r *REPL) deleteSession(args []string) error {
	sess, err := r.sessionByArg(args)
	if err != nil {
		return err
	}
	if err := r.store.DeleteSession(sess.ID); err != nil {
		return err
	}
	fmt.Fprintln(r.out, commandStyle.Render("deleted "+sess.DisplayTitle()))
	return nil
}

func (r *REPL) setMode(args []string) error {
	if r.modes == nil {
		return errors.New("mode switching is unavailable")
	}
	if len(args) != 1 {
		fmt.Fprintln(r.out, infoStyle.Render("current mode: "+r.modes.Current().String()))
		return nil
	}
	target := model.ResponseMode(args[0])
	if err := r.modes.Set(target); err != nil {
		return err
	}
	fmt.Fprintln(r.out, commandStyle.Render("mode: "+target.String()))
	return nil
}

func (r *REPL) search(query string) error {
	if r.idx == nil {
		return errors.New("search index is disabled")
	}
	if strings.TrimSpace(query) == "" {
		return errors.New("expected a search query")
	}
	hits, err := r.idx.Search(query, 10)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Fprintln(r.out, infoStyle.Render("no matches"))
		return nil
	}
	for _, hit := range hits {
		preview := hit.Content
		if runes := []rune(preview); len(runes) > 70 {
			preview = string(runes[:70]) + "..."
		}
		fmt.Fprintf(r.out, "  %s  %s\n",
			commandStyle.Render(model.Role(hit.Role).DisplayName()),
			preview)
	}
	return nil
}

func (r *REPL) export(args []string) error {
	sid := r.store.CurrentSessionID()
	if sid == "" {
		return errors.New("no session to export")
	}
	sess, ok := r.store.CurrentSession()
	if !ok {
		return errors.New("no session to export")
	}

	doc := &storage.SessionDoc{
		Session:  sess,
		Messages: r.store.Messages(sid),
	}

	path := "session-" + sess.CreatedAt.Format("20060102-150405") + ".md"
	if len(args) > 0 {
		path = args[0]
	}
	if err := os.WriteFile(path, []byte(doc.ExportMarkdown()), 0644); err != nil {
		return err
	}
	fmt.Fprintln(r.out, commandStyle.Render(
		fmt.Sprintf("exported %d messages to %s", doc.MessageCount(), path)))
	return nil
}
