// tutor-tui - A terminal conversation client for an embedded AI tutor.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/tutor-tui/internal/cli"
	"github.com/jeranaias/tutor-tui/internal/config"
	"github.com/jeranaias/tutor-tui/internal/connectivity"
	"github.com/jeranaias/tutor-tui/internal/index"
	"github.com/jeranaias/tutor-tui/internal/mode"
	"github.com/jeranaias/tutor-tui/internal/speech"
	"github.com/jeranaias/tutor-tui/internal/storage"
	"github.com/jeranaias/tutor-tui/internal/store"
	"github.com/jeranaias/tutor-tui/internal/tutor"
	"github.com/jeranaias/tutor-tui/internal/ui/chat"
	"github.com/jeranaias/tutor-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// probeInterval is how often the backend is probed for reachability.
const probeInterval = 10 * time.Second

func main() {
	var (
		configPath = flag.String("config", "", "path to a config file (default: ~/.tutortui/config.toml)")
		replFlag   = flag.Bool("repl", false, "run the plain-terminal REPL instead of the TUI")
		scripted   = flag.Bool("scripted", false, "use the built-in scripted tutor (no backend needed)")
		version    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("tutor-tui %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *scripted {
		cfg.Tutor.Scripted = true
	}

	if err := run(cfg, *replFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads from an explicit path when given, otherwise from the
// standard locations.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// run wires the conversation core and hands it to a front end. The TUI
// is the default on an interactive terminal; pipes and the --repl flag
// get the plain-terminal loop.
func run(cfg *config.Config, forceREPL bool) error {
	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return fmt.Errorf("could not resolve data directory: %w", err)
	}

	// Session persistence
	sessionDir := filepath.Join(dataDir, "sessions")
	files, err := storage.NewSessionStoreWithDir(sessionDir)
	if err != nil {
		return fmt.Errorf("could not initialize session storage: %w", err)
	}
	files.MaxSessions = cfg.Conversation.MaxSessions

	// Search index, optional
	var ix *index.MessageIndex
	if cfg.Storage.IndexEnabled {
		ix, err = index.Open(filepath.Join(dataDir, "index.db"))
		if err != nil {
			// Search degrades to unavailable, everything else works.
			fmt.Fprintf(os.Stderr, "Warning: search index unavailable: %v\n", err)
			ix = nil
		} else {
			defer ix.Close()
		}
	}
	if ix != nil && cfg.Storage.WatchEnabled {
		watcher, werr := index.NewSessionWatcher(ix, sessionDir, 500*time.Millisecond, func(id string) error {
			doc, lerr := files.Load(id)
			if lerr != nil {
				return lerr
			}
			return ix.IndexSession(doc)
		})
		if werr != nil {
			fmt.Fprintf(os.Stderr, "Warning: session watcher unavailable: %v\n", werr)
		} else {
			defer watcher.Close()
		}
	}

	// Speech capture. Terminal builds carry no platform recognizer, so
	// the adapter reports unsupported and voice capture stays disabled.
	capture, err := speech.NewAdapter(platformRecognizer(cfg.Speech.Provider), cfg.Speech.Language)
	if err != nil {
		return fmt.Errorf("invalid speech configuration: %w", err)
	}
	modes := mode.NewController(capture)

	// Tutor backend and connectivity
	var (
		gen     tutor.Generator
		monitor *connectivity.Monitor
	)
	probeCtx, stopProbe := context.WithCancel(context.Background())
	defer stopProbe()
	if cfg.Tutor.Scripted {
		gen = scriptedTutor()
		monitor = connectivity.NewMonitor(true)
	} else {
		client := tutor.NewClientWithConfig(&tutor.ClientConfig{
			BaseURL:           cfg.Tutor.BaseURL,
			Timeout:           time.Duration(cfg.Tutor.TimeoutSecs) * time.Second,
			RequestsPerMinute: cfg.Tutor.RequestsPerMinute,
			Burst:             cfg.Tutor.Burst,
		})
		gen = client
		monitor = connectivity.NewMonitor(false)
		go probeBackend(probeCtx, client, monitor)
	}

	opts := store.Options{
		ContextWindow: cfg.Conversation.ContextWindow,
		DeliveryDelay: time.Duration(cfg.Conversation.DeliveryDelayMs) * time.Millisecond,
		Storage:       files,
		Index:         ix,
		Generator:     gen,
		Monitor:       monitor,
		Modes:         modes,
	}

	if forceREPL || !cli.IsInteractive() {
		return runREPL(opts, modes, ix, files)
	}
	return runTUI(cfg, opts, modes, monitor)
}

// =============================================================================
// FRONT ENDS
// =============================================================================

// runTUI starts the Bubble Tea interface.
func runTUI(cfg *config.Config, opts store.Options, modes *mode.Controller, monitor *connectivity.Monitor) error {
	// The bridge forwards store notifications onto the Bubble Tea loop.
	// The program does not exist yet, so the sender is attached below.
	bridge := chat.NewBridge(nil)
	opts.Observer = bridge
	st := store.New(opts)

	m := chat.New(chat.Options{
		Store:     st,
		Modes:     modes,
		Theme:     styles.NewTheme(),
		Online:    monitor.IsOnline(),
		CodeStyle: cfg.UI.CodeStyle,
		ShowTicks: cfg.UI.ShowStatusTicks,
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	bridge.SetSender(p)
	m.SetSender(p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running tutor-tui: %w", err)
	}
	return nil
}

// runREPL starts the plain-terminal loop.
func runREPL(opts store.Options, modes *mode.Controller, ix *index.MessageIndex, files *storage.SessionStore) error {
	obs := cli.NewObserver(os.Stdout)
	opts.Observer = obs
	st := store.New(opts)

	repl := cli.New(cli.Options{
		Store:    st,
		Observer: obs,
		Modes:    modes,
		Index:    ix,
		Storage:  files,
	})
	return repl.Run()
}

// =============================================================================
// BACKEND WIRING
// =============================================================================

// probeBackend keeps the connectivity monitor in step with the backend.
// The monitor dedupes repeated states, so applying every probe result
// is cheap.
func probeBackend(ctx context.Context, client *tutor.Client, monitor *connectivity.Monitor) {
	probe := func() {
		checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		monitor.Apply(client.CheckReachable(checkCtx) == nil)
	}

	probe()
	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}

// platformRecognizer returns the speech capability for the configured
// provider. There is no terminal speech backend yet, so every provider
// resolves to nil and the adapter reports unsupported.
func platformRecognizer(provider string) speech.Capability {
	_ = provider
	return nil
}

// scriptedTutor builds the demo generator used when no backend is
// configured.
func scriptedTutor() *tutor.Scripted {
	return &tutor.Scripted{
		Fallback: "That's a good question. Let's work through it step by step.\n\n" +
			"1. Start by restating the problem in your own words.\n" +
			"2. Identify what you already know.\n" +
			"3. Try the smallest example you can.\n\n" +
			"What part would you like to dig into first?",
		Responses: []string{
			"**Photosynthesis** is how plants turn light into food.\n\n" +
				"Plants take in carbon dioxide and water, and using energy " +
				"from sunlight they produce glucose and oxygen:\n\n" +
				"```\n6CO2 + 6H2O + light -> C6H12O6 + 6O2\n```\n\n" +
				"Would you like to explore where in the plant this happens?",
		},
		Delay:    35 * time.Millisecond,
		AudioURL: "https://tutor.example/media/response.mp3",
		VideoURL: "https://tutor.example/media/response.mp4",
	}
}
