// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tutor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// =============================================================================
// EVENT READER TESTS
// =============================================================================

func collectEvents(t *testing.T, input string) ([]Event, error) {
	t.Helper()
	reader := NewEventReader(strings.NewReader(input))
	var events []Event
	err := reader.Process(context.Background(), func(ev Event) {
		events = append(events, ev)
	})
	return events, err
}

func TestEventReader_AccumulatesDeltas(t *testing.T) {
	input := `{"type":"delta","delta":"Photosynthesis "}
{"type":"delta","delta":"converts "}
{"type":"delta","delta":"light."}
{"type":"complete"}
`
	events, err := collectEvents(t, input)
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}

	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	if events[3].Type != EventComplete {
		t.Errorf("final event = %q, want complete", events[3].Type)
	}

	var text strings.Builder
	for _, ev := range events {
		if ev.Type == EventDelta {
			text.WriteString(ev.Delta)
		}
	}
	if got := text.String(); got != "Photosynthesis converts light." {
		t.Errorf("accumulated deltas = %q", got)
	}
}

func TestEventReader_SkipsMalformedLines(t *testing.T) {
	input := `{"type":"delta","delta":"a"}
not json at all
{"type":"delta","delta":"b"}

{"type":"complete"}
`
	events, err := collectEvents(t, input)
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("got %d events, want 3 (malformed and blank lines skipped)", len(events))
	}
}

func TestEventReader_StopsAtComplete(t *testing.T) {
	// Lines after the terminal event must not be delivered.
	input := `{"type":"complete"}
{"type":"delta","delta":"late"}
`
	events, err := collectEvents(t, input)
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("got %d events, want 1", len(events))
	}
}

func TestEventReader_ErrorEvent(t *testing.T) {
	input := `{"type":"delta","delta":"partial "}
{"type":"error","message":"model overloaded"}
`
	events, err := collectEvents(t, input)
	if !IsGenerationFailed(err) {
		t.Fatalf("Process error = %v, want generation failure", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2 (error event is still delivered)", len(events))
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("error %q should carry the backend detail", err)
	}
}

func TestEventReader_EOFWithoutComplete(t *testing.T) {
	input := `{"type":"delta","delta":"truncated"}`
	_, err := collectEvents(t, input)
	if err != nil {
		t.Errorf("EOF on last line should not error, got %v", err)
	}
}

func TestEventReader_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := NewEventReader(strings.NewReader(`{"type":"delta","delta":"x"}` + "\n"))
	err := reader.Process(ctx, func(Event) {
		t.Error("no events should be delivered after cancellation")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Process error = %v, want context.Canceled", err)
	}
}

// =============================================================================
// CLIENT TESTS
// =============================================================================

func TestClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/respond" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Write([]byte(`{"type":"delta","delta":"2 + 2 "}` + "\n"))
		w.Write([]byte(`{"type":"delta","delta":"= 4"}` + "\n"))
		w.Write([]byte(`{"type":"complete","audio_url":"https://cdn.example/a.mp3"}` + "\n"))
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})

	var text strings.Builder
	var done Event
	err := client.Generate(context.Background(), Request{
		SessionID: "sess_1",
		Messages:  []Message{{Role: "user", Content: "what is 2+2?"}},
		Mode:      "voice",
	}, func(ev Event) {
		if ev.Type == EventDelta {
			text.WriteString(ev.Delta)
		}
		if ev.Type == EventComplete {
			done = ev
		}
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if text.String() != "2 + 2 = 4" {
		t.Errorf("accumulated text = %q", text.String())
	}
	if done.AudioURL != "https://cdn.example/a.mp3" {
		t.Errorf("AudioURL = %q", done.AudioURL)
	}
}

func TestClient_Generate_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"session quota exceeded"}`))
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	err := client.Generate(context.Background(), Request{SessionID: "sess_1"}, func(Event) {})
	if !IsGenerationFailed(err) {
		t.Fatalf("Generate error = %v, want generation failure", err)
	}
	if !strings.Contains(err.Error(), "session quota exceeded") {
		t.Errorf("error %q should carry the backend detail", err)
	}
}

func TestClient_Generate_Unreachable(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://127.0.0.1:1"})
	err := client.Generate(context.Background(), Request{SessionID: "sess_1"}, func(Event) {})
	if err == nil {
		t.Fatal("Generate should fail against a closed port")
	}
}

func TestClient_CheckReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	if err := client.CheckReachable(context.Background()); err != nil {
		t.Errorf("CheckReachable error: %v", err)
	}
}

func TestClientConfig_Defaults(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{})
	cfg := client.GetConfig()

	if cfg.BaseURL == "" {
		t.Error("BaseURL default not applied")
	}
	if cfg.RequestsPerMinute != 30 {
		t.Errorf("RequestsPerMinute = %d, want 30", cfg.RequestsPerMinute)
	}
	if cfg.Burst != 5 {
		t.Errorf("Burst = %d, want 5", cfg.Burst)
	}
}

// =============================================================================
// SCRIPTED GENERATOR TESTS
// =============================================================================

func TestScripted_ReplaysResponsesInOrder(t *testing.T) {
	gen := &Scripted{Responses: []string{"first answer", "second answer"}, Fallback: "fallback"}

	run := func() string {
		var b strings.Builder
		err := gen.Generate(context.Background(), Request{Mode: "text"}, func(ev Event) {
			if ev.Type == EventDelta {
				b.WriteString(ev.Delta)
			}
		})
		if err != nil {
			t.Fatalf("Generate error: %v", err)
		}
		return b.String()
	}

	if got := run(); got != "first answer" {
		t.Errorf("first run = %q", got)
	}
	if got := run(); got != "second answer" {
		t.Errorf("second run = %q", got)
	}
	if got := run(); got != "fallback" {
		t.Errorf("exhausted run = %q, want fallback", got)
	}
}

func TestScripted_MediaByMode(t *testing.T) {
	gen := &Scripted{
		Responses: []string{"a", "b", "c"},
		AudioURL:  "audio://1",
		VideoURL:  "video://1",
	}

	modes := []struct {
		mode      string
		wantAudio string
		wantVideo string
	}{
		{"text", "", ""},
		{"voice", "audio://1", ""},
		{"video", "audio://1", "video://1"},
	}

	for _, tc := range modes {
		t.Run(tc.mode, func(t *testing.T) {
			var done Event
			gen.Generate(context.Background(), Request{Mode: tc.mode}, func(ev Event) {
				if ev.Type == EventComplete {
					done = ev
				}
			})
			if done.AudioURL != tc.wantAudio || done.VideoURL != tc.wantVideo {
				t.Errorf("media = (%q, %q), want (%q, %q)", done.AudioURL, done.VideoURL, tc.wantAudio, tc.wantVideo)
			}
		})
	}
}

func TestScripted_FailAfterPartial(t *testing.T) {
	gen := &Scripted{
		Responses:      []string{"one two three four"},
		FailWith:       ErrGenerationFailed,
		EmitBeforeFail: 2,
	}

	var b strings.Builder
	err := gen.Generate(context.Background(), Request{Mode: "text"}, func(ev Event) {
		if ev.Type == EventDelta {
			b.WriteString(ev.Delta)
		}
	})
	if !IsGenerationFailed(err) {
		t.Fatalf("Generate error = %v, want generation failure", err)
	}
	if b.String() != "one two " {
		t.Errorf("partial = %q, want the two deltas before the failure", b.String())
	}
}

func TestScripted_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &Scripted{Responses: []string{"never delivered"}}
	err := gen.Generate(ctx, Request{Mode: "text"}, func(Event) {
		t.Error("no deltas should arrive after cancellation")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate error = %v, want context.Canceled", err)
	}
}
