package downloader

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConsoleReporter_Lifecycle(t *testing.T) {
	var buf bytes.Buffer
	cr := NewConsoleReporter(&buf, false)

	if err := cr.StartTracking(context.Background(), "Tum Hi Ho - Arijit Singh"); err != nil {
		t.Fatalf("StartTracking() error = %v", err)
	}
	if !cr.IsActive() || cr.GetCurrentTrack() != "Tum Hi Ho - Arijit Singh" {
		t.Errorf("expected reporter to be tracking the track")
	}
	if err := cr.StartTracking(context.Background(), "other"); err == nil {
		t.Error("expected error when already tracking")
	}

	_ = cr.UpdateProgress(PhaseDownloading, Progress{Percentage: 42})
	_ = cr.ReportPhaseChange(PhaseDownloading, PhaseConverting)
	_ = cr.ReportComplete(3*time.Second, "downloads/Aashiqui 2/Tum Hi Ho - Arijit Singh.mp3")

	// ticks after completion must not redraw a bar
	_ = cr.UpdateProgress(PhaseDownloading, Progress{Percentage: 99})
	cr.Stop()

	out := buf.String()
	for _, want := range []string{
		"⟳ Tum Hi Ho - Arijit Singh...",
		"Converting audio...",
		"✓ Tum Hi Ho - Arijit Singh (3s, downloads/Aashiqui 2/Tum Hi Ho - Arijit Singh.mp3)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no colour escapes, got %q", out)
	}
	if cr.IsActive() || cr.GetCurrentTrack() != "" {
		t.Error("expected reporter to be idle after Stop()")
	}
}

func TestConsoleReporter_ReportError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{"no url", NewDownloadError(ErrorNoURL, "no URL for quality high"), "✗ Song - No URL"},
		{"download error", NewDownloadError(ErrorDownloadFailure, "yt-dlp download failed"), "✗ Song - yt-dlp download failed"},
		{"plain error", errors.New("boom"), "✗ Song - boom"},
		{"nil error", nil, "✗ Song - An error occurred"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cr := NewConsoleReporter(&buf, false)
			_ = cr.StartTracking(context.Background(), "Song")
			_ = cr.ReportError(tt.err)

			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("expected %q in output, got %q", tt.expected, buf.String())
			}
		})
	}
}

func TestConsoleReporter_InactiveIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	cr := NewConsoleReporter(&buf, false)

	_ = cr.UpdateProgress(PhaseDownloading, Progress{Percentage: 10})
	_ = cr.ReportPhaseChange(PhaseResolving, PhaseConverting)
	_ = cr.ReportError(errors.New("x"))
	_ = cr.ReportComplete(time.Second, "x.mp3")

	if buf.Len() != 0 {
		t.Errorf("expected no output while inactive, got %q", buf.String())
	}
}

func TestConsoleReporter_Warning(t *testing.T) {
	var buf bytes.Buffer
	cr := NewConsoleReporter(&buf, false)

	cb := cr.Callbacks()
	cb.OnWarning("thumbnail download failed", errors.New("404"))
	cb.OnWarning("no artwork", nil)

	out := buf.String()
	if !strings.Contains(out, "⚠ thumbnail download failed: 404") {
		t.Errorf("unexpected warning output %q", out)
	}
	if !strings.Contains(out, "⚠ no artwork\n") {
		t.Errorf("unexpected warning output %q", out)
	}
}

func TestPhaseDescriptions(t *testing.T) {
	testCases := []struct {
		phase       Phase
		name        string
		description string
	}{
		{PhaseResolving, "resolving", "Resolving stream URL..."},
		{PhaseDownloading, "downloading", "Downloading..."},
		{PhaseConverting, "converting", "Converting audio..."},
		{PhaseTagging, "tagging", "Embedding artwork and tags..."},
		{PhaseComplete, "complete", "Done"},
		{PhaseError, "error", "Error occurred"},
		{Phase(99), "unknown", "Processing..."},
	}
	for _, tt := range testCases {
		if tt.phase.String() != tt.name {
			t.Errorf("expected %q, got %q", tt.name, tt.phase.String())
		}
		if got := phaseDescription(tt.phase); got != tt.description {
			t.Errorf("expected %q, got %q", tt.description, got)
		}
	}
}

func TestClampPercent(t *testing.T) {
	testCases := []struct {
		in, expected float64
	}{
		{-5, 0},
		{0, 0},
		{55.5, 55.5},
		{100, 100},
		{140, 100},
	}
	for _, tt := range testCases {
		if got := clampPercent(tt.in); got != tt.expected {
			t.Errorf("clampPercent(%v): expected %v, got %v", tt.in, tt.expected, got)
		}
	}
}
