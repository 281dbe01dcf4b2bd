package downloader

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ConsoleReporter implements ProgressReporter for a terminal
type ConsoleReporter struct {
	out       io.Writer
	mu        sync.RWMutex
	trackName string
	isActive  bool
	finished  bool
	startTime time.Time
	bar       *progressbar.ProgressBar
	barPhase  Phase

	ok   *color.Color
	warn *color.Color
	fail *color.Color
	dim  *color.Color
}

// NewConsoleReporter creates a reporter writing to out.
// Colours are disabled when useColor is false.
func NewConsoleReporter(out io.Writer, useColor bool) *ConsoleReporter {
	cr := &ConsoleReporter{
		out:  out,
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		fail: color.New(color.FgRed),
		dim:  color.New(color.Faint),
	}
	if !useColor {
		for _, c := range []*color.Color{cr.ok, cr.warn, cr.fail, cr.dim} {
			c.DisableColor()
		}
	}
	return cr
}

// StartTracking begins progress tracking for a track
func (cr *ConsoleReporter) StartTracking(_ context.Context, trackName string) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.isActive {
		return NewDownloadError(ErrorUnknown, "progress tracking is already active")
	}

	cr.trackName = trackName
	cr.isActive = true
	cr.finished = false
	cr.startTime = time.Now()
	cr.bar = nil
	cr.barPhase = -1

	cr.warn.Fprint(cr.out, "⟳ ")
	fmt.Fprintf(cr.out, "%s...\n", trackName)
	return nil
}

// UpdateProgress reports progress for the current phase
func (cr *ConsoleReporter) UpdateProgress(phase Phase, progress Progress) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if !cr.isActive || cr.finished || phase != PhaseDownloading {
		return nil
	}

	if cr.bar == nil || cr.barPhase != phase {
		cr.bar = cr.newBar(phase)
		cr.barPhase = phase
	}
	return cr.bar.Set(int(clampPercent(progress.Percentage)))
}

// ReportPhaseChange reports a transition between phases
func (cr *ConsoleReporter) ReportPhaseChange(oldPhase, newPhase Phase) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if !cr.isActive || cr.finished {
		return nil
	}

	if oldPhase == PhaseDownloading && cr.bar != nil {
		_ = cr.bar.Finish()
		cr.bar = nil
	}

	switch newPhase {
	case PhaseConverting, PhaseTagging:
		cr.dim.Fprintf(cr.out, "  %s %s\n", phaseEmoji(newPhase), phaseDescription(newPhase))
	}
	return nil
}

// ReportError reports an error that occurred during processing
func (cr *ConsoleReporter) ReportError(err error) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if !cr.isActive {
		return nil
	}
	cr.clearBar()
	cr.finished = true

	errorMsg := "An error occurred"
	if downloadErr, ok := err.(*DownloadError); ok {
		errorMsg = downloadErr.Message
		if downloadErr.IsType(ErrorNoURL) {
			errorMsg = "No URL"
		}
	} else if err != nil {
		errorMsg = err.Error()
	}

	cr.fail.Fprint(cr.out, "✗ ")
	fmt.Fprintf(cr.out, "%s - %s\n", cr.trackName, errorMsg)
	return nil
}

// ReportWarning prints a non-fatal problem for the current track
func (cr *ConsoleReporter) ReportWarning(msg string, err error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	cr.warn.Fprint(cr.out, "  ⚠ ")
	if err != nil {
		fmt.Fprintf(cr.out, "%s: %v\n", msg, err)
	} else {
		fmt.Fprintln(cr.out, msg)
	}
}

// ReportComplete reports successful completion with summary information
func (cr *ConsoleReporter) ReportComplete(duration time.Duration, filePath string) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if !cr.isActive {
		return nil
	}
	cr.clearBar()
	cr.finished = true

	cr.ok.Fprint(cr.out, "✓ ")
	fmt.Fprintf(cr.out, "%s ", cr.trackName)
	cr.dim.Fprintf(cr.out, "(%s, %s)\n", duration.Round(time.Second), filePath)
	return nil
}

// Stop stops progress tracking and cleans up resources
func (cr *ConsoleReporter) Stop() {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	cr.clearBar()
	cr.isActive = false
	cr.trackName = ""
}

// IsActive returns whether the reporter is currently tracking progress
func (cr *ConsoleReporter) IsActive() bool {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.isActive
}

// GetCurrentTrack returns the name of the currently tracked track
func (cr *ConsoleReporter) GetCurrentTrack() string {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.trackName
}

// Callbacks adapts the reporter to ProgressCallbacks for direct use without a tracker
func (cr *ConsoleReporter) Callbacks() ProgressCallbacks {
	return ProgressCallbacks{
		OnProgress:    func(p Phase, pr Progress) { _ = cr.UpdateProgress(p, pr) },
		OnPhaseChange: func(o, n Phase) { _ = cr.ReportPhaseChange(o, n) },
		OnWarning:     cr.ReportWarning,
		OnError:       func(err error) { _ = cr.ReportError(err) },
		OnComplete: func(r *DownloadResult) {
			if r != nil {
				_ = cr.ReportComplete(r.Duration, r.FilePath)
			}
		},
	}
}

// newBar must be called with mu held
func (cr *ConsoleReporter) newBar(phase Phase) *progressbar.ProgressBar {
	return progressbar.NewOptions64(100,
		progressbar.OptionSetWriter(cr.out),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(fmt.Sprintf("  %s %s", phaseEmoji(phase), cr.trackName)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// clearBar must be called with mu held
func (cr *ConsoleReporter) clearBar() {
	if cr.bar != nil {
		_ = cr.bar.Clear()
		cr.bar = nil
	}
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// phaseEmoji returns an emoji for the given phase
func phaseEmoji(phase Phase) string {
	switch phase {
	case PhaseResolving:
		return "🔍"
	case PhaseDownloading:
		return "⬇️"
	case PhaseConverting:
		return "🔄"
	case PhaseTagging:
		return "🏷️"
	case PhaseComplete:
		return "✅"
	case PhaseError:
		return "❌"
	default:
		return "⏳"
	}
}

// phaseDescription returns a description for the given phase
func phaseDescription(phase Phase) string {
	switch phase {
	case PhaseResolving:
		return "Resolving stream URL..."
	case PhaseDownloading:
		return "Downloading..."
	case PhaseConverting:
		return "Converting audio..."
	case PhaseTagging:
		return "Embedding artwork and tags..."
	case PhaseComplete:
		return "Done"
	case PhaseError:
		return "Error occurred"
	default:
		return "Processing..."
	}
}
