package downloader

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultUpdateInterval is how often the terminal bar is redrawn
const DefaultUpdateInterval = 200 * time.Millisecond

// ProgressTracker throttles progress updates to a ProgressReporter.
// Phase changes are forwarded immediately; progress is sampled on a ticker.
type ProgressTracker struct {
	// Configuration
	updateInterval time.Duration
	reporter       ProgressReporter
	logger         *zap.Logger

	// State management
	mu              sync.RWMutex
	isRunning       bool
	currentPhase    Phase
	currentProgress Progress

	// Goroutine management
	ctx        context.Context
	cancel     context.CancelFunc
	ticker     *time.Ticker
	updateChan chan progressUpdate
	stopChan   chan struct{}
	doneChan   chan struct{}
}

// progressUpdate represents an internal progress update
type progressUpdate struct {
	phase    Phase
	progress Progress
}

// NewProgressTracker creates a new ProgressTracker with the specified reporter
func NewProgressTracker(reporter ProgressReporter) *ProgressTracker {
	return &ProgressTracker{
		updateInterval: DefaultUpdateInterval,
		reporter:       reporter,
		logger:         zap.NewNop(),
		currentPhase:   -1, // Initialize to invalid phase to detect first phase change
	}
}

// NewProgressTrackerWithInterval creates a ProgressTracker with a custom update interval
func NewProgressTrackerWithInterval(reporter ProgressReporter, interval time.Duration) *ProgressTracker {
	pt := NewProgressTracker(reporter)
	pt.updateInterval = interval
	return pt
}

// SetLogger sets the logger used for reporter failures
func (pt *ProgressTracker) SetLogger(logger *zap.Logger) {
	if logger != nil {
		pt.logger = logger
	}
}

// Start begins the progress tracking with periodic updates
func (pt *ProgressTracker) Start(ctx context.Context) error {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if pt.isRunning {
		return NewDownloadError(ErrorUnknown, "progress tracker is already running")
	}

	// Create new channels for this session
	pt.updateChan = make(chan progressUpdate, 32)
	pt.stopChan = make(chan struct{})
	pt.doneChan = make(chan struct{})
	pt.currentPhase = -1
	pt.currentProgress = Progress{}

	pt.ctx, pt.cancel = context.WithCancel(ctx)
	pt.ticker = time.NewTicker(pt.updateInterval)
	pt.isRunning = true

	go pt.updateLoop()

	return nil
}

// Stop stops the progress tracking and cleans up resources
func (pt *ProgressTracker) Stop() {
	pt.mu.Lock()
	if !pt.isRunning {
		pt.mu.Unlock()
		return
	}

	select {
	case <-pt.stopChan:
		// Already closed
	default:
		close(pt.stopChan)
	}

	if pt.cancel != nil {
		pt.cancel()
	}
	pt.isRunning = false
	pt.mu.Unlock()

	// Wait for the update loop to finish
	<-pt.doneChan

	if pt.ticker != nil {
		pt.ticker.Stop()
		pt.ticker = nil
	}

	if pt.reporter != nil {
		pt.reporter.Stop()
	}
}

// UpdateProgress updates the current progress information
func (pt *ProgressTracker) UpdateProgress(phase Phase, progress Progress) {
	pt.mu.RLock()
	if !pt.isRunning {
		pt.mu.RUnlock()
		return
	}
	pt.mu.RUnlock()

	// Phase transitions must not be lost; plain progress samples may be
	if pt.phase() != phase {
		select {
		case pt.updateChan <- progressUpdate{phase: phase, progress: progress}:
		case <-pt.stopChan:
		case <-pt.ctx.Done():
		}
		return
	}

	select {
	case pt.updateChan <- progressUpdate{phase: phase, progress: progress}:
	default:
		// Channel is full, skip this update to prevent blocking
	}
}

// Callbacks returns ProgressCallbacks that feed this tracker.
// Errors and completion go straight to the reporter.
func (pt *ProgressTracker) Callbacks() ProgressCallbacks {
	return ProgressCallbacks{
		OnProgress: pt.UpdateProgress,
		OnPhaseChange: func(_, newPhase Phase) {
			pt.UpdateProgress(newPhase, Progress{})
		},
		OnError: func(err error) {
			if pt.reporter != nil {
				pt.report("error", pt.reporter.ReportError(err))
			}
		},
		OnComplete: func(r *DownloadResult) {
			if pt.reporter != nil && r != nil {
				pt.report("complete", pt.reporter.ReportComplete(r.Duration, r.FilePath))
			}
		},
	}
}

// GetCurrentProgress returns the current progress state (thread-safe)
func (pt *ProgressTracker) GetCurrentProgress() (Phase, Progress) {
	pt.mu.RLock()
	defer pt.mu.RUnlock()
	return pt.currentPhase, pt.currentProgress
}

// IsRunning returns whether the tracker is currently running
func (pt *ProgressTracker) IsRunning() bool {
	pt.mu.RLock()
	defer pt.mu.RUnlock()
	return pt.isRunning
}

func (pt *ProgressTracker) phase() Phase {
	pt.mu.RLock()
	defer pt.mu.RUnlock()
	return pt.currentPhase
}

func (pt *ProgressTracker) report(what string, err error) {
	if err != nil {
		pt.logger.Debug("Progress reporter failed", zap.String("event", what), zap.Error(err))
	}
}

// updateLoop runs the main update loop in a separate goroutine
func (pt *ProgressTracker) updateLoop() {
	defer close(pt.doneChan)

	var lastReported Progress
	var lastReportedPhase Phase = -1

	for {
		select {
		case <-pt.ctx.Done():
			return

		case <-pt.stopChan:
			return

		case update := <-pt.updateChan:
			pt.mu.Lock()
			oldPhase := pt.currentPhase
			pt.currentPhase = update.phase
			pt.currentProgress = update.progress
			pt.mu.Unlock()

			// Report phase change if needed (including initial phase set)
			if oldPhase != update.phase && pt.reporter != nil {
				pt.report("phase", pt.reporter.ReportPhaseChange(oldPhase, update.phase))
			}

		case <-pt.ticker.C:
			pt.mu.RLock()
			currentPhase := pt.currentPhase
			currentProgress := pt.currentProgress
			pt.mu.RUnlock()

			// Only report once a phase is set and something moved
			if pt.reporter != nil && currentPhase >= 0 &&
				(currentPhase != lastReportedPhase || currentProgress != lastReported) {
				pt.report("progress", pt.reporter.UpdateProgress(currentPhase, currentProgress))
				lastReportedPhase = currentPhase
				lastReported = currentProgress
			}
		}
	}
}
