package downloader

import (
	"context"
	"sync"
	"testing"
	"time"
)

// MockProgressReporter is a mock implementation of ProgressReporter for testing
type MockProgressReporter struct {
	mu                    sync.RWMutex
	startTrackingCalls    []string
	updateProgressCalls   []UpdateProgressCall
	phaseChangeCalls      []PhaseChangeCall
	errorCalls            []error
	completeCalls         []CompleteCall
	stopCalls             int
	shouldFailUpdate      bool
	shouldFailPhaseChange bool
}

type UpdateProgressCall struct {
	Phase    Phase
	Progress Progress
}

type PhaseChangeCall struct {
	OldPhase Phase
	NewPhase Phase
}

type CompleteCall struct {
	Duration time.Duration
	FilePath string
}

func NewMockProgressReporter() *MockProgressReporter {
	return &MockProgressReporter{}
}

func (m *MockProgressReporter) StartTracking(_ context.Context, trackName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startTrackingCalls = append(m.startTrackingCalls, trackName)
	return nil
}

func (m *MockProgressReporter) UpdateProgress(phase Phase, progress Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateProgressCalls = append(m.updateProgressCalls, UpdateProgressCall{Phase: phase, Progress: progress})
	if m.shouldFailUpdate {
		return NewDownloadError(ErrorUnknown, "mock update error")
	}
	return nil
}

func (m *MockProgressReporter) ReportPhaseChange(oldPhase, newPhase Phase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phaseChangeCalls = append(m.phaseChangeCalls, PhaseChangeCall{OldPhase: oldPhase, NewPhase: newPhase})
	if m.shouldFailPhaseChange {
		return NewDownloadError(ErrorUnknown, "mock phase change error")
	}
	return nil
}

func (m *MockProgressReporter) ReportError(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCalls = append(m.errorCalls, err)
	return nil
}

func (m *MockProgressReporter) ReportComplete(duration time.Duration, filePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completeCalls = append(m.completeCalls, CompleteCall{Duration: duration, FilePath: filePath})
	return nil
}

func (m *MockProgressReporter) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls++
}

func (m *MockProgressReporter) GetUpdateProgressCalls() []UpdateProgressCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]UpdateProgressCall(nil), m.updateProgressCalls...)
}

func (m *MockProgressReporter) GetPhaseChangeCalls() []PhaseChangeCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]PhaseChangeCall(nil), m.phaseChangeCalls...)
}

func (m *MockProgressReporter) GetErrorCalls() []error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]error(nil), m.errorCalls...)
}

func (m *MockProgressReporter) GetCompleteCalls() []CompleteCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]CompleteCall(nil), m.completeCalls...)
}

func (m *MockProgressReporter) GetStopCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stopCalls
}

func TestProgressTracker_NewProgressTracker(t *testing.T) {
	reporter := NewMockProgressReporter()
	tracker := NewProgressTracker(reporter)

	if tracker.updateInterval != DefaultUpdateInterval {
		t.Errorf("expected update interval %v, got %v", DefaultUpdateInterval, tracker.updateInterval)
	}
	if tracker.reporter != reporter {
		t.Error("reporter not set correctly")
	}
	if tracker.IsRunning() {
		t.Error("tracker should not be running initially")
	}

	custom := NewProgressTrackerWithInterval(reporter, 500*time.Millisecond)
	if custom.updateInterval != 500*time.Millisecond {
		t.Errorf("expected update interval 500ms, got %v", custom.updateInterval)
	}
}

func TestProgressTracker_StartAndStop(t *testing.T) {
	reporter := NewMockProgressReporter()
	tracker := NewProgressTracker(reporter)
	ctx := context.Background()

	if err := tracker.Start(ctx); err != nil {
		t.Fatalf("failed to start tracker: %v", err)
	}
	if !tracker.IsRunning() {
		t.Error("tracker should be running after Start()")
	}

	if err := tracker.Start(ctx); err == nil {
		t.Error("expected error when starting already running tracker")
	}

	tracker.Stop()
	if tracker.IsRunning() {
		t.Error("tracker should not be running after Stop()")
	}
	if reporter.GetStopCalls() != 1 {
		t.Errorf("expected 1 Stop() call on reporter, got %d", reporter.GetStopCalls())
	}

	// second stop is a no-op
	tracker.Stop()
	if reporter.GetStopCalls() != 1 {
		t.Errorf("expected Stop() to be idempotent, got %d reporter stops", reporter.GetStopCalls())
	}
}

func TestProgressTracker_PhaseChangeReporting(t *testing.T) {
	reporter := NewMockProgressReporter()
	tracker := NewProgressTrackerWithInterval(reporter, 50*time.Millisecond)

	if err := tracker.Start(context.Background()); err != nil {
		t.Fatalf("failed to start tracker: %v", err)
	}

	tracker.UpdateProgress(PhaseResolving, Progress{})
	tracker.UpdateProgress(PhaseDownloading, Progress{Percentage: 10})
	tracker.UpdateProgress(PhaseConverting, Progress{})
	time.Sleep(60 * time.Millisecond)
	tracker.Stop()

	expected := []PhaseChangeCall{
		{-1, PhaseResolving},
		{PhaseResolving, PhaseDownloading},
		{PhaseDownloading, PhaseConverting},
	}
	got := reporter.GetPhaseChangeCalls()
	if len(got) != len(expected) {
		t.Fatalf("expected %d phase changes, got %d: %+v", len(expected), len(got), got)
	}
	for i, tt := range expected {
		if got[i] != tt {
			t.Errorf("phase change %d: expected %v->%v, got %v->%v",
				i, tt.OldPhase, tt.NewPhase, got[i].OldPhase, got[i].NewPhase)
		}
	}
}

func TestProgressTracker_TicksOnlyReportChanges(t *testing.T) {
	reporter := NewMockProgressReporter()
	tracker := NewProgressTrackerWithInterval(reporter, 30*time.Millisecond)

	if err := tracker.Start(context.Background()); err != nil {
		t.Fatalf("failed to start tracker: %v", err)
	}
	defer tracker.Stop()

	progress := Progress{BytesProcessed: 1024, TotalBytes: 2048, Speed: 512, ETA: 2 * time.Second, Percentage: 50}
	tracker.UpdateProgress(PhaseDownloading, progress)

	// several ticks pass without new data
	time.Sleep(200 * time.Millisecond)

	calls := reporter.GetUpdateProgressCalls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly 1 progress report, got %d", len(calls))
	}
	if calls[0].Phase != PhaseDownloading || calls[0].Progress != progress {
		t.Errorf("unexpected report %+v", calls[0])
	}

	progress.Percentage = 75
	tracker.UpdateProgress(PhaseDownloading, progress)
	time.Sleep(100 * time.Millisecond)

	calls = reporter.GetUpdateProgressCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 progress reports after new data, got %d", len(calls))
	}
	if calls[1].Progress.Percentage != 75 {
		t.Errorf("expected 75%%, got %v", calls[1].Progress.Percentage)
	}
}

func TestProgressTracker_UpdateProgressWhenNotRunning(t *testing.T) {
	reporter := NewMockProgressReporter()
	tracker := NewProgressTracker(reporter)

	tracker.UpdateProgress(PhaseDownloading, Progress{BytesProcessed: 100})

	phase, progress := tracker.GetCurrentProgress()
	if phase != -1 || progress.BytesProcessed != 0 {
		t.Error("progress should not be updated when tracker is not running")
	}
}

func TestProgressTracker_ContextCancellation(t *testing.T) {
	reporter := NewMockProgressReporter()
	tracker := NewProgressTrackerWithInterval(reporter, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	if err := tracker.Start(ctx); err != nil {
		t.Fatalf("failed to start tracker: %v", err)
	}
	cancel()
	time.Sleep(50 * time.Millisecond)

	// phase changes must not block once the loop is gone
	done := make(chan struct{})
	go func() {
		tracker.UpdateProgress(PhaseResolving, Progress{})
		tracker.UpdateProgress(PhaseDownloading, Progress{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("UpdateProgress blocked after context cancellation")
	}

	if !tracker.IsRunning() {
		t.Error("tracker should still report as running until Stop() is called")
	}
	tracker.Stop()
	if tracker.IsRunning() {
		t.Error("tracker should not be running after Stop()")
	}
}

func TestProgressTracker_RestartResetsState(t *testing.T) {
	reporter := NewMockProgressReporter()
	tracker := NewProgressTrackerWithInterval(reporter, 20*time.Millisecond)

	for i := 0; i < 3; i++ {
		if err := tracker.Start(context.Background()); err != nil {
			t.Fatalf("failed to start tracker on iteration %d: %v", i, err)
		}
		if phase, _ := tracker.GetCurrentProgress(); phase != -1 {
			t.Errorf("iteration %d: expected phase reset to -1, got %v", i, phase)
		}

		tracker.UpdateProgress(PhaseDownloading, Progress{BytesProcessed: int64(i * 100)})
		time.Sleep(10 * time.Millisecond)
		tracker.Stop()
	}

	if reporter.GetStopCalls() != 3 {
		t.Errorf("expected 3 Stop() calls on reporter, got %d", reporter.GetStopCalls())
	}
	// each run starts from an unset phase
	for _, call := range reporter.GetPhaseChangeCalls() {
		if call.OldPhase != -1 || call.NewPhase != PhaseDownloading {
			t.Errorf("unexpected phase change %v->%v", call.OldPhase, call.NewPhase)
		}
	}
}

func TestProgressTracker_ConcurrentUpdates(t *testing.T) {
	reporter := NewMockProgressReporter()
	tracker := NewProgressTrackerWithInterval(reporter, 50*time.Millisecond)

	if err := tracker.Start(context.Background()); err != nil {
		t.Fatalf("failed to start tracker: %v", err)
	}
	defer tracker.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				tracker.UpdateProgress(PhaseDownloading, Progress{
					BytesProcessed: int64(id*100 + j),
					TotalBytes:     1000,
					Percentage:     float64(id*10 + j),
				})
				time.Sleep(5 * time.Millisecond)
			}
		}(i)
	}
	wg.Wait()
	time.Sleep(100 * time.Millisecond)

	phase, progress := tracker.GetCurrentProgress()
	if phase != PhaseDownloading {
		t.Errorf("expected final phase %v, got %v", PhaseDownloading, phase)
	}
	if progress.TotalBytes != 1000 {
		t.Errorf("expected total bytes 1000, got %d", progress.TotalBytes)
	}
}

func TestProgressTracker_Callbacks(t *testing.T) {
	reporter := NewMockProgressReporter()
	tracker := NewProgressTrackerWithInterval(reporter, 20*time.Millisecond)

	if err := tracker.Start(context.Background()); err != nil {
		t.Fatalf("failed to start tracker: %v", err)
	}

	cb := tracker.Callbacks()
	cb.OnPhaseChange(-1, PhaseResolving)
	cb.OnProgress(PhaseDownloading, Progress{Percentage: 40})
	cb.OnError(NewDownloadError(ErrorNoURL, "no stream url"))
	cb.OnComplete(&DownloadResult{FilePath: "downloads/x.mp3", Duration: time.Second})
	cb.OnComplete(nil)
	time.Sleep(60 * time.Millisecond)
	tracker.Stop()

	if len(reporter.GetPhaseChangeCalls()) != 2 {
		t.Errorf("expected 2 phase changes, got %d", len(reporter.GetPhaseChangeCalls()))
	}
	if errs := reporter.GetErrorCalls(); len(errs) != 1 || !IsDownloadError(errs[0], ErrorNoURL) {
		t.Errorf("expected one no_url error, got %v", errs)
	}
	if done := reporter.GetCompleteCalls(); len(done) != 1 || done[0].FilePath != "downloads/x.mp3" {
		t.Errorf("expected one completion, got %+v", done)
	}
}
