package downloader

import (
	"context"
	"time"
)

// Phase represents the current phase of a track download
type Phase int

const (
	PhaseResolving Phase = iota
	PhaseDownloading
	PhaseConverting
	PhaseTagging
	PhaseComplete
	PhaseError
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseResolving:
		return "resolving"
	case PhaseDownloading:
		return "downloading"
	case PhaseConverting:
		return "converting"
	case PhaseTagging:
		return "tagging"
	case PhaseComplete:
		return "complete"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Progress represents the current progress of an operation.
// yt-dlp reports a percentage; byte counts are filled when the total size is known.
type Progress struct {
	BytesProcessed int64         `json:"bytes_processed"`
	TotalBytes     int64         `json:"total_bytes"`
	Speed          int64         `json:"speed"` // bytes per second
	ETA            time.Duration `json:"eta"`
	Percentage     float64       `json:"percentage"`
}

// ProgressCallbacks defines callback functions for progress reporting
type ProgressCallbacks struct {
	OnProgress    func(phase Phase, progress Progress)
	OnPhaseChange func(oldPhase, newPhase Phase)
	OnWarning     func(msg string, err error)
	OnError       func(err error)
	OnComplete    func(result *DownloadResult)
}

// TrackDownloader downloads a single resolved track
type TrackDownloader interface {
	// Download resolves, downloads and tags the job's track
	Download(ctx context.Context, job Job, callbacks ProgressCallbacks) (*DownloadResult, error)

	// Cancel cancels any ongoing download operation
	Cancel(ctx context.Context) error

	// GetStatus returns the current download status
	GetStatus() DownloadStatus
}

// DownloadStatus represents the current status of a download
type DownloadStatus struct {
	Phase     Phase     `json:"phase"`
	Progress  Progress  `json:"progress"`
	StartTime time.Time `json:"start_time"`
	TrackName string    `json:"track_name"`
	IsActive  bool      `json:"is_active"`
	Error     error     `json:"error,omitempty"`
}

// ProgressReporter interface defines the contract for reporting progress
type ProgressReporter interface {
	// StartTracking begins progress tracking for a track
	StartTracking(ctx context.Context, trackName string) error

	// UpdateProgress reports progress for the current phase
	UpdateProgress(phase Phase, progress Progress) error

	// ReportPhaseChange reports a transition between phases
	ReportPhaseChange(oldPhase, newPhase Phase) error

	// ReportError reports an error that occurred during processing
	ReportError(err error) error

	// ReportComplete reports successful completion with summary information
	ReportComplete(duration time.Duration, filePath string) error

	// Stop stops progress tracking and cleans up resources
	Stop()
}
