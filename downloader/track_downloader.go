package downloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// forbiddenNames matches characters that are unsafe in file names
var forbiddenNames = regexp.MustCompile(`[\\/<>:"'|?*]`)

// SanitizeFilename replaces path separators and shell-hostile characters with "_"
func SanitizeFilename(name string) string {
	return strings.TrimSpace(forbiddenNames.ReplaceAllString(name, "_"))
}

// URLResolver turns a job into a playable stream URL
type URLResolver func(job Job) (string, error)

// TrackDownloaderImpl implements the TrackDownloader interface
type TrackDownloaderImpl struct {
	ytdlp   *YtDlp
	ffmpeg  *FFmpegTagger
	fetcher Fetcher
	resolve URLResolver
	logger  *zap.Logger

	// State management
	mu         sync.RWMutex
	status     DownloadStatus
	cancelFunc context.CancelFunc
	isActive   bool
}

// Options wires the collaborators of a TrackDownloaderImpl
type Options struct {
	YtDlp   *YtDlp
	FFmpeg  *FFmpegTagger // nil when ffmpeg is unavailable
	Fetcher Fetcher
	Resolve URLResolver // defaults to decrypting the job's track
	Logger  *zap.Logger
}

// NewTrackDownloader creates a new instance of TrackDownloaderImpl
func NewTrackDownloader(opts Options) *TrackDownloaderImpl {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Resolve == nil {
		opts.Resolve = resolveTrackURL
	}
	return &TrackDownloaderImpl{
		ytdlp:   opts.YtDlp,
		ffmpeg:  opts.FFmpeg,
		fetcher: opts.Fetcher,
		resolve: opts.Resolve,
		logger:  opts.Logger,
		status: DownloadStatus{
			Phase:    PhaseResolving,
			IsActive: false,
		},
	}
}

func resolveTrackURL(job Job) (string, error) {
	return job.Track.StreamURL(job.Quality)
}

// Download implements the TrackDownloader interface
func (td *TrackDownloaderImpl) Download(ctx context.Context, job Job, callbacks ProgressCallbacks) (*DownloadResult, error) {
	td.mu.Lock()
	if td.isActive {
		td.mu.Unlock()
		return nil, NewDownloadError(ErrorUnknown, "download already in progress")
	}

	downloadCtx, cancel := context.WithCancel(ctx)
	td.cancelFunc = cancel
	td.isActive = true
	td.status = DownloadStatus{
		Phase:     PhaseResolving,
		StartTime: time.Now(),
		TrackName: job.Meta.DisplayName(),
		IsActive:  true,
	}
	td.mu.Unlock()

	defer func() {
		cancel()
		td.mu.Lock()
		td.isActive = false
		td.status.IsActive = false
		td.cancelFunc = nil
		td.mu.Unlock()
	}()

	if job.Format == "" {
		job.Format = FormatMP3
	}
	log := td.logger.With(zap.String("track", job.Meta.Title), zap.String("quality", job.Quality))

	// Phase 1: resolve the stream URL
	td.updatePhase(PhaseResolving, callbacks)

	streamURL, err := td.resolve(job)
	if err != nil {
		return nil, td.handleError(ErrorNoURL, "no URL for quality "+job.Quality, err, callbacks)
	}
	log.Debug("Resolved stream URL", zap.String("url", streamURL))

	var variants []Variant
	if job.Probe && td.fetcher != nil && IsManifest(streamURL) {
		variants, err = ProbeManifest(downloadCtx, td.fetcher, streamURL)
		if err != nil {
			td.warn(callbacks, log, "manifest probe failed", err)
		} else {
			for _, v := range variants {
				log.Info("Stream variant",
					zap.Uint32("bandwidth", v.Bandwidth),
					zap.String("codecs", v.Codecs),
					zap.String("uri", v.URI))
			}
		}
	}

	baseName := SanitizeFilename(job.Meta.DisplayName())
	if baseName == "" {
		baseName = SanitizeFilename(job.Meta.Title)
	}
	outputTemplate := filepath.Join(job.OutputDir, baseName+".%(ext)s")
	filePath := OutputPath(outputTemplate, job.Format)

	// Check if file already exists
	if fileInfo, err := os.Stat(filePath); err == nil {
		result := td.result(job, filePath, fileInfo.Size(), variants)
		result.Skipped = true
		td.complete(result, callbacks)
		return result, nil
	}

	if err := os.MkdirAll(job.OutputDir, os.ModePerm); err != nil {
		return nil, td.handleError(ErrorFileSystemError, "failed to create output directory", err, callbacks)
	}

	if err := downloadCtx.Err(); err != nil {
		return nil, td.handleError(ErrorCancelled, "download cancelled", err, callbacks)
	}

	// Phase 2: download and convert
	td.updatePhase(PhaseDownloading, callbacks)

	filePath, err = td.ytdlp.Download(downloadCtx, streamURL, outputTemplate, job.Format, func(ev Event) {
		if ev.Phase != td.GetStatus().Phase {
			td.updatePhase(ev.Phase, callbacks)
		}
		td.mu.Lock()
		td.status.Progress = ev.Progress
		td.mu.Unlock()
		if callbacks.OnProgress != nil && ev.Phase == PhaseDownloading {
			callbacks.OnProgress(ev.Phase, ev.Progress)
		}
	})
	if err != nil {
		return nil, td.handleError(errorTypeFor(err, ErrorDownloadFailure), "yt-dlp download failed", err, callbacks)
	}

	// Phase 3: artwork and tags; failures here only warn
	tagged := false
	if job.Embed {
		td.updatePhase(PhaseTagging, callbacks)
		tagged = td.tag(downloadCtx, job, filePath, callbacks, log)
	}

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, td.handleError(ErrorFileSystemError, "failed to get file info", err, callbacks)
	}

	result := td.result(job, filePath, fileInfo.Size(), variants)
	result.Tagged = tagged
	if job.Format == FormatM4A {
		if d, err := ProbeDuration(filePath); err == nil {
			result.AudioDuration = d
		} else {
			log.Debug("Duration probe failed", zap.Error(err))
		}
	}

	td.complete(result, callbacks)
	return result, nil
}

// tag fetches the cover into a temp file and runs the tagger for the job's format
func (td *TrackDownloaderImpl) tag(ctx context.Context, job Job, filePath string, callbacks ProgressCallbacks, log *zap.Logger) bool {
	coverPath := ""
	if job.Meta.ArtworkURL != "" && td.fetcher != nil {
		path, err := td.fetchCover(ctx, job.Meta.ArtworkURL)
		if err != nil {
			td.warn(callbacks, log, "thumbnail download failed", err)
		} else {
			coverPath = path
			defer os.Remove(path)
		}
	}

	tagger := TaggerFor(job.Format, td.ffmpeg)
	if err := tagger.Tag(ctx, filePath, coverPath, job.Meta); err != nil {
		td.warn(callbacks, log, "embedding failed", NewDownloadErrorWithCause(ErrorTagFailure, "failed to tag file", err))
		return false
	}
	return true
}

func (td *TrackDownloaderImpl) fetchCover(ctx context.Context, artworkURL string) (string, error) {
	data, err := td.fetcher.Bytes(ctx, artworkURL)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("empty thumbnail")
	}

	f, err := os.CreateTemp("", "gaana-cover-*.jpg")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func (td *TrackDownloaderImpl) result(job Job, filePath string, size int64, variants []Variant) *DownloadResult {
	td.mu.RLock()
	start := td.status.StartTime
	td.mu.RUnlock()

	return &DownloadResult{
		FilePath: filePath,
		Meta:     job.Meta,
		FileSize: size,
		Format:   job.Format,
		Duration: time.Since(start),
		Variants: variants,
	}
}

func (td *TrackDownloaderImpl) complete(result *DownloadResult, callbacks ProgressCallbacks) {
	td.updatePhase(PhaseComplete, callbacks)
	if callbacks.OnComplete != nil {
		callbacks.OnComplete(result)
	}
}

func (td *TrackDownloaderImpl) warn(callbacks ProgressCallbacks, log *zap.Logger, msg string, err error) {
	log.Warn(msg, zap.Error(err))
	if callbacks.OnWarning != nil {
		callbacks.OnWarning(msg, err)
	}
}

// Cancel implements the TrackDownloader interface
func (td *TrackDownloaderImpl) Cancel(ctx context.Context) error {
	td.mu.Lock()
	defer td.mu.Unlock()

	if !td.isActive {
		return NewDownloadError(ErrorUnknown, "no active download to cancel")
	}

	if td.cancelFunc != nil {
		td.cancelFunc()
	}

	return nil
}

// GetStatus implements the TrackDownloader interface
func (td *TrackDownloaderImpl) GetStatus() DownloadStatus {
	td.mu.RLock()
	defer td.mu.RUnlock()

	return td.status
}

// updatePhase updates the current phase and notifies callbacks
func (td *TrackDownloaderImpl) updatePhase(newPhase Phase, callbacks ProgressCallbacks) {
	td.mu.Lock()
	oldPhase := td.status.Phase
	td.status.Phase = newPhase
	td.mu.Unlock()

	if callbacks.OnPhaseChange != nil && oldPhase != newPhase {
		callbacks.OnPhaseChange(oldPhase, newPhase)
	}
}

// handleError creates a DownloadError and notifies callbacks
func (td *TrackDownloaderImpl) handleError(errorType ErrorType, message string, cause error, callbacks ProgressCallbacks) error {
	td.mu.Lock()
	td.status.Phase = PhaseError
	td.status.Error = cause
	name := td.status.TrackName
	td.mu.Unlock()

	err := NewDownloadErrorWithCause(errorType, message, cause).WithContext("track", name)
	td.logger.Debug("Track failed", zap.String("track", name), zap.Stringer("type", errorType), zap.Error(cause))

	if callbacks.OnError != nil {
		callbacks.OnError(err)
	}

	return err
}

// String renders a short summary used in logs
func (r *DownloadResult) String() string {
	return fmt.Sprintf("%s (%s, %d bytes)", r.FilePath, r.Format, r.FileSize)
}
