package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/fatih/color"
	"go.uber.org/zap"

	"gaana-dl/catalog"
	"gaana-dl/config"
	"gaana-dl/downloader"
	"gaana-dl/fetch"
	"gaana-dl/logging"
	"gaana-dl/redux"
)

const banner = `
  ▒▒▒▒▒▒╗  ▒▒▒▒▒╗  ▒▒▒▒▒╗ ▒▒▒╗   ▒▒╗ ▒▒▒▒▒╗
 ▒▒╔═══╝ ▒▒╔══▒▒╗▒▒╔══▒▒╗▒▒▒▒╗  ▒▒║▒▒╔══▒▒╗
 ▒▒║  ▒▒▒╗▒▒▒▒▒▒▒║▒▒▒▒▒▒▒║▒▒╔▒▒╗ ▒▒║▒▒▒▒▒▒▒║
 ▒▒║   ▒▒║▒▒╔══▒▒║▒▒╔══▒▒║▒▒║╚▒▒╗▒▒║▒▒╔══▒▒║
 ╚▒▒▒▒▒▒╔╝▒▒║  ▒▒║▒▒║  ▒▒║▒▒║ ╚▒▒▒▒║▒▒║  ▒▒║
  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═══╝╚═╝  ╚═╝
            DOWNLOADER
`

// Fetcher retrieves pages and binary resources; *fetch.Client implements it
type Fetcher interface {
	Page(ctx context.Context, url string) (string, error)
	Bytes(ctx context.Context, url string) ([]byte, error)
}

// App wires configuration, fetching, prompting and downloading for one run
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Out      io.Writer
	Err      io.Writer
	Fetcher  Fetcher
	Runner   downloader.Runner
	Prompter Prompter

	colors palette
}

type palette struct {
	title, ok, warn, fail, dim, accent *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		title:  color.New(color.FgCyan, color.Bold),
		ok:     color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		fail:   color.New(color.FgRed),
		dim:    color.New(color.Faint),
		accent: color.New(color.FgCyan),
	}
	if !enabled {
		for _, c := range []*color.Color{p.title, p.ok, p.warn, p.fail, p.dim, p.accent} {
			c.DisableColor()
		}
	}
	return p
}

// New creates an App talking to the real network, processes and terminal
func New(cfg *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		Config: cfg,
		Logger: logger,
		Out:    color.Output,
		Err:    os.Stderr,
		Fetcher: fetch.NewClient(
			fetch.WithTimeout(cfg.HTTPTimeout),
			fetch.WithUserAgent(cfg.UserAgent),
			fetch.WithLogger(logger),
		),
		Runner:   downloader.ExecRunner{},
		Prompter: SurveyPrompter{},
	}
}

// page is everything discovered from one fetched page
type page struct {
	url        *catalog.PageURL
	doc        *redux.Document
	tracks     []catalog.Track
	collection string
	thumbnail  string
}

// Run executes one download session with the given command-line arguments
func (a *App) Run(ctx context.Context, args []string) error {
	opts, err := ParseFlags(logging.Name, args, a.Config, a.Err)
	if err != nil {
		return err
	}
	a.colors = newPalette(!opts.NoColor && !color.NoColor)
	log := a.Logger

	if !opts.DumpState {
		a.colors.title.Fprintln(a.Out, banner)
	}

	if opts.URL == "" && !opts.Yes {
		opts.URL, err = a.Prompter.URL()
		if err != nil {
			return a.promptErr(err)
		}
		opts.URL = strings.TrimSpace(opts.URL)
	}
	if opts.URL == "" {
		a.colors.fail.Fprintln(a.Out, "✗ No URL")
		return nil
	}

	if opts.DumpState {
		return a.dumpState(ctx, opts.URL)
	}

	a.colors.warn.Fprint(a.Out, "\n⟳ ")
	fmt.Fprint(a.Out, "Fetching...")

	pg, err := a.load(ctx, opts.URL)
	if errors.Is(err, catalog.ErrNoTracks) {
		fmt.Fprintln(a.Out)
		a.colors.fail.Fprintln(a.Out, "✗ No tracks")
		return err
	}
	if err != nil {
		a.colors.fail.Fprint(a.Out, "\r✗ ")
		fmt.Fprintf(a.Out, "Error: %s\n", describeError(err))
		return err
	}
	log.Info("Fetched page",
		zap.String("url", pg.url.Raw),
		zap.String("kind", string(pg.url.Kind)),
		zap.String("collection", pg.collection),
		zap.Int("tracks", len(pg.tracks)))

	a.colors.ok.Fprint(a.Out, "\r✓ ")
	fmt.Fprint(a.Out, "Fetched: ")
	a.colors.accent.Fprint(a.Out, pg.collection)
	fmt.Fprintf(a.Out, " (%d tracks)\n\n", len(pg.tracks))

	for i, t := range pg.tracks {
		a.colors.dim.Fprintf(a.Out, "  %2d.", i+1)
		fmt.Fprintf(a.Out, " %s ", t.Title())
		a.colors.dim.Fprintf(a.Out, "[%s]\n", t.Artists())
	}
	fmt.Fprintln(a.Out)

	if opts.Selection == "" {
		opts.Selection, err = a.Prompter.Selection(len(pg.tracks))
		if err != nil {
			return a.promptErr(err)
		}
	}
	indices := ParseSelection(opts.Selection, len(pg.tracks))
	if len(indices) == 0 {
		a.colors.fail.Fprintln(a.Out, "✗ No selection")
		return nil
	}

	if opts.Quality == "" {
		opts.Quality, err = a.Prompter.Quality(defaultQuality(a.Config))
		if err != nil {
			return a.promptErr(err)
		}
	}

	outputDir := filepath.Join(opts.OutputDir, downloader.SanitizeFilename(pg.collection))
	batch := NewBatch(pg.tracks, indices, pg.thumbnail)

	a.colors.warn.Fprint(a.Out, "\n⟳ ")
	fmt.Fprintf(a.Out, "Downloading %d track(s)...\n\n", batch.Len())

	runErr := a.download(ctx, batch, opts, outputDir)

	counts := batch.Counts()
	log.Info("Run finished",
		zap.Int("downloaded", counts[StatusCompleted]),
		zap.Int("skipped", counts[StatusSkipped]),
		zap.Int("failed", counts[StatusFailed]))

	if errors.Is(runErr, context.Canceled) {
		a.colors.warn.Fprint(a.Out, "\n⚠ ")
		fmt.Fprintf(a.Out, "Interrupted (%s)\n", batch.Summary())
		return runErr
	}
	if runErr != nil {
		return runErr
	}

	a.colors.ok.Fprint(a.Out, "\n✓ ")
	fmt.Fprint(a.Out, "Done! Saved to: ")
	a.colors.warn.Fprint(a.Out, outputDir)
	a.colors.dim.Fprintf(a.Out, " (%s)\n\n", batch.Summary())
	return nil
}

// load fetches the page and discovers its tracks, collection name and thumbnail
func (a *App) load(ctx context.Context, rawURL string) (*page, error) {
	pageURL, err := catalog.ParsePageURL(rawURL)
	if err != nil {
		return nil, err
	}

	html, err := a.Fetcher.Page(ctx, pageURL.Raw)
	if err != nil {
		return nil, err
	}

	doc, err := redux.Parse(html)
	if err != nil {
		return nil, err
	}

	tracks, err := catalog.SelectTracks(doc, pageURL)
	if err != nil {
		return nil, err
	}

	return &page{
		url:        pageURL,
		doc:        doc,
		tracks:     tracks,
		collection: catalog.CollectionName(doc, pageURL),
		thumbnail:  catalog.PageThumbnail(html),
	}, nil
}

// dumpState prints the page's embedded state as indented JSON
func (a *App) dumpState(ctx context.Context, rawURL string) error {
	pageURL, err := catalog.ParsePageURL(rawURL)
	if err != nil {
		return err
	}
	html, err := a.Fetcher.Page(ctx, pageURL.Raw)
	if err != nil {
		return err
	}
	doc, err := redux.Parse(html)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.Out, doc.Get("@pretty").Raw)
	return err
}

// download processes the batch sequentially. Per-track failures are reported
// and skipped; only cancellation or a missing yt-dlp stops the run.
func (a *App) download(ctx context.Context, batch *Batch, opts *Options, outputDir string) error {
	if !a.Runner.Available(a.Config.YtDlpPath) {
		a.colors.fail.Fprint(a.Out, "✗ ")
		fmt.Fprintf(a.Out, "yt-dlp not found (%s)\n", a.Config.YtDlpPath)
		return fmt.Errorf("yt-dlp not found at %q", a.Config.YtDlpPath)
	}

	ytdlp := downloader.NewYtDlp(a.Config.YtDlpPath, a.Logger)
	ytdlp.Runner = a.Runner

	var ffmpeg *downloader.FFmpegTagger
	if opts.Embed && a.Runner.Available(a.Config.FFmpegPath) {
		ffmpeg = &downloader.FFmpegTagger{Path: a.Config.FFmpegPath, Runner: a.Runner, Logger: a.Logger}
	} else if opts.Embed {
		a.Logger.Debug("ffmpeg not found, tagging natively", zap.String("path", a.Config.FFmpegPath))
	}

	td := downloader.NewTrackDownloader(downloader.Options{
		YtDlp:   ytdlp,
		FFmpeg:  ffmpeg,
		Fetcher: a.Fetcher,
		Logger:  a.Logger,
	})
	reporter := downloader.NewConsoleReporter(a.Out, !opts.NoColor && !color.NoColor)

	for _, item := range batch.Items() {
		if err := ctx.Err(); err != nil {
			return err
		}

		job := downloader.Job{
			Track:     item.Track,
			Meta:      item.Meta,
			Quality:   opts.Quality,
			OutputDir: outputDir,
			Format:    opts.Format,
			Embed:     opts.Embed,
			Probe:     opts.Probe,
		}

		batch.SetStatus(item, StatusProcessing, nil, nil)
		result, err := a.downloadOne(ctx, td, reporter, job)
		switch {
		case err != nil:
			batch.SetStatus(item, StatusFailed, nil, err)
			if downloader.IsDownloadError(err, downloader.ErrorCancelled) {
				return context.Canceled
			}
		case result.Skipped:
			batch.SetStatus(item, StatusSkipped, result, nil)
		default:
			batch.SetStatus(item, StatusCompleted, result, nil)
			a.Logger.Debug("Track saved", zap.Stringer("result", result))
		}
	}
	return nil
}

// downloadOne runs a single job with a tracker feeding the console reporter
func (a *App) downloadOne(ctx context.Context, td *downloader.TrackDownloaderImpl, reporter *downloader.ConsoleReporter, job downloader.Job) (*downloader.DownloadResult, error) {
	if err := reporter.StartTracking(ctx, job.Meta.Title); err != nil {
		return nil, err
	}

	tracker := downloader.NewProgressTracker(reporter)
	tracker.SetLogger(a.Logger)
	if err := tracker.Start(ctx); err != nil {
		reporter.Stop()
		return nil, err
	}
	defer tracker.Stop()

	callbacks := tracker.Callbacks()
	callbacks.OnWarning = reporter.ReportWarning

	return td.Download(ctx, job, callbacks)
}

// promptErr treats an interrupted prompt as a clean exit
func (a *App) promptErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		a.colors.warn.Fprint(a.Out, "\n⚠ ")
		fmt.Fprintln(a.Out, "Interrupted")
		return context.Canceled
	}
	return fmt.Errorf("prompt failed: %w", err)
}
