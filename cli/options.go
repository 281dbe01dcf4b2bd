package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"gaana-dl/config"
	"gaana-dl/downloader"
	"gaana-dl/streampath"
)

// Options are the settings for one run, from flags layered over the config
type Options struct {
	URL       string
	Quality   string // empty means ask
	Selection string // empty means ask
	OutputDir string
	Format    string
	Embed     bool
	Probe     bool
	DumpState bool
	Yes       bool
	NoColor   bool
}

// ParseFlags parses args (without the program name).
// pflag.ErrHelp is returned when usage was requested.
func ParseFlags(name string, args []string, cfg *config.Config, stderr io.Writer) (*Options, error) {
	opts := &Options{}
	var noEmbed bool

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.Quality, "quality", "q", "", "Quality: auto|high|medium or 1|2|3 (320/128/64 kbps)")
	fs.StringVarP(&opts.Selection, "select", "s", "", "Tracks to download, e.g. 1,3,5 or all")
	fs.StringVarP(&opts.OutputDir, "output", "o", cfg.DownloadDir, "Root download directory")
	fs.StringVar(&opts.Format, "format", cfg.AudioFormat, "Audio format: mp3|m4a")
	fs.BoolVar(&noEmbed, "no-embed", !cfg.EmbedArtwork, "Do not embed artwork and tags")
	fs.BoolVar(&opts.Probe, "probe", false, "Log the HLS variants of each stream")
	fs.BoolVar(&opts.DumpState, "dump-state", false, "Print the extracted page state as JSON and exit")
	fs.BoolVarP(&opts.Yes, "yes", "y", false, "Never prompt; use defaults for anything not given")
	fs.BoolVar(&opts.NoColor, "no-color", false, "Disable coloured output")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [options] [url]\n\nOptions:\n", name)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	if len(rest) > 1 {
		return nil, fmt.Errorf("expected at most one URL, got %d", len(rest))
	}
	if len(rest) == 1 {
		opts.URL = strings.TrimSpace(rest[0])
	}

	opts.Embed = !noEmbed
	opts.Format = strings.ToLower(opts.Format)
	if opts.Format != downloader.FormatMP3 && opts.Format != downloader.FormatM4A {
		return nil, fmt.Errorf("invalid format: %s. Valid formats are: mp3, m4a", opts.Format)
	}
	if opts.Quality != "" {
		opts.Quality = ParseQuality(opts.Quality)
	}

	// non-interactive runs take every default up front
	if opts.Yes {
		if opts.Quality == "" {
			opts.Quality = ParseQuality(cfg.DefaultQuality)
		}
		if opts.Selection == "" {
			opts.Selection = SelectAll
		}
	}

	return opts, nil
}

// defaultQuality is what the quality prompt preselects
func defaultQuality(cfg *config.Config) string {
	if cfg == nil || cfg.DefaultQuality == "" {
		return streampath.QualityAuto
	}
	return ParseQuality(cfg.DefaultQuality)
}
