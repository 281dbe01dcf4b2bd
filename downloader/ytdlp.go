package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// YtDlp drives the yt-dlp binary
type YtDlp struct {
	Path   string
	Runner Runner
	Parser ProgressParser
	Logger *zap.Logger
}

// NewYtDlp creates a YtDlp using the real process runner
func NewYtDlp(path string, logger *zap.Logger) *YtDlp {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YtDlp{
		Path:   path,
		Runner: ExecRunner{},
		Parser: YtDlpParser{},
		Logger: logger,
	}
}

// Args builds the yt-dlp argument list for an audio-only download
func (y *YtDlp) Args(url, outputTemplate, format string) []string {
	return []string{
		"-x",
		"--audio-format", format,
		"--audio-quality", "0",
		"--progress",
		"--newline",
		"-o", outputTemplate,
		url,
	}
}

// OutputPath is the file yt-dlp produces for a "<base>.%(ext)s" template
func OutputPath(outputTemplate, format string) string {
	base := strings.TrimSuffix(outputTemplate, filepath.Ext(outputTemplate))
	return base + "." + format
}

// Download fetches url and converts it to format.
// onEvent receives every progress event parsed from the output.
func (y *YtDlp) Download(ctx context.Context, url, outputTemplate, format string, onEvent func(Event)) (string, error) {
	args := y.Args(url, outputTemplate, format)
	y.Logger.Debug("Running yt-dlp", zap.String("path", y.Path), zap.Strings("args", args))

	err := y.Runner.Run(ctx, y.Path, args, func(line string) {
		y.Logger.Debug("yt-dlp", zap.String("line", line))
		if y.Parser == nil || onEvent == nil {
			return
		}
		if ev, ok := y.Parser.Parse(line); ok {
			onEvent(ev)
		}
	})
	if err != nil {
		return "", err
	}

	out := OutputPath(outputTemplate, format)
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("yt-dlp finished but %s is missing: %w", out, err)
	}
	return out, nil
}
