package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names
const (
	EnvDownloadDir    = "DOWNLOAD_DIR"
	EnvLogLevel       = "LOG_LEVEL"
	EnvYtDlpPath      = "YTDLP_PATH"
	EnvFFmpegPath     = "FFMPEG_PATH"
	EnvHTTPTimeout    = "HTTP_TIMEOUT"
	EnvUserAgent      = "USER_AGENT"
	EnvDefaultQuality = "DEFAULT_QUALITY"
	EnvAudioFormat    = "AUDIO_FORMAT"
	EnvEmbedArtwork   = "EMBED_ARTWORK"
)

// EnvValidator reads and type-checks environment variables
type EnvValidator struct{}

// NewEnvValidator creates a new environment validator instance
func NewEnvValidator() *EnvValidator {
	return &EnvValidator{}
}

// ValidateTyped checks that every typed variable that is set can be parsed.
// All problems are reported together.
func (e *EnvValidator) ValidateTyped() error {
	var invalid []string

	if _, err := e.GetDuration(EnvHTTPTimeout, DefaultHTTPTimeout); err != nil {
		invalid = append(invalid, err.Error())
	}
	if _, err := e.GetBool(EnvEmbedArtwork, true); err != nil {
		invalid = append(invalid, err.Error())
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, "; "))
	}
	return nil
}

// GetString returns the trimmed value of name, or def when unset or blank
func (e *EnvValidator) GetString(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

// GetDuration parses name as a Go duration such as "10s".
// A bare integer is taken as seconds.
func (e *EnvValidator) GetDuration(name string, def time.Duration) (time.Duration, error) {
	raw := e.GetString(name, "")
	if raw == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return def, fmt.Errorf("%s must be positive, got: %s", name, raw)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("%s must be a duration like 10s, got: %s", name, raw)
	}
	if d <= 0 {
		return def, fmt.Errorf("%s must be positive, got: %s", name, raw)
	}
	return d, nil
}

// GetBool parses name with strconv.ParseBool, also accepting yes/no and on/off
func (e *EnvValidator) GetBool(name string, def bool) (bool, error) {
	raw := strings.ToLower(e.GetString(name, ""))
	switch raw {
	case "":
		return def, nil
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("%s must be a boolean, got: %s", name, raw)
	}
	return b, nil
}
