package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"gaana-dl/fetch"
	"gaana-dl/streampath"
)

// Defaults applied when a variable is unset
const (
	DefaultDownloadDir = "downloads"
	DefaultLogLevel    = "INFO"
	DefaultYtDlpPath   = "yt-dlp"
	DefaultFFmpegPath  = "ffmpeg"
	DefaultHTTPTimeout = fetch.DefaultTimeout
	DefaultQuality     = streampath.QualityAuto
	DefaultAudioFormat = "mp3"
)

// Config holds all configuration values for the downloader
type Config struct {
	DownloadDir    string        // Root directory for downloaded collections
	LogLevel       string        // Logging level (DEBUG, INFO, WARN, ERROR, FATAL)
	YtDlpPath      string        // yt-dlp executable
	FFmpegPath     string        // ffmpeg executable
	HTTPTimeout    time.Duration // Page and thumbnail request timeout
	UserAgent      string        // User-Agent for page requests
	DefaultQuality string        // auto, high or medium
	AudioFormat    string        // mp3 or m4a
	EmbedArtwork   bool          // Embed cover art and tags after download
}

// LoadConfig loads the configuration from the environment and an optional .env file
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: .env file could not be loaded: %v", err)
	}

	validator := NewEnvValidator()
	if err := validator.ValidateTyped(); err != nil {
		return nil, fmt.Errorf("environment validation failed: %w", err)
	}

	timeout, err := validator.GetDuration(EnvHTTPTimeout, DefaultHTTPTimeout)
	if err != nil {
		return nil, err
	}
	embed, err := validator.GetBool(EnvEmbedArtwork, true)
	if err != nil {
		return nil, err
	}

	config := &Config{
		DownloadDir:    validator.GetString(EnvDownloadDir, DefaultDownloadDir),
		LogLevel:       strings.ToUpper(validator.GetString(EnvLogLevel, DefaultLogLevel)),
		YtDlpPath:      validator.GetString(EnvYtDlpPath, DefaultYtDlpPath),
		FFmpegPath:     validator.GetString(EnvFFmpegPath, DefaultFFmpegPath),
		HTTPTimeout:    timeout,
		UserAgent:      validator.GetString(EnvUserAgent, fetch.DefaultUserAgent),
		DefaultQuality: strings.ToLower(validator.GetString(EnvDefaultQuality, DefaultQuality)),
		AudioFormat:    strings.ToLower(validator.GetString(EnvAudioFormat, DefaultAudioFormat)),
		EmbedArtwork:   embed,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate performs additional validation on the loaded configuration
func (c *Config) Validate() error {
	if c.DownloadDir == "" {
		return fmt.Errorf("download directory cannot be empty")
	}

	if c.YtDlpPath == "" {
		return fmt.Errorf("yt-dlp path cannot be empty")
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive, got: %s", c.HTTPTimeout)
	}

	validLogLevels := map[string]bool{
		"DEBUG": true,
		"INFO":  true,
		"WARN":  true,
		"ERROR": true,
		"FATAL": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s. Valid levels are: DEBUG, INFO, WARN, ERROR, FATAL", c.LogLevel)
	}

	switch c.DefaultQuality {
	case streampath.QualityAuto, streampath.QualityHigh, streampath.QualityMedium:
	default:
		return fmt.Errorf("invalid quality: %s. Valid qualities are: auto, high, medium", c.DefaultQuality)
	}

	switch c.AudioFormat {
	case "mp3", "m4a":
	default:
		return fmt.Errorf("invalid audio format: %s. Valid formats are: mp3, m4a", c.AudioFormat)
	}

	return nil
}
