package downloader

import (
	"time"

	"gaana-dl/catalog"
)

// Supported output formats
const (
	FormatMP3 = "mp3"
	FormatM4A = "m4a"
)

// TrackMeta contains the metadata used for naming and tagging a track
type TrackMeta struct {
	ID         string `json:"id,omitempty"`
	Title      string `json:"title"`
	Artists    string `json:"artists"`
	Album      string `json:"album"`
	ArtworkURL string `json:"artwork_url,omitempty"`
}

// MetaFromTrack copies the naming and tagging fields out of a track record.
// pageThumbnail is used as artwork when the record has none.
func MetaFromTrack(t catalog.Track, pageThumbnail string) TrackMeta {
	return TrackMeta{
		ID:         t.ID(),
		Title:      t.Title(),
		Artists:    t.Artists(),
		Album:      t.Album(),
		ArtworkURL: catalog.TrackThumbnail(t, pageThumbnail),
	}
}

// DisplayName is the "Title - Artists" form used for file names
func (m TrackMeta) DisplayName() string {
	if m.Artists == "" {
		return m.Title
	}
	return m.Title + " - " + m.Artists
}

// Job describes one track to download
type Job struct {
	Track     catalog.Track
	Meta      TrackMeta
	Quality   string
	OutputDir string
	Format    string
	Embed     bool
	Probe     bool
}

// DownloadResult contains the result of a successful download
type DownloadResult struct {
	FilePath      string        `json:"file_path"`
	Meta          TrackMeta     `json:"meta"`
	Duration      time.Duration `json:"duration"` // wall time spent
	FileSize      int64         `json:"file_size"`
	Format        string        `json:"format"`
	AudioDuration time.Duration `json:"audio_duration,omitempty"`
	Tagged        bool          `json:"tagged"`
	Skipped       bool          `json:"skipped"` // file already existed
	Variants      []Variant     `json:"variants,omitempty"`
}
