// Package downloader turns a decrypted stream URL into a tagged audio file on disk.
//
// The package defines core interfaces and data structures for:
//   - TrackDownloader: per-track download with progress callbacks
//   - Runner and ProgressParser: the external downloader process and its output
//   - Tagger: cover art and metadata embedding
//   - ProgressReporter: progress reporting for the terminal
//   - Error handling with structured DownloadError types
package downloader
