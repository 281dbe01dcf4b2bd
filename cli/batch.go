package cli

import (
	"fmt"
	"strings"
	"sync"

	"gaana-dl/catalog"
	"gaana-dl/downloader"
)

// ItemStatus represents the current status of a batch item
type ItemStatus int

const (
	StatusQueued ItemStatus = iota
	StatusProcessing
	StatusCompleted
	StatusSkipped
	StatusFailed
)

// String returns string representation of item status
func (s ItemStatus) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// BatchItem is one selected track
type BatchItem struct {
	Position int // 1-based position in the listing
	Track    catalog.Track
	Meta     downloader.TrackMeta
	Status   ItemStatus
	Result   *downloader.DownloadResult
	Err      error
}

// Batch holds the selected tracks of one run; they are processed one at a time
type Batch struct {
	mu    sync.RWMutex
	items []*BatchItem
}

// NewBatch queues the tracks at indices, using pageThumbnail for artwork the records lack
func NewBatch(tracks []catalog.Track, indices []int, pageThumbnail string) *Batch {
	b := &Batch{items: make([]*BatchItem, 0, len(indices))}
	for _, i := range indices {
		if i < 0 || i >= len(tracks) {
			continue
		}
		b.items = append(b.items, &BatchItem{
			Position: i + 1,
			Track:    tracks[i],
			Meta:     downloader.MetaFromTrack(tracks[i], pageThumbnail),
			Status:   StatusQueued,
		})
	}
	return b
}

// Items returns the items in processing order
func (b *Batch) Items() []*BatchItem {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]*BatchItem(nil), b.items...)
}

// Len returns the number of queued items
func (b *Batch) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

// SetStatus records the outcome of an item
func (b *Batch) SetStatus(item *BatchItem, status ItemStatus, result *downloader.DownloadResult, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	item.Status = status
	item.Result = result
	item.Err = err
}

// Counts tallies items by status
func (b *Batch) Counts() map[ItemStatus]int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	counts := make(map[ItemStatus]int)
	for _, item := range b.items {
		counts[item.Status]++
	}
	return counts
}

// Summary renders the counts of finished items, e.g. "3 downloaded, 1 failed"
func (b *Batch) Summary() string {
	counts := b.Counts()
	var parts []string
	for _, c := range []struct {
		status ItemStatus
		label  string
	}{
		{StatusCompleted, "downloaded"},
		{StatusSkipped, "already present"},
		{StatusFailed, "failed"},
		{StatusQueued, "not started"},
	} {
		if n := counts[c.status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, c.label))
		}
	}
	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, ", ")
}
