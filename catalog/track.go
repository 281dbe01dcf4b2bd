// Package catalog finds tracks and collection names inside a parsed page state.
//
// Records are recognised structurally: any object with a track_title field and
// a urls object is a track, wherever it sits in the tree.
package catalog

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	"gaana-dl/redux"
	"gaana-dl/streampath"
)

const (
	titleField   = "track_title"
	urlsField    = "urls"
	albumField   = "album_title"
	artistsField = "artist"
	idField      = "track_id"

	// UnknownTitle is used when a track or collection has no usable name
	UnknownTitle = "Unknown"
)

var (
	// ErrNoTracks indicates that no track records were found on the page.
	ErrNoTracks = errors.New("no tracks found")
	// ErrNoURL indicates that a track has no decryptable stream for the requested quality.
	ErrNoURL = errors.New("no URL available for quality")
)

var artworkFields = []string{"artworkLink", "artwork", "artwork_large", "artwork_web"}

// IsTrackRecord reports whether node has both a title and a urls mapping
func IsTrackRecord(node gjson.Result) bool {
	return node.IsObject() && redux.Field(node, titleField).Exists() && redux.Field(node, urlsField).IsObject()
}

// Track is a track record found in the page state
type Track struct {
	node gjson.Result
}

// NewTrack wraps node; ok is false when node is not a track record
func NewTrack(node gjson.Result) (Track, bool) {
	if !IsTrackRecord(node) {
		return Track{}, false
	}
	return Track{node: node}, true
}

// ID returns the site's track id, if present
func (t Track) ID() string {
	return redux.Field(t.node, idField).String()
}

// Title returns the track title
func (t Track) Title() string {
	if title := redux.Field(t.node, titleField).String(); title != "" {
		return title
	}
	return UnknownTitle
}

// Artists returns the artist names joined with ", "
func (t Track) Artists() string {
	var names []string
	redux.Field(t.node, artistsField).ForEach(func(_, artist gjson.Result) bool {
		if name := redux.Field(artist, "name").String(); name != "" {
			names = append(names, name)
		}
		return true
	})
	return strings.Join(names, ", ")
}

// Album returns the album title
func (t Track) Album() string {
	return redux.Field(t.node, albumField).String()
}

// Artwork returns the best artwork URL the record carries
func (t Track) Artwork() string {
	for _, field := range artworkFields {
		if v := redux.Field(t.node, field).String(); v != "" {
			return v
		}
	}
	return ""
}

// Qualities lists the quality keys present in the urls mapping, in document
// order. A repeated key is listed once, at its first position.
func (t Track) Qualities() []string {
	var keys []string
	redux.ForEachField(redux.Field(t.node, urlsField), func(key string, _ gjson.Result) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Message returns the encrypted stream path for quality
func (t Track) Message(quality string) string {
	entry := redux.Field(redux.Field(t.node, urlsField), quality)
	return redux.Field(entry, "message").String()
}

// StreamURL decrypts the stream URL for quality.
// The returned error wraps ErrNoURL when the entry is missing or undecryptable.
func (t Track) StreamURL(quality string) (string, error) {
	msg := t.Message(quality)
	if msg == "" {
		return "", ErrNoURL
	}
	u, err := streampath.Resolve(msg, quality)
	if err != nil {
		return "", errors.Join(ErrNoURL, err)
	}
	return u, nil
}

// Raw returns the record's JSON text
func (t Track) Raw() string {
	return t.node.Raw
}

// FindTracks collects every track record in doc, depth first in document order.
// Records nested inside other records are included.
func FindTracks(doc *redux.Document) []Track {
	var tracks []Track
	walk(doc.Root(), func(node gjson.Result) {
		if tr, ok := NewTrack(node); ok {
			tracks = append(tracks, tr)
		}
	})
	return tracks
}

func walk(node gjson.Result, visit func(gjson.Result)) {
	switch {
	case node.IsObject():
		visit(node)
		redux.ForEachField(node, func(_ string, v gjson.Result) bool {
			walk(v, visit)
			return true
		})
	case node.IsArray():
		node.ForEach(func(_, v gjson.Result) bool {
			walk(v, visit)
			return true
		})
	}
}

// MainTracks returns the single track of a song page.
// It tries song.songDetail, then song.tracks[0], then the first record anywhere.
func MainTracks(doc *redux.Document) []Track {
	for _, path := range []string{"song.songDetail", "song.tracks.0"} {
		if tr, ok := NewTrack(doc.Get(path)); ok {
			return []Track{tr}
		}
	}
	if all := FindTracks(doc); len(all) > 0 {
		return all[:1]
	}
	return nil
}

// SelectTracks picks the tracks to offer for page
func SelectTracks(doc *redux.Document, page *PageURL) ([]Track, error) {
	var tracks []Track
	if page != nil && page.Kind == KindSong {
		tracks = MainTracks(doc)
	} else {
		tracks = FindTracks(doc)
	}
	if len(tracks) == 0 {
		return nil, ErrNoTracks
	}
	return tracks, nil
}
