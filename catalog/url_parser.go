package catalog

import (
	"fmt"
	"net/url"
	"strings"
)

// PageKind is the type of page a URL points at
type PageKind string

const (
	KindSong     PageKind = "song"
	KindAlbum    PageKind = "album"
	KindPlaylist PageKind = "playlist"
	KindOther    PageKind = "other"
)

// PageURL represents the parsed parts of a page URL
type PageURL struct {
	Raw  string   `json:"raw"`
	Host string   `json:"host"`
	Kind PageKind `json:"kind"`
	Slug string   `json:"slug"`
}

// ParsePageURL parses a song, album or playlist page URL
func ParsePageURL(input string) (*PageURL, error) {
	// Strip control characters pasted along with the URL
	input = strings.TrimFunc(strings.TrimSpace(input), func(r rune) bool {
		return r < 32 || r == 127
	})
	if input == "" {
		return nil, fmt.Errorf("empty URL")
	}

	u, err := url.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("URL has no host")
	}

	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	page := &PageURL{
		Raw:  input,
		Host: strings.ToLower(u.Hostname()),
		Kind: KindOther,
	}
	if len(segments) > 0 {
		page.Slug = segments[len(segments)-1]
	}

	// The kind segment only counts when something follows it
	for _, s := range segments[:max(len(segments)-1, 0)] {
		kind := PageKind(strings.ToLower(s))
		if kind == KindSong || kind == KindAlbum || kind == KindPlaylist {
			page.Kind = kind
			break
		}
	}

	return page, nil
}
