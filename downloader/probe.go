package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/abema/go-mp4"
	"github.com/grafov/m3u8"
)

// ErrNotMaster is returned when a manifest is a media playlist rather than a master
var ErrNotMaster = errors.New("m3u8 not of master type")

// Fetcher downloads a resource; *fetch.Client implements it
type Fetcher interface {
	Bytes(ctx context.Context, url string) ([]byte, error)
}

// Variant is one rendition advertised by a master playlist
type Variant struct {
	URI              string `json:"uri"`
	Bandwidth        uint32 `json:"bandwidth"`
	AverageBandwidth uint32 `json:"average_bandwidth,omitempty"`
	Codecs           string `json:"codecs,omitempty"`
}

// IsManifest reports whether streamURL points at an HLS playlist
func IsManifest(streamURL string) bool {
	u, err := url.Parse(streamURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".m3u8")
}

// ProbeManifest downloads the master playlist at manifestURL and lists its variants,
// highest bandwidth first. Variant URIs are resolved against manifestURL.
func ProbeManifest(ctx context.Context, fetcher Fetcher, manifestURL string) ([]Variant, error) {
	masterURL, err := url.Parse(manifestURL)
	if err != nil {
		return nil, err
	}

	body, err := fetcher.Bytes(ctx, manifestURL)
	if err != nil {
		return nil, err
	}
	return parseMaster(masterURL, body)
}

func parseMaster(masterURL *url.URL, body []byte) ([]Variant, error) {
	from, listType, err := m3u8.DecodeFrom(bytes.NewReader(body), true)
	if err != nil {
		return nil, fmt.Errorf("failed to decode m3u8: %w", err)
	}
	if listType != m3u8.MASTER {
		return nil, ErrNotMaster
	}
	master := from.(*m3u8.MasterPlaylist)

	variants := make([]Variant, 0, len(master.Variants))
	for _, v := range master.Variants {
		if v == nil {
			continue
		}
		uri := v.URI
		if ref, err := masterURL.Parse(v.URI); err == nil {
			uri = ref.String()
		}
		variants = append(variants, Variant{
			URI:              uri,
			Bandwidth:        v.Bandwidth,
			AverageBandwidth: v.AverageBandwidth,
			Codecs:           v.Codecs,
		})
	}

	sort.SliceStable(variants, func(i, j int) bool {
		return variants[i].Bandwidth > variants[j].Bandwidth
	})
	return variants, nil
}

// ProbeDuration reads the movie duration of an MP4/M4A file
func ProbeDuration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := mp4.Probe(f)
	if err != nil {
		return 0, fmt.Errorf("failed to probe mp4: %w", err)
	}
	if info.Timescale == 0 {
		return 0, errors.New("mp4 has no timescale")
	}
	return time.Duration(info.Duration) * time.Second / time.Duration(info.Timescale), nil
}
