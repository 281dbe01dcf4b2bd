package catalog

import (
	"errors"
	"fmt"
	"testing"

	"github.com/tidwall/gjson"

	"gaana-dl/redux"
	"gaana-dl/streampath"
)

func mustParse(t *testing.T, obj string) *redux.Document {
	t.Helper()
	doc, err := redux.ParseObject(obj)
	if err != nil {
		t.Fatalf("ParseObject() error = %v", err)
	}
	return doc
}

func encryptedPath(t *testing.T, plain string) string {
	t.Helper()
	enc, err := streampath.Encrypt(plain, 3, [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'})
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	return enc
}

func titles(tracks []Track) []string {
	out := make([]string, 0, len(tracks))
	for _, tr := range tracks {
		out = append(out, tr.Title())
	}
	return out
}

func TestIsTrackRecord(t *testing.T) {
	testCases := []struct {
		name     string
		json     string
		expected bool
	}{
		{"title and urls", `{"track_title":"A","urls":{}}`, true},
		{"missing urls", `{"track_title":"A"}`, false},
		{"missing title", `{"urls":{"high":{}}}`, false},
		{"urls is array", `{"track_title":"A","urls":[]}`, false},
		{"urls is string", `{"track_title":"A","urls":"x"}`, false},
		{"array node", `[{"track_title":"A","urls":{}}]`, false},
		{"null title still counts", `{"track_title":null,"urls":{}}`, true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTrackRecord(gjson.Parse(tt.json)); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestFindTracks_DocumentOrder(t *testing.T) {
	doc := mustParse(t, `{
		"a": {"track_title":"One","urls":{},"related":[{"track_title":"Nested","urls":{}}]},
		"b": [1, "x", null, {"list":[{"track_title":"Two","urls":{}}]}],
		"c": {"track_title":"NotTrack","urls":"bad"},
		"d": {"track_title":"Three","urls":{"high":{"message":"x"}}}
	}`)

	got := titles(FindTracks(doc))
	expected := []string{"One", "Nested", "Two", "Three"}
	if fmt.Sprint(got) != fmt.Sprint(expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestFindTracks_RepeatedKeys(t *testing.T) {
	doc := mustParse(t, `{
		"a": {"track_title":"Shadowed","urls":{}},
		"b": {"track_title":"Two","urls":{}},
		"a": {"track_title":"One","urls":{"low":{"message":"old"},"high":{"message":"x"},"low":{"message":"new"}}}
	}`)

	tracks := FindTracks(doc)
	got := titles(tracks)
	expected := []string{"One", "Two"}
	if fmt.Sprint(got) != fmt.Sprint(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	if q := fmt.Sprint(tracks[0].Qualities()); q != "[low high]" {
		t.Errorf("expected qualities [low high], got %s", q)
	}
	if msg := tracks[0].Message("low"); msg != "new" {
		t.Errorf("expected the last low entry, got %q", msg)
	}
}

func TestFindTracks_Empty(t *testing.T) {
	doc := mustParse(t, `{"a":{"b":[1,2,3]}}`)
	if got := FindTracks(doc); len(got) != 0 {
		t.Errorf("expected no tracks, got %d", len(got))
	}
	if got := FindTracks(nil); len(got) != 0 {
		t.Errorf("expected no tracks for nil document, got %d", len(got))
	}
}

func TestMainTracks_Fallbacks(t *testing.T) {
	testCases := []struct {
		name     string
		json     string
		expected []string
	}{
		{
			name:     "song detail wins",
			json:     `{"other":{"track_title":"Elsewhere","urls":{}},"song":{"songDetail":{"track_title":"Detail","urls":{}},"tracks":[{"track_title":"First","urls":{}}]}}`,
			expected: []string{"Detail"},
		},
		{
			name:     "first of song tracks",
			json:     `{"song":{"songDetail":{"title":"no urls"},"tracks":[{"track_title":"First","urls":{}},{"track_title":"Second","urls":{}}]}}`,
			expected: []string{"First"},
		},
		{
			name:     "first record anywhere",
			json:     `{"x":[{"track_title":"Anywhere","urls":{}},{"track_title":"Later","urls":{}}]}`,
			expected: []string{"Anywhere"},
		},
		{
			name:     "nothing",
			json:     `{"song":{}}`,
			expected: []string{},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := titles(MainTracks(mustParse(t, tt.json)))
			if fmt.Sprint(got) != fmt.Sprint(tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSelectTracks(t *testing.T) {
	doc := mustParse(t, `{"song":{"songDetail":{"track_title":"Main","urls":{}}},"related":[{"track_title":"Other","urls":{}}]}`)

	song := &PageURL{Kind: KindSong}
	tracks, err := SelectTracks(doc, song)
	if err != nil {
		t.Fatalf("SelectTracks() error = %v", err)
	}
	if got := titles(tracks); fmt.Sprint(got) != "[Main]" {
		t.Errorf("expected [Main] for a song page, got %v", got)
	}

	album := &PageURL{Kind: KindAlbum}
	tracks, err = SelectTracks(doc, album)
	if err != nil {
		t.Fatalf("SelectTracks() error = %v", err)
	}
	if got := titles(tracks); fmt.Sprint(got) != "[Main Other]" {
		t.Errorf("expected [Main Other] for an album page, got %v", got)
	}

	if _, err := SelectTracks(mustParse(t, `{}`), album); !errors.Is(err, ErrNoTracks) {
		t.Errorf("expected ErrNoTracks, got %v", err)
	}
}

func TestTrack_Fields(t *testing.T) {
	doc := mustParse(t, `{"t":{
		"track_id": 42,
		"track_title": "Tum Hi Ho",
		"album_title": "Aashiqui 2",
		"artist": [{"name":"Arijit Singh"},{"name":""},{"name":"Mithoon"}],
		"artwork_large": "https://a10.gaanacdn.com/images/large.jpg",
		"urls": {"medium":{"message":"m"},"high":{"message":"h"},"auto":{"message":"a"}}
	}}`)

	tr, ok := NewTrack(doc.Get("t"))
	if !ok {
		t.Fatal("expected a track record")
	}

	if tr.ID() != "42" {
		t.Errorf("expected id 42, got %q", tr.ID())
	}
	if tr.Title() != "Tum Hi Ho" {
		t.Errorf("expected title, got %q", tr.Title())
	}
	if tr.Album() != "Aashiqui 2" {
		t.Errorf("expected album, got %q", tr.Album())
	}
	if tr.Artists() != "Arijit Singh, Mithoon" {
		t.Errorf("expected joined artists, got %q", tr.Artists())
	}
	if tr.Artwork() != "https://a10.gaanacdn.com/images/large.jpg" {
		t.Errorf("expected artwork_large fallback, got %q", tr.Artwork())
	}
	if got := fmt.Sprint(tr.Qualities()); got != "[medium high auto]" {
		t.Errorf("expected qualities in document order, got %s", got)
	}
	if tr.Message("high") != "h" {
		t.Errorf("expected message h, got %q", tr.Message("high"))
	}
	if tr.Message("low") != "" {
		t.Errorf("expected empty message for missing quality, got %q", tr.Message("low"))
	}
}

func TestTrack_UnknownTitle(t *testing.T) {
	tr, ok := NewTrack(gjson.Parse(`{"track_title":"","urls":{}}`))
	if !ok {
		t.Fatal("expected a track record")
	}
	if tr.Title() != UnknownTitle {
		t.Errorf("expected %q, got %q", UnknownTitle, tr.Title())
	}
	if tr.Artists() != "" {
		t.Errorf("expected no artists, got %q", tr.Artists())
	}
}

func TestTrack_StreamURL(t *testing.T) {
	autoPlain := "https://vodhlsgaana.akamaized.net/hls/1/f.mp4.master.m3u8"
	highPlain := "https://vodhlsgaana.akamaized.net/hls/1/128.mp4.master.m3u8"

	obj := fmt.Sprintf(`{"track_title":"X","urls":{"auto":{"message":%q},"high":{"message":%q},"medium":{"message":"garbage"}}}`,
		encryptedPath(t, autoPlain), encryptedPath(t, highPlain))
	tr, ok := NewTrack(gjson.Parse(obj))
	if !ok {
		t.Fatal("expected a track record")
	}

	got, err := tr.StreamURL(streampath.QualityAuto)
	if err != nil {
		t.Fatalf("StreamURL(auto) error = %v", err)
	}
	if got != "https://vodhlsgaana.akamaized.net/hls/1/320.mp4.master.m3u8" {
		t.Errorf("expected rewritten auto manifest, got %q", got)
	}

	got, err = tr.StreamURL(streampath.QualityHigh)
	if err != nil {
		t.Fatalf("StreamURL(high) error = %v", err)
	}
	if got != highPlain {
		t.Errorf("expected %q, got %q", highPlain, got)
	}

	_, err = tr.StreamURL(streampath.QualityMedium)
	if !errors.Is(err, ErrNoURL) || !errors.Is(err, streampath.ErrMalformedOffset) {
		t.Errorf("expected ErrNoURL wrapping the decrypt error, got %v", err)
	}

	if _, err := tr.StreamURL("low"); !errors.Is(err, ErrNoURL) {
		t.Errorf("expected ErrNoURL for missing quality, got %v", err)
	}
}
