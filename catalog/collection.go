package catalog

import (
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"gaana-dl/redux"
)

// collectionNamePaths is the lookup order for a page's display name
var collectionNamePaths = []string{
	"playlist.playlistDetail.playlist.title",
	"playlist.playlistDetail.title",
	"playlist.playlistDetail.playlist_title",
	"playlist.playlistDetail.playlistTitle",
	"playlist.playlistDetail.name",
	"album.albumDetail.title",
	"album.albumDetail.album_title",
	"album.albumDetail.name",
	"song.songDetail.title",
	"song.songDetail.track_title",
	"song.songDetail.name",
	"song.tracks.0.track_title",
}

// CollectionName returns the playlist, album or song name for doc.
// When the document names nothing, the page URL slug is title-cased instead.
func CollectionName(doc *redux.Document, page *PageURL) string {
	for _, path := range collectionNamePaths {
		if name, ok := nameValue(doc.Get(path)); ok {
			return name
		}
	}

	if page != nil {
		if name := SlugTitle(page.Slug); name != "" {
			return name
		}
	}
	return UnknownTitle
}

// nameValue accepts non-empty strings and non-zero numbers
func nameValue(r gjson.Result) (string, bool) {
	switch r.Type {
	case gjson.String:
		return r.Str, r.Str != ""
	case gjson.Number:
		return r.Raw, r.Num != 0
	default:
		return "", false
	}
}

// SlugTitle turns "some-cool-mix" into "Some Cool Mix"
func SlugTitle(slug string) string {
	words := strings.Fields(strings.ReplaceAll(slug, "-", " "))
	if len(words) == 0 {
		return ""
	}
	return cases.Title(language.Und).String(strings.Join(words, " "))
}
