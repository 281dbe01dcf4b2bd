package catalog

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const imageCDNHost = "gaanacdn.com"

// PageThumbnail returns the page-level cover image URL.
// Preference order: og:image, twitter:image, then the first CDN <img> with an alt text.
func PageThumbnail(page string) string {
	var ogImage, twitterImage, cdnImage string

	z := html.NewTokenizer(strings.NewReader(page))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		tok := z.Token()
		switch tok.DataAtom {
		case atom.Meta:
			content := attr(tok, "content")
			if !strings.HasPrefix(content, "https://") {
				continue
			}
			if ogImage == "" && attr(tok, "property") == "og:image" {
				ogImage = content
			}
			if twitterImage == "" && attr(tok, "name") == "twitter:image" {
				twitterImage = content
			}
		case atom.Img:
			if cdnImage != "" || !hasAttr(tok, "alt") {
				continue
			}
			if src := attr(tok, "src"); isCDNImage(src) {
				cdnImage = src
			}
		}

		if ogImage != "" {
			return ogImage
		}
	}

	switch {
	case twitterImage != "":
		return twitterImage
	default:
		return cdnImage
	}
}

// TrackThumbnail prefers the track's own artwork over the page image
func TrackThumbnail(t Track, pageThumbnail string) string {
	if a := t.Artwork(); a != "" {
		return a
	}
	return pageThumbnail
}

func isCDNImage(src string) bool {
	if !strings.HasPrefix(src, "https://") {
		return false
	}
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == imageCDNHost || strings.HasSuffix(host, "."+imageCDNHost)
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(tok html.Token, key string) bool {
	for _, a := range tok.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
