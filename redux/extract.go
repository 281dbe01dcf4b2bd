// Package redux pulls the client-side state blob out of a gaana page.
//
// Pages embed their store as `window.REDUX_DATA = {...}` inside a script tag.
// ExtractObject isolates the object text with a string-aware brace matcher and
// Parse turns it into a Document that callers navigate by field name.
package redux

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	// Marker is the assignment that precedes the embedded state object
	Marker = "window.REDUX_DATA"

	// escapedSlash is how the site writes '/' inside script tags
	escapedSlash = "\\u002F"
)

// ExtractObject returns the JSON object that starts at the first '{' after marker.
//
// The scan tracks brace depth, whether it is inside a double-quoted string and
// whether the previous byte was an unconsumed backslash, so braces in string
// literals never affect the depth. If the object is never closed the rest of the
// text is returned and the caller's parse step reports the failure.
func ExtractObject(text, marker string) (string, error) {
	start := strings.Index(text, marker)
	if start == -1 {
		return "", ErrMarkerNotFound
	}

	open := strings.IndexByte(text[start:], '{')
	if open == -1 {
		return "", ErrNoOpeningBrace
	}
	open += start

	depth := 0
	inString := false
	escape := false

	for i := open; i < len(text); i++ {
		ch := text[i]

		if escape {
			escape = false
			continue
		}
		if ch == '\\' {
			escape = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[open : i+1], nil
			}
		}
	}

	return text[open:], nil
}

// Parse extracts and parses the REDUX_DATA object from a page
func Parse(html string) (*Document, error) {
	obj, err := ExtractObject(html, Marker)
	if err != nil {
		return nil, err
	}
	return ParseObject(obj)
}

// ParseObject parses already extracted object text.
// Escaped slashes are replaced textually before the JSON is validated.
func ParseObject(obj string) (*Document, error) {
	raw := strings.ReplaceAll(obj, escapedSlash, "/")

	var probe json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		pe := &ParseError{Offset: -1, Length: len(raw), Cause: err}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			pe.Offset = syntaxErr.Offset
		}
		return nil, pe
	}

	return &Document{raw: raw, root: gjson.Parse(raw)}, nil
}
