package redux

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Document is the parsed state tree.
// Nodes are gjson values: objects, arrays, strings, numbers, booleans and null.
type Document struct {
	raw  string
	root gjson.Result
}

// Root returns the top-level object
func (d *Document) Root() gjson.Result {
	if d == nil {
		return gjson.Result{}
	}
	return d.root
}

// Raw returns the JSON text after slash unescaping
func (d *Document) Raw() string {
	if d == nil {
		return ""
	}
	return d.raw
}

// Get looks up a dotted path such as "song.songDetail" with Lookup.
// Paths starting with '@' are gjson modifiers, e.g. "@pretty".
func (d *Document) Get(path string) gjson.Result {
	if strings.HasPrefix(path, "@") {
		return d.Root().Get(path)
	}
	return Lookup(d.Root(), path)
}
