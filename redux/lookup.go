package redux

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Field returns the value of key in an object node. When the object
// repeats key the last occurrence wins, as with a decoded JSON object.
func Field(node gjson.Result, key string) gjson.Result {
	if !node.IsObject() {
		return gjson.Result{}
	}
	var last gjson.Result
	node.ForEach(func(k, v gjson.Result) bool {
		if k.Str == key {
			last = v
		}
		return true
	})
	return last
}

// ForEachField calls fn for every distinct key of an object node. Keys come
// in order of first appearance; a repeated key carries its last value.
func ForEachField(node gjson.Result, fn func(key string, value gjson.Result) bool) {
	if !node.IsObject() {
		return
	}
	var keys []string
	values := make(map[string]gjson.Result)
	node.ForEach(func(k, v gjson.Result) bool {
		if _, ok := values[k.Str]; !ok {
			keys = append(keys, k.Str)
		}
		values[k.Str] = v
		return true
	})
	for _, k := range keys {
		if !fn(k, values[k]) {
			return
		}
	}
}

// Lookup resolves a dotted path such as "song.tracks.0.track_title" one
// segment at a time. Object segments go through Field; array segments are
// decimal indexes.
func Lookup(node gjson.Result, path string) gjson.Result {
	if path == "" {
		return node
	}
	for _, seg := range strings.Split(path, ".") {
		switch {
		case node.IsObject():
			node = Field(node, seg)
		case node.IsArray():
			node = element(node, seg)
		default:
			return gjson.Result{}
		}
		if !node.Exists() {
			return gjson.Result{}
		}
	}
	return node
}

func element(node gjson.Result, seg string) gjson.Result {
	idx, err := strconv.Atoi(seg)
	if err != nil || idx < 0 {
		return gjson.Result{}
	}
	var found gjson.Result
	i := 0
	node.ForEach(func(_, v gjson.Result) bool {
		if i == idx {
			found = v
			return false
		}
		i++
		return true
	})
	return found
}
