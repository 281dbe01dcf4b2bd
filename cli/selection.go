package cli

import (
	"strconv"
	"strings"

	"gaana-dl/streampath"
)

// SelectAll is the selection keyword for every listed track
const SelectAll = "all"

// ParseSelection turns "1,3,5" into zero-based indices for a list of n tracks.
// An empty input or "all" selects everything. Entries that are not numbers or
// fall outside 1..n are ignored, as are repeats.
func ParseSelection(input string, n int) []int {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" || input == SelectAll {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}

	var indices []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(input, ",") {
		num, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || num < 1 || num > n {
			continue
		}
		if seen[num] {
			continue
		}
		seen[num] = true
		indices = append(indices, num-1)
	}
	return indices
}

// QualityOption is one entry of the quality menu
type QualityOption struct {
	Key   string // menu key typed by the user
	Tier  string // urls entry in the track record
	Label string
}

// QualityOptions is the quality menu in display order
var QualityOptions = []QualityOption{
	{Key: "1", Tier: streampath.QualityAuto, Label: "320 kbps"},
	{Key: "2", Tier: streampath.QualityHigh, Label: "128 kbps"},
	{Key: "3", Tier: streampath.QualityMedium, Label: "64 kbps"},
}

// ParseQuality maps a menu key or tier name to a tier.
// Anything unrecognised falls back to auto.
func ParseQuality(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	for _, q := range QualityOptions {
		if input == q.Key || input == q.Tier {
			return q.Tier
		}
	}
	return streampath.QualityAuto
}

// qualityIndex is the menu position of tier, 0 when unknown
func qualityIndex(tier string) int {
	for i, q := range QualityOptions {
		if q.Tier == tier {
			return i
		}
	}
	return 0
}
