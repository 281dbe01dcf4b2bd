package downloader

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Event is a progress observation parsed from one line of downloader output
type Event struct {
	Phase    Phase
	Progress Progress
}

// ProgressParser turns downloader output lines into events
type ProgressParser interface {
	// Parse returns the event carried by line, if any
	Parse(line string) (Event, bool)
}

// YtDlpParser understands yt-dlp's --newline progress output
type YtDlpParser struct{}

var (
	ytdlpPercent = regexp.MustCompile(`^\[download\]\s+([\d.]+)%`)
	ytdlpTotal   = regexp.MustCompile(`of\s+~?\s*([\d.]+)\s*([KMGT]?i?B)`)
	ytdlpSpeed   = regexp.MustCompile(`at\s+([\d.]+)\s*([KMGT]?i?B)/s`)
	ytdlpETA     = regexp.MustCompile(`ETA\s+(\d{1,2}(?::\d{2}){1,2})`)
)

// Parse implements ProgressParser
func (YtDlpParser) Parse(line string) (Event, bool) {
	line = strings.TrimSpace(line)

	if strings.HasPrefix(line, "[ExtractAudio]") || strings.HasPrefix(line, "Deleting original file") {
		return Event{Phase: PhaseConverting}, true
	}

	if !strings.HasPrefix(line, "[download]") || !strings.Contains(line, "%") || !strings.Contains(line, " of ") {
		return Event{}, false
	}

	m := ytdlpPercent.FindStringSubmatch(line)
	if m == nil {
		return Event{}, false
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Event{}, false
	}

	p := Progress{Percentage: min(max(pct, 0), 100)}
	if m := ytdlpTotal.FindStringSubmatch(line); m != nil {
		p.TotalBytes = parseSize(m[1], m[2])
		p.BytesProcessed = int64(float64(p.TotalBytes) * p.Percentage / 100)
	}
	if m := ytdlpSpeed.FindStringSubmatch(line); m != nil {
		p.Speed = parseSize(m[1], m[2])
	}
	if m := ytdlpETA.FindStringSubmatch(line); m != nil {
		p.ETA = parseClock(m[1])
	}

	return Event{Phase: PhaseDownloading, Progress: p}, true
}

var sizeUnits = map[string]float64{
	"B":   1,
	"KB":  1000,
	"MB":  1000 * 1000,
	"GB":  1000 * 1000 * 1000,
	"TB":  1000 * 1000 * 1000 * 1000,
	"KiB": 1 << 10,
	"MiB": 1 << 20,
	"GiB": 1 << 30,
	"TiB": 1 << 40,
}

func parseSize(num, unit string) int64 {
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	mult, ok := sizeUnits[unit]
	if !ok {
		return 0
	}
	return int64(v * mult)
}

// parseClock reads "MM:SS" or "HH:MM:SS"
func parseClock(s string) time.Duration {
	var total time.Duration
	for _, part := range strings.Split(s, ":") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0
		}
		total = total*60 + time.Duration(n)
	}
	return total * time.Second
}
