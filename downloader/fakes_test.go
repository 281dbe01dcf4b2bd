package downloader

import (
	"context"
	"errors"
	"os"
	"sync"
)

// fakeRunner records invocations and replays canned output
type fakeRunner struct {
	mu        sync.Mutex
	calls     []runCall
	lines     []string
	err       error
	available map[string]bool
	// onRun runs before lines are replayed; tests use it to create output files
	onRun func(name string, args []string) error
}

type runCall struct {
	Name string
	Args []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args []string, onLine func(string)) error {
	f.mu.Lock()
	f.calls = append(f.calls, runCall{Name: name, Args: append([]string(nil), args...)})
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if f.onRun != nil {
		if err := f.onRun(name, args); err != nil {
			return err
		}
	}
	for _, l := range f.lines {
		if onLine != nil {
			onLine(l)
		}
	}
	return f.err
}

func (f *fakeRunner) Available(name string) bool {
	return f.available[name]
}

func (f *fakeRunner) Calls() []runCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runCall(nil), f.calls...)
}

// writeLastArg creates the file named by the last argument, as ffmpeg would
func writeLastArg(content string) func(string, []string) error {
	return func(_ string, args []string) error {
		return os.WriteFile(args[len(args)-1], []byte(content), 0o644)
	}
}

// fakeFetcher serves bytes from a map
type fakeFetcher struct {
	mu       sync.Mutex
	bodies   map[string][]byte
	requests []string
}

func (f *fakeFetcher) Bytes(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, url)
	body, ok := f.bodies[url]
	if !ok {
		return nil, errors.New("not found: " + url)
	}
	return body, nil
}
