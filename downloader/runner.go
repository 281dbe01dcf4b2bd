package downloader

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Runner executes an external program and streams its output line by line
type Runner interface {
	// Run starts name with args, calls onLine for every line of combined
	// stdout/stderr and waits for the process to exit
	Run(ctx context.Context, name string, args []string, onLine func(line string)) error

	// Available reports whether name can be executed
	Available(name string) bool
}

// ExitError is returned when a process exits unsuccessfully
type ExitError struct {
	Name     string
	ExitCode int
	Output   string // last lines of output
	Err      error
}

func (e *ExitError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s exited with code %d: %s", e.Name, e.ExitCode, e.Output)
	}
	return fmt.Sprintf("%s exited with code %d", e.Name, e.ExitCode)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExecRunner runs programs with os/exec
type ExecRunner struct {
	// WaitDelay bounds how long Run waits for output after the process exits
	// or is killed, e.g. while an ffmpeg started by yt-dlp still holds the
	// pipe. Zero means DefaultWaitDelay.
	WaitDelay time.Duration
}

const (
	// DefaultWaitDelay is the ExecRunner.WaitDelay used when none is set
	DefaultWaitDelay = 2 * time.Second

	// tailLines bounds how much output is kept for error messages
	tailLines = 5
)

// Run implements Runner
func (r ExecRunner) Run(ctx context.Context, name string, args []string, onLine func(line string)) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	var (
		wg   sync.WaitGroup
		tail []string
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		tail = scanLines(pr, onLine)
	}()

	waitErr := cmd.Wait()
	pw.Close()
	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	// the process itself succeeded; only a leftover child kept the pipe open
	if errors.Is(waitErr, exec.ErrWaitDelay) {
		waitErr = nil
	}
	if waitErr != nil {
		exitErr := &ExitError{Name: name, ExitCode: -1, Output: strings.Join(tail, "\n"), Err: waitErr}
		if ee, ok := waitErr.(*exec.ExitError); ok {
			exitErr.ExitCode = ee.ExitCode()
		}
		return exitErr
	}
	return nil
}

// Available implements Runner
func (ExecRunner) Available(name string) bool {
	if name == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}

// scanLines splits on \n and \r so carriage-return progress updates arrive as lines.
// It returns the last few non-empty lines.
func scanLines(r io.Reader, onLine func(string)) []string {
	var tail []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(splitCRLF)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if onLine != nil {
			onLine(line)
		}
		tail = append(tail, line)
		if len(tail) > tailLines {
			tail = tail[1:]
		}
	}
	// drain so the writer never blocks after a scan error
	_, _ = io.Copy(io.Discard, r)
	return tail
}

func splitCRLF(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
