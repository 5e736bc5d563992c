package logger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// LineRotator is a log file writer that keeps only the most recent lines.
// Lines are appended as they arrive; once the file holds twice the limit,
// it is rewritten with the newest maxLines lines.
type LineRotator struct {
	mu       sync.Mutex
	file     *os.File
	path     string
	maxLines int
	recent   [][]byte
	next     int
	written  int
}

// NewLineRotator opens path for appending and returns a rotator for it.
// A non-positive maxLines disables rotation.
func NewLineRotator(path string, maxLines int) (*LineRotator, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
	}

	r := &LineRotator{
		file:     file,
		path:     path,
		maxLines: maxLines,
	}
	if maxLines > 0 {
		r.recent = make([][]byte, 0, maxLines)
	}

	return r, nil
}

// Write implements io.Writer.
func (r *LineRotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.file.Write(p)
	if err != nil || r.maxLines <= 0 {
		return n, err
	}

	for line := range bytes.SplitSeq(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if len(line) == 0 {
			continue
		}

		r.remember(line)
		r.written++
	}

	if r.written >= r.maxLines*2 {
		if err := r.rotate(); err != nil {
			return n, fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	return n, nil
}

// Sync flushes the underlying file.
func (r *LineRotator) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.file.Sync()
}

// Close closes the underlying file.
func (r *LineRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.file.Close()
}

// remember stores a copy of line in the ring of recent lines.
func (r *LineRotator) remember(line []byte) {
	line = bytes.Clone(line)

	if len(r.recent) < r.maxLines {
		r.recent = append(r.recent, line)
		return
	}

	r.recent[r.next] = line
	r.next = (r.next + 1) % r.maxLines
}

// lines returns the recent lines oldest first.
func (r *LineRotator) lines() [][]byte {
	if len(r.recent) < r.maxLines {
		return r.recent
	}

	ordered := make([][]byte, 0, len(r.recent))
	ordered = append(ordered, r.recent[r.next:]...)

	return append(ordered, r.recent[:r.next]...)
}

// rotate replaces the file with the recent lines and reopens it.
func (r *LineRotator) rotate() error {
	temp, err := os.CreateTemp(filepath.Dir(r.path), "temp-log-")
	if err != nil {
		return err
	}

	tempPath := temp.Name()

	content := append(bytes.Join(r.lines(), []byte("\n")), '\n')
	if _, err := temp.Write(content); err != nil {
		temp.Close()
		os.Remove(tempPath)

		return err
	}

	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	r.file.Close()

	// Windows refuses to rename over an existing file
	os.Remove(r.path)

	if err := os.Rename(tempPath, r.path); err != nil {
		return err
	}

	file, err := os.OpenFile(r.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	r.file = file
	r.written = len(r.recent)

	return nil
}
