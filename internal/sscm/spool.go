package sscm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// DefaultSpoolLimit is how much output stays in memory before spilling to disk
const DefaultSpoolLimit = 8 * humanize.MiByte

// Spool buffers tool output in memory and spills to a temp file once it
// grows past its limit. Close releases the file.
type Spool struct {
	limit int64
	dir   string

	buf    bytes.Buffer
	file   *os.File
	size   int64
	closed bool
}

// NewSpool creates a spool. limit <= 0 means DefaultSpoolLimit; dir "" means os.TempDir().
func NewSpool(limit int64, dir string) *Spool {
	if limit <= 0 {
		limit = DefaultSpoolLimit
	}
	return &Spool{limit: limit, dir: dir}
}

func (s *Spool) Write(p []byte) (int, error) {
	if s.closed {
		return 0, os.ErrClosed
	}
	if s.file == nil && int64(s.buf.Len()+len(p)) > s.limit {
		if err := s.spill(); err != nil {
			return 0, err
		}
	}

	var n int
	var err error
	if s.file != nil {
		n, err = s.file.Write(p)
	} else {
		n, err = s.buf.Write(p)
	}
	s.size += int64(n)
	return n, err
}

func (s *Spool) spill() error {
	f, err := os.CreateTemp(s.dir, "changes-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create spool file: %w", err)
	}
	if _, err := f.Write(s.buf.Bytes()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("failed to write spool file: %w", err)
	}
	s.buf.Reset()
	s.file = f
	return nil
}

// Size returns the number of bytes written
func (s *Spool) Size() int64 {
	return s.size
}

// Path returns the backing file, or "" while the spool is in memory
func (s *Spool) Path() string {
	if s.file == nil {
		return ""
	}
	return s.file.Name()
}

// Open returns a reader over everything written so far
func (s *Spool) Open() (io.ReadCloser, error) {
	if s.closed {
		return nil, os.ErrClosed
	}
	if s.file != nil {
		return os.Open(s.file.Name())
	}
	return io.NopCloser(bytes.NewReader(s.buf.Bytes())), nil
}

// Close discards the buffered output. If the backing file cannot be removed
// it is queued for SweepPending and the error is returned.
func (s *Spool) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.buf.Reset()
	if s.file == nil {
		return nil
	}

	path := s.file.Name()
	closeErr := s.file.Close()
	s.file = nil
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		markPending(path)
		return fmt.Errorf("failed to delete spool file %s: %w", path, err)
	}
	return closeErr
}

var pending struct {
	sync.Mutex
	paths []string
}

func markPending(path string) {
	pending.Lock()
	defer pending.Unlock()
	pending.paths = append(pending.paths, path)
}

// PendingCleanup returns spool files that could not be removed yet
func PendingCleanup() []string {
	pending.Lock()
	defer pending.Unlock()
	return append([]string(nil), pending.paths...)
}

// SweepPending retries removal of spool files left behind by failed cleanups.
// It returns how many files were removed.
func SweepPending(logger zerolog.Logger) int {
	pending.Lock()
	defer pending.Unlock()

	removed := 0
	var remaining []string
	for _, path := range pending.paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn().Err(err).Str("path", path).Msg("spool file still not removable")
			remaining = append(remaining, path)
			continue
		}
		removed++
	}
	pending.paths = remaining
	return removed
}
