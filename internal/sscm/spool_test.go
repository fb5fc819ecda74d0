package sscm

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, s *Spool) string {
	t.Helper()
	r, err := s.Open()
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestSpoolStaysInMemoryUnderLimit(t *testing.T) {
	s := NewSpool(64, t.TempDir())
	_, err := io.WriteString(s, "total-1\n")
	require.NoError(t, err)

	assert.Empty(t, s.Path())
	assert.Equal(t, int64(8), s.Size())
	assert.Equal(t, "total-1\n", readAll(t, s))
	assert.NoError(t, s.Close())
}

func TestSpoolSpillsToDisk(t *testing.T) {
	dir := t.TempDir()
	s := NewSpool(16, dir)

	_, err := io.WriteString(s, "total-2\n")
	require.NoError(t, err)
	_, err = io.WriteString(s, strings.Repeat("x", 32))
	require.NoError(t, err)

	path := s.Path()
	require.NotEmpty(t, path)
	assert.FileExists(t, path)
	assert.Equal(t, "total-2\n"+strings.Repeat("x", 32), readAll(t, s))

	require.NoError(t, s.Close())
	assert.NoFileExists(t, path)
	assert.NoError(t, s.Close(), "close is idempotent")
}

func TestSpoolRejectsUseAfterClose(t *testing.T) {
	s := NewSpool(0, "")
	require.NoError(t, s.Close())

	_, err := s.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed)
	_, err = s.Open()
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestSweepPending(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "changes-*.txt")
	require.NoError(t, err)
	f.Close()

	markPending(f.Name())
	assert.Contains(t, PendingCleanup(), f.Name())

	removed := SweepPending(zerolog.Nop())
	assert.GreaterOrEqual(t, removed, 1)
	assert.NoFileExists(t, f.Name())
	assert.NotContains(t, PendingCleanup(), f.Name())
}
