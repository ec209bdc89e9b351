package viewmark

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeenAndMark(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "marks.db"))
	require.NoError(t, err)
	defer s.Close()

	seen, err := s.Seen(1, 1)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.Mark(1, 1))
	seen, err = s.Seen(1, 1)
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = s.Seen(1, 2)
	require.NoError(t, err)
	assert.False(t, seen, "markers are per thread")

	// marking twice is fine
	require.NoError(t, s.Mark(1, 1))
}

func TestMarksArePerClient(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "marks.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Mark(1, 5))

	seen, err := s.Seen(2, 5)
	require.NoError(t, err)
	assert.False(t, seen, "one client's marker must not cover another client")

	require.NoError(t, s.Mark(2, 5))
	seen, err = s.Seen(2, 5)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestMarksSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marks.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Mark(3, 7))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	seen, err := s.Seen(3, 7)
	require.NoError(t, err)
	assert.True(t, seen, "markers are durable across sessions")
}
