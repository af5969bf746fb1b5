package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, s Store) {
	t.Helper()

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("k", "v1"))
	v, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	// last write wins
	require.NoError(t, s.Set("k", "v2"))
	v, err = s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Delete("k"))
	_, err = s.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting an absent key is fine
	assert.NoError(t, s.Delete("k"))
}

func TestMem(t *testing.T) {
	testStore(t, NewMem())
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "state.json")
	testStore(t, NewFile(path))
}

func TestFileSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, NewFile(path).Set("k", "v"))

	v, err := NewFile(path).Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestBolt(t *testing.T) {
	b, err := NewBolt(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer b.Close()
	testStore(t, b)
}

func TestBoltSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	b, err := NewBolt(path)
	require.NoError(t, err)
	require.NoError(t, b.Set("k", "v"))
	require.NoError(t, b.Close())

	b, err = NewBolt(path)
	require.NoError(t, err)
	defer b.Close()
	v, err := b.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}
