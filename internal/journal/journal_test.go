package journal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkArchivedPersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")

	j := New(path)
	j.MarkArchived("a.jpg", 1)
	j.MarkArchived("b.jpg", 2)

	reloaded := New(path)
	require.NoError(t, reloaded.Load())

	assert.True(t, reloaded.IsArchived("a.jpg"))
	assert.True(t, reloaded.IsArchived("b.jpg"))
	assert.False(t, reloaded.IsArchived("c.jpg"))

	entry := reloaded.Entries["b.jpg"]
	assert.Equal(t, 2, entry.PhotoID)
	assert.False(t, entry.Timestamp.IsZero())
}

func TestLoadMissingFileStartsFresh(t *testing.T) {
	j := New(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, j.Load())

	total, archived := j.Stats()
	assert.Zero(t, total)
	assert.Zero(t, archived)
}

func TestLoadRejectsCorruptJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	j := New(path)
	assert.Error(t, j.Load())
}

func TestStatsCountsArchivedEntries(t *testing.T) {
	j := New(filepath.Join(t.TempDir(), "journal.json"))
	j.MarkArchived("a.jpg", 1)
	j.MarkArchived("b.jpg", 2)

	total, archived := j.Stats()
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, archived)
}
