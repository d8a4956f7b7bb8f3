package bolt_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/JanMattner/cuevox/pkg/adapters/bolt"
	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/JanMattner/cuevox/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, path string, capacity int) *bolt.Journal {
	t.Helper()
	j, err := bolt.Open(path, capacity)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal_Contract(t *testing.T) {
	ports.RunJournalContract(t, open(t, filepath.Join(t.TempDir(), "journal.db"), 0))
}

func TestJournal_Capacity(t *testing.T) {
	j := open(t, filepath.Join(t.TempDir(), "journal.db"), 2)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, j.Record(ctx, domain.Record{ID: id}))
	}

	records, err := j.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "d", records[0].ID)
	assert.Equal(t, "c", records[1].ID)
}

func TestJournal_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := bolt.Open(path, 0)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, domain.Record{ID: "persisted", Input: "turn on the light"}))
	require.NoError(t, j.Close())

	records, err := open(t, path, 0).List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "turn on the light", records[0].Input)
}

func TestOpen_Error(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "journal.db"), 0o755))

	_, err := bolt.Open(filepath.Join(dir, "journal.db"), 0)
	assert.ErrorContains(t, err, "failed to open journal")
}
