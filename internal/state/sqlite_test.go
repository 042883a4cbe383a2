package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_PersistLoad(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "state.db")

	store, err := OpenSQLite(dbPath, "owner/repo", 42, nil)
	require.NoError(t, err)

	m, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, m.Len())

	first := NewDigestMap()
	first.Set("a.go", "111")
	first.Set("b.go", "222")
	require.NoError(t, store.Persist(ctx, first))

	second := NewDigestMap()
	second.Set("b.go", "removed")
	second.Set("c.go", "333")
	require.NoError(t, store.Persist(ctx, second))
	require.NoError(t, store.Persist(ctx, NewDigestMap()))
	require.NoError(t, store.Close())

	// Reopening runs migrations again and sees the same log.
	store, err = OpenSQLite(dbPath, "owner/repo", 42, nil)
	require.NoError(t, err)
	defer store.Close()

	m, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []Entry{
		{Path: "a.go", Digest: "111"},
		{Path: "b.go", Digest: "removed"},
		{Path: "c.go", Digest: "333"},
	}, m.Entries())
}

func TestSQLiteStore_ScopedToPullRequest(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "state.db")

	a, err := OpenSQLite(dbPath, "owner/repo", 1, nil)
	require.NoError(t, err)
	updates := NewDigestMap()
	updates.Set("a.go", "111")
	require.NoError(t, a.Persist(ctx, updates))
	require.NoError(t, a.Close())

	b, err := OpenSQLite(dbPath, "owner/repo", 2, nil)
	require.NoError(t, err)
	defer b.Close()

	m, err := b.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, m.Len())
}
