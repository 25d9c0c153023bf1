package store

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/slidingpuzzle-server/internal/game"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "saves.db"), "teststore")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBadName(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "saves.db"), "drop table;")
	assert.ErrorIs(t, err, ErrBadName)
	_, err = Open(filepath.Join(t.TempDir(), "saves.db"), "")
	assert.ErrorIs(t, err, ErrBadName)
}

func TestStoreReadEmpty(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.Get(context.Background(), "some key")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreUpdate(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.Set(ctx, "key", "first"))
	require.NoError(t, s.Set(ctx, "key", "second"))

	v, err := s.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "second", v)
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.Delete(ctx, "missing"))
	require.NoError(t, s.Set(ctx, "key", "value"))
	require.NoError(t, s.Delete(ctx, "key"))

	_, err := s.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreCountAndKeys(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	for _, key := range []string{"d", "b", "a", "c"} {
		require.NoError(t, s.Set(ctx, key, key))
	}

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	keys, err := s.GetAllKeys(ctx)
	require.NoError(t, err)
	slices.Sort(keys)
	assert.Equal(t, []string{"a", "b", "c", "d"}, keys)
}

func TestSlot(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	slot := s.Slot("slidingpuzzle")

	_, err := slot.ReadLines(ctx)
	assert.ErrorIs(t, err, game.ErrNoSave)

	session := game.NewSession(game.Options{
		Size: 4,
		Rand: rand.New(rand.NewPCG(1, 2)),
		Slot: slot,
	})
	require.NoError(t, session.StartNewGame())
	require.NoError(t, session.SaveGame(ctx))
	saved := session.Board().Tiles()

	lines, err := slot.ReadLines(ctx)
	require.NoError(t, err)
	assert.Len(t, lines, 17)

	require.NoError(t, session.StartNewGame())
	require.NoError(t, session.LoadGame(ctx))
	assert.Equal(t, saved, session.Board().Tiles())
}

func TestSlotClear(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	require.NoError(t, s.Set(ctx, "other", "x"))

	slot := s.Slot("slidingpuzzle")
	require.NoError(t, slot.WriteLines(ctx, []string{"a", "b"}))

	clearer, ok := slot.(game.Clearer)
	require.True(t, ok)
	require.NoError(t, clearer.Clear(ctx))
	require.NoError(t, clearer.Clear(ctx))

	_, err := slot.ReadLines(ctx)
	assert.ErrorIs(t, err, game.ErrNoSave)
	keys, err := s.GetAllKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, keys)
}
