package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/slidingpuzzle-server/internal/puzzle"
)

func TestMain(m *testing.M) {
	Log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	os.Exit(m.Run())
}

type memSlot struct {
	lines []string
	err   error
}

func (m *memSlot) ReadLines(ctx context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.lines == nil {
		return nil, ErrNoSave
	}
	return m.lines, nil
}

func (m *memSlot) WriteLines(ctx context.Context, lines []string) error {
	if m.err != nil {
		return m.err
	}
	m.lines = append([]string(nil), lines...)
	return nil
}

func newTestSession(t *testing.T, slot Slot) *Session {
	t.Helper()
	s := NewSession(Options{
		Size: 3,
		Rand: rand.New(rand.NewPCG(1, 2)),
		Slot: slot,
	})
	require.NoError(t, s.StartNewGame())
	return s
}

func adjacentTo(b *puzzle.Board) int {
	empty, _ := b.Tile(b.EmptyTileNumber())
	for _, t := range b.Tiles() {
		d := abs(t.Row-empty.Row) + abs(t.Col-empty.Col)
		if d == 1 {
			return t.Number
		}
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func TestActivateWithoutBoard(t *testing.T) {
	s := NewSession(Options{})
	_, err := s.Activate(1)
	assert.ErrorIs(t, err, ErrNoBoard)
	assert.ErrorIs(t, s.SaveGame(context.Background()), ErrNoBoard)
}

func TestActivateCountsAcceptedMoves(t *testing.T) {
	s := newTestSession(t, nil)
	assert.Equal(t, 3, s.Board().Size())

	result, err := s.Activate(s.Board().EmptyTileNumber())
	require.NoError(t, err)
	assert.Equal(t, puzzle.Rejected, result)
	assert.Equal(t, 0, s.Moves())

	result, err = s.Activate(adjacentTo(s.Board()))
	require.NoError(t, err)
	assert.True(t, result.Accepted())
	assert.Equal(t, 1, s.Moves())
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	slot := &memSlot{}
	s := newTestSession(t, slot)

	_, err := s.Activate(adjacentTo(s.Board()))
	require.NoError(t, err)
	saved := s.Board().Tiles()
	require.NoError(t, s.SaveGame(ctx))
	assert.Len(t, slot.lines, 10)

	require.NoError(t, s.StartNewGame())
	require.NoError(t, s.LoadGame(ctx))
	assert.Equal(t, saved, s.Board().Tiles())
	assert.Equal(t, 0, s.Moves())
}

func TestLoadFailureKeepsBoard(t *testing.T) {
	ctx := context.Background()

	s := newTestSession(t, &memSlot{})
	before := s.Board()
	assert.ErrorIs(t, s.LoadGame(ctx), ErrNoSave)
	assert.Same(t, before, s.Board())

	s = newTestSession(t, &memSlot{lines: []string{`{"BlocksPerLine":3,"HiddenNumber":9}`}})
	before = s.Board()
	assert.ErrorIs(t, s.LoadGame(ctx), puzzle.ErrIncompleteSaveData)
	assert.Same(t, before, s.Board())

	boom := errors.New("boom")
	s = newTestSession(t, &memSlot{err: boom})
	before = s.Board()
	assert.ErrorIs(t, s.LoadGame(ctx), boom)
	assert.ErrorIs(t, s.SaveGame(ctx), boom)
	assert.Same(t, before, s.Board())
}

func TestStartNewGameFailureKeepsBoard(t *testing.T) {
	s := newTestSession(t, nil)
	before := s.Board()
	s.size = 1
	assert.ErrorIs(t, s.StartNewGame(), puzzle.ErrInvalidConfiguration)
	assert.Same(t, before, s.Board())
}

func TestResume(t *testing.T) {
	board, err := puzzle.NewRandom(5, rand.New(rand.NewPCG(3, 3)))
	require.NoError(t, err)
	s := Resume(board, 12, Options{Rand: rand.New(rand.NewPCG(1, 1))})
	assert.Same(t, board, s.Board())
	assert.Equal(t, 12, s.Moves())

	require.NoError(t, s.StartNewGame())
	assert.Equal(t, 5, s.Board().Size())
	assert.Equal(t, 0, s.Moves())
}

func TestFileSlot(t *testing.T) {
	ctx := context.Background()
	slot := NewFileSlot(t.TempDir())

	_, err := slot.ReadLines(ctx)
	assert.ErrorIs(t, err, ErrNoSave)

	s := newTestSession(t, slot)
	require.NoError(t, s.SaveGame(ctx))

	data, err := os.ReadFile(slot.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"BlocksPerLine":3`)

	saved := s.Board().Tiles()
	require.NoError(t, s.StartNewGame())
	require.NoError(t, s.LoadGame(ctx))
	assert.Equal(t, saved, s.Board().Tiles())
}

func TestFileSlotClear(t *testing.T) {
	ctx := context.Background()
	slot := NewFileSlot(t.TempDir())
	require.NoError(t, slot.Clear(ctx))

	s := newTestSession(t, slot)
	require.NoError(t, s.SaveGame(ctx))
	require.NoError(t, slot.Clear(ctx))

	_, err := slot.ReadLines(ctx)
	assert.ErrorIs(t, err, ErrNoSave)
	assert.NoFileExists(t, slot.Path())
}
