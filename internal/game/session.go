// Package game drives a single sliding puzzle: it owns the board, counts moves
// and maps the Save, Load and Restart actions onto a [Slot].
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/slidingpuzzle-server/internal/puzzle"
	"github.com/vancomm/slidingpuzzle-server/internal/savefile"
)

var Log = logrus.New()

const DefaultSize = 4

var ErrNoBoard = errors.New("no game in progress")

type Options struct {
	Size int
	Rand *rand.Rand
	Slot Slot
}

// Session is the single owner of a board. It is not safe for concurrent use.
type Session struct {
	size  int
	rnd   *rand.Rand
	slot  Slot
	board *puzzle.Board
	moves int
}

// NewSession returns a session with no board. Call StartNewGame or LoadGame first.
func NewSession(opts Options) *Session {
	size := opts.Size
	if size == 0 {
		size = DefaultSize
	}
	return &Session{
		size: size,
		rnd:  opts.Rand,
		slot: opts.Slot,
	}
}

// Resume adopts a board that was restored elsewhere.
func Resume(board *puzzle.Board, moves int, opts Options) *Session {
	s := NewSession(opts)
	s.board = board
	s.size = board.Size()
	s.moves = moves
	return s
}

// Board returns the current board, or nil before the first game.
func (s *Session) Board() *puzzle.Board {
	return s.board
}

// Moves is the number of accepted moves on the current board.
func (s *Session) Moves() int {
	return s.moves
}

// StartNewGame replaces the board with a freshly shuffled one. The previous
// board survives if generation fails.
func (s *Session) StartNewGame() error {
	board, err := puzzle.NewRandom(s.size, s.rnd)
	if err != nil {
		return err
	}
	s.board = board
	s.moves = 0
	Log.WithField("size", s.size).Debug("started new game")
	return nil
}

func (s *Session) Activate(number int) (puzzle.MoveResult, error) {
	if s.board == nil {
		return puzzle.Rejected, ErrNoBoard
	}
	result := s.board.Activate(number)
	if result.Accepted() {
		s.moves++
	}
	if result == puzzle.MovedWin {
		Log.WithFields(logrus.Fields{
			"size":  s.size,
			"moves": s.moves,
		}).Info("puzzle solved")
	}
	return result, nil
}

func (s *Session) SaveGame(ctx context.Context) error {
	if s.board == nil {
		return ErrNoBoard
	}
	if s.slot == nil {
		return fmt.Errorf("no save slot configured")
	}
	if err := s.slot.WriteLines(ctx, savefile.Encode(s.board)); err != nil {
		return fmt.Errorf("unable to save game: %w", err)
	}
	Log.Debug("saved game")
	return nil
}

// LoadGame replaces the board with the saved one. On any failure, including
// [ErrNoSave], the current board is left untouched.
func (s *Session) LoadGame(ctx context.Context) error {
	if s.slot == nil {
		return fmt.Errorf("no save slot configured")
	}
	lines, err := s.slot.ReadLines(ctx)
	if err != nil {
		return err
	}
	board, err := savefile.Decode(lines)
	if err != nil {
		return fmt.Errorf("unable to load game: %w", err)
	}
	s.board = board
	s.size = board.Size()
	s.moves = 0
	Log.WithField("size", s.size).Debug("loaded game")
	return nil
}
