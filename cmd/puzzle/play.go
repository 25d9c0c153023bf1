package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/vancomm/slidingpuzzle-server/internal/game"
	"github.com/vancomm/slidingpuzzle-server/internal/puzzle"
	"github.com/vancomm/slidingpuzzle-server/internal/savefile"
)

func play(ctx context.Context, cmd *cli.Command) error {
	slot, closeSlot, err := openSlot(cmd)
	if err != nil {
		return err
	}
	defer closeSlot()

	s := game.NewSession(game.Options{
		Size: cmd.Int("size"),
		Rand: newRand(cmd),
		Slot: slot,
	})
	if err := s.StartNewGame(); err != nil {
		return err
	}

	out := cmd.Root().Writer
	in := bufio.NewScanner(cmd.Root().Reader)
	printBoard(out, s)
	for {
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			fmt.Fprintln(out)
			return in.Err()
		}
		line := strings.TrimSpace(in.Text())
		switch line {
		case "":
			continue
		case "q":
			return nil
		case "s":
			if err := s.SaveGame(ctx); err != nil {
				fmt.Fprintln(out, "save failed:", err)
				continue
			}
			fmt.Fprintln(out, "saved")
			continue
		case "l":
			err := s.LoadGame(ctx)
			if errors.Is(err, game.ErrNoSave) {
				fmt.Fprintln(out, "no saved game")
				continue
			}
			if err != nil {
				fmt.Fprintln(out, "load failed:", err)
				continue
			}
			fmt.Fprintln(out, "loaded")
		case "r":
			if err := s.StartNewGame(); err != nil {
				return err
			}
		default:
			number, err := strconv.Atoi(line)
			if err != nil {
				fmt.Fprintln(out, "unknown command", strconv.Quote(line))
				continue
			}
			result, err := s.Activate(number)
			if err != nil {
				return err
			}
			switch result {
			case puzzle.Rejected:
				fmt.Fprintf(out, "tile %d can't move\n", number)
				continue
			case puzzle.MovedWin:
				fmt.Fprintf(out, "solved in %d moves!\n", s.Moves())
			}
		}
		printBoard(out, s)
	}
}

func printBoard(w io.Writer, s *game.Session) {
	fmt.Fprint(w, s.Board())
	fmt.Fprintf(w, "moves: %d\n", s.Moves())
}

func show(ctx context.Context, cmd *cli.Command) error {
	slot, closeSlot, err := openSlot(cmd)
	if err != nil {
		return err
	}
	defer closeSlot()

	lines, err := slot.ReadLines(ctx)
	if errors.Is(err, game.ErrNoSave) {
		return errors.New("no saved game")
	}
	if err != nil {
		return err
	}
	board, err := savefile.Decode(lines)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.Root().Writer, board)
	return nil
}
