package main

import (
	"context"
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/vancomm/slidingpuzzle-server/internal/config"
	"github.com/vancomm/slidingpuzzle-server/internal/game"
	"github.com/vancomm/slidingpuzzle-server/internal/puzzle"
	"github.com/vancomm/slidingpuzzle-server/internal/store"
)

const (
	defaultSlotKey = "slidingpuzzle"
	storeName      = "saves"
)

var log = logrus.New()

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "puzzle",
		Usage: "play the sliding number puzzle in a terminal",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "size",
				Aliases: []string{"s"},
				Value:   config.DefaultBoardSize(),
				Usage:   "number of tiles per side",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "seed the shuffle for a reproducible game",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "directory of the save file",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "keep the save slot in this sqlite database instead of a file",
			},
			&cli.StringFlag{
				Name:  "slot",
				Value: defaultSlotKey,
				Usage: "name of the save slot inside the --db database",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "verbose logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			log.SetOutput(cmd.Root().ErrWriter)
			log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
			if cmd.Bool("debug") {
				log.SetLevel(logrus.DebugLevel)
			}
			game.Log = log
			puzzle.Log = log
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:   "play",
				Usage:  "play interactively: a number slides that tile, s saves, l loads, r restarts, q quits",
				Action: play,
			},
			{
				Name:   "show",
				Usage:  "print the saved board",
				Action: show,
			},
			{
				Name:   "clear",
				Usage:  "delete the saved game",
				Action: clearSave,
			},
			{
				Name:   "list",
				Usage:  "list the save slots of the --db database",
				Action: list,
			},
		},
	}
}

func newRand(cmd *cli.Command) *rand.Rand {
	if cmd.IsSet("seed") {
		seed := cmd.Uint64("seed")
		return rand.New(rand.NewPCG(seed, seed))
	}
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

// openSlot picks the save backend. The returned close func is never nil.
func openSlot(cmd *cli.Command) (game.Slot, func() error, error) {
	if path := cmd.String("db"); path != "" {
		s, err := store.Open(path, storeName)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("path", path).Debug("using sqlite save slot")
		return s.Slot(cmd.String("slot")), s.Close, nil
	}

	dir := cmd.String("dir")
	if dir == "" {
		var err error
		if dir, err = game.DefaultSaveDir(); err != nil {
			return nil, nil, err
		}
	}
	slot := game.NewFileSlot(dir)
	log.WithField("path", slot.Path()).Debug("using save file")
	return slot, func() error { return nil }, nil
}

func main() {
	if _, err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "unable to load .env:", err)
	}
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
