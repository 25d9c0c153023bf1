package main

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/vancomm/slidingpuzzle-server/internal/game"
	"github.com/vancomm/slidingpuzzle-server/internal/store"
)

func clearSave(ctx context.Context, cmd *cli.Command) error {
	slot, closeSlot, err := openSlot(cmd)
	if err != nil {
		return err
	}
	defer closeSlot()

	clearer, ok := slot.(game.Clearer)
	if !ok {
		return errors.New("save slot can't be cleared")
	}
	if err := clearer.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, "cleared")
	return nil
}

func list(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("db")
	if path == "" {
		return errors.New("list needs --db")
	}
	s, err := store.Open(path, storeName)
	if err != nil {
		return err
	}
	defer s.Close()

	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	keys, err := s.GetAllKeys(ctx)
	if err != nil {
		return err
	}
	slices.Sort(keys)

	out := cmd.Root().Writer
	for _, key := range keys {
		fmt.Fprintln(out, key)
	}
	fmt.Fprintf(out, "saved games: %d\n", count)
	return nil
}
