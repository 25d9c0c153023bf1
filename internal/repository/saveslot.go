package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/vancomm/slidingpuzzle-server/internal/game"
	"github.com/vancomm/slidingpuzzle-server/internal/savefile"
)

func (q *Queries) FetchSaveSlot(ctx context.Context, playerId int64) (string, error) {
	var state string
	err := q.db.QueryRow(
		ctx, "SELECT state FROM save_slot WHERE player_id = $1", playerId,
	).Scan(&state)
	return state, err
}

func (q *Queries) UpsertSaveSlot(ctx context.Context, playerId int64, state string) error {
	_, err := q.db.Exec(
		ctx,
		`INSERT INTO save_slot (player_id, state, saved_at)
		VALUES (@player_id, @state, now())
		ON CONFLICT (player_id)
		DO UPDATE SET state = excluded.state, saved_at = excluded.saved_at;`,
		pgx.NamedArgs{"player_id": playerId, "state": state},
	)
	return err
}

// PlayerSlot is the single save slot of a player.
func (q *Queries) PlayerSlot(playerId int64) game.Slot {
	return playerSlot{q: q, playerId: playerId}
}

type playerSlot struct {
	q        *Queries
	playerId int64
}

func (s playerSlot) ReadLines(ctx context.Context) ([]string, error) {
	state, err := s.q.FetchSaveSlot(ctx, s.playerId)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, game.ErrNoSave
	}
	if err != nil {
		return nil, err
	}
	return savefile.Split(state), nil
}

func (s playerSlot) WriteLines(ctx context.Context, lines []string) error {
	return s.q.UpsertSaveSlot(ctx, s.playerId, savefile.Join(lines))
}
