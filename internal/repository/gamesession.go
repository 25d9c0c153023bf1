package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/slidingpuzzle-server/internal/puzzle"
	"github.com/vancomm/slidingpuzzle-server/internal/savefile"
)

type GameSession struct {
	GameSessionId int64              `db:"game_session_id"`
	PlayerId      *int64             `db:"player_id"`
	Size          int                `db:"size"`
	HiddenNumber  int                `db:"hidden_number"`
	Solved        bool               `db:"solved"`
	MoveCount     int                `db:"move_count"`
	Ranked        bool               `db:"ranked"`
	State         string             `db:"state"`
	StartedAt     pgtype.Timestamptz `db:"started_at"`
	EndedAt       pgtype.Timestamptz `db:"ended_at"`
	CreatedAt     pgtype.Timestamptz `db:"created_at"`
	UpdatedAt     pgtype.Timestamptz `db:"updated_at"`
}

// Board decodes the stored save lines.
func (s GameSession) Board() (*puzzle.Board, error) {
	return savefile.Decode(savefile.Split(s.State))
}

// EncodeState renders a board the way it is kept in game_session.state.
func EncodeState(b *puzzle.Board) string {
	return savefile.Join(savefile.Encode(b))
}

type CreateGameSessionParams struct {
	PlayerId *int64
	// Ranked marks boards shuffled by the server. Imported and loaded boards
	// stay off the leaderboard since their history is unknown.
	Ranked bool
}

func (p CreateGameSessionParams) UpdateArgs(args *pgx.NamedArgs) *pgx.NamedArgs {
	(*args)["player_id"] = p.PlayerId
	(*args)["ranked"] = p.Ranked
	return args
}

func (q *Queries) CreateGameSession(
	ctx context.Context, board *puzzle.Board, params CreateGameSessionParams,
) (*GameSession, error) {
	args := pgx.NamedArgs{
		"size":          board.Size(),
		"hidden_number": board.EmptyTileNumber(),
		"solved":        board.Solved(),
		"state":         EncodeState(board),
	}
	params.UpdateArgs(&args)

	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_session (
			player_id, size, hidden_number, solved, ranked, state
		)
		VALUES (
			@player_id, @size, @hidden_number, @solved, @ranked, @state
		)
		RETURNING *;`,
		args,
	)
	return pgx.CollectExactlyOneRow(
		rows, pgx.RowToAddrOfStructByName[GameSession],
	)
}

func (q *Queries) FetchGameSession(ctx context.Context, gameSessionId int64) (*GameSession, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM game_session WHERE game_session_id = $1",
		gameSessionId,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}

type UpdateGameSessionParams struct {
	Solved    *bool
	MoveCount *int
	State     *string
	Ranked    *bool
	StartedAt *time.Time
	EndedAt   *time.Time
	// ClearEndedAt resets ended_at to NULL, it wins over EndedAt.
	ClearEndedAt bool
	// ExpectMoveCount makes the update a no-op unless the stored move count
	// still equals it. pgx.ErrNoRows is returned in that case.
	ExpectMoveCount *int
}

func (p UpdateGameSessionParams) SetClause() (string, map[string]any) {
	parts := []string{"updated_at = now()"}
	args := make(map[string]any)

	if p.Solved != nil {
		parts = append(parts, "solved = @solved")
		args["solved"] = *p.Solved
	}
	if p.MoveCount != nil {
		parts = append(parts, "move_count = @move_count")
		args["move_count"] = *p.MoveCount
	}
	if p.State != nil {
		parts = append(parts, "state = @state")
		args["state"] = *p.State
	}
	if p.Ranked != nil {
		parts = append(parts, "ranked = @ranked")
		args["ranked"] = *p.Ranked
	}
	if p.StartedAt != nil {
		parts = append(parts, "started_at = @started_at")
		args["started_at"] = *p.StartedAt
	}
	if p.ClearEndedAt {
		parts = append(parts, "ended_at = NULL")
	} else if p.EndedAt != nil {
		parts = append(parts, "ended_at = @ended_at")
		args["ended_at"] = *p.EndedAt
	}

	return strings.Join(parts, ", "), args
}

func (p UpdateGameSessionParams) WhereClause() (string, map[string]any) {
	clause := "game_session_id = @game_session_id"
	args := make(map[string]any)
	if p.ExpectMoveCount != nil {
		clause += " AND move_count = @expect_move_count"
		args["expect_move_count"] = *p.ExpectMoveCount
	}
	return clause, args
}

func (q *Queries) UpdateGameSession(
	ctx context.Context, gameSessionId int64, params UpdateGameSessionParams,
) (*GameSession, error) {
	setClause, args := params.SetClause()
	whereClause, whereArgs := params.WhereClause()
	for k, v := range whereArgs {
		args[k] = v
	}
	args["game_session_id"] = gameSessionId
	rows, _ := q.db.Query(
		ctx,
		"UPDATE game_session SET "+setClause+" WHERE "+whereClause+" RETURNING *",
		pgx.NamedArgs(args),
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}
