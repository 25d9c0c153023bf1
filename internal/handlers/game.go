package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/slidingpuzzle-server/internal/game"
	"github.com/vancomm/slidingpuzzle-server/internal/middleware"
	"github.com/vancomm/slidingpuzzle-server/internal/puzzle"
	"github.com/vancomm/slidingpuzzle-server/internal/repository"
	"github.com/vancomm/slidingpuzzle-server/internal/savefile"
)

const maxImportBytes = 1 << 20

var (
	ErrGameSolved     = errors.New("game is already solved")
	ErrGameConflict   = errors.New("game was changed by another request")
	ErrBadGameSession = errors.New("invalid game session id")
)

func sessionId(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, ErrBadGameSession
	}
	return id, nil
}

func playerId(ctx context.Context) *int64 {
	claims, ok := middleware.PlayerClaims(ctx)
	if !ok {
		return nil
	}
	id := claims.PlayerId
	return &id
}

// owns reports whether the requester may change session. Anonymous games are
// open to anyone holding the id.
func owns(ctx context.Context, session *repository.GameSession) bool {
	if session.PlayerId == nil {
		return true
	}
	id := playerId(ctx)
	return id != nil && *id == *session.PlayerId
}

// loadSession fetches the session named in the path and decodes its board.
// It writes the error response itself and returns ok=false on failure.
func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (
	session *repository.GameSession, board *puzzle.Board, ok bool,
) {
	id, err := sessionId(r)
	if err != nil {
		h.badRequest(w, err)
		return nil, nil, false
	}
	session, err = h.repo.FetchGameSession(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		h.notFound(w)
		return nil, nil, false
	}
	if err != nil {
		h.internalError(w, r, err, "unable to fetch session from db")
		return nil, nil, false
	}
	board, err = session.Board()
	if err != nil {
		h.internalError(w, r, err, "db returned invalid game_session.state")
		return nil, nil, false
	}
	return session, board, true
}

// activate applies one move to a copy of board and stores it. The copy is
// returned only once the row is updated, so a failed write never leaves a
// move in memory that the database does not have. The update only succeeds
// if no other move landed since session was read.
func (h *Handler) activate(
	ctx context.Context, session *repository.GameSession, board *puzzle.Board, number int,
) (*repository.GameSession, *puzzle.Board, puzzle.MoveResult, error) {
	if session.Solved {
		return session, board, puzzle.Rejected, ErrGameSolved
	}

	next := board.Clone()
	g := game.Resume(next, session.MoveCount, game.Options{})
	result, err := g.Activate(number)
	if err != nil || !result.Accepted() {
		return session, board, result, err
	}

	state := repository.EncodeState(next)
	moves := g.Moves()
	solved := next.Solved()
	params := repository.UpdateGameSessionParams{
		MoveCount:       &moves,
		State:           &state,
		Solved:          &solved,
		ExpectMoveCount: &session.MoveCount,
	}
	if result == puzzle.MovedWin {
		now := time.Now().UTC()
		params.EndedAt = &now
	}

	updated, err := h.repo.UpdateGameSession(ctx, session.GameSessionId, params)
	if errors.Is(err, pgx.ErrNoRows) {
		return session, board, puzzle.Rejected, ErrGameConflict
	}
	if err != nil {
		return session, board, puzzle.Rejected, fmt.Errorf("unable to update session: %w", err)
	}
	return updated, next, result, nil
}

// restart replaces the board with a fresh one of the same size and resets
// the clock and the move counter. A server shuffle puts the game back on the
// leaderboard.
func (h *Handler) restart(
	ctx context.Context, session *repository.GameSession,
) (*repository.GameSession, *puzzle.Board, error) {
	board, err := h.newBoard(session.Size)
	if err != nil {
		return nil, nil, err
	}
	state := repository.EncodeState(board)
	moves := 0
	solved := board.Solved()
	ranked := true
	now := time.Now().UTC()
	updated, err := h.repo.UpdateGameSession(ctx, session.GameSessionId, repository.UpdateGameSessionParams{
		MoveCount:    &moves,
		State:        &state,
		Solved:       &solved,
		Ranked:       &ranked,
		StartedAt:    &now,
		ClearEndedAt: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("unable to update session: %w", err)
	}
	return updated, board, nil
}

func (h *Handler) NewGame(w http.ResponseWriter, r *http.Request) {
	var dto NewGameDTO
	if err := h.parseQuery(&dto, r.URL.Query()); err != nil {
		h.badRequest(w, err)
		return
	}
	if dto.Size == 0 {
		dto.Size = h.defaultSize
	}

	board, err := h.newBoard(dto.Size)
	if errors.Is(err, puzzle.ErrInvalidConfiguration) {
		h.badRequest(w, err)
		return
	}
	if err != nil {
		h.internalError(w, r, err, "unable to generate a new game")
		return
	}

	session, err := h.repo.CreateGameSession(r.Context(), board, repository.CreateGameSessionParams{
		PlayerId: playerId(r.Context()),
		Ranked:   true,
	})
	if err != nil {
		h.internalError(w, r, err, "unable to create game session")
		return
	}

	h.logger(r).WithFields(logrus.Fields{
		"game_session_id": session.GameSessionId,
		"size":            dto.Size,
	}).Debug("created game session")
	h.replyWithJSON(w, r, NewGameSessionDTO(session, board))
}

func (h *Handler) Fetch(w http.ResponseWriter, r *http.Request) {
	session, board, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	h.replyWithJSON(w, r, NewGameSessionDTO(session, board))
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	var dto ActivateDTO
	if err := h.parseQuery(&dto, r.URL.Query()); err != nil {
		h.badRequest(w, err)
		return
	}

	session, board, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if !owns(r.Context(), session) {
		h.forbidden(w)
		return
	}

	session, board, result, err := h.activate(r.Context(), session, board, dto.Number)
	if errors.Is(err, ErrGameSolved) || errors.Is(err, ErrGameConflict) {
		h.conflict(w, err)
		return
	}
	if err != nil {
		h.internalError(w, r, err, "unable to apply move")
		return
	}

	reply := NewGameSessionDTO(session, board)
	reply.Result = result.String()
	h.replyWithJSON(w, r, reply)
}

func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	session, _, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if !owns(r.Context(), session) {
		h.forbidden(w)
		return
	}

	session, board, err := h.restart(r.Context(), session)
	if err != nil {
		h.internalError(w, r, err, "unable to restart game")
		return
	}
	h.replyWithJSON(w, r, NewGameSessionDTO(session, board))
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	session, _, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, session.State)
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	lines, err := savefile.ReadLines(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		h.badRequest(w, err)
		return
	}
	board, err := savefile.Decode(lines)
	if errors.Is(err, puzzle.ErrCorruptSaveData) || errors.Is(err, puzzle.ErrIncompleteSaveData) {
		h.badRequest(w, err)
		return
	}
	if err != nil {
		h.internalError(w, r, err, "unable to decode imported game")
		return
	}
	h.createFromBoard(w, r, board)
}

// createFromBoard stores a board the client supplied, directly or through its
// save slot. Such games never reach the leaderboard.
func (h *Handler) createFromBoard(w http.ResponseWriter, r *http.Request, board *puzzle.Board) {
	session, err := h.repo.CreateGameSession(r.Context(), board, repository.CreateGameSessionParams{
		PlayerId: playerId(r.Context()),
	})
	if err != nil {
		h.internalError(w, r, err, "unable to create game session")
		return
	}
	h.replyWithJSON(w, r, NewGameSessionDTO(session, board))
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	player := playerId(r.Context())
	if player == nil {
		h.unauthorized(w)
		return
	}
	session, board, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if !owns(r.Context(), session) {
		h.forbidden(w)
		return
	}

	g := game.Resume(board, session.MoveCount, game.Options{
		Slot: h.repo.PlayerSlot(*player),
	})
	if err := g.SaveGame(r.Context()); err != nil {
		h.internalError(w, r, err, "unable to save game")
		return
	}
	h.replyWithJSON(w, r, NewGameSessionDTO(session, board))
}

func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	player := playerId(r.Context())
	if player == nil {
		h.unauthorized(w)
		return
	}

	g := game.NewSession(game.Options{Slot: h.repo.PlayerSlot(*player)})
	err := g.LoadGame(r.Context())
	if errors.Is(err, game.ErrNoSave) {
		h.notFound(w)
		return
	}
	if err != nil {
		h.internalError(w, r, err, "unable to load saved game")
		return
	}
	h.createFromBoard(w, r, g.Board())
}

func (h *Handler) Highscores(w http.ResponseWriter, r *http.Request) {
	var dto HighscoresDTO
	if err := h.parseQuery(&dto, r.URL.Query()); err != nil {
		h.badRequest(w, err)
		return
	}

	highscores, err := h.repo.GetHighscores(r.Context(), repository.HighscoreFilter{
		Username: dto.Username,
		Size:     dto.Size,
		Limit:    dto.Limit,
	})
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		h.internalError(w, r, err, "failed to fetch highscores")
		return
	}
	if highscores == nil {
		highscores = []repository.Highscore{}
	}
	h.replyWithJSON(w, r, highscores)
}
