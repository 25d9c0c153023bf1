package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/vancomm/slidingpuzzle-server/internal/puzzle"
	"github.com/vancomm/slidingpuzzle-server/internal/repository"
)

type wsReply struct {
	*GameSessionDTO
	Error string `json:"error,omitempty"`
}

type liveGame struct {
	session   *repository.GameSession
	board     *puzzle.Board
	mayChange bool
	result    puzzle.MoveResult
}

func (h *Handler) reload(ctx context.Context, g *liveGame) error {
	session, err := h.repo.FetchGameSession(ctx, g.session.GameSessionId)
	if err != nil {
		return err
	}
	board, err := session.Board()
	if err != nil {
		return err
	}
	g.session, g.board = session, board
	return nil
}

func (h *Handler) execute(ctx context.Context, g *liveGame, c command) error {
	switch c.name {
	case "g":
		return nil
	case "a":
		if !g.mayChange {
			return ErrForbidden
		}
		session, board, result, err := h.activate(ctx, g.session, g.board, c.number)
		if errors.Is(err, ErrGameConflict) {
			if err := h.reload(ctx, g); err != nil {
				return err
			}
			return ErrGameConflict
		}
		if err != nil {
			return err
		}
		g.session, g.board, g.result = session, board, result
		return nil
	case "r":
		if !g.mayChange {
			return ErrForbidden
		}
		session, board, err := h.restart(ctx, g.session)
		if err != nil {
			return err
		}
		g.session, g.board, g.result = session, board, puzzle.Rejected
		return nil
	}
	return errors.New("invalid command")
}

func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	session, board, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	g := &liveGame{
		session:   session,
		board:     board,
		mayChange: owns(r.Context(), session),
	}

	log := h.logger(r).WithField("game_session_id", session.GameSessionId)

	c, err := h.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("upgrade failed")
		return
	}
	defer c.Close()

	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("read failed")
			}
			return
		}
		if mt != websocket.TextMessage {
			return
		}
		log.Debug("> ", string(message))

		var reply wsReply
		commands, err := parseCommands(string(message))
		if err == nil {
			for _, cmd := range commands {
				if err = h.execute(r.Context(), g, cmd); err != nil {
					break
				}
			}
		}
		if err != nil {
			if !errors.Is(err, ErrGameSolved) && !errors.Is(err, ErrGameConflict) {
				log.WithError(err).Debug("command failed")
			}
			reply.Error = err.Error()
		}

		reply.GameSessionDTO = NewGameSessionDTO(g.session, g.board)
		if g.result.Accepted() {
			reply.Result = g.result.String()
		}
		g.result = puzzle.Rejected

		if err := c.WriteJSON(reply); err != nil {
			log.WithError(err).Warn("write failed")
			return
		}
	}
}
