package handlers

import (
	"fmt"
	"strconv"

	"github.com/vancomm/slidingpuzzle-server/internal/puzzle"
	"github.com/vancomm/slidingpuzzle-server/internal/repository"
)

type NewGameDTO struct {
	Size int `schema:"size"`
}

type ActivateDTO struct {
	Number int `schema:"number,required"`
}

type HighscoresDTO struct {
	Size     *int    `schema:"size"`
	Username *string `schema:"username"`
	Limit    int     `schema:"limit"`
}

func (h *Handler) parseQuery(dst any, src map[string][]string) error {
	if err := h.decoder.Decode(dst, src); err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	return nil
}

type GameSessionDTO struct {
	GameSessionId string        `json:"game_session_id"`
	Size          int           `json:"size"`
	HiddenNumber  int           `json:"hidden_number"`
	Tiles         []puzzle.Tile `json:"tiles"`
	Solved        bool          `json:"solved"`
	MoveCount     int           `json:"move_count"`
	Ranked        bool          `json:"ranked"`
	StartedAt     int64         `json:"started_at"`
	EndedAt       *int64        `json:"ended_at,omitempty"`
	Result        string        `json:"result,omitempty"`
}

func NewGameSessionDTO(session *repository.GameSession, board *puzzle.Board) *GameSessionDTO {
	var endedAt *int64
	if session.EndedAt.Valid {
		e := session.EndedAt.Time.UnixMilli()
		endedAt = &e
	}
	return &GameSessionDTO{
		GameSessionId: strconv.FormatInt(session.GameSessionId, 10),
		Size:          board.Size(),
		HiddenNumber:  board.EmptyTileNumber(),
		Tiles:         board.Tiles(),
		Solved:        session.Solved,
		MoveCount:     session.MoveCount,
		Ranked:        session.Ranked,
		StartedAt:     session.StartedAt.Time.UnixMilli(),
		EndedAt:       endedAt,
	}
}
