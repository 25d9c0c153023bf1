package handlers

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"sync"

	"github.com/gorilla/schema"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/slidingpuzzle-server/internal/config"
	"github.com/vancomm/slidingpuzzle-server/internal/game"
	"github.com/vancomm/slidingpuzzle-server/internal/middleware"
	"github.com/vancomm/slidingpuzzle-server/internal/puzzle"
	"github.com/vancomm/slidingpuzzle-server/internal/repository"
)

// Repository is the part of *repository.Queries the handlers rely on.
type Repository interface {
	CreatePlayer(ctx context.Context, params repository.CreatePlayerParams) (*repository.Player, error)
	FetchPlayer(ctx context.Context, username string) (*repository.Player, error)
	CreateGameSession(ctx context.Context, board *puzzle.Board, params repository.CreateGameSessionParams) (*repository.GameSession, error)
	FetchGameSession(ctx context.Context, gameSessionId int64) (*repository.GameSession, error)
	UpdateGameSession(ctx context.Context, gameSessionId int64, params repository.UpdateGameSessionParams) (*repository.GameSession, error)
	GetHighscores(ctx context.Context, filter repository.HighscoreFilter) ([]repository.Highscore, error)
	PlayerSlot(playerId int64) game.Slot
}

type Handler struct {
	log         *logrus.Logger
	repo        Repository
	cookies     *config.Cookies
	jwt         *config.JWT
	ws          *config.WebSocket
	decoder     *schema.Decoder
	defaultSize int

	rndMu sync.Mutex
	rnd   *rand.Rand
}

type Options struct {
	Log         *logrus.Logger
	Repo        Repository
	Cookies     *config.Cookies
	JWT         *config.JWT
	WebSocket   *config.WebSocket
	Rand        *rand.Rand
	DefaultSize int
}

func New(opts Options) *Handler {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	defaultSize := opts.DefaultSize
	if defaultSize == 0 {
		defaultSize = game.DefaultSize
	}

	return &Handler{
		log:         opts.Log,
		repo:        opts.Repo,
		cookies:     opts.Cookies,
		jwt:         opts.JWT,
		ws:          opts.WebSocket,
		decoder:     dec,
		defaultSize: defaultSize,
		rnd:         opts.Rand,
	}
}

// newBoard shuffles a fresh board. The shared generator is not safe for
// concurrent use on its own.
func (h *Handler) newBoard(size int) (*puzzle.Board, error) {
	h.rndMu.Lock()
	defer h.rndMu.Unlock()
	return puzzle.NewRandom(size, h.rnd)
}

func (h *Handler) logger(r *http.Request) *logrus.Entry {
	return h.log.WithField("request_id", middleware.RequestId(r.Context()))
}

func (h *Handler) badRequest(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(wrapError(err))
}

func (h *Handler) unauthorized(w http.ResponseWriter) {
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte("Unauthorized"))
}

func (h *Handler) forbidden(w http.ResponseWriter) {
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte("Forbidden"))
}

func (h *Handler) notFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("Not found"))
}

func (h *Handler) conflict(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusConflict)
	json.NewEncoder(w).Encode(wrapError(err))
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte("Internal error"))
	h.logger(r).WithError(err).Error(msg)
}

func (h *Handler) replyWithJSON(w http.ResponseWriter, r *http.Request, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.internalError(w, r, err, "failed to marshal json")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(payload); err != nil {
		h.logger(r).WithError(err).Error("failed to send data")
	}
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}
