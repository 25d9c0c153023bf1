package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/vancomm/slidingpuzzle-server/internal/config"
	"github.com/vancomm/slidingpuzzle-server/internal/middleware"
	"github.com/vancomm/slidingpuzzle-server/internal/repository"
)

var (
	ErrBadAuthBody        = fmt.Errorf("request body must contain url-encoded username and password")
	ErrBadPasswordTooLong = fmt.Errorf("password too long")
	ErrUsernameTaken      = fmt.Errorf("username taken")
)

type PlayerInfo struct {
	PlayerId int64  `json:"player_id,string"`
	Username string `json:"username"`
}

type Status struct {
	LoggedIn bool        `json:"logged_in"`
	Player   *PlayerInfo `json:"player,omitempty"`
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, claims *config.PlayerClaims) {
	token, err := h.jwt.Sign(claims)
	if err != nil {
		h.internalError(w, r, err, "failed to sign player claims")
		return
	}
	err = h.cookies.Refresh(w, token, time.Now().Add(h.jwt.TokenLifetime))
	if err != nil {
		h.internalError(w, r, err, "failed to set auth cookies")
		return
	}
	h.replyWithJSON(w, r, Status{
		LoggedIn: true,
		Player:   &PlayerInfo{claims.PlayerId, claims.Username},
	})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.PlayerClaims(r.Context())
	if !ok {
		h.replyWithJSON(w, r, Status{LoggedIn: false})
		return
	}
	h.logger(r).Debug("refresh cookies")
	h.signIn(w, r, claims)
}

func parseCredentials(r *http.Request) (username, password string, err error) {
	if err = r.ParseForm(); err != nil {
		return "", "", ErrBadAuthBody
	}
	username = r.FormValue("username")
	password = r.FormValue("password")
	if username == "" || password == "" {
		return "", "", ErrBadAuthBody
	}
	return username, password, nil
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	username, password, err := parseCredentials(r)
	if err != nil {
		h.badRequest(w, err)
		return
	}

	passwordBytes := []byte(password)
	if len(passwordBytes) > 72 {
		h.badRequest(w, ErrBadPasswordTooLong)
		return
	}

	hash, err := bcrypt.GenerateFromPassword(passwordBytes, bcrypt.DefaultCost)
	if err != nil {
		h.internalError(w, r, err, "unable to hash password")
		return
	}

	player, err := h.repo.CreatePlayer(r.Context(), repository.CreatePlayerParams{
		Username:     username,
		PasswordHash: hash,
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		h.conflict(w, ErrUsernameTaken)
		return
	}
	if err != nil {
		h.internalError(w, r, err, "unable to insert player")
		return
	}

	h.logger(r).WithField("username", username).Info("registered player")
	h.signIn(w, r, config.NewPlayerClaims(player.PlayerId, player.Username))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	username, password, err := parseCredentials(r)
	if err != nil {
		h.badRequest(w, err)
		return
	}

	player, err := h.repo.FetchPlayer(r.Context(), username)
	if errors.Is(err, pgx.ErrNoRows) {
		h.unauthorized(w)
		return
	}
	if err != nil {
		h.internalError(w, r, err, "could not fetch player from db")
		return
	}

	err = bcrypt.CompareHashAndPassword(player.PasswordHash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		h.unauthorized(w)
		return
	}
	if err != nil {
		h.internalError(w, r, err, "bcrypt compare error")
		return
	}

	h.signIn(w, r, config.NewPlayerClaims(player.PlayerId, player.Username))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	h.replyWithJSON(w, r, Status{LoggedIn: false})
}
