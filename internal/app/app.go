package app

import (
	"hash/maphash"
	"math/rand/v2"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/slidingpuzzle-server/internal/config"
	"github.com/vancomm/slidingpuzzle-server/internal/handlers"
	"github.com/vancomm/slidingpuzzle-server/internal/middleware"
)

type App struct {
	log            *logrus.Logger
	cookies        *config.Cookies
	jwt            *config.JWT
	allowedOrigins []string
	handler        *handlers.Handler
}

type Options struct {
	Log            *logrus.Logger
	Repo           handlers.Repository
	Cookies        *config.Cookies
	JWT            *config.JWT
	AllowedOrigins []string
	// Rand seeds new boards. A randomly seeded generator is used when nil.
	Rand        *rand.Rand
	DefaultSize int
}

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func New(opts Options) *App {
	rnd := opts.Rand
	if rnd == nil {
		rnd = createRand()
	}
	return &App{
		log:            opts.Log,
		cookies:        opts.Cookies,
		jwt:            opts.JWT,
		allowedOrigins: opts.AllowedOrigins,
		handler: handlers.New(handlers.Options{
			Log:         opts.Log,
			Repo:        opts.Repo,
			Cookies:     opts.Cookies,
			JWT:         opts.JWT,
			WebSocket:   config.NewWebSocket(opts.AllowedOrigins),
			Rand:        rnd,
			DefaultSize: opts.DefaultSize,
		}),
	}
}

func (a *App) Router() *mux.Router {
	h := a.handler
	router := mux.NewRouter()

	router.Methods("POST").Path("/register").HandlerFunc(h.Register)
	router.Methods("POST").Path("/login").HandlerFunc(h.Login)
	router.Methods("POST").Path("/logout").HandlerFunc(h.Logout)
	router.Methods("GET").Path("/status").HandlerFunc(h.Status)

	gameRouter := router.PathPrefix("/game").Subrouter()
	gameRouter.Methods("GET").Path("/highscores").HandlerFunc(h.Highscores)
	gameRouter.Methods("POST").Path("/import").HandlerFunc(h.Import)
	gameRouter.Methods("POST").Path("/load").HandlerFunc(h.Load)
	gameRouter.Methods("GET").Path("/{id:[0-9]+}/connect").HandlerFunc(h.Connect)
	gameRouter.Methods("POST").Path("/{id:[0-9]+}/activate").HandlerFunc(h.Activate)
	gameRouter.Methods("POST").Path("/{id:[0-9]+}/restart").HandlerFunc(h.Restart)
	gameRouter.Methods("POST").Path("/{id:[0-9]+}/save").HandlerFunc(h.Save)
	gameRouter.Methods("GET").Path("/{id:[0-9]+}/export").HandlerFunc(h.Export)
	gameRouter.Methods("GET").Path("/{id:[0-9]+}").HandlerFunc(h.Fetch)
	router.Methods("POST").Path("/game").HandlerFunc(h.NewGame)

	return router
}

// Handler is the router wrapped in the request middleware chain.
func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.Router(),
		middleware.Auth(a.log, a.cookies, a.jwt),
		middleware.Cors(a.allowedOrigins),
		middleware.Logging(a.log),
	)
}
