package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/slidingpuzzle-server/internal/app"
	"github.com/vancomm/slidingpuzzle-server/internal/config"
	"github.com/vancomm/slidingpuzzle-server/internal/database"
	"github.com/vancomm/slidingpuzzle-server/internal/game"
	"github.com/vancomm/slidingpuzzle-server/internal/puzzle"
	"github.com/vancomm/slidingpuzzle-server/internal/repository"
)

var log = logrus.New()

func setupLogging() {
	cfg, err := config.NewLogging()
	if err != nil {
		log.Fatal("unable to read logging config: ", err)
	}
	if err := cfg.Apply(log); err != nil {
		log.Fatal(err)
	}
	game.Log = log
	puzzle.Log = log
}

func main() {
	mainCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	loaded, err := config.LoadDotEnv()
	if err != nil {
		log.Fatal("unable to load .env: ", err)
	}

	setupLogging()
	if loaded {
		log.Debug("loaded environment from .env")
	}

	cookies, err := config.NewCookies()
	if err != nil {
		log.Fatal("failed to read cookies config: ", err)
	}

	jwt, err := config.NewJWT()
	if err != nil {
		log.Fatal("failed to read jwt config: ", err)
	}

	db, migrator, err := database.ConnectAndMigrate(mainCtx)
	if err != nil {
		log.Fatal("failed to connect and migrate db: ", err)
	}
	defer db.Close()
	defer migrator.Close()
	if version, dirty, err := migrator.Version(); err == nil {
		log.WithFields(logrus.Fields{
			"version": version,
			"dirty":   dirty,
		}).Info("database schema is up to date")
	}

	a := app.New(app.Options{
		Log:            log,
		Repo:           repository.New(db),
		Cookies:        cookies,
		JWT:            jwt,
		AllowedOrigins: config.AllowedOrigins(),
		DefaultSize:    config.DefaultBoardSize(),
	})

	addr := config.Addr()
	server := &http.Server{
		Addr:    addr,
		Handler: a.Handler(),
		// no write timeout: websocket games outlive any fixed deadline
		ReadHeaderTimeout: time.Second * 15,
		IdleTimeout:       time.Second * 60,
		BaseContext: func(l net.Listener) context.Context {
			return mainCtx
		},
	}

	log.Infof("sliding puzzle server listening at %s", addr)

	g, gCtx := errgroup.WithContext(mainCtx)
	g.Go(func() error {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
		defer cancel()
		return server.Shutdown(ctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("exit reason: ", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
