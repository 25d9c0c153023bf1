package main

import (
	"github.com/sirupsen/logrus"

	"github.com/vancomm/slidingpuzzle-server/internal/config"
	"github.com/vancomm/slidingpuzzle-server/internal/database"
)

func main() {
	log := logrus.New()

	if _, err := config.LoadDotEnv(); err != nil {
		log.Fatal("unable to load .env: ", err)
	}
	cfg, err := config.NewLogging()
	if err != nil {
		log.Fatal("unable to read logging config: ", err)
	}
	if err := cfg.Apply(log); err != nil {
		log.Fatal(err)
	}

	migrator, err := database.Migrate()
	if err != nil {
		log.Fatal("failed to migrate db: ", err)
	}
	defer migrator.Close()

	version, dirty, err := migrator.Version()
	if err != nil {
		log.Fatal("failed to check migration version: ", err)
	}
	log.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("migration successful")
}
