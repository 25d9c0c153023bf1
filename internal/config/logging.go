package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

type Logging struct {
	Level      logrus.Level
	JSON       bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func atoiDefault(key string, def int) (int, error) {
	s, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an int: %w", key, err)
	}
	return v, nil
}

func NewLogging() (*Logging, error) {
	cfg := &Logging{
		Level: logrus.InfoLevel,
		JSON:  !Development(),
		File:  os.Getenv("LOG_FILE"),
	}
	if Development() {
		cfg.Level = logrus.DebugLevel
	}
	if levelStr, ok := os.LookupEnv("LOG_LEVEL"); ok {
		level, err := logrus.ParseLevel(levelStr)
		if err != nil {
			return nil, fmt.Errorf("bad LOG_LEVEL: %w", err)
		}
		cfg.Level = level
	}

	var err error
	if cfg.MaxSizeMB, err = atoiDefault("LOG_FILE_MAX_SIZE_MB", 50); err != nil {
		return nil, err
	}
	if cfg.MaxBackups, err = atoiDefault("LOG_FILE_MAX_BACKUPS", 3); err != nil {
		return nil, err
	}
	if cfg.MaxAgeDays, err = atoiDefault("LOG_FILE_MAX_AGE_DAYS", 28); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply configures log according to cfg. When a log file is set every entry
// is also written, as JSON, to a size-rotated file.
func (cfg *Logging) Apply(log *logrus.Logger) error {
	log.SetLevel(cfg.Level)
	if cfg.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	}

	if cfg.File == "" {
		return nil
	}
	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Level:      cfg.Level,
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		return fmt.Errorf("unable to create log file hook: %w", err)
	}
	log.AddHook(hook)
	return nil
}
