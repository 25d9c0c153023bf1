package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv reads a .env file from the working directory if one exists.
// Variables already present in the environment win.
func LoadDotEnv() (bool, error) {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func Addr() string {
	addr, ok := os.LookupEnv("APP_ADDR")
	if !ok {
		return ":8080"
	}
	return addr
}

func Development() bool {
	development, ok := os.LookupEnv("DEVELOPMENT")
	if !ok {
		return false
	}
	return development != "0"
}

// DefaultBoardSize is the size used for new games that do not ask for one.
func DefaultBoardSize() int {
	size, err := strconv.Atoi(os.Getenv("PUZZLE_DEFAULT_SIZE"))
	if err != nil || size == 0 {
		return 4
	}
	return size
}
