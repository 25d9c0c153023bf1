package game

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vancomm/slidingpuzzle-server/internal/savefile"
)

var ErrNoSave = errors.New("no saved game")

// Slot is a single named place a game can be saved to and loaded from.
type Slot interface {
	// ReadLines returns the stored lines or [ErrNoSave] when nothing was saved.
	ReadLines(ctx context.Context) ([]string, error)
	WriteLines(ctx context.Context, lines []string) error
}

// Clearer is implemented by slots that can drop their save.
type Clearer interface {
	// Clear removes the save. Clearing an empty slot is not an error.
	Clear(ctx context.Context) error
}

// FileSlot keeps the save in one file inside an application-private directory.
type FileSlot struct {
	dir  string
	name string
}

func NewFileSlot(dir string) *FileSlot {
	return &FileSlot{dir: dir, name: savefile.FileName}
}

// DefaultSaveDir is the per-user config directory of the application.
func DefaultSaveDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "slidingpuzzle"), nil
}

func (s *FileSlot) Path() string {
	return filepath.Join(s.dir, s.name)
}

func (s *FileSlot) ReadLines(ctx context.Context) ([]string, error) {
	f, err := os.Open(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open save file: %w", err)
	}
	defer f.Close()
	return savefile.ReadLines(f)
}

// WriteLines replaces the save file through a temporary file so a failed
// write never clobbers the previous save.
func (s *FileSlot) WriteLines(ctx context.Context, lines []string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("unable to create save dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, s.name+".*")
	if err != nil {
		return fmt.Errorf("unable to create temp save file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(savefile.Join(lines)); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to write save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to write save file: %w", err)
	}
	return os.Rename(tmp.Name(), s.Path())
}

func (s *FileSlot) Clear(ctx context.Context) error {
	err := os.Remove(s.Path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("unable to remove save file: %w", err)
	}
	return nil
}
