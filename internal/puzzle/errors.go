package puzzle

import "errors"

var (
	ErrInvalidConfiguration = errors.New("invalid board configuration")
	ErrCorruptSaveData      = errors.New("corrupt save data")
	ErrIncompleteSaveData   = errors.New("incomplete save data")
)
