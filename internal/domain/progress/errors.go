package progress

import "errors"

var (
	ErrNotFound     = errors.New("node not found")
	ErrInvalidLevel = errors.New("invalid progress level")
)
