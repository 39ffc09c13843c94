package mark

import (
	"errors"
)

var (
	ErrInvalidEntry = errors.New("invalid mark entry")
	ErrEmptyBatch   = errors.New("empty mark batch")
)
