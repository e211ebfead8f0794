package draft

import (
	"errors"
)

var (
	// ErrNotFound возвращается и для несуществующего черновика, и для чужого:
	// caller не должен отличать запрещенный черновик от отсутствующего.
	ErrNotFound    = errors.New("draft not found")
	ErrInvalidKind = errors.New("invalid draft kind")
	ErrInvalidData = errors.New("invalid draft data")
)
