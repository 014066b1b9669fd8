package exam

import (
	"errors"

	"github.com/ieltsprep/ieltsadmin/internal/validation"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrOutOfRange  = errors.New("index out of range")
	ErrUnknownType = errors.New("unknown question group type")
	ErrWrongType   = errors.New("operation does not apply to this group type")
)

// ValidationError blocks a save and lists every problem found.
type ValidationError = validation.Error
