package simplify

import (
	"errors"
	"fmt"
)

// ErrInvalidLevel is matched by every level validation failure.
var ErrInvalidLevel = errors.New("invalid level")

// InvalidLevelError reports a level outside the configured level set.
// Min and Max come from the level table in use, not from constants.
type InvalidLevelError struct {
	Level int
	Min   int
	Max   int
}

func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("invalid level %d: choose between %d and %d", e.Level, e.Min, e.Max)
}

// Is makes errors.Is(err, ErrInvalidLevel) hold.
func (e *InvalidLevelError) Is(target error) bool {
	return target == ErrInvalidLevel
}
