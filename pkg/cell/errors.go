package cell

import (
	"errors"
	"fmt"
)

// ErrBorrowed is reported when a cell is accessed while one of its own
// callbacks is still running.
var ErrBorrowed = errors.New("cell is already borrowed")

// borrowError wraps ErrBorrowed with the operation that hit it.
func borrowError(op string) error {
	return fmt.Errorf("cell: %s: %w", op, ErrBorrowed)
}
