package cell

import "fmt"

// Cell holds exactly one value of type T.
//
// The zero Cell is ready to use and holds the zero value of T. A Cell must
// not be copied after first use.
type Cell[T any] struct {
	value    T
	borrowed bool
}

// New returns a Cell holding value.
func New[T any](value T) *Cell[T] {
	return &Cell[T]{value: value}
}

// From is an alias of New for call sites that read better as a conversion.
func From[T any](value T) *Cell[T] {
	return New(value)
}

func (c *Cell[T]) borrow(op string) error {
	if c.borrowed {
		return borrowError(op)
	}
	c.borrowed = true
	return nil
}

func (c *Cell[T]) release() {
	c.borrowed = false
}

// With calls f with a copy of the value held by c and returns f's result.
// Writes to the copy do not reach the cell. Values with reference semantics
// (slices, maps, pointers) still share their backing storage with the
// slot, and f must not write through them; use WithMut for that.
//
// With panics with an error wrapping ErrBorrowed if c is already borrowed.
func With[T, R any](c *Cell[T], f func(T) R) R {
	r, err := TryWith(c, f)
	if err != nil {
		panic(err)
	}
	return r
}

// TryWith is like With but returns ErrBorrowed instead of panicking.
func TryWith[T, R any](c *Cell[T], f func(T) R) (R, error) {
	if err := c.borrow("With"); err != nil {
		var zero R
		return zero, err
	}
	defer c.release()
	return f(c.value), nil
}

// WithMut calls f with a pointer to the value held by c and returns f's
// result. Writes through the pointer are kept. The pointer must not be
// retained after f returns.
//
// WithMut panics with an error wrapping ErrBorrowed if c is already
// borrowed.
func WithMut[T, R any](c *Cell[T], f func(*T) R) R {
	r, err := TryWithMut(c, f)
	if err != nil {
		panic(err)
	}
	return r
}

// TryWithMut is like WithMut but returns ErrBorrowed instead of panicking.
func TryWithMut[T, R any](c *Cell[T], f func(*T) R) (R, error) {
	if err := c.borrow("WithMut"); err != nil {
		var zero R
		return zero, err
	}
	defer c.release()
	return f(&c.value), nil
}

// Inspect calls f with a copy of the value. It is With without a result.
func (c *Cell[T]) Inspect(f func(T)) {
	With(c, func(v T) struct{} {
		f(v)
		return struct{}{}
	})
}

// Update calls f with a pointer to the value. It is WithMut without a
// result.
func (c *Cell[T]) Update(f func(*T)) {
	WithMut(c, func(p *T) struct{} {
		f(p)
		return struct{}{}
	})
}

// Borrowed reports whether a callback currently holds c.
func (c *Cell[T]) Borrowed() bool {
	return c.borrowed
}

// String formats the held value as Cell{value}. While a callback holds the
// cell it prints Cell{<borrowed>} rather than reading the slot.
func (c *Cell[T]) String() string {
	if c.borrowed {
		return "Cell{<borrowed>}"
	}
	return fmt.Sprintf("Cell{%v}", c.value)
}
