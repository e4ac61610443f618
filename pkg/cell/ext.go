package cell

import (
	"maps"
	"slices"
)

// Cloner is implemented by types that can produce an independent duplicate
// of themselves.
type Cloner[T any] interface {
	Clone() T
}

// Get returns the value held by c. The result is a Go assignment of the
// slot, which is a full duplicate only for plain values; use Clone,
// CloneSlice or CloneMap for values that own backing storage.
func (c *Cell[T]) Get() T {
	return With(c, func(v T) T { return v })
}

// Set replaces the value held by c, discarding the previous one.
func (c *Cell[T]) Set(value T) {
	c.Update(func(p *T) { *p = value })
}

// Replace stores value in c and returns the previous value.
func (c *Cell[T]) Replace(value T) T {
	return WithMut(c, func(p *T) T {
		old := *p
		*p = value
		return old
	})
}

// Take returns the value held by c and leaves the zero value in its place.
func (c *Cell[T]) Take() T {
	var zero T
	return c.Replace(zero)
}

// Swap exchanges the values of c and other. Swapping a cell with itself
// does nothing.
func (c *Cell[T]) Swap(other *Cell[T]) {
	if c == other {
		return
	}
	c.Update(func(a *T) {
		other.Update(func(b *T) {
			*a, *b = *b, *a
		})
	})
}

// Clone returns a new Cell holding a copy of c's value. The copy is a Go
// assignment, as with Get; the two cells are independent afterwards but
// share any backing storage the value refers to.
func (c *Cell[T]) Clone() *Cell[T] {
	return New(c.Get())
}

// Clone returns a duplicate of the value held by c made with its Clone
// method. The cell's value is left unchanged.
func Clone[T Cloner[T]](c *Cell[T]) T {
	return With(c, func(v T) T { return v.Clone() })
}

// CloneSlice returns a shallow copy of the slice held by c. A nil slice
// clones to nil.
func CloneSlice[S ~[]E, E any](c *Cell[S]) S {
	return With(c, func(s S) S { return slices.Clone(s) })
}

// CloneMap returns a shallow copy of the map held by c. A nil map clones to
// nil.
func CloneMap[M ~map[K]V, K comparable, V any](c *Cell[M]) M {
	return With(c, func(m M) M { return maps.Clone(m) })
}
