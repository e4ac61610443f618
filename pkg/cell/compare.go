package cell

import "cmp"

// Equal reports whether a and b hold equal values.
func Equal[T comparable](a, b *Cell[T]) bool {
	return a.Get() == b.Get()
}

// Compare orders a and b by their held values, returning -1, 0 or +1 as
// cmp.Compare does.
func Compare[T cmp.Ordered](a, b *Cell[T]) int {
	if a == b {
		return 0
	}
	return cmp.Compare(a.Get(), b.Get())
}
