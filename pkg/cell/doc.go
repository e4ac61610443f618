// Package cell provides Cell, a container holding a single value that is
// inspected and mutated through short-lived callbacks.
//
// A Cell never hands out a pointer that outlives the call that produced it.
// With passes the callback a copy of the value; WithMut passes a pointer
// into the slot that is valid only until the callback returns. A borrow
// flag guards each callback, and any access to the same cell from inside
// one of its own callbacks panics with an error wrapping ErrBorrowed. The
// Try forms return that error instead.
//
// If a callback panics, the borrow is released and the panic propagates.
// The cell keeps whatever value the slot held at that moment, including
// writes WithMut's callback made before panicking. It is never left empty
// or poisoned.
//
// Cells are not safe for concurrent use. The borrow flag is not a lock.
//
// The package depends only on the standard library.
package cell
