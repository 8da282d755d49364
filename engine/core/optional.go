package core

// Optional holds a value that may not have been found yet. The zero value is
// empty, so a valid zero (e.g. queue family 0) is never mistaken for "unset".
type Optional[T any] struct {
	value T
	set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

func (o Optional[T]) HasValue() bool {
	return o.set
}

// Value returns the held value and whether one is set.
func (o Optional[T]) Value() (T, bool) {
	return o.value, o.set
}

// MustValue panics when empty. Only call it after HasValue.
func (o Optional[T]) MustValue() T {
	if !o.set {
		panic("core: empty Optional")
	}
	return o.value
}
