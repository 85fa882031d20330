package container

// StaticArray is a fixed-capacity sequence with no backing allocator:
// Push asserts (panics) on overflow rather than growing, per spec.md
// §4.D. Go has no compile-time array-length type parameter, so the
// capacity N from spec.md's StaticArray<T, N> is supplied at
// construction instead of encoded in the type; this is the same
// no-allocator, fixed-capacity contract NewArrayView gives Array, kept
// as a distinct named constructor so call sites read the same way the
// original's StaticArray<T, N> declarations do.
type StaticArray[T any] struct {
	*Array[T]
}

// NewStaticArray creates a StaticArray with fixed capacity n.
func NewStaticArray[T any](n int) StaticArray[T] {
	return StaticArray[T]{Array: NewArrayView(make([]T, n))}
}
