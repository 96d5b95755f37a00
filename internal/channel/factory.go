//go:build !debug

package channel

// New returns a buffered channel. Build with -tags debug to get an unbuffered
// one, which surfaces slow consumers immediately.
func New[T any](size int) Channel[T] {
	return NewBuffered[T](size)
}
