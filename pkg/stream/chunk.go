package stream

// Chunk is one unit of stream payload, or the terminal end-of-stream marker.
// The marker is a distinct variant, so any value of T is a legitimate payload.
type Chunk[T any] struct {
	value T
	end   bool
}

// Data wraps a payload value in a Chunk.
func Data[T any](v T) Chunk[T] {
	return Chunk[T]{value: v}
}

// End returns the end-of-stream marker.
func End[T any]() Chunk[T] {
	return Chunk[T]{end: true}
}

// Value returns the payload. It is the zero value for the end marker.
func (c Chunk[T]) Value() T {
	return c.value
}

// IsEnd reports whether the chunk is the end-of-stream marker.
func (c Chunk[T]) IsEnd() bool {
	return c.end
}
