package stream

// Queue is an ordered FIFO of chunks with a distinguished end-of-stream
// marker. Once the marker is enqueued no further chunks are accepted; the
// marker itself is delivered by Dequeue exactly once, after all buffered
// data. Queue is not safe for concurrent use; callers synchronize.
type Queue[T any] struct {
	items        []T
	ended        bool
	endDelivered bool
}

// Enqueue appends a chunk. It returns ErrPushAfterEnd if the end marker was
// already enqueued.
func (q *Queue[T]) Enqueue(c Chunk[T]) error {
	if q.ended {
		return ErrPushAfterEnd
	}
	if c.IsEnd() {
		q.ended = true
		return nil
	}
	q.items = append(q.items, c.Value())
	return nil
}

// Dequeue removes and returns the next chunk. The second return value is
// false when nothing is buffered (and the end marker, if any, was already
// delivered).
func (q *Queue[T]) Dequeue() (Chunk[T], bool) {
	if len(q.items) > 0 {
		v := q.items[0]
		var zero T
		q.items[0] = zero
		q.items = q.items[1:]
		return Data(v), true
	}
	if q.ended && !q.endDelivered {
		q.endDelivered = true
		return End[T](), true
	}
	return Chunk[T]{}, false
}

// Len returns the number of buffered data chunks, excluding the end marker.
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// Ended reports whether the end marker has been enqueued.
func (q *Queue[T]) Ended() bool {
	return q.ended
}
