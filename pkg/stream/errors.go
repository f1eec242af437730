package stream

import "errors"

// ErrPushAfterEnd is reported when a chunk is pushed after the end marker.
var ErrPushAfterEnd = errors.New("push after end of stream")

// ErrWriteAfterEnd is reported to a write callback when the stream has
// already been ended.
var ErrWriteAfterEnd = errors.New("write after end")

// ErrStreamDestroyed is reported when an operation reaches a destroyed
// stream, and to pending write callbacks when a stream is destroyed without
// an explicit error.
var ErrStreamDestroyed = errors.New("stream is destroyed")
