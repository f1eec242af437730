package stream

import (
	"context"
	"sync"

	"github.com/vnykmshr/gostream/pkg/events"
)

// ReadableConfig holds configuration and hooks for a Readable.
type ReadableConfig[T any] struct {
	// HighWaterMark is the buffer size above which Push reports
	// backpressure and the read hook stops being scheduled.
	// Default: 16.
	HighWaterMark int

	// OnRead is invoked when the stream wants more data. The hook must push
	// one or more chunks and call done; the next invocation is held until
	// both have happened. A non-nil error destroys the stream.
	OnRead func(r *Readable[T], done func(error))

	// OnDestroy is invoked exactly once during teardown, with the error the
	// stream was destroyed with (nil on normal completion).
	OnDestroy func(err error, done func(error))
}

// DefaultReadableConfig returns a configuration with default settings.
func DefaultReadableConfig[T any]() ReadableConfig[T] {
	return ReadableConfig[T]{HighWaterMark: 16}
}

// Readable is a pull-mode stream: producers Push chunks into its buffer and
// consumers take them out, either explicitly (Read, Next) or automatically in
// flowing mode (data events). A configured read hook is scheduled whenever
// the buffer runs low, one invocation at a time.
//
// All methods are safe for concurrent use. Hooks run one at a time per
// stream, each as its own goroutine.
type Readable[T any] struct {
	mu  sync.Mutex
	cfg ReadableConfig[T]
	hub *events.Hub

	queue Queue[T]

	flowing  bool
	draining bool // drain goroutine scheduled

	reading    bool // read hook in flight
	hookPushed bool // hook pushed at least one chunk this cycle
	hookDone   bool // hook called its completion callback this cycle

	ended      bool // end marker consumed
	endEmitted bool
	destroyed  bool
	closed     bool // close event emitted
	err        error

	waiters []chan struct{} // blocked Next calls
}

// NewReadable creates a Readable with default configuration and no hooks.
func NewReadable[T any]() *Readable[T] {
	return NewReadableWithConfig(DefaultReadableConfig[T]())
}

// NewReadableWithConfig creates a Readable with the given configuration.
func NewReadableWithConfig[T any](cfg ReadableConfig[T]) *Readable[T] {
	if cfg.HighWaterMark <= 0 {
		cfg.HighWaterMark = DefaultReadableConfig[T]().HighWaterMark
	}
	return &Readable[T]{
		cfg: cfg,
		hub: events.NewHub(),
	}
}

// Events returns the stream's event hub.
func (r *Readable[T]) Events() *events.Hub {
	return r.hub
}

// OnData subscribes to payload chunks delivered in flowing mode.
func (r *Readable[T]) OnData(fn func(T)) events.Subscription {
	return r.hub.Subscribe(EventData, func(p any) { fn(p.(T)) })
}

// OnReadable subscribes to buffer empty-to-non-empty transitions.
func (r *Readable[T]) OnReadable(fn func()) events.Subscription {
	return r.hub.Subscribe(EventReadable, func(any) { fn() })
}

// OnEnd subscribes to consumption of the end marker.
func (r *Readable[T]) OnEnd(fn func()) events.Subscription {
	return r.hub.Subscribe(EventEnd, func(any) { fn() })
}

// OnClose subscribes to stream teardown.
func (r *Readable[T]) OnClose(fn func()) events.Subscription {
	return r.hub.Subscribe(EventClose, func(any) { fn() })
}

// OnError subscribes to stream errors.
func (r *Readable[T]) OnError(fn func(error)) events.Subscription {
	return r.hub.Subscribe(EventError, func(p any) { fn(p.(error)) })
}

// Push appends a chunk (or the end marker) to the buffer. It returns false
// when the producer should stop pushing: the buffer is at or above the
// high-water mark, the end marker has been enqueued, or the stream is
// destroyed. Pushing after the end marker publishes ErrPushAfterEnd on the
// error event.
func (r *Readable[T]) Push(c Chunk[T]) bool {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return false
	}

	wasEmpty := r.queue.Len() == 0 && !r.queue.Ended()
	if err := r.queue.Enqueue(c); err != nil {
		r.mu.Unlock()
		r.hub.Publish(EventError, err)
		return false
	}

	if r.reading {
		r.hookPushed = true
		r.finishCycleLocked()
	}
	r.wakeWaitersLocked()

	emitReadable := !r.flowing && wasEmpty && !c.IsEnd()
	startDrain := r.flowing && !r.draining
	if startDrain {
		r.draining = true
	}
	below := !r.queue.Ended() && r.queue.Len() < r.cfg.HighWaterMark
	r.mu.Unlock()

	if emitReadable {
		r.hub.Publish(EventReadable, nil)
	}
	if startDrain {
		go r.drain()
	}
	return below
}

// Read dequeues one buffered chunk. The second return value is false when
// nothing is buffered. Consuming the end marker fires the end event and
// tears the stream down; the marker itself is returned to the caller.
func (r *Readable[T]) Read() (Chunk[T], bool) {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return Chunk[T]{}, false
	}
	c, ok := r.queue.Dequeue()
	if ok && c.IsEnd() {
		r.mu.Unlock()
		r.consumeEnd()
		return c, true
	}
	r.maybeReadLocked()
	r.mu.Unlock()
	return c, ok
}

// Next blocks until a chunk is available and returns it. It returns ok=false
// with a nil error once the stream ends, and ok=false with the stored error
// if the stream is destroyed with one. The sequence is finite and
// non-restartable. This is the iteration protocol in the Source style:
// loop until ok is false.
func (r *Readable[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	for {
		r.mu.Lock()
		if r.destroyed {
			err := r.err
			r.mu.Unlock()
			return zero, false, err
		}
		c, ok := r.queue.Dequeue()
		if ok {
			if c.IsEnd() {
				r.mu.Unlock()
				r.consumeEnd()
				return zero, false, nil
			}
			r.maybeReadLocked()
			r.mu.Unlock()
			return c.Value(), true, nil
		}
		if r.ended {
			r.mu.Unlock()
			return zero, false, nil
		}
		w := make(chan struct{})
		r.waiters = append(r.waiters, w)
		r.maybeReadLocked()
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return zero, false, ctx.Err()
		case <-w:
		}
	}
}

// Collect drains the stream via Next and returns all chunks in order.
func (r *Readable[T]) Collect(ctx context.Context) ([]T, error) {
	var result []T
	for {
		v, ok, err := r.Next(ctx)
		if err != nil {
			return result, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, v)
	}
}

// Resume switches the stream into flowing mode: buffered chunks are drained
// automatically and delivered as data events, and the read hook keeps being
// scheduled until the stream ends.
func (r *Readable[T]) Resume() {
	r.mu.Lock()
	if r.destroyed || r.flowing {
		r.mu.Unlock()
		return
	}
	r.flowing = true
	start := !r.draining
	if start {
		r.draining = true
	}
	r.mu.Unlock()
	if start {
		go r.drain()
	}
}

// Pause switches the stream out of flowing mode. Chunks accumulate in the
// buffer until Resume, Read, or Next.
func (r *Readable[T]) Pause() {
	r.mu.Lock()
	r.flowing = false
	r.mu.Unlock()
}

// Flowing reports whether the stream is in flowing mode.
func (r *Readable[T]) Flowing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flowing
}

// Len returns the number of buffered data chunks.
func (r *Readable[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.Len()
}

// Destroyed reports whether the stream has been destroyed.
func (r *Readable[T]) Destroyed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed
}

// Err returns the error the stream was destroyed with, if any.
func (r *Readable[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Destroy tears the stream down: no further data, readable, or drain events
// fire, blocked Next calls are released with err, the destroy hook runs
// exactly once, and exactly one close event follows. Destroy is idempotent.
func (r *Readable[T]) Destroy(err error) {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.destroyed = true
	r.err = err
	r.flowing = false
	r.wakeWaitersLocked()
	hook := r.cfg.OnDestroy
	r.mu.Unlock()

	if hook != nil {
		var once sync.Once
		go hook(err, func(hookErr error) {
			once.Do(func() { r.finishDestroy(err, hookErr) })
		})
		return
	}
	r.finishDestroy(err, nil)
}

func (r *Readable[T]) finishDestroy(err, hookErr error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	if err != nil {
		r.hub.Publish(EventError, err)
	} else if hookErr != nil {
		r.hub.Publish(EventError, hookErr)
	}
	r.hub.Publish(EventClose, nil)
}

// consumeEnd runs once, when the end marker is dequeued: the end event fires,
// then the stream destroys itself so close follows.
func (r *Readable[T]) consumeEnd() {
	r.mu.Lock()
	if r.endEmitted || r.destroyed {
		r.mu.Unlock()
		return
	}
	r.ended = true
	r.endEmitted = true
	r.wakeWaitersLocked()
	r.mu.Unlock()

	r.hub.Publish(EventEnd, nil)
	r.Destroy(nil)
}

// drain delivers buffered chunks as data events while the stream is flowing.
func (r *Readable[T]) drain() {
	for {
		r.mu.Lock()
		if !r.flowing || r.destroyed {
			r.draining = false
			r.mu.Unlock()
			return
		}
		c, ok := r.queue.Dequeue()
		if !ok {
			r.draining = false
			r.maybeReadLocked()
			r.mu.Unlock()
			return
		}
		if c.IsEnd() {
			r.draining = false
			r.mu.Unlock()
			r.consumeEnd()
			return
		}
		r.maybeReadLocked()
		r.mu.Unlock()

		r.hub.Publish(EventData, c.Value())
	}
}

// maybeReadLocked schedules one read-hook invocation if the stream wants
// more data and no invocation is in flight. Caller holds r.mu.
func (r *Readable[T]) maybeReadLocked() {
	if r.cfg.OnRead == nil || r.reading || r.destroyed || r.ended || r.queue.Ended() {
		return
	}
	if r.queue.Len() >= r.cfg.HighWaterMark {
		return
	}
	r.reading = true
	r.hookPushed = false
	r.hookDone = false
	var once sync.Once
	done := func(err error) {
		once.Do(func() { r.readHookDone(err) })
	}
	go r.cfg.OnRead(r, done)
}

// finishCycleLocked retires the current read-hook cycle once the hook has
// both pushed and called its callback. Either alone keeps the cycle open.
// Caller holds r.mu.
func (r *Readable[T]) finishCycleLocked() {
	if r.reading && r.hookPushed && r.hookDone {
		r.reading = false
		if r.flowing || len(r.waiters) > 0 {
			r.maybeReadLocked()
		}
	}
}

func (r *Readable[T]) readHookDone(err error) {
	if err != nil {
		// A read-hook error is fatal: there is no per-read error channel.
		r.Destroy(err)
		return
	}
	r.mu.Lock()
	r.hookDone = true
	r.finishCycleLocked()
	r.mu.Unlock()
}

func (r *Readable[T]) wakeWaitersLocked() {
	for _, w := range r.waiters {
		close(w)
	}
	r.waiters = nil
}
