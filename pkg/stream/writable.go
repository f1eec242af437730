package stream

import (
	"sync"

	"github.com/vnykmshr/gostream/pkg/events"
)

// WritableConfig holds configuration and hooks for a Writable.
type WritableConfig[T any] struct {
	// HighWaterMark is the queue size at which Write reports backpressure.
	// Default: 16.
	HighWaterMark int

	// OnOpen is invoked at most once, before the first OnWrite. A non-nil
	// error destroys the stream.
	OnOpen func(done func(error))

	// OnWrite performs the side effect for one chunk and calls done. The
	// next queued chunk is not handed over until done fires.
	OnWrite func(chunk T, done func(error))

	// OnFinal is invoked exactly once, after the queue drains following End.
	OnFinal func(done func(error))

	// OnDestroy is invoked exactly once during teardown, with the error the
	// stream was destroyed with (nil on normal completion).
	OnDestroy func(err error, done func(error))

	// DestroyOnWriteError makes a write-hook error destroy the stream in
	// addition to failing that write's callback. When false (the default)
	// the error stays local to the callback and destruction is left to the
	// caller or pipe coordinator.
	DestroyOnWriteError bool
}

// DefaultWritableConfig returns a configuration with default settings.
func DefaultWritableConfig[T any]() WritableConfig[T] {
	return WritableConfig[T]{HighWaterMark: 16}
}

type writeRequest[T any] struct {
	chunk T
	cb    func(error)
}

// Writable is a push-mode sink: Write queues chunks, a single-writer
// admission loop hands them to the write hook strictly in order, End drains
// the queue and runs the final hook, Destroy short-circuits everything.
//
// All methods are safe for concurrent use. Hooks run one at a time per
// stream, each as its own goroutine.
type Writable[T any] struct {
	mu  sync.Mutex
	cfg WritableConfig[T]
	hub *events.Hub

	queue []writeRequest[T]

	opening  bool // open hook in flight
	opened   bool
	inflight bool // write hook in flight

	ending      bool
	finalCalled bool
	finished    bool
	endCbs      []func(error)

	destroyed bool
	closed    bool // close event emitted
	err       error

	needDrain bool // Write reported backpressure since the last empty queue
}

// NewWritable creates a Writable with default configuration and the given
// write hook.
func NewWritable[T any](onWrite func(chunk T, done func(error))) *Writable[T] {
	cfg := DefaultWritableConfig[T]()
	cfg.OnWrite = onWrite
	return NewWritableWithConfig(cfg)
}

// NewWritableWithConfig creates a Writable with the given configuration.
func NewWritableWithConfig[T any](cfg WritableConfig[T]) *Writable[T] {
	if cfg.HighWaterMark <= 0 {
		cfg.HighWaterMark = DefaultWritableConfig[T]().HighWaterMark
	}
	return &Writable[T]{
		cfg: cfg,
		hub: events.NewHub(),
	}
}

// Events returns the stream's event hub.
func (w *Writable[T]) Events() *events.Hub {
	return w.hub
}

// OnDrain subscribes to queue over-threshold-to-empty transitions.
func (w *Writable[T]) OnDrain(fn func()) events.Subscription {
	return w.hub.Subscribe(EventDrain, func(any) { fn() })
}

// OnFinish subscribes to completion of the final hook after End.
func (w *Writable[T]) OnFinish(fn func()) events.Subscription {
	return w.hub.Subscribe(EventFinish, func(any) { fn() })
}

// OnClose subscribes to stream teardown.
func (w *Writable[T]) OnClose(fn func()) events.Subscription {
	return w.hub.Subscribe(EventClose, func(any) { fn() })
}

// OnError subscribes to stream errors.
func (w *Writable[T]) OnError(fn func(error)) events.Subscription {
	return w.hub.Subscribe(EventError, func(p any) { fn(p.(error)) })
}

// Write queues a chunk. cb, if non-nil, fires exactly once, after the write
// hook's own callback fires for this chunk, or with an error if the chunk is
// rejected or the stream is destroyed first. The return value is false when
// the queue has reached the high-water mark and the producer should pause
// until drain. Write never panics: writing to an ended or destroyed stream
// fails via cb.
func (w *Writable[T]) Write(chunk T, cb func(error)) bool {
	w.mu.Lock()
	if w.destroyed || w.ending {
		err := ErrWriteAfterEnd
		if w.destroyed {
			err = ErrStreamDestroyed
		}
		w.mu.Unlock()
		if cb != nil {
			go cb(err)
		}
		return false
	}
	w.queue = append(w.queue, writeRequest[T]{chunk: chunk, cb: cb})
	below := len(w.queue) < w.cfg.HighWaterMark
	if !below {
		w.needDrain = true
	}
	w.admitLocked()
	w.mu.Unlock()
	return below
}

// End stops accepting writes. Once the queue drains the final hook runs,
// the finish event fires, cb (if non-nil) is invoked with nil, and the
// stream closes. Ending a destroyed stream fails cb immediately.
func (w *Writable[T]) End(cb func(error)) {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		if cb != nil {
			go cb(ErrStreamDestroyed)
		}
		return
	}
	if w.finished {
		w.mu.Unlock()
		if cb != nil {
			go cb(nil)
		}
		return
	}
	if cb != nil {
		w.endCbs = append(w.endCbs, cb)
	}
	if !w.ending {
		w.ending = true
		w.admitLocked()
	}
	w.mu.Unlock()
}

// Destroyed reports whether the stream has been destroyed.
func (w *Writable[T]) Destroyed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.destroyed
}

// Err returns the error the stream was destroyed with, if any.
func (w *Writable[T]) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Len returns the number of queued, not-yet-admitted writes.
func (w *Writable[T]) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// Destroy tears the stream down without waiting for the queue to drain:
// every pending write callback fails with err (or ErrStreamDestroyed), the
// destroy hook runs exactly once, and exactly one close event follows.
// Destroy is idempotent.
func (w *Writable[T]) Destroy(err error) {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return
	}
	w.destroyed = true
	w.err = err
	pending := w.queue
	w.queue = nil
	ecbs := w.endCbs
	w.endCbs = nil
	alreadyFinished := w.finished
	hook := w.cfg.OnDestroy
	w.mu.Unlock()

	failErr := err
	if failErr == nil {
		failErr = ErrStreamDestroyed
	}
	for _, req := range pending {
		if req.cb != nil {
			req.cb(failErr)
		}
	}
	if !alreadyFinished {
		for _, cb := range ecbs {
			cb(failErr)
		}
	}

	if hook != nil {
		var once sync.Once
		go hook(err, func(hookErr error) {
			once.Do(func() { w.finishDestroy(err, hookErr) })
		})
		return
	}
	w.finishDestroy(err, nil)
}

func (w *Writable[T]) finishDestroy(err, hookErr error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	if err != nil {
		w.hub.Publish(EventError, err)
	} else if hookErr != nil {
		w.hub.Publish(EventError, hookErr)
	}
	w.hub.Publish(EventClose, nil)
}

// admitLocked advances the state machine: open first, then one write at a
// time, then final once ending and drained. Caller holds w.mu.
func (w *Writable[T]) admitLocked() {
	if w.destroyed || w.inflight || w.opening {
		return
	}
	if !w.opened {
		if w.cfg.OnOpen != nil {
			w.opening = true
			var once sync.Once
			done := func(err error) {
				once.Do(func() { w.openDone(err) })
			}
			go w.cfg.OnOpen(done)
			return
		}
		w.opened = true
	}
	if len(w.queue) == 0 {
		if w.ending && !w.finalCalled {
			w.finalCalled = true
			var once sync.Once
			done := func(err error) {
				once.Do(func() { w.finalDone(err) })
			}
			if w.cfg.OnFinal != nil {
				go w.cfg.OnFinal(done)
			} else {
				go done(nil)
			}
		}
		return
	}
	req := w.queue[0]
	w.queue = w.queue[1:]
	w.inflight = true
	var once sync.Once
	done := func(err error) {
		once.Do(func() { w.writeDone(req, err) })
	}
	if w.cfg.OnWrite != nil {
		go w.cfg.OnWrite(req.chunk, done)
	} else {
		go done(nil)
	}
}

func (w *Writable[T]) openDone(err error) {
	if err != nil {
		w.mu.Lock()
		w.opening = false
		w.mu.Unlock()
		w.Destroy(err)
		return
	}
	w.mu.Lock()
	w.opening = false
	w.opened = true
	w.admitLocked()
	w.mu.Unlock()
}

func (w *Writable[T]) writeDone(req writeRequest[T], err error) {
	w.mu.Lock()
	w.inflight = false
	if w.destroyed {
		w.mu.Unlock()
		if req.cb != nil {
			req.cb(err)
		}
		return
	}
	destroyAfter := err != nil && w.cfg.DestroyOnWriteError
	emitDrain := false
	if !destroyAfter {
		if len(w.queue) == 0 && w.needDrain {
			w.needDrain = false
			emitDrain = true
		}
		w.admitLocked()
	}
	w.mu.Unlock()

	// The chunk's own callback always sees the hook's verdict; the error is
	// not published on the stream unless the destroy policy is enabled.
	if req.cb != nil {
		req.cb(err)
	}
	if destroyAfter {
		w.Destroy(err)
		return
	}
	if emitDrain {
		w.hub.Publish(EventDrain, nil)
	}
}

func (w *Writable[T]) finalDone(err error) {
	if err != nil {
		w.Destroy(err)
		return
	}
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return
	}
	w.finished = true
	ecbs := w.endCbs
	w.endCbs = nil
	w.mu.Unlock()

	w.hub.Publish(EventFinish, nil)
	for _, cb := range ecbs {
		cb(nil)
	}
	w.Destroy(nil)
}
