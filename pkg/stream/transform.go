package stream

import (
	"context"

	"github.com/vnykmshr/gostream/pkg/events"
)

// TransformConfig holds configuration and hooks for a Transform.
type TransformConfig[In, Out any] struct {
	// WritableHighWaterMark bounds the write-side queue. Default: 16.
	WritableHighWaterMark int

	// ReadableHighWaterMark bounds the read-side buffer. Default: 16.
	ReadableHighWaterMark int

	// OnTransform receives each written chunk. It may call push zero or
	// more times before calling done; the next written chunk is not
	// admitted until done fires, which couples backpressure in both
	// directions. A nil hook discards input.
	OnTransform func(chunk In, push func(Out), done func(error))

	// OnFlush runs once after the last transform completes following End,
	// before the end marker is pushed to the read side.
	OnFlush func(push func(Out), done func(error))

	// OnDestroy is invoked exactly once during teardown.
	OnDestroy func(err error, done func(error))
}

// Transform composes a Readable's output from a Writable's input: chunks
// written to it drive the transform hook, whose pushes feed the read side.
// Ending the write side flushes and then ends the read side automatically.
//
// Transform satisfies both Sink[In] and Source[Out], so it can sit on
// either end of a pipe.
type Transform[In, Out any] struct {
	in  *Writable[In]
	out *Readable[Out]
}

// NewTransform creates a Transform with the given configuration.
func NewTransform[In, Out any](cfg TransformConfig[In, Out]) *Transform[In, Out] {
	t := &Transform[In, Out]{}
	t.out = NewReadableWithConfig(ReadableConfig[Out]{
		HighWaterMark: cfg.ReadableHighWaterMark,
	})

	push := func(v Out) { t.out.Push(Data(v)) }

	t.in = NewWritableWithConfig(WritableConfig[In]{
		HighWaterMark: cfg.WritableHighWaterMark,
		OnWrite: func(chunk In, done func(error)) {
			if cfg.OnTransform == nil {
				done(nil)
				return
			}
			cfg.OnTransform(chunk, push, done)
		},
		OnFinal: func(done func(error)) {
			finish := func(err error) {
				if err != nil {
					done(err)
					return
				}
				t.out.Push(End[Out]())
				done(nil)
			}
			if cfg.OnFlush != nil {
				cfg.OnFlush(push, finish)
				return
			}
			finish(nil)
		},
		OnDestroy: cfg.OnDestroy,
	})

	// Errors cross sides so a consumer of either half observes them. The
	// destroyed checks keep the propagation from cycling.
	t.in.OnError(func(err error) {
		if !t.out.Destroyed() {
			t.out.Destroy(err)
		}
	})
	t.out.OnError(func(err error) {
		if !t.in.Destroyed() {
			t.in.Destroy(err)
		}
	})
	return t
}

// Writable returns the write side.
func (t *Transform[In, Out]) Writable() *Writable[In] { return t.in }

// Readable returns the read side.
func (t *Transform[In, Out]) Readable() *Readable[Out] { return t.out }

// Write queues a chunk on the write side.
func (t *Transform[In, Out]) Write(chunk In, cb func(error)) bool {
	return t.in.Write(chunk, cb)
}

// End stops accepting writes; after the last transform and the flush hook,
// the read side receives the end marker.
func (t *Transform[In, Out]) End(cb func(error)) { t.in.End(cb) }

// Read dequeues one transformed chunk from the read side.
func (t *Transform[In, Out]) Read() (Chunk[Out], bool) { return t.out.Read() }

// Next blocks until a transformed chunk is available.
func (t *Transform[In, Out]) Next(ctx context.Context) (Out, bool, error) {
	return t.out.Next(ctx)
}

// Resume puts the read side into flowing mode.
func (t *Transform[In, Out]) Resume() { t.out.Resume() }

// Pause takes the read side out of flowing mode.
func (t *Transform[In, Out]) Pause() { t.out.Pause() }

// OnData subscribes to transformed chunks delivered in flowing mode.
func (t *Transform[In, Out]) OnData(fn func(Out)) events.Subscription {
	return t.out.OnData(fn)
}

// OnEnd subscribes to consumption of the read side's end marker.
func (t *Transform[In, Out]) OnEnd(fn func()) events.Subscription {
	return t.out.OnEnd(fn)
}

// OnDrain subscribes to the write side's drain event.
func (t *Transform[In, Out]) OnDrain(fn func()) events.Subscription {
	return t.in.OnDrain(fn)
}

// OnFinish subscribes to the write side's finish event.
func (t *Transform[In, Out]) OnFinish(fn func()) events.Subscription {
	return t.in.OnFinish(fn)
}

// OnError subscribes to errors. Write-side errors propagate to the read
// side, so one subscription observes both halves.
func (t *Transform[In, Out]) OnError(fn func(error)) events.Subscription {
	return t.out.OnError(fn)
}

// Destroy tears down both sides.
func (t *Transform[In, Out]) Destroy(err error) {
	t.in.Destroy(err)
	t.out.Destroy(err)
}

// Destroyed reports whether both sides have been destroyed.
func (t *Transform[In, Out]) Destroyed() bool {
	return t.in.Destroyed() && t.out.Destroyed()
}
