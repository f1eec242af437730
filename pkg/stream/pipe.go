package stream

import (
	"sync"

	"github.com/vnykmshr/gostream/pkg/events"
)

// Source is the readable half a pipe consumes. Readable and Transform
// satisfy it.
type Source[T any] interface {
	Resume()
	Pause()
	OnData(fn func(T)) events.Subscription
	OnEnd(fn func()) events.Subscription
	OnError(fn func(error)) events.Subscription
	Destroy(err error)
	Destroyed() bool
}

// Sink is the writable half a pipe feeds. Writable and Transform satisfy it.
type Sink[T any] interface {
	Write(chunk T, cb func(error)) bool
	End(cb func(error))
	OnDrain(fn func()) events.Subscription
	OnFinish(fn func()) events.Subscription
	OnError(fn func(error)) events.Subscription
	Destroy(err error)
	Destroyed() bool
}

// Pipe binds src to dst: src is placed in flowing mode and every chunk is
// forwarded to dst.Write. Backpressure from dst pauses src until drain. When
// src ends, dst is ended. On any error from either side, including a
// write-hook error reported through its callback, the side not already
// destroyed is destroyed and cb is invoked exactly once with the error; on
// normal completion (dst finish) cb is invoked exactly once with nil.
//
// Pipe returns dst so pipes can be chained through Transforms.
func Pipe[T any](src Source[T], dst Sink[T], cb func(error)) Sink[T] {
	p := &pipeCoordinator[T]{src: src, dst: dst, cb: cb}
	p.subs = []events.Subscription{
		src.OnData(p.forward),
		dst.OnDrain(func() { src.Resume() }),
		src.OnEnd(func() { dst.End(nil) }),
		src.OnError(p.fail),
		dst.OnError(p.fail),
		dst.OnFinish(func() { p.report(nil) }),
	}
	src.Resume()
	return dst
}

type pipeCoordinator[T any] struct {
	mu       sync.Mutex
	reported bool
	src      Source[T]
	dst      Sink[T]
	cb       func(error)
	subs     []events.Subscription
}

func (p *pipeCoordinator[T]) forward(v T) {
	ok := p.dst.Write(v, func(err error) {
		if err != nil {
			p.fail(err)
		}
	})
	if !ok {
		p.src.Pause()
	}
}

// claim marks the pipe as reported. Only the first caller wins, which is
// what guarantees the completion callback fires exactly once.
func (p *pipeCoordinator[T]) claim() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reported {
		return false
	}
	p.reported = true
	return true
}

func (p *pipeCoordinator[T]) detach() {
	for _, s := range p.subs {
		s.Cancel()
	}
}

func (p *pipeCoordinator[T]) fail(err error) {
	if !p.claim() {
		return
	}
	p.detach()
	if !p.src.Destroyed() {
		p.src.Destroy(err)
	}
	if !p.dst.Destroyed() {
		p.dst.Destroy(err)
	}
	if p.cb != nil {
		p.cb(err)
	}
}

func (p *pipeCoordinator[T]) report(err error) {
	if !p.claim() {
		return
	}
	p.detach()
	if p.cb != nil {
		p.cb(err)
	}
}
