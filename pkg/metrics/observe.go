package metrics

import (
	"github.com/vnykmshr/gostream/pkg/events"
	"github.com/vnykmshr/gostream/pkg/stream"
)

// ObserveReadable instruments a Readable: data events increment the delivered
// counter and track buffer length, end, error, and close events increment
// their counters. The returned function cancels the subscriptions; streams
// that run to teardown never need it.
func ObserveReadable[T any](m *Registry, r *stream.Readable[T], name string) func() {
	subs := []events.Subscription{
		r.OnData(func(T) {
			m.ChunksDelivered.WithLabelValues(name).Inc()
			m.ReadableBuffer.WithLabelValues(name).Set(float64(r.Len()))
		}),
		r.OnEnd(func() {
			m.StreamsEnded.WithLabelValues(name).Inc()
		}),
		r.OnError(func(error) {
			m.StreamErrors.WithLabelValues(name, "readable").Inc()
		}),
		r.OnClose(func() {
			m.StreamsClosed.WithLabelValues(name, "readable").Inc()
			m.ReadableBuffer.WithLabelValues(name).Set(0)
		}),
	}
	return cancelAll(subs)
}

// ObserveWritable instruments a Writable: drain, finish, error, and close
// events increment their counters.
func ObserveWritable[T any](m *Registry, w *stream.Writable[T], name string) func() {
	subs := []events.Subscription{
		w.OnDrain(func() {
			m.DrainEvents.WithLabelValues(name).Inc()
		}),
		w.OnFinish(func() {
			m.StreamsFinished.WithLabelValues(name).Inc()
		}),
		w.OnError(func(error) {
			m.StreamErrors.WithLabelValues(name, "writable").Inc()
		}),
		w.OnClose(func() {
			m.StreamsClosed.WithLabelValues(name, "writable").Inc()
		}),
	}
	return cancelAll(subs)
}

// ObserveTransform instruments both sides of a Transform under one name.
func ObserveTransform[In, Out any](m *Registry, t *stream.Transform[In, Out], name string) func() {
	cancelIn := ObserveWritable(m, t.Writable(), name)
	cancelOut := ObserveReadable(m, t.Readable(), name)
	return func() {
		cancelIn()
		cancelOut()
	}
}

func cancelAll(subs []events.Subscription) func() {
	return func() {
		for _, s := range subs {
			s.Cancel()
		}
	}
}
