package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vnykmshr/gostream/internal/testutil"
	"github.com/vnykmshr/gostream/pkg/stream"
)

func newTestRegistry() *Registry {
	return NewRegistry(prometheus.NewRegistry())
}

func TestObserveReadable(t *testing.T) {
	m := newTestRegistry()
	r := stream.NewReadable[string]()
	ObserveReadable(m, r, "ingest")

	closed := make(chan struct{})
	r.OnClose(func() { close(closed) })

	r.Resume()
	r.Push(stream.Data("a"))
	r.Push(stream.Data("b"))
	r.Push(stream.End[string]())

	testutil.Wait(t, closed, "close event")
	testutil.AssertEqual(t, promtestutil.ToFloat64(m.ChunksDelivered.WithLabelValues("ingest")), 2)
	testutil.AssertEqual(t, promtestutil.ToFloat64(m.StreamsEnded.WithLabelValues("ingest")), 1)
	testutil.AssertEqual(t, promtestutil.ToFloat64(m.StreamsClosed.WithLabelValues("ingest", "readable")), 1)
	testutil.AssertEqual(t, promtestutil.ToFloat64(m.StreamErrors.WithLabelValues("ingest", "readable")), 0)
	testutil.AssertEqual(t, promtestutil.ToFloat64(m.ReadableBuffer.WithLabelValues("ingest")), 0)
}

func TestObserveReadableError(t *testing.T) {
	m := newTestRegistry()
	r := stream.NewReadable[string]()
	ObserveReadable(m, r, "ingest")

	closed := make(chan struct{})
	r.OnClose(func() { close(closed) })
	r.Destroy(errors.New("boom"))

	testutil.Wait(t, closed, "close event")
	testutil.AssertEqual(t, promtestutil.ToFloat64(m.StreamErrors.WithLabelValues("ingest", "readable")), 1)
	testutil.AssertEqual(t, promtestutil.ToFloat64(m.StreamsClosed.WithLabelValues("ingest", "readable")), 1)
}

func TestObserveWritable(t *testing.T) {
	m := newTestRegistry()

	gate := make(chan struct{})
	w := stream.NewWritableWithConfig(stream.WritableConfig[string]{
		HighWaterMark: 1,
		OnWrite: func(chunk string, done func(error)) {
			<-gate
			done(nil)
		},
	})
	ObserveWritable(m, w, "export")

	closed := make(chan struct{})
	w.OnClose(func() { close(closed) })

	w.Write("a", nil)
	w.Write("b", nil)
	close(gate)
	w.End(nil)

	testutil.Wait(t, closed, "close event")
	testutil.AssertEqual(t, promtestutil.ToFloat64(m.DrainEvents.WithLabelValues("export")), 1)
	testutil.AssertEqual(t, promtestutil.ToFloat64(m.StreamsFinished.WithLabelValues("export")), 1)
	testutil.AssertEqual(t, promtestutil.ToFloat64(m.StreamsClosed.WithLabelValues("export", "writable")), 1)
}

func TestObserveCancel(t *testing.T) {
	m := newTestRegistry()
	r := stream.NewReadable[string]()
	cancelObs := ObserveReadable(m, r, "ingest")
	cancelObs()

	closed := make(chan struct{})
	r.OnClose(func() { close(closed) })
	r.Destroy(errors.New("boom"))

	testutil.Wait(t, closed, "close event")
	testutil.AssertEqual(t, promtestutil.ToFloat64(m.StreamErrors.WithLabelValues("ingest", "readable")), 0)
}

func TestCustomNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRegistryWithConfig(Config{
		Registry:  reg,
		Namespace: "myapp",
		Labels:    prometheus.Labels{"version": "1.0"},
	})

	m.ChunksDelivered.WithLabelValues("ingest").Inc()

	families, err := reg.Gather()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(families), 1)
	testutil.AssertEqual(t, families[0].GetName(), "myapp_readable_chunks_delivered_total")
}
