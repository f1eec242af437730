// Package metrics provides Prometheus instrumentation for gostream streams.
//
// Streams are observed from the outside, through their event hubs: Observe
// functions subscribe to a stream's events and translate them into counter
// and gauge updates. The stream packages themselves carry no metrics code.
//
// # Quick Start
//
// Instrument a stream against the default registry:
//
//	src := stream.NewReadable[string]()
//	metrics.ObserveReadable(metrics.DefaultRegistry, src, "ingest")
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	m := metrics.NewRegistryWithConfig(metrics.Config{
//		Registry:  registry,
//		Namespace: "myapp",
//	})
//	metrics.ObserveWritable(m, sink, "export")
//
// # Available Metrics
//
//   - gostream_readable_chunks_delivered_total: Chunks delivered as data events
//   - gostream_readable_buffer_length: Chunks currently buffered
//   - gostream_readable_ended_total: Streams that consumed their end marker
//   - gostream_writable_drain_events_total: Drain events after backpressure
//   - gostream_writable_finished_total: Streams that completed their final hook
//   - gostream_stream_errors_total: Stream errors, labelled by side
//   - gostream_stream_closed_total: Streams torn down, labelled by side
//
// All metrics carry a stream_name label with the name passed to Observe.
package metrics
