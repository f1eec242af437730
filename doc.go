/*
Package gostream provides event-driven streaming primitives for Go with
automatic backpressure, pluggable I/O hooks, and pipe composition.

Core (pkg/stream):
  - Readable: pull-mode source with buffering, flowing mode, and a read hook
  - Writable: push-mode sink with ordered admission and drain signalling
  - Transform: writable-in, readable-out stage for pipelines
  - Pipe: binds a source to a sink with pause/resume and one-shot completion

Events (pkg/events):
  - hub: synchronous publish/subscribe registry behind every stream

Backends (pkg/backend):
  - redisqueue: Redis lists as stream sources and sinks
  - cronsource: cron-scheduled chunk production

Observability (pkg/metrics):
  - Prometheus instrumentation driven by stream events

Example usage:

	import "github.com/vnykmshr/gostream/pkg/stream"

	src := stream.NewReadable[string]()
	dst := stream.NewWritable(func(chunk string, done func(error)) {
		fmt.Println(chunk)
		done(nil)
	})

	stream.Pipe[string](src, dst, func(err error) {
		if err != nil {
			log.Fatal(err)
		}
	})

	src.Push(stream.Data("hello"))
	src.Push(stream.End[string]())
*/
package gostream
