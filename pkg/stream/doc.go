/*
Package stream provides event-driven streaming primitives with automatic
backpressure: pull-mode Readable sources, push-mode Writable sinks,
bidirectional Transforms, and a Pipe coordinator that wires a source to a
sink with coordinated pause/resume and single-shot completion reporting.

# Quick Start

	src := stream.NewReadable[string]()

	src.OnData(func(chunk string) { fmt.Println("got:", chunk) })
	src.OnEnd(func() { fmt.Println("done") })
	src.Resume()

	src.Push(stream.Data("hello"))
	src.Push(stream.Data("world"))
	src.Push(stream.End[string]())

# Chunks and the end marker

Payloads travel as Chunk[T], a tagged variant of Data(v) and End(). The end
marker is terminal: pushing anything after it is a protocol error, and the
end event fires when the marker is consumed, not when it is pushed.

# Hooks

Behavior is injected at construction through config callbacks implementing
the collaborator contract: OnRead pulls data into a Readable, OnOpen/OnWrite/
OnFinal/OnDestroy drive a Writable, OnTransform/OnFlush drive a Transform.
Hooks complete by calling the supplied done callback; at most one hook per
stream is in flight at a time, and a duplicate done call is ignored.

	tail := stream.NewReadableWithConfig(stream.ReadableConfig[string]{
		OnRead: func(r *stream.Readable[string], done func(error)) {
			line, err := readLine()
			if err != nil {
				done(err) // fatal: destroys the stream
				return
			}
			r.Push(stream.Data(line))
			done(nil)
		},
	})

The read hook is re-invoked only after the previous cycle both pushed and
called done; either alone keeps the cycle open, which prevents overlapping
or duplicate reads.

# Backpressure

Push and Write return false when the buffer reaches the high-water mark.
Writable fires drain when its queue empties again; Pipe converts that into
Pause/Resume of the source automatically:

	stream.Pipe[string](src, dst, func(err error) {
		if err != nil {
			log.Println("pipe failed:", err)
		}
	})

# Iteration

Next blocks until a chunk is available, in the Source style:

	for {
		v, ok, err := src.Next(ctx)
		if err != nil || !ok {
			break
		}
		process(v)
	}

# Errors

Write-hook errors stay local to that write's callback unless
DestroyOnWriteError is set. Read-hook errors destroy the Readable. Destroy
errors are delivered exactly once: to the error event, to blocked Next
callers, and to any bound pipe's completion callback.
*/
package stream
