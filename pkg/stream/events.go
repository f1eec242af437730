package stream

// Event names published on a stream's hub. Payload types are noted per event;
// the typed On* subscription helpers on each stream wrap these.
const (
	// EventData carries one payload chunk value (T). Flowing mode only.
	EventData = "data"

	// EventReadable fires when the buffer transitions from empty to
	// non-empty while the stream is paused. No payload.
	EventReadable = "readable"

	// EventEnd fires exactly once, when the end marker is consumed.
	// No payload.
	EventEnd = "end"

	// EventClose fires exactly once, after teardown completes. No payload.
	EventClose = "close"

	// EventError carries an error.
	EventError = "error"

	// EventDrain fires when a writable's queue transitions from
	// over-threshold back to empty. No payload.
	EventDrain = "drain"

	// EventFinish fires exactly once on a writable, after the final hook
	// completes following End. No payload.
	EventFinish = "finish"
)
