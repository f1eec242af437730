package events

import (
	"testing"

	"github.com/vnykmshr/gostream/internal/testutil"
)

func TestPublishOrder(t *testing.T) {
	hub := NewHub()

	var got []int
	hub.Subscribe("evt", func(any) { got = append(got, 1) })
	hub.Subscribe("evt", func(any) { got = append(got, 2) })
	hub.Subscribe("evt", func(any) { got = append(got, 3) })

	n := hub.Publish("evt", nil)
	testutil.AssertEqual(t, n, 3)
	testutil.AssertEqual(t, len(got), 3)
	for i, v := range []int{1, 2, 3} {
		testutil.AssertEqual(t, got[i], v)
	}
}

func TestPublishPayload(t *testing.T) {
	hub := NewHub()

	var got string
	hub.Subscribe("data", func(p any) { got = p.(string) })
	hub.Publish("data", "hello")
	testutil.AssertEqual(t, got, "hello")
}

func TestSubscribeOnce(t *testing.T) {
	hub := NewHub()

	count := 0
	hub.SubscribeOnce("evt", func(any) { count++ })

	hub.Publish("evt", nil)
	hub.Publish("evt", nil)
	testutil.AssertEqual(t, count, 1)
	testutil.AssertEqual(t, hub.ListenerCount("evt"), 0)
}

func TestCancel(t *testing.T) {
	hub := NewHub()

	count := 0
	sub := hub.Subscribe("evt", func(any) { count++ })

	hub.Publish("evt", nil)
	sub.Cancel()
	sub.Cancel() // idempotent
	hub.Publish("evt", nil)

	testutil.AssertEqual(t, count, 1)
	testutil.AssertEqual(t, hub.ListenerCount("evt"), 0)
}

func TestSnapshotDuringDispatch(t *testing.T) {
	hub := NewHub()

	// A handler that subscribes another handler mid-dispatch: the new handler
	// must not run for the in-progress publish.
	lateRan := false
	hub.Subscribe("evt", func(any) {
		hub.Subscribe("evt", func(any) { lateRan = true })
	})

	hub.Publish("evt", nil)
	testutil.AssertEqual(t, lateRan, false)

	hub.Publish("evt", nil)
	testutil.AssertEqual(t, lateRan, true)
}

func TestCancelDuringDispatch(t *testing.T) {
	hub := NewHub()

	var got []int
	var second Subscription
	hub.Subscribe("evt", func(any) {
		got = append(got, 1)
		second.Cancel()
	})
	second = hub.Subscribe("evt", func(any) { got = append(got, 2) })

	// The snapshot still contains the second handler for this dispatch.
	hub.Publish("evt", nil)
	testutil.AssertEqual(t, len(got), 2)

	hub.Publish("evt", nil)
	testutil.AssertEqual(t, len(got), 3)
}

func TestRecursivePublishOnce(t *testing.T) {
	hub := NewHub()

	count := 0
	hub.SubscribeOnce("evt", func(any) {
		count++
		hub.Publish("evt", nil) // must not re-fire the once handler
	})

	hub.Publish("evt", nil)
	testutil.AssertEqual(t, count, 1)
}
