package stream

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vnykmshr/gostream/internal/testutil"
)

func TestTransformMapsChunks(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	tr := NewTransform(TransformConfig[string, string]{
		OnTransform: func(chunk string, push func(string), done func(error)) {
			push(strings.ToUpper(chunk))
			done(nil)
		},
	})

	tr.Write("hello", nil)
	tr.Write("world", nil)
	tr.End(nil)

	got, err := tr.Readable().Collect(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(got), 2)
	testutil.AssertEqual(t, got[0], "HELLO")
	testutil.AssertEqual(t, got[1], "WORLD")
}

func TestTransformFanOut(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	tr := NewTransform(TransformConfig[int, int]{
		OnTransform: func(chunk int, push func(int), done func(error)) {
			push(chunk)
			push(chunk * 10)
			done(nil)
		},
	})

	tr.Write(1, nil)
	tr.Write(2, nil)
	tr.End(nil)

	got, err := tr.Readable().Collect(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(got), 4)
	testutil.AssertEqual(t, got[0], 1)
	testutil.AssertEqual(t, got[1], 10)
	testutil.AssertEqual(t, got[2], 2)
	testutil.AssertEqual(t, got[3], 20)
}

func TestTransformFlushBeforeEnd(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	tr := NewTransform(TransformConfig[string, string]{
		OnTransform: func(chunk string, push func(string), done func(error)) {
			push(chunk)
			done(nil)
		},
		OnFlush: func(push func(string), done func(error)) {
			push("tail")
			done(nil)
		},
	})

	tr.Write("a", nil)
	tr.End(nil)

	got, err := tr.Readable().Collect(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(got), 2)
	testutil.AssertEqual(t, got[0], "a")
	testutil.AssertEqual(t, got[1], "tail")
}

func TestTransformSerializesHook(t *testing.T) {
	gate := make(chan struct{})
	var mu sync.Mutex
	invocations := 0

	tr := NewTransform(TransformConfig[int, int]{
		OnTransform: func(chunk int, push func(int), done func(error)) {
			mu.Lock()
			invocations++
			mu.Unlock()
			<-gate
			push(chunk)
			done(nil)
		},
	})

	tr.Write(1, nil)
	tr.Write(2, nil)

	// The second chunk waits for the first hook's completion callback.
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	n := invocations
	mu.Unlock()
	testutil.AssertEqual(t, n, 1)

	close(gate)
	end := testutil.NewCallbackTracker()
	tr.End(end.Callback())
	end.WaitCalled(t, "end callback")

	mu.Lock()
	defer mu.Unlock()
	testutil.AssertEqual(t, invocations, 2)
}

func TestTransformHookErrorFailsWrite(t *testing.T) {
	boom := errors.New("bad input")
	tr := NewTransform(TransformConfig[string, string]{
		OnTransform: func(chunk string, push func(string), done func(error)) {
			done(boom)
		},
	})

	cb := testutil.NewCallbackTracker()
	tr.Write("a", cb.Callback())
	cb.WaitCalled(t, "write callback")
	testutil.AssertErrorIs(t, cb.LastErr(), boom)

	// The error stays local to the write; the transform is still usable.
	testutil.AssertEqual(t, tr.Destroyed(), false)
}

func TestTransformDestroyTearsDownBothSides(t *testing.T) {
	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	boom := errors.New("torn down")
	tr := NewTransform(TransformConfig[string, string]{
		OnTransform: func(chunk string, push func(string), done func(error)) {
			push(chunk)
			done(nil)
		},
	})

	tr.Destroy(boom)
	testutil.AssertEqual(t, tr.Destroyed(), true)

	_, ok, err := tr.Next(ctx)
	testutil.AssertEqual(t, ok, false)
	testutil.AssertErrorIs(t, err, boom)

	cb := testutil.NewCallbackTracker()
	testutil.AssertEqual(t, tr.Write("late", cb.Callback()), false)
	cb.WaitCalled(t, "rejection callback")
	testutil.AssertErrorIs(t, cb.LastErr(), ErrStreamDestroyed)
}

func TestTransformReadSideErrorPropagates(t *testing.T) {
	boom := errors.New("consumer gone")
	tr := NewTransform(TransformConfig[string, string]{
		OnTransform: func(chunk string, push func(string), done func(error)) {
			push(chunk)
			done(nil)
		},
	})

	tr.Readable().Destroy(boom)
	testutil.AssertEqual(t, tr.Writable().Destroyed(), true)
	testutil.AssertErrorIs(t, tr.Writable().Err(), boom)
}
