package testutil

import (
	"sync"
	"testing"
)

// CallbackTracker records completion-callback invocations so tests can assert
// exactly-once delivery and inspect the reported errors.
type CallbackTracker struct {
	mu    sync.Mutex
	calls int
	errs  []error
	ch    chan struct{}
}

// NewCallbackTracker creates an empty tracker.
func NewCallbackTracker() *CallbackTracker {
	return &CallbackTracker{ch: make(chan struct{}, 64)}
}

// Callback returns a func(error) that records each invocation.
func (c *CallbackTracker) Callback() func(error) {
	return func(err error) {
		c.mu.Lock()
		c.calls++
		c.errs = append(c.errs, err)
		c.mu.Unlock()
		select {
		case c.ch <- struct{}{}:
		default:
		}
	}
}

// CallCount returns the number of invocations recorded so far.
func (c *CallbackTracker) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// LastErr returns the error from the most recent invocation.
func (c *CallbackTracker) LastErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs[len(c.errs)-1]
}

// WaitCalled blocks until at least one invocation has been recorded.
func (c *CallbackTracker) WaitCalled(t *testing.T, what string) {
	t.Helper()
	if c.CallCount() > 0 {
		return
	}
	Wait(t, c.ch, what)
}

// AssertCallCount fails the test unless exactly want invocations were recorded.
func (c *CallbackTracker) AssertCallCount(t *testing.T, want int) {
	t.Helper()
	if got := c.CallCount(); got != want {
		t.Fatalf("callback fired %d times, want %d", got, want)
	}
}
