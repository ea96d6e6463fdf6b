package execution

import (
	"context"
	"sync"
	"time"
)

// Outcome represents the terminal result of a process
type Outcome struct {
	ProcessID string
	Name      string
	// Result is the result of the main thread
	Result interface{}
	// Err is the unhandled escalation of the main thread
	Err                error
	ThreadFailures     []*ThreadFailure
	CleanupEscalations []*CleanupEscalation
	StartedAt          time.Time
	TimeTaken          time.Duration
}

// Failed returns true if the main thread ended with an unhandled escalation
func (o *Outcome) Failed() bool {
	return o != nil && o.Err != nil
}

// Handle lets an invoker await or cancel a process
type Handle struct {
	ID      string
	done    chan struct{}
	once    sync.Once
	mux     sync.RWMutex
	outcome *Outcome
	cancel  func()
}

// NewHandle creates a handle, cancel is called by Cancel
func NewHandle(id string, cancel func()) *Handle {
	return &Handle{ID: id, done: make(chan struct{}), cancel: cancel}
}

// Done returns a channel closed once the process is closed
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Outcome returns the outcome once available
func (h *Handle) Outcome() (*Outcome, bool) {
	h.mux.RLock()
	defer h.mux.RUnlock()
	return h.outcome, h.outcome != nil
}

// Wait blocks until the process is closed or ctx is done
func (h *Handle) Wait(ctx context.Context) (*Outcome, error) {
	select {
	case <-h.done:
		ret, _ := h.Outcome()
		return ret, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel requests early close of the process
func (h *Handle) Cancel() {
	if h.cancel != nil {
		h.cancel()
	}
}

// Complete publishes the outcome, only the first call has effect
func (h *Handle) Complete(outcome *Outcome) {
	h.once.Do(func() {
		h.mux.Lock()
		h.outcome = outcome
		h.mux.Unlock()
		close(h.done)
	})
}
