package team

import (
	"context"
	"log/slog"
	"sync"
)

// OnDemand runs every job on its own goroutine.  When maxConcurrent is
// positive, jobs beyond that number of in-flight goroutines are rejected with
// ErrOverload.
type OnDemand struct {
	name    string
	logger  *slog.Logger
	slots   chan struct{}
	mu      sync.RWMutex
	working bool
	wg      sync.WaitGroup
}

// NewOnDemand creates an on-demand team
func NewOnDemand(name string, maxConcurrent int, logger *slog.Logger) *OnDemand {
	if logger == nil {
		logger = slog.Default()
	}
	ret := &OnDemand{name: name, logger: logger}
	if maxConcurrent > 0 {
		ret.slots = make(chan struct{}, maxConcurrent)
	}
	return ret
}

// Name returns team name
func (o *OnDemand) Name() string { return o.name }

// StartWorking makes the team available
func (o *OnDemand) StartWorking(context.Context) error {
	o.mu.Lock()
	o.working = true
	o.mu.Unlock()
	return nil
}

// AssignJob starts a goroutine for the job
func (o *OnDemand) AssignJob(job Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if !o.working {
		return ErrNotWorking
	}
	if o.slots != nil {
		select {
		case o.slots <- struct{}{}:
		default:
			return overload(o.name, "at max concurrency")
		}
	}
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if o.slots != nil {
			defer func() { <-o.slots }()
		}
		if err := run(job); err != nil {
			o.logger.Error("team job failed", "team", o.name, "error", err)
		}
	}()
	return nil
}

// StopWorking waits for in-flight jobs
func (o *OnDemand) StopWorking() {
	o.mu.Lock()
	o.working = false
	o.mu.Unlock()
	o.wg.Wait()
}
