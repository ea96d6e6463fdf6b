package floor

import (
	"context"
	"sync"

	"github.com/viant/floor/runtime/execution"
	"github.com/viant/floor/service/dao"
	"github.com/viant/floor/service/processor"
	"github.com/viant/floor/stats"
)

// Runtime is an open floor: processes are invoked, inspected and cancelled
// through it.
type Runtime struct {
	processor *processor.Service
	config    *Config

	mux    sync.Mutex
	opened bool
	closed bool
}

// Open starts the teams, the managed object sources and the delayed
// invocation scheduler.
func (r *Runtime) Open(ctx context.Context) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	if r.closed {
		return execution.ErrFloorClosed
	}
	if r.opened {
		return nil
	}
	if err := r.processor.Start(ctx); err != nil {
		return err
	}
	r.opened = true
	return nil
}

// Close cancels live processes, waits for their cleanup to drain (bounded by
// Config.CloseTimeout) and stops sources and teams.  Invocations after Close
// fail with execution.ErrFloorClosed.
func (r *Runtime) Close(ctx context.Context) error {
	r.mux.Lock()
	if r.closed {
		r.mux.Unlock()
		return nil
	}
	r.closed = true
	r.mux.Unlock()
	if r.config != nil && r.config.CloseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.CloseTimeout)
		defer cancel()
	}
	return r.processor.Shutdown(ctx)
}

// InvokeFunction starts a process at the named function
func (r *Runtime) InvokeFunction(ctx context.Context, name string, parameter interface{}) (*execution.Handle, error) {
	return r.processor.InvokeFunction(ctx, name, parameter)
}

// InvokeWork starts a process at the initial function of the named work
func (r *Runtime) InvokeWork(ctx context.Context, name string, parameter interface{}) (*execution.Handle, error) {
	return r.processor.InvokeWork(ctx, name, parameter)
}

// Process returns the live process with id
func (r *Runtime) Process(ctx context.Context, id string) (*execution.Info, error) {
	return r.processor.Process(ctx, id)
}

// Processes returns a list of live processes
func (r *Runtime) Processes(ctx context.Context, parameter ...*dao.Parameter) ([]*execution.Info, error) {
	return r.processor.Processes(ctx, parameter...)
}

// Cancel cancels the live process with id
func (r *Runtime) Cancel(ctx context.Context, id string) error {
	return r.processor.Cancel(ctx, id)
}

// Stats returns a snapshot of live and total counters
func (r *Runtime) Stats() stats.Counters {
	return r.processor.Stats()
}
