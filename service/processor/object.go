package processor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"sync"
	"time"

	"github.com/viant/floor/managed"
	"github.com/viant/floor/managed/pool"
	"github.com/viant/floor/model/graph"
	"github.com/viant/floor/runtime/execution"
	"github.com/viant/floor/stats"
)

var errNilObject = errors.New("source delivered nil object")

// resolve walks the resolution plan of node.  It returns false when node was
// suspended waiting for an object.
func (s *Service) resolve(process *execution.ProcessState, thread *execution.ThreadState, node *execution.JobNode, fx *effects) (bool, error) {
	for _, step := range s.plans[node.Function.Name] {
		container, _ := process.Container(step.scope, step.name, thread, node)
		switch container.State {
		case execution.StateUnsourced:
			container.State = execution.StateSourcing
			container.Pooled = step.binding.source.Pool != nil
			container.Wait(node)
			b := step.binding
			fx.add(func() { s.source(process, container, b) })
			return false, nil
		case execution.StateSourcing, execution.StateLoading:
			container.Wait(node)
			return false, nil
		case execution.StateSourced:
			coordinating, _ := container.Capabilities.Coordinating()
			registry, err := s.registry(process, thread, node, step.binding)
			if err != nil {
				return false, err
			}
			container.State = execution.StateLoading
			container.Wait(node)
			fx.add(func() { s.load(process, container, coordinating, registry) })
			return false, nil
		case execution.StateFailed:
			return false, container.Err
		}
		if container.AsyncPending() {
			container.Wait(node)
			return false, nil
		}
		if step.declared >= 0 {
			node.Objects[step.declared] = container
		}
	}
	return true, nil
}

// registry collects the dependencies of b, already resolved by the plan
func (s *Service) registry(process *execution.ProcessState, thread *execution.ThreadState, node *execution.JobNode, b *binding) (*registry, error) {
	ret := &registry{}
	for _, name := range b.object.Dependencies {
		dependency := s.bindings[name]
		container, _ := process.Container(scopeOf(dependency.object), name, thread, node)
		if !container.Available() {
			return nil, &execution.SourcingError{Object: b.object.Name, Cause: fmt.Errorf("dependency %v is %v", name, container.State)}
		}
		ret.objects = append(ret.objects, container.Object)
	}
	return ret, nil
}

type registry struct {
	objects []managed.Object
}

func (r *registry) Object(index int) (interface{}, error) {
	if index < 0 || index >= len(r.objects) {
		return nil, fmt.Errorf("dependency index %v out of range [0,%v)", index, len(r.objects))
	}
	return r.objects[index].Object()
}

func (r *registry) Len() int { return len(r.objects) }

// source requests an object for container from its pool or source
func (s *Service) source(process *execution.ProcessState, container *execution.Container, b *binding) {
	user := &sourceUser{service: s, process: process, container: container}
	defer func() {
		if r := recover(); r != nil {
			user.SetFailure(fmt.Errorf("source %v panic: %v\n%s", b.source.Name, r, debug.Stack()))
		}
	}()
	if container.Pooled {
		b.source.Pool.Source(process.Context, user)
		return
	}
	b.source.Source.Source(process.Context, user)
}

// sourceUser delivers one sourcing result to a container, later calls are ignored
type sourceUser struct {
	service   *Service
	process   *execution.ProcessState
	container *execution.Container
	once      sync.Once
}

func (u *sourceUser) SetObject(object managed.Object) {
	if object == nil {
		u.SetFailure(errNilObject)
		return
	}
	delivered := false
	u.once.Do(func() {
		delivered = true
		u.service.deliver(u.process, u.container, object)
	})
	if !delivered {
		u.service.logger.Warn("duplicate sourcing result", "object", u.container.Name)
	}
}

func (u *sourceUser) SetFailure(err error) {
	u.once.Do(func() {
		u.service.sourcingFailed(u.process, u.container, err)
	})
}

// deliver binds object once its contexts are attached, a bound object is
// visible to every function of its scope.
func (s *Service) deliver(process *execution.ProcessState, container *execution.Container, object managed.Object) {
	if !s.accepting(process, container) {
		s.discard(process, container, object)
		return
	}
	s.attach(process, container, object)
	var fx effects
	process.Lock()
	if container.State != execution.StateSourcing || container.Released {
		process.Unlock()
		s.discard(process, container, object)
		return
	}
	container.Bind(object)
	s.stats.Update(stats.Delta{Objects: 1})
	s.wake(process, container, &fx)
	process.Unlock()
	fx.run()
}

func (s *Service) accepting(process *execution.ProcessState, container *execution.Container) bool {
	process.Lock()
	defer process.Unlock()
	return container.State == execution.StateSourcing && !container.Released
}

func (s *Service) sourcingFailed(process *execution.ProcessState, container *execution.Container, err error) {
	var fx effects
	process.Lock()
	if container.State == execution.StateSourcing && !container.Released {
		container.Fail(&execution.SourcingError{Object: container.Name, Cause: err})
		s.wake(process, container, &fx)
	}
	process.Unlock()
	fx.run()
}

// attach hands object the process contexts it asks for
func (s *Service) attach(process *execution.ProcessState, container *execution.Container, object managed.Object) {
	capabilities := managed.NewCapabilities(object)
	if aware, ok := capabilities.ProcessAware(); ok {
		aware.SetProcessAwareContext(process.Aware)
	}
	if async, ok := capabilities.Asynchronous(); ok {
		async.SetAsynchronousContext(&asyncContext{service: s, process: process, container: container})
	}
}

// discard gives back an object delivered after its container stopped waiting
func (s *Service) discard(process *execution.ProcessState, container *execution.Container, object managed.Object) {
	s.logger.Debug("discarding late object", "process", process.ID, "object", container.Name)
	if container.Pooled {
		s.bindings[container.Name].source.Pool.Return(object)
	}
}

func (s *Service) load(process *execution.ProcessState, container *execution.Container, coordinating managed.Coordinating, registry *registry) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("load panic: %v\n%s", r, debug.Stack())
			}
		}()
		return coordinating.LoadObjects(registry)
	}()
	var fx effects
	process.Lock()
	if container.State == execution.StateLoading {
		if err != nil {
			container.Fail(&execution.SourcingError{Object: container.Name, Cause: err})
		} else {
			container.State = execution.StateReady
		}
		s.wake(process, container, &fx)
	}
	process.Unlock()
	fx.run()
}

// wake re-dispatches jobs suspended on container, they are still counted as active
func (s *Service) wake(process *execution.ProcessState, container *execution.Container, fx *effects) {
	for _, node := range container.TakeWaiters() {
		waiter := node
		fx.add(func() { s.dispatch(process, waiter) })
	}
}

// release ends function scoped objects of node
func (s *Service) release(process *execution.ProcessState, node *execution.JobNode, fx *effects) {
	for _, container := range node.ScopedContainers() {
		s.releaseContainer(process, container, fx)
	}
}

// releaseContainer registers the cleanup job of container once its scope ended
func (s *Service) releaseContainer(process *execution.ProcessState, container *execution.Container, fx *effects) {
	if container.Released {
		return
	}
	if container.AsyncPending() {
		container.Deferred = true
		return
	}
	container.Released = true
	object := container.Object
	if object == nil || container.Lost {
		return
	}
	s.stats.Update(stats.Delta{Objects: -1})
	var objectPool = s.poolOf(container)
	if container.State == execution.StateFailed {
		container.Lost = true
		if objectPool != nil {
			cause := container.Err
			fx.add(func() { objectPool.Lost(object, cause) })
		}
		return
	}
	recyclable, isRecyclable := container.Capabilities.Recyclable()
	if !isRecyclable && objectPool == nil {
		return
	}
	job := &execution.CleanupJob{Object: container.Name, Type: reflect.TypeOf(object), Run: func(ctx context.Context) error {
		if isRecyclable {
			if err := recyclable.Recycle(ctx); err != nil {
				if objectPool != nil {
					objectPool.Lost(object, err)
				}
				return err
			}
		}
		if objectPool != nil {
			objectPool.Return(object)
		}
		return nil
	}}
	fx.add(func() { process.Cleanup.Register(job) })
}

func (s *Service) poolOf(container *execution.Container) pool.Pool {
	if !container.Pooled {
		return nil
	}
	return s.bindings[container.Name].source.Pool
}

// teardown fails a container whose pending operation ended abnormally
func (s *Service) teardown(process *execution.ProcessState, container *execution.Container, err error, fx *effects) {
	container.Fail(err)
	container.Lost = true
	if object := container.Object; object != nil && !container.Released {
		s.stats.Update(stats.Delta{Objects: -1})
		if objectPool := s.poolOf(container); objectPool != nil {
			fx.add(func() { objectPool.Lost(object, err) })
		}
	}
	if container.Deferred {
		container.Released = true
	}
	s.wake(process, container, fx)
	s.unhold(process, container, fx)
}

// hold keeps the owner of container alive while an operation is pending
func (s *Service) hold(process *execution.ProcessState, container *execution.Container) {
	if thread, ok := process.Thread(container.Holder); ok && container.Scope != graph.ScopeProcess {
		thread.Active++
		return
	}
	process.PendingAsync++
}

func (s *Service) unhold(process *execution.ProcessState, container *execution.Container, fx *effects) {
	if thread, ok := process.Thread(container.Holder); ok && container.Scope != graph.ScopeProcess {
		s.unholdThread(process, thread, fx)
		return
	}
	process.PendingAsync--
	if process.PendingAsync == 0 && len(process.Threads) == 0 {
		s.endProcess(process, fx)
	}
}

// asyncContext lets an object mark pending operations of its container
type asyncContext struct {
	service   *Service
	process   *execution.ProcessState
	container *execution.Container
}

func (a *asyncContext) Start(op managed.Operation) {
	s, process, container := a.service, a.process, a.container
	process.Lock()
	if container.State == execution.StateReady && !container.Released && process.State == execution.StateOpen && !process.Cancelled {
		timeout := s.timeoutOf(container.Name)
		if container.StartAsync(timeout, func(gen uint64) { s.expire(process, container, gen, timeout) }) {
			s.hold(process, container)
		}
	}
	process.Unlock()
	if op == nil {
		return
	}
	if err := runOperation(op); err != nil {
		s.operationFailed(process, container, err)
	}
}

func (a *asyncContext) Complete(op managed.Operation) {
	var err error
	if op != nil {
		err = runOperation(op)
	}
	s, process, container := a.service, a.process, a.container
	var fx effects
	process.Lock()
	if container.CompleteAsync() {
		if err != nil {
			s.teardown(process, container, &execution.SourcingError{Object: container.Name, Cause: err}, &fx)
		} else {
			if container.Deferred {
				s.releaseContainer(process, container, &fx)
			}
			s.wake(process, container, &fx)
			s.unhold(process, container, &fx)
		}
	}
	process.Unlock()
	fx.run()
}

func (s *Service) operationFailed(process *execution.ProcessState, container *execution.Container, err error) {
	var fx effects
	process.Lock()
	if container.CompleteAsync() {
		s.teardown(process, container, &execution.SourcingError{Object: container.Name, Cause: err}, &fx)
	}
	process.Unlock()
	fx.run()
}

func (s *Service) expire(process *execution.ProcessState, container *execution.Container, gen uint64, timeout time.Duration) {
	var fx effects
	process.Lock()
	if container.ExpireAsync(gen) {
		s.logger.Warn("asynchronous operation timed out", "process", process.ID, "object", container.Name)
		s.teardown(process, container, &execution.TimeoutError{Object: container.Name, Timeout: timeout}, &fx)
	}
	process.Unlock()
	fx.run()
}

func runOperation(op managed.Operation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation panic: %v\n%s", r, debug.Stack())
		}
	}()
	return op()
}

// cancel fails pending work of process; queued jobs are dropped as they run
func (s *Service) cancel(process *execution.ProcessState) {
	var fx effects
	process.Lock()
	if process.Cancelled || process.State != execution.StateOpen {
		process.Unlock()
		return
	}
	process.Cancelled = true
	for _, container := range process.Containers {
		switch {
		case container.CompleteAsync():
			s.teardown(process, container, &execution.TimeoutError{Object: container.Name, Timeout: s.timeoutOf(container.Name)}, &fx)
		case container.State == execution.StateSourcing, container.State == execution.StateLoading:
			container.Fail(&execution.SourcingError{Object: container.Name, Cause: execution.ErrProcessCancelled})
			s.wake(process, container, &fx)
		}
	}
	process.Unlock()
	s.logger.Info("process cancelled", "process", process.ID)
	if process.CancelFunc != nil {
		process.CancelFunc()
	}
	fx.run()
}
