package processor

import (
	"fmt"
	"runtime/debug"

	"github.com/viant/floor/function"
	"github.com/viant/floor/model/graph"
	"github.com/viant/floor/runtime/execution"
	"github.com/viant/floor/stats"
	"github.com/viant/floor/team"
)

// effects collects work decided under the process lock and run after it is released
type effects []func()

func (e *effects) add(fn func()) {
	*e = append(*e, fn)
}

func (e effects) run() {
	for _, fn := range e {
		fn()
	}
}

// assign hands node to its team
func (s *Service) assign(process *execution.ProcessState, node *execution.JobNode) error {
	name, t := s.teamOf(node.Function)
	if err := t.AssignJob(team.JobFunc(func() { s.run(process, node) })); err != nil {
		return &execution.OverloadError{Team: name, Function: node.Function.Name, Cause: err}
	}
	return nil
}

// schedule counts node as active work of thread; it is assigned once fx run
func (s *Service) schedule(process *execution.ProcessState, thread *execution.ThreadState, node *execution.JobNode, fx *effects) {
	thread.Active++
	s.stats.Update(stats.Delta{Jobs: 1})
	fx.add(func() { s.dispatch(process, node) })
}

func (s *Service) dispatch(process *execution.ProcessState, node *execution.JobNode) {
	err := s.assign(process, node)
	if err == nil {
		return
	}
	s.logger.Warn("job rejected", "process", process.ID, "function", node.Function.Name, "error", err)
	var fx effects
	process.Lock()
	if thread, ok := process.Thread(node.ThreadID); ok {
		if node.Call == nil {
			s.release(process, node, &fx)
		}
		s.fail(process, thread, node, err, &fx)
		s.jobDone(process, thread, &fx)
	}
	process.Unlock()
	fx.run()
}

// jobDone ends the accounting of one job of thread
func (s *Service) jobDone(process *execution.ProcessState, thread *execution.ThreadState, fx *effects) {
	s.stats.Update(stats.Delta{Jobs: -1})
	s.unholdThread(process, thread, fx)
}

func (s *Service) unholdThread(process *execution.ProcessState, thread *execution.ThreadState, fx *effects) {
	thread.Active--
	if thread.Active == 0 {
		s.endThread(process, thread, fx)
	}
}

// run is the job body assigned to teams
func (s *Service) run(process *execution.ProcessState, node *execution.JobNode) {
	var fx effects
	process.Lock()
	thread, ok := process.Thread(node.ThreadID)
	if !ok {
		process.Unlock()
		s.logger.Debug("job of ended thread", "process", process.ID, "thread", node.ThreadID)
		return
	}
	if s.dropped(process, thread, node, &fx) {
		process.Unlock()
		fx.run()
		return
	}
	if node.Call != nil {
		process.Unlock()
		s.runCall(process, node)
		return
	}
	ready, err := s.resolve(process, thread, node, &fx)
	if err != nil {
		s.release(process, node, &fx)
		s.escalate(process, thread, node, err, &fx)
		s.jobDone(process, thread, &fx)
	}
	if err != nil || !ready {
		process.Unlock()
		fx.run()
		return
	}
	objects := make([]*execution.Container, len(node.Objects))
	copy(objects, node.Objects)
	process.Unlock()
	fx.run()
	fx = nil

	act := newActivation(s, process, node)
	var result interface{}
	err = act.prepare(objects, s.plans[node.Function.Name])
	if err == nil {
		result, err = s.executor.Execute(process.Context, node.Function, node.Parameter, act.bind)
	}
	act.close()

	process.Lock()
	s.completeBody(process, thread, node, result, err, &fx)
	process.Unlock()
	fx.run()
}

// dropped ends node without running it when its work no longer matters
func (s *Service) dropped(process *execution.ProcessState, thread *execution.ThreadState, node *execution.JobNode, fx *effects) bool {
	switch {
	case process.Cancelled:
		thread.Fail(execution.ErrProcessCancelled)
	case thread.Failed(), node.Flow.Aborted():
		s.logger.Debug("job dropped", "process", process.ID, "function", node.Function.Name)
	default:
		return false
	}
	if node.Call == nil {
		s.release(process, node, fx)
	}
	s.jobDone(process, thread, fx)
	return true
}

func (s *Service) completeBody(process *execution.ProcessState, thread *execution.ThreadState, node *execution.JobNode, result interface{}, err error, fx *effects) {
	s.release(process, node, fx)
	switch {
	case process.Cancelled:
		thread.Fail(execution.ErrProcessCancelled)
	case thread.Failed(), node.Flow.Aborted():
		node.TakeRequests()
	case err != nil:
		node.TakeRequests()
		s.escalate(process, thread, node, err, fx)
	default:
		s.startFlows(process, thread, node, result, fx)
	}
	s.jobDone(process, thread, fx)
}

// startFlows starts flows requested by the body of node
func (s *Service) startFlows(process *execution.ProcessState, thread *execution.ThreadState, node *execution.JobNode, result interface{}, fx *effects) {
	node.Result = result
	var sequential []*execution.FlowRequest
	parallel := 0
	for _, request := range node.TakeRequests() {
		switch request.Strategy {
		case graph.StrategySpawn:
			s.spawn(process, thread, node, request, fx)
		case graph.StrategyParallel:
			parallel++
			s.startFlow(process, thread, node, request, fx)
		default:
			sequential = append(sequential, request)
		}
	}
	node.Outstanding = parallel + len(sequential)
	if len(sequential) > 0 {
		s.startFlow(process, thread, node, sequential[0], fx)
		node.Pending = sequential[1:]
	}
	if node.Outstanding == 0 {
		s.completeNode(process, thread, node, fx)
	}
}

func (s *Service) startFlow(process *execution.ProcessState, thread *execution.ThreadState, parent *execution.JobNode, request *execution.FlowRequest, fx *effects) {
	flow := execution.NewFlow(thread.ID, parent, request)
	s.schedule(process, thread, execution.NewJobNode(process.ID, flow, request.Function, request.Parameter), fx)
}

func (s *Service) spawn(process *execution.ProcessState, thread *execution.ThreadState, node *execution.JobNode, request *execution.FlowRequest, fx *effects) {
	child := process.NewThread(&execution.Spawn{ThreadID: thread.ID, Node: node, Request: request})
	if request.Callback != nil {
		thread.Active++
	}
	s.stats.Update(stats.Delta{Threads: 1})
	s.logger.Debug("thread spawned", "process", process.ID, "thread", child.ID, "function", request.Function.Name)
	s.schedule(process, child, execution.NewJobNode(process.ID, child.Root, request.Function, request.Parameter), fx)
}

// completeNode continues with the next function of node or completes its flow
func (s *Service) completeNode(process *execution.ProcessState, thread *execution.ThreadState, node *execution.JobNode, fx *effects) {
	if node.Function.Next != "" {
		next, _ := s.office.Function(node.Function.Next)
		s.schedule(process, thread, execution.NewJobNode(process.ID, node.Flow, next, node.Result), fx)
		return
	}
	s.completeFlow(process, thread, node.Flow, node.Result, fx)
}

func (s *Service) completeFlow(process *execution.ProcessState, thread *execution.ThreadState, flow *execution.Flow, result interface{}, fx *effects) {
	if !flow.Complete(result) || flow.Detached {
		return
	}
	parent := flow.Parent
	if parent == nil {
		if flow == thread.Root {
			thread.Result = result
		}
		return
	}
	if flow.Takeover {
		parent.Result = result
	}
	if request := flow.Request; request != nil && request.Callback != nil {
		call := &execution.Call{Target: parent, Request: request, Flow: flow, Escalation: flow.Handled, Continue: true}
		s.schedule(process, thread, execution.NewCallNode(thread.ID, call), fx)
		return
	}
	s.flowDone(process, thread, parent, flow, fx)
}

// flowDone accounts a completed subflow of parent
func (s *Service) flowDone(process *execution.ProcessState, thread *execution.ThreadState, parent *execution.JobNode, flow *execution.Flow, fx *effects) {
	if flow.Aborted() {
		return
	}
	parent.Outstanding--
	if flow.IsSequential() && len(parent.Pending) > 0 {
		request := parent.Pending[0]
		parent.Pending = parent.Pending[1:]
		s.startFlow(process, thread, parent, request, fx)
	}
	if parent.Outstanding == 0 {
		s.completeNode(process, thread, parent, fx)
	}
}

// runCall runs a flow or thread callback on behalf of its target node
func (s *Service) runCall(process *execution.ProcessState, node *execution.JobNode) {
	call := node.Call
	var err error
	if call.Request.Callback != nil {
		err = s.callback(node.Function.Name, call.Request.Callback, call.Escalation)
	}
	var fx effects
	process.Lock()
	thread, ok := process.Thread(node.ThreadID)
	if !ok {
		process.Unlock()
		return
	}
	switch {
	case process.Cancelled:
		thread.Fail(execution.ErrProcessCancelled)
	case thread.Failed():
	case call.Continue && call.Flow.Aborted():
	case err != nil:
		s.fail(process, thread, node, err, &fx)
	case call.Continue:
		s.flowDone(process, thread, call.Target, call.Flow, &fx)
	}
	s.jobDone(process, thread, &fx)
	process.Unlock()
	fx.run()
}

func (s *Service) callback(name string, callback function.Callback, escalation error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &execution.ExecutionError{Function: name, Cause: fmt.Errorf("callback: %v\n%s", r, debug.Stack()), Panic: true}
		}
	}()
	if err = callback(escalation); err != nil {
		return &execution.ExecutionError{Function: name, Cause: err}
	}
	return nil
}

// endThread runs once no job of thread is queued, running or suspended
func (s *Service) endThread(process *execution.ProcessState, thread *execution.ThreadState, fx *effects) {
	left := process.RemoveThread(thread.ID)
	s.stats.Update(stats.Delta{Threads: -1})
	for _, container := range thread.Containers() {
		s.releaseContainer(process, container, fx)
	}
	switch {
	case thread.ID == process.Main:
		process.Result = thread.Result
		process.Err = thread.Failure
	case thread.Failure != nil:
		process.ThreadFailures = append(process.ThreadFailures, &execution.ThreadFailure{ThreadID: thread.ID, Err: thread.Failure})
		s.stats.Update(stats.Delta{ThreadFailures: 1})
	}
	if thread.Failure != nil {
		s.logger.Warn("thread failed", "process", process.ID, "thread", thread.ID, "error", thread.Failure)
	}
	if spawn := thread.Spawn; spawn != nil && spawn.Request.Callback != nil {
		if parent, ok := process.Thread(spawn.ThreadID); ok {
			call := &execution.Call{Target: spawn.Node, Request: spawn.Request, Escalation: thread.Failure}
			s.schedule(process, parent, execution.NewCallNode(parent.ID, call), fx)
			s.unholdThread(process, parent, fx)
		}
	}
	if left == 0 && process.PendingAsync == 0 {
		s.endProcess(process, fx)
	}
}

// endProcess releases process scoped objects and seals the cleanup sequence
func (s *Service) endProcess(process *execution.ProcessState, fx *effects) {
	if process.State != execution.StateOpen {
		return
	}
	process.State = execution.StateCleaning
	for _, container := range process.ProcessContainers() {
		s.releaseContainer(process, container, fx)
	}
	fx.add(func() {
		process.Cleanup.Seal(func() { s.closeProcess(process) })
	})
}
