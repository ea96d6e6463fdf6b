package processor

import (
	"github.com/viant/floor/model/graph"
	"github.com/viant/floor/runtime/execution"
)

// fail routes err raised while running node
func (s *Service) fail(process *execution.ProcessState, thread *execution.ThreadState, node *execution.JobNode, err error, fx *effects) {
	call := node.Call
	switch {
	case call == nil:
		s.escalate(process, thread, node, err, fx)
	case call.Continue:
		s.escalate(process, thread, call.Target, err, fx)
	default:
		s.escalateDetached(process, thread, call.Target, err, fx)
	}
}

// escalate looks for a handler of err at node, then at the instigators of
// its enclosing flows, then in the office.  An unhandled err fails the thread.
func (s *Service) escalate(process *execution.ProcessState, thread *execution.ThreadState, node *execution.JobNode, err error, fx *effects) {
	if escalation := graph.MatchEscalation(node.Function.Escalations, err); escalation != nil {
		s.handle(process, thread, node, nil, escalation, err, fx)
		return
	}
	for flow := node.Flow; flow.Parent != nil && !flow.Detached; flow = flow.Parent.Flow {
		if flow.Escalation {
			continue
		}
		parent := flow.Parent
		if escalation := graph.MatchEscalation(parent.Function.Escalations, err); escalation != nil {
			s.handle(process, thread, parent, flow, escalation, err, fx)
			return
		}
	}
	s.escalateOffice(process, thread, node.Flow, err, fx)
}

// escalateDetached handles a failed thread callback of node, whose own flows
// may have completed already.
func (s *Service) escalateDetached(process *execution.ProcessState, thread *execution.ThreadState, node *execution.JobNode, err error, fx *effects) {
	if escalation := graph.MatchEscalation(node.Function.Escalations, err); escalation != nil {
		handler, _ := s.office.Function(escalation.Function)
		flow := execution.NewFlow(thread.ID, nil, nil)
		flow.Escalation = true
		flow.Detached = true
		s.logger.Debug("escalation handled", "process", process.ID, "function", node.Function.Name, "handler", handler.Name, "error", err)
		s.schedule(process, thread, execution.NewJobNode(process.ID, flow, handler, err), fx)
		return
	}
	s.escalateOffice(process, thread, thread.Root, err, fx)
}

func (s *Service) escalateOffice(process *execution.ProcessState, thread *execution.ThreadState, flow *execution.Flow, err error, fx *effects) {
	if !flow.InOffice() {
		if escalation := graph.MatchEscalation(s.office.Escalations, err); escalation != nil {
			handler, _ := s.office.Function(escalation.Function)
			thread.Root.Abort()
			root := execution.NewFlow(thread.ID, nil, nil)
			root.Escalation = true
			root.Office = true
			thread.Root = root
			s.logger.Debug("office escalation", "process", process.ID, "thread", thread.ID, "handler", handler.Name, "error", err)
			s.schedule(process, thread, execution.NewJobNode(process.ID, root, handler, err), fx)
			return
		}
	}
	thread.Fail(err)
}

// handle runs the handler of escalation at node.  With child nil the handler
// takes over the flows of node; otherwise it replaces child in its slot.
func (s *Service) handle(process *execution.ProcessState, thread *execution.ThreadState, node *execution.JobNode, child *execution.Flow, escalation *graph.Escalation, err error, fx *effects) {
	handler, _ := s.office.Function(escalation.Function)
	var flow *execution.Flow
	if child == nil {
		node.AbortChildren()
		node.Outstanding = 1
		flow = execution.NewFlow(thread.ID, node, nil)
		flow.Takeover = true
	} else {
		child.Abort()
		flow = execution.NewFlow(thread.ID, node, child.Request)
		flow.Handled = err
	}
	flow.Escalation = true
	s.logger.Debug("escalation handled", "process", process.ID, "function", node.Function.Name, "handler", handler.Name, "error", err)
	s.schedule(process, thread, execution.NewJobNode(process.ID, flow, handler, err), fx)
}
