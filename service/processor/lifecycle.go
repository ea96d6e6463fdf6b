package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/floor/managed"
	"github.com/viant/floor/runtime/execution"
	"github.com/viant/floor/service/event"
	"github.com/viant/floor/stats"
	"github.com/viant/floor/tracing"
)

// closeProcess runs once the cleanup sequence of process drained
func (s *Service) closeProcess(process *execution.ProcessState) {
	process.Lock()
	process.State = execution.StateClosed
	outcome := process.Outcome()
	listeners := process.Listeners
	cancelled := process.Cancelled
	process.Unlock()
	if process.CancelFunc != nil {
		process.CancelFunc()
	}
	if err := s.processDAO.Delete(context.Background(), process.ID); err != nil {
		s.logger.Debug("failed to remove process", "process", process.ID, "error", err)
	}

	delta := stats.Delta{Processes: -1, CleanupEscalations: len(outcome.CleanupEscalations)}
	switch {
	case cancelled || errors.Is(outcome.Err, execution.ErrProcessCancelled):
		delta.Cancelled = 1
	case outcome.Err != nil:
		delta.Failed = 1
	default:
		delta.Completed = 1
	}
	s.stats.Update(delta)
	for _, escalation := range outcome.CleanupEscalations {
		s.logger.Warn("cleanup failed", "process", process.ID, "object", escalation.Object, "error", escalation.Err)
	}
	s.publish(outcome)
	tracing.EndSpan(process.Span, outcome.Err)
	s.logger.Debug("process completed", "process", process.ID, "function", process.Name, "elapsed", outcome.TimeTaken, "error", outcome.Err)

	process.Handle.Complete(outcome)
	for _, listener := range listeners {
		listener(outcome)
	}
	s.live.Done()
}

// publish emits lifecycle events of a completed process
func (s *Service) publish(outcome *execution.Outcome) {
	if s.events == nil {
		return
	}
	eventType := event.TypeProcessCompleted
	if outcome.Err != nil {
		eventType = event.TypeProcessFailed
	}
	elapsed := int(outcome.TimeTaken / time.Millisecond)
	publisher := event.PublisherOf[*execution.Outcome](s.events)
	s.tryPublish(publisher.TryPublish(event.NewEvent(&event.Context{ProcessID: outcome.ProcessID, EventType: eventType, Name: outcome.Name, TimeTakenMs: elapsed}, outcome)))
	if len(outcome.ThreadFailures) > 0 {
		failures := event.PublisherOf[*execution.ThreadFailure](s.events)
		for _, failure := range outcome.ThreadFailures {
			s.tryPublish(failures.TryPublish(event.NewEvent(&event.Context{ProcessID: outcome.ProcessID, ThreadID: failure.ThreadID, EventType: event.TypeThreadFailed, Name: outcome.Name}, failure)))
		}
	}
	if len(outcome.CleanupEscalations) > 0 {
		escalations := event.PublisherOf[*execution.CleanupEscalation](s.events)
		for _, escalation := range outcome.CleanupEscalations {
			s.tryPublish(escalations.TryPublish(event.NewEvent(&event.Context{ProcessID: outcome.ProcessID, EventType: event.TypeCleanupFailed, Name: escalation.Object}, escalation)))
		}
	}
}

func (s *Service) tryPublish(err error) {
	if err != nil {
		s.logger.Debug("event dropped", "error", err)
	}
}

// executeContext lets a started source instigate processes
type executeContext struct {
	service *Service
	source  *Source
}

// InvokeProcess starts a process at the function configured for flow
func (e *executeContext) InvokeProcess(flow int, parameter interface{}, object managed.Object, delay time.Duration, callback managed.FlowCallback) error {
	s := e.service
	if flow < 0 || flow >= len(e.source.Flows) {
		return fmt.Errorf("source %v: flow %v out of range [0,%v)", e.source.Name, flow, len(e.source.Flows))
	}
	fn, ok := s.office.Function(e.source.Flows[flow])
	if !ok {
		return fmt.Errorf("source %v: %w: %v", e.source.Name, execution.ErrUnknownFunction, e.source.Flows[flow])
	}
	var in *inbound
	if object != nil {
		if e.source.object == "" {
			return fmt.Errorf("source %v: no managed object is bound to it", e.source.Name)
		}
		in = &inbound{name: e.source.object, object: object}
	}
	var listener func(*execution.Outcome)
	if callback != nil {
		listener = func(outcome *execution.Outcome) { callback(outcome.Err) }
	}
	invoke := func() error {
		_, err := s.invoke(context.Background(), fn, parameter, in, listener)
		return err
	}
	if delay <= 0 {
		return invoke()
	}
	s.allocator.Schedule(delay, func() {
		if err := invoke(); err != nil {
			s.logger.Warn("scheduled invocation failed", "source", e.source.Name, "function", fn.Name, "error", err)
			if callback != nil {
				callback(err)
			}
		}
	})
	return nil
}
