package execution

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"runtime/debug"
	"sync"

	"github.com/viant/floor/team"
)

// CleanupJob represents one recycle or release step of a managed object
type CleanupJob struct {
	Object string
	Type   reflect.Type
	Run    func(ctx context.Context) error
}

// CleanupSequence runs cleanup jobs one at a time in registration order.  A
// failing job is recorded as a CleanupEscalation and the sequence moves on.
type CleanupSequence struct {
	ctx    context.Context
	team   team.Team
	logger *slog.Logger

	mux         sync.Mutex
	queue       []*CleanupJob
	running     bool
	phase       uint64
	assigning   uint64
	inline      bool
	escalations []*CleanupEscalation
	ran         int
	sealed      bool
	onDrained   func()
}

// NewCleanupSequence creates a sequence assigning jobs to t
func NewCleanupSequence(ctx context.Context, t team.Team, logger *slog.Logger) *CleanupSequence {
	if logger == nil {
		logger = slog.Default()
	}
	if t == nil {
		t = team.NewPassive("cleanup", logger)
	}
	return &CleanupSequence{ctx: ctx, team: t, logger: logger}
}

// Register appends jobs and starts the sequence when idle
func (s *CleanupSequence) Register(jobs ...*CleanupJob) {
	if len(jobs) == 0 {
		return
	}
	s.mux.Lock()
	s.queue = append(s.queue, jobs...)
	if s.running {
		s.mux.Unlock()
		return
	}
	s.running = true
	s.mux.Unlock()
	s.dispatch()
}

// Seal marks registration complete; onDrained is called once the queue is empty
func (s *CleanupSequence) Seal(onDrained func()) {
	s.mux.Lock()
	s.sealed = true
	s.onDrained = onDrained
	idle := !s.running && len(s.queue) == 0
	if idle {
		s.onDrained = nil
	}
	s.mux.Unlock()
	if idle && onDrained != nil {
		onDrained()
	}
}

// Escalations returns recorded failures in the order jobs ran
func (s *CleanupSequence) Escalations() []*CleanupEscalation {
	s.mux.Lock()
	defer s.mux.Unlock()
	return append([]*CleanupEscalation(nil), s.escalations...)
}

// Ran returns number of completed jobs
func (s *CleanupSequence) Ran() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.ran
}

// Pending returns number of queued jobs
func (s *CleanupSequence) Pending() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return len(s.queue)
}

// dispatch assigns queued jobs one at a time.  A job completing while it is
// still being assigned (passive team) hands control back to the loop instead
// of recursing.
func (s *CleanupSequence) dispatch() {
	for {
		s.mux.Lock()
		if len(s.queue) == 0 {
			s.running = false
			var drained func()
			if s.sealed {
				drained, s.onDrained = s.onDrained, nil
			}
			s.mux.Unlock()
			if drained != nil {
				drained()
			}
			return
		}
		job := s.queue[0]
		s.queue = s.queue[1:]
		s.phase++
		phase := s.phase
		s.assigning = phase
		s.inline = false
		s.mux.Unlock()

		err := s.team.AssignJob(team.JobFunc(func() {
			s.run(job)
			if s.finished(phase) {
				s.dispatch()
			}
		}))
		if err != nil {
			s.logger.Warn("cleanup team rejected job, running inline", "object", job.Object, "error", err)
			s.mux.Lock()
			s.assigning = 0
			s.mux.Unlock()
			s.run(job)
			continue
		}
		if !s.assigned(phase) {
			return
		}
	}
}

// finished reports whether the completing job must continue the dispatch
func (s *CleanupSequence) finished(phase uint64) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.assigning == phase {
		s.inline = true
		return false
	}
	return true
}

// assigned reports whether the job already completed within AssignJob
func (s *CleanupSequence) assigned(phase uint64) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.assigning = 0
	if s.inline {
		s.inline = false
		return true
	}
	return false
}

func (s *CleanupSequence) run(job *CleanupJob) {
	err := s.safeRun(job)
	s.mux.Lock()
	s.ran++
	if err != nil {
		s.escalations = append(s.escalations, &CleanupEscalation{Object: job.Object, Type: job.Type, Err: err})
	}
	s.mux.Unlock()
	if err != nil {
		s.logger.Warn("cleanup escalation", "object", job.Object, "error", err)
	}
}

func (s *CleanupSequence) safeRun(job *CleanupJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cleanup panic: %v\n%s", r, debug.Stack())
		}
	}()
	if job.Run == nil {
		return nil
	}
	return job.Run(s.ctx)
}
