package stats

import (
	"sync"
	"time"

	"github.com/viant/floor/internal/clock"
)

// Delta represents an incremental counter change emitted by the processor.
// Fields are signed and can be positive (increment) or negative (decrement).
type Delta struct {
	Processes          int
	Threads            int
	Objects            int
	Jobs               int
	Started            int
	Completed          int
	Failed             int
	Cancelled          int
	ThreadFailures     int
	CleanupEscalations int
}

// Counters represents a snapshot of kernel counters
type Counters struct {
	StartedAt time.Time `json:"startedAt"`

	LiveProcesses int `json:"liveProcesses"`
	LiveThreads   int `json:"liveThreads"`
	LiveObjects   int `json:"liveObjects"`
	ActiveJobs    int `json:"activeJobs"`

	StartedProcesses   int `json:"startedProcesses"`
	CompletedProcesses int `json:"completedProcesses"`
	FailedProcesses    int `json:"failedProcesses"`
	CancelledProcesses int `json:"cancelledProcesses"`
	ThreadFailures     int `json:"threadFailures"`
	CleanupEscalations int `json:"cleanupEscalations"`
}

// Stats aggregates counters, it is safe for concurrent use
type Stats struct {
	mux      sync.Mutex
	counters Counters
	onChange func(Counters)
}

// New creates stats
func New() *Stats {
	return &Stats{counters: Counters{StartedAt: clock.Now()}}
}

// Update applies the delta.  The onChange callback, when set, is called with
// a copy of the counters outside the critical section.
func (s *Stats) Update(d Delta) {
	if s == nil {
		return
	}
	s.mux.Lock()
	c := &s.counters
	c.LiveProcesses += d.Processes
	c.LiveThreads += d.Threads
	c.LiveObjects += d.Objects
	c.ActiveJobs += d.Jobs
	c.StartedProcesses += d.Started
	c.CompletedProcesses += d.Completed
	c.FailedProcesses += d.Failed
	c.CancelledProcesses += d.Cancelled
	c.ThreadFailures += d.ThreadFailures
	c.CleanupEscalations += d.CleanupEscalations
	snapshot := s.counters
	cb := s.onChange
	s.mux.Unlock()
	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the counters
func (s *Stats) Snapshot() Counters {
	if s == nil {
		return Counters{}
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.counters
}

// OnChange registers a callback invoked after every Update, nil disables it
func (s *Stats) OnChange(cb func(Counters)) {
	if s == nil {
		return
	}
	s.mux.Lock()
	s.onChange = cb
	s.mux.Unlock()
}
