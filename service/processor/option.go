package processor

import (
	"log/slog"

	"github.com/viant/floor/runtime/execution"
	"github.com/viant/floor/service/allocator"
	"github.com/viant/floor/service/dao"
	"github.com/viant/floor/service/event"
	"github.com/viant/floor/service/executor"
	"github.com/viant/floor/stats"
	"github.com/viant/floor/team"
)

// Option configures the processor
type Option func(*Service)

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithProcessDAO sets the live process table
func WithProcessDAO(processDAO dao.Service[string, execution.ProcessState]) Option {
	return func(s *Service) {
		s.processDAO = processDAO
	}
}

// WithExecutor sets the function body executor
func WithExecutor(executor executor.Service) Option {
	return func(s *Service) {
		s.executor = executor
	}
}

// WithTeam registers a team under name
func WithTeam(name string, t team.Team) Option {
	return func(s *Service) {
		if t == nil {
			return
		}
		s.teams[name] = t
	}
}

// WithSource registers a managed object source
func WithSource(source *Source) Option {
	return func(s *Service) {
		if source == nil {
			return
		}
		s.sources[source.Name] = source
	}
}

// WithAllocator sets the scheduler of delayed invocations
func WithAllocator(allocator *allocator.Service) Option {
	return func(s *Service) {
		s.allocator = allocator
	}
}

// WithEventService publishes process lifecycle events to events
func WithEventService(events *event.Service) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithStats sets the counters updated by the processor
func WithStats(counters *stats.Stats) Option {
	return func(s *Service) {
		s.stats = counters
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
