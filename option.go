package floor

import (
	"log/slog"

	"github.com/viant/floor/managed"
	"github.com/viant/floor/managed/pool"
	"github.com/viant/floor/runtime/execution"
	"github.com/viant/floor/service/dao"
	"github.com/viant/floor/service/event"
	"github.com/viant/floor/service/executor"
	"github.com/viant/floor/service/meta"
	"github.com/viant/floor/service/processor"
	"github.com/viant/floor/team"
	"github.com/viant/floor/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures a Service
type Option func(s *Service)

// WithConfig sets the floor configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithConfigURL loads the configuration from location with the meta service
func WithConfigURL(location string) Option {
	return func(s *Service) {
		s.configURL = location
	}
}

// WithLogger sets the logger shared by all kernel services
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTeam registers a team instance, it takes precedence over a configured
// team with the same name.
func WithTeam(name string, t team.Team) Option {
	return func(s *Service) {
		s.teams[name] = t
	}
}

// WithSource registers a managed object source under name
func WithSource(name string, source managed.Source, flows ...string) Option {
	return func(s *Service) {
		s.sources = append(s.sources, &processor.Source{Name: name, Source: source, Flows: flows})
	}
}

// WithPooledSource registers a managed object source whose objects are
// pooled, size <= 0 means unbounded.
func WithPooledSource(name string, source managed.Source, size int, flows ...string) Option {
	return func(s *Service) {
		if size <= 0 {
			size = -1
		}
		s.sources = append(s.sources, &processor.Source{Name: name, Source: source, PoolSize: size, Flows: flows})
	}
}

// WithSourcePool registers a managed object source served through a custom pool
func WithSourcePool(name string, source managed.Source, objects pool.Pool, flows ...string) Option {
	return func(s *Service) {
		s.sources = append(s.sources, &processor.Source{Name: name, Source: source, Pool: objects, Flows: flows})
	}
}

// WithEventService publishes process lifecycle events
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.eventService = service
	}
}

// WithMetaService sets the meta service
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) {
		s.metaService = service
	}
}

// WithMetaBaseURL sets the meta base URL
func WithMetaBaseURL(url string) Option {
	return func(s *Service) {
		s.metaBaseURL = url
	}
}

// WithProcessDAO sets the live process table
func WithProcessDAO(dao dao.Service[string, execution.ProcessState]) Option {
	return func(s *Service) {
		s.processDAO = dao
	}
}

// WithExecutorOptions lets the caller supply additional options passed to
// executor.NewService (e.g. disabling the default log listener).
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(s *Service) {
		s.executorOptions = append(s.executorOptions, opts...)
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		if err := tracing.Init(serviceName, serviceVersion, outputFile); err != nil {
			s.issues = append(s.issues, err)
		}
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter, for
// example OTLP, Jaeger or Zipkin. The first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		if err := tracing.InitWithExporter(serviceName, serviceVersion, exporter); err != nil {
			s.issues = append(s.issues, err)
		}
	}
}
