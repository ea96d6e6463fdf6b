package floor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/floor/model"
	"github.com/viant/floor/runtime/execution"
	"github.com/viant/floor/service/allocator"
	"github.com/viant/floor/service/dao"
	"github.com/viant/floor/service/event"
	"github.com/viant/floor/service/executor"
	"github.com/viant/floor/service/meta"
	"github.com/viant/floor/service/processor"
	"github.com/viant/floor/stats"
	"github.com/viant/floor/team"
)

// Service builds a floor for an office
type Service struct {
	runtime         *Runtime
	office          *model.Office
	config          *Config
	configURL       string
	logger          *slog.Logger
	teams           map[string]team.Team
	sources         []*processor.Source
	eventService    *event.Service
	metaService     *meta.Service
	metaBaseURL     string
	processDAO      dao.Service[string, execution.ProcessState]
	executorOptions []executor.Option
	issues          []error
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if len(s.issues) > 0 {
		return errors.Join(s.issues...)
	}
	if err := s.ensureBaseSetup(); err != nil {
		return err
	}
	for name, teamConfig := range s.config.Teams {
		if _, ok := s.teams[name]; ok {
			continue
		}
		t, err := team.New(name, teamConfig, s.logger)
		if err != nil {
			return err
		}
		s.teams[name] = t
	}

	counters := stats.New()
	executorOptions := append([]executor.Option{executor.WithListener(executor.LogListener(s.logger))}, s.executorOptions...)
	processorOptions := []processor.Option{
		processor.WithConfig(processor.Config{
			DefaultTeam:  s.config.DefaultTeam,
			CleanupTeam:  s.config.CleanupTeam,
			AsyncTimeout: s.config.AsyncTimeout,
		}),
		processor.WithLogger(s.logger),
		processor.WithStats(counters),
		processor.WithExecutor(executor.NewService(executorOptions...)),
		processor.WithAllocator(allocator.New(allocator.Config{PollingInterval: s.config.SchedulerInterval}, s.logger)),
	}
	if s.processDAO != nil {
		processorOptions = append(processorOptions, processor.WithProcessDAO(s.processDAO))
	}
	if s.eventService != nil {
		processorOptions = append(processorOptions, processor.WithEventService(s.eventService))
	}
	for name, t := range s.teams {
		processorOptions = append(processorOptions, processor.WithTeam(name, t))
	}
	for _, source := range s.sources {
		processorOptions = append(processorOptions, processor.WithSource(source))
	}
	var err error
	if s.runtime.processor, err = processor.New(s.office, processorOptions...); err != nil {
		return err
	}
	s.runtime.config = s.config
	return nil
}

func (s *Service) ensureBaseSetup() error {
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metaService == nil {
		s.metaService = meta.New(afs.New(), s.metaBaseURL)
	}
	if s.config == nil && s.configURL != "" {
		config, err := loadConfig(context.Background(), s.metaService, s.configURL)
		if err != nil {
			return err
		}
		s.config = config
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	s.config = s.config.withDefaults()
	return nil
}

// Runtime returns the floor runtime
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// MetaService returns the document loader used for configuration
func (s *Service) MetaService() *meta.Service {
	return s.metaService
}

// New validates office and binds it to the configured teams and sources
func New(office *model.Office, options ...Option) (*Service, error) {
	if office == nil {
		return nil, fmt.Errorf("office was nil")
	}
	ret := &Service{runtime: &Runtime{}, office: office, teams: make(map[string]team.Team)}
	if err := ret.init(options); err != nil {
		return nil, fmt.Errorf("failed to build floor %v: %w", office.Name, err)
	}
	return ret, nil
}
