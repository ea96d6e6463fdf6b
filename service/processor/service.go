package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/viant/floor/managed"
	"github.com/viant/floor/managed/pool"
	"github.com/viant/floor/model"
	"github.com/viant/floor/model/graph"
	"github.com/viant/floor/runtime/execution"
	"github.com/viant/floor/service/allocator"
	"github.com/viant/floor/service/dao"
	"github.com/viant/floor/service/dao/process/memory"
	"github.com/viant/floor/service/event"
	"github.com/viant/floor/service/executor"
	"github.com/viant/floor/stats"
	"github.com/viant/floor/team"
	"github.com/viant/floor/tracing"
)

// Config represents processor configuration
type Config struct {
	// DefaultTeam runs functions that do not name a team
	DefaultTeam string
	// CleanupTeam runs recycle jobs; a passive team is used when not registered
	CleanupTeam string
	// AsyncTimeout bounds pending asynchronous operations of objects without
	// their own timeout
	AsyncTimeout time.Duration
}

// DefaultConfig returns the default processor configuration
func DefaultConfig() Config {
	return Config{
		DefaultTeam:  "default",
		CleanupTeam:  "cleanup",
		AsyncTimeout: 10 * time.Second,
	}
}

// Source registers a managed object source with the processor
type Source struct {
	Name   string
	Source managed.Source
	// PoolSize pools sourced objects when not zero, negative means unbounded
	PoolSize int
	// Pool overrides the pool created for PoolSize
	Pool pool.Pool
	// Flows lists functions the source may instigate with InvokeProcess, by index
	Flows []string

	object string
}

type (
	binding struct {
		object *graph.ManagedObject
		source *Source
	}

	// resolution is one step of a function's object resolution plan
	resolution struct {
		name     string
		scope    graph.Scope
		typ      reflect.Type
		binding  *binding
		declared int
	}
)

// Service is the process scheduler of a floor
type Service struct {
	config     Config
	office     *model.Office
	teams      map[string]team.Team
	sources    map[string]*Source
	bindings   map[string]*binding
	plans      map[string][]*resolution
	processDAO dao.Service[string, execution.ProcessState]
	executor   executor.Service
	allocator  *allocator.Service
	events     *event.Service
	stats      *stats.Stats
	logger     *slog.Logger
	fallback   team.Team

	mux     sync.Mutex
	started bool
	closed  bool
	live    sync.WaitGroup
}

// New binds office to the registered sources and teams
func New(office *model.Office, options ...Option) (*Service, error) {
	if office == nil {
		return nil, fmt.Errorf("office was nil")
	}
	s := &Service{
		config:   DefaultConfig(),
		office:   office,
		teams:    make(map[string]team.Team),
		sources:  make(map[string]*Source),
		bindings: make(map[string]*binding),
		plans:    make(map[string][]*resolution),
		logger:   slog.Default(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.processDAO == nil {
		s.processDAO = memory.New()
	}
	if s.executor == nil {
		s.executor = executor.NewService(executor.WithListener(executor.LogListener(s.logger)))
	}
	if s.allocator == nil {
		s.allocator = allocator.New(allocator.DefaultConfig(), s.logger)
	}
	if s.stats == nil {
		s.stats = stats.New()
	}
	if s.config.AsyncTimeout <= 0 {
		s.config.AsyncTimeout = DefaultConfig().AsyncTimeout
	}
	s.fallback = team.NewPassive(s.config.DefaultTeam, s.logger)
	if err := s.bind(); err != nil {
		return nil, err
	}
	return s, nil
}

// bind validates the office and builds object bindings and resolution plans
func (s *Service) bind() error {
	if issues := s.office.Validate(); len(issues) > 0 {
		return fmt.Errorf("office %v: %w", s.office.Name, errors.Join(issues...))
	}
	var issues []error
	for _, object := range s.office.Objects {
		source, ok := s.sources[object.Source]
		if !ok || source.Source == nil {
			issues = append(issues, fmt.Errorf("object %v: unknown source %v", object.Name, object.Source))
			continue
		}
		if source.Pool == nil && source.PoolSize != 0 {
			size := source.PoolSize
			if size < 0 {
				size = 0
			}
			source.Pool = pool.New(source.Source, size)
		}
		if source.object == "" {
			source.object = object.Name
		}
		s.bindings[object.Name] = &binding{object: object, source: source}
	}
	for _, source := range s.sources {
		for _, name := range source.Flows {
			if _, ok := s.office.Function(name); !ok {
				issues = append(issues, fmt.Errorf("source %v: %w: %v", source.Name, execution.ErrUnknownFunction, name))
			}
		}
	}
	for _, fn := range s.office.Functions {
		if fn.Team != "" {
			if _, ok := s.teams[fn.Team]; !ok {
				issues = append(issues, fmt.Errorf("function %v: unknown team %v", fn.Name, fn.Team))
			}
		}
	}
	if len(issues) > 0 {
		return errors.Join(issues...)
	}
	for _, fn := range s.office.Functions {
		s.plans[fn.Name] = s.plan(fn)
	}
	return nil
}

// plan lists objects of fn with their dependencies first
func (s *Service) plan(fn *graph.Function) []*resolution {
	var ret []*resolution
	seen := make(map[string]bool)
	var visit func(name string, scope graph.Scope, typ reflect.Type, declared int)
	visit = func(name string, scope graph.Scope, typ reflect.Type, declared int) {
		b := s.bindings[name]
		key := string(scope) + ":" + name
		if declared < 0 && seen[key] {
			return
		}
		seen[key] = true
		for _, dependency := range b.object.Dependencies {
			depBinding := s.bindings[dependency]
			visit(dependency, scopeOf(depBinding.object), depBinding.object.Type, -1)
		}
		ret = append(ret, &resolution{name: name, scope: scope, typ: typ, binding: b, declared: declared})
	}
	for i, ref := range fn.Objects {
		b := s.bindings[ref.Name]
		visit(ref.Name, ref.ScopeOf(b.object), ref.TypeOf(b.object), i)
	}
	return ret
}

func scopeOf(object *graph.ManagedObject) graph.Scope {
	if object.Scope.IsValid() {
		return object.Scope
	}
	return graph.ScopeProcess
}

// Start starts teams, sources and the allocator
func (s *Service) Start(ctx context.Context) error {
	s.mux.Lock()
	if s.closed {
		s.mux.Unlock()
		return execution.ErrFloorClosed
	}
	if s.started {
		s.mux.Unlock()
		return nil
	}
	for name, t := range s.teams {
		if err := t.StartWorking(ctx); err != nil {
			s.mux.Unlock()
			return fmt.Errorf("failed to start team %v: %w", name, err)
		}
	}
	s.started = true
	s.mux.Unlock()

	go func() {
		if err := s.allocator.Start(context.WithoutCancel(ctx)); err != nil {
			s.logger.Debug("allocator stopped", "error", err)
		}
	}()
	for _, source := range s.sources {
		if err := source.Source.Start(&executeContext{service: s, source: source}); err != nil {
			return fmt.Errorf("failed to start source %v: %w", source.Name, err)
		}
	}
	return nil
}

// Shutdown cancels live processes, waits for them to drain and stops sources
// and teams.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mux.Lock()
	if s.closed {
		s.mux.Unlock()
		return nil
	}
	s.closed = true
	started := s.started
	s.mux.Unlock()

	if dropped := s.allocator.Shutdown(); dropped > 0 {
		s.logger.Info("dropped scheduled invocations", "count", dropped)
	}
	if processes, err := s.processDAO.List(ctx); err == nil {
		for _, process := range processes {
			s.cancel(process)
		}
	}
	drained := make(chan struct{})
	go func() {
		s.live.Wait()
		close(drained)
	}()
	var err error
	select {
	case <-drained:
	case <-ctx.Done():
		err = fmt.Errorf("processes did not drain: %w", ctx.Err())
	}
	for _, source := range s.sources {
		if source.Pool != nil {
			source.Pool.Empty()
		}
		if started {
			source.Source.Stop()
		}
	}
	if started {
		for _, t := range s.teams {
			t.StopWorking()
		}
	}
	return err
}

// InvokeFunction starts a process at the named function
func (s *Service) InvokeFunction(ctx context.Context, name string, parameter interface{}) (*execution.Handle, error) {
	fn, ok := s.office.Function(name)
	if !ok {
		return nil, fmt.Errorf("%w: %v", execution.ErrUnknownFunction, name)
	}
	return s.invoke(ctx, fn, parameter, nil, nil)
}

// InvokeWork starts a process at the initial function of the named work
func (s *Service) InvokeWork(ctx context.Context, name string, parameter interface{}) (*execution.Handle, error) {
	work, ok := s.office.Work(name)
	if !ok {
		return nil, fmt.Errorf("unknown work: %v", name)
	}
	if work.Initial == "" {
		return nil, fmt.Errorf("work %v: %w", name, execution.ErrNoInitialFunction)
	}
	return s.InvokeFunction(ctx, work.Initial, parameter)
}

// Process returns the live process with id
func (s *Service) Process(ctx context.Context, id string) (*execution.Info, error) {
	process, err := s.processDAO.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return process.Info(), nil
}

// Processes lists live processes, optionally filtered by parameters
func (s *Service) Processes(ctx context.Context, parameters ...*dao.Parameter) ([]*execution.Info, error) {
	processes, err := s.processDAO.List(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	var ret = make([]*execution.Info, 0, len(processes))
	for _, process := range processes {
		ret = append(ret, process.Info())
	}
	return ret, nil
}

// Cancel cancels the live process with id
func (s *Service) Cancel(ctx context.Context, id string) error {
	process, err := s.processDAO.Load(ctx, id)
	if err != nil {
		return err
	}
	s.cancel(process)
	return nil
}

// Stats returns a snapshot of floor counters
func (s *Service) Stats() stats.Counters {
	return s.stats.Snapshot()
}

// inbound is an object handed over by a source with InvokeProcess
type inbound struct {
	name   string
	object managed.Object
}

func (s *Service) invoke(ctx context.Context, fn *graph.Function, parameter interface{}, in *inbound, listener func(*execution.Outcome)) (*execution.Handle, error) {
	s.mux.Lock()
	if s.closed || !s.started {
		s.mux.Unlock()
		return nil, execution.ErrFloorClosed
	}
	s.live.Add(1)
	s.mux.Unlock()

	processCtx, span := tracing.StartSpan(context.WithoutCancel(ctx), tracing.SpanProcess, "INTERNAL")
	span.WithAttributes(map[string]string{"process.function": fn.Name})
	processCtx, cancel := context.WithCancel(processCtx)
	cleanup := execution.NewCleanupSequence(context.WithoutCancel(processCtx), s.cleanupTeam(), s.logger)
	process := execution.NewProcessState(processCtx, "", fn.Name, cleanup)
	process.Span = span
	process.CancelFunc = cancel
	process.Handle = execution.NewHandle(process.ID, func() { s.cancel(process) })
	if listener != nil {
		process.Listeners = append(process.Listeners, listener)
	}

	process.Lock()
	thread := process.NewThread(nil)
	var container *execution.Container
	if in != nil {
		container, _ = process.Container(graph.ScopeProcess, in.name, thread, nil)
	}
	node := execution.NewJobNode(process.ID, thread.Root, fn, parameter)
	thread.Active++
	process.Unlock()
	if container != nil {
		s.attach(process, container, in.object)
		process.Lock()
		container.Bind(in.object)
		process.Unlock()
		s.stats.Update(stats.Delta{Objects: 1})
	}

	if err := s.processDAO.Save(ctx, process); err != nil {
		s.logger.Warn("failed to register process", "process", process.ID, "error", err)
	}
	s.stats.Update(stats.Delta{Processes: 1, Threads: 1, Jobs: 1, Started: 1})
	s.logger.Debug("process started", "process", process.ID, "function", fn.Name)

	if err := s.assign(process, node); err != nil {
		var fx effects
		process.Lock()
		// err is returned to the submitter, listeners are not told again
		process.Listeners = nil
		thread.Fail(err)
		s.jobDone(process, thread, &fx)
		process.Unlock()
		fx.run()
		return nil, err
	}
	return process.Handle, nil
}

func (s *Service) teamOf(fn *graph.Function) (string, team.Team) {
	name := fn.Team
	if name == "" {
		name = s.config.DefaultTeam
	}
	if t, ok := s.teams[name]; ok {
		return name, t
	}
	return name, s.fallback
}

func (s *Service) cleanupTeam() team.Team {
	if t, ok := s.teams[s.config.CleanupTeam]; ok {
		return t
	}
	return nil
}

func (s *Service) timeoutOf(name string) time.Duration {
	if b, ok := s.bindings[name]; ok && b.object.Timeout > 0 {
		return b.object.Timeout
	}
	return s.config.AsyncTimeout
}
