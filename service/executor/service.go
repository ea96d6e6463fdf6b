package executor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/viant/floor/function"
	"github.com/viant/floor/model/graph"
	"github.com/viant/floor/runtime/execution"
	"github.com/viant/floor/tracing"
)

// Listener is invoked once a function body returns (regardless of whether it
// returned an error or not).
type Listener func(fn *graph.Function, parameter, result interface{}, err error)

// LogListener returns a listener logging every execution at debug level
func LogListener(logger *slog.Logger) Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return func(fn *graph.Function, parameter, result interface{}, err error) {
		if err != nil {
			logger.Debug("function failed", "function", fn.Name, "error", err)
			return
		}
		logger.Debug("function executed", "function", fn.Name)
	}
}

// Option is used to customise the executor instance.
type Option func(*service)

// WithListener overrides the listener invoked after every executed function.
// Passing nil disables the callback entirely.
func WithListener(l Listener) Option {
	return func(s *service) {
		s.listener = l
	}
}

// Binder creates the context handed to a body from the execution context
type Binder func(ctx context.Context) function.Context

// Service represents a function body executor.
type Service interface {
	// Execute runs the body of fn, a returned error is an *execution.ExecutionError
	Execute(ctx context.Context, fn *graph.Function, parameter interface{}, bind Binder) (interface{}, error)
}

type service struct {
	listener Listener
}

// Execute runs the function body within a tracing span
func (s *service) Execute(ctx context.Context, fn *graph.Function, parameter interface{}, bind Binder) (result interface{}, err error) {
	ctx, span := tracing.StartSpan(ctx, tracing.SpanFunction, "INTERNAL")
	span.WithAttributes(map[string]string{"function.name": fn.Name, "function.team": fn.Team})
	defer func() {
		tracing.EndSpan(span, err)
		if s.listener != nil {
			s.listener(fn, parameter, result, err)
		}
	}()
	if fn.Body == nil {
		return nil, &execution.ExecutionError{Function: fn.Name, Cause: ErrBodyMissing}
	}
	fnCtx := bind(ctx)
	if fn.Parameter != nil {
		converted, convErr := function.ConvertTo(parameter, fn.Parameter)
		if convErr != nil {
			return nil, &execution.ExecutionError{Function: fn.Name, Cause: convErr}
		}
		fnCtx = &parameterContext{Context: fnCtx, parameter: converted}
	}
	result, err = s.execute(fn, fnCtx)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// parameterContext exposes the converted parameter
type parameterContext struct {
	function.Context
	parameter interface{}
}

func (c *parameterContext) Parameter() interface{} { return c.parameter }

func (s *service) execute(fn *graph.Function, ctx function.Context) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &execution.ExecutionError{Function: fn.Name, Cause: fmt.Errorf("%v\n%s", r, debug.Stack()), Panic: true}
		}
	}()
	if result, err = fn.Body.Execute(ctx); err != nil {
		return nil, &execution.ExecutionError{Function: fn.Name, Cause: err}
	}
	return result, nil
}

// NewService creates a new executor service instance.
func NewService(opts ...Option) Service {
	s := &service{}
	for _, o := range opts {
		o(s)
	}
	return s
}
