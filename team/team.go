package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

var (
	// ErrOverload is returned when a team cannot accept more jobs.
	ErrOverload = errors.New("team: overloaded")

	// ErrNotWorking is returned when a job is assigned outside of the
	// StartWorking/StopWorking bracket.
	ErrNotWorking = errors.New("team: not working")
)

// Job represents a runnable unit of work
type Job interface {
	Run()
}

// JobFunc adapts a plain function to Job
type JobFunc func()

// Run runs the function
func (f JobFunc) Run() { f() }

// Team represents an execution strategy for jobs
type Team interface {
	// StartWorking makes the team available for AssignJob.
	StartWorking(ctx context.Context) error

	// AssignJob schedules the job; Run is eventually called exactly once.
	AssignJob(job Job) error

	// StopWorking stops accepting jobs and waits for accepted jobs to finish.
	StopWorking()
}

// Type represents a team implementation kind
type Type string

const (
	TypePassive   Type = "passive"
	TypePool      Type = "pool"
	TypeDedicated Type = "dedicated"
	TypeOnDemand  Type = "onDemand"
)

// Config represents a serialisable team definition
type Config struct {
	Type          Type `json:"type" yaml:"type"`
	Workers       int  `json:"workers,omitempty" yaml:"workers,omitempty"`
	QueueSize     int  `json:"queueSize,omitempty" yaml:"queueSize,omitempty"`
	MaxConcurrent int  `json:"maxConcurrent,omitempty" yaml:"maxConcurrent,omitempty"`
}

// New creates a team for the supplied config
func New(name string, config Config, logger *slog.Logger) (Team, error) {
	switch config.Type {
	case TypePassive, "":
		return NewPassive(name, logger), nil
	case TypePool:
		return NewPool(name, PoolConfig{Workers: config.Workers, QueueSize: config.QueueSize}, logger), nil
	case TypeDedicated:
		return NewDedicated(name, config.QueueSize, logger), nil
	case TypeOnDemand:
		return NewOnDemand(name, config.MaxConcurrent, logger), nil
	}
	return nil, fmt.Errorf("team %v: unsupported type %q", name, config.Type)
}

// run executes a job, converting a panic into an error so that a worker
// survives a misbehaving job.
func run(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panic: %v\n%s", r, debug.Stack())
		}
	}()
	job.Run()
	return nil
}

func overload(name string, reason string) error {
	return fmt.Errorf("%w: team %v %v", ErrOverload, name, reason)
}
