package team

import (
	"context"
	"log/slog"
)

// Passive runs every job synchronously on the caller's goroutine.  It is used
// for cheap work such as cleanup where a goroutine hand-off costs more than
// the job itself.
type Passive struct {
	name   string
	logger *slog.Logger
}

// NewPassive creates a passive team, a nil logger uses slog.Default
func NewPassive(name string, logger *slog.Logger) *Passive {
	if logger == nil {
		logger = slog.Default()
	}
	return &Passive{name: name, logger: logger}
}

// Name returns team name
func (p *Passive) Name() string { return p.name }

// StartWorking is a no-op, a passive team is always available
func (p *Passive) StartWorking(context.Context) error { return nil }

// AssignJob runs the job before returning.  A panicking job is logged, the
// job was still run so no error is returned.
func (p *Passive) AssignJob(job Job) error {
	if err := run(job); err != nil {
		p.logger.Error("team job failed", "team", p.name, "error", err)
	}
	return nil
}

// StopWorking is a no-op
func (p *Passive) StopWorking() {}
