package floor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/floor/service/meta"
	"github.com/viant/floor/team"
)

// Config is a serialisable representation of the floor configuration. It can
// be populated from YAML or JSON; zero fields inherit DefaultConfig values.
type Config struct {
	// Teams declares the teams functions are assigned to, by name
	Teams map[string]team.Config `json:"teams,omitempty" yaml:"teams,omitempty"`
	// DefaultTeam runs functions that do not name a team
	DefaultTeam string `json:"defaultTeam,omitempty" yaml:"defaultTeam,omitempty"`
	// CleanupTeam runs the recycle jobs of process cleanup sequences
	CleanupTeam string `json:"cleanupTeam,omitempty" yaml:"cleanupTeam,omitempty"`
	// AsyncTimeout bounds asynchronous operations of objects without their own timeout
	AsyncTimeout time.Duration `json:"asyncTimeout,omitempty" yaml:"asyncTimeout,omitempty"`
	// SchedulerInterval is the polling interval of delayed invocations
	SchedulerInterval time.Duration `json:"schedulerInterval,omitempty" yaml:"schedulerInterval,omitempty"`
	// CloseTimeout bounds how long Close waits for live processes, zero waits
	// for the caller's context only
	CloseTimeout time.Duration `json:"closeTimeout,omitempty" yaml:"closeTimeout,omitempty"`
}

// DefaultConfig returns a Config populated with the default values used by
// the kernel constructors. Callers may modify the returned struct before
// passing it to WithConfig.
func DefaultConfig() *Config {
	return &Config{
		DefaultTeam:       "default",
		CleanupTeam:       "cleanup",
		AsyncTimeout:      10 * time.Second,
		SchedulerInterval: 20 * time.Millisecond,
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var issues []error
	for name, teamConfig := range c.Teams {
		switch teamConfig.Type {
		case "", team.TypePassive, team.TypePool, team.TypeDedicated, team.TypeOnDemand:
		default:
			issues = append(issues, fmt.Errorf("teams.%v.type: unsupported %q", name, teamConfig.Type))
		}
		if teamConfig.Workers < 0 {
			issues = append(issues, fmt.Errorf("teams.%v.workers must be >= 0", name))
		}
		if teamConfig.QueueSize < 0 {
			issues = append(issues, fmt.Errorf("teams.%v.queueSize must be >= 0", name))
		}
		if teamConfig.MaxConcurrent < 0 {
			issues = append(issues, fmt.Errorf("teams.%v.maxConcurrent must be >= 0", name))
		}
	}
	if c.AsyncTimeout < 0 {
		issues = append(issues, fmt.Errorf("asyncTimeout must be >= 0"))
	}
	if c.SchedulerInterval < 0 {
		issues = append(issues, fmt.Errorf("schedulerInterval must be >= 0"))
	}
	if c.CloseTimeout < 0 {
		issues = append(issues, fmt.Errorf("closeTimeout must be >= 0"))
	}
	return errors.Join(issues...)
}

// withDefaults fills zero fields from DefaultConfig
func (c *Config) withDefaults() *Config {
	defaults := DefaultConfig()
	ret := *c
	if ret.DefaultTeam == "" {
		ret.DefaultTeam = defaults.DefaultTeam
	}
	if ret.CleanupTeam == "" {
		ret.CleanupTeam = defaults.CleanupTeam
	}
	if ret.AsyncTimeout == 0 {
		ret.AsyncTimeout = defaults.AsyncTimeout
	}
	if ret.SchedulerInterval == 0 {
		ret.SchedulerInterval = defaults.SchedulerInterval
	}
	return &ret
}

// LoadConfig loads and validates the YAML (or JSON) configuration at URL,
// ${env.NAME} expressions are expanded before decoding.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	return loadConfig(ctx, meta.New(afs.New(), ""), URL)
}

func loadConfig(ctx context.Context, metaService *meta.Service, location string) (*Config, error) {
	config := DefaultConfig()
	if err := metaService.Load(ctx, location, config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", metaService.URL(location), err)
	}
	return config, nil
}
