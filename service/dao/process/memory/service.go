// Package memory provides the in-memory table of live processes.
package memory

import (
	"github.com/viant/floor/runtime/execution"
	"github.com/viant/floor/service/dao"
	"github.com/viant/floor/service/dao/criteria"
	"github.com/viant/floor/service/dao/store"
)

// Service keeps live processes by id; List filters by process state and
// initial function name.
type Service struct {
	*store.MemoryStore[string, execution.ProcessState]
}

var _ dao.Service[string, execution.ProcessState] = (*Service)(nil)

// New creates a process table
func New() *Service {
	memoryStore := store.NewMemoryStore[string, execution.ProcessState](func(p *execution.ProcessState) string {
		return p.ID
	}).WithFilter(func(p *execution.ProcessState, parameters []*dao.Parameter) bool {
		return criteria.Match(func(name string) (string, bool) {
			switch name {
			case dao.ParameterState:
				return p.GetState(), true
			case dao.ParameterFunction:
				return p.Name, true
			}
			return "", false
		}, parameters)
	})
	return &Service{MemoryStore: memoryStore}
}
