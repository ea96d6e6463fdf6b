package execution

import "sync"

// AwareContext serialises operations of process aware objects bound to one
// process.  It is not reentrant: an operation must not call Run again.
type AwareContext struct {
	mux sync.Mutex
}

// Run executes op under the process lock and returns its outcome
func (a *AwareContext) Run(op func() (interface{}, error)) (interface{}, error) {
	a.mux.Lock()
	defer a.mux.Unlock()
	return op()
}
