// Package processor is the scheduling kernel of a floor.  It turns function
// activations into jobs assigned to teams, resolves the managed objects each
// function declares, runs flows according to their strategy, routes failures
// through escalation tables and drains object cleanup once a process ends.
//
// All bookkeeping of a process happens under the process lock; the lock is
// never held while user code, sources or teams run.
package processor
