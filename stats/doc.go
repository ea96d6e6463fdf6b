// Package stats keeps live counters of the floor kernel: processes, threads,
// bound managed objects and jobs, plus totals of completed and failed work.
// Counters are updated through Delta values so that every kernel component
// can report changes without knowing the aggregate.
package stats
