// Package executor runs function bodies for the processor.  It shields the
// kernel from panicking bodies, records a tracing span per execution and
// reports every execution to an optional listener.
package executor
