// Package tracing integrates OpenTelemetry with the floor kernel.  Processes
// and function executions are recorded as spans on the global tracer
// provider; applications that never call Init get no-op spans.
package tracing
