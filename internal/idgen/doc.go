// Package idgen generates the identifiers assigned to processes, threads and
// flows.  Identifiers are opaque strings; tests may replace NewFunc to obtain
// deterministic values.
package idgen
