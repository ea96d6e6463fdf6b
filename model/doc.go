// Package model contains the static office definition executed by the floor
// kernel.
//
// An office aggregates managed functions, managed object bindings, works and
// office level escalations.  Function and object metadata live in the `graph`
// sub-package, the office simply indexes them and validates cross references
// before the kernel is opened.
package model
