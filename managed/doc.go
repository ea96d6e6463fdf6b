// Package managed defines the contracts between the kernel and the stateful
// dependencies it manages.
//
// A Source produces Object instances.  An Object exposes the value bound into
// a function, and may opt into extra protocols by implementing:
//
//   - Coordinating – LoadObjects is called once its dependencies are ready
//   - Asynchronous – the object can flag a pending operation that suspends
//     dependent functions until it completes or times out
//   - ProcessAware – the object receives a ProcessAwareContext that runs
//     operations under the owning process' mutual exclusion
//   - Recyclable   – Recycle is called by the cleanup sequence when the
//     owning scope ends
//
// The kernel evaluates those protocols once per sourced instance and keeps
// the result as a Capability set.
package managed
