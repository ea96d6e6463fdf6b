// Package allocator schedules delayed process invocations.  A polling loop
// releases invocations once they are due, in due order.
package allocator
