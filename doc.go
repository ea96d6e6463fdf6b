// Package floor provides an inversion of control execution kernel.
//
// An office declares functions (stateless units of work), the managed
// objects they depend on and the flows between them.  The floor runs it:
// functions are assigned to teams, their objects are sourced, loaded and
// scoped to a function, thread or process, failures escalate to handlers and
// every process ends with a cleanup sequence recycling its objects.
//
// Services making up a floor:
//
//   - processor – scheduling, object resolution, escalation and completion
//   - executor  – runs a function body with panic recovery and tracing
//   - allocator – delayed invocations instigated by managed object sources
//   - event     – optional process lifecycle events
//
// Typical use:
//
//	srv, _ := floor.New(office, floor.WithSource("db", dbSource))
//	rt := srv.Runtime()
//	_ = rt.Open(ctx)
//	handle, _ := rt.InvokeFunction(ctx, "handle", request)
//	outcome, _ := handle.Wait(ctx)
//	_ = rt.Close(ctx)
package floor
