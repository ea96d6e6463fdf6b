// Package team provides the execution strategies that run kernel jobs.
//
// A Team accepts a Job and decides when and on which goroutine it runs:
//
//   - Passive   – runs the job synchronously on the caller's goroutine
//   - Pool      – a fixed set of workers consuming a bounded FIFO queue
//   - Dedicated – a Pool with a single worker, jobs run strictly in order
//   - OnDemand  – one goroutine per job, optionally capped
//
// A team never drops an accepted job.  A team that cannot accept a job returns
// an error wrapping ErrOverload so that the submitter can apply back-pressure.
package team
