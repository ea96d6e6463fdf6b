// Package execution holds the runtime records of the floor kernel: process
// and thread states, flows of job nodes, managed object containers, the
// process aware lock, the cleanup sequence and the failure taxonomy.
//
// Records refer upwards only.  A process owns its threads by id, a thread
// refers to its process by id, a flow refers to the job node that instigated
// it.  Unless noted otherwise, mutable fields are guarded by the owning
// ProcessState lock.
package execution
