// Package actor is a lightweight actor runtime modeled on the Erlang process
// model: independent, concurrently-scheduled processes, each identified by a
// Pid and owning a private mailbox, communicating only via asynchronous
// message passing and observing each other's termination through links and
// monitors.
//
// A process is a goroutine spawned with Spawn, SpawnLink, SpawnMonitor, or
// SpawnOptExtended. It runs a user function of the form
// func(context.Context), and may call Myself, SelectiveReceive, Link,
// Monitor, TrapExit, and Exit from inside that function, but not from
// anywhere else: those operations require the ambient process binding that
// spawning establishes. Send, SendRaw, and SendExit need no such binding and
// may be called from any goroutine.
//
// Mailbox ordering, selective receive, supervised crash propagation, and
// trap-exit inversion are specified in detail alongside each type and
// function below; see also SPEC_FULL.md and DESIGN.md in the repository
// root for the full design rationale.
package actor
