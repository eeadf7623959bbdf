package actor

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// currentProcess associates a running goroutine with the Pid of the process
// it is executing. Unlike an async executor, where a Future may be polled
// from a different worker thread each time it's resumed, a Go goroutine owns
// its logical identity for its entire lifetime: once a process's driver
// starts the user function in a goroutine, that goroutine never "becomes"
// another process. A poll-time rebinding shim (needed in executors where a
// migrated task can resume on a different worker thread) therefore has no
// counterpart here — the binding is set once, when the goroutine starts, and
// cleared once, when it exits. See DESIGN.md for the fuller rationale.
var currentProcess sync.Map // goroutine id (uint64) -> Pid

// goroutineID extracts the calling goroutine's runtime id by parsing the
// "goroutine N [...]" header runtime.Stack always writes first. There is no
// exported runtime API for this; a small stack-trace scrape is the standard
// workaround, and a 64-byte buffer is always enough to capture that header
// line regardless of how deep the actual stack is.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	field := bytes.Fields(buf[:n])[1]
	id, err := strconv.ParseUint(string(field), 10, 64)
	if err != nil {
		fatalf("actor: could not parse goroutine id from runtime.Stack output")
	}
	return id
}

// bindCurrent associates the calling goroutine with pid. Called once, from
// the goroutine that will run a process's user function, before that
// function runs.
func bindCurrent(pid Pid) {
	currentProcess.Store(goroutineID(), pid)
}

// unbindCurrent removes the calling goroutine's process association. Called
// once, from runUser's deferred cleanup, after the user function has
// returned, panicked, or ended via runtime.Goexit.
func unbindCurrent() {
	currentProcess.Delete(goroutineID())
}

// Myself returns the Pid of the process executing on the calling goroutine.
// Calling Myself from a goroutine that is not running as a spawned process is
// a fatal programming error (§7): it aborts the host, after logging at the
// emergency level, rather than returning a zero value that could be silently
// misused as a real Pid.
func Myself() Pid {
	v, ok := currentProcess.Load(goroutineID())
	if !ok {
		fatalf("actor: myself() called outside a managed process")
	}
	return v.(Pid)
}

// self is the non-fatal variant used internally, where the caller has
// already established (or doesn't need) the invariant that it's running
// inside a process.
func self() (Pid, bool) {
	v, ok := currentProcess.Load(goroutineID())
	if !ok {
		return 0, false
	}
	return v.(Pid), true
}
