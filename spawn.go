package actor

import (
	"context"
	"sync"
)

// Handle is a one-shot, multi-waiter future resolving to a spawned
// process's final ExitReason (§4.3, §6). Grounded on eventloop's promise
// type: a mutex-guarded result slot plus a channel closed exactly once, on
// resolution, so any number of waiters can observe it.
type Handle[T any] struct {
	mu     sync.Mutex
	done   bool
	value  T
	waitCh chan struct{}
}

func newHandle[T any]() *Handle[T] {
	return &Handle[T]{waitCh: make(chan struct{})}
}

func (h *Handle[T]) resolve(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		return
	}
	h.value = v
	h.done = true
	close(h.waitCh)
}

// Wait blocks until the handle resolves or ctx is canceled.
func (h *Handle[T]) Wait(ctx context.Context) (T, error) {
	h.mu.Lock()
	if h.done {
		v := h.value
		h.mu.Unlock()
		return v, nil
	}
	ch := h.waitCh
	h.mu.Unlock()

	select {
	case <-ch:
		h.mu.Lock()
		v := h.value
		h.mu.Unlock()
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel that is closed once the handle resolves.
func (h *Handle[T]) Done() <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.waitCh
}

// SpawnOpt holds the recognized options for SpawnOptExtended (§6): whether to link
// the new process to the caller, and whether to establish a monitor from the
// caller onto the new process.
type SpawnOpt struct {
	Link    bool
	Monitor bool
}

type spawnResult struct {
	pid     Pid
	handle  *Handle[ExitReason]
	monitor MonitorRef
	link    error // never set: spawnInternal treats a failed link lookup as fatal
}

// Spawn starts f as a new process and returns its Pid. f runs on its own
// goroutine; it may call Myself, SelectiveReceive, Link, Monitor, TrapExit,
// and Exit, which work only from within that goroutine. Send works from any
// goroutine.
func Spawn(f func(context.Context)) Pid {
	r := spawnInternal(f, SpawnOpt{})
	return r.pid
}

// SpawnLink starts f as a new process, symmetrically linked to the caller
// (§4.3, §6). SpawnLink must be called from inside a running process.
func SpawnLink(f func(context.Context)) Pid {
	r := spawnInternal(f, SpawnOpt{Link: true})
	return r.pid
}

// SpawnMonitor starts f as a new process, monitored by the caller, and
// returns both its Pid and the MonitorRef the caller can later Demonitor.
// SpawnMonitor must be called from inside a running process.
func SpawnMonitor(f func(context.Context)) (Pid, MonitorRef) {
	r := spawnInternal(f, SpawnOpt{Monitor: true})
	return r.pid, r.monitor
}

// SpawnOptExtended starts f per opt and additionally returns a Handle that
// resolves to f's final ExitReason, and — if opt.Monitor was set — the
// MonitorRef established on the caller's behalf. This is the "extended"
// spawn_opt variant described in §6.
func SpawnOptExtended(f func(context.Context), opt SpawnOpt) (Pid, *Handle[ExitReason], MonitorRef) {
	r := spawnInternal(f, opt)
	return r.pid, r.handle, r.monitor
}

// spawnInternal is spawn_int (§4.3): the single entry point every public
// spawn variant funnels through.
func spawnInternal(f func(context.Context), opt SpawnOpt) spawnResult {
	pid := nextPid()
	ctx, cancel := context.WithCancel(context.Background())
	k := newKernel(pid, ctx)
	mb := newMailbox(pid)

	var result spawnResult
	result.pid = pid

	if opt.Link {
		linker, ok := self()
		if !ok {
			fatalf("actor: spawn_link() called outside a managed process")
		}
		linkerKernel, ok := lookupKernel(linker)
		if !ok {
			fatalf("actor: spawn_link() called by a process with no kernel")
		}
		linkerKernel.addLink(pid)
		k.addLink(linker)
	}

	if opt.Monitor {
		monitoringPid, ok := self()
		if !ok {
			fatalf("actor: spawn_monitor() called outside a managed process")
		}
		ref := nextMonitorRef()
		k.addMonitor(ref, monitoringPid)
		recordMonitorTarget(ref, pid)
		result.monitor = ref
	}

	insertProcess(pid, k, mb)

	result.handle = newHandle[ExitReason]()
	userDone := make(chan ExitReason, 1)
	go runUser(pid, ctx, f, userDone)
	go runDriver(pid, k, mb, cancel, userDone, result.handle)

	return result
}
