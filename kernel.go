package actor

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/maps"
)

// Kernel is a process's control block (§3, §4.3): its linked peers, its
// monitors, its trap_exit flag, and the one-shot channel it uses to request
// its own termination.
type Kernel struct {
	pid Pid

	// ctx is the process's user-function context: canceled by the
	// supervision driver when the process is terminated from outside
	// (self-exit or an untrapped incoming exit), and awaited by Exit to
	// block the calling goroutine until the driver has acted.
	ctx context.Context

	mu      sync.Mutex
	links   map[Pid]struct{}
	monitor map[MonitorRef]Pid // monitor ref -> monitoring Pid

	trapExit atomic.Bool

	selfExit chan ExitReason // capacity 1, written at most once
	once     sync.Once
}

func newKernel(pid Pid, ctx context.Context) *Kernel {
	return &Kernel{
		pid:      pid,
		ctx:      ctx,
		links:    make(map[Pid]struct{}),
		monitor:  make(map[MonitorRef]Pid),
		selfExit: make(chan ExitReason, 1),
	}
}

// addLink records a symmetric link to peer.
func (k *Kernel) addLink(peer Pid) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.links[peer] = struct{}{}
}

// removeLink drops peer from the linked set. Nothing in the package calls it
// at present; the termination epilogue notifies every peer in the snapshot
// taken by linkedPeers.
func (k *Kernel) removeLink(peer Pid) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.links, peer)
}

// linkedPeers returns a snapshot of the currently-linked Pids, safe to range
// over after the Kernel's own lock has been released (e.g. while sending
// exit signals, which must not be done while holding k.mu).
func (k *Kernel) linkedPeers() []Pid {
	k.mu.Lock()
	defer k.mu.Unlock()
	return maps.Keys(k.links)
}

// addMonitor records that ref was issued for monitoringPid to watch this
// Kernel's process.
func (k *Kernel) addMonitor(ref MonitorRef, monitoringPid Pid) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.monitor[ref] = monitoringPid
}

// removeMonitor demonitors ref, returning true if it was present.
func (k *Kernel) removeMonitor(ref MonitorRef) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.monitor[ref]
	delete(k.monitor, ref)
	return ok
}

// monitors returns a snapshot of ref -> monitoring Pid, for delivering Down
// messages during the termination epilogue.
func (k *Kernel) monitors() map[MonitorRef]Pid {
	k.mu.Lock()
	defer k.mu.Unlock()
	return maps.Clone(k.monitor)
}

// setTrapExit sets this Kernel's trap_exit flag (§4.3). Observable by the
// driver on the next exit-signal arbitration.
func (k *Kernel) setTrapExit(trap bool) {
	k.trapExit.Store(trap)
}

// getTrapExit reads this Kernel's trap_exit flag.
func (k *Kernel) getTrapExit() bool {
	return k.trapExit.Load()
}

// requestExit sends reason on the self-exit channel, exactly once: later
// calls are no-ops, matching a one-shot channel's "first write wins"
// semantics (§4.3's Exit() sends once then awaits forever).
func (k *Kernel) requestExit(reason ExitReason) {
	k.once.Do(func() {
		k.selfExit <- reason
	})
}
