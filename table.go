package actor

import "sync"

// Global process-wide tables (§3): a Pid's Kernel and Mailbox are both
// inserted before the Pid becomes observable to any other process, and both
// removed by the supervision driver's termination epilogue, once the
// termination reason is chosen and the link/monitor sets have been
// snapshotted, just before the link/monitor notifications are sent.
//
// sync.Map is the idiomatic standard-library choice for a concurrent map
// keyed by an opaque identifier with no locality between keys (as opposed to
// a hand-rolled, GC-aware weak-pointer registry, which exists in some event
// loop implementations specifically to weakly reference promise values so an
// abandoned loop doesn't pin memory — no such requirement exists here, since
// Kernel/Mailbox entries are explicitly, synchronously removed by the
// driver, never garbage-collected implicitly). See DESIGN.md for this
// choice's justification entry.
var (
	kernels   sync.Map // Pid -> *Kernel
	mailboxes sync.Map // Pid -> *Mailbox

	// monitorTargets records, for each live MonitorRef, the Pid it watches,
	// so Demonitor (called by the monitoring side, which only has the ref)
	// can find the target Kernel to remove the entry from.
	monitorTargets sync.Map // MonitorRef -> Pid
)

func lookupKernel(pid Pid) (*Kernel, bool) {
	v, ok := kernels.Load(pid)
	if !ok {
		return nil, false
	}
	return v.(*Kernel), true
}

func lookupMailbox(pid Pid) (*Mailbox, bool) {
	v, ok := mailboxes.Load(pid)
	if !ok {
		return nil, false
	}
	return v.(*Mailbox), true
}

func insertProcess(pid Pid, k *Kernel, m *Mailbox) {
	kernels.Store(pid, k)
	mailboxes.Store(pid, m)
}

func removeProcess(pid Pid) {
	kernels.Delete(pid)
	mailboxes.Delete(pid)
}

func recordMonitorTarget(ref MonitorRef, target Pid) {
	monitorTargets.Store(ref, target)
}

func lookupMonitorTarget(ref MonitorRef) (Pid, bool) {
	v, ok := monitorTargets.Load(ref)
	if !ok {
		return 0, false
	}
	return v.(Pid), true
}

func forgetMonitorTarget(ref MonitorRef) {
	monitorTargets.Delete(ref)
}
