package actor

import (
	"context"
	"runtime"
)

// runUser runs a spawned process's user function on its own goroutine,
// capturing how it terminated. Grounded on eventloop/promisify.go's
// recover()+completed-flag idiom: a plain return, a panic, and Exit's
// runtime.Goexit() are three distinct outcomes that must be told apart
// after the fact, since recover() alone cannot distinguish the latter two.
func runUser(pid Pid, ctx context.Context, f func(context.Context), userDone chan<- ExitReason) {
	bindCurrent(pid)
	completed := false
	defer func() {
		unbindCurrent()
		if r := recover(); r != nil {
			userDone <- PanicExit(r)
			return
		}
		if completed {
			userDone <- Normal
			return
		}
		// Reached via runtime.Goexit(). When that came from Exit(), the
		// self-exit reason it recorded has already decided the driver, so
		// the value sent here is not observed; when user code called
		// runtime.Goexit() itself, the process terminates with JoinError.
		userDone <- JoinErrorExit(nil)
	}()
	f(ctx)
	completed = true
}

// arbitrate implements the exit-arbitration table (§4.3): given the
// receiving process's trap_exit flag and an incoming exit signal, decide
// whether it terminates the process, is delivered as an ordinary message, or
// is ignored.
func arbitrate(trapExit bool, sig ExitSignal) (terminate, deliverAsMessage bool) {
	if sig.Reason.Kind == ExitKill {
		return true, false
	}
	if !trapExit {
		if sig.Reason.Kind == ExitNormal {
			return false, false
		}
		return true, false
	}
	return false, true
}

// driverLoop races the self-exit channel, the inbox exit queue, and user
// function completion, with biased (self-exit, then exit queue, then
// completion) ordering on simultaneous readiness, exactly as §4.3 specifies.
// It returns once a termination reason has been chosen.
func driverLoop(pid Pid, k *Kernel, mb *Mailbox, userDone <-chan ExitReason) ExitReason {
	var completed *ExitReason
	for {
		select {
		case reason := <-k.selfExit:
			return reason
		default:
		}

		if sig, ok := mb.exits.pop(); ok {
			terminate, deliverAsMessage := arbitrate(k.getTrapExit(), sig)
			switch {
			case terminate:
				logExitArbitration(pid, sig, k.getTrapExit(), "terminated")
				return sig.Reason
			case deliverAsMessage:
				mb.deliver(NewEnvelope(sig))
				logExitArbitration(pid, sig, true, "delivered-as-message")
			default:
				// Ignored (Normal, not trapping): nothing was delivered,
				// but receive() may be parked waiting for this exit to
				// clear the queue before it will reconsider the message
				// queue, so it still needs a nudge.
				mb.wake.wake()
				logExitArbitration(pid, sig, false, "ignored")
			}
			continue
		}

		if completed != nil {
			return *completed
		}

		select {
		case reason := <-k.selfExit:
			return reason
		case <-mb.exitWake.channel():
			mb.exitWake.observed()
		case reason := <-userDone:
			// select picks among ready cases at random, so completion is
			// only accepted after the self-exit and exit-queue checks
			// above have run once more and found nothing.
			completed = &reason
		}
	}
}

// epilogue is the termination epilogue (§4.3): remove the process's tables,
// propagate an exit signal to every peer it was linked to at the moment of
// termination, and deliver a Down message to every active monitor.
func epilogue(pid Pid, k *Kernel, reason ExitReason) {
	peers := k.linkedPeers()
	monitors := k.monitors()

	removeProcess(pid)

	for _, peer := range peers {
		SendExit(peer, ExitSignal{From: pid, Reason: reason})
	}
	for ref, monitoringPid := range monitors {
		forgetMonitorTarget(ref)
		Send(monitoringPid, Down{Ref: ref, Pid: pid, Reason: reason})
	}
}

// runDriver is the supervision driver task spawned by spawnInternal: it runs
// driverLoop to a decision, cancels the process's context so Exit (and any
// cooperating blocking call observing ctx) can unwind, runs the termination
// epilogue, and resolves the spawn handle.
func runDriver(pid Pid, k *Kernel, mb *Mailbox, cancel context.CancelFunc, userDone chan ExitReason, handle *Handle[ExitReason]) {
	reason := driverLoop(pid, k, mb, userDone)
	cancel()
	epilogue(pid, k, reason)
	handle.resolve(reason)
}

// Exit terminates the calling process with reason (§4.3, §6). It never
// returns to its caller: it hands reason to the process's driver and then
// blocks until the driver has canceled the process's context, at which
// point it ends the calling goroutine via runtime.Goexit rather than
// returning control.
func Exit(reason ExitReason) {
	pid, ok := self()
	if !ok {
		fatalf("actor: exit() called outside a managed process")
	}
	k, ok := lookupKernel(pid)
	if !ok {
		fatalf("actor: exit() called by a process with no kernel")
	}
	k.requestExit(reason)
	<-k.ctx.Done()
	runtime.Goexit()
}

// Link symmetrically links the calling process to to (§4.3). If to has no
// live Kernel — including the race where it terminates between this
// process's lookup and the insert into its linked set (§9) — a self-directed
// NoProc exit signal is queued on the caller's own inbox instead, letting
// the usual arbitration rule decide whether it terminates the caller.
func Link(to Pid) {
	pid, ok := self()
	if !ok {
		fatalf("actor: link() called outside a managed process")
	}
	k, ok := lookupKernel(pid)
	if !ok {
		fatalf("actor: link() called by a process with no kernel")
	}

	peer, ok := lookupKernel(to)
	if !ok {
		selfNoProcExit(pid, to)
		return
	}
	peer.addLink(pid)
	k.addLink(to)
	if _, ok := lookupKernel(to); !ok {
		selfNoProcExit(pid, to)
	}
}

// selfNoProcExit queues a NoProc exit signal, from linker to itself, on
// linker's own inbox (§4.3, §7): the standard way a failed link is surfaced.
func selfNoProcExit(linker, missing Pid) {
	mb, ok := lookupMailbox(linker)
	if !ok {
		return
	}
	mb.deliverExit(ExitSignal{From: linker, Reason: NoProcExit(missing)})
}

// TrapExit sets the calling process's trap_exit flag (§4.3).
func TrapExit(trap bool) {
	pid, ok := self()
	if !ok {
		fatalf("actor: trap_exit() called outside a managed process")
	}
	k, ok := lookupKernel(pid)
	if !ok {
		fatalf("actor: trap_exit() called by a process with no kernel")
	}
	k.setTrapExit(trap)
}

// GetTrapExit reads the calling process's trap_exit flag.
func GetTrapExit() bool {
	pid, ok := self()
	if !ok {
		fatalf("actor: get_trap_exit() called outside a managed process")
	}
	k, ok := lookupKernel(pid)
	if !ok {
		fatalf("actor: get_trap_exit() called by a process with no kernel")
	}
	return k.getTrapExit()
}

// Monitor establishes a one-way monitor from the calling process onto pid
// (§9's recommended minimal semantics). If pid has no live Kernel, a zero
// MonitorRef is returned along with a NoProc-flavored error.
func Monitor(pid Pid) (MonitorRef, error) {
	caller, ok := self()
	if !ok {
		fatalf("actor: monitor() called outside a managed process")
	}
	k, ok := lookupKernel(pid)
	if !ok {
		return 0, NoProcExit(pid)
	}
	ref := nextMonitorRef()
	k.addMonitor(ref, caller)
	recordMonitorTarget(ref, pid)
	return ref, nil
}

// Demonitor cancels a previously established monitor. A no-op if ref is
// unknown or already fired.
func Demonitor(ref MonitorRef) {
	target, ok := lookupMonitorTarget(ref)
	if !ok {
		return
	}
	if k, ok := lookupKernel(target); ok {
		k.removeMonitor(ref)
	}
	forgetMonitorTarget(ref)
}

// Send wraps value in an Envelope and delivers it to to's mailbox,
// fire-and-forget (§4.2, §6). A send to a Pid with no live mailbox is a
// silent no-op save for a rate-limited trace warning.
func Send(to Pid, value any) {
	SendRaw(to, NewEnvelope(value))
}

// SendRaw delivers a pre-built Envelope to to's mailbox, skipping
// construction (§4.2).
func SendRaw(to Pid, env Envelope) {
	mb, ok := lookupMailbox(to)
	if !ok {
		warnNoProc("send", to)
		return
	}
	mb.deliver(env)
}

// SendExit enqueues sig onto to's exit queue and wakes its driver (§4.2).
// Arbitration (trap_exit, ignore, or terminate) happens later, on to's own
// driver, not here. Returns whether to's mailbox existed.
func SendExit(to Pid, sig ExitSignal) bool {
	mb, ok := lookupMailbox(to)
	if !ok {
		warnNoProc("send_exit", to)
		return false
	}
	mb.deliverExit(sig)
	return true
}
