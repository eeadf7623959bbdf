package actor

import (
	"context"

	"golang.org/x/exp/slices"
)

// Mailbox is a process's per-Pid inbox: a message queue, a save queue, an
// exit queue, and a waker (§3, §4.2). The owning process's user goroutine
// (through receive) reads the save queue and pops the message queue; its
// supervision driver pops the exit queue; any goroutine may push to the
// message or exit queue.
type Mailbox struct {
	owner    Pid
	messages chunkedQueue[Envelope]
	exits    chunkedQueue[ExitSignal]
	save     []Envelope // single-consumer deque; front = index 0
	wake     *waker // observed by receive()
	exitWake *waker // observed by the supervision driver's select
}

func newMailbox(owner Pid) *Mailbox {
	return &Mailbox{owner: owner, wake: newWaker(), exitWake: newWaker()}
}

// deliver enqueues an envelope and wakes the owner. Called by send/send_raw,
// and by the driver itself when a trapped exit signal is re-delivered as an
// ordinary message.
func (m *Mailbox) deliver(env Envelope) {
	m.messages.push(env)
	m.wake.wake()
}

// deliverExit enqueues an exit signal and wakes both the owner's receive()
// (so it re-checks the exit queue and yields rather than delivering a
// message) and the owner's supervision driver (which is the only consumer
// that actually pops from the exit queue).
func (m *Mailbox) deliverExit(sig ExitSignal) {
	m.exits.push(sig)
	m.wake.wake()
	m.exitWake.wake()
}

// pushFront inserts env at the front (index 0) of the save queue, i.e. it
// will be the last value receive returns from the save queue, since popBack
// takes from the other end. The selective-receive loop itself keeps its
// non-matches in a local slice with the same layout (pushFrontLocal in
// receive.go): the most-recently-seen non-match ends up nearest index 0.
func (m *Mailbox) pushFront(env Envelope) {
	m.save = slices.Insert(m.save, 0, env)
}

// popBack removes and returns the save queue's back element — the oldest
// restored message, per §4.2's "deliver its back element".
func (m *Mailbox) popBack() (Envelope, bool) {
	if len(m.save) == 0 {
		return Envelope{}, false
	}
	i := len(m.save) - 1
	env := m.save[i]
	m.save[i] = Envelope{}
	m.save = m.save[:i]
	return env, true
}

// restore appends queue (a local save queue accumulated during one
// selective-receive loop, newest at index 0 and oldest at the back) to
// the mailbox's save queue, per __selective_restore (§4.2, §4.4).
func (m *Mailbox) restore(queue []Envelope) {
	m.save = append(m.save, queue...)
}

// receive implements __receive (§4.2): it suspends until a message can be
// delivered to the current process, observing three rules in order —
// pending exits take priority (so the supervision driver can race ahead of
// an in-progress receive), then the save queue, then the main queue.
func (m *Mailbox) receive(ctx context.Context) (Envelope, error) {
	for {
		if m.exits.Length() > 0 {
			// An exit is pending: yield control back to the driver rather
			// than delivering a message, so arbitration (§4.3) runs first.
			select {
			case <-ctx.Done():
				return Envelope{}, ctx.Err()
			default:
			}
			// Block on the wake channel until the driver has arbitrated the
			// exit (it wakes this channel when it ignores the exit or
			// re-delivers it as a message) or ctx is canceled (when the
			// exit terminates the process), then check again.
			select {
			case <-m.wake.channel():
				m.wake.observed()
			case <-ctx.Done():
				return Envelope{}, ctx.Err()
			}
			continue
		}

		if env, ok := m.popBack(); ok {
			return env, nil
		}

		if env, ok := m.messages.pop(); ok {
			return env, nil
		}

		select {
		case <-m.wake.channel():
			m.wake.observed()
		case <-ctx.Done():
			return Envelope{}, ctx.Err()
		}
	}
}
