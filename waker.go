package actor

import "sync/atomic"

// waker is an atomic, last-writer-wins task waker (§3, §4.2): any number of
// enqueues may call wake before the owning process next parks on channel(), and
// the process observes exactly one pending wakeup, not one per enqueue.
//
// Grounded on eventloop's fastWakeupCh/wakeUpSignalPending pair
// (eventloop/loop.go): a capacity-1 channel plus an atomic dedup flag, with
// wake() performing a non-blocking send so producers never park waiting for
// the consumer to catch up.
type waker struct {
	ch      chan struct{}
	pending atomic.Uint32
}

func newWaker() *waker {
	return &waker{ch: make(chan struct{}, 1)}
}

// wake notifies the owning process that new work may be available. Coalesces
// with any wakeup that hasn't yet been acknowledged via observed().
func (w *waker) wake() {
	if w.pending.CompareAndSwap(0, 1) {
		select {
		case w.ch <- struct{}{}:
		default:
		}
	}
}

// channel returns the channel a select can park on to observe a wakeup.
// Callers must call observed() once they've acted on a receive from this
// channel, to re-arm the dedup flag.
func (w *waker) channel() <-chan struct{} {
	return w.ch
}

// observed clears the pending flag after a wakeup has been received and
// acted on, allowing a subsequent wake() to signal again.
func (w *waker) observed() {
	w.pending.Store(0)
}
