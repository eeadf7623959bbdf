package actor

import (
	"context"
	"errors"
	"time"

	"golang.org/x/exp/slices"
)

// Clause is one arm of a SelectiveReceive call, compiled from On, OnAny, or
// After (§4.4).
type Clause struct {
	match     func(Envelope) (any, bool) // returns (result, true) on match+consume
	isTimeout bool
	timeout   time.Duration
	onTimeout func() any
}

// On compiles a typed receive clause: if the next envelope holds a value of
// type T, fn receives the typed, consumed value and its result becomes
// SelectiveReceive's result.
func On[T any](fn func(T) any) Clause {
	return Clause{
		match: func(env Envelope) (any, bool) {
			v, ok := Take[T](env)
			if !ok {
				return nil, false
			}
			return fn(v), true
		},
	}
}

// OnAny compiles a wildcard receive clause (§4.4: "a clause without a type
// annotation"): it matches any envelope, passing it through unconsumed by
// type, as the raw Envelope.
func OnAny(fn func(Envelope) any) Clause {
	return Clause{
		match: func(env Envelope) (any, bool) {
			return fn(env), true
		},
	}
}

// After compiles the terminal timeout clause. If no other clause has matched
// within d of the enclosing SelectiveReceive call's entry, fn's result is
// returned and the save queue is still restored.
func After(d time.Duration, fn func() any) Clause {
	return Clause{isTimeout: true, timeout: d, onTimeout: fn}
}

// pushFrontLocal prepends env to a plain save-queue slice, preserving the
// same "most-recent-push ends up nearest index 0" layout Mailbox.pushFront
// uses, so appending the finished local queue onto the mailbox's save queue
// via restore reproduces arrival order on subsequent popBack calls.
func pushFrontLocal(q []Envelope, env Envelope) []Envelope {
	return slices.Insert(q, 0, env)
}

// SelectiveReceive implements the clause-compiled receive loop of §4.4: it
// repeatedly receives an envelope, tests it against clauses in order,
// returns the first match's result, and otherwise pushes the envelope to the
// front of a local save queue. On completion — by match or by the optional
// After clause's timeout — the local save queue is restored onto the
// mailbox via __selective_restore, in original arrival order.
func SelectiveReceive(ctx context.Context, clauses ...Clause) (any, error) {
	pid, ok := self()
	if !ok {
		fatalf("actor: selective receive called outside a managed process")
	}
	mb, ok := lookupMailbox(pid)
	if !ok {
		fatalf("actor: selective receive called by a process with no mailbox")
	}

	var matchClauses []Clause
	var afterClause *Clause
	for i := range clauses {
		if clauses[i].isTimeout {
			c := clauses[i]
			afterClause = &c
			continue
		}
		matchClauses = append(matchClauses, clauses[i])
	}

	// The deadline is computed once, at loop entry, per §4.4 — not
	// re-derived on each iteration.
	var hasDeadline bool
	var deadline time.Time
	if afterClause != nil {
		hasDeadline = true
		deadline = time.Now().Add(afterClause.timeout)
	}

	var saveQueue []Envelope
	finish := func(result any, err error) (any, error) {
		mb.restore(saveQueue)
		return result, err
	}

	for {
		var env Envelope
		var err error
		var timedOut bool

		if hasDeadline {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				timedOut = true
			} else {
				dctx, cancel := context.WithDeadline(ctx, deadline)
				env, err = mb.receive(dctx)
				cancel()
				if errors.Is(err, context.DeadlineExceeded) {
					timedOut = true
					err = nil
				}
			}
		} else {
			env, err = mb.receive(ctx)
		}

		if timedOut {
			return finish(afterClause.onTimeout(), nil)
		}
		if err != nil {
			return finish(nil, err)
		}

		matched := false
		for _, c := range matchClauses {
			result, ok := c.match(env)
			if !ok {
				continue
			}
			matched = true
			return finish(result, nil)
		}
		if !matched {
			saveQueue = pushFrontLocal(saveQueue, env)
		}
	}
}
