package actor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitHandle(t *testing.T, h *Handle[ExitReason]) ExitReason {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	reason, err := h.Wait(ctx)
	require.NoError(t, err, "process did not terminate in time")
	return reason
}

func TestBasicSend(t *testing.T) {
	pid, handle, _ := SpawnOptExtended(func(ctx context.Context) {
		_, err := SelectiveReceive(ctx, OnAny(func(Envelope) any { return nil }))
		require.NoError(t, err)
	}, SpawnOpt{})

	Send(pid, struct{}{})

	reason := waitHandle(t, handle)
	assert.True(t, Normal.Equal(reason))
}

func TestFIFOOrdering(t *testing.T) {
	var received []int
	pid, handle, _ := SpawnOptExtended(func(ctx context.Context) {
		for i := 0; i < 9; i++ {
			_, err := SelectiveReceive(ctx, On(func(n int) any {
				received = append(received, n)
				return nil
			}))
			require.NoError(t, err)
		}
	}, SpawnOpt{})

	for i := 1; i <= 9; i++ {
		Send(pid, i)
	}

	waitHandle(t, handle)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, received)
}

func TestSelfSend(t *testing.T) {
	_, handle, _ := SpawnOptExtended(func(ctx context.Context) {
		Send(Myself(), struct{}{})
		_, err := SelectiveReceive(ctx, OnAny(func(Envelope) any { return nil }))
		require.NoError(t, err)
	}, SpawnOpt{})

	reason := waitHandle(t, handle)
	assert.Equal(t, ExitNormal, reason.Kind)
}

func TestLinkedNormal(t *testing.T) {
	var childPid Pid
	parentDone := make(chan ExitReason, 1)

	Spawn(func(ctx context.Context) {
		cpid, childHandle, _ := SpawnOptExtended(func(ctx context.Context) {
			_, err := SelectiveReceive(ctx, OnAny(func(Envelope) any { return nil }))
			require.NoError(t, err)
		}, SpawnOpt{Link: true})
		childPid = cpid

		Send(cpid, struct{}{})
		reason, err := childHandle.Wait(ctx)
		require.NoError(t, err)
		parentDone <- reason
	})

	select {
	case reason := <-parentDone:
		assert.Equal(t, ExitNormal, reason.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for linked-normal scenario")
	}
	_ = childPid
}

func TestLinkedPanic(t *testing.T) {
	_, parentHandle, _ := SpawnOptExtended(func(ctx context.Context) {
		SpawnOptExtended(func(context.Context) {
			panic("boom")
		}, SpawnOpt{Link: true})

		// the parent's own receive never completes: the panic propagates
		// through the link and terminates it first.
		_, _ = SelectiveReceive(ctx, OnAny(func(Envelope) any { return nil }))
	}, SpawnOpt{})

	reason := waitHandle(t, parentHandle)
	assert.Equal(t, ExitPanic, reason.Kind)
}

func TestTrapExitDeliversMessage(t *testing.T) {
	result := make(chan ExitSignal, 1)
	parentPid, parentHandle, _ := SpawnOptExtended(func(ctx context.Context) {
		TrapExit(true)
		_, _ = SpawnOptExtended(func(context.Context) {
			Exit(CustomExit("custom reason"))
		}, SpawnOpt{Link: true})

		v, err := SelectiveReceive(ctx, On(func(sig ExitSignal) any {
			return sig
		}))
		require.NoError(t, err)
		result <- v.(ExitSignal)
		Exit(Normal)
	}, SpawnOpt{})
	_ = parentPid

	select {
	case sig := <-result:
		assert.Equal(t, ExitCustom, sig.Reason.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("trapping parent never observed the Exit message")
	}
	waitHandle(t, parentHandle)
}

func TestKillIsUntrappable(t *testing.T) {
	trapping := make(chan struct{})
	pid, handle, _ := SpawnOptExtended(func(ctx context.Context) {
		TrapExit(true)
		close(trapping)
		_, _ = SelectiveReceive(ctx, OnAny(func(Envelope) any { return nil }))
	}, SpawnOpt{})

	<-trapping
	ok := SendExit(pid, ExitSignal{From: pid, Reason: Kill})
	require.True(t, ok)

	reason := waitHandle(t, handle)
	assert.Equal(t, ExitKill, reason.Kind)
}

func TestMonitorDelivery(t *testing.T) {
	downs := make(chan Down, 1)

	Spawn(func(ctx context.Context) {
		// the target waits for a message before exiting, so it is still
		// alive when Monitor runs.
		targetPid, targetHandle, _ := SpawnOptExtended(func(ctx context.Context) {
			_, _ = SelectiveReceive(ctx, OnAny(func(Envelope) any { return nil }))
			Exit(CustomExit("gone"))
		}, SpawnOpt{})
		ref, err := Monitor(targetPid)
		require.NoError(t, err)
		Send(targetPid, struct{}{})

		v, err := SelectiveReceive(ctx, On(func(d Down) any { return d }))
		require.NoError(t, err)
		d := v.(Down)
		require.Equal(t, ref, d.Ref)
		downs <- d

		waitDone := make(chan struct{})
		go func() {
			targetHandle.Wait(context.Background())
			close(waitDone)
		}()
		<-waitDone
	})

	select {
	case d := <-downs:
		assert.Equal(t, ExitCustom, d.Reason.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("monitor never observed a Down message")
	}
}

func TestSelectiveReceivePreservesNonMatches(t *testing.T) {
	order := make(chan []any, 1)

	pid := Spawn(func(ctx context.Context) {
		// the second message (a string) is matched first, out of arrival
		// order; the first message (an int) must still be observed next,
		// by a plain wildcard receive.
		_, err := SelectiveReceive(ctx, On(func(s string) any { return s }))
		require.NoError(t, err)

		var seen []any
		v, err := SelectiveReceive(ctx, OnAny(func(env Envelope) any {
			n, _ := Peek[int](env)
			return n
		}))
		require.NoError(t, err)
		seen = append(seen, v)
		order <- seen
	})

	Send(pid, 1)
	Send(pid, "two")

	select {
	case seen := <-order:
		require.Len(t, seen, 1)
		assert.Equal(t, 1, seen[0])
	case <-time.After(5 * time.Second):
		t.Fatal("selective receive did not preserve the non-matched message")
	}
}

func TestAfterTimeout(t *testing.T) {
	_, handle, _ := SpawnOptExtended(func(ctx context.Context) {
		v, err := SelectiveReceive(ctx,
			On(func(int) any { return "matched" }),
			After(20*time.Millisecond, func() any { return "timed out" }),
		)
		require.NoError(t, err)
		assert.Equal(t, "timed out", v)
	}, SpawnOpt{})

	waitHandle(t, handle)
}

func TestDistinctPidsAreUnique(t *testing.T) {
	seen := make(map[Pid]bool)
	for i := 0; i < 1000; i++ {
		p := nextPid()
		require.False(t, seen[p], "Pid %s allocated twice", p)
		seen[p] = true
	}
}
