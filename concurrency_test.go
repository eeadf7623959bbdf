package actor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// tagged is what each concurrent sender in TestPerSenderFIFOUnderContention
// sends: its own sender id and a strictly increasing sequence number, so the
// receiving process can verify §8's per-sender FIFO guarantee even though
// messages from distinct senders may arrive interleaved.
type tagged struct {
	sender int
	seq    int
}

// TestPerSenderFIFOUnderContention spawns several concurrent senders (via
// errgroup, whose Wait reports the first error any sender goroutine returns)
// racing to deliver to one receiver, and checks that each sender's messages
// were still observed in that sender's own send order — the ordering
// guarantee is per-sender, not global (§4.2, §8).
func TestPerSenderFIFOUnderContention(t *testing.T) {
	const senders = 8
	const perSender = 200

	received := make(chan tagged, senders*perSender)
	pid, handle, _ := SpawnOptExtended(func(ctx context.Context) {
		for i := 0; i < senders*perSender; i++ {
			v, err := SelectiveReceive(ctx, On(func(tg tagged) any { return tg }))
			require.NoError(t, err)
			received <- v.(tagged)
		}
	}, SpawnOpt{})

	var g errgroup.Group
	for s := 0; s < senders; s++ {
		s := s
		g.Go(func() error {
			for i := 0; i < perSender; i++ {
				Send(pid, tagged{sender: s, seq: i})
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	waitHandle(t, handle)
	close(received)

	lastSeq := make(map[int]int)
	for s := 0; s < senders; s++ {
		lastSeq[s] = -1
	}
	for tg := range received {
		assert.Greater(t, tg.seq, lastSeq[tg.sender], "sender %d observed out of order", tg.sender)
		lastSeq[tg.sender] = tg.seq
	}
	for s := 0; s < senders; s++ {
		assert.Equal(t, perSender-1, lastSeq[s], "sender %d: not all messages observed", s)
	}
}

// TestConcurrentSpawnYieldsUniquePids fans out concurrent spawns (again via
// errgroup) and checks the universal invariant that no two ever share a
// numeric Pid value, even under contention on the shared counter.
func TestConcurrentSpawnYieldsUniquePids(t *testing.T) {
	const n = 500

	pids := make(chan Pid, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			done := make(chan struct{})
			pid := Spawn(func(context.Context) {
				close(done)
			})
			<-done
			pids <- pid
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(pids)

	seen := make(map[Pid]bool, n)
	for pid := range pids {
		require.False(t, seen[pid], "Pid %s allocated twice", pid)
		seen[pid] = true
	}
}
