package actor

import (
	"fmt"
	"sync/atomic"
)

// Pid is an opaque process identifier, allocated from a monotonically
// increasing, process-wide counter. Values are never reused within a single
// run of the host program. Pid is a distinct type from MonitorRef so the two
// cannot be interchanged at compile time, even though both are drawn from
// 32-bit counters with identical allocation discipline.
type Pid uint32

// MonitorRef identifies a single monitor relationship, allocated from its own
// monotonically increasing counter, independent of the Pid counter.
type MonitorRef uint32

// String renders the Pid in "Pid<N>" form.
func (p Pid) String() string {
	return fmt.Sprintf("Pid<%d>", uint32(p))
}

// String renders the MonitorRef in "MonitorRef<N>" form.
func (r MonitorRef) String() string {
	return fmt.Sprintf("MonitorRef<%d>", uint32(r))
}

var (
	pidCounter        atomic.Uint32
	monitorRefCounter atomic.Uint32
)

// nextPid allocates and returns the next Pid. The counter is incremented and
// the new value returned (atomic Add), so the first allocated Pid is 1;
// Pid(0) is never issued and may be used by callers as a "no Pid" sentinel.
func nextPid() Pid {
	return Pid(pidCounter.Add(1))
}

// nextMonitorRef allocates and returns the next MonitorRef, from a counter
// entirely separate from the Pid counter.
func nextMonitorRef() MonitorRef {
	return MonitorRef(monitorRefCounter.Add(1))
}

// Cpid reads, without reserving, the value that the next allocated Pid will
// have. It is a diagnostic only: concurrent spawns may race ahead of it
// immediately after it returns.
func Cpid() uint32 {
	return pidCounter.Load() + 1
}

// MonitorCount reads, without reserving, the value that the next allocated
// MonitorRef will have. Diagnostic only, same caveats as Cpid.
func MonitorCount() uint32 {
	return monitorRefCounter.Load() + 1
}
