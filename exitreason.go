package actor

import (
	"fmt"
	"reflect"
)

// ExitKind enumerates the closed set of reasons a process can terminate
// with. Callers construct an ExitReason through the exported constructors
// below (CustomExit, NoProcExit, PanicExit, ...), not through arbitrary Kind
// values.
type ExitKind uint8

const (
	// ExitNormal is the only ExitKind that does not propagate through links
	// (§4.3): a linked peer with trap_exit=false simply ignores it.
	ExitNormal ExitKind = iota
	// ExitCustom carries an arbitrary user-supplied reason value, e.g. from
	// Exit(CustomExit(err)).
	ExitCustom
	// ExitNoProc indicates an operation (link, or an internal lookup) that
	// targeted a Pid with no live Kernel/Mailbox entry.
	ExitNoProc
	// ExitPanic indicates the user function panicked; Value holds the
	// recovered value.
	ExitPanic
	// ExitKill is untrappable: it always terminates the process regardless
	// of trap_exit (§4.3, §8).
	ExitKill
	// ExitJoinError indicates the user function terminated abnormally
	// without panicking (the Go analogue of a failed task join — e.g. it
	// returned via runtime.Goexit()).
	ExitJoinError
)

// String renders the Kind's name (Normal, Custom, NoProc, Panic, Kill,
// JoinError).
func (k ExitKind) String() string {
	switch k {
	case ExitNormal:
		return "Normal"
	case ExitCustom:
		return "Custom"
	case ExitNoProc:
		return "NoProc"
	case ExitPanic:
		return "Panic"
	case ExitKill:
		return "Kill"
	case ExitJoinError:
		return "JoinError"
	default:
		return fmt.Sprintf("ExitKind(%d)", uint8(k))
	}
}

// ExitReason classifies how a process terminated. It is comparable with ==
// only when Value holds a comparable value or nil; CustomExit and PanicExit
// store whatever value they are given, which may not be comparable (== then
// panics). Equal compares Value with reflect.DeepEqual and works in every
// case.
type ExitReason struct {
	Kind ExitKind
	// Pid is populated only for ExitNoProc: the Pid that was missing.
	Pid Pid
	// Value is populated for ExitCustom (the user reason), ExitPanic (the
	// recovered value) and ExitJoinError (an optional detail, may be nil).
	Value any
}

// Normal is the zero-value-equivalent reason for a process that returned
// from its user function without error.
var Normal = ExitReason{Kind: ExitNormal}

// Kill is the untrappable termination reason.
var Kill = ExitReason{Kind: ExitKill}

// CustomExit constructs an ExitReason carrying an arbitrary user reason.
func CustomExit(reason any) ExitReason {
	return ExitReason{Kind: ExitCustom, Value: reason}
}

// NoProcExit constructs the ExitReason signaled when an operation targets a
// Pid with no live process.
func NoProcExit(pid Pid) ExitReason {
	return ExitReason{Kind: ExitNoProc, Pid: pid}
}

// PanicExit constructs the ExitReason delivered when a user function panics,
// recovered is the value passed to panic().
func PanicExit(recovered any) ExitReason {
	return ExitReason{Kind: ExitPanic, Value: recovered}
}

// JoinErrorExit constructs the ExitReason delivered when a user function
// terminates abnormally without panicking.
func JoinErrorExit(detail any) ExitReason {
	return ExitReason{Kind: ExitJoinError, Value: detail}
}

// Error implements the error interface so ExitReason can participate in
// errors.Is/errors.As chains, following the errors.go-style
// TypeError/TimeoutError cause-chain convention.
func (r ExitReason) Error() string {
	switch r.Kind {
	case ExitNoProc:
		return fmt.Sprintf("actor: exit: noproc: %s", r.Pid)
	case ExitPanic:
		return fmt.Sprintf("actor: exit: panic: %v", r.Value)
	case ExitJoinError:
		if r.Value != nil {
			return fmt.Sprintf("actor: exit: join error: %v", r.Value)
		}
		return "actor: exit: join error"
	case ExitCustom:
		return fmt.Sprintf("actor: exit: %v", r.Value)
	default:
		return fmt.Sprintf("actor: exit: %s", r.Kind)
	}
}

// Unwrap exposes Value as a cause, when it is itself an error, so
// errors.Is/errors.As can see through a Panic or Custom exit to the
// underlying error, if any.
func (r ExitReason) Unwrap() error {
	if err, ok := r.Value.(error); ok {
		return err
	}
	return nil
}

// Equal reports whether r and other represent the same exit reason.
func (r ExitReason) Equal(other ExitReason) bool {
	if r.Kind != other.Kind || r.Pid != other.Pid {
		return false
	}
	return reflect.DeepEqual(r.Value, other.Value)
}

// ExitSignal pairs the Pid that terminated (or is requesting an exit) with
// its ExitReason. It is the payload type both for the internal exit queue
// and for the ordinary message a trapping process receives when it
// intercepts an incoming exit (§4.3).
type ExitSignal struct {
	From   Pid
	Reason ExitReason
}

// Down is delivered as an ordinary message to a monitoring Pid's mailbox
// when the monitored process terminates (§9's recommended minimal monitor
// semantics).
type Down struct {
	Ref    MonitorRef
	Pid    Pid
	Reason ExitReason
}
