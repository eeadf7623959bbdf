package actor

import (
	"os"
	"sync"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	stumpy "github.com/joeycumines/logiface-stumpy"
)

// Logger is the structured-logging interface the runtime writes its
// diagnostics through (§7): noproc warnings, exit-arbitration decisions, and
// fatal programming-error reports. It is exactly logiface's own Logger type,
// parameterized over its generic Event type, so any logiface backend
// (stumpy, slog, zerolog, logrus) can be plugged in via
// Configure(WithLogger(...)) without this package's code changing.
type Logger = logiface.Logger[logiface.Event]

var (
	loggerMu     sync.RWMutex
	globalLogger *Logger = defaultLogger()

	noprocLimiter = catrate.NewLimiter(map[time.Duration]int{
		time.Second: 1,
	})
)

func defaultLogger() *Logger {
	return stumpy.L.New(stumpy.WithStumpy(stumpy.WithWriter(os.Stderr))).Logger()
}

func currentLogger() *Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger
}

// Option configures package-wide runtime behavior via Configure, following
// the same functional-options convention as logiface.Option[E] and
// eventloop.Option.
type Option func(*config)

type config struct {
	logger        *Logger
	noprocWindow  time.Duration
	noprocPerTick int
}

// Configure applies opts to the package's global configuration: the active
// Logger and the noproc-warning rate-limit window. Safe to call at any time;
// takes effect for subsequent operations.
func Configure(opts ...Option) {
	c := config{noprocWindow: time.Second, noprocPerTick: 1}
	for _, o := range opts {
		o(&c)
	}
	if c.logger != nil {
		loggerMu.Lock()
		globalLogger = c.logger
		loggerMu.Unlock()
	}
	if c.noprocWindow > 0 {
		noprocLimiter = catrate.NewLimiter(map[time.Duration]int{
			c.noprocWindow: c.noprocPerTick,
		})
	}
}

// WithLogger configures the logger used for the runtime's diagnostics. Any
// logiface.Logger[logiface.Event] is accepted, e.g. one built from
// logiface-slog or logiface-zerolog rather than the default stumpy backend.
func WithLogger(l *Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithNoProcRateLimit configures the sliding window used to rate-limit
// "send to dead Pid" trace warnings (§4.2, §7): at most count warnings are
// logged per Pid, per window.
func WithNoProcRateLimit(window time.Duration, count int) Option {
	return func(c *config) {
		c.noprocWindow = window
		c.noprocPerTick = count
	}
}

// warnNoProc logs a rate-limited trace warning for a send/send_exit that
// targeted a Pid with no live mailbox.
func warnNoProc(op string, target Pid) {
	if _, ok := noprocLimiter.Allow(target); !ok {
		return
	}
	currentLogger().Warning().
		Str("op", op).
		Stringer("pid", target).
		Log("actor: send to nonexistent process")
}

// logExitArbitration records the outcome of one exit-signal arbitration
// decision (§4.3), at debug level: this is high-frequency enough in a
// supervision tree under churn that it doesn't belong at warning level.
func logExitArbitration(pid Pid, sig ExitSignal, trapExit bool, outcome string) {
	currentLogger().Debug().
		Stringer("pid", pid).
		Stringer("from", sig.From).
		Str("reason", sig.Reason.Kind.String()).
		Bool("trap_exit", trapExit).
		Str("outcome", outcome).
		Log("actor: exit arbitration")
}

// fatalf reports an invariant violation (§7: myself() outside a process, a
// missing kernel/inbox during supervision) as an emergency-level log event,
// then aborts the host. logiface.Logger.Panic() itself panics once the event
// has been written, so the failure is always observed by the configured
// logger, not just a bare runtime panic message.
func fatalf(msg string) {
	b := currentLogger().Panic()
	if b == nil {
		panic(msg)
	}
	b.Log(msg)
}
