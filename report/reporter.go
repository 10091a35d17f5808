package report

import (
	"fmt"
	"sync"
	"time"
)

// Reporter is responsible for reporting errors, warnings, and informational
// diagnostics produced while a design is compiled.  The reporter respects its
// log level and is synchronized: its methods can be safely called from
// multiple goroutines.  Every pass receives the reporter through its context:
// there is no global reporter instance.
type Reporter struct {
	// The mutex used to synchonize different report method calls.
	m *sync.Mutex

	// The selected log level of the reporter.  This must be one of the
	// enumerated log levels below.
	logLevel int

	// The number of errors reported so far.
	errorCount int

	// The number of warnings reported so far.
	warnCount int

	// diagnostics records every message reported regardless of log level so
	// that callers (and tests) can inspect what the passes decided.
	diagnostics []Diagnostic

	// The currently running phase (if any).
	phase *phaseDisplay

	// The time at which the reporter was created.
	startTime time.Time
}

// Enumeration of the different possible log levels.
const (
	LogLevelSilent  = iota // Displays no output.
	LogLevelError          // Displays only errors to the user.
	LogLevelWarn           // Displays only warnings and errors to the user.
	LogLevelVerbose        // Displays all compilation messages to the user (default).
)

// Severity classifies a diagnostic.
type Severity int

// Enumeration of diagnostic severities.
const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	default:
		return "error"
	}
}

// Diagnostic is a single message reported during compilation.
type Diagnostic struct {
	// The severity of the message.
	Severity Severity

	// The kind of message: the subsystem which produced it (eg. "Loop",
	// "Schedule", "Config").
	Kind string

	// The formatted message text.
	Message string
}

// NewReporter creates a new reporter with the given log level.
func NewReporter(logLevel int) *Reporter {
	return &Reporter{
		m:         &sync.Mutex{},
		logLevel:  logLevel,
		startTime: time.Now(),
	}
}

// ParseLogLevel converts a log level name into one of the enumerated log
// levels.  Everything else (including invalid log levels) defaults to verbose.
func ParseLogLevel(name string) int {
	switch name {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "warn", "warning":
		return LogLevelWarn
	default:
		return LogLevelVerbose
	}
}

// LogLevel returns the log level of the reporter.
func (r *Reporter) LogLevel() int {
	return r.logLevel
}

// -----------------------------------------------------------------------------

// ReportInfo reports an informational diagnostic.  These are used for
// decisions that degrade the result without being errors: an unknown loop
// bound, an excluded loop, an opened access latency.
func (r *Reporter) ReportInfo(kind, msg string, args ...interface{}) {
	r.handle(SevInfo, kind, fmt.Sprintf(msg, args...))
}

// ReportWarning reports a compilation warning.
func (r *Reporter) ReportWarning(kind, msg string, args ...interface{}) {
	r.handle(SevWarning, kind, fmt.Sprintf(msg, args...))
}

// ReportError reports a non-fatal, standard Go error.
func (r *Reporter) ReportError(kind string, err error) {
	r.handle(SevError, kind, err.Error())
}

// handle records a diagnostic and displays it if the log level allows.
func (r *Reporter) handle(sev Severity, kind, msg string) {
	r.m.Lock()
	defer r.m.Unlock()

	r.diagnostics = append(r.diagnostics, Diagnostic{Severity: sev, Kind: kind, Message: msg})

	switch sev {
	case SevError:
		r.errorCount++
		if r.logLevel > LogLevelSilent {
			r.endPhase(false)
			displayError(kind, msg)
		}
	case SevWarning:
		r.warnCount++
		if r.logLevel > LogLevelError {
			displayWarning(kind, msg)
		}
	case SevInfo:
		if r.logLevel == LogLevelVerbose && r.phase == nil {
			displayInfo(kind, msg)
		}
	}
}

// -----------------------------------------------------------------------------

// Diagnostics returns a copy of all the diagnostics reported so far in the
// order they were reported.
func (r *Reporter) Diagnostics() []Diagnostic {
	r.m.Lock()
	defer r.m.Unlock()

	diags := make([]Diagnostic, len(r.diagnostics))
	copy(diags, r.diagnostics)
	return diags
}

// AnyErrors returns whether or not any errors were detected.
func (r *Reporter) AnyErrors() bool {
	return r.errorCount > 0
}

// ErrorCount returns the number of reported errors.
func (r *Reporter) ErrorCount() int {
	return r.errorCount
}

// WarningCount returns the number of reported warnings.
func (r *Reporter) WarningCount() int {
	return r.warnCount
}

// -----------------------------------------------------------------------------
// Below are all the "aesthetic" reporting functions that will only run if the
// log level is verbose.

// ReportCompileHeader reports the pre-compilation header: the compiler version
// and the design being compiled.
func (r *Reporter) ReportCompileHeader(version, design string) {
	if r.logLevel == LogLevelVerbose {
		displayCompileHeader(version, design)
	}
}

// BeginPhase starts a compilation phase.  Info messages reported while a phase
// spinner is running are still recorded but only displayed once the phase
// concludes.
func (r *Reporter) BeginPhase(phase string) {
	r.m.Lock()
	defer r.m.Unlock()

	if r.logLevel == LogLevelVerbose {
		r.endPhase(true)
		r.phase = beginPhase(phase, len(r.diagnostics))
	}
}

// EndPhase concludes the current phase.
func (r *Reporter) EndPhase(success bool) {
	r.m.Lock()
	defer r.m.Unlock()

	r.endPhase(success)
}

// endPhase concludes the current phase and flushes the info messages that
// were held back while it ran.  The mutex must already be held.
func (r *Reporter) endPhase(success bool) {
	if r.phase == nil {
		return
	}

	held := r.phase.firstDiagnostic
	r.phase.end(success)
	r.phase = nil

	for _, d := range r.diagnostics[held:] {
		if d.Severity == SevInfo {
			displayInfo(d.Kind, d.Message)
		}
	}
}

// ReportCompilationFinished reports the concluding message for compilation.
func (r *Reporter) ReportCompilationFinished() {
	r.m.Lock()
	defer r.m.Unlock()

	r.endPhase(r.errorCount == 0)

	if r.logLevel == LogLevelVerbose {
		displayCompilationFinished(r.errorCount == 0, r.errorCount, r.warnCount, time.Since(r.startTime))
	}
}
