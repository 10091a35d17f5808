// Package session holds the explicit compilation context threaded through
// every pass of the pipeline.
package session

import (
	"github.com/orcc/xronos-sub018/config"
	"github.com/orcc/xronos-sub018/report"
)

// Context is the state shared by all passes of one compilation: the options
// in effect and the reporter that collects diagnostics.  Passes must not keep
// any state of their own outside of the context and the graph.
type Context struct {
	Options  *config.Options
	Reporter *report.Reporter
}

// New creates a new compilation context.  A nil options pointer selects the
// defaults and a nil reporter creates one from the options' log level.
func New(opts *config.Options, rep *report.Reporter) *Context {
	if opts == nil {
		opts = config.Default()
	}

	if rep == nil {
		rep = report.NewReporter(report.ParseLogLevel(opts.LogLevel))
	}

	return &Context{Options: opts, Reporter: rep}
}

// Quiet creates a context with the given options that reports nothing to the
// console.  It is mainly used by tests and library callers.
func Quiet(opts *config.Options) *Context {
	return New(opts, report.NewReporter(report.LogLevelSilent))
}

// Info reports an informational diagnostic.
func (c *Context) Info(kind, msg string, args ...interface{}) {
	c.Reporter.ReportInfo(kind, msg, args...)
}
