// Package build drives the passes of the scheduling core over one design.
package build

import (
	"github.com/orcc/xronos-sub018/constprop"
	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/loop"
	"github.com/orcc/xronos-sub018/referee"
	"github.com/orcc/xronos-sub018/report"
	"github.com/orcc/xronos-sub018/schedule"
	"github.com/orcc/xronos-sub018/session"
)

// Compiler holds the state of one compilation.
type Compiler struct {
	// g is the graph being compiled.  It is annotated in place.
	g *lim.Graph

	// ctx is the context shared by every pass.
	ctx *session.Context

	// passes is the number of optimization passes run so far.
	passes int
}

// NewCompiler creates a new compiler for the given graph.
func NewCompiler(g *lim.Graph, ctx *session.Context) *Compiler {
	return &Compiler{g: g, ctx: ctx}
}

// Compile verifies, optimizes, arbitrates and schedules the graph.  Internal
// errors raised by any pass are returned rather than propagated.
func Compile(g *lim.Graph, ctx *session.Context) (*schedule.Result, error) {
	return NewCompiler(g, ctx).Compile()
}

// Compile runs every phase of the compilation in order.
func (c *Compiler) Compile() (res *schedule.Result, err error) {
	rep := c.ctx.Reporter
	defer func() {
		if err != nil {
			rep.EndPhase(false)
		}
	}()
	defer report.CatchErrors(&err)

	rep.BeginPhase("Verifying")
	c.g.Verify()

	rep.BeginPhase("Optimizing")
	c.Optimize()

	rep.BeginPhase("Arbitrating")
	referee.Arbitrate(c.g, c.ctx)

	rep.BeginPhase("Scheduling")
	res = schedule.Schedule(c.g, c.ctx)

	rep.EndPhase(true)
	return res, nil
}

// Optimize repeats the enabled optimizations until none of them changes the
// graph or the pass limit is reached.  It returns the number of passes run.
func (c *Compiler) Optimize() int {
	opts := c.ctx.Options

	for c.passes < opts.MaxOptimizationPasses {
		c.passes++
		changed := false

		if opts.ConstantPropagation {
			changed = constprop.Propagate(c.g, c.ctx) || changed
		}

		if opts.PassThroughRemoval {
			changed = constprop.RemovePassThroughs(c.g, c.ctx) > 0 || changed
		}

		changed = loop.Pass(c.g, c.ctx) > 0 || changed

		if n := c.g.RemoveDead(c.g.Design); n > 0 {
			c.ctx.Info("build", "removed %d dead components", n)
			changed = true
		}

		if !changed {
			return c.passes
		}
	}

	c.ctx.Reporter.ReportWarning("Optimization", "optimization stopped after %d passes", c.passes)
	return c.passes
}
