package loop

import (
	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/session"
)

// Pass analyzes every loop of the graph, innermost first, and unrolls those
// eligible for it.  Loops created by unrolling an enclosing loop are handled
// by the next pass.  It returns the number of loops unrolled.
func Pass(g *lim.Graph, ctx *session.Context) int {
	var loops []lim.ComponentID
	g.Walk(g.Design, lim.Forward, lim.BottomUp, func(c *lim.Component) {
		if c.Kind == lim.KindLoop {
			loops = append(loops, c.ID)
		}
	})

	unrolled := 0
	for _, id := range loops {
		c := g.Component(id)
		if c == nil {
			continue
		}

		before := *c.Loop
		d := Analyze(g, c, ctx)

		if d.Unroll {
			ctx.Info("loop", "%s: unrolling %d iterations", c, d.Iterations)
			Unroll(g, id, d.Iterations)
			unrolled++
			continue
		}

		if before.Reason != d.Reason || before.Iterations != d.Iterations {
			ctx.Info("loop", "%s: not unrolled: %s", c, d.Reason)
		}
	}

	return unrolled
}
