package constprop

import (
	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/session"
)

// Propagate alternates forward value propagation and backward care analysis
// over the whole graph until neither refines anything.  It returns whether the
// graph was refined at all.
func Propagate(g *lim.Graph, ctx *session.Context) bool {
	modified := false
	for passes := 1; ; passes++ {
		changed := false

		g.Walk(g.Design, lim.Forward, lim.TopDown, func(c *lim.Component) {
			changed = PushForward(g, c) || changed
		})

		g.Walk(g.Design, lim.Reverse, lim.BottomUp, func(c *lim.Component) {
			changed = PushBackward(g, c) || changed
		})

		if !changed {
			if modified {
				ctx.Info("constprop", "values settled after %d passes", passes)
			}

			return modified
		}

		modified = true
	}
}
