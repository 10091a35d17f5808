package referee

import (
	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/session"
)

// Accesses returns the accesses of a resource in program order.
func Accesses(g *lim.Graph, res lim.ResourceID) []*lim.Component {
	return g.Collect(g.Design, func(c *lim.Component) bool {
		return c.Kind == lim.KindAccess && c.Access.Resource == res
	})
}

// Arbitrate synthesizes an arbiter for every resource with more than one
// access and records them on the graph.  Accesses of one task are steered by a
// mux.  Accesses from several tasks get a priority arbiter with one slot per
// task in declaration order; since they may then wait for a grant their
// latency is opened.
func Arbitrate(g *lim.Graph, ctx *session.Context) []*lim.Arbiter {
	g.Arbiters = nil

	tasks := g.Tasks()
	for _, res := range g.Resources() {
		accs := Accesses(g, res.ID)
		if len(accs) < 2 {
			continue
		}

		arb := &lim.Arbiter{Resource: res.ID, Kind: lim.ArbiterMux}
		for _, task := range tasks {
			slot := lim.ArbiterSlot{Task: task.ID}
			for _, a := range accs {
				if g.IsWithin(a.ID, task.ID) {
					slot.Accesses = append(slot.Accesses, a.ID)
				}
			}

			if len(slot.Accesses) > 0 {
				arb.Slots = append(arb.Slots, slot)
			}
		}

		if len(arb.Slots) > 1 {
			arb.Kind = lim.ArbiterPriority
			for _, a := range accs {
				if !a.Latency.IsUnknown() {
					a.Latency = a.Latency.Open()
					ctx.Info("referee", "%s: latency opened to %s by arbitration of %s", a, a.Latency, res)
				}
			}
		}

		ctx.Info("referee", "%s arbiter for %s with %d slots", arb.Kind, res, len(arb.Slots))
		g.Arbiters = append(g.Arbiters, arb)
	}

	return g.Arbiters
}
