package loop

import (
	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/report"
)

// Unroll replaces a loop by a block holding `n` copies of its body in
// sequence.  Copy i reads the variables computed by copy i-1 and the first
// copy reads the initial values.  Consumers of the loop's results read the
// values of the last copy.  The decision logic left without consumers is
// removed.  It returns the new block.
func Unroll(g *lim.Graph, id lim.ComponentID, n int) lim.ComponentID {
	c := g.MustComponent(id)
	if n < 0 {
		report.ICEAt(c.String(), "cannot unroll %d iterations", n)
	}

	carried := g.Carried(c)
	vars := make(map[lim.BusID]int, len(carried))
	for j, b := range carried {
		vars[b] = j
	}

	src := make([]lim.BusID, c.Loop.Vars)
	nexts := make([]lim.BusID, c.Loop.Vars)
	for j := range src {
		src[j] = g.Port(c.InitPort(j)).Source
		nexts[j] = g.Port(c.NextPort(j)).Source
	}

	blk := g.NewBlockBefore(id, c.Name+"_unrolled")
	for _, b := range c.Control {
		g.AddControl(blk, b)
	}

	for i := 0; i < n; i++ {
		subst := make(map[lim.BusID]lim.BusID, len(carried))
		for j, b := range carried {
			subst[b] = src[j]
		}

		_, busMap := g.Clone(c.Body(), blk, subst)

		next := make([]lim.BusID, len(src))
		for j, nb := range nexts {
			switch k, isVar := vars[nb]; {
			case isVar:
				next[j] = src[k]
			case busMap[nb] != 0:
				next[j] = busMap[nb]
			default:
				next[j] = nb
			}
		}

		src = next
	}

	var wl lim.Worklist
	for j, b := range g.Results(c) {
		wl.Rewire(b, src[j])
	}

	wl.Rewire(g.DoneBus(c), g.DoneBus(g.MustComponent(blk)))
	wl.Remove(id)
	wl.Apply(g)
	g.RemoveDead(blk)

	return blk
}
