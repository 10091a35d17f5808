package constprop

import (
	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/session"
	"github.com/orcc/xronos-sub018/value"
)

// IsPassThrough returns whether the result of `c` is always equal to the value
// on one of its ports, and that port.  These are multiplexers with a constant
// select or with identical inputs and operators applied to their identity
// element.  Width or sign changes are never pass-throughs.
func IsPassThrough(g *lim.Graph, c *lim.Component) (lim.PortID, bool) {
	if !lim.IsPure(c) || c.Kind == lim.KindConstant {
		return 0, false
	}

	out := g.Bus(g.Result(c))
	sameShape := func(p lim.PortID) bool {
		src := g.SourceOf(p)
		return src.Width() == out.Width() && src.Signed() == out.Signed()
	}

	switch c.Kind {
	case lim.KindMux:
		if k, ok := ConstantSelect(g, c); ok {
			p := c.Ports[k+1]
			return p, sameShape(p)
		}

		first := g.Port(c.Ports[1]).Source
		for _, p := range c.Ports[2:] {
			if g.Port(p).Source != first {
				return 0, false
			}
		}

		return c.Ports[1], sameShape(c.Ports[1])
	case lim.KindOp:
		if c.Op.Arity() != 2 {
			return 0, false
		}

		ins := []value.Value{g.SourceOf(c.Ports[0]).Value, g.SourceOf(c.Ports[1]).Value}
		if k, ok := identityOperand(c.Op, ins, out.Width()); ok {
			return c.Ports[k], sameShape(c.Ports[k])
		}
	}

	return 0, false
}

// RemovePassThroughs bypasses every pass-through component of the graph.  The
// consumers of each removed component read what the component passed through.
// It returns the number of components removed.
func RemovePassThroughs(g *lim.Graph, ctx *session.Context) int {
	var wl lim.Worklist
	g.Walk(g.Design, lim.Forward, lim.TopDown, func(c *lim.Component) {
		if p, ok := IsPassThrough(g, c); ok {
			wl.Bypass(c.ID, p)
		}
	})

	n := wl.Apply(g)
	if n > 0 {
		ctx.Info("constprop", "removed %d pass-through components", n)
	}

	return n
}
