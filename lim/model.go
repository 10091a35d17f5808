package lim

import (
	"github.com/orcc/xronos-sub018/latency"
	"github.com/orcc/xronos-sub018/report"
)

// Operator latencies.  Multipliers are pipelined and accept a new operand pair
// every cycle.  Dividers are iterative and stall until done.
const (
	MulLatency = 2
	MulSpacing = 1
	DivLatency = 8
)

// modelLatency sets the latency and go spacing of a leaf from its kind.
func (g *Graph) modelLatency(c *Component) {
	c.Latency, c.Spacing = g.LeafLatency(c)
}

// LeafLatency returns the modelled latency of a leaf and its go spacing, zero
// for leaves that stall until their Done.
func (g *Graph) LeafLatency(c *Component) (latency.Latency, int) {
	switch c.Kind {
	case KindOp:
		switch c.Op {
		case OpMul:
			return latency.Fixed(MulLatency), MulSpacing
		case OpDiv:
			return latency.Fixed(DivLatency), 0
		}
	case KindAccess:
		// an access holds its resource until Done: the referee spaces
		// successive accesses on the same port from the Done of the first
		return AccessLatency(g.Resource(c.Access.Resource), c.Access.Kind), 0
	}

	return latency.Zero, 0
}

// AccessLatency returns the latency of an access of the given kind to the
// resource.  The set of legal accesses per resource kind is closed: anything
// else raises an ICE.
func AccessLatency(res *Resource, kind AccessKind) latency.Latency {
	switch res.Kind {
	case ResRegister:
		switch kind {
		case AccRead:
			return latency.Zero
		case AccWrite:
			return latency.One
		}
	case ResMemory:
		switch kind {
		case AccRead:
			return latency.Fixed(res.ReadLatency)
		case AccWrite:
			return latency.Fixed(res.WriteLatency)
		case AccStatus:
			return latency.Zero
		}
	case ResPin:
		switch kind {
		case AccRead, AccStatus:
			return latency.Zero
		case AccWrite:
			return latency.One
		}
	case ResInputStream:
		switch kind {
		case AccRead:
			return latency.Open(1)
		case AccPeek, AccStatus:
			return latency.Zero
		}
	case ResOutputStream:
		switch kind {
		case AccWrite:
			return latency.Open(1)
		case AccStatus:
			return latency.Zero
		}
	}

	report.ICE("illegal %s access to %s", kind, res)
	return latency.Zero
}

// accessArity returns the number of data ports of an access and whether it
// produces a result bus.
func accessArity(res *Resource, kind AccessKind) (int, bool) {
	// validates the access kind
	AccessLatency(res, kind)

	switch kind {
	case AccRead:
		if res.Kind == ResMemory {
			return 1, true
		}

		return 0, true
	case AccWrite:
		if res.Kind == ResMemory {
			return 2, false
		}

		return 1, false
	default:
		return 0, true
	}
}
