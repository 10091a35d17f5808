package constprop

import (
	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/value"
)

// PushBackward computes which bits of its inputs `c` needs from the bits of
// its results its consumers need.  Bits not needed become DontCare on the
// input ports and, once no consumer needs them, on the source buses.  It
// returns whether any care vector was refined.
func PushBackward(g *lim.Graph, c *lim.Component) bool {
	if !lim.IsPure(c) || c.Kind == lim.KindConstant {
		return false
	}

	out := g.Bus(g.Result(c))
	needed := neededBits(out)

	var cares []value.Value
	switch c.Kind {
	case lim.KindMux:
		cares = backwardMux(g, c, needed)
	case lim.KindOp:
		cares = backwardOp(g, c, needed)
	}

	changed := false
	for i, p := range c.Ports {
		port := g.Port(p)
		merged, mod := value.MergeCare(port.Care, cares[i])
		if mod {
			port.Care = merged
			changed = true
		}
	}

	if changed {
		for _, p := range c.Ports {
			updateBusCare(g, g.Port(p).Source)
		}
	}

	return changed
}

// neededBits returns, per bit of a bus, whether some consumer needs the bit
// and it is not already known.
func neededBits(b *lim.Bus) []bool {
	needed := make([]bool, b.Width())
	for i := range needed {
		needed[i] = b.Care.Bit(i) == value.Care && b.Value.Bit(i) == value.Care
	}

	return needed
}

// backwardMux keeps a data bit only where the corresponding output bit is
// needed.  The select is always needed.
func backwardMux(g *lim.Graph, c *lim.Component, needed []bool) []value.Value {
	cares := make([]value.Value, len(c.Ports))
	cares[0] = g.Port(c.Ports[0]).Care

	for k, p := range c.Ports[1:] {
		src := g.SourceOf(p)
		bits := make([]value.Bit, src.Width())
		for i := range bits {
			bits[i] = careBit(extendedNeeded(needed, i, src))
		}

		cares[k+1] = value.FromBits(bits, src.Signed())
	}

	return cares
}

// backwardOp derives the input care of an operator.
func backwardOp(g *lim.Graph, c *lim.Component, needed []bool) []value.Value {
	ins := make([]*lim.Bus, len(c.Ports))
	for i, p := range c.Ports {
		ins[i] = g.SourceOf(p)
	}

	if !anyNeeded(needed, 0) {
		cares := make([]value.Value, len(ins))
		for i, in := range ins {
			cares[i] = value.Fill(in.Width(), in.Signed(), value.DontCare)
		}

		return cares
	}

	var rule func(k, i int) bool
	switch c.Op {
	case lim.OpAnd, lim.OpOr, lim.OpXor, lim.OpNot:
		rule = func(k, i int) bool {
			if !extendedNeeded(needed, i, ins[k]) {
				return false
			}

			if len(ins) == 2 {
				other := ins[1-k].Value.Extended(i)
				if c.Op == lim.OpAnd && other == value.Zero || c.Op == lim.OpOr && other == value.One {
					return false
				}
			}

			return true
		}
	case lim.OpAdd, lim.OpSub:
		// carries only travel towards the most significant bit
		rule = func(k, i int) bool {
			return anyNeeded(needed, i)
		}
	case lim.OpShl:
		s, ok := ins[1].Value.Int()
		rule = func(k, i int) bool {
			if k == 1 || !ok {
				return true
			}

			return extendedNeeded(needed, i+int(s), ins[0])
		}
	default:
		rule = func(k, i int) bool { return true }
	}

	cares := make([]value.Value, len(ins))
	for k, in := range ins {
		bits := make([]value.Bit, in.Width())
		for i := range bits {
			bits[i] = careBit(rule(k, i))
		}

		cares[k] = value.FromBits(bits, in.Signed())
	}

	return cares
}

// updateBusCare recomputes the care vector of a bus from its consumers: a bit
// is DontCare once every consumer marks it so.
func updateBusCare(g *lim.Graph, b lim.BusID) {
	bus := g.Bus(b)
	cons := g.Consumers(b)
	if len(cons) == 0 || len(g.ControlUsers(b)) > 0 {
		return
	}

	bits := make([]value.Bit, bus.Width())
	for i := range bits {
		bits[i] = value.DontCare
		for _, p := range cons {
			if g.Port(p).Care.Bit(i) != value.DontCare {
				bits[i] = value.Care
				break
			}
		}
	}

	if merged, changed := value.MergeCare(bus.Care, value.FromBits(bits, bus.Signed())); changed {
		bus.Care = merged
	}
}

// extendedNeeded returns whether output bit i is needed when it is read from
// an input that is extended to the output width.  The most significant bit of
// a signed input also feeds every output bit above it.
func extendedNeeded(needed []bool, i int, in *lim.Bus) bool {
	if in.Signed() && i >= in.Width()-1 {
		return anyNeeded(needed, i)
	}

	return i < len(needed) && needed[i]
}

func anyNeeded(needed []bool, from int) bool {
	for i := from; i < len(needed); i++ {
		if needed[i] {
			return true
		}
	}

	return false
}

func careBit(needed bool) value.Bit {
	if needed {
		return value.Care
	}

	return value.DontCare
}
