// Package constprop implements bit-level constant and don't-care propagation
// over the graph and the removal of pass-through components it uncovers.
package constprop

import (
	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/report"
	"github.com/orcc/xronos-sub018/value"
)

// PushForward computes the values of the result buses of `c` from the values
// on its input ports and merges them into the buses.  It returns whether any
// bus was refined.
func PushForward(g *lim.Graph, c *lim.Component) bool {
	switch c.Kind {
	case lim.KindConstant:
		return refineBus(g, g.Result(c), c.Const)
	case lim.KindOp:
		out := g.Bus(g.Result(c))
		return refineBus(g, out.ID, forwardOp(c.Op, inputValues(g, c.Ports), out.Width(), out.Signed()))
	case lim.KindMux:
		return refineBus(g, g.Result(c), ForwardMux(g, c))
	case lim.KindLoop:
		return forwardLoop(g, c)
	default:
		return false
	}
}

// ForwardMux computes the output value of an encoded multiplexer.  With a
// constant select the output is the selected input verbatim; otherwise each bit
// is the agreement of that bit over all data inputs.
func ForwardMux(g *lim.Graph, c *lim.Component) value.Value {
	out := g.Bus(g.Result(c))
	data := inputValues(g, c.Ports[1:])

	if k, ok := ConstantSelect(g, c); ok {
		return data[k].Resize(out.Width())
	}

	return value.Agree(out.Width(), out.Signed(), data...)
}

// ConstantSelect returns the data input index chosen by a mux whose select is
// constant.  A constant select outside the data inputs is a malformed graph.
func ConstantSelect(g *lim.Graph, c *lim.Component) (int, bool) {
	sel, ok := g.SourceOf(c.Ports[0]).Value.Int()
	if !ok {
		return 0, false
	}

	if n := len(c.Ports) - 1; sel < 0 || sel >= int64(n) {
		report.ICEAt(c.String(), "select value %d outside of %d data inputs", sel, n)
	}

	return int(sel), true
}

// forwardLoop carries the initial value of loop-invariant variables (those
// whose end-of-iteration value is the carried value itself) into the body and
// past the loop.  Other carried values stay unknown until unrolled.
func forwardLoop(g *lim.Graph, c *lim.Component) bool {
	carried := g.Carried(c)
	results := g.Results(c)

	changed := false
	for j := 0; j < c.Loop.Vars; j++ {
		if g.Port(c.NextPort(j)).Source != carried[j] {
			continue
		}

		init := g.SourceOf(c.InitPort(j)).Value
		changed = refineBus(g, carried[j], init) || changed
		changed = refineBus(g, results[j], init) || changed
	}

	return changed
}

// -----------------------------------------------------------------------------

// forwardOp computes the value of an operator at the given output width.
func forwardOp(op lim.OpKind, ins []value.Value, width int, signed bool) value.Value {
	if k, ok := identityOperand(op, ins, width); ok {
		return ins[k].Resize(width).AsSigned(signed)
	}

	switch op {
	case lim.OpAnd, lim.OpOr, lim.OpXor:
		res := make([]value.Bit, width)
		for i := range res {
			res[i] = bitwise(op, ins[0].Extended(i), ins[1].Extended(i))
		}

		return value.FromBits(res, signed)
	case lim.OpNot:
		res := make([]value.Bit, width)
		for i := range res {
			switch b := ins[0].Extended(i); b {
			case value.Zero:
				res[i] = value.One
			case value.One:
				res[i] = value.Zero
			default:
				res[i] = b
			}
		}

		return value.FromBits(res, signed)
	case lim.OpShl, lim.OpShr:
		if s, ok := ins[1].Int(); ok && s >= 0 && s < 64 {
			return shiftConst(op, ins[0], int(s), width, signed)
		}
	case lim.OpMul:
		if allBits(ins[0], value.Zero, ins[0].Size()) || allBits(ins[1], value.Zero, ins[1].Size()) {
			return value.Const(0, width, signed)
		}
	}

	// everything else is only known when every operand is
	a, aok := ins[0].Int()
	b := int64(0)
	bok := true
	if len(ins) > 1 {
		b, bok = ins[1].Int()
	}

	if aok && bok {
		if r, ok := lim.EvalOp(op, a, b, width, signed); ok {
			return value.Const(r, width, signed)
		}
	}

	return value.New(width, signed)
}

// identityOperand returns the operand an operator passes through unchanged
// because the other operand is its identity element.
func identityOperand(op lim.OpKind, ins []value.Value, width int) (int, bool) {
	switch op {
	case lim.OpAdd, lim.OpOr, lim.OpXor:
		if allBits(ins[1], value.Zero, width) {
			return 0, true
		}

		if allBits(ins[0], value.Zero, width) {
			return 1, true
		}
	case lim.OpAnd:
		if allBits(ins[1], value.One, width) {
			return 0, true
		}

		if allBits(ins[0], value.One, width) {
			return 1, true
		}
	case lim.OpSub, lim.OpShl, lim.OpShr:
		if allBits(ins[1], value.Zero, ins[1].Size()) {
			return 0, true
		}
	case lim.OpMul:
		if isOne(ins[1]) {
			return 0, true
		}

		if isOne(ins[0]) {
			return 1, true
		}
	case lim.OpDiv:
		if isOne(ins[1]) {
			return 0, true
		}
	}

	return 0, false
}

// isOne returns whether every bit of v is known and v is the integer 1.
func isOne(v value.Value) bool {
	if v.Extended(0) != value.One || (v.Signed() && v.Size() == 1) {
		return false
	}

	return allBits(v.With(0, value.Zero), value.Zero, v.Size())
}

// allBits returns whether the first `width` bits of v (extended) are all b.
func allBits(v value.Value, b value.Bit, width int) bool {
	for i := 0; i < width; i++ {
		if v.Extended(i) != b {
			return false
		}
	}

	return true
}

// bitwise computes one bit of a bitwise operator.  A don't-care bit may take
// any value: combined with a bit that does not decide the result it stays
// don't-care, combined with an unknown bit the result is unknown.
func bitwise(op lim.OpKind, a, b value.Bit) value.Bit {
	switch op {
	case lim.OpAnd:
		switch {
		case a == value.Zero || b == value.Zero:
			return value.Zero
		case a == value.One && b == value.One:
			return value.One
		case a == value.Care || b == value.Care:
			return value.Care
		default:
			return value.DontCare
		}
	case lim.OpOr:
		switch {
		case a == value.One || b == value.One:
			return value.One
		case a == value.Zero && b == value.Zero:
			return value.Zero
		case a == value.Care || b == value.Care:
			return value.Care
		default:
			return value.DontCare
		}
	default:
		switch {
		case a.IsConstant() && b.IsConstant():
			return value.BitOf(a != b)
		case a == value.Care || b == value.Care:
			return value.Care
		default:
			return value.DontCare
		}
	}
}

// shiftConst shifts a value by a constant amount bit by bit.
func shiftConst(op lim.OpKind, v value.Value, s, width int, signed bool) value.Value {
	res := make([]value.Bit, width)
	for i := range res {
		if op == lim.OpShl {
			if i < s {
				res[i] = value.Zero
			} else {
				res[i] = v.Extended(i - s)
			}
		} else {
			res[i] = v.Extended(i + s)
		}
	}

	return value.FromBits(res, signed)
}

// -----------------------------------------------------------------------------

func inputValues(g *lim.Graph, ports []lim.PortID) []value.Value {
	vals := make([]value.Value, len(ports))
	for i, p := range ports {
		vals[i] = g.SourceOf(p).Value
	}

	return vals
}

func refineBus(g *lim.Graph, b lim.BusID, v value.Value) bool {
	bus := g.Bus(b)
	merged, changed := value.Merge(bus.Value, v.Resize(bus.Width()))
	if changed {
		bus.Value = merged
	}

	return changed
}
