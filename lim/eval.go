package lim

// Normalize truncates v to the given width and sign or zero extends it back to
// 64 bits according to the signedness.
func Normalize(v int64, width int, signed bool) int64 {
	if width >= 64 {
		return v
	}

	mask := int64(1)<<uint(width) - 1
	v &= mask
	if signed && v&(int64(1)<<uint(width-1)) != 0 {
		v |= ^mask
	}

	return v
}

// EvalOp evaluates an operator on concrete, normalized operands.  The result
// is normalized to the given width.  It returns false when the result is
// undefined (division by zero).
func EvalOp(op OpKind, a, b int64, width int, signed bool) (int64, bool) {
	var r int64

	switch op {
	case OpAdd:
		r = a + b
	case OpSub:
		r = a - b
	case OpMul:
		r = a * b
	case OpDiv:
		if b == 0 {
			return 0, false
		}

		r = a / b
	case OpAnd:
		r = a & b
	case OpOr:
		r = a | b
	case OpXor:
		r = a ^ b
	case OpNot:
		r = ^a
	case OpShl:
		if b < 0 || b >= 64 {
			r = 0
		} else {
			r = a << uint(b)
		}
	case OpShr:
		switch {
		case b < 0:
			r = a
		case b >= 64 && a < 0:
			r = -1
		case b >= 64:
			r = 0
		default:
			r = a >> uint(b)
		}
	case OpEq:
		r = boolInt(a == b)
	case OpNe:
		r = boolInt(a != b)
	case OpLt:
		r = boolInt(a < b)
	case OpLe:
		r = boolInt(a <= b)
	case OpGt:
		r = boolInt(a > b)
	case OpGe:
		r = boolInt(a >= b)
	default:
		return 0, false
	}

	if op.IsCompare() {
		return r, true
	}

	return Normalize(r, width, signed), true
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}

	return 0
}
