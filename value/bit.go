// Package value implements the four state bit lattice used for bit-level
// constant and don't-care analysis.
package value

// Bit is a single bit of a Value.
type Bit uint8

// Enumeration of the lattice states of a bit.
const (
	Zero     Bit = iota // known to be 0
	One                 // known to be 1
	DontCare            // ignored downstream: may take any value
	Care                // used but not statically known
)

// BitOf returns the constant bit for a boolean.
func BitOf(b bool) Bit {
	if b {
		return One
	}

	return Zero
}

// IsConstant returns whether the bit is a known 0 or 1.
func (b Bit) IsConstant() bool {
	return b == Zero || b == One
}

// IsCare returns whether the bit is relevant downstream.
func (b Bit) IsCare() bool {
	return b != DontCare
}

func (b Bit) String() string {
	switch b {
	case Zero:
		return "0"
	case One:
		return "1"
	case DontCare:
		return "x"
	default:
		return "c"
	}
}

// agree returns the common classification of two bits: the bit itself if both
// are the same constant or both don't-care, and Care otherwise.
func agree(a, b Bit) Bit {
	if a == b && a != Care {
		return a
	}

	return Care
}

// refine merges new forward information into an existing bit.  A bit only
// ever moves down the lattice: from Care to a constant or to DontCare, and
// from a constant to DontCare.
func refine(old, new Bit) Bit {
	switch {
	case old == DontCare || new == DontCare:
		return DontCare
	case old.IsConstant():
		return old
	default:
		return new
	}
}
