package value

import (
	"strings"

	"github.com/orcc/xronos-sub018/report"
	"github.com/pkg/errors"
)

// Value is a fixed-width sequence of lattice bits together with the signedness
// of the quantity it carries.  Bit 0 is the least significant bit.  Values are
// immutable: every operation returns a new Value.
type Value struct {
	bits   []Bit
	signed bool
}

// New returns a Value of the given width with every bit set to Care.
func New(size int, signed bool) Value {
	return Fill(size, signed, Care)
}

// Fill returns a Value of the given width with every bit set to `b`.
func Fill(size int, signed bool, b Bit) Value {
	if size <= 0 {
		report.ICE("value width must be positive, got %d", size)
	}

	bits := make([]Bit, size)
	for i := range bits {
		bits[i] = b
	}

	return Value{bits: bits, signed: signed}
}

// Const returns the fully constant Value of `v` truncated or sign extended to
// the given width.
func Const(v int64, size int, signed bool) Value {
	val := Fill(size, signed, Zero)
	for i := range val.bits {
		shift := i
		if shift > 63 {
			shift = 63
		}

		val.bits[i] = BitOf((v>>shift)&1 == 1)
	}

	return val
}

// FromBits returns a Value holding a copy of the given bits (LSB first).
func FromBits(bits []Bit, signed bool) Value {
	if len(bits) == 0 {
		report.ICE("value width must be positive, got 0")
	}

	val := Value{bits: make([]Bit, len(bits)), signed: signed}
	copy(val.bits, bits)
	return val
}

// Parse parses a Value from its textual form: most significant bit first,
// one character per bit out of `0`, `1`, `x` (don't-care), and `c` (care).
// Underscores are ignored.
func Parse(s string, signed bool) (Value, error) {
	s = strings.ReplaceAll(s, "_", "")
	if s == "" {
		return Value{}, errors.New("empty value literal")
	}

	bits := make([]Bit, len(s))
	for i, c := range s {
		var b Bit
		switch c {
		case '0':
			b = Zero
		case '1':
			b = One
		case 'x', 'X':
			b = DontCare
		case 'c', 'C':
			b = Care
		default:
			return Value{}, errors.Errorf("invalid bit character %q in value literal %q", c, s)
		}

		bits[len(s)-1-i] = b
	}

	return Value{bits: bits, signed: signed}, nil
}

// MustParse is Parse which raises an ICE on malformed literals.
func MustParse(s string, signed bool) Value {
	v, err := Parse(s, signed)
	if err != nil {
		report.ICE("%s", err)
	}

	return v
}

// -----------------------------------------------------------------------------

// Size returns the width of the value in bits.
func (v Value) Size() int {
	return len(v.bits)
}

// Signed returns whether the value is signed.
func (v Value) Signed() bool {
	return v.signed
}

// IsValid returns whether the value has been initialized.
func (v Value) IsValid() bool {
	return len(v.bits) > 0
}

// Bit returns the bit at position i.
func (v Value) Bit(i int) Bit {
	if i < 0 || i >= len(v.bits) {
		report.ICE("bit %d out of range for value of width %d", i, len(v.bits))
	}

	return v.bits[i]
}

// Extended returns the bit at position i, padding positions beyond the width
// by sign extension for signed values and with Zero for unsigned values.
func (v Value) Extended(i int) Bit {
	if i < len(v.bits) {
		return v.bits[i]
	}

	if v.signed {
		return v.bits[len(v.bits)-1]
	}

	return Zero
}

// Bits returns a copy of the bits of the value (LSB first).
func (v Value) Bits() []Bit {
	bits := make([]Bit, len(v.bits))
	copy(bits, v.bits)
	return bits
}

// With returns a copy of the value with bit i replaced.
func (v Value) With(i int, b Bit) Value {
	nv := FromBits(v.bits, v.signed)
	if i < 0 || i >= len(nv.bits) {
		report.ICE("bit %d out of range for value of width %d", i, len(v.bits))
	}

	nv.bits[i] = b
	return nv
}

// Resize returns the value truncated or extended to the given width.  Extension
// follows the signedness of the value.
func (v Value) Resize(size int) Value {
	if size == len(v.bits) {
		return v
	}

	nv := Fill(size, v.signed, Care)
	for i := range nv.bits {
		nv.bits[i] = v.Extended(i)
	}

	return nv
}

// AsSigned returns a copy of the value with the given signedness.
func (v Value) AsSigned(signed bool) Value {
	nv := FromBits(v.bits, signed)
	return nv
}

// IsConstant returns whether no bit of the value is Care.  Don't-care bits
// count as constant: they may be driven with any value.
func (v Value) IsConstant() bool {
	for _, b := range v.bits {
		if b == Care {
			return false
		}
	}

	return true
}

// IsAllDontCare returns whether every bit of the value is DontCare.
func (v Value) IsAllDontCare() bool {
	for _, b := range v.bits {
		if b != DontCare {
			return false
		}
	}

	return true
}

// Int returns the integer carried by a constant value with don't-care bits read
// as zero.  The second result is false if any bit is Care.
func (v Value) Int() (int64, bool) {
	if !v.IsConstant() {
		return 0, false
	}

	var n int64
	for i := 63; i >= 0; i-- {
		n <<= 1
		if v.Extended(i) == One {
			n |= 1
		}
	}

	return n, true
}

// Equal returns whether two values have the same width, signedness and bits.
func (v Value) Equal(o Value) bool {
	if len(v.bits) != len(o.bits) || v.signed != o.signed {
		return false
	}

	for i, b := range v.bits {
		if o.bits[i] != b {
			return false
		}
	}

	return true
}

func (v Value) String() string {
	sb := strings.Builder{}
	for i := len(v.bits) - 1; i >= 0; i-- {
		sb.WriteString(v.bits[i].String())
	}

	if v.signed {
		sb.WriteString("s")
	}

	return sb.String()
}

// -----------------------------------------------------------------------------

// Merge refines the value `old` with newly computed forward information.  It
// returns the merged value and whether it differs from `old`.  Merging is
// monotone so repeated propagation always terminates.
func Merge(old, new Value) (Value, bool) {
	checkSameSize(old, new)

	merged := FromBits(old.bits, old.signed)
	changed := false
	for i, ob := range old.bits {
		if mb := refine(ob, new.bits[i]); mb != ob {
			merged.bits[i] = mb
			changed = true
		}
	}

	return merged, changed
}

// MergeCare refines a care vector (a value of Care and DontCare bits) with a
// new one: a bit is DontCare once either side marks it so.
func MergeCare(old, new Value) (Value, bool) {
	checkSameSize(old, new)

	merged := FromBits(old.bits, old.signed)
	changed := false
	for i, ob := range old.bits {
		if ob != DontCare && new.bits[i] == DontCare {
			merged.bits[i] = DontCare
			changed = true
		}
	}

	return merged, changed
}

// Agree returns the per bit agreement of a set of values at the given width:
// a bit is the common constant or don't-care classification of that bit in
// all the values (each extended according to its own signedness) and Care if
// any two disagree.
func Agree(size int, signed bool, vals ...Value) Value {
	res := Fill(size, signed, Care)
	if len(vals) == 0 {
		return res
	}

	for i := range res.bits {
		b := vals[0].Extended(i)
		for _, v := range vals[1:] {
			b = agree(b, v.Extended(i))
		}

		res.bits[i] = b
	}

	return res
}

func checkSameSize(a, b Value) {
	if len(a.bits) != len(b.bits) {
		report.ICE("cannot merge values of width %d and %d", len(a.bits), len(b.bits))
	}
}
