// Package latency represents and compares bounded but possibly unknown clock
// cycle counts.
package latency

import (
	"fmt"

	"github.com/orcc/xronos-sub018/report"
)

// Unknown is the sentinel for a bound that cannot be statically determined.
const Unknown = -1

// Latency is the number of clock cycles from the Go of a component to its
// Done.  Max may be Unknown, in which case the latency is "open": it completes
// no earlier than Min but has no static upper bound.
type Latency struct {
	Min, Max int
}

// Common latencies.
var (
	Zero = Latency{0, 0}
	One  = Latency{1, 1}
)

// New returns the latency {min, max}.  It raises an ICE unless min <= max or
// max is Unknown.
func New(min, max int) Latency {
	if min < 0 {
		report.ICE("latency minimum must be non-negative, got %d", min)
	}

	if max != Unknown && max < min {
		report.ICE("latency minimum %d exceeds maximum %d", min, max)
	}

	return Latency{Min: min, Max: max}
}

// Fixed returns the latency of exactly n cycles.
func Fixed(n int) Latency {
	return New(n, n)
}

// Open returns the latency of at least min cycles and no known maximum.
func Open(min int) Latency {
	return New(min, Unknown)
}

// IsUnknown returns whether the latency has no static upper bound.
func (l Latency) IsUnknown() bool {
	return l.Max == Unknown
}

// IsFixed returns whether the latency is a single known cycle count.
func (l Latency) IsFixed() bool {
	return l.Min == l.Max
}

// Open returns the latency with its upper bound dropped.
func (l Latency) Open() Latency {
	return Latency{Min: l.Min, Max: Unknown}
}

// IsGT returns whether `l` is guaranteed to complete strictly after `o` in
// every scenario: l.Min > o.Max.  Nothing is guaranteed to be later than an
// open latency.
func (l Latency) IsGT(o Latency) bool {
	if o.IsUnknown() {
		return false
	}

	return l.Min > o.Max
}

// IsGE returns whether `l` equals `o` or is guaranteed to complete after it.
func (l Latency) IsGE(o Latency) bool {
	return l == o || l.IsGT(o)
}

// Add returns the latency of `l` followed by `o`.
func (l Latency) Add(o Latency) Latency {
	if l.IsUnknown() || o.IsUnknown() {
		return Latency{Min: l.Min + o.Min, Max: Unknown}
	}

	return Latency{Min: l.Min + o.Min, Max: l.Max + o.Max}
}

// AddCycles returns the latency delayed by n cycles.
func (l Latency) AddCycles(n int) Latency {
	return l.Add(Fixed(n))
}

// Repeat returns the latency of `l` executed n times in sequence.
func (l Latency) Repeat(n int) Latency {
	if l.IsUnknown() {
		return Latency{Min: l.Min * n, Max: Unknown}
	}

	return Latency{Min: l.Min * n, Max: l.Max * n}
}

// And returns the join of the two latencies: the latency at which both have
// completed.
func (l Latency) And(o Latency) Latency {
	res := Latency{Min: maxInt(l.Min, o.Min)}
	if l.IsUnknown() || o.IsUnknown() {
		res.Max = Unknown
	} else {
		res.Max = maxInt(l.Max, o.Max)
	}

	return res
}

// Or returns the latency of exactly one of the two completing: the earliest
// minimum and the latest maximum.
func (l Latency) Or(o Latency) Latency {
	res := Latency{Min: minInt(l.Min, o.Min)}
	if l.IsUnknown() || o.IsUnknown() {
		res.Max = Unknown
	} else {
		res.Max = maxInt(l.Max, o.Max)
	}

	return res
}

// Dominates returns whether both bounds of `l` are at least those of `o`.  An
// Unknown maximum is treated as larger than any known one.
func (l Latency) Dominates(o Latency) bool {
	return l.Min >= o.Min && !maxLess(l.Max, o.Max)
}

func (l Latency) String() string {
	if l.IsUnknown() {
		return fmt.Sprintf("{%d, ?}", l.Min)
	}

	return fmt.Sprintf("{%d, %d}", l.Min, l.Max)
}

// -----------------------------------------------------------------------------

// Order is the result of comparing two latencies in the partial order.
type Order int

// Enumeration of orders.
const (
	Equal Order = iota
	Before
	After
	Incomparable
)

// Compare orders two latencies: After if `a` is guaranteed to complete after
// `b`, Before if the converse holds, Equal if they are identical, and
// Incomparable otherwise.
func Compare(a, b Latency) Order {
	switch {
	case a == b:
		return Equal
	case a.IsGT(b):
		return After
	case b.IsGT(a):
		return Before
	default:
		return Incomparable
	}
}

// Diff returns the number of cycles from the start of `base` to the end of
// `end`: end.Max - base.Min.  The second result is false if the difference is
// indeterminate because either maximum is Unknown.
func Diff(base, end Latency) (int, bool) {
	if base.IsUnknown() || end.IsUnknown() {
		return Unknown, false
	}

	return end.Max - base.Min, true
}

// DiffString formats the difference between two latencies for reports.
func DiffString(base, end Latency) string {
	n, ok := Diff(base, end)
	if !ok {
		return "indeterminate"
	}

	return Cycles(n)
}

// Cycles formats a cycle count.
func Cycles(n int) string {
	if n == 1 {
		return "1 clock cycle"
	}

	return fmt.Sprintf("%d clock cycles", n)
}

// -----------------------------------------------------------------------------

// maxLess returns whether maximum a is smaller than maximum b with Unknown
// treated as infinite.
func maxLess(a, b int) bool {
	if a == Unknown {
		return false
	}

	if b == Unknown {
		return true
	}

	return a < b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}

	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}

	return b
}
