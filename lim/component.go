// Package lim implements the logical implementation model: the arena graph of
// components, ports, buses and exits that every analysis reads and rewrites.
package lim

import (
	"fmt"

	"github.com/orcc/xronos-sub018/latency"
	"github.com/orcc/xronos-sub018/value"
)

// Handles into the graph arena.  The zero handle of every kind means "none".
// Handles are never reused or renumbered: removing a node only clears its
// slot.
type (
	ComponentID int32
	PortID      int32
	BusID       int32
	ExitID      int32
	ResourceID  int32
)

// Kind is the closed set of component kinds.
type Kind int

// Enumeration of component kinds.  The first group are modules: they own
// children.  The rest are leaves.
const (
	KindDesign Kind = iota
	KindTask
	KindProcedure
	KindBlock
	KindLoop
	KindBranch
	KindSwitch

	KindConstant
	KindInput
	KindOutput
	KindOp
	KindMux
	KindAccess
	KindJump
)

var kindNames = [...]string{
	KindDesign:    "design",
	KindTask:      "task",
	KindProcedure: "procedure",
	KindBlock:     "block",
	KindLoop:      "loop",
	KindBranch:    "branch",
	KindSwitch:    "switch",
	KindConstant:  "const",
	KindInput:     "input",
	KindOutput:    "output",
	KindOp:        "op",
	KindMux:       "mux",
	KindAccess:    "access",
	KindJump:      "jump",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// IsModule returns whether components of this kind own children.
func (k Kind) IsModule() bool {
	return k <= KindSwitch
}

// OpKind is the closed set of operators.
type OpKind int

// Enumeration of operators.
const (
	OpAdd OpKind = iota
	OpSub
	OpMul
	OpDiv
	OpAnd
	OpOr
	OpXor
	OpNot
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

var opNames = [...]string{
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div",
	OpAnd: "and", OpOr: "or", OpXor: "xor", OpNot: "not",
	OpShl: "shl", OpShr: "shr",
	OpEq: "eq", OpNe: "ne", OpLt: "lt", OpLe: "le", OpGt: "gt", OpGe: "ge",
}

func (o OpKind) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}

	return fmt.Sprintf("op(%d)", int(o))
}

// ParseOpKind returns the operator with the given name.
func ParseOpKind(name string) (OpKind, bool) {
	for i, n := range opNames {
		if n == name {
			return OpKind(i), true
		}
	}

	return 0, false
}

// Arity returns the number of operands of the operator.
func (o OpKind) Arity() int {
	if o == OpNot {
		return 1
	}

	return 2
}

// IsCompare returns whether the operator produces a single truth bit.
func (o OpKind) IsCompare() bool {
	return o >= OpEq
}

// ExitTag names the completion point of a component.
type ExitTag int

// Enumeration of exit tags.
const (
	ExitDone     ExitTag = iota // nominal completion
	ExitBreak                   // early loop termination
	ExitReturn                  // early procedure termination
	ExitFeedback                // loop iteration boundary: owns the carried values
)

func (t ExitTag) String() string {
	switch t {
	case ExitDone:
		return "done"
	case ExitBreak:
		return "break"
	case ExitReturn:
		return "return"
	default:
		return "feedback"
	}
}

// -----------------------------------------------------------------------------

// Component is one node of the graph.
type Component struct {
	ID   ComponentID
	Kind Kind
	Name string

	// The enclosing module.  Only the design has no owner.
	Owner ComponentID

	// The ordered data input ports.  Their meaning is fixed per kind:
	//   Op:     operands
	//   Mux:    select followed by the encoded data inputs
	//   Output: the observed value
	//   Access: address and/or data, see AccessPorts
	//   Branch: the condition
	//   Switch: the selector
	//   Loop:   see LoopInfo
	Ports []PortID

	// The exits of the component.  Exit 0 is always the nominal done exit.
	Exits []ExitID

	// Control lists done buses which must have fired before this component
	// may start.  Their values are irrelevant.
	Control []BusID

	// The ordered children of a module.  A loop has its body as only child, a
	// branch its true and false arms, a switch one arm per case.
	Children []ComponentID

	// Op is the operator of an op component.
	Op OpKind

	// Const is the value of a constant component.
	Const value.Value

	// Access describes the resource access of an access component.
	Access *AccessInfo

	// Loop holds the loop bookkeeping of a loop component.
	Loop *LoopInfo

	// Cases are the selector values of the arms of a switch.  When the switch
	// has a default arm it is the last child and has no case value.
	Cases []int64

	// JumpTag is the exit raised by a jump component.
	JumpTag ExitTag

	// Latency is the Go to Done latency of a leaf.  Module latencies are
	// derived by the scheduler.
	Latency latency.Latency

	// Spacing is the number of cycles between two Gos of a pipelined leaf.  It
	// is zero for leaves that stall until their Done.
	Spacing int

	// Timing is the schedule of the component once the scheduler has run.
	Timing *Timing
}

// String returns a short, unique description of the component.
func (c *Component) String() string {
	if c.Name == "" {
		return fmt.Sprintf("%s#%d", c.Kind, c.ID)
	}

	return fmt.Sprintf("%s#%d(%s)", c.Kind, c.ID, c.Name)
}

// IsPipelined returns whether a new Go may be issued to the leaf before its
// prior Done has fired.
func (c *Component) IsPipelined() bool {
	return c.Spacing > 0 && !c.Latency.IsUnknown() && c.Spacing < c.Latency.Max
}

// InitiationInterval returns the minimum number of cycles between two
// activations of the leaf and false if it cannot be bounded.
func (c *Component) InitiationInterval() (int, bool) {
	if c.IsPipelined() {
		return c.Spacing, true
	}

	if c.Latency.IsUnknown() {
		return 0, false
	}

	if c.Latency.Max < 1 {
		return 1, true
	}

	return c.Latency.Max, true
}

// LoopInfo is the loop bookkeeping.  A loop with n carried variables has
// 2n+1 ports: the n initial values, the n end-of-iteration values produced in
// the body, and the continuation condition produced in the body.  The carried
// values seen by the body are the data buses of the loop's feedback exit
// (exit 1) and the values after the loop are the data buses of its done exit.
type LoopInfo struct {
	// Vars is the number of loop-carried variables.
	Vars int

	// DecisionFirst is true for loops testing their condition before the
	// body (while loops) and false for loops testing it after (do-until).
	DecisionFirst bool

	// Iterations is the number of times the body executes or
	// IterationsUnknown.
	Iterations int

	// Unrollable records whether the iteration count is known.
	Unrollable bool

	// Reason records why the loop was not unrolled.
	Reason string

	// UnrollLimit is the configured unroll limit the decision was made with.
	UnrollLimit int

	// Pipelined and II record the scheduling decision for loops that stay
	// hardware loops.
	Pipelined bool
	II        int
}

// IterationsUnknown is the iteration count of a loop that cannot be counted
// statically.
const IterationsUnknown = -1

// InitPort returns the port carrying the initial value of variable j.
func (c *Component) InitPort(j int) PortID {
	return c.Ports[j]
}

// NextPort returns the port carrying the end-of-iteration value of variable j.
func (c *Component) NextPort(j int) PortID {
	return c.Ports[c.Loop.Vars+j]
}

// CondPort returns the port carrying the continuation condition of a loop.
func (c *Component) CondPort() PortID {
	return c.Ports[2*c.Loop.Vars]
}

// Body returns the body block of a loop.
func (c *Component) Body() ComponentID {
	return c.Children[0]
}

// Timing is the schedule of one component.  All latencies are relative to the
// Go of the enclosing task.
type Timing struct {
	// Go is the cycle range in which the component starts.
	Go latency.Latency

	// Done is the cycle range in which the component completes.
	Done latency.Latency

	// GoSources are the done buses whose conjunction generates the Go.  An
	// empty list means the Go is the Go of the enclosing module.
	GoSources []BusID

	// Synchronized is set when several go sources complete at statically
	// unknown times so the Go needs a latch per source.
	Synchronized bool

	// Qualifier is the condition gating the Go of a branch arm (zero if none).
	Qualifier BusID

	// QualifierCase is the selector value gating a switch arm.
	QualifierCase int64

	// DefaultArm is set on the default arm of a switch, which runs when the
	// selector matches no case.
	DefaultArm bool

	// Stalls is set when the component is re-activated by an enclosing
	// hardware loop and must finish before its next Go.
	Stalls bool

	// Iterative is set when the timing is that of the first iteration of an
	// enclosing hardware loop.
	Iterative bool
}

// -----------------------------------------------------------------------------

// Port is a data input of a component.
type Port struct {
	ID     PortID
	Owner  ComponentID
	Source BusID

	// Care marks the bits of the source this port needs: DontCare bits are
	// ignored by the owner.
	Care value.Value
}

// Exit is a completion point of a component.
type Exit struct {
	ID    ExitID
	Owner ComponentID
	Tag   ExitTag

	// Done is the one bit done signal of the exit.
	Done BusID

	// Data are the data buses of the exit.
	Data []BusID

	// From is the jump component raising a non-nominal block exit.
	From ComponentID
}

// Bus is a data output of an exit.
type Bus struct {
	ID   BusID
	Exit ExitID
	Name string

	// Value is the forward lattice value of the bus.
	Value value.Value

	// Care marks the bits any consumer needs.
	Care value.Value

	// IsDone is set for done signals.
	IsDone bool

	consumers    []PortID
	controlUsers []ComponentID
}

// Width returns the width of the bus.
func (b *Bus) Width() int {
	return b.Value.Size()
}

// Signed returns the signedness of the bus.
func (b *Bus) Signed() bool {
	return b.Value.Signed()
}
