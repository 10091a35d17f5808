package lim

import (
	"github.com/orcc/xronos-sub018/report"
	"github.com/orcc/xronos-sub018/value"
)

// Builder constructs well formed graphs.  It is the interface through which
// the front end (and tests) hand a design to the core.
type Builder struct {
	g *Graph
}

// NewBuilder creates a builder for a new, empty design.
func NewBuilder(design string) *Builder {
	return &Builder{g: NewGraph(design)}
}

// Graph returns the graph under construction.
func (b *Builder) Graph() *Graph {
	return b.g
}

// -----------------------------------------------------------------------------

// Register declares a register resource.
func (b *Builder) Register(name string, width int, signed bool) ResourceID {
	return b.addResource(&Resource{Name: name, Kind: ResRegister, Width: width, Signed: signed})
}

// Memory declares a memory with the given number of ports and access
// latencies.
func (b *Builder) Memory(name string, width, depth, ports, readLatency, writeLatency int) ResourceID {
	if ports < 1 {
		ports = 1
	}

	return b.addResource(&Resource{
		Name:         name,
		Kind:         ResMemory,
		Width:        width,
		Depth:        depth,
		Ports:        ports,
		ReadLatency:  readLatency,
		WriteLatency: writeLatency,
	})
}

// Pin declares an I/O pin.
func (b *Builder) Pin(name string, width int) ResourceID {
	return b.addResource(&Resource{Name: name, Kind: ResPin, Width: width})
}

// Stream declares an input or output stream (FIFO) resource.
func (b *Builder) Stream(name string, kind ResourceKind, width int, signed bool) ResourceID {
	if kind != ResInputStream && kind != ResOutputStream {
		report.ICE("resource %s is not a stream kind", kind)
	}

	return b.addResource(&Resource{Name: name, Kind: kind, Width: width, Signed: signed})
}

func (b *Builder) addResource(res *Resource) ResourceID {
	if res.Width <= 0 {
		report.ICE("resource %s must have a positive width", res.Name)
	}

	res.ID = ResourceID(len(b.g.resources))
	b.g.resources = append(b.g.resources, res)
	return res.ID
}

// -----------------------------------------------------------------------------

// Task adds a task to the design and returns it along with the top level
// block of its procedure.
func (b *Builder) Task(name string) (task, body ComponentID) {
	t := b.g.newComponent(KindTask, name, 0)
	b.g.appendChild(b.g.Design, t.ID)

	proc := b.g.newComponent(KindProcedure, name, 0)
	b.g.appendChild(t.ID, proc.ID)

	blk := b.g.newComponent(KindBlock, name+"_body", 0)
	b.g.appendChild(proc.ID, blk.ID)

	return t.ID, blk.ID
}

// Block adds a nested sequential block.
func (b *Builder) Block(block ComponentID, name string) ComponentID {
	return b.leaf(block, KindBlock, name).ID
}

// leaf creates a component appended to `block`.
func (b *Builder) leaf(block ComponentID, kind Kind, name string) *Component {
	c := b.g.newComponent(kind, name, 0)
	b.g.appendChild(block, c.ID)
	return c
}

// Input declares a task input: a value available from the Go of the task.
func (b *Builder) Input(block ComponentID, name string, width int, signed bool) BusID {
	c := b.leaf(block, KindInput, name)
	b.g.modelLatency(c)
	return b.g.addBus(b.g.DoneExit(c), name, width, signed)
}

// Output declares a task output observing the given bus.
func (b *Builder) Output(block ComponentID, name string, src BusID) ComponentID {
	c := b.leaf(block, KindOutput, name)
	b.g.addPort(c, src)
	b.g.modelLatency(c)
	return c.ID
}

// Const adds a constant of the given width.
func (b *Builder) Const(block ComponentID, name string, v int64, width int, signed bool) BusID {
	return b.ConstValue(block, name, value.Const(v, width, signed))
}

// ConstValue adds a constant with an arbitrary lattice value.
func (b *Builder) ConstValue(block ComponentID, name string, v value.Value) BusID {
	c := b.leaf(block, KindConstant, name)
	c.Const = v
	b.g.modelLatency(c)

	bus := b.g.addBus(b.g.DoneExit(c), name, v.Size(), v.Signed())
	b.g.Bus(bus).Value = v
	return bus
}

// Op adds an operator.  Comparisons always produce an unsigned single bit
// regardless of the requested width.
func (b *Builder) Op(block ComponentID, op OpKind, name string, width int, signed bool, args ...BusID) BusID {
	if len(args) != op.Arity() {
		report.ICE("operator %s takes %d operands, got %d", op, op.Arity(), len(args))
	}

	if op.IsCompare() {
		width, signed = 1, false
	}

	c := b.leaf(block, KindOp, name)
	c.Op = op
	for _, a := range args {
		b.g.addPort(c, a)
	}

	b.g.modelLatency(c)
	return b.g.addBus(b.g.DoneExit(c), name, width, signed)
}

// Mux adds an encoded multiplexer: data input k is selected when the select
// evaluates to k.  The output is as wide as the widest input.
func (b *Builder) Mux(block ComponentID, name string, sel BusID, inputs ...BusID) BusID {
	if len(inputs) < 2 {
		report.ICE("mux %s needs at least two data inputs", name)
	}

	c := b.leaf(block, KindMux, name)
	b.g.addPort(c, sel)

	width := 0
	for _, in := range inputs {
		b.g.addPort(c, in)
		if w := b.g.Bus(in).Width(); w > width {
			width = w
		}
	}

	b.g.modelLatency(c)
	return b.g.addBus(b.g.DoneExit(c), name, width, b.g.Bus(inputs[0]).Signed())
}

// Access adds a referencer of the given kind on memory port 0.  It returns the
// access and its result bus (0 for writes).
func (b *Builder) Access(block ComponentID, name string, res ResourceID, kind AccessKind, args ...BusID) (ComponentID, BusID) {
	return b.AccessOnPort(block, name, res, kind, 0, args...)
}

// AccessOnPort adds a referencer using the given memory port.
func (b *Builder) AccessOnPort(block ComponentID, name string, res ResourceID, kind AccessKind, memPort int, args ...BusID) (ComponentID, BusID) {
	r := b.g.Resource(res)
	arity, hasResult := accessArity(r, kind)
	if len(args) != arity {
		report.ICE("%s of %s takes %d operands, got %d", kind, r, arity, len(args))
	}

	if r.Kind == ResMemory && (memPort < 0 || memPort >= r.Ports) {
		report.ICE("memory %s has no port %d", r.Name, memPort)
	}

	c := b.leaf(block, KindAccess, name)
	c.Access = &AccessInfo{Resource: res, Kind: kind, MemPort: memPort}
	for _, a := range args {
		b.g.addPort(c, a)
	}

	b.g.modelLatency(c)

	var result BusID
	if hasResult {
		if kind == AccStatus {
			result = b.g.addBus(b.g.DoneExit(c), name, 1, false)
		} else {
			result = b.g.addBus(b.g.DoneExit(c), name, r.Width, r.Signed)
		}
	}

	return c.ID, result
}

// Read adds a blocking read and returns its result.
func (b *Builder) Read(block ComponentID, name string, res ResourceID, args ...BusID) BusID {
	_, bus := b.Access(block, name, res, AccRead, args...)
	return bus
}

// Write adds a blocking write.
func (b *Builder) Write(block ComponentID, name string, res ResourceID, args ...BusID) ComponentID {
	c, _ := b.Access(block, name, res, AccWrite, args...)
	return c
}

// Branch adds a two way branch on a single bit condition and returns it with
// its true and false arms.
func (b *Builder) Branch(block ComponentID, name string, cond BusID) (br, then, els ComponentID) {
	c := b.leaf(block, KindBranch, name)
	b.g.addPort(c, cond)

	then = b.leaf(c.ID, KindBlock, name+"_then").ID
	els = b.leaf(c.ID, KindBlock, name+"_else").ID
	return c.ID, then, els
}

// Switch adds a multi-way branch.  Arm i runs when the selector equals
// cases[i]; with `withDefault` an extra last arm runs when no case matches.
func (b *Builder) Switch(block ComponentID, name string, sel BusID, cases []int64, withDefault bool) (sw ComponentID, arms []ComponentID) {
	c := b.leaf(block, KindSwitch, name)
	b.g.addPort(c, sel)
	c.Cases = append([]int64(nil), cases...)

	n := len(cases)
	if withDefault {
		n++
	}

	for i := 0; i < n; i++ {
		arms = append(arms, b.leaf(c.ID, KindBlock, name+"_arm").ID)
	}

	return c.ID, arms
}

// -----------------------------------------------------------------------------

// LoopBuilder completes a loop once its body has been built.
type LoopBuilder struct {
	b *Builder

	// Loop is the loop component.
	Loop ComponentID

	// Body is the body block to add the iteration's components to.
	Body ComponentID

	// Carried are the values of the loop variables at the start of an
	// iteration, to be read inside the body.
	Carried []BusID
}

// Loop starts a loop over the variables with the given initial values.
func (b *Builder) Loop(block ComponentID, name string, decisionFirst bool, inits ...BusID) *LoopBuilder {
	c := b.leaf(block, KindLoop, name)
	c.Loop = &LoopInfo{
		Vars:          len(inits),
		DecisionFirst: decisionFirst,
		Iterations:    IterationsUnknown,
	}

	fb := b.g.addExit(c, ExitFeedback)
	lb := &LoopBuilder{b: b, Loop: c.ID}
	for _, init := range inits {
		ib := b.g.Bus(init)
		b.g.addPort(c, init)
		lb.Carried = append(lb.Carried, b.g.addBus(fb, ib.Name+"_carried", ib.Width(), ib.Signed()))
		b.g.addBus(b.g.DoneExit(c), ib.Name+"_final", ib.Width(), ib.Signed())
	}

	lb.Body = b.leaf(c.ID, KindBlock, name+"_body").ID
	return lb
}

// Finish closes the loop with the continuation condition and the values of
// the variables at the end of an iteration.  It returns the buses holding the
// variables after the loop.
func (lb *LoopBuilder) Finish(cond BusID, nexts ...BusID) []BusID {
	g := lb.b.g
	c := g.MustComponent(lb.Loop)
	if len(nexts) != c.Loop.Vars {
		report.ICEAt(c.String(), "loop has %d variables, got %d next values", c.Loop.Vars, len(nexts))
	}

	for _, n := range nexts {
		g.addPort(c, n)
	}

	g.addPort(c, cond)
	return g.Results(c)
}

// Break adds an early exit from the innermost loop enclosing `block`.
func (b *Builder) Break(block ComponentID, name string) ComponentID {
	body := ComponentID(0)
	for id := block; id != 0; id = b.g.MustComponent(id).Owner {
		if owner := b.g.MustComponent(id).Owner; owner != 0 && b.g.MustComponent(owner).Kind == KindLoop {
			body = id
			break
		}
	}

	if body == 0 {
		report.ICE("break %s outside of a loop", name)
	}

	c := b.leaf(block, KindJump, name)
	c.JumpTag = ExitBreak
	b.g.modelLatency(c)

	ex := b.g.addExit(b.g.MustComponent(body), ExitBreak)
	ex.From = c.ID
	return c.ID
}

// Return adds an early exit from the procedure.  Every loop body between the
// jump and the procedure gains an exit as well.
func (b *Builder) Return(block ComponentID, name string) ComponentID {
	c := b.leaf(block, KindJump, name)
	c.JumpTag = ExitReturn
	b.g.modelLatency(c)

	for id := block; id != 0; id = b.g.MustComponent(id).Owner {
		comp := b.g.MustComponent(id)
		owner := b.g.Component(comp.Owner)
		if owner == nil {
			break
		}

		if owner.Kind == KindLoop || owner.Kind == KindProcedure {
			ex := b.g.addExit(comp, ExitReturn)
			ex.From = c.ID
		}

		if owner.Kind == KindProcedure {
			break
		}
	}

	return c.ID
}

// Control makes `c` wait for the completion of `on`.
func (b *Builder) Control(c, on ComponentID) {
	b.g.AddControl(c, b.g.DoneBus(b.g.MustComponent(on)))
}
