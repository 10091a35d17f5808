package lim

import (
	"github.com/orcc/xronos-sub018/report"
	"github.com/orcc/xronos-sub018/value"
)

// Graph is the arena holding one design.  Every node is addressed by a stable
// handle; slot 0 of each table is unused so that the zero handle means "none".
type Graph struct {
	components []*Component
	ports      []*Port
	buses      []*Bus
	exits      []*Exit
	resources  []*Resource

	// Design is the root component.
	Design ComponentID

	// Arbiters are the arbitration units synthesized for shared resources.
	Arbiters []*Arbiter
}

// NewGraph creates an empty graph holding only the design component.
func NewGraph(name string) *Graph {
	g := &Graph{
		components: []*Component{nil},
		ports:      []*Port{nil},
		buses:      []*Bus{nil},
		exits:      []*Exit{nil},
		resources:  []*Resource{nil},
	}

	g.Design = g.newComponent(KindDesign, name, 0).ID
	return g
}

// -----------------------------------------------------------------------------

// Component returns the component with the given handle or nil if it has been
// removed.
func (g *Graph) Component(id ComponentID) *Component {
	if id <= 0 || int(id) >= len(g.components) {
		return nil
	}

	return g.components[id]
}

// MustComponent returns the component with the given handle and raises an ICE
// if it does not exist.
func (g *Graph) MustComponent(id ComponentID) *Component {
	c := g.Component(id)
	if c == nil {
		report.ICE("dangling component handle %d", id)
	}

	return c
}

// Port returns the port with the given handle.
func (g *Graph) Port(id PortID) *Port {
	if id <= 0 || int(id) >= len(g.ports) || g.ports[id] == nil {
		report.ICE("dangling port handle %d", id)
	}

	return g.ports[id]
}

// Bus returns the bus with the given handle.
func (g *Graph) Bus(id BusID) *Bus {
	if id <= 0 || int(id) >= len(g.buses) || g.buses[id] == nil {
		report.ICE("dangling bus handle %d", id)
	}

	return g.buses[id]
}

// Exit returns the exit with the given handle.
func (g *Graph) Exit(id ExitID) *Exit {
	if id <= 0 || int(id) >= len(g.exits) || g.exits[id] == nil {
		report.ICE("dangling exit handle %d", id)
	}

	return g.exits[id]
}

// Resource returns the resource with the given handle.
func (g *Graph) Resource(id ResourceID) *Resource {
	if id <= 0 || int(id) >= len(g.resources) {
		report.ICE("dangling resource handle %d", id)
	}

	return g.resources[id]
}

// Resources returns all resources in declaration order.
func (g *Graph) Resources() []*Resource {
	return g.resources[1:]
}

// ComponentCount returns the number of live components.
func (g *Graph) ComponentCount() int {
	n := 0
	for _, c := range g.components[1:] {
		if c != nil {
			n++
		}
	}

	return n
}

// Tasks returns the tasks of the design in declaration order.
func (g *Graph) Tasks() []*Component {
	var tasks []*Component
	for _, id := range g.MustComponent(g.Design).Children {
		tasks = append(tasks, g.MustComponent(id))
	}

	return tasks
}

// -----------------------------------------------------------------------------

// SourceOf returns the bus feeding the given port.
func (g *Graph) SourceOf(p PortID) *Bus {
	return g.Bus(g.Port(p).Source)
}

// Producer returns the component owning the exit that drives the bus.
func (g *Graph) Producer(b BusID) *Component {
	return g.MustComponent(g.Exit(g.Bus(b).Exit).Owner)
}

// Consumers returns the ports fed by the bus.
func (g *Graph) Consumers(b BusID) []PortID {
	bus := g.Bus(b)
	cons := make([]PortID, len(bus.consumers))
	copy(cons, bus.consumers)
	return cons
}

// ControlUsers returns the components waiting on the done bus.
func (g *Graph) ControlUsers(b BusID) []ComponentID {
	bus := g.Bus(b)
	users := make([]ComponentID, len(bus.controlUsers))
	copy(users, bus.controlUsers)
	return users
}

// IsUsed returns whether any port or control input reads the bus.
func (g *Graph) IsUsed(b BusID) bool {
	bus := g.Bus(b)
	return len(bus.consumers) > 0 || len(bus.controlUsers) > 0
}

// DoneExit returns the nominal done exit of a component.
func (g *Graph) DoneExit(c *Component) *Exit {
	return g.Exit(c.Exits[0])
}

// DoneBus returns the done signal of the nominal exit of a component.
func (g *Graph) DoneBus(c *Component) BusID {
	return g.DoneExit(c).Done
}

// Result returns the first data bus of the nominal exit of a component.
func (g *Graph) Result(c *Component) BusID {
	ex := g.DoneExit(c)
	if len(ex.Data) == 0 {
		report.ICEAt(c.String(), "component has no result bus")
	}

	return ex.Data[0]
}

// Carried returns the carried value buses of a loop.
func (g *Graph) Carried(loop *Component) []BusID {
	return g.Exit(loop.Exits[1]).Data
}

// Results returns the buses holding the values of a loop's variables after the
// loop.
func (g *Graph) Results(loop *Component) []BusID {
	return g.DoneExit(loop).Data
}

// EntryPorts returns the data ports of a component that are read when it is
// activated.  For a loop only the initial values are: the feedback ports are
// fed from inside its body.
func (g *Graph) EntryPorts(c *Component) []PortID {
	if c.Kind == KindLoop {
		return c.Ports[:c.Loop.Vars]
	}

	return c.Ports
}

// -----------------------------------------------------------------------------

// DependencyKind distinguishes data from control dependencies.
type DependencyKind int

// Enumeration of dependency kinds.
const (
	DataDep    DependencyKind = iota // the value must be valid
	ControlDep                       // the producer must have completed
)

// GoPort is the port of a control dependency: the Go input.
const GoPort PortID = 0

// Dependency binds a port (or the Go input) of a component to the bus
// producing it.
type Dependency struct {
	Port PortID
	Bus  BusID
	Kind DependencyKind
}

// Entry is the activation record of a component.
type Entry struct {
	Component    ComponentID
	Dependencies []Dependency
}

// Entry returns the activation record of a component: its data dependencies in
// port order followed by its control dependencies.
func (g *Graph) Entry(c *Component) Entry {
	e := Entry{Component: c.ID}
	for _, p := range g.EntryPorts(c) {
		e.Dependencies = append(e.Dependencies, Dependency{Port: p, Bus: g.Port(p).Source, Kind: DataDep})
	}

	for _, b := range c.Control {
		e.Dependencies = append(e.Dependencies, Dependency{Port: GoPort, Bus: b, Kind: ControlDep})
	}

	return e
}

// -----------------------------------------------------------------------------
// Node creation primitives.  These are used by the builder and by the graph
// editing functions; they leave the graph well formed only once the caller has
// attached and connected everything.

func (g *Graph) newComponent(kind Kind, name string, owner ComponentID) *Component {
	c := &Component{
		ID:    ComponentID(len(g.components)),
		Kind:  kind,
		Name:  name,
		Owner: owner,
	}

	g.components = append(g.components, c)
	g.addExit(c, ExitDone)
	return c
}

func (g *Graph) addExit(c *Component, tag ExitTag) *Exit {
	ex := &Exit{ID: ExitID(len(g.exits)), Owner: c.ID, Tag: tag}
	g.exits = append(g.exits, ex)
	c.Exits = append(c.Exits, ex.ID)

	ex.Done = g.newBus(ex, c.Name+"_"+tag.String(), 1, false)
	g.buses[ex.Done].IsDone = true
	return ex
}

func (g *Graph) newBus(ex *Exit, name string, width int, signed bool) BusID {
	b := &Bus{
		ID:    BusID(len(g.buses)),
		Exit:  ex.ID,
		Name:  name,
		Value: value.New(width, signed),
		Care:  value.New(width, signed),
	}

	g.buses = append(g.buses, b)
	return b.ID
}

func (g *Graph) addBus(ex *Exit, name string, width int, signed bool) BusID {
	id := g.newBus(ex, name, width, signed)
	ex.Data = append(ex.Data, id)
	return id
}

func (g *Graph) addPort(c *Component, source BusID) PortID {
	p := &Port{ID: PortID(len(g.ports)), Owner: c.ID}
	g.ports = append(g.ports, p)
	c.Ports = append(c.Ports, p.ID)

	if source != 0 {
		g.Connect(p.ID, source)
	}

	return p.ID
}

func (g *Graph) appendChild(owner, child ComponentID) {
	oc := g.MustComponent(owner)
	oc.Children = append(oc.Children, child)
	g.MustComponent(child).Owner = owner
}

// insertChild places `child` in the children of `owner` at index `at`.
func (g *Graph) insertChild(owner, child ComponentID, at int) {
	oc := g.MustComponent(owner)
	oc.Children = append(oc.Children, 0)
	copy(oc.Children[at+1:], oc.Children[at:])
	oc.Children[at] = child
	g.MustComponent(child).Owner = owner
}

func (g *Graph) detachChild(owner, child ComponentID) int {
	oc := g.MustComponent(owner)
	for i, id := range oc.Children {
		if id == child {
			oc.Children = append(oc.Children[:i], oc.Children[i+1:]...)
			return i
		}
	}

	return -1
}

// -----------------------------------------------------------------------------

// Connect binds a port to a bus, replacing its previous source.  The port's
// care vector is reset to the width of the new source.
func (g *Graph) Connect(p PortID, b BusID) {
	port := g.Port(p)
	if port.Source == b {
		return
	}

	if port.Source != 0 {
		old := g.Bus(port.Source)
		old.consumers = removePort(old.consumers, p)
	}

	bus := g.Bus(b)
	port.Source = b
	port.Care = value.New(bus.Width(), bus.Signed())
	bus.consumers = append(bus.consumers, p)
}

func (g *Graph) disconnect(p PortID) {
	port := g.Port(p)
	if port.Source != 0 {
		old := g.Bus(port.Source)
		old.consumers = removePort(old.consumers, p)
		port.Source = 0
	}
}

// AddControl makes `c` wait for the done bus `done` before starting.
func (g *Graph) AddControl(c ComponentID, done BusID) {
	comp := g.MustComponent(c)
	bus := g.Bus(done)
	if !bus.IsDone {
		report.ICEAt(comp.String(), "control dependency on data bus %s", bus.Name)
	}

	for _, b := range comp.Control {
		if b == done {
			return
		}
	}

	comp.Control = append(comp.Control, done)
	bus.controlUsers = append(bus.controlUsers, c)
}

func (g *Graph) removeControl(c ComponentID, done BusID) {
	comp := g.MustComponent(c)
	for i, b := range comp.Control {
		if b == done {
			comp.Control = append(comp.Control[:i], comp.Control[i+1:]...)
			break
		}
	}

	bus := g.Bus(done)
	for i, u := range bus.controlUsers {
		if u == c {
			bus.controlUsers = append(bus.controlUsers[:i], bus.controlUsers[i+1:]...)
			break
		}
	}
}

func removePort(ports []PortID, p PortID) []PortID {
	for i, x := range ports {
		if x == p {
			return append(ports[:i], ports[i+1:]...)
		}
	}

	return ports
}
