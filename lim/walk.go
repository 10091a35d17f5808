package lim

// Direction selects the order in which the children of a module are visited.
type Direction int

// Enumeration of directions.
const (
	Forward Direction = iota // program order
	Reverse                  // reverse program order
)

// Order selects whether a module is visited before or after its children.
type Order int

// Enumeration of orders.
const (
	TopDown  Order = iota // module first (pre-order)
	BottomUp              // children first (post-order): inner loops precede outer ones
)

// Walk visits the subtree rooted at `root` deterministically.  The visit
// function must not edit the graph: passes record their edits in a Worklist
// and apply them once the walk has finished.
func (g *Graph) Walk(root ComponentID, dir Direction, order Order, visit func(c *Component)) {
	c := g.MustComponent(root)

	if order == TopDown {
		visit(c)
	}

	n := len(c.Children)
	for i := 0; i < n; i++ {
		child := c.Children[i]
		if dir == Reverse {
			child = c.Children[n-1-i]
		}

		g.Walk(child, dir, order, visit)
	}

	if order == BottomUp {
		visit(c)
	}
}

// Collect returns the components of the subtree rooted at `root` matching the
// predicate in forward, top-down order.
func (g *Graph) Collect(root ComponentID, pred func(c *Component) bool) []*Component {
	var found []*Component
	g.Walk(root, Forward, TopDown, func(c *Component) {
		if pred(c) {
			found = append(found, c)
		}
	})

	return found
}

// Leaves returns the leaf components of a subtree in program order.
func (g *Graph) Leaves(root ComponentID) []*Component {
	return g.Collect(root, func(c *Component) bool { return !c.Kind.IsModule() })
}

// -----------------------------------------------------------------------------

// IsWithin returns whether `c` is `scope` or one of its descendants.
func (g *Graph) IsWithin(c, scope ComponentID) bool {
	for id := c; id != 0; id = g.MustComponent(id).Owner {
		if id == scope {
			return true
		}
	}

	return false
}

// ChildOf returns the direct child of `scope` containing `c` or 0 if `c` is
// not strictly within `scope`.
func (g *Graph) ChildOf(scope, c ComponentID) ComponentID {
	for id := c; id != 0; {
		owner := g.MustComponent(id).Owner
		if owner == scope {
			return id
		}

		id = owner
	}

	return 0
}

// CommonOwner returns the innermost module containing both components.
func (g *Graph) CommonOwner(a, b ComponentID) ComponentID {
	for id := g.MustComponent(a).Owner; id != 0; id = g.MustComponent(id).Owner {
		if g.IsWithin(b, id) {
			return id
		}
	}

	return 0
}

// TaskOf returns the task containing the component or 0.
func (g *Graph) TaskOf(c ComponentID) ComponentID {
	for id := c; id != 0; id = g.MustComponent(id).Owner {
		if g.MustComponent(id).Kind == KindTask {
			return id
		}
	}

	return 0
}

// EnclosingLoops returns the loops containing the component from innermost to
// outermost.
func (g *Graph) EnclosingLoops(c ComponentID) []ComponentID {
	var loops []ComponentID
	for id := g.MustComponent(c).Owner; id != 0; id = g.MustComponent(id).Owner {
		if g.MustComponent(id).Kind == KindLoop {
			loops = append(loops, id)
		}
	}

	return loops
}

// ProducerIn returns the component whose completion makes the bus valid as
// seen from inside `scope`: the direct child of `scope` containing the
// producer.  It returns 0 when the bus is produced outside `scope` (or by
// `scope` itself, as loop carried values are), in which case the value is
// valid from the Go of `scope`.
func (g *Graph) ProducerIn(scope ComponentID, b BusID) ComponentID {
	return g.ChildOf(scope, g.Producer(b).ID)
}
