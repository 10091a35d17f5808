package lim

import (
	"github.com/orcc/xronos-sub018/report"
	"github.com/orcc/xronos-sub018/util"
)

// Rewire moves every consumer of bus `from` onto bus `to`.  When both are done
// signals, components waiting on `from` wait on `to` instead.
func (g *Graph) Rewire(from, to BusID) {
	if from == to {
		return
	}

	for _, p := range g.Consumers(from) {
		g.Connect(p, to)
	}

	users := g.ControlUsers(from)
	if len(users) > 0 && !g.Bus(to).IsDone {
		report.ICE("cannot move control users of %s onto data bus %s", g.Bus(from).Name, g.Bus(to).Name)
	}

	for _, u := range users {
		g.removeControl(u, from)
		g.AddControl(u, to)
	}
}

// Bypass splices a component out of the data path: the consumers of its
// result are fed directly from the source of port `through`, and components
// waiting on its completion wait on what it waited on instead.  The component
// itself is removed.
func (g *Graph) Bypass(id ComponentID, through PortID) {
	c := g.MustComponent(id)
	src := g.Port(through).Source

	g.Rewire(g.Result(c), src)

	done := g.DoneBus(c)
	srcDone := g.Exit(g.Bus(src).Exit).Done
	producer := g.Producer(src)
	for _, u := range g.ControlUsers(done) {
		g.removeControl(u, done)
		for _, b := range c.Control {
			g.AddControl(u, b)
		}

		// values of an enclosing module, such as loop-carried values, are
		// available as soon as the user may start
		if !g.IsWithin(u, producer.ID) {
			g.AddControl(u, srcDone)
		}
	}

	g.Remove(id)
}

// Remove deletes a component and its whole subtree.  No bus of the subtree
// may still be read from outside of it.
func (g *Graph) Remove(id ComponentID) {
	root := g.MustComponent(id)

	var subtree []*Component
	g.Walk(id, Forward, TopDown, func(c *Component) {
		subtree = append(subtree, c)
	})

	for _, c := range subtree {
		for _, p := range c.Ports {
			g.disconnect(p)
			g.ports[p] = nil
		}

		for _, b := range append([]BusID(nil), c.Control...) {
			g.removeControl(c.ID, b)
		}
	}

	for _, c := range subtree {
		for _, exID := range c.Exits {
			ex := g.Exit(exID)
			for _, b := range append([]BusID{ex.Done}, ex.Data...) {
				if g.IsUsed(b) {
					report.ICEAt(c.String(), "removed bus %s is still in use", g.Bus(b).Name)
				}

				g.buses[b] = nil
			}

			g.exits[exID] = nil
		}
	}

	if root.Owner != 0 {
		g.detachChild(root.Owner, id)
	}

	for _, c := range subtree {
		g.components[c.ID] = nil
	}
}

// IsPure returns whether a component has no effect beyond its result buses.
func IsPure(c *Component) bool {
	switch c.Kind {
	case KindConstant, KindOp, KindMux:
		return true
	default:
		return false
	}
}

// RemoveDead removes pure components in the subtree of `scope` none of whose
// buses is read, repeating until no more can be removed.  It returns the
// number of components removed.
func (g *Graph) RemoveDead(scope ComponentID) int {
	removed := 0
	for {
		var dead []ComponentID
		g.Walk(scope, Forward, BottomUp, func(c *Component) {
			if c.ID != scope && IsPure(c) && !g.anyUsed(c) {
				dead = append(dead, c.ID)
			}
		})

		if len(dead) == 0 {
			return removed
		}

		for _, id := range dead {
			g.Remove(id)
		}

		removed += len(dead)
	}
}

func (g *Graph) anyUsed(c *Component) bool {
	for _, exID := range c.Exits {
		ex := g.Exit(exID)
		if g.IsUsed(ex.Done) {
			return true
		}

		for _, b := range ex.Data {
			if g.IsUsed(b) {
				return true
			}
		}
	}

	return false
}

// NewBlockBefore creates an empty block placed among the children of the
// owner of `at`, immediately before it.
func (g *Graph) NewBlockBefore(at ComponentID, name string) ComponentID {
	ac := g.MustComponent(at)
	owner := g.MustComponent(ac.Owner)

	idx := util.IndexOf(owner.Children, at)
	blk := g.newComponent(KindBlock, name, 0)
	g.insertChild(owner.ID, blk.ID, idx)
	return blk.ID
}

// -----------------------------------------------------------------------------

// Clone deep copies the subtree rooted at `root` and appends the copy to the
// children of `owner`.  Ports of the copy read the copies of buses produced
// inside the subtree; buses produced outside are read as is unless `subst`
// maps them to a replacement.  It returns the copy and the mapping from the
// original buses of the subtree to their copies.
func (g *Graph) Clone(root, owner ComponentID, subst map[BusID]BusID) (ComponentID, map[BusID]BusID) {
	var originals []*Component
	g.Walk(root, Forward, TopDown, func(c *Component) {
		originals = append(originals, c)
	})

	compMap := make(map[ComponentID]ComponentID, len(originals))
	busMap := make(map[BusID]BusID)

	// first create every component, exit and bus so ports can refer forward
	for _, c := range originals {
		n := g.newComponent(c.Kind, c.Name, 0)
		n.Op = c.Op
		n.Const = c.Const
		n.Cases = append([]int64(nil), c.Cases...)
		n.JumpTag = c.JumpTag
		n.Latency = c.Latency
		n.Spacing = c.Spacing

		if c.Access != nil {
			acc := *c.Access
			n.Access = &acc
		}

		if c.Loop != nil {
			info := *c.Loop
			n.Loop = &info
		}

		compMap[c.ID] = n.ID

		for i, exID := range c.Exits {
			ex := g.Exit(exID)

			nex := g.DoneExit(n)
			if i > 0 {
				nex = g.addExit(n, ex.Tag)
			}

			busMap[ex.Done] = nex.Done
			for _, b := range ex.Data {
				ob := g.Bus(b)
				nb := g.addBus(nex, ob.Name, ob.Width(), ob.Signed())
				if c.Kind == KindConstant {
					g.Bus(nb).Value = c.Const
				}

				busMap[b] = nb
			}
		}

		if c.ID == root {
			g.appendChild(owner, n.ID)
		} else {
			g.appendChild(compMap[c.Owner], n.ID)
		}
	}

	mapBus := func(b BusID) BusID {
		if nb, ok := busMap[b]; ok {
			return nb
		}

		if nb, ok := subst[b]; ok {
			return nb
		}

		return b
	}

	// then connect everything
	for _, c := range originals {
		n := g.components[compMap[c.ID]]
		for _, p := range c.Ports {
			g.addPort(n, mapBus(g.Port(p).Source))
		}

		for _, b := range c.Control {
			g.AddControl(n.ID, mapBus(b))
		}

		for i, exID := range c.Exits {
			if from := g.Exit(exID).From; from != 0 {
				if nf, ok := compMap[from]; ok {
					g.Exit(n.Exits[i]).From = nf
				} else {
					g.Exit(n.Exits[i]).From = from
				}
			}
		}
	}

	return compMap[root], busMap
}

// -----------------------------------------------------------------------------

// EditKind is the kind of a deferred graph edit.
type EditKind int

// Enumeration of edit kinds.
const (
	EditRemove EditKind = iota // remove a component
	EditRewire                 // move the consumers of a bus onto another
	EditBypass                 // splice a component out through one of its ports
)

// Edit is one deferred graph edit.
type Edit struct {
	Kind      EditKind
	Component ComponentID
	Port      PortID
	From, To  BusID
}

// Worklist records edits during a traversal so that they can be applied once
// the traversal has completed.
type Worklist struct {
	edits []Edit
}

// Remove records the removal of a component.
func (w *Worklist) Remove(c ComponentID) {
	w.edits = append(w.edits, Edit{Kind: EditRemove, Component: c})
}

// Rewire records the move of the consumers of `from` onto `to`.
func (w *Worklist) Rewire(from, to BusID) {
	w.edits = append(w.edits, Edit{Kind: EditRewire, From: from, To: to})
}

// Bypass records splicing `c` out through port `through`.  The source of the
// port is read when the edit is applied, so chains of bypasses compose.
func (w *Worklist) Bypass(c ComponentID, through PortID) {
	w.edits = append(w.edits, Edit{Kind: EditBypass, Component: c, Port: through})
}

// Len returns the number of recorded edits.
func (w *Worklist) Len() int {
	return len(w.edits)
}

// Apply applies the recorded edits in order and clears the worklist.
func (w *Worklist) Apply(g *Graph) int {
	n := len(w.edits)
	for _, e := range w.edits {
		switch e.Kind {
		case EditRemove:
			g.Remove(e.Component)
		case EditRewire:
			g.Rewire(e.From, e.To)
		case EditBypass:
			g.Bypass(e.Component, e.Port)
		}
	}

	w.edits = nil
	return n
}
