// Package loop counts the iterations of loops by emulating their decision
// circuit and replaces loops with a small known iteration count by copies of
// their body.
package loop

import (
	"fmt"

	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/session"
)

// Decision is the outcome of analyzing one loop.
type Decision struct {
	Loop       lim.ComponentID
	Iterations int
	Unroll     bool
	Reason     string
}

// Analyze counts the iterations of a loop and decides whether it is to be
// unrolled.  The count and the decision are recorded on the loop.
func Analyze(g *lim.Graph, c *lim.Component, ctx *session.Context) Decision {
	opts := ctx.Options
	d := Decision{Loop: c.ID, Iterations: lim.IterationsUnknown}

	body := g.MustComponent(c.Body())
	if len(body.Exits) > 1 {
		d.Reason = "contains multiple exits"
	} else {
		d.Iterations = CountIterations(g, c, opts.MaxEmulatedIterations)

		switch {
		case !opts.LoopUnrollEnabled:
			d.Reason = "unrolling disabled"
		case d.Iterations == lim.IterationsUnknown:
			d.Reason = "iteration count unknown"
		case d.Iterations >= opts.LoopUnrollLimit:
			d.Reason = fmt.Sprintf("iteration count %d exceeds unroll limit %d", d.Iterations, opts.LoopUnrollLimit)
		default:
			d.Unroll = true
		}
	}

	info := c.Loop
	info.Iterations = d.Iterations
	info.Unrollable = d.Iterations != lim.IterationsUnknown
	info.Reason = d.Reason
	info.UnrollLimit = opts.LoopUnrollLimit
	return d
}

// CountIterations emulates the decision circuit of a loop on concrete values
// and returns the number of times its body executes.  It returns
// IterationsUnknown when the condition depends on anything but constants and
// the pure logic of the body, or when the emulation exceeds `max` iterations.
func CountIterations(g *lim.Graph, c *lim.Component, max int) int {
	em := newEmulator(g, c)

	cond := g.Port(c.CondPort()).Source
	nexts := make([]lim.BusID, c.Loop.Vars)
	for j := range nexts {
		nexts[j] = g.Port(c.NextPort(j)).Source
	}

	count := 0
	for {
		taken, ok := em.eval(cond)
		if !ok {
			return lim.IterationsUnknown
		}

		if c.Loop.DecisionFirst {
			if taken == 0 {
				return count
			}

			count++
		} else {
			count++
			if taken == 0 {
				return count
			}
		}

		if count > max {
			return lim.IterationsUnknown
		}

		em.step(nexts)
	}
}

// -----------------------------------------------------------------------------

// emulator evaluates the pure logic of a loop body for one iteration at a
// time.
type emulator struct {
	g    *lim.Graph
	loop *lim.Component

	vars  map[lim.BusID]int
	state []int64
	known []bool

	memo map[lim.BusID]int64
}

func newEmulator(g *lim.Graph, c *lim.Component) *emulator {
	em := &emulator{
		g:     g,
		loop:  c,
		vars:  make(map[lim.BusID]int, c.Loop.Vars),
		state: make([]int64, c.Loop.Vars),
		known: make([]bool, c.Loop.Vars),
		memo:  make(map[lim.BusID]int64),
	}

	for j, b := range g.Carried(c) {
		em.vars[b] = j
		em.state[j], em.known[j] = g.SourceOf(c.InitPort(j)).Value.Int()
	}

	return em
}

// step advances the state to the next iteration.  A variable whose next value
// cannot be computed becomes unknown.
func (em *emulator) step(nexts []lim.BusID) {
	state := make([]int64, len(nexts))
	known := make([]bool, len(nexts))
	for j, nb := range nexts {
		state[j], known[j] = em.eval(nb)
	}

	em.state, em.known = state, known
	em.memo = make(map[lim.BusID]int64)
}

// eval returns the value a bus has in the current iteration.
func (em *emulator) eval(b lim.BusID) (int64, bool) {
	if j, ok := em.vars[b]; ok {
		return em.state[j], em.known[j]
	}

	if v, ok := em.memo[b]; ok {
		return v, true
	}

	bus := em.g.Bus(b)
	if v, ok := bus.Value.Int(); ok {
		return v, true
	}

	prod := em.g.Producer(b)
	if !em.g.IsWithin(prod.ID, em.loop.ID) {
		return 0, false
	}

	var (
		v  int64
		ok bool
	)

	switch prod.Kind {
	case lim.KindConstant:
		v, ok = prod.Const.Int()
	case lim.KindOp:
		v, ok = em.evalOp(prod, bus)
	case lim.KindMux:
		v, ok = em.evalMux(prod, bus)
	}

	if ok {
		em.memo[b] = v
	}

	return v, ok
}

func (em *emulator) evalOp(c *lim.Component, out *lim.Bus) (int64, bool) {
	args := make([]int64, 2)
	for i, p := range c.Ports {
		a, ok := em.eval(em.g.Port(p).Source)
		if !ok {
			return 0, false
		}

		args[i] = a
	}

	return lim.EvalOp(c.Op, args[0], args[1], out.Width(), out.Signed())
}

func (em *emulator) evalMux(c *lim.Component, out *lim.Bus) (int64, bool) {
	sel, ok := em.eval(em.g.Port(c.Ports[0]).Source)
	if !ok || sel < 0 || sel >= int64(len(c.Ports)-1) {
		return 0, false
	}

	v, ok := em.eval(em.g.Port(c.Ports[sel+1]).Source)
	if !ok {
		return 0, false
	}

	return lim.Normalize(v, out.Width(), out.Signed()), true
}
