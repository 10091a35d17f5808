package schedule

import (
	"github.com/orcc/xronos-sub018/latency"
	"github.com/orcc/xronos-sub018/lim"
)

// loop schedules a hardware loop.  Its body is scheduled once, as the first
// iteration; each iteration takes the body latency plus one feedback cycle.
func (s *scheduler) loop(c *lim.Component, t *lim.Timing) {
	body := s.g.MustComponent(c.Body())
	s.schedule(body, &lim.Timing{Go: latency.Zero})
	iteration := body.Timing.Done.AddCycles(1)

	pipelined, ii := s.pipelining(c)
	c.Loop.Pipelined, c.Loop.II = pipelined, ii

	var lat latency.Latency
	switch n := c.Loop.Iterations; {
	case n == lim.IterationsUnknown:
		min := 1
		if !c.Loop.DecisionFirst {
			min = iteration.Min
		}

		lat = latency.Open(min)
		s.ctx.Info("schedule", "%s: iteration count unknown, latency %s", c, lat)
	case n == 0:
		lat = latency.One
	case pipelined:
		lat = iteration.AddCycles((n - 1) * ii)
	default:
		lat = iteration.Repeat(n)
	}

	if pipelined {
		s.ctx.Info("schedule", "%s: pipelined with an initiation interval of %s", c, latency.Cycles(ii))
	}

	s.loopLatency[c.ID] = lat
	t.Done = t.Go.Add(lat)

	// the body was scheduled relative to the start of the loop
	s.g.Walk(body.ID, lim.Forward, lim.TopDown, func(d *lim.Component) {
		d.Timing.Go = t.Go.Add(d.Timing.Go)
		d.Timing.Done = t.Go.Add(d.Timing.Done)
		d.Timing.Iterative = true
		d.Timing.Stalls = !pipelined
	})
}

// pipelining decides whether the iterations of a loop may overlap and with
// which initiation interval.  The body must be free of accesses and nested
// loops, every leaf must accept a new Go at a bounded interval and every
// carried variable must be an induction variable.  Loops with an unknown
// count stay sequential when conservative_unknown_loops is set.
func (s *scheduler) pipelining(c *lim.Component) (bool, int) {
	if c.Loop.Iterations == lim.IterationsUnknown && s.ctx.Options.ConservativeUnknownLoops {
		return false, 0
	}

	ii := 1
	ok := true
	s.g.Walk(c.Body(), lim.Forward, lim.TopDown, func(d *lim.Component) {
		switch {
		case d.Kind == lim.KindLoop || d.Kind == lim.KindAccess:
			ok = false
		case !d.Kind.IsModule():
			n, bounded := d.InitiationInterval()
			if !bounded {
				ok = false
			} else if n > ii {
				ii = n
			}
		}
	})

	if !ok {
		return false, 0
	}

	for j := 0; j < c.Loop.Vars; j++ {
		if !s.isInduction(c, j) {
			return false, 0
		}
	}

	return true, ii
}

// isInduction returns whether the logic computing the next value of carried
// variable j from its current value is combinational and feeds no other
// variable.  Such a variable is ready for the next iteration in the cycle it
// is updated.
func (s *scheduler) isInduction(c *lim.Component, j int) bool {
	stack := []lim.BusID{s.g.Carried(c)[j]}
	seen := make(map[lim.BusID]bool)

	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[b] {
			continue
		}

		seen[b] = true
		for _, p := range s.g.Consumers(b) {
			o := s.g.MustComponent(s.g.Port(p).Owner)
			if o.ID == c.ID {
				if p != c.NextPort(j) && p != c.CondPort() {
					return false
				}

				continue
			}

			if !lim.IsPure(o) {
				continue
			}

			if o.Latency != latency.Zero {
				return false
			}

			stack = append(stack, s.g.DoneExit(o).Data...)
		}
	}

	return true
}
