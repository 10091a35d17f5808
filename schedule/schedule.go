// Package schedule computes the clock cycle schedule of every component of a
// graph: when it may start and when it completes, relative to the start of its
// task.
package schedule

import (
	"github.com/orcc/xronos-sub018/latency"
	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/referee"
	"github.com/orcc/xronos-sub018/session"
	"github.com/orcc/xronos-sub018/util"
)

// TaskSchedule is the schedule summary of one task.
type TaskSchedule struct {
	Task lim.ComponentID
	Name string

	// Done is the latency of the whole task.
	Done latency.Latency

	// GoSpacing is the minimum number of cycles between two starts of the
	// task.  It is only meaningful when SpacingKnown is set.
	GoSpacing    int
	SpacingKnown bool
}

// LoopSchedule is the schedule summary of a hardware loop.
type LoopSchedule struct {
	Loop lim.ComponentID
	Name string

	Iterations int
	Reason     string
	Pipelined  bool
	II         int

	// Latency is the latency of the complete loop.
	Latency latency.Latency
}

// Result is the outcome of scheduling a graph.  The timing of each component
// is recorded on the component itself.
type Result struct {
	Tasks      []TaskSchedule
	Loops      []LoopSchedule
	Arbiters   []*lim.Arbiter
	Throughput *referee.Throughput
}

// Schedule schedules every task of the graph.  Arbiters must already have been
// synthesized since arbitration changes access latencies.
func Schedule(g *lim.Graph, ctx *session.Context) *Result {
	s := &scheduler{
		g:           g,
		ctx:         ctx,
		spacing:     make(map[lim.ComponentID][]edge),
		loopLatency: make(map[lim.ComponentID]latency.Latency),
	}

	res := &Result{Arbiters: g.Arbiters}
	for _, task := range g.Tasks() {
		s.addResourceEdges(task)
		s.schedule(task, &lim.Timing{Go: latency.Zero})

		res.Tasks = append(res.Tasks, TaskSchedule{
			Task: task.ID,
			Name: task.Name,
			Done: task.Timing.Done,
		})
	}

	res.Throughput = referee.AnalyzeThroughput(g)
	for i := range res.Tasks {
		ts := &res.Tasks[i]
		ts.GoSpacing, ts.SpacingKnown = res.Throughput.GoSpacing(ts.Task)
	}

	for _, c := range g.Collect(g.Design, func(c *lim.Component) bool { return c.Kind == lim.KindLoop }) {
		res.Loops = append(res.Loops, LoopSchedule{
			Loop:       c.ID,
			Name:       c.Name,
			Iterations: c.Loop.Iterations,
			Reason:     c.Loop.Reason,
			Pipelined:  c.Loop.Pipelined,
			II:         c.Loop.II,
			Latency:    s.loopLatency[c.ID],
		})
	}

	return res
}

// -----------------------------------------------------------------------------

// edge orders two children of a block: `to` may not start before `from` is
// done plus `spacing` cycles.
type edge struct {
	from, to lim.ComponentID
	spacing  int
}

type scheduler struct {
	g   *lim.Graph
	ctx *session.Context

	// spacing holds the resource ordering edges per block.
	spacing map[lim.ComponentID][]edge

	// loopLatency holds the latency of each scheduled hardware loop.
	loopLatency map[lim.ComponentID]latency.Latency
}

// addResourceEdges records the ordering edges between every pair of accesses
// of one resource in a task.  The edge is placed in the innermost block
// containing both accesses.  Accesses in exclusive arms of a branch never
// need ordering.
func (s *scheduler) addResourceEdges(task *lim.Component) {
	for _, res := range s.g.Resources() {
		accs := util.Filter(referee.Accesses(s.g, res.ID), func(a *lim.Component) bool {
			return s.g.IsWithin(a.ID, task.ID)
		})

		for i, a := range accs {
			for _, b := range accs[i+1:] {
				lca := s.g.CommonOwner(a.ID, b.ID)
				if k := s.g.MustComponent(lca).Kind; k == lim.KindBranch || k == lim.KindSwitch {
					continue
				}

				s.spacing[lca] = append(s.spacing[lca], edge{
					from:    s.g.ChildOf(lca, a.ID),
					to:      s.g.ChildOf(lca, b.ID),
					spacing: referee.Spacing(res, a, b),
				})
			}
		}
	}
}

// schedule fills in the Done of a component started at `t.Go` and records the
// timing on the component.
func (s *scheduler) schedule(c *lim.Component, t *lim.Timing) {
	c.Timing = t

	switch c.Kind {
	case lim.KindTask:
		child := s.g.MustComponent(c.Children[0])
		s.schedule(child, &lim.Timing{Go: t.Go})
		t.Done = child.Timing.Done
	case lim.KindProcedure:
		body := s.g.MustComponent(c.Children[0])
		s.schedule(body, &lim.Timing{Go: t.Go})
		t.Done = body.Timing.Done

		// a return may complete the procedure early
		for _, exID := range body.Exits[1:] {
			if ex := s.g.Exit(exID); ex.Tag == lim.ExitReturn && ex.From != 0 {
				t.Done = t.Done.Or(s.g.MustComponent(ex.From).Timing.Done)
			}
		}
	case lim.KindBlock:
		t.Done = s.block(c, t.Go)
	case lim.KindBranch, lim.KindSwitch:
		s.arms(c, t)
	case lim.KindLoop:
		s.loop(c, t)
	default:
		t.Done = t.Go.Add(c.Latency)
	}
}

// arms schedules the arms of a branch or switch.  Every arm starts with the
// branch, qualified by the condition selecting it.
func (s *scheduler) arms(c *lim.Component, t *lim.Timing) {
	sel := s.g.Port(c.Ports[0]).Source

	done := t.Go
	for i, id := range c.Children {
		at := &lim.Timing{Go: t.Go, Qualifier: sel}
		if c.Kind == lim.KindSwitch {
			if i < len(c.Cases) {
				at.QualifierCase = c.Cases[i]
			} else {
				at.DefaultArm = true
			}
		} else {
			// the true arm is selected by a set condition
			at.QualifierCase = int64(1 - i)
		}

		arm := s.g.MustComponent(id)
		s.schedule(arm, at)
		if i == 0 {
			done = at.Done
		} else {
			done = done.Or(at.Done)
		}
	}

	// without a default arm no arm may run at all
	if c.Kind == lim.KindSwitch && len(c.Children) == len(c.Cases) {
		done = done.Or(t.Go)
	}

	t.Done = done
}
