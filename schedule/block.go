package schedule

import (
	"github.com/orcc/xronos-sub018/latency"
	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/report"
	"github.com/orcc/xronos-sub018/util"
)

// pred is an ordering constraint of a child on an earlier child.
type pred struct {
	from    int
	spacing int
}

// block schedules the children of a block started at `go_` and returns its
// Done.  Children are visited in a topological order of their dependencies,
// program order breaking ties.
func (s *scheduler) block(c *lim.Component, go_ latency.Latency) latency.Latency {
	children := c.Children
	index := make(map[lim.ComponentID]int, len(children))
	for i, ch := range children {
		index[ch] = i
	}

	preds := make([][]pred, len(children))
	for i, ch := range children {
		s.g.Walk(ch, lim.Forward, lim.TopDown, func(d *lim.Component) {
			for _, dep := range s.g.Entry(d).Dependencies {
				if p := s.g.ProducerIn(c.ID, dep.Bus); p != 0 && p != ch {
					preds[i] = append(preds[i], pred{from: index[p]})
				}
			}
		})
	}

	for _, e := range s.spacing[c.ID] {
		to := index[e.to]
		preds[to] = append(preds[to], pred{from: index[e.from], spacing: e.spacing})
	}

	done := go_
	for _, i := range topoOrder(c, preds) {
		t := &lim.Timing{Go: go_}

		nonFixed := 0
		for _, p := range preds[i] {
			src := s.g.MustComponent(children[p.from])
			t.Go = t.Go.And(src.Timing.Done.AddCycles(p.spacing))

			bus := s.g.DoneBus(src)
			if !util.Contains(t.GoSources, bus) {
				t.GoSources = append(t.GoSources, bus)
				if !src.Timing.Done.IsFixed() {
					nonFixed++
				}
			}
		}

		t.Synchronized = nonFixed > 1

		ch := s.g.MustComponent(children[i])
		s.schedule(ch, t)
		done = done.And(t.Done)
	}

	return done
}

// topoOrder returns the children indices of a block such that every child
// follows its predecessors.  A cycle is a malformed graph.
func topoOrder(c *lim.Component, preds [][]pred) []int {
	n := len(preds)
	indeg := make([]int, n)
	succs := make([][]int, n)
	for i, ps := range preds {
		for _, p := range ps {
			indeg[i]++
			succs[p.from] = append(succs[p.from], i)
		}
	}

	order := make([]int, 0, n)
	placed := make([]bool, n)
	for len(order) < n {
		next := -1
		for i := 0; i < n; i++ {
			if !placed[i] && indeg[i] == 0 {
				next = i
				break
			}
		}

		if next < 0 {
			report.ICEAt(c.String(), "circular data dependency")
		}

		placed[next] = true
		order = append(order, next)
		for _, j := range succs[next] {
			indeg[j]--
		}
	}

	return order
}
