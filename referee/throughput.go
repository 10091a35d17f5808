package referee

import (
	"github.com/orcc/xronos-sub018/latency"
	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/report"
	"github.com/orcc/xronos-sub018/util"
)

// Limit is the restriction one resource places on how soon a task may be
// restarted: the gap from the first access of the task to the resource to the
// latest complementary access.  A new activation must not issue its first
// access before the previous one has issued the last complementary one.
type Limit struct {
	Task     lim.ComponentID
	Resource lim.ResourceID

	// Base is the first read or write of the task to the resource.
	Base lim.ComponentID

	// EndPoints are the latest complementary accesses with the latencies
	// they were compared at, in program order.
	EndPoints []latency.Entry[lim.ComponentID]

	// Gap is the longest distance from the base to an end point in cycles,
	// -1 when there is no complementary access.
	Gap int

	// Indeterminate is set when the gap has no static bound.
	Indeterminate bool

	base latency.Latency
}

// Critical returns the end point defining the gap: the one furthest from the
// base, preferring the earliest declared access among equal ones.  It returns
// false if there is no end point.
func (l *Limit) Critical() (lim.ComponentID, bool) {
	best := -1
	bestGap := 0
	for i, e := range l.EndPoints {
		gap, ok := latency.Diff(l.base, e.Latency)
		if !ok {
			gap = int(^uint(0) >> 1)
		}

		if best < 0 || gap > bestGap {
			best, bestGap = i, gap
		}
	}

	if best < 0 {
		return 0, false
	}

	return l.EndPoints[best].Key, true
}

// String describes the gap for reports.
func (l *Limit) String() string {
	switch {
	case l.Indeterminate:
		return "indeterminate"
	case l.Gap < 0:
		return "unconstrained"
	default:
		return latency.Cycles(l.Gap)
	}
}

// Throughput is the result of the throughput analysis of a graph.
type Throughput struct {
	Limits []*Limit
}

// GoSpacing returns the minimum number of cycles between two Gos of a task.
// It returns false if some limit of the task is indeterminate.
func (tp *Throughput) GoSpacing(task lim.ComponentID) (int, bool) {
	spacing := 0
	for _, l := range tp.Limits {
		if l.Task != task {
			continue
		}

		if l.Indeterminate {
			return latency.Unknown, false
		}

		if l.Gap > spacing {
			spacing = l.Gap
		}
	}

	return spacing, true
}

// AnalyzeThroughput computes the throughput limits of every task for every
// resource it reads or writes.  The graph must have been scheduled.
func AnalyzeThroughput(g *lim.Graph) *Throughput {
	tp := &Throughput{}
	for _, task := range g.Tasks() {
		for _, res := range g.Resources() {
			accs := util.Filter(Accesses(g, res.ID), func(a *lim.Component) bool {
				return isData(a.Access.Kind) && g.IsWithin(a.ID, task.ID)
			})

			if len(accs) == 0 {
				continue
			}

			tp.Limits = append(tp.Limits, analyzeLimit(g, task, res, accs))
		}
	}

	return tp
}

func analyzeLimit(g *lim.Graph, task *lim.Component, res *lim.Resource, accs []*lim.Component) *Limit {
	base := accs[0]
	l := &Limit{
		Task:     task.ID,
		Resource: res.ID,
		Base:     base.ID,
		Gap:      -1,
		base:     startLatency(g, base),
	}

	var marked []latency.Entry[lim.ComponentID]
	for _, a := range accs[1:] {
		if a.Access.Kind == base.Access.Kind {
			continue
		}

		lat := endLatency(g, a)
		if l.base.IsGT(lat) {
			continue
		}

		marked = append(marked, latency.Entry[lim.ComponentID]{Key: a.ID, Latency: lat})
	}

	l.EndPoints = latency.GetLatest(marked)
	for _, e := range l.EndPoints {
		gap, ok := latency.Diff(l.base, e.Latency)
		if !ok {
			l.Indeterminate = true
			continue
		}

		if gap > l.Gap {
			l.Gap = gap
		}
	}

	return l
}

// startLatency is the Go of an access or, when it is repeated by hardware
// loops, the Go of the outermost of them.
func startLatency(g *lim.Graph, a *lim.Component) latency.Latency {
	if loops := g.EnclosingLoops(a.ID); len(loops) > 0 {
		return timingOf(g.MustComponent(loops[len(loops)-1])).Go
	}

	return timingOf(a).Go
}

// endLatency is the Go of an access or, when it is repeated by hardware
// loops, the Done of the outermost of them.
func endLatency(g *lim.Graph, a *lim.Component) latency.Latency {
	if loops := g.EnclosingLoops(a.ID); len(loops) > 0 {
		return timingOf(g.MustComponent(loops[len(loops)-1])).Done
	}

	return timingOf(a).Go
}

func timingOf(c *lim.Component) *lim.Timing {
	if c.Timing == nil {
		report.ICEAt(c.String(), "component has not been scheduled")
	}

	return c.Timing
}
