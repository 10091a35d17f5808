package lim

import (
	"strings"
	"testing"

	"github.com/orcc/xronos-sub018/latency"
	"github.com/orcc/xronos-sub018/report"
)

// nestedLoops builds a task with an outer loop holding an inner loop.
func nestedLoops() (*Graph, ComponentID, ComponentID) {
	b := NewBuilder("nested")
	_, body := b.Task("main")
	zero := b.Const(body, "zero", 0, 8, false)

	outer := b.Loop(body, "outer", true, zero)
	inner := b.Loop(outer.Body, "inner", true, outer.Carried[0])
	one := b.Const(inner.Body, "one", 1, 8, false)
	inc := b.Op(inner.Body, OpAdd, "inc", 8, false, inner.Carried[0], one)
	lim := b.Const(inner.Body, "lim", 4, 8, false)
	cond := b.Op(inner.Body, OpLt, "cond", 1, false, inner.Carried[0], lim)
	res := inner.Finish(cond, inc)

	olim := b.Const(outer.Body, "olim", 2, 8, false)
	ocond := b.Op(outer.Body, OpLt, "ocond", 1, false, outer.Carried[0], olim)
	outer.Finish(ocond, res[0])

	return b.Graph(), outer.Loop, inner.Loop
}

func TestWalkOrders(t *testing.T) {
	g, outer, inner := nestedLoops()

	var loops []ComponentID
	g.Walk(g.Design, Forward, BottomUp, func(c *Component) {
		if c.Kind == KindLoop {
			loops = append(loops, c.ID)
		}
	})

	if len(loops) != 2 || loops[0] != inner || loops[1] != outer {
		t.Fatalf("bottom-up walk must visit the inner loop first, got %v", loops)
	}

	var forward, reverse []string
	g.Walk(g.MustComponent(inner).Body(), Forward, TopDown, func(c *Component) {
		if !c.Kind.IsModule() {
			forward = append(forward, c.Name)
		}
	})
	g.Walk(g.MustComponent(inner).Body(), Reverse, TopDown, func(c *Component) {
		if !c.Kind.IsModule() {
			reverse = append(reverse, c.Name)
		}
	})

	if strings.Join(forward, ",") != "one,inc,lim,cond" {
		t.Errorf("forward order = %v", forward)
	}
	if strings.Join(reverse, ",") != "cond,lim,inc,one" {
		t.Errorf("reverse order = %v", reverse)
	}
}

func TestContainment(t *testing.T) {
	g, outer, inner := nestedLoops()

	if !g.IsWithin(inner, outer) || g.IsWithin(outer, inner) {
		t.Errorf("IsWithin disagrees with nesting")
	}
	if got := g.ChildOf(g.MustComponent(outer).Body(), inner); got != inner {
		t.Errorf("ChildOf = %d, want %d", got, inner)
	}
	if loops := g.EnclosingLoops(g.MustComponent(inner).Body()); len(loops) != 2 || loops[0] != inner {
		t.Errorf("EnclosingLoops = %v", loops)
	}

	task := g.Tasks()[0]
	if g.TaskOf(inner) != task.ID {
		t.Errorf("TaskOf did not find the task")
	}
}

func TestEntry(t *testing.T) {
	b := NewBuilder("entry")
	_, body := b.Task("main")
	x := b.Input(body, "x", 8, false)
	y := b.Input(body, "y", 8, false)
	sum := b.Op(body, OpAdd, "sum", 8, false, x, y)
	out := b.Output(body, "out", sum)
	b.Control(out, b.Graph().Producer(x).ID)

	g := b.Graph()
	e := g.Entry(g.MustComponent(out))
	if len(e.Dependencies) != 2 {
		t.Fatalf("expected one data and one control dependency, got %+v", e.Dependencies)
	}
	if d := e.Dependencies[0]; d.Kind != DataDep || d.Bus != sum {
		t.Errorf("unexpected data dependency %+v", d)
	}
	if d := e.Dependencies[1]; d.Kind != ControlDep || d.Port != GoPort {
		t.Errorf("unexpected control dependency %+v", d)
	}
}

func TestCloneSubstitutesCarriedValues(t *testing.T) {
	g, _, inner := nestedLoops()
	loop := g.MustComponent(inner)
	carried := g.Carried(loop)[0]

	b := &Builder{g: g}
	_, scratch := b.Task("scratch")
	seven := b.Const(scratch, "seven", 7, 8, false)

	copyID, busMap := g.Clone(loop.Body(), scratch, map[BusID]BusID{carried: seven})
	cp := g.MustComponent(copyID)
	if cp.Owner != scratch || len(cp.Children) != 4 {
		t.Fatalf("unexpected copy %s with %d children", cp, len(cp.Children))
	}

	inc := g.MustComponent(cp.Children[1])
	if g.Port(inc.Ports[0]).Source != seven {
		t.Errorf("carried value was not substituted")
	}

	// internal buses map to their copies and the original is untouched
	origInc := g.MustComponent(loop.Body()).Children[1]
	origRes := g.Result(g.MustComponent(origInc))
	if busMap[origRes] != g.Result(inc) {
		t.Errorf("bus map does not link the copied result")
	}
	if g.Port(g.MustComponent(origInc).Ports[0]).Source != carried {
		t.Errorf("original was modified by the clone")
	}
}

func TestWorklistBypassChain(t *testing.T) {
	b := NewBuilder("chain")
	_, body := b.Task("main")
	x := b.Input(body, "x", 8, false)
	y := b.Input(body, "y", 8, false)
	sel := b.Const(body, "sel", 0, 1, false)
	m1 := b.Mux(body, "m1", sel, x, y)
	m2 := b.Mux(body, "m2", sel, m1, y)
	out := b.Output(body, "out", m2)
	g := b.Graph()

	w := &Worklist{}
	w.Bypass(g.Producer(m1).ID, g.Producer(m1).Ports[1])
	w.Bypass(g.Producer(m2).ID, g.Producer(m2).Ports[1])
	if n := w.Apply(g); n != 2 {
		t.Fatalf("applied %d edits", n)
	}

	if src := g.Port(g.MustComponent(out).Ports[0]).Source; src != x {
		t.Errorf("output reads %s, want x", g.Bus(src).Name)
	}
	if w.Len() != 0 {
		t.Errorf("worklist must be empty after Apply")
	}
}

func TestRemoveDead(t *testing.T) {
	b := NewBuilder("dead")
	_, body := b.Task("main")
	x := b.Input(body, "x", 8, false)
	one := b.Const(body, "one", 1, 8, false)
	a := b.Op(body, OpAdd, "a", 8, false, x, one)
	b.Op(body, OpMul, "unused", 8, false, a, a)
	b.Output(body, "out", x)
	g := b.Graph()

	if n := g.RemoveDead(body); n != 3 {
		t.Fatalf("removed %d components, want 3", n)
	}

	for _, c := range g.Leaves(body) {
		if c.Kind == KindOp || c.Kind == KindConstant {
			t.Errorf("dead %s survived", c)
		}
	}
}

func TestRemoveRejectsUsedBus(t *testing.T) {
	b := NewBuilder("used")
	_, body := b.Task("main")
	x := b.Input(body, "x", 8, false)
	b.Output(body, "out", x)
	g := b.Graph()

	var err error
	func() {
		defer report.CatchErrors(&err)
		g.Remove(g.Producer(x).ID)
	}()

	if err == nil {
		t.Fatalf("expected removing a consumed producer to fail")
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	b := NewBuilder("bad")
	_, body := b.Task("main")
	x := b.Input(body, "x", 8, false)
	sum := b.Op(body, OpAdd, "sum", 8, false, x, x)
	g := b.Graph()

	// sever a port behind the builder's back
	g.disconnect(g.Producer(sum).Ports[1])

	var err error
	func() {
		defer report.CatchErrors(&err)
		g.Verify()
	}()

	if err == nil || !strings.Contains(err.Error(), "not connected") {
		t.Fatalf("expected an unconnected port error, got %v", err)
	}
}

func TestLatencyModel(t *testing.T) {
	b := NewBuilder("model")
	_, body := b.Task("main")
	mem := b.Memory("mem", 8, 16, 1, 2, 1)
	fifo := b.Stream("in", ResInputStream, 8, false)
	addr := b.Const(body, "addr", 3, 4, false)

	rd, _ := b.Access(body, "rd", mem, AccRead, addr)
	get, _ := b.Access(body, "get", fifo, AccRead)
	peek, _ := b.Access(body, "peek", fifo, AccPeek)
	g := b.Graph()

	// accesses are never re-issued before their Done
	if c := g.MustComponent(rd); c.Latency != latency.Fixed(2) || c.IsPipelined() || c.Spacing != 0 {
		t.Errorf("memory read latency %s pipelined=%v", c.Latency, c.IsPipelined())
	}
	if c := g.MustComponent(get); !c.Latency.IsUnknown() {
		t.Errorf("blocking stream reads must be open, got %s", c.Latency)
	}
	if c := g.MustComponent(peek); c.Latency != latency.Zero {
		t.Errorf("peek latency %s", c.Latency)
	}

	var err error
	func() {
		defer report.CatchErrors(&err)
		b.Access(body, "bad", fifo, AccWrite, addr)
	}()
	if err == nil {
		t.Errorf("expected writing an input stream to be rejected")
	}
}
