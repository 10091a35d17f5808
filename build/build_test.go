package build

import (
	"strings"
	"testing"

	"github.com/orcc/xronos-sub018/config"
	"github.com/orcc/xronos-sub018/latency"
	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/session"
)

// accumulator builds a task summing 0..3 into a register through a loop.
func accumulator() (*lim.Graph, lim.ComponentID) {
	b := lim.NewBuilder("acc")
	reg := b.Register("total", 8, false)
	_, body := b.Task("main")

	zero := b.Const(body, "zero", 0, 8, false)
	lb := b.Loop(body, "sum", true, zero, zero)
	i, s := lb.Carried[0], lb.Carried[1]
	one := b.Const(lb.Body, "one", 1, 8, false)
	ni := b.Op(lb.Body, lim.OpAdd, "i", 8, false, i, one)
	ns := b.Op(lb.Body, lim.OpAdd, "s", 8, false, s, i)
	cond := b.Op(lb.Body, lim.OpLt, "cond", 1, false, i, b.Const(lb.Body, "four", 4, 8, false))
	res := lb.Finish(cond, ni, ns)
	b.Write(body, "store", reg, res[1])

	return b.Graph(), lb.Loop
}

func TestCompileUnrolls(t *testing.T) {
	g, l := accumulator()
	ctx := session.Quiet(nil)

	res, err := Compile(g, ctx)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	if g.Component(l) != nil || len(res.Loops) != 0 {
		t.Errorf("the loop must have been unrolled")
	}

	store := g.Collect(g.Design, func(c *lim.Component) bool { return c.Kind == lim.KindAccess })
	if len(store) != 1 {
		t.Fatalf("%d accesses left", len(store))
	}

	if v, ok := g.SourceOf(store[0].Ports[0]).Value.Int(); !ok || v != 6 {
		t.Errorf("stored value = %d (%v), want 6", v, ok)
	}

	if len(res.Tasks) != 1 || res.Tasks[0].Done != latency.One {
		t.Errorf("task schedule = %+v", res.Tasks)
	}
}

func TestCompileWithoutUnrolling(t *testing.T) {
	g, l := accumulator()
	opts := config.Default()
	opts.LoopUnrollEnabled = false

	res, err := Compile(g, session.Quiet(opts))
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	if len(res.Loops) != 1 || res.Loops[0].Loop != l {
		t.Fatalf("loops = %+v", res.Loops)
	}

	ls := res.Loops[0]
	if ls.Iterations != 4 || ls.Reason != "unrolling disabled" {
		t.Errorf("loop decision = %+v", ls)
	}

	// the counter also feeds the accumulator so iterations cannot overlap
	if ls.Pipelined || ls.Latency != latency.Fixed(4) {
		t.Errorf("loop schedule = %+v", ls)
	}
}

func TestCompileReportsInternalErrors(t *testing.T) {
	b := lim.NewBuilder("cycle")
	_, body := b.Task("main")
	x := b.Input(body, "x", 8, false)
	a := b.Op(body, lim.OpAdd, "a", 8, false, x, x)
	c := b.Op(body, lim.OpSub, "c", 8, false, a, x)
	b.Output(body, "o", c)

	g := b.Graph()
	g.Connect(g.Producer(a).Ports[1], c)

	opts := config.Default()
	opts.ConstantPropagation = false
	opts.PassThroughRemoval = false

	_, err := Compile(g, session.Quiet(opts))
	if err == nil || !strings.Contains(err.Error(), "circular data dependency") {
		t.Fatalf("expected a circular dependency error, got %v", err)
	}
}

func TestOptimizeReachesFixedPoint(t *testing.T) {
	g, _ := accumulator()
	c := NewCompiler(g, session.Quiet(nil))

	passes := c.Optimize()
	if passes < 2 || passes >= config.DefaultMaxOptimizationPasses {
		t.Errorf("optimization took %d passes", passes)
	}

	if again := NewCompiler(g, session.Quiet(nil)).Optimize(); again != 1 {
		t.Errorf("optimizing an optimized graph took %d passes", again)
	}
}

func TestOptimizeWarnsAtPassLimit(t *testing.T) {
	g, _ := accumulator()
	opts := config.Default()
	opts.MaxOptimizationPasses = 1
	ctx := session.Quiet(opts)

	if passes := NewCompiler(g, ctx).Optimize(); passes != 1 {
		t.Errorf("optimization took %d passes, want 1", passes)
	}

	if n := ctx.Reporter.WarningCount(); n != 1 {
		t.Errorf("%d warnings, want 1", n)
	}
}
