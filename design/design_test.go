package design

import (
	"strings"
	"testing"

	"github.com/orcc/xronos-sub018/build"
	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/session"
)

func TestLoadAccumulator(t *testing.T) {
	d, err := Load("testdata/accumulate.toml")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if d.Name != "acc" || d.Options == nil || d.Options.LoopUnrollLimit != 8 {
		t.Fatalf("design = %+v, options = %+v", d, d.Options)
	}

	g := d.Graph
	g.Verify()

	loops := g.Collect(g.Design, func(c *lim.Component) bool { return c.Kind == lim.KindLoop })
	if len(loops) != 1 || loops[0].Loop.Vars != 2 || !loops[0].Loop.DecisionFirst {
		t.Fatalf("loops = %v", loops)
	}

	if _, err := build.Compile(g, session.Quiet(d.Options)); err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	store := g.Collect(g.Design, func(c *lim.Component) bool { return c.Kind == lim.KindAccess })
	if len(store) != 1 {
		t.Fatalf("%d accesses left", len(store))
	}

	if v, ok := g.SourceOf(store[0].Ports[0]).Value.Int(); !ok || v != 6 {
		t.Errorf("stored value = %d (%v), want 6", v, ok)
	}
}

const branchDesign = `
name = "branchy"

[[tasks]]
name = "main"
inputs = [{ name = "x", width = 8 }]

[[tasks.stmts]]
op = "const"
name = "four"
value = 4
width = 8

[[tasks.stmts]]
op = "lt"
name = "small"
args = ["x", "four"]

[[tasks.stmts]]
op = "if"
name = "pick"
cond = "small"

[[tasks.stmts.then]]
op = "add"
name = "x"
args = ["x", "four"]

[[tasks.stmts.else]]
op = "const"
name = "tmp"
value = 0
width = 8

[[tasks.stmts]]
op = "output"
name = "o"
args = ["x"]
`

func TestBranchMerges(t *testing.T) {
	d, err := Parse([]byte(branchDesign))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	g := d.Graph
	g.Verify()

	if d.Options != nil {
		t.Errorf("design without options has options %+v", d.Options)
	}

	muxes := g.Collect(g.Design, func(c *lim.Component) bool { return c.Kind == lim.KindMux })
	if len(muxes) != 1 {
		t.Fatalf("%d muxes, want 1", len(muxes))
	}

	outs := g.Collect(g.Design, func(c *lim.Component) bool { return c.Kind == lim.KindOutput })
	if len(outs) != 1 || g.Producer(g.Port(outs[0].Ports[0]).Source) != muxes[0] {
		t.Fatalf("the output must read the merge mux")
	}

	// data input 0 is the else value: the untouched input
	if g.Producer(g.Port(muxes[0].Ports[1]).Source).Kind != lim.KindInput {
		t.Errorf("else value of the merge is not the input")
	}
}

const switchDesign = `
name = "switchy"

[[tasks]]
name = "main"
inputs = [{ name = "sel", width = 2 }, { name = "x", width = 8 }]

[[tasks.stmts]]
op = "switch"
name = "sw"
cond = "sel"

[[tasks.stmts.arms]]
case = 0

[[tasks.stmts.arms.body]]
op = "not"
name = "x"
args = ["x"]

[[tasks.stmts.arms]]
case = 2

[[tasks.stmts.arms.body]]
op = "add"
name = "x"
args = ["x", "x"]

[[tasks.stmts.arms]]

[[tasks.stmts.arms.body]]
op = "const"
name = "x"
value = 0
width = 8

[[tasks.stmts]]
op = "output"
name = "o"
args = ["x"]
`

func TestSwitchMerges(t *testing.T) {
	d, err := Parse([]byte(switchDesign))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	g := d.Graph
	g.Verify()

	sw := g.Collect(g.Design, func(c *lim.Component) bool { return c.Kind == lim.KindSwitch })
	if len(sw) != 1 || len(sw[0].Children) != 3 || len(sw[0].Cases) != 2 {
		t.Fatalf("switch = %v", sw)
	}

	eqs := g.Collect(g.Design, func(c *lim.Component) bool { return c.Kind == lim.KindOp && c.Op == lim.OpEq })
	muxes := g.Collect(g.Design, func(c *lim.Component) bool { return c.Kind == lim.KindMux })
	if len(eqs) != 2 || len(muxes) != 2 {
		t.Errorf("%d case tests and %d muxes, want 2 and 2", len(eqs), len(muxes))
	}
}

func TestDesignErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no name", "[[tasks]]\nname = \"main\"", "design has no name"},
		{"no tasks", "name = \"d\"", "design has no tasks"},
		{"bad resource", "name = \"d\"\n[[resources]]\nname = \"r\"\nkind = \"tape\"\nwidth = 1", "unknown resource kind"},
		{"undefined", "name = \"d\"\n[[tasks]]\nname = \"main\"\n[[tasks.stmts]]\nop = \"output\"\nargs = [\"y\"]", "undefined name `y`"},
		{"unknown op", "name = \"d\"\n[[tasks]]\nname = \"main\"\n[[tasks.stmts]]\nop = \"frob\"", "unknown statement kind"},
		{"arity", "name = \"d\"\n[[tasks]]\nname = \"main\"\ninputs = [{ name = \"x\", width = 4 }]\n[[tasks.stmts]]\nop = \"add\"\nname = \"y\"\nargs = [\"x\"]", "takes 2 operands"},
		{"stray break", "name = \"d\"\n[[tasks]]\nname = \"main\"\n[[tasks.stmts]]\nop = \"break\"", "outside of a loop"},
		{"bad options", "name = \"d\"\n[options]\nloop_unroll_limit = -3\n[[tasks]]\nname = \"main\"", "design options"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.body))
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("error = %v, want it to mention %q", err, test.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("testdata/missing.toml"); err == nil || !strings.Contains(err.Error(), "reading design file") {
		t.Errorf("error = %v", err)
	}
}
