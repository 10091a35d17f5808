package referee

import (
	"testing"

	"github.com/kr/pretty"

	"github.com/orcc/xronos-sub018/latency"
	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/report"
	"github.com/orcc/xronos-sub018/session"
)

func access(kind lim.AccessKind, port int) *lim.Component {
	return &lim.Component{Kind: lim.KindAccess, Access: &lim.AccessInfo{Kind: kind, MemPort: port}}
}

func TestSpacing(t *testing.T) {
	const (
		R = lim.AccRead
		W = lim.AccWrite
		S = lim.AccStatus
		P = lim.AccPeek
	)

	tests := []struct {
		res            lim.ResourceKind
		from, to       lim.AccessKind
		fromPort, port int
		want           int
	}{
		{lim.ResRegister, W, R, 0, 0, 1},
		{lim.ResRegister, W, W, 0, 0, 1},
		{lim.ResRegister, R, W, 0, 0, 0},
		{lim.ResRegister, R, R, 0, 0, 0},

		{lim.ResMemory, R, R, 0, 0, 1},
		{lim.ResMemory, R, W, 0, 0, 1},
		{lim.ResMemory, W, R, 0, 0, 1},
		{lim.ResMemory, W, W, 0, 0, 1},
		{lim.ResMemory, S, R, 0, 0, 0},
		{lim.ResMemory, W, S, 0, 0, 0},
		{lim.ResMemory, W, R, 0, 1, 1},
		{lim.ResMemory, W, W, 1, 0, 1},
		{lim.ResMemory, R, W, 0, 1, 0},
		{lim.ResMemory, R, R, 1, 0, 0},

		{lim.ResPin, W, R, 0, 0, 1},
		{lim.ResPin, W, S, 0, 0, 1},
		{lim.ResPin, R, W, 0, 0, 0},
		{lim.ResPin, S, W, 0, 0, 0},

		{lim.ResInputStream, R, R, 0, 0, 1},
		{lim.ResInputStream, R, P, 0, 0, 0},
		{lim.ResInputStream, P, R, 0, 0, 0},
		{lim.ResInputStream, S, R, 0, 0, 0},

		{lim.ResOutputStream, W, W, 0, 0, 1},
		{lim.ResOutputStream, W, S, 0, 0, 0},
		{lim.ResOutputStream, S, W, 0, 0, 0},
	}

	for _, test := range tests {
		res := &lim.Resource{Name: "r", Kind: test.res, Ports: 2}
		got := Spacing(res, access(test.from, test.fromPort), access(test.to, test.port))
		if got != test.want {
			t.Errorf("%s: %s(port %d) -> %s(port %d) = %d, want %d",
				test.res, test.from, test.fromPort, test.to, test.port, got, test.want)
		}
	}
}

func TestIllegalSpacing(t *testing.T) {
	illegal := []struct {
		res      lim.ResourceKind
		from, to lim.AccessKind
	}{
		{lim.ResRegister, lim.AccStatus, lim.AccRead},
		{lim.ResMemory, lim.AccPeek, lim.AccRead},
		{lim.ResPin, lim.AccRead, lim.AccPeek},
		{lim.ResInputStream, lim.AccRead, lim.AccWrite},
		{lim.ResOutputStream, lim.AccRead, lim.AccWrite},
	}

	for _, test := range illegal {
		err := func() (err error) {
			defer report.CatchErrors(&err)
			Spacing(&lim.Resource{Kind: test.res}, access(test.from, 0), access(test.to, 0))
			return nil
		}()

		if err == nil {
			t.Errorf("%s: %s -> %s must be rejected", test.res, test.from, test.to)
		}
	}
}

func TestArbitrate(t *testing.T) {
	b := lim.NewBuilder("arb")
	shared := b.Register("shared", 8, false)
	local := b.Register("local", 8, false)

	_, a := b.Task("a")
	x := b.Input(a, "x", 8, false)
	wa := b.Write(a, "wa", shared, x)
	la := b.Write(a, "la", local, x)
	lr := b.Read(a, "lr", local)
	b.Output(a, "o", lr)

	_, bb := b.Task("b")
	rb := b.Read(bb, "rb", shared)
	b.Output(bb, "o", rb)

	g := b.Graph()
	arbs := Arbitrate(g, session.Quiet(nil))
	if len(arbs) != 2 {
		t.Fatalf("%d arbiters, want 2", len(arbs))
	}

	tasks := g.Tasks()
	want := []*lim.Arbiter{
		{
			Resource: shared,
			Kind:     lim.ArbiterPriority,
			Slots: []lim.ArbiterSlot{
				{Task: tasks[0].ID, Accesses: []lim.ComponentID{wa}},
				{Task: tasks[1].ID, Accesses: []lim.ComponentID{g.Producer(rb).ID}},
			},
		},
		{
			Resource: local,
			Kind:     lim.ArbiterMux,
			Slots: []lim.ArbiterSlot{
				{Task: tasks[0].ID, Accesses: []lim.ComponentID{la, g.Producer(lr).ID}},
			},
		},
	}

	if diff := pretty.Diff(want, arbs); len(diff) > 0 {
		t.Errorf("arbiters differ:\n%s", diff)
	}

	if lat := g.MustComponent(wa).Latency; !lat.IsUnknown() || lat.Min != 1 {
		t.Errorf("arbitrated write latency = %s, want {1, ?}", lat)
	}
	if lat := g.MustComponent(la).Latency; lat != latency.One {
		t.Errorf("single task write latency = %s, want %s", lat, latency.One)
	}
}

func TestGrantRoute(t *testing.T) {
	arb := &lim.Arbiter{
		Kind: lim.ArbiterPriority,
		Slots: []lim.ArbiterSlot{
			{Task: 1, Accesses: []lim.ComponentID{10, 11}},
			{Task: 2, Accesses: []lim.ComponentID{20}},
			{Task: 3, Accesses: []lim.ComponentID{30}},
		},
	}

	grants := []struct {
		requests []bool
		want     int
	}{
		{[]bool{false, false, false}, -1},
		{[]bool{true, true, true}, 0},
		{[]bool{false, true, true}, 1},
		{[]bool{false, false, true}, 2},
		{nil, -1},
	}

	for _, g := range grants {
		if got := arb.Grant(g.requests); got != g.want {
			t.Errorf("Grant(%v) = %d, want %d", g.requests, got, g.want)
		}
	}

	tag, ok := arb.TagOf(11)
	if !ok || tag != (lim.Tag{Slot: 0, Access: 1}) {
		t.Fatalf("TagOf(11) = %v, %v", tag, ok)
	}

	if acc, ok := arb.Route(tag); !ok || acc != 11 {
		t.Errorf("Route(%v) = %d, %v", tag, acc, ok)
	}
	if _, ok := arb.Route(lim.Tag{Slot: 3}); ok {
		t.Errorf("routing to a missing slot must fail")
	}
}

// throughputGraph builds a task writing a register once and reading it back
// several times, each access scheduled at the given latency.
func throughputGraph(base latency.Latency, reads ...latency.Latency) (*lim.Graph, []lim.ComponentID) {
	b := lim.NewBuilder("tp")
	reg := b.Register("r", 8, false)
	_, body := b.Task("t")

	x := b.Input(body, "x", 8, false)
	w := b.Write(body, "w", reg, x)
	ids := []lim.ComponentID{w}
	for range reads {
		ids = append(ids, b.Graph().Producer(b.Read(body, "rd", reg)).ID)
	}

	g := b.Graph()
	g.MustComponent(w).Timing = &lim.Timing{Go: base}
	for i, lat := range reads {
		g.MustComponent(ids[i+1]).Timing = &lim.Timing{Go: lat}
	}

	return g, ids
}

func TestThroughput(t *testing.T) {
	g, ids := throughputGraph(
		latency.Zero,
		latency.Fixed(2),
		latency.New(1, 3),
		latency.One,
		latency.Fixed(2),
	)

	tp := AnalyzeThroughput(g)
	if len(tp.Limits) != 1 {
		t.Fatalf("%d limits, want 1", len(tp.Limits))
	}

	l := tp.Limits[0]
	want := []latency.Entry[lim.ComponentID]{
		{Key: ids[1], Latency: latency.Fixed(2)},
		{Key: ids[2], Latency: latency.New(1, 3)},
	}
	if diff := pretty.Diff(want, l.EndPoints); len(diff) > 0 {
		t.Errorf("end points differ:\n%s", diff)
	}

	if l.Base != ids[0] || l.Gap != 3 || l.Indeterminate {
		t.Errorf("limit = base %d gap %d indeterminate %v", l.Base, l.Gap, l.Indeterminate)
	}
	if crit, ok := l.Critical(); !ok || crit != ids[2] {
		t.Errorf("critical end point = %d, want %d", crit, ids[2])
	}
	if sp, ok := tp.GoSpacing(g.Tasks()[0].ID); !ok || sp != 3 {
		t.Errorf("go spacing = %d, %v", sp, ok)
	}
}

func TestThroughputEdgeCases(t *testing.T) {
	// a read completing before the base starts does not constrain
	g, _ := throughputGraph(latency.Fixed(5), latency.New(1, 4))
	if l := AnalyzeThroughput(g).Limits[0]; l.Gap != -1 || len(l.EndPoints) != 0 {
		t.Errorf("skipped read: gap %d, %d end points", l.Gap, len(l.EndPoints))
	}

	g, ids := throughputGraph(latency.Zero, latency.Fixed(4), latency.Fixed(4))
	l := AnalyzeThroughput(g).Limits[0]
	if crit, _ := l.Critical(); len(l.EndPoints) != 1 || crit != ids[1] {
		t.Errorf("identical end points must keep the first, got %v", l.EndPoints)
	}

	g, _ = throughputGraph(latency.Zero, latency.Open(1), latency.Fixed(4))
	tp := AnalyzeThroughput(g)
	if !tp.Limits[0].Indeterminate || tp.Limits[0].String() != "indeterminate" {
		t.Errorf("open end point must make the gap indeterminate")
	}
	if _, ok := tp.GoSpacing(g.Tasks()[0].ID); ok {
		t.Errorf("indeterminate limits must win the go spacing")
	}
}
