package lim

import "github.com/orcc/xronos-sub018/report"

// Verify checks that the graph is well formed: every port is connected, every
// component has the ports and children its kind requires.  Malformed graphs
// are a defect of whoever built them and raise an ICE naming the offending
// component.
func (g *Graph) Verify() {
	g.Walk(g.Design, Forward, TopDown, g.verifyComponent)
}

func (g *Graph) verifyComponent(c *Component) {
	for _, p := range c.Ports {
		port := g.Port(p)
		if port.Source == 0 {
			report.ICEAt(c.String(), "port %d is not connected", p)
		}

		g.Bus(port.Source)
	}

	for _, b := range c.Control {
		if !g.Bus(b).IsDone {
			report.ICEAt(c.String(), "control dependency on a data bus")
		}
	}

	wantPorts := func(n int) {
		if len(c.Ports) != n {
			report.ICEAt(c.String(), "expected %d ports, found %d", n, len(c.Ports))
		}
	}

	wantChildren := func(n int) {
		if len(c.Children) != n {
			report.ICEAt(c.String(), "expected %d children, found %d", n, len(c.Children))
		}
	}

	switch c.Kind {
	case KindDesign:
		for _, id := range c.Children {
			if g.MustComponent(id).Kind != KindTask {
				report.ICEAt(c.String(), "design child %s is not a task", g.MustComponent(id))
			}
		}
	case KindTask:
		wantChildren(1)
		if g.MustComponent(c.Children[0]).Kind != KindProcedure {
			report.ICEAt(c.String(), "task must hold a procedure")
		}
	case KindProcedure:
		wantChildren(1)
		if g.MustComponent(c.Children[0]).Kind != KindBlock {
			report.ICEAt(c.String(), "procedure must hold a block")
		}
	case KindBlock:
		wantPorts(0)
	case KindLoop:
		if c.Loop == nil {
			report.ICEAt(c.String(), "loop has no loop info")
		}

		wantPorts(2*c.Loop.Vars + 1)
		wantChildren(1)
		if len(c.Exits) < 2 || g.Exit(c.Exits[1]).Tag != ExitFeedback {
			report.ICEAt(c.String(), "loop has no feedback exit")
		}

		if len(g.Carried(c)) != c.Loop.Vars || len(g.Results(c)) != c.Loop.Vars {
			report.ICEAt(c.String(), "loop variable count mismatch")
		}
	case KindBranch:
		wantPorts(1)
		wantChildren(2)
	case KindSwitch:
		wantPorts(1)
		if len(c.Children) != len(c.Cases) && len(c.Children) != len(c.Cases)+1 {
			report.ICEAt(c.String(), "switch has %d arms for %d cases", len(c.Children), len(c.Cases))
		}
	case KindConstant:
		wantPorts(0)
		if !c.Const.IsValid() {
			report.ICEAt(c.String(), "constant has no value")
		}
	case KindInput, KindJump:
		wantPorts(0)
	case KindOutput:
		wantPorts(1)
	case KindOp:
		wantPorts(c.Op.Arity())
	case KindMux:
		if len(c.Ports) < 3 {
			report.ICEAt(c.String(), "mux needs a select and two data inputs")
		}
	case KindAccess:
		if c.Access == nil {
			report.ICEAt(c.String(), "access has no access info")
		}

		n, _ := accessArity(g.Resource(c.Access.Resource), c.Access.Kind)
		wantPorts(n)
	default:
		report.ICEAt(c.String(), "unknown component kind")
	}

	if c.Kind.IsModule() && c.Kind != KindBlock && c.Kind != KindDesign && len(c.Children) == 0 {
		report.ICEAt(c.String(), "module has no children")
	}

	if !c.Kind.IsModule() && len(c.Children) != 0 {
		report.ICEAt(c.String(), "leaf has children")
	}
}
