package design

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/value"
)

// env is a lexical scope mapping names to the buses currently holding them.
type env struct {
	parent *env
	names  map[string]lim.BusID

	// order lists the names bound in this scope in binding order.
	order []string
}

func newEnv(parent *env) *env {
	return &env{parent: parent, names: make(map[string]lim.BusID)}
}

func (e *env) lookup(name string) (lim.BusID, bool) {
	for s := e; s != nil; s = s.parent {
		if b, ok := s.names[name]; ok {
			return b, true
		}
	}

	return 0, false
}

func (e *env) bind(name string, b lim.BusID) {
	if _, ok := e.names[name]; !ok {
		e.order = append(e.order, name)
	}

	e.names[name] = b
}

// rebound returns the names bound in `e` which are also visible from its
// parent: the names an arm or body assigns on behalf of the enclosing scope.
func (e *env) rebound() []string {
	var names []string
	for _, name := range e.order {
		if _, ok := e.parent.lookup(name); ok {
			names = append(names, name)
		}
	}

	return names
}

// -----------------------------------------------------------------------------

// elaborator turns decoded statements into graph components.
type elaborator struct {
	b         *lim.Builder
	resources map[string]lim.ResourceID

	// anon counts unnamed statements for generated component names.
	anon int
}

func (e *elaborator) addResource(tr *tomlResource) error {
	if tr.Name == "" {
		return errors.New("resource has no name")
	}

	if _, ok := e.resources[tr.Name]; ok {
		return errors.New("resource declared twice")
	}

	kind, ok := lim.ParseResourceKind(tr.Kind)
	if !ok {
		return errors.Errorf("unknown resource kind `%s`", tr.Kind)
	}

	if tr.Width <= 0 {
		return errors.New("resource must have a positive width")
	}

	var id lim.ResourceID
	switch kind {
	case lim.ResRegister:
		id = e.b.Register(tr.Name, tr.Width, tr.Signed)
	case lim.ResMemory:
		if tr.Depth <= 0 {
			return errors.New("memory must have a positive depth")
		}

		id = e.b.Memory(tr.Name, tr.Width, tr.Depth, tr.Ports, tr.ReadLatency, tr.WriteLatency)
	case lim.ResPin:
		id = e.b.Pin(tr.Name, tr.Width)
	default:
		id = e.b.Stream(tr.Name, kind, tr.Width, tr.Signed)
	}

	e.resources[tr.Name] = id
	return nil
}

func (e *elaborator) addTask(tt *tomlTask) error {
	if tt.Name == "" {
		return errors.New("task has no name")
	}

	_, body := e.b.Task(tt.Name)
	scope := newEnv(nil)
	for _, in := range tt.Inputs {
		if in.Width <= 0 {
			return errors.Errorf("input %s must have a positive width", in.Name)
		}

		scope.bind(in.Name, e.b.Input(body, in.Name, in.Width, in.Signed))
	}

	return e.stmts(body, scope, tt.Stmts)
}

func (e *elaborator) stmts(blk lim.ComponentID, scope *env, stmts []*tomlStmt) error {
	for i, s := range stmts {
		if err := e.stmt(blk, scope, s); err != nil {
			return errors.Wrapf(err, "statement %d (%s)", i+1, s.Op)
		}
	}

	return nil
}

// componentName returns the name to give the component of `s`.
func (e *elaborator) componentName(s *tomlStmt) string {
	if s.Name != "" {
		return s.Name
	}

	e.anon++
	return fmt.Sprintf("%s%d", s.Op, e.anon)
}

func (e *elaborator) operands(scope *env, names []string) ([]lim.BusID, error) {
	buses := make([]lim.BusID, len(names))
	for i, name := range names {
		b, ok := scope.lookup(name)
		if !ok {
			return nil, errors.Errorf("undefined name `%s`", name)
		}

		buses[i] = b
	}

	return buses, nil
}

func (e *elaborator) stmt(blk lim.ComponentID, scope *env, s *tomlStmt) error {
	if op, ok := lim.ParseOpKind(s.Op); ok {
		return e.op(blk, scope, s, op)
	}

	switch s.Op {
	case "const":
		return e.constant(blk, scope, s)
	case "mux":
		if s.Name == "" {
			return errors.New("mux result has no name")
		}

		if len(s.Args) < 3 {
			return errors.New("mux needs a select and at least two data inputs")
		}

		args, err := e.operands(scope, s.Args)
		if err != nil {
			return err
		}

		scope.bind(s.Name, e.b.Mux(blk, e.componentName(s), args[0], args[1:]...))
	case "read", "write", "status", "peek":
		return e.access(blk, scope, s)
	case "output":
		if len(s.Args) != 1 {
			return errors.New("output takes exactly one operand")
		}

		args, err := e.operands(scope, s.Args)
		if err != nil {
			return err
		}

		e.b.Output(blk, e.componentName(s), args[0])
	case "if":
		return e.branch(blk, scope, s)
	case "switch":
		return e.switchStmt(blk, scope, s)
	case "loop":
		return e.loop(blk, scope, s)
	case "break":
		e.b.Break(blk, e.componentName(s))
	case "return":
		e.b.Return(blk, e.componentName(s))
	default:
		return errors.Errorf("unknown statement kind `%s`", s.Op)
	}

	return nil
}

func (e *elaborator) constant(blk lim.ComponentID, scope *env, s *tomlStmt) error {
	if s.Name == "" {
		return errors.New("constant has no name")
	}

	signed := s.Signed != nil && *s.Signed
	switch {
	case s.Bits != "":
		v, err := value.Parse(s.Bits, signed)
		if err != nil {
			return err
		}

		scope.bind(s.Name, e.b.ConstValue(blk, s.Name, v))
	case s.Value != nil:
		if s.Width <= 0 {
			return errors.New("constant must have a positive width")
		}

		scope.bind(s.Name, e.b.Const(blk, s.Name, *s.Value, s.Width, signed))
	default:
		return errors.New("constant needs either a value or bits")
	}

	return nil
}

func (e *elaborator) op(blk lim.ComponentID, scope *env, s *tomlStmt, op lim.OpKind) error {
	if s.Name == "" {
		return errors.New("operator result has no name")
	}

	if len(s.Args) != op.Arity() {
		return errors.Errorf("%s takes %d operands, got %d", op, op.Arity(), len(s.Args))
	}

	args, err := e.operands(scope, s.Args)
	if err != nil {
		return err
	}

	first := e.b.Graph().Bus(args[0])
	width, signed := first.Width(), first.Signed()
	if s.Width > 0 {
		width = s.Width
	}

	if s.Signed != nil {
		signed = *s.Signed
	}

	scope.bind(s.Name, e.b.Op(blk, op, s.Name, width, signed, args...))
	return nil
}

var accessKinds = map[string]lim.AccessKind{
	"read":   lim.AccRead,
	"write":  lim.AccWrite,
	"status": lim.AccStatus,
	"peek":   lim.AccPeek,
}

func (e *elaborator) access(blk lim.ComponentID, scope *env, s *tomlStmt) error {
	res, ok := e.resources[s.Resource]
	if !ok {
		return errors.Errorf("undefined resource `%s`", s.Resource)
	}

	args, err := e.operands(scope, s.Args)
	if err != nil {
		return err
	}

	kind := accessKinds[s.Op]
	r := e.b.Graph().Resource(res)
	if r.Kind == lim.ResMemory && (s.Port < 0 || s.Port >= r.Ports) {
		return errors.Errorf("memory %s has no port %d", r.Name, s.Port)
	}

	_, result := e.b.AccessOnPort(blk, e.componentName(s), res, kind, s.Port, args...)
	if result != 0 {
		if s.Name == "" {
			return errors.Errorf("%s result has no name", s.Op)
		}

		scope.bind(s.Name, result)
	}

	return nil
}

// -----------------------------------------------------------------------------

// branch elaborates an if statement.  Names of the enclosing scope assigned
// in either arm are merged after the branch by a mux on the condition.
func (e *elaborator) branch(blk lim.ComponentID, scope *env, s *tomlStmt) error {
	cond, ok := scope.lookup(s.Cond)
	if !ok {
		return errors.Errorf("undefined condition `%s`", s.Cond)
	}

	name := e.componentName(s)
	_, then, els := e.b.Branch(blk, name, cond)

	thenScope, elseScope := newEnv(scope), newEnv(scope)
	if err := e.stmts(then, thenScope, s.Then); err != nil {
		return errors.Wrap(err, "then arm")
	}

	if err := e.stmts(els, elseScope, s.Else); err != nil {
		return errors.Wrap(err, "else arm")
	}

	for _, v := range mergedNames(thenScope, elseScope) {
		t, _ := thenScope.lookup(v)
		f, _ := elseScope.lookup(v)
		if t != f {
			scope.bind(v, e.b.Mux(blk, name+"_"+v, cond, f, t))
		}
	}

	return nil
}

// switchStmt elaborates a switch statement.  Merged names are selected by a
// chain of two way muxes testing each case in turn.
func (e *elaborator) switchStmt(blk lim.ComponentID, scope *env, s *tomlStmt) error {
	sel, ok := scope.lookup(s.Cond)
	if !ok {
		return errors.Errorf("undefined selector `%s`", s.Cond)
	}

	var (
		cases       []int64
		withDefault bool
	)

	for i, arm := range s.Arms {
		if arm.Case == nil {
			if i != len(s.Arms)-1 {
				return errors.New("the default arm must come last")
			}

			withDefault = true
		} else {
			cases = append(cases, *arm.Case)
		}
	}

	name := e.componentName(s)
	_, arms := e.b.Switch(blk, name, sel, cases, withDefault)

	scopes := make([]*env, len(arms))
	for i, arm := range s.Arms {
		scopes[i] = newEnv(scope)
		if err := e.stmts(arms[i], scopes[i], arm.Body); err != nil {
			return errors.Wrapf(err, "arm %d", i+1)
		}
	}

	merged := mergedNames(scopes...)
	if len(merged) == 0 {
		return nil
	}

	selBus := e.b.Graph().Bus(sel)
	hits := make([]lim.BusID, len(cases))
	for i, k := range cases {
		kb := e.b.Const(blk, fmt.Sprintf("%s_case%d", name, i), k, selBus.Width(), selBus.Signed())
		hits[i] = e.b.Op(blk, lim.OpEq, fmt.Sprintf("%s_hit%d", name, i), 1, false, sel, kb)
	}

	for _, v := range merged {
		acc, _ := scope.lookup(v)
		if withDefault {
			acc, _ = scopes[len(scopes)-1].lookup(v)
		}

		for i := len(cases) - 1; i >= 0; i-- {
			arm, _ := scopes[i].lookup(v)
			if arm != acc {
				acc = e.b.Mux(blk, fmt.Sprintf("%s_%s%d", name, v, i), hits[i], acc, arm)
			}
		}

		scope.bind(v, acc)
	}

	return nil
}

// mergedNames returns the enclosing scope names assigned by any of `scopes`.
func mergedNames(scopes ...*env) []string {
	var names []string
	seen := make(map[string]bool)
	for _, s := range scopes {
		for _, name := range s.rebound() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	return names
}

// loop elaborates a loop statement.  The carried variables are visible in the
// body under their own names and hold their final values after the loop.
func (e *elaborator) loop(blk lim.ComponentID, scope *env, s *tomlStmt) error {
	decisionFirst := true
	switch s.Decision {
	case "", "first":
	case "last":
		decisionFirst = false
	default:
		return errors.Errorf("unknown loop decision `%s`", s.Decision)
	}

	inits := make([]lim.BusID, len(s.Carried))
	for j, v := range s.Carried {
		init, ok := scope.lookup(v.Init)
		if !ok {
			return errors.Errorf("undefined initial value `%s` of %s", v.Init, v.Name)
		}

		inits[j] = init
	}

	lb := e.b.Loop(blk, e.componentName(s), decisionFirst, inits...)

	// the carried variables live in their own scope so that reassignments in
	// the body can be told apart from the values entering the iteration
	carried := newEnv(scope)
	for j, v := range s.Carried {
		carried.bind(v.Name, lb.Carried[j])
	}

	body := newEnv(carried)
	if err := e.stmts(lb.Body, body, s.Body); err != nil {
		return errors.Wrap(err, "loop body")
	}

	cond, ok := body.lookup(s.Cond)
	if !ok {
		return errors.Errorf("undefined loop condition `%s`", s.Cond)
	}

	nexts := make([]lim.BusID, len(s.Carried))
	for j, v := range s.Carried {
		nexts[j], _ = body.lookup(v.Name)
	}

	for j, res := range lb.Finish(cond, nexts...) {
		scope.bind(s.Carried[j].Name, res)
	}

	return nil
}
