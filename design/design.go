// Package design loads textual design descriptions: the resources and tasks
// of a design written in TOML, elaborated into a graph.
package design

import (
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/orcc/xronos-sub018/config"
	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/report"
)

// tomlDesign represents a design description as it is encoded in TOML.
type tomlDesign struct {
	Name      string          `toml:"name"`
	Resources []*tomlResource `toml:"resources"`
	Tasks     []*tomlTask     `toml:"tasks"`
}

// tomlResource represents a shared resource as it is encoded in TOML.
type tomlResource struct {
	Name         string `toml:"name"`
	Kind         string `toml:"kind"`
	Width        int    `toml:"width"`
	Signed       bool   `toml:"signed"`
	Depth        int    `toml:"depth"`
	Ports        int    `toml:"ports"`
	ReadLatency  int    `toml:"read_latency"`
	WriteLatency int    `toml:"write_latency"`
}

// tomlTask represents a task as it is encoded in TOML.
type tomlTask struct {
	Name   string       `toml:"name"`
	Inputs []*tomlInput `toml:"inputs"`
	Stmts  []*tomlStmt  `toml:"stmts"`
}

// tomlInput represents a task input as it is encoded in TOML.
type tomlInput struct {
	Name   string `toml:"name"`
	Width  int    `toml:"width"`
	Signed bool   `toml:"signed"`
}

// tomlStmt represents one statement as it is encoded in TOML.  Which fields
// are meaningful depends on the statement kind given by `op`.
type tomlStmt struct {
	Op   string   `toml:"op"`
	Name string   `toml:"name"`
	Args []string `toml:"args"`

	// constants: either an integer value or a bit string such as "10xc"
	Value  *int64 `toml:"value"`
	Bits   string `toml:"bits"`
	Width  int    `toml:"width"`
	Signed *bool  `toml:"signed"`

	// accesses
	Resource string `toml:"resource"`
	Port     int    `toml:"port"`

	// loops
	Decision string         `toml:"decision"`
	Cond     string         `toml:"cond"`
	Carried  []*tomlCarried `toml:"carried"`
	Body     []*tomlStmt    `toml:"body"`

	// branches and switches
	Then []*tomlStmt `toml:"then"`
	Else []*tomlStmt `toml:"else"`
	Arms []*tomlArm  `toml:"arms"`
}

// tomlCarried represents a loop variable as it is encoded in TOML.
type tomlCarried struct {
	Name string `toml:"name"`
	Init string `toml:"init"`
}

// tomlArm represents a switch arm as it is encoded in TOML.  An arm without a
// case value is the default arm.
type tomlArm struct {
	Case *int64      `toml:"case"`
	Body []*tomlStmt `toml:"body"`
}

// -----------------------------------------------------------------------------

// Design is a loaded design.
type Design struct {
	Name  string
	Graph *lim.Graph

	// Options are the options set by the `[options]` table of the design or
	// nil if it has none.
	Options *config.Options
}

// Load loads the design description at `path`.
func Load(path string) (*Design, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading design file")
	}

	d, err := Parse(buff)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}

	return d, nil
}

// Parse parses and elaborates a design description.
func Parse(buff []byte) (*Design, error) {
	tree, err := toml.LoadBytes(buff)
	if err != nil {
		return nil, errors.Wrap(err, "parsing design")
	}

	td := &tomlDesign{}
	if err := tree.Unmarshal(td); err != nil {
		return nil, errors.Wrap(err, "decoding design")
	}

	if td.Name == "" {
		return nil, errors.New("design has no name")
	}

	d := &Design{Name: td.Name}
	if sub, ok := tree.Get("options").(*toml.Tree); ok {
		if d.Options, err = config.FromTree(sub); err != nil {
			return nil, errors.Wrap(err, "design options")
		}
	}

	if d.Graph, err = elaborate(td); err != nil {
		return nil, err
	}

	return d, nil
}

// elaborate builds the graph of a decoded design.  Builder ICEs are the result
// of malformed descriptions that the checks below missed and are returned as
// errors as well.
func elaborate(td *tomlDesign) (g *lim.Graph, err error) {
	defer report.CatchErrors(&err)

	e := &elaborator{b: lim.NewBuilder(td.Name), resources: make(map[string]lim.ResourceID)}
	for _, tr := range td.Resources {
		if err := e.addResource(tr); err != nil {
			return nil, errors.Wrapf(err, "resource %s", tr.Name)
		}
	}

	if len(td.Tasks) == 0 {
		return nil, errors.New("design has no tasks")
	}

	for _, tt := range td.Tasks {
		if err := e.addTask(tt); err != nil {
			return nil, errors.Wrapf(err, "task %s", tt.Name)
		}
	}

	return e.b.Graph(), nil
}
