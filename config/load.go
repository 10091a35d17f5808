package config

import (
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// tomlOptions represents the options as they are encoded in TOML.  Every field
// is optional: absent fields keep their default value.
type tomlOptions struct {
	LoopUnrollEnabled        *bool   `toml:"loop_unroll_enabled"`
	LoopUnrollLimit          *int    `toml:"loop_unroll_limit"`
	ConservativeUnknownLoops *bool   `toml:"conservative_unknown_loops"`
	ConstantPropagation      *bool   `toml:"constant_propagation"`
	PassThroughRemoval       *bool   `toml:"pass_through_removal"`
	MaxEmulatedIterations    *int    `toml:"max_emulated_iterations"`
	MaxOptimizationPasses    *int    `toml:"max_optimization_passes"`
	LogLevel                 *string `toml:"log_level"`
}

// Load loads and validates the options file at `path`.
func Load(path string) (*Options, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading options file")
	}

	opts, err := Parse(buff)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}

	return opts, nil
}

// Parse parses and validates an options document.
func Parse(buff []byte) (*Options, error) {
	tree, err := toml.LoadBytes(buff)
	if err != nil {
		return nil, errors.Wrap(err, "parsing options")
	}

	return FromTree(tree)
}

// FromTree validates and converts an already parsed TOML table of options.  A
// nil tree yields the defaults.
func FromTree(tree *toml.Tree) (*Options, error) {
	opts := Default()
	if tree == nil {
		return opts, nil
	}

	if err := Validate(tree.ToMap()); err != nil {
		return nil, err
	}

	to := &tomlOptions{}
	if err := tree.Unmarshal(to); err != nil {
		return nil, errors.Wrap(err, "decoding options")
	}

	opts.merge(to)
	return opts, nil
}

// merge moves all the set TOML option fields over to the options.
func (o *Options) merge(to *tomlOptions) {
	if to.LoopUnrollEnabled != nil {
		o.LoopUnrollEnabled = *to.LoopUnrollEnabled
	}

	if to.LoopUnrollLimit != nil {
		o.LoopUnrollLimit = *to.LoopUnrollLimit
	}

	if to.ConservativeUnknownLoops != nil {
		o.ConservativeUnknownLoops = *to.ConservativeUnknownLoops
	}

	if to.ConstantPropagation != nil {
		o.ConstantPropagation = *to.ConstantPropagation
	}

	if to.PassThroughRemoval != nil {
		o.PassThroughRemoval = *to.PassThroughRemoval
	}

	if to.MaxEmulatedIterations != nil {
		o.MaxEmulatedIterations = *to.MaxEmulatedIterations
	}

	if to.MaxOptimizationPasses != nil {
		o.MaxOptimizationPasses = *to.MaxOptimizationPasses
	}

	if to.LogLevel != nil {
		o.LogLevel = *to.LogLevel
	}
}
