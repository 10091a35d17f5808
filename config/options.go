package config

// Options is the set of options consumed by the scheduling core.  Every
// optimization can be switched off on its own: disabling one can only make
// the resulting schedule larger or slower, never wrong.
type Options struct {
	// LoopUnrollEnabled gates loop unrolling.
	LoopUnrollEnabled bool

	// LoopUnrollLimit is the exclusive upper bound on the iteration count of
	// a loop that may be unrolled.
	LoopUnrollLimit int

	// ConservativeUnknownLoops forces non-pipelined scheduling of loops
	// whose iteration count is unknown.
	ConservativeUnknownLoops bool

	// ConstantPropagation enables the bit-level value propagation passes.
	ConstantPropagation bool

	// PassThroughRemoval enables removal of pass-through components.
	PassThroughRemoval bool

	// MaxEmulatedIterations bounds the decision circuit emulation used to
	// count loop iterations.
	MaxEmulatedIterations int

	// MaxOptimizationPasses bounds the optimization fixed point.  Reaching the
	// bound is not an error: the graph is merely left less optimized.
	MaxOptimizationPasses int

	// LogLevel is the name of the reporter log level.
	LogLevel string
}

// Enumeration of option defaults.
const (
	DefaultLoopUnrollLimit       = 64
	DefaultMaxEmulatedIterations = 0xffff
	DefaultMaxOptimizationPasses = 32
	DefaultLogLevel              = "verbose"
)

// Default returns the default options.
func Default() *Options {
	return &Options{
		LoopUnrollEnabled:        true,
		LoopUnrollLimit:          DefaultLoopUnrollLimit,
		ConservativeUnknownLoops: true,
		ConstantPropagation:      true,
		PassThroughRemoval:       true,
		MaxEmulatedIterations:    DefaultMaxEmulatedIterations,
		MaxOptimizationPasses:    DefaultMaxOptimizationPasses,
		LogLevel:                 DefaultLogLevel,
	}
}
