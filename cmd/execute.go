// Package cmd implements the `xronos` command line tool.
package cmd

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/ComedicChimera/olive"
	"github.com/kr/pretty"
	"github.com/pkg/errors"

	"github.com/orcc/xronos-sub018/build"
	"github.com/orcc/xronos-sub018/common"
	"github.com/orcc/xronos-sub018/config"
	"github.com/orcc/xronos-sub018/design"
	"github.com/orcc/xronos-sub018/report"
	"github.com/orcc/xronos-sub018/session"
)

// Execute runs the main `xronos` application and returns its exit code.
func Execute() int {
	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("xronos", "xronos schedules hardware designs", true)
	cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, []string{"silent", "error", "warn", "verbose"})

	schedCmd := cli.AddSubcommand("schedule", "optimize and schedule a design", true)
	schedCmd.AddPrimaryArg("design-path", "the path to the design description", true)
	schedCmd.AddStringArg("config", "c", "the path to the options file", false)
	schedCmd.AddStringArg("unroll-limit", "ul", "the maximum number of iterations of an unrolled loop", false)
	schedCmd.AddFlag("no-unroll", "nu", "disable loop unrolling")
	schedCmd.AddFlag("no-constprop", "ncp", "disable constant propagation")
	schedCmd.AddFlag("dump", "d", "dump the raw schedule instead of the tables")

	checkCmd := cli.AddSubcommand("check", "load and verify a design without scheduling it", true)
	checkCmd.AddPrimaryArg("design-path", "the path to the design description", true)
	checkCmd.AddStringArg("config", "c", "the path to the options file", false)

	cli.AddSubcommand("version", "print the xronos version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.PrintErrorMessage("CLI Usage Error", err)
		return 1
	}

	loglevel, _ := result.Arguments["loglevel"].(string)

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "schedule":
		return execScheduleCommand(subResult, loglevel)
	case "check":
		return execCheckCommand(subResult, loglevel)
	case "version":
		report.PrintInfoMessage("Xronos Version", common.XronosVersion)
	}

	return 0
}

// execScheduleCommand executes the schedule subcommand and handles all errors.
func execScheduleCommand(result *olive.ArgParseResult, loglevel string) int {
	d, ctx, ok := loadDesign(result, loglevel)
	if !ok {
		return 1
	}

	rep := ctx.Reporter
	rep.ReportCompileHeader(common.XronosVersion, d.Name)

	res, err := build.Compile(d.Graph, ctx)
	if err != nil {
		rep.ReportError("Internal", err)
	}

	rep.ReportCompilationFinished()
	if err != nil {
		return 1
	}

	if result.HasFlag("dump") {
		pretty.Println(res)
	} else {
		printSchedule(d, res)
	}

	return 0
}

// execCheckCommand executes the check subcommand: the design is loaded and
// its graph verified.
func execCheckCommand(result *olive.ArgParseResult, loglevel string) int {
	d, ctx, ok := loadDesign(result, loglevel)
	if !ok {
		return 1
	}

	if err := verify(d); err != nil {
		ctx.Reporter.ReportError("Internal", err)
		return 1
	}

	report.PrintInfoMessage("Design OK", d.Name)
	return 0
}

func verify(d *design.Design) (err error) {
	defer report.CatchErrors(&err)

	d.Graph.Verify()
	return nil
}

// -----------------------------------------------------------------------------

// loadDesign loads the design named by the primary argument along with the
// options in effect for it and creates the compilation context.
func loadDesign(result *olive.ArgParseResult, loglevel string) (*design.Design, *session.Context, bool) {
	relPath, _ := result.PrimaryArg()
	path, err := filepath.Abs(relPath)
	if err != nil {
		report.PrintErrorMessage("Path Error", err)
		return nil, nil, false
	}

	if filepath.Ext(path) != common.DesignFileExtension {
		report.PrintErrorMessage("Path Error", errors.Errorf("design descriptions must end in `%s`", common.DesignFileExtension))
		return nil, nil, false
	}

	d, err := design.Load(path)
	if err != nil {
		report.PrintErrorMessage("Design Load Error", err)
		return nil, nil, false
	}

	opts, err := loadOptions(result, d, filepath.Dir(path))
	if err != nil {
		report.PrintErrorMessage("Config Error", err)
		return nil, nil, false
	}

	if loglevel != "" {
		opts.LogLevel = loglevel
	}

	return d, session.New(opts, nil), true
}

// loadOptions determines the options of a compilation.  The `[options]` table
// of the design takes precedence over the options file which is either given
// explicitly or found next to the design.  Command line flags override both.
func loadOptions(result *olive.ArgParseResult, d *design.Design, designDir string) (*config.Options, error) {
	opts := d.Options
	if opts == nil {
		var err error
		if opts, err = loadOptionsFile(result, designDir); err != nil {
			return nil, err
		}
	}

	if result.HasFlag("no-unroll") {
		opts.LoopUnrollEnabled = false
	}

	if result.HasFlag("no-constprop") {
		opts.ConstantPropagation = false
	}

	if arg, ok := result.Arguments["unroll-limit"]; ok {
		limit, err := strconv.Atoi(arg.(string))
		if err != nil || limit < 0 {
			return nil, errors.Errorf("invalid unroll limit `%s`", arg)
		}

		opts.LoopUnrollLimit = limit
	}

	return opts, nil
}

func loadOptionsFile(result *olive.ArgParseResult, designDir string) (*config.Options, error) {
	if arg, ok := result.Arguments["config"]; ok {
		return config.Load(arg.(string))
	}

	path := filepath.Join(designDir, common.ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}

	return config.Default(), nil
}
