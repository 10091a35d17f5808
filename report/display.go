package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = pterm.FgLightCyan
	InfoStyleBG    = pterm.NewStyle(pterm.BgLightCyan, pterm.FgBlack)
)

// PrintErrorMessage prints a standard Go error to the console.  It is used
// outside of compilation (CLI usage, file loading) where no reporter exists
// yet.
func PrintErrorMessage(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// PrintInfoMessage prints an informational message to the user.
func PrintInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// -----------------------------------------------------------------------------

func displayError(kind, msg string) {
	ErrorStyleBG.Print(kind + " Error")
	ErrorColorFG.Println(" " + msg)
}

func displayWarning(kind, msg string) {
	WarnStyleBG.Print(kind + " Warning")
	WarnColorFG.Println(" " + msg)
}

func displayInfo(kind, msg string) {
	InfoStyleBG.Print(kind)
	fmt.Println(" " + msg)
}

// displayCompileHeader displays the compiler information before starting
// compilation.
func displayCompileHeader(version, design string) {
	fmt.Print("xronos ")
	SuccessColorFG.Print("v" + version)
	fmt.Print(" -- design: ")
	SuccessColorFG.Println(design)
}

// -----------------------------------------------------------------------------

const maxPhaseLength = len("Arbitrating")

// phaseDisplay stores the spinner of a running compilation phase.
type phaseDisplay struct {
	name      string
	spinner   *pterm.SpinnerPrinter
	startTime time.Time

	// The index of the first diagnostic reported during this phase.
	firstDiagnostic int
}

// beginPhase displays the beginning of a compilation phase.
func beginPhase(phase string, firstDiagnostic int) *phaseDisplay {
	pd := &phaseDisplay{name: phase, firstDiagnostic: firstDiagnostic}

	phaseText := phase + "..." + strings.Repeat(" ", padding(phase))
	pd.spinner = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(SuccessColorFG))

	pd.spinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: SuccessStyleBG,
			Text:  "Done",
		},
	}

	pd.spinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: ErrorStyleBG,
			Text:  "Fail",
		},
	}

	pd.spinner, _ = pd.spinner.Start(phaseText)
	pd.startTime = time.Now()
	return pd
}

// end displays the end of a compilation phase.
func (pd *phaseDisplay) end(success bool) {
	if success {
		pd.spinner.Success(
			pd.name+strings.Repeat(" ", padding(pd.name)),
			fmt.Sprintf("(%.3fs)", time.Since(pd.startTime).Seconds()),
		)
	} else {
		pd.spinner.Fail(pd.name + strings.Repeat(" ", padding(pd.name)))
	}
}

func padding(phase string) int {
	if len(phase) > maxPhaseLength {
		return 2
	}

	return maxPhaseLength - len(phase) + 2
}

// displayCompilationFinished displays a compilation finished message.
func displayCompilationFinished(success bool, errorCount, warningCount int, elapsed time.Duration) {
	fmt.Print("\n")

	if success {
		SuccessColorFG.Print("All done! ")
	} else {
		ErrorColorFG.Print("Oh no! ")
	}

	fmt.Print("(")

	switch errorCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Print(" errors, ")
	case 1:
		ErrorColorFG.Print(1)
		fmt.Print(" error, ")
	default:
		ErrorColorFG.Print(errorCount)
		fmt.Print(" errors, ")
	}

	switch warningCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Print(" warnings")
	case 1:
		WarnColorFG.Print(1)
		fmt.Print(" warning")
	default:
		WarnColorFG.Print(warningCount)
		fmt.Print(" warnings")
	}

	fmt.Printf(", %.3fs)\n", elapsed.Seconds())
}
