package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/orcc/xronos-sub018/design"
	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/schedule"
	"github.com/orcc/xronos-sub018/util"
)

// printSchedule displays the schedule of a design as tables.
func printSchedule(d *design.Design, res *schedule.Result) {
	g := d.Graph

	pterm.DefaultSection.Println("Tasks")
	rows := pterm.TableData{{"Task", "Done", "Go Spacing"}}
	for _, ts := range res.Tasks {
		spacing := "indeterminate"
		if ts.SpacingKnown {
			spacing = strconv.Itoa(ts.GoSpacing)
		}

		rows = append(rows, []string{ts.Name, ts.Done.String(), spacing})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	if len(res.Loops) > 0 {
		pterm.DefaultSection.Println("Loops")
		rows = pterm.TableData{{"Loop", "Iterations", "Latency", "Pipelining", "Not Unrolled"}}
		for _, ls := range res.Loops {
			rows = append(rows, []string{ls.Name, iterations(ls.Iterations), ls.Latency.String(), pipelining(ls), ls.Reason})
		}
		pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	}

	if len(res.Arbiters) > 0 {
		pterm.DefaultSection.Println("Arbiters")
		rows = pterm.TableData{{"Resource", "Kind", "Slots"}}
		for _, a := range res.Arbiters {
			slots := util.Map(a.Slots, func(s lim.ArbiterSlot) string {
				return fmt.Sprintf("%s(%d)", g.MustComponent(s.Task).Name, len(s.Accesses))
			})

			rows = append(rows, []string{g.Resource(a.Resource).Name, a.Kind.String(), strings.Join(slots, " > ")})
		}
		pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	}

	if limits := res.Throughput.Limits; len(limits) > 0 {
		pterm.DefaultSection.Println("Throughput")
		rows = pterm.TableData{{"Task", "Resource", "Gap", "Critical Access"}}
		for _, l := range limits {
			critical := "-"
			if id, ok := l.Critical(); ok {
				critical = g.MustComponent(id).Name
			}

			rows = append(rows, []string{g.MustComponent(l.Task).Name, g.Resource(l.Resource).Name, l.String(), critical})
		}
		pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	}
}

func iterations(n int) string {
	if n == lim.IterationsUnknown {
		return "unknown"
	}

	return strconv.Itoa(n)
}

func pipelining(ls schedule.LoopSchedule) string {
	if ls.Pipelined {
		return fmt.Sprintf("II %d", ls.II)
	}

	return "none"
}
