// Package referee arbitrates shared resources between their accesses: it
// defines the minimum spacing between two accesses of a resource, synthesizes
// arbiters for resources accessed from several places and bounds how often a
// task may be restarted given the resources it shares.
package referee

import (
	"github.com/orcc/xronos-sub018/lim"
	"github.com/orcc/xronos-sub018/report"
)

// Spacing returns the minimum number of cycles between the Done of access
// `from` and the Go of a later access `to` of the same resource.  The table is
// closed: an access pair no resource kind defines raises an ICE.
func Spacing(res *lim.Resource, from, to *lim.Component) int {
	f, t := from.Access.Kind, to.Access.Kind

	switch res.Kind {
	case lim.ResRegister:
		if isData(f) && isData(t) {
			return writeSpacing(f)
		}
	case lim.ResMemory:
		switch {
		case f == lim.AccPeek || t == lim.AccPeek:
		case f == lim.AccStatus || t == lim.AccStatus:
			return 0
		case from.Access.MemPort == to.Access.MemPort:
			return 1
		default:
			return writeSpacing(f)
		}
	case lim.ResPin:
		if f != lim.AccPeek && t != lim.AccPeek {
			return writeSpacing(f)
		}
	case lim.ResInputStream:
		switch {
		case f == lim.AccWrite || t == lim.AccWrite:
		case f == lim.AccRead && t == lim.AccRead:
			return 1
		default:
			return 0
		}
	case lim.ResOutputStream:
		switch {
		case f == lim.AccRead || t == lim.AccRead || f == lim.AccPeek || t == lim.AccPeek:
		case f == lim.AccWrite && t == lim.AccWrite:
			return 1
		default:
			return 0
		}
	}

	report.ICE("no spacing defined from %s to %s of %s", f, t, res)
	return 0
}

func isData(k lim.AccessKind) bool {
	return k == lim.AccRead || k == lim.AccWrite
}

// writeSpacing is the spacing of a resource whose writes take effect one cycle
// after their Done.
func writeSpacing(from lim.AccessKind) int {
	if from == lim.AccWrite {
		return 1
	}

	return 0
}
