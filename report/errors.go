package report

import "fmt"

// InternalError is an internal compiler error: an error that results from a
// malformed graph or a broken invariant inside the compiler.  These errors are
// never recoverable.  They are raised with `panic` and caught by CatchErrors
// at the boundary of the pass driver.
type InternalError struct {
	// The name of the offending graph node (may be empty).
	Node string

	// The error message.
	Message string
}

func (ie *InternalError) Error() string {
	if ie.Node == "" {
		return "internal error: " + ie.Message
	}

	return fmt.Sprintf("internal error at %s: %s", ie.Node, ie.Message)
}

// ICE raises an internal compiler error.
func ICE(msg string, args ...interface{}) {
	panic(&InternalError{Message: fmt.Sprintf(msg, args...)})
}

// ICEAt raises an internal compiler error identifying the offending node.
func ICEAt(node string, msg string, args ...interface{}) {
	panic(&InternalError{Node: node, Message: fmt.Sprintf(msg, args...)})
}

// CatchErrors catches any errors thrown by a `panic` during a stage of
// compilation and stores them in `err`.  In effect, this handler determines
// where "unrecoverable" errors stop bubbling.
// NB: This function must ALWAYS be deferred.
func CatchErrors(err *error) {
	if x := recover(); x != nil {
		if ierr, ok := x.(*InternalError); ok {
			*err = ierr
		} else if serr, ok := x.(error); ok {
			*err = &InternalError{Message: serr.Error()}
		} else {
			*err = &InternalError{Message: fmt.Sprint(x)}
		}
	}
}
