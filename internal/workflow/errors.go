// Package workflow implements the DAG data model: task descriptors, nodes,
// and the workflow graph itself (add, validate, sinks, ancestor closure,
// stable topological order).
package workflow

import "fmt"

// Error is a workflow build/validation error, carrying one of the Code*
// constants below plus an optional wrapped cause.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Error codes from the workflow build/validate taxonomy.
const (
	CodeDuplicateNode       = "DUPLICATE_NODE"
	CodeDuplicateDependency = "DUPLICATE_DEPENDENCY"
	CodeMissingDependency   = "MISSING_DEPENDENCY"
	CodeSelfDependency      = "SELF_DEPENDENCY"
	CodeCycle               = "CYCLE"
	CodeEmptyWorkflow       = "EMPTY_WORKFLOW"
	CodeUnknownNode         = "UNKNOWN_NODE"
)
