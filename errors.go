package taskgraph

import (
	"errors"
	"fmt"

	"github.com/smilemakc/taskgraph/internal/compiler"
	"github.com/smilemakc/taskgraph/internal/steps"
	"github.com/smilemakc/taskgraph/internal/workflow"
)

// Error codes raised while building or compiling a Workflow. These
// surface synchronously from Add/Compile, never through the substrate's
// failure channel.
const (
	CodeDuplicateNode       = workflow.CodeDuplicateNode
	CodeDuplicateDependency = workflow.CodeDuplicateDependency
	CodeMissingDependency   = workflow.CodeMissingDependency
	CodeSelfDependency      = workflow.CodeSelfDependency
	CodeCycle               = workflow.CodeCycle
	CodeUnknownNode         = workflow.CodeUnknownNode
	CodeEmptyWorkflow       = compiler.CodeEmptyWorkflow
)

// Error codes raised while executing a compiled plan. These propagate
// through the substrate's normal failure channel and fail the pipeline.
const (
	CodeUnknownTask             = steps.CodeUnknownTask
	CodeMissingDependencyResult = steps.CodeMissingDependencyResult
	CodeExecutionUnknownNode    = steps.CodeUnknownNode
)

// Error is the exported shape of this module's error taxonomy: a Code (one
// of the Code* constants above), a human-readable Message, and an optional
// wrapped cause. Add and Compile return errors whose underlying type is one
// of internal/workflow.Error or internal/compiler.Error; Run additionally
// returns internal/steps.Error from step execution, possibly wrapped by the
// adapter. AsError/CodeOf unwrap any of those into this shape without the
// caller needing to import those internal packages directly. Errors returned
// by user tasks themselves, and adapter errors such as an unregistered step
// task, are outside the taxonomy and do not convert.
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

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the taxonomy Code from err, if err (or something it
// wraps) originated from this module's build, compile, or execution error
// taxonomy. It reports false for any other error, including nil.
func CodeOf(err error) (string, bool) {
	if e := AsError(err); e != nil {
		return e.Code, true
	}
	return "", false
}

// AsError converts err into the exported Error shape if it (or something
// it wraps) originated from this module's build, compile, or execution
// error taxonomy, or nil otherwise.
func AsError(err error) *Error {
	var workflowErr *workflow.Error
	if errors.As(err, &workflowErr) {
		return &Error{Code: workflowErr.Code, Message: workflowErr.Message, Err: workflowErr.Err}
	}
	var compilerErr *compiler.Error
	if errors.As(err, &compilerErr) {
		return &Error{Code: compilerErr.Code, Message: compilerErr.Message, Err: compilerErr.Err}
	}
	var stepsErr *steps.Error
	if errors.As(err, &stepsErr) {
		return &Error{Code: stepsErr.Code, Message: stepsErr.Message, Err: stepsErr.Err}
	}
	return nil
}
