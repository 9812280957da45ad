package substrate

import (
	"context"

	"github.com/smilemakc/taskgraph/internal/steps"
)

// TaskHandler is the substrate-facing task shape: an invocation receives
// its context, positional args, and keyword args, and returns a result or
// an error. It is the same shape steps.TaskFunc uses internally.
type TaskHandler = steps.TaskFunc

// StepHandle is an opaque, enqueueable reference to one task invocation,
// produced by Adapter.Signature. Its concrete shape is adapter-specific.
type StepHandle interface {
	// TaskName is the registered name this handle invokes.
	TaskName() string
}

// PipelineHandle is an opaque reference to a linearly sequenced run of
// StepHandles, produced by Adapter.Pipe. Running it forwards each step's
// return value into the next step's first positional argument.
type PipelineHandle interface {
	// Run executes the pipeline to completion and returns the final
	// step's return value.
	Run(ctx context.Context) (any, error)
}

// Adapter is the substrate boundary the core depends on: register a task,
// look one up, build a signature for an invocation, and sequence signatures
// into a pipe. Nothing above this interface knows about brokers, workers,
// serialization, or retries.
type Adapter interface {
	// RegisterTask idempotently registers handler under name. Adapters
	// call this for the four fixed step tasks at construction time, and
	// callers use it to register their own user tasks.
	RegisterTask(name string, handler TaskHandler)

	// LookupTask resolves name to its handler, if registered.
	LookupTask(name string) (TaskHandler, bool)

	// Signature builds a StepHandle for invoking name with args/kwargs.
	// immutable=true means "ignore any upstream pipeline value"; false
	// means "prepend the upstream value as positional arg 0".
	Signature(name string, args []any, kwargs map[string]any, immutable bool) StepHandle

	// Pipe sequences handles into a single linear PipelineHandle.
	Pipe(handles ...StepHandle) PipelineHandle
}
