// Package taskgraph compiles declared DAGs of tasks into linear,
// context-threaded execution plans and runs them through a pluggable
// task-worker substrate. Build a Workflow, add nodes bound to registered
// tasks, then Compile it (optionally targeting one node) to get a Plan a
// Substrate can run.
package taskgraph

import (
	"context"

	"github.com/smilemakc/taskgraph/internal/compiler"
	"github.com/smilemakc/taskgraph/internal/substrate"
	"github.com/smilemakc/taskgraph/internal/substrate/inproc"
	"github.com/smilemakc/taskgraph/internal/workflow"
)

// TaskDescriptor is the immutable binding of a registered task name to the
// arguments a node supplies at declaration time.
type TaskDescriptor = workflow.TaskDescriptor

// NewTask builds a TaskDescriptor for the task registered under name.
func NewTask(name string, args []any, kwargs map[string]any) TaskDescriptor {
	return workflow.NewTaskDescriptor(name, args, kwargs)
}

// Workflow is a mutable collection of nodes: add/validate/sink queries,
// ancestor closure, and stable topological ordering.
type Workflow = workflow.Workflow

// NewWorkflow creates an empty, named Workflow.
func NewWorkflow(name string) *Workflow {
	return workflow.New(name)
}

// Plan is the ordered, substrate-ready sequence of steps Compile produces.
type Plan = compiler.Plan

// Compile translates w into a Plan. If targetNodeID is non-nil, the plan
// executes only that node's ancestor closure and projects its single
// result; otherwise it executes every node and projects all sinks.
func Compile(w *Workflow, targetNodeID *string) (Plan, error) {
	return compiler.Compile(w, targetNodeID)
}

// TaskHandler is the shape every registered task is invoked through.
type TaskHandler = substrate.TaskHandler

// Registry is a concurrency-safe task name -> handler lookup table.
type Registry = substrate.Registry

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return substrate.NewRegistry()
}

// Adapter is the substrate boundary: register tasks, build signatures for
// invocations, and sequence them into a runnable pipeline.
type Adapter = substrate.Adapter

// NewInProcessAdapter builds a reference Adapter that runs every step
// synchronously in the calling goroutine against reg, with no broker and
// no serialization boundary. Useful for tests and single-process use.
func NewInProcessAdapter(reg *Registry) Adapter {
	return inproc.New(reg)
}

// Run compiles w (optionally targeting one node) and executes the
// resulting plan against adapter, returning the projected result: the
// target node's value, the sink mapping, or the bare sink value for a
// single-sink workflow.
func Run(ctx context.Context, adapter Adapter, w *Workflow, targetNodeID *string) (any, error) {
	plan, err := Compile(w, targetNodeID)
	if err != nil {
		return nil, err
	}
	return substrate.BuildPipeline(adapter, plan).Run(ctx)
}
