// Package inproc is the reference substrate adapter: it runs every step
// synchronously in the calling goroutine against a local registry, with no
// broker and no serialization boundary. The plan is already linearized by
// the compiler, so this adapter's job shrinks to resolving names and
// forwarding return values from one step to the next.
package inproc

import (
	"context"
	"fmt"

	"github.com/smilemakc/taskgraph/internal/substrate"
)

// Adapter is an in-process substrate.Adapter backed by a substrate.Registry.
type Adapter struct {
	registry *substrate.Registry
}

// New builds an in-process adapter and registers the four step tasks into
// reg (with reg itself as the user-task lookup).
func New(reg *substrate.Registry) *Adapter {
	substrate.RegisterStepTasks(reg, reg)
	return &Adapter{registry: reg}
}

func (a *Adapter) RegisterTask(name string, handler substrate.TaskHandler) {
	a.registry.Register(name, handler)
}

func (a *Adapter) LookupTask(name string) (substrate.TaskHandler, bool) {
	return a.registry.Lookup(name)
}

type stepHandle struct {
	name      string
	args      []any
	kwargs    map[string]any
	immutable bool
}

func (h *stepHandle) TaskName() string { return h.name }

func (a *Adapter) Signature(name string, args []any, kwargs map[string]any, immutable bool) substrate.StepHandle {
	return &stepHandle{name: name, args: args, kwargs: kwargs, immutable: immutable}
}

type pipelineHandle struct {
	adapter *Adapter
	steps   []*stepHandle
}

func (p *pipelineHandle) Run(ctx context.Context) (any, error) {
	var value any
	for i, h := range p.steps {
		task, ok := p.adapter.registry.Lookup(h.name)
		if !ok {
			return nil, fmt.Errorf("inproc: no task registered under %q", h.name)
		}

		args := h.args
		if !h.immutable && i > 0 {
			args = append([]any{value}, h.args...)
		}

		result, err := task(ctx, args, h.kwargs)
		if err != nil {
			return nil, fmt.Errorf("inproc: step %d (%s) failed: %w", i, h.name, err)
		}
		value = result
	}
	return value, nil
}

func (a *Adapter) Pipe(handles ...substrate.StepHandle) substrate.PipelineHandle {
	steps := make([]*stepHandle, len(handles))
	for i, h := range handles {
		steps[i] = h.(*stepHandle)
	}
	return &pipelineHandle{adapter: a, steps: steps}
}
