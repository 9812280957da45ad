// Package substrate defines the adapter boundary between the workflow core
// and a concrete task-worker runtime: task registration, lookup, signature
// construction, and linear pipe sequencing. Substrate-specific concerns
// (serialization, broker, ack policy, retries) live only in the adapter
// implementations under inproc/ and asynqsub/, never here.
package substrate

import (
	"sync"

	"github.com/smilemakc/taskgraph/internal/steps"
)

// Registry is a concurrency-safe name -> task lookup table. It satisfies
// steps.TaskLookup so ExecuteNode can resolve task names through it
// directly.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]steps.TaskFunc
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]steps.TaskFunc)}
}

// Register binds name to fn. Registration is idempotent: registering the
// same name twice simply replaces the handler, matching the step tasks'
// own registration being safe to repeat across adapter construction.
func (r *Registry) Register(name string, fn steps.TaskFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[name] = fn
}

// Lookup resolves name to its handler.
func (r *Registry) Lookup(name string) (steps.TaskFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.tasks[name]
	return fn, ok
}

// Wire-stable step task names, shared by every adapter implementation.
const (
	TaskInitContext  = "workflow.init_context"
	TaskExecuteNode  = "workflow.execute_node"
	TaskExtractOne   = "workflow.extract_one"
	TaskExtractSinks = "workflow.extract_sinks"
)
