package steps

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"

	"github.com/smilemakc/taskgraph/internal/obslog"
)

var tracer = otel.Tracer("taskgraph/steps")
var log = obslog.Component("steps")

// PipelineContext is the copy-on-step mapping from node id to that node's
// returned value, threaded as the pipeline value between steps. Once a key
// is written it is never overwritten by a later step.
type PipelineContext map[string]any

// clone returns a shallow copy of c, or a fresh empty map if c is nil.
func (c PipelineContext) clone() PipelineContext {
	out := make(PipelineContext, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	return out
}

// TaskFunc is the shape every registered task (step tasks and user tasks
// alike) is invoked through: positional args, keyword args, the return
// value or an error.
type TaskFunc func(ctx context.Context, args []any, kwargs map[string]any) (any, error)

// TaskLookup resolves a registered task name to its handler. The substrate
// package's Registry satisfies this.
type TaskLookup interface {
	Lookup(name string) (TaskFunc, bool)
}

// InitContext is step S1: it takes no pipeline value and returns a fresh
// empty context.
func InitContext(context.Context) (PipelineContext, error) {
	return PipelineContext{}, nil
}

// ExecuteNode is step S2. It resolves taskName in lookup, binds call
// arguments per the dependency-payload rules, invokes the task, and returns
// a new context with the result recorded under nodeID.
func ExecuteNode(
	ctx context.Context,
	prev PipelineContext,
	lookup TaskLookup,
	nodeID string,
	taskName string,
	taskArgs []any,
	taskKwargs map[string]any,
	dependsOn []string,
	consumeDependencyResults bool,
) (PipelineContext, error) {
	ctx, span := tracer.Start(ctx, "workflow.execute_node")
	defer span.End()

	if prev == nil {
		prev = PipelineContext{}
	}

	if _, already := prev[nodeID]; already {
		// Idempotence guard: under a correct topological order this never
		// triggers, since a node is only ever emitted once.
		return prev, nil
	}

	callArgs := make([]any, len(taskArgs))
	copy(callArgs, taskArgs)

	if consumeDependencyResults && len(dependsOn) > 0 {
		missing := make([]string, 0)
		for _, dep := range dependsOn {
			if _, ok := prev[dep]; !ok {
				missing = append(missing, dep)
			}
		}
		if len(missing) > 0 {
			available := make([]string, 0, len(prev))
			for k := range prev {
				available = append(available, k)
			}
			sort.Strings(available)
			return nil, newError(CodeMissingDependencyResult,
				fmt.Sprintf("node %q missing dependency results %v (available: %v)", nodeID, missing, available), nil)
		}

		var payload any
		if len(dependsOn) == 1 {
			payload = prev[dependsOn[0]]
		} else {
			values := make([]any, len(dependsOn))
			for i, dep := range dependsOn {
				values[i] = prev[dep]
			}
			payload = values
		}
		callArgs = append([]any{payload}, callArgs...)
	}

	task, ok := lookup.Lookup(taskName)
	if !ok {
		return nil, newError(CodeUnknownTask, fmt.Sprintf("no task registered under %q", taskName), nil)
	}

	result, err := task(ctx, callArgs, taskKwargs)
	if err != nil {
		log.Debug().Str("node_id", nodeID).Str("task_name", taskName).Err(err).Msg("node execution failed")
		return nil, err
	}
	log.Debug().Str("node_id", nodeID).Str("task_name", taskName).Msg("node executed")

	next := prev.clone()
	next[nodeID] = result
	return next, nil
}

// ExtractOne is step S3: it projects ctx[nodeID] out of the pipeline.
func ExtractOne(_ context.Context, prev PipelineContext, nodeID string) (any, error) {
	value, ok := prev[nodeID]
	if !ok {
		return nil, newError(CodeUnknownNode, fmt.Sprintf("node %q not present in context", nodeID), nil)
	}
	return value, nil
}

// ExtractSinks is step S4: empty sink list yields an empty mapping, a
// single sink yields its bare value (unwrapped), and multiple sinks yield a
// mapping keyed by sink id.
func ExtractSinks(_ context.Context, prev PipelineContext, sinkIDs []string) (any, error) {
	if len(sinkIDs) == 0 {
		return map[string]any{}, nil
	}
	if len(sinkIDs) == 1 {
		value, ok := prev[sinkIDs[0]]
		if !ok {
			return nil, newError(CodeUnknownNode, fmt.Sprintf("sink node %q not present in context", sinkIDs[0]), nil)
		}
		return value, nil
	}

	out := make(map[string]any, len(sinkIDs))
	for _, id := range sinkIDs {
		value, ok := prev[id]
		if !ok {
			return nil, newError(CodeUnknownNode, fmt.Sprintf("sink node %q not present in context", id), nil)
		}
		out[id] = value
	}
	return out, nil
}
