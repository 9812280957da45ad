package substrate

import (
	"context"
	"fmt"

	"github.com/smilemakc/taskgraph/internal/steps"
)

// RegisterStepTasks binds the four fixed step operations into reg under
// their wire-stable names, so any adapter built on reg can enqueue them
// like any other task. userTasks is the registry ExecuteNode resolves
// task_name against; it is usually reg itself, since user tasks and step
// tasks share one namespace.
func RegisterStepTasks(reg *Registry, userTasks steps.TaskLookup) {
	reg.Register(TaskInitContext, func(ctx context.Context, _ []any, _ map[string]any) (any, error) {
		return steps.InitContext(ctx)
	})

	reg.Register(TaskExecuteNode, func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
		var prev steps.PipelineContext
		if len(args) > 0 && args[0] != nil {
			pc, ok := args[0].(steps.PipelineContext)
			if !ok {
				return nil, fmt.Errorf("execute_node: positional arg 0 is not a PipelineContext: %T", args[0])
			}
			prev = pc
		}

		nodeID, _ := kwargs["node_id"].(string)
		taskName, _ := kwargs["task_name"].(string)
		taskArgs, _ := kwargs["task_args"].([]any)
		taskKwargs, _ := kwargs["task_kwargs"].(map[string]any)
		dependsOn := stringList(kwargs["depends_on"])
		consume, _ := kwargs["consume_dependency_results"].(bool)

		return steps.ExecuteNode(ctx, prev, userTasks, nodeID, taskName, taskArgs, taskKwargs, dependsOn, consume)
	})

	reg.Register(TaskExtractOne, func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
		prev, _ := args[0].(steps.PipelineContext)
		nodeID, _ := kwargs["node_id"].(string)
		return steps.ExtractOne(ctx, prev, nodeID)
	})

	reg.Register(TaskExtractSinks, func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
		prev, _ := args[0].(steps.PipelineContext)
		sinkIDs := stringList(kwargs["sink_node_ids"])
		return steps.ExtractSinks(ctx, prev, sinkIDs)
	})
}

// stringList reads a list-of-ids kwarg in its in-process shape ([]string)
// or in the shape it has after a JSON round trip through a broker ([]any).
func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
