package substrate

import "github.com/smilemakc/taskgraph/internal/compiler"

// StepHandles builds one Signature per compiled Step, in order. This is the
// seam between the pure compiler output and a concrete substrate; both
// BuildPipeline and callers that need the raw handles (e.g. to register a
// periodic asynq task rather than run once and wait) use it.
func StepHandles(adapter Adapter, plan compiler.Plan) []StepHandle {
	handles := make([]StepHandle, len(plan.Steps))
	for i, s := range plan.Steps {
		switch s.Kind {
		case compiler.StepInitContext:
			handles[i] = adapter.Signature(TaskInitContext, nil, nil, true)

		case compiler.StepExecuteNode:
			kwargs := map[string]any{
				"node_id":                    s.NodeID,
				"task_name":                  s.TaskName,
				"task_args":                  s.TaskArgs,
				"task_kwargs":                s.TaskKwargs,
				"depends_on":                 s.DependsOn,
				"consume_dependency_results": s.ConsumeDependencyResults,
			}
			handles[i] = adapter.Signature(TaskExecuteNode, nil, kwargs, false)

		case compiler.StepExtractOne:
			handles[i] = adapter.Signature(TaskExtractOne, nil, map[string]any{"node_id": s.NodeID}, false)

		case compiler.StepExtractSinks:
			handles[i] = adapter.Signature(TaskExtractSinks, nil, map[string]any{"sink_node_ids": s.SinkNodeIDs}, false)
		}
	}
	return handles
}

// BuildPipeline turns a compiled Plan into a PipelineHandle ready to Run.
func BuildPipeline(adapter Adapter, plan compiler.Plan) PipelineHandle {
	return adapter.Pipe(StepHandles(adapter, plan)...)
}
