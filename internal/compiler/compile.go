package compiler

import (
	"github.com/smilemakc/taskgraph/internal/obslog"
	"github.com/smilemakc/taskgraph/internal/workflow"
)

var log = obslog.Component("compiler")

// Compile translates w into an ordered Plan. If targetNodeID is non-nil, the
// plan executes only targetNodeID's ancestor closure and ends with an
// ExtractOne step; otherwise it executes every node and ends with an
// ExtractSinks step over w.Sinks().
func Compile(w *workflow.Workflow, targetNodeID *string) (Plan, error) {
	if err := w.ValidateDAG(); err != nil {
		return Plan{}, err
	}

	if w.Len() == 0 {
		return Plan{}, newError(CodeEmptyWorkflow, "workflow has no nodes", nil)
	}

	var selected map[string]struct{}
	if targetNodeID != nil {
		closure, err := w.AncestorClosure(*targetNodeID)
		if err != nil {
			return Plan{}, err
		}
		selected = closure
	} else {
		selected = make(map[string]struct{}, w.Len())
		for _, id := range w.NodeIDs() {
			selected[id] = struct{}{}
		}
	}

	order, err := w.TopologicalOrder(selected)
	if err != nil {
		return Plan{}, err
	}

	steps := make([]Step, 0, len(order)+2)
	steps = append(steps, Step{Kind: StepInitContext})

	for _, id := range order {
		node, _ := w.Node(id)
		steps = append(steps, Step{
			Kind:                     StepExecuteNode,
			NodeID:                   node.NodeID,
			TaskName:                 node.Task.Name(),
			TaskArgs:                 node.Task.Args(),
			TaskKwargs:               node.Task.Kwargs(),
			DependsOn:                node.DependsOn,
			ConsumeDependencyResults: node.ConsumeDependencyResults,
		})
	}

	if targetNodeID != nil {
		steps = append(steps, Step{Kind: StepExtractOne, NodeID: *targetNodeID})
	} else {
		steps = append(steps, Step{Kind: StepExtractSinks, SinkNodeIDs: w.Sinks()})
	}

	log.Debug().Str("workflow", w.Name).Int("steps", len(steps)).Int("nodes", len(order)).Msg("compiled plan")
	return Plan{WorkflowName: w.Name, Steps: steps}, nil
}
