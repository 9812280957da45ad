package visualize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/taskgraph/internal/compiler"
	"github.com/smilemakc/taskgraph/internal/workflow"
)

func diamondPlan(t *testing.T) compiler.Plan {
	t.Helper()
	w := workflow.New("diamond")
	_, _ = w.Add(workflow.NewTaskDescriptor("T", []any{"s"}, nil), "a", nil, true)
	_, _ = w.Add(workflow.NewTaskDescriptor("F", nil, nil), "b", []string{"a"}, true)
	_, _ = w.Add(workflow.NewTaskDescriptor("G", nil, nil), "c", []string{"a"}, true)
	_, _ = w.Add(workflow.NewTaskDescriptor("J", nil, nil), "d", []string{"b", "c"}, true)

	target := "d"
	plan, err := compiler.Compile(w, &target)
	require.NoError(t, err)
	return plan
}

func TestMermaidContainsAllNodesAndEdges(t *testing.T) {
	out := Mermaid(diamondPlan(t))
	assert.Contains(t, out, "flowchart TD")
	assert.Contains(t, out, "n_a")
	assert.Contains(t, out, "n_a --> n_b")
	assert.Contains(t, out, "n_d --> result")
}

func TestMermaidAnnotatesJoinNodes(t *testing.T) {
	out := Mermaid(diamondPlan(t))
	assert.Contains(t, out, "class n_d join")
	assert.Contains(t, out, "classDef join")
}

func TestASCIIListsStepsInOrder(t *testing.T) {
	out := ASCII(diamondPlan(t))
	assert.Contains(t, out, "init_context")
	assert.Contains(t, out, "execute_node  a <- T")
	assert.Contains(t, out, "extract_one    d")
}
