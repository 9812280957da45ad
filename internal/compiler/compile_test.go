package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/taskgraph/internal/workflow"
)

func task(name string, args ...any) workflow.TaskDescriptor {
	return workflow.NewTaskDescriptor(name, args, nil)
}

// diamond builds a: T("s"), b: F[a], c: G[a], d: J[b,c] — the E1 scenario.
func diamond(t *testing.T) *workflow.Workflow {
	t.Helper()
	w := workflow.New("diamond")
	_, err := w.Add(task("T", "s"), "a", nil, true)
	require.NoError(t, err)
	_, err = w.Add(task("F"), "b", []string{"a"}, true)
	require.NoError(t, err)
	_, err = w.Add(task("G"), "c", []string{"a"}, true)
	require.NoError(t, err)
	_, err = w.Add(task("J"), "d", []string{"b", "c"}, true)
	require.NoError(t, err)
	return w
}

func TestCompileWithTargetEndsInExtractOne(t *testing.T) {
	w := diamond(t)
	target := "d"
	plan, err := Compile(w, &target)
	require.NoError(t, err)

	require.Equal(t, StepInitContext, plan.Steps[0].Kind)
	last := plan.Steps[len(plan.Steps)-1]
	assert.Equal(t, StepExtractOne, last.Kind)
	assert.Equal(t, "d", last.NodeID)

	assert.Equal(t, []string{"a", "b", "c", "d"}, plan.ExecuteNodeIDs())
}

func TestCompileWithoutTargetEndsInExtractSinks(t *testing.T) {
	w := workflow.New("multisink")
	_, _ = w.Add(task("T", "x"), "a", nil, true)
	_, _ = w.Add(task("F"), "b", []string{"a"}, true)
	_, _ = w.Add(task("G"), "c", []string{"a"}, true)

	plan, err := Compile(w, nil)
	require.NoError(t, err)

	last := plan.Steps[len(plan.Steps)-1]
	assert.Equal(t, StepExtractSinks, last.Kind)
	assert.Equal(t, []string{"b", "c"}, last.SinkNodeIDs)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, plan.ExecuteNodeIDs())
}

func TestCompileExactlyOnceExecution(t *testing.T) {
	w := diamond(t)
	plan, err := Compile(w, nil)
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, s := range plan.Steps {
		if s.Kind == StepExecuteNode {
			seen[s.NodeID]++
		}
	}
	for id, count := range seen {
		assert.Equalf(t, 1, count, "node %q executed %d times", id, count)
	}
}

func TestCompileIsStableAcrossCalls(t *testing.T) {
	w := diamond(t)
	first, err := Compile(w, nil)
	require.NoError(t, err)
	second, err := Compile(w, nil)
	require.NoError(t, err)

	assert.Equal(t, first.ExecuteNodeIDs(), second.ExecuteNodeIDs())
}

func TestCompileTargetPrunesUnrelatedWork(t *testing.T) {
	// a: T("x"), b: F[a], c: G[a], d: F[b] — E4.
	w := workflow.New("prune")
	_, _ = w.Add(task("T", "x"), "a", nil, true)
	_, _ = w.Add(task("F"), "b", []string{"a"}, true)
	_, _ = w.Add(task("G"), "c", []string{"a"}, true)
	_, _ = w.Add(task("F"), "d", []string{"b"}, true)

	target := "d"
	plan, err := Compile(w, &target)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "d"}, plan.ExecuteNodeIDs())
}

func TestCompileRejectsCycle(t *testing.T) {
	w := workflow.New("cyclic")
	_, _ = w.Add(task("T"), "a", []string{"b"}, true)
	_, _ = w.Add(task("T"), "b", []string{"a"}, true)

	_, err := Compile(w, nil)
	require.Error(t, err)
	assert.Equal(t, workflow.CodeCycle, err.(*workflow.Error).Code)
}

func TestCompileRejectsMissingDependency(t *testing.T) {
	w := workflow.New("broken")
	_, _ = w.Add(task("T"), "a", []string{"ghost"}, true)

	_, err := Compile(w, nil)
	require.Error(t, err)
	assert.Equal(t, workflow.CodeMissingDependency, err.(*workflow.Error).Code)
}

func TestCompileRejectsEmptyWorkflow(t *testing.T) {
	w := workflow.New("empty")

	_, err := Compile(w, nil)
	require.Error(t, err)
	assert.Equal(t, CodeEmptyWorkflow, err.(*Error).Code)
}
