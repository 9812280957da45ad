package steps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry map[string]TaskFunc

func (r fakeRegistry) Lookup(name string) (TaskFunc, bool) {
	fn, ok := r[name]
	return fn, ok
}

func identityTask(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	return args, nil
}

func TestInitContextReturnsFreshEmptyContext(t *testing.T) {
	ctx, err := InitContext(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ctx)
}

func TestExecuteNodeSinglePayload(t *testing.T) {
	reg := fakeRegistry{"join": func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
		return args[0], nil
	}}
	prev := PipelineContext{"p": "parent-value"}

	next, err := ExecuteNode(context.Background(), prev, reg, "n", "join", nil, nil, []string{"p"}, true)
	require.NoError(t, err)
	assert.Equal(t, "parent-value", next["n"])
	assert.Equal(t, "parent-value", prev["p"]) // prev untouched
}

func TestExecuteNodeMultiParentPayloadPreservesOrder(t *testing.T) {
	var seenArg0 any
	reg := fakeRegistry{"join": func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
		seenArg0 = args[0]
		return "joined", nil
	}}
	prev := PipelineContext{"p1": "A", "p2": "B"}

	_, err := ExecuteNode(context.Background(), prev, reg, "n", "join", nil, nil, []string{"p1", "p2"}, true)
	require.NoError(t, err)
	assert.Equal(t, []any{"A", "B"}, seenArg0)
}

func TestExecuteNodeOptOutSkipsDependencyPayload(t *testing.T) {
	var seenArgs []any
	reg := fakeRegistry{"task": func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
		seenArgs = args
		return "ok", nil
	}}
	prev := PipelineContext{"p": "ignored"}

	_, err := ExecuteNode(context.Background(), prev, reg, "n", "task", []any{"own-arg"}, nil, []string{"p"}, false)
	require.NoError(t, err)
	assert.Equal(t, []any{"own-arg"}, seenArgs)
}

func TestExecuteNodeFreshContextHoldsOnlyItsOwnKey(t *testing.T) {
	reg := fakeRegistry{"t": func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
		return "v", nil
	}}
	next, err := ExecuteNode(context.Background(), PipelineContext{}, reg, "n", "t", nil, nil, nil, true)
	require.NoError(t, err)
	assert.Equal(t, PipelineContext{"n": "v"}, next)
}

func TestExecuteNodeMissingDependencyResult(t *testing.T) {
	reg := fakeRegistry{"t": identityTask}
	_, err := ExecuteNode(context.Background(), PipelineContext{}, reg, "n", "t", nil, nil, []string{"p"}, true)
	require.Error(t, err)
	assert.Equal(t, CodeMissingDependencyResult, err.(*Error).Code)
}

func TestExecuteNodeUnknownTask(t *testing.T) {
	_, err := ExecuteNode(context.Background(), PipelineContext{}, fakeRegistry{}, "n", "missing", nil, nil, nil, true)
	require.Error(t, err)
	assert.Equal(t, CodeUnknownTask, err.(*Error).Code)
}

func TestExtractOneUnknownNode(t *testing.T) {
	_, err := ExtractOne(context.Background(), PipelineContext{}, "missing")
	require.Error(t, err)
	assert.Equal(t, CodeUnknownNode, err.(*Error).Code)
}

func TestExtractSinksEmptyReturnsEmptyMapping(t *testing.T) {
	out, err := ExtractSinks(context.Background(), PipelineContext{"a": 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, out)
}

func TestExtractSinksSingleUnwraps(t *testing.T) {
	out, err := ExtractSinks(context.Background(), PipelineContext{"a": "xf"}, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, "xf", out)
}

func TestExtractSinksMultipleReturnsMapping(t *testing.T) {
	out, err := ExtractSinks(context.Background(), PipelineContext{"b": "xf", "c": "xg"}, []string{"b", "c"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"b": "xf", "c": "xg"}, out)
}
