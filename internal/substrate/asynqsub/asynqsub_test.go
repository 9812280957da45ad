package asynqsub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/taskgraph/internal/steps"
)

func TestStepSpecRoundTripsOverJSON(t *testing.T) {
	spec := stepSpec{
		Name:      "workflow.execute_node",
		Args:      []any{"x"},
		Kwargs:    map[string]any{"node_id": "a"},
		Immutable: true,
	}

	body, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"task_name":"workflow.execute_node"`)

	var decoded stepSpec
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, spec.Name, decoded.Name)
	assert.Equal(t, spec.Name, decoded.TaskName())
	assert.Equal(t, spec.Immutable, decoded.Immutable)
}

func TestPipelinePayloadRoundTripsWithPrev(t *testing.T) {
	prev, err := encodePrev(steps.PipelineContext{"a": "x"})
	require.NoError(t, err)

	payload := pipelinePayload{
		RunID:     "run-1",
		StepIndex: 1,
		Steps:     []stepSpec{{Name: "workflow.init_context"}, {Name: "workflow.execute_node"}},
		Prev:      prev,
	}

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded pipelinePayload
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, payload.RunID, decoded.RunID)
	assert.Equal(t, payload.StepIndex, decoded.StepIndex)
	require.Len(t, decoded.Steps, 2)
	assert.Equal(t, "workflow.execute_node", decoded.Steps[1].Name)

	decodedPrev, err := decodePrev(decoded.Prev)
	require.NoError(t, err)
	assert.Equal(t, steps.PipelineContext{"a": "x"}, normalizePipelineContext(decodedPrev))
}

func TestEncodeDecodePrevRoundTripsNil(t *testing.T) {
	raw, err := encodePrev(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	v, err := decodePrev(raw)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestNormalizePipelineContextWrapsDecodedMap(t *testing.T) {
	decoded := map[string]any{"a": "x", "b": "y"}
	got := normalizePipelineContext(decoded)

	pc, ok := got.(steps.PipelineContext)
	require.True(t, ok)
	assert.Equal(t, "x", pc["a"])
}

func TestNormalizePipelineContextPassesThroughNonMapValues(t *testing.T) {
	assert.Equal(t, "plain", normalizePipelineContext("plain"))
	assert.Nil(t, normalizePipelineContext(nil))
}

func TestResultKeyIsNamespacedByRunID(t *testing.T) {
	assert.Equal(t, "taskgraph:result:abc-123", resultKey("abc-123"))
}
