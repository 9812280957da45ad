package asynqsub

import "encoding/json"

// stepSpec is the wire shape of one StepHandle: enough to re-resolve and
// invoke the task on whichever worker dequeues it.
type stepSpec struct {
	Name      string         `json:"task_name"`
	Args      []any          `json:"args"`
	Kwargs    map[string]any `json:"kwargs"`
	Immutable bool           `json:"immutable"`
}

// TaskName satisfies substrate.StepHandle.
func (s stepSpec) TaskName() string { return s.Name }

// pipelinePayload is the body of the single "workflow.pipeline" asynq task
// type. Rather than chaining N distinct task types (asynq has no native
// pipe primitive the way a Celery chain does), one handler re-enqueues
// itself with StepIndex+1 until the steps slice is exhausted, carrying the
// previous step's result forward as Prev.
type pipelinePayload struct {
	RunID     string          `json:"run_id"`
	StepIndex int             `json:"step_index"`
	Steps     []stepSpec      `json:"steps"`
	Prev      json.RawMessage `json:"prev,omitempty"`
}

func encodePrev(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func decodePrev(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
