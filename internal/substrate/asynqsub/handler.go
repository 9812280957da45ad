package asynqsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/smilemakc/taskgraph/internal/steps"
)

// TaskPipeline is the single wire-level asynq task type every compiled
// pipeline runs through, one step per dequeue.
const TaskPipeline = "workflow.pipeline"

func resultKey(runID string) string { return "taskgraph:result:" + runID }

// normalizePipelineContext converts a JSON-decoded map[string]any (the
// shape Prev comes back as after crossing the wire) into the named
// steps.PipelineContext type the step task bodies expect.
func normalizePipelineContext(v any) any {
	if m, ok := v.(map[string]any); ok {
		return steps.PipelineContext(m)
	}
	return v
}

// handlePipeline is the asynq.HandlerFunc registered for TaskPipeline. It
// resolves the current step, invokes it, and either re-enqueues the next
// step or publishes the final result for a blocked Run call to collect.
func (a *Adapter) handlePipeline(ctx context.Context, task *asynq.Task) error {
	var payload pipelinePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("asynqsub: decode pipeline payload: %w", err)
	}

	if payload.StepIndex >= len(payload.Steps) {
		return fmt.Errorf("asynqsub: step index %d out of range (%d steps)", payload.StepIndex, len(payload.Steps))
	}
	step := payload.Steps[payload.StepIndex]

	handler, ok := a.registry.Lookup(step.Name)
	if !ok {
		return fmt.Errorf("asynqsub: no task registered under %q", step.Name)
	}

	prev, err := decodePrev(payload.Prev)
	if err != nil {
		return fmt.Errorf("asynqsub: decode prev value: %w", err)
	}
	prev = normalizePipelineContext(prev)

	args := step.Args
	if !step.Immutable && payload.StepIndex > 0 {
		args = append([]any{prev}, args...)
	}

	result, err := handler(ctx, args, step.Kwargs)
	if err != nil {
		return fmt.Errorf("asynqsub: step %d (%s) failed: %w", payload.StepIndex, step.Name, err)
	}

	if payload.StepIndex+1 < len(payload.Steps) {
		nextPrev, err := encodePrev(result)
		if err != nil {
			return fmt.Errorf("asynqsub: encode step result: %w", err)
		}
		next := pipelinePayload{
			RunID:     payload.RunID,
			StepIndex: payload.StepIndex + 1,
			Steps:     payload.Steps,
			Prev:      nextPrev,
		}
		body, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("asynqsub: encode next step payload: %w", err)
		}
		if _, err := a.client.EnqueueContext(ctx, asynq.NewTask(TaskPipeline, body)); err != nil {
			return fmt.Errorf("asynqsub: enqueue next step: %w", err)
		}
		return nil
	}

	final, err := encodePrev(result)
	if err != nil {
		return fmt.Errorf("asynqsub: encode final result: %w", err)
	}
	if err := a.redis.RPush(ctx, resultKey(payload.RunID), final).Err(); err != nil {
		return fmt.Errorf("asynqsub: publish final result: %w", err)
	}
	return a.redis.Expire(ctx, resultKey(payload.RunID), resultTTL).Err()
}
