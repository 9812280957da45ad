// Package asynqsub is a distributed substrate adapter backed by
// github.com/hibiken/asynq (itself backed by Redis via
// github.com/redis/go-redis/v9). It is the concrete stand-in for "the
// task-worker substrate" the core treats as an external collaborator:
// brokering, retries, and serialization all live here, never in
// internal/compiler or internal/steps.
package asynqsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/smilemakc/taskgraph/internal/substrate"
)

const resultTTL = 10 * time.Minute

// Adapter implements substrate.Adapter on top of an asynq client/server
// pair and a Redis client used only as a simple completion mailbox (a
// blocking list pop keyed by run id), since asynq itself does not expose a
// synchronous "wait for this enqueue's result" primitive.
type Adapter struct {
	client   *asynq.Client
	mux      *asynq.ServeMux
	redis    *redis.Client
	registry *substrate.Registry

	// waitTimeout bounds how long Run blocks for a result before giving
	// up; zero means wait on ctx alone.
	waitTimeout time.Duration
}

// New builds an asynqsub.Adapter. reg holds both the four step tasks
// (registered here) and any user tasks the caller registers afterward
// through RegisterTask. rdb is used as the result mailbox; it should point
// at the same Redis instance asynq's RedisClientOpt does.
func New(redisOpt asynq.RedisClientOpt, rdb *redis.Client, reg *substrate.Registry) *Adapter {
	substrate.RegisterStepTasks(reg, reg)

	a := &Adapter{
		client:   asynq.NewClient(redisOpt),
		mux:      asynq.NewServeMux(),
		redis:    rdb,
		registry: reg,
	}
	a.mux.HandleFunc(TaskPipeline, a.handlePipeline)
	return a
}

// Mux returns the asynq handler mux this adapter feeds; cmd/taskgraphd
// wires this into an *asynq.Server to run the actual worker process.
func (a *Adapter) Mux() *asynq.ServeMux { return a.mux }

// Close releases the underlying asynq client.
func (a *Adapter) Close() error { return a.client.Close() }

func (a *Adapter) RegisterTask(name string, handler substrate.TaskHandler) {
	a.registry.Register(name, handler)
}

func (a *Adapter) LookupTask(name string) (substrate.TaskHandler, bool) {
	return a.registry.Lookup(name)
}

func (a *Adapter) Signature(name string, args []any, kwargs map[string]any, immutable bool) substrate.StepHandle {
	return stepSpec{Name: name, Args: args, Kwargs: kwargs, Immutable: immutable}
}

type pipelineHandle struct {
	adapter *Adapter
	steps   []stepSpec
}

// Run enqueues the pipeline's first step and blocks on the Redis mailbox
// for the final step's published result.
func (p *pipelineHandle) Run(ctx context.Context) (any, error) {
	if len(p.steps) == 0 {
		return nil, fmt.Errorf("asynqsub: empty pipeline")
	}

	runID := uuid.NewString()
	payload := pipelinePayload{RunID: runID, StepIndex: 0, Steps: p.steps}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("asynqsub: encode initial payload: %w", err)
	}

	if _, err := p.adapter.client.EnqueueContext(ctx, asynq.NewTask(TaskPipeline, body)); err != nil {
		return nil, fmt.Errorf("asynqsub: enqueue pipeline: %w", err)
	}

	waitCtx := ctx
	if p.adapter.waitTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, p.adapter.waitTimeout)
		defer cancel()
	}

	popped, err := p.adapter.redis.BLPop(waitCtx, 0, resultKey(runID)).Result()
	if err != nil {
		return nil, fmt.Errorf("asynqsub: waiting for pipeline result: %w", err)
	}
	if len(popped) < 2 {
		return nil, fmt.Errorf("asynqsub: malformed result payload for run %s", runID)
	}

	var raw any
	if err := json.Unmarshal([]byte(popped[1]), &raw); err != nil {
		return nil, fmt.Errorf("asynqsub: decode final result: %w", err)
	}
	return normalizePipelineContext(raw), nil
}

func (a *Adapter) Pipe(handles ...substrate.StepHandle) substrate.PipelineHandle {
	steps := make([]stepSpec, len(handles))
	for i, h := range handles {
		steps[i] = h.(stepSpec)
	}
	return &pipelineHandle{adapter: a, steps: steps}
}

// PeriodicTask builds the *asynq.Task a caller registers with an
// *asynq.Scheduler to re-enqueue this pipeline on a cron schedule, rather
// than run it once and block for its result. Every firing shares one run
// id, since nothing blocks on periodic results the way Run does; that's
// fine as long as consecutive firings don't overlap within resultTTL.
func (a *Adapter) PeriodicTask(handles ...substrate.StepHandle) (*asynq.Task, error) {
	steps := make([]stepSpec, len(handles))
	for i, h := range handles {
		steps[i] = h.(stepSpec)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("asynqsub: empty pipeline")
	}

	payload := pipelinePayload{RunID: uuid.NewString(), StepIndex: 0, Steps: steps}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("asynqsub: encode periodic payload: %w", err)
	}
	return asynq.NewTask(TaskPipeline, body), nil
}
