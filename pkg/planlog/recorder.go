// Package planlog is an optional audit trail around compiled plans and
// their results: a bun.DB over Postgres, one model per recorded table,
// schema created with NewCreateTable().IfNotExists(). It sits beside the
// core, never inside it — the core's contract never requires persistence.
package planlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/smilemakc/taskgraph/internal/compiler"
)

func marshalResult(result any) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// Recorder persists a compiled plan before it runs and its projected
// result once it finishes.
type Recorder interface {
	RecordPlan(ctx context.Context, runID uuid.UUID, plan compiler.Plan) error
	RecordResult(ctx context.Context, runID uuid.UUID, result any, runErr error) error
}

// PlanModel is one compiled plan's audit row, keyed by run id.
type PlanModel struct {
	bun.BaseModel `bun:"table:taskgraph_plans,alias:p"`

	RunID        uuid.UUID `bun:"run_id,pk"`
	WorkflowName string    `bun:"workflow_name"`
	StepCount    int       `bun:"step_count"`
	NodeIDs      []string  `bun:"node_ids,array"`
	CreatedAt    time.Time `bun:"created_at"`
}

// ResultModel is one run's outcome, keyed by run id.
type ResultModel struct {
	bun.BaseModel `bun:"table:taskgraph_results,alias:r"`

	RunID      uuid.UUID `bun:"run_id,pk"`
	ResultJSON string    `bun:"result_json,type:jsonb"`
	Error      string    `bun:"error"`
	FinishedAt time.Time `bun:"finished_at"`
}

// BunRecorder is the Postgres-backed Recorder.
type BunRecorder struct {
	db *bun.DB
}

// NewBunRecorder opens a bun.DB against dsn using the pgdriver connector.
func NewBunRecorder(dsn string) *BunRecorder {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return &BunRecorder{db: bun.NewDB(sqldb, pgdialect.New())}
}

// InitSchema creates the recorder's tables if they don't already exist.
func (r *BunRecorder) InitSchema(ctx context.Context) error {
	for _, model := range []any{(*PlanModel)(nil), (*ResultModel)(nil)} {
		if _, err := r.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *BunRecorder) RecordPlan(ctx context.Context, runID uuid.UUID, plan compiler.Plan) error {
	row := &PlanModel{
		RunID:        runID,
		WorkflowName: plan.WorkflowName,
		StepCount:    len(plan.Steps),
		NodeIDs:      plan.ExecuteNodeIDs(),
		CreatedAt:    time.Now(),
	}
	_, err := r.db.NewInsert().Model(row).Exec(ctx)
	return err
}

func (r *BunRecorder) RecordResult(ctx context.Context, runID uuid.UUID, result any, runErr error) error {
	row := &ResultModel{
		RunID:      runID,
		FinishedAt: time.Now(),
	}
	if runErr != nil {
		row.Error = runErr.Error()
	} else if payload, err := marshalResult(result); err == nil {
		row.ResultJSON = payload
	}
	_, err := r.db.NewInsert().Model(row).Exec(ctx)
	return err
}

// NoOpRecorder discards everything, for callers that want the Recorder
// interface without a database behind it.
type NoOpRecorder struct{}

func (NoOpRecorder) RecordPlan(context.Context, uuid.UUID, compiler.Plan) error { return nil }
func (NoOpRecorder) RecordResult(context.Context, uuid.UUID, any, error) error  { return nil }
