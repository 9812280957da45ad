// Command taskgraphd runs a taskgraph worker: it dequeues compiled-plan
// steps from Redis via asynq and executes them against a task registry.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/smilemakc/taskgraph/internal/compiler"
	"github.com/smilemakc/taskgraph/internal/config"
	"github.com/smilemakc/taskgraph/internal/obslog"
	"github.com/smilemakc/taskgraph/internal/substrate"
	"github.com/smilemakc/taskgraph/internal/substrate/asynqsub"
	"github.com/smilemakc/taskgraph/internal/workflow"
)

func main() {
	var (
		redisAddr   = flag.String("redis-addr", "", "Redis address (overrides config)")
		concurrency = flag.Int("concurrency", 10, "Number of concurrent asynq workers")
		schedule    = flag.String("schedule", "", "Cron expression; if set, also enqueues the demo pipeline on this schedule")
	)
	flag.Parse()

	cfg := config.Load()
	if *redisAddr != "" {
		cfg.RedisAddr = *redisAddr
	}

	log := obslog.Setup(cfg.LogLevel)
	log.Info().Str("redis_addr", cfg.RedisAddr).Int("concurrency", *concurrency).Msg("starting taskgraphd")

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	reg := substrate.NewRegistry()
	reg.Register("taskgraphd.heartbeat", func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
		obslog.Component("heartbeat").Info().Msg("heartbeat pipeline fired")
		return "ok", nil
	})
	adapter := asynqsub.New(redisOpt, rdb, reg)
	defer adapter.Close()

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: *concurrency,
		Queues:      map[string]int{"default": 1},
	})

	if err := srv.Start(adapter.Mux()); err != nil {
		log.Error().Err(err).Msg("failed to start asynq server")
		os.Exit(1)
	}
	log.Info().Msg("worker started, waiting for pipeline steps")

	var scheduler *asynq.Scheduler
	if *schedule != "" {
		scheduler = asynq.NewScheduler(redisOpt, nil)
		task, err := adapter.PeriodicTask(substrate.StepHandles(adapter, heartbeatPlan())...)
		if err != nil {
			log.Error().Err(err).Msg("failed to build periodic task")
			os.Exit(1)
		}
		if _, err := scheduler.Register(*schedule, task); err != nil {
			log.Error().Err(err).Msg("failed to register periodic schedule")
			os.Exit(1)
		}
		go func() {
			if err := scheduler.Run(); err != nil {
				log.Error().Err(err).Msg("scheduler stopped")
			}
		}()
		log.Info().Str("schedule", *schedule).Msg("periodic heartbeat scheduled")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down taskgraphd")
	if scheduler != nil {
		scheduler.Shutdown()
	}
	srv.Shutdown()
}

// heartbeatPlan compiles a single-node workflow invoking the heartbeat task
// registered above; --schedule enqueues it periodically via asynq's own
// scheduler rather than running it once and waiting for a result.
func heartbeatPlan() compiler.Plan {
	w := workflow.New("taskgraphd-heartbeat")
	if _, err := w.Add(workflow.NewTaskDescriptor("taskgraphd.heartbeat", nil, nil), "heartbeat", nil, false); err != nil {
		panic(err)
	}
	plan, err := compiler.Compile(w, nil)
	if err != nil {
		panic(err)
	}
	return plan
}
