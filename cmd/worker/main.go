package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/geogrids/internal/adapters/nats"
	"github.com/samirrijal/geogrids/internal/core/domain"
	"github.com/samirrijal/geogrids/internal/core/usecases"
	"github.com/samirrijal/geogrids/internal/pkg/config"
	"github.com/samirrijal/geogrids/internal/pkg/logging"
	"github.com/samirrijal/geogrids/internal/pkg/telemetry"
	"github.com/samirrijal/geogrids/internal/workflows"
)

func main() {
	cfg, err := config.Load("geogrids-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Cell events go out through JetStream; batch requests come in through it.
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer publisher.Close()

	subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer subscriber.Close()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(logger),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	grid := usecases.NewGridService(publisher, cfg.Grid.MaxBatch, false)
	w.RegisterWorkflow(workflows.BatchEncodeWorkflow)
	w.RegisterActivity(&workflows.BatchActivities{Grid: grid})

	// Each queued batch starts one workflow. The workflow id is derived from
	// the job id, so a redelivered request is acknowledged without a rerun.
	err = subscriber.SubscribeBatchRequests(ctx, func(ctx context.Context, job *domain.BatchJob) error {
		run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:                                       workflows.WorkflowID(job.ID),
			TaskQueue:                                cfg.Temporal.TaskQueue,
			WorkflowExecutionErrorWhenAlreadyStarted: true,
		}, workflows.BatchEncodeWorkflow, workflows.BatchInput{Job: *job})
		if temporal.IsWorkflowExecutionAlreadyStartedError(err) {
			slog.Info("batch already started", "job_id", job.ID)
			return nil
		}
		if err != nil {
			return err
		}
		slog.Info("batch workflow started", "job_id", job.ID, "run_id", run.GetRunID(), "points", len(job.Points))
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe batch requests: %v", err)
	}

	slog.Info("worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
	slog.Info("worker stopped")
}
