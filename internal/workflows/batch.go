package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/geogrids/internal/core/domain"
)

// DefaultChunkSize is how many points one EncodeChunk activity hashes.
const DefaultChunkSize = 250

// BatchInput is the input for the batch encoding workflow.
type BatchInput struct {
	Job       domain.BatchJob
	ChunkSize int
}

// BatchResult summarises a finished batch.
type BatchResult struct {
	JobID  string
	Cells  int
	Chunks int
}

// WorkflowID derives a stable workflow id from a job id so a redelivered
// request does not start a second run.
func WorkflowID(jobID string) string {
	return "batch-encode-" + jobID
}

// BatchEncodeWorkflow hashes a batch chunk by chunk and publishes each
// chunk's cells as soon as it is encoded. Invalid input fails the workflow
// without retries.
func BatchEncodeWorkflow(ctx workflow.Context, input BatchInput) (*BatchResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting batch encode workflow", "jobID", input.Job.ID, "points", len(input.Job.Points))

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	size := input.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}

	result := &BatchResult{JobID: input.Job.ID}
	points := input.Job.Points
	for start := 0; start < len(points); start += size {
		end := start + size
		if end > len(points) {
			end = len(points)
		}

		var cells []domain.Cell
		err := workflow.ExecuteActivity(ctx, "EncodeChunk", points[start:end], input.Job.Precision).Get(ctx, &cells)
		if err != nil {
			return nil, err
		}

		err = workflow.ExecuteActivity(ctx, "PublishCells", input.Job.ID, cells).Get(ctx, nil)
		if err != nil {
			logger.Warn("publishing chunk failed", "jobID", input.Job.ID, "chunk", result.Chunks, "error", err)
			return nil, err
		}

		result.Cells += len(cells)
		result.Chunks++
	}

	logger.Info("Batch encoded", "jobID", input.Job.ID, "cells", result.Cells, "chunks", result.Chunks)
	return result, nil
}
