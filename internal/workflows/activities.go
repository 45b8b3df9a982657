package workflows

import (
	"context"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/geogrids/internal/core/domain"
	"github.com/samirrijal/geogrids/internal/core/usecases"
)

// BatchActivities holds the activity implementations for the batch workflow.
type BatchActivities struct {
	Grid *usecases.GridService
}

// EncodeChunk hashes one chunk of a batch. Validation failures are marked
// non-retryable.
func (a *BatchActivities) EncodeChunk(ctx context.Context, points []domain.GeoPoint, precision int) ([]domain.Cell, error) {
	cells, err := a.Grid.EncodeBatch(ctx, points, precision)
	if err != nil {
		if usecases.IsValidation(err) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), "InvalidInput", err)
		}
		return nil, fmt.Errorf("encode chunk: %w", err)
	}
	return cells, nil
}

// PublishCells emits the cell events of an encoded chunk.
func (a *BatchActivities) PublishCells(ctx context.Context, jobID string, cells []domain.Cell) error {
	if err := a.Grid.PublishCells(ctx, jobID, cells); err != nil {
		return err
	}
	slog.DebugContext(ctx, "published chunk", "job_id", jobID, "cells", len(cells))
	return nil
}
