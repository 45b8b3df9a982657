package ports

import (
	"context"

	"github.com/samirrijal/geogrids/internal/core/domain"
)

// EventPublisher publishes grid events to a message broker.
type EventPublisher interface {
	PublishCell(ctx context.Context, event *domain.CellEvent) error
	PublishBatchRequest(ctx context.Context, job *domain.BatchJob) error
}

// EventSubscriber subscribes to grid events from a message broker.
type EventSubscriber interface {
	SubscribeBatchRequests(ctx context.Context, handler func(ctx context.Context, job *domain.BatchJob) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
