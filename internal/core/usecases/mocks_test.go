package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/geogrids/internal/core/domain"
	"github.com/samirrijal/geogrids/internal/core/ports"
)

// --- Mock WordlistRepository ---

type mockWordlistRepo struct {
	insertFn func(ctx context.Context, wl *domain.Wordlist) error
	getFn    func(ctx context.Context, name string, version int) (*domain.Wordlist, error)
	latestFn func(ctx context.Context, name string) (int, error)
	listFn   func(ctx context.Context) ([]domain.Wordlist, error)
}

func (m *mockWordlistRepo) Insert(ctx context.Context, wl *domain.Wordlist) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, wl)
	}
	return nil
}

func (m *mockWordlistRepo) Get(ctx context.Context, name string, version int) (*domain.Wordlist, error) {
	if m.getFn != nil {
		return m.getFn(ctx, name, version)
	}
	return nil, ports.ErrNotFound
}

func (m *mockWordlistRepo) LatestVersion(ctx context.Context, name string) (int, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, name)
	}
	return 0, ports.ErrNotFound
}

func (m *mockWordlistRepo) List(ctx context.Context) ([]domain.Wordlist, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

// --- In-memory CacheService ---

var errCacheMiss = errors.New("cache miss")

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu      sync.Mutex
	cells   []domain.CellEvent
	jobs    []domain.BatchJob
	cellErr error
}

func (m *mockPublisher) PublishCell(ctx context.Context, ev *domain.CellEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cellErr != nil {
		return m.cellErr
	}
	m.cells = append(m.cells, *ev)
	return nil
}

func (m *mockPublisher) PublishBatchRequest(ctx context.Context, job *domain.BatchJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, *job)
	return nil
}
