package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/geogrids/internal/core/domain"
)

// ErrNotFound is returned by repositories when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert collides with an existing record.
var ErrConflict = errors.New("already exists")

// WordlistRepository persists versioned word lists.
type WordlistRepository interface {
	// Insert stores a new version. Existing versions are immutable.
	Insert(ctx context.Context, wl *domain.Wordlist) error
	// Get returns one version; version 0 means the latest.
	Get(ctx context.Context, name string, version int) (*domain.Wordlist, error)
	LatestVersion(ctx context.Context, name string) (int, error)
	List(ctx context.Context) ([]domain.Wordlist, error)
}
