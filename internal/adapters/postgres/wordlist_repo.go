package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/samirrijal/geogrids/internal/core/domain"
	"github.com/samirrijal/geogrids/internal/core/ports"
)

const uniqueViolation = "23505"

// WordlistRepo implements ports.WordlistRepository.
type WordlistRepo struct {
	db *DB
}

func NewWordlistRepo(db *DB) *WordlistRepo {
	return &WordlistRepo{db: db}
}

// Insert stores a new version. Published versions are never updated.
func (r *WordlistRepo) Insert(ctx context.Context, wl *domain.Wordlist) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO wordlists (name, version, separator, words, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, wl.Name, wl.Version, wl.Separator, wl.Words, wl.Description).Scan(&wl.ID, &wl.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("wordlist %s@%d: %w", wl.Name, wl.Version, ports.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *WordlistRepo) Get(ctx context.Context, name string, version int) (*domain.Wordlist, error) {
	wl := &domain.Wordlist{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, version, separator, words, description, created_at
		FROM wordlists
		WHERE name = $1 AND ($2 = 0 OR version = $2)
		ORDER BY version DESC
		LIMIT 1
	`, name, version).Scan(&wl.ID, &wl.Name, &wl.Version, &wl.Separator, &wl.Words, &wl.Description, &wl.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	wl.Size = len(wl.Words)
	return wl, nil
}

func (r *WordlistRepo) LatestVersion(ctx context.Context, name string) (int, error) {
	var v *int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT max(version) FROM wordlists WHERE name = $1
	`, name).Scan(&v)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, ports.ErrNotFound
	}
	return *v, nil
}

// List returns the latest version of every word list. Words are left out;
// Size reports how many there are.
func (r *WordlistRepo) List(ctx context.Context) ([]domain.Wordlist, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT DISTINCT ON (name) id, name, version, separator, cardinality(words), description, created_at
		FROM wordlists
		ORDER BY name, version DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []domain.Wordlist
	for rows.Next() {
		var wl domain.Wordlist
		if err := rows.Scan(&wl.ID, &wl.Name, &wl.Version, &wl.Separator, &wl.Size, &wl.Description, &wl.CreatedAt); err != nil {
			return nil, err
		}
		lists = append(lists, wl)
	}
	return lists, rows.Err()
}
