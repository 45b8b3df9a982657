package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samirrijal/geogrids/internal/adapters/postgres"
	"github.com/samirrijal/geogrids/internal/core/ports"
	"github.com/samirrijal/geogrids/internal/core/usecases"
	"github.com/samirrijal/geogrids/internal/pkg/config"
	"github.com/samirrijal/geogrids/internal/pkg/logging"
	"github.com/samirrijal/geogrids/internal/pkg/wordfile"
)

const migrationsDir = "migrations"

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|seed>")
	}

	cfg, err := config.Load("geogrids-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, "text")

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		err = runMigrations(ctx, db, false)
	case "down":
		err = runMigrations(ctx, db, true)
	case "seed":
		err = seedWordlists(ctx, db, cfg.Words.SeedDir)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

// migrationFiles lists NNN_name.sql files in apply order, or their
// NNN_name.down.sql counterparts in reverse order.
func migrationFiles(dir string, down bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		if strings.HasSuffix(name, ".down.sql") == down {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)
	if down {
		sort.Sort(sort.Reverse(sort.StringSlice(files)))
	}
	return files, nil
}

func runMigrations(ctx context.Context, db *postgres.DB, down bool) error {
	files, err := migrationFiles(migrationsDir, down)
	if err != nil {
		return err
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := db.Pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		fmt.Printf("OK  %s\n", f)
	}

	slog.Info("migrations applied", "count", len(files), "down", down)
	return nil
}

// seedWordlists registers every word-list file in dir. Files without a
// version seed version 1; versions that already exist are left alone.
func seedWordlists(ctx context.Context, db *postgres.DB, dir string) error {
	lists, err := wordfile.LoadDir(dir)
	if err != nil {
		return err
	}

	svc := usecases.NewWordlistService(postgres.NewWordlistRepo(db), nil)
	for _, wl := range lists {
		if wl.Version == 0 {
			wl.Version = 1
		}
		err := svc.Register(ctx, wl)
		switch {
		case errors.Is(err, ports.ErrConflict):
			fmt.Printf("--  %s@%d already present\n", wl.Name, wl.Version)
		case err != nil:
			return fmt.Errorf("seed %s: %w", wl.Name, err)
		default:
			fmt.Printf("OK  %s@%d (%d words)\n", wl.Name, wl.Version, wl.Size)
		}
	}
	return nil
}
