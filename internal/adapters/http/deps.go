package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geogrids/internal/adapters/postgres"
	"github.com/samirrijal/geogrids/internal/adapters/valkey"
	"github.com/samirrijal/geogrids/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Grid             *usecases.GridService
	Wordlists        *usecases.WordlistService
	DefaultPrecision int
	Version          string
	NATS             *nats.Conn
	DB               *postgres.DB
	Cache            *valkey.Cache
}

func (d *Dependencies) defaultPrecision() int {
	if d.DefaultPrecision == 0 {
		return 25
	}
	return d.DefaultPrecision
}
