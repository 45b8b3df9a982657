package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/geogrids/internal/core/domain"
	"github.com/samirrijal/geogrids/internal/core/ports"
	"github.com/samirrijal/geogrids/internal/pkg/gdgg"
	"github.com/samirrijal/geogrids/internal/pkg/metrics"
	"github.com/samirrijal/geogrids/internal/pkg/telemetry"
)

var (
	// ErrInvalidCoordinate is returned for latitudes outside [-90, 90] or
	// longitudes outside [-180, 180].
	ErrInvalidCoordinate = errors.New("coordinate out of range")
	// ErrInvalidPrecision is returned for precisions outside [3, 63].
	ErrInvalidPrecision = errors.New("precision out of range")
	// ErrBatchTooLarge is returned when a batch exceeds the configured limit.
	ErrBatchTooLarge = errors.New("batch too large")
	// ErrEmptyBatch is returned when a batch carries no points.
	ErrEmptyBatch = errors.New("batch has no points")
	// ErrNoPublisher is returned by SubmitBatch when no broker is wired.
	ErrNoPublisher = errors.New("batch submission requires an event publisher")
)

const minPrecision = 3

// GridService exposes the grid engine with validation, tracing and cell
// event publication.
type GridService struct {
	publisher ports.EventPublisher
	maxBatch  int
	publish   bool
}

// NewGridService creates a new GridService. publisher may be nil.
func NewGridService(publisher ports.EventPublisher, maxBatch int, publishEvents bool) *GridService {
	if maxBatch <= 0 {
		maxBatch = 1000
	}
	return &GridService{publisher: publisher, maxBatch: maxBatch, publish: publishEvents}
}

// MaxBatch is the largest number of points EncodeBatch accepts.
func (s *GridService) MaxBatch() int { return s.maxBatch }

// Precisions lists the precisions that map onto whole levels.
func (s *GridService) Precisions() []int { return gdgg.HashPrecisions() }

// Encode hashes a coordinate and returns its cell.
func (s *GridService) Encode(ctx context.Context, lat, lon float64, precision int) (*domain.Cell, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanEncode)
	defer span.End()
	span.SetAttributes(
		attribute.Float64("grid.lat", lat),
		attribute.Float64("grid.lon", lon),
		attribute.Int("grid.precision", precision),
	)

	if err := validatePoint(domain.GeoPoint{Lat: lat, Lon: lon}); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := validatePrecision(precision); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	loc := gdgg.PreciseLocation(lat, lon, precision)
	cell := buildCell(loc.Path())
	cell.Source = &domain.GeoPoint{Lat: lat, Lon: lon}

	metrics.CellsComputed.WithLabelValues("encode").Inc()
	metrics.HashPrecision.Observe(float64(precision))
	span.SetAttributes(attribute.String("grid.hash", cell.ReadableHash))

	if s.publish && s.publisher != nil {
		ev := &domain.CellEvent{Cell: *cell, Time: time.Now().UTC()}
		if err := s.publisher.PublishCell(ctx, ev); err != nil {
			slog.WarnContext(ctx, "publish cell event failed", "hash", cell.ReadableHash, "error", err)
		}
	}
	return cell, nil
}

// LocateNumeric returns the cell addressed by a numeric hash.
func (s *GridService) LocateNumeric(ctx context.Context, hash uint64, precision int) (*domain.Cell, error) {
	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanLocate)
	defer span.End()
	span.SetAttributes(attribute.Int("grid.precision", precision))

	if err := validatePrecision(precision); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	metrics.CellsComputed.WithLabelValues("locate").Inc()
	return buildCell(gdgg.PathFromNumericHash(hash, precision)), nil
}

// LocateReadable returns the cell addressed by a readable hash.
func (s *GridService) LocateReadable(ctx context.Context, hash string) (*domain.Cell, error) {
	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanLocate)
	defer span.End()
	span.SetAttributes(attribute.String("grid.hash", hash))

	path, err := parseReadable(hash)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	metrics.CellsComputed.WithLabelValues("locate").Inc()
	return buildCell(path), nil
}

// AreaGeoJSON renders the cell of a readable hash as a GeoJSON feature
// collection holding its polygon and representative point.
func (s *GridService) AreaGeoJSON(ctx context.Context, hash string) ([]byte, error) {
	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanArea)
	defer span.End()
	span.SetAttributes(attribute.String("grid.hash", hash))

	path, err := parseReadable(hash)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	fc.Append(gdgg.AreaFeature(path))
	fc.Append(gdgg.PointFeature(gdgg.LevelsToLocation(path)))

	metrics.CellsComputed.WithLabelValues("area").Inc()
	return fc.MarshalJSON()
}

// EncodeBatch hashes every point at one precision. The whole batch fails on
// the first invalid point.
func (s *GridService) EncodeBatch(ctx context.Context, points []domain.GeoPoint, precision int) ([]domain.Cell, error) {
	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanBatch)
	defer span.End()
	span.SetAttributes(attribute.Int("grid.points", len(points)), attribute.Int("grid.precision", precision))

	if len(points) > s.maxBatch {
		err := fmt.Errorf("%w: %d points, limit %d", ErrBatchTooLarge, len(points), s.maxBatch)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := validatePrecision(precision); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	cells := make([]domain.Cell, 0, len(points))
	for i, p := range points {
		if err := validatePoint(p); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		cell := buildCell(gdgg.PreciseLocation(p.Lat, p.Lon, precision).Path())
		src := p
		cell.Source = &src
		cells = append(cells, *cell)
	}

	metrics.CellsComputed.WithLabelValues("batch").Add(float64(len(cells)))
	metrics.BatchSize.Observe(float64(len(points)))
	return cells, nil
}

// PublishCells emits one cell event per cell, tagged with the job id.
func (s *GridService) PublishCells(ctx context.Context, jobID string, cells []domain.Cell) error {
	if s.publisher == nil {
		return nil
	}
	now := time.Now().UTC()
	for i := range cells {
		ev := &domain.CellEvent{Cell: cells[i], JobID: jobID, Time: now}
		if err := s.publisher.PublishCell(ctx, ev); err != nil {
			return fmt.Errorf("publish cell %s: %w", cells[i].ReadableHash, err)
		}
	}
	return nil
}

// SubmitBatch queues a batch for asynchronous encoding and returns the job.
func (s *GridService) SubmitBatch(ctx context.Context, points []domain.GeoPoint, precision int) (*domain.BatchJob, error) {
	if s.publisher == nil {
		return nil, ErrNoPublisher
	}
	if len(points) == 0 {
		return nil, ErrEmptyBatch
	}
	if err := validatePrecision(precision); err != nil {
		return nil, err
	}
	for i, p := range points {
		if err := validatePoint(p); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
	}

	job := &domain.BatchJob{ID: uuid.NewString(), Points: points, Precision: precision}
	if err := s.publisher.PublishBatchRequest(ctx, job); err != nil {
		return nil, fmt.Errorf("submit batch: %w", err)
	}
	return job, nil
}

// IsValidation reports whether err was caused by bad caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidCoordinate) ||
		errors.Is(err, ErrInvalidPrecision) ||
		errors.Is(err, ErrBatchTooLarge) ||
		errors.Is(err, ErrEmptyBatch) ||
		errors.Is(err, gdgg.ErrInvalidReadableHash)
}

func validatePoint(p domain.GeoPoint) error {
	if !p.Valid() {
		return fmt.Errorf("%w: lat=%g lon=%g", ErrInvalidCoordinate, p.Lat, p.Lon)
	}
	return nil
}

func validatePrecision(precision int) error {
	if precision < minPrecision || precision > gdgg.MaxPrecision {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidPrecision, precision, minPrecision, gdgg.MaxPrecision)
	}
	return nil
}

// parseReadable parses a readable hash and holds it to the same precision
// range as numeric hashes, so every located cell has a numeric twin.
func parseReadable(hash string) (gdgg.Path, error) {
	path, err := gdgg.ParseReadableHash(hash)
	if err != nil {
		return gdgg.Path{}, err
	}
	if err := validatePrecision(path.Precision()); err != nil {
		return gdgg.Path{}, err
	}
	return path, nil
}

// buildCell resolves a path into its hashes, representative point and corners.
func buildCell(path gdgg.Path) *domain.Cell {
	lat, lon := gdgg.LevelsToLocation(path).LatLon()

	area := gdgg.LevelsToTriangle(path, true)
	corners := make([]domain.GeoPoint, len(area))
	for i, c := range area {
		clat, clon := c.LatLon()
		corners[i] = domain.GeoPoint{Lat: clat, Lon: clon}
	}

	levels := make([]int, len(path.Levels))
	for i, l := range path.Levels {
		levels[i] = int(l)
	}

	return &domain.Cell{
		ReadableHash: path.ReadableHash(),
		NumericHash:  path.NumericHash(),
		Precision:    path.Precision(),
		Octant:       path.Octant,
		Levels:       levels,
		Center:       domain.GeoPoint{Lat: lat, Lon: lon},
		Corners:      corners,
		Bounds:       domain.BoundsOf(corners),
	}
}
