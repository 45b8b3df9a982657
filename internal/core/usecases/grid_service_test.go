package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/geogrids/internal/core/domain"
	"github.com/samirrijal/geogrids/internal/core/usecases"
	"github.com/samirrijal/geogrids/internal/pkg/gdgg"
)

func TestGridService_Encode(t *testing.T) {
	pub := &mockPublisher{}
	svc := usecases.NewGridService(pub, 10, true)

	cell, err := svc.Encode(context.Background(), 45, 45, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cell.ReadableHash != "20" {
		t.Errorf("expected hash 20, got %s", cell.ReadableHash)
	}
	if cell.NumericHash != 2 {
		t.Errorf("expected numeric 2, got %d", cell.NumericHash)
	}
	if cell.Precision != 5 || cell.Octant != 2 {
		t.Errorf("unexpected precision/octant: %d/%d", cell.Precision, cell.Octant)
	}
	if len(cell.Corners) != 3 {
		t.Errorf("expected 3 corners, got %d", len(cell.Corners))
	}
	if cell.Source == nil || cell.Source.Lat != 45 {
		t.Errorf("expected source point to be kept, got %+v", cell.Source)
	}
	if len(pub.cells) != 1 || pub.cells[0].Cell.ReadableHash != "20" {
		t.Errorf("expected one published event, got %+v", pub.cells)
	}
}

func TestGridService_Encode_Validation(t *testing.T) {
	svc := usecases.NewGridService(nil, 10, false)
	ctx := context.Background()

	if _, err := svc.Encode(ctx, 91, 0, 25); !errors.Is(err, usecases.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
	if _, err := svc.Encode(ctx, 0, -181, 25); !errors.Is(err, usecases.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
	for _, p := range []int{0, 2, 64} {
		_, err := svc.Encode(ctx, 0, 0, p)
		if !errors.Is(err, usecases.ErrInvalidPrecision) {
			t.Errorf("precision %d: expected ErrInvalidPrecision, got %v", p, err)
		}
		if !usecases.IsValidation(err) {
			t.Errorf("precision %d: expected a validation error", p)
		}
	}
}

func TestGridService_Encode_PublishFailureIsIgnored(t *testing.T) {
	pub := &mockPublisher{cellErr: errors.New("broker down")}
	svc := usecases.NewGridService(pub, 10, true)

	if _, err := svc.Encode(context.Background(), 10, 10, 9); err != nil {
		t.Fatalf("publish failure must not fail encode: %v", err)
	}
}

func TestGridService_Locate(t *testing.T) {
	svc := usecases.NewGridService(nil, 10, false)
	ctx := context.Background()

	byNumeric, err := svc.LocateNumeric(ctx, 418, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byNumeric.ReadableHash != "2013" {
		t.Errorf("expected 2013, got %s", byNumeric.ReadableHash)
	}

	byReadable, err := svc.LocateReadable(ctx, "2013")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byReadable.Center != byNumeric.Center {
		t.Errorf("centres differ: %+v vs %+v", byReadable.Center, byNumeric.Center)
	}
	if byReadable.NumericHash != 418 {
		t.Errorf("expected 418, got %d", byReadable.NumericHash)
	}

	if _, err := svc.LocateReadable(ctx, "9"); !errors.Is(err, gdgg.ErrInvalidReadableHash) {
		t.Errorf("expected ErrInvalidReadableHash, got %v", err)
	}
}

func TestGridService_LocateReadable_PrecisionLimit(t *testing.T) {
	svc := usecases.NewGridService(nil, 10, false)
	ctx := context.Background()

	deepest := "2" + strings.Repeat("3", 30)
	cell, err := svc.LocateReadable(ctx, deepest)
	if err != nil {
		t.Fatalf("unexpected error at 30 levels: %v", err)
	}
	if cell.Precision != gdgg.MaxPrecision {
		t.Errorf("expected precision %d, got %d", gdgg.MaxPrecision, cell.Precision)
	}
	twin, err := svc.LocateNumeric(ctx, cell.NumericHash, cell.Precision)
	if err != nil {
		t.Fatalf("numeric twin rejected: %v", err)
	}
	if twin.ReadableHash != deepest {
		t.Errorf("numeric twin is %s, want %s", twin.ReadableHash, deepest)
	}

	tooDeep := "2" + strings.Repeat("3", 31)
	if _, err := svc.LocateReadable(ctx, tooDeep); !errors.Is(err, usecases.ErrInvalidPrecision) {
		t.Errorf("expected ErrInvalidPrecision for 31 levels, got %v", err)
	}
	if _, err := svc.AreaGeoJSON(ctx, "2"+strings.Repeat("3", 35)); !errors.Is(err, usecases.ErrInvalidPrecision) {
		t.Errorf("expected ErrInvalidPrecision for area, got %v", err)
	}
}

func TestGridService_Locate_PoleCell(t *testing.T) {
	svc := usecases.NewGridService(nil, 10, false)
	cell, err := svc.LocateReadable(context.Background(), "0111")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cell.Corners) != 4 {
		t.Errorf("expected 4 corners for a pole cell, got %d", len(cell.Corners))
	}
	if cell.Bounds.MaxLat < 89.999 {
		t.Errorf("expected bounds to reach the pole, got %+v", cell.Bounds)
	}
}

func TestGridService_AreaGeoJSON(t *testing.T) {
	svc := usecases.NewGridService(nil, 10, false)
	data, err := svc.AreaGeoJSON(context.Background(), "2013")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(data, &fc); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 2 {
		t.Fatalf("unexpected collection: %s with %d features", fc.Type, len(fc.Features))
	}
	if fc.Features[0].Geometry.Type != "Polygon" || fc.Features[1].Geometry.Type != "Point" {
		t.Errorf("unexpected geometries: %s, %s", fc.Features[0].Geometry.Type, fc.Features[1].Geometry.Type)
	}
	if fc.Features[0].Properties["readable_hash"] != "2013" {
		t.Errorf("missing readable_hash property: %v", fc.Features[0].Properties)
	}
}

func TestGridService_EncodeBatch(t *testing.T) {
	svc := usecases.NewGridService(nil, 3, false)
	ctx := context.Background()

	points := []domain.GeoPoint{{Lat: 45, Lon: 45}, {Lat: 80, Lon: -170}}
	cells, err := svc.EncodeBatch(ctx, points, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cells) != 2 || cells[0].ReadableHash != "20" || cells[1].ReadableHash != "01" {
		t.Errorf("unexpected cells: %+v", cells)
	}

	tooMany := make([]domain.GeoPoint, 4)
	if _, err := svc.EncodeBatch(ctx, tooMany, 5); !errors.Is(err, usecases.ErrBatchTooLarge) {
		t.Errorf("expected ErrBatchTooLarge, got %v", err)
	}

	bad := []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 100, Lon: 0}}
	if _, err := svc.EncodeBatch(ctx, bad, 5); !errors.Is(err, usecases.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestGridService_PublishCells(t *testing.T) {
	pub := &mockPublisher{}
	svc := usecases.NewGridService(pub, 10, false)
	cells := []domain.Cell{{ReadableHash: "20"}, {ReadableHash: "01"}}

	if err := svc.PublishCells(context.Background(), "job-1", cells); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pub.cells) != 2 || pub.cells[1].JobID != "job-1" {
		t.Errorf("unexpected events: %+v", pub.cells)
	}
}

func TestGridService_SubmitBatch(t *testing.T) {
	ctx := context.Background()

	if _, err := usecases.NewGridService(nil, 10, false).SubmitBatch(ctx, []domain.GeoPoint{{}}, 5); !errors.Is(err, usecases.ErrNoPublisher) {
		t.Errorf("expected ErrNoPublisher, got %v", err)
	}

	pub := &mockPublisher{}
	svc := usecases.NewGridService(pub, 10, false)
	if _, err := svc.SubmitBatch(ctx, nil, 5); !errors.Is(err, usecases.ErrEmptyBatch) {
		t.Errorf("expected ErrEmptyBatch, got %v", err)
	}

	job, err := svc.SubmitBatch(ctx, []domain.GeoPoint{{Lat: 1, Lon: 2}}, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.ID == "" {
		t.Error("expected a job id")
	}
	if len(pub.jobs) != 1 || pub.jobs[0].ID != job.ID {
		t.Errorf("expected the job to be published, got %+v", pub.jobs)
	}
}
