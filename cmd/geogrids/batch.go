package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/samirrijal/geogrids/internal/core/domain"
	"github.com/samirrijal/geogrids/internal/core/usecases"
)

func newBatchCmd(grid *usecases.GridService) *cobra.Command {
	var in string
	var precision int
	cmd := &cobra.Command{
		Use:   "batch [--in points.csv]",
		Short: "Hash lat,lon rows from CSV and write them back with their hashes",
		Long: `batch reads "lat,lon" rows from --in (or stdin) and writes
"lat,lon,readable_hash,numeric_hash,precision" rows to stdout. A leading
header row is skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := cmd.InOrStdin()
			if in != "" && in != "-" {
				f, err := os.Open(in)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			return runBatch(cmd, grid, r, precision)
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "Input CSV file (default stdin)")
	addPrecisionFlag(cmd, &precision)
	return cmd
}

func runBatch(cmd *cobra.Command, grid *usecases.GridService, r io.Reader, precision int) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	w := csv.NewWriter(cmd.OutOrStdout())
	if err := w.Write([]string{"lat", "lon", "readable_hash", "numeric_hash", "precision"}); err != nil {
		return err
	}

	flush := func(points []domain.GeoPoint) error {
		if len(points) == 0 {
			return nil
		}
		cells, err := grid.EncodeBatch(cmd.Context(), points, precision)
		if err != nil {
			return err
		}
		for i, c := range cells {
			if err := w.Write([]string{
				strconv.FormatFloat(points[i].Lat, 'f', -1, 64),
				strconv.FormatFloat(points[i].Lon, 'f', -1, 64),
				c.ReadableHash,
				strconv.FormatUint(c.NumericHash, 10),
				strconv.Itoa(c.Precision),
			}); err != nil {
				return err
			}
		}
		return nil
	}

	points := make([]domain.GeoPoint, 0, grid.MaxBatch())
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		p, err := parsePoint(rec)
		if err != nil {
			if line == 1 {
				continue // header
			}
			return fmt.Errorf("line %d: %w", line, err)
		}
		points = append(points, p)
		if len(points) == grid.MaxBatch() {
			if err := flush(points); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			points = points[:0]
		}
	}
	if err := flush(points); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func parsePoint(rec []string) (domain.GeoPoint, error) {
	if len(rec) < 2 {
		return domain.GeoPoint{}, errors.New("expected lat,lon")
	}
	lat, err := strconv.ParseFloat(rec[0], 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("lat: %w", err)
	}
	lon, err := strconv.ParseFloat(rec[1], 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("lon: %w", err)
	}
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}
