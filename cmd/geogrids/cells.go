package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/samirrijal/geogrids/internal/core/domain"
	"github.com/samirrijal/geogrids/internal/core/usecases"
)

func newEncodeCmd(opts *rootOptions, grid *usecases.GridService) *cobra.Command {
	var lat, lon float64
	var precision int
	cmd := &cobra.Command{
		Use:   "encode --lat <lat> --lon <lon>",
		Short: "Hash a coordinate into its cell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cell, err := grid.Encode(cmd.Context(), lat, lon, precision)
			if err != nil {
				return err
			}
			return printCell(cmd.OutOrStdout(), opts, cell)
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude in degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude in degrees")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	addPrecisionFlag(cmd, &precision)
	return cmd
}

func newLocateCmd(opts *rootOptions, grid *usecases.GridService) *cobra.Command {
	var numeric uint64
	var precision int
	cmd := &cobra.Command{
		Use:   "locate [readable-hash]",
		Short: "Resolve a readable hash, or --numeric with --precision, into its cell",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cell *domain.Cell
			var err error
			switch {
			case len(args) == 1:
				cell, err = grid.LocateReadable(cmd.Context(), args[0])
			case cmd.Flags().Changed("numeric"):
				cell, err = grid.LocateNumeric(cmd.Context(), numeric, precision)
			default:
				return errors.New("a readable hash or --numeric is required")
			}
			if err != nil {
				return err
			}
			return printCell(cmd.OutOrStdout(), opts, cell)
		},
	}
	cmd.Flags().Uint64Var(&numeric, "numeric", 0, "Numeric hash")
	addPrecisionFlag(cmd, &precision)
	return cmd
}

func newAreaCmd(grid *usecases.GridService) *cobra.Command {
	return &cobra.Command{
		Use:   "area <readable-hash>",
		Short: "Print a cell's outline and centre as GeoJSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := grid.AreaGeoJSON(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func newPrecisionsCmd(opts *rootOptions, grid *usecases.GridService) *cobra.Command {
	return &cobra.Command{
		Use:   "precisions",
		Short: "List the precisions that map onto whole subdivision levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), grid.Precisions())
			}
			for _, p := range grid.Precisions() {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

func printCell(w io.Writer, opts *rootOptions, cell *domain.Cell) error {
	if opts.jsonOut {
		return writeJSON(w, cell)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "readable\t%s\n", cell.ReadableHash)
	fmt.Fprintf(tw, "numeric\t%d\n", cell.NumericHash)
	fmt.Fprintf(tw, "precision\t%d\n", cell.Precision)
	fmt.Fprintf(tw, "center\t%.6f, %.6f\n", cell.Center.Lat, cell.Center.Lon)
	for i, c := range cell.Corners {
		fmt.Fprintf(tw, "corner %d\t%.6f, %.6f\n", i, c.Lat, c.Lon)
	}
	return tw.Flush()
}
