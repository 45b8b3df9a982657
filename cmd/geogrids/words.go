package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samirrijal/geogrids/internal/core/domain"
	"github.com/samirrijal/geogrids/internal/core/usecases"
	"github.com/samirrijal/geogrids/internal/pkg/encoder"
	"github.com/samirrijal/geogrids/internal/pkg/gdgg"
	"github.com/samirrijal/geogrids/internal/pkg/wordfile"
)

func newWordsCmd(opts *rootOptions, grid *usecases.GridService) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Spell hashes with a word-list file",
	}
	cmd.PersistentFlags().StringVarP(&file, "file", "f", "", "Word-list YAML file")
	_ = cmd.MarkPersistentFlagRequired("file")

	cmd.AddCommand(newWordsEncodeCmd(opts, grid, &file), newWordsDecodeCmd(opts, grid, &file))
	return cmd
}

func loadEncoder(path string) (*domain.Wordlist, *encoder.Encoder, error) {
	wl, err := wordfile.Load(path)
	if err != nil {
		return nil, nil, err
	}
	enc, err := encoder.New(fmt.Sprintf("%s@%d", wl.Name, wl.Version), wl.Words, wl.Separator)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return wl, enc, nil
}

func newWordsEncodeCmd(opts *rootOptions, grid *usecases.GridService, file *string) *cobra.Command {
	var hash uint64
	var lat, lon float64
	var precision int
	cmd := &cobra.Command{
		Use:   "encode (--hash <n> | --lat <lat> --lon <lon>)",
		Short: "Spell a numeric hash, or a coordinate's cell, with words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wl, enc, err := loadEncoder(*file)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			switch {
			case flags.Changed("hash"):
			case flags.Changed("lat") && flags.Changed("lon"):
				cell, err := grid.Encode(cmd.Context(), lat, lon, precision)
				if err != nil {
					return err
				}
				hash, precision = cell.NumericHash, cell.Precision
			default:
				return errors.New("either --hash or --lat and --lon are required")
			}
			if precision < 1 || precision > 64 {
				return fmt.Errorf("%w: %d", usecases.ErrInvalidPrecision, precision)
			}

			out := domain.WordEncoding{
				Wordlist:  wl.Name,
				Version:   wl.Version,
				Hash:      hash,
				Precision: precision,
				Text:      enc.HashToString(hash, precision),
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out.Text)
			return err
		},
	}
	cmd.Flags().Uint64Var(&hash, "hash", 0, "Numeric hash")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude in degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude in degrees")
	addPrecisionFlag(cmd, &precision)
	return cmd
}

func newWordsDecodeCmd(opts *rootOptions, grid *usecases.GridService, file *string) *cobra.Command {
	var locate bool
	cmd := &cobra.Command{
		Use:   "decode <text>...",
		Short: "Read words back into a numeric hash",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wl, enc, err := loadEncoder(*file)
			if err != nil {
				return err
			}

			// Separate shell words are joined back with the list's separator.
			text := wordfile.Normalize(strings.Join(args, enc.Separator()))
			dec, err := enc.StringToHash(text)
			if err != nil {
				return err
			}

			out := struct {
				domain.WordDecoding
				Cell *domain.Cell `json:"cell,omitempty"`
			}{
				WordDecoding: domain.WordDecoding{
					Wordlist:  wl.Name,
					Version:   wl.Version,
					Hash:      dec.Hash,
					Precision: dec.Precision,
					Truncated: dec.Truncated,
					Offending: dec.Offending,
				},
			}
			if locate && dec.Precision >= 3 && dec.Precision <= gdgg.MaxPrecision {
				out.Cell, err = grid.LocateNumeric(cmd.Context(), dec.Hash, dec.Precision)
				if err != nil {
					return err
				}
			}

			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "hash %d precision %d\n", dec.Hash, dec.Precision)
			if dec.Truncated {
				fmt.Fprintf(w, "truncated at %q\n", dec.Offending)
			}
			if out.Cell != nil {
				fmt.Fprintf(w, "cell %s at %.6f, %.6f\n", out.Cell.ReadableHash, out.Cell.Center.Lat, out.Cell.Center.Lon)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&locate, "locate", false, "Resolve the decoded hash into its cell")
	return cmd
}
