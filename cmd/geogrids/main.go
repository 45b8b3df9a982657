// Command geogrids hashes coordinates and spells hashes with word lists from
// the command line, without a database.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/samirrijal/geogrids/internal/core/usecases"
	"github.com/samirrijal/geogrids/internal/pkg/gdgg"
	"github.com/samirrijal/geogrids/internal/pkg/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	jsonOut  bool
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "geogrids",
		Short:        "Hash coordinates onto the octahedral triangle grid",
		SilenceUsage: true,
		Long: `geogrids hashes latitude/longitude pairs into grid cells, resolves
hashes back into cells and spells numeric hashes with word lists.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(opts.logLevel, "text")
		},
	}
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print JSON instead of text")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	grid := usecases.NewGridService(nil, 0, false)
	root.AddCommand(
		newEncodeCmd(opts, grid),
		newLocateCmd(opts, grid),
		newAreaCmd(grid),
		newPrecisionsCmd(opts, grid),
		newBatchCmd(grid),
		newWordsCmd(opts, grid),
		newTailCmd(),
	)
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func addPrecisionFlag(cmd *cobra.Command, p *int) {
	cmd.Flags().IntVarP(p, "precision", "p", gdgg.DefaultPrecision, "Hash precision in bits (3-63)")
}
