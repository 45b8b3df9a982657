package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	natsadapter "github.com/samirrijal/geogrids/internal/adapters/nats"
	"github.com/samirrijal/geogrids/internal/pkg/cellwire"
)

func newTailCmd() *cobra.Command {
	var url string
	var octant int
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Stream published cell events as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			subject := natsadapter.SubjectCellsAll
			if cmd.Flags().Changed("octant") {
				if octant < 0 || octant > 7 {
					return fmt.Errorf("octant must be 0-7, got %d", octant)
				}
				subject = natsadapter.CellSubject(octant)
			}

			nc, err := natsadapter.RawConn(url)
			if err != nil {
				return err
			}
			defer nc.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return tail(ctx, cmd, nc, subject)
		},
	}
	cmd.Flags().StringVar(&url, "nats", nats.DefaultURL, "NATS server URL")
	cmd.Flags().IntVar(&octant, "octant", 0, "Only show cells in this octant (0-7)")
	return cmd
}

func tail(ctx context.Context, cmd *cobra.Command, nc *nats.Conn, subject string) error {
	msgs := make(chan *nats.Msg, 256)
	sub, err := nc.ChanSubscribe(subject, msgs)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	enc := json.NewEncoder(cmd.OutOrStdout())
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-msgs:
			ev, err := cellwire.UnmarshalEvent(msg.Data)
			if err != nil {
				slog.Warn("skip malformed cell event", "subject", msg.Subject, "error", err)
				continue
			}
			if err := enc.Encode(ev); err != nil {
				return err
			}
		}
	}
}
