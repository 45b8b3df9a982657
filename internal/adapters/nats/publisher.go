package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geogrids/internal/core/domain"
	"github.com/samirrijal/geogrids/internal/pkg/cellwire"
	"github.com/samirrijal/geogrids/internal/pkg/metrics"
)

// Subjects. Cell events are keyed by octant so consumers can filter by face.
const (
	SubjectCells     = "geogrids.cells"
	SubjectCellsAll  = SubjectCells + ".>"
	SubjectEncode    = "geogrids.encode"
	SubjectEncodeAll = SubjectEncode + ".>"

	contentTypeHeader = "Content-Type"
	contentTypeCell   = "application/x-protobuf"
	contentTypeJob    = "application/json"
)

// CellSubject returns the subject carrying events for one octant.
func CellSubject(octant int) string {
	return SubjectCells + "." + strconv.Itoa(octant)
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      "GEOGRIDS_CELLS",
			Subjects:  []string{SubjectCellsAll},
			Retention: nats.InterestPolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "GEOGRIDS_REQUESTS",
			Subjects:  []string{SubjectEncodeAll},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishCell sends a cell event in the cellwire binary format.
func (p *Publisher) PublishCell(ctx context.Context, event *domain.CellEvent) error {
	msg := nats.NewMsg(CellSubject(event.Cell.Octant))
	msg.Header.Set(contentTypeHeader, contentTypeCell)
	msg.Data = cellwire.MarshalEvent(event)
	return p.publish(ctx, msg, msg.Subject)
}

// PublishBatchRequest queues a batch job for the worker. The job id doubles
// as the JetStream message id so resubmissions are deduplicated.
func (p *Publisher) PublishBatchRequest(ctx context.Context, job *domain.BatchJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	msg := nats.NewMsg(SubjectEncode + "." + job.ID)
	msg.Header.Set(contentTypeHeader, contentTypeJob)
	msg.Header.Set(nats.MsgIdHdr, job.ID)
	msg.Data = data
	return p.publish(ctx, msg, SubjectEncode)
}

// publish sends msg and counts it under label. Labels must come from a
// fixed set; job subjects carry an id and are counted under SubjectEncode.
func (p *Publisher) publish(ctx context.Context, msg *nats.Msg, label string) error {
	if _, err := p.js.PublishMsg(msg, nats.Context(ctx)); err != nil {
		metrics.EventPublishErrors.WithLabelValues(label).Inc()
		return err
	}
	metrics.EventsPublished.WithLabelValues(label).Inc()
	return nil
}

// Ping reports whether the connection is up.
func (p *Publisher) Ping(ctx context.Context) error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats: %s", p.conn.Status())
	}
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("geogrids"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
