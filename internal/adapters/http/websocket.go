package http

import (
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/geogrids/internal/adapters/nats"
	"github.com/samirrijal/geogrids/internal/pkg/cellwire"
	"github.com/samirrijal/geogrids/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to cell events.
type wsMessage struct {
	Action string `json:"action"`           // "subscribe" | "unsubscribe"
	Octant *int   `json:"octant,omitempty"` // 0-7; omitted means every octant
}

// wsSubject maps a client request to a NATS subject.
func wsSubject(octant *int) (string, bool) {
	if octant == nil {
		return natsadapter.SubjectCellsAll, true
	}
	if *octant < 0 || *octant > 7 {
		return "", false
	}
	return natsadapter.CellSubject(*octant), true
}

// supersededBy returns the active subjects that overlap subject and must be
// dropped when it is added. The catch-all and single octants are exclusive,
// so a client never receives the same event twice.
func supersededBy(subject string, active map[string]*nats.Subscription) []string {
	var drop []string
	for s := range active {
		if s == subject {
			continue
		}
		if subject == natsadapter.SubjectCellsAll || s == natsadapter.SubjectCellsAll {
			drop = append(drop, s)
		}
	}
	sort.Strings(drop)
	return drop
}

// WebSocketHandler returns a handler that relays cell events from NATS to
// connected clients as JSON. Clients start subscribed to every octant.
// Subscribing to one octant replaces the catch-all, and subscribing to every
// octant replaces single-octant subscriptions.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		relay := func(msg *nats.Msg) {
			ev, err := cellwire.UnmarshalEvent(msg.Data)
			if err != nil {
				slog.Warn("ws drop malformed cell event", "subject", msg.Subject, "error", err)
				return
			}
			_ = writeJSON(ev)
		}

		subscribe := func(subject string) error {
			s, err := nc.Subscribe(subject, relay)
			if err != nil {
				return err
			}
			subs[subject] = s
			return nil
		}

		if nc == nil {
			_ = writeJSON(map[string]string{"error": "event stream unavailable"})
			return
		}
		if err := subscribe(natsadapter.SubjectCellsAll); err != nil {
			slog.Error("ws default subscribe failed", "error", err)
			return
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			subject, ok := wsSubject(m.Octant)
			if !ok {
				_ = writeJSON(map[string]string{"error": "octant must be 0-7"})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				if err := subscribe(subject); err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				replaced := supersededBy(subject, subs)
				for _, old := range replaced {
					_ = subs[old].Unsubscribe()
					delete(subs, old)
				}
				_ = writeJSON(map[string]any{"status": "subscribed", "subject": subject, "replaced": replaced})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
