package snackapi

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/snackcounter/internal/errors"
	"github.com/abrezinsky/snackcounter/internal/models"
)

// Event is a decoded catalog change pushed by the server
type Event struct {
	Type   string
	Snack  *models.Snack  // created, updated
	ID     string         // deleted
	Snacks []models.Snack // snapshot
}

type wireMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// WatchURL returns the websocket endpoint for live events
func (c *HTTPClient) WatchURL() string {
	u, err := url.Parse(c.assetBase)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	return u.String()
}

// Watch streams catalog events to fn until ctx is done or the connection drops.
// It returns nil when ctx is canceled.
func (c *HTTPClient) Watch(ctx context.Context, fn func(Event)) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.httpClient.Timeout}
	conn, _, err := dialer.DialContext(ctx, c.WatchURL(), nil)
	if err != nil {
		return errors.Transport("failed to connect to event stream", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var msg wireMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return errors.Transport("event stream closed", err)
		}

		ev, err := decodeEvent(msg)
		if err != nil {
			c.log.Warn("Skipping malformed event", "type", msg.Type, "error", err)
			continue
		}
		fn(ev)
	}
}

func decodeEvent(msg wireMessage) (Event, error) {
	ev := Event{Type: msg.Type}
	switch msg.Type {
	case models.EventSnackCreated, models.EventSnackUpdated:
		var s models.Snack
		if err := json.Unmarshal(msg.Payload, &s); err != nil {
			return ev, err
		}
		ev.Snack = &s
	case models.EventSnackDeleted:
		var p struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return ev, err
		}
		ev.ID = p.ID
	case models.EventCatalogSnapshot:
		if err := json.Unmarshal(msg.Payload, &ev.Snacks); err != nil {
			return ev, err
		}
	}
	return ev, nil
}
