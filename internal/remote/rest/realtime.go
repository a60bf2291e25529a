package rest

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"duet-cli/internal/remote"
)

const heartbeatInterval = 30 * time.Second

// realtimeMessage is the phoenix-channel frame the change feed speaks. Only
// the event name matters to us: change events carry a row delta we ignore on
// purpose, since the consumer reloads the whole projection anyway.
type realtimeMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
}

// Subscribe opens the websocket change feed for one table. The channel is
// closed when ctx ends or the socket drops; there is no automatic reconnect,
// a dropped feed just means the view stops updating (callers may re-open).
func (c *Client) Subscribe(ctx context.Context, table remote.Table) (<-chan remote.Change, error) {
	wsURL, err := c.realtimeURL()
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, &remote.ReadError{Table: table, Err: err}
	}

	topic := "realtime:public:" + string(table)
	join := realtimeMessage{Topic: topic, Event: "phx_join", Payload: json.RawMessage(`{}`), Ref: "1"}
	if err := conn.WriteJSON(join); err != nil {
		conn.Close()
		return nil, &remote.ReadError{Table: table, Err: err}
	}

	out := make(chan remote.Change, 16)

	// Heartbeats keep the channel alive; the server drops silent sockets.
	go func() {
		t := time.NewTicker(heartbeatInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.Close()
				return
			case <-t.C:
				hb := realtimeMessage{Topic: "phoenix", Event: "heartbeat", Payload: json.RawMessage(`{}`), Ref: "hb"}
				if err := conn.WriteJSON(hb); err != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	go func() {
		defer close(out)
		defer conn.Close()
		for {
			var msg realtimeMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if ctx.Err() == nil {
					c.log.Warn("change feed closed", zap.String("table", string(table)), zap.Error(err))
				}
				return
			}
			if msg.Topic != topic {
				continue
			}
			switch kind := remote.ChangeKind(msg.Event); kind {
			case remote.ChangeInsert, remote.ChangeUpdate, remote.ChangeDelete:
				select {
				case out <- remote.Change{Table: table, Kind: kind}:
				default:
					// Consumer is mid-reload; the signal it will act on is
					// already queued, dropping this one loses nothing.
				}
			}
		}
	}()

	return out, nil
}

func (c *Client) realtimeURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/realtime/v1/websocket"
	q := u.Query()
	q.Set("apikey", c.anonKey)
	q.Set("vsn", "1.0.0")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
