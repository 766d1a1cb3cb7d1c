// Package ditto consumes twin events from an Eclipse Ditto WebSocket
// endpoint and extracts raw GPS samples from them.
package ditto

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// subscribeCommand limits the event stream to things carrying a GPS feature.
const subscribeCommand = "START-SEND-EVENTS?filter=exists(features/gps)"

const reconnectDelay = 5 * time.Second

// GPSFunc receives one raw GPS sample per twin event.
type GPSFunc func(carID string, lat, lon float64)

type Client struct {
	wsURL     string
	username  string
	password  string
	onGPS     GPSFunc
	connected atomic.Bool
}

func NewClient(wsURL, username, password string, onGPS GPSFunc) *Client {
	return &Client{wsURL: wsURL, username: username, password: password, onGPS: onGPS}
}

func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// Run consumes the event stream until ctx is cancelled, redialing with a
// fixed backoff after any session failure.
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := c.consume(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("ditto session: %v", err)
		}
		c.connected.Store(false)

		log.Printf("reconnecting to ditto in %s", reconnectDelay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *Client) consume(ctx context.Context) error {
	header := http.Header{}
	auth := base64.StdEncoding.EncodeToString([]byte(c.username + ":" + c.password))
	header.Set("Authorization", "Basic "+auth)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL, header)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.wsURL, err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(subscribeCommand)); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	c.connected.Store(true)
	log.Printf("connected to ditto at %s, subscribed to gps events", c.wsURL)

	// unblock ReadMessage when ctx is cancelled
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		carID, lat, lon, ok := parseGPSEvent(raw)
		if !ok {
			continue
		}
		c.onGPS(carID, lat, lon)
	}
}

type twinEvent struct {
	ThingID string `json:"thingId"`
	Topic   string `json:"topic"`
	Value   struct {
		GPS struct {
			Properties struct {
				Latitude  *float64 `json:"latitude"`
				Longitude *float64 `json:"longitude"`
			} `json:"properties"`
		} `json:"gps"`
	} `json:"value"`
}

// parseGPSEvent extracts (car_id, lat, lon) from a twin event. Protocol
// acknowledgements and events without a complete GPS feature are skipped.
func parseGPSEvent(raw []byte) (string, float64, float64, bool) {
	if len(raw) == 0 || raw[0] == ':' {
		return "", 0, 0, false
	}

	var ev twinEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return "", 0, 0, false
	}

	carID := carIDFromEvent(&ev)
	if carID == "" {
		return "", 0, 0, false
	}

	props := ev.Value.GPS.Properties
	if props.Latitude == nil || props.Longitude == nil {
		return "", 0, 0, false
	}
	return carID, *props.Latitude, *props.Longitude, true
}

func carIDFromEvent(ev *twinEvent) string {
	if ev.ThingID != "" {
		parts := strings.Split(ev.ThingID, ":")
		return parts[len(parts)-1]
	}
	if ev.Topic != "" {
		parts := strings.Split(ev.Topic, "/")
		if len(parts) >= 2 {
			return parts[1]
		}
	}
	return ""
}
