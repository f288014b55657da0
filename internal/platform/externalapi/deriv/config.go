// Package deriv provides a candle source backed by the Deriv WebSocket API.
package deriv

import "time"

const (
	// DefaultURL is the public Deriv WebSocket endpoint.
	DefaultURL = "wss://ws.derivws.com/websockets/v3"
	// DefaultAppID is Deriv's shared demo application id.
	DefaultAppID = "1089"
	// DefaultTimeout bounds a single ticks_history round trip.
	DefaultTimeout = 15 * time.Second
)

// Config holds connection settings for the Deriv API.
type Config struct {
	URL     string        // WebSocket endpoint without query string
	AppID   string        // application id sent as the app_id query parameter
	Timeout time.Duration // handshake and read timeout when ctx carries no deadline
}

func (c *Config) defaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.AppID == "" {
		c.AppID = DefaultAppID
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}
