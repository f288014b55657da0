package deriv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/Kaligetsagency/aifx/internal/feature/candles/domain/entity"
	"github.com/Kaligetsagency/aifx/internal/feature/candles/usecase"
)

var (
	// ErrAPI is returned when Deriv answers with an error envelope.
	ErrAPI = errors.New("deriv api error")
	// ErrEmptyHistory is returned when the reply carries no candles.
	ErrEmptyHistory = errors.New("deriv returned no candles")
)

// historyRequest is the ticks_history call in candle style.
type historyRequest struct {
	TicksHistory    string `json:"ticks_history"`
	End             string `json:"end"`
	Count           int    `json:"count"`
	Style           string `json:"style"`
	Granularity     int    `json:"granularity"`
	AdjustStartTime int    `json:"adjust_start_time"`
	ReqID           int64  `json:"req_id"`
}

// Source fetches candle history over a short-lived WebSocket connection.
// Each call dials, sends one request and waits for the matching reply.
type Source struct {
	cfg    Config
	dialer *websocket.Dialer
	reqID  atomic.Int64
}

var _ usecase.CandleSource = (*Source)(nil)

// NewSource returns a Source for cfg, filling unset fields with defaults.
func NewSource(cfg Config) (*Source, error) {
	cfg.defaults()
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("deriv: parse url: %w", err)
	}
	return &Source{
		cfg:    cfg,
		dialer: &websocket.Dialer{HandshakeTimeout: cfg.Timeout},
	}, nil
}

func (s *Source) endpoint() string {
	u, _ := url.Parse(s.cfg.URL)
	q := u.Query()
	q.Set("app_id", s.cfg.AppID)
	u.RawQuery = q.Encode()
	return u.String()
}

// FetchCandles requests the latest count candles of the given width in seconds.
func (s *Source) FetchCandles(ctx context.Context, symbol string, granularity, count int) ([]entity.Candle, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	conn, _, err := s.dialer.DialContext(ctx, s.endpoint(), nil)
	if err != nil {
		return nil, fmt.Errorf("deriv: dial: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Debug("failed to close deriv connection", "error", err)
		}
	}()

	// Unblock ReadMessage when the caller gives up.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(dl)
	}

	req := historyRequest{
		TicksHistory:    symbol,
		End:             "latest",
		Count:           count,
		Style:           "candles",
		Granularity:     granularity,
		AdjustStartTime: 1,
		ReqID:           s.reqID.Add(1),
	}
	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("deriv: send request: %w", err)
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("deriv: %w", ctxErr)
			}
			return nil, fmt.Errorf("deriv: read reply: %w", err)
		}
		if !gjson.ValidBytes(raw) {
			return nil, errors.New("deriv: reply is not JSON")
		}

		reply := gjson.ParseBytes(raw)
		if id := reply.Get("req_id"); id.Exists() && id.Int() != req.ReqID {
			continue
		}
		if e := reply.Get("error"); e.Exists() {
			return nil, fmt.Errorf("%w: %s: %s", ErrAPI, e.Get("code").String(), e.Get("message").String())
		}
		if reply.Get("msg_type").String() != "candles" {
			continue
		}
		return parseCandles(reply.Get("candles"), symbol)
	}
}

func parseCandles(arr gjson.Result, symbol string) ([]entity.Candle, error) {
	if !arr.IsArray() || len(arr.Array()) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyHistory, symbol)
	}

	items := arr.Array()
	out := make([]entity.Candle, 0, len(items))
	for i, c := range items {
		epoch := c.Get("epoch")
		if !epoch.Exists() {
			return nil, fmt.Errorf("deriv: candle %d: missing epoch", i)
		}
		// Volume is not part of Deriv candles.
		out = append(out, entity.Candle{
			Timestamp: epoch.Int(),
			Open:      c.Get("open").Float(),
			High:      c.Get("high").Float(),
			Low:       c.Get("low").Float(),
			Close:     c.Get("close").Float(),
		})
	}
	return out, nil
}
