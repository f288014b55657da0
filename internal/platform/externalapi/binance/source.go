// Package binance provides a candle source backed by Binance spot klines.
package binance

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"

	"github.com/Kaligetsagency/aifx/internal/feature/candles/domain/entity"
	"github.com/Kaligetsagency/aifx/internal/feature/candles/usecase"
)

// maxLimit is the largest page the spot klines endpoint serves.
const maxLimit = 1000

// Config holds Binance REST settings. Klines are public, so no keys are needed.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

var intervals = map[int]string{
	60:     "1m",
	180:    "3m",
	300:    "5m",
	900:    "15m",
	1800:   "30m",
	3600:   "1h",
	7200:   "2h",
	14400:  "4h",
	21600:  "6h",
	28800:  "8h",
	43200:  "12h",
	86400:  "1d",
	259200: "3d",
	604800: "1w",
}

// Interval maps a candle width in seconds to a Binance kline interval.
func Interval(granularity int) (string, bool) {
	iv, ok := intervals[granularity]
	return iv, ok
}

// Source fetches klines through the go-binance SDK.
type Source struct {
	client *binance.Client
}

var _ usecase.CandleSource = (*Source)(nil)

// NewSource returns a Source using httpClient for transport.
func NewSource(cfg Config, httpClient *http.Client) *Source {
	client := binance.NewClient("", "")
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		client.BaseURL = base
	}
	if httpClient != nil {
		client.HTTPClient = httpClient
	} else if cfg.Timeout > 0 {
		client.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Source{client: client}
}

// FetchCandles returns the latest count klines. Symbols like "BTC/USDT" are
// accepted and sent as "BTCUSDT".
func (s *Source) FetchCandles(ctx context.Context, symbol string, granularity, count int) ([]entity.Candle, error) {
	interval, ok := Interval(granularity)
	if !ok {
		return nil, fmt.Errorf("binance: %w: %ds", entity.ErrUnsupportedGranularity, granularity)
	}
	if count <= 0 || count > maxLimit {
		count = maxLimit
	}

	kls, err := s.client.NewKlinesService().
		Symbol(exchangeSymbol(symbol)).
		Interval(interval).
		Limit(count).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance: klines: %w", err)
	}

	out := make([]entity.Candle, 0, len(kls))
	for _, kl := range kls {
		if kl == nil {
			continue
		}
		c, err := toCandle(kl)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func exchangeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.NewReplacer("/", "", "-", "", "_", "").Replace(s)
}

func toCandle(kl *binance.Kline) (entity.Candle, error) {
	var err error
	parse := func(name, raw string) float64 {
		if err != nil {
			return 0
		}
		v, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			err = fmt.Errorf("binance: parse %s %q: %w", name, raw, perr)
		}
		return v
	}

	c := entity.Candle{
		Timestamp: kl.OpenTime / 1000,
		Open:      parse("open", kl.Open),
		High:      parse("high", kl.High),
		Low:       parse("low", kl.Low),
		Close:     parse("close", kl.Close),
		Volume:    parse("volume", kl.Volume),
	}
	if err != nil {
		return entity.Candle{}, err
	}
	return c, nil
}
