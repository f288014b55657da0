package binance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adshao/go-binance/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kaligetsagency/aifx/internal/feature/candles/domain/entity"
)

func TestSource_FetchCandles_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "15m", r.URL.Query().Get("interval"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			[1700000000000,"100.0","110.0","95.0","105.0","12.5",1700000899999,"0",10,"0","0","0"],
			[1700000900000,"105.0","108.0","101.0","102.5","8",1700001799999,"0",7,"0","0","0"]
		]`))
	}))
	defer server.Close()

	src := NewSource(Config{BaseURL: server.URL}, server.Client())
	candles, err := src.FetchCandles(context.Background(), "btc/usdt", 900, 2)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	assert.Equal(t, entity.Candle{Timestamp: 1700000000, Open: 100, High: 110, Low: 95, Close: 105, Volume: 12.5}, candles[0])
	assert.Equal(t, int64(1700000900), candles[1].Timestamp)
	assert.Equal(t, 102.5, candles[1].Close)
}

func TestSource_FetchCandles_UnsupportedGranularity(t *testing.T) {
	t.Parallel()

	src := NewSource(Config{BaseURL: "http://127.0.0.1:1"}, nil)
	_, err := src.FetchCandles(context.Background(), "BTCUSDT", 45*60, 10)
	assert.True(t, errors.Is(err, entity.ErrUnsupportedGranularity))
}

func TestSource_FetchCandles_APIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	}))
	defer server.Close()

	src := NewSource(Config{BaseURL: server.URL}, server.Client())
	_, err := src.FetchCandles(context.Background(), "NOPE", 60, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "binance")
}

func TestInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		granularity int
		want        string
		ok          bool
	}{
		{60, "1m", true},
		{300, "5m", true},
		{3600, "1h", true},
		{14400, "4h", true},
		{86400, "1d", true},
		{604800, "1w", true},
		{2700, "", false},
	}
	for _, tt := range tests {
		got, ok := Interval(tt.granularity)
		assert.Equal(t, tt.want, got, "granularity %d", tt.granularity)
		assert.Equal(t, tt.ok, ok, "granularity %d", tt.granularity)
	}
}

func TestExchangeSymbol(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ETHUSDT", exchangeSymbol(" eth/usdt "))
	assert.Equal(t, "BTCUSDT", exchangeSymbol("BTC-USDT"))
	assert.Equal(t, "SOLUSDT", exchangeSymbol("SOLUSDT"))
}

func TestToCandle_InvalidNumber(t *testing.T) {
	t.Parallel()

	_, err := toCandle(&binance.Kline{OpenTime: 1700000000000, Open: "1", High: "x", Low: "1", Close: "1", Volume: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse high")
}
