package chart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	candle "github.com/Kaligetsagency/aifx/internal/feature/candles/domain/entity"

	"github.com/Kaligetsagency/aifx/internal/feature/analysis/domain/entity"
)

func sampleAnalysis(n int) *entity.Analysis {
	cs := make([]candle.EnrichedCandle, n)
	for i := range cs {
		price := 100 + float64(i)
		var sma, bb, rsi candle.Point
		if i >= 2 {
			sma = candle.Point{price - 1}
			bb = candle.Point{price + 2, price, price - 2}
			rsi = candle.Point{55}
		}
		cs[i] = candle.EnrichedCandle{
			Candle: candle.Candle{Timestamp: 1700000000 + int64(i)*60, Open: price, High: price + 1, Low: price - 1, Close: price + 0.5},
			Indicators: []candle.IndicatorValue{
				{Name: "sma3", Point: sma},
				{Name: "bbands", Fields: []string{"upper", "middle", "lower"}, Point: bb},
				{Name: "rsi14", Point: rsi},
				{Name: "macd", Fields: []string{"macd", "signal", "histogram"}, Point: nil},
			},
		}
	}
	confidence := 7
	return &entity.Analysis{
		Asset:     "frxEURUSD",
		Timeframe: "1m",
		Strategy:  "analyst",
		Candles:   cs,
		Recommendation: entity.Recommendation{
			EntryPoint: 104.5, StopLoss: 103.25, TakeProfit: 107.75, ConfidenceScore: &confidence,
		},
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleAnalysis(5)))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "FRXEURUSD 1m")
	assert.Contains(t, html, "confidence 7/10")
	assert.Contains(t, html, "sma3")
	assert.Contains(t, html, "bbands.upper")
	assert.Contains(t, html, "RSI14")
	assert.Contains(t, html, "107.75")
	assert.NotContains(t, html, "macd.signal", "oscillator composites are not drawn on the price axis")
}

func TestRender_NoCandles(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.ErrorIs(t, Render(&buf, &entity.Analysis{}), ErrNoCandles)
	assert.ErrorIs(t, Render(&buf, nil), ErrNoCandles)
}

func TestToLineData_AbsentValuesAreNil(t *testing.T) {
	t.Parallel()

	a := sampleAnalysis(4)
	data := toLineData(a.Candles, "bbands", 2)

	require.Len(t, data, 4)
	assert.Nil(t, data[0].Value)
	assert.Nil(t, data[1].Value)
	assert.Equal(t, 100.0, data[2].Value)
	assert.Equal(t, 101.0, data[3].Value)
}

func TestIsPriceOverlay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v    candle.IndicatorValue
		want bool
	}{
		{candle.IndicatorValue{Name: "sma20"}, true},
		{candle.IndicatorValue{Name: "ema50"}, true},
		{candle.IndicatorValue{Name: "bbands", Fields: []string{"upper", "middle", "lower"}}, true},
		{candle.IndicatorValue{Name: "rsi14"}, false},
		{candle.IndicatorValue{Name: "macd", Fields: []string{"macd", "signal", "histogram"}}, false},
		{candle.IndicatorValue{Name: "atr14"}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isPriceOverlay(tt.v), tt.v.Name)
	}
}
