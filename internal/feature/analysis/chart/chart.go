// Package chart renders an analysis as an interactive candlestick page.
package chart

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	candle "github.com/Kaligetsagency/aifx/internal/feature/candles/domain/entity"

	"github.com/Kaligetsagency/aifx/internal/feature/analysis/domain/entity"
)

// ErrNoCandles is returned when there is nothing to draw.
var ErrNoCandles = errors.New("chart: no candles")

const (
	colorBull  = "#26a69a"
	colorBear  = "#ef5350"
	colorEntry = "#2962ff"
	colorStop  = "#ef5350"
	colorTake  = "#26a69a"
	width      = "1200px"
	klineH     = "560px"
	oscH       = "220px"
)

var overlayColors = []string{"#f5a623", "#8e44ad", "#16a085", "#d35400", "#2c3e50"}

// Render writes an HTML page with the candles, price overlays (moving
// averages and Bollinger bands), entry/stop/take levels and an oscillator
// panel for every RSI-style indicator.
func Render(w io.Writer, a *entity.Analysis) error {
	if a == nil || len(a.Candles) == 0 {
		return ErrNoCandles
	}

	xAxis := buildXAxis(a.Candles)
	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: a.Asset + " " + a.Timeframe, Width: width, Height: klineH}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s %s", strings.ToUpper(a.Asset), a.Timeframe),
			Subtitle: subtitle(a),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	)
	kline.SetSeriesOptions(
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        colorBull,
			Color0:       colorBear,
			BorderColor:  colorBull,
			BorderColor0: colorBear,
		}),
	)
	kline.SetXAxis(xAxis)
	kline.AddSeries("Price", buildKlineSeries(a.Candles), levelMarkLines(a.Recommendation)...)

	if overlay := buildOverlay(xAxis, a.Candles); overlay != nil {
		kline.Overlap(overlay)
	}

	page := components.NewPage()
	page.AddCharts(kline)
	for _, osc := range buildOscillators(xAxis, a.Candles) {
		page.AddCharts(osc)
	}
	return page.Render(w)
}

func subtitle(a *entity.Analysis) string {
	r := a.Recommendation
	s := fmt.Sprintf("%s | entry %g | stop %g | take %g", a.Strategy, r.EntryPoint, r.StopLoss, r.TakeProfit)
	if r.ConfidenceScore != nil {
		s += fmt.Sprintf(" | confidence %d/10", *r.ConfidenceScore)
	}
	return s
}

func levelMarkLines(r entity.Recommendation) []charts.SeriesOpts {
	return []charts.SeriesOpts{
		charts.WithMarkLineNameYAxisItemOpts(
			opts.MarkLineNameYAxisItem{Name: "Entry", YAxis: r.EntryPoint},
			opts.MarkLineNameYAxisItem{Name: "Stop", YAxis: r.StopLoss},
			opts.MarkLineNameYAxisItem{Name: "Take", YAxis: r.TakeProfit},
		),
		charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Symbol:    []string{"none", "none"},
			LineStyle: &opts.LineStyle{Type: "dashed", Color: colorEntry},
			Label:     &opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"},
		}),
	}
}

func buildXAxis(cs []candle.EnrichedCandle) []string {
	x := make([]string, len(cs))
	for i, c := range cs {
		x[i] = time.Unix(c.Timestamp, 0).UTC().Format("01-02 15:04")
	}
	return x
}

func buildKlineSeries(cs []candle.EnrichedCandle) []opts.KlineData {
	data := make([]opts.KlineData, 0, len(cs))
	for _, c := range cs {
		data = append(data, opts.KlineData{Value: [4]float64{c.Open, c.Close, c.Low, c.High}})
	}
	return data
}

// isPriceOverlay reports whether the indicator is drawn on the price axis.
func isPriceOverlay(v candle.IndicatorValue) bool {
	n := strings.ToLower(v.Name)
	if len(v.Fields) == 0 {
		return strings.HasPrefix(n, "sma") || strings.HasPrefix(n, "ema")
	}
	return strings.HasPrefix(n, "bb")
}

func buildOverlay(xAxis []string, cs []candle.EnrichedCandle) *charts.Line {
	line := charts.NewLine()
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	line.SetXAxis(xAxis)

	added := 0
	for _, iv := range cs[len(cs)-1].Indicators {
		if !isPriceOverlay(iv) {
			continue
		}
		color := overlayColors[added%len(overlayColors)]
		if len(iv.Fields) == 0 {
			line.AddSeries(iv.Name, toLineData(cs, iv.Name, 0), charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 1.5}))
		} else {
			for fi, f := range iv.Fields {
				line.AddSeries(iv.Name+"."+f, toLineData(cs, iv.Name, fi), charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 1, Type: "dotted"}))
			}
		}
		added++
	}
	if added == 0 {
		return nil
	}
	return line
}

func buildOscillators(xAxis []string, cs []candle.EnrichedCandle) []*charts.Line {
	var out []*charts.Line
	for _, iv := range cs[len(cs)-1].Indicators {
		if len(iv.Fields) != 0 || !strings.HasPrefix(strings.ToLower(iv.Name), "rsi") {
			continue
		}
		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Width: width, Height: oscH}),
			charts.WithTitleOpts(opts.Title{Title: strings.ToUpper(iv.Name)}),
			charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		)
		line.SetXAxis(xAxis)
		line.AddSeries(iv.Name, toLineData(cs, iv.Name, 0),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithMarkLineNameYAxisItemOpts(
				opts.MarkLineNameYAxisItem{Name: "Overbought", YAxis: 70},
				opts.MarkLineNameYAxisItem{Name: "Oversold", YAxis: 30},
			),
			charts.WithMarkLineStyleOpts(opts.MarkLineStyle{LineStyle: &opts.LineStyle{Type: "dashed"}}),
		)
		out = append(out, line)
	}
	return out
}

// toLineData returns one entry per candle; absent values stay nil so the
// line starts where the indicator warms up.
func toLineData(cs []candle.EnrichedCandle, name string, field int) []opts.LineData {
	data := make([]opts.LineData, len(cs))
	for i, c := range cs {
		p, ok := c.Value(name)
		if !ok || field >= len(p) {
			data[i] = opts.LineData{Value: nil}
			continue
		}
		data[i] = opts.LineData{Value: p[field]}
	}
	return data
}
