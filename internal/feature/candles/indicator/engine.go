package indicator

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"

	"github.com/Kaligetsagency/aifx/internal/feature/candles/domain/entity"
)

// Engine は設定された指標セットを計算します。状態を持たないため並行に利用できます。
type Engine struct {
	specs []Spec
}

// NewEngine は指標設定を検証してEngineを生成します。名前の重複もエラーです。
func NewEngine(specs []Spec) (*Engine, error) {
	seen := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidSpec, s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return &Engine{specs: append([]Spec(nil), specs...)}, nil
}

// Names は設定順の指標名を返します。
func (e *Engine) Names() []string {
	names := make([]string, len(e.specs))
	for i, s := range e.specs {
		names[i] = s.Name
	}
	return names
}

// Enrich はローソク足に全指標の値を付与します。
func (e *Engine) Enrich(candles []entity.Candle) []entity.EnrichedCandle {
	return Align(candles, Compute(candles, e.specs))
}

// Compute は各指標のシリーズを設定順に計算します。
// ローソク足の本数がウォームアップ以下の指標は空のシリーズになります。
func Compute(candles []entity.Candle, specs []Spec) []entity.Series {
	n := len(candles)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}

	out := make([]entity.Series, 0, len(specs))
	for _, s := range specs {
		out = append(out, computeSeries(s, closes, highs, lows))
	}
	return out
}

// computeSeries はgo-talibで1つの指標を計算し、ウォームアップ部分を除いたシリーズを返します。
// go-talibは入力長がlookback以下だとパニックし得るため、その場合は呼び出しません。
func computeSeries(s Spec, closes, highs, lows []float64) entity.Series {
	series := entity.Series{Name: s.Name, Fields: s.Fields(), Points: []entity.Point{}}
	warmup := s.Warmup()
	if len(closes) <= warmup {
		return series
	}

	var cols [][]float64
	switch s.Algorithm {
	case SMA:
		cols = [][]float64{talib.Sma(closes, s.Period)}
	case EMA:
		cols = [][]float64{talib.Ema(closes, s.Period)}
	case RSI:
		cols = [][]float64{talib.Rsi(closes, s.Period)}
	case MACD:
		macd, signal, hist := talib.Macd(closes, s.Fast, s.Slow, s.Signal)
		cols = [][]float64{macd, signal, hist}
	case BBands:
		upper, middle, lower := talib.BBands(closes, s.Period, s.StdDev, s.StdDev, talib.SMA)
		cols = [][]float64{upper, middle, lower}
	case Stoch:
		k, d := talib.Stoch(highs, lows, closes, s.FastK, s.SlowK, talib.SMA, s.SlowD, talib.SMA)
		cols = [][]float64{k, d}
	case ADX:
		cols = [][]float64{talib.Adx(highs, lows, closes, s.Period)}
	case ATR:
		cols = [][]float64{talib.Atr(highs, lows, closes, s.Period)}
	default:
		return series
	}

	series.Points = trim(cols, warmup, s.places())
	return series
}

// trim はウォームアップ部分を捨て、各値を丸めたPointの列を作ります。
// 非有限値を含む位置は欠損（nil）として残し、整列のずれを防ぎます。
func trim(cols [][]float64, warmup int, places int32) []entity.Point {
	n := len(cols[0])
	points := make([]entity.Point, 0, n-warmup)
	for i := warmup; i < n; i++ {
		p := make(entity.Point, len(cols))
		for j, col := range cols {
			v, ok := round(col[i], places)
			if !ok {
				p = nil
				break
			}
			p[j] = v
		}
		points = append(points, p)
	}
	return points
}

// round は表示用に小数点以下places桁へ丸めます。NaNと無限大はfalseを返します。
func round(v float64, places int32) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64(), true
}
