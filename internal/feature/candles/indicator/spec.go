// Package indicator はローソク足からテクニカル指標を計算し、各足に整列させます。
package indicator

import (
	"errors"
	"fmt"
)

// Algorithm は指標の計算方式です。
type Algorithm string

const (
	SMA    Algorithm = "sma"
	EMA    Algorithm = "ema"
	RSI    Algorithm = "rsi"
	MACD   Algorithm = "macd"
	BBands Algorithm = "bbands"
	Stoch  Algorithm = "stoch"
	ADX    Algorithm = "adx"
	ATR    Algorithm = "atr"
)

const (
	// pricePlaces は価格単位の指標の小数桁数です。
	pricePlaces = 4
	// oscillatorPlaces はオシレーター系指標の小数桁数です。
	oscillatorPlaces = 2
)

// ErrInvalidSpec は指標設定が不正な場合に返されます。
var ErrInvalidSpec = errors.New("invalid indicator spec")

// Spec は1つの指標の設定です。使用しないパラメータはゼロ値のままにします。
type Spec struct {
	Name      string
	Algorithm Algorithm
	Period    int     // sma, ema, rsi, bbands, adx, atr
	Fast      int     // macd
	Slow      int     // macd
	Signal    int     // macd
	FastK     int     // stoch
	SlowK     int     // stoch
	SlowD     int     // stoch
	StdDev    float64 // bbands
}

// DefaultSpecs は標準の指標セットを返します。
func DefaultSpecs() []Spec {
	return []Spec{
		{Name: "sma20", Algorithm: SMA, Period: 20},
		{Name: "sma50", Algorithm: SMA, Period: 50},
		{Name: "ema20", Algorithm: EMA, Period: 20},
		{Name: "ema50", Algorithm: EMA, Period: 50},
		{Name: "rsi14", Algorithm: RSI, Period: 14},
		{Name: "macd", Algorithm: MACD, Fast: 12, Slow: 26, Signal: 9},
		{Name: "bbands", Algorithm: BBands, Period: 20, StdDev: 2},
		{Name: "stoch", Algorithm: Stoch, FastK: 14, SlowK: 3, SlowD: 3},
		{Name: "adx14", Algorithm: ADX, Period: 14},
		{Name: "atr14", Algorithm: ATR, Period: 14},
	}
}

// Validate は設定値を検証します。起動時に一度だけ呼び出す想定です。
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSpec)
	}
	switch s.Algorithm {
	case SMA, EMA, RSI, ADX, ATR:
		if s.Period < 2 {
			return fmt.Errorf("%w: %s period must be >= 2, got %d", ErrInvalidSpec, s.Name, s.Period)
		}
	case BBands:
		if s.Period < 2 {
			return fmt.Errorf("%w: %s period must be >= 2, got %d", ErrInvalidSpec, s.Name, s.Period)
		}
		if s.StdDev <= 0 {
			return fmt.Errorf("%w: %s stddev must be > 0", ErrInvalidSpec, s.Name)
		}
	case MACD:
		if s.Fast < 2 || s.Slow <= s.Fast || s.Signal < 1 {
			return fmt.Errorf("%w: %s needs 2 <= fast < slow and signal >= 1", ErrInvalidSpec, s.Name)
		}
	case Stoch:
		if s.FastK < 1 || s.SlowK < 1 || s.SlowD < 1 {
			return fmt.Errorf("%w: %s periods must be >= 1", ErrInvalidSpec, s.Name)
		}
	default:
		return fmt.Errorf("%w: %s has unknown algorithm %q", ErrInvalidSpec, s.Name, s.Algorithm)
	}
	return nil
}

// Warmup は最初の有効値が得られるまでに消費されるローソク足の本数です。
// go-talibの各関数のlookbackと一致します。
func (s Spec) Warmup() int {
	switch s.Algorithm {
	case SMA, EMA, BBands:
		return s.Period - 1
	case RSI, ATR:
		return s.Period
	case MACD:
		// EMA(slow)のlookbackにシグナルEMAのlookbackが加算される
		return (s.Slow - 1) + (s.Signal - 1)
	case Stoch:
		return (s.FastK - 1) + (s.SlowK - 1) + (s.SlowD - 1)
	case ADX:
		// +DI/-DIの平滑化とDXの平滑化がそれぞれWilder方式で重なる
		return 2*s.Period - 1
	default:
		return 0
	}
}

// Fields は複合指標の構成要素名を返します。単一値の指標ではnilです。
func (s Spec) Fields() []string {
	switch s.Algorithm {
	case MACD:
		return []string{"macd", "signal", "histogram"}
	case BBands:
		return []string{"upper", "middle", "lower"}
	case Stoch:
		return []string{"k", "d"}
	default:
		return nil
	}
}

// places は表示用の丸め桁数です。価格は4桁、オシレーターは2桁です。
func (s Spec) places() int32 {
	switch s.Algorithm {
	case RSI, Stoch, ADX:
		return oscillatorPlaces
	default:
		return pricePlaces
	}
}
