// Package usecase はローソク足データ操作のビジネスロジックを実装します。
package usecase

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/Kaligetsagency/aifx/internal/feature/candles/domain/entity"
)

const (
	// DefaultTimeframe はローソク足クエリのデフォルト時間足です。
	DefaultTimeframe = "1H"
	// DefaultOutputSize はデフォルトのローソク足返却件数です。
	DefaultOutputSize = 200
	// MaxOutputSize はローソク足の最大返却件数です。
	MaxOutputSize = 5000
)

// ErrSymbolRequired は銘柄コードが指定されていない場合に返されます。
var ErrSymbolRequired = errors.New("symbol is required")

// CandleSource はローソク足データの取得元を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CandleSource interface {
	// FetchCandles は外部サービスから直近count本のローソク足を取得します。granularityは秒単位です。
	FetchCandles(ctx context.Context, symbol string, granularity, count int) ([]entity.Candle, error)
}

// IndicatorEngine はローソク足にテクニカル指標を付与します。
type IndicatorEngine interface {
	Enrich(candles []entity.Candle) []entity.EnrichedCandle
}

// candlesUsecase はローソク足データ操作のユースケースを定義します。
type candlesUsecase struct {
	source     CandleSource
	indicators IndicatorEngine
}

// NewCandlesUsecase はcandlesUsecaseの新しいインスタンスを生成します。
func NewCandlesUsecase(source CandleSource, indicators IndicatorEngine) *candlesUsecase {
	return &candlesUsecase{source: source, indicators: indicators}
}

// GetCandles は指定された銘柄と時間足のローソク足を、指標付きで時系列順に返します。
// AIは呼び出さないため、分析前のチャート描画に使用します。
func (cu *candlesUsecase) GetCandles(ctx context.Context, symbol, timeframe string, outputsize int) ([]entity.EnrichedCandle, error) {
	if symbol == "" {
		return nil, ErrSymbolRequired
	}
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}
	if outputsize <= 0 || outputsize > MaxOutputSize {
		outputsize = DefaultOutputSize
	}

	cs, err := cu.source.FetchCandles(ctx, symbol, entity.Granularity(timeframe), outputsize)
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(cs)
	slices.SortStableFunc(sorted, func(a, b entity.Candle) int { return cmp.Compare(a.Timestamp, b.Timestamp) })
	return cu.indicators.Enrich(sorted), nil
}
