// Package usecase implements the business logic for the instrument and timeframe lists.
package usecase

import (
	"context"

	candle "github.com/Kaligetsagency/aifx/internal/feature/candles/domain/entity"

	"github.com/Kaligetsagency/aifx/internal/feature/assets/domain/entity"
)

// AssetRepository abstracts the persistence layer for instruments.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type AssetRepository interface {
	ListActive(ctx context.Context, source string) ([]entity.Asset, error)
}

// timeframeLabels are served by every supported candle source.
var timeframeLabels = []string{"1m", "5m", "15m", "30m", "1H", "4H", "1D"}

// AssetUsecase provides the dropdown contents for the configured candle source.
type AssetUsecase struct {
	repo   AssetRepository
	source string
}

// NewAssetUsecase creates a new AssetUsecase listing instruments of source.
func NewAssetUsecase(r AssetRepository, source string) *AssetUsecase {
	return &AssetUsecase{repo: r, source: source}
}

// ListAssets returns the active instruments of the configured source.
func (u *AssetUsecase) ListAssets(ctx context.Context) ([]entity.Asset, error) {
	return u.repo.ListActive(ctx, u.source)
}

// Timeframes returns the selectable timeframes, shortest first.
func (u *AssetUsecase) Timeframes() []entity.Timeframe {
	out := make([]entity.Timeframe, 0, len(timeframeLabels))
	for _, l := range timeframeLabels {
		out = append(out, entity.Timeframe{Label: l, Granularity: candle.Granularity(l)})
	}
	return out
}
