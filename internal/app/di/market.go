// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Kaligetsagency/aifx/internal/feature/candles/usecase"
	"github.com/Kaligetsagency/aifx/internal/platform/cache"
	"github.com/Kaligetsagency/aifx/internal/platform/config"
	"github.com/Kaligetsagency/aifx/internal/platform/externalapi/binance"
	"github.com/Kaligetsagency/aifx/internal/platform/externalapi/deriv"
	"github.com/Kaligetsagency/aifx/internal/platform/externalapi/twelvedata"
	infrahttp "github.com/Kaligetsagency/aifx/internal/platform/http"
)

// NewMarket creates the candle source selected by candles.source.
// When rdb is non-nil and candles.cache is enabled, the source is wrapped in the Redis cache.
func NewMarket(cfg *config.Config, rdb *redis.Client, recorder cache.LookupRecorder) (usecase.CandleSource, error) {
	var src usecase.CandleSource
	switch cfg.Candles.Source {
	case "deriv":
		s, err := deriv.NewSource(deriv.Config{
			URL:     cfg.Deriv.URL,
			AppID:   cfg.Deriv.AppID,
			Timeout: cfg.Candles.Timeout,
		})
		if err != nil {
			return nil, err
		}
		src = s
	case "twelvedata":
		tdCfg := twelvedata.Config{
			APIKey:  cfg.TwelveData.APIKey,
			BaseURL: cfg.TwelveData.BaseURL,
			Timeout: cfg.Candles.Timeout,
		}
		src = twelvedata.NewTwelveDataMarket(tdCfg, infrahttp.NewHTTPClient(tdCfg.Timeout))
	case "binance":
		bnCfg := binance.Config{BaseURL: cfg.Binance.BaseURL, Timeout: cfg.Candles.Timeout}
		src = binance.NewSource(bnCfg, infrahttp.NewHTTPClient(bnCfg.Timeout))
	default:
		return nil, fmt.Errorf("unknown candle source %q", cfg.Candles.Source)
	}

	if rdb == nil || !cfg.Candles.Cache {
		return src, nil
	}
	return cache.NewCachingCandleSource(rdb, src, "candles", recorder), nil
}
