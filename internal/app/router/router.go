// Package router wires HTTP routes to their handlers.
package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	analysishandler "github.com/Kaligetsagency/aifx/internal/feature/analysis/transport/handler"
	assethandler "github.com/Kaligetsagency/aifx/internal/feature/assets/transport/handler"
	candleshandler "github.com/Kaligetsagency/aifx/internal/feature/candles/transport/handler"
	"github.com/Kaligetsagency/aifx/internal/platform/http/handler"
	"github.com/Kaligetsagency/aifx/internal/platform/metrics"
)

// Handlers groups the feature handlers served by the router.
type Handlers struct {
	Analysis *analysishandler.AnalysisHandler
	Candles  *candleshandler.CandlesHandler
	Assets   *assethandler.AssetHandler
	Ready    map[string]handler.Check
}

// Options configures router-wide middleware.
type Options struct {
	AllowOrigins []string
	Metrics      *metrics.Metrics // nil disables the metrics middleware and /metrics
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}
	r.Use(cors.New(corsConfig(opts.AllowOrigins)))

	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.OPTIONS("/healthz", handler.Health)
	r.GET("/readyz", handler.Readiness(h.Ready))
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	// 分析（AI呼び出しあり）
	r.POST("/analyze", h.Analysis.Analyze)
	r.POST("/analyze/chart", h.Analysis.Chart)

	// 分析前のチャート描画とドロップダウン用
	r.GET("/candles/:code", h.Candles.GetCandlesHandler)
	r.GET("/assets", h.Assets.List)
	r.GET("/timeframes", h.Assets.Timeframes)
	r.GET("/strategies", h.Analysis.Strategies)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, analysishandler.RequestIDHeader)
	cfg.ExposeHeaders = []string{analysishandler.RequestIDHeader}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
