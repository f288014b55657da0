package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/Kaligetsagency/aifx/internal/app/di"
	"github.com/Kaligetsagency/aifx/internal/app/router"
	"github.com/Kaligetsagency/aifx/internal/feature/analysis/prompt"
	analysishandler "github.com/Kaligetsagency/aifx/internal/feature/analysis/transport/handler"
	analysisusecase "github.com/Kaligetsagency/aifx/internal/feature/analysis/usecase"
	assetadapters "github.com/Kaligetsagency/aifx/internal/feature/assets/adapters"
	assethandler "github.com/Kaligetsagency/aifx/internal/feature/assets/transport/handler"
	assetusecase "github.com/Kaligetsagency/aifx/internal/feature/assets/usecase"
	"github.com/Kaligetsagency/aifx/internal/feature/candles/indicator"
	candleshandler "github.com/Kaligetsagency/aifx/internal/feature/candles/transport/handler"
	candlesusecase "github.com/Kaligetsagency/aifx/internal/feature/candles/usecase"
	"github.com/Kaligetsagency/aifx/internal/platform/config"
	"github.com/Kaligetsagency/aifx/internal/platform/http/handler"
	"github.com/Kaligetsagency/aifx/internal/platform/logger"
	"github.com/Kaligetsagency/aifx/internal/platform/metrics"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	// DB
	gdb, err := di.NewAssetDB(ctx, cfg.DB)
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()
	ready := map[string]handler.Check{"db": sqlDB.PingContext}

	// Redis（未設定・接続不可の場合はキャッシュなしで起動）
	rdb := di.NewRedis(ctx, cfg.Redis)
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
		ready["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// Repository / 外部サービス
	source, err := di.NewMarket(cfg, rdb, m)
	if err != nil {
		return err
	}
	llm, err := di.NewCompletionClient(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	engine, err := indicator.NewEngine(indicator.DefaultSpecs())
	if err != nil {
		return err
	}
	strategy, ok := prompt.ParseStrategy(cfg.Prompt.Strategy)
	if !ok {
		strategy = prompt.StrategyAnalyst
		slog.Warn("unknown prompt strategy; using default", "strategy", cfg.Prompt.Strategy, "default", strategy)
	}
	prompts := prompt.NewBuilder(prompt.Config{Window: cfg.Prompt.Window, MinRewardRisk: cfg.Prompt.MinRewardRisk})

	// Usecase
	analysisUC := analysisusecase.NewAnalysisUsecase(source, engine, prompts, llm, m, analysisusecase.Config{
		CandleCount:     cfg.Candles.Count,
		FetchTimeout:    cfg.Candles.Timeout,
		DefaultStrategy: strategy,
	})
	candlesUC := candlesusecase.NewCandlesUsecase(source, engine)
	assetUC := assetusecase.NewAssetUsecase(assetadapters.NewAssetRepository(gdb), cfg.Candles.Source)

	// ルータ生成
	r := router.NewRouter(router.Handlers{
		Analysis: analysishandler.NewAnalysisHandler(analysisUC),
		Candles:  candleshandler.NewCandlesHandler(candlesUC),
		Assets:   assethandler.NewAssetHandler(assetUC),
		Ready:    ready,
	}, router.Options{AllowOrigins: cfg.Server.AllowOrigins, Metrics: m})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server started", "addr", srv.Addr, "candles_source", cfg.Candles.Source, "llm_provider", cfg.LLM.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		slog.Info("shutting down server")
		return srv.Shutdown(shCtx)
	})
	return g.Wait()
}
