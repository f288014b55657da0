// Package usecase はAI売買提案の分析パイプラインを実装します。
//
// パイプラインは直線的な状態遷移です。
//
//	fetching_candles → computing_indicators → building_prompt →
//	awaiting_completion → extracting_response → done
//
// どの段階で失敗しても、分類済みの *domain.Error を返して終了します。
package usecase

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kaligetsagency/aifx/internal/feature/analysis/domain"
	"github.com/Kaligetsagency/aifx/internal/feature/analysis/domain/entity"
	"github.com/Kaligetsagency/aifx/internal/feature/analysis/extractor"
	"github.com/Kaligetsagency/aifx/internal/feature/analysis/prompt"
	candle "github.com/Kaligetsagency/aifx/internal/feature/candles/domain/entity"
)

const (
	// DefaultCandleCount は1回の分析で取得するローソク足の本数です。
	DefaultCandleCount = 200
	// DefaultFetchTimeout はローソク足取得のタイムアウトです。
	DefaultFetchTimeout = 15 * time.Second
	// maxLoggedResponse はログに残すAI応答の最大文字数です。
	maxLoggedResponse = 2000
)

// OutcomeSuccess は分析が完了したことを表す結果ラベルです。
const OutcomeSuccess = "success"

// CandleSource はローソク足データの取得元を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CandleSource interface {
	// FetchCandles は銘柄の直近count本のローソク足を取得します。granularityは秒単位です。
	FetchCandles(ctx context.Context, symbol string, granularity, count int) ([]candle.Candle, error)
}

// IndicatorEngine はローソク足にテクニカル指標を付与します。
type IndicatorEngine interface {
	Enrich(candles []candle.Candle) []candle.EnrichedCandle
	Names() []string
}

// PromptBuilder は分析用のプロンプトを生成します。
type PromptBuilder interface {
	Build(instrument, timeframe string, strategy prompt.Strategy, candles []candle.EnrichedCandle) (string, error)
}

// CompletionClient はAIの補完サービスを抽象化します。1回の呼び出しで1つの応答を返します。
type CompletionClient interface {
	// Complete はプロンプトを送信し、モデルの生テキストを返します。
	Complete(ctx context.Context, prompt string) (string, error)
}

// StageRecorder は段階ごとの所要時間と最終結果を記録します。
type StageRecorder interface {
	ObserveStage(stage string, d time.Duration)
	RecordOutcome(outcome string)
}

// Request は分析リクエストです。
type Request struct {
	RequestID string // 空の場合は生成します
	Asset     string
	Timeframe string
	Strategy  string // 空の場合は設定の既定値
}

// Config は分析ユースケースの設定です。
type Config struct {
	CandleCount     int
	FetchTimeout    time.Duration
	DefaultStrategy prompt.Strategy
}

// analysisUsecase は分析パイプラインのユースケースです。
type analysisUsecase struct {
	source     CandleSource
	indicators IndicatorEngine
	prompts    PromptBuilder
	llm        CompletionClient
	recorder   StageRecorder
	cfg        Config
}

// NewAnalysisUsecase はanalysisUsecaseの新しいインスタンスを生成します。recorderはnilでも構いません。
func NewAnalysisUsecase(source CandleSource, indicators IndicatorEngine, prompts PromptBuilder,
	llm CompletionClient, recorder StageRecorder, cfg Config) *analysisUsecase {
	if cfg.CandleCount <= 0 {
		cfg.CandleCount = DefaultCandleCount
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.DefaultStrategy == "" {
		cfg.DefaultStrategy = prompt.StrategyAnalyst
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &analysisUsecase{
		source:     source,
		indicators: indicators,
		prompts:    prompts,
		llm:        llm,
		recorder:   recorder,
		cfg:        cfg,
	}
}

// Analyze はローソク足の取得からAI応答の抽出までを1回実行します。
func (u *analysisUsecase) Analyze(ctx context.Context, req Request) (*entity.Analysis, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	asset := strings.TrimSpace(req.Asset)
	timeframe := strings.TrimSpace(req.Timeframe)
	log := slog.With("request_id", req.RequestID, "asset", asset, "timeframe", timeframe)

	// 入力検証はどの段階よりも前に行う
	if asset == "" {
		return nil, u.fail(log, domain.NewError(domain.KindValidation, domain.StageValidating, "asset is required", domain.ErrMissingAsset))
	}
	if timeframe == "" {
		return nil, u.fail(log, domain.NewError(domain.KindValidation, domain.StageValidating, "timeframe is required", domain.ErrMissingTimeframe))
	}
	strategy := u.cfg.DefaultStrategy
	if req.Strategy != "" {
		s, ok := prompt.ParseStrategy(req.Strategy)
		if !ok {
			return nil, u.fail(log, domain.NewError(domain.KindValidation, domain.StageValidating, "unknown strategy", domain.ErrUnknownStrategy))
		}
		strategy = s
	}

	granularity := candle.Granularity(timeframe)

	// fetching_candles
	var candles []candle.Candle
	err := u.stage(log, domain.StageFetchingCandles, func() error {
		fctx, cancel := context.WithTimeout(ctx, u.cfg.FetchTimeout)
		defer cancel()
		cs, err := u.source.FetchCandles(fctx, asset, granularity, u.cfg.CandleCount)
		if err != nil {
			return err
		}
		if len(cs) == 0 {
			return domain.ErrNoCandles
		}
		candles = slices.Clone(cs)
		slices.SortStableFunc(candles, func(a, b candle.Candle) int { return cmp.Compare(a.Timestamp, b.Timestamp) })
		return nil
	})
	if err != nil {
		return nil, u.fail(log, domain.NewError(domain.KindUpstreamFetch, domain.StageFetchingCandles, "failed to fetch market data", err))
	}

	// computing_indicators は失敗しない
	done := u.begin(log, domain.StageComputingIndicators)
	enriched := u.indicators.Enrich(candles)
	done()

	// building_prompt
	var text string
	err = u.stage(log, domain.StageBuildingPrompt, func() error {
		var err error
		text, err = u.prompts.Build(asset, timeframe, strategy, enriched)
		return err
	})
	if err != nil {
		return nil, u.fail(log, domain.NewError(domain.KindValidation, domain.StageBuildingPrompt, "failed to build prompt", err))
	}

	// awaiting_completion
	var raw string
	err = u.stage(log, domain.StageAwaitingCompletion, func() error {
		var err error
		raw, err = u.llm.Complete(ctx, text)
		return err
	})
	if err != nil {
		return nil, u.fail(log, domain.NewError(domain.KindUpstreamCompletion, domain.StageAwaitingCompletion, "AI service request failed", err))
	}

	// extracting_response
	var rec entity.Recommendation
	err = u.stage(log, domain.StageExtractingResponse, func() error {
		var err error
		rec, err = extractor.Extract(raw)
		return err
	})
	if err != nil {
		log.Warn("unparseable AI response", "response", truncate(raw, maxLoggedResponse))
		return nil, u.fail(log, domain.NewError(domain.KindExtraction, domain.StageExtractingResponse, "could not read a recommendation from the AI response", err))
	}

	u.recorder.RecordOutcome(OutcomeSuccess)
	log.Info("analysis completed",
		"stage", domain.StageDone,
		"candles", len(candles),
		"strategy", strategy,
		"entry_point", rec.EntryPoint,
		"stop_loss", rec.StopLoss,
		"take_profit", rec.TakeProfit,
	)

	return &entity.Analysis{
		RequestID:      req.RequestID,
		Asset:          asset,
		Timeframe:      timeframe,
		Granularity:    granularity,
		Strategy:       string(strategy),
		Indicators:     u.indicators.Names(),
		Candles:        enriched,
		Recommendation: rec,
	}, nil
}

// stage は1つの段階を実行し、所要時間を記録します。
func (u *analysisUsecase) stage(log *slog.Logger, s domain.Stage, fn func() error) error {
	done := u.begin(log, s)
	err := fn()
	done()
	return err
}

// begin は段階の開始を記録し、終了時に呼ぶ関数を返します。
func (u *analysisUsecase) begin(log *slog.Logger, s domain.Stage) func() {
	log.Debug("analysis stage started", "stage", s)
	start := time.Now()
	return func() {
		u.recorder.ObserveStage(string(s), time.Since(start))
	}
}

// fail は失敗を記録してエラーを返します。
func (u *analysisUsecase) fail(log *slog.Logger, e *domain.Error) error {
	u.recorder.RecordOutcome(string(e.Kind))
	log.Error("analysis failed", "stage", e.Stage, "kind", e.Kind, "error", e.Err)
	return e
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

type nopRecorder struct{}

func (nopRecorder) ObserveStage(string, time.Duration) {}
func (nopRecorder) RecordOutcome(string)               {}
