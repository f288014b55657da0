package usecase_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kaligetsagency/aifx/internal/feature/analysis/domain"
	"github.com/Kaligetsagency/aifx/internal/feature/analysis/prompt"
	"github.com/Kaligetsagency/aifx/internal/feature/analysis/usecase"
	candle "github.com/Kaligetsagency/aifx/internal/feature/candles/domain/entity"
	"github.com/Kaligetsagency/aifx/internal/feature/candles/indicator"
)

const fixedResponse = `{"entryPoint":1.1,"stopLoss":1.0,"takeProfit":1.3,"rationale":"test","confidenceScore":7}`

// mockCandleSource はCandleSourceインターフェースのモック実装です。
type mockCandleSource struct {
	FetchCandlesFunc func(ctx context.Context, symbol string, granularity, count int) ([]candle.Candle, error)
	FetchCalls       int
}

func (m *mockCandleSource) FetchCandles(ctx context.Context, symbol string, granularity, count int) ([]candle.Candle, error) {
	m.FetchCalls++
	if m.FetchCandlesFunc != nil {
		return m.FetchCandlesFunc(ctx, symbol, granularity, count)
	}
	return nil, errors.New("FetchCandlesFunc is not implemented")
}

// mockCompletionClient はCompletionClientインターフェースのモック実装です。
type mockCompletionClient struct {
	CompleteFunc  func(ctx context.Context, prompt string) (string, error)
	CompleteCalls int
	LastPrompt    string
}

func (m *mockCompletionClient) Complete(ctx context.Context, p string) (string, error) {
	m.CompleteCalls++
	m.LastPrompt = p
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, p)
	}
	return "", errors.New("CompleteFunc is not implemented")
}

// mockRecorder はStageRecorderの呼び出しを記録します。
type mockRecorder struct {
	mu       sync.Mutex
	stages   []string
	outcomes []string
}

func (m *mockRecorder) ObserveStage(stage string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = append(m.stages, stage)
}

func (m *mockRecorder) RecordOutcome(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

// deterministicCandles は正弦波に沿った決定的なローソク足をn本生成します。
func deterministicCandles(n int) []candle.Candle {
	out := make([]candle.Candle, n)
	for i := range out {
		c := 1.1 + 0.01*math.Sin(float64(i)/5) + float64(i)*0.0001
		out[i] = candle.Candle{
			Timestamp: int64(1_700_000_000 + i*3600),
			Open:      c - 0.0005,
			High:      c + 0.002,
			Low:       c - 0.002,
			Close:     c,
		}
	}
	return out
}

func newEngine(t *testing.T) *indicator.Engine {
	t.Helper()
	eng, err := indicator.NewEngine(indicator.DefaultSpecs())
	require.NoError(t, err)
	return eng
}

// TestAnalysisUsecase_Analyze_EndToEnd は200本の固定データと固定応答で、
// 応答どおりの提案と整列済みの200本が返ることを検証します。
func TestAnalysisUsecase_Analyze_EndToEnd(t *testing.T) {
	t.Parallel()

	fixture := deterministicCandles(200)
	src := &mockCandleSource{
		FetchCandlesFunc: func(ctx context.Context, symbol string, granularity, count int) ([]candle.Candle, error) {
			assert.Equal(t, "TEST", symbol)
			assert.Equal(t, 3600, granularity)
			assert.Equal(t, 200, count)
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline, "fetch must run with a timeout")
			return fixture, nil
		},
	}
	llm := &mockCompletionClient{
		CompleteFunc: func(ctx context.Context, p string) (string, error) {
			return fixedResponse, nil
		},
	}
	rec := &mockRecorder{}
	eng := newEngine(t)

	uc := usecase.NewAnalysisUsecase(src, eng, prompt.NewBuilder(prompt.Config{}), llm, rec, usecase.Config{})
	got, err := uc.Analyze(context.Background(), usecase.Request{Asset: "TEST", Timeframe: "1H"})
	require.NoError(t, err)

	assert.Equal(t, 1, src.FetchCalls)
	assert.Equal(t, 1, llm.CompleteCalls)
	assert.NotEmpty(t, got.RequestID)
	assert.Equal(t, "TEST", got.Asset)
	assert.Equal(t, "1H", got.Timeframe)
	assert.Equal(t, 3600, got.Granularity)
	assert.Equal(t, string(prompt.StrategyAnalyst), got.Strategy)
	assert.Equal(t, eng.Names(), got.Indicators)

	r := got.Recommendation
	assert.Equal(t, 1.1, r.EntryPoint)
	assert.Equal(t, 1.0, r.StopLoss)
	assert.Equal(t, 1.3, r.TakeProfit)
	require.NotNil(t, r.Rationale)
	assert.Equal(t, "test", *r.Rationale)
	require.NotNil(t, r.ConfidenceScore)
	assert.Equal(t, 7, *r.ConfidenceScore)

	require.Len(t, got.Candles, 200)
	series := indicator.Compute(fixture, indicator.DefaultSpecs())
	for _, s := range series {
		offset := 200 - len(s.Points)
		for i, ec := range got.Candles {
			p, ok := ec.Value(s.Name)
			if i < offset {
				assert.False(t, ok, "%s should be absent at %d", s.Name, i)
				continue
			}
			assert.Equal(t, s.Points[i-offset], p, "%s at %d", s.Name, i)
		}
	}

	for _, key := range []string{"entryPoint", "stopLoss", "takeProfit", "rationale", "confidenceScore"} {
		assert.Contains(t, llm.LastPrompt, key)
	}
	assert.Contains(t, llm.LastPrompt, "Instrument: TEST")

	assert.Equal(t, []string{
		string(domain.StageFetchingCandles),
		string(domain.StageComputingIndicators),
		string(domain.StageBuildingPrompt),
		string(domain.StageAwaitingCompletion),
		string(domain.StageExtractingResponse),
	}, rec.stages)
	assert.Equal(t, []string{usecase.OutcomeSuccess}, rec.outcomes)
}

// TestAnalysisUsecase_Analyze_SortsCandles は取得元の順序に関わらず時系列順に並べ替えることを検証します。
func TestAnalysisUsecase_Analyze_SortsCandles(t *testing.T) {
	t.Parallel()

	fixture := deterministicCandles(60)
	shuffled := make([]candle.Candle, 0, len(fixture))
	for i := len(fixture) - 1; i >= 0; i-- {
		shuffled = append(shuffled, fixture[i])
	}

	src := &mockCandleSource{
		FetchCandlesFunc: func(ctx context.Context, symbol string, granularity, count int) ([]candle.Candle, error) {
			return shuffled, nil
		},
	}
	llm := &mockCompletionClient{
		CompleteFunc: func(ctx context.Context, p string) (string, error) { return fixedResponse, nil },
	}

	uc := usecase.NewAnalysisUsecase(src, newEngine(t), prompt.NewBuilder(prompt.Config{}), llm, nil, usecase.Config{CandleCount: 60})
	got, err := uc.Analyze(context.Background(), usecase.Request{Asset: "R_100", Timeframe: "5m", Strategy: "scalper"})
	require.NoError(t, err)

	require.Len(t, got.Candles, 60)
	for i := 1; i < len(got.Candles); i++ {
		assert.Less(t, got.Candles[i-1].Timestamp, got.Candles[i].Timestamp)
	}
	assert.Equal(t, fixture[59].Timestamp, shuffled[0].Timestamp, "source slice must not be reordered")
	assert.Equal(t, 300, got.Granularity)
	assert.Equal(t, "scalper", got.Strategy)
}

// TestAnalysisUsecase_Analyze_Failures は各段階の失敗が正しく分類されることを検証します。
func TestAnalysisUsecase_Analyze_Failures(t *testing.T) {
	t.Parallel()

	okCandles := func(ctx context.Context, symbol string, granularity, count int) ([]candle.Candle, error) {
		return deterministicCandles(100), nil
	}
	okCompletion := func(ctx context.Context, p string) (string, error) { return fixedResponse, nil }

	tests := []struct {
		name           string
		req            usecase.Request
		fetch          func(ctx context.Context, symbol string, granularity, count int) ([]candle.Candle, error)
		complete       func(ctx context.Context, p string) (string, error)
		wantKind       domain.Kind
		wantErr        error
		wantFetchCalls int
		wantLLMCalls   int
	}{
		{
			name:     "missing asset",
			req:      usecase.Request{Timeframe: "1H"},
			fetch:    okCandles,
			complete: okCompletion,
			wantKind: domain.KindValidation,
			wantErr:  domain.ErrMissingAsset,
		},
		{
			name:     "blank timeframe",
			req:      usecase.Request{Asset: "R_100", Timeframe: "  "},
			fetch:    okCandles,
			complete: okCompletion,
			wantKind: domain.KindValidation,
			wantErr:  domain.ErrMissingTimeframe,
		},
		{
			name:     "unknown strategy",
			req:      usecase.Request{Asset: "R_100", Timeframe: "1H", Strategy: "yolo"},
			fetch:    okCandles,
			complete: okCompletion,
			wantKind: domain.KindValidation,
			wantErr:  domain.ErrUnknownStrategy,
		},
		{
			name: "candle source error",
			req:  usecase.Request{Asset: "R_100", Timeframe: "1H"},
			fetch: func(ctx context.Context, symbol string, granularity, count int) ([]candle.Candle, error) {
				return nil, errors.New("InvalidSymbol: symbol R_100 is invalid")
			},
			complete:       okCompletion,
			wantKind:       domain.KindUpstreamFetch,
			wantFetchCalls: 1,
		},
		{
			name: "zero candles",
			req:  usecase.Request{Asset: "R_100", Timeframe: "1H"},
			fetch: func(ctx context.Context, symbol string, granularity, count int) ([]candle.Candle, error) {
				return []candle.Candle{}, nil
			},
			complete:       okCompletion,
			wantKind:       domain.KindUpstreamFetch,
			wantErr:        domain.ErrNoCandles,
			wantFetchCalls: 1,
		},
		{
			name:  "completion error",
			req:   usecase.Request{Asset: "R_100", Timeframe: "1H"},
			fetch: okCandles,
			complete: func(ctx context.Context, p string) (string, error) {
				return "", domain.ErrUpstreamStatus
			},
			wantKind:       domain.KindUpstreamCompletion,
			wantErr:        domain.ErrUpstreamStatus,
			wantFetchCalls: 1,
			wantLLMCalls:   1,
		},
		{
			name:  "response without JSON",
			req:   usecase.Request{Asset: "R_100", Timeframe: "1H"},
			fetch: okCandles,
			complete: func(ctx context.Context, p string) (string, error) {
				return "I am unable to help with that.", nil
			},
			wantKind:       domain.KindExtraction,
			wantErr:        domain.ErrNoJSONRegion,
			wantFetchCalls: 1,
			wantLLMCalls:   1,
		},
		{
			name:  "response missing takeProfit",
			req:   usecase.Request{Asset: "R_100", Timeframe: "1H"},
			fetch: okCandles,
			complete: func(ctx context.Context, p string) (string, error) {
				return `{"entryPoint":1.1,"stopLoss":1.0}`, nil
			},
			wantKind:       domain.KindExtraction,
			wantErr:        domain.ErrMissingField,
			wantFetchCalls: 1,
			wantLLMCalls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &mockCandleSource{FetchCandlesFunc: tt.fetch}
			llm := &mockCompletionClient{CompleteFunc: tt.complete}
			rec := &mockRecorder{}

			uc := usecase.NewAnalysisUsecase(src, newEngine(t), prompt.NewBuilder(prompt.Config{}), llm, rec, usecase.Config{})
			got, err := uc.Analyze(context.Background(), tt.req)

			require.Error(t, err)
			assert.Nil(t, got)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.wantFetchCalls, src.FetchCalls)
			assert.Equal(t, tt.wantLLMCalls, llm.CompleteCalls)
			assert.Equal(t, []string{string(tt.wantKind)}, rec.outcomes)
		})
	}
}

// TestAnalysisUsecase_Analyze_ShortHistory は指標のウォームアップに満たない本数でも分析が続行されることを検証します。
func TestAnalysisUsecase_Analyze_ShortHistory(t *testing.T) {
	t.Parallel()

	src := &mockCandleSource{
		FetchCandlesFunc: func(ctx context.Context, symbol string, granularity, count int) ([]candle.Candle, error) {
			return deterministicCandles(5), nil
		},
	}
	llm := &mockCompletionClient{
		CompleteFunc: func(ctx context.Context, p string) (string, error) {
			return "```json\n" + fixedResponse + "\n```", nil
		},
	}

	uc := usecase.NewAnalysisUsecase(src, newEngine(t), prompt.NewBuilder(prompt.Config{}), llm, nil, usecase.Config{})
	got, err := uc.Analyze(context.Background(), usecase.Request{Asset: "R_100", Timeframe: "1D"})
	require.NoError(t, err)

	require.Len(t, got.Candles, 5)
	for _, ec := range got.Candles {
		for _, v := range ec.Indicators {
			assert.Nil(t, v.Point, v.Name)
		}
	}
	assert.True(t, strings.Contains(llm.LastPrompt, `"sma20":null`))
	assert.Equal(t, 86400, got.Granularity)
}

// TestAnalysisUsecase_Analyze_RequestID は指定されたリクエストIDを引き継ぐことを検証します。
func TestAnalysisUsecase_Analyze_RequestID(t *testing.T) {
	t.Parallel()

	src := &mockCandleSource{
		FetchCandlesFunc: func(ctx context.Context, symbol string, granularity, count int) ([]candle.Candle, error) {
			return deterministicCandles(10), nil
		},
	}
	llm := &mockCompletionClient{
		CompleteFunc: func(ctx context.Context, p string) (string, error) { return fixedResponse, nil },
	}

	uc := usecase.NewAnalysisUsecase(src, newEngine(t), prompt.NewBuilder(prompt.Config{}), llm, nil, usecase.Config{})
	got, err := uc.Analyze(context.Background(), usecase.Request{RequestID: "req-1", Asset: "R_100", Timeframe: "1m"})
	require.NoError(t, err)
	assert.Equal(t, "req-1", got.RequestID)
}
