// Package handler はanalysisフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Kaligetsagency/aifx/internal/feature/analysis/chart"
	"github.com/Kaligetsagency/aifx/internal/feature/analysis/domain"
	"github.com/Kaligetsagency/aifx/internal/feature/analysis/domain/entity"
	"github.com/Kaligetsagency/aifx/internal/feature/analysis/prompt"
	"github.com/Kaligetsagency/aifx/internal/feature/analysis/transport/http/dto"
	"github.com/Kaligetsagency/aifx/internal/feature/analysis/usecase"
)

// RequestIDHeader はリクエストIDを受け渡すHTTPヘッダーです。
const RequestIDHeader = "X-Request-ID"

// AnalysisUsecase は分析パイプラインのユースケースインターフェースです。
type AnalysisUsecase interface {
	Analyze(ctx context.Context, req usecase.Request) (*entity.Analysis, error)
}

// AnalysisHandler は分析リクエストを処理します。
type AnalysisHandler struct {
	uc AnalysisUsecase
}

// NewAnalysisHandler は新しい AnalysisHandler を作成します。
func NewAnalysisHandler(uc AnalysisUsecase) *AnalysisHandler {
	return &AnalysisHandler{uc: uc}
}

// Analyze は分析を実行し、提案と指標付きローソク足をJSONで返します。
//
// エンドポイント例:
// POST /analyze {"asset":"frxEURUSD","timeframe":"1H","strategy":"swing"}
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	a, ok := h.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewAnalyzeResponse(a))
}

// Chart は分析を実行し、ローソク足チャートのHTMLを返します。
func (h *AnalysisHandler) Chart(c *gin.Context) {
	a, ok := h.run(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf, a); err != nil {
		slog.Error("failed to render chart", "error", err, "request_id", a.RequestID)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to render chart"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// Strategies は選択可能なプロンプト戦略の一覧を返します。先頭が既定値です。
func (h *AnalysisHandler) Strategies(c *gin.Context) {
	strategies := prompt.Strategies()
	out := make([]dto.StrategyItem, 0, len(strategies))
	for _, s := range strategies {
		out = append(out, dto.StrategyItem{Name: string(s)})
	}
	c.JSON(http.StatusOK, out)
}

// run はリクエストを解析して分析を実行します。失敗時はレスポンスを書き込みfalseを返します。
func (h *AnalysisHandler) run(c *gin.Context) (*entity.Analysis, bool) {
	requestID := c.GetHeader(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header(RequestIDHeader, requestID)

	var req dto.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body", Kind: string(domain.KindValidation)})
		return nil, false
	}

	a, err := h.uc.Analyze(c.Request.Context(), usecase.Request{
		RequestID: requestID,
		Asset:     req.Asset,
		Timeframe: req.Timeframe,
		Strategy:  req.Strategy,
	})
	if err != nil {
		status, body := errorResponse(err)
		c.JSON(status, body)
		return nil, false
	}
	return a, true
}

// errorResponse はエラーの分類をHTTPステータスに変換します。
// 上流の生のエラー文はレスポンスに含めません。
func errorResponse(err error) (int, dto.ErrorResponse) {
	var status int
	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindUpstreamFetch, domain.KindUpstreamCompletion, domain.KindExtraction:
		status = http.StatusBadGateway
	default:
		return http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"}
	}
	var e *domain.Error
	errors.As(err, &e)
	return status, dto.ErrorResponse{Error: e.Message, Kind: string(e.Kind)}
}
