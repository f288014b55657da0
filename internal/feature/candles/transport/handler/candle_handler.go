// Package handler はcandlesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kaligetsagency/aifx/internal/feature/candles/domain/entity"
	"github.com/Kaligetsagency/aifx/internal/feature/candles/transport/http/dto"
	"github.com/Kaligetsagency/aifx/internal/feature/candles/usecase"
)

// CandlesUsecase はローソク足データ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CandlesUsecase interface {
	GetCandles(ctx context.Context, symbol, timeframe string, outputsize int) ([]entity.EnrichedCandle, error)
}

// CandlesHandler はローソク足データのHTTPリクエストを処理します。
type CandlesHandler struct {
	uc CandlesUsecase
}

// NewCandlesHandler は指定されたusecaseでCandlesHandlerの新しいインスタンスを生成します。
func NewCandlesHandler(uc CandlesUsecase) *CandlesHandler {
	return &CandlesHandler{uc: uc}
}

// GetCandlesHandler は銘柄コードと時間足を受け取り、指標付きローソク足データをJSONで返します。
//
// エンドポイント例:
// GET /candles/:code?timeframe=1H&count=200
func (h *CandlesHandler) GetCandlesHandler(c *gin.Context) {
	code := c.Param("code")
	// 未指定の場合はデフォルト値を使用
	timeframe := c.DefaultQuery("timeframe", usecase.DefaultTimeframe)
	countStr := c.DefaultQuery("count", strconv.Itoa(usecase.DefaultOutputSize))
	// 文字列を整数に変換。不正値はusecaseでデフォルトに置き換えられる
	outputsize, _ := strconv.Atoi(countStr)

	candles, err := h.uc.GetCandles(c.Request.Context(), code, timeframe, outputsize)
	if err != nil {
		if errors.Is(err, usecase.ErrSymbolRequired) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
			return
		}
		slog.Error("failed to get candles", "error", err, "symbol", code, "timeframe", timeframe)
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "failed to fetch market data"})
		return
	}

	if candles == nil {
		candles = []entity.EnrichedCandle{}
	}
	c.JSON(http.StatusOK, dto.CandlesResponse{
		Symbol:      code,
		Timeframe:   timeframe,
		Granularity: entity.Granularity(timeframe),
		Candles:     candles,
	})
}
