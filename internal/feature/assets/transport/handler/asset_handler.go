// Package handler はassetsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kaligetsagency/aifx/internal/feature/assets/domain/entity"
	"github.com/Kaligetsagency/aifx/internal/feature/assets/transport/http/dto"
)

// AssetUsecase は銘柄・時間足一覧のユースケースのインターフェースです。
type AssetUsecase interface {
	ListAssets(ctx context.Context) ([]entity.Asset, error)
	Timeframes() []entity.Timeframe
}

// AssetHandler は銘柄一覧・時間足一覧のHTTPリクエストを処理します。
type AssetHandler struct {
	uc AssetUsecase
}

// NewAssetHandler は新しい AssetHandler を作成します。
func NewAssetHandler(uc AssetUsecase) *AssetHandler {
	return &AssetHandler{uc: uc}
}

// List は有効な銘柄の一覧を返します。
// Usecaseでエラーが発生した場合は500 Internal Server Errorを返します。
func (h *AssetHandler) List(c *gin.Context) {
	assets, err := h.uc.ListAssets(c.Request.Context())
	if err != nil {
		slog.Error("failed to list assets", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list assets"})
		return
	}
	out := make([]dto.AssetItem, 0, len(assets))
	for _, a := range assets {
		out = append(out, dto.AssetItem{Code: a.Code, Name: a.Name, Market: a.Market})
	}
	c.JSON(http.StatusOK, out)
}

// Timeframes は選択可能な時間足の一覧を返します。
func (h *AssetHandler) Timeframes(c *gin.Context) {
	tfs := h.uc.Timeframes()
	out := make([]dto.TimeframeItem, 0, len(tfs))
	for _, tf := range tfs {
		out = append(out, dto.TimeframeItem{Label: tf.Label, Granularity: tf.Granularity})
	}
	c.JSON(http.StatusOK, out)
}
