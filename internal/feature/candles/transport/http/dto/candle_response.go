// Package dto はcandlesフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import "github.com/Kaligetsagency/aifx/internal/feature/candles/domain/entity"

// CandlesResponse は指標付きローソク足のレスポンスDTOです。
type CandlesResponse struct {
	Symbol      string                  `json:"symbol"`      // 銘柄コード
	Timeframe   string                  `json:"timeframe"`   // 時間足ラベル
	Granularity int                     `json:"granularity"` // 1本あたりの秒数
	Candles     []entity.EnrichedCandle `json:"candles"`     // 古い順
}

// ErrorResponse はエラーレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}
