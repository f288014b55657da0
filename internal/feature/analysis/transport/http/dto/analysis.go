// Package dto はanalysisフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"

	candle "github.com/Kaligetsagency/aifx/internal/feature/candles/domain/entity"

	"github.com/Kaligetsagency/aifx/internal/feature/analysis/domain/entity"
)

// AnalyzeRequest は分析リクエストのボディです。
type AnalyzeRequest struct {
	Asset     string `json:"asset"`
	Timeframe string `json:"timeframe"`
	Strategy  string `json:"strategy,omitempty"`
}

// AnalyzeResponse は分析結果のレスポンスDTOです。
type AnalyzeResponse struct {
	RequestID      string                  `json:"requestId"`
	Asset          string                  `json:"asset"`
	Timeframe      string                  `json:"timeframe"`
	Granularity    int                     `json:"granularity"`
	Strategy       string                  `json:"strategy"`
	Indicators     []string                `json:"indicators"`
	Recommendation Recommendation          `json:"recommendation"`
	MarketData     []candle.EnrichedCandle `json:"marketData"`
}

// Recommendation はAIの提案です。AIが返した追加のキーもそのまま含めます。
type Recommendation entity.Recommendation

// MarshalJSON は既知のキーを先に、追加のキーをキー名順に書き出します。
func (r Recommendation) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"entryPoint":`)
	buf.WriteString(strconv.FormatFloat(r.EntryPoint, 'f', -1, 64))
	buf.WriteString(`,"stopLoss":`)
	buf.WriteString(strconv.FormatFloat(r.StopLoss, 'f', -1, 64))
	buf.WriteString(`,"takeProfit":`)
	buf.WriteString(strconv.FormatFloat(r.TakeProfit, 'f', -1, 64))
	if r.Rationale != nil {
		b, err := json.Marshal(*r.Rationale)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"rationale":`)
		buf.Write(b)
	}
	if r.ConfidenceScore != nil {
		buf.WriteString(`,"confidenceScore":`)
		buf.WriteString(strconv.Itoa(*r.ConfidenceScore))
	}

	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(r.Extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NewAnalyzeResponse はドメインの分析結果をレスポンスDTOに変換します。
func NewAnalyzeResponse(a *entity.Analysis) AnalyzeResponse {
	data := a.Candles
	if data == nil {
		data = []candle.EnrichedCandle{}
	}
	names := a.Indicators
	if names == nil {
		names = []string{}
	}
	return AnalyzeResponse{
		RequestID:      a.RequestID,
		Asset:          a.Asset,
		Timeframe:      a.Timeframe,
		Granularity:    a.Granularity,
		Strategy:       a.Strategy,
		Indicators:     names,
		Recommendation: Recommendation(a.Recommendation),
		MarketData:     data,
	}
}

// ErrorResponse はエラーレスポンスDTOです。Kindは失敗の分類です。
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// StrategyItem は選択可能なプロンプト戦略です。
type StrategyItem struct {
	Name string `json:"name"`
}
