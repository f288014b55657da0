// Package entity はanalysisフィーチャーのドメインモデルを定義します。
package entity

import (
	"encoding/json"

	candle "github.com/Kaligetsagency/aifx/internal/feature/candles/domain/entity"
)

// Recommendation はAIの応答から抽出した売買提案です。
// エントリー・損切り・利確の位置関係は検証しません。
type Recommendation struct {
	EntryPoint      float64
	StopLoss        float64
	TakeProfit      float64
	Rationale       *string
	ConfidenceScore *int
	// Extra は既知のキー以外をそのまま保持します。
	Extra map[string]json.RawMessage
}

// Analysis は1回の分析の結果です。
type Analysis struct {
	RequestID      string
	Asset          string
	Timeframe      string
	Granularity    int
	Strategy       string
	Indicators     []string
	Candles        []candle.EnrichedCandle
	Recommendation Recommendation
}
