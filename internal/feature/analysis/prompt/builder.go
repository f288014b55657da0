// Package prompt はAIに送る分析プロンプトを組み立てます。
package prompt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Kaligetsagency/aifx/internal/feature/analysis/domain"
	"github.com/Kaligetsagency/aifx/internal/feature/candles/domain/entity"
)

const (
	// DefaultWindow はプロンプトに含めるローソク足の既定本数です。
	DefaultWindow = 100
	// MinWindow はウィンドウの下限です。
	MinWindow = 50
	// MaxWindow はウィンドウの上限です。
	MaxWindow = 200
	// DefaultMinRewardRisk は要求する最小リスクリワード比です。
	DefaultMinRewardRisk = 1.5
)

// Config はプロンプト生成の設定です。
type Config struct {
	Window        int     // 末尾から含める本数。[MinWindow, MaxWindow]に丸められます
	MinRewardRisk float64 // 0以下の場合はDefaultMinRewardRisk
}

// Builder はプロンプトを生成します。純粋関数的で、同じ入力には同じ出力を返します。
type Builder struct {
	window        int
	minRewardRisk float64
}

// NewBuilder は設定を正規化してBuilderを生成します。
func NewBuilder(cfg Config) *Builder {
	w := cfg.Window
	switch {
	case w <= 0:
		w = DefaultWindow
	case w < MinWindow:
		w = MinWindow
	case w > MaxWindow:
		w = MaxWindow
	}
	rr := cfg.MinRewardRisk
	if rr <= 0 {
		rr = DefaultMinRewardRisk
	}
	return &Builder{window: w, minRewardRisk: rr}
}

type templateData struct {
	Role          string
	Steps         []string
	Instrument    string
	Timeframe     string
	Indicators    []string
	Count         int
	Data          string
	MinRewardRisk string
}

// Build は銘柄・時間足・戦略と指標付きローソク足からプロンプト文字列を生成します。
func (b *Builder) Build(instrument, timeframe string, strategy Strategy, candles []entity.EnrichedCandle) (string, error) {
	f, ok := framings[strategy]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, strategy)
	}

	tail := candles
	if len(tail) > b.window {
		tail = tail[len(tail)-b.window:]
	}
	if tail == nil {
		tail = []entity.EnrichedCandle{}
	}

	data, err := json.Marshal(tail)
	if err != nil {
		return "", fmt.Errorf("failed to serialize market data: %w", err)
	}

	var names []string
	if len(candles) > 0 {
		for _, v := range candles[0].Indicators {
			names = append(names, v.Name)
		}
	}

	var sb strings.Builder
	if err := promptTmpl.Execute(&sb, templateData{
		Role:          f.Role,
		Steps:         f.Steps,
		Instrument:    instrument,
		Timeframe:     timeframe,
		Indicators:    names,
		Count:         len(tail),
		Data:          string(data),
		MinRewardRisk: strconv.FormatFloat(b.minRewardRisk, 'f', -1, 64),
	}); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return sb.String(), nil
}
