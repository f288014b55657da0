package prompt

import (
	"strings"
	"text/template"
)

// Strategy はプロンプトの役割設定と分析手順の組み合わせです。
type Strategy string

const (
	// StrategyAnalyst はテクニカルアナリストとして総合的に判断させます。
	StrategyAnalyst Strategy = "analyst"
	// StrategyScalper は短期足での素早い売買を想定させます。
	StrategyScalper Strategy = "scalper"
	// StrategySwing は数日単位の保有を想定させます。
	StrategySwing Strategy = "swing"
)

// framing は戦略ごとの役割文と分析手順です。
type framing struct {
	Role  string
	Steps []string
}

var framings = map[Strategy]framing{
	StrategyAnalyst: {
		Role: "You are an expert financial analyst specializing in technical analysis. " +
			"Study the market data below and produce one actionable trade setup.",
		Steps: []string{
			"Identify the prevailing trend from the moving averages (SMA/EMA) and their slope.",
			"Check momentum with RSI and MACD, noting divergences and crossovers.",
			"Use the Bollinger Bands and ATR to judge volatility and stretched prices.",
			"Confirm trend strength with ADX and timing with the stochastic oscillator.",
			"Locate the nearest support and resistance levels from recent swing highs and lows.",
			"Choose an entry point, a protective stop loss beyond invalidation and a take profit at the next target level.",
		},
	},
	StrategyScalper: {
		Role: "You are a disciplined intraday scalper. " +
			"You look for short, high-probability moves and always protect capital with tight stops.",
		Steps: []string{
			"Read the short-term direction from the fastest moving averages.",
			"Look for RSI and stochastic extremes that signal an imminent reversal or continuation.",
			"Size the stop loss from the current ATR so normal noise does not trigger it.",
			"Target the closest liquidity level and keep the trade short-lived.",
		},
	},
	StrategySwing: {
		Role: "You are a patient swing trader who holds positions for several days. " +
			"You only act when trend, momentum and structure agree.",
		Steps: []string{
			"Determine the dominant trend from the slower moving averages.",
			"Wait for a pullback toward the moving averages or the middle Bollinger Band.",
			"Require MACD and ADX to confirm that the trend still has strength.",
			"Place the stop loss beyond the last swing point and the take profit at the next major level.",
		},
	},
}

// ParseStrategy は文字列を戦略に変換します。空文字はStrategyAnalystです。
func ParseStrategy(s string) (Strategy, bool) {
	if s == "" {
		return StrategyAnalyst, true
	}
	st := Strategy(strings.ToLower(strings.TrimSpace(s)))
	_, ok := framings[st]
	return st, ok
}

// Strategies は利用可能な戦略を返します。
func Strategies() []Strategy {
	return []Strategy{StrategyAnalyst, StrategyScalper, StrategySwing}
}

const promptTemplate = `{{.Role}}

Instrument: {{.Instrument}}
Timeframe: {{.Timeframe}}
Indicators: {{if .Indicators}}{{join .Indicators ", "}}{{else}}none{{end}}

Market data: the last {{.Count}} candles, oldest first, as a JSON array. Each candle has timestamp (epoch seconds), open, high, low, close, volume and one field per indicator. An indicator value is null where not enough history exists yet.
{{.Data}}

Analysis steps:
{{range $i, $s := .Steps}}{{inc $i}}. {{$s}}
{{end}}
Risk rules:
- The reward:risk ratio must be at least {{.MinRewardRisk}}:1, meaning the distance from entryPoint to takeProfit is at least {{.MinRewardRisk}} times the distance from entryPoint to stopLoss.
- stopLoss and takeProfit must lie on opposite sides of entryPoint.

Output format:
Respond with ONLY a single JSON object. Do not add any text, explanation or markdown before or after it. Use exactly these keys:
{
  "entryPoint": <number>,
  "stopLoss": <number>,
  "takeProfit": <number>,
  "rationale": <string, a short explanation of the setup>,
  "confidenceScore": <integer from 1 to 10>
}`

var promptTmpl = template.Must(template.New("analysis_prompt").Funcs(template.FuncMap{
	"join": strings.Join,
	"inc":  func(i int) int { return i + 1 },
}).Parse(promptTemplate))
