// Package entity defines the domain models for the candles feature.
package entity

// Candle represents one OHLCV bar of an instrument at a fixed granularity.
type Candle struct {
	Timestamp int64   `json:"timestamp"` // Epoch seconds at the start of the bar
	Open      float64 `json:"open"`      // Opening price
	High      float64 `json:"high"`      // Highest price during the bar
	Low       float64 `json:"low"`       // Lowest price during the bar
	Close     float64 `json:"close"`     // Closing price
	Volume    float64 `json:"volume"`    // Traded volume, 0 when the source has none
}
