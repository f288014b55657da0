package entity

import (
	"strconv"
	"strings"
)

// DefaultGranularity is used for timeframe labels with an unknown or missing unit.
const DefaultGranularity = 60

// MaxGranularity is the widest candle accepted: one year. Wider labels fall
// back to DefaultGranularity.
const MaxGranularity = 365 * 86400

// Granularity converts a timeframe label such as "5m", "1H" or "1D" into
// seconds per candle. The unit letter is case-insensitive. Labels whose
// unit is not m, h or d, whose count cannot be parsed, or whose width exceeds
// MaxGranularity fall back to DefaultGranularity.
func Granularity(label string) int {
	label = strings.TrimSpace(label)
	if len(label) < 2 {
		return DefaultGranularity
	}

	n, err := strconv.Atoi(label[:len(label)-1])
	if err != nil || n <= 0 {
		return DefaultGranularity
	}

	var unit int
	switch strings.ToLower(label[len(label)-1:]) {
	case "m":
		unit = 60
	case "h":
		unit = 3600
	case "d":
		unit = 86400
	default:
		return DefaultGranularity
	}
	if n > MaxGranularity/unit {
		return DefaultGranularity
	}
	return n * unit
}
