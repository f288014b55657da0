package cache

import (
	"time"
)

const (
	// MinTTL is the shortest lifetime given to a cached candle page.
	MinTTL = time.Second
	// MaxTTL caps the lifetime of a cached candle page.
	MaxTTL = 5 * time.Minute
)

// TimeUntilNextBoundary は次のローソク足の区切り（UNIX時刻がgranularityの倍数）までの期間を返します。
// granularityが0以下の場合は0を返します。
func TimeUntilNextBoundary(now time.Time, granularity int) time.Duration {
	if granularity <= 0 {
		return 0
	}
	g := int64(granularity)
	next := (now.Unix()/g + 1) * g
	return time.Unix(next, 0).Sub(now)
}

// candleTTL は次の足が確定するまでキャッシュを保持し、[MinTTL, MaxTTL]に収めます。
func candleTTL(now time.Time, granularity int) time.Duration {
	return min(max(TimeUntilNextBoundary(now, granularity), MinTTL), MaxTTL)
}
