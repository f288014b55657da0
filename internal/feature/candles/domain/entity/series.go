package entity

// Point is a single indicator value. A scalar indicator stores one number;
// a composite indicator stores one number per Series.Fields entry, in order.
// A nil Point means the value is absent.
type Point []float64

// Series is the output of one indicator over N candles.
// It holds M <= N points, and Points[k] belongs to candle N-M+k.
type Series struct {
	Name   string   // Configured indicator name (e.g., "sma20")
	Fields []string // Component names for composite indicators, nil for scalars
	Points []Point
}

// At returns the point aligned to candle i out of n candles.
// The offset is derived from the actual number of points, so a series
// shorter than expected can never be misaligned.
func (s Series) At(i, n int) (Point, bool) {
	offset := n - len(s.Points)
	if offset < 0 || i < offset || i >= n {
		return nil, false
	}
	p := s.Points[i-offset]
	return p, p != nil
}
