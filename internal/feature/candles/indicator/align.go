package indicator

import "github.com/Kaligetsagency/aifx/internal/feature/candles/domain/entity"

// Align はシリーズを右詰めでローソク足に対応させます。
// 長さMのシリーズはN本のうち後ろからM本に対応し、candle[i]にはseries[i-(N-M)]が入ります。
// それより前の足では値は欠損になります。オフセットは実際のシリーズ長から求めます。
func Align(candles []entity.Candle, series []entity.Series) []entity.EnrichedCandle {
	n := len(candles)
	out := make([]entity.EnrichedCandle, n)
	for i, c := range candles {
		values := make([]entity.IndicatorValue, len(series))
		for j, s := range series {
			p, _ := s.At(i, n)
			values[j] = entity.IndicatorValue{Name: s.Name, Fields: s.Fields, Point: p}
		}
		out[i] = entity.EnrichedCandle{Candle: c, Indicators: values}
	}
	return out
}
