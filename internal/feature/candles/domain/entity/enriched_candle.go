package entity

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// IndicatorValue is the value of one configured indicator on one candle.
type IndicatorValue struct {
	Name   string
	Fields []string
	Point  Point // nil when the candle lies in the indicator's warm-up range
}

// EnrichedCandle is a Candle plus the value of every configured indicator.
type EnrichedCandle struct {
	Candle
	Indicators []IndicatorValue
}

// Value returns the named indicator value and whether it is present.
func (e EnrichedCandle) Value(name string) (Point, bool) {
	for _, v := range e.Indicators {
		if v.Name == name {
			return v.Point, v.Point != nil
		}
	}
	return nil, false
}

// MarshalJSON writes the candle fields followed by every indicator in
// configuration order. Absent indicator values are written as null so the
// reader can tell "no value" from zero.
func (e EnrichedCandle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"timestamp":`)
	buf.WriteString(strconv.FormatInt(e.Timestamp, 10))
	writeNumberField(&buf, "open", e.Open)
	writeNumberField(&buf, "high", e.High)
	writeNumberField(&buf, "low", e.Low)
	writeNumberField(&buf, "close", e.Close)
	writeNumberField(&buf, "volume", e.Volume)

	for _, v := range e.Indicators {
		name, err := json.Marshal(v.Name)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		if err := writePoint(&buf, v.Fields, v.Point); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeNumberField(buf *bytes.Buffer, key string, v float64) {
	buf.WriteString(`,"`)
	buf.WriteString(key)
	buf.WriteString(`":`)
	buf.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
}

func writePoint(buf *bytes.Buffer, fields []string, p Point) error {
	if p == nil {
		buf.WriteString("null")
		return nil
	}
	if len(fields) == 0 {
		buf.WriteString(strconv.FormatFloat(p[0], 'f', -1, 64))
		return nil
	}
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if i < len(p) {
			buf.WriteString(strconv.FormatFloat(p[i], 'f', -1, 64))
		} else {
			buf.WriteString("null")
		}
	}
	buf.WriteByte('}')
	return nil
}
