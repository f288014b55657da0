package entity

import "errors"

// ErrUnsupportedGranularity is returned by candle sources that cannot serve
// the requested candle width.
var ErrUnsupportedGranularity = errors.New("unsupported granularity")
