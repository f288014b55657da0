// Package dto defines data transfer objects for the assets HTTP API.
package dto

// AssetItem represents an instrument in the API response.
type AssetItem struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market string `json:"market"`
}

// TimeframeItem represents a selectable timeframe.
type TimeframeItem struct {
	Label       string `json:"label"`
	Granularity int    `json:"granularity"`
}
