// Package dto はTwelve Data APIレスポンスのデータ転送オブジェクトを定義します。
package dto

// TimeSeriesResponse はTwelve Data time_seriesエンドポイントからのJSONレスポンスを表します。
type TimeSeriesResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Meta    Meta   `json:"meta"`
	Values  []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"` // 為替ペアでは省略される
	} `json:"values"`
}

// Meta はレスポンスのメタ情報です。
type Meta struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
}
