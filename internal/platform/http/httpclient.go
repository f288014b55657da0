// Package http provides the outbound HTTP client shared by the REST adapters.
package http

import (
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"
)

// redactedParams are query parameters never written to logs.
var redactedParams = []string{"apikey", "api_key", "key", "token"}

// NewHTTPClient は外部API呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト（デフォルトより短い）
//   - MaxIdleConns: 最大アイドル接続数
//   - TLSHandshakeTimeout: HTTPSハンドシェイクの最大時間
//   - Client.Timeout: リクエスト全体のタイムアウト（呼び出し元から渡される）
//
// すべてのリクエストは所要時間とステータスをDebugレベルでログに出力します。
// クエリ中のAPIキーはマスクされます。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: &loggingTransport{next: t}}
}

// loggingTransport logs every outbound round trip.
type loggingTransport struct {
	next http.RoundTripper
}

func (l *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	res, err := l.next.RoundTrip(req)
	attrs := []any{
		"method", req.Method,
		"url", RedactURL(req.URL),
		"duration", time.Since(start),
	}
	if err != nil {
		slog.Debug("outbound request failed", append(attrs, "error", err)...)
		return nil, err
	}
	slog.Debug("outbound request", append(attrs, "status", res.StatusCode)...)
	return res, nil
}

// RedactURL returns u as a string with credential query parameters masked.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	c := *u
	q := c.Query()
	for _, p := range redactedParams {
		if q.Has(p) {
			q.Set(p, "***")
		}
	}
	c.RawQuery = q.Encode()
	return c.String()
}
