// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// readinessTimeout は依存先1件あたりの確認時間の上限です。
const readinessTimeout = 2 * time.Second

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// 依存先は確認せず、プロセスが応答できることだけを返します。
func Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Check は依存先1件の疎通確認です。
type Check func(ctx context.Context) error

// Readiness は登録された依存先（Redis、DBなど）をすべて確認し、
// 1件でも失敗すれば503を返すハンドラーを生成します。
func Readiness(checks map[string]Check) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		status := http.StatusOK
		results := make(map[string]string, len(names))
		for _, name := range names {
			ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
			err := checks[name](ctx)
			cancel()
			if err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "unavailable"
		}
		c.JSON(status, gin.H{"status": overall, "checks": results})
	}
}
