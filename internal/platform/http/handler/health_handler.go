// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// checkTimeout は依存先1つあたりの疎通確認の上限です。
const checkTimeout = 2 * time.Second

// Check は依存先（ストアやキャッシュ）の疎通を確認します。
type Check func(ctx context.Context) error

// HealthHandler は /healthz を処理します。登録された依存先がすべて応答すれば200、
// 1つでも失敗すれば503を返します。
type HealthHandler struct {
	checks map[string]Check
}

// NewHealthHandler はHealthHandlerの新しいインスタンスを生成します。checks は nil でも構いません。
func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	failed := h.run(c.Request.Context())
	status := http.StatusOK
	body := gin.H{"status": "ok"}
	if len(failed) > 0 {
		status = http.StatusServiceUnavailable
		body = gin.H{"status": "unavailable", "failed": failed}
	}

	if c.Request.Method == http.MethodHead {
		c.Status(status)
		return
	}
	c.JSON(status, body)
}

// run はすべてのチェックを実行し、失敗した依存先の名前を昇順で返します。
func (h *HealthHandler) run(ctx context.Context) []string {
	var failed []string
	for name, check := range h.checks {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := check(cctx)
		cancel()
		if err != nil {
			slog.Warn("health check failed", "dependency", name, "error", err)
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)
	return failed
}
