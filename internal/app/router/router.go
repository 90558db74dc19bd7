// Package router はHTTPルーティングを定義します。
package router

import (
	"github.com/gin-gonic/gin"

	authhandler "purchase_backend/internal/feature/auth/transport/handler"
	invoicehandler "purchase_backend/internal/feature/invoice/transport/handler"
	receipthandler "purchase_backend/internal/feature/receipt/transport/handler"
	"purchase_backend/internal/platform/http/handler"
	jwtmw "purchase_backend/internal/platform/jwt"
)

// NewRouter はすべてのエンドポイントを登録したginエンジンを返します。
// 認証必須のルートは gate.Require を通してのみ登録します。
func NewRouter(gate *jwtmw.Gate, health *handler.HealthHandler, authHandler *authhandler.AuthHandler,
	invoice *invoicehandler.InvoiceHandler, receipt *receipthandler.ReceiptHandler) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)
	r.OPTIONS("/healthz", health.Health)
	// 新規ユーザー登録
	r.POST("/register", authHandler.Register)
	// ログイン（JWT 発行）
	r.POST("/login", authHandler.Login)

	// 認証必須のルート
	r.POST("/analyze-receipt", gate.Require(receipt.Analyze))

	inv := r.Group("/invoice")
	{
		inv.POST("/add", gate.Require(invoice.Add))
		inv.GET("/list", gate.Require(invoice.List))
		inv.GET("/:id", gate.Require(invoice.Get))
		inv.PUT("/:id", gate.Require(invoice.Update))
		inv.DELETE("/:id", gate.Require(invoice.Delete))
		// 旧クライアント向けの削除パス
		inv.DELETE("/delete/:id", gate.Require(invoice.Delete))
	}

	r.GET("/dashboard/stats", gate.Require(invoice.Stats))

	return r
}
