// Package handler はreceiptフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"purchase_backend/internal/api"
	"purchase_backend/internal/feature/receipt/domain/entity"
	"purchase_backend/internal/feature/receipt/usecase"
	jwtmw "purchase_backend/internal/platform/jwt"
	"purchase_backend/internal/shared/apperr"
)

// ReceiptUsecase はレシート解析のユースケースインターフェースを定義します。
type ReceiptUsecase interface {
	Analyze(ctx context.Context, image []byte, declaredMIME string) (*entity.ReceiptFields, error)
}

// ReceiptHandler はレシート解析のHTTPリクエストを処理します。
type ReceiptHandler struct {
	uc ReceiptUsecase
}

// NewReceiptHandler はReceiptHandlerの新しいインスタンスを生成します。
func NewReceiptHandler(uc ReceiptUsecase) *ReceiptHandler {
	return &ReceiptHandler{uc: uc}
}

// Analyze はレシート画像から請求書項目の候補を抽出します。
//
// エンドポイント: POST /analyze-receipt
// Content-Type: multipart/form-data
// フィールド: image（画像ファイル、最大10MiB）
func (h *ReceiptHandler) Analyze(c *gin.Context, id jwtmw.Identity) {
	file, err := c.FormFile("image")
	if err != nil {
		slog.Warn("receipt image missing", "error", err, "user_id", id.UserID, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "image file is required"})
		return
	}
	if file.Size > usecase.MaxImageSize {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: apperr.Message(usecase.ErrImageTooLarge)})
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("failed to open receipt image", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to read image"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close receipt image", "error", err)
		}
	}()

	// 上限+1バイトまで読み、サイズ超過はusecaseで判定する
	image, err := io.ReadAll(io.LimitReader(f, usecase.MaxImageSize+1))
	if err != nil {
		slog.Error("failed to read receipt image", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to read image"})
		return
	}

	fields, err := h.uc.Analyze(c.Request.Context(), image, file.Header.Get("Content-Type"))
	if err != nil {
		status := apperr.Status(err)
		if status >= http.StatusInternalServerError {
			slog.Error("receipt analysis failed", "error", err, "user_id", id.UserID)
		} else {
			slog.Warn("receipt analysis rejected", "error", err, "user_id", id.UserID, "remote_addr", c.ClientIP())
		}
		c.JSON(status, api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, api.ReceiptResponse{
		ProductName:        fields.ProductName,
		StoreName:          fields.StoreName,
		PurchaseDate:       fields.PurchaseDate,
		Price:              fields.Price,
		Category:           fields.Category,
		WarrantyPeriod:     fields.WarrantyPeriod,
		CustomerCareNumber: fields.CustomerCareNumber,
	})
}
