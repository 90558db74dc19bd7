// Package handler はinvoiceフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"purchase_backend/internal/api"
	"purchase_backend/internal/feature/invoice/domain/entity"
	"purchase_backend/internal/feature/invoice/usecase"
	jwtmw "purchase_backend/internal/platform/jwt"
	"purchase_backend/internal/shared/apperr"
)

// documentsField はmultipartで添付ドキュメントを受け取るフィールド名です。
const documentsField = "documents"

// maxMultipartMemory はmultipartボディをメモリに保持する上限です。超過分は一時ファイルに退避されます。
const maxMultipartMemory = 32 << 20

// InvoiceUsecase は請求書操作のユースケースを定義します。
type InvoiceUsecase interface {
	Add(ctx context.Context, ownerID string, in usecase.AddInput) (string, error)
	List(ctx context.Context, ownerID string, in usecase.ListInput) ([]entity.Invoice, error)
	Get(ctx context.Context, ownerID, id string) (*entity.Invoice, error)
	Update(ctx context.Context, ownerID, id string, in usecase.UpdateInput) (*entity.Invoice, error)
	Delete(ctx context.Context, ownerID, id string) error
	Stats(ctx context.Context, ownerID string) (*entity.Stats, error)
}

// InvoiceHandler は請求書関連のHTTPリクエストを処理します。
// すべてのメソッドは認証ゲートが解決した Identity を受け取ります。
type InvoiceHandler struct {
	invoices InvoiceUsecase
}

// NewInvoiceHandler はInvoiceHandlerの新しいインスタンスを生成します。
func NewInvoiceHandler(invoices InvoiceUsecase) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// Add は請求書を登録します。
// multipart/form-data（フォーム項目と documents ファイル）または JSON を受け付けます。
// ファイル本体は保存せず、種別・参照パス・ファイル名のみを記録します。
func (h *InvoiceHandler) Add(c *gin.Context, id jwtmw.Identity) {
	var (
		req api.AddInvoiceRequest
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") || c.ContentType() == "application/x-www-form-urlencoded" {
		req, err = bindAddForm(c, id.UserID)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		slog.Warn("add invoice: bad request body", "error", err, "user_id", id.UserID, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}

	docs := make([]entity.Document, 0, len(req.Documents))
	for _, d := range req.Documents {
		docs = append(docs, entity.Document(d))
	}

	invoiceID, err := h.invoices.Add(c.Request.Context(), id.UserID, usecase.AddInput{
		ProductName:        req.ProductName,
		PurchaseDate:       req.PurchaseDate,
		StoreName:          req.StoreName,
		CustomerCareNumber: req.CustomerCareNumber,
		Price:              req.Price,
		Category:           req.Category,
		WarrantyPeriod:     req.WarrantyPeriod,
		Notes:              req.Notes,
		Documents:          docs,
	})
	if err != nil {
		respondError(c, "add invoice", id, err)
		return
	}

	slog.Info("invoice added", "invoice_id", invoiceID, "user_id", id.UserID, "documents", len(docs))
	c.JSON(http.StatusCreated, api.CreatedResponse{ID: invoiceID, Message: "Invoice added successfully"})
}

// List は所有者の請求書一覧を返します。category, sort_by, sort_order で絞り込み・並び替えできます。
func (h *InvoiceHandler) List(c *gin.Context, id jwtmw.Identity) {
	var q api.ListInvoicesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid query parameters"})
		return
	}

	list, err := h.invoices.List(c.Request.Context(), id.UserID, usecase.ListInput{
		Category:  q.Category,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	})
	if err != nil {
		respondError(c, "list invoices", id, err)
		return
	}

	resp := make([]api.InvoiceResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toInvoiceResponse(&list[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Get は請求書を1件返します。
func (h *InvoiceHandler) Get(c *gin.Context, id jwtmw.Identity) {
	inv, err := h.invoices.Get(c.Request.Context(), id.UserID, c.Param("id"))
	if err != nil {
		respondError(c, "get invoice", id, err)
		return
	}
	c.JSON(http.StatusOK, toInvoiceResponse(inv))
}

// Update は請求書を部分更新し、更新後の請求書を返します。
func (h *InvoiceHandler) Update(c *gin.Context, id jwtmw.Identity) {
	var req api.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update invoice: bad request body", "error", err, "user_id", id.UserID, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}

	inv, err := h.invoices.Update(c.Request.Context(), id.UserID, c.Param("id"), usecase.UpdateInput{
		ProductName:        req.ProductName,
		PurchaseDate:       req.PurchaseDate,
		StoreName:          req.StoreName,
		CustomerCareNumber: req.CustomerCareNumber,
		Price:              req.Price,
		Category:           req.Category,
		WarrantyPeriod:     req.WarrantyPeriod,
		Notes:              req.Notes,
	})
	if err != nil {
		respondError(c, "update invoice", id, err)
		return
	}

	slog.Info("invoice updated", "invoice_id", inv.ID, "user_id", id.UserID)
	c.JSON(http.StatusOK, toInvoiceResponse(inv))
}

// Delete は請求書を削除します。
func (h *InvoiceHandler) Delete(c *gin.Context, id jwtmw.Identity) {
	invoiceID := c.Param("id")
	if err := h.invoices.Delete(c.Request.Context(), id.UserID, invoiceID); err != nil {
		respondError(c, "delete invoice", id, err)
		return
	}

	slog.Info("invoice deleted", "invoice_id", invoiceID, "user_id", id.UserID)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Invoice deleted successfully"})
}

// Stats はダッシュボード用の集計を返します。
func (h *InvoiceHandler) Stats(c *gin.Context, id jwtmw.Identity) {
	stats, err := h.invoices.Stats(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, "dashboard stats", id, err)
		return
	}

	resp := api.StatsResponse{
		TotalInvoices:  stats.TotalInvoices,
		CategoryStats:  make([]api.CategoryStatResponse, 0, len(stats.Categories)),
		RecentInvoices: make([]api.InvoiceResponse, 0, len(stats.RecentInvoices)),
	}
	for _, cs := range stats.Categories {
		resp.CategoryStats = append(resp.CategoryStats, api.CategoryStatResponse(cs))
	}
	for i := range stats.RecentInvoices {
		resp.RecentInvoices = append(resp.RecentInvoices, toInvoiceResponse(&stats.RecentInvoices[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// respondError はエラーの種別に応じたステータスで応答します。5xxのみErrorレベルで記録します。
func respondError(c *gin.Context, op string, id jwtmw.Identity, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", "error", err, "user_id", id.UserID, "remote_addr", c.ClientIP())
	} else {
		slog.Warn(op+" rejected", "error", err, "user_id", id.UserID, "remote_addr", c.ClientIP())
	}
	c.JSON(status, api.ErrorResponse{Error: apperr.Message(err)})
}

// bindAddForm はフォーム項目と添付ファイルのメタデータを読み取ります。
func bindAddForm(c *gin.Context, ownerID string) (api.AddInvoiceRequest, error) {
	var req api.AddInvoiceRequest
	if err := c.ShouldBind(&req); err != nil {
		return req, err
	}
	if raw := strings.TrimSpace(c.PostForm("price")); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, fmt.Errorf("price: %w", err)
		}
		req.Price = &p
	}

	form, err := c.MultipartForm()
	if err != nil {
		// urlencodedの場合はファイルなし
		if errors.Is(err, http.ErrNotMultipart) {
			return req, nil
		}
		return req, err
	}
	for _, fh := range form.File[documentsField] {
		req.Documents = append(req.Documents, documentFromFile(ownerID, fh))
	}
	return req, nil
}

// documentFromFile はアップロードされたファイルから参照用メタデータを作ります。
func documentFromFile(ownerID string, fh *multipart.FileHeader) api.DocumentPayload {
	name := filepath.Base(fh.Filename)
	docType := fh.Header.Get("Content-Type")
	if docType == "" {
		docType = "application/octet-stream"
	}
	return api.DocumentPayload{
		Type: docType,
		Path: path.Join("uploads", ownerID, uuid.NewString()+"-"+name),
		Name: name,
	}
}

// formatPurchaseDate は時刻成分のない購入日を日付のみで表現します。
func formatPurchaseDate(inv *entity.Invoice) string {
	d := inv.PurchaseDate.UTC()
	if d.Hour() == 0 && d.Minute() == 0 && d.Second() == 0 && d.Nanosecond() == 0 {
		return d.Format("2006-01-02")
	}
	return d.Format("2006-01-02T15:04:05Z07:00")
}

func toInvoiceResponse(inv *entity.Invoice) api.InvoiceResponse {
	docs := make([]api.DocumentPayload, 0, len(inv.Documents))
	for _, d := range inv.Documents {
		docs = append(docs, api.DocumentPayload(d))
	}
	return api.InvoiceResponse{
		ID:                 inv.ID,
		ProductName:        inv.ProductName,
		PurchaseDate:       formatPurchaseDate(inv),
		StoreName:          inv.StoreName,
		CustomerCareNumber: inv.CustomerCareNumber,
		Price:              inv.Price,
		Category:           inv.Category,
		WarrantyPeriod:     inv.WarrantyPeriod,
		Notes:              inv.Notes,
		Documents:          docs,
		CreatedAt:          inv.CreatedAt,
		UpdatedAt:          inv.UpdatedAt,
	}
}
