// Package api はHTTPトランスポート層で共有するリクエスト/レスポンス型を定義します。
package api

import "time"

// ErrorResponse はすべてのエラー応答のボディです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse は処理結果メッセージのみを返す応答です。
type MessageResponse struct {
	Message string `json:"message"`
}

// CreatedResponse はリソース作成時の応答です。
type CreatedResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ProfileRequest はユーザープロフィールの入力です。
type ProfileRequest struct {
	Phone       string            `json:"phone"`
	Address     string            `json:"address"`
	Preferences map[string]string `json:"preferences"`
}

// RegisterRequest は /register のリクエストボディです。
// メール形式とパスワード強度はusecase側のポリシーで検証します。
type RegisterRequest struct {
	Email    string         `json:"email" binding:"required"`
	Password string         `json:"password" binding:"required"`
	Name     string         `json:"name"`
	Profile  ProfileRequest `json:"profile"`
}

// LoginRequest は /login のリクエストボディです。
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse はログイン成功時の応答です。
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// DocumentPayload は請求書に添付されたドキュメントのメタデータです。
type DocumentPayload struct {
	Type string `json:"type"`
	Path string `json:"path"`
	Name string `json:"name"`
}

// AddInvoiceRequest は /invoice/add の入力です。
// multipart/form-data と application/json の両方を受け付けます。
type AddInvoiceRequest struct {
	ProductName        string            `json:"product_name" form:"product_name"`
	PurchaseDate       string            `json:"purchase_date" form:"purchase_date"`
	StoreName          string            `json:"store_name" form:"store_name"`
	CustomerCareNumber string            `json:"customer_care_number" form:"customer_care_number"`
	Price              *float64          `json:"price" form:"-"`
	Category           string            `json:"category" form:"category"`
	WarrantyPeriod     string            `json:"warranty_period" form:"warranty_period"`
	Notes              string            `json:"notes" form:"notes"`
	Documents          []DocumentPayload `json:"documents" form:"-"`
}

// UpdateInvoiceRequest は PUT /invoice/:id の部分更新ボディです。
// 許可されたフィールドのみを持ち、それ以外のキーは無視されます。
type UpdateInvoiceRequest struct {
	ProductName        *string  `json:"product_name"`
	PurchaseDate       *string  `json:"purchase_date"`
	StoreName          *string  `json:"store_name"`
	CustomerCareNumber *string  `json:"customer_care_number"`
	Price              *float64 `json:"price"`
	Category           *string  `json:"category"`
	WarrantyPeriod     *string  `json:"warranty_period"`
	Notes              *string  `json:"notes"`
}

// ListInvoicesQuery は GET /invoice/list のクエリパラメータです。
type ListInvoicesQuery struct {
	Category  string `form:"category"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}

// InvoiceResponse は請求書1件の表現です。
type InvoiceResponse struct {
	ID                 string            `json:"id"`
	ProductName        string            `json:"product_name"`
	PurchaseDate       string            `json:"purchase_date"`
	StoreName          string            `json:"store_name"`
	CustomerCareNumber string            `json:"customer_care_number"`
	Price              *float64          `json:"price,omitempty"`
	Category           string            `json:"category"`
	WarrantyPeriod     string            `json:"warranty_period,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	Documents          []DocumentPayload `json:"documents"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// CategoryStatResponse はカテゴリごとの集計です。
type CategoryStatResponse struct {
	Category   string  `json:"category"`
	Count      int64   `json:"count"`
	TotalValue float64 `json:"total_value"`
}

// StatsResponse は GET /dashboard/stats の応答です。
type StatsResponse struct {
	TotalInvoices  int64                  `json:"total_invoices"`
	CategoryStats  []CategoryStatResponse `json:"category_stats"`
	RecentInvoices []InvoiceResponse      `json:"recent_invoices"`
}

// ReceiptResponse は /analyze-receipt の応答です。
type ReceiptResponse struct {
	ProductName        string   `json:"product_name"`
	StoreName          string   `json:"store_name"`
	PurchaseDate       string   `json:"purchase_date"`
	Price              *float64 `json:"price"`
	Category           string   `json:"category"`
	WarrantyPeriod     string   `json:"warranty_period"`
	CustomerCareNumber string   `json:"customer_care_number"`
}
