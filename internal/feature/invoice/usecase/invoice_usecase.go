// Package usecase はinvoiceフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"math"
	"strings"
	"time"

	"purchase_backend/internal/feature/invoice/domain/entity"
)

const (
	// DefaultCategory はカテゴリ未入力の請求書に設定されるカテゴリです。
	DefaultCategory = "uncategorized"
	// RecentInvoiceLimit はダッシュボードに表示する直近の請求書の件数です。
	RecentInvoiceLimit = 5
)

// purchaseDateLayouts は購入日として受け付けるISO-8601の書式です。
var purchaseDateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// InvoiceRepository は請求書の永続化層を抽象化します。
// すべての操作は所有者IDで絞り込まれ、他ユーザーの請求書は存在しないものとして扱います。
type InvoiceRepository interface {
	// Create は請求書を保存し、生成されたIDを inv に設定します。
	Create(ctx context.Context, inv *entity.Invoice) error
	// List は所有者の請求書を条件に従って返します。
	List(ctx context.Context, ownerID string, q entity.ListQuery) ([]entity.Invoice, error)
	// FindByID は所有者の請求書を1件返します。見つからない場合は ErrInvoiceNotFound を返します。
	FindByID(ctx context.Context, ownerID, id string) (*entity.Invoice, error)
	// Update は所有者の請求書にパッチを適用し、更新後の請求書を返します。
	Update(ctx context.Context, ownerID, id string, patch entity.Patch) (*entity.Invoice, error)
	// Delete は所有者の請求書を削除します。削除対象がない場合は ErrInvoiceNotFound を返します。
	Delete(ctx context.Context, ownerID, id string) error
	// Stats は所有者の請求書の集計と、作成日時の新しい順に recentLimit 件の請求書を返します。
	Stats(ctx context.Context, ownerID string, recentLimit int) (*entity.Stats, error)
}

// AddInput は請求書登録の入力です。
type AddInput struct {
	ProductName        string
	PurchaseDate       string
	StoreName          string
	CustomerCareNumber string
	Price              *float64
	Category           string
	WarrantyPeriod     string
	Notes              string
	Documents          []entity.Document
}

// UpdateInput は部分更新の入力です。nilのフィールドは変更しません。
type UpdateInput struct {
	ProductName        *string
	PurchaseDate       *string
	StoreName          *string
	CustomerCareNumber *string
	Price              *float64
	Category           *string
	WarrantyPeriod     *string
	Notes              *string
}

// ListInput は一覧取得の入力です。空文字はデフォルト値を意味します。
type ListInput struct {
	Category  string
	SortBy    string
	SortOrder string
}

// invoiceUsecase は請求書のビジネスロジックを提供します。
type invoiceUsecase struct {
	invoices InvoiceRepository
	now      func() time.Time
}

// NewInvoiceUsecase はinvoiceUsecaseの新しいインスタンスを生成します。
func NewInvoiceUsecase(invoices InvoiceRepository) *invoiceUsecase {
	return &invoiceUsecase{invoices: invoices, now: time.Now}
}

// ParsePurchaseDate はISO-8601の日付または日時を解釈し、UTCで返します。
func ParsePurchaseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range purchaseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidPurchaseDate
}

// timestamp はストア間で精度を揃えるためミリ秒に切り捨てた現在時刻を返します。
func (u *invoiceUsecase) timestamp() time.Time {
	return u.now().UTC().Truncate(time.Millisecond)
}

// Add は必須フィールドを検証して請求書を登録し、IDを返します。
// ドキュメントはメタデータのみ保存し、ファイル本体は扱いません。
func (u *invoiceUsecase) Add(ctx context.Context, ownerID string, in AddInput) (string, error) {
	required := []struct {
		name  string
		value string
	}{
		{"product_name", in.ProductName},
		{"purchase_date", in.PurchaseDate},
		{"store_name", in.StoreName},
		{"customer_care_number", in.CustomerCareNumber},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return "", missingField(f.name)
		}
	}

	purchaseDate, err := ParsePurchaseDate(in.PurchaseDate)
	if err != nil {
		return "", err
	}
	if err := validatePrice(in.Price); err != nil {
		return "", err
	}

	now := u.timestamp()
	inv := &entity.Invoice{
		OwnerID:            ownerID,
		ProductName:        strings.TrimSpace(in.ProductName),
		PurchaseDate:       purchaseDate,
		StoreName:          strings.TrimSpace(in.StoreName),
		CustomerCareNumber: strings.TrimSpace(in.CustomerCareNumber),
		Price:              in.Price,
		Category:           normalizeCategory(in.Category),
		WarrantyPeriod:     strings.TrimSpace(in.WarrantyPeriod),
		Notes:              in.Notes,
		Documents:          in.Documents,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if inv.Documents == nil {
		inv.Documents = []entity.Document{}
	}

	if err := u.invoices.Create(ctx, inv); err != nil {
		return "", err
	}
	return inv.ID, nil
}

// List は所有者の請求書を返します。デフォルトは購入日の降順です。
func (u *invoiceUsecase) List(ctx context.Context, ownerID string, in ListInput) ([]entity.Invoice, error) {
	q := entity.ListQuery{
		Category:  strings.TrimSpace(in.Category),
		SortBy:    entity.SortByPurchaseDate,
		SortOrder: entity.SortDesc,
	}
	if in.SortBy != "" {
		q.SortBy = entity.SortField(strings.ToLower(in.SortBy))
		if !q.SortBy.Valid() {
			return nil, ErrInvalidSortField
		}
	}
	if in.SortOrder != "" {
		q.SortOrder = entity.SortOrder(strings.ToLower(in.SortOrder))
		if q.SortOrder != entity.SortAsc && q.SortOrder != entity.SortDesc {
			return nil, ErrInvalidSortOrder
		}
	}
	return u.invoices.List(ctx, ownerID, q)
}

// Get は所有者の請求書を1件返します。
func (u *invoiceUsecase) Get(ctx context.Context, ownerID, id string) (*entity.Invoice, error) {
	return u.invoices.FindByID(ctx, ownerID, id)
}

// Update は許可リストのフィールドのみを更新し、常に updated_at を更新します。
func (u *invoiceUsecase) Update(ctx context.Context, ownerID, id string, in UpdateInput) (*entity.Invoice, error) {
	patch := entity.Patch{
		ProductName:        trimmed(in.ProductName),
		StoreName:          trimmed(in.StoreName),
		CustomerCareNumber: trimmed(in.CustomerCareNumber),
		Price:              in.Price,
		WarrantyPeriod:     trimmed(in.WarrantyPeriod),
		Notes:              in.Notes,
	}
	if in.Category != nil {
		c := normalizeCategory(*in.Category)
		patch.Category = &c
	}
	if in.PurchaseDate != nil {
		d, err := ParsePurchaseDate(*in.PurchaseDate)
		if err != nil {
			return nil, err
		}
		patch.PurchaseDate = &d
	}
	if patch.IsEmpty() {
		return nil, ErrNoUpdatableFields
	}

	// 必須フィールドを空にする更新は拒否
	for name, v := range map[string]*string{
		"product_name":         patch.ProductName,
		"store_name":           patch.StoreName,
		"customer_care_number": patch.CustomerCareNumber,
	} {
		if v != nil && *v == "" {
			return nil, missingField(name)
		}
	}
	if err := validatePrice(patch.Price); err != nil {
		return nil, err
	}

	patch.UpdatedAt = u.timestamp()
	return u.invoices.Update(ctx, ownerID, id, patch)
}

// Delete は所有者の請求書を削除します。
func (u *invoiceUsecase) Delete(ctx context.Context, ownerID, id string) error {
	return u.invoices.Delete(ctx, ownerID, id)
}

// Stats は所有者のダッシュボード集計を返します。
func (u *invoiceUsecase) Stats(ctx context.Context, ownerID string) (*entity.Stats, error) {
	return u.invoices.Stats(ctx, ownerID, RecentInvoiceLimit)
}

func normalizeCategory(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return DefaultCategory
	}
	return c
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// validatePrice は価格が有限かつ0以上であることを確認します。未入力（nil）は許可します。
// NaN や Inf は保存されるとJSONに変換できなくなるため拒否します。
func validatePrice(p *float64) error {
	if p == nil {
		return nil
	}
	if math.IsNaN(*p) || math.IsInf(*p, 0) {
		return ErrInvalidPrice
	}
	if *p < 0 {
		return ErrNegativePrice
	}
	return nil
}
