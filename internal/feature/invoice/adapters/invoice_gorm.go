// Package adapters はinvoiceフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"purchase_backend/internal/feature/invoice/domain/entity"
	"purchase_backend/internal/feature/invoice/usecase"
)

// invoiceGorm はInvoiceRepositoryインターフェースのGORM実装です。
type invoiceGorm struct {
	db *gorm.DB
}

var _ usecase.InvoiceRepository = (*invoiceGorm)(nil)

// NewInvoiceGorm は指定されたgorm.DB接続でinvoiceGormの新しいインスタンスを生成します。
func NewInvoiceGorm(db *gorm.DB) *invoiceGorm {
	return &invoiceGorm{db: db}
}

// owned は所有者とIDで絞り込んだクエリを返します。
func (r *invoiceGorm) owned(ctx context.Context, ownerID, id string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&InvoiceModel{}).Where("id = ? AND owner_id = ?", id, ownerID)
}

// Create は請求書を追加し、生成されたIDをinvに設定します。
func (r *invoiceGorm) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv == nil {
		return errors.New("invoice is nil")
	}
	m, err := InvoiceModelFromEntity(inv)
	if err != nil {
		return fmt.Errorf("failed to encode documents: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	inv.ID = m.ID
	return nil
}

// List は所有者の請求書を返します。並び替え列は許可リストから選ばれたものだけを使います。
func (r *invoiceGorm) List(ctx context.Context, ownerID string, q entity.ListQuery) ([]entity.Invoice, error) {
	if !q.SortBy.Valid() {
		return nil, usecase.ErrInvalidSortField
	}
	tx := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	tx = tx.Order(listOrder(q))

	var models []InvoiceModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Invoice, 0, len(models))
	for i := range models {
		inv, err := models[i].ToEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

// listOrder は並び替え列とidによるORDER BYを組み立てます。
// NULL（価格未入力）は最小値として扱い、昇順では先頭、降順では末尾に並べます。
// PostgreSQLの既定はこの逆なので NULLS FIRST/LAST を明示し、SQLiteとMongoDBの並びに揃えます。
func listOrder(q entity.ListQuery) clause.OrderBy {
	dir, nulls := "ASC", "NULLS FIRST"
	if q.SortOrder == entity.SortDesc {
		dir, nulls = "DESC", "NULLS LAST"
	}
	return clause.OrderBy{Expression: clause.Expr{
		SQL:  fmt.Sprintf("? %s %s, ? %s", dir, nulls, dir),
		Vars: []any{clause.Column{Name: string(q.SortBy)}, clause.Column{Name: "id"}},
	}}
}

// FindByID は所有者の請求書を取得します。
func (r *invoiceGorm) FindByID(ctx context.Context, ownerID, id string) (*entity.Invoice, error) {
	var m InvoiceModel
	if err := r.owned(ctx, ownerID, id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrInvoiceNotFound
		}
		return nil, err
	}
	inv, err := m.ToEntity()
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Update はパッチに含まれる列だけを更新し、更新後の請求書を返します。
func (r *invoiceGorm) Update(ctx context.Context, ownerID, id string, patch entity.Patch) (*entity.Invoice, error) {
	res := r.owned(ctx, ownerID, id).Updates(patchColumns(patch))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, usecase.ErrInvoiceNotFound
	}
	return r.FindByID(ctx, ownerID, id)
}

// Delete は所有者の請求書を削除します。
func (r *invoiceGorm) Delete(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&InvoiceModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrInvoiceNotFound
	}
	return nil
}

type categoryRow struct {
	Category   string
	Count      int64
	TotalValue float64
}

// Stats はカテゴリ別の件数と金額合計、直近の請求書を返します。価格未入力の請求書は0として合計します。
func (r *invoiceGorm) Stats(ctx context.Context, ownerID string, recentLimit int) (*entity.Stats, error) {
	var rows []categoryRow
	err := r.db.WithContext(ctx).Model(&InvoiceModel{}).
		Select("category, COUNT(*) AS count, COALESCE(SUM(price), 0) AS total_value").
		Where("owner_id = ?", ownerID).
		Group("category").
		Order("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &entity.Stats{
		Categories:     make([]entity.CategoryStat, 0, len(rows)),
		RecentInvoices: []entity.Invoice{},
	}
	for _, row := range rows {
		stats.TotalInvoices += row.Count
		stats.Categories = append(stats.Categories, entity.CategoryStat(row))
	}

	if recentLimit > 0 {
		var recent []InvoiceModel
		err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).
			Order("created_at DESC").Order("id DESC").
			Limit(recentLimit).Find(&recent).Error
		if err != nil {
			return nil, err
		}
		for i := range recent {
			inv, err := recent[i].ToEntity()
			if err != nil {
				return nil, err
			}
			stats.RecentInvoices = append(stats.RecentInvoices, inv)
		}
	}
	return stats, nil
}

// patchColumns はパッチを列名と値のマップに変換します。documentsとowner_idは更新対象外です。
func patchColumns(p entity.Patch) map[string]any {
	cols := map[string]any{"updated_at": p.UpdatedAt}
	if p.ProductName != nil {
		cols["product_name"] = *p.ProductName
	}
	if p.PurchaseDate != nil {
		cols["purchase_date"] = *p.PurchaseDate
	}
	if p.StoreName != nil {
		cols["store_name"] = *p.StoreName
	}
	if p.CustomerCareNumber != nil {
		cols["customer_care_number"] = *p.CustomerCareNumber
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.WarrantyPeriod != nil {
		cols["warranty_period"] = *p.WarrantyPeriod
	}
	if p.Notes != nil {
		cols["notes"] = *p.Notes
	}
	return cols
}
