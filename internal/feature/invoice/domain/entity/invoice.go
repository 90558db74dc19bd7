// Package entity はinvoiceフィーチャーのドメインモデルを定義します。
package entity

import "time"

// Invoice はユーザーが登録した購入記録です。
// OwnerID は作成時に固定され、以降の読み書きはすべて所有者で絞り込まれます。
type Invoice struct {
	ID                 string
	OwnerID            string
	ProductName        string
	PurchaseDate       time.Time
	StoreName          string
	CustomerCareNumber string
	Price              *float64 // 未入力の場合はnil
	Category           string
	WarrantyPeriod     string
	Notes              string
	Documents          []Document
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Document は添付ドキュメントのメタデータです。ファイル本体は保持しません。
type Document struct {
	Type string // MIMEタイプまたは利用者が指定した種別
	Path string // 参照先パス
	Name string // 元のファイル名
}

// Patch は部分更新で変更可能なフィールドの集合です。nilのフィールドは変更しません。
type Patch struct {
	ProductName        *string
	PurchaseDate       *time.Time
	StoreName          *string
	CustomerCareNumber *string
	Price              *float64
	Category           *string
	WarrantyPeriod     *string
	Notes              *string
	UpdatedAt          time.Time
}

// IsEmpty は変更対象のフィールドが1つもないかどうかを返します。
func (p Patch) IsEmpty() bool {
	return p.ProductName == nil && p.PurchaseDate == nil && p.StoreName == nil &&
		p.CustomerCareNumber == nil && p.Price == nil && p.Category == nil &&
		p.WarrantyPeriod == nil && p.Notes == nil
}

// Apply はパッチを inv に適用します。
func (p Patch) Apply(inv *Invoice) {
	if p.ProductName != nil {
		inv.ProductName = *p.ProductName
	}
	if p.PurchaseDate != nil {
		inv.PurchaseDate = *p.PurchaseDate
	}
	if p.StoreName != nil {
		inv.StoreName = *p.StoreName
	}
	if p.CustomerCareNumber != nil {
		inv.CustomerCareNumber = *p.CustomerCareNumber
	}
	if p.Price != nil {
		price := *p.Price
		inv.Price = &price
	}
	if p.Category != nil {
		inv.Category = *p.Category
	}
	if p.WarrantyPeriod != nil {
		inv.WarrantyPeriod = *p.WarrantyPeriod
	}
	if p.Notes != nil {
		inv.Notes = *p.Notes
	}
	inv.UpdatedAt = p.UpdatedAt
}
