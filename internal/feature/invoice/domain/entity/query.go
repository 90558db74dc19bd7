package entity

// SortField は一覧の並び替えに使えるフィールドです。
type SortField string

const (
	SortByPurchaseDate SortField = "purchase_date"
	SortByCreatedAt    SortField = "created_at"
	SortByUpdatedAt    SortField = "updated_at"
	SortByPrice        SortField = "price"
	SortByProductName  SortField = "product_name"
	SortByStoreName    SortField = "store_name"
	SortByCategory     SortField = "category"
)

// Valid は許可されたフィールドかどうかを返します。
func (f SortField) Valid() bool {
	switch f {
	case SortByPurchaseDate, SortByCreatedAt, SortByUpdatedAt, SortByPrice,
		SortByProductName, SortByStoreName, SortByCategory:
		return true
	}
	return false
}

// SortOrder は並び順です。
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListQuery は一覧取得の条件です。
type ListQuery struct {
	Category  string // 空の場合は全カテゴリ
	SortBy    SortField
	SortOrder SortOrder
}

// CategoryStat はカテゴリ単位の集計です。
type CategoryStat struct {
	Category   string
	Count      int64
	TotalValue float64
}

// Stats はダッシュボード用の集計結果です。
type Stats struct {
	TotalInvoices  int64
	Categories     []CategoryStat
	RecentInvoices []Invoice
}
