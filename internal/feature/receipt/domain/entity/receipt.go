// Package entity はreceiptフィーチャーのドメインモデルを定義します。
package entity

// ReceiptFields はレシート画像から抽出された請求書の候補値です。
// 読み取れなかった項目は空文字（価格はnil）になります。
type ReceiptFields struct {
	ProductName        string
	StoreName          string
	PurchaseDate       string // YYYY-MM-DD
	Price              *float64
	Category           string
	WarrantyPeriod     string
	CustomerCareNumber string
}
