package usecase

import "purchase_backend/internal/shared/apperr"

var (
	// ErrInvoiceNotFound は請求書が存在しないか、他ユーザーの所有である場合に返されます。
	// 両者を区別しないことで他ユーザーのIDの存在を漏らしません。
	ErrInvoiceNotFound = apperr.New(apperr.ErrNotFound, "invoice not found")

	// ErrInvalidPurchaseDate は購入日がISO-8601として解釈できない場合に返されます。
	ErrInvalidPurchaseDate = apperr.New(apperr.ErrValidation, "purchase_date must be an ISO-8601 date (YYYY-MM-DD or RFC 3339)")

	// ErrNoUpdatableFields は部分更新に変更可能なフィールドが1つも含まれない場合に返されます。
	ErrNoUpdatableFields = apperr.New(apperr.ErrValidation, "no updatable fields supplied")

	// ErrInvalidSortField は並び替えフィールドが許可リストにない場合に返されます。
	ErrInvalidSortField = apperr.New(apperr.ErrValidation, "unsupported sort_by field")

	// ErrInvalidSortOrder は並び順が asc/desc 以外の場合に返されます。
	ErrInvalidSortOrder = apperr.New(apperr.ErrValidation, "sort_order must be asc or desc")

	// ErrNegativePrice は価格が負の値の場合に返されます。
	ErrNegativePrice = apperr.New(apperr.ErrValidation, "price must not be negative")

	// ErrInvalidPrice は価格が有限の数値でない場合（NaN、Inf）に返されます。
	ErrInvalidPrice = apperr.New(apperr.ErrValidation, "price must be a finite number")
)

// missingField は必須フィールドが未入力の場合のエラーを生成します。
func missingField(name string) error {
	return apperr.Newf(apperr.ErrValidation, "%s is required", name)
}
