package usecase

import "purchase_backend/internal/shared/apperr"

var (
	// ErrEmptyImage は画像が空の場合に返されます。
	ErrEmptyImage = apperr.New(apperr.ErrValidation, "image is required")
	// ErrImageTooLarge は画像が MaxImageSize を超える場合に返されます。
	ErrImageTooLarge = apperr.New(apperr.ErrValidation, "image exceeds the 10 MiB limit")
	// ErrUnsupportedImage は画像として認識できないデータの場合に返されます。
	ErrUnsupportedImage = apperr.New(apperr.ErrValidation, "unsupported image format")
	// ErrExtractionFailed は外部AIサービスの呼び出しに失敗した場合に返されます。
	ErrExtractionFailed = apperr.New(apperr.ErrUpstream, "receipt analysis service unavailable")
	// ErrUnparseableResponse はAIの応答が期待するJSONオブジェクトでない場合に返されます。
	ErrUnparseableResponse = apperr.New(apperr.ErrUpstream, "could not parse receipt analysis result")
)
