package usecase

import "purchase_backend/internal/shared/apperr"

var (
	// ErrUserNotFound はメールアドレスやIDでユーザーが見つからない場合に返されます。
	ErrUserNotFound = apperr.New(apperr.ErrNotFound, "user not found")

	// ErrEmailAlreadyExists は既に存在するメールアドレスでユーザーを作成しようとした場合に返されます。
	ErrEmailAlreadyExists = apperr.New(apperr.ErrConflict, "email already exists")

	// ErrInvalidCredentials はメールアドレスまたはパスワードが一致しない場合に返されます。
	// ユーザー列挙を防ぐため、どちらが誤っているかは区別しません。
	ErrInvalidCredentials = apperr.New(apperr.ErrAuth, "invalid email or password")

	// ErrInvalidEmail はメールアドレスの形式が不正な場合に返されます。
	ErrInvalidEmail = apperr.New(apperr.ErrValidation, "invalid email format")
)
