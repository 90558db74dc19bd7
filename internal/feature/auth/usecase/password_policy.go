package usecase

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"purchase_backend/internal/shared/apperr"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8
	// maxPasswordBytes はbcryptが扱える入力長の上限です。
	maxPasswordBytes = 72
)

// emailPattern は local@domain.tld 形式のメールアドレスに一致します。
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// NormalizeEmail は前後の空白を除去し小文字に変換します。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail はメールアドレスが一般的な形式かどうかを返します。
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
// 要件を満たさない場合、最初に違反した理由をエラーとして返します。
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return apperr.Newf(apperr.ErrValidation, "password must be at least %d characters long", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return apperr.Newf(apperr.ErrValidation, "password must be at most %d bytes long", maxPasswordBytes)
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	switch {
	case !hasUpper:
		return apperr.New(apperr.ErrValidation, "password must contain at least one uppercase letter")
	case !hasLower:
		return apperr.New(apperr.ErrValidation, "password must contain at least one lowercase letter")
	case !hasDigit:
		return apperr.New(apperr.ErrValidation, "password must contain at least one digit")
	}
	return nil
}
