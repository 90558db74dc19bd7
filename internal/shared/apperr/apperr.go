// Package apperr はアプリケーション全体で共有するエラー分類を定義します。
// 各フィーチャーは New でこれらの分類に属するセンチネルエラーを宣言し、
// HTTP層は Status と Message で応答へ変換します。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// エラー分類。errors.Is で判定します。
var (
	// ErrValidation は入力が不正または不足している場合の分類です（400）。
	ErrValidation = errors.New("validation error")

	// ErrAuth はトークンや資格情報が不正な場合の分類です（401）。
	ErrAuth = errors.New("authentication error")

	// ErrConflict は一意制約に違反した場合の分類です（409）。
	ErrConflict = errors.New("conflict")

	// ErrNotFound はリソースが存在しない、または他ユーザーの所有である場合の分類です（404）。
	ErrNotFound = errors.New("not found")

	// ErrUpstream は外部サービスの失敗や解析不能な応答の分類です（502）。
	ErrUpstream = errors.New("upstream error")
)

// Error はクライアントに返してよいメッセージと分類を持つエラーです。
type Error struct {
	Kind error
	Msg  string
}

// New は指定した分類のエラーを生成します。
func New(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf はフォーマット済みメッセージで指定した分類のエラーを生成します。
func Newf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// Status はエラーの分類に対応するHTTPステータスコードを返します。
// 分類に該当しないエラーは500として扱います。
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Message はクライアント向けのメッセージを返します。
// ラップ時に付与された内部コンテキストは含めません。
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal server error"
}
