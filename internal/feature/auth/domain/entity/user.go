// Package entity はauthフィーチャーのドメインエンティティを定義します。
package entity

import "time"

// User はシステムに登録されたユーザーを表します。
// 登録後は変更されません。
type User struct {
	// ID はユーザーの一意識別子です（ストアにより UUID または ObjectID の16進文字列）。
	ID string

	// Email は認証に使うメールアドレスです。小文字に正規化され、全ユーザーで一意です。
	Email string

	// PasswordHash はbcryptでハッシュ化されたパスワードです。平文を保存してはいけません。
	PasswordHash string

	// Name は表示名です。
	Name string

	// Profile は任意のプロフィール情報です。
	Profile Profile

	// CreatedAt はユーザーの作成日時です。
	CreatedAt time.Time
}

// Profile はユーザーの連絡先と設定です。
type Profile struct {
	Phone       string
	Address     string
	Preferences map[string]string
}
