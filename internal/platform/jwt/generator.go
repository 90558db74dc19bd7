// Package jwtmw はHS256署名トークンの発行・検証と、保護ルート用の認証ゲートを提供します。
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"purchase_backend/internal/shared/apperr"
)

// DefaultTokenTTL はトークンの標準有効期間です。
const DefaultTokenTTL = 24 * time.Hour

// ErrInvalidToken は署名不一致・形式不正・期限切れのいずれかでトークンを受理できない場合に返されます。
var ErrInvalidToken = apperr.New(apperr.ErrAuth, "invalid token")

// Claims はトークンに埋め込むクレームです。
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService は対称鍵でトークンを発行・検証します。
// 鍵はこのサービスの外に出さず、ログにも出力しません。
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService は指定されたシークレットと有効期間でTokenServiceを生成します。
// ttl が0以下の場合は DefaultTokenTTL を使います。
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// GenerateToken はメールアドレスと有効期限を含む署名済みトークンを生成します。
func (s *TokenService) GenerateToken(email string) (string, error) {
	now := s.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken は署名と有効期限を検証し、埋め込まれたメールアドレスを返します。
// 失敗時は常に ErrInvalidToken を返します。
func (s *TokenService) VerifyToken(tokenStr string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		// HMAC以外（none 等）は拒否
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Email == "" {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}
