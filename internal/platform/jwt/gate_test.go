package jwtmw

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"purchase_backend/internal/feature/auth/domain/entity"
	"purchase_backend/internal/shared/apperr"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var errUserNotFound = apperr.New(apperr.ErrNotFound, "user not found")

// mockUserFinder はUserFinderインターフェースのモック実装です。
type mockUserFinder struct {
	FindByEmailFunc func(ctx context.Context, email string) (*entity.User, error)
	calls           int
}

func (m *mockUserFinder) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.calls++
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, errUserNotFound
}

func knownUser(ctx context.Context, email string) (*entity.User, error) {
	if email == "a@x.com" {
		return &entity.User{ID: "user-a", Email: email}, nil
	}
	return nil, errUserNotFound
}

// serveGate はゲートで包んだハンドラーを実行し、レスポンスと渡された Identity を返します。
func serveGate(t *testing.T, gate *Gate, authHeader string) (*httptest.ResponseRecorder, *Identity) {
	t.Helper()

	var got *Identity
	router := gin.New()
	router.GET("/protected", gate.Require(func(c *gin.Context, id Identity) {
		got = &id
		c.JSON(http.StatusOK, gin.H{"user_id": id.UserID})
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, got
}

// TestGate_MissingBearerToken はBearerトークンがない場合やプレフィックスが不正な場合に401が返されることを検証します。
func TestGate_MissingBearerToken(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	users := &mockUserFinder{FindByEmailFunc: knownUser}
	gate := NewGate(svc, users)

	tests := []struct {
		name       string
		authHeader string
	}{
		{"no header", ""},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"bearer lowercase", "bearer token123"},
		{"no space after Bearer", "Bearertoken123"},
		{"empty bearer", "Bearer   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, got := serveGate(t, gate, tt.authHeader)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Nil(t, got, "handler must not run")
		})
	}
	assert.Zero(t, users.calls, "user store must not be consulted without a token")
}

// TestGate_InvalidToken は不正なトークン（改ざん・期限切れ等）で401が返されることを検証します。
func TestGate_InvalidToken(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	other, err := NewTokenService("wrong-secret", time.Hour)
	require.NoError(t, err)
	foreign, err := other.GenerateToken("a@x.com")
	require.NoError(t, err)

	expiredSvc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredSvc.GenerateToken("a@x.com")
	require.NoError(t, err)

	users := &mockUserFinder{FindByEmailFunc: knownUser}
	gate := NewGate(svc, users)

	for name, token := range map[string]string{
		"malformed":    "not.a.valid.token",
		"wrong secret": foreign,
		"expired":      expired,
	} {
		t.Run(name, func(t *testing.T) {
			w, got := serveGate(t, gate, "Bearer "+token)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"invalid token"}`, w.Body.String())
			assert.Nil(t, got)
		})
	}
	assert.Zero(t, users.calls)
}

// TestGate_UnknownUser は有効なトークンでもユーザーが存在しない場合に401が返されることを検証します。
func TestGate_UnknownUser(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	token, err := svc.GenerateToken("ghost@x.com")
	require.NoError(t, err)

	gate := NewGate(svc, &mockUserFinder{FindByEmailFunc: knownUser})
	w, got := serveGate(t, gate, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, got)
}

// TestGate_UserStoreFailure はユーザーストアの障害を500として扱うことを検証します。
func TestGate_UserStoreFailure(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	token, err := svc.GenerateToken("a@x.com")
	require.NoError(t, err)

	gate := NewGate(svc, &mockUserFinder{
		FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
			return nil, errors.New("server selection timeout")
		},
	})
	w, got := serveGate(t, gate, "Bearer "+token)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Nil(t, got)
}

// TestGate_ValidToken は有効なトークンで解決済みの Identity がハンドラーに渡されることを検証します。
func TestGate_ValidToken(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	token, err := svc.GenerateToken("a@x.com")
	require.NoError(t, err)

	gate := NewGate(svc, &mockUserFinder{FindByEmailFunc: knownUser})
	w, got := serveGate(t, gate, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, Identity{UserID: "user-a", Email: "a@x.com"}, *got)
}
