package jwtmw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"purchase_backend/internal/api"
	"purchase_backend/internal/feature/auth/domain/entity"
	"purchase_backend/internal/shared/apperr"
)

// ContextUserID はginコンテキストに解決済みユーザーIDを保存するキーです。
const ContextUserID = "userID"

const bearerPrefix = "Bearer "

// Identity は認証ゲートが解決したリクエスト主体です。
type Identity struct {
	UserID string
	Email  string
}

// AuthedHandler は解決済みの Identity を明示的に受け取るハンドラーです。
type AuthedHandler func(c *gin.Context, id Identity)

// TokenVerifier はトークンを検証し埋め込まれたメールアドレスを返します。
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// UserFinder はメールアドレスからユーザーを解決します。
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

// Gate は保護ルートの認証ゲートです。
// Unauthenticated → TokenPresent → TokenValid → UserResolved の順に進み、
// どの段階で失敗しても401で打ち切ります。
type Gate struct {
	tokens TokenVerifier
	users  UserFinder
}

// NewGate はGateの新しいインスタンスを生成します。
func NewGate(tokens TokenVerifier, users UserFinder) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Require は next を認証必須のginハンドラーに包みます。
// 保護ルートはこの関数を通してのみ登録します。
func (g *Gate) Require(next AuthedHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Authorizationヘッダーからトークンを取り出す
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, bearerPrefix) {
			slog.Warn("missing bearer token", "path", c.FullPath(), "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, bearerPrefix))
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "missing bearer token"})
			return
		}

		// 2. 署名と有効期限を検証
		email, err := g.tokens.VerifyToken(tokenStr)
		if err != nil {
			slog.Warn("token verification failed", "error", err, "path", c.FullPath(), "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid token"})
			return
		}

		// 3. ユーザーを解決
		user, err := g.users.FindByEmail(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				slog.Warn("token subject not found", "path", c.FullPath(), "remote_addr", c.ClientIP())
				c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid token"})
				return
			}
			slog.Error("failed to resolve token subject", "error", err, "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
			return
		}

		// 4. 解決済みの主体をハンドラーに渡す
		id := Identity{UserID: user.ID, Email: user.Email}
		c.Set(ContextUserID, id.UserID)
		next(c, id)
	}
}
