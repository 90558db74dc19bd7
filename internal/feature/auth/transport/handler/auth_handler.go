// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"purchase_backend/internal/api"
	"purchase_backend/internal/feature/auth/domain/entity"
	"purchase_backend/internal/feature/auth/usecase"
	"purchase_backend/internal/shared/apperr"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は新規ユーザーを登録し、作成されたユーザーIDを返します。
	Register(ctx context.Context, in usecase.RegisterInput) (string, error)
	// Login はユーザーを認証し、成功時に署名済みトークンを返します。
	Login(ctx context.Context, email, password string) (string, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth     AuthUsecase
	tokenTTL time.Duration
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// tokenTTL はログイン応答の expires_in に使われます。
func NewAuthHandler(auth AuthUsecase, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{auth: auth, tokenTTL: tokenTTL}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - ボディ不正、メール形式・パスワード強度違反は400
// - メール重複は409
// - 成功時は201とユーザーIDを返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "email and password are required"})
		return
	}

	id, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Profile: entity.Profile{
			Phone:       req.Profile.Phone,
			Address:     req.Profile.Address,
			Preferences: req.Profile.Preferences,
		},
	})
	if err != nil {
		status := apperr.Status(err)
		if status >= http.StatusInternalServerError {
			slog.Error("register failed", "error", err, "remote_addr", c.ClientIP())
		} else {
			slog.Warn("register rejected", "error", err, "remote_addr", c.ClientIP())
		}
		c.JSON(status, api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	slog.Info("user registered", "user_id", id, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, api.CreatedResponse{ID: id, Message: "User registered successfully"})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - ボディ不正は400
// - 認証失敗は401（ユーザー列挙を防ぐため理由は区別しない）
// - 成功時はトークン付きで200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "email and password are required"})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		status := apperr.Status(err)
		if status >= http.StatusInternalServerError {
			slog.Error("login failed", "error", err, "remote_addr", c.ClientIP())
		} else {
			slog.Warn("login rejected", "error", err, "remote_addr", c.ClientIP())
		}
		c.JSON(status, api.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	slog.Info("user login successful", "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(h.tokenTTL.Seconds()),
	})
}
