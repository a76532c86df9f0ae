// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/api"
	"storefront/internal/feature/auth/domain/entity"
	"storefront/internal/feature/auth/transport/http/dto"
	"storefront/internal/feature/auth/usecase"
	jwtmw "storefront/internal/platform/jwt"
	"storefront/internal/shared/identity"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) error
	VerifyActivation(ctx context.Context, token string) error
	Login(ctx context.Context, email, password string, client usecase.ClientInfo) (*entity.Session, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Profile(ctx context.Context, userID uint) (*entity.User, error)
}

// SessionDestroyer ends a server-side session.
type SessionDestroyer interface {
	Destroy(ctx context.Context, sessionID string) error
}

// CookieSigner signs the reference to a session stored in the cookie.
type CookieSigner interface {
	Sign(sessionID string, userID uint, expiresAt time.Time) (string, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth     AuthUsecase
	sessions SessionDestroyer
	signer   CookieSigner
	cookie   jwtmw.CookieConfig
	loginURL string
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// loginURL is linked from the activation confirmation page.
func NewAuthHandler(auth AuthUsecase, sessions SessionDestroyer, signer CookieSigner, cookie jwtmw.CookieConfig, loginURL string) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		signer:   signer,
		cookie:   cookie,
		loginURL: loginURL,
	}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - 必須項目の欠落は400
// - メール重複は409
// - 登録済みだが有効化メール送信失敗は500（運用者が調査できるよう区別してログ出力）
// - 成功時は201
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.Fail("All fields are required."))
		return
	}
	birthDate, err := req.ParsedBirthDate()
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Fail("Invalid birth date."))
		return
	}

	err = h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Gender:    req.Gender,
		BirthDate: birthDate,
		Address:   req.Address,
	})
	switch {
	case err == nil:
		slog.Info("user registered", "email", req.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusCreated, api.OK("Registration successful! Check your email to activate your account."))
	case errors.Is(err, usecase.ErrValidation):
		c.JSON(http.StatusBadRequest, api.Fail("Password must be at least 8 characters long."))
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, api.Fail("Email already registered."))
	case errors.Is(err, usecase.ErrActivationEmailFailed):
		slog.Error("activation email failed", "error", err, "email", req.Email)
		c.JSON(http.StatusInternalServerError, api.Fail("Registration succeeded but the activation email could not be sent. Please contact support."))
	default:
		slog.Error("registration failed", "error", err, "email", req.Email)
		c.JSON(http.StatusInternalServerError, api.Fail("Server error during registration."))
	}
}

// Verify consumes an activation token and renders an HTML confirmation.
func (h *AuthHandler) Verify(c *gin.Context) {
	err := h.auth.VerifyActivation(c.Request.Context(), c.Query("token"))
	switch {
	case err == nil:
		renderVerifySuccess(c, h.loginURL)
	case errors.Is(err, usecase.ErrInvalidToken):
		renderVerifyFailure(c, http.StatusBadRequest)
	default:
		slog.Error("activation failed", "error", err)
		renderVerifyFailure(c, http.StatusInternalServerError)
	}
}

// Login はユーザーログインAPIエンドポイントを処理します。
// 成功時はセッションを参照する署名付きCookieを発行します。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.Fail("Email and password are required."))
		return
	}

	client := usecase.ClientInfo{UserAgent: c.Request.UserAgent(), IPAddress: c.ClientIP()}
	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, client)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrInvalidCredentials):
		// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
		slog.Warn("login failed", "email", req.Email, "remote_addr", c.ClientIP())
		loginRejected.respond(c)
		return
	case errors.Is(err, usecase.ErrAccountInactive):
		c.JSON(http.StatusForbidden, api.Fail("Account not activated. Check your email."))
		return
	default:
		slog.Error("login failed", "error", err, "email", req.Email)
		c.JSON(http.StatusInternalServerError, api.Fail("Server error."))
		return
	}

	token, err := h.signer.Sign(session.ID, session.UserID, session.ExpiresAt)
	if err != nil {
		slog.Error("failed to sign session cookie", "error", err, "user_id", session.UserID)
		c.JSON(http.StatusInternalServerError, api.Fail("Server error."))
		return
	}
	jwtmw.SetSessionCookie(c, h.cookie, token, time.Until(session.ExpiresAt))

	slog.Info("user login successful", "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.OK("Login successful!"))
}

// CheckSession returns the identity bound to the current session.
func (h *AuthHandler) CheckSession(c *gin.Context) {
	id, ok := identity.FromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, api.Fail("Not authenticated."))
		return
	}
	c.JSON(http.StatusOK, api.UserResponse{
		Success: true,
		User:    api.SessionUser{ID: id.UserID, Name: id.Name, Email: id.Email},
	})
}

// Profile returns the stored profile of the session user.
func (h *AuthHandler) Profile(c *gin.Context) {
	id, ok := identity.FromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, api.Fail("Not authenticated."))
		return
	}

	user, err := h.auth.Profile(c.Request.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, api.Fail("User not found."))
			return
		}
		slog.Error("failed to load profile", "error", err, "user_id", id.UserID)
		c.JSON(http.StatusInternalServerError, api.Fail("Server error."))
		return
	}
	c.JSON(http.StatusOK, api.DataResponse{Success: true, Data: dto.ProfileFromEntity(user)})
}

// Logout destroys the current session, if any, and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if id, ok := identity.FromContext(c.Request.Context()); ok {
		if err := h.sessions.Destroy(c.Request.Context(), id.SessionID); err != nil {
			slog.Error("failed to destroy session", "error", err, "user_id", id.UserID)
		}
	}
	jwtmw.ClearSessionCookie(c, h.cookie)
	c.JSON(http.StatusOK, api.OK("Logged out."))
}

// ForgotPassword always answers with the same generic acknowledgment.
// Lookup, storage and email failures are logged only.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		resetRequested.respond(c)
		return
	}
	if err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		slog.Error("password reset request failed", "error", err, "email", req.Email)
	}
	resetRequested.respond(c)
}

// ResetPassword sets a new password using a reset token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Fail("Token and password are required."))
		return
	}

	err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, api.OK("Password updated successfully."))
	case errors.Is(err, usecase.ErrInvalidToken):
		c.JSON(http.StatusBadRequest, api.Fail("Invalid or expired token."))
	case errors.Is(err, usecase.ErrValidation):
		c.JSON(http.StatusBadRequest, api.Fail("Password must be at least 8 characters long."))
	default:
		slog.Error("password reset failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.Fail("Server error."))
	}
}
