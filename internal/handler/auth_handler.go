package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"clientportal/internal/middleware"
	"clientportal/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService          service.AuthService
	passwordResetService service.PasswordResetService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, passwordResetService service.PasswordResetService) *AuthHandler {
	return &AuthHandler{authService: authService, passwordResetService: passwordResetService}
}

// Login handles POST /api/v1/auth/login
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} Response{data=service.TokenPair}
// @Failure 400 {object} ErrorResponseBody
// @Failure 401 {object} ErrorResponseBody
// @Failure 429 {object} ErrorResponseBody
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input service.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	tokenPair, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tokenPair)
}

// RefreshToken handles POST /api/v1/auth/refresh
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "Refresh token"
// @Success 200 {object} Response{data=service.TokenPair}
// @Failure 401 {object} ErrorResponseBody
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input service.RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	tokenPair, err := h.authService.RefreshToken(c.Request.Context(), input.RefreshToken)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tokenPair)
}

// Logout handles POST /api/v1/auth/logout
// @Summary Sign out and revoke the current tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LogoutRequest false "Refresh token to revoke as well"
// @Success 200 {object} Response{data=MessageData}
// @Failure 401 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "AUTH_REQUIRED", "Please sign in to continue")
		return
	}

	var input service.LogoutInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
	}

	if err := h.authService.Logout(c.Request.Context(), claims, input); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "signed out"})
}

// Me handles GET /api/v1/auth/me
// @Summary Current session
// @Tags auth
// @Produce json
// @Success 200 {object} Response{data=domain.Session}
// @Failure 401 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	RespondOK(c, session)
}

// ForgotPassword handles POST /api/v1/auth/forgot-password
// @Summary Request a password reset email
// @Description Always answers 200 for a well-formed request so account existence is not revealed.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body ForgotPasswordRequest true "Email and optional redirect URL"
// @Success 200 {object} Response{data=MessageData}
// @Failure 400 {object} ErrorResponseBody
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	if h.passwordResetService == nil {
		RespondError(c, http.StatusNotFound, "NOT_FOUND", "password reset is not enabled")
		return
	}

	var input service.ForgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	if err := h.passwordResetService.ForgotPassword(c.Request.Context(), input); err != nil {
		status, _, _ := MapDomainError(err)
		if status == http.StatusBadRequest {
			HandleError(c, err)
			return
		}
		// never leak information; always return 200
		log.Printf("forgot-password internal error: %v", err)
	}

	RespondOK(c, gin.H{"message": "if an account with that email exists, a password reset link has been sent"})
}

// ResetPassword handles POST /api/v1/auth/reset-password
// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} Response{data=MessageData}
// @Failure 400 {object} ErrorResponseBody
// @Failure 401 {object} ErrorResponseBody
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	if h.passwordResetService == nil {
		RespondError(c, http.StatusNotFound, "NOT_FOUND", "password reset is not enabled")
		return
	}

	var input service.ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	if err := h.passwordResetService.ResetPassword(c.Request.Context(), input); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "password has been reset successfully"})
}
