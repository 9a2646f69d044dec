package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"clientportal/internal/config"
	"clientportal/internal/domain"
	"clientportal/internal/port"
)

const resetTokenTTL = time.Hour

// ForgotPasswordInput is the DTO for forgot-password requests. RedirectURL
// is where the emailed link points; it must be on an allowed origin.
type ForgotPasswordInput struct {
	Email       string `json:"email" binding:"required,email"`
	RedirectURL string `json:"redirect_url"`
}

// ResetPasswordInput is the DTO for reset-password requests.
type ResetPasswordInput struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// PasswordResetService defines the password reset contract.
type PasswordResetService interface {
	ForgotPassword(ctx context.Context, input ForgotPasswordInput) error
	ResetPassword(ctx context.Context, input ResetPasswordInput) error
}

type passwordResetService struct {
	userRepo       port.UserRepository
	emailSender    port.EmailSender
	jwtCfg         config.JWTConfig
	frontendURL    string
	allowedOrigins map[string]bool
}

// NewPasswordResetService creates a new PasswordResetService. Reset links
// default to {frontendURL}/reset-password; a caller-supplied redirect must
// share its origin with frontendURL or one of allowedOrigins.
func NewPasswordResetService(
	userRepo port.UserRepository,
	emailSender port.EmailSender,
	jwtCfg config.JWTConfig,
	frontendURL string,
	allowedOrigins []string,
) PasswordResetService {
	origins := make(map[string]bool, len(allowedOrigins)+1)
	for _, o := range append([]string{frontendURL}, allowedOrigins...) {
		if origin, ok := originOf(o); ok {
			origins[origin] = true
		}
	}
	return &passwordResetService{
		userRepo:       userRepo,
		emailSender:    emailSender,
		jwtCfg:         jwtCfg,
		frontendURL:    strings.TrimRight(frontendURL, "/"),
		allowedOrigins: origins,
	}
}

// ForgotPassword never reveals whether the account exists. Only a
// disallowed redirect URL is reported back.
func (s *passwordResetService) ForgotPassword(ctx context.Context, input ForgotPasswordInput) error {
	base, err := s.resetBase(input.RedirectURL)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		log.Printf("WARNING: forgot-password user lookup error: %v", err)
		return nil
	}
	if !user.IsActive {
		return nil
	}

	tokenString, jti, err := s.generateResetToken(user)
	if err != nil {
		log.Printf("WARNING: failed to generate password reset token for %s: %v", user.Email, err)
		return nil
	}

	if err := s.userRepo.SetPasswordResetToken(ctx, user.ID, jti); err != nil {
		log.Printf("WARNING: failed to store password reset token for %s: %v", user.Email, err)
		return nil
	}

	q := base.Query()
	q.Set("token", tokenString)
	base.RawQuery = q.Encode()

	if err := s.emailSender.SendPasswordResetEmail(ctx, user.Email, user.FullName, base.String()); err != nil {
		log.Printf("WARNING: failed to send password reset email to %s: %v", user.Email, err)
	}

	return nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	claims, err := parseClaims(s.jwtCfg, input.Token, audiencePasswordReset, domain.ErrPasswordResetTokenInvalid)
	if err != nil {
		return domain.ErrPasswordResetTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), 12)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.userRepo.ResetPassword(ctx, claims.UserID, string(hash), claims.ID)
}

func (s *passwordResetService) generateResetToken(user *domain.User) (tokenString, jti string, err error) {
	now := time.Now()
	claims := newClaims(s.jwtCfg, user, now, now.Add(resetTokenTTL), audiencePasswordReset)
	tokenString, err = signClaims(s.jwtCfg, claims)
	if err != nil {
		return "", "", err
	}
	return tokenString, claims.ID, nil
}

func (s *passwordResetService) resetBase(redirect string) (*url.URL, error) {
	if redirect == "" {
		redirect = s.frontendURL + "/reset-password"
	}
	u, err := url.Parse(redirect)
	if err != nil {
		return nil, domain.NewValidationError("redirect_url", "redirect URL is not valid")
	}
	origin, ok := originOf(redirect)
	if !ok || !s.allowedOrigins[origin] {
		return nil, domain.NewValidationError("redirect_url", "redirect URL is not allowed")
	}
	return u, nil
}

func originOf(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	return u.Scheme + "://" + strings.ToLower(u.Host), true
}
