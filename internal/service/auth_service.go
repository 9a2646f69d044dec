package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"clientportal/internal/config"
	"clientportal/internal/domain"
	"clientportal/internal/port"
)

const (
	audienceAccess        = "access"
	audienceRefresh       = "refresh"
	audiencePasswordReset = "password-reset"
)

// Claims represents the JWT claims of a portal session.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID       `json:"user_id"`
	Email  string          `json:"email"`
	Role   domain.UserRole `json:"role"`
}

// Session returns the identity carried by the claims.
func (c *Claims) Session() domain.Session {
	return domain.Session{UserID: c.UserID, Email: c.Email, Role: c.Role}
}

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// LoginInput is the DTO for login requests.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RefreshInput is the DTO for token refresh requests.
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutInput is the DTO for logout requests. The refresh token is optional.
type LogoutInput struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthService defines the authentication contract.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	ValidateToken(tokenString string) (*Claims, error)
	// Authenticate validates an access token and rejects revoked ones.
	Authenticate(ctx context.Context, tokenString string) (*Claims, error)
	Logout(ctx context.Context, claims *Claims, input LogoutInput) error
}

type authService struct {
	userRepo port.UserRepository
	trl      port.TokenRevocationList
	cfg      config.JWTConfig
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(
	userRepo port.UserRepository,
	trl port.TokenRevocationList,
	cfg config.JWTConfig,
) AuthService {
	return &authService{
		userRepo: userRepo,
		trl:      trl,
		cfg:      cfg,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth.Login: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.generateTokenPair(user)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.validateTokenString(refreshToken, audienceRefresh)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if revoked, err := s.isRevoked(ctx, claims.ID); err != nil || revoked {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	return s.generateTokenPair(user)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	return s.validateTokenString(tokenString, audienceAccess)
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.validateTokenString(tokenString, audienceAccess)
	if err != nil {
		return nil, err
	}
	revoked, err := s.isRevoked(ctx, claims.ID)
	if err != nil {
		log.Printf("auth.Authenticate: revocation check failed for %s: %v", claims.ID, err)
		return nil, domain.ErrUnauthorized
	}
	if revoked {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// Logout revokes the access token, and the refresh token when supplied,
// until they would have expired anyway.
func (s *authService) Logout(ctx context.Context, claims *Claims, input LogoutInput) error {
	if claims == nil {
		return domain.ErrAuthRequired
	}
	if err := s.revoke(ctx, &claims.RegisteredClaims); err != nil {
		return fmt.Errorf("auth.Logout: %w", err)
	}

	if input.RefreshToken != "" {
		refresh, err := s.validateTokenString(input.RefreshToken, audienceRefresh)
		if err != nil || refresh.UserID != claims.UserID {
			// the access token is already revoked; an unusable refresh token changes nothing
			return nil
		}
		if err := s.revoke(ctx, &refresh.RegisteredClaims); err != nil {
			return fmt.Errorf("auth.Logout: %w", err)
		}
	}
	log.Printf("auth.Logout: user %s signed out", claims.UserID)
	return nil
}

func (s *authService) revoke(ctx context.Context, rc *jwt.RegisteredClaims) error {
	if s.trl == nil || rc.ID == "" {
		return nil
	}
	ttl := time.Minute
	if rc.ExpiresAt != nil {
		ttl = time.Until(rc.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return s.trl.Revoke(ctx, rc.ID, ttl)
}

func (s *authService) isRevoked(ctx context.Context, jti string) (bool, error) {
	if s.trl == nil || jti == "" {
		return false, nil
	}
	return s.trl.IsRevoked(ctx, jti)
}

func (s *authService) generateTokenPair(user *domain.User) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.cfg.AccessTokenExpiry)
	refreshExpiry := now.Add(s.cfg.RefreshTokenExpiry)

	accessTokenString, err := signClaims(s.cfg, newClaims(s.cfg, user, now, accessExpiry, audienceAccess))
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	refreshTokenString, err := signClaims(s.cfg, newClaims(s.cfg, user, now, refreshExpiry, audienceRefresh))
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresAt:    accessExpiry,
	}, nil
}

func (s *authService) validateTokenString(tokenString, audience string) (*Claims, error) {
	return parseClaims(s.cfg, tokenString, audience, domain.ErrUnauthorized)
}

func newClaims(cfg config.JWTConfig, user *domain.User, now, expiry time.Time, audience string) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{audience},
		},
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}
}

func signClaims(cfg config.JWTConfig, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// parseClaims verifies signature, expiry and audience. invalid is returned
// for a well-formed token that fails validation.
func parseClaims(cfg config.JWTConfig, tokenString, audience string, invalid error) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, invalid
	}

	aud, _ := claims.GetAudience()
	for _, a := range aud {
		if a == audience {
			return claims, nil
		}
	}
	return nil, invalid
}
