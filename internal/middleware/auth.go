package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clientportal/internal/domain"
	"clientportal/internal/service"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyEmail  = "email"
	ContextKeyRole   = "role"
	ContextKeyClaims = "claims"
)

// AuthMiddleware returns Gin middleware that validates JWT access tokens,
// rejects revoked ones and injects the session into the context.
// EventSource clients cannot set headers, so the token may also arrive as
// the access_token query parameter.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, "AUTH_REQUIRED", "Please sign in to continue")
			return
		}

		claims, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "AUTH_REQUIRED", "Your session has expired. Please sign in again")
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRole, string(claims.Role))
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return c.Query("access_token")
}

// RequireRole returns middleware that checks the user's role against allowed roles.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleStr, exists := c.Get(ContextKeyRole)
		if !exists {
			abortWithError(c, http.StatusForbidden, "FORBIDDEN", "role not found in context")
			return
		}

		userRole := domain.UserRole(roleStr.(string))
		for _, r := range roles {
			if userRole == r {
				c.Next()
				return
			}
		}

		abortWithError(c, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
	}
}

// GetSession returns the identity of the signed-in user, or ErrAuthRequired.
func GetSession(c *gin.Context) (domain.Session, error) {
	userID, err := GetUserID(c)
	if err != nil {
		return domain.Session{}, err
	}
	email, _ := c.Get(ContextKeyEmail)
	s, _ := email.(string)
	return domain.Session{UserID: userID, Email: s, Role: domain.UserRole(GetRole(c))}, nil
}

// GetUserID extracts the user ID from the Gin context.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return uuid.Nil, domain.ErrAuthRequired
	}
	id, ok := val.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, domain.ErrAuthRequired
	}
	return id, nil
}

// GetRole extracts the user role string from the Gin context.
func GetRole(c *gin.Context) string {
	val, exists := c.Get(ContextKeyRole)
	if !exists {
		return ""
	}
	return val.(string)
}

// GetClaims returns the token claims stored by AuthMiddleware.
func GetClaims(c *gin.Context) (*service.Claims, bool) {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := val.(*service.Claims)
	return claims, ok
}

func abortWithError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": msg},
		"notice":  domain.NewNotice(domain.NoticeError, msg),
	})
}
