package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aaeducates/backend/internal/app/authz"
	"github.com/aaeducates/backend/internal/app/models/dto"
	"github.com/aaeducates/backend/internal/pkg/apperrors"
	"github.com/aaeducates/backend/internal/pkg/auth"
	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware
const (
	ContextActorKey  = "actor"
	ContextClaimsKey = "claims"
	ContextTokenKey  = "accessToken"
)

// TokenVerifier validates an access token and checks it has not been revoked
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// AuthMiddleware for authentication
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// JWTAuth rejects requests without a valid bearer token
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := requestToken(c)
		if authHeader == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			errorDetail = errorDetail.WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		if !m.authenticate(c, authHeader) {
			return
		}
		c.Next()
	}
}

// OptionalAuth lets anonymous requests through as the anonymous actor.
// A token that is present must still be valid.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := requestToken(c)
		if authHeader == "" {
			c.Set(ContextActorKey, &authz.Actor{})
			c.Next()
			return
		}

		if !m.authenticate(c, authHeader) {
			return
		}
		c.Next()
	}
}

// authenticate validates the token and stores the caller in the context.
// It aborts the request and returns false on failure.
func (m *AuthMiddleware) authenticate(c *gin.Context, authHeader string) bool {
	tokenString, err := auth.ExtractBearerToken(strings.Trim(authHeader, "\"'"))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Authentication failed")
		errorDetail = errorDetail.WithDetails("Invalid token format")
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return false
	}

	claims, err := m.verifier.Verify(c.Request.Context(), tokenString)
	if err != nil {
		errorCode := dto.ErrorCodeInvalidToken
		errorDetails := "Invalid token"

		switch {
		case errors.Is(err, apperrors.ErrTokenExpired):
			errorCode = dto.ErrorCodeExpiredToken
			errorDetails = "Token has expired"
		case errors.Is(err, apperrors.ErrTokenRevoked):
			errorDetails = "Token has been revoked"
		case !errors.Is(err, apperrors.ErrTokenInvalid):
			HandleAPIError(c, err)
			c.Abort()
			return false
		}

		errorDetail := dto.NewErrorDetail(errorCode, "Authentication failed")
		errorDetail = errorDetail.WithDetails(errorDetails)
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return false
	}

	c.Set(ContextClaimsKey, claims)
	c.Set(ContextTokenKey, tokenString)
	c.Set(ContextActorKey, ActorFromClaims(claims))
	return true
}

// requestToken reads the Authorization header, falling back to a token
// query parameter for websocket clients and Swagger UI
func requestToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return header
	}
	for _, key := range []string{"authorization", "Authorization", "token"} {
		if v := c.Query(key); v != "" {
			return v
		}
	}
	return ""
}

// ActorFromClaims builds the request actor from verified token claims
func ActorFromClaims(claims *auth.Claims) *authz.Actor {
	if claims == nil {
		return &authz.Actor{}
	}
	return &authz.Actor{
		UserID:      claims.UserID,
		Email:       claims.Email,
		Role:        claims.Role,
		IsStaff:     claims.IsStaff,
		IsSuperuser: claims.IsSuperuser,
	}
}

// GetActor returns the caller set by the auth middleware, or the anonymous actor
func GetActor(c *gin.Context) *authz.Actor {
	if v, ok := c.Get(ContextActorKey); ok {
		if actor, ok := v.(*authz.Actor); ok && actor != nil {
			return actor
		}
	}
	return &authz.Actor{}
}

// GetClaims returns the verified token claims, if any
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}
