package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaeducates/backend/internal/app/authz"
	"github.com/aaeducates/backend/internal/app/models"
	"github.com/aaeducates/backend/internal/app/models/dto"
	"github.com/aaeducates/backend/internal/pkg/apperrors"
	"github.com/aaeducates/backend/internal/pkg/auth"
)

const validToken = "header.payload.signature"

// stubVerifier accepts validToken and fails every other token with err
type stubVerifier struct {
	claims *auth.Claims
	err    error
}

func (v *stubVerifier) Verify(_ context.Context, token string) (*auth.Claims, error) {
	if token == validToken && v.err == nil {
		return v.claims, nil
	}
	if v.err != nil {
		return nil, v.err
	}
	return nil, apperrors.ErrTokenInvalid
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(verifier TokenVerifier) *gin.Engine {
	m := NewAuthMiddleware(verifier)
	r := gin.New()
	handler := func(c *gin.Context) {
		actor := GetActor(c)
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "admin": actor.IsAdmin()})
	}
	r.GET("/strict", m.JWTAuth(), handler)
	r.GET("/optional", m.OptionalAuth(), handler)
	return r
}

func serve(r *gin.Engine, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestJWTAuth(t *testing.T) {
	verifier := &stubVerifier{claims: &auth.Claims{UserID: 4, Role: models.RoleAdmin}}
	r := newAuthRouter(verifier)

	t.Run("missing token", func(t *testing.T) {
		w := serve(r, "/strict", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Authentication required", decodeError(t, w).Error.Message)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := serve(r, "/strict", "Token abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		w := serve(r, "/strict", "Bearer other.token.value")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeInvalidToken, decodeError(t, w).Error.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := serve(r, "/strict", "Bearer "+validToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":4,"admin":true}`, w.Body.String())
	})

	t.Run("token in query", func(t *testing.T) {
		w := serve(r, "/strict?token="+validToken, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestJWTAuthVerifierFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		details string
	}{
		{"expired", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token has expired"},
		{"revoked", apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token has been revoked"},
		{"backend down", errors.New("redis: connection refused"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAuthRouter(&stubVerifier{err: tt.err})
			w := serve(r, "/strict", "Bearer "+validToken)
			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.code, resp.Error.Code)
			if tt.details != "" {
				assert.Equal(t, tt.details, resp.Error.Details)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	r := newAuthRouter(&stubVerifier{claims: &auth.Claims{UserID: 9, Role: models.RoleStudent}})

	w := serve(r, "/optional", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0,"admin":false}`, w.Body.String())

	w = serve(r, "/optional", "Bearer "+validToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":9,"admin":false}`, w.Body.String())

	// A bad token is rejected even where anonymous access is allowed
	w = serve(r, "/optional", "Bearer bad.token.value")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActorFromClaims(t *testing.T) {
	actor := ActorFromClaims(&auth.Claims{UserID: 2, Email: "s@test.com", Role: models.RoleStudent, IsStaff: true})
	assert.Equal(t, int64(2), actor.UserID)
	assert.True(t, actor.IsAdmin())

	anonymous := ActorFromClaims(nil)
	assert.False(t, anonymous.Authenticated())
}

func TestGetActorDefaultsToAnonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, &authz.Actor{}, GetActor(c))

	_, ok := GetClaims(c)
	assert.False(t, ok)
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"not found", apperrors.NewResourceNotFoundError("Not found."), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Not found."},
		{"forbidden", apperrors.NewForbiddenError("Nope"), http.StatusForbidden, dto.ErrorCodeForbidden, "Nope"},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication credentials were not provided."},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password"},
		{"disabled", apperrors.ErrAccountDisabled, http.StatusUnauthorized, dto.ErrorCodeAccountDisabled, "User account is disabled"},
		{"bad request", apperrors.NewBadRequestError("Email and password are required"), http.StatusBadRequest, dto.ErrorCodeBadRequest, "Email and password are required"},
		{"gateway", apperrors.NewGatewayError("card declined"), http.StatusBadRequest, dto.ErrorCodePaymentGateway, "card declined"},
		{"conflict", apperrors.NewConflictError("Already exists"), http.StatusConflict, dto.ErrorCodeConflict, "Already exists"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
		})
	}
}

func TestHandleAPIErrorValidation(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	HandleAPIError(c, apperrors.NewValidationError("purchaser", "No parent or school profile."))

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeValidationFailed, resp.Error.Code)
	assert.Equal(t, "purchaser", resp.Error.Field)
	assert.Equal(t, "No parent or school profile.", resp.Error.Message)
}
