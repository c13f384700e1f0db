package dto

import "github.com/aaeducates/backend/internal/app/models"

// RegisterRequest represents a registration request. Only email and password are required.
type RegisterRequest struct {
	Email     string      `json:"email" example:"student@test.com"`
	Password  string      `json:"password" example:"secret123"`
	Username  string      `json:"username,omitempty" example:"student1"`
	Role      models.Role `json:"role,omitempty" example:"STUDENT"`
	FirstName string      `json:"first_name,omitempty" example:"Ada"`
	LastName  string      `json:"last_name,omitempty" example:"Lovelace"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" example:"student@test.com"`
	Password string `json:"password" example:"secret123"`
}

// RefreshTokenRequest carries a refresh token for rotation or logout
type RefreshTokenRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// VerifyTokenRequest carries an access token to verify
type VerifyTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// AuthUser is the identity summary returned at login
type AuthUser struct {
	ID        int64       `json:"id" example:"1"`
	Email     string      `json:"email" example:"student@test.com"`
	Username  *string     `json:"username" example:"student1"`
	FirstName string      `json:"first_name" example:"Ada"`
	LastName  string      `json:"last_name" example:"Lovelace"`
	Role      models.Role `json:"role" example:"STUDENT"`
	ProfileID *int64      `json:"profile_id" example:"3"`
}

// TokenResponse is returned by login and refresh
type TokenResponse struct {
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh"`
	TokenType        string    `json:"token_type" example:"Bearer"`
	ExpiresIn        int       `json:"expires_in" example:"3600"`
	RefreshExpiresIn int       `json:"refresh_expires_in" example:"604800"`
	User             *AuthUser `json:"user,omitempty"`
}
