package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating an account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and account info.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   int64       `json:"expires_in"`
	IssuedAt    time.Time   `json:"issued_at"`
	User        AccountInfo `json:"user"`
}

// AccountInfo describes the authenticated account in responses.
type AccountInfo struct {
	ID         string      `json:"id"`
	AccountID  string      `json:"account_id"`
	Email      string      `json:"email"`
	FirstName  string      `json:"firstname"`
	LastName   string      `json:"lastname"`
	Role       AccountRole `json:"user_type"`
	Department string      `json:"department"`
	Photo      string      `json:"photo"`
	Status     string      `json:"status"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	AccountID string      `json:"account_id"`
	Role      AccountRole `json:"user_type"`
	Email     string      `json:"email"`
	jwt.RegisteredClaims
}
