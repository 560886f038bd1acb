package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating an operator.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued access token and operator info.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
	Operator    OperatorInfo `json:"operator"`
	IssuedAt    time.Time    `json:"issued_at"`
}

// OperatorInfo describes the authenticated operator in responses.
type OperatorInfo struct {
	ID       string       `json:"id"`
	Email    string       `json:"email"`
	FullName string       `json:"full_name"`
	Role     OperatorRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	OperatorID string       `json:"operator_id"`
	Role       OperatorRole `json:"role"`
	Email      string       `json:"email"`
	jwt.RegisteredClaims
}
