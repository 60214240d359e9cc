package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating an account.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// RegisterRequest captures the public registration form. Registration
// always creates a student account; admins are provisioned out of band.
type RegisterRequest struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6"`
	Age           int    `json:"age" validate:"required,gt=0"`
	City          string `json:"city" validate:"required"`
	ContactNumber string `json:"contactNumber" validate:"required"`
	FatherName    string `json:"fatherName" validate:"required"`
	ERPNumber     string `json:"erpNumber" validate:"required"`
	IP            string `json:"-"`
	UserAgent     string `json:"-"`
}

// AuthResponse returns the issued token and account identity.
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expires_in"`
	IssuedAt  time.Time   `json:"issued_at"`
	Account   AccountInfo `json:"account"`
}

// AccountInfo describes the authenticated account in responses.
type AccountInfo struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  AccountRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	AccountID string      `json:"account_id"`
	Role      AccountRole `json:"role"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	jwt.RegisteredClaims
}
