package dto

import (
	"time"

	"github.com/hotelmend/ticket-service/internal/domain"
)

// LoginRequest carries an access code.
type LoginRequest struct {
	Code string `json:"code"`
}

// AdminLoginRequest carries the superadmin secret.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	Role        domain.Role `json:"role"`
}

// CheckResponse answers an access code check.
type CheckResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AccessCodeRequest names a code to issue or revoke. An empty password on
// issue asks for a generated code.
type AccessCodeRequest struct {
	Password string `json:"password"`
}

// AccessCodeResponse reports an issued code.
type AccessCodeResponse struct {
	Password  string `json:"password"`
	Generated bool   `json:"generated"`
}
