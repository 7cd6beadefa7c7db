// Package model holds the single-operator session types (spec §6): one
// bcrypt-hashed credential, JWT access/refresh tokens, and the refresh-token
// revocation record.
package model

import (
	"errors"
	"time"
)

// OperatorUserID is the fixed subject of every issued token: this
// deployment has exactly one human reviewer, not a multi-tenant user base.
const OperatorUserID = "operator"

var (
	ErrInvalidCredentials    = errors.New("invalid operator credentials")
	ErrOperatorNotConfigured = errors.New("operator password hash is not configured")
	ErrInvalidRefreshToken   = errors.New("invalid or expired refresh token")
)

type ErrorCode string

const (
	CodeInvalidCredentials    ErrorCode = "INVALID_CREDENTIALS"
	CodeOperatorNotConfigured ErrorCode = "OPERATOR_NOT_CONFIGURED"
	CodeInvalidRefreshToken   ErrorCode = "INVALID_REFRESH_TOKEN"
	CodeInternalError         ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, ErrOperatorNotConfigured):
		return CodeOperatorNotConfigured
	case errors.Is(err, ErrInvalidRefreshToken):
		return CodeInvalidRefreshToken
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid operator credentials"
	case errors.Is(err, ErrOperatorNotConfigured):
		return "Operator password hash is not configured"
	case errors.Is(err, ErrInvalidRefreshToken):
		return "Invalid or expired refresh token"
	default:
		return "Internal server error"
	}
}

// RefreshToken is a revocable refresh-token record, keyed by a hash of the
// token value so the plaintext is never stored.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

func NewRefreshToken(userID, tokenHash string, expiresAt time.Time) *RefreshToken {
	return &RefreshToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
}

func (t *RefreshToken) IsValid() bool {
	return t.RevokedAt == nil && time.Now().UTC().Before(t.ExpiresAt)
}

// AuthTokens is the login/refresh response body.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LoginRequest is the single operator credential: no email, since there is
// only one account.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
