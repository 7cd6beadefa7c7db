package model

import "errors"

var (
	ErrApplicationNotFound  = errors.New("application not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrCompanyBlocklisted   = errors.New("company is blocklisted")
	ErrRateLimitExceeded    = errors.New("company rate limit exceeded")
	ErrAuthorizationExpired = errors.New("authorization window expired")
)

type ErrorCode string

const (
	CodeApplicationNotFound  ErrorCode = "APPLICATION_NOT_FOUND"
	CodeInvalidTransition    ErrorCode = "INVALID_TRANSITION"
	CodeCompanyBlocklisted   ErrorCode = "COMPANY_BLOCKLISTED"
	CodeRateLimitExceeded    ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeAuthorizationExpired ErrorCode = "AUTHORIZATION_EXPIRED"
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrApplicationNotFound):
		return CodeApplicationNotFound
	case errors.Is(err, ErrInvalidTransition):
		return CodeInvalidTransition
	case errors.Is(err, ErrCompanyBlocklisted):
		return CodeCompanyBlocklisted
	case errors.Is(err, ErrRateLimitExceeded):
		return CodeRateLimitExceeded
	case errors.Is(err, ErrAuthorizationExpired):
		return CodeAuthorizationExpired
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrApplicationNotFound):
		return "Application not found"
	case errors.Is(err, ErrInvalidTransition):
		return "Invalid status transition"
	case errors.Is(err, ErrCompanyBlocklisted):
		return "Company is blocklisted"
	case errors.Is(err, ErrRateLimitExceeded):
		return "Company rate limit exceeded"
	case errors.Is(err, ErrAuthorizationExpired):
		return "Authorization window expired"
	default:
		return "Internal server error"
	}
}
