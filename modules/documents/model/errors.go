package model

import "errors"

var (
	ErrCanonicalCVNotFound  = errors.New("canonical cv not found for profile")
	ErrValidationFailed     = errors.New("adapted cv failed validation gate")
	ErrPostingNotFound      = errors.New("posting not found")
)

// ErrorCode is a stable, loggable tag independent of the error's message
// text, following the taxonomy pattern used across the other modules.
type ErrorCode string

const (
	ErrorCodeCanonicalCVNotFound ErrorCode = "canonical_cv_not_found"
	ErrorCodeValidationFailed    ErrorCode = "validation_failed"
	ErrorCodePostingNotFound     ErrorCode = "posting_not_found"
	ErrorCodeUnknown             ErrorCode = "unknown"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrCanonicalCVNotFound):
		return ErrorCodeCanonicalCVNotFound
	case errors.Is(err, ErrValidationFailed):
		return ErrorCodeValidationFailed
	case errors.Is(err, ErrPostingNotFound):
		return ErrorCodePostingNotFound
	default:
		return ErrorCodeUnknown
	}
}

func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
