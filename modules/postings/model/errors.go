package model

import "errors"

var (
	// ErrPostingNotFound is returned when a posting is not found.
	ErrPostingNotFound = errors.New("posting not found")

	// ErrDuplicatePosting is returned when (source_id, external_id) already exists.
	ErrDuplicatePosting = errors.New("posting already exists for source and external id")

	// ErrInvalidPostingStatus is returned when an invalid status is supplied.
	ErrInvalidPostingStatus = errors.New("invalid posting status")
)

// ErrorCode represents error codes.
type ErrorCode string

const (
	CodePostingNotFound     ErrorCode = "POSTING_NOT_FOUND"
	CodeDuplicatePosting    ErrorCode = "DUPLICATE_POSTING"
	CodeInvalidPostingStatus ErrorCode = "INVALID_POSTING_STATUS"
	CodeInternalError       ErrorCode = "INTERNAL_ERROR"
)

// GetErrorCode maps errors to error codes.
func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrPostingNotFound):
		return CodePostingNotFound
	case errors.Is(err, ErrDuplicatePosting):
		return CodeDuplicatePosting
	case errors.Is(err, ErrInvalidPostingStatus):
		return CodeInvalidPostingStatus
	default:
		return CodeInternalError
	}
}

// GetErrorMessage returns an operator-facing error message.
func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrPostingNotFound):
		return "Posting not found"
	case errors.Is(err, ErrDuplicatePosting):
		return "Posting already exists for this source"
	case errors.Is(err, ErrInvalidPostingStatus):
		return "Invalid posting status"
	default:
		return "Internal server error"
	}
}
