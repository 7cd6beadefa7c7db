package model

import "errors"

var (
	ErrEntryNotFound     = errors.New("catalogue entry not found")
	ErrDuplicateEntry    = errors.New("catalogue entry already exists for company and url")
)

type ErrorCode string

const (
	CodeEntryNotFound  ErrorCode = "CATALOGUE_ENTRY_NOT_FOUND"
	CodeDuplicateEntry ErrorCode = "CATALOGUE_ENTRY_DUPLICATE"
	CodeInternalError  ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrEntryNotFound):
		return CodeEntryNotFound
	case errors.Is(err, ErrDuplicateEntry):
		return CodeDuplicateEntry
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrEntryNotFound):
		return "Catalogue entry not found"
	case errors.Is(err, ErrDuplicateEntry):
		return "Catalogue entry already exists for company and url"
	default:
		return "Internal server error"
	}
}
