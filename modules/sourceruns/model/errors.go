package model

import "errors"

var ErrSourceRunNotFound = errors.New("source run not found")

type ErrorCode string

const (
	CodeSourceRunNotFound ErrorCode = "SOURCE_RUN_NOT_FOUND"
	CodeInternalError     ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	if errors.Is(err, ErrSourceRunNotFound) {
		return CodeSourceRunNotFound
	}
	return CodeInternalError
}

func GetErrorMessage(err error) string {
	if errors.Is(err, ErrSourceRunNotFound) {
		return "Source run not found"
	}
	return "Internal server error"
}
