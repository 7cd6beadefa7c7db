package model

import "errors"

var (
	ErrBlocklistEntryNotFound = errors.New("blocklist entry not found")
	ErrRuleNotFound           = errors.New("application rule not found")
	ErrCompanyNameRequired    = errors.New("company name is required")
)

type ErrorCode string

const (
	CodeBlocklistEntryNotFound ErrorCode = "BLOCKLIST_ENTRY_NOT_FOUND"
	CodeRuleNotFound           ErrorCode = "RULE_NOT_FOUND"
	CodeCompanyNameRequired    ErrorCode = "COMPANY_NAME_REQUIRED"
	CodeInternalError          ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrBlocklistEntryNotFound):
		return CodeBlocklistEntryNotFound
	case errors.Is(err, ErrRuleNotFound):
		return CodeRuleNotFound
	case errors.Is(err, ErrCompanyNameRequired):
		return CodeCompanyNameRequired
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrBlocklistEntryNotFound):
		return "Blocklist entry not found"
	case errors.Is(err, ErrRuleNotFound):
		return "Application rule not found"
	case errors.Is(err, ErrCompanyNameRequired):
		return "Company name is required"
	default:
		return "Internal server error"
	}
}
