package dto

import (
	"net/http"

	"github.com/erp/posting/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidLineItem is used for a bad quantity or price on a line
	ErrCodeInvalidLineItem = "ERR_INVALID_LINE_ITEM"
	// ErrCodeInvalidTaxConfiguration is used for unusable tax rules
	ErrCodeInvalidTaxConfiguration = "ERR_INVALID_TAX_CONFIGURATION"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Posting error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeInvalidStatusTransition is used for disallowed order transitions
	ErrCodeInvalidStatusTransition = "ERR_INVALID_STATUS_TRANSITION"
	// ErrCodeDuplicatePosting is used when ledger rows already exist for a source
	ErrCodeDuplicatePosting = "ERR_DUPLICATE_POSTING"
	// ErrCodeOverpayment is used when a payment exceeds the open balance
	ErrCodeOverpayment = "ERR_OVERPAYMENT"
	// ErrCodeAmbiguousPaymentTarget is used when a payment names no single target
	ErrCodeAmbiguousPaymentTarget = "ERR_AMBIGUOUS_PAYMENT_TARGET"
	// ErrCodeMissingLedgerAccount is used when Cash, AP or AR is not provisioned
	ErrCodeMissingLedgerAccount = "ERR_MISSING_LEDGER_ACCOUNT"
	// ErrCodeStockPostingFailed is used when a stock batch was rolled back
	ErrCodeStockPostingFailed = "ERR_STOCK_POSTING_FAILED"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:              http.StatusBadRequest,
	ErrCodeInvalidLineItem:         http.StatusBadRequest,
	ErrCodeInvalidTaxConfiguration: http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	// Repeated postings and transitions -> 409 Conflict
	ErrCodeInvalidStatusTransition: http.StatusConflict,
	ErrCodeDuplicatePosting:        http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:           http.StatusUnprocessableEntity,
	ErrCodeOverpayment:            http.StatusUnprocessableEntity,
	ErrCodeAmbiguousPaymentTarget: http.StatusUnprocessableEntity,
	ErrCodeMissingLedgerAccount:   http.StatusUnprocessableEntity,
	ErrCodeStockPostingFailed:     http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	shared.CodeNotFound:                ErrCodeNotFound,
	shared.CodeAlreadyExists:           ErrCodeAlreadyExists,
	shared.CodeInvalidState:            ErrCodeInvalidState,
	shared.CodeValidationFailed:        ErrCodeValidation,
	shared.CodeInvalidLineItem:         ErrCodeInvalidLineItem,
	shared.CodeInvalidTaxConfiguration: ErrCodeInvalidTaxConfiguration,
	shared.CodeInvalidStatusTransition: ErrCodeInvalidStatusTransition,
	shared.CodeDuplicatePosting:        ErrCodeDuplicatePosting,
	shared.CodeOverpayment:             ErrCodeOverpayment,
	shared.CodeAmbiguousPaymentTarget:  ErrCodeAmbiguousPaymentTarget,
	shared.CodeMissingLedgerAccount:    ErrCodeMissingLedgerAccount,
	shared.CodeStockPostingFailed:      ErrCodeStockPostingFailed,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes that are already in the API format, or unknown, are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
