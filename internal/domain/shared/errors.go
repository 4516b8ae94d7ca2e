package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error.
// Code is stable and machine readable; Details identifies the failing
// line or field when one is known.
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, ErrOverpayment) matches instances carrying details.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetail returns a copy of the error with an extra detail attached.
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Code: e.Code, Message: e.Message, Details: details}
}

// WithMessage returns a copy of the error with a more specific message.
func (e *DomainError) WithMessage(format string, args ...any) *DomainError {
	return &DomainError{Code: e.Code, Message: fmt.Sprintf(format, args...), Details: e.Details}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes of the posting engine.
const (
	CodeNotFound                = "NOT_FOUND"
	CodeAlreadyExists           = "ALREADY_EXISTS"
	CodeInvalidState            = "INVALID_STATE"
	CodeValidationFailed        = "VALIDATION_FAILED"
	CodeInvalidLineItem         = "INVALID_LINE_ITEM"
	CodeInvalidTaxConfiguration = "INVALID_TAX_CONFIGURATION"
	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	CodeDuplicatePosting        = "DUPLICATE_POSTING"
	CodeOverpayment             = "OVERPAYMENT"
	CodeAmbiguousPaymentTarget  = "AMBIGUOUS_PAYMENT_TARGET"
	CodeMissingLedgerAccount    = "MISSING_LEDGER_ACCOUNT"
	CodeStockPostingFailed      = "STOCK_POSTING_FAILED"
)

// Common domain errors
var (
	ErrNotFound      = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidState  = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrValidation    = NewDomainError(CodeValidationFailed, "Validation failed")

	ErrInvalidLineItem         = NewDomainError(CodeInvalidLineItem, "Invalid line item")
	ErrInvalidTaxConfiguration = NewDomainError(CodeInvalidTaxConfiguration, "Invalid tax configuration")
	ErrInvalidStatusTransition = NewDomainError(CodeInvalidStatusTransition, "Invalid status transition")
	ErrDuplicatePosting        = NewDomainError(CodeDuplicatePosting, "Posting already recorded")
	ErrOverpayment             = NewDomainError(CodeOverpayment, "Payment exceeds outstanding balance")
	ErrAmbiguousPaymentTarget  = NewDomainError(CodeAmbiguousPaymentTarget, "Payment must reference exactly one bill or invoice")
	ErrMissingLedgerAccount    = NewDomainError(CodeMissingLedgerAccount, "Required ledger account is not provisioned")
	ErrStockPostingFailed      = NewDomainError(CodeStockPostingFailed, "Stock posting failed")
)

// IsValidationError reports whether err belongs to the validation family
// (rejected before any write).
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidLineItem) ||
		errors.Is(err, ErrInvalidTaxConfiguration)
}
