package dto

import "net/http"

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
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes for the ledger
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeInvalidPaymentAmount is used when a payment amount is not positive
	ErrCodeInvalidPaymentAmount = "ERR_INVALID_PAYMENT_AMOUNT"
	// ErrCodeInvalidAllocationAmount is used when an allocation amount is not positive
	ErrCodeInvalidAllocationAmount = "ERR_INVALID_ALLOCATION_AMOUNT"
	// ErrCodeExceedsInvoiceBalance is used when an application exceeds the invoice balance
	ErrCodeExceedsInvoiceBalance = "ERR_EXCEEDS_INVOICE_BALANCE"
	// ErrCodeInsufficientCredit is used when a credit lacks available balance
	ErrCodeInsufficientCredit = "ERR_INSUFFICIENT_CREDIT"
	// ErrCodeInvoiceNotApplicable is used when an invoice cannot accept applications
	ErrCodeInvoiceNotApplicable = "ERR_INVOICE_NOT_APPLICABLE"
	// ErrCodeInvoiceMismatch is used when invoice and credit belong to different customers
	ErrCodeInvoiceMismatch = "ERR_INVOICE_MISMATCH"
	// ErrCodeHasApplications is used when voiding a credit that was already applied
	ErrCodeHasApplications = "ERR_HAS_APPLICATIONS"
	// ErrCodeInvalidCreditReason is used when the credit reason is not recognized
	ErrCodeInvalidCreditReason = "ERR_INVALID_CREDIT_REASON"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeValidationFormat: http.StatusBadRequest,
	ErrCodeValidationRange:  http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:            http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:            http.StatusUnprocessableEntity,
	ErrCodeInvalidPaymentAmount:    http.StatusUnprocessableEntity,
	ErrCodeInvalidAllocationAmount: http.StatusUnprocessableEntity,
	ErrCodeExceedsInvoiceBalance:   http.StatusUnprocessableEntity,
	ErrCodeInsufficientCredit:      http.StatusUnprocessableEntity,
	ErrCodeInvoiceNotApplicable:    http.StatusUnprocessableEntity,
	ErrCodeInvoiceMismatch:         http.StatusUnprocessableEntity,
	ErrCodeHasApplications:         http.StatusUnprocessableEntity,
	ErrCodeInvalidCreditReason:     http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the standardized
// wire format codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                 ErrCodeNotFound,
	"ALREADY_EXISTS":            ErrCodeAlreadyExists,
	"ALREADY_IMPORTED":          ErrCodeAlreadyExists,
	"DUPLICATE_INVOICE_NUMBER":  ErrCodeAlreadyExists,
	"CONCURRENCY_CONFLICT":      ErrCodeConcurrencyConflict,
	"INVALID_INPUT":             ErrCodeInvalidInput,
	"INVALID_STATE":             ErrCodeInvalidState,
	"INVALID_STATUS":            ErrCodeBadRequest,
	"INVALID_PAYMENT_METHOD":    ErrCodeBadRequest,
	"INVALID_PAYMENT_AMOUNT":    ErrCodeInvalidPaymentAmount,
	"INVALID_ALLOCATION_AMOUNT": ErrCodeInvalidAllocationAmount,
	"EXCEEDS_INVOICE_BALANCE":   ErrCodeExceedsInvoiceBalance,
	"INSUFFICIENT_CREDIT":       ErrCodeInsufficientCredit,
	"INVOICE_NOT_APPLICABLE":    ErrCodeInvoiceNotApplicable,
	"INVOICE_MISMATCH":          ErrCodeInvoiceMismatch,
	"HAS_APPLICATIONS":          ErrCodeHasApplications,
	"INVALID_CREDIT_REASON":     ErrCodeInvalidCreditReason,
	"UNAUTHORIZED":              ErrCodeUnauthorized,
	"FORBIDDEN":                 ErrCodeForbidden,
	"VALIDATION_ERROR":          ErrCodeValidation,
	"BAD_REQUEST":               ErrCodeBadRequest,
	"INTERNAL_ERROR":            ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if wireCode, ok := DomainErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}
