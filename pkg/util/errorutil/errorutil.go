package errorutil

import (
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error codes reported to the operator.
const (
	CodeValidation = "VALIDATION_FAILED"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeWorkbook   = "WORKBOOK_ERROR"
	CodeCancelled  = "CANCELLED"
	CodeInternal   = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), details)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, details)
}

func NewCancelled(message string) error {
	return NewDomainError(CodeCancelled, message, nil)
}

// NewWorkbookError reports an unreadable or unwritable workbook. It aborts
// the whole bulk operation.
func NewWorkbookError(message string, err error) error {
	return &DomainError{Code: CodeWorkbook, Message: message, Err: err}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:    CodeInternal,
		Message: "storage failure",
		Err:     err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, gorm.ErrRecordNotFound) {
		return &DomainError{Code: CodeNotFound, Message: "resource not found", Err: err}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &DomainError{Code: CodeConflict, Message: "record already exists", Err: err}
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "storage failure",
		Err:     err,
	}
}

// MapError converts err to a DomainError, keeping nil as nil.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// HasCode reports whether err carries the given domain code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
