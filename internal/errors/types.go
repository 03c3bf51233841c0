package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeDocMissing ErrorType = "doc_missing"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeRender     ErrorType = "render"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError is a structured error type with context.
type AppError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Status  int
	Path    string
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.Path != "" {
		parts = append(parts, "path:"+e.Path)
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath records the path the failure concerns.
func (e *AppError) WithPath(path string) *AppError {
	e.Path = path

	return e
}

// Common error codes.
const (
	ErrCodeViewNotFound    = "ERR_VIEW_NOT_FOUND"
	ErrCodeDocMissing      = "ERR_DOC_MISSING"
	ErrCodeDocPathMissing  = "ERR_DOC_PATH_MISSING"
	ErrCodeListingFailed   = "ERR_LISTING_FAILED"
	ErrCodeRenderFailed    = "ERR_RENDER_FAILED"
	ErrCodeInvalidKind     = "ERR_INVALID_KIND"
	ErrCodeConfigInvalid   = "ERR_CONFIG_INVALID"
	ErrCodeInternalError   = "ERR_INTERNAL"
	ErrCodeInvalidViewName = "ERR_INVALID_VIEW_NAME"
)

// NewNotFoundError creates an error for a view or page that does not exist.
func NewNotFoundError(code, message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    code,
		Message: message,
		Cause:   cause,
		Status:  http.StatusNotFound,
	}
}

// NewDocMissingError creates an error for a generated documentation page that
// could not be read.
func NewDocMissingError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeDocMissing,
		Code:    ErrCodeDocMissing,
		Message: message,
		Cause:   cause,
		Status:  http.StatusInternalServerError,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
		Status:  http.StatusInternalServerError,
	}
}

// NewRenderError creates a template execution error.
func NewRenderError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeRender,
		Code:    ErrCodeRenderFailed,
		Message: message,
		Cause:   cause,
		Status:  http.StatusInternalServerError,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeConfigInvalid,
		Message: message,
		Cause:   cause,
		Status:  http.StatusInternalServerError,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternalError,
		Message: message,
		Cause:   cause,
		Status:  http.StatusInternalServerError,
	}
}

// IsNotFound reports whether err is a not-found AppError or wraps fs.ErrNotExist.
func IsNotFound(err error) bool {
	var ae *AppError
	if errors.As(err, &ae) && ae.Type == ErrorTypeNotFound {
		return true
	}

	return errors.Is(err, fs.ErrNotExist)
}

// StatusOf maps an error to the HTTP status the terminal handler should send.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var ae *AppError
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	if errors.Is(err, fs.ErrNotExist) {
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}

// ErrorHandler provides centralized error logging.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err at a level chosen by its type. Not-found errors are
// expected traffic and only warn.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var ae *AppError
	if !errors.As(err, &ae) {
		h.logger.Error(ctx, err, "unhandled error occurred")
		return
	}

	switch ae.Type {
	case ErrorTypeNotFound, ErrorTypeValidation:
		h.logger.Warn(ctx, err, "request failed",
			"type", ae.Type,
			"code", ae.Code,
			"path", ae.Path)
	default:
		h.logger.Error(ctx, err, "request failed",
			"type", ae.Type,
			"code", ae.Code,
			"path", ae.Path,
			"status", ae.Status)
	}
}
