package errors

import (
	stderrors "errors"
	"fmt"
)

// Application error types grouped by where the failure originates

type ErrorType int

// Domain errors - caller input and business rules
const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeValidation
	ErrorTypeNotFound
	ErrorTypeAlreadyExists
	ErrorTypePermission

	// Infrastructure errors - storage, outbound services, cache tiers
	ErrorTypeDatabase
	ErrorTypeExternalAPI
	ErrorTypeCache

	// System errors
	ErrorTypeConfiguration
)

// String returns the string representation of error type
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND_ERROR"
	case ErrorTypeAlreadyExists:
		return "ALREADY_EXISTS_ERROR"
	case ErrorTypePermission:
		return "PERMISSION_ERROR"
	case ErrorTypeDatabase:
		return "DATABASE_ERROR"
	case ErrorTypeExternalAPI:
		return "EXTERNAL_API_ERROR"
	case ErrorTypeCache:
		return "CACHE_ERROR"
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Short aliases used by handlers and tests
const (
	ValidationError    = ErrorTypeValidation
	NotFoundError      = ErrorTypeNotFound
	AlreadyExistsError = ErrorTypeAlreadyExists
	PermissionError    = ErrorTypePermission
	DatabaseError      = ErrorTypeDatabase
	ExternalAPIError   = ErrorTypeExternalAPI
	CacheError         = ErrorTypeCache
	ConfigurationError = ErrorTypeConfiguration
)

type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.String(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

func Wrap(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// Domain error constructors
func NewValidationError(message string) *AppError {
	return New(ValidationError, message)
}

func NewNotFoundError(message string) *AppError {
	return New(NotFoundError, message)
}

func NewAlreadyExistsError(message string) *AppError {
	return New(AlreadyExistsError, message)
}

func NewPermissionError(message string) *AppError {
	return New(PermissionError, message)
}

// Infrastructure error constructors
func NewDatabaseError(message string, cause error) *AppError {
	return Wrap(DatabaseError, message, cause)
}

func NewExternalAPIError(message string, cause error) *AppError {
	return Wrap(ExternalAPIError, message, cause)
}

func NewCacheError(message string, cause error) *AppError {
	return Wrap(CacheError, message, cause)
}

// System error constructors
func NewConfigurationError(message string, cause error) *AppError {
	return Wrap(ConfigurationError, message, cause)
}

// TypeOf returns the type of the first AppError in err's chain
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

func IsNotFoundError(err error) bool {
	return TypeOf(err) == NotFoundError
}

func IsAlreadyExistsError(err error) bool {
	return TypeOf(err) == AlreadyExistsError
}

func IsValidationError(err error) bool {
	return TypeOf(err) == ValidationError
}

func IsPermissionError(err error) bool {
	return TypeOf(err) == PermissionError
}

func IsDatabaseError(err error) bool {
	return TypeOf(err) == DatabaseError
}

func IsExternalAPIError(err error) bool {
	return TypeOf(err) == ExternalAPIError
}

func IsConfigurationError(err error) bool {
	return TypeOf(err) == ConfigurationError
}
