package domain

import "fmt"

// ErrorCode identifies a failure class across the service and API layers.
type ErrorCode string

const (
	CodeNotFound              ErrorCode = "NOT_FOUND"
	CodeInvalidState          ErrorCode = "INVALID_STATE"
	CodeResubmitLimitExceeded ErrorCode = "RESUBMIT_LIMIT_EXCEEDED"
	CodeNoCodeAvailable       ErrorCode = "NO_CODE_AVAILABLE"
	CodeAlreadyUsed           ErrorCode = "ALREADY_USED"
	CodeAlreadyDeleted        ErrorCode = "ALREADY_DELETED"
	CodeAlreadyExpired        ErrorCode = "ALREADY_EXPIRED"
	CodeTokenExpired          ErrorCode = "TOKEN_EXPIRED"
	CodeInvalidToken          ErrorCode = "INVALID_TOKEN"
	CodeNotConfigured         ErrorCode = "NOT_CONFIGURED"
	CodeGatewayError          ErrorCode = "GATEWAY_ERROR"
	CodeValidationError       ErrorCode = "VALIDATION_ERROR"
	CodeUnauthorized          ErrorCode = "UNAUTHORIZED"
	CodeForbidden             ErrorCode = "FORBIDDEN"
)

// AppError is the structured error surfaced to callers as a {code, message} pair.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on the error code so wrapped and freshly constructed instances
// compare equal under errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

var (
	ErrNotFound              = &AppError{Code: CodeNotFound, Message: "resource not found"}
	ErrInvalidState          = &AppError{Code: CodeInvalidState, Message: "operation not allowed in current state"}
	ErrResubmitLimitExceeded = &AppError{Code: CodeResubmitLimitExceeded, Message: "resubmission limit reached"}
	ErrNoCodeAvailable       = &AppError{Code: CodeNoCodeAvailable, Message: "no invite code available for assignment"}
	ErrAlreadyUsed           = &AppError{Code: CodeAlreadyUsed, Message: "invite code already used"}
	ErrAlreadyDeleted        = &AppError{Code: CodeAlreadyDeleted, Message: "invite code already deleted"}
	ErrAlreadyExpired        = &AppError{Code: CodeAlreadyExpired, Message: "invite code already expired"}
	ErrTokenExpired          = &AppError{Code: CodeTokenExpired, Message: "query token has expired"}
	ErrInvalidToken          = &AppError{Code: CodeInvalidToken, Message: "invalid query token"}
	ErrNotConfigured         = &AppError{Code: CodeNotConfigured, Message: "external validator is not configured"}
	ErrGateway               = &AppError{Code: CodeGatewayError, Message: "external validator request failed"}
	ErrUnauthorized          = &AppError{Code: CodeUnauthorized, Message: "authentication required"}
	ErrForbidden             = &AppError{Code: CodeForbidden, Message: "insufficient permissions"}
)

// NewValidationError reports malformed input detected before any transaction begins.
func NewValidationError(format string, args ...any) *AppError {
	return &AppError{Code: CodeValidationError, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError reports a missing entity by type and id.
func NewNotFoundError(entity string, id any) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s %v not found", entity, id)}
}

// WrapGatewayError attaches the underlying transport failure to a GatewayError.
func WrapGatewayError(err error) *AppError {
	return &AppError{Code: CodeGatewayError, Message: "external validator request failed", Err: err}
}
