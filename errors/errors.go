package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is returned by every sawmill package. Code classifies the
// failure and Cause, when set, is reachable through errors.Is and errors.As.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

// Error renders "CODE: message", followed by the cause in parentheses.
func (e *AppError) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause == nil {
		return msg
	}
	return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause, WithDetails and WithDetail modify e in place and return it.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// ResourceAcquisition creates an error for an origin that could not be opened or listed.
func ResourceAcquisition(resource string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeResourceAcquisition, Message: fmt.Sprintf("unable to open %s", resource),
		Details: map[string]any{"resource": resource}, Cause: cause,
	}
}

// ProcessSpawn creates an error for a child process that could not be started.
func ProcessSpawn(argv []string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeProcessSpawn, Message: fmt.Sprintf("unable to start %q", strings.Join(argv, " ")),
		Details: map[string]any{"argv": argv}, Cause: cause,
	}
}

// ReadFailed creates an error for an I/O failure on an open origin.
func ReadFailed(resource string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeRead, Message: fmt.Sprintf("read from %s failed", resource),
		Details: map[string]any{"resource": resource}, Cause: cause,
	}
}

// WriteFailed creates an error for an I/O failure on sink output.
func WriteFailed(resource string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeWrite, Message: fmt.Sprintf("write to %s failed", resource),
		Details: map[string]any{"resource": resource}, Cause: cause,
	}
}

// FieldCountMismatch creates an error for a line with fewer segments than its template.
func FieldCountMismatch(want, got int, line string) *AppError {
	return &AppError{
		Code: ErrCodeFieldCountMismatch, Message: fmt.Sprintf("expected %d fields, got %d", want, got),
		Details: map[string]any{"want": want, "got": got, "line": line},
	}
}

// MalformedLine creates an error for a line that could not be tokenized.
func MalformedLine(line string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeMalformedLine, Message: "unable to tokenize line",
		Details: map[string]any{"line": line}, Cause: cause,
	}
}

// UnknownField creates an error for a lookup of a field an item does not carry.
func UnknownField(field string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownField, Message: fmt.Sprintf("no field %q", field),
		Details: map[string]any{"field": field},
	}
}

// UnhashableItem creates an error for an item that cannot key a frequency table.
func UnhashableItem(item any) *AppError {
	return &AppError{
		Code: ErrCodeUnhashableItem, Message: fmt.Sprintf("unhashable item of type %T", item),
		Details: map[string]any{"type": fmt.Sprintf("%T", item)},
	}
}

// Misconfiguration creates an error for an invalid parameter.
func Misconfiguration(param, reason string) *AppError {
	details := make(map[string]any)
	if param != "" {
		details["param"] = param
	}
	return &AppError{
		Code: ErrCodeMisconfiguration, Message: fmt.Sprintf("invalid %s: %s", param, reason),
		Details: details,
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsResource reports whether err denotes a resource acquisition failure.
func IsResource(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && IsResourceCode(appErr.Code)
}
