package errors

import (
	"fmt"
	"net/http"
	"strings"
)

const (
	StatusFail  = "fail"
	StatusError = "error"
)

var (
	ErrNotLoggedIn        = New("You are not logged in! Please log in to get access.", http.StatusUnauthorized)
	ErrInvalidToken       = New("Invalid token. Please log in again!", http.StatusUnauthorized)
	ErrTokenExpired       = New("Your token has expired! Please log in again.", http.StatusUnauthorized)
	ErrUserNoLongerExists = New("The user belonging to this token no longer exists.", http.StatusUnauthorized)
	ErrForbidden          = New("You do not have permission to perform this action", http.StatusForbidden)

	ErrMissingCredentials   = New("Please provide email and password!", http.StatusBadRequest)
	ErrInvalidCredentials   = New("Incorrect email or password", http.StatusUnauthorized)
	ErrWrongCurrentPassword = New("Your current password is wrong.", http.StatusUnauthorized)

	ErrResetTokenInvalid = New("Token is invalid or has expired", http.StatusBadRequest)
	ErrEmailDispatch     = New("There was an error sending the email. Try again later!", http.StatusInternalServerError)

	ErrInvalidRequestBody = New("Invalid request body", http.StatusBadRequest)
	ErrRouteNotFound      = New("Can't find this route on this server", http.StatusNotFound)
)

// AppError is an operational failure: raised on purpose with the status and
// message the client should see.
type AppError struct {
	StatusCode int    `json:"statusCode"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) HTTPStatus() int { return e.StatusCode }

// New builds an operational error. Status is "fail" for 4xx codes and
// "error" for everything else.
func New(message string, statusCode int) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Status:     statusFor(statusCode),
		Message:    message,
	}
}

func NewAppError(message string, statusCode int, err error) *AppError {
	appErr := New(message, statusCode)
	appErr.Err = err
	return appErr
}

func NotFound(message string) *AppError {
	return New(message, http.StatusNotFound)
}

func BadRequest(message string) *AppError {
	return New(message, http.StatusBadRequest)
}

// FieldError is a single schema constraint violation.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// ValidationError carries every violated field constraint, in declaration order.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest }

// Message is the client-facing text. A single violation is reported with
// its own message; several are folded into one sentence list.
func (e *ValidationError) Message() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Message
	}

	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, strings.TrimSuffix(fe.Message, "."))
	}
	return "Invalid input data. " + strings.Join(msgs, ". ") + "."
}

func NewValidationError(field, tag, message string, value any) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Tag: tag, Value: value, Message: message}}}
}

// CastError reports a value that could not be coerced into the type of the
// field it targets, such as a malformed ObjectId.
type CastError struct {
	Path  string `json:"path"`
	Value string `json:"value"`
	Kind  string `json:"kind"`
	Err   error  `json:"-"`
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cast to %s failed for value %q at path %q", e.Kind, e.Value, e.Path)
}

func (e *CastError) Unwrap() error { return e.Err }

func (e *CastError) HTTPStatus() int { return http.StatusBadRequest }

// DuplicateKeyError reports a unique index violation.
type DuplicateKeyError struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Err   error  `json:"-"`
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key on %s: %q", e.Field, e.Value)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

func (e *DuplicateKeyError) HTTPStatus() int { return http.StatusBadRequest }

func statusFor(code int) string {
	if code >= 400 && code < 500 {
		return StatusFail
	}
	return StatusError
}

