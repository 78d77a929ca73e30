package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

const GenericMessage = "Something went wrong!"

// Classify turns any failure into the operational error shown to clients.
// Precedence: validation, cast, duplicate key, operational, unclassified.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}

	var validationErr *ValidationError
	if stderrors.As(err, &validationErr) {
		return NewAppError(validationErr.Message(), http.StatusBadRequest, err)
	}

	var castErr *CastError
	if stderrors.As(err, &castErr) {
		return NewAppError(fmt.Sprintf("Invalid %s: %s.", castErr.Path, castErr.Value), http.StatusBadRequest, err)
	}

	var dupErr *DuplicateKeyError
	if stderrors.As(err, &dupErr) {
		msg := fmt.Sprintf("Duplicate field value: %q. Please use another value!", dupErr.Value)
		return NewAppError(msg, http.StatusBadRequest, err)
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	return NewAppError(GenericMessage, http.StatusInternalServerError, err)
}

// StatusOf reports the status a failure declares for itself, or 500.
func StatusOf(err error) int {
	var withStatus interface{ HTTPStatus() int }
	if stderrors.As(err, &withStatus) {
		return withStatus.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// IsOperational reports whether err was raised on purpose with a client-facing message.
func IsOperational(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}
