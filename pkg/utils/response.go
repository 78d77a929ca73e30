package utils

import "bookstore-api/pkg/errors"

const (
	StatusOK      = "ok"
	StatusSuccess = "success"
)

// Response is the JSON envelope every successful handler writes.
type Response struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// WithStatus overrides the envelope status.
func (r Response) WithStatus(status string) Response {
	r.Status = status
	return r
}

func SuccessResponse(data any) Response {
	return Response{Status: StatusOK, Data: data}
}

func ListResponse(results int, data any) Response {
	return Response{Status: StatusOK, Results: &results, Data: data}
}

func TokenResponse(token string, data any) Response {
	return Response{Status: StatusOK, Token: token, Data: data}
}

func MessageResponse(message string) Response {
	return Response{Status: StatusOK, Message: message}
}

// ErrorResponse is the production error body.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewErrorResponse(appErr *errors.AppError) ErrorResponse {
	return ErrorResponse{Status: appErr.Status, Message: appErr.Message}
}

// DebugErrorResponse is the development error body.
type DebugErrorResponse struct {
	Status  string      `json:"status"`
	Error   DebugDetail `json:"error"`
	Message string      `json:"message"`
	Stack   string      `json:"stack,omitempty"`
}

type DebugDetail struct {
	Type   string `json:"type"`
	Detail any    `json:"detail,omitempty"`
}
