package service

import (
	"errors"
	"fmt"
)

// ValidationError is raised before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrMissingPredictions marks a primary response without predictions.SMILES.
var ErrMissingPredictions = errors.New("invalid response format: missing predictions.SMILES")

// ShapeError indicates a 2xx response whose body is not the expected shape.
type ShapeError struct {
	Err       error
	RequestID string
}

func (e *ShapeError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("unexpected response: request_id=%s: %v", e.RequestID, e.Err)
	}
	return fmt.Sprintf("unexpected response: %v", e.Err)
}

func (e *ShapeError) Unwrap() error { return e.Err }

// BadRequestError indicates a 4xx request problem (e.g., 400 validation).
type BadRequestError struct{ *APIError }

func (e *BadRequestError) Error() string { return fmt.Sprintf("bad request: %s", e.APIError.Error()) }

// NotFoundError indicates the endpoint does not exist on the target.
type NotFoundError struct{ *APIError }

func (e *NotFoundError) Error() string { return fmt.Sprintf("not found: %s", e.APIError.Error()) }

// ServerError indicates 5xx errors from the service.
type ServerError struct{ *APIError }

func (e *ServerError) Error() string { return fmt.Sprintf("service error: %s", e.APIError.Error()) }

// UnreachableError indicates the service could not be reached at all.
type UnreachableError struct {
	URL string
	Err error
}

func (e *UnreachableError) Error() string {
	if e == nil {
		return "unreachable"
	}
	if e.URL != "" {
		return fmt.Sprintf("service unreachable at %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("service unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// IsValidation reports whether err is an input-validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
