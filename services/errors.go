package services

import "net/http"

// ServiceError is a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string { return e.Message }

func validationError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: msg}
}

func configurationError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Message: msg}
}

// signatureMismatch deliberately carries no detail: the expected digest must
// never reach the caller.
func signatureMismatch() *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: "payment signature verification failed"}
}

func gatewayError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Message: msg}
}
