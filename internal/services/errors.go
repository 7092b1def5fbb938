package services

import "errors"

// Error kinds returned by the service layer. Handlers map these to HTTP
// status codes with errors.Is; the DomainError message is what the client
// sees in the response body.
var (
	ErrValidation   = errors.New("validation error")
	ErrInvalidID    = errors.New("invalid identifier")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// DomainError pairs an error kind with a client-facing message.
type DomainError struct {
	Kind    error
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}

func validationError(message string) error {
	return &DomainError{Kind: ErrValidation, Message: message}
}

func invalidIDError(message string) error {
	return &DomainError{Kind: ErrInvalidID, Message: message}
}

func notFoundError(message string) error {
	return &DomainError{Kind: ErrNotFound, Message: message}
}

func unauthorizedError() error {
	return &DomainError{Kind: ErrUnauthorized, Message: "Unauthorized"}
}
