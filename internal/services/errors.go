package services

import "errors"

type ErrorCode string

const (
	ErrorInvalid  ErrorCode = "invalid"
	ErrorNotFound ErrorCode = "not_found"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error  { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewNotFoundError(msg string) error { return &ServiceError{Code: ErrorNotFound, Message: msg} }

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// ErrNoCorrectOptions is returned by SelectDisplayedOptions when a
// question claims correct answers but none of them resolve to a real
// option. It signals data corruption and must never be swallowed: an
// unanswerable question presented silently is worse than a hard error.
// Check with errors.Is(err, services.ErrNoCorrectOptions).
var ErrNoCorrectOptions = errors.New("question has no resolvable correct options")
