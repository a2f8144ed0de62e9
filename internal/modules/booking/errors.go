package booking

import "errors"

var (
	ErrValidation    = errors.New("validation error")
	ErrUnknownAction = errors.New("unknown booking action")
	ErrForbidden     = errors.New("caller does not own this booking")
	ErrBusinessRule  = errors.New("cannot complete booking before service time has passed")
	ErrNotFound      = errors.New("booking not found")
	ErrConflict      = errors.New("booking state changed concurrently")
)
