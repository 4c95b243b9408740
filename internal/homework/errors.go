package homework

import "errors"

var (
	// ErrMalformedResponse means the API answer has an unexpected shape.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrMissingField means a homework record lacks homework_name.
	ErrMissingField = errors.New("missing field")
	// ErrUnknownStatus means a homework record has no status or an unknown one.
	ErrUnknownStatus = errors.New("unknown status")
)
