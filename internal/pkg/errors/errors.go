package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrTooMany      = errors.New("too many requests")
	ErrInternal     = errors.New("internal")
)

// messageError attaches a client-facing message to one of the sentinel kinds.
type messageError struct {
	kind error
	msg  string
}

func (e messageError) Error() string {
	return e.msg
}

func (e messageError) Unwrap() error {
	return e.kind
}

func WithMessage(kind error, msg string) error {
	return messageError{kind: kind, msg: msg}
}

// MessageOf returns the client-facing message carried by err, or "" when the
// error carries none.
func MessageOf(err error) string {
	var me messageError
	if errors.As(err, &me) {
		return me.msg
	}
	return ""
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
