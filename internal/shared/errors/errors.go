package errors

import (
	"fmt"
	"strings"
)

// Error is an error object with underlying error.
type Error struct {
	message []interface{}
	inner   error
}

// Error implements error.Error().
func (err *Error) Error() string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprint(err.message...))

	if err.inner != nil {
		builder.WriteString(" > ")
		builder.WriteString(err.inner.Error())
	}

	return builder.String()
}

// Base sets the underlying error and returns err for chaining.
func (err *Error) Base(e error) *Error {
	err.inner = e
	return err
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (err *Error) Unwrap() error {
	return err.inner
}

// String returns the string representation of this error.
func (err *Error) String() string {
	return err.Error()
}

// NewError returns a new error object with message formed from given arguments.
func NewError(msg ...interface{}) *Error {
	return &Error{
		message: msg,
	}
}
