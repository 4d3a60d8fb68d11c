package console

import (
	"fmt"

	"github.com/pixil98/go-rotmg/internal/display"
)

// UserError is printed to the operator and the session carries on.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

func userErrorf(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// userError turns a domain error into a sentence for the operator.
func userError(err error) *UserError {
	return &UserError{Message: display.Capitalize(err.Error()) + ".", Err: err}
}
