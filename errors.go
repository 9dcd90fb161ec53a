package netsniff

import "github.com/pkg/errors"

// CaptureError wraps a failure raised by the capture provider. Run and
// RunWithInterval return one when the capture handle cannot be opened,
// after moving the lifecycle to Error. During a run the Capture stage logs
// transient capture errors and continues; a closed handle moves the
// lifecycle to Error, which the caller sees through GetStatus.
type CaptureError struct {
	msg string
	err error
}

// NewCaptureError builds a CaptureError wrapping err with additional
// context.
func NewCaptureError(err error, format string, args ...interface{}) *CaptureError {
	return &CaptureError{msg: errors.Wrapf(err, format, args...).Error(), err: err}
}

func (e *CaptureError) Error() string { return e.msg }
func (e *CaptureError) Unwrap() error { return e.err }

// UserError reports that the caller violated a Facade precondition (no
// device attached, no report file set, missing interval). Returned
// synchronously; the Facade's state is left unchanged.
type UserError struct {
	msg string
}

func newUserError(format string, args ...interface{}) *UserError {
	return &UserError{msg: errors.Errorf(format, args...).Error()}
}

func (e *UserError) Error() string { return e.msg }

// UserWarning reports that the caller issued a command invalid in the
// Facade's current lifecycle state (e.g. pause from Stop). Returned
// synchronously; the Facade's state is left unchanged.
type UserWarning struct {
	msg string
}

func newUserWarning(format string, args ...interface{}) *UserWarning {
	return &UserWarning{msg: errors.Errorf(format, args...).Error()}
}

func (e *UserWarning) Error() string { return e.msg }
