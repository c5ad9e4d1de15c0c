package errors

import "github.com/pkg/errors"

// ErrorTracer pairs a short classification message with the error that
// caused it, keeping the stack trace from the point the cause was first
// wrapped so logs can show where a failure originated.
type ErrorTracer struct {
	Message string
	Err     error
}

// NewTracer creates an ErrorTracer carrying only a classification
// message; attach the cause with Wrap.
func NewTracer(message string) *ErrorTracer {
	return &ErrorTracer{
		Message: message,
	}
}

// TracerFromError wraps an existing error, reusing its stack trace when
// it already carries one and capturing the current one otherwise.
func TracerFromError(err error) *ErrorTracer {
	tracer := NewTracer(err.Error())
	tracer.Err = err
	if _, ok := err.(StackTracer); !ok {
		tracer.Err = errors.WithStack(err)
	}
	return tracer
}

// StackTracer is satisfied by errors that carry a stack trace.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

// Error implements the error interface, reporting the classification
// message rather than the cause.
func (e *ErrorTracer) Error() string {
	return e.Message
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *ErrorTracer) Unwrap() error {
	return e.Err
}

// Wrap attaches the cause, capturing a stack trace if the cause does
// not already carry one.
func (e *ErrorTracer) Wrap(err error) *ErrorTracer {
	e.Err = err
	if _, ok := err.(StackTracer); !ok {
		e.Err = errors.WithStack(err)
	}
	return e
}

// StackTrace returns the cause's stack trace, or nil when no cause is
// attached.
func (e *ErrorTracer) StackTrace() errors.StackTrace {
	if errWithStack, ok := e.Unwrap().(StackTracer); ok {
		return errWithStack.StackTrace()
	}
	return nil
}
