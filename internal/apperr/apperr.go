package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed request. Message is shown to the caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError is returned both for missing resources and for resources owned by someone else.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// TransactionAbortError wraps a store failure that rolled back a balance mutation.
type TransactionAbortError struct {
	Op  string
	Err error
}

func (e *TransactionAbortError) Error() string {
	return fmt.Sprintf("%s aborted: %v", e.Op, e.Err)
}

func (e *TransactionAbortError) Unwrap() error { return e.Err }

// Aborted wraps err unless it already belongs to the taxonomy.
func Aborted(op string, err error) error {
	if err == nil {
		return nil
	}

	var (
		ve *ValidationError
		nf *NotFoundError
		ta *TransactionAbortError
	)

	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &ta) {
		return err
	}

	return &TransactionAbortError{Op: op, Err: err}
}

// NotificationWriteError never leaves the notification emitter; it exists so the
// failure hook can tell which notification was lost.
type NotificationWriteError struct {
	Type string
	Err  error
}

func (e *NotificationWriteError) Error() string {
	return fmt.Sprintf("writing %s notification: %v", e.Type, e.Err)
}

func (e *NotificationWriteError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
