package service

import "errors"

var (
	// ErrInvalidCredentials covers both unknown-email and wrong-password
	// so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when registering with a taken email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidRegistrationSecret indicates the registration secret is incorrect.
	ErrInvalidRegistrationSecret = errors.New("invalid registration secret")
)

// FieldErrors is a validation failure scoped to individual form fields.
// It is produced before any storage access.
type FieldErrors struct {
	Message string
	Fields  map[string][]string
}

func (e *FieldErrors) Error() string { return e.Message }

func (e *FieldErrors) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *FieldErrors) empty() bool { return len(e.Fields) == 0 }

// StorageError wraps a backend failure. Error() carries only the
// generic user-facing message; the wrapped cause is for logs.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "Database Error: Failed to " + e.Op + "." }

func (e *StorageError) Unwrap() error { return e.Err }
