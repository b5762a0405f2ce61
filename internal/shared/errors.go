package shared

import "errors"

var (
	// ErrNotFound indicates a resource that is absent or not owned by the
	// caller. The two cases are deliberately indistinguishable so the
	// existence of other users' resources is never leaked.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. Unknown login, wrong
	// password and missing API capability all collapse into this error.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput indicates a missing or malformed request field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidReference indicates a reference to a resource the caller does
	// not own or that does not exist.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrDuplicate indicates a uniqueness constraint violation.
	ErrDuplicate = errors.New("duplicate entry")
)
