package errs

import (
	"errors"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrBookUnavailable    = errors.New("book is out of stock")
	ErrAlreadyReturned    = errors.New("record already returned")
	ErrForbidden          = errors.New("record belongs to another user")
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
