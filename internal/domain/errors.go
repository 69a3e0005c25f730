package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateLogin is returned when registering a login that already exists.
	ErrDuplicateLogin = errors.New("login already exists")
	// ErrAuthentication covers both unknown logins and wrong passwords.
	ErrAuthentication = errors.New("wrong login or password")
	// ErrUserNotFound is returned when an operation names a login that is not stored.
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionUsed is returned when a quiz session is run a second time.
	ErrSessionUsed = errors.New("quiz session already completed")
)

// ValidationError reports malformed input data, such as a broken question bank.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// InputRangeError reports a quiz selection outside the bank.
type InputRangeError struct {
	Index int
	Max   int
}

func (e *InputRangeError) Error() string {
	return fmt.Sprintf("quiz index %d out of range [1, %d]", e.Index, e.Max)
}

// PersistenceError wraps a failure to read or write the user store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
