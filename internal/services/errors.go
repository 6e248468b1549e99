package services

import (
	"errors"
	"fmt"

	"casasmart/internal/repositories"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrDuplicateProject     = errors.New("a project was already created for this quote")
	ErrWorkAlreadyStarted   = errors.New("work has already started on this project")
	ErrUnauthorized         = errors.New("record does not belong to caller")
	ErrNotFound             = errors.New("not found")
	ErrStorage              = errors.New("storage failure")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrStageFinal           = errors.New("project is already completed or terminated")
	ErrConfirmationRequired = errors.New("completing a handover requires confirmation")
	ErrQuoteExpired         = errors.New("quote has expired")
	ErrRateLimited          = errors.New("too many requests, try again later")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmailTaken           = errors.New("email already registered")
)

// ValidationError reports a bad input field. errors.Is(err, ErrValidation) holds for all of them.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var (
	ErrInvalidAmount  error = &ValidationError{Field: "amount", Msg: "must be a positive number"}
	ErrReasonRequired error = &ValidationError{Field: "reason", Msg: "is required"}
)

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// StorageError wraps a failure of the data-access layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return &StorageError{Op: op, Err: err}
}
