package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrInvalidDateRange  = errors.New("check-out date must be after check-in date")
	ErrRoomNotAvailable  = errors.New("room not available")
	ErrNotFound          = errors.New("not found")
	ErrNotEditable       = errors.New("reservation cannot be edited in its current status")
	ErrInvalidState      = errors.New("invalid status transition")
	ErrEmptyGroup        = errors.New("group booking requires at least one room")
	ErrStoreFailure      = errors.New("store failure")
	ErrAvailabilityCheck = errors.New("availability check failed")
	ErrDuplicate         = errors.New("duplicate key")
)

// RoomUnavailableError names the room that blocked a booking.
type RoomUnavailableError struct{ RoomID string }

func (e *RoomUnavailableError) Error() string {
	return fmt.Sprintf("room %s is not available for the selected dates", e.RoomID)
}

func (e *RoomUnavailableError) Is(target error) bool { return target == ErrRoomNotAvailable }

// StoreError wraps a persistence failure with the operation that hit it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	if target == ErrStoreFailure {
		return true
	}
	return target == ErrAvailabilityCheck && e.Op == OpAvailabilityCheck
}

const OpAvailabilityCheck = "availability check"

// WrapStore turns an adapter error into a StoreError unless it already
// carries domain meaning (not found, duplicate).
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
