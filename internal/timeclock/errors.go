package timeclock

import (
	"errors"
	"fmt"
)

// State conflicts: the operation contradicts the current session state.
// These are rejected without any partial mutation.
var (
	ErrAlreadyClockedIn  = errors.New("already clocked in")
	ErrAlreadyClockedOut = errors.New("already clocked out")
)

// ErrUserExists is returned when creating a user whose name is taken.
var ErrUserExists = errors.New("user already exists")

// ErrEntryNotFound is returned when a history entry id does not exist.
var ErrEntryNotFound = errors.New("history entry not found")

// ValidationError rejects malformed input: bad usernames, unparseable times,
// clock-out before clock-in, clock-out in the future.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsStateConflict reports whether err is a double clock-in or double
// clock-out rejection.
func IsStateConflict(err error) bool {
	return errors.Is(err, ErrAlreadyClockedIn) || errors.Is(err, ErrAlreadyClockedOut)
}
