package schedule

import (
	"errors"
	"fmt"
)

// Error codes for scheduling outcomes. Conflict-class codes are business
// outcomes the caller must answer with an availability refresh; the rest
// indicate caller bugs or store failures.
const (
	CodeInvalidInput           = "invalidInput"
	CodeSlotCreationFailed     = "slotCreationFailed"
	CodeSlotConflict           = "slotConflict"
	CodeInvalidState           = "invalidState"
	CodeCannotDeleteBookedSlot = "cannotDeleteBookedSlot"
	CodeNotFound               = "notFound"
)

type ScheduleError struct {
	Code    string
	Message string
}

func (e *ScheduleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewScheduleError(code, msg string) error {
	return &ScheduleError{Code: code, Message: msg}
}

func NewInvalidInputError(format string, args ...interface{}) error {
	return NewScheduleError(CodeInvalidInput, fmt.Sprintf(format, args...))
}

// HasCode reports whether err is a ScheduleError with the given code.
func HasCode(err error, code string) bool {
	var se *ScheduleError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
