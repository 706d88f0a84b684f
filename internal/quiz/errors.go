package quiz

import "errors"

// Error classes. Specific errors below wrap one of these; use errors.Is.
var (
	// ErrPrecondition marks caller bugs: starting without words, finalizing too early or twice.
	ErrPrecondition = errors.New("precondition violated")
	// ErrRejected marks recoverable user input problems; the session is unchanged.
	ErrRejected = errors.New("input rejected")
	// ErrStorage marks a failed durable write; the caller may retry.
	ErrStorage = errors.New("storage failure")
)

// Specific errors returned by Session and Engine.
var (
	ErrNoWords         = wrap(ErrPrecondition, "session needs at least one word")
	ErrNotFinished     = wrap(ErrPrecondition, "session is not finished")
	ErrAlreadyRecorded = wrap(ErrPrecondition, "session already recorded")
	ErrEmptyAnswer     = wrap(ErrRejected, "answer is empty")
	ErrSessionFinished = wrap(ErrRejected, "session is finished")
)

type classError struct {
	class error
	msg   string
}

func (e *classError) Error() string { return e.msg }

func (e *classError) Unwrap() error { return e.class }

func wrap(class error, msg string) error {
	return &classError{class: class, msg: msg}
}
