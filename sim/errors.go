package sim

import "errors"

// Contract violations raised by the engine. None of them is transient:
// callers should treat them as defects and never retry.
var (
	// ErrDuplicateID is returned by Scheduler.Register when a process with the
	// same ID is already registered.
	ErrDuplicateID = errors.New("duplicate process id")

	// ErrInvalidState is returned when a process is started twice, resumed
	// before Start or after Done, or resumed with a time earlier than its last event.
	ErrInvalidState = errors.New("invalid process state")

	// ErrEmptyQueuePop is returned when popping from an empty EventQueue.
	// The run loop guards against it; observing it indicates an engine bug.
	ErrEmptyQueuePop = errors.New("pop from empty event queue")
)
