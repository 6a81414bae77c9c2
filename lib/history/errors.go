package history

import "fmt"

// ReentrancyError is returned when the engine is used from inside its own
// revert function, or when an undo is attempted while a suppressed
// transaction is still open.
type ReentrancyError struct {
	// Op names the rejected operation, e.g. "undo" or "complete a transaction".
	Op string
	// Suppressed is set when the operation was rejected because a
	// ContinueCurrentTransaction scope holds an open transaction.
	Suppressed bool
}

func (e ReentrancyError) Error() string {
	if e.Suppressed {
		return fmt.Sprintf("cannot %s while a suppressed transaction is open", e.Op)
	}
	return fmt.Sprintf("cannot %s while a revert is in progress", e.Op)
}
