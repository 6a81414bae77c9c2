package history

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Token is a record of accumulated edits.
type Token interface {
	// HasDataChange reports whether the token holds an edit that must be
	// kept in history.
	HasDataChange() bool
	// HasAnyChange reports whether anything was recorded, including
	// observations that are not persisted.
	HasAnyChange() bool
}

// DataChangeNotifier is implemented by tokens that can report the moment
// their first data change is recorded.
type DataChangeNotifier interface {
	OnNewDataChange(fn func())
}

// RevertFunc reverts the effects of a token and returns the inverse token,
// i.e. a token describing what was undone. Reverting the inverse must be
// equivalent to re-applying the original.
type RevertFunc[T Token] func(T) (T, error)

// History manages the undo and redo stacks for a single document.
type History[T Token] struct {
	revert   RevertFunc[T]
	newToken func() T

	undoStack []T
	redoStack []T

	// pending is only meaningful while hasPending is set. generation
	// identifies the pending token for DataChangeNotifier callbacks.
	pending    T
	hasPending bool
	generation uint64

	suppress  int
	reverting bool
	violation *ReentrancyError

	savedDepth int

	undo *Command
	redo *Command

	logger zerolog.Logger
}

// New creates a history that uses revert to undo and redo transactions and
// newToken to create a fresh pending transaction.
func New[T Token](revert RevertFunc[T], newToken func() T, opts ...Option) *History[T] {
	cfg := config{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &History[T]{
		revert:   revert,
		newToken: newToken,
		logger:   cfg.logger,
	}
	h.undo = newCommand("undo", h.CanUndo, h.Undo)
	h.redo = newCommand("redo", h.CanRedo, h.Redo)
	return h
}

// UndoCommand returns the undo command.
func (h *History[T]) UndoCommand() *Command {
	return h.undo
}

// RedoCommand returns the redo command.
func (h *History[T]) RedoCommand() *Command {
	return h.redo
}

// CurrentChange returns the pending transaction, creating it if there is
// none. The returned token may be mutated by the caller.
func (h *History[T]) CurrentChange() (T, error) {
	if h.reverting {
		var zero T
		return zero, h.reject("start a transaction")
	}
	if !h.hasPending {
		h.pending = h.newToken()
		h.hasPending = true
		h.generation++
		if n, ok := any(h.pending).(DataChangeNotifier); ok {
			generation := h.generation
			n.OnNewDataChange(func() { h.pendingDataChanged(generation) })
		}
		h.logger.Debug().Uint64("transaction", h.generation).Msg("Transaction opened")
	}
	// The caller may have added data since the last access.
	h.refresh()
	return h.pending, nil
}

// ChangeCompleted closes the pending transaction. Transactions without a
// data change are discarded. While a suppression scope is active the call
// does nothing.
func (h *History[T]) ChangeCompleted() error {
	if h.reverting {
		return h.reject("complete a transaction")
	}
	if h.suppress > 0 || !h.hasPending {
		return nil
	}

	token := h.pending
	h.clearPending()
	if !token.HasDataChange() {
		h.logger.Debug().Uint64("transaction", h.generation).Msg("Empty transaction discarded")
		h.refresh()
		return nil
	}

	h.undoStack = append(h.undoStack, token)
	h.redoStack = nil
	h.logger.Debug().
		Uint64("transaction", h.generation).
		Int("undo_depth", len(h.undoStack)).
		Msg("Transaction committed")
	h.refresh()
	return nil
}

// ContinueCurrentTransaction keeps ChangeCompleted from closing the pending
// transaction until End is called on the returned scope.
func (h *History[T]) ContinueCurrentTransaction() *Scope {
	h.suppress++
	return &Scope{release: func() {
		h.suppress--
	}}
}

// Transaction runs fn inside a suppression scope and closes the pending
// transaction afterwards, so every edit fn makes is undone as one step.
// If fn fails the transaction is left open and the error is returned.
func (h *History[T]) Transaction(fn func() error) error {
	scope := h.ContinueCurrentTransaction()
	err := fn()
	scope.End()
	if err != nil {
		return err
	}
	return h.ChangeCompleted()
}

// CanUndo reports whether there is anything to undo.
func (h *History[T]) CanUndo() bool {
	return (h.hasPending && h.pending.HasDataChange()) || len(h.undoStack) > 0
}

// CanRedo reports whether there is anything to redo.
func (h *History[T]) CanRedo() bool {
	return len(h.redoStack) > 0
}

// Undo reverts the newest transaction. An open transaction with a data
// change counts as the newest one even though it was never completed.
// Undo does nothing when CanUndo is false.
func (h *History[T]) Undo() error {
	if h.reverting {
		return h.reject("undo")
	}
	if h.suppress > 0 && h.hasPending {
		return ReentrancyError{Op: "undo", Suppressed: true}
	}
	if !h.CanUndo() {
		return nil
	}

	var token T
	fromPending := h.hasPending && h.pending.HasDataChange()
	if fromPending {
		token = h.pending
	} else {
		token = h.undoStack[len(h.undoStack)-1]
		h.undoStack = h.undoStack[:len(h.undoStack)-1]
	}

	inverse, err := h.invoke(token)
	if err != nil {
		if !fromPending {
			h.undoStack = append(h.undoStack, token)
		}
		h.refresh()
		return fmt.Errorf("history: undo: %w", err)
	}
	// An empty pending transaction is dropped as well.
	h.clearPending()

	h.redoStack = append(h.redoStack, inverse)
	h.logger.Debug().
		Bool("pending", fromPending).
		Int("undo_depth", len(h.undoStack)).
		Int("redo_depth", len(h.redoStack)).
		Msg("Undo")
	h.refresh()
	return nil
}

// Redo re-applies the most recently undone transaction. Redo does nothing
// when CanRedo is false.
func (h *History[T]) Redo() error {
	if h.reverting {
		return h.reject("redo")
	}
	if !h.CanRedo() {
		return nil
	}

	token := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]

	forward, err := h.invoke(token)
	if err != nil {
		h.redoStack = append(h.redoStack, token)
		h.refresh()
		return fmt.Errorf("history: redo: %w", err)
	}

	h.undoStack = append(h.undoStack, forward)
	h.logger.Debug().
		Int("undo_depth", len(h.undoStack)).
		Int("redo_depth", len(h.redoStack)).
		Msg("Redo")
	h.refresh()
	return nil
}

// TagAsSaved marks the current state as saved.
func (h *History[T]) TagAsSaved() {
	h.savedDepth = len(h.undoStack)
}

// IsSaved reports whether the undo stack is as deep as it was when
// TagAsSaved was last called.
func (h *History[T]) IsSaved() bool {
	return len(h.undoStack) == h.savedDepth
}

// UndoCount returns the number of committed transactions.
func (h *History[T]) UndoCount() int {
	return len(h.undoStack)
}

// RedoCount returns the number of undone transactions available for redo.
func (h *History[T]) RedoCount() int {
	return len(h.redoStack)
}

// HasPending reports whether a transaction is open.
func (h *History[T]) HasPending() bool {
	return h.hasPending
}

// Suppressed reports whether a ContinueCurrentTransaction scope is active.
func (h *History[T]) Suppressed() bool {
	return h.suppress > 0
}

// invoke calls the revert function with the re-entrancy flag set. A call
// rejected while the flag was set fails the whole revert, even if the revert
// function ignored the error it got.
func (h *History[T]) invoke(token T) (T, error) {
	var zero T
	h.reverting = true
	h.violation = nil
	defer func() {
		h.reverting = false
		h.violation = nil
	}()

	result, err := h.revert(token)
	if h.violation != nil {
		return zero, *h.violation
	}
	if err != nil {
		return zero, err
	}
	return result, nil
}

func (h *History[T]) reject(op string) error {
	err := ReentrancyError{Op: op}
	if h.violation == nil {
		h.violation = &err
	}
	h.logger.Warn().Str("op", op).Msg("Rejected call from inside revert")
	return err
}

func (h *History[T]) clearPending() {
	var zero T
	h.pending = zero
	h.hasPending = false
}

// pendingDataChanged runs when the pending token records its first data
// change. A new edit makes the redo stack stale.
func (h *History[T]) pendingDataChanged(generation uint64) {
	if !h.hasPending || generation != h.generation {
		return
	}
	if len(h.redoStack) > 0 {
		h.logger.Debug().Int("redo_depth", len(h.redoStack)).Msg("Redo stack discarded")
		h.redoStack = nil
	}
	h.refresh()
}

func (h *History[T]) refresh() {
	h.undo.publish()
	h.redo.publish()
}
