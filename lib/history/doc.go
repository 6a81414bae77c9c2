// Package history provides a transactional undo/redo engine that is generic
// over the change token type.
//
// Callers never touch the stacks directly. Edits are accumulated into the
// pending transaction returned by CurrentChange and closed with
// ChangeCompleted. Closed transactions that carry a data change are pushed
// onto the undo stack; empty ones are dropped.
//
// # Tokens
//
// A token is anything implementing Token. HasDataChange reports whether the
// token holds an edit worth keeping in history, HasAnyChange whether anything
// was recorded at all. Tokens that also implement DataChangeNotifier let the
// engine react to the first real edit of the pending transaction.
//
// # Reverting
//
// The engine is constructed with a RevertFunc that maps a token to its
// inverse. Undo reverts the newest transaction and keeps the inverse on the
// redo stack; Redo reverts that inverse again:
//
//	h := history.New(model.Revert, NewDelta)
//
//	delta, _ := h.CurrentChange()
//	delta.ChangeData(model, 0x10, 0xFF)
//	h.ChangeCompleted()
//
//	h.Undo()
//	h.Redo()
//
// A revert function must not call back into the engine. Such calls are
// rejected with ReentrancyError and the outer Undo or Redo fails with it too.
//
// # Suppression
//
// ContinueCurrentTransaction returns a Scope that keeps ChangeCompleted from
// closing the pending transaction until the scope ends:
//
//	func fill(h *history.History[*Delta]) error {
//	    defer h.ContinueCurrentTransaction().End()
//	    // ... edits that call ChangeCompleted internally ...
//	}
//
// The deferred close is not replayed when the scope ends.
//
// # Saved state
//
// TagAsSaved records the depth of the undo stack and IsSaved compares the
// current depth against it. Two histories of the same depth are considered
// equal; content is not compared.
//
// History is not safe for concurrent use.
package history
