package history

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanOverrideChangeCompletion(t *testing.T) {
	assert := assert.New(t)
	h, _ := newTestHistory()

	mustCurrent(t, h).Add(1)
	func() {
		defer h.ContinueCurrentTransaction().End()
		assert.NoError(h.ChangeCompleted())
	}()
	mustCurrent(t, h).Add(2)

	assert.NoError(h.Undo())
	assert.False(h.CanUndo())
}

func TestSuppressedEditsBecomeOneEntry(t *testing.T) {
	assert := assert.New(t)
	h, r := newTestHistory()

	edit := func(v int) {
		mustCurrent(t, h).Add(v)
		assert.NoError(h.ChangeCompleted())
	}

	scope := h.ContinueCurrentTransaction()
	edit(1)
	edit(2)
	scope.End()

	// The deferred close is not replayed.
	assert.Equal(0, h.UndoCount())
	assert.True(h.HasPending())

	assert.NoError(h.ChangeCompleted())
	assert.Equal(1, h.UndoCount())

	assert.NoError(h.Undo())
	assert.Equal([]int{1, 2}, r.last.changes)
}

func TestScopeEndIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	h, _ := newTestHistory()

	outer := h.ContinueCurrentTransaction()
	inner := h.ContinueCurrentTransaction()
	inner.End()
	inner.End()
	assert.True(h.Suppressed())

	outer.End()
	assert.False(h.Suppressed())
}

func TestScopeReleasedOnPanic(t *testing.T) {
	h, _ := newTestHistory()

	assert.Panics(t, func() {
		defer h.ContinueCurrentTransaction().End()
		panic("edit failed")
	})
	assert.False(t, h.Suppressed())
}

func TestUndoInsideSuppressedTransactionFails(t *testing.T) {
	assert := assert.New(t)
	h, r := newTestHistory()

	scope := h.ContinueCurrentTransaction()
	defer scope.End()
	mustCurrent(t, h).Add(1)

	var reentrancy ReentrancyError
	if assert.True(errors.As(h.Undo(), &reentrancy)) {
		assert.True(reentrancy.Suppressed)
	}
	assert.Equal(0, r.calls)
}

func TestTransactionCommitsOnce(t *testing.T) {
	assert := assert.New(t)
	h, _ := newTestHistory()

	err := h.Transaction(func() error {
		for i := 1; i <= 3; i++ {
			mustCurrent(t, h).Add(i)
			if err := h.ChangeCompleted(); err != nil {
				return err
			}
		}
		return nil
	})
	assert.NoError(err)
	assert.Equal(1, h.UndoCount())
	assert.False(h.HasPending())
	assert.False(h.Suppressed())
}

func TestTransactionLeavesFailedEditsOpen(t *testing.T) {
	assert := assert.New(t)
	h, _ := newTestHistory()
	failure := errors.New("bad edit")

	err := h.Transaction(func() error {
		mustCurrent(t, h).Add(1)
		return failure
	})
	assert.ErrorIs(err, failure)
	assert.True(h.HasPending())
	assert.False(h.Suppressed())

	// The partial transaction can still be undone as one step.
	assert.NoError(h.Undo())
	assert.False(h.CanUndo())
}
