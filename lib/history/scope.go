package history

// Scope holds a suppression level taken by ContinueCurrentTransaction.
// Usage:
//
//	func batch(h *History[*Delta]) {
//	    defer h.ContinueCurrentTransaction().End()
//	    // ... several edits ...
//	}
type Scope struct {
	release func()
	ended   bool
}

// End releases the scope. Safe to call multiple times; only the first call
// has effect.
func (s *Scope) End() {
	if s.ended {
		return
	}
	s.ended = true
	s.release()
}
