package document

import "github.com/Zaphoood/hexhist/lib/history"

// Revert restores the values d overwrote and returns a Delta describing the
// revert itself. Reverting that Delta re-applies d.
func (m *Model) Revert(d *Delta) (*Delta, error) {
	for offset := range d.data {
		if err := m.check(offset); err != nil {
			return nil, err
		}
	}
	for offset := range d.anchors {
		if err := m.check(offset); err != nil {
			return nil, err
		}
	}

	inverse := NewDelta()
	for offset, c := range d.data {
		inverse.data[offset] = byteChange{old: m.data[offset], new: c.old}
		m.data[offset] = c.old
	}
	for offset, c := range d.anchors {
		current, hasCurrent := m.anchors[offset]
		inverse.anchors[offset] = anchorChange{old: current, hadOld: hasCurrent, new: c.old, hasNew: c.hadOld}
		if c.hadOld {
			m.anchors[offset] = c.old
		} else {
			delete(m.anchors, offset)
		}
	}
	inverse.notified = true
	return inverse, nil
}

// NewHistory returns a change history whose transactions are Deltas against m
func NewHistory(m *Model, opts ...history.Option) *history.History[*Delta] {
	return history.New(m.Revert, NewDelta, opts...)
}
