package document

import "sort"

type byteChange struct {
	old byte
	new byte
}

type anchorChange struct {
	old    string
	hadOld bool
	new    string
	hasNew bool
}

// Delta records the edits of one transaction against a Model. Edits are
// applied to the model as they are recorded.
type Delta struct {
	data     map[int]byteChange
	anchors  map[int]anchorChange
	observed int

	notify   func()
	notified bool
}

func NewDelta() *Delta {
	return &Delta{
		data:    make(map[int]byteChange),
		anchors: make(map[int]anchorChange),
	}
}

func (d *Delta) HasDataChange() bool {
	return len(d.data) > 0 || len(d.anchors) > 0
}

func (d *Delta) HasAnyChange() bool {
	return d.HasDataChange() || d.observed > 0
}

// OnNewDataChange registers fn to be called once, when the first data change
// is recorded
func (d *Delta) OnNewDataChange(fn func()) {
	d.notify = fn
}

// ChangeData writes value at offset. Writing the value that is already there
// is recorded as an observation only. Returns whether the model changed.
func (d *Delta) ChangeData(m *Model, offset int, value byte) (bool, error) {
	old, err := m.At(offset)
	if err != nil {
		return false, err
	}
	if old == value {
		d.observed++
		return false, nil
	}
	if c, ok := d.data[offset]; ok && c.old == value {
		// Back to where the transaction started
		delete(d.data, offset)
		d.observed++
	} else if ok {
		c.new = value
		d.data[offset] = c
	} else {
		d.data[offset] = byteChange{old: old, new: value}
	}
	m.data[offset] = value
	d.dataChanged()
	return true, nil
}

// SetAnchor names offset, replacing any anchor already there
func (d *Delta) SetAnchor(m *Model, offset int, name string) error {
	if err := m.checkAnchor(offset, name); err != nil {
		return err
	}
	old, hadOld := m.anchors[offset]
	if hadOld && old == name {
		d.observed++
		return nil
	}
	d.recordAnchor(offset, old, hadOld, name, true)
	m.anchors[offset] = name
	d.dataChanged()
	return nil
}

// RemoveAnchor removes the anchor at offset. Returns false if there was none.
func (d *Delta) RemoveAnchor(m *Model, offset int) (bool, error) {
	if err := m.check(offset); err != nil {
		return false, err
	}
	old, hadOld := m.anchors[offset]
	if !hadOld {
		d.observed++
		return false, nil
	}
	d.recordAnchor(offset, old, true, "", false)
	delete(m.anchors, offset)
	d.dataChanged()
	return true, nil
}

// Observe records a touch that does not change the document, such as
// re-applying a value that is already present
func (d *Delta) Observe() {
	d.observed++
}

// Offsets returns the changed byte offsets in ascending order
func (d *Delta) Offsets() []int {
	offsets := make([]int, 0, len(d.data))
	for offset := range d.data {
		offsets = append(offsets, offset)
	}
	sort.Ints(offsets)
	return offsets
}

// Change returns the old and new value recorded for offset
func (d *Delta) Change(offset int) (before, after byte, ok bool) {
	c, ok := d.data[offset]
	return c.old, c.new, ok
}

func (d *Delta) recordAnchor(offset int, old string, hadOld bool, name string, hasNew bool) {
	if c, ok := d.anchors[offset]; ok {
		if c.hadOld == hasNew && c.old == name {
			delete(d.anchors, offset)
			d.observed++
			return
		}
		c.new, c.hasNew = name, hasNew
		d.anchors[offset] = c
		return
	}
	d.anchors[offset] = anchorChange{old: old, hadOld: hadOld, new: name, hasNew: hasNew}
}

func (d *Delta) dataChanged() {
	if d.notified {
		return
	}
	d.notified = true
	if d.notify != nil {
		d.notify()
	}
}
