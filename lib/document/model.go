package document

import (
	"encoding/hex"
	"fmt"
	"sort"

	"golang.org/x/crypto/blake2b"
)

type RangeError struct {
	Offset int
	Length int
}

func (e RangeError) Error() string {
	return fmt.Sprintf("Offset 0x%X is out of range (length 0x%X)", e.Offset, e.Length)
}

type AnchorError struct {
	Name string
	err  error
}

func (e AnchorError) Error() string {
	return fmt.Sprintf("Anchor '%s': %s", e.Name, e.err)
}

// Anchor names a location in the document
type Anchor struct {
	Name   string
	Offset int
}

// Model is the in-memory content of a binary document. It is only changed
// through a Delta so that every edit can be reverted.
type Model struct {
	data    []byte
	anchors map[int]string
}

func NewModel(data []byte) *Model {
	m := &Model{
		data:    make([]byte, len(data)),
		anchors: make(map[int]string),
	}
	copy(m.data, data)
	return m
}

func (m *Model) Len() int {
	return len(m.data)
}

func (m *Model) At(offset int) (byte, error) {
	if err := m.check(offset); err != nil {
		return 0, err
	}
	return m.data[offset], nil
}

// Bytes returns a copy of the document content
func (m *Model) Bytes() []byte {
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

// Slice returns a copy of the bytes in [start, end)
func (m *Model) Slice(start, end int) ([]byte, error) {
	if start < 0 || start > end || end > len(m.data) {
		return nil, RangeError{Offset: end, Length: len(m.data)}
	}
	out := make([]byte, end-start)
	copy(out, m.data[start:end])
	return out, nil
}

func (m *Model) AnchorAt(offset int) (string, bool) {
	name, ok := m.anchors[offset]
	return name, ok
}

func (m *Model) OffsetOf(name string) (int, bool) {
	for offset, n := range m.anchors {
		if n == name {
			return offset, true
		}
	}
	return 0, false
}

// Anchors returns all anchors sorted by offset
func (m *Model) Anchors() []Anchor {
	anchors := make([]Anchor, 0, len(m.anchors))
	for offset, name := range m.anchors {
		anchors = append(anchors, Anchor{Name: name, Offset: offset})
	}
	sort.Slice(anchors, func(i, j int) bool { return anchors[i].Offset < anchors[j].Offset })
	return anchors
}

// Fingerprint returns the hex encoded BLAKE2b-256 hash of the document content
func (m *Model) Fingerprint() string {
	sum := blake2b.Sum256(m.data)
	return hex.EncodeToString(sum[:])
}

// loadAnchors installs anchors read from disk. Loading is not an edit, so it
// bypasses the history.
func (m *Model) loadAnchors(anchors []Anchor) error {
	for _, a := range anchors {
		if err := m.checkAnchor(a.Offset, a.Name); err != nil {
			return err
		}
		m.anchors[a.Offset] = a.Name
	}
	return nil
}

func (m *Model) check(offset int) error {
	if offset < 0 || offset >= len(m.data) {
		return RangeError{Offset: offset, Length: len(m.data)}
	}
	return nil
}

func (m *Model) checkAnchor(offset int, name string) error {
	if err := m.check(offset); err != nil {
		return err
	}
	if len(name) == 0 {
		return AnchorError{name, fmt.Errorf("name must not be empty")}
	}
	if other, ok := m.OffsetOf(name); ok && other != offset {
		return AnchorError{name, fmt.Errorf("already used at 0x%X", other)}
	}
	return nil
}
