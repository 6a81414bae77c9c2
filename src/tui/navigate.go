package tui

import (
	"bytes"
	"fmt"

	"github.com/Zaphoood/hexhist/lib/util"
)

// visibleRows is the number of rows of bytes that fit the window
func (e Editor) visibleRows() int {
	if e.windowHeight == 0 {
		return DEFAULT_ROWS
	}
	return util.Max(1, e.windowHeight-e.cmdLine.GetHeight()-1)
}

func (e *Editor) moveCursor(n int) {
	e.setCursor(e.cursor + n)
}

// setCursor moves the cursor to offset, clamped to the document. Moving
// closes the pending transaction.
func (e *Editor) setCursor(offset int) {
	e.commit()
	e.cursor = util.Max(0, util.Min(offset, e.model.Len()-1))
	e.scrollToCursor()
}

func (e *Editor) scrollToCursor() {
	row := e.cursor / e.cfg.BytesPerRow
	rows := e.visibleRows()
	if row < e.top {
		e.top = row
	} else if row >= e.top+rows {
		e.top = row - rows + 1
	}
}

// handleSearch looks for a byte sequence, given as hex digits or, failing
// that, as text
func (e *Editor) handleSearch(query string, reverse bool) {
	if len(query) == 0 {
		if len(e.search) == 0 {
			return
		}
	} else if needle, err := parseHexBytes(query); err == nil {
		e.search = needle
	} else {
		e.search = []byte(query)
	}
	e.searchForward = !reverse
	if reverse {
		e.findPrevious()
	} else {
		e.findNext()
	}
}

func (e *Editor) nextSearchResult() {
	if e.searchForward {
		e.findNext()
	} else {
		e.findPrevious()
	}
}

func (e *Editor) previousSearchResult() {
	if e.searchForward {
		e.findPrevious()
	} else {
		e.findNext()
	}
}

func (e *Editor) findNext() {
	if len(e.search) == 0 {
		return
	}
	data := e.model.Bytes()
	from := util.Min(e.cursor+1, len(data))
	if i := bytes.Index(data[from:], e.search); i >= 0 {
		e.setCursor(from + i)
		return
	}
	if i := bytes.Index(data, e.search); i >= 0 {
		e.setCursor(i)
		e.cmdLine.SetMessage("Search hit BOTTOM, continuing at TOP")
		return
	}
	e.cmdLine.SetMessage(fmt.Sprintf("Not found: %s", formatBytes(e.search)))
}

func (e *Editor) findPrevious() {
	if len(e.search) == 0 {
		return
	}
	data := e.model.Bytes()
	// Only matches that start before the cursor
	end := util.Min(e.cursor+len(e.search)-1, len(data))
	if i := bytes.LastIndex(data[:end], e.search); i >= 0 {
		e.setCursor(i)
		return
	}
	if i := bytes.LastIndex(data, e.search); i >= 0 {
		e.setCursor(i)
		e.cmdLine.SetMessage("Search hit TOP, continuing at BOTTOM")
		return
	}
	e.cmdLine.SetMessage(fmt.Sprintf("Not found: %s", formatBytes(e.search)))
}
