package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Zaphoood/hexhist/lib/document"
	"github.com/Zaphoood/hexhist/src/config"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.Logger = zerolog.Nop()
	os.Exit(m.Run())
}

func newTestEditor(t *testing.T, content []byte) Editor {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rom.bin")
	require.Nil(t, os.WriteFile(path, content, 0o644))
	f := document.NewFile(path)
	require.Nil(t, f.Load())
	cfg := config.Default()
	cfg.BytesPerRow = 4
	return NewEditor(&f, cfg, 80, 24)
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+z":
		return tea.KeyMsg{Type: tea.KeyCtrlZ}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+y":
		return tea.KeyMsg{Type: tea.KeyCtrlY}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func update(e Editor, msg tea.Msg) (Editor, tea.Cmd) {
	model, cmd := e.Update(msg)
	return model.(Editor), cmd
}

func press(e Editor, keys ...string) Editor {
	for _, key := range keys {
		e, _ = update(e, keyMsg(key))
	}
	return e
}

// runCommand enters a command line input like ":w" or "/11" and returns the
// command produced by handling it
func runCommand(t *testing.T, e Editor, input string) (Editor, tea.Cmd) {
	t.Helper()
	e = press(e, input[:1])
	require.True(t, e.cmdLine.Focused())
	if len(input) > 1 {
		e = press(e, input[1:])
	}
	e, cmd := update(e, keyMsg("enter"))
	require.False(t, e.cmdLine.Focused())
	if cmd == nil {
		return e, nil
	}
	return update(e, cmd())
}

func TestTypeByteIsOneTransaction(t *testing.T) {
	assert := assert.New(t)
	e := newTestEditor(t, make([]byte, 4))

	e = press(e, "a")
	assert.Equal([]byte{0xA0, 0, 0, 0}, e.model.Bytes())
	assert.Equal(0, e.cursor)
	e = press(e, "b")
	assert.Equal([]byte{0xAB, 0, 0, 0}, e.model.Bytes())
	assert.Equal(1, e.cursor)
	assert.Equal(1, e.history.UndoCount())
	assert.True(e.state.canUndo)

	e = press(e, "u")
	assert.Equal(make([]byte, 4), e.model.Bytes())
	assert.True(e.state.canRedo)
	assert.False(e.state.canUndo)

	e = press(e, "ctrl+r")
	assert.Equal([]byte{0xAB, 0, 0, 0}, e.model.Bytes())
	assert.False(e.state.canRedo)
}

func TestUndoHalfTypedByte(t *testing.T) {
	assert := assert.New(t)
	e := newTestEditor(t, []byte{0x12, 0x34})

	e = press(e, "c")
	assert.Equal([]byte{0xC2, 0x34}, e.model.Bytes())
	assert.Equal(0, e.history.UndoCount())
	assert.True(e.history.CanUndo())

	e = press(e, "ctrl+z")
	assert.Equal([]byte{0x12, 0x34}, e.model.Bytes())
	assert.Equal(1, e.history.RedoCount())
	assert.False(e.lowNibble)
}

func TestMovingCursorClosesTransaction(t *testing.T) {
	assert := assert.New(t)
	e := newTestEditor(t, make([]byte, 8))

	e = press(e, "5", "l", "7", "j")
	assert.Equal([]byte{0x50, 0x70, 0, 0, 0, 0, 0, 0}, e.model.Bytes())
	assert.Equal(2, e.history.UndoCount())
	assert.Equal(5, e.cursor)

	e = press(e, "u", "u")
	assert.Equal(make([]byte, 8), e.model.Bytes())
}

func TestNewEditAfterUndoDisablesRedo(t *testing.T) {
	e := newTestEditor(t, make([]byte, 4))
	e = press(e, "1", "1", "u")
	assert.True(t, e.state.canRedo)
	e = press(e, "2")
	assert.False(t, e.state.canRedo)
	e = press(e, "ctrl+y")
	assert.Equal(t, "Already at newest change", e.cmdLine.message)
}

func TestCursorIsClamped(t *testing.T) {
	e := newTestEditor(t, make([]byte, 6))
	e = press(e, "h", "k")
	assert.Equal(t, 0, e.cursor)
	e = press(e, "G", "j", "l")
	assert.Equal(t, 5, e.cursor)
	e = press(e, "g")
	assert.Equal(t, 0, e.cursor)
}

func TestSaveAndQuit(t *testing.T) {
	assert := assert.New(t)
	e := newTestEditor(t, make([]byte, 2))

	e = press(e, "f", "f")
	assert.True(e.dirty())
	assert.Contains(e.View(), "[+]")

	e, cmd := runCommand(t, e, ":q")
	assert.Nil(cmd)
	assert.Contains(e.cmdLine.message, "No write since last change")

	e, cmd = runCommand(t, e, ":w")
	assert.Nil(cmd)
	assert.False(e.dirty())
	assert.NotContains(e.View(), "[+]")
	content, err := os.ReadFile(e.file.Path())
	require.Nil(t, err)
	assert.Equal([]byte{0xFF, 0x00}, content)

	e, cmd = runCommand(t, e, ":q")
	if assert.NotNil(cmd) {
		assert.IsType(clearClipboardAndQuitMsg{}, cmd())
	}

	// Undoing past the save point makes the document dirty again
	e = press(e, "u")
	assert.True(e.dirty())
	_, cmd = runCommand(t, e, ":q!")
	assert.NotNil(cmd)
}

func TestSaveToOtherPath(t *testing.T) {
	e := newTestEditor(t, []byte{1, 2, 3})
	out := filepath.Join(t.TempDir(), "patched.bin.gz")

	e = press(e, "0", "0")
	e, cmd := runCommand(t, e, ":wq "+out)
	assert.NotNil(t, cmd)
	assert.Equal(t, out, e.file.Path())

	saved := document.NewFile(out)
	require.Nil(t, saved.Load())
	assert.Equal(t, []byte{0, 2, 3}, saved.Model().Bytes())
}

func TestFillIsOneUndoStep(t *testing.T) {
	assert := assert.New(t)
	e := newTestEditor(t, make([]byte, 4))

	e, _ = runCommand(t, e, ":fill 0xEE 3")
	assert.Equal([]byte{0xEE, 0xEE, 0xEE, 0}, e.model.Bytes())
	assert.Equal(1, e.history.UndoCount())
	assert.False(e.history.Suppressed())

	e = press(e, "u")
	assert.Equal(make([]byte, 4), e.model.Bytes())

	e, _ = runCommand(t, e, ":fill 0x100")
	assert.Contains(e.cmdLine.message, "does not fit")
	e, _ = runCommand(t, e, ":fill 1 5")
	assert.Contains(e.cmdLine.message, "out of range")
	assert.Equal(make([]byte, 4), e.model.Bytes())
}

func TestFillSelection(t *testing.T) {
	e := newTestEditor(t, make([]byte, 6))
	e = press(e, "l", "v", "l", "l")
	start, end := e.selection()
	assert.Equal(t, 1, start)
	assert.Equal(t, 4, end)

	e, _ = runCommand(t, e, ":fill 7")
	assert.Equal(t, []byte{0, 7, 7, 7, 0, 0}, e.model.Bytes())
	assert.False(t, e.visual)
}

func TestAnchorsAndGoto(t *testing.T) {
	assert := assert.New(t)
	e := newTestEditor(t, make([]byte, 16))

	e, _ = runCommand(t, e, ":goto cursor + 0x4")
	assert.Equal(4, e.cursor)
	e, _ = runCommand(t, e, ":anchor header")
	name, ok := e.model.AnchorAt(4)
	assert.True(ok)
	assert.Equal("header", name)
	assert.Equal(1, e.history.UndoCount())

	e = press(e, "g")
	e, _ = runCommand(t, e, ":goto header + 2")
	assert.Equal(6, e.cursor)
	e, _ = runCommand(t, e, ":goto size")
	assert.Contains(e.cmdLine.message, "out of range")
	assert.Equal(6, e.cursor)

	e, _ = runCommand(t, e, ":unanchor")
	assert.Equal("No anchor at cursor", e.cmdLine.message)
	e, _ = runCommand(t, e, ":goto 4")
	e, _ = runCommand(t, e, ":unanchor")
	_, ok = e.model.AnchorAt(4)
	assert.False(ok)

	e = press(e, "u")
	_, ok = e.model.AnchorAt(4)
	assert.True(ok)
}

func TestSearch(t *testing.T) {
	assert := assert.New(t)
	e := newTestEditor(t, []byte("xABxxABx"))

	e, _ = runCommand(t, e, "/4142")
	assert.Equal(1, e.cursor)
	e = press(e, "n")
	assert.Equal(5, e.cursor)
	e = press(e, "n")
	assert.Equal(1, e.cursor)
	assert.Contains(e.cmdLine.message, "continuing at TOP")
	e = press(e, "N")
	assert.Equal(5, e.cursor)

	e, _ = runCommand(t, e, "?4142")
	assert.Equal(1, e.cursor)

	e, _ = runCommand(t, e, "/zz")
	assert.Contains(e.cmdLine.message, "Not found")
	assert.Equal(1, e.cursor)
}

func TestLuaCommand(t *testing.T) {
	assert := assert.New(t)
	e := newTestEditor(t, make([]byte, 4))
	path := filepath.Join(t.TempDir(), "patch.lua")
	require.Nil(t, os.WriteFile(path, []byte("for i = 0, 3 do poke(i, 0x20 + i) end"), 0o644))

	e, _ = runCommand(t, e, ":lua "+path)
	assert.Equal([]byte{0x20, 0x21, 0x22, 0x23}, e.model.Bytes())
	assert.Equal(1, e.history.UndoCount())

	require.Nil(t, os.WriteFile(path, []byte("poke(0, 1)\nerror('boom')"), 0o644))
	e, _ = runCommand(t, e, ":lua "+path)
	assert.Contains(e.cmdLine.message, "boom")
	assert.Equal(byte(1), e.model.Bytes()[0])

	e = press(e, "u")
	assert.Equal([]byte{0x20, 0x21, 0x22, 0x23}, e.model.Bytes())
}

func TestUnknownCommand(t *testing.T) {
	e := newTestEditor(t, make([]byte, 1))
	e, cmd := runCommand(t, e, ":frobnicate")
	assert.Nil(t, cmd)
	assert.Equal(t, "Not a command: frobnicate", e.cmdLine.message)
}

func TestView(t *testing.T) {
	e := newTestEditor(t, []byte("Hi!\x00\x01"))
	view := e.View()
	assert.Contains(t, view, "00000000")
	assert.Contains(t, view, "00000004")
	assert.Contains(t, view, "21")
	assert.Contains(t, view, "undo 0")
	assert.Contains(t, view, e.model.Fingerprint()[:8])
}
