package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Zaphoood/hexhist/lib/document"
	"github.com/Zaphoood/hexhist/lib/history"
	"github.com/Zaphoood/hexhist/lib/script"
	"github.com/Zaphoood/hexhist/lib/util"
	"github.com/Zaphoood/hexhist/src/config"
	"github.com/Zaphoood/hexhist/src/logging"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

/* Model for viewing and editing the bytes of a document */

const DEFAULT_ROWS = 16

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	offsetStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
	cursorStyle    = lipgloss.NewStyle().Reverse(true).Bold(true)
	selectionStyle = lipgloss.NewStyle().Background(lipgloss.Color("#45475a"))
	anchorStyle    = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("#9dcbf4"))
	statusStyle    = lipgloss.NewStyle().Reverse(true)
	disabledStyle  = lipgloss.NewStyle().Faint(true)
)

// editorState is shared between copies of an Editor, since bubbletea passes
// models by value but history listeners need a stable target.
type editorState struct {
	canUndo bool
	canRedo bool

	// Incremented on every edit, used to cache the fingerprint
	version            int
	fingerprint        string
	fingerprintVersion int
}

type Editor struct {
	file     *document.File
	model    *document.Model
	history  *history.History[*document.Delta]
	state    *editorState
	cfg      config.Config
	cmdLine  CommandLine
	logger   zerolog.Logger
	teardown []func()

	cursor    int
	// Set once the high nibble of the byte under the cursor was typed
	lowNibble bool
	// First visible row
	top       int

	visual      bool
	visualStart int

	search        []byte
	searchForward bool

	windowWidth  int
	windowHeight int
}

func NewEditor(file *document.File, cfg config.Config, windowWidth, windowHeight int) Editor {
	e := Editor{
		file:         file,
		model:        file.Model(),
		state:        &editorState{fingerprintVersion: -1},
		cfg:          cfg,
		cmdLine:      NewCommandLine(),
		logger:       logging.Component("editor").With().Str("file", file.Path()).Logger(),
		windowWidth:  windowWidth,
		windowHeight: windowHeight,
	}
	e.history = document.NewHistory(e.model, history.WithLogger(logging.Component("history")))

	undo, redo, state := e.history.UndoCommand(), e.history.RedoCommand(), e.state
	e.teardown = []func(){
		undo.OnCanExecuteChanged(func() { state.canUndo = undo.CanExecute() }),
		redo.OnCanExecuteChanged(func() { state.canRedo = redo.CanExecute() }),
	}
	e.logger.Info().Int("size", e.model.Len()).Msg("Opened document")
	return e
}

func (e Editor) Init() tea.Cmd {
	return nil
}

// Close detaches the editor from its history
func (e Editor) Close() {
	for _, fn := range e.teardown {
		fn()
	}
}

func (e Editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case clearClipboardMsg:
		clearClipboard()
	case clearClipboardAndQuitMsg:
		clearClipboard()
		return e, tea.Quit
	case commandInputMsg:
		cmd = e.handleCommand(msg.cmd)
		return e, cmd
	case searchInputMsg:
		e.handleSearch(msg.query, msg.reverse)
		return e, nil
	case loadFailedMsg:
		e.cmdLine.SetMessage(fmt.Sprintf("Error while loading: %s", msg.err))
	case setCommandLineMessageMsg:
		e.cmdLine.SetMessage(msg.msg)
	case tea.WindowSizeMsg:
		e.windowWidth = msg.Width
		e.windowHeight = msg.Height
		e.scrollToCursor()
		return e, globalResizeCmd(msg.Width, msg.Height)
	case tea.KeyMsg:
		if e.cmdLine.Focused() {
			// Key events should not be handled by Editor in case the command line is active
			break
		}

		if handled, cmd := e.handleCtrlC(msg); handled {
			return e, cmd
		}
		if handled, cmd := e.handleKeyCmdLineTrigger(msg); handled {
			return e, cmd
		}
		if handled, cmd := e.handleKeyDefault(msg); handled {
			return e, cmd
		}
	}

	if e.cmdLine.Focused() {
		e.cmdLine, cmd = e.cmdLine.Update(msg)
		return e, cmd
	}
	return e, nil
}

func (e *Editor) handleCtrlC(msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		e.cmdLine.SetMessage("Type  :q  and press <Enter> to exit hexhist")
		return true, nil
	}
	return false, nil
}

func (e *Editor) handleKeyCmdLineTrigger(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case PROMPT_COMMAND:
		e.commit()
		return true, e.cmdLine.StartInput(inputCommand, PROMPT_COMMAND)
	case PROMPT_SEARCH:
		e.commit()
		return true, e.cmdLine.StartInput(inputSearch, PROMPT_SEARCH)
	case PROMPT_REV_SEARCH:
		e.commit()
		return true, e.cmdLine.StartInput(inputSearch, PROMPT_REV_SEARCH)
	}
	return false, nil
}

// handleKeyDefault handles key events when the command line is not focused
func (e *Editor) handleKeyDefault(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()
	switch key {
	case "h", "left":
		e.moveCursor(-1)
	case "l", "right":
		e.moveCursor(1)
	case "k", "up":
		e.moveCursor(-e.cfg.BytesPerRow)
	case "j", "down":
		e.moveCursor(e.cfg.BytesPerRow)
	case "ctrl+b", "pgup":
		e.moveCursor(-e.cfg.BytesPerRow * e.visibleRows())
	case "ctrl+f", "pgdown":
		e.moveCursor(e.cfg.BytesPerRow * e.visibleRows())
	case "g", "home":
		e.setCursor(0)
	case "G", "end":
		e.setCursor(e.model.Len() - 1)
	case "u", "ctrl+z":
		e.undo()
	case "ctrl+r", "ctrl+y":
		e.redo()
	case "v":
		e.visual = !e.visual
		e.visualStart = e.cursor
	case "esc":
		e.visual = false
	case "y":
		return true, e.copySelection()
	case "n":
		e.nextSearchResult()
	case "N":
		e.previousSearchResult()
	default:
		if len(key) == 1 {
			if d, ok := hexDigit(key[0]); ok {
				e.report(e.typeNibble(d))
				return true, nil
			}
		}
		return false, nil
	}
	return true, nil
}

// typeNibble overwrites half of the byte under the cursor. Both halves of a
// byte belong to the same transaction, which is closed when the cursor
// moves on.
func (e *Editor) typeNibble(d byte) error {
	if e.model.Len() == 0 {
		return nil
	}
	old, err := e.model.At(e.cursor)
	if err != nil {
		return err
	}
	value := d<<4 | old&0x0F
	if e.lowNibble {
		value = old&0xF0 | d
	}
	delta, err := e.history.CurrentChange()
	if err != nil {
		return err
	}
	if _, err := delta.ChangeData(e.model, e.cursor, value); err != nil {
		return err
	}
	e.state.version++

	if !e.lowNibble {
		e.lowNibble = true
		return nil
	}
	if e.cursor < e.model.Len()-1 {
		e.moveCursor(1)
	} else {
		e.commit()
	}
	return nil
}

// commit closes the pending transaction
func (e *Editor) commit() {
	e.lowNibble = false
	e.report(e.history.ChangeCompleted())
}

func (e *Editor) undo() {
	e.lowNibble = false
	if !e.history.UndoCommand().CanExecute() {
		e.cmdLine.SetMessage("Already at oldest change")
		return
	}
	if e.report(e.history.UndoCommand().Execute()) {
		e.state.version++
		e.cmdLine.SetMessage(fmt.Sprintf("Undo (%d left)", e.history.UndoCount()))
	}
}

func (e *Editor) redo() {
	e.commit()
	if !e.history.RedoCommand().CanExecute() {
		e.cmdLine.SetMessage("Already at newest change")
		return
	}
	if e.report(e.history.RedoCommand().Execute()) {
		e.state.version++
		e.cmdLine.SetMessage(fmt.Sprintf("Redo (%d left)", e.history.RedoCount()))
	}
}

// report shows err in the command line. Returns true if err is nil.
func (e *Editor) report(err error) bool {
	if err == nil {
		return true
	}
	var reentrancy history.ReentrancyError
	if errors.As(err, &reentrancy) {
		e.logger.Warn().Err(err).Msg("History rejected operation")
	} else {
		e.logger.Error().Err(err).Msg("Operation failed")
	}
	e.cmdLine.SetMessage(fmt.Sprintf("Error: %s", err))
	return false
}

// dirty reports whether there are changes that were not saved
func (e Editor) dirty() bool {
	if !e.history.IsSaved() {
		return true
	}
	if e.history.HasPending() {
		delta, err := e.history.CurrentChange()
		return err == nil && delta.HasDataChange()
	}
	return false
}

func (e *Editor) selection() (int, int) {
	if !e.visual {
		return e.cursor, e.cursor + 1
	}
	return util.Min(e.visualStart, e.cursor), util.Max(e.visualStart, e.cursor) + 1
}

func (e *Editor) copySelection() tea.Cmd {
	if e.model.Len() == 0 {
		return nil
	}
	start, end := e.selection()
	e.visual = false
	b, err := e.model.Slice(start, end)
	if !e.report(err) {
		return nil
	}
	return copyToClipboard(formatBytes(b), e.cfg.ClearClipboardDelay)
}

func (e *Editor) handleCommand(cmd []string) tea.Cmd {
	if len(cmd) == 0 {
		return nil
	}
	e.commit()
	switch cmd[0] {
	case "q", "q!":
		return e.handleQuitCmd(cmd)
	case "w":
		return e.handleSaveCmd(cmd, false)
	case "wq", "x":
		return e.handleSaveCmd(cmd, true)
	case "e", "e!":
		return e.handleEditCmd(cmd)
	case "goto", "go":
		e.handleGotoCmd(cmd)
	case "anchor":
		e.handleAnchorCmd(cmd)
	case "unanchor":
		e.handleUnanchorCmd(cmd)
	case "fill":
		e.handleFillCmd(cmd)
	case "lua":
		e.handleLuaCmd(cmd)
	case "undo":
		e.undo()
	case "redo":
		e.redo()
	default:
		e.cmdLine.SetMessage(fmt.Sprintf("Not a command: %s", cmd[0]))
	}
	return nil
}

func (e *Editor) handleQuitCmd(cmd []string) tea.Cmd {
	if len(cmd) > 1 {
		e.cmdLine.SetMessage("Error: Too many arguments")
		return nil
	}
	if cmd[0] != "q!" && e.cfg.ConfirmQuit && e.dirty() {
		e.cmdLine.SetMessage("No write since last change (add ! to override)")
		return nil
	}
	return func() tea.Msg { return clearClipboardAndQuitMsg{} }
}

func (e *Editor) handleSaveCmd(cmd []string, quit bool) tea.Cmd {
	if len(cmd) > 2 {
		e.cmdLine.SetMessage("Error: Too many arguments")
		return nil
	}
	path := ""
	if len(cmd) == 2 {
		path = cmd[1]
	}
	if err := saveToPath(e.file, path); err != nil {
		e.logger.Error().Err(err).Msg("Save failed")
		e.cmdLine.SetMessage(fmt.Sprintf("Error while saving: %s", err))
		return nil
	}
	e.history.TagAsSaved()
	e.logger.Info().Str("path", e.file.Path()).Msg("Saved document")
	e.cmdLine.SetMessage(fmt.Sprintf("Saved to %s", e.file.Path()))
	if quit {
		return func() tea.Msg { return clearClipboardAndQuitMsg{} }
	}
	return nil
}

func (e *Editor) handleEditCmd(cmd []string) tea.Cmd {
	if len(cmd) > 2 {
		e.cmdLine.SetMessage("Error: Too many arguments")
		return nil
	}
	if cmd[0] != "e!" && e.cfg.ConfirmQuit && e.dirty() {
		e.cmdLine.SetMessage("No write since last change (add ! to override)")
		return nil
	}
	path := e.file.Path()
	if len(cmd) == 2 {
		path = cmd[1]
	}
	e.cmdLine.SetMessage("Reloading...")
	return fileSelectedCmd(path)
}

func (e *Editor) handleGotoCmd(cmd []string) {
	if len(cmd) < 2 {
		e.cmdLine.SetMessage("Usage: :goto <address>")
		return
	}
	offset, err := evalAddress(strings.Join(cmd[1:], " "), e.cursor, e.model)
	if !e.report(err) {
		return
	}
	e.setCursor(offset)
}

func (e *Editor) handleAnchorCmd(cmd []string) {
	if len(cmd) != 2 {
		e.cmdLine.SetMessage("Usage: :anchor <name>")
		return
	}
	delta, err := e.history.CurrentChange()
	if !e.report(err) {
		return
	}
	if !e.report(delta.SetAnchor(e.model, e.cursor, cmd[1])) {
		return
	}
	if e.report(e.history.ChangeCompleted()) {
		e.state.version++
		e.cmdLine.SetMessage(fmt.Sprintf("Anchor '%s' at 0x%X", cmd[1], e.cursor))
	}
}

func (e *Editor) handleUnanchorCmd(cmd []string) {
	if len(cmd) != 1 {
		e.cmdLine.SetMessage("Error: Too many arguments")
		return
	}
	delta, err := e.history.CurrentChange()
	if !e.report(err) {
		return
	}
	removed, err := delta.RemoveAnchor(e.model, e.cursor)
	if !e.report(err) {
		return
	}
	if !removed {
		e.cmdLine.SetMessage("No anchor at cursor")
	}
	if e.report(e.history.ChangeCompleted()) && removed {
		e.state.version++
		e.cmdLine.SetMessage(fmt.Sprintf("Removed anchor at 0x%X", e.cursor))
	}
}

// handleFillCmd writes value to count bytes starting at the selection or
// cursor. All writes are undone in one step.
func (e *Editor) handleFillCmd(cmd []string) {
	if len(cmd) < 2 || len(cmd) > 3 {
		e.cmdLine.SetMessage("Usage: :fill <value> [count]")
		return
	}
	value, err := util.ParseOffset(cmd[1])
	if err == nil && value > 0xFF {
		err = fmt.Errorf("Value 0x%X does not fit in a byte", value)
	}
	if !e.report(err) {
		return
	}
	start, end := e.selection()
	count := end - start
	if len(cmd) == 3 {
		count, err = util.ParseOffset(cmd[2])
		if !e.report(err) {
			return
		}
	}
	if start+count > e.model.Len() {
		e.report(document.RangeError{Offset: start + count - 1, Length: e.model.Len()})
		return
	}

	err = e.history.Transaction(func() error {
		for i := start; i < start+count; i++ {
			delta, err := e.history.CurrentChange()
			if err != nil {
				return err
			}
			if _, err := delta.ChangeData(e.model, i, byte(value)); err != nil {
				return err
			}
			if err := e.history.ChangeCompleted(); err != nil {
				return err
			}
		}
		return nil
	})
	e.visual = false
	e.state.version++
	if e.report(err) {
		e.cmdLine.SetMessage(fmt.Sprintf("Filled %d bytes with 0x%02X", count, value))
	}
}

func (e *Editor) handleLuaCmd(cmd []string) {
	if len(cmd) != 2 {
		e.cmdLine.SetMessage("Usage: :lua <file>")
		return
	}
	path, err := expand(cmd[1])
	if !e.report(err) {
		return
	}
	err = script.RunFile(e.history, e.model, path)
	e.state.version++
	var scriptErr script.ScriptError
	if errors.As(err, &scriptErr) && e.history.HasPending() {
		e.report(err)
		e.cmdLine.SetMessage(fmt.Sprintf("%s (press u to revert partial edits)", err))
		return
	}
	if e.report(err) {
		e.cmdLine.SetMessage(fmt.Sprintf("Ran %s", cmd[1]))
	}
}

func (e *Editor) fingerprint() string {
	if e.state.fingerprintVersion != e.state.version {
		e.state.fingerprint = e.model.Fingerprint()
		e.state.fingerprintVersion = e.state.version
	}
	return e.state.fingerprint
}

func (e Editor) View() string {
	var builder strings.Builder
	start, end := e.selection()
	rows := e.visibleRows()
	for row := e.top; row < e.top+rows; row++ {
		offset := row * e.cfg.BytesPerRow
		if offset >= e.model.Len() && !(offset == 0 && row == e.top) {
			break
		}
		builder.WriteString(e.viewRow(offset, start, end))
		builder.WriteRune('\n')
	}
	return lipgloss.JoinVertical(lipgloss.Left, builder.String(), e.viewStatus(), e.cmdLine.View())
}

func (e Editor) viewRow(offset, selStart, selEnd int) string {
	var hex, ascii strings.Builder
	for i := offset; i < offset+e.cfg.BytesPerRow; i++ {
		if i > offset {
			hex.WriteRune(' ')
		}
		if i >= e.model.Len() {
			hex.WriteString("  ")
			continue
		}
		b, _ := e.model.At(i)
		cell := fmt.Sprintf("%02X", b)
		char := string(printable(b))
		switch {
		case i == e.cursor:
			cell, char = cursorStyle.Render(cell), cursorStyle.Render(char)
		case e.visual && i >= selStart && i < selEnd:
			cell, char = selectionStyle.Render(cell), selectionStyle.Render(char)
		default:
			if _, ok := e.model.AnchorAt(i); ok {
				cell = anchorStyle.Render(cell)
			}
		}
		hex.WriteString(cell)
		ascii.WriteString(char)
	}
	return fmt.Sprintf("%s  %s  %s", offsetStyle.Render(fmt.Sprintf("%08X", offset)), hex.String(), ascii.String())
}

func (e Editor) viewStatus() string {
	modified := ""
	if e.dirty() {
		modified = " [+]"
	}
	undoLabel := fmt.Sprintf("undo %d", e.history.UndoCount())
	if !e.state.canUndo {
		undoLabel = disabledStyle.Render(undoLabel)
	}
	redoLabel := fmt.Sprintf("redo %d", e.history.RedoCount())
	if !e.state.canRedo {
		redoLabel = disabledStyle.Render(redoLabel)
	}
	anchor := ""
	if name, ok := e.model.AnchorAt(e.cursor); ok {
		anchor = fmt.Sprintf("  @%s", name)
	}
	mode := ""
	if e.visual {
		mode = "  -- VISUAL --"
	}
	status := fmt.Sprintf(" %s%s  0x%06X/0x%06X%s  %s  %s  %s%s ",
		e.file.Path(), modified, e.cursor, e.model.Len(), anchor,
		undoLabel, redoLabel, e.fingerprint()[:8], mode)
	return statusStyle.Render(status)
}
