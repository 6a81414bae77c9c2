package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Zaphoood/hexhist/lib/document"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// pathCompleter cycles through the directory entries matching a partial path.
// A round starts on the first request and lasts until the input is edited.
type pathCompleter struct {
	dir        string
	candidates []string
	current    int
	active     bool
}

// next returns the completed path after moving step candidates forward from
// the current one. The first call of a round returns the first candidate.
// ok is false if nothing matches input.
func (c *pathCompleter) next(input string, step int) (completed string, ok bool, err error) {
	if !c.active {
		if step < 0 {
			return "", false, nil
		}
		candidates, err := completePath(input)
		if err != nil {
			return "", false, err
		}
		if input == "~" {
			input = "~/"
		}
		c.dir = filepath.Dir(input)
		c.candidates = candidates
		c.current = 0
		// A unique match ends the round so the next Tab descends into it
		c.active = len(candidates) > 1
	} else {
		c.current = mod(c.current+step, len(c.candidates))
	}
	if len(c.candidates) == 0 {
		return "", false, nil
	}
	return joinRetainTrailingSep(c.dir, c.candidates[c.current]), true, nil
}

func (c *pathCompleter) reset() {
	c.active = false
	c.candidates = nil
}

// OpenPrompt asks for the path of the document to edit
type OpenPrompt struct {
	input     textinput.Model
	completer pathCompleter
	err       error

	windowWidth  int
	windowHeight int
}

func NewOpenPrompt() OpenPrompt {
	input := textinput.New()
	input.Width = 32
	input.Placeholder = "ROM or binary file"
	input.Focus()
	return OpenPrompt{input: input}
}

func (m OpenPrompt) Init() tea.Cmd {
	return nil
}

func (m OpenPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadFailedMsg:
		m.err = msg.err
		return m, nil
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		return m, globalResizeCmd(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.complete(1)
			return m, nil
		case "shift+tab":
			m.complete(-1)
			return m, nil
		case "enter":
			m.err = nil
			return m, fileSelectedCmd(m.input.Value())
		case "ctrl+u":
			m.input.SetValue("")
			m.completer.reset()
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.completer.reset()
	}
	return m, cmd
}

func (m *OpenPrompt) complete(step int) {
	completed, ok, err := m.completer.next(m.input.Value(), step)
	if err != nil {
		m.err = err
		return
	}
	if ok {
		m.input.SetValue(completed)
		m.input.SetCursor(len(completed))
	}
}

// describePath returns the size of the file at path, or an empty string if
// there is no such file
func describePath(path string) string {
	expanded, err := expand(path)
	if err != nil || len(path) == 0 {
		return ""
	}
	info, err := os.Stat(expanded)
	if err != nil || info.IsDir() {
		return ""
	}
	description := formatSize(info.Size())
	if strings.HasSuffix(path, document.GZIP_SUFFIX) {
		description += ", gzip compressed"
	}
	if _, err := os.Stat(document.AnchorsPath(expanded)); err == nil {
		description += ", with anchors"
	}
	return description
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

func (m OpenPrompt) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("hexhist"))
	b.WriteString("\n\nOpen file:\n\n")
	b.WriteString(m.input.View())
	b.WriteRune('\n')
	if description := describePath(m.input.Value()); len(description) > 0 {
		b.WriteString(offsetStyle.Render(description))
		b.WriteRune('\n')
	}
	if m.err != nil {
		fmt.Fprintf(&b, "\n%s\n", m.err)
	}
	b.WriteString("\n(Tab to complete, Ctrl-c to quit)")

	return centerInWindow(boxStyle.Render(b.String()), m.windowWidth, m.windowHeight)
}
