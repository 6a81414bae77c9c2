package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const DEFAULT_MESSAGE = "Ready."

const (
	PROMPT_COMMAND      = ":"
	PROMPT_SEARCH       = "/"
	PROMPT_REV_SEARCH   = "?"
	COMMAND_HISTORY_LEN = 50
)

type inputMode int

const (
	inputNone inputMode = iota
	inputCommand
	inputSearch
)

type CommandLine struct {
	input     textinput.Model
	inputMode inputMode
	prompt    string
	message   string

	// Previously entered commands, most recent last
	history      []string
	historyIndex int
}

func NewCommandLine() CommandLine {
	input := textinput.New()
	input.Prompt = ""
	return CommandLine{
		input:     input,
		inputMode: inputNone,
		message:   DEFAULT_MESSAGE,
	}
}

func (c CommandLine) Init() tea.Cmd {
	return nil
}

// StartInput focuses the command line and prefills it with prompt
func (c *CommandLine) StartInput(mode inputMode, prompt string) tea.Cmd {
	c.inputMode = mode
	c.prompt = prompt
	c.historyIndex = len(c.history)
	c.resetPrompt()
	return c.input.Focus()
}

func (c CommandLine) Update(msg tea.Msg) (CommandLine, tea.Cmd) {
	var cmd tea.Cmd
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || c.inputMode == inputNone {
		return c, nil
	}

	switch keyMsg.String() {
	case "esc", "ctrl+c":
		c.endInputMode()
		return c, nil
	case "enter":
		return c, c.onEnter()
	case "up":
		c.recall(-1)
		return c, nil
	case "down":
		c.recall(1)
		return c, nil
	}

	c.input, cmd = c.input.Update(msg)

	switch keyMsg.String() {
	case "backspace":
		if len(c.input.Value()) == 0 {
			c.endInputMode()
			return c, nil
		}
	case "ctrl+w":
		if len(c.input.Value()) == 0 {
			c.resetPrompt()
			return c, nil
		}
	}

	return c, cmd
}

func (c *CommandLine) resetPrompt() {
	c.input.SetValue(c.prompt)
	c.input.SetCursor(len(c.prompt))
}

// recall replaces the input with an entry from the command history
func (c *CommandLine) recall(step int) {
	if c.inputMode != inputCommand || len(c.history) == 0 {
		return
	}
	c.historyIndex += step
	if c.historyIndex < 0 {
		c.historyIndex = 0
	}
	if c.historyIndex >= len(c.history) {
		c.historyIndex = len(c.history)
		c.resetPrompt()
		return
	}
	c.input.SetValue(c.history[c.historyIndex])
	c.input.SetCursor(len(c.input.Value()))
}

func (c *CommandLine) remember(input string) {
	if len(c.history) > 0 && c.history[len(c.history)-1] == input {
		return
	}
	c.history = append(c.history, input)
	if len(c.history) > COMMAND_HISTORY_LEN {
		c.history = c.history[1:]
	}
}

func (c *CommandLine) onEnter() tea.Cmd {
	value := c.input.Value()
	mode := c.inputMode
	prompt := c.prompt
	c.endInputMode()

	switch mode {
	case inputCommand:
		cmd, err := parseInputAsCommand(value)
		if err != nil {
			c.message = err.Error()
			return nil
		}
		if len(cmd) == 0 {
			return nil
		}
		c.remember(value)
		return func() tea.Msg { return commandInputMsg{cmd} }
	case inputSearch:
		query, err := parseInputAsSearch(value, prompt)
		if err != nil {
			c.message = err.Error()
			return nil
		}
		return func() tea.Msg { return searchInputMsg{query, prompt == PROMPT_REV_SEARCH} }
	}
	return nil
}

func parseInputAsCommand(input string) ([]string, error) {
	if !strings.HasPrefix(input, PROMPT_COMMAND) {
		return nil, fmt.Errorf("Commands must start with '%s', got '%s'", PROMPT_COMMAND, input)
	}
	return strings.Fields(input[len(PROMPT_COMMAND):]), nil
}

func parseInputAsSearch(input, prompt string) (string, error) {
	if !strings.HasPrefix(input, prompt) {
		return "", fmt.Errorf("Search must start with '%s', got '%s'", prompt, input)
	}
	return input[len(prompt):], nil
}

func (c *CommandLine) endInputMode() {
	c.inputMode = inputNone
	c.input.Blur()
	c.message = DEFAULT_MESSAGE
}

func (c CommandLine) View() string {
	switch c.inputMode {
	case inputNone:
		return c.message
	case inputCommand, inputSearch:
		return c.input.View()
	default:
		panic(fmt.Sprintf("ERROR: Invalid input mode %d", c.inputMode))
	}
}

func (c *CommandLine) SetMessage(msg string) {
	c.message = msg
}

func (c CommandLine) Focused() bool {
	return c.inputMode != inputNone
}

func (c CommandLine) GetHeight() int {
	return 1
}

type commandInputMsg struct {
	cmd []string
}

type searchInputMsg struct {
	query   string
	reverse bool
}
