package tui

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Zaphoood/hexhist/lib/document"
	tea "github.com/charmbracelet/bubbletea"
)

func fileSelectedCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if len(path) == 0 {
			return loadFailedMsg{errors.New("Empty path")}
		}
		// Expand file path
		pathExpanded, err := expand(path)
		if err != nil {
			return loadFailedMsg{err}
		}
		if fileInfo, err := os.Stat(pathExpanded); err != nil {
			return loadFailedMsg{fmt.Errorf("File '%s' does not exist", path)}
		} else if fileInfo.IsDir() {
			return loadFailedMsg{fmt.Errorf("'%s' is directory", path)}
		}
		file := document.NewFile(pathExpanded)
		if err := file.Load(); err != nil {
			return loadFailedMsg{err}
		}
		return loadDoneMsg{&file}
	}
}

type loadDoneMsg struct {
	file *document.File
}

type loadFailedMsg struct {
	err error
}

// saveToPath saves the file to path, or to its current path if path is
// empty. Saving happens right away so that the saved content is exactly
// what the history was tagged with.
func saveToPath(f *document.File, path string) error {
	if len(path) == 0 {
		return f.Save()
	}
	expanded, err := expand(path)
	if err != nil {
		return err
	}
	return f.SaveToPath(expanded)
}

func scheduleClearClipboard(delay time.Duration, notify <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-notify:
			return nil
		case <-time.After(delay):
			return clearClipboardMsg{}
		}
	}
}

type clearClipboardMsg struct{}

type clearClipboardAndQuitMsg struct{}

/* When any model receives a tea.WindowSizeMsg, it should emit this command
in order to alert the main model of the resize. The main model will store the new
window size and pass it to other models upon initialization */
func globalResizeCmd(width, height int) tea.Cmd {
	return func() tea.Msg {
		return globalResizeMsg{width, height}
	}
}

type globalResizeMsg struct {
	width  int
	height int
}

type setCommandLineMessageMsg struct {
	msg string
}
