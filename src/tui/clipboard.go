package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"golang.design/x/clipboard"
)

var (
	clipboardOnce sync.Once
	clipboardErr  error
	// Set once something was copied, so quitting leaves foreign content alone
	clipboardUsed bool
)

// initClipboard initializes the system clipboard on first use. Without a
// display server this fails, and copying is reported as unavailable.
func initClipboard() error {
	clipboardOnce.Do(func() {
		clipboardErr = clipboard.Init()
		if clipboardErr != nil {
			log.Warn().Err(clipboardErr).Msg("Clipboard unavailable")
		}
	})
	return clipboardErr
}

func copyToClipboard(value string, clearClipboardDelay time.Duration) tea.Cmd {
	if err := initClipboard(); err != nil {
		return func() tea.Msg {
			return setCommandLineMessageMsg{fmt.Sprintf("Clipboard unavailable: %s", err)}
		}
	}
	clipboardUsed = true
	notifyChangeChan := clipboard.Write(clipboard.FmtText, []byte(value))

	commandLineMsg := "Copied to clipboard."
	var clearClipboardCmd tea.Cmd = nil
	if clearClipboardDelay > 0 {
		commandLineMsg += fmt.Sprintf(" (Clearing in %s)", clearClipboardDelay)
		clearClipboardCmd = scheduleClearClipboard(clearClipboardDelay, notifyChangeChan)
	}
	setMsgCmd := func() tea.Msg {
		return setCommandLineMessageMsg{commandLineMsg}
	}
	return tea.Batch(setMsgCmd, clearClipboardCmd)
}

// formatBytes renders bytes as space separated uppercase hex
func formatBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, " ")
}

func clearClipboard() {
	if !clipboardUsed {
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(""))
}
