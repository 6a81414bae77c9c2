package tui

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var boxStyle = lipgloss.NewStyle().
	Width(50).
	Padding(1, 2, 1).
	BorderStyle(lipgloss.NormalBorder())

// Modulo that works properly with negative numbers
func mod(a, b int) int {
	return ((a % b) + b) % b
}

func centerInWindow(text string, windowWidth, windowHeight int) string {
	return lipgloss.Place(windowWidth, windowHeight, lipgloss.Center, lipgloss.Center, text)
}

func expand(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		user, err := user.Current()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return user.HomeDir, nil
		} else if strings.HasPrefix(path, "~/") {
			return filepath.Join(user.HomeDir, path[2:]), nil
		} else {
			// We don't care about handling paths like '~user/...' for now
			return "", fmt.Errorf("Expanding of path '%s' is no supported", path)
		}
	}
	return path, nil
}

func completePath(path string) ([]string, error) {
	var head, tail string
	if len(path) == 0 {
		head = "."
		tail = ""
	} else if path == "~" {
		head = "~/"
		tail = ""
	} else {
		lastSlashIndex := strings.LastIndexByte(path[1:], filepath.Separator)
		if lastSlashIndex == -1 {
			head = "."
			tail = path
		} else {
			head = path[:lastSlashIndex+1]
			tail = path[lastSlashIndex+2:]
		}
	}
	expanded, err := expand(head)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(expanded)
	if err != nil {
		return nil, err
	}
	results := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, tail) {
			if entry.IsDir() {
				name += string(filepath.Separator)
			}
			results = append(results, name)
		}
	}
	return results, nil
}

// Call filepath.Join but keep a trailing path separator if present
func joinRetainTrailingSep(elem ...string) string {
	hasTrailingSeparator := len(elem) > 0 && strings.HasSuffix(elem[len(elem)-1], string(filepath.Separator))
	joined := filepath.Join(elem...)
	if hasTrailingSeparator {
		return joined + string(filepath.Separator)
	}
	return joined
}

// printable returns b as a character for the ASCII column
func printable(b byte) rune {
	if b >= 0x20 && b < 0x7F {
		return rune(b)
	}
	return '.'
}

// parseHexBytes parses a string like "DEADBEEF" or "de ad be ef"
func parseHexBytes(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, " ", "")
	if len(s) == 0 || len(s)%2 != 0 {
		return nil, fmt.Errorf("Invalid byte sequence '%s'", s)
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		hi, ok1 := hexDigit(s[2*i])
		lo, ok2 := hexDigit(s[2*i+1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("Invalid byte sequence '%s'", s)
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
