package tui

import (
	"fmt"
	"math"

	"github.com/Zaphoood/hexhist/lib/document"
	"github.com/expr-lang/expr"
)

// evalAddress evaluates an address expression such as "cursor + 0x10" or
// "anchor['header'] + 4". Anchors whose names are valid identifiers can also
// be used directly.
func evalAddress(input string, cursor int, m *document.Model) (int, error) {
	anchors := make(map[string]int)
	env := map[string]any{}
	for _, a := range m.Anchors() {
		anchors[a.Name] = a.Offset
		env[a.Name] = a.Offset
	}
	env["cursor"] = cursor
	env["size"] = m.Len()
	env["anchor"] = anchors

	program, err := expr.Compile(input, expr.Env(env))
	if err != nil {
		return 0, fmt.Errorf("Invalid address '%s': %w", input, err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return 0, fmt.Errorf("Invalid address '%s': %w", input, err)
	}

	var offset int
	switch v := result.(type) {
	case int:
		offset = v
	case int64:
		offset = int(v)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("Address '%s' is not an integer", input)
		}
		offset = int(v)
	default:
		return 0, fmt.Errorf("Address '%s' is not a number", input)
	}
	if offset < 0 || offset >= m.Len() {
		return 0, document.RangeError{Offset: offset, Length: m.Len()}
	}
	return offset, nil
}
