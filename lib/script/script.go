// Package script runs Lua batch edits against a document. A script is
// recorded as a single transaction, so one undo reverts all of its edits.
//
// The following globals are available to scripts:
//
//	len()                 document length in bytes
//	peek(offset)          byte at offset
//	poke(offset, value)   write a byte
//	anchor(offset, name)  name an offset, or remove its anchor if name is omitted
//	find(name)            offset of an anchor, or nil
//
// Only the base, table, string and math libraries are opened.
package script

import (
	"fmt"
	"os"

	"github.com/Zaphoood/hexhist/lib/document"
	"github.com/Zaphoood/hexhist/lib/history"
	lua "github.com/yuin/gopher-lua"
)

type ScriptError struct {
	err error
}

func (e ScriptError) Error() string {
	return fmt.Sprintf("Script failed: %s", e.err)
}

func (e ScriptError) Unwrap() error {
	return e.err
}

type editor struct {
	h *history.History[*document.Delta]
	m *document.Model
}

// Run executes code and commits its edits as one transaction. If the script
// fails, edits made up to that point remain in the open transaction.
func Run(h *history.History[*document.Delta], m *document.Model, code string) error {
	return run(h, m, func(L *lua.LState) error { return L.DoString(code) })
}

// RunFile executes the script stored at path
func RunFile(h *history.History[*document.Delta], m *document.Model, path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return run(h, m, func(L *lua.LState) error { return L.DoString(string(code)) })
}

func run(h *history.History[*document.Delta], m *document.Model, do func(*lua.LState) error) (err error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openLibraries(L)

	e := editor{h: h, m: m}
	e.register(L)

	scope := h.ContinueCurrentTransaction()
	defer scope.End()
	defer func() {
		if r := recover(); r != nil {
			err = ScriptError{fmt.Errorf("panic: %v", r)}
		}
	}()

	if err := do(L); err != nil {
		return ScriptError{err}
	}
	scope.End()
	return h.ChangeCompleted()
}

func openLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	// Base opens these, but scripts must not touch the file system
	L.SetGlobal("dofile", lua.LNil)
	L.SetGlobal("loadfile", lua.LNil)
}

func (e editor) register(L *lua.LState) {
	L.SetGlobal("len", L.NewFunction(e.len))
	L.SetGlobal("peek", L.NewFunction(e.peek))
	L.SetGlobal("poke", L.NewFunction(e.poke))
	L.SetGlobal("anchor", L.NewFunction(e.anchor))
	L.SetGlobal("find", L.NewFunction(e.find))
}

func (e editor) len(L *lua.LState) int {
	L.Push(lua.LNumber(e.m.Len()))
	return 1
}

func (e editor) peek(L *lua.LState) int {
	value, err := e.m.At(L.CheckInt(1))
	if err != nil {
		L.RaiseError("%s", err)
	}
	L.Push(lua.LNumber(value))
	return 1
}

// poke closes the transaction after every write. The enclosing scope keeps
// it open until the script is done.
func (e editor) poke(L *lua.LState) int {
	offset := L.CheckInt(1)
	value := L.CheckInt(2)
	if value < 0 || value > 0xFF {
		L.ArgError(2, "byte value out of range")
	}
	delta, err := e.h.CurrentChange()
	if err != nil {
		L.RaiseError("%s", err)
	}
	if _, err := delta.ChangeData(e.m, offset, byte(value)); err != nil {
		L.RaiseError("%s", err)
	}
	if err := e.h.ChangeCompleted(); err != nil {
		L.RaiseError("%s", err)
	}
	return 0
}

func (e editor) anchor(L *lua.LState) int {
	offset := L.CheckInt(1)
	name := L.OptString(2, "")
	delta, err := e.h.CurrentChange()
	if err != nil {
		L.RaiseError("%s", err)
	}
	if len(name) == 0 {
		_, err = delta.RemoveAnchor(e.m, offset)
	} else {
		err = delta.SetAnchor(e.m, offset, name)
	}
	if err != nil {
		L.RaiseError("%s", err)
	}
	return 0
}

func (e editor) find(L *lua.LState) int {
	offset, ok := e.m.OffsetOf(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(offset))
	return 1
}
