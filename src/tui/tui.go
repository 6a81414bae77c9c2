package tui

import (
	"github.com/Zaphoood/hexhist/lib/document"
	"github.com/Zaphoood/hexhist/src/config"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
)

type viewState int

const (
	selectFileView viewState = iota
	editorView
)

type MainModel struct {
	// Which sub-model we are currently viewing
	view       viewState
	selectFile tea.Model
	editor     tea.Model
	// Instead of asking the user for input, a file can be passed upon construction
	// This is useful when files are openend via command line arguments
	file *document.File
	cfg  config.Config

	windowWidth  int
	windowHeight int
}

func NewMainModel(f *document.File, cfg config.Config) MainModel {
	return MainModel{view: selectFileView, selectFile: NewOpenPrompt(), file: f, cfg: cfg}
}

func (m MainModel) Init() tea.Cmd {
	if m.file != nil {
		return func() tea.Msg { return loadDoneMsg{m.file} }
	}
	return nil
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
	case loadDoneMsg:
		cmds = append(cmds, m.initEditorView(msg.file))
	case globalResizeMsg:
		m.windowWidth = msg.width
		m.windowHeight = msg.height
	}

	switch m.view {
	case selectFileView:
		newSelectFile, newCmd := m.selectFile.Update(msg)
		newSelectFile, ok := newSelectFile.(OpenPrompt)
		if !ok {
			panic("Could not assert that newSelectFile is of type OpenPrompt after Update()")
		}
		m.selectFile = newSelectFile
		cmd = newCmd
	case editorView:
		newEditor, newCmd := m.editor.Update(msg)
		newEditor, ok := newEditor.(Editor)
		if !ok {
			panic("Could not assert that newEditor is of type Editor after Update()")
		}
		m.editor = newEditor
		cmd = newCmd
	}
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *MainModel) initEditorView(f *document.File) tea.Cmd {
	if previous, ok := m.editor.(Editor); ok {
		previous.Close()
	}
	m.view = editorView
	m.file = f
	m.editor = NewEditor(f, m.cfg, m.windowWidth, m.windowHeight)
	return m.editor.Init()
}

func (m MainModel) View() string {
	switch m.view {
	case selectFileView:
		return m.selectFile.View()
	case editorView:
		return m.editor.View()
	default:
		log.Error().Int("view", int(m.view)).Msg("Invalid view")
		return "Invalid view"
	}
}
