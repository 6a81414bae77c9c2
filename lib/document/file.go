package document

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/Zaphoood/hexhist/lib/util"
)

const GZIP_SUFFIX = ".gz"

type FileError struct {
	err error
}

func (e FileError) Error() string {
	return e.err.Error()
}

func (e FileError) Unwrap() error {
	return e.err
}

// File is a document on disk together with its loaded content
type File struct {
	path  string
	model *Model
}

func NewFile(path string) File {
	return File{path: path}
}

func (f File) Path() string {
	return f.path
}

// Model returns the loaded content, or nil if Load was not called yet
func (f File) Model() *Model {
	return f.model
}

func (f File) Compressed() bool {
	return strings.HasSuffix(f.path, GZIP_SUFFIX)
}

// Load reads the document and its anchor sidecar. Paths ending in .gz are
// decompressed.
func (f *File) Load() error {
	content, err := os.ReadFile(f.path)
	if err != nil {
		return FileError{err}
	}
	if f.Compressed() {
		content, err = util.GUnzip(content)
		if err != nil {
			return FileError{fmt.Errorf("Error while decompressing '%s': %w", f.path, err)}
		}
	}

	model := NewModel(content)
	anchors, err := loadAnchorsFile(AnchorsPath(f.path))
	if err != nil {
		return err
	}
	if err := model.loadAnchors(anchors); err != nil {
		return FileError{fmt.Errorf("Invalid anchors for '%s': %w", f.path, err)}
	}
	f.model = model
	return nil
}

func (f *File) Save() error {
	return f.SaveToPath(f.path)
}

// SaveToPath writes the document and its anchors to path. The file's path is
// updated on success.
func (f *File) SaveToPath(path string) error {
	if f.model == nil {
		return errors.New("model must not be nil")
	}
	content := f.model.Bytes()
	if strings.HasSuffix(path, GZIP_SUFFIX) {
		var err error
		content, err = util.GZip(content)
		if err != nil {
			return err
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return FileError{err}
	}
	if err := writeAndClose(out, func(w io.Writer) error { return util.WriteAssert(w, content) }); err != nil {
		return err
	}

	if err := saveAnchorsFile(AnchorsPath(path), f.model.Anchors()); err != nil {
		return err
	}
	f.path = path
	return nil
}

func loadAnchorsFile(path string) ([]Anchor, error) {
	in, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, FileError{err}
	}
	defer in.Close()
	anchors, err := ReadAnchors(in)
	if err != nil {
		return nil, FileError{fmt.Errorf("Error while reading '%s': %w", path, err)}
	}
	return anchors, nil
}

// saveAnchorsFile writes the sidecar, or removes a stale one when there are
// no anchors
func saveAnchorsFile(path string, anchors []Anchor) error {
	if len(anchors) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return FileError{err}
		}
		return nil
	}
	out, err := os.Create(path)
	if err != nil {
		return FileError{err}
	}
	return writeAndClose(out, func(w io.Writer) error { return WriteAnchors(w, anchors) })
}

// writeAndClose runs write on out and closes it. A failed close is reported,
// since buffered data may not have reached the disk.
func writeAndClose(out io.WriteCloser, write func(io.Writer) error) error {
	if err := write(out); err != nil {
		out.Close()
		return FileError{err}
	}
	if err := out.Close(); err != nil {
		return FileError{err}
	}
	return nil
}
