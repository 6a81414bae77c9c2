package util

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// WriteAssert writes to w and errors if writing failed or if it wasn't possible to write all bytes
func WriteAssert(w io.Writer, b []byte) error {
	n, err := w.Write(b)
	if err != nil {
		return fmt.Errorf("Error while writing: %w", err)
	}
	if n != len(b) {
		return fmt.Errorf("Writing failed: tried to write %d bytes but wrote only %d", len(b), n)
	}
	return nil
}

// ReadAssert tries to read len(b) bytes and errors if reading failed or if less bytes were read
func ReadAssert(r io.Reader, b []byte) error {
	n, err := io.ReadFull(r, b)
	if err != nil && err != io.ErrUnexpectedEOF {
		return err
	}
	if n != len(b) {
		return fmt.Errorf("File truncated: tried to read %d bytes but got only %d", len(b), n)
	}
	return nil
}

func GUnzip(in []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, r); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func GZip(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	err := WriteAssert(writer, in)
	if err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ParseOffset parses a decimal offset or a hexadecimal one prefixed with 0x or $
func ParseOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	base := 10
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s, base = s[2:], 16
	case strings.HasPrefix(s, "$"):
		s, base = s[1:], 16
	}
	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("Invalid offset '%s'", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("Offset must not be negative, got %d", v)
	}
	return int(v), nil
}

func Max[T constraints.Ordered](a T, b T) T {
	if a > b {
		return a
	}
	return b
}

func Min[T constraints.Ordered](a T, b T) T {
	if a < b {
		return a
	}
	return b
}
