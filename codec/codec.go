// Package codec reads and writes the tool's binary artifacts. An artifact is
// a 7 byte header ("EVMIO", kind, version) followed by a zstd frame holding
// the RLP encoding of the payload.
package codec

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

type Kind byte

const (
	KindAccessLog    Kind = 1 // types.FullAccessLog
	KindInitialState Kind = 2 // []types.InitialStateEntry
	KindWorkload     Kind = 3 // types.Workload
)

func (k Kind) String() string {
	switch k {
	case KindAccessLog:
		return "access-log"
	case KindInitialState:
		return "initial-state"
	case KindWorkload:
		return "workload"
	default:
		return fmt.Sprintf("kind(%d)", byte(k))
	}
}

const Version byte = 1

var magic = [5]byte{'E', 'V', 'M', 'I', 'O'}

const headerLen = len(magic) + 2

// Encode serializes obj as an artifact of the given kind.
func Encode(kind Kind, obj interface{}) ([]byte, error) {
	buffer := bytes.NewBuffer(nil)
	encoder := NewEncoder(buffer, kind)

	err := encoder.Encode(obj)
	if err != nil {
		return nil, fmt.Errorf("encoding failed: %w", err)
	}

	return buffer.Bytes(), nil
}

// Decode deserializes an artifact of the given kind into typ, which must be a pointer.
func Decode(inp []byte, kind Kind, typ interface{}) error {
	decoder := NewDecoder(bytes.NewReader(inp), kind)

	err := decoder.Decode(typ)
	if err != nil {
		return fmt.Errorf("decoding failed: %w", err)
	}

	return nil
}

// WriteFile encodes obj into path, creating parent directories.
func WriteFile(path string, kind Kind, obj interface{}) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := NewEncoder(w, kind).Encode(obj); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile decodes the artifact at path into typ.
func ReadFile(path string, kind Kind, typ interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := NewDecoder(bufio.NewReader(f), kind).Decode(typ); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
