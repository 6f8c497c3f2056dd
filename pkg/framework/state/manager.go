// Package state saves and restores the plugin's state blob.
package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/justyntemme/notelog/pkg/framework/program"
)

const (
	magic = "NOTELG"

	// CurrentVersion is the blob layout version written by Save.
	CurrentVersion uint32 = 1

	maxNameLen   = 1 << 10
	maxPrograms  = 1 << 12
	maxCustomLen = 1 << 20
)

var (
	ErrInvalidFormat = errors.New("invalid state format")
	ErrNewerVersion  = errors.New("state version is newer than supported")
)

// CustomSaveFunc writes plugin-specific state after the program section.
type CustomSaveFunc func(w io.Writer) error

// CustomLoadFunc reads back what the matching CustomSaveFunc wrote.
type CustomLoadFunc func(r io.Reader) error

// Manager handles plugin state saving and loading.
//
// Layout (little endian): magic, version uint32, current program int32,
// program count int32, per program a uint32 length and UTF-8 name, then a
// uint32 custom-section length followed by that many bytes.
type Manager struct {
	programs   *program.Bank
	customSave CustomSaveFunc
	customLoad CustomLoadFunc
}

// NewManager creates a state manager over a program bank.
func NewManager(programs *program.Bank) *Manager {
	return &Manager{programs: programs}
}

// SetCustomState registers functions for plugin-specific state.
func (m *Manager) SetCustomState(save CustomSaveFunc, load CustomLoadFunc) {
	m.customSave = save
	m.customLoad = load
}

// Save writes the plugin state to w.
func (m *Manager) Save(w io.Writer) error {
	var custom bytes.Buffer
	if m.customSave != nil {
		if err := m.customSave(&custom); err != nil {
			return fmt.Errorf("save custom state: %w", err)
		}
	}

	names := m.programs.Names()

	var buf bytes.Buffer
	buf.WriteString(magic)
	writeLE(&buf, CurrentVersion)
	writeLE(&buf, int32(m.programs.Current()))
	writeLE(&buf, int32(len(names)))
	for _, name := range names {
		if len(name) > maxNameLen {
			name = name[:maxNameLen]
		}
		writeLE(&buf, uint32(len(name)))
		buf.WriteString(name)
	}
	writeLE(&buf, uint32(custom.Len()))
	buf.Write(custom.Bytes())

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// writeLE writes to a bytes.Buffer, which never fails.
func writeLE(buf *bytes.Buffer, v interface{}) {
	_ = binary.Write(buf, binary.LittleEndian, v)
}

// Load reads the plugin state from r. An empty stream leaves the current
// state untouched. Nothing is applied unless the whole blob parses.
func (m *Manager) Load(r io.Reader) error {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("read header: %w", err)
	}
	if string(header) != magic {
		return ErrInvalidFormat
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	if version > CurrentVersion {
		return fmt.Errorf("%w: %d > %d", ErrNewerVersion, version, CurrentVersion)
	}

	var current, count int32
	if err := binary.Read(r, binary.LittleEndian, &current); err != nil {
		return fmt.Errorf("read current program: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("read program count: %w", err)
	}
	if count < 0 || count > maxPrograms {
		return fmt.Errorf("%w: program count %d", ErrInvalidFormat, count)
	}

	names := make([]string, count)
	for i := range names {
		name, err := readString(r, maxNameLen)
		if err != nil {
			return fmt.Errorf("read program %d name: %w", i, err)
		}
		names[i] = name
	}

	custom, err := readBytes(r, maxCustomLen)
	if err != nil {
		return fmt.Errorf("read custom state: %w", err)
	}

	if len(custom) > 0 && m.customLoad != nil {
		if err := m.customLoad(bytes.NewReader(custom)); err != nil {
			return fmt.Errorf("load custom state: %w", err)
		}
	}
	m.programs.Restore(names, int(current))
	return nil
}

func readString(r io.Reader, limit uint32) (string, error) {
	b, err := readBytes(r, limit)
	return string(b), err
}

func readBytes(r io.Reader, limit uint32) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n > limit {
		return nil, fmt.Errorf("%w: length %d exceeds %d", ErrInvalidFormat, n, limit)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
