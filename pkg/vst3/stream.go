package vst3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const readChunkSize = 4096

// Stream wraps a host-provided state stream. Hosts differ in whether their
// streams can seek, so seeking is optional.
type Stream struct {
	rw io.ReadWriter
}

// NewStream wraps rw. It returns nil for a nil stream.
func NewStream(rw io.ReadWriter) *Stream {
	if rw == nil {
		return nil
	}
	return &Stream{rw: rw}
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	return s.rw.Read(p)
}

// Write implements io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	return s.rw.Write(p)
}

// WriteInt32 writes a little-endian int32.
func (s *Stream) WriteInt32(value int32) error {
	return binary.Write(s.rw, binary.LittleEndian, value)
}

// ReadInt32 reads a little-endian int32.
func (s *Stream) ReadInt32() (int32, error) {
	var v int32
	if err := binary.Read(s.rw, binary.LittleEndian, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// WriteFloat64 writes a little-endian IEEE 754 float64.
func (s *Stream) WriteFloat64(value float64) error {
	return binary.Write(s.rw, binary.LittleEndian, math.Float64bits(value))
}

// ReadFloat64 reads a little-endian IEEE 754 float64.
func (s *Stream) ReadFloat64() (float64, error) {
	var bits uint64
	if err := binary.Read(s.rw, binary.LittleEndian, &bits); err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// WriteString writes a length-prefixed string.
func (s *Stream) WriteString(str string) error {
	if err := s.WriteInt32(int32(len(str))); err != nil {
		return err
	}
	if str == "" {
		return nil
	}
	_, err := io.WriteString(s.rw, str)
	return err
}

// ReadString reads a length-prefixed string.
func (s *Stream) ReadString() (string, error) {
	length, err := s.ReadInt32()
	if err != nil {
		return "", err
	}
	if length < 0 {
		return "", fmt.Errorf("negative string length %d", length)
	}
	if length == 0 {
		return "", nil
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(s.rw, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadAll reads everything from the current position to the end. When the
// stream can seek it sizes the read up front, otherwise it reads in chunks.
func (s *Stream) ReadAll() ([]byte, error) {
	seeker, ok := s.rw.(io.Seeker)
	if !ok {
		return s.readAllChunked()
	}

	current, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return s.readAllChunked()
	}
	end, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return s.readAllChunked()
	}
	if _, err := seeker.Seek(current, io.SeekStart); err != nil {
		return nil, fmt.Errorf("restore stream position: %w", err)
	}

	remaining := end - current
	if remaining <= 0 {
		return []byte{}, nil
	}

	buf := make([]byte, remaining)
	n, err := io.ReadFull(s.rw, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buf[:n], nil
}

func (s *Stream) readAllChunked() ([]byte, error) {
	result := []byte{}
	chunk := make([]byte, readChunkSize)

	for {
		n, err := s.rw.Read(chunk)
		result = append(result, chunk[:n]...)
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return result, nil
		}
	}
}
