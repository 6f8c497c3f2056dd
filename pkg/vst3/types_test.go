package vst3

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestResultFor(t *testing.T) {
	tests := []struct {
		err  error
		want int32
	}{
		{nil, ResultOK},
		{ErrInvalidArgument, ResultInvalidArg},
		{ErrNotImplemented, ResultNotImplemented},
		{ErrNotInitialized, ResultFalse},
		{errors.New("boom"), ResultFalse},
	}

	for _, tt := range tests {
		if got := ResultFor(tt.err); got != tt.want {
			t.Errorf("ResultFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestErrorStrings(t *testing.T) {
	if ErrNotImplemented.Error() != "not implemented" {
		t.Errorf("Unexpected message %q", ErrNotImplemented.Error())
	}
	if Error(42).Error() != "unknown error" {
		t.Errorf("Unexpected message %q", Error(42).Error())
	}
}

func TestProcessSetupValidate(t *testing.T) {
	setup := ProcessSetup{
		ProcessMode:        ProcessModeRealtime,
		SymbolicSampleSize: SampleSize32,
		MaxSamplesPerBlock: 1024,
		SampleRate:         48000.0,
	}
	if err := setup.Validate(); err != nil {
		t.Errorf("Valid setup rejected: %v", err)
	}

	setup.SampleRate = 0
	if err := setup.Validate(); err != ErrInvalidArgument {
		t.Errorf("Expected ErrInvalidArgument for zero sample rate, got %v", err)
	}
}

// onlyReadWriter hides the Seek method of the wrapped buffer.
type onlyReadWriter struct {
	io.ReadWriter
}

// seekBuffer is an in-memory stream that supports seeking.
type seekBuffer struct {
	data []byte
	pos  int64
}

func (b *seekBuffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data[:b.pos], p...)
	b.pos += int64(len(p))
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		b.pos = offset
	case io.SeekCurrent:
		b.pos += offset
	case io.SeekEnd:
		b.pos = int64(len(b.data)) + offset
	}
	return b.pos, nil
}

func TestStreamPrimitives(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf)

	if err := s.WriteInt32(-7); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteFloat64(3661.234); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteString("Default"); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteString(""); err != nil {
		t.Fatal(err)
	}

	i, err := s.ReadInt32()
	if err != nil || i != -7 {
		t.Errorf("ReadInt32() = %d, %v", i, err)
	}
	f, err := s.ReadFloat64()
	if err != nil || f != 3661.234 {
		t.Errorf("ReadFloat64() = %f, %v", f, err)
	}
	str, err := s.ReadString()
	if err != nil || str != "Default" {
		t.Errorf("ReadString() = %q, %v", str, err)
	}
	str, err = s.ReadString()
	if err != nil || str != "" {
		t.Errorf("ReadString() empty = %q, %v", str, err)
	}
}

func TestStreamReadAllSeekable(t *testing.T) {
	b := &seekBuffer{data: []byte("headerpayload")}
	b.pos = 6
	s := NewStream(b)

	data, err := s.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("ReadAll() = %q, want %q", data, "payload")
	}
}

func TestStreamReadAllChunked(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, readChunkSize*2+17)
	s := NewStream(onlyReadWriter{bytes.NewBuffer(payload)})

	data, err := s.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("ReadAll() returned %d bytes, want %d", len(data), len(payload))
	}
}

func TestNewStreamNil(t *testing.T) {
	if NewStream(nil) != nil {
		t.Error("Expected nil stream wrapper for nil stream")
	}
}
