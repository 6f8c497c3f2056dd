// Package midi provides the MIDI event model shared by the host shell and the
// note logger. Wire encoding is delegated to gomidi.
package midi

import (
	"errors"
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

type EventType uint8

const (
	EventTypeNoteOff EventType = iota
	EventTypeNoteOn
	EventTypeControlChange
)

// Limits of the MIDI 1.0 channel voice messages.
const (
	MaxChannel  uint8 = 15
	MaxNote     uint8 = 127
	MaxVelocity uint8 = 127
)

var (
	ErrChannelRange  = errors.New("midi: channel out of range")
	ErrNoteRange     = errors.New("midi: note number out of range")
	ErrVelocityRange = errors.New("midi: velocity out of range")
	ErrNotNoteOn     = errors.New("midi: message is not a note-on")
)

type Event interface {
	Type() EventType
	Channel() uint8
	SampleOffset() int32
	Message() gomidi.Message
	String() string
}

// BaseEvent holds the fields common to all channel events. EventChannel is
// zero based as on the wire; DisplayChannel gives the 1-based number users see.
type BaseEvent struct {
	EventChannel uint8
	Offset       int32
	Timestamp    float64 // seconds since the logger epoch
}

func (e BaseEvent) Channel() uint8 {
	return e.EventChannel
}

func (e BaseEvent) SampleOffset() int32 {
	return e.Offset
}

// DisplayChannel returns the channel numbered from 1.
func (e BaseEvent) DisplayChannel() int {
	return int(e.EventChannel) + 1
}

type NoteOnEvent struct {
	BaseEvent
	NoteNumber uint8
	Velocity   uint8
}

// NewNoteOn validates its arguments and returns a note-on stamped with ts.
func NewNoteOn(channel, note, velocity uint8, ts float64) (NoteOnEvent, error) {
	if channel > MaxChannel {
		return NoteOnEvent{}, fmt.Errorf("%w: %d", ErrChannelRange, channel)
	}
	if note > MaxNote {
		return NoteOnEvent{}, fmt.Errorf("%w: %d", ErrNoteRange, note)
	}
	if velocity > MaxVelocity {
		return NoteOnEvent{}, fmt.Errorf("%w: %d", ErrVelocityRange, velocity)
	}
	return NoteOnEvent{
		BaseEvent:  BaseEvent{EventChannel: channel, Timestamp: ts},
		NoteNumber: note,
		Velocity:   velocity,
	}, nil
}

// ParseNoteOn decodes a raw note-on message.
func ParseNoteOn(raw []byte) (NoteOnEvent, error) {
	var ch, key, vel uint8
	if !gomidi.Message(raw).GetNoteOn(&ch, &key, &vel) {
		return NoteOnEvent{}, fmt.Errorf("%w: % X", ErrNotNoteOn, raw)
	}
	return NoteOnEvent{
		BaseEvent:  BaseEvent{EventChannel: ch},
		NoteNumber: key,
		Velocity:   vel,
	}, nil
}

func (e NoteOnEvent) Type() EventType {
	return EventTypeNoteOn
}

// Message returns the 3-byte wire message.
func (e NoteOnEvent) Message() gomidi.Message {
	return gomidi.NoteOn(e.EventChannel, e.NoteNumber, e.Velocity)
}

func (e NoteOnEvent) String() string {
	return fmt.Sprintf("NoteOn{ch:%d, note:%d, vel:%d, offset:%d, ts:%.3f}",
		e.EventChannel, e.NoteNumber, e.Velocity, e.Offset, e.Timestamp)
}

type NoteOffEvent struct {
	BaseEvent
	NoteNumber uint8
	Velocity   uint8
}

func (e NoteOffEvent) Type() EventType {
	return EventTypeNoteOff
}

func (e NoteOffEvent) Message() gomidi.Message {
	return gomidi.NoteOffVelocity(e.EventChannel, e.NoteNumber, e.Velocity)
}

func (e NoteOffEvent) String() string {
	return fmt.Sprintf("NoteOff{ch:%d, note:%d, vel:%d, offset:%d}",
		e.EventChannel, e.NoteNumber, e.Velocity, e.Offset)
}

type ControlChangeEvent struct {
	BaseEvent
	Controller uint8
	Value      uint8
}

func (e ControlChangeEvent) Type() EventType {
	return EventTypeControlChange
}

func (e ControlChangeEvent) Message() gomidi.Message {
	return gomidi.ControlChange(e.EventChannel, e.Controller, e.Value)
}

func (e ControlChangeEvent) String() string {
	return fmt.Sprintf("CC{ch:%d, ctrl:%d, val:%d, offset:%d}",
		e.EventChannel, e.Controller, e.Value, e.Offset)
}

const (
	CCModWheel    uint8 = 1
	CCVolume      uint8 = 7
	CCPan         uint8 = 10
	CCSustain     uint8 = 64
	CCAllNotesOff uint8 = 123
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteNumberToName names a note with middle C (60) as C4.
func NoteNumberToName(note uint8) string {
	octave := int(note/12) - 1
	return fmt.Sprintf("%s%d", noteNames[note%12], octave)
}

// Describe returns a human readable description of e.
func Describe(e Event) string {
	switch ev := e.(type) {
	case NoteOnEvent:
		return fmt.Sprintf("Note on %s Velocity %d Channel %d",
			NoteNumberToName(ev.NoteNumber), ev.Velocity, ev.DisplayChannel())
	case NoteOffEvent:
		return fmt.Sprintf("Note off %s Velocity %d Channel %d",
			NoteNumberToName(ev.NoteNumber), ev.Velocity, ev.DisplayChannel())
	case ControlChangeEvent:
		return fmt.Sprintf("Controller %d: %d Channel %d",
			ev.Controller, ev.Value, ev.DisplayChannel())
	default:
		return e.String()
	}
}
