// Package notelog builds timestamped MIDI note-on events and writes a
// human-readable line for each one to an injected sink.
package notelog

import (
	"fmt"

	"github.com/justyntemme/notelog/pkg/midi"
	"github.com/justyntemme/notelog/pkg/timecode"
)

const (
	// DefaultChannel is the zero-based wire channel (channel 10 to users).
	DefaultChannel uint8 = 9
	// DefaultVelocity is the velocity given to every logged note-on.
	DefaultVelocity uint8 = 100
)

// Option configures a Logger.
type Option func(*Logger)

// WithChannel sets the zero-based channel of generated notes.
func WithChannel(channel uint8) Option {
	return func(l *Logger) {
		l.channel = channel
	}
}

// WithVelocity sets the velocity of generated notes.
func WithVelocity(velocity uint8) Option {
	return func(l *Logger) {
		l.velocity = velocity
	}
}

// WithClock sets the clock the epoch is captured from.
func WithClock(clock timecode.Clock) Option {
	return func(l *Logger) {
		l.clock = clock
	}
}

// WithHistorySize sets how many recent lines are retained.
func WithHistorySize(size int) Option {
	return func(l *Logger) {
		l.historySize = size
	}
}

// Logger creates note-on events stamped relative to its construction time.
type Logger struct {
	sink        Sink
	clock       timecode.Clock
	epoch       *timecode.Epoch
	history     *History
	historySize int
	channel     uint8
	velocity    uint8
}

// New creates a Logger writing to sink and captures its epoch. A nil sink
// discards output. Invalid channel or velocity options are reported here
// rather than on every note.
func New(sink Sink, opts ...Option) (*Logger, error) {
	l := &Logger{
		sink:     sink,
		channel:  DefaultChannel,
		velocity: DefaultVelocity,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.sink == nil {
		l.sink = Discard
	}
	if l.channel > midi.MaxChannel {
		return nil, fmt.Errorf("notelog: %w: %d", midi.ErrChannelRange, l.channel)
	}
	if l.velocity > midi.MaxVelocity {
		return nil, fmt.Errorf("notelog: %w: %d", midi.ErrVelocityRange, l.velocity)
	}

	l.history = NewHistory(l.historySize)
	l.epoch = timecode.NewEpoch(l.clock)
	return l, nil
}

// NoteOn builds a note-on for note, stamps it with the time since the epoch,
// and logs it.
func (l *Logger) NoteOn(note uint8) (midi.NoteOnEvent, error) {
	event, err := midi.NewNoteOn(l.channel, note, l.velocity, l.epoch.Seconds())
	if err != nil {
		return midi.NoteOnEvent{}, err
	}
	l.Log(event)
	return event, nil
}

// Log formats event and writes it to the sink and history.
func (l *Logger) Log(event midi.Event) {
	line := Line(event)
	l.history.Add(line)
	l.sink.LogMessage(line)
}

// Stamp sets the timestamp of an event received from elsewhere to now.
func (l *Logger) Stamp(event midi.NoteOnEvent) midi.NoteOnEvent {
	event.Timestamp = l.epoch.Seconds()
	return event
}

// History returns the retained lines.
func (l *Logger) History() *History {
	return l.history
}

// Epoch returns the epoch timestamps are measured from.
func (l *Logger) Epoch() *timecode.Epoch {
	return l.epoch
}

// Line formats event as "<HH:MM:SS:mmm> - <description>".
func Line(event midi.Event) string {
	return timecode.Format(timestampOf(event)) + " - " + midi.Describe(event)
}

func timestampOf(event midi.Event) float64 {
	switch e := event.(type) {
	case midi.NoteOnEvent:
		return e.Timestamp
	case midi.NoteOffEvent:
		return e.Timestamp
	case midi.ControlChangeEvent:
		return e.Timestamp
	}
	return 0
}
