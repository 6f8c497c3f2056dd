// Package host drives a plugin component through the same lifecycle a DAW
// uses, without audio hardware. It backs the notehost CLI and the
// end-to-end tests.
package host

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/justyntemme/notelog/pkg/framework/bus"
	"github.com/justyntemme/notelog/pkg/framework/debug"
	"github.com/justyntemme/notelog/pkg/framework/process"
	"github.com/justyntemme/notelog/pkg/midi"
	"github.com/justyntemme/notelog/pkg/plugin"
	"github.com/justyntemme/notelog/pkg/vst3"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultSampleRate = 48000.0
	DefaultBlockSize  = 512
)

// ErrClosed is returned by calls on a closed session.
var ErrClosed = errors.New("host: session closed")

// Options controls how a session sets the component up.
type Options struct {
	SampleRate float64
	BlockSize  int32
	// Layout is proposed for the main input and output buses.
	Layout bus.SpeakerArrangement
	// Logger receives host-side messages. Defaults to debug.Default().
	Logger *debug.Logger
}

func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = DefaultSampleRate
	}
	if o.BlockSize <= 0 {
		o.BlockSize = DefaultBlockSize
	}
	if o.Layout == bus.ArrangementEmpty {
		o.Layout = bus.ArrangementStereo
	}
	if o.Logger == nil {
		o.Logger = debug.Default()
	}
	return o
}

// Session is one plugin instance in the processing state.
type Session struct {
	opts      Options
	component *plugin.Component
	ctx       *process.Context
	log       *debug.Logger

	blocks  int
	samples int64
	closed  bool
}

// Open creates an instance of class uid, negotiates its layout, and starts
// processing. The caller must Close the session.
func Open(uid [16]byte, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	c, err := plugin.CreateInstance(uid)
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	s := &Session{opts: opts, component: c, log: opts.Logger}
	if err := s.start(); err != nil {
		plugin.Release(c.ID())
		return nil, err
	}
	return s, nil
}

func (s *Session) start() error {
	c := s.component
	if err := c.Initialize(); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	s.negotiateLayout()

	setup := &vst3.ProcessSetup{
		ProcessMode:        vst3.ProcessModeOffline,
		SymbolicSampleSize: vst3.SampleSize32,
		MaxSamplesPerBlock: s.opts.BlockSize,
		SampleRate:         s.opts.SampleRate,
	}
	if err := c.SetupProcessing(setup); err != nil {
		return fmt.Errorf("setup processing: %w", err)
	}
	if err := c.SetActive(true); err != nil {
		return fmt.Errorf("activate: %w", err)
	}
	if err := c.SetProcessing(true); err != nil {
		return fmt.Errorf("start processing: %w", err)
	}

	s.ctx = process.NewContext(s.opts.SampleRate)
	s.ctx.Input = s.allocate(vst3.BusDirectionInput)
	s.ctx.Output = s.allocate(vst3.BusDirectionOutput)

	s.log.Debug("session open: %d in, %d out, %.0f Hz, %d block",
		len(s.ctx.Input), len(s.ctx.Output), s.opts.SampleRate, s.opts.BlockSize)
	return nil
}

// negotiateLayout proposes the requested layout on the main buses. When the
// plugin refuses, the host keeps whatever the plugin reports.
func (s *Session) negotiateLayout() {
	c := s.component
	propose := func(direction int32) []int64 {
		n := c.GetBusCount(vst3.MediaTypeAudio, direction)
		out := make([]int64, n)
		for i := int32(0); i < n; i++ {
			if i == 0 {
				out[i] = int64(s.opts.Layout)
				continue
			}
			arr, _ := c.GetBusArrangement(direction, i)
			out[i] = arr
		}
		return out
	}

	ins := propose(vst3.BusDirectionInput)
	outs := propose(vst3.BusDirectionOutput)
	if err := c.SetBusArrangements(ins, outs); err != nil {
		s.log.Warn("plugin refused layout %s: %v", s.opts.Layout, err)
	}
}

func (s *Session) allocate(direction int32) [][]float32 {
	info, err := s.component.GetBusInfo(vst3.MediaTypeAudio, direction, 0)
	if err != nil {
		return nil
	}
	buffers := make([][]float32, info.ChannelCount)
	for ch := range buffers {
		buffers[ch] = make([]float32, s.opts.BlockSize)
	}
	return buffers
}

// Component returns the hosted component.
func (s *Session) Component() *plugin.Component {
	return s.component
}

// Context returns the buffers and event queue of the next block.
func (s *Session) Context() *process.Context {
	return s.ctx
}

// NoteTrigger is implemented by processors that generate notes themselves.
type NoteTrigger interface {
	TriggerNote(note uint8) (midi.NoteOnEvent, error)
}

// TriggerNote asks the processor to build and log its own note-on for note.
func (s *Session) TriggerNote(note uint8) (midi.NoteOnEvent, error) {
	if s.closed {
		return midi.NoteOnEvent{}, ErrClosed
	}
	trigger, ok := s.component.Processor().(NoteTrigger)
	if !ok {
		return midi.NoteOnEvent{}, fmt.Errorf("%s cannot trigger notes: %w", s.component.Info().Name, vst3.ErrNotImplemented)
	}
	return trigger.TriggerNote(note)
}

// QueueNote schedules a note-on on wire channel 0 for the next block.
func (s *Session) QueueNote(note, velocity uint8, offset int32) error {
	if s.closed {
		return ErrClosed
	}
	if offset < 0 || offset >= s.opts.BlockSize {
		return fmt.Errorf("offset %d outside block of %d: %w", offset, s.opts.BlockSize, vst3.ErrInvalidArgument)
	}
	event, err := midi.NewNoteOn(0, note, velocity, 0)
	if err != nil {
		return err
	}
	event.Offset = offset
	s.ctx.AddInputEvent(event)
	return nil
}

// ProcessBlock feeds one block of silence plus any queued events.
func (s *Session) ProcessBlock() error {
	if s.closed {
		return ErrClosed
	}
	for _, ch := range s.ctx.Input {
		clear(ch)
	}
	if err := s.component.Process(s.ctx); err != nil {
		return fmt.Errorf("process block %d: %w", s.blocks, err)
	}
	s.blocks++
	s.samples += int64(s.opts.BlockSize)
	return nil
}

// Run processes n blocks.
func (s *Session) Run(n int) error {
	for i := 0; i < n; i++ {
		if err := s.ProcessBlock(); err != nil {
			return err
		}
	}
	return nil
}

// SampleRate returns the rate the component was set up with.
func (s *Session) SampleRate() float64 {
	return s.opts.SampleRate
}

// BlockDuration returns the audio time covered by one block.
func (s *Session) BlockDuration() time.Duration {
	return time.Duration(float64(s.opts.BlockSize) / s.opts.SampleRate * float64(time.Second))
}

// Blocks returns the number of blocks processed.
func (s *Session) Blocks() int {
	return s.blocks
}

// Elapsed returns the audio time processed so far.
func (s *Session) Elapsed() time.Duration {
	return time.Duration(float64(s.samples) / s.opts.SampleRate * float64(time.Second))
}

// SaveState asks the component for its state blob.
func (s *Session) SaveState() ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	var buf bytes.Buffer
	if err := s.component.GetState(vst3.NewStream(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadState hands a state blob to the component.
func (s *Session) LoadState(data []byte) error {
	if s.closed {
		return ErrClosed
	}
	return s.component.SetState(vst3.NewStream(bytes.NewBuffer(data)))
}

// Close stops processing, terminates and releases the component.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	c := s.component
	defer plugin.Release(c.ID())

	var errs []error
	if err := c.SetProcessing(false); err != nil {
		errs = append(errs, err)
	}
	if err := c.SetActive(false); err != nil {
		errs = append(errs, err)
	}
	if err := c.Terminate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
