// Package notelogger is a pass-through effect that logs MIDI notes with a
// timecode relative to when the instance was created.
package notelogger

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/justyntemme/notelog/pkg/framework/bus"
	"github.com/justyntemme/notelog/pkg/framework/debug"
	fwplugin "github.com/justyntemme/notelog/pkg/framework/plugin"
	"github.com/justyntemme/notelog/pkg/framework/process"
	"github.com/justyntemme/notelog/pkg/midi"
	"github.com/justyntemme/notelog/pkg/notelog"
	"github.com/justyntemme/notelog/pkg/plugin"
)

// Info identifies the plugin to hosts.
var Info = fwplugin.Info{
	ID:       "com.notelog.notelogger",
	Name:     "NoteLogger",
	Version:  "1.0.0",
	Vendor:   "notelog",
	Category: fwplugin.CategoryFx,
}

// maxHistorySize bounds the history length accepted from saved state.
const maxHistorySize = 1 << 16

// Plugin is the factory entry for NoteLogger.
type Plugin struct {
	// Sink receives log lines. When nil, lines go to the instance logger.
	Sink notelog.Sink

	// Options are applied to every instance's note logger.
	Options []notelog.Option
}

// GetInfo returns the plugin metadata.
func (p *Plugin) GetInfo() fwplugin.Info {
	return Info
}

// CreateProcessor returns a new NoteLogger processor.
func (p *Plugin) CreateProcessor() plugin.Processor {
	proc, err := NewProcessor(p.Sink, p.Options...)
	if err != nil {
		debug.Error("notelogger: %v", err)
		return nil
	}
	return proc
}

// Processor passes audio through untouched and logs note-on events.
type Processor struct {
	*fwplugin.Base
	*fwplugin.BaseProcessor

	notes *notelog.Logger

	mu          sync.RWMutex
	sink        notelog.Sink
	logger      *debug.Logger
	logIncoming bool
}

// NewProcessor creates a processor whose note lines go to sink.
func NewProcessor(sink notelog.Sink, opts ...notelog.Option) (*Processor, error) {
	p := &Processor{
		Base:          fwplugin.NewBase(Info, 1),
		BaseProcessor: fwplugin.NewBaseProcessor(bus.NewEffectWithMIDI()),
		sink:          sink,
		logger:        debug.Default(),
	}

	notes, err := notelog.New(notelog.FuncSink(p.emit), opts...)
	if err != nil {
		return nil, fmt.Errorf("create note logger: %w", err)
	}
	p.notes = notes

	p.State().SetCustomState(p.saveState, p.loadState)
	return p, nil
}

// Configure adopts the instance logger and the incoming-note setting.
func (p *Processor) Configure(cfg plugin.Config, logger *debug.Logger) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if logger != nil {
		p.logger = logger
	}
	p.logIncoming = cfg.LogIncoming
	return nil
}

func (p *Processor) emit(line string) {
	p.mu.RLock()
	sink, logger := p.sink, p.logger
	p.mu.RUnlock()

	if sink != nil {
		sink.LogMessage(line)
		return
	}
	logger.Info("%s", line)
}

// ProcessAudio leaves audio untouched apart from zeroing output channels
// that have no input, then logs host-delivered note-ons when enabled.
func (p *Processor) ProcessAudio(ctx *process.Context) {
	ctx.ClearUnmatchedOutputs()

	p.mu.RLock()
	logIncoming := p.logIncoming
	p.mu.RUnlock()

	if !logIncoming || !ctx.HasInputEvents() {
		return
	}
	for _, e := range ctx.InputNoteOns() {
		p.notes.Log(p.notes.Stamp(e))
	}
}

// TriggerNote builds, timestamps and logs a note-on for note.
func (p *Processor) TriggerNote(note uint8) (midi.NoteOnEvent, error) {
	return p.notes.NoteOn(note)
}

// Notes returns the note logger.
func (p *Processor) Notes() *notelog.Logger {
	return p.notes
}

// SetLogIncoming toggles logging of host-delivered note-ons.
func (p *Processor) SetLogIncoming(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logIncoming = enabled
}

func (p *Processor) saveState(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, uint32(p.notes.History().Cap()))
}

func (p *Processor) loadState(r io.Reader) error {
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return fmt.Errorf("read history size: %w", err)
	}
	if size == 0 || size > maxHistorySize {
		return fmt.Errorf("history size %d out of range", size)
	}
	p.notes.History().Resize(int(size))
	return nil
}
