// Package process provides the per-block processing context handed to processors.
package process

import (
	"github.com/justyntemme/notelog/pkg/midi"
)

// EventProcessor receives events dispatched by ProcessEvents.
type EventProcessor interface {
	ProcessEvent(event midi.Event)
}

// Context carries one block of audio plus the events the host delivered for it.
type Context struct {
	Input      [][]float32
	Output     [][]float32
	SampleRate float64

	inputEvents  *midi.EventQueue
	outputEvents *midi.EventQueue
}

// NewContext creates a context with empty event queues.
func NewContext(sampleRate float64) *Context {
	return &Context{
		SampleRate:   sampleRate,
		inputEvents:  midi.NewEventQueue(),
		outputEvents: midi.NewEventQueue(),
	}
}

// NumSamples returns the number of samples in the current block.
func (c *Context) NumSamples() int {
	if len(c.Input) > 0 && len(c.Input[0]) > 0 {
		return len(c.Input[0])
	}
	if len(c.Output) > 0 && len(c.Output[0]) > 0 {
		return len(c.Output[0])
	}
	return 0
}

// NumInputChannels returns the number of input channels
func (c *Context) NumInputChannels() int {
	return len(c.Input)
}

// NumOutputChannels returns the number of output channels
func (c *Context) NumOutputChannels() int {
	return len(c.Output)
}

// PassThrough copies input to output for the channels both sides have.
func (c *Context) PassThrough() {
	n := min(c.NumInputChannels(), c.NumOutputChannels())
	for ch := 0; ch < n; ch++ {
		copy(c.Output[ch], c.Input[ch])
	}
}

// Clear zeros every output channel.
func (c *Context) Clear() {
	c.ClearFrom(0)
}

// ClearFrom zeros output channels starting at index first.
func (c *Context) ClearFrom(first int) {
	if first < 0 {
		first = 0
	}
	for ch := first; ch < len(c.Output); ch++ {
		clear(c.Output[ch])
	}
}

// ClearUnmatchedOutputs zeros the output channels that have no input
// counterpart. Hosts may hand the plugin garbage in those buffers.
func (c *Context) ClearUnmatchedOutputs() {
	c.ClearFrom(c.NumInputChannels())
}

// AddInputEvent queues a host-delivered event.
func (c *Context) AddInputEvent(event midi.Event) {
	c.inputEvents.Add(event)
}

// GetInputEvents returns input events with offsets in [start, end).
func (c *Context) GetInputEvents(start, end int32) []midi.Event {
	return c.inputEvents.GetEventsInRange(start, end)
}

// GetAllInputEvents returns every queued input event ordered by offset.
func (c *Context) GetAllInputEvents() []midi.Event {
	return c.inputEvents.GetAllEvents()
}

// InputNoteOns returns the queued note-on events ordered by offset.
func (c *Context) InputNoteOns() []midi.NoteOnEvent {
	return c.inputEvents.NoteOns()
}

// HasInputEvents reports whether any input events are queued.
func (c *Context) HasInputEvents() bool {
	return !c.inputEvents.IsEmpty()
}

// ClearInputEvents drops all queued input events.
func (c *Context) ClearInputEvents() {
	c.inputEvents.Clear()
}

// AddOutputEvent queues an event for the host.
func (c *Context) AddOutputEvent(event midi.Event) {
	c.outputEvents.Add(event)
}

// GetOutputEvents returns the queued output events ordered by offset.
func (c *Context) GetOutputEvents() []midi.Event {
	return c.outputEvents.GetAllEvents()
}

// ClearOutputEvents drops all queued output events.
func (c *Context) ClearOutputEvents() {
	c.outputEvents.Clear()
}

// ClearAllEvents drops input and output events.
func (c *Context) ClearAllEvents() {
	c.ClearInputEvents()
	c.ClearOutputEvents()
}

// ProcessEvents dispatches input events in [start, end) to p in offset order.
func (c *Context) ProcessEvents(p EventProcessor, start, end int32) {
	for _, e := range c.GetInputEvents(start, end) {
		p.ProcessEvent(e)
	}
}
