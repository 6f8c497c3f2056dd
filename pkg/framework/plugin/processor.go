// Package plugin provides base processor functionality to reduce boilerplate in plugins.
package plugin

import (
	"github.com/justyntemme/notelog/pkg/framework/bus"
	"github.com/justyntemme/notelog/pkg/framework/process"
)

// BaseProcessor provides common functionality for audio processors
type BaseProcessor struct {
	buses        *bus.Configuration
	sampleRate   float64
	maxBlockSize int32
	active       bool

	onInitialize func(sampleRate float64, maxBlockSize int32) error
	onSetActive  func(active bool) error
	onReset      func()
}

// NewBaseProcessor creates a new base processor with the given bus configuration
func NewBaseProcessor(buses *bus.Configuration) *BaseProcessor {
	if buses == nil {
		buses = bus.NewStereoConfiguration()
	}
	return &BaseProcessor{buses: buses}
}

// Initialize records the processing setup and runs the OnInitialize callback.
func (b *BaseProcessor) Initialize(sampleRate float64, maxBlockSize int32) error {
	b.sampleRate = sampleRate
	b.maxBlockSize = maxBlockSize

	if b.onInitialize != nil {
		return b.onInitialize(sampleRate, maxBlockSize)
	}
	return nil
}

// GetBuses returns the bus configuration
func (b *BaseProcessor) GetBuses() *bus.Configuration {
	return b.buses
}

// SetActive runs the reset callback on deactivation, then OnSetActive.
func (b *BaseProcessor) SetActive(active bool) error {
	if !active && b.onReset != nil {
		b.onReset()
	}
	if b.onSetActive != nil {
		if err := b.onSetActive(active); err != nil {
			return err
		}
	}
	b.active = active
	return nil
}

// IsActive reports whether the host has activated the processor.
func (b *BaseProcessor) IsActive() bool {
	return b.active
}

// GetLatencySamples reports no latency.
func (b *BaseProcessor) GetLatencySamples() int32 {
	return 0
}

// GetTailSamples reports no tail.
func (b *BaseProcessor) GetTailSamples() int32 {
	return 0
}

// SampleRate returns the current sample rate
func (b *BaseProcessor) SampleRate() float64 {
	return b.sampleRate
}

// MaxBlockSize returns the largest block the host will deliver.
func (b *BaseProcessor) MaxBlockSize() int32 {
	return b.maxBlockSize
}

// OnInitialize sets a callback for initialization
func (b *BaseProcessor) OnInitialize(fn func(sampleRate float64, maxBlockSize int32) error) {
	b.onInitialize = fn
}

// OnSetActive sets a callback for activation/deactivation
func (b *BaseProcessor) OnSetActive(fn func(active bool) error) {
	b.onSetActive = fn
}

// OnReset sets a callback for when the processor should reset its state
func (b *BaseProcessor) OnReset(fn func()) {
	b.onReset = fn
}

// SimpleProcessor pairs a BaseProcessor with a process function.
type SimpleProcessor struct {
	*BaseProcessor
	processFunc func(ctx *process.Context)
}

// NewSimpleProcessor creates a processor with just a process function
func NewSimpleProcessor(buses *bus.Configuration, processFunc func(ctx *process.Context)) *SimpleProcessor {
	return &SimpleProcessor{
		BaseProcessor: NewBaseProcessor(buses),
		processFunc:   processFunc,
	}
}

// ProcessAudio runs the process function, or clears outputs when there is none.
func (s *SimpleProcessor) ProcessAudio(ctx *process.Context) {
	if s.processFunc == nil {
		ctx.Clear()
		return
	}
	s.processFunc(ctx)
}
