// Package plugin is the component shell a host drives: it owns the factory
// registry and adapts a Processor to the host callback surface.
package plugin

import (
	"github.com/justyntemme/notelog/pkg/framework/bus"
	"github.com/justyntemme/notelog/pkg/framework/debug"
	"github.com/justyntemme/notelog/pkg/framework/plugin"
	"github.com/justyntemme/notelog/pkg/framework/process"
	"github.com/justyntemme/notelog/pkg/framework/program"
	"github.com/justyntemme/notelog/pkg/framework/state"
)

// Plugin is the main interface that users implement
type Plugin interface {
	// GetInfo returns plugin metadata
	GetInfo() plugin.Info

	// CreateProcessor creates a new instance of the audio processor
	CreateProcessor() Processor
}

// Processor handles the actual audio processing
type Processor interface {
	// Initialize is called once the host has chosen a processing setup
	Initialize(sampleRate float64, maxBlockSize int32) error

	// ProcessAudio processes one block. It must not allocate.
	ProcessAudio(ctx *process.Context)

	// GetBuses returns the bus configuration
	GetBuses() *bus.Configuration

	// SetActive is called when processing starts/stops
	SetActive(active bool) error

	// GetLatencySamples returns the plugin's latency in samples
	GetLatencySamples() int32

	// GetTailSamples returns the tail length in samples
	GetTailSamples() int32
}

// ProgramProvider is implemented by processors with their own program slots.
type ProgramProvider interface {
	Programs() *program.Bank
}

// StateProvider is implemented by processors that persist more than their
// program slots.
type StateProvider interface {
	State() *state.Manager
}

// Configurable processors receive the factory config and the instance logger
// before the component is handed to the host.
type Configurable interface {
	Configure(cfg Config, logger *debug.Logger) error
}
