package bus

import (
	"errors"
	"fmt"
)

// maxChannels bounds a single audio bus.
const maxChannels = 32

// Builder provides a fluent API for building bus configurations
type Builder struct {
	config *Configuration
	errs   []error
}

// NewBuilder creates a new bus configuration builder
func NewBuilder() *Builder {
	return &Builder{config: &Configuration{}}
}

func (b *Builder) addAudio(name string, direction Direction, busType Type, channels int32) *Builder {
	b.config.audioBuses = append(b.config.audioBuses, Info{
		MediaType:    MediaTypeAudio,
		Direction:    direction,
		ChannelCount: channels,
		Name:         name,
		BusType:      busType,
		IsActive:     busType == TypeMain, // aux buses start inactive
	})
	return b
}

// WithAudioInput adds a main audio input bus
func (b *Builder) WithAudioInput(name string, channels int32) *Builder {
	return b.addAudio(name, DirectionInput, TypeMain, channels)
}

// WithAudioOutput adds a main audio output bus
func (b *Builder) WithAudioOutput(name string, channels int32) *Builder {
	return b.addAudio(name, DirectionOutput, TypeMain, channels)
}

// WithAuxInput adds an auxiliary audio input bus (e.g., sidechain)
func (b *Builder) WithAuxInput(name string, channels int32) *Builder {
	return b.addAudio(name, DirectionInput, TypeAux, channels)
}

// WithStereoInput is a convenience method for adding stereo input
func (b *Builder) WithStereoInput(name string) *Builder {
	return b.WithAudioInput(name, 2)
}

// WithStereoOutput is a convenience method for adding stereo output
func (b *Builder) WithStereoOutput(name string) *Builder {
	return b.WithAudioOutput(name, 2)
}

// WithMonoInput is a convenience method for adding mono input
func (b *Builder) WithMonoInput(name string) *Builder {
	return b.WithAudioInput(name, 1)
}

// WithMonoOutput is a convenience method for adding mono output
func (b *Builder) WithMonoOutput(name string) *Builder {
	return b.WithAudioOutput(name, 1)
}

// WithEventInput adds an event (MIDI) input bus
func (b *Builder) WithEventInput(name string) *Builder {
	b.config.AddEventBus(DirectionInput, name)
	return b
}

// WithEventOutput adds an event (MIDI) output bus
func (b *Builder) WithEventOutput(name string) *Builder {
	b.config.AddEventBus(DirectionOutput, name)
	return b
}

// SetBusActive sets a specific bus as active/inactive
func (b *Builder) SetBusActive(mediaType MediaType, direction Direction, index int32, active bool) *Builder {
	if err := b.config.SetBusActive(mediaType, direction, index, active); err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Validate checks if the configuration is valid
func (b *Builder) Validate() error {
	if len(b.errs) > 0 {
		return fmt.Errorf("builder errors: %w", errors.Join(b.errs...))
	}

	hasMainOutput := false
	for _, buses := range [][]Info{b.config.audioBuses, b.config.eventBuses} {
		for _, bus := range buses {
			if bus.Direction == DirectionOutput && bus.BusType == TypeMain {
				hasMainOutput = true
			}
		}
	}
	// An event input alone is enough for a MIDI sink
	if !hasMainOutput && !b.config.AcceptsEvents() {
		return errors.New("configuration must have at least one main output bus or an event input")
	}

	for _, bus := range b.config.audioBuses {
		if bus.ChannelCount <= 0 {
			return fmt.Errorf("invalid channel count %d for bus %s", bus.ChannelCount, bus.Name)
		}
		if bus.ChannelCount > maxChannels {
			return fmt.Errorf("channel count %d exceeds maximum of %d for bus %s", bus.ChannelCount, maxChannels, bus.Name)
		}
	}

	return nil
}

// Build returns the built configuration or an error
func (b *Builder) Build() (*Configuration, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b.config, nil
}

// MustBuild returns the built configuration or panics on error
func (b *Builder) MustBuild() *Configuration {
	config, err := b.Build()
	if err != nil {
		panic(err)
	}
	return config
}

// NewEffectWithMIDI creates a stereo effect that also listens to MIDI input.
func NewEffectWithMIDI() *Configuration {
	return NewBuilder().
		WithStereoInput("Stereo In").
		WithStereoOutput("Stereo Out").
		WithEventInput("MIDI In").
		MustBuild()
}

// NewGenerator creates a generator/instrument configuration
// No audio input, stereo output, MIDI input
func NewGenerator() *Configuration {
	return NewBuilder().
		WithStereoOutput("Stereo Out").
		WithEventInput("MIDI In").
		MustBuild()
}

// NewMIDIEffect creates a MIDI effect configuration
// MIDI in/out, no audio
func NewMIDIEffect() *Configuration {
	return NewBuilder().
		WithEventInput("MIDI In").
		WithEventOutput("MIDI Out").
		MustBuild()
}
