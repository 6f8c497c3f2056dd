// Package bus describes a plugin's audio and event buses and negotiates
// channel layouts with the host.
package bus

import (
	"errors"
	"fmt"
)

// MediaType represents the type of bus
type MediaType int32

const (
	// MediaTypeAudio represents audio bus type
	MediaTypeAudio MediaType = 0
	// MediaTypeEvent represents event/MIDI bus type
	MediaTypeEvent MediaType = 1
)

// Direction represents the bus direction
type Direction int32

const (
	// DirectionInput represents input bus
	DirectionInput Direction = 0
	// DirectionOutput represents output bus
	DirectionOutput Direction = 1
)

// Type represents the bus type
type Type int32

const (
	// TypeMain represents main bus
	TypeMain Type = 0
	// TypeAux represents auxiliary bus
	TypeAux Type = 1
)

// ErrLayoutNotSupported is returned when the host proposes a channel layout
// the configuration cannot run with.
var ErrLayoutNotSupported = errors.New("bus layout not supported")

// Info contains bus configuration
type Info struct {
	MediaType    MediaType
	Direction    Direction
	ChannelCount int32
	Name         string
	BusType      Type
	IsActive     bool
}

// Configuration manages audio and event buses
type Configuration struct {
	audioBuses []Info
	eventBuses []Info
}

// NewStereoConfiguration creates a standard stereo I/O configuration
func NewStereoConfiguration() *Configuration {
	return NewBuilder().
		WithStereoInput("Stereo In").
		WithStereoOutput("Stereo Out").
		MustBuild()
}

// NewMonoConfiguration creates a mono I/O configuration
func NewMonoConfiguration() *Configuration {
	return NewBuilder().
		WithMonoInput("Mono In").
		WithMonoOutput("Mono Out").
		MustBuild()
}

func (c *Configuration) buses(mediaType MediaType) []Info {
	if mediaType == MediaTypeEvent {
		return c.eventBuses
	}
	return c.audioBuses
}

// GetBusCount returns the number of buses for a given type and direction
func (c *Configuration) GetBusCount(mediaType MediaType, direction Direction) int32 {
	count := int32(0)
	for _, bus := range c.buses(mediaType) {
		if bus.Direction == direction {
			count++
		}
	}
	return count
}

// GetBusInfo returns information about a specific bus, or nil
func (c *Configuration) GetBusInfo(mediaType MediaType, direction Direction, index int32) *Info {
	buses := c.buses(mediaType)

	busIndex := int32(0)
	for i := range buses {
		if buses[i].Direction == direction {
			if busIndex == index {
				return &buses[i]
			}
			busIndex++
		}
	}
	return nil
}

// SetBusActive activates or deactivates a bus at the host's request.
func (c *Configuration) SetBusActive(mediaType MediaType, direction Direction, index int32, active bool) error {
	info := c.GetBusInfo(mediaType, direction, index)
	if info == nil {
		return fmt.Errorf("bus not found: mediaType=%d, direction=%d, index=%d", mediaType, direction, index)
	}
	info.IsActive = active
	return nil
}

// AddEventBus adds an event bus (for MIDI input)
func (c *Configuration) AddEventBus(direction Direction, name string) {
	c.eventBuses = append(c.eventBuses, Info{
		MediaType:    MediaTypeEvent,
		Direction:    direction,
		ChannelCount: 1,
		Name:         name,
		BusType:      TypeMain,
		IsActive:     true,
	})
}

// AcceptsEvents reports whether there is an event input bus.
func (c *Configuration) AcceptsEvents() bool {
	return c.GetBusCount(MediaTypeEvent, DirectionInput) > 0
}

// ProducesEvents reports whether there is an event output bus.
func (c *Configuration) ProducesEvents() bool {
	return c.GetBusCount(MediaTypeEvent, DirectionOutput) > 0
}

// IsEventOnly reports whether the configuration has event buses and no audio.
func (c *Configuration) IsEventOnly() bool {
	return len(c.audioBuses) == 0 && len(c.eventBuses) > 0
}

// TotalChannels sums the channel counts of active audio buses in direction.
func (c *Configuration) TotalChannels(direction Direction) int {
	total := 0
	for _, bus := range c.audioBuses {
		if bus.Direction == direction && bus.IsActive {
			total += int(bus.ChannelCount)
		}
	}
	return total
}
