package bus

import (
	"fmt"
	"math/bits"
)

// SpeakerArrangement is a bitmask of speaker positions, one bit per channel.
type SpeakerArrangement uint64

// Speaker positions and the arrangements built from them.
const (
	SpeakerL SpeakerArrangement = 1 << 0
	SpeakerR SpeakerArrangement = 1 << 1
	SpeakerM SpeakerArrangement = 1 << 19

	ArrangementEmpty  SpeakerArrangement = 0
	ArrangementMono                      = SpeakerM
	ArrangementStereo                    = SpeakerL | SpeakerR
)

// ChannelCount returns the number of channels in the arrangement.
func (a SpeakerArrangement) ChannelCount() int32 {
	return int32(bits.OnesCount64(uint64(a)))
}

// String names the common arrangements.
func (a SpeakerArrangement) String() string {
	switch a {
	case ArrangementEmpty:
		return "empty"
	case ArrangementMono:
		return "mono"
	case ArrangementStereo:
		return "stereo"
	default:
		return fmt.Sprintf("%d-channel(0x%x)", a.ChannelCount(), uint64(a))
	}
}

// ArrangementFor returns the default arrangement for a channel count.
func ArrangementFor(channels int32) SpeakerArrangement {
	switch {
	case channels <= 0:
		return ArrangementEmpty
	case channels == 1:
		return ArrangementMono
	case channels == 2:
		return ArrangementStereo
	}
	// Unnamed layouts fill positions from the left
	return SpeakerArrangement(uint64(1)<<uint(channels) - 1)
}

func (c *Configuration) audioBusesIn(direction Direction) []*Info {
	var out []*Info
	for i := range c.audioBuses {
		if c.audioBuses[i].Direction == direction {
			out = append(out, &c.audioBuses[i])
		}
	}
	return out
}

// Arrangement returns the current arrangement of an audio bus.
func (c *Configuration) Arrangement(direction Direction, index int32) (SpeakerArrangement, error) {
	info := c.GetBusInfo(MediaTypeAudio, direction, index)
	if info == nil {
		return ArrangementEmpty, fmt.Errorf("audio bus not found: direction=%d, index=%d", direction, index)
	}
	return ArrangementFor(info.ChannelCount), nil
}

// SupportsLayout reports whether the plugin can run with the given main-bus
// arrangements. The main output must be mono or stereo. Effects require the
// main input to match the main output; configurations without an audio
// input accept only an empty input list.
func (c *Configuration) SupportsLayout(inputs, outputs []SpeakerArrangement) bool {
	ins := c.audioBusesIn(DirectionInput)
	outs := c.audioBusesIn(DirectionOutput)

	if len(inputs) != len(ins) || len(outputs) != len(outs) {
		return false
	}
	if len(outs) == 0 {
		// Event-only plugins negotiate nothing
		return len(inputs) == 0
	}

	mainOut := outputs[0]
	if mainOut != ArrangementMono && mainOut != ArrangementStereo {
		return false
	}
	if len(ins) > 0 && inputs[0] != mainOut {
		return false
	}
	return true
}

// ApplyArrangements applies a supported layout, updating bus channel counts.
func (c *Configuration) ApplyArrangements(inputs, outputs []SpeakerArrangement) error {
	if !c.SupportsLayout(inputs, outputs) {
		return fmt.Errorf("%w: inputs=%v outputs=%v", ErrLayoutNotSupported, inputs, outputs)
	}
	for i, bus := range c.audioBusesIn(DirectionInput) {
		bus.ChannelCount = inputs[i].ChannelCount()
	}
	for i, bus := range c.audioBusesIn(DirectionOutput) {
		bus.ChannelCount = outputs[i].ChannelCount()
	}
	return nil
}
