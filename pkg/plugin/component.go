package plugin

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/justyntemme/notelog/pkg/framework/bus"
	"github.com/justyntemme/notelog/pkg/framework/debug"
	"github.com/justyntemme/notelog/pkg/framework/plugin"
	"github.com/justyntemme/notelog/pkg/framework/process"
	"github.com/justyntemme/notelog/pkg/framework/program"
	"github.com/justyntemme/notelog/pkg/framework/state"
	"github.com/justyntemme/notelog/pkg/vst3"
)

// Component adapts a Processor to the host callback surface. Every exported
// method is a host entry point: panics are recovered and logged, and errors
// map onto host result codes with vst3.ResultFor.
type Component struct {
	id        uintptr
	info      plugin.Info
	processor Processor
	buses     *bus.Configuration
	programs  *program.Bank
	state     *state.Manager
	logger    *debug.Logger

	// mu guards the lifecycle flags; hosts call from UI and audio threads.
	mu          sync.Mutex
	setup       vst3.ProcessSetup
	initialized bool
	configured  bool
	active      bool
	processing  bool
}

func newComponent(info plugin.Info, p Processor, logger *debug.Logger) *Component {
	c := &Component{
		info:      info,
		processor: p,
		buses:     p.GetBuses(),
		logger:    logger,
	}
	if c.buses == nil {
		c.buses = bus.NewStereoConfiguration()
	}

	if pp, ok := p.(ProgramProvider); ok && pp.Programs() != nil {
		c.programs = pp.Programs()
	} else {
		c.programs = program.NewBank(1)
	}
	if sp, ok := p.(StateProvider); ok && sp.State() != nil {
		c.state = sp.State()
	} else {
		c.state = state.NewManager(c.programs)
	}
	return c
}

// recoverPanic stops a panic at the host boundary and reports it through err.
func (c *Component) recoverPanic(operation string, err *error) {
	if r := recover(); r != nil {
		c.logger.Error("panic in %s: %v", operation, r)
		if err != nil {
			*err = fmt.Errorf("panic in %s: %v", operation, r)
		}
	}
}

// ID returns the handle the component is registered under.
func (c *Component) ID() uintptr {
	return c.id
}

// Info returns the plugin metadata.
func (c *Component) Info() plugin.Info {
	return c.info
}

// Processor returns the wrapped processor.
func (c *Component) Processor() Processor {
	return c.processor
}

// Logger returns the instance logger.
func (c *Component) Logger() *debug.Logger {
	return c.logger
}

// Initialize is the first call a host makes on a new instance.
func (c *Component) Initialize() (err error) {
	defer c.recoverPanic("Initialize", &err)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialized = true
	c.logger.Debug("initialized %s %s", c.info.Name, c.info.Version)
	return nil
}

// Terminate stops processing and marks the instance unusable until
// Initialize is called again.
func (c *Component) Terminate() (err error) {
	defer c.recoverPanic("Terminate", &err)

	c.mu.Lock()
	active := c.active
	c.mu.Unlock()

	if active {
		if err := c.SetActive(false); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialized = false
	return nil
}

// GetBusCount returns the number of buses of a media type in a direction.
func (c *Component) GetBusCount(mediaType, direction int32) int32 {
	return c.buses.GetBusCount(bus.MediaType(mediaType), bus.Direction(direction))
}

// GetBusInfo describes a bus for the host.
func (c *Component) GetBusInfo(mediaType, direction, index int32) (*vst3.BusInfo, error) {
	info := c.buses.GetBusInfo(bus.MediaType(mediaType), bus.Direction(direction), index)
	if info == nil {
		return nil, fmt.Errorf("bus %d/%d/%d: %w", mediaType, direction, index, vst3.ErrInvalidArgument)
	}

	var flags uint32
	if info.IsActive {
		flags |= vst3.BusFlagDefaultActive
	}
	return &vst3.BusInfo{
		MediaType:    int32(info.MediaType),
		Direction:    int32(info.Direction),
		ChannelCount: info.ChannelCount,
		Name:         info.Name,
		BusType:      int32(info.BusType),
		Flags:        flags,
	}, nil
}

// ActivateBus enables or disables a bus at the host's request.
func (c *Component) ActivateBus(mediaType, direction, index int32, active bool) error {
	if err := c.buses.SetBusActive(bus.MediaType(mediaType), bus.Direction(direction), index, active); err != nil {
		return fmt.Errorf("%v: %w", err, vst3.ErrInvalidArgument)
	}
	return nil
}

// SetBusArrangements accepts or rejects a channel layout proposed by the host.
// On rejection the current layout is kept and the host is expected to query
// GetBusArrangement and retry.
func (c *Component) SetBusArrangements(inputs, outputs []int64) (err error) {
	defer c.recoverPanic("SetBusArrangements", &err)

	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	if active {
		return fmt.Errorf("bus arrangement while active: %w", vst3.ErrNotInitialized)
	}

	if err := c.buses.ApplyArrangements(toArrangements(inputs), toArrangements(outputs)); err != nil {
		c.logger.Debug("rejected layout: %v", err)
		return err
	}
	c.logger.Debug("accepted layout in=%v out=%v", inputs, outputs)
	return nil
}

func toArrangements(raw []int64) []bus.SpeakerArrangement {
	out := make([]bus.SpeakerArrangement, len(raw))
	for i, r := range raw {
		out[i] = bus.SpeakerArrangement(uint64(r))
	}
	return out
}

// GetBusArrangement returns the current speaker arrangement of an audio bus.
func (c *Component) GetBusArrangement(direction, index int32) (int64, error) {
	arr, err := c.buses.Arrangement(bus.Direction(direction), index)
	if err != nil {
		return 0, fmt.Errorf("%v: %w", err, vst3.ErrInvalidArgument)
	}
	return int64(arr), nil
}

// CanProcessSampleSize accepts 32-bit float processing only.
func (c *Component) CanProcessSampleSize(symbolicSampleSize int32) error {
	if symbolicSampleSize == vst3.SampleSize32 {
		return nil
	}
	return vst3.ErrNotImplemented
}

// SetupProcessing hands the processing setup to the processor.
func (c *Component) SetupProcessing(setup *vst3.ProcessSetup) (err error) {
	defer c.recoverPanic("SetupProcessing", &err)

	if setup == nil {
		return vst3.ErrInvalidArgument
	}
	if err := setup.Validate(); err != nil {
		return err
	}
	if err := c.CanProcessSampleSize(setup.SymbolicSampleSize); err != nil {
		return err
	}

	if err := c.processor.Initialize(setup.SampleRate, setup.MaxSamplesPerBlock); err != nil {
		return fmt.Errorf("initialize processor: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.setup = *setup
	c.configured = true
	c.logger.Debug("setup: %.0f Hz, %d samples per block", setup.SampleRate, setup.MaxSamplesPerBlock)
	return nil
}

// Setup returns the processing setup accepted by SetupProcessing.
func (c *Component) Setup() vst3.ProcessSetup {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setup
}

// SetActive activates or deactivates the processor. Activation requires
// a prior SetupProcessing; deactivation also stops processing.
func (c *Component) SetActive(active bool) (err error) {
	defer c.recoverPanic("SetActive", &err)

	c.mu.Lock()
	if active && !c.configured {
		c.mu.Unlock()
		return fmt.Errorf("activate before setup: %w", vst3.ErrNotInitialized)
	}
	if c.active == active {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.processor.SetActive(active); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = active
	if !active {
		c.processing = false
	}
	return nil
}

// IsActive reports whether the component is active.
func (c *Component) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// SetProcessing signals the start or end of the host's process calls.
func (c *Component) SetProcessing(processing bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if processing && !c.active {
		return fmt.Errorf("processing while inactive: %w", vst3.ErrNotInitialized)
	}
	c.processing = processing
	return nil
}

// IsProcessing reports whether the host has started processing.
func (c *Component) IsProcessing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

// Process runs one block through the processor. Input events are consumed.
func (c *Component) Process(ctx *process.Context) (err error) {
	defer c.recoverPanic("Process", &err)

	if ctx == nil {
		return vst3.ErrInvalidArgument
	}

	c.mu.Lock()
	active := c.active
	maxBlock := c.setup.MaxSamplesPerBlock
	c.mu.Unlock()

	if !active {
		return fmt.Errorf("process while inactive: %w", vst3.ErrNotInitialized)
	}
	if n := ctx.NumSamples(); n > int(maxBlock) {
		return fmt.Errorf("block of %d samples exceeds %d: %w", n, maxBlock, vst3.ErrInvalidArgument)
	}

	defer ctx.ClearInputEvents()
	c.processor.ProcessAudio(ctx)
	return nil
}

// GetLatencySamples returns the processor latency.
func (c *Component) GetLatencySamples() uint32 {
	return clampSamples(c.processor.GetLatencySamples())
}

// GetTailSamples returns the processor tail length.
func (c *Component) GetTailSamples() uint32 {
	return clampSamples(c.processor.GetTailSamples())
}

func clampSamples(n int32) uint32 {
	if n < 0 {
		return 0
	}
	return uint32(n)
}

// GetState writes the plugin state to the host stream.
func (c *Component) GetState(s *vst3.Stream) (err error) {
	defer c.recoverPanic("GetState", &err)

	if s == nil {
		return vst3.ErrInvalidArgument
	}
	var buf bytes.Buffer
	if err := c.state.Save(&buf); err != nil {
		return err
	}
	if _, err := s.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	c.logger.Debug("saved %d bytes of state", buf.Len())
	return nil
}

// SetState restores the plugin state from the host stream.
func (c *Component) SetState(s *vst3.Stream) (err error) {
	defer c.recoverPanic("SetState", &err)

	if s == nil {
		return vst3.ErrInvalidArgument
	}
	data, err := s.ReadAll()
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}
	if err := c.state.Load(bytes.NewReader(data)); err != nil {
		c.logger.Warn("rejected state: %v", err)
		return err
	}
	c.logger.Debug("restored %d bytes of state", len(data))
	return nil
}

// GetProgramCount returns the number of program slots.
func (c *Component) GetProgramCount() int32 {
	return int32(c.programs.Count())
}

// GetProgramName returns the name of a program slot.
func (c *Component) GetProgramName(index int32) (string, error) {
	if index < 0 || int(index) >= c.programs.Count() {
		return "", fmt.Errorf("program %d: %w", index, vst3.ErrInvalidArgument)
	}
	return c.programs.Name(int(index)), nil
}

// SetProgram selects a program slot.
func (c *Component) SetProgram(index int32) error {
	if !c.programs.SetCurrent(int(index)) {
		return fmt.Errorf("program %d: %w", index, vst3.ErrInvalidArgument)
	}
	return nil
}

// CurrentProgram returns the selected program slot.
func (c *Component) CurrentProgram() int32 {
	return int32(c.programs.Current())
}

// RenameProgram renames a program slot.
func (c *Component) RenameProgram(index int32, name string) error {
	if !c.programs.Rename(int(index), name) {
		return fmt.Errorf("program %d: %w", index, vst3.ErrInvalidArgument)
	}
	return nil
}

// AcceptsMIDI reports whether the plugin has an event input.
func (c *Component) AcceptsMIDI() bool {
	return c.buses.AcceptsEvents()
}

// ProducesMIDI reports whether the plugin has an event output.
func (c *Component) ProducesMIDI() bool {
	return c.buses.ProducesEvents()
}

// IsMIDIEffect reports whether the plugin has event buses and no audio.
func (c *Component) IsMIDIEffect() bool {
	return c.buses.IsEventOnly()
}

// HasEditor reports whether the plugin provides a GUI. None do.
func (c *Component) HasEditor() bool {
	return false
}
