package plugin

import (
	"bytes"
	"errors"
	"testing"

	"github.com/justyntemme/notelog/pkg/framework/bus"
	"github.com/justyntemme/notelog/pkg/framework/process"
	"github.com/justyntemme/notelog/pkg/framework/program"
	"github.com/justyntemme/notelog/pkg/midi"
	"github.com/justyntemme/notelog/pkg/vst3"
)

func newTestComponent(t *testing.T, p *testPlugin) (*Component, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	withPlugin(t, p, Config{Output: &logs})

	c, err := CreateInstance(p.info.UID())
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	t.Cleanup(func() { Release(c.ID()) })

	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return c, &logs
}

func activate(t *testing.T, c *Component, maxBlock int32) {
	t.Helper()
	setup := &vst3.ProcessSetup{
		ProcessMode:        vst3.ProcessModeRealtime,
		SymbolicSampleSize: vst3.SampleSize32,
		MaxSamplesPerBlock: maxBlock,
		SampleRate:         48000,
	}
	if err := c.SetupProcessing(setup); err != nil {
		t.Fatalf("SetupProcessing failed: %v", err)
	}
	if err := c.SetActive(true); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	if err := c.SetProcessing(true); err != nil {
		t.Fatalf("SetProcessing failed: %v", err)
	}
}

func stereoBlock(n int) *process.Context {
	ctx := process.NewContext(48000)
	ctx.Input = [][]float32{make([]float32, n), make([]float32, n)}
	ctx.Output = [][]float32{make([]float32, n), make([]float32, n)}
	return ctx
}

func TestComponentBuses(t *testing.T) {
	c, _ := newTestComponent(t, &testPlugin{info: testInfo, buses: bus.NewEffectWithMIDI})

	tests := []struct {
		name      string
		mediaType int32
		direction int32
		want      int32
	}{
		{"audio in", vst3.MediaTypeAudio, vst3.BusDirectionInput, 1},
		{"audio out", vst3.MediaTypeAudio, vst3.BusDirectionOutput, 1},
		{"event in", vst3.MediaTypeEvent, vst3.BusDirectionInput, 1},
		{"event out", vst3.MediaTypeEvent, vst3.BusDirectionOutput, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.GetBusCount(tt.mediaType, tt.direction); got != tt.want {
				t.Errorf("GetBusCount() = %d, want %d", got, tt.want)
			}
		})
	}

	info, err := c.GetBusInfo(vst3.MediaTypeAudio, vst3.BusDirectionOutput, 0)
	if err != nil {
		t.Fatalf("GetBusInfo failed: %v", err)
	}
	if info.ChannelCount != 2 || info.BusType != vst3.BusTypeMain || info.Flags&vst3.BusFlagDefaultActive == 0 {
		t.Errorf("GetBusInfo() = %+v", info)
	}

	if _, err := c.GetBusInfo(vst3.MediaTypeAudio, vst3.BusDirectionOutput, 5); vst3.ResultFor(err) != vst3.ResultInvalidArg {
		t.Errorf("GetBusInfo(out of range) error = %v", err)
	}

	if err := c.ActivateBus(vst3.MediaTypeEvent, vst3.BusDirectionInput, 0, false); err != nil {
		t.Errorf("ActivateBus failed: %v", err)
	}
	if err := c.ActivateBus(vst3.MediaTypeEvent, vst3.BusDirectionOutput, 0, true); !errors.Is(err, vst3.ErrInvalidArgument) {
		t.Errorf("ActivateBus(missing) error = %v", err)
	}

	if !c.AcceptsMIDI() || c.ProducesMIDI() || c.IsMIDIEffect() || c.HasEditor() {
		t.Error("Unexpected capability flags")
	}
}

func TestComponentArrangements(t *testing.T) {
	c, _ := newTestComponent(t, &testPlugin{info: testInfo})

	mono := int64(bus.ArrangementMono)
	stereo := int64(bus.ArrangementStereo)

	tests := []struct {
		name    string
		inputs  []int64
		outputs []int64
		wantOK  bool
	}{
		{"stereo", []int64{stereo}, []int64{stereo}, true},
		{"mono", []int64{mono}, []int64{mono}, true},
		{"mismatched", []int64{mono}, []int64{stereo}, false},
		{"surround", []int64{0x3F}, []int64{0x3F}, false},
		{"missing input", nil, []int64{stereo}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.SetBusArrangements(tt.inputs, tt.outputs)
			if (err == nil) != tt.wantOK {
				t.Errorf("SetBusArrangements() error = %v, wantOK %v", err, tt.wantOK)
			}
			if err != nil && vst3.ResultFor(err) != vst3.ResultFalse {
				t.Errorf("Rejected layout result = %d, want ResultFalse", vst3.ResultFor(err))
			}
		})
	}

	// Last accepted layout was mono and must have survived the rejections.
	got, err := c.GetBusArrangement(vst3.BusDirectionOutput, 0)
	if err != nil || got != mono {
		t.Errorf("GetBusArrangement() = %#x, %v; want mono", got, err)
	}
	if _, err := c.GetBusArrangement(vst3.BusDirectionOutput, 3); err == nil {
		t.Error("Expected error for missing bus")
	}
}

func TestComponentSampleSize(t *testing.T) {
	c, _ := newTestComponent(t, &testPlugin{info: testInfo})

	if err := c.CanProcessSampleSize(vst3.SampleSize32); err != nil {
		t.Errorf("32-bit should be supported: %v", err)
	}
	if err := c.CanProcessSampleSize(vst3.SampleSize64); vst3.ResultFor(err) != vst3.ResultNotImplemented {
		t.Errorf("64-bit result = %d, want ResultNotImplemented", vst3.ResultFor(err))
	}

	err := c.SetupProcessing(&vst3.ProcessSetup{SymbolicSampleSize: vst3.SampleSize64, MaxSamplesPerBlock: 64, SampleRate: 44100})
	if err == nil {
		t.Error("SetupProcessing should reject 64-bit processing")
	}
	if err := c.SetupProcessing(nil); !errors.Is(err, vst3.ErrInvalidArgument) {
		t.Errorf("SetupProcessing(nil) error = %v", err)
	}
}

func TestComponentLifecycle(t *testing.T) {
	c, _ := newTestComponent(t, &testPlugin{info: testInfo})

	if err := c.SetActive(true); !errors.Is(err, vst3.ErrNotInitialized) {
		t.Errorf("SetActive before setup error = %v", err)
	}
	if err := c.SetProcessing(true); !errors.Is(err, vst3.ErrNotInitialized) {
		t.Errorf("SetProcessing while inactive error = %v", err)
	}
	if err := c.Process(stereoBlock(16)); !errors.Is(err, vst3.ErrNotInitialized) {
		t.Errorf("Process while inactive error = %v", err)
	}

	activate(t, c, 64)
	if !c.IsActive() || !c.IsProcessing() {
		t.Fatal("Component should be active and processing")
	}
	if c.Setup().SampleRate != 48000 {
		t.Errorf("Setup().SampleRate = %v", c.Setup().SampleRate)
	}

	if err := c.SetBusArrangements([]int64{int64(bus.ArrangementMono)}, []int64{int64(bus.ArrangementMono)}); err == nil {
		t.Error("Arrangement change while active should fail")
	}

	if err := c.Process(stereoBlock(128)); !errors.Is(err, vst3.ErrInvalidArgument) {
		t.Errorf("Oversized block error = %v", err)
	}
	if err := c.Process(nil); !errors.Is(err, vst3.ErrInvalidArgument) {
		t.Errorf("Process(nil) error = %v", err)
	}

	if err := c.Terminate(); err != nil {
		t.Fatalf("Terminate failed: %v", err)
	}
	if c.IsActive() || c.IsProcessing() {
		t.Error("Terminate should deactivate the component")
	}
}

func TestComponentProcessConsumesEvents(t *testing.T) {
	var seen []midi.NoteOnEvent
	c, _ := newTestComponent(t, &testPlugin{info: testInfo, processFn: func(ctx *process.Context) {
		seen = append(seen, ctx.InputNoteOns()...)
		ctx.ClearUnmatchedOutputs()
	}})
	activate(t, c, 64)

	ctx := stereoBlock(32)
	ctx.AddInputEvent(midi.NoteOnEvent{BaseEvent: midi.BaseEvent{Offset: 3}, NoteNumber: 64, Velocity: 90})

	if err := c.Process(ctx); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(seen) != 1 || seen[0].NoteNumber != 64 {
		t.Errorf("Processor saw %v", seen)
	}
	if ctx.HasInputEvents() {
		t.Error("Process should consume input events")
	}
}

func TestComponentRecoversPanics(t *testing.T) {
	c, logs := newTestComponent(t, &testPlugin{info: testInfo, processFn: func(*process.Context) {
		panic("boom")
	}})
	activate(t, c, 64)

	err := c.Process(stereoBlock(8))
	if err == nil {
		t.Fatal("Expected panic to be reported as an error")
	}
	if vst3.ResultFor(err) != vst3.ResultFalse {
		t.Errorf("Panic result = %d, want ResultFalse", vst3.ResultFor(err))
	}
	if !bytes.Contains(logs.Bytes(), []byte("panic in Process: boom")) {
		t.Errorf("Panic not logged: %q", logs.String())
	}
}

func TestComponentPrograms(t *testing.T) {
	c, _ := newTestComponent(t, &testPlugin{info: testInfo})

	if c.GetProgramCount() != 1 {
		t.Fatalf("GetProgramCount() = %d, want 1", c.GetProgramCount())
	}
	name, err := c.GetProgramName(0)
	if err != nil || name != program.DefaultName {
		t.Errorf("GetProgramName(0) = %q, %v", name, err)
	}
	if _, err := c.GetProgramName(1); !errors.Is(err, vst3.ErrInvalidArgument) {
		t.Errorf("GetProgramName(1) error = %v", err)
	}
	if err := c.RenameProgram(0, "Init"); err != nil {
		t.Errorf("RenameProgram failed: %v", err)
	}
	if err := c.SetProgram(0); err != nil || c.CurrentProgram() != 0 {
		t.Errorf("SetProgram(0) = %v", err)
	}
	if err := c.SetProgram(4); !errors.Is(err, vst3.ErrInvalidArgument) {
		t.Errorf("SetProgram(4) error = %v", err)
	}
}

// memStream is a non-seekable host stream.
type memStream struct {
	bytes.Buffer
}

func TestComponentStateRoundTrip(t *testing.T) {
	c, _ := newTestComponent(t, &testPlugin{info: testInfo})
	if err := c.RenameProgram(0, "Saved"); err != nil {
		t.Fatal(err)
	}

	var host memStream
	if err := c.GetState(vst3.NewStream(&host)); err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if err := c.RenameProgram(0, "Changed"); err != nil {
		t.Fatal(err)
	}

	if err := c.SetState(vst3.NewStream(&host)); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if name, _ := c.GetProgramName(0); name != "Saved" {
		t.Errorf("Program name after restore = %q, want Saved", name)
	}

	if err := c.SetState(vst3.NewStream(&memStream{})); err != nil {
		t.Errorf("Empty state should be accepted: %v", err)
	}
	bad := &memStream{}
	bad.WriteString("garbage!")
	if err := c.SetState(vst3.NewStream(bad)); err == nil {
		t.Error("Expected garbage state to be rejected")
	}
	if err := c.GetState(nil); !errors.Is(err, vst3.ErrInvalidArgument) {
		t.Errorf("GetState(nil) error = %v", err)
	}
}

func TestComponentLatencyAndTail(t *testing.T) {
	c, _ := newTestComponent(t, &testPlugin{info: testInfo})
	if c.GetLatencySamples() != 0 || c.GetTailSamples() != 0 {
		t.Error("Expected zero latency and tail")
	}
	if clampSamples(-5) != 0 || clampSamples(7) != 7 {
		t.Error("clampSamples mismatch")
	}
}
