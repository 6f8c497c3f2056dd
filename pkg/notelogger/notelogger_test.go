package notelogger

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/justyntemme/notelog/pkg/framework/bus"
	"github.com/justyntemme/notelog/pkg/framework/debug"
	"github.com/justyntemme/notelog/pkg/framework/process"
	"github.com/justyntemme/notelog/pkg/midi"
	"github.com/justyntemme/notelog/pkg/notelog"
	"github.com/justyntemme/notelog/pkg/plugin"
	"github.com/justyntemme/notelog/pkg/timecode"
)

type recordingSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *recordingSink) LogMessage(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
}

func (s *recordingSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func newTestProcessor(t *testing.T) (*Processor, *recordingSink, *timecode.ManualClock) {
	t.Helper()
	sink := &recordingSink{}
	clock := timecode.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	p, err := NewProcessor(sink, notelog.WithClock(clock))
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}
	return p, sink, clock
}

func TestPluginInfo(t *testing.T) {
	info := (&Plugin{}).GetInfo()
	if info.Name != "NoteLogger" || info.Category != "Fx" {
		t.Errorf("GetInfo() = %+v", info)
	}
	if err := info.ValidateUID(); err != nil {
		t.Errorf("ValidateUID() = %v", err)
	}
}

func TestProcessorCapabilities(t *testing.T) {
	p, _, _ := newTestProcessor(t)
	buses := p.GetBuses()

	if !buses.AcceptsEvents() || buses.ProducesEvents() || buses.IsEventOnly() {
		t.Error("Expected an audio effect with MIDI input only")
	}
	if buses.GetBusCount(bus.MediaTypeAudio, bus.DirectionInput) != 1 ||
		buses.GetBusCount(bus.MediaTypeAudio, bus.DirectionOutput) != 1 {
		t.Error("Expected one stereo input and output bus")
	}
	if p.GetTailSamples() != 0 || p.GetLatencySamples() != 0 {
		t.Error("Expected zero tail and latency")
	}
	if p.Programs().Count() != 1 {
		t.Errorf("Programs().Count() = %d, want 1", p.Programs().Count())
	}
}

func TestTriggerNote(t *testing.T) {
	p, sink, clock := newTestProcessor(t)

	clock.Advance(time.Hour + time.Minute + time.Second + 234*time.Millisecond)
	event, err := p.TriggerNote(60)
	if err != nil {
		t.Fatalf("TriggerNote failed: %v", err)
	}

	if event.NoteNumber != 60 || event.Velocity != 100 || event.Channel() != notelog.DefaultChannel {
		t.Errorf("TriggerNote() = %+v", event)
	}
	want := []string{"01:01:01:234 - Note on C4 Velocity 100 Channel 10"}
	if got := sink.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Logged %v, want %v", got, want)
	}

	if _, err := p.TriggerNote(200); err == nil {
		t.Error("Expected error for note out of range")
	}
	if len(sink.Lines()) != 1 {
		t.Error("Invalid note should not be logged")
	}
}

func TestProcessAudioClearsUnmatchedOutputs(t *testing.T) {
	p, sink, _ := newTestProcessor(t)

	ctx := process.NewContext(48000)
	ctx.Input = [][]float32{{0.5, 0.5}}
	ctx.Output = [][]float32{{0.25, 0.25}, {0.9, 0.9}}
	ctx.AddInputEvent(midi.NoteOnEvent{NoteNumber: 60, Velocity: 100})

	p.ProcessAudio(ctx)

	if ctx.Output[0][0] != 0.25 {
		t.Error("Output with matching input should be untouched")
	}
	if ctx.Output[1][0] != 0 || ctx.Output[1][1] != 0 {
		t.Error("Output without input should be cleared")
	}
	if len(sink.Lines()) != 0 {
		t.Error("Incoming notes should not be logged unless enabled")
	}
}

func TestProcessAudioLogsIncoming(t *testing.T) {
	p, sink, clock := newTestProcessor(t)
	p.SetLogIncoming(true)
	clock.Advance(2500 * time.Millisecond)

	ctx := process.NewContext(48000)
	ctx.Output = [][]float32{make([]float32, 8)}
	ctx.AddInputEvent(midi.NoteOffEvent{BaseEvent: midi.BaseEvent{Offset: 1}, NoteNumber: 60})
	ctx.AddInputEvent(midi.NoteOnEvent{BaseEvent: midi.BaseEvent{Offset: 4, EventChannel: 2}, NoteNumber: 69, Velocity: 80})

	p.ProcessAudio(ctx)

	want := []string{"00:00:02:500 - Note on A4 Velocity 80 Channel 3"}
	if got := sink.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Logged %v, want %v", got, want)
	}
}

func TestDefaultsToInstanceLogger(t *testing.T) {
	var out bytes.Buffer
	logger := debug.New(&out, "NoteLogger", debug.FlagLevel|debug.FlagPrefix)

	p, err := NewProcessor(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Configure(plugin.Config{LogIncoming: true}, logger); err != nil {
		t.Fatal(err)
	}

	if _, err := p.TriggerNote(61); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "[INFO] [NoteLogger] 00:00:00:") ||
		!strings.Contains(out.String(), "Note on C#4 Velocity 100 Channel 10") {
		t.Errorf("Instance logger output = %q", out.String())
	}
}

func TestStateRoundTrip(t *testing.T) {
	src, err := NewProcessor(nil, notelog.WithHistorySize(12))
	if err != nil {
		t.Fatal(err)
	}
	src.Programs().Rename(0, "Session")

	var buf bytes.Buffer
	if err := src.State().Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	dst, _, _ := newTestProcessor(t)
	if err := dst.State().Load(&buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if dst.Notes().History().Cap() != 12 {
		t.Errorf("History cap = %d, want 12", dst.Notes().History().Cap())
	}
	if dst.Programs().Name(0) != "Session" {
		t.Errorf("Program name = %q, want Session", dst.Programs().Name(0))
	}
}

func TestLoadRejectsBadHistorySize(t *testing.T) {
	p, _, _ := newTestProcessor(t)

	for _, size := range []uint32{0, maxHistorySize + 1} {
		var buf bytes.Buffer
		_ = binary.Write(&buf, binary.LittleEndian, size)
		if err := p.loadState(&buf); err == nil {
			t.Errorf("loadState(%d) should fail", size)
		}
	}
	if err := p.loadState(bytes.NewReader(nil)); err == nil {
		t.Error("loadState of empty reader should fail")
	}
}

func TestCreateProcessor(t *testing.T) {
	proc := (&Plugin{}).CreateProcessor()
	if _, ok := proc.(*Processor); !ok {
		t.Fatalf("CreateProcessor() = %T", proc)
	}

	bad := &Plugin{Options: []notelog.Option{notelog.WithVelocity(200)}}
	if bad.CreateProcessor() != nil {
		t.Error("Invalid options should yield no processor")
	}
}
