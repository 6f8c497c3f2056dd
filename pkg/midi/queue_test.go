package midi

import (
	"testing"
)

func TestEventQueue(t *testing.T) {
	q := NewEventQueue()

	if !q.IsEmpty() {
		t.Error("Expected queue to be empty")
	}

	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 100}, NoteNumber: 60, Velocity: 100})
	q.Add(NoteOffEvent{BaseEvent: BaseEvent{Offset: 200}, NoteNumber: 60, Velocity: 0})
	q.Add(ControlChangeEvent{BaseEvent: BaseEvent{Offset: 50}, Controller: CCSustain, Value: 127})

	if q.Size() != 3 {
		t.Errorf("Expected size 3, got %d", q.Size())
	}

	q.Clear()
	if !q.IsEmpty() {
		t.Error("Expected queue to be empty after Clear")
	}
}

func TestEventQueueSorting(t *testing.T) {
	q := NewEventQueue()

	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 300}, NoteNumber: 62, Velocity: 100})
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 100}, NoteNumber: 60, Velocity: 100})
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 200}, NoteNumber: 61, Velocity: 100})

	events := q.GetAllEvents()
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}

	offsets := []int32{100, 200, 300}
	for i, event := range events {
		if event.SampleOffset() != offsets[i] {
			t.Errorf("Event %d: expected offset %d, got %d", i, offsets[i], event.SampleOffset())
		}
	}
}

func TestEventQueueRange(t *testing.T) {
	q := NewEventQueue()
	for _, off := range []int32{0, 64, 128, 256, 511} {
		q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: off}, NoteNumber: 60, Velocity: 100})
	}

	tests := []struct {
		start, end int32
		want       int
	}{
		{0, 512, 5},
		{0, 64, 1},
		{64, 256, 2},
		{300, 500, 0},
		{600, 700, 0},
	}

	for _, tt := range tests {
		if got := len(q.GetEventsInRange(tt.start, tt.end)); got != tt.want {
			t.Errorf("GetEventsInRange(%d, %d) returned %d events, want %d", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestEventQueueNoteOns(t *testing.T) {
	q := NewEventQueue()
	q.Add(ControlChangeEvent{BaseEvent: BaseEvent{Offset: 10}, Controller: CCModWheel, Value: 1})
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 20}, NoteNumber: 64, Velocity: 90})
	q.Add(NoteOffEvent{BaseEvent: BaseEvent{Offset: 30}, NoteNumber: 64})
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 5}, NoteNumber: 60, Velocity: 80})

	notes := q.NoteOns()
	if len(notes) != 2 {
		t.Fatalf("Expected 2 note-ons, got %d", len(notes))
	}
	if notes[0].NoteNumber != 60 || notes[1].NoteNumber != 64 {
		t.Errorf("Note-ons out of order: %v", notes)
	}
}
