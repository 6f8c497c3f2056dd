package midi

import (
	"sort"
	"sync"
)

// EventQueue orders events by sample offset within a processing block.
type EventQueue struct {
	events []Event
	mu     sync.Mutex
	sorted bool
}

func NewEventQueue() *EventQueue {
	return &EventQueue{
		events: make([]Event, 0, 128),
		sorted: true,
	}
}

func (q *EventQueue) Add(event Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = append(q.events, event)
	q.sorted = false
}

// GetEventsInRange returns a copy of the events with startSample <= offset < endSample.
func (q *EventQueue) GetEventsInRange(startSample, endSample int32) []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.sortLocked()

	startIdx := sort.Search(len(q.events), func(i int) bool {
		return q.events[i].SampleOffset() >= startSample
	})
	endIdx := sort.Search(len(q.events), func(i int) bool {
		return q.events[i].SampleOffset() >= endSample
	})
	if startIdx >= endIdx {
		return nil
	}

	result := make([]Event, endIdx-startIdx)
	copy(result, q.events[startIdx:endIdx])
	return result
}

func (q *EventQueue) GetAllEvents() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.sortLocked()

	result := make([]Event, len(q.events))
	copy(result, q.events)
	return result
}

// NoteOns returns the queued note-on events in offset order.
func (q *EventQueue) NoteOns() []NoteOnEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.sortLocked()

	var notes []NoteOnEvent
	for _, e := range q.events {
		if on, ok := e.(NoteOnEvent); ok {
			notes = append(notes, on)
		}
	}
	return notes
}

func (q *EventQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = q.events[:0]
	q.sorted = true
}

func (q *EventQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

func (q *EventQueue) IsEmpty() bool {
	return q.Size() == 0
}

func (q *EventQueue) sortLocked() {
	if q.sorted {
		return
	}
	sort.SliceStable(q.events, func(i, j int) bool {
		return q.events[i].SampleOffset() < q.events[j].SampleOffset()
	})
	q.sorted = true
}
