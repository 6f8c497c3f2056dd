package notelog

import "sync"

// DefaultHistorySize is the number of lines kept when no size is configured.
const DefaultHistorySize = 64

// History keeps the most recent lines in a fixed-size ring.
type History struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

// NewHistory returns a ring holding up to size lines. size < 1 uses DefaultHistorySize.
func NewHistory(size int) *History {
	if size < 1 {
		size = DefaultHistorySize
	}
	return &History{lines: make([]string, size)}
}

// Add appends line, evicting the oldest line when full.
func (h *History) Add(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lines[h.next] = line
	h.next = (h.next + 1) % len(h.lines)
	if h.next == 0 {
		h.full = true
	}
}

// Lines returns the stored lines, oldest first.
func (h *History) Lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.linesLocked()
}

func (h *History) linesLocked() []string {
	if !h.full {
		out := make([]string, h.next)
		copy(out, h.lines[:h.next])
		return out
	}

	out := make([]string, 0, len(h.lines))
	out = append(out, h.lines[h.next:]...)
	out = append(out, h.lines[:h.next]...)
	return out
}

// Len returns the number of stored lines.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.full {
		return len(h.lines)
	}
	return h.next
}

// Cap returns the ring capacity.
func (h *History) Cap() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.lines)
}

// Resize changes the capacity, keeping the newest lines that still fit.
// size < 1 uses DefaultHistorySize.
func (h *History) Resize(size int) {
	if size < 1 {
		size = DefaultHistorySize
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	kept := h.linesLocked()
	if len(kept) > size {
		kept = kept[len(kept)-size:]
	}
	h.lines = make([]string, size)
	copy(h.lines, kept)
	h.next = len(kept) % size
	h.full = len(kept) == size
}

// Clear drops all stored lines.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.lines {
		h.lines[i] = ""
	}
	h.next = 0
	h.full = false
}
