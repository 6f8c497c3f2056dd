// Package program manages a plugin's program (preset) slots.
package program

import "sync"

// DefaultName is the name given to slots that were never renamed.
const DefaultName = "Default"

// Bank is a fixed list of named program slots with one current slot.
// Hosts expect at least one program even when a plugin has no presets.
type Bank struct {
	mu      sync.RWMutex
	names   []string
	current int
}

// NewBank returns a bank with count slots named DefaultName. count < 1 yields one slot.
func NewBank(count int) *Bank {
	if count < 1 {
		count = 1
	}
	names := make([]string, count)
	for i := range names {
		names[i] = DefaultName
	}
	return &Bank{names: names}
}

// Count returns the number of slots.
func (b *Bank) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.names)
}

// Current returns the selected slot index.
func (b *Bank) Current() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// SetCurrent selects slot index. Out-of-range indices are ignored and
// reported as false.
func (b *Bank) SetCurrent(index int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.names) {
		return false
	}
	b.current = index
	return true
}

// Name returns the name of slot index, or "" when out of range.
func (b *Bank) Name(index int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if index < 0 || index >= len(b.names) {
		return ""
	}
	return b.names[index]
}

// Rename sets the name of slot index. Out-of-range indices are ignored.
func (b *Bank) Rename(index int, name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.names) {
		return false
	}
	b.names[index] = name
	return true
}

// Names returns a copy of all slot names.
func (b *Bank) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// Restore replaces slot names and the current index from saved state.
// Extra saved names are dropped; missing ones keep their current names.
// A saved index outside the bank selects slot 0.
func (b *Bank) Restore(names []string, current int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	copy(b.names, names)
	if current < 0 || current >= len(b.names) {
		current = 0
	}
	b.current = current
}
