package plugin

import (
	"errors"

	"github.com/google/uuid"
)

// Category names understood by hosts.
const (
	CategoryFx         = "Fx"
	CategoryInstrument = "Instrument"
)

// ErrEmptyID is returned when a plugin has no identifier to derive a UID from.
var ErrEmptyID = errors.New("plugin ID is empty")

// Info contains plugin metadata
type Info struct {
	ID       string // Unique plugin identifier (e.g., "com.example.myplugin")
	Name     string // Display name
	Version  string // Semantic version (e.g., "1.0.0")
	Vendor   string // Company/developer name
	Category string // Plugin category (e.g., "Fx", "Instrument")
}

// ClassID derives a name-based (SHA-1) UUID from the plugin ID, so the same
// ID always yields the same class identifier across builds.
func (i Info) ClassID() uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(i.ID))
}

// UID returns the 16-byte class identifier reported to the host.
func (i Info) UID() [16]byte {
	return [16]byte(i.ClassID())
}

// ValidateUID checks that a usable UID can be derived.
func (i Info) ValidateUID() error {
	if i.ID == "" {
		return ErrEmptyID
	}
	if i.UID() == [16]byte{} {
		return errors.New("derived UID is all zero")
	}
	return nil
}
