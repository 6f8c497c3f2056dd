package plugin

import (
	"github.com/justyntemme/notelog/pkg/framework/program"
	"github.com/justyntemme/notelog/pkg/framework/state"
)

// Base bundles the metadata, program slots and state manager every plugin carries.
type Base struct {
	Info     Info
	programs *program.Bank
	state    *state.Manager
}

// NewBase creates a plugin base with the given number of program slots.
func NewBase(info Info, programs int) *Base {
	bank := program.NewBank(programs)
	return &Base{
		Info:     info,
		programs: bank,
		state:    state.NewManager(bank),
	}
}

// Programs returns the program bank.
func (b *Base) Programs() *program.Bank {
	return b.programs
}

// State returns the state manager backing GetState/SetState.
func (b *Base) State() *state.Manager {
	return b.state
}
