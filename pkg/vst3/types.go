// Package vst3 defines the host-facing types of the plugin callback surface:
// result codes, bus and processing descriptors, and the host stream adapter.
package vst3

import "errors"

// Result codes returned to the host.
const (
	ResultOK             = 0
	ResultTrue           = 0
	ResultFalse          = 1
	ResultInvalidArg     = 2
	ResultNotImplemented = 3
)

// Error is an error that maps directly onto a host result code.
type Error int

const (
	ErrNotImplemented  Error = -1
	ErrInvalidArgument Error = -2
	ErrNotInitialized  Error = -3
)

func (e Error) Error() string {
	switch e {
	case ErrNotImplemented:
		return "not implemented"
	case ErrInvalidArgument:
		return "invalid argument"
	case ErrNotInitialized:
		return "not initialized"
	default:
		return "unknown error"
	}
}

// ResultFor maps err to the result code reported to the host.
func ResultFor(err error) int32 {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, ErrInvalidArgument):
		return ResultInvalidArg
	case errors.Is(err, ErrNotImplemented):
		return ResultNotImplemented
	default:
		return ResultFalse
	}
}

// Media types
const (
	MediaTypeAudio int32 = 0
	MediaTypeEvent int32 = 1
)

// Bus directions
const (
	BusDirectionInput  int32 = 0
	BusDirectionOutput int32 = 1
)

// Bus types
const (
	BusTypeMain int32 = 0
	BusTypeAux  int32 = 1
)

// BusFlagDefaultActive marks a bus the host should activate on load.
const BusFlagDefaultActive uint32 = 1

// Symbolic sample sizes
const (
	SampleSize32 int32 = 0
	SampleSize64 int32 = 1
)

// Process modes
const (
	ProcessModeRealtime int32 = 0
	ProcessModePrefetch int32 = 1
	ProcessModeOffline  int32 = 2
)

// ProcessSetup contains audio processing configuration
type ProcessSetup struct {
	ProcessMode        int32
	SymbolicSampleSize int32
	MaxSamplesPerBlock int32
	SampleRate         float64
}

// Validate rejects setups no processor can run with.
func (s ProcessSetup) Validate() error {
	if s.SampleRate <= 0 || s.MaxSamplesPerBlock <= 0 {
		return ErrInvalidArgument
	}
	return nil
}

// BusInfo describes a bus as reported to the host.
type BusInfo struct {
	MediaType    int32
	Direction    int32
	ChannelCount int32
	Name         string
	BusType      int32
	Flags        uint32
}
