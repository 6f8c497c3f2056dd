// Package timecode converts elapsed seconds into wall-clock style timecodes
// for MIDI event logging.
package timecode

import (
	"fmt"
	"math"
)

const (
	secondsPerHour   = 3600
	secondsPerMinute = 60
	hoursPerDay      = 24

	// boundaryULPs is how far, in units in the last place, a scaled value may
	// sit below a whole millisecond and still count as on it
	// (1.001*1000 evaluates to 1000.9999999999999).
	boundaryULPs = 4
)

// Parts holds the individual fields of a timecode.
type Parts struct {
	Hours        int
	Minutes      int
	Seconds      int
	Milliseconds int
}

// Split breaks seconds into hours (mod 24), minutes (mod 60), seconds (mod 60)
// and the millisecond remainder. Negative, NaN and infinite inputs yield zero.
func Split(seconds float64) Parts {
	if !valid(seconds) {
		return Parts{}
	}

	millis := int64(truncateMillis(seconds * 1000))
	whole := millis / 1000

	return Parts{
		Hours:        int((whole / secondsPerHour) % hoursPerDay),
		Minutes:      int((whole / secondsPerMinute) % 60),
		Seconds:      int(whole % 60),
		Milliseconds: int(millis % 1000),
	}
}

// Format returns seconds as a zero-padded HH:MM:SS:mmm string.
func Format(seconds float64) string {
	return Split(seconds).String()
}

// String formats the parts as HH:MM:SS:mmm.
func (p Parts) String() string {
	return fmt.Sprintf("%02d:%02d:%02d:%03d", p.Hours, p.Minutes, p.Seconds, p.Milliseconds)
}

// truncateMillis floors ms, snapping up only values that are a few ulps short
// of the next whole millisecond. Anything further below truncates.
func truncateMillis(ms float64) float64 {
	next := math.Ceil(ms)
	if next-ms <= boundaryULPs*(math.Nextafter(ms, math.Inf(1))-ms) {
		return next
	}
	return math.Floor(ms)
}

func valid(seconds float64) bool {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return false
	}
	// int64 conversion of anything this large is undefined
	if seconds < 0 || seconds >= math.MaxInt64/1000 {
		return false
	}
	return true
}
