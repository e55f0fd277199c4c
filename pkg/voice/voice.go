// Package voice implements the polyphonic voice-management discipline
// shared by every generator family: allocation, legato re-trigger, and
// oldest-first stealing under a fixed polyphony cap (spec §4.2).
package voice

import "math"

// Config is an immutable snapshot of the parameters a voice needs at
// trigger time. Re-architected per spec §9's Design Note to avoid any
// back-reference from a Voice to its owning generator: the generator
// copies whatever it needs into a Config and the voice never reaches back
// out for live parameter reads mid-note.
type Config struct {
	Note      int
	Velocity  int
	Channel   int
	Frequency float64
}

// Voice is the generic per-note state every generator embeds alongside its
// own algorithm-specific fields (phase accumulators, delay lines, operator
// state, ...). Embed *Voice by value in a generator-specific voice struct
// and use State for that algorithm-specific payload.
type Voice struct {
	Note     int
	Velocity int
	Channel  int

	Active  bool
	Release bool

	// TriggerSeq is the monotonically increasing sequence number issued by
	// the owning Pool at trigger time; it is the steal tie-break key
	// (spec §4.2), replacing a wall-clock timestamp per the §9 Design Note.
	TriggerSeq uint64

	// State is the generator-specific payload (envelope, phase, delay
	// line, ...), set up by the generator's allocate/trigger callback.
	State interface{}
}

// Frequency returns the equal-tempered frequency for the voice's note.
func (v *Voice) Frequency() float64 {
	return noteToFrequency(v.Note)
}

func noteToFrequency(note int) float64 {
	// Mirrors generator.Frequency without importing pkg/generator, to keep
	// this package dependency-free and reusable outside a full generator.
	return 440.0 * math.Pow(2.0, (float64(note)-69.0)/12.0)
}
