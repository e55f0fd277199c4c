package dsp

import "math"

// EnvelopeStage is the ADSR state machine position.
type EnvelopeStage int

const (
	StageIdle EnvelopeStage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

// ADSR is a linear-attack, exponential-decay/release envelope. Release may
// be entered from any non-idle stage and always starts from the envelope's
// current value, so there is never a discontinuous jump at a stage
// transition (spec §4.3).
type ADSR struct {
	Attack, Decay, Sustain, Release float64 // seconds, except Sustain (0-1 level)

	stage        EnvelopeStage
	value        float64
	timeInStage  float64
	releaseLevel float64
	sampleRate   float64
}

// NewADSR creates an envelope with sane defaults for the given sample rate.
func NewADSR(sampleRate float64) *ADSR {
	return &ADSR{
		Attack:     0.01,
		Decay:      0.1,
		Sustain:    0.7,
		Release:    0.3,
		sampleRate: sampleRate,
		stage:      StageIdle,
	}
}

// Trigger starts (or re-starts) the envelope from the attack stage.
func (e *ADSR) Trigger() {
	e.stage = StageAttack
	e.timeInStage = 0
	// Legato re-attack keeps the current value as the attack's start point
	// rather than snapping to zero, per the "no discontinuous jump" rule.
}

// Release moves the envelope into its release stage from wherever it is.
func (e *ADSR) Release() {
	if e.stage != StageIdle && e.stage != StageRelease {
		e.releaseLevel = e.value
		e.stage = StageRelease
		e.timeInStage = 0
	}
}

// Reset snaps the envelope back to idle/zero immediately (used by choke).
func (e *ADSR) Reset() {
	e.stage = StageIdle
	e.value = 0
	e.timeInStage = 0
}

// IsActive reports whether the envelope is still producing sound.
func (e *ADSR) IsActive() bool {
	return e.stage != StageIdle
}

// Value returns the current envelope level without advancing it.
func (e *ADSR) Value() float64 {
	return e.value
}

// Stage exposes the current stage for diagnostics/tests.
func (e *ADSR) Stage() EnvelopeStage {
	return e.stage
}

// silenceThreshold is the point below which a released envelope is
// considered inactive (spec §3): 10^-4 linear.
const silenceThreshold = 1e-4

// Process advances the envelope by one sample and returns its new value.
func (e *ADSR) Process() float64 {
	dt := 1.0 / e.sampleRate

	switch e.stage {
	case StageIdle:
		e.value = 0

	case StageAttack:
		if e.Attack > 0 {
			e.value += dt / e.Attack
			if e.value >= 1.0 {
				e.value = 1.0
				e.stage = StageDecay
				e.timeInStage = 0
			}
		} else {
			e.value = 1.0
			e.stage = StageDecay
			e.timeInStage = 0
		}

	case StageDecay:
		if e.Decay > 0 {
			progress := e.timeInStage / e.Decay
			// Exponential decay toward sustain: blend geometrically rather
			// than linearly, matching the exponential D/R shape of §4.3.
			e.value = e.Sustain + (1.0-e.Sustain)*math.Exp(-5.0*progress)
			e.timeInStage += dt
			if progress >= 1.0 {
				e.value = e.Sustain
				e.stage = StageSustain
				e.timeInStage = 0
			}
		} else {
			e.value = e.Sustain
			e.stage = StageSustain
		}

	case StageSustain:
		e.value = e.Sustain

	case StageRelease:
		if e.Release > 0 {
			progress := e.timeInStage / e.Release
			e.value = e.releaseLevel * math.Exp(-5.0*progress)
			e.timeInStage += dt
			if progress >= 1.0 || e.value < silenceThreshold {
				e.value = 0
				e.stage = StageIdle
				e.timeInStage = 0
			}
		} else {
			e.value = 0
			e.stage = StageIdle
		}
	}

	return e.value
}

// SetSampleRate updates the envelope's time base (voices are re-created per
// generator lifetime, but shared presets may need this when cloned).
func (e *ADSR) SetSampleRate(sr float64) {
	e.sampleRate = sr
}
