package dsp

import "math"

// DAHDSRStage is the DAHDSR state machine position.
type DAHDSRStage int

const (
	DAHDSRIdle DAHDSRStage = iota
	DAHDSRDelay
	DAHDSRAttack
	DAHDSRHold
	DAHDSRDecay
	DAHDSRSustain
	DAHDSRRelease
)

// DAHDSR extends ADSR with a pre-attack Delay stage (holds at 0) and a
// post-attack Hold stage (holds at 1), the six-stage envelope SF2's
// volEnv generators describe (spec §4.12, "Envelope DAHDSR per §4.3").
// Decay/Release share ADSR's exponential-toward-target shape.
type DAHDSR struct {
	Delay, Attack, Hold, Decay, Sustain, Release float64 // seconds, Sustain is 0-1

	stage        DAHDSRStage
	value        float64
	timeInStage  float64
	releaseLevel float64
	sampleRate   float64
}

// NewDAHDSR creates an envelope with sane defaults for the given sample rate.
func NewDAHDSR(sampleRate float64) *DAHDSR {
	return &DAHDSR{Sustain: 1.0, sampleRate: sampleRate, stage: DAHDSRIdle}
}

// Trigger starts the envelope from its delay stage (or attack directly if
// Delay is 0).
func (e *DAHDSR) Trigger() {
	e.timeInStage = 0
	if e.Delay > 0 {
		e.stage = DAHDSRDelay
	} else {
		e.stage = DAHDSRAttack
	}
}

// Release moves the envelope into its release stage from wherever it is.
func (e *DAHDSR) Release() {
	if e.stage != DAHDSRIdle && e.stage != DAHDSRRelease {
		e.releaseLevel = e.value
		e.stage = DAHDSRRelease
		e.timeInStage = 0
	}
}

// Reset snaps the envelope back to idle/zero immediately.
func (e *DAHDSR) Reset() {
	e.stage = DAHDSRIdle
	e.value = 0
	e.timeInStage = 0
}

// IsActive reports whether the envelope is still producing sound.
func (e *DAHDSR) IsActive() bool { return e.stage != DAHDSRIdle }

// Value returns the current envelope level without advancing it.
func (e *DAHDSR) Value() float64 { return e.value }

// Process advances the envelope by one sample and returns its new value.
func (e *DAHDSR) Process() float64 {
	dt := 1.0 / e.sampleRate

	switch e.stage {
	case DAHDSRIdle:
		e.value = 0

	case DAHDSRDelay:
		e.value = 0
		e.timeInStage += dt
		if e.timeInStage >= e.Delay {
			e.stage = DAHDSRAttack
			e.timeInStage = 0
		}

	case DAHDSRAttack:
		if e.Attack > 0 {
			e.value += dt / e.Attack
			if e.value >= 1.0 {
				e.value = 1.0
				e.stage = DAHDSRHold
				e.timeInStage = 0
			}
		} else {
			e.value = 1.0
			e.stage = DAHDSRHold
			e.timeInStage = 0
		}

	case DAHDSRHold:
		e.value = 1.0
		e.timeInStage += dt
		if e.timeInStage >= e.Hold {
			e.stage = DAHDSRDecay
			e.timeInStage = 0
		}

	case DAHDSRDecay:
		if e.Decay > 0 {
			progress := e.timeInStage / e.Decay
			e.value = e.Sustain + (1.0-e.Sustain)*math.Exp(-5.0*progress)
			e.timeInStage += dt
			if progress >= 1.0 {
				e.value = e.Sustain
				e.stage = DAHDSRSustain
				e.timeInStage = 0
			}
		} else {
			e.value = e.Sustain
			e.stage = DAHDSRSustain
		}

	case DAHDSRSustain:
		e.value = e.Sustain

	case DAHDSRRelease:
		if e.Release > 0 {
			progress := e.timeInStage / e.Release
			e.value = e.releaseLevel * math.Exp(-5.0*progress)
			e.timeInStage += dt
			if progress >= 1.0 || e.value < silenceThreshold {
				e.value = 0
				e.stage = DAHDSRIdle
				e.timeInStage = 0
			}
		} else {
			e.value = 0
			e.stage = DAHDSRIdle
		}
	}

	return e.value
}
