package dsp

import "math"

// OPNStage is the YM2612-style per-operator envelope stage.
type OPNStage int

const (
	OPNIdle OPNStage = iota
	OPNAttack
	OPNDecay1
	OPNDecay2
	OPNRelease
)

// OPNEnvelope reproduces the YM2612 (OPN) per-operator envelope generator:
// attack ramps linearly up to 1 in log-rate time, decay1 falls to
// sustainLevel, decay2 falls slowly to 0, release falls fast to 0. Rates
// are 0-31 and map to per-sample increments via rate_linear = 2^((r-15)/4)*10
// (spec §4.3).
type OPNEnvelope struct {
	Attack, Decay1, Decay2, Release int     // 0-31
	SustainLevel                    float64 // 0-1

	sampleRate float64
	stage      OPNStage
	value      float64
}

// NewOPNEnvelope creates an operator envelope for the given sample rate.
func NewOPNEnvelope(sampleRate float64) *OPNEnvelope {
	return &OPNEnvelope{sampleRate: sampleRate, stage: OPNIdle}
}

func rateLinear(r int) float64 {
	return math.Pow(2.0, (float64(r)-15.0)/4.0) * 10.0
}

// Trigger starts the operator envelope in its attack stage.
func (e *OPNEnvelope) Trigger() {
	e.stage = OPNAttack
	if e.value <= 0 {
		e.value = 1e-6
	}
}

// Release forces the operator envelope into its (fast) release stage.
func (e *OPNEnvelope) Release() {
	if e.stage != OPNIdle {
		e.stage = OPNRelease
	}
}

// IsActive reports whether the envelope is still producing sound.
func (e *OPNEnvelope) IsActive() bool {
	return e.stage != OPNIdle
}

// Process advances the envelope by one sample and returns its level.
func (e *OPNEnvelope) Process() float64 {
	dt := 1.0 / e.sampleRate

	switch e.stage {
	case OPNIdle:
		e.value = 0

	case OPNAttack:
		inc := rateLinear(e.Attack) * dt
		// Attack rises linearly to full scale.
		e.value += inc
		if e.value >= 1.0 {
			e.value = 1.0
			e.stage = OPNDecay1
		}

	case OPNDecay1:
		dec := rateLinear(e.Decay1) * dt
		e.value -= dec
		if e.value <= e.SustainLevel {
			e.value = e.SustainLevel
			e.stage = OPNDecay2
		}

	case OPNDecay2:
		dec := rateLinear(e.Decay2) * dt * 0.1
		e.value -= dec
		if e.value <= 0 {
			e.value = 0
			e.stage = OPNIdle
		}

	case OPNRelease:
		dec := rateLinear(e.Release) * dt
		e.value -= dec
		if e.value <= 0 {
			e.value = 0
			e.stage = OPNIdle
		}
	}

	return e.value
}
