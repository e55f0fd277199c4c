// Package phasedist implements the CZ-style phase-distortion generator
// family of spec §4.3: a sine read through a distorted phase pointer whose
// distortion amount (DCW) and amplitude (DCA) are each driven by an
// independent 8-stage dsp.MultiStage envelope.
package phasedist

import (
	"github.com/justyntemme/synthcore/pkg/dsp"
	"github.com/justyntemme/synthcore/pkg/generator"
	"github.com/justyntemme/synthcore/pkg/param"
	"github.com/justyntemme/synthcore/pkg/voice"
)

// Shape selects the phase-warp curve, modeled on the classic Casio CZ
// oscillator shapes.
type Shape int

const (
	// ShapeSaw compresses the first part of the cycle, producing a
	// sawtooth-leaning spectrum as amount increases.
	ShapeSaw Shape = iota
	// ShapeSquare compresses symmetrically around both half-cycles,
	// producing a pulse/square-leaning spectrum.
	ShapeSquare
	// ShapeResonant adds a fast secondary ripple scaled by amount, for a
	// formant/resonant-peak character.
	ShapeResonant
)

// defaultStages mirrors the CZ-101's per-oscillator DCA/DCW rate+level
// tables (0-99 scale), with a default that reaches full level quickly and
// holds at sustain.
func defaultStages() ([8]float64, [8]float64) {
	rates := [8]float64{99, 80, 70, 60, 99, 50, 40, 99}
	levels := [8]float64{99, 80, 60, 60, 60, 30, 10, 0}
	return rates, levels
}

func warpPhase(phase, amount float64, shape Shape) float64 {
	if amount <= 0 {
		return phase
	}
	switch shape {
	case ShapeSquare:
		bp := 0.5 - 0.499*amount
		if phase < bp {
			return 0.25 * phase / bp
		}
		if phase < 1.0-bp {
			return 0.25 + 0.5*(phase-bp)/(1.0-2.0*bp)
		}
		return 0.75 + 0.25*(phase-(1.0-bp))/bp
	case ShapeResonant:
		ripple := amount * 6.0
		base := phase
		return base + 0.05*amount*dsp.Sample(fracPart(phase*ripple), dsp.WaveSine, 0.5)
	default: // ShapeSaw
		bp := 0.5 - 0.49*amount
		if phase < bp {
			return 0.5 * phase / bp
		}
		return 0.5 + 0.5*(phase-bp)/(1.0-bp)
	}
}

func fracPart(x float64) float64 {
	return x - float64(int(x))
}

type voiceState struct {
	phase float64
	dca   *dsp.MultiStage
	dcw   *dsp.MultiStage
}

// Synth is a polyphonic phase-distortion generator.
type Synth struct {
	sampleRate float64
	pool       *voice.Pool
	params     *param.Manager

	shape Shape
}

// New constructs a phase-distortion generator with the given polyphony cap.
func New(sampleRate float64, polyphony int) *Synth {
	s := &Synth{sampleRate: sampleRate}
	s.pool = voice.NewPool(polyphony, s.newVoice)
	s.params = param.NewManager()
	s.params.RegisterAll(
		param.Info{Name: "amount", MinValue: 0, MaxValue: 1, DefaultValue: 0.5},
		param.Info{Name: "shape", MinValue: 0, MaxValue: 2, DefaultValue: 0, Stepped: true},
	)
	return s
}

// SetShape selects the phase-warp curve.
func (s *Synth) SetShape(shape Shape) {
	s.shape = shape
	s.params.Set("shape", float64(shape))
}

func (s *Synth) newVoice() *voice.Voice {
	rates, levels := defaultStages()
	dca := dsp.NewMultiStage(s.sampleRate)
	dca.Rates, dca.Levels = rates, levels
	dca.Sustain = 3

	dwRates, dwLevels := defaultStages()
	dcw := dsp.NewMultiStage(s.sampleRate)
	dcw.Rates, dcw.Levels = dwRates, dwLevels
	dcw.Sustain = 3

	return &voice.Voice{State: &voiceState{dca: dca, dcw: dcw}}
}

// NoteOn triggers the DCA/DCW envelopes for a new or re-struck voice.
func (s *Synth) NoteOn(note, velocity int) {
	s.pool.Allocate(note, velocity, 0, func(v *voice.Voice, retrigger bool) {
		st := v.State.(*voiceState)
		if !retrigger {
			st.phase = 0
		}
		st.dca.Trigger()
		st.dcw.Trigger()
	})
}

// NoteOff releases the voice mapped to note, if any.
func (s *Synth) NoteOff(note int) {
	s.pool.Release(note, func(v *voice.Voice) {
		st := v.State.(*voiceState)
		st.dca.Release()
		st.dcw.Release()
	})
}

// AllNotesOff releases every active voice.
func (s *Synth) AllNotesOff() {
	s.pool.ReleaseAll(func(v *voice.Voice) {
		st := v.State.(*voiceState)
		st.dca.Release()
		st.dcw.Release()
	})
}

// SetParameter forwards a named parameter change.
func (s *Synth) SetParameter(name string, value float64) {
	s.params.Set(name, value)
}

func (s *Synth) currentShape() Shape {
	v := int(s.params.GetOr("shape", float64(s.shape)))
	switch v {
	case 1:
		return ShapeSquare
	case 2:
		return ShapeResonant
	default:
		return ShapeSaw
	}
}

// Render mixes every active voice's phase-distorted oscillator into
// buffer[offset:offset+count].
func (s *Synth) Render(buffer []float32, offset, count int) int {
	out := buffer[offset : offset+count]
	dsp.Clear(out, 0, count)

	amountParam := s.params.GetOr("amount", 0.5)
	shape := s.currentShape()

	s.pool.ForEachActive(func(v *voice.Voice) bool {
		st := v.State.(*voiceState)
		freq := v.Frequency()
		active := true

		for i := 0; i < count; i++ {
			dca := st.dca.Process()
			dcw := st.dcw.Process()
			if !st.dca.IsActive() {
				active = false
			}

			amount := amountParam * dcw
			st.phase = dsp.AdvancePhase(st.phase, freq, s.sampleRate)
			warped := warpPhase(st.phase, amount, shape)
			sample := dsp.Sample(warped, dsp.WaveSine, 0.5)

			out[i] += float32(sample * dca * float64(v.Velocity) / 127.0)
		}

		return active
	})

	dsp.SoftClipBuffer(out)
	return count
}

var _ generator.Generator = (*Synth)(nil)
