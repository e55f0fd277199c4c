// Package karplusstrong implements the plucked-string waveguide
// generator family of spec §4.6: a noise-excited delay line with
// one-pole damping feedback, optional body resonance via a parallel
// biquad bank, and a handful of lightly-excited sympathetic strings.
package karplusstrong

import (
	"github.com/justyntemme/synthcore/pkg/dsp"
	"github.com/justyntemme/synthcore/pkg/generator"
	"github.com/justyntemme/synthcore/pkg/param"
	"github.com/justyntemme/synthcore/pkg/voice"
)

const maxSympathetic = 4

// sympatheticRatios are harmonic-ish frequency ratios relative to the
// plucked note, lightly excited by its output to add body without a
// second full pluck.
var sympatheticRatios = [maxSympathetic]float64{2.0, 3.0, 1.5, 2.5}

type stringState struct {
	line    *dsp.DelayLine
	damp    dsp.OnePole
	sympLines [maxSympathetic]*dsp.DelayLine
	sympDamp  [maxSympathetic]dsp.OnePole
	active  bool
}

type voiceState struct {
	str  stringState
	body *dsp.BiquadBank
	amp  *dsp.ADSR
}

// Synth is a polyphonic Karplus-Strong plucked-string generator.
type Synth struct {
	sampleRate float64
	pool       *voice.Pool
	params     *param.Manager
	noise      *dsp.Noise

	bodyPairs [][2]float64
}

// New constructs a Karplus-Strong generator with the given polyphony cap.
func New(sampleRate float64, polyphony int) *Synth {
	s := &Synth{
		sampleRate: sampleRate,
		noise:      dsp.NewNoise(1),
		bodyPairs: [][2]float64{
			{100, 8}, {200, 6}, {400, 5}, {800, 4},
		},
	}
	s.pool = voice.NewPool(polyphony, s.newVoice)
	s.params = param.NewManager()
	s.params.RegisterAll(
		param.Info{Name: "damping", MinValue: 0.01, MaxValue: 0.999, DefaultValue: 0.5},
		param.Info{Name: "bodymix", MinValue: 0.0, MaxValue: 1.0, DefaultValue: 0.2},
		param.Info{Name: "sympathetic", MinValue: 0.0, MaxValue: 1.0, DefaultValue: 0.1},
		param.Info{Name: "release", MinValue: 0.001, MaxValue: 4.0, DefaultValue: 0.05},
	)
	return s
}

func (s *Synth) newVoice() *voice.Voice {
	return &voice.Voice{State: &voiceState{
		body: dsp.NewBiquadBank(s.bodyPairs, s.sampleRate),
		amp:  dsp.NewADSR(s.sampleRate),
	}}
}

func delayLenFor(freq, sampleRate float64) int {
	n := int(sampleRate/freq + 0.5)
	if n < 2 {
		n = 2
	}
	return n
}

// NoteOn plucks a new or re-excited voice for note.
func (s *Synth) NoteOn(note, velocity int) {
	damping := s.params.GetOr("damping", 0.5)

	s.pool.Allocate(note, velocity, 0, func(v *voice.Voice, retrigger bool) {
		st := v.State.(*voiceState)
		freq := v.Frequency()

		mainLen := delayLenFor(freq, s.sampleRate)
		if st.str.line == nil || st.str.line.Len() != mainLen {
			st.str.line = dsp.NewDelayLine(mainLen)
		}
		burst := make([]float64, mainLen)
		for i := range burst {
			burst[i] = s.noise.White() * float64(velocity) / 127.0
		}
		st.str.line.Fill(burst)
		st.str.damp.Reset()
		st.str.active = true

		for i, ratio := range sympatheticRatios {
			n := delayLenFor(freq*ratio, s.sampleRate)
			if st.str.sympLines[i] == nil || st.str.sympLines[i].Len() != n {
				st.str.sympLines[i] = dsp.NewDelayLine(n)
			}
			st.str.sympDamp[i].Reset()
		}

		st.amp.Attack = 0.0005
		st.amp.Decay = 0.0005
		st.amp.Sustain = 1.0
		st.amp.Release = s.params.GetOr("release", 0.05)
		st.amp.Trigger()
		_ = damping
	})
}

// NoteOff starts the release tail (a Karplus-Strong string decays on its
// own; release just fades the remaining energy quickly).
func (s *Synth) NoteOff(note int) {
	s.pool.Release(note, func(v *voice.Voice) {
		v.State.(*voiceState).amp.Release()
	})
}

// AllNotesOff releases every active voice.
func (s *Synth) AllNotesOff() {
	s.pool.ReleaseAll(func(v *voice.Voice) {
		v.State.(*voiceState).amp.Release()
	})
}

// SetParameter forwards a named parameter change.
func (s *Synth) SetParameter(name string, value float64) {
	s.params.Set(name, value)
}

// Render mixes every active voice's waveguide output into
// buffer[offset:offset+count].
func (s *Synth) Render(buffer []float32, offset, count int) int {
	out := buffer[offset : offset+count]
	dsp.Clear(out, 0, count)

	damping := s.params.GetOr("damping", 0.5)
	bodyMix := s.params.GetOr("bodymix", 0.2)
	sympMix := s.params.GetOr("sympathetic", 0.1)

	s.pool.ForEachActive(func(v *voice.Voice) bool {
		st := v.State.(*voiceState)
		active := true

		for i := 0; i < count; i++ {
			env := st.amp.Process()
			if !st.amp.IsActive() {
				active = false
			}

			s0 := st.str.line.Read(0)
			s1 := st.str.line.Read(1)
			damped := st.str.damp.Process((s0+s1)*0.5, damping)
			st.str.line.Write(damped)

			var symp float64
			for i := range st.str.sympLines {
				if st.str.sympLines[i] == nil {
					continue
				}
				r0 := st.str.sympLines[i].Read(0)
				r1 := st.str.sympLines[i].Read(1)
				d := st.str.sympDamp[i].Process((r0+r1)*0.5, damping*0.98)
				excited := d + damped*sympMix*0.25
				st.str.sympLines[i].Write(excited)
				symp += d
			}

			bodyOut := st.body.Process(damped)
			sample := damped*(1-bodyMix) + bodyOut*bodyMix + symp*0.25

			out[i] += float32(sample * env * float64(v.Velocity) / 127.0)
		}

		return active
	})

	dsp.SoftClipBuffer(out)
	return count
}

var _ generator.Generator = (*Synth)(nil)
