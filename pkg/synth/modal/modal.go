// Package modal implements the modal-synthesis generator family of spec
// §4.7: a bank of resonant modes (parallel bandpass resonators at
// inharmonic ratios) excited by a short windowed noise burst, modeling
// struck objects rather than strings. The noise burst is the only
// exciter; there is no impulse or bow excitation.
package modal

import (
	"github.com/justyntemme/synthcore/pkg/dsp"
	"github.com/justyntemme/synthcore/pkg/generator"
	"github.com/justyntemme/synthcore/pkg/param"
	"github.com/justyntemme/synthcore/pkg/voice"
)

// Mode is one resonant partial: a frequency ratio relative to the struck
// note, a Q factor and a relative gain.
type Mode struct {
	Ratio float64
	Q     float64
	Gain  float64
}

// defaultModes approximates a small struck metal bar: inharmonic partials
// with decreasing gain and increasing Q at higher ratios.
func defaultModes() []Mode {
	return []Mode{
		{Ratio: 1.0, Q: 40, Gain: 1.0},
		{Ratio: 2.76, Q: 60, Gain: 0.6},
		{Ratio: 5.40, Q: 80, Gain: 0.35},
		{Ratio: 8.93, Q: 100, Gain: 0.2},
		{Ratio: 13.34, Q: 120, Gain: 0.12},
	}
}

type voiceState struct {
	modes    []dsp.Biquad
	exciter  []float64 // remaining excitation samples to inject
	excitePos int
	amp      *dsp.ADSR
}

// Synth is a polyphonic modal generator.
type Synth struct {
	sampleRate float64
	pool       *voice.Pool
	params     *param.Manager
	noise      *dsp.Noise

	modes []Mode
}

// New constructs a modal generator with the given polyphony cap.
func New(sampleRate float64, polyphony int) *Synth {
	s := &Synth{
		sampleRate: sampleRate,
		noise:      dsp.NewNoise(2),
		modes:      defaultModes(),
	}
	s.pool = voice.NewPool(polyphony, s.newVoice)
	s.params = param.NewManager()
	s.params.RegisterAll(
		param.Info{Name: "exciteduration", MinValue: 0.0005, MaxValue: 0.05, DefaultValue: 0.003},
		param.Info{Name: "brightness", MinValue: 0.1, MaxValue: 2.0, DefaultValue: 1.0},
		param.Info{Name: "release", MinValue: 0.01, MaxValue: 4.0, DefaultValue: 0.3},
	)
	return s
}

// SetModes replaces the mode bank (lets a patch model a different
// struck object).
func (s *Synth) SetModes(m []Mode) { s.modes = m }

func (s *Synth) newVoice() *voice.Voice {
	return &voice.Voice{State: &voiceState{
		modes: make([]dsp.Biquad, len(s.modes)),
		amp:   dsp.NewADSR(s.sampleRate),
	}}
}

// NoteOn excites a new or re-struck voice for note.
func (s *Synth) NoteOn(note, velocity int) {
	exciteDur := s.params.GetOr("exciteduration", 0.003)
	brightness := s.params.GetOr("brightness", 1.0)

	s.pool.Allocate(note, velocity, 0, func(v *voice.Voice, retrigger bool) {
		st := v.State.(*voiceState)
		freq := v.Frequency()

		if len(st.modes) != len(s.modes) {
			st.modes = make([]dsp.Biquad, len(s.modes))
		}
		for i, m := range s.modes {
			f := freq * m.Ratio * brightness
			if f > s.sampleRate*0.49 {
				f = s.sampleRate * 0.49
			}
			st.modes[i].SetParams(dsp.BiquadBandpass, f, m.Q, s.sampleRate)
			st.modes[i].Reset()
		}

		n := int(exciteDur * s.sampleRate)
		if n < 1 {
			n = 1
		}
		burst := make([]float64, n)
		for i := range burst {
			window := 1.0 - float64(i)/float64(n)
			burst[i] = s.noise.White() * window * float64(velocity) / 127.0
		}
		st.exciter = burst
		st.excitePos = 0

		st.amp.Attack = 0.0003
		st.amp.Decay = 0.0003
		st.amp.Sustain = 1.0
		st.amp.Release = s.params.GetOr("release", 0.3)
		st.amp.Trigger()
	})
}

// NoteOff releases the voice mapped to note, if any.
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

// Render mixes every active voice's mode bank output into
// buffer[offset:offset+count].
func (s *Synth) Render(buffer []float32, offset, count int) int {
	out := buffer[offset : offset+count]
	dsp.Clear(out, 0, count)

	modeGains := s.modes

	s.pool.ForEachActive(func(v *voice.Voice) bool {
		st := v.State.(*voiceState)
		active := true

		for i := 0; i < count; i++ {
			env := st.amp.Process()
			if !st.amp.IsActive() {
				active = false
			}

			var excitation float64
			if st.excitePos < len(st.exciter) {
				excitation = st.exciter[st.excitePos]
				st.excitePos++
			}

			var sample float64
			for mi := range st.modes {
				g := 1.0
				if mi < len(modeGains) {
					g = modeGains[mi].Gain
				}
				sample += st.modes[mi].Process(excitation) * g
			}

			out[i] += float32(sample * env * float64(v.Velocity) / 127.0)
		}

		return active
	})

	dsp.SoftClipBuffer(out)
	return count
}

var _ generator.Generator = (*Synth)(nil)
