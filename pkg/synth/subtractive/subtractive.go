// Package subtractive implements the subtractive/additive oscillator
// generator family of spec §4.4: a bank of detuned, waveform-selectable
// oscillators per voice, run through a selectable filter driven by its
// own envelope, and shaped by an amplitude ADSR.
package subtractive

import (
	"math"

	"github.com/justyntemme/synthcore/pkg/dsp"
	"github.com/justyntemme/synthcore/pkg/generator"
	"github.com/justyntemme/synthcore/pkg/param"
	"github.com/justyntemme/synthcore/pkg/voice"
)

var _ generator.Generator = (*Synth)(nil)

// FilterKind selects between the two filter topologies available to a
// patch (spec §4.4's "selectable filter").
type FilterKind int

const (
	FilterBiquadLowpass FilterKind = iota
	FilterStateVariable
)

type oscState struct {
	phase float64
}

type voiceState struct {
	oscs    []oscState
	amp     *dsp.ADSR
	filtEnv *dsp.ADSR
	biquad  dsp.Biquad
	svf     *dsp.StateVariableFilter
}

// Synth is a polyphonic subtractive/additive generator.
type Synth struct {
	sampleRate float64
	pool       *voice.Pool
	params     *param.Manager

	waveform   dsp.Waveform
	unison     int
	detuneCent float64
	filterKind FilterKind
}

// New constructs a subtractive synth with the given polyphony cap.
func New(sampleRate float64, polyphony int) *Synth {
	s := &Synth{
		sampleRate: sampleRate,
		waveform:   dsp.WaveSaw,
		unison:     1,
		detuneCent: 8,
		filterKind: FilterBiquadLowpass,
	}
	s.pool = voice.NewPool(polyphony, s.newVoice)
	s.params = param.NewManager()
	s.params.RegisterAll(
		param.Info{Name: "attack", MinValue: 0.0005, MaxValue: 5.0, DefaultValue: 0.01},
		param.Info{Name: "decay", MinValue: 0.0005, MaxValue: 5.0, DefaultValue: 0.1},
		param.Info{Name: "sustain", MinValue: 0.0, MaxValue: 1.0, DefaultValue: 0.7},
		param.Info{Name: "release", MinValue: 0.0005, MaxValue: 8.0, DefaultValue: 0.3},
		param.Info{Name: "cutoff", MinValue: 20.0, MaxValue: 20000.0, DefaultValue: 4000.0},
		param.Info{Name: "resonance", MinValue: 0.5, MaxValue: 20.0, DefaultValue: 1.0},
		param.Info{Name: "filterenv", MinValue: 0.0, MaxValue: 1.0, DefaultValue: 0.0},
		param.Info{Name: "filterattack", MinValue: 0.0005, MaxValue: 5.0, DefaultValue: 0.01},
		param.Info{Name: "filterdecay", MinValue: 0.0005, MaxValue: 5.0, DefaultValue: 0.2},
		param.Info{Name: "filtersustain", MinValue: 0.0, MaxValue: 1.0, DefaultValue: 0.3},
		param.Info{Name: "filterrelease", MinValue: 0.0005, MaxValue: 8.0, DefaultValue: 0.3},
		param.Info{Name: "unison", MinValue: 1, MaxValue: 7, DefaultValue: 1, Stepped: true},
		param.Info{Name: "detune", MinValue: 0, MaxValue: 50, DefaultValue: 8},
	)
	return s
}

func (s *Synth) newVoice() *voice.Voice {
	return &voice.Voice{State: &voiceState{
		amp:     dsp.NewADSR(s.sampleRate),
		filtEnv: dsp.NewADSR(s.sampleRate),
		svf:     dsp.NewStateVariableFilter(s.sampleRate),
	}}
}

// SetWaveform selects the oscillator waveform. Render reads it for every
// voice, so it also changes voices that are already sounding.
func (s *Synth) SetWaveform(w dsp.Waveform) { s.waveform = w }

// SetFilterKind selects biquad or state-variable filtering.
func (s *Synth) SetFilterKind(k FilterKind) { s.filterKind = k }

// NoteOn triggers a new or legato-retriggered voice for note.
func (s *Synth) NoteOn(note, velocity int) {
	unison := int(s.params.GetOr("unison", 1))
	if unison < 1 {
		unison = 1
	}

	s.pool.Allocate(note, velocity, 0, func(v *voice.Voice, retrigger bool) {
		st := v.State.(*voiceState)
		if len(st.oscs) != unison {
			st.oscs = make([]oscState, unison)
		}
		if !retrigger {
			for i := range st.oscs {
				st.oscs[i].phase = 0
			}
			st.biquad.Reset()
			st.svf.Reset()
		}
		st.amp.Attack = s.params.GetOr("attack", 0.01)
		st.amp.Decay = s.params.GetOr("decay", 0.1)
		st.amp.Sustain = s.params.GetOr("sustain", 0.7)
		st.amp.Release = s.params.GetOr("release", 0.3)
		st.amp.Trigger()

		st.filtEnv.Attack = s.params.GetOr("filterattack", 0.01)
		st.filtEnv.Decay = s.params.GetOr("filterdecay", 0.2)
		st.filtEnv.Sustain = s.params.GetOr("filtersustain", 0.3)
		st.filtEnv.Release = s.params.GetOr("filterrelease", 0.3)
		st.filtEnv.Trigger()
	})
}

// NoteOff releases the voice mapped to note, if any.
func (s *Synth) NoteOff(note int) {
	s.pool.Release(note, func(v *voice.Voice) {
		st := v.State.(*voiceState)
		st.amp.Release()
		st.filtEnv.Release()
	})
}

// AllNotesOff releases every active voice.
func (s *Synth) AllNotesOff() {
	s.pool.ReleaseAll(func(v *voice.Voice) {
		st := v.State.(*voiceState)
		st.amp.Release()
		st.filtEnv.Release()
	})
}

// SetParameter forwards a named parameter change (a plain value, clamped
// to the parameter's range).
func (s *Synth) SetParameter(name string, value float64) {
	s.params.Set(name, value)
}

// Render mixes every active voice into buffer[offset:offset+count] (mono).
func (s *Synth) Render(buffer []float32, offset, count int) int {
	out := buffer[offset : offset+count]
	dsp.Clear(out, 0, count)

	unison := int(s.params.GetOr("unison", 1))
	if unison < 1 {
		unison = 1
	}
	detuneCents := s.params.GetOr("detune", s.detuneCent)
	cutoff := s.params.GetOr("cutoff", 4000.0)
	resonance := s.params.GetOr("resonance", 1.0)
	filterEnvAmt := s.params.GetOr("filterenv", 0.0)

	s.pool.ForEachActive(func(v *voice.Voice) bool {
		st := v.State.(*voiceState)
		baseFreq := v.Frequency()
		active := true

		for i := 0; i < count; i++ {
			ampEnv := st.amp.Process()
			if !st.amp.IsActive() {
				active = false
			}
			filtEnvVal := st.filtEnv.Process()

			var sample float64
			n := len(st.oscs)
			for oi := range st.oscs {
				mult := 1.0
				if n > 1 {
					spread := (float64(oi) - float64(n-1)/2.0) / float64(n-1)
					mult = math.Pow(2.0, spread*detuneCents/1200.0)
				}
				f := baseFreq * mult
				sample += dsp.Sample(st.oscs[oi].phase, s.waveform, 0.5)
				st.oscs[oi].phase = dsp.AdvancePhase(st.oscs[oi].phase, f, s.sampleRate)
			}
			sample /= float64(n)

			effCutoff := cutoff * math.Pow(2.0, filterEnvAmt*filtEnvVal*4.0)
			var filtered float64
			switch s.filterKind {
			case FilterStateVariable:
				st.svf.SetFrequency(effCutoff)
				st.svf.SetResonance(resonance)
				filtered = st.svf.ProcessLowpass(sample)
			default:
				st.biquad.SetParams(dsp.BiquadLowpass, effCutoff, resonance, s.sampleRate)
				filtered = st.biquad.Process(sample)
			}

			out[i] += float32(filtered * ampEnv * float64(v.Velocity) / 127.0)
		}

		return active
	})

	dsp.SoftClipBuffer(out)
	return count
}
