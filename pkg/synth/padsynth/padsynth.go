// Package padsynth implements the PadSynth wavetable generator family of
// spec §4.5: one Paul Nasca style IFFT-synthesized wavetable, built at a
// fixed base frequency and shared by every voice, looped and read with
// linear interpolation at each voice's pitch.
package padsynth

import (
	"github.com/justyntemme/synthcore/pkg/dsp"
	"github.com/justyntemme/synthcore/pkg/generator"
	"github.com/justyntemme/synthcore/pkg/param"
	"github.com/justyntemme/synthcore/pkg/voice"
)

const tableSize = 1 << 17 // 131072, plenty of resolution for low notes

// defaultHarmonics returns the default harmonic amplitude profile: a simple 1/h
// rolloff across 32 partials, giving a warm pad with no special timbre
// baked in — patches override this via SetHarmonics.
func defaultHarmonics() []float64 {
	h := make([]float64, 32)
	for i := range h {
		h[i] = 1.0 / float64(i+1)
	}
	return h
}

type voiceState struct {
	pos float64
	amp *dsp.ADSR
}

// Synth is a polyphonic PadSynth generator. Its wavetable is rebuilt
// whenever seed/harmonics/bandwidth/bandwidthScale change, and reused by
// every voice (spec §8 property 7: identical inputs reproduce the same
// table byte-for-byte).
type Synth struct {
	sampleRate float64
	pool       *voice.Pool
	params     *param.Manager

	seed           int64
	harmonics      []float64
	bandwidthCents float64
	bandwidthScale float64
	baseFreq       float64

	table      []float64
	tableDirty bool
}

// New constructs a PadSynth generator with the given polyphony cap.
func New(sampleRate float64, polyphony int) *Synth {
	s := &Synth{
		sampleRate:     sampleRate,
		seed:           1,
		harmonics:      defaultHarmonics(),
		bandwidthCents: 40.0,
		bandwidthScale: 1.0,
		baseFreq:       110.0,
		tableDirty:     true,
	}
	s.pool = voice.NewPool(polyphony, s.newVoice)
	s.params = param.NewManager()
	s.params.RegisterAll(
		param.Info{Name: "attack", MinValue: 0.001, MaxValue: 10.0, DefaultValue: 1.5},
		param.Info{Name: "decay", MinValue: 0.001, MaxValue: 10.0, DefaultValue: 0.5},
		param.Info{Name: "sustain", MinValue: 0.0, MaxValue: 1.0, DefaultValue: 1.0},
		param.Info{Name: "release", MinValue: 0.001, MaxValue: 10.0, DefaultValue: 2.0},
		param.Info{Name: "bandwidth", MinValue: 1.0, MaxValue: 200.0, DefaultValue: 40.0},
		param.Info{Name: "bandwidthscale", MinValue: 0.0, MaxValue: 3.0, DefaultValue: 1.0},
		param.Info{Name: "seed", MinValue: 0, MaxValue: 1 << 20, DefaultValue: 1},
	)
	return s
}

func (s *Synth) newVoice() *voice.Voice {
	return &voice.Voice{State: &voiceState{amp: dsp.NewADSR(s.sampleRate)}}
}

// SetHarmonics replaces the harmonic amplitude profile and marks the
// wavetable for rebuild on next use.
func (s *Synth) SetHarmonics(h []float64) {
	s.harmonics = h
	s.tableDirty = true
}

func (s *Synth) rebuildIfNeeded() {
	bw := s.params.GetOr("bandwidth", s.bandwidthCents)
	bws := s.params.GetOr("bandwidthscale", s.bandwidthScale)
	seed := int64(s.params.GetOr("seed", float64(s.seed)))
	if !s.tableDirty && bw == s.bandwidthCents && bws == s.bandwidthScale && seed == s.seed {
		return
	}
	s.bandwidthCents, s.bandwidthScale, s.seed = bw, bws, seed
	s.table = dsp.PadSynthSpectrum(tableSize, s.baseFreq, s.sampleRate, s.harmonics, bw, bws, seed)
	s.tableDirty = false
}

// NoteOn triggers a voice, rebuilding the shared wavetable first if its
// parameters changed.
func (s *Synth) NoteOn(note, velocity int) {
	s.rebuildIfNeeded()
	s.pool.Allocate(note, velocity, 0, func(v *voice.Voice, retrigger bool) {
		st := v.State.(*voiceState)
		if !retrigger {
			st.pos = 0
		}
		st.amp.Attack = s.params.GetOr("attack", 1.5)
		st.amp.Decay = s.params.GetOr("decay", 0.5)
		st.amp.Sustain = s.params.GetOr("sustain", 1.0)
		st.amp.Release = s.params.GetOr("release", 2.0)
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

// Render mixes every active voice's wavetable playback into
// buffer[offset:offset+count].
func (s *Synth) Render(buffer []float32, offset, count int) int {
	out := buffer[offset : offset+count]
	dsp.Clear(out, 0, count)

	if len(s.table) == 0 {
		return count
	}

	s.pool.ForEachActive(func(v *voice.Voice) bool {
		st := v.State.(*voiceState)
		speed := v.Frequency() / s.baseFreq * float64(len(s.table)) / s.sampleRate
		active := true

		for i := 0; i < count; i++ {
			env := st.amp.Process()
			if !st.amp.IsActive() {
				active = false
			}
			sample := dsp.InterpolateBuffer(s.table, st.pos, true)
			st.pos += speed
			n := float64(len(s.table))
			if st.pos >= n {
				st.pos -= n * float64(int(st.pos/n))
			}
			out[i] += float32(sample * env * float64(v.Velocity) / 127.0)
		}
		return active
	})

	return count
}

var _ generator.Generator = (*Synth)(nil)
