// Package rex implements the REX-style slice-playback generator of
// spec §4.13: per-slice gain/pitch/reverse, a short-ramp amplitude
// envelope, boundary crossfade, and oneShot/loop/gate play modes, built
// on pkg/slicer's detected slice table.
package rex

import (
	"github.com/justyntemme/synthcore/pkg/dsp"
	"github.com/justyntemme/synthcore/pkg/generator"
	"github.com/justyntemme/synthcore/pkg/param"
	"github.com/justyntemme/synthcore/pkg/slicer"
	"github.com/justyntemme/synthcore/pkg/voice"
)

// PlayMode is a slice's triggering behavior.
type PlayMode int

const (
	PlayOneShot PlayMode = iota
	PlayLoop
	PlayGate
)

// SliceParams are the per-slice playback controls spec §4.13 names.
type SliceParams struct {
	Gain    float64
	Pitch   float64 // playback rate multiplier, negative when reversed
	Reverse bool
	Mode    PlayMode
}

func defaultSliceParams() SliceParams {
	return SliceParams{Gain: 1.0, Pitch: 1.0, Mode: PlayOneShot}
}

type voiceState struct {
	slice  slicer.Slice
	params SliceParams

	pos  float64
	held bool

	env *dsp.ADSR
}

// Synth plays back a loaded sample's detected slices, keyed by MIDI
// note, as a generator.Generator.
type Synth struct {
	sampleRate float64
	pool       *voice.Pool
	params     *param.Manager

	source *slicer.Source
	slices map[int]slicer.Slice
	sliceParams map[int]SliceParams

	crossfadeSamples int
}

// New constructs a rex slice player with the given polyphony cap.
func New(sampleRate float64, polyphony int) *Synth {
	s := &Synth{
		sampleRate:       sampleRate,
		slices:           make(map[int]slicer.Slice),
		sliceParams:      make(map[int]SliceParams),
		crossfadeSamples: 32,
	}
	s.pool = voice.NewPool(polyphony, s.newVoice)
	s.params = param.NewManager()
	s.params.RegisterAll(
		param.Info{Name: "attack", MinValue: 0.0001, MaxValue: 0.5, DefaultValue: 0.002},
		param.Info{Name: "release", MinValue: 0.0001, MaxValue: 2.0, DefaultValue: 0.01},
	)
	return s
}

func (s *Synth) newVoice() *voice.Voice {
	return &voice.Voice{State: &voiceState{env: dsp.NewADSR(s.sampleRate)}}
}

// LoadSource attaches the decoded audio buffer slices are read from.
func (s *Synth) LoadSource(src *slicer.Source) {
	s.source = src
}

// SetSlices replaces the note -> slice assignment table, typically the
// output of slicer.Detect.
func (s *Synth) SetSlices(slices []slicer.Slice) {
	s.slices = make(map[int]slicer.Slice, len(slices))
	for _, sl := range slices {
		s.slices[sl.Note] = sl
	}
}

// SetSliceParams overrides the gain/pitch/reverse/mode for a given note.
func (s *Synth) SetSliceParams(note int, p SliceParams) {
	s.sliceParams[note] = p
}

func (s *Synth) paramsFor(note int) SliceParams {
	if p, ok := s.sliceParams[note]; ok {
		return p
	}
	return defaultSliceParams()
}

// NoteOn triggers the slice assigned to note, if any.
func (s *Synth) NoteOn(note, velocity int) {
	if s.source == nil {
		return
	}
	sl, ok := s.slices[note]
	if !ok {
		return
	}
	p := s.paramsFor(note)

	s.pool.Allocate(note, velocity, 0, func(v *voice.Voice, retrigger bool) {
		st := v.State.(*voiceState)
		st.slice = sl
		st.params = p
		st.held = true
		if p.Reverse {
			st.pos = float64(sl.End - sl.Start)
		} else {
			st.pos = 0
		}
		st.env.Attack = s.params.GetOr("attack", 0.002)
		st.env.Decay = 0.0001
		st.env.Sustain = 1.0
		st.env.Release = s.params.GetOr("release", 0.01)
		st.env.Trigger()
	})
}

// NoteOff releases (oneShot/gate) or marks un-held (loop) the voice
// playing note.
func (s *Synth) NoteOff(note int) {
	s.pool.Release(note, func(v *voice.Voice) {
		st := v.State.(*voiceState)
		st.held = false
		if st.params.Mode != PlayLoop {
			st.env.Release()
		} else if st.params.Mode == PlayGate {
			st.env.Release()
		}
	})
}

// AllNotesOff releases every active voice.
func (s *Synth) AllNotesOff() {
	s.pool.ReleaseAll(func(v *voice.Voice) {
		v.State.(*voiceState).env.Release()
	})
}

// SetParameter forwards a named global parameter change.
func (s *Synth) SetParameter(name string, value float64) {
	s.params.Set(name, value)
}

// Render mixes every active slice voice into buffer[offset:offset+count],
// applying a crossfadeSamples-wide ramp at each slice boundary.
func (s *Synth) Render(buffer []float32, offset, count int) int {
	out := buffer[offset : offset+count]
	dsp.Clear(out, 0, count)

	if s.source == nil {
		return count
	}
	samples := s.source.Samples
	rateScale := s.source.SampleRate / s.sampleRate

	s.pool.ForEachActive(func(v *voice.Voice) bool {
		st := v.State.(*voiceState)
		active := true
		length := float64(st.slice.End - st.slice.Start)

		for i := 0; i < count; i++ {
			envVal := st.env.Process()
			if !st.env.IsActive() {
				active = false
				break
			}

			idx := int(st.pos)
			frac := st.pos - float64(idx)
			base := st.slice.Start + idx
			var s0, s1 float64
			if base >= 0 && base < len(samples) {
				s0 = samples[base]
			}
			if base+1 >= 0 && base+1 < len(samples) {
				s1 = samples[base+1]
			}
			sample := dsp.Lerp(s0, s1, frac)

			fade := boundaryFade(st.pos, length, float64(s.crossfadeSamples))

			out[i] += float32(sample * envVal * st.params.Gain * fade * float64(v.Velocity) / 127.0)

			rate := st.params.Pitch * rateScale
			st.pos += rate

			switch st.params.Mode {
			case PlayLoop, PlayGate:
				if st.pos >= length {
					st.pos -= length
				} else if st.pos < 0 {
					st.pos += length
				}
				if st.params.Mode == PlayGate && !st.held && !st.env.IsActive() {
					active = false
				}
			default:
				if st.pos >= length || st.pos < 0 {
					active = false
				}
			}
		}

		return active
	})

	dsp.SoftClipBuffer(out)
	return count
}

// boundaryFade ramps gain linearly up from the slice start and down into
// the slice end across fadeLen samples, the crossfade spec §4.13 asks
// for at both boundaries.
func boundaryFade(pos, length, fadeLen float64) float64 {
	if fadeLen <= 0 {
		return 1.0
	}
	if pos < fadeLen {
		return dsp.Clamp(pos/fadeLen, 0, 1)
	}
	remaining := length - pos
	if remaining < fadeLen {
		return dsp.Clamp(remaining/fadeLen, 0, 1)
	}
	return 1.0
}

var _ generator.Generator = (*Synth)(nil)
