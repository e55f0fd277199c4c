package sf2

import (
	"os"

	"github.com/justyntemme/synthcore/pkg/dsp"
	"github.com/justyntemme/synthcore/pkg/generator"
	"github.com/justyntemme/synthcore/pkg/param"
	"github.com/justyntemme/synthcore/pkg/voice"
)

type voiceState struct {
	playback *playbackState
}

// Synth plays back a loaded SoundFont's presets as a generator.Generator
// (spec §4.12/§6). A Synth with no SoundFont loaded (path missing,
// malformed, or missing its sample chunk) renders silence rather than
// failing, per spec §7's resource-error handling rule.
type Synth struct {
	sampleRate float64
	pool       *voice.Pool
	params     *param.Manager

	font         *SoundFont
	presetIndex  int // selected preset, -1 if none resolved
}

// New constructs an SF2 player with the given polyphony cap. Call Load to
// attach a SoundFont; until then Render produces silence.
func New(sampleRate float64, polyphony int) *Synth {
	s := &Synth{sampleRate: sampleRate, presetIndex: -1}
	s.pool = voice.NewPool(polyphony, s.newVoice)
	s.params = param.NewManager()
	s.params.RegisterAll(
		param.Info{Name: "program", MinValue: 0, MaxValue: 127, DefaultValue: 0},
		param.Info{Name: "bank", MinValue: 0, MaxValue: 127, DefaultValue: 0},
	)
	return s
}

func (s *Synth) newVoice() *voice.Voice {
	return &voice.Voice{State: &voiceState{}}
}

// Load reads an SF2 file from path and selects its first preset. On any
// error the Synth is left without a font and keeps rendering silence.
func (s *Synth) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	font, err := Load(f)
	if err != nil {
		return err
	}
	s.font = font
	s.presetIndex = -1
	if len(font.Presets) > 0 {
		s.presetIndex = 0
	}
	return nil
}

// SelectPreset chooses a preset by MIDI bank/program number, per spec
// §4.12's bank-select/program-change mapping. A no-op if no such preset
// exists in the loaded font.
func (s *Synth) SelectPreset(bank, program int) {
	if s.font == nil {
		return
	}
	for i, p := range s.font.Presets {
		if int(p.Bank) == bank && int(p.Program) == program {
			s.presetIndex = i
			return
		}
	}
}

func (s *Synth) currentPreset() (Preset, bool) {
	if s.font == nil || s.presetIndex < 0 || s.presetIndex >= len(s.font.Presets) {
		return Preset{}, false
	}
	return s.font.Presets[s.presetIndex], true
}

// NoteOn resolves the matching preset/instrument zone chain for (note,
// velocity) and starts sample playback. A no-op if no font is loaded or
// no zone matches (spec's "render produces silence" degrade rule).
func (s *Synth) NoteOn(note, velocity int) {
	preset, ok := s.currentPreset()
	if !ok {
		return
	}
	pz, _, ok := resolveZone(preset, note, velocity)
	if !ok || pz.InstrumentIndex < 0 || pz.InstrumentIndex >= len(s.font.Instruments) {
		return
	}
	inst := s.font.Instruments[pz.InstrumentIndex]
	iz, ok := findInstrumentZone(inst, note, velocity)
	if !ok || iz.SampleIndex < 0 || iz.SampleIndex >= len(s.font.Samples) {
		return
	}
	sh := &s.font.Samples[iz.SampleIndex]

	gens := iz.Generators.Add(pz.Generators)

	s.pool.Allocate(note, velocity, 0, func(v *voice.Voice, retrigger bool) {
		st := v.State.(*voiceState)
		st.playback = newPlaybackState(s.sampleRate, sh, gens, note, velocity)
	})
}

// NoteOff releases the voice playing note, if any.
func (s *Synth) NoteOff(note int) {
	s.pool.Release(note, func(v *voice.Voice) {
		if st, ok := v.State.(*voiceState); ok && st.playback != nil {
			st.playback.release()
		}
	})
}

// AllNotesOff releases every active voice.
func (s *Synth) AllNotesOff() {
	s.pool.ReleaseAll(func(v *voice.Voice) {
		if st, ok := v.State.(*voiceState); ok && st.playback != nil {
			st.playback.release()
		}
	})
}

// SetParameter forwards program/bank selection; any other name is ignored.
func (s *Synth) SetParameter(name string, value float64) {
	s.params.Set(name, value)
	if name == "program" || name == "bank" {
		s.SelectPreset(int(s.params.GetOr("bank", 0)), int(s.params.GetOr("program", 0)))
	}
}

// Render mixes every active sample voice (collapsed to mono, per the
// shared generator contract) into buffer[offset:offset+count].
func (s *Synth) Render(buffer []float32, offset, count int) int {
	out := buffer[offset : offset+count]
	dsp.Clear(out, 0, count)

	if s.font == nil {
		return count
	}

	s.pool.ForEachActive(func(v *voice.Voice) bool {
		st := v.State.(*voiceState)
		if st.playback == nil {
			return false
		}
		active := true
		for i := 0; i < count; i++ {
			l, r, ok := st.playback.advance(s.font.SampleData)
			if !ok {
				active = false
				break
			}
			out[i] += (l + r) * 0.5
		}
		return active
	})

	dsp.SoftClipBuffer(out)
	return count
}

var _ generator.Generator = (*Synth)(nil)
