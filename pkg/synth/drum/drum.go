// Package drum implements the drum-machine generator family of spec
// §4.11: a fixed note -> preset map (kick, snare, hi-hats, clap, toms,
// rim, cowbell, crash, ride), each voice blending a pitch-enveloped tone,
// an optional second harmonic tone, a click burst, filtered noise and an
// amplitude envelope, with hi-hats sharing a choke group.
package drum

import (
	"math"

	"github.com/justyntemme/synthcore/pkg/dsp"
	"github.com/justyntemme/synthcore/pkg/generator"
	"github.com/justyntemme/synthcore/pkg/param"
	"github.com/justyntemme/synthcore/pkg/voice"
)

// NoiseColor selects the noise source a preset's noise layer uses.
type NoiseColor int

const (
	NoiseWhite NoiseColor = iota
	NoisePink
	NoiseMetallic
)

// Preset is the static patch data for one drum voice.
type Preset struct {
	Name string

	BaseFreq    float64 // tone 1 settle frequency
	StartFreq   float64 // tone 1 pitch-envelope start frequency
	PitchDecay  float64 // seconds, exponential decay into BaseFreq

	Tone2Ratio float64 // 0 disables the second tone
	Tone2Level float64

	ClickMillis float64
	ClickLevel  float64

	NoiseColor  NoiseColor
	NoiseLevel  float64
	NoiseFilterFreq float64 // single-pole lowpass cutoff applied to the noise layer

	AmpAttack, AmpDecay, AmpRelease float64
	Drive float64 // 0 disables the tanh drive on tone 1

	ChokeGroup int // 0 = none; drum voices sharing a nonzero group choke each other
}

// DefaultPresets is the note -> preset map of a classic 909-style kit
// (spec §4.11).
func DefaultPresets() map[int]Preset {
	return map[int]Preset{
		36: {Name: "Kick", BaseFreq: 55, StartFreq: 150, PitchDecay: 0.08, ClickMillis: 2, ClickLevel: 0.4,
			NoiseLevel: 0.05, NoiseColor: NoiseWhite, NoiseFilterFreq: 2000,
			AmpAttack: 0.001, AmpDecay: 0.3, AmpRelease: 0.15, Drive: 0.3},
		38: {Name: "Snare", BaseFreq: 180, StartFreq: 300, PitchDecay: 0.03, Tone2Ratio: 1.5, Tone2Level: 0.4,
			ClickMillis: 1, ClickLevel: 0.3, NoiseLevel: 0.6, NoiseColor: NoiseWhite, NoiseFilterFreq: 4000,
			AmpAttack: 0.001, AmpDecay: 0.18, AmpRelease: 0.1},
		42: {Name: "ClosedHH", NoiseLevel: 0.9, NoiseColor: NoiseMetallic, NoiseFilterFreq: 8000,
			AmpAttack: 0.0005, AmpDecay: 0.04, AmpRelease: 0.02, ChokeGroup: 1},
		44: {Name: "PedalHH", NoiseLevel: 0.8, NoiseColor: NoiseMetallic, NoiseFilterFreq: 7000,
			AmpAttack: 0.0005, AmpDecay: 0.06, AmpRelease: 0.03, ChokeGroup: 1},
		46: {Name: "OpenHH", NoiseLevel: 0.9, NoiseColor: NoiseMetallic, NoiseFilterFreq: 8000,
			AmpAttack: 0.0005, AmpDecay: 0.5, AmpRelease: 0.3, ChokeGroup: 1},
		39: {Name: "Clap", NoiseLevel: 1.0, NoiseColor: NoiseWhite, NoiseFilterFreq: 3000,
			AmpAttack: 0.001, AmpDecay: 0.22, AmpRelease: 0.15},
		41: {Name: "TomLow", BaseFreq: 90, StartFreq: 160, PitchDecay: 0.06,
			NoiseLevel: 0.05, NoiseColor: NoiseWhite, NoiseFilterFreq: 2000,
			AmpAttack: 0.001, AmpDecay: 0.3, AmpRelease: 0.2},
		45: {Name: "TomMid", BaseFreq: 130, StartFreq: 220, PitchDecay: 0.05,
			NoiseLevel: 0.05, NoiseColor: NoiseWhite, NoiseFilterFreq: 2500,
			AmpAttack: 0.001, AmpDecay: 0.28, AmpRelease: 0.18},
		50: {Name: "TomHi", BaseFreq: 180, StartFreq: 300, PitchDecay: 0.04,
			NoiseLevel: 0.05, NoiseColor: NoiseWhite, NoiseFilterFreq: 3000,
			AmpAttack: 0.001, AmpDecay: 0.25, AmpRelease: 0.15},
		37: {Name: "Rim", BaseFreq: 400, StartFreq: 400, PitchDecay: 0.001, ClickMillis: 1, ClickLevel: 0.8,
			NoiseLevel: 0.2, NoiseColor: NoiseWhite, NoiseFilterFreq: 4000,
			AmpAttack: 0.0005, AmpDecay: 0.03, AmpRelease: 0.02},
		56: {Name: "Cowbell", BaseFreq: 560, StartFreq: 560, PitchDecay: 0.001, Tone2Ratio: 1.48, Tone2Level: 0.6,
			NoiseLevel: 0.02, NoiseColor: NoiseWhite, NoiseFilterFreq: 3000,
			AmpAttack: 0.0005, AmpDecay: 0.25, AmpRelease: 0.15},
		49: {Name: "Crash", NoiseLevel: 1.0, NoiseColor: NoiseMetallic, NoiseFilterFreq: 9000,
			AmpAttack: 0.001, AmpDecay: 1.2, AmpRelease: 0.8},
		51: {Name: "Ride", NoiseLevel: 0.7, NoiseColor: NoiseMetallic, NoiseFilterFreq: 6000,
			AmpAttack: 0.001, AmpDecay: 0.8, AmpRelease: 0.5},
	}
}

type voiceState struct {
	preset   Preset
	tonePhase1, tonePhase2 float64
	pitchEnv float64
	click    []float64
	clickPos int
	metalPhase float64
	noiseFilt  dsp.OnePole
	amp        *dsp.ADSR
}

// Synth is a polyphonic drum-machine generator with choke-group support.
type Synth struct {
	sampleRate float64
	pool       *voice.Pool
	params     *param.Manager
	noise      *dsp.Noise

	presets map[int]Preset

	// chokeGroups maps a choke-group id to the voices currently sounding
	// in it, so a new trigger in the group can choke the others.
	chokeGroups map[int][]*voice.Voice
}

// New constructs a drum-machine generator with the given polyphony cap.
func New(sampleRate float64, polyphony int) *Synth {
	s := &Synth{
		sampleRate:  sampleRate,
		noise:       dsp.NewNoise(3),
		presets:     DefaultPresets(),
		chokeGroups: make(map[int][]*voice.Voice),
	}
	s.pool = voice.NewPool(polyphony, s.newVoice)
	s.params = param.NewManager()
	s.params.RegisterAll(
		param.Info{Name: "tune", MinValue: 0.5, MaxValue: 2.0, DefaultValue: 1.0},
		param.Info{Name: "decay", MinValue: 0.25, MaxValue: 4.0, DefaultValue: 1.0},
	)
	return s
}

// SetPresets replaces the note -> preset map.
func (s *Synth) SetPresets(presets map[int]Preset) { s.presets = presets }

func (s *Synth) newVoice() *voice.Voice {
	return &voice.Voice{State: &voiceState{amp: dsp.NewADSR(s.sampleRate)}}
}

// NoteOn triggers the preset mapped to note, choking any other member of
// its choke group first. Unknown notes are silently ignored (spec §6
// input-range rule).
func (s *Synth) NoteOn(note, velocity int) {
	preset, ok := s.presets[note]
	if !ok {
		return
	}
	tune := s.params.GetOr("tune", 1.0)
	decayScale := s.params.GetOr("decay", 1.0)

	v := s.pool.Allocate(note, velocity, 0, func(v *voice.Voice, retrigger bool) {
		st := v.State.(*voiceState)
		st.preset = preset
		if !retrigger {
			st.tonePhase1 = 0
			st.tonePhase2 = 0
			st.metalPhase = 0
		}
		st.pitchEnv = preset.StartFreq * tune
		st.noiseFilt.Reset()

		clickLen := int(preset.ClickMillis / 1000.0 * s.sampleRate)
		if clickLen < 1 {
			clickLen = 1
		}
		click := make([]float64, clickLen)
		for i := range click {
			window := 1.0 - float64(i)/float64(clickLen)
			click[i] = s.noise.White() * window * preset.ClickLevel
		}
		st.click = click
		st.clickPos = 0

		st.amp.Attack = preset.AmpAttack
		st.amp.Decay = preset.AmpDecay * decayScale
		st.amp.Sustain = 0
		st.amp.Release = preset.AmpRelease * decayScale
		st.amp.Trigger()
	})

	if preset.ChokeGroup != 0 {
		for _, other := range s.chokeGroups[preset.ChokeGroup] {
			if other != v {
				s.pool.ChokeVoice(other, func(cv *voice.Voice) {})
			}
		}
		s.chokeGroups[preset.ChokeGroup] = []*voice.Voice{v}
	}
}

// NoteOff is a no-op: drum voices are one-shot and run to completion or
// until choked (spec §4.1: "drum-machine-like generators choke").
func (s *Synth) NoteOff(note int) {}

// AllNotesOff immediately chokes every active voice.
func (s *Synth) AllNotesOff() {
	s.pool.ChokeAll(func(v *voice.Voice) {})
	s.chokeGroups = make(map[int][]*voice.Voice)
}

// SetParameter forwards a named parameter change.
func (s *Synth) SetParameter(name string, value float64) {
	s.params.Set(name, value)
}

func noiseSample(n *dsp.Noise, color NoiseColor, metalPhase *float64, freq, sampleRate float64) float64 {
	switch color {
	case NoisePink:
		return n.Pink()
	case NoiseMetallic:
		return n.Metallic(metalPhase, freq, sampleRate)
	default:
		return n.White()
	}
}

// Render mixes every active voice's drum-voice output into
// buffer[offset:offset+count].
func (s *Synth) Render(buffer []float32, offset, count int) int {
	out := buffer[offset : offset+count]
	dsp.Clear(out, 0, count)

	tune := s.params.GetOr("tune", 1.0)
	dt := 1.0 / s.sampleRate

	s.pool.ForEachActive(func(v *voice.Voice) bool {
		st := v.State.(*voiceState)
		p := st.preset
		active := true

		for i := 0; i < count; i++ {
			env := st.amp.Process()
			// Sustain is 0, so a drum voice is finished once its decay ends.
			if !st.amp.IsActive() || st.amp.Stage() == dsp.StageSustain {
				active = false
			}

			base := p.BaseFreq * tune
			if p.PitchDecay > 0 {
				st.pitchEnv = base + (st.pitchEnv-base)*math.Exp(-dt/p.PitchDecay)
			} else {
				st.pitchEnv = base
			}

			var sample float64
			if p.BaseFreq > 0 {
				st.tonePhase1 = dsp.AdvancePhase(st.tonePhase1, st.pitchEnv, s.sampleRate)
				tone := dsp.Sample(st.tonePhase1, dsp.WaveSine, 0.5)
				if p.Drive > 0 {
					tone = math.Tanh(tone * (1 + p.Drive*4))
				}
				sample += tone

				if p.Tone2Ratio > 0 {
					st.tonePhase2 = dsp.AdvancePhase(st.tonePhase2, st.pitchEnv*p.Tone2Ratio, s.sampleRate)
					sample += dsp.Sample(st.tonePhase2, dsp.WaveSine, 0.5) * p.Tone2Level
				}
			}

			if st.clickPos < len(st.click) {
				sample += st.click[st.clickPos]
				st.clickPos++
			}

			if p.NoiseLevel > 0 {
				raw := noiseSample(s.noise, p.NoiseColor, &st.metalPhase, st.pitchEnv*2, s.sampleRate)
				brightness := p.NoiseFilterFreq / (s.sampleRate * 0.5)
				if brightness > 1 {
					brightness = 1
				}
				filtered := st.noiseFilt.Process(raw, brightness)
				sample += filtered * p.NoiseLevel
			}

			out[i] += float32(sample * env * float64(v.Velocity) / 127.0)
		}

		return active
	})

	dsp.SoftClipBuffer(out)
	return count
}

var _ generator.Generator = (*Synth)(nil)
