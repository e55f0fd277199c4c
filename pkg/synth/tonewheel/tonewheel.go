// Package tonewheel implements the Hammond-style drawbar organ generator
// family with rotary Leslie emulation of spec §4.10: nine additive drawbar
// harmonics plus leakage, key-click, percussion, and a two-rotor Leslie
// amplitude-modulation effect. The output is mono; the rotors apply no
// pan modulation.
package tonewheel

import (
	"math"

	"github.com/justyntemme/synthcore/pkg/dsp"
	"github.com/justyntemme/synthcore/pkg/generator"
	"github.com/justyntemme/synthcore/pkg/param"
	"github.com/justyntemme/synthcore/pkg/voice"
)

const numDrawbars = 9

// drawbarRatios are the nine classic Hammond harmonic ratios (sub-third,
// sub-fifth ... eighth), spec §4.10.
var drawbarRatios = [numDrawbars]float64{0.5, 1.5, 1, 2, 3, 4, 5, 6, 8}

// rotor models one Leslie rotor (drum or horn): a phase accumulator whose
// angular velocity ramps asymmetrically toward a slow/fast target.
type rotor struct {
	phase       float64
	rpm         float64
	targetRPM   float64
	accelTime   float64 // seconds to ramp up
	decelFactor float64 // deceleration is slower than acceleration
}

func (r *rotor) advance(dt float64) {
	diff := r.targetRPM - r.rpm
	rate := 1.0 / r.accelTime
	if diff < 0 {
		rate *= r.decelFactor
	}
	r.rpm += diff * rate * dt
	r.phase += (r.rpm / 60.0) * 2 * math.Pi * dt
	if r.phase > 2*math.Pi {
		r.phase -= 2 * math.Pi * math.Floor(r.phase/(2*math.Pi))
	}
}

type voiceState struct {
	oscPhases  [numDrawbars]float64
	percPhase  float64
	percActive bool
	percEnv    float64
	click      []float64
	clickPos   int
	amp        *dsp.ADSR
}

// Synth is a polyphonic tonewheel organ with a shared Leslie effect.
type Synth struct {
	sampleRate float64
	pool       *voice.Pool
	params     *param.Manager
	noise      *dsp.Noise

	drawbars [numDrawbars]float64

	drum *rotor
	horn *rotor
	fast bool
}

// New constructs a tonewheel generator with the given polyphony cap.
func New(sampleRate float64, polyphony int) *Synth {
	s := &Synth{
		sampleRate: sampleRate,
		noise:      dsp.NewNoise(7),
		drawbars:   [numDrawbars]float64{8, 8, 8, 0, 0, 0, 0, 0, 0},
		drum:       &rotor{rpm: 40, targetRPM: 40, accelTime: 1.5, decelFactor: 0.5},
		horn:       &rotor{rpm: 48, targetRPM: 48, accelTime: 0.5, decelFactor: 0.3},
	}
	s.pool = voice.NewPool(polyphony, s.newVoice)
	s.params = param.NewManager()
	for i := 0; i < numDrawbars; i++ {
		s.params.Register(param.Info{Name: drawbarName(i), MinValue: 0, MaxValue: 8, DefaultValue: s.drawbars[i], Stepped: true})
	}
	s.params.RegisterAll(
		param.Info{Name: "leakage", MinValue: 0, MaxValue: 0.2, DefaultValue: 0.02},
		param.Info{Name: "percussion", MinValue: 0, MaxValue: 1, DefaultValue: 0, Stepped: true},
		param.Info{Name: "percussionfast", MinValue: 0, MaxValue: 1, DefaultValue: 1, Stepped: true},
		param.Info{Name: "leslie", MinValue: 0, MaxValue: 1, DefaultValue: 1, Stepped: true},
		param.Info{Name: "lesliefast", MinValue: 0, MaxValue: 1, DefaultValue: 0, Stepped: true},
		param.Info{Name: "hornlevel", MinValue: 0, MaxValue: 1, DefaultValue: 0.6},
		param.Info{Name: "drumlevel", MinValue: 0, MaxValue: 1, DefaultValue: 0.4},
	)
	return s
}

func drawbarName(i int) string {
	names := [numDrawbars]string{"drawbar0", "drawbar1", "drawbar2", "drawbar3", "drawbar4", "drawbar5", "drawbar6", "drawbar7", "drawbar8"}
	return names[i]
}

func (s *Synth) newVoice() *voice.Voice {
	return &voice.Voice{State: &voiceState{
		amp:   dsp.NewADSR(s.sampleRate),
		click: nil,
	}}
}

// NoteOn starts a drawbar voice with key-click and optional percussion.
func (s *Synth) NoteOn(note, velocity int) {
	s.pool.Allocate(note, velocity, 0, func(v *voice.Voice, retrigger bool) {
		st := v.State.(*voiceState)
		if !retrigger {
			for i := range st.oscPhases {
				st.oscPhases[i] = 0
			}
			st.percPhase = 0
		}

		clickLen := int(0.003 * s.sampleRate)
		if clickLen < 1 {
			clickLen = 1
		}
		click := make([]float64, clickLen)
		for i := range click {
			window := 1.0 - float64(i)/float64(clickLen)
			click[i] = s.noise.White() * window * 0.3
		}
		st.click = click
		st.clickPos = 0

		st.percActive = s.params.GetOr("percussion", 0) > 0.5
		st.percEnv = 1.0

		st.amp.Attack = 0.002
		st.amp.Decay = 0.01
		st.amp.Sustain = 1.0
		st.amp.Release = 0.05
		st.amp.Trigger()
	})
}

// NoteOff releases (not chokes) the voice mapped to note, per spec §4.1's
// distinction between sustained and drum-like generators.
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

// SetParameter forwards a named parameter change. The Leslie rotor speed
// targets follow the leslie/lesliefast values at the start of each Render.
func (s *Synth) SetParameter(name string, value float64) {
	s.params.Set(name, value)
}

func (s *Synth) updateRotorTargets() {
	fast := s.params.GetOr("lesliefast", 0) > 0.5
	on := s.params.GetOr("leslie", 1) > 0.5
	if !on {
		s.drum.targetRPM = 0
		s.horn.targetRPM = 0
		return
	}
	if fast {
		s.drum.targetRPM = 340
		s.horn.targetRPM = 400
	} else {
		s.drum.targetRPM = 40
		s.horn.targetRPM = 48
	}
}

// Render mixes every active voice's additive drawbar sum through the
// shared Leslie rotor modulation into buffer[offset:offset+count].
func (s *Synth) Render(buffer []float32, offset, count int) int {
	out := buffer[offset : offset+count]
	dsp.Clear(out, 0, count)

	s.updateRotorTargets()
	var drawbars [numDrawbars]float64
	for i := 0; i < numDrawbars; i++ {
		drawbars[i] = s.params.GetOr(drawbarName(i), s.drawbars[i]) / 8.0
	}
	leakage := s.params.GetOr("leakage", 0.02)
	hornLevel := s.params.GetOr("hornlevel", 0.6)
	drumLevel := s.params.GetOr("drumlevel", 0.4)
	dt := 1.0 / s.sampleRate

	s.pool.ForEachActive(func(v *voice.Voice) bool {
		st := v.State.(*voiceState)
		freq := v.Frequency()
		active := true

		for i := 0; i < count; i++ {
			env := st.amp.Process()
			if !st.amp.IsActive() {
				active = false
			}

			var sample float64
			for h := 0; h < numDrawbars; h++ {
				if drawbars[h] <= 0 {
					continue
				}
				f := freq * drawbarRatios[h]
				st.oscPhases[h] = dsp.AdvancePhase(st.oscPhases[h], f, s.sampleRate)
				fundamental := dsp.Sample(st.oscPhases[h], dsp.WaveSine, 0.5)
				sample += fundamental * drawbars[h]

				// Leakage: a small fraction of the 2nd and 3rd partial of
				// each drawbar harmonic bleeds through.
				p2 := math.Mod(st.oscPhases[h]*2, 1.0)
				p3 := math.Mod(st.oscPhases[h]*3, 1.0)
				sample += dsp.Sample(p2, dsp.WaveSine, 0.5) * drawbars[h] * leakage
				sample += dsp.Sample(p3, dsp.WaveSine, 0.5) * drawbars[h] * leakage * 0.5
			}
			sample /= numDrawbars

			if st.clickPos < len(st.click) {
				sample += st.click[st.clickPos]
				st.clickPos++
			}

			if st.percActive {
				ratio := 2.0
				if s.params.GetOr("percussionfast", 1) < 0.5 {
					ratio = 3.0
				}
				decayRate := 15.0
				if s.params.GetOr("percussionfast", 1) < 0.5 {
					decayRate = 8.0
				}
				st.percPhase = dsp.AdvancePhase(st.percPhase, freq*ratio, s.sampleRate)
				st.percEnv *= math.Exp(-decayRate * dt)
				sample += dsp.Sample(st.percPhase, dsp.WaveSine, 0.5) * st.percEnv * 0.5
			}

			// Leslie: drum carries the low band, horn the high band, each
			// amplitude-modulated by its own rotor phase.
			s.drum.advance(dt)
			s.horn.advance(dt)
			drumMod := 0.5 + 0.5*math.Sin(s.drum.phase)
			hornDoppler := 1.0 + 0.002*math.Sin(s.horn.phase)
			hornMod := 0.5 + 0.5*math.Sin(s.horn.phase*hornDoppler)

			drumOut := sample * drumLevel * drumMod
			hornOut := sample * hornLevel * hornMod
			mixed := drumOut + hornOut

			out[i] += float32(mixed * env * float64(v.Velocity) / 127.0)
		}

		return active
	})

	dsp.SoftClipBuffer(out)
	return count
}

var _ generator.Generator = (*Synth)(nil)
