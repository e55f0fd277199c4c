// Package fm implements the YM2612/OPN-style FM generator family of spec
// §4.3: 4 operators per voice, phase-modulated through one of 8 classic
// algorithms, each operator shaped by the four-rate dsp.OPNEnvelope.
package fm

import (
	"math"

	"github.com/justyntemme/synthcore/pkg/dsp"
	"github.com/justyntemme/synthcore/pkg/generator"
	"github.com/justyntemme/synthcore/pkg/param"
	"github.com/justyntemme/synthcore/pkg/voice"
)

const numOperators = 4

// Algorithm describes one of the 8 OPN operator-connection graphs: Mod[i][j]
// is the weight with which operator j's last output feeds operator i's
// phase, and Out[i] is the weight with which operator i contributes to the
// voice's audio output.
type Algorithm struct {
	Mod [numOperators][numOperators]float64
	Out [numOperators]float64
}

// algorithms reproduces the 8 classic YM2612 operator-routing topologies,
// numbered op1..op4 as is conventional in OPN documentation.
var algorithms = [8]Algorithm{
	// 0: op1->op2->op3->op4 serial chain, op4 is output.
	{Mod: [4][4]float64{{}, {1: 0, 0: 1}, {2: 0, 1: 1}, {3: 0, 2: 1}}, Out: [4]float64{0, 0, 0, 1}},
	// 1: (op1+op2)->op3->op4
	{Mod: [4][4]float64{{}, {}, {0: 1, 1: 1}, {2: 1}}, Out: [4]float64{0, 0, 0, 1}},
	// 2: op1->op4, op2->op3->op4 (op1 and op3 both modulate op4)
	{Mod: [4][4]float64{{}, {}, {1: 1}, {0: 1, 2: 1}}, Out: [4]float64{0, 0, 0, 1}},
	// 3: op1->op2, (op2+op3)->op4
	{Mod: [4][4]float64{{}, {0: 1}, {}, {1: 1, 2: 1}}, Out: [4]float64{0, 0, 0, 1}},
	// 4: op1->op2 out, op3->op4 out (two parallel 2-op stacks)
	{Mod: [4][4]float64{{}, {0: 1}, {}, {2: 1}}, Out: [4]float64{0, 1, 0, 1}},
	// 5: op1 modulates op2, op3 and op4 in parallel, all three out
	{Mod: [4][4]float64{{}, {0: 1}, {0: 1}, {0: 1}}, Out: [4]float64{0, 1, 1, 1}},
	// 6: op1->op2 out, op3 out, op4 out (one FM pair plus two carriers)
	{Mod: [4][4]float64{{}, {0: 1}, {}, {}}, Out: [4]float64{0, 1, 1, 1}},
	// 7: all four operators are carriers (pure additive, no modulation)
	{Mod: [4][4]float64{}, Out: [4]float64{1, 1, 1, 1}},
}

// OperatorConfig is the static patch data for one operator, independent of
// any particular voice.
type OperatorConfig struct {
	Ratio  float64 // frequency multiplier relative to the note
	Detune float64 // additive Hz offset
	Level  float64 // output/modulation scaling, 0-1

	Attack, Decay1, Decay2, Release int
	SustainLevel                    float64
}

func defaultOperators() [numOperators]OperatorConfig {
	return [numOperators]OperatorConfig{
		{Ratio: 1.0, Level: 1.0, Attack: 31, Decay1: 10, Decay2: 2, Release: 8, SustainLevel: 0.4},
		{Ratio: 2.0, Level: 0.6, Attack: 28, Decay1: 12, Decay2: 3, Release: 10, SustainLevel: 0.3},
		{Ratio: 3.0, Level: 0.4, Attack: 25, Decay1: 14, Decay2: 3, Release: 10, SustainLevel: 0.2},
		{Ratio: 5.0, Level: 0.25, Attack: 22, Decay1: 16, Decay2: 4, Release: 12, SustainLevel: 0.1},
	}
}

type operatorState struct {
	phase float64
	env   *dsp.OPNEnvelope
	last  float64
}

type voiceState struct {
	ops [numOperators]operatorState
}

// Synth is a polyphonic 4-operator FM generator.
type Synth struct {
	sampleRate float64
	pool       *voice.Pool
	params     *param.Manager

	algorithm int
	feedback  float64
	ops       [numOperators]OperatorConfig
}

// New constructs an FM generator with the given polyphony cap.
func New(sampleRate float64, polyphony int) *Synth {
	s := &Synth{
		sampleRate: sampleRate,
		ops:        defaultOperators(),
	}
	s.pool = voice.NewPool(polyphony, s.newVoice)
	s.params = param.NewManager()
	s.params.RegisterAll(
		param.Info{Name: "algorithm", MinValue: 0, MaxValue: 7, DefaultValue: 0, Stepped: true},
		param.Info{Name: "feedback", MinValue: 0, MaxValue: 1, DefaultValue: 0.2},
		param.Info{Name: "op1level", MinValue: 0, MaxValue: 1, DefaultValue: s.ops[0].Level},
		param.Info{Name: "op2level", MinValue: 0, MaxValue: 1, DefaultValue: s.ops[1].Level},
		param.Info{Name: "op3level", MinValue: 0, MaxValue: 1, DefaultValue: s.ops[2].Level},
		param.Info{Name: "op4level", MinValue: 0, MaxValue: 1, DefaultValue: s.ops[3].Level},
	)
	return s
}

// SetOperators replaces the per-operator patch configuration.
func (s *Synth) SetOperators(ops [numOperators]OperatorConfig) { s.ops = ops }

func (s *Synth) newVoice() *voice.Voice {
	st := &voiceState{}
	for i := range st.ops {
		st.ops[i].env = dsp.NewOPNEnvelope(s.sampleRate)
	}
	return &voice.Voice{State: st}
}

// NoteOn triggers every operator's envelope for a new or re-struck voice.
func (s *Synth) NoteOn(note, velocity int) {
	s.pool.Allocate(note, velocity, 0, func(v *voice.Voice, retrigger bool) {
		st := v.State.(*voiceState)
		for i, cfg := range s.ops {
			o := &st.ops[i]
			if !retrigger {
				o.phase = 0
				o.last = 0
			}
			o.env.Attack = cfg.Attack
			o.env.Decay1 = cfg.Decay1
			o.env.Decay2 = cfg.Decay2
			o.env.Release = cfg.Release
			o.env.SustainLevel = cfg.SustainLevel
			o.env.Trigger()
		}
	})
}

// NoteOff releases the voice mapped to note, if any.
func (s *Synth) NoteOff(note int) {
	s.pool.Release(note, func(v *voice.Voice) {
		st := v.State.(*voiceState)
		for i := range st.ops {
			st.ops[i].env.Release()
		}
	})
}

// AllNotesOff releases every active voice.
func (s *Synth) AllNotesOff() {
	s.pool.ReleaseAll(func(v *voice.Voice) {
		st := v.State.(*voiceState)
		for i := range st.ops {
			st.ops[i].env.Release()
		}
	})
}

// SetParameter forwards a named parameter change.
func (s *Synth) SetParameter(name string, value float64) {
	s.params.Set(name, value)
}

func (s *Synth) currentAlgorithm() Algorithm {
	idx := int(s.params.GetOr("algorithm", 0))
	if idx < 0 || idx >= len(algorithms) {
		idx = 0
	}
	return algorithms[idx]
}

// Render mixes every active voice's FM output into
// buffer[offset:offset+count].
func (s *Synth) Render(buffer []float32, offset, count int) int {
	out := buffer[offset : offset+count]
	dsp.Clear(out, 0, count)

	alg := s.currentAlgorithm()
	feedback := s.params.GetOr("feedback", 0.2)
	levels := [numOperators]float64{
		s.params.GetOr("op1level", s.ops[0].Level),
		s.params.GetOr("op2level", s.ops[1].Level),
		s.params.GetOr("op3level", s.ops[2].Level),
		s.params.GetOr("op4level", s.ops[3].Level),
	}

	s.pool.ForEachActive(func(v *voice.Voice) bool {
		st := v.State.(*voiceState)
		freq := v.Frequency()
		active := false

		for i := 0; i < count; i++ {
			var outputs [numOperators]float64

			for op := 0; op < numOperators; op++ {
				o := &st.ops[op]
				env := o.env.Process()
				if o.env.IsActive() {
					active = true
				}

				var modIn float64
				for src := 0; src < numOperators; src++ {
					w := alg.Mod[op][src]
					if w != 0 {
						modIn += st.ops[src].last * w
					}
				}
				if op == 0 {
					modIn += o.last * feedback
				}

				opFreq := freq*s.ops[op].Ratio + s.ops[op].Detune
				o.phase = dsp.AdvancePhase(o.phase, opFreq, s.sampleRate)
				modPhase := math.Mod(o.phase+modIn, 1.0)
				if modPhase < 0 {
					modPhase += 1.0
				}
				sample := dsp.Sample(modPhase, dsp.WaveSine, 0.5)
				sample *= env * levels[op]
				o.last = sample
				outputs[op] = sample
			}

			var mix float64
			for op := 0; op < numOperators; op++ {
				mix += outputs[op] * alg.Out[op]
			}

			out[i] += float32(mix * float64(v.Velocity) / 127.0)
		}

		return active
	})

	dsp.SoftClipBuffer(out)
	return count
}

var _ generator.Generator = (*Synth)(nil)
