package graph

import (
	"github.com/justyntemme/synthcore/pkg/dsp"
	"github.com/justyntemme/synthcore/pkg/generator"
)

// VCO is a voltage-controlled-oscillator module: a free-running phase
// accumulator at a base frequency, modulated by its "pitch" CV input
// (added to the base frequency in Hz). It has no gate input; the base
// frequency is set from a MIDI note by calling NoteOn.
type VCO struct {
	*BaseModule

	sampleRate float64
	waveform   dsp.Waveform
	baseFreq   float64
	phase      float64
}

// NewVCO creates a VCO module named name producing waveform at sampleRate.
func NewVCO(name string, sampleRate float64, waveform dsp.Waveform) *VCO {
	v := &VCO{BaseModule: NewBaseModule(name), sampleRate: sampleRate, waveform: waveform, baseFreq: 440}
	v.AddInput("pitch", KindCV, 0)
	v.AddOutput("out", KindAudio, 0)
	return v
}

// NoteOn sets the VCO's base frequency from a MIDI note (the graph has no
// built-in note routing; a patch's owning generator calls this directly
// when wiring a VCO to a voice).
func (v *VCO) NoteOn(note int) { v.baseFreq = generator.Frequency(note) }

// Process fills the "out" port with blockSize samples of the oscillator
// at baseFreq + pitch CV (in Hz).
func (v *VCO) Process(blockSize int) {
	pitchIn := v.Port("pitch", DirectionInput)
	out := v.Port("out", DirectionOutput)
	for i := 0; i < blockSize; i++ {
		freq := v.baseFreq + float64(pitchIn.Read(i))
		v.phase = dsp.AdvancePhase(v.phase, freq, v.sampleRate)
		out.Buffer[i] = float32(dsp.Sample(v.phase, v.waveform, 0.5))
	}
}

// VCA is a voltage-controlled amplifier: its "in" audio input is scaled
// by its "cv" control input (0-1, unconnected reads as 0 — silence until
// patched) and written to "out".
type VCA struct {
	*BaseModule
}

// NewVCA creates a VCA module named name.
func NewVCA(name string) *VCA {
	v := &VCA{BaseModule: NewBaseModule(name)}
	v.AddInput("in", KindAudio, 0)
	v.AddInput("cv", KindCV, 0)
	v.AddOutput("out", KindAudio, 0)
	return v
}

// Process multiplies "in" by "cv" sample-for-sample into "out".
func (v *VCA) Process(blockSize int) {
	in := v.Port("in", DirectionInput)
	cv := v.Port("cv", DirectionInput)
	out := v.Port("out", DirectionOutput)
	for i := 0; i < blockSize; i++ {
		out.Buffer[i] = in.Read(i) * cv.Read(i)
	}
}

// EnvelopeModule exposes a dsp.ADSR as a graph module producing a CV
// output, so a patch can wire an envelope into a VCA's "cv" input rather
// than every generator hard-coding its own.
type EnvelopeModule struct {
	*BaseModule

	Env *dsp.ADSR
}

// NewEnvelopeModule wraps env as a graph module named name.
func NewEnvelopeModule(name string, env *dsp.ADSR) *EnvelopeModule {
	e := &EnvelopeModule{BaseModule: NewBaseModule(name), Env: env}
	e.AddOutput("out", KindCV, 0)
	return e
}

// Trigger starts the envelope (gate-on).
func (e *EnvelopeModule) Trigger() { e.Env.Trigger() }

// Release starts the envelope's release stage (gate-off).
func (e *EnvelopeModule) Release() { e.Env.Release() }

// Process fills "out" with blockSize envelope samples.
func (e *EnvelopeModule) Process(blockSize int) {
	out := e.Port("out", DirectionOutput)
	for i := 0; i < blockSize; i++ {
		out.Buffer[i] = float32(e.Env.Process())
	}
}

// Mixer sums a fixed number of audio inputs (the channel count given to
// NewMixer) into a single "out" port.
type Mixer struct {
	*BaseModule
	channels []string
}

// NewMixer creates a Mixer module named name with the given number of
// input channels, named "in0", "in1", ...
func NewMixer(name string, channels int) *Mixer {
	m := &Mixer{BaseModule: NewBaseModule(name)}
	for i := 0; i < channels; i++ {
		cname := channelName(i)
		m.AddInput(cname, KindAudio, 0)
		m.channels = append(m.channels, cname)
	}
	m.AddOutput("out", KindAudio, 0)
	return m
}

func channelName(i int) string {
	const digits = "0123456789"
	if i < 10 {
		return "in" + string(digits[i])
	}
	return "in" + string(digits[i/10]) + string(digits[i%10])
}

// Process sums every channel input into "out".
func (m *Mixer) Process(blockSize int) {
	out := m.Port("out", DirectionOutput)
	ins := m.Inputs()
	for i := 0; i < blockSize; i++ {
		var sum float32
		for _, in := range ins {
			sum += in.Read(i)
		}
		out.Buffer[i] = sum
	}
}

// Output is the graph's terminal module: it has "left" and "right" audio
// inputs and interleaves them into the caller's buffer on Render (spec
// §4.14 step 3). Connecting only "left" duplicates it to both channels
// (mono-to-stereo).
type Output struct {
	*BaseModule
}

// NewOutput creates the designated Output module named name.
func NewOutput(name string) *Output {
	o := &Output{BaseModule: NewBaseModule(name)}
	o.AddInput("left", KindAudio, 0)
	o.AddInput("right", KindAudio, 0)
	return o
}

// Process is a no-op: Output has no output ports of its own, its inputs
// are read directly by Interleave.
func (o *Output) Process(blockSize int) {}

// Interleave writes blockSize stereo frames (2*blockSize float32s) from
// this module's left/right inputs into out.
func (o *Output) Interleave(out []float32, blockSize int) {
	left := o.Port("left", DirectionInput)
	right := o.Port("right", DirectionInput)
	for i := 0; i < blockSize; i++ {
		l := left.Read(i)
		r := right.Read(i)
		if right.ConnectedFrom == nil {
			r = l
		}
		idx := i * 2
		if idx+1 >= len(out) {
			break
		}
		out[idx] = l
		out[idx+1] = r
	}
}
