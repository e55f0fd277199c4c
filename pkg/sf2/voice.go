package sf2

import (
	"math"

	"github.com/justyntemme/synthcore/pkg/dsp"
)

// playbackState is the per-voice algorithm payload: a fractional read
// position into the shared sample pool, the resolved sample/loop bounds,
// the playback rate, and the DAHDSR amplitude envelope.
type playbackState struct {
	sample   *SampleHeader
	pos      float64
	rate     float64
	loopMode SampleMode

	pan              float64
	velocityGain     float64
	initialAttenDB   float64

	env *dsp.DAHDSR
}

// resolveZone returns the first preset zone that links an instrument and
// whose key/velocity range covers (note, velocity), per spec §4.12's
// "first matching zone wins" selection rule. The second result is always
// an empty Zone; the instrument zone is chosen afterwards by
// findInstrumentZone.
func resolveZone(preset Preset, note, velocity int) (Zone, Zone, bool) {
	for _, pz := range preset.Zones {
		if pz.InstrumentIndex < 0 || !pz.matches(note, velocity) {
			continue
		}
		return pz, Zone{}, true
	}
	return Zone{}, Zone{}, false
}

// findInstrumentZone returns the first instrument zone matching
// (note, velocity) that links a sample.
func findInstrumentZone(inst Instrument, note, velocity int) (Zone, bool) {
	for _, iz := range inst.Zones {
		if iz.SampleIndex < 0 || !iz.matches(note, velocity) {
			continue
		}
		return iz, true
	}
	return Zone{}, false
}

// playbackRate implements spec §4.12's rate formula:
//
//	(sampleRate_sample/sampleRate_output) * 2^((note-rootKey+coarseTune+fineTune/100)/12)
func playbackRate(sh *SampleHeader, gens GeneratorSet, note int, outputSampleRate float64) float64 {
	rootKey := int(sh.OriginalPitch)
	if rk := gens.Get(GenOverridingRootKey, -1); rk >= 0 {
		rootKey = int(rk)
	}
	coarse := float64(gens.Get(GenCoarseTune, 0))
	fine := float64(gens.Get(GenFineTune, 0)) / 100.0
	semis := float64(note-rootKey) + coarse + fine
	ratio := float64(sh.SampleRate) / outputSampleRate
	return ratio * math.Pow(2.0, semis/12.0)
}

// newPlaybackState builds the generator-derived playback parameters for
// one triggered note from the additively combined preset+instrument
// generator set (spec §3: "preset-generator contribution is additive").
func newPlaybackState(sampleRate float64, sh *SampleHeader, gens GeneratorSet, note, velocity int) *playbackState {
	env := dsp.NewDAHDSR(sampleRate)
	env.Delay = timecentsToSeconds(gens.Get(GenDelayVolEnv, -32768))
	env.Attack = timecentsToSeconds(gens.Get(GenAttackVolEnv, -32768))
	env.Hold = timecentsToSeconds(gens.Get(GenHoldVolEnv, -32768))
	env.Decay = timecentsToSeconds(gens.Get(GenDecayVolEnv, -32768))
	env.Release = timecentsToSeconds(gens.Get(GenReleaseVolEnv, -32768))
	sustainCb := float64(gens.Get(GenSustainVolEnv, 0))
	env.Sustain = dsp.Clamp(1.0-sustainCb/1000.0, 0, 1)

	panGen := float64(gens.Get(GenPan, 0)) / 1000.0 // SF2 pan is in tenths of a percent, [-500,500]

	// Velocity-to-attenuation: (1 - v/127) * 48dB, spec §4.12.
	velAttenDB := (1.0 - float64(velocity)/127.0) * 48.0
	initAttenDB := float64(gens.Get(GenInitialAttenuation, 0)) / 10.0 // centibels -> dB
	totalAttenDB := velAttenDB + initAttenDB
	gain := math.Pow(10.0, -totalAttenDB/20.0)

	st := &playbackState{
		sample:         sh,
		rate:           playbackRate(sh, gens, note, sampleRate),
		loopMode:       SampleMode(gens.Get(GenSampleModes, 0)),
		pan:            dsp.Clamp(panGen, -1, 1),
		velocityGain:   gain,
		initialAttenDB: initAttenDB,
		env:            env,
	}
	st.env.Trigger()
	return st
}

// advance renders one sample of the voice, returning its stereo
// contribution and whether the voice should keep sounding.
func (st *playbackState) advance(data []float32) (left, right float32, active bool) {
	sh := st.sample
	loopStart := float64(sh.LoopStart - sh.Start)
	loopEnd := float64(sh.LoopEnd - sh.Start)
	sampleLen := float64(sh.End - sh.Start)

	i0 := int(math.Floor(st.pos))
	frac := st.pos - float64(i0)
	base := int(sh.Start)

	var s0, s1 float64
	if base+i0 >= 0 && base+i0 < len(data) {
		s0 = float64(data[base+i0])
	}
	i1 := i0 + 1
	looping := st.loopMode == SampleModeContinuousLoop || st.loopMode == SampleModeLoopDuringRelease
	if looping && float64(i1) >= loopEnd && loopEnd > loopStart {
		i1 = int(loopStart)
	}
	if base+i1 >= 0 && base+i1 < len(data) {
		s1 = float64(data[base+i1])
	}
	sample := dsp.Lerp(s0, s1, frac)

	envVal := st.env.Process()
	if !st.env.IsActive() {
		return 0, 0, false
	}

	l, r := dsp.Pan(st.pan)
	amp := envVal * st.velocityGain
	left = float32(sample * amp * l)
	right = float32(sample * amp * r)

	st.pos += st.rate
	if looping && loopEnd > loopStart {
		for st.pos >= loopEnd {
			st.pos -= loopEnd - loopStart
		}
	} else if st.pos >= sampleLen {
		return left, right, false
	}
	return left, right, true
}

func (st *playbackState) release() {
	st.env.Release()
}
