package dsp

import "math/rand"

// Noise is a small seeded noise generator used by the drum machine,
// Karplus-Strong excitation and modal exciters. Using a local *rand.Rand
// (rather than the global source) keeps each voice's noise sequence
// independent and makes PadSynth-style reproducibility possible elsewhere.
type Noise struct {
	rng *rand.Rand

	// One-pole state for the pink approximation (Paul Kellet's method,
	// truncated to three taps — good enough for percussive shaping and far
	// cheaper than a full pink-noise filter bank).
	b0, b1, b2 float64
}

// NewNoise creates a noise generator seeded deterministically.
func NewNoise(seed int64) *Noise {
	return &Noise{rng: rand.New(rand.NewSource(seed))}
}

// White returns one white-noise sample in [-1,1].
func (n *Noise) White() float64 {
	return n.rng.Float64()*2.0 - 1.0
}

// Pink returns one approximately-pink-noise sample in [-1,1].
func (n *Noise) Pink() float64 {
	white := n.White()
	n.b0 = 0.99765*n.b0 + white*0.0990460
	n.b1 = 0.96300*n.b1 + white*0.2965164
	n.b2 = 0.57000*n.b2 + white*1.0526913
	return (n.b0 + n.b1 + n.b2 + white*0.1848) * 0.2
}

// Metallic approximates inharmonic "metallic" noise by summing a handful of
// non-integer-ratio sine partials and mixing them 50/50 with white noise, used by
// hi-hat/cymbal voices in the drum machine.
func (n *Noise) Metallic(phase *float64, freq, sampleRate float64) float64 {
	ratios := [6]float64{1.0, 1.342, 1.732, 2.222, 2.837, 3.161}
	var sum float64
	for _, r := range ratios {
		sum += Sample(fracPart(*phase*r), WaveSine, 0.5)
	}
	*phase = AdvancePhase(*phase, freq, sampleRate)
	return (sum/float64(len(ratios)))*0.5 + n.White()*0.5
}

func fracPart(x float64) float64 {
	_, f := splitFloat(x)
	return f
}

func splitFloat(x float64) (int, float64) {
	i := int(x)
	return i, x - float64(i)
}
