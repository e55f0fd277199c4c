package dsp

import "math"

// OnePole is a one-pole lowpass used for brightness control and Karplus-
// Strong damping: y += brightness*(x-y).
type OnePole struct {
	State float64
}

// Process runs one sample through the filter with the given brightness
// coefficient in (0,1].
func (f *OnePole) Process(x, brightness float64) float64 {
	f.State += brightness * (x - f.State)
	return f.State
}

// Reset clears filter state.
func (f *OnePole) Reset() { f.State = 0 }

// BiquadKind selects an RBJ biquad response.
type BiquadKind int

const (
	BiquadLowpass BiquadKind = iota
	BiquadHighpass
	BiquadBandpass
	BiquadNotch
	BiquadPeaking
)

// Biquad is a standard RBJ (Robert Bristow-Johnson) cookbook biquad filter,
// used for body-resonance modeling (Karplus-Strong) and general tone
// shaping. Coefficients are recomputed whenever SetParams is called; the
// render path only calls Process.
type Biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

// SetParams configures the biquad for the given kind, center/cutoff
// frequency, Q, and sample rate.
func (b *Biquad) SetParams(kind BiquadKind, freq, q, sampleRate float64) {
	if freq <= 0 {
		freq = 1
	}
	if freq > sampleRate*0.49 {
		freq = sampleRate * 0.49
	}
	if q <= 0 {
		q = 0.707
	}

	omega := 2.0 * math.Pi * freq / sampleRate
	sn, cs := math.Sin(omega), math.Cos(omega)
	alpha := sn / (2.0 * q)

	var b0, b1, b2, a0, a1, a2 float64

	switch kind {
	case BiquadLowpass:
		b0 = (1 - cs) / 2
		b1 = 1 - cs
		b2 = (1 - cs) / 2
		a0 = 1 + alpha
		a1 = -2 * cs
		a2 = 1 - alpha
	case BiquadHighpass:
		b0 = (1 + cs) / 2
		b1 = -(1 + cs)
		b2 = (1 + cs) / 2
		a0 = 1 + alpha
		a1 = -2 * cs
		a2 = 1 - alpha
	case BiquadBandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
		a0 = 1 + alpha
		a1 = -2 * cs
		a2 = 1 - alpha
	case BiquadNotch:
		b0 = 1
		b1 = -2 * cs
		b2 = 1
		a0 = 1 + alpha
		a1 = -2 * cs
		a2 = 1 - alpha
	case BiquadPeaking:
		b0 = 1 + alpha
		b1 = -2 * cs
		b2 = 1 - alpha
		a0 = 1 + alpha
		a1 = -2 * cs
		a2 = 1 - alpha
	}

	b.b0, b.b1, b.b2 = b0/a0, b1/a0, b2/a0
	b.a1, b.a2 = a1/a0, a2/a0
}

// Process runs one sample through the biquad (Direct Form I).
func (b *Biquad) Process(x float64) float64 {
	y := b.b0*x + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	b.x2, b.x1 = b.x1, x
	b.y2, b.y1 = b.y1, y
	return y
}

// Reset clears the filter's history.
func (b *Biquad) Reset() {
	b.x1, b.x2, b.y1, b.y2 = 0, 0, 0, 0
}

// BiquadBank runs several biquads in parallel and sums their output,
// used for Karplus-Strong body resonance (up to 8 bands) per spec §4.6.
type BiquadBank struct {
	Bands []Biquad
}

// NewBiquadBank builds a bank from (freq, q) pairs at the given sample rate,
// each configured as a bandpass resonance.
func NewBiquadBank(pairs [][2]float64, sampleRate float64) *BiquadBank {
	bank := &BiquadBank{Bands: make([]Biquad, len(pairs))}
	for i, p := range pairs {
		bank.Bands[i].SetParams(BiquadBandpass, p[0], p[1], sampleRate)
	}
	return bank
}

// Process sums all bands' response to x.
func (bk *BiquadBank) Process(x float64) float64 {
	var sum float64
	for i := range bk.Bands {
		sum += bk.Bands[i].Process(x)
	}
	return sum
}

// StateVariableFilter is a Chamberlin-topology SVF giving simultaneous
// low/high/band/notch outputs from one set of coefficients, offered
// alongside Biquad as the subtractive generator's selectable filter type
// (spec §4.4).
type StateVariableFilter struct {
	SampleRate float64
	Frequency  float64
	Resonance  float64

	lowpass, highpass, bandpass, notch float64
	prevBandpass, prevLowpass          float64
}

// NewStateVariableFilter creates an SVF at the given sample rate with a
// 1 kHz default cutoff and a resonance of 1.
func NewStateVariableFilter(sampleRate float64) *StateVariableFilter {
	return &StateVariableFilter{SampleRate: sampleRate, Frequency: 1000.0, Resonance: 1.0}
}

// SetFrequency sets the cutoff, clamped well below Nyquist for stability.
func (f *StateVariableFilter) SetFrequency(freq float64) {
	f.Frequency = Clamp(freq, 20.0, f.SampleRate*0.45)
}

// SetResonance sets the Q factor.
func (f *StateVariableFilter) SetResonance(q float64) {
	f.Resonance = Clamp(q, 0.5, 20.0)
}

// Process runs one sample through the filter, returning all four outputs.
func (f *StateVariableFilter) Process(input float64) (lowpass, highpass, bandpass, notch float64) {
	w := f.Frequency / f.SampleRate
	freq := 2.0 * math.Sin(math.Pi*w)
	if freq > 1.5 {
		freq = 1.5
	}
	damp := 2.0 / f.Resonance

	f.highpass = input - f.prevLowpass - damp*f.prevBandpass
	f.bandpass = freq*f.highpass + f.prevBandpass
	f.lowpass = freq*f.bandpass + f.prevLowpass
	f.notch = f.highpass + f.lowpass

	if math.Abs(f.lowpass) > 10.0 {
		f.lowpass = 10.0 * math.Tanh(f.lowpass/10.0)
	}
	if math.Abs(f.bandpass) > 10.0 {
		f.bandpass = 10.0 * math.Tanh(f.bandpass/10.0)
	}

	f.prevBandpass = f.bandpass
	f.prevLowpass = f.lowpass

	return f.lowpass, f.highpass, f.bandpass, f.notch
}

// ProcessLowpass runs one sample and returns only the lowpass output.
func (f *StateVariableFilter) ProcessLowpass(input float64) float64 {
	lp, _, _, _ := f.Process(input)
	return lp
}

// Reset clears the filter's history.
func (f *StateVariableFilter) Reset() {
	f.lowpass, f.highpass, f.bandpass, f.notch = 0, 0, 0, 0
	f.prevBandpass, f.prevLowpass = 0, 0
}
