package dsp

import (
	"math"
	"math/rand"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// PadSynthSpectrum builds the Gaussian-spread, randomly-phased frequency
// spectrum described in spec §4.5 step 2 for one harmonic series, then
// returns its time-domain wavetable via an inverse FFT (step 3). N must be
// a power of two. The PRNG is seeded explicitly so that identical
// (seed, harmonics, bandwidth, bandwidthScale) always produce byte-identical
// output, satisfying property 7 in §8.
func PadSynthSpectrum(n int, f0, sampleRate float64, harmonicAmps []float64, bandwidthCents, bandwidthScale float64, seed int64) []float64 {
	half := n/2 + 1
	spectrum := make([]complex128, half)
	rng := rand.New(rand.NewSource(seed))

	for h := 1; h <= len(harmonicAmps); h++ {
		amp := harmonicAmps[h-1]
		if amp <= 1e-9 {
			continue
		}
		hf := float64(h)
		centerBin := f0 * hf * float64(n) / sampleRate
		bw := f0 * hf * (math.Pow(2.0, bandwidthCents*math.Pow(hf, bandwidthScale)/1200.0) - 1.0)
		bwBins := bw * float64(n) / sampleRate
		if bwBins < 1 {
			bwBins = 1
		}

		lo := int(centerBin - 3*bwBins)
		hi := int(centerBin + 3*bwBins)
		if lo < 0 {
			lo = 0
		}
		if hi >= half {
			hi = half - 1
		}

		for bin := lo; bin <= hi; bin++ {
			d := (float64(bin) - centerBin) / bwBins
			mag := amp * math.Exp(-d*d/2.0)
			phase := rng.Float64() * 2 * math.Pi
			spectrum[bin] += complex(mag*math.Cos(phase), mag*math.Sin(phase))
		}
	}

	normalizeSpectrumMagnitude(spectrum)

	full := make([]complex128, n)
	full[0] = complex(real(spectrum[0]), 0)
	for i := 1; i < half; i++ {
		full[i] = spectrum[i]
		if n-i < n && n-i > 0 {
			full[n-i] = complex(real(spectrum[i]), -imag(spectrum[i]))
		}
	}

	td := algofft.IFFT(full)

	out := make([]float64, n)
	peak := 0.0
	for i, c := range td {
		out[i] = real(c)
		if math.Abs(out[i]) > peak {
			peak = math.Abs(out[i])
		}
	}
	if peak > 0 {
		scale := 0.95 / peak
		for i := range out {
			out[i] *= scale
		}
	}
	return out
}

// normalizeSpectrumMagnitude scales the spectrum so its peak magnitude is 1,
// matching step 3's "normalise spectrum magnitudes" instruction.
func normalizeSpectrumMagnitude(spectrum []complex128) {
	peak := 0.0
	for _, c := range spectrum {
		m := math.Hypot(real(c), imag(c))
		if m > peak {
			peak = m
		}
	}
	if peak <= 0 {
		return
	}
	for i, c := range spectrum {
		spectrum[i] = complex(real(c)/peak, imag(c)/peak)
	}
}
