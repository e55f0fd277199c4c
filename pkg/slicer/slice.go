// Package slicer implements the REX-style sample slicer of spec §4.13:
// transient/equal/beat/manual slice detection, zero-crossing snapping,
// and the slice data model consumed by pkg/synth/rex's playback voice.
package slicer

import "math"

// Slice is one detected or manually placed region of a sample buffer,
// assigned to a MIDI note for lookup at noteOn.
type Slice struct {
	Note       int
	Start, End int // sample-frame offsets into the source buffer
}

// Mode selects how Detect partitions a sample buffer into slices.
type Mode int

const (
	ModeTransient Mode = iota
	ModeEqual
	ModeBeat
	ModeManual
)

// Options configures Detect. Not every field applies to every Mode.
type Options struct {
	Mode Mode

	// Transient: a slice boundary is placed wherever short-term energy
	// rises by more than Threshold times the trailing window's energy.
	Threshold  float64
	WindowSize int

	// Equal: split into exactly Count equal-length pieces.
	Count int

	// Beat: split at a BPM/BeatsPerSlice grid.
	BPM           float64
	BeatsPerSlice float64

	// Manual: explicit slice start offsets (End is inferred from the
	// next start, or the buffer length for the last slice).
	ManualStarts []int

	// SnapWindow bounds the zero-crossing search radius (in frames)
	// around each detected boundary.
	SnapWindow int

	// BaseNote is the MIDI note assigned to the first slice; subsequent
	// slices are assigned consecutive ascending notes.
	BaseNote int

	SampleRate float64
}

// Detect partitions samples into slices per opts.Mode, snapping every
// boundary (other than 0 and len(samples)) to the nearest zero crossing
// within opts.SnapWindow frames, per spec §4.13.
func Detect(samples []float64, opts Options) []Slice {
	var bounds []int
	switch opts.Mode {
	case ModeEqual:
		bounds = equalBounds(len(samples), opts.Count)
	case ModeBeat:
		bounds = beatBounds(len(samples), opts)
	case ModeManual:
		bounds = manualBounds(len(samples), opts.ManualStarts)
	default:
		bounds = transientBounds(samples, opts)
	}

	window := opts.SnapWindow
	if window <= 0 {
		window = 64
	}
	for i, b := range bounds {
		if i == 0 || i == len(bounds)-1 {
			continue
		}
		bounds[i] = snapToZeroCrossing(samples, b, window)
	}

	slices := make([]Slice, 0, len(bounds)-1)
	note := opts.BaseNote
	for i := 0; i < len(bounds)-1; i++ {
		slices = append(slices, Slice{Note: note, Start: bounds[i], End: bounds[i+1]})
		note++
	}
	return slices
}

func equalBounds(n, count int) []int {
	if count < 1 {
		count = 1
	}
	bounds := make([]int, count+1)
	for i := 0; i <= count; i++ {
		bounds[i] = i * n / count
	}
	return bounds
}

func beatBounds(n int, opts Options) []int {
	if opts.BPM <= 0 || opts.BeatsPerSlice <= 0 || opts.SampleRate <= 0 {
		return []int{0, n}
	}
	secondsPerBeat := 60.0 / opts.BPM
	framesPerSlice := int(secondsPerBeat * opts.BeatsPerSlice * opts.SampleRate)
	if framesPerSlice < 1 {
		return []int{0, n}
	}
	var bounds []int
	for pos := 0; pos < n; pos += framesPerSlice {
		bounds = append(bounds, pos)
	}
	bounds = append(bounds, n)
	return bounds
}

func manualBounds(n int, starts []int) []int {
	bounds := append([]int{}, starts...)
	if len(bounds) == 0 || bounds[0] != 0 {
		bounds = append([]int{0}, bounds...)
	}
	bounds = append(bounds, n)
	return bounds
}

// transientBounds places a boundary wherever the short-term energy of a
// sliding window rises by more than Threshold times the preceding
// window's energy (spec §4.13's onset-detection-by-energy-ratio rule).
func transientBounds(samples []float64, opts Options) []int {
	win := opts.WindowSize
	if win <= 0 {
		win = 512
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = 1.5
	}

	bounds := []int{0}
	prevEnergy := windowEnergy(samples, 0, win)
	for pos := win; pos+win <= len(samples); pos += win {
		energy := windowEnergy(samples, pos, win)
		if prevEnergy > 1e-9 && energy/prevEnergy >= threshold {
			bounds = append(bounds, pos)
		}
		prevEnergy = energy
	}
	bounds = append(bounds, len(samples))
	return bounds
}

func windowEnergy(samples []float64, start, length int) float64 {
	end := start + length
	if end > len(samples) {
		end = len(samples)
	}
	var sum float64
	for i := start; i < end; i++ {
		sum += samples[i] * samples[i]
	}
	if end > start {
		return sum / float64(end-start)
	}
	return 0
}

// snapToZeroCrossing returns the frame index nearest pos (within
// +/-window) where the signal changes sign, reducing edge clicks at
// slice boundaries (spec §4.13).
func snapToZeroCrossing(samples []float64, pos, window int) int {
	lo := pos - window
	if lo < 1 {
		lo = 1
	}
	hi := pos + window
	if hi > len(samples)-1 {
		hi = len(samples) - 1
	}

	best := pos
	bestDist := math.MaxInt32
	for i := lo; i <= hi; i++ {
		if (samples[i-1] >= 0) != (samples[i] >= 0) {
			dist := i - pos
			if dist < 0 {
				dist = -dist
			}
			if dist < bestDist {
				bestDist = dist
				best = i
			}
		}
	}
	return best
}
