package slicer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDetectEqualSplitsIntoEqualPieces(t *testing.T) {
	samples := make([]float64, 1000)
	slices := Detect(samples, Options{Mode: ModeEqual, Count: 4, BaseNote: 36})

	require.Len(t, slices, 4)
	assert.Equal(t, 0, slices[0].Start)
	assert.Equal(t, 1000, slices[3].End)
	for i := 1; i < len(slices); i++ {
		assert.Equal(t, slices[i-1].End, slices[i].Start)
	}
	assert.Equal(t, 36, slices[0].Note)
	assert.Equal(t, 39, slices[3].Note)
}

func TestDetectManualUsesExplicitStarts(t *testing.T) {
	samples := make([]float64, 100)
	slices := Detect(samples, Options{Mode: ModeManual, ManualStarts: []int{0, 20, 60}, BaseNote: 0})

	require.Len(t, slices, 3)
	assert.Equal(t, []Slice{
		{Note: 0, Start: 0, End: 20},
		{Note: 1, Start: 20, End: 60},
		{Note: 2, Start: 60, End: 100},
	}, slices)
}

func TestDetectManualInsertsImplicitZeroStart(t *testing.T) {
	samples := make([]float64, 50)
	slices := Detect(samples, Options{Mode: ModeManual, ManualStarts: []int{10}, BaseNote: 5})

	require.Len(t, slices, 2)
	assert.Equal(t, 0, slices[0].Start)
	assert.Equal(t, 10, slices[0].End)
	assert.Equal(t, 10, slices[1].Start)
	assert.Equal(t, 50, slices[1].End)
}

func TestDetectBeatGrid(t *testing.T) {
	sampleRate := 1000.0
	bpm := 120.0 // 0.5s per beat -> 500 frames/beat at this sample rate
	samples := make([]float64, 2000)

	slices := Detect(samples, Options{
		Mode:          ModeBeat,
		BPM:           bpm,
		BeatsPerSlice: 1,
		SampleRate:    sampleRate,
		BaseNote:      0,
	})

	require.Len(t, slices, 4)
	assert.Equal(t, 0, slices[0].Start)
	assert.Equal(t, 500, slices[0].End)
	assert.Equal(t, 2000, slices[3].End)
}

func TestDetectBeatFallsBackToWholeBufferWithoutTempo(t *testing.T) {
	samples := make([]float64, 100)
	slices := Detect(samples, Options{Mode: ModeBeat})

	require.Len(t, slices, 1)
	assert.Equal(t, 0, slices[0].Start)
	assert.Equal(t, 100, slices[0].End)
}

func TestDetectTransientFindsEnergyJump(t *testing.T) {
	win := 16
	samples := make([]float64, win*4)
	// Quiet background everywhere except a loud burst in the third window,
	// so the energy ratio has a nonzero denominator to jump from.
	for i := range samples {
		samples[i] = 0.1
	}
	for i := win * 2; i < win*3; i++ {
		samples[i] = 1.0
	}

	slices := Detect(samples, Options{Mode: ModeTransient, WindowSize: win, Threshold: 1.2, SnapWindow: 0})
	require.GreaterOrEqual(t, len(slices), 2)
	assert.Equal(t, 0, slices[0].Start)
	assert.Equal(t, len(samples), slices[len(slices)-1].End)
}

func TestSnapToZeroCrossingFindsNearestSignChange(t *testing.T) {
	samples := []float64{1, 1, 1, -1, -1, -1, -1, 1, 1}
	// Sign change between index 2 (positive) and 3 (negative).
	pos := snapToZeroCrossing(samples, 4, 4)
	assert.True(t, pos >= 1 && pos < len(samples))
	assert.NotEqual(t, (samples[pos-1] >= 0), (samples[pos] >= 0))
}

func TestDetectBoundariesStayWithinBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(8, 2000).Draw(t, "n")
		count := rapid.IntRange(1, 16).Draw(t, "count")
		samples := make([]float64, n)

		slices := Detect(samples, Options{Mode: ModeEqual, Count: count, SnapWindow: 4})

		require.NotEmpty(t, slices)
		assert.Equal(t, 0, slices[0].Start)
		assert.Equal(t, n, slices[len(slices)-1].End)
		for _, s := range slices {
			assert.True(t, s.Start >= 0 && s.Start <= n)
			assert.True(t, s.End >= 0 && s.End <= n)
			assert.True(t, s.Start <= s.End)
		}
	})
}
