package rex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/synthcore/pkg/dsp"
	"github.com/justyntemme/synthcore/pkg/generator"
	"github.com/justyntemme/synthcore/pkg/slicer"
)

func newLoadedSynth(sampleRate float64) *Synth {
	s := New(sampleRate, 4)
	samples := make([]float64, 2000)
	for i := range samples {
		samples[i] = 0.5
	}
	s.LoadSource(&slicer.Source{Samples: samples, SampleRate: sampleRate})
	s.SetSlices([]slicer.Slice{
		{Note: 36, Start: 0, End: 500},
		{Note: 37, Start: 500, End: 1000},
	})
	return s
}

func TestRexRendersSilenceWithoutSource(t *testing.T) {
	s := New(44100, 4)
	s.NoteOn(36, 100)
	buf := make([]float32, 64)
	s.Render(buf, 0, 64)
	for _, v := range buf {
		assert.Zero(t, v)
	}
}

func TestRexRendersSilenceForUnmappedNote(t *testing.T) {
	s := newLoadedSynth(44100)
	s.NoteOn(90, 100) // no slice assigned
	buf := make([]float32, 64)
	s.Render(buf, 0, 64)
	for _, v := range buf {
		assert.Zero(t, v)
	}
}

func TestRexProducesSoundForMappedSlice(t *testing.T) {
	s := newLoadedSynth(44100)
	s.NoteOn(36, 127)

	buf := make([]float32, 128)
	s.Render(buf, 0, 128)

	var nonZero bool
	for _, v := range buf {
		if v != 0 {
			nonZero = true
		}
	}
	assert.True(t, nonZero)

	var _ generator.Generator = s
}

func TestRexOneShotVoiceStopsAtSliceEnd(t *testing.T) {
	s := newLoadedSynth(44100)
	s.SetSliceParams(36, SliceParams{Gain: 1.0, Pitch: 1.0, Mode: PlayOneShot})
	s.NoteOn(36, 100)

	// Slice is 500 frames long at a 1:1 rate; render well past its end.
	buf := make([]float32, 2000)
	s.Render(buf, 0, 2000)

	// After the slice runs out, the tail of the buffer should be silent
	// since the one-shot voice has been deactivated.
	var tailNonZero bool
	for _, v := range buf[1000:] {
		if v != 0 {
			tailNonZero = true
		}
	}
	assert.False(t, tailNonZero)
}

func TestRexLoopModeKeepsPlayingAcrossSliceEnd(t *testing.T) {
	s := newLoadedSynth(44100)
	s.SetSliceParams(36, SliceParams{Gain: 1.0, Pitch: 1.0, Mode: PlayLoop})
	s.NoteOn(36, 100)

	buf := make([]float32, 2000)
	s.Render(buf, 0, 2000)

	var nonZero bool
	for _, v := range buf[1500:] {
		if v != 0 {
			nonZero = true
		}
	}
	assert.True(t, nonZero)
}

func TestRexNoteOffReleasesOneShotVoice(t *testing.T) {
	s := newLoadedSynth(44100)
	s.NoteOn(36, 100)
	buf := make([]float32, 32)
	s.Render(buf, 0, 32)

	s.NoteOff(36)
	st := s.pool.Voices()[0].State.(*voiceState)
	assert.Equal(t, dsp.StageRelease, st.env.Stage())
	s.AllNotesOff()

	require.NotPanics(t, func() {
		s.Render(buf, 0, 32)
	})
}

func TestBoundaryFadeRampsAtEdges(t *testing.T) {
	assert.Equal(t, 0.0, boundaryFade(0, 100, 10))
	assert.InDelta(t, 0.5, boundaryFade(5, 100, 10), 1e-9)
	assert.Equal(t, 1.0, boundaryFade(50, 100, 10))
	assert.InDelta(t, 0.5, boundaryFade(95, 100, 10), 1e-9)
	assert.Equal(t, 1.0, boundaryFade(50, 100, 0))
}
