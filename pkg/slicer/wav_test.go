package slicer

import (
	"bytes"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeMonoWav(t *testing.T, sampleRate int, samples []int) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := wav.NewEncoder(&buf, sampleRate, 16, 1, 1)
	intBuf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:   samples,
	}
	require.NoError(t, enc.Write(intBuf))
	require.NoError(t, enc.Close())
	return buf.Bytes()
}

func TestLoadWavDecodesMonoPCM(t *testing.T) {
	raw := encodeMonoWav(t, 22050, []int{0, 16384, -16384, 32767})

	src, err := LoadWav(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, float64(22050), src.SampleRate)
	require.Len(t, src.Samples, 4)
	assert.InDelta(t, 0.0, src.Samples[0], 1e-6)
	assert.InDelta(t, 0.5, src.Samples[1], 1e-3)
	assert.InDelta(t, -0.5, src.Samples[2], 1e-3)
}

func TestLoadWavRejectsNonWav(t *testing.T) {
	_, err := LoadWav(bytes.NewReader([]byte("definitely not a wav file")))
	assert.Error(t, err)
}
