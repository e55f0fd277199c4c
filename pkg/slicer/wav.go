package slicer

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"
)

// Source is a mono float64 sample buffer with its native sample rate,
// ready for Detect.
type Source struct {
	Samples    []float64
	SampleRate float64
}

// LoadWav decodes a PCM WAV file via go-audio/wav, downmixing to mono by
// averaging channels.
func LoadWav(r io.Reader) (*Source, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("slicer: not a valid WAV file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("slicer: decode PCM buffer: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	frames := len(buf.Data) / channels
	samples := make([]float64, frames)

	maxVal := float64(int(1) << uint(buf.SourceBitDepth-1))
	if buf.SourceBitDepth == 0 {
		maxVal = 32768
	}

	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		samples[i] = (sum / float64(channels)) / maxVal
	}

	return &Source{Samples: samples, SampleRate: float64(buf.Format.SampleRate)}, nil
}
