package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/cobra"

	"github.com/justyntemme/synthcore/internal/logging"
	"github.com/justyntemme/synthcore/pkg/generator"
	"github.com/justyntemme/synthcore/pkg/registry"
	"github.com/justyntemme/synthcore/pkg/sf2"
	"github.com/justyntemme/synthcore/pkg/slicer"
	"github.com/justyntemme/synthcore/pkg/synth/rex"
)

const renderSampleRate = 44100
const renderBlockSize = 512

var (
	renderGeneratorID string
	renderNote        int
	renderVelocity    int
	renderDuration    float64
	renderRelease     float64
	renderOutputPath  string
	renderSF2Path     string
	renderWavInPath   string
	renderPolyphony   int
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a single note through a generator family to a WAV file",
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderGeneratorID, "generator", "subtractive", "generator family id (see list-generators)")
	renderCmd.Flags().IntVar(&renderNote, "note", 60, "MIDI note number")
	renderCmd.Flags().IntVar(&renderVelocity, "velocity", 100, "MIDI velocity")
	renderCmd.Flags().Float64Var(&renderDuration, "duration", 1.0, "note-on duration in seconds")
	renderCmd.Flags().Float64Var(&renderRelease, "release-tail", 1.0, "extra silence-render tail in seconds after note-off")
	renderCmd.Flags().StringVar(&renderOutputPath, "output", "out.wav", "output WAV path")
	renderCmd.Flags().StringVar(&renderSF2Path, "sf2", "", "SoundFont file (required for --generator=sf2)")
	renderCmd.Flags().StringVar(&renderWavInPath, "wav-in", "", "source WAV file (required for --generator=rex)")
	renderCmd.Flags().IntVar(&renderPolyphony, "polyphony", 8, "polyphony cap")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	logger := logging.New("render")

	ctx := generator.AudioContext{SampleRate: renderSampleRate, Channels: 1, BufferSize: renderBlockSize}
	gen, ok := registry.Create(renderGeneratorID, ctx, renderPolyphony)
	if !ok {
		return fmt.Errorf("unknown generator family %q", renderGeneratorID)
	}

	if err := prepareGenerator(gen, logger); err != nil {
		return err
	}

	totalSamples := int((renderDuration + renderRelease) * renderSampleRate)
	buffer := make([]float32, totalSamples)

	gen.NoteOn(renderNote, renderVelocity)
	noteOffSample := int(renderDuration * renderSampleRate)

	for offset := 0; offset < totalSamples; offset += renderBlockSize {
		count := renderBlockSize
		if offset+count > totalSamples {
			count = totalSamples - offset
		}
		if offset <= noteOffSample && offset+count > noteOffSample {
			gen.NoteOff(renderNote)
		}
		gen.Render(buffer, offset, count)
	}

	logger.Info("rendered", "generator", renderGeneratorID, "samples", totalSamples, "output", renderOutputPath)
	return writeMonoWav(renderOutputPath, buffer, renderSampleRate)
}

// prepareGenerator attaches any external resource a generator family
// needs before it can produce sound (SoundFont file, source WAV for
// slicing), per spec §7's resource-error-tolerant loader contract.
func prepareGenerator(gen generator.Generator, logger *log.Logger) error {
	switch g := gen.(type) {
	case *sf2.Synth:
		if renderSF2Path == "" {
			return fmt.Errorf("--sf2 is required for the sf2 generator")
		}
		if err := g.Load(renderSF2Path); err != nil {
			logger.Warn("soundfont failed to load, rendering silence", "err", err)
		}
	case *rex.Synth:
		if renderWavInPath == "" {
			return fmt.Errorf("--wav-in is required for the rex generator")
		}
		f, err := os.Open(renderWavInPath)
		if err != nil {
			logger.Warn("source WAV failed to open, rendering silence", "err", err)
			return nil
		}
		defer f.Close()
		src, err := slicer.LoadWav(f)
		if err != nil {
			logger.Warn("source WAV failed to decode, rendering silence", "err", err)
			return nil
		}
		g.LoadSource(src)
		slices := slicer.Detect(src.Samples, slicer.Options{
			Mode:       slicer.ModeEqual,
			Count:      16,
			SnapWindow: 64,
			BaseNote:   48,
			SampleRate: src.SampleRate,
		})
		g.SetSlices(slices)
	}
	return nil
}

// writeMonoWav encodes a mono float32 buffer as 16-bit PCM stereo (both
// channels identical), via go-audio/wav.
func writeMonoWav(path string, buffer []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)
	defer enc.Close()

	intBuf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:   make([]int, len(buffer)*2),
	}
	for i, s := range buffer {
		v := int(s * 32767)
		intBuf.Data[i*2] = v
		intBuf.Data[i*2+1] = v
	}
	return enc.Write(intBuf)
}

// writeInterleavedWav encodes an already-interleaved stereo float32
// buffer as 16-bit PCM, via go-audio/wav.
func writeInterleavedWav(path string, interleaved []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)
	defer enc.Close()

	intBuf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:   make([]int, len(interleaved)),
	}
	for i, s := range interleaved {
		intBuf.Data[i] = int(s * 32767)
	}
	return enc.Write(intBuf)
}
