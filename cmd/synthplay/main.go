// Command synthplay opens a live audio output stream and plays a single
// note through a chosen generator family in real time, using
// ebitengine/oto/v3 (SPEC_FULL §0).
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/spf13/cobra"

	"github.com/justyntemme/synthcore/internal/logging"
	"github.com/justyntemme/synthcore/pkg/generator"
	"github.com/justyntemme/synthcore/pkg/registry"
	"github.com/justyntemme/synthcore/pkg/sf2"

	_ "github.com/justyntemme/synthcore/pkg/synth/drum"
	_ "github.com/justyntemme/synthcore/pkg/synth/fm"
	_ "github.com/justyntemme/synthcore/pkg/synth/karplusstrong"
	_ "github.com/justyntemme/synthcore/pkg/synth/modal"
	_ "github.com/justyntemme/synthcore/pkg/synth/padsynth"
	_ "github.com/justyntemme/synthcore/pkg/synth/phasedist"
	_ "github.com/justyntemme/synthcore/pkg/synth/rex"
	_ "github.com/justyntemme/synthcore/pkg/synth/subtractive"
	_ "github.com/justyntemme/synthcore/pkg/synth/tonewheel"
)

const (
	sampleRate   = 44100
	channelCount = 2
	bitDepth     = 2 // bytes per sample, 16-bit
)

var (
	generatorID string
	sf2Path     string
	note        int
	velocity    int
	duration    float64
)

var rootCmd = &cobra.Command{
	Use:   "synthplay",
	Short: "Play a single note live through a generator family",
	RunE:  runPlay,
}

func init() {
	rootCmd.Flags().StringVar(&generatorID, "generator", "subtractive", "generator family id")
	rootCmd.Flags().StringVar(&sf2Path, "sf2", "", "SoundFont file (required for --generator=sf2)")
	rootCmd.Flags().IntVar(&note, "note", 60, "MIDI note number")
	rootCmd.Flags().IntVar(&velocity, "velocity", 100, "MIDI velocity")
	rootCmd.Flags().Float64Var(&duration, "duration", 2.0, "note-on duration in seconds")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// generatorReader adapts a generator.Generator's mono Render output into
// the io.Reader oto.Player streams from, converting each block to
// interleaved 16-bit signed PCM (mirrors the teacher pack's oto-reader
// idiom: generate-on-Read rather than pre-rendering the whole buffer).
type generatorReader struct {
	gen        generator.Generator
	blockSize  int
	mono       []float32
}

func newGeneratorReader(gen generator.Generator) *generatorReader {
	const blockSize = 256
	return &generatorReader{gen: gen, blockSize: blockSize, mono: make([]float32, blockSize)}
}

func (r *generatorReader) Read(buf []byte) (int, error) {
	frames := len(buf) / (channelCount * bitDepth)
	written := 0
	for written < frames {
		n := frames - written
		if n > r.blockSize {
			n = r.blockSize
		}
		r.gen.Render(r.mono, 0, n)
		for i := 0; i < n; i++ {
			v := int16(r.mono[i] * 32767)
			idx := (written + i) * channelCount * bitDepth
			buf[idx] = byte(v)
			buf[idx+1] = byte(v >> 8)
			buf[idx+2] = byte(v)
			buf[idx+3] = byte(v >> 8)
		}
		written += n
	}
	return len(buf), nil
}

var _ io.Reader = (*generatorReader)(nil)

func runPlay(cmd *cobra.Command, args []string) error {
	logger := logging.New("synthplay")

	ctx := generator.AudioContext{SampleRate: sampleRate, Channels: 2, BufferSize: 256}
	gen, ok := registry.Create(generatorID, ctx, 8)
	if !ok {
		return fmt.Errorf("unknown generator family %q", generatorID)
	}
	if font, ok := gen.(*sf2.Synth); ok {
		if sf2Path == "" {
			return fmt.Errorf("--sf2 is required for the sf2 generator")
		}
		if err := font.Load(sf2Path); err != nil {
			logger.Warn("soundfont failed to load, playing silence", "err", err)
		}
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
	}
	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("open audio output: %w", err)
	}
	<-ready

	player := otoCtx.NewPlayer(newGeneratorReader(gen))
	player.Play()

	logger.Info("playing", "generator", generatorID, "note", note, "duration", duration)
	gen.NoteOn(note, velocity)
	time.Sleep(time.Duration(duration * float64(time.Second)))
	gen.NoteOff(note)
	time.Sleep(500 * time.Millisecond)

	return nil
}
