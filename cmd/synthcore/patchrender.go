package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justyntemme/synthcore/internal/logging"
	"github.com/justyntemme/synthcore/pkg/preset"
)

var (
	patchRenderName     string
	patchRenderNote     int
	patchRenderDuration float64
	patchRenderOutput   string
)

var patchRenderCmd = &cobra.Command{
	Use:   "patch-render",
	Short: "Build a named YAML patch graph and render one note through it to a WAV file",
	RunE:  runPatchRender,
}

func init() {
	patchRenderCmd.Flags().StringVar(&patchRenderName, "patch", "default", "patch name (pkg/preset/patches/<name>.yaml)")
	patchRenderCmd.Flags().IntVar(&patchRenderNote, "note", 60, "MIDI note number")
	patchRenderCmd.Flags().Float64Var(&patchRenderDuration, "duration", 1.0, "note-on duration in seconds")
	patchRenderCmd.Flags().StringVar(&patchRenderOutput, "output", "patch.wav", "output WAV path")
	rootCmd.AddCommand(patchRenderCmd)
}

func runPatchRender(cmd *cobra.Command, args []string) error {
	logger := logging.New("patch-render")

	doc, err := preset.LoadPatch(patchRenderName)
	if err != nil {
		return fmt.Errorf("load patch: %w", err)
	}

	g, err := preset.BuildGraph(doc, renderSampleRate, renderBlockSize)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}

	voiceModule, _ := g.Module(doc.VoiceModule)
	envModule, _ := g.Module(doc.EnvelopeModule)

	if vco, ok := voiceModule.(interface{ NoteOn(int) }); ok {
		vco.NoteOn(patchRenderNote)
	}
	if env, ok := envModule.(interface{ Trigger() }); ok {
		env.Trigger()
	}

	tailSeconds := 1.0
	totalSamples := int((patchRenderDuration + tailSeconds) * renderSampleRate)
	noteOffSample := int(patchRenderDuration * renderSampleRate)

	interleaved := make([]float32, 0, totalSamples*2)
	block := make([]float32, renderBlockSize*2)

	releasedAt := -1
	for offset := 0; offset < totalSamples; offset += renderBlockSize {
		count := renderBlockSize
		if offset+count > totalSamples {
			count = totalSamples - offset
		}
		if releasedAt < 0 && offset+count > noteOffSample {
			if env, ok := envModule.(interface{ Release() }); ok {
				env.Release()
			}
			releasedAt = offset
		}
		frame := block[:count*2]
		g.Render(frame, count)
		interleaved = append(interleaved, frame...)
	}

	logger.Info("rendered patch", "patch", patchRenderName, "frames", totalSamples, "output", patchRenderOutput)
	return writeInterleavedWav(patchRenderOutput, interleaved, renderSampleRate)
}
