package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/justyntemme/synthcore/internal/logging"
	"github.com/justyntemme/synthcore/pkg/generator"
	"github.com/justyntemme/synthcore/pkg/registry"
)

var (
	playMidiGeneratorID string
	playMidiInputPath   string
	playMidiOutputPath  string
	playMidiPolyphony   int
)

var playMidiCmd = &cobra.Command{
	Use:   "play-midi",
	Short: "Render a standard MIDI file through a generator family to a WAV file",
	RunE:  runPlayMidi,
}

func init() {
	playMidiCmd.Flags().StringVar(&playMidiGeneratorID, "generator", "subtractive", "generator family id")
	playMidiCmd.Flags().StringVar(&playMidiInputPath, "input", "", "standard MIDI file (.mid)")
	playMidiCmd.Flags().StringVar(&playMidiOutputPath, "output", "out.wav", "output WAV path")
	playMidiCmd.Flags().IntVar(&playMidiPolyphony, "polyphony", 16, "polyphony cap")
	playMidiCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(playMidiCmd)
}

// midiEvent is a note-on/note-off flattened to an absolute sample offset.
type midiEvent struct {
	sample  int
	note    int
	vel     int
	noteOff bool
}

func runPlayMidi(cmd *cobra.Command, args []string) error {
	logger := logging.New("play-midi")

	rd, err := smf.ReadFile(playMidiInputPath)
	if err != nil {
		return fmt.Errorf("read MIDI file: %w", err)
	}

	bpm := 120.0
	if changes := rd.TempoChanges(); len(changes) > 0 {
		bpm = changes[0].BPM
	}

	ticksPerQuarter, ok := rd.TimeFormat.(smf.MetricTicks)
	if !ok {
		ticksPerQuarter = smf.MetricTicks(960)
	}
	secondsPerTick := (60.0 / bpm) / float64(ticksPerQuarter)

	var events []midiEvent
	var maxSample int
	for _, track := range rd.Tracks {
		var tick uint32
		for _, te := range track {
			tick += te.Delta
			sampleOffset := int(float64(tick) * secondsPerTick * renderSampleRate)

			var channel, key, velocity uint8
			switch {
			case te.Message.GetNoteOn(&channel, &key, &velocity):
				if velocity > 0 {
					events = append(events, midiEvent{sample: sampleOffset, note: int(key), vel: int(velocity)})
					if sampleOffset > maxSample {
						maxSample = sampleOffset
					}
				} else {
					events = append(events, midiEvent{sample: sampleOffset, note: int(key), noteOff: true})
				}
			case te.Message.GetNoteOff(&channel, &key, &velocity):
				events = append(events, midiEvent{sample: sampleOffset, note: int(key), noteOff: true})
			}
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].sample < events[j].sample })

	ctx := generator.AudioContext{SampleRate: renderSampleRate, Channels: 1, BufferSize: renderBlockSize}
	gen, ok2 := registry.Create(playMidiGeneratorID, ctx, playMidiPolyphony)
	if !ok2 {
		return fmt.Errorf("unknown generator family %q", playMidiGeneratorID)
	}
	if err := prepareGenerator(gen, logger); err != nil {
		return err
	}

	totalSamples := maxSample + renderSampleRate // one second of tail after the last event
	buffer := make([]float32, totalSamples)

	evtIdx := 0
	for offset := 0; offset < totalSamples; offset += renderBlockSize {
		count := renderBlockSize
		if offset+count > totalSamples {
			count = totalSamples - offset
		}
		for evtIdx < len(events) && events[evtIdx].sample < offset+count {
			e := events[evtIdx]
			if e.noteOff {
				gen.NoteOff(e.note)
			} else {
				gen.NoteOn(e.note, e.vel)
			}
			evtIdx++
		}
		gen.Render(buffer, offset, count)
	}

	logger.Info("rendered MIDI file", "events", len(events), "samples", totalSamples, "output", playMidiOutputPath)
	return writeMonoWav(playMidiOutputPath, buffer, renderSampleRate)
}
