// Package generator defines the I/O contract shared by every synthesis
// engine in synthcore: note events in, interleaved float samples out.
package generator

import "math"

// AudioContext is the explicit, immutable replacement for a process-wide
// Settings value. Every generator constructor takes one; none of them reach
// for global state. Re-creating at a new sample rate requires a new
// generator instance.
type AudioContext struct {
	SampleRate float64
	Channels   int
	BufferSize int
}

// NoteEvent is the inbound note-on/note-off record described in the data
// model: a MIDI-shaped note, velocity and channel plus a monotonic
// timestamp used only for diagnostics (voice stealing uses its own
// triggerSequence, see pkg/voice).
type NoteEvent struct {
	Note      int
	Velocity  int
	Channel   int
	Timestamp int64
}

// Frequency converts a MIDI note number to Hz using equal temperament:
// f = 440 * 2^((note-69)/12).
func Frequency(note int) float64 {
	return 440.0 * math.Pow(2.0, (float64(note)-69.0)/12.0)
}

// Generator is the contract every synth voice family implements. render
// never blocks on I/O and degrades to silence on any internal anomaly
// rather than returning an error (see spec §7).
type Generator interface {
	NoteOn(note, velocity int)
	NoteOff(note int)
	AllNotesOff()
	SetParameter(name string, value float64)
	Render(buffer []float32, offset, count int) int
}

// InRange reports whether a MIDI note or velocity value is within [0,127].
func InRange(v int) bool {
	return v >= 0 && v <= 127
}
