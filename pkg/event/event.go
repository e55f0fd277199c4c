// Package event implements the ordered event and parameter-change queues
// described in spec §4.15: every event and parameter change carries a
// sample offset into the current render block, and a Processor merges
// both streams in non-decreasing offset order while rendering.
package event

// Kind identifies the payload carried by an Event.
type Kind int

const (
	KindNoteOn Kind = iota
	KindNoteOff
	KindNoteChoke
	KindNoteEnd
	KindParamValue
	KindTransport
	KindMIDI
)

// NoteEvent is a note on/off/choke/end, timed within a render block.
type NoteEvent struct {
	SampleOffset int
	Kind         Kind
	Note         int
	Velocity     int
	Channel      int
}

// ParamEvent is a named parameter value change, timed within a render
// block (spec §4.1/§4.15).
type ParamEvent struct {
	SampleOffset int
	Name         string
	Value        float64
}

// TransportEvent carries host transport state (tempo, playing, position)
// sampled at a given offset; consumed by generators that sync to host
// tempo (e.g. LFO-free arpeggiated patches), ignored by most.
type TransportEvent struct {
	SampleOffset int
	TempoBPM     float64
	Playing      bool
	PosSeconds   float64
}

// MIDIEvent is a raw MIDI 1.0 message, timed within a render block.
type MIDIEvent struct {
	SampleOffset int
	Data         [3]byte
	Port         int
}

// Event is any of the event payloads above, carrying its own SampleOffset
// for ordering. Processor reads Offset() to merge streams.
type Event interface {
	Offset() int
}

func (e NoteEvent) Offset() int      { return e.SampleOffset }
func (e ParamEvent) Offset() int     { return e.SampleOffset }
func (e TransportEvent) Offset() int { return e.SampleOffset }
func (e MIDIEvent) Offset() int      { return e.SampleOffset }
