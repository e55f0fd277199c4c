package event

// MIDI 1.0 status bytes.
const (
	MIDINoteOff         byte = 0x80
	MIDINoteOn          byte = 0x90
	MIDIControlChange   byte = 0xB0
	MIDIPitchBend       byte = 0xE0
)

// FromMIDI converts a raw MIDI 1.0 message into a NoteEvent, returning
// ok=false for messages that aren't note on/off.
func FromMIDI(offset int, data [3]byte, channel int) (NoteEvent, bool) {
	status := data[0] & 0xF0
	switch {
	case status == MIDINoteOn && data[2] > 0:
		return NoteEvent{
			SampleOffset: offset,
			Kind:         KindNoteOn,
			Note:         int(data[1]),
			Velocity:     int(data[2]),
			Channel:      channel,
		}, true
	case status == MIDINoteOn && data[2] == 0, status == MIDINoteOff:
		return NoteEvent{
			SampleOffset: offset,
			Kind:         KindNoteOff,
			Note:         int(data[1]),
			Velocity:     int(data[2]),
			Channel:      channel,
		}, true
	}
	return NoteEvent{}, false
}

// ControlChangeToParam maps a MIDI CC message onto a named parameter
// change, using the caller-supplied CC-number-to-parameter-name table.
func ControlChangeToParam(offset int, data [3]byte, names map[int]string) (ParamEvent, bool) {
	if data[0]&0xF0 != MIDIControlChange {
		return ParamEvent{}, false
	}
	name, ok := names[int(data[1])]
	if !ok {
		return ParamEvent{}, false
	}
	return ParamEvent{SampleOffset: offset, Name: name, Value: float64(data[2]) / 127.0}, true
}
