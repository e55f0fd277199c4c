package event

import "github.com/justyntemme/synthcore/pkg/param"

// ProcessSetup describes one render block's fixed parameters (spec
// §4.15): sample rate, block size, and the two input queues.
type ProcessSetup struct {
	SampleRate float64
	BlockSize  int
	Params     ParamQueue
	Notes      EventList
}

// NoteHandler receives note events in offset order during Process.
type NoteHandler interface {
	HandleNoteOn(note, velocity, channel int)
	HandleNoteOff(note, channel int)
	HandleNoteChoke(note, channel int)
}

// Processor merges a block's parameter-change queue and note event list
// in non-decreasing sample-offset order, applying parameter changes to
// params and note events to handler as it walks the block. Render
// callbacks run the generator between offsets: segment boundaries are the
// union of both queues' offsets.
type Processor struct {
	params  *param.Manager
	handler NoteHandler
}

// NewProcessor creates a Processor that applies parameter changes to
// params and dispatches note events to handler.
func NewProcessor(params *param.Manager, handler NoteHandler) *Processor {
	return &Processor{params: params, handler: handler}
}

// Process walks setup's two queues in merged offset order, calling
// renderSegment(startOffset, count) to advance the generator between
// consecutive event offsets, then applying the event(s) at that offset.
// The final segment runs from the last event offset to setup.BlockSize.
func (p *Processor) Process(setup *ProcessSetup, renderSegment func(start, count int)) {
	params := setup.Params.All()
	notes := setup.Notes.All()

	pi, ni := 0, 0
	cursor := 0

	for pi < len(params) || ni < len(notes) {
		next := setup.BlockSize
		if pi < len(params) && params[pi].SampleOffset < next {
			next = params[pi].SampleOffset
		}
		if ni < len(notes) && notes[ni].SampleOffset < next {
			next = notes[ni].SampleOffset
		}

		if next > cursor {
			renderSegment(cursor, next-cursor)
			cursor = next
		}

		for pi < len(params) && params[pi].SampleOffset == cursor {
			if p.params != nil {
				p.params.Set(params[pi].Name, params[pi].Value)
			}
			pi++
		}
		for ni < len(notes) && notes[ni].SampleOffset == cursor {
			p.dispatch(notes[ni])
			ni++
		}
	}

	if cursor < setup.BlockSize {
		renderSegment(cursor, setup.BlockSize-cursor)
	}
}

func (p *Processor) dispatch(n NoteEvent) {
	if p.handler == nil {
		return
	}
	switch n.Kind {
	case KindNoteOn:
		p.handler.HandleNoteOn(n.Note, n.Velocity, n.Channel)
	case KindNoteOff:
		p.handler.HandleNoteOff(n.Note, n.Channel)
	case KindNoteChoke:
		p.handler.HandleNoteChoke(n.Note, n.Channel)
	}
}
