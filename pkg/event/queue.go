package event

import "sort"

// List is a sample-offset ordered event stream for one render block.
// Events may be pushed out of order during block assembly; Push inserts
// each one at its place, so the list is always in non-decreasing offset
// order.
type List[T Event] struct {
	items []T
}

// Push appends an event, keeping items sorted by Offset() via binary
// search insertion (spec §4.15a) rather than a post-hoc sort, since the
// common case is already-ordered host delivery.
func (l *List[T]) Push(e T) {
	off := e.Offset()
	i := sort.Search(len(l.items), func(i int) bool { return l.items[i].Offset() > off })
	l.items = append(l.items, e)
	copy(l.items[i+1:], l.items[i:len(l.items)-1])
	l.items[i] = e
}

// Len returns the number of queued events.
func (l *List[T]) Len() int { return len(l.items) }

// At returns the i'th event in offset order.
func (l *List[T]) At(i int) T { return l.items[i] }

// All returns the full ordered slice. Callers must not mutate it.
func (l *List[T]) All() []T { return l.items }

// Clear empties the list for reuse across render blocks.
func (l *List[T]) Clear() { l.items = l.items[:0] }

// ParamQueue is a List specialized for ParamEvent, the parameter-change
// queue named in spec §4.15.
type ParamQueue = List[ParamEvent]

// EventList is a List specialized for NoteEvent, the note event list
// named in spec §4.15.
type EventList = List[NoteEvent]
