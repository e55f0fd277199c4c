package voice

import "sync"

// Pool implements the allocation policy of spec §4.2:
//  1. re-trigger if the note is already mapped,
//  2. reuse an inactive voice,
//  3. grow up to cap,
//  4. otherwise steal the oldest voice (lowest TriggerSeq, lowest index on
//     a tie).
//
// Every method takes the pool's own mutex. Allocate, Release, ReleaseAll,
// ChokeVoice and ChokeAll run on the control path; ForEachActive, the
// per-block render hook, marks finished voices inactive and drops their
// note mappings.
type Pool struct {
	mu  sync.Mutex
	cap int

	voices     []*Voice
	noteToIdx  map[int]int
	nextSeq    uint64

	// New constructs algorithm-specific voice state for a freshly
	// allocated slot; it is called at most cap times over the pool's
	// lifetime (after warm-up, Allocate never calls it again).
	New func() *Voice
}

// NewPool creates a voice pool with the given polyphony cap. newVoice
// builds the generator-specific Voice (including its State payload).
func NewPool(cap int, newVoice func() *Voice) *Pool {
	if cap < 1 {
		cap = 1
	}
	return &Pool{
		cap:       cap,
		noteToIdx: make(map[int]int, cap),
		New:       newVoice,
	}
}

// Cap returns the polyphony cap.
func (p *Pool) Cap() int { return p.cap }

// ActiveCount returns the number of currently active voices.
func (p *Pool) ActiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, v := range p.voices {
		if v.Active {
			n++
		}
	}
	return n
}

// Allocate returns the voice to trigger for (note, velocity, channel),
// applying the allocation policy in spec §4.2. trigger is called on the
// chosen voice with the note/velocity/channel already assigned, so the
// caller can (re)trigger its envelope(s) and reset/seed algorithm state.
func (p *Pool) Allocate(note, velocity, channel int, trigger func(v *Voice, retrigger bool)) *Voice {
	p.mu.Lock()
	defer p.mu.Unlock()

	// 1. Already sounding on this note: legato re-trigger.
	if idx, ok := p.noteToIdx[note]; ok {
		v := p.voices[idx]
		v.Velocity = velocity
		v.Channel = channel
		v.Release = false
		v.TriggerSeq = p.nextSeq
		p.nextSeq++
		if trigger != nil {
			trigger(v, true)
		}
		return v
	}

	// 2. Reuse an inactive voice.
	for i, v := range p.voices {
		if !v.Active {
			p.assign(v, note, velocity, channel)
			p.noteToIdx[note] = i
			if trigger != nil {
				trigger(v, false)
			}
			return v
		}
	}

	// 3. Grow until cap.
	if len(p.voices) < p.cap {
		v := p.New()
		p.assign(v, note, velocity, channel)
		p.voices = append(p.voices, v)
		p.noteToIdx[note] = len(p.voices) - 1
		if trigger != nil {
			trigger(v, false)
		}
		return v
	}

	// 4. Steal the oldest (lowest TriggerSeq, lowest index on a tie).
	victim := 0
	for i := 1; i < len(p.voices); i++ {
		if p.voices[i].TriggerSeq < p.voices[victim].TriggerSeq {
			victim = i
		}
	}
	for n, idx := range p.noteToIdx {
		if idx == victim {
			delete(p.noteToIdx, n)
			break
		}
	}
	v := p.voices[victim]
	p.assign(v, note, velocity, channel)
	p.noteToIdx[note] = victim
	if trigger != nil {
		trigger(v, false)
	}
	return v
}

func (p *Pool) assign(v *Voice, note, velocity, channel int) {
	v.Note = note
	v.Velocity = velocity
	v.Channel = channel
	v.Active = true
	v.Release = false
	v.TriggerSeq = p.nextSeq
	p.nextSeq++
}

// Release transitions the voice currently mapped from note into release,
// calling release(v) to let the generator start its envelope release. A
// no-op if the note isn't mapped (already stolen or never played).
func (p *Pool) Release(note int, release func(v *Voice)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.noteToIdx[note]
	if !ok {
		return
	}
	v := p.voices[idx]
	v.Release = true
	delete(p.noteToIdx, note)
	if release != nil {
		release(v)
	}
}

// ReleaseAll transitions every active voice into release (used by
// sustained generators' allNotesOff).
func (p *Pool) ReleaseAll(release func(v *Voice)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, v := range p.voices {
		if v.Active {
			v.Release = true
			if release != nil {
				release(v)
			}
		}
	}
	p.noteToIdx = make(map[int]int, p.cap)
}

// ChokeAll immediately deactivates every voice (used by drum-machine-like
// generators' allNotesOff).
func (p *Pool) ChokeAll(choke func(v *Voice)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, v := range p.voices {
		if v.Active {
			v.Active = false
			if choke != nil {
				choke(v)
			}
		}
	}
	p.noteToIdx = make(map[int]int, p.cap)
}

// Choke immediately deactivates the voice mapped to note, if any (used for
// drum choke groups, e.g. closed/open hi-hat).
func (p *Pool) Choke(note int, choke func(v *Voice)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx, ok := p.noteToIdx[note]
	if !ok {
		return
	}
	v := p.voices[idx]
	v.Active = false
	delete(p.noteToIdx, note)
	if choke != nil {
		choke(v)
	}
}

// ChokeVoice deactivates a specific voice pointer (used for choke groups
// spanning several notes, e.g. all hi-hat variants).
func (p *Pool) ChokeVoice(target *Voice, choke func(v *Voice)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for n, idx := range p.noteToIdx {
		if p.voices[idx] == target {
			delete(p.noteToIdx, n)
			break
		}
	}
	if target.Active {
		target.Active = false
		if choke != nil {
			choke(target)
		}
	}
}

// ForEachActive calls fn for every active voice, marking it inactive
// (and dropping its note mapping) whenever fn returns false. This is the
// per-block render hook: fn advances the voice one buffer's worth of
// samples and reports whether it should keep sounding.
func (p *Pool) ForEachActive(fn func(v *Voice) bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, v := range p.voices {
		if !v.Active {
			continue
		}
		if !fn(v) {
			v.Active = false
			for n, idx := range p.noteToIdx {
				if p.voices[idx] == v {
					delete(p.noteToIdx, n)
					break
				}
			}
		}
	}
}

// Voices exposes the underlying slice for read-only diagnostics (voice
// count monitors, TUI, tests). Callers must not mutate Active/Note outside
// Allocate/Release/Choke.
func (p *Pool) Voices() []*Voice {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Voice, len(p.voices))
	copy(out, p.voices)
	return out
}
