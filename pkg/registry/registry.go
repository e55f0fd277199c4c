// Package registry maps generator family identifiers onto factory
// functions, per spec §9's Design Note: an explicit map, not reflection,
// so every generator family is built with its intended AudioContext and
// polyphony cap.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/justyntemme/synthcore/pkg/generator"
)

// Factory constructs a Generator bound to ctx, with the given polyphony
// cap where the family supports it (drum/sampler families may ignore it
// in favor of a fixed per-pad voice count).
type Factory func(ctx generator.AudioContext, polyphony int) generator.Generator

// Entry is a registered generator family.
type Entry struct {
	ID          string
	DisplayName string
	Create      Factory
}

// Registry is a thread-safe id -> Entry map.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds a generator family, replacing any existing entry under
// the same ID.
func (r *Registry) Register(id, displayName string, create Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = Entry{ID: id, DisplayName: displayName, Create: create}
}

// Create builds a generator by family ID, or returns nil, false if the
// ID is unknown.
func (r *Registry) Create(id string, ctx generator.AudioContext, polyphony int) (generator.Generator, bool) {
	r.mu.RLock()
	entry, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return entry.Create(ctx, polyphony), true
}

// List returns every registered family's ID and display name, sorted by
// ID, for CLI/TUI listing.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// global is the process-wide registry populated by the package-level
// Register function.
var global = New()

// Register adds a generator family to the global registry.
func Register(id, displayName string, create Factory) {
	global.Register(id, displayName, create)
}

// Create builds a generator by family ID from the global registry.
func Create(id string, ctx generator.AudioContext, polyphony int) (generator.Generator, bool) {
	return global.Create(id, ctx, polyphony)
}

// List returns every globally registered family.
func List() []Entry {
	return global.List()
}

// MustCreate builds a generator by family ID, panicking if the ID is
// unknown. Intended for cmd/ entry points where an unknown --generator
// flag value is a user error worth failing fast on.
func MustCreate(id string, ctx generator.AudioContext, polyphony int) generator.Generator {
	g, ok := Create(id, ctx, polyphony)
	if !ok {
		panic(fmt.Sprintf("registry: unknown generator family %q", id))
	}
	return g
}
