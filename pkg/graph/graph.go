package graph

import (
	"errors"
	"sync"
)

// Structural errors returned by connect/disconnect/removeModule, per spec
// §6's "rejected with a structural-error signal; the graph is left
// unchanged" rule — these never panic and never corrupt graph state.
var (
	ErrModuleNotFound  = errors.New("graph: module not found")
	ErrPortNotFound    = errors.New("graph: port not found")
	ErrWrongDirection  = errors.New("graph: cable must run output to input")
	ErrKindMismatch    = errors.New("graph: source and destination port kinds are incompatible")
	ErrModuleExists    = errors.New("graph: module name already registered")
)

type ownerSetter interface {
	SetOwner(Module)
}

// Graph is a directed graph of Modules connected by Cables, scheduled by
// a dirty-flag-triggered topological rebuild (spec §4.14). All edits are
// serialized by mu; Render is expected to be called from a single audio
// thread and does not itself take mu except to read the cached order.
type Graph struct {
	mu sync.Mutex

	bufferSize int
	modules    map[string]Module
	order      []Module
	cables     []*Cable
	nextCableID int
	dirty      bool

	outputName string
}

// New creates an empty graph sized for blocks of up to bufferSize
// samples.
func New(bufferSize int) *Graph {
	return &Graph{
		bufferSize: bufferSize,
		modules:    make(map[string]Module),
		dirty:      true,
	}
}

// AddModule registers m under its own Name(), resizing its ports to the
// graph's block size and marking the topology dirty.
func (g *Graph) AddModule(m Module) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	name := m.Name()
	if _, exists := g.modules[name]; exists {
		return ErrModuleExists
	}
	if os, ok := m.(ownerSetter); ok {
		os.SetOwner(m)
	}
	if r, ok := m.(interface{ resizeAll(int) }); ok {
		r.resizeAll(g.bufferSize)
	}
	g.modules[name] = m
	g.dirty = true
	return nil
}

// RemoveModule disposes moduleName: every cable touching it is removed
// first, then the module itself.
func (g *Graph) RemoveModule(moduleName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	m, ok := g.modules[moduleName]
	if !ok {
		return ErrModuleNotFound
	}

	remaining := g.cables[:0]
	for _, c := range g.cables {
		if c.Source.Owner == m || c.Destination.Owner == m {
			c.Destination.ConnectedFrom = nil
			continue
		}
		remaining = append(remaining, c)
	}
	g.cables = remaining

	delete(g.modules, moduleName)
	if moduleName == g.outputName {
		g.outputName = ""
	}
	g.dirty = true
	return nil
}

func (g *Graph) findPort(moduleName, portName string, dir Direction) (*Port, error) {
	m, ok := g.modules[moduleName]
	if !ok {
		return nil, ErrModuleNotFound
	}
	ports := m.Outputs()
	if dir == DirectionInput {
		ports = m.Inputs()
	}
	for _, p := range ports {
		if p.Name == portName {
			return p, nil
		}
	}
	return nil, ErrPortNotFound
}

// Connect wires srcModule.srcPort (an output) to dstModule.dstPort (an
// input). Connecting to an already-connected input first disconnects the
// existing cable (spec §4.14). Mismatched directions or incompatible
// port kinds are rejected and leave the graph unchanged.
func (g *Graph) Connect(srcModule, srcPort, dstModule, dstPort string) (*Cable, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	src, err := g.findPort(srcModule, srcPort, DirectionOutput)
	if err != nil {
		return nil, err
	}
	dst, err := g.findPort(dstModule, dstPort, DirectionInput)
	if err != nil {
		return nil, err
	}
	if src.Direction != DirectionOutput || dst.Direction != DirectionInput {
		return nil, ErrWrongDirection
	}
	if !kindsCompatible(src.Kind, dst.Kind) {
		return nil, ErrKindMismatch
	}

	g.disconnectInput(dst)

	c := &Cable{ID: g.nextCableID, Source: src, Destination: dst}
	g.nextCableID++
	g.cables = append(g.cables, c)
	dst.ConnectedFrom = src
	g.dirty = true
	return c, nil
}

// kindsCompatible allows same-kind connections, plus CV driving an audio
// input's modulation-style ports (spec leaves this general; a stricter
// synth would reject CV->audio, but §3 only requires "compatible", and
// control modulating audio is the common modular-synth case).
func kindsCompatible(src, dst Kind) bool {
	if src == dst {
		return true
	}
	return src == KindCV || src == KindGate
}

func (g *Graph) disconnectInput(dst *Port) {
	if dst.ConnectedFrom == nil {
		return
	}
	for i, c := range g.cables {
		if c.Destination == dst {
			g.cables = append(g.cables[:i], g.cables[i+1:]...)
			break
		}
	}
	dst.ConnectedFrom = nil
}

// Disconnect removes the cable feeding dstModule.dstPort, if any.
func (g *Graph) Disconnect(dstModule, dstPort string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	dst, err := g.findPort(dstModule, dstPort, DirectionInput)
	if err != nil {
		return err
	}
	g.disconnectInput(dst)
	g.dirty = true
	return nil
}

// SetOutput designates moduleName as the graph's output module (the one
// whose interleaved stereo buffers Render copies into the caller's
// buffer).
func (g *Graph) SetOutput(moduleName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.modules[moduleName]; !ok {
		return ErrModuleNotFound
	}
	g.outputName = moduleName
	return nil
}

// rebuildOrder performs the DFS topological sort of spec §4.14 step 1:
// visit each input's producer before the module itself; a back-edge
// (producer currently in the visiting set) is skipped rather than
// failing, tolerating cycles at the cost of a one-block delay on the
// feedback path.
func (g *Graph) rebuildOrder() {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int, len(g.modules))
	order := make([]Module, 0, len(g.modules))

	var visit func(m Module)
	visit = func(m Module) {
		name := m.Name()
		switch state[name] {
		case visited:
			return
		case visiting:
			return // back-edge: skip, tolerate the cycle
		}
		state[name] = visiting
		for _, in := range m.Inputs() {
			if in.ConnectedFrom != nil {
				if up, ok := in.ConnectedFrom.Owner.(Module); ok {
					visit(up)
				}
			}
		}
		state[name] = visited
		order = append(order, m)
	}

	for _, m := range g.modules {
		visit(m)
	}

	g.order = order
	g.dirty = false
}

// Render advances every module one block of blockSize samples in
// topological order, then interleaves the designated output module's
// stereo buffers into out (spec §4.14 steps 2-3). out must have room for
// at least blockSize*2 interleaved samples; if no output module is set,
// Render processes the graph but leaves out untouched.
func (g *Graph) Render(out []float32, blockSize int) {
	g.mu.Lock()
	if g.dirty {
		g.rebuildOrder()
	}
	order := g.order
	outputName := g.outputName
	g.mu.Unlock()

	for _, m := range order {
		if r, ok := m.(interface{ resizeAll(int) }); ok {
			r.resizeAll(blockSize)
		}
		m.Process(blockSize)
	}

	if outputName == "" {
		return
	}
	g.mu.Lock()
	outMod, ok := g.modules[outputName]
	g.mu.Unlock()
	if !ok {
		return
	}
	if o, ok := outMod.(*Output); ok {
		o.Interleave(out, blockSize)
	}
}

// Cables returns a snapshot of the current cable list, for diagnostics.
func (g *Graph) Cables() []*Cable {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Cable, len(g.cables))
	copy(out, g.cables)
	return out
}

// Module returns the registered module named name, for callers that need
// to drive it directly (e.g. triggering a patch's voice/envelope
// modules on noteOn/noteOff).
func (g *Graph) Module(name string) (Module, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.modules[name]
	return m, ok
}

// Modules returns the registered module names, for diagnostics.
func (g *Graph) Modules() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, 0, len(g.modules))
	for name := range g.modules {
		names = append(names, name)
	}
	return names
}
