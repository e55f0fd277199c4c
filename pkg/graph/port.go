// Package graph implements the modular patch graph of spec §4.14: typed
// Modules connected by Cables through typed Ports, scheduled by a
// cycle-tolerant topological sort and rendered one block at a time.
package graph

// Direction distinguishes an input socket from an output socket.
type Direction int

const (
	DirectionInput Direction = iota
	DirectionOutput
)

// Kind distinguishes the signal carried by a port, per spec §3: audio
// ports carry audio-rate signals, CV ports carry normalized control-rate
// signals, gate ports carry binary trigger pulses.
type Kind int

const (
	KindAudio Kind = iota
	KindCV
	KindGate
)

// Port is a named input or output socket on a Module. An input port has
// at most one incoming cable (connectedFrom); an output port may feed
// many inputs, so fan-out is modeled entirely on the input side.
type Port struct {
	Owner     Module
	Name      string
	Direction Direction
	Kind      Kind

	Buffer []float32

	// ConnectedFrom is set only on input ports: the upstream output port
	// this input currently reads from, or nil if unconnected (render then
	// uses an implicit zero buffer).
	ConnectedFrom *Port
}

func newPort(owner Module, name string, dir Direction, kind Kind, bufferSize int) *Port {
	return &Port{
		Owner:     owner,
		Name:      name,
		Direction: dir,
		Kind:      kind,
		Buffer:    make([]float32, bufferSize),
	}
}

func (p *Port) resize(bufferSize int) {
	if cap(p.Buffer) < bufferSize {
		p.Buffer = make([]float32, bufferSize)
	} else {
		p.Buffer = p.Buffer[:bufferSize]
	}
}

// Read returns the value this input port sees at sample i: its upstream
// output buffer's value, or 0 if unconnected.
func (p *Port) Read(i int) float32 {
	if p.ConnectedFrom == nil || i >= len(p.ConnectedFrom.Buffer) {
		return 0
	}
	return p.ConnectedFrom.Buffer[i]
}

// Cable is a directed connection from an output port to an input port.
type Cable struct {
	ID          int
	Source      *Port
	Destination *Port
}
