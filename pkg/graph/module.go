package graph

// Module is any processing node the graph can schedule: it declares its
// input/output ports and fills its output buffers from its input buffers
// (and its own internal state) once per block.
type Module interface {
	// Name identifies the module instance within its owning Graph.
	Name() string
	// Inputs and Outputs list this module's ports in stable order.
	Inputs() []*Port
	Outputs() []*Port
	// Process advances the module by blockSize samples: read each input
	// port's buffer (via Port.Read), write blockSize samples into each
	// output port's buffer.
	Process(blockSize int)
}

// BaseModule provides the common Name/Inputs/Outputs bookkeeping every
// builtin module embeds, grounded on the teacher's plugin-provider shape
// of a small struct holding its declared ports.
type BaseModule struct {
	name    string
	inputs  []*Port
	outputs []*Port
}

// NewBaseModule constructs the port bookkeeping for a module named name.
func NewBaseModule(name string) *BaseModule {
	return &BaseModule{name: name}
}

func (b *BaseModule) Name() string      { return b.name }
func (b *BaseModule) Inputs() []*Port   { return b.inputs }
func (b *BaseModule) Outputs() []*Port  { return b.outputs }

// AddInput declares a new input port on this module.
func (b *BaseModule) AddInput(name string, kind Kind, bufferSize int) *Port {
	p := newPort(nil, name, DirectionInput, kind, bufferSize)
	b.inputs = append(b.inputs, p)
	return p
}

// AddOutput declares a new output port on this module.
func (b *BaseModule) AddOutput(name string, kind Kind, bufferSize int) *Port {
	p := newPort(nil, name, DirectionOutput, kind, bufferSize)
	b.outputs = append(b.outputs, p)
	return p
}

// SetOwner stamps every declared port with its owning Module; called once
// by Graph.AddModule after the concrete module (which embeds BaseModule)
// has been fully constructed, since BaseModule alone can't self-reference
// the outer type.
func (b *BaseModule) SetOwner(m Module) {
	for _, p := range b.inputs {
		p.Owner = m
	}
	for _, p := range b.outputs {
		p.Owner = m
	}
}

// Port looks up one of this module's ports by name and direction.
func (b *BaseModule) Port(name string, dir Direction) *Port {
	ports := b.inputs
	if dir == DirectionOutput {
		ports = b.outputs
	}
	for _, p := range ports {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (b *BaseModule) resizeAll(bufferSize int) {
	for _, p := range b.inputs {
		p.resize(bufferSize)
	}
	for _, p := range b.outputs {
		p.resize(bufferSize)
	}
}
