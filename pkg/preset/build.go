package preset

import (
	"fmt"
	"strings"

	"github.com/justyntemme/synthcore/pkg/dsp"
	"github.com/justyntemme/synthcore/pkg/graph"
)

func waveformFromName(name string) dsp.Waveform {
	switch strings.ToLower(name) {
	case "saw":
		return dsp.WaveSaw
	case "square":
		return dsp.WaveSquare
	case "triangle":
		return dsp.WaveTriangle
	default:
		return dsp.WaveSine
	}
}

// BuildGraph instantiates a graph.Graph from a PatchDoc at the given
// sample rate and block size. It returns only the graph; callers look up
// the voice (VCO) and envelope modules to drive on noteOn/noteOff by the
// names in doc.VoiceModule and doc.EnvelopeModule.
func BuildGraph(doc *PatchDoc, sampleRate float64, blockSize int) (*graph.Graph, error) {
	g := graph.New(blockSize)

	for _, md := range doc.Modules {
		var m graph.Module
		switch strings.ToLower(md.Type) {
		case "vco":
			m = graph.NewVCO(md.Name, sampleRate, waveformFromName(md.Waveform))
		case "vca":
			m = graph.NewVCA(md.Name)
		case "envelope":
			env := dsp.NewADSR(sampleRate)
			env.Attack, env.Decay, env.Sustain, env.Release = md.Attack, md.Decay, md.Sustain, md.Release
			m = graph.NewEnvelopeModule(md.Name, env)
		case "mixer":
			channels := md.Channels
			if channels < 1 {
				channels = 2
			}
			m = graph.NewMixer(md.Name, channels)
		case "output":
			m = graph.NewOutput(md.Name)
		default:
			return nil, fmt.Errorf("preset: unknown module type %q", md.Type)
		}
		if err := g.AddModule(m); err != nil {
			return nil, fmt.Errorf("preset: add module %q: %w", md.Name, err)
		}
	}

	if err := g.SetOutput(outputModuleName(doc)); err != nil {
		return nil, fmt.Errorf("preset: %w", err)
	}

	for _, c := range doc.Cables {
		srcMod, srcPort, err := splitPort(c.From)
		if err != nil {
			return nil, err
		}
		dstMod, dstPort, err := splitPort(c.To)
		if err != nil {
			return nil, err
		}
		if _, err := g.Connect(srcMod, srcPort, dstMod, dstPort); err != nil {
			return nil, fmt.Errorf("preset: connect %s -> %s: %w", c.From, c.To, err)
		}
	}

	return g, nil
}

func outputModuleName(doc *PatchDoc) string {
	for _, md := range doc.Modules {
		if strings.ToLower(md.Type) == "output" {
			return md.Name
		}
	}
	return ""
}

func splitPort(ref string) (module, port string, err error) {
	parts := strings.SplitN(ref, ".", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("preset: malformed port reference %q, want module.port", ref)
	}
	return parts[0], parts[1], nil
}
