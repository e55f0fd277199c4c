package phasedist

import (
	"github.com/justyntemme/synthcore/pkg/generator"
	"github.com/justyntemme/synthcore/pkg/registry"
)

func init() {
	registry.Register("phasedist", "Phase Distortion", func(ctx generator.AudioContext, polyphony int) generator.Generator {
		return New(ctx.SampleRate, polyphony)
	})
}
