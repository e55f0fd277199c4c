package sf2

import (
	"github.com/justyntemme/synthcore/pkg/generator"
	"github.com/justyntemme/synthcore/pkg/registry"
)

func init() {
	registry.Register("sf2", "SoundFont Player", func(ctx generator.AudioContext, polyphony int) generator.Generator {
		return New(ctx.SampleRate, polyphony)
	})
}
