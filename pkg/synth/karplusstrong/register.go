package karplusstrong

import (
	"github.com/justyntemme/synthcore/pkg/generator"
	"github.com/justyntemme/synthcore/pkg/registry"
)

func init() {
	registry.Register("karplus-strong", "Karplus-Strong", func(ctx generator.AudioContext, polyphony int) generator.Generator {
		return New(ctx.SampleRate, polyphony)
	})
}
