package main

// Blank-imported so every generator family's init() registers itself
// with pkg/registry before any subcommand runs.
import (
	_ "github.com/justyntemme/synthcore/pkg/sf2"
	_ "github.com/justyntemme/synthcore/pkg/synth/drum"
	_ "github.com/justyntemme/synthcore/pkg/synth/fm"
	_ "github.com/justyntemme/synthcore/pkg/synth/karplusstrong"
	_ "github.com/justyntemme/synthcore/pkg/synth/modal"
	_ "github.com/justyntemme/synthcore/pkg/synth/padsynth"
	_ "github.com/justyntemme/synthcore/pkg/synth/phasedist"
	_ "github.com/justyntemme/synthcore/pkg/synth/rex"
	_ "github.com/justyntemme/synthcore/pkg/synth/subtractive"
	_ "github.com/justyntemme/synthcore/pkg/synth/tonewheel"
)
