package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/synthcore/pkg/dsp"
)

func newTestGraph() *Graph {
	return New(64)
}

func TestConnectAndRender(t *testing.T) {
	g := newTestGraph()
	vco := NewVCO("vco", 44100, dsp.WaveSine)
	vca := NewVCA("vca")
	adsr := dsp.NewADSR(44100)
	adsr.Attack = 0
	adsr.Decay = 0
	adsr.Sustain = 1.0
	env := NewEnvelopeModule("env", adsr)
	out := NewOutput("out")

	require.NoError(t, g.AddModule(vco))
	require.NoError(t, g.AddModule(vca))
	require.NoError(t, g.AddModule(env))
	require.NoError(t, g.AddModule(out))

	_, err := g.Connect("vco", "out", "vca", "in")
	require.NoError(t, err)
	_, err = g.Connect("env", "out", "vca", "cv")
	require.NoError(t, err)
	_, err = g.Connect("vca", "out", "out", "left")
	require.NoError(t, err)
	require.NoError(t, g.SetOutput("out"))

	vco.NoteOn(60)
	env.Trigger()

	buf := make([]float32, 64*2)
	g.Render(buf, 64)

	var peak float32
	for _, s := range buf {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	assert.Greater(t, peak, float32(0))
}

func TestConnectRejectsUnknownModule(t *testing.T) {
	g := newTestGraph()
	require.NoError(t, g.AddModule(NewVCA("vca")))

	_, err := g.Connect("missing", "out", "vca", "in")
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestConnectRejectsUnknownPort(t *testing.T) {
	g := newTestGraph()
	require.NoError(t, g.AddModule(NewVCO("vco", 44100, dsp.WaveSine)))
	require.NoError(t, g.AddModule(NewVCA("vca")))

	_, err := g.Connect("vco", "nope", "vca", "in")
	assert.ErrorIs(t, err, ErrPortNotFound)
}

func TestAddModuleRejectsDuplicateName(t *testing.T) {
	g := newTestGraph()
	require.NoError(t, g.AddModule(NewVCA("vca")))
	err := g.AddModule(NewVCA("vca"))
	assert.ErrorIs(t, err, ErrModuleExists)
}

func TestConnectReplacesExistingCableOnSameInput(t *testing.T) {
	g := newTestGraph()
	vco1 := NewVCO("vco1", 44100, dsp.WaveSine)
	vco2 := NewVCO("vco2", 44100, dsp.WaveSine)
	vca := NewVCA("vca")
	require.NoError(t, g.AddModule(vco1))
	require.NoError(t, g.AddModule(vco2))
	require.NoError(t, g.AddModule(vca))

	_, err := g.Connect("vco1", "out", "vca", "in")
	require.NoError(t, err)
	_, err = g.Connect("vco2", "out", "vca", "in")
	require.NoError(t, err)

	assert.Len(t, g.Cables(), 1)
	cables := g.Cables()
	assert.Equal(t, vco2.Port("out", DirectionOutput), cables[0].Source)
}

func TestRemoveModuleDropsItsCables(t *testing.T) {
	g := newTestGraph()
	require.NoError(t, g.AddModule(NewVCO("vco", 44100, dsp.WaveSine)))
	require.NoError(t, g.AddModule(NewVCA("vca")))
	_, err := g.Connect("vco", "out", "vca", "in")
	require.NoError(t, err)

	require.NoError(t, g.RemoveModule("vco"))
	assert.Empty(t, g.Cables())

	_, ok := g.Module("vco")
	assert.False(t, ok)
}

func TestModuleLookup(t *testing.T) {
	g := newTestGraph()
	vca := NewVCA("vca")
	require.NoError(t, g.AddModule(vca))

	got, ok := g.Module("vca")
	assert.True(t, ok)
	assert.Same(t, Module(vca), got)

	_, ok = g.Module("missing")
	assert.False(t, ok)
}

func TestRenderToleratesCycle(t *testing.T) {
	g := newTestGraph()
	a := NewVCA("a")
	b := NewVCA("b")
	require.NoError(t, g.AddModule(a))
	require.NoError(t, g.AddModule(b))

	_, err := g.Connect("a", "out", "b", "in")
	require.NoError(t, err)
	_, err = g.Connect("b", "out", "a", "in")
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		g.Render(make([]float32, 0), 64)
	})
}

func TestMixerSumsChannels(t *testing.T) {
	g := newTestGraph()
	vco1 := NewVCO("vco1", 44100, dsp.WaveSine)
	vco2 := NewVCO("vco2", 44100, dsp.WaveSine)
	mix := NewMixer("mix", 2)
	out := NewOutput("out")

	require.NoError(t, g.AddModule(vco1))
	require.NoError(t, g.AddModule(vco2))
	require.NoError(t, g.AddModule(mix))
	require.NoError(t, g.AddModule(out))

	_, err := g.Connect("vco1", "out", "mix", "in0")
	require.NoError(t, err)
	_, err = g.Connect("vco2", "out", "mix", "in1")
	require.NoError(t, err)
	_, err = g.Connect("mix", "out", "out", "left")
	require.NoError(t, err)
	require.NoError(t, g.SetOutput("out"))

	vco1.NoteOn(60)
	vco2.NoteOn(67)

	buf := make([]float32, 64*2)
	assert.NotPanics(t, func() { g.Render(buf, 64) })

	a := vco1.Port("out", DirectionOutput).Buffer
	b := vco2.Port("out", DirectionOutput).Buffer
	sum := mix.Port("out", DirectionOutput).Buffer
	for i := 0; i < 64; i++ {
		assert.InDelta(t, a[i]+b[i], sum[i], 1e-6)
	}
}
