package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/synthcore/pkg/graph"
)

func TestLoadPatchParsesDefaultYAML(t *testing.T) {
	doc, err := LoadPatch("default")
	require.NoError(t, err)

	assert.Equal(t, "default", doc.Name)
	assert.Equal(t, "vco1", doc.VoiceModule)
	assert.Equal(t, "env1", doc.EnvelopeModule)
	require.Len(t, doc.Modules, 4)
	require.Len(t, doc.Cables, 3)
}

func TestLoadPatchUnknownNameErrors(t *testing.T) {
	_, err := LoadPatch("does-not-exist")
	assert.Error(t, err)
}

func TestBuildGraphWiresDefaultPatch(t *testing.T) {
	doc, err := LoadPatch("default")
	require.NoError(t, err)

	g, err := BuildGraph(doc, 44100, 64)
	require.NoError(t, err)

	vco, ok := g.Module("vco1")
	require.True(t, ok)
	env, ok := g.Module("env1")
	require.True(t, ok)

	vcoImpl, ok := vco.(*graph.VCO)
	require.True(t, ok)
	vcoImpl.NoteOn(60)

	envImpl, ok := env.(*graph.EnvelopeModule)
	require.True(t, ok)
	envImpl.Trigger()

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

func TestBuildGraphRejectsUnknownModuleType(t *testing.T) {
	doc := &PatchDoc{
		Name:    "bad",
		Modules: []PatchModule{{Name: "m1", Type: "not-a-real-type"}},
	}
	_, err := BuildGraph(doc, 44100, 64)
	assert.Error(t, err)
}

func TestBuildGraphRejectsMalformedCable(t *testing.T) {
	doc := &PatchDoc{
		Name:    "bad",
		Modules: []PatchModule{{Name: "out", Type: "output"}},
		Cables:  []PatchCable{{From: "missingdot", To: "out.left"}},
	}
	_, err := BuildGraph(doc, 44100, 64)
	assert.Error(t, err)
}

func TestLoadMaterialsAndFMAlgorithmsAndDrumKit(t *testing.T) {
	materials, err := LoadMaterials()
	require.NoError(t, err)
	assert.NotEmpty(t, materials)

	algorithms, err := LoadFMAlgorithms()
	require.NoError(t, err)
	assert.NotEmpty(t, algorithms)

	kit, notes, err := LoadDrumKitLabels()
	require.NoError(t, err)
	assert.NotEmpty(t, kit)
	assert.NotEmpty(t, notes)
}
