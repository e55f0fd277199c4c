// Package preset loads the YAML-defined material, FM-algorithm,
// drum-kit-label and patch-graph documents embedded under patches/,
// backed by gopkg.in/yaml.v3 per SPEC_FULL.md's ambient stack.
package preset

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed patches/*.yaml
var patchFS embed.FS

// PatchDoc is the YAML shape of a modular-graph patch document (spec
// §4.14 / SPEC_FULL §7): a list of modules and the cables wiring them,
// plus the names of the module that should receive noteOn/noteOff and
// the envelope module that should be triggered/released alongside it.
type PatchDoc struct {
	Name    string            `yaml:"name"`
	Modules []PatchModule     `yaml:"modules"`
	Cables  []PatchCable      `yaml:"cables"`
	VoiceModule    string     `yaml:"voice_module"`
	EnvelopeModule string     `yaml:"envelope_module"`
}

// PatchModule describes one module instance in a PatchDoc. Fields beyond
// Name/Type are generic key-value parameters interpreted by whichever
// module type is named (waveform for "vco", channels for "mixer",
// attack/decay/sustain/release for "envelope").
type PatchModule struct {
	Name     string  `yaml:"name"`
	Type     string  `yaml:"type"`
	Waveform string  `yaml:"waveform"`
	Channels int     `yaml:"channels"`
	Attack   float64 `yaml:"attack"`
	Decay    float64 `yaml:"decay"`
	Sustain  float64 `yaml:"sustain"`
	Release  float64 `yaml:"release"`
}

// PatchCable is one "module.port" -> "module.port" wire.
type PatchCable struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// LoadPatch reads and parses patches/<name>.yaml.
func LoadPatch(name string) (*PatchDoc, error) {
	data, err := patchFS.ReadFile("patches/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("preset: load patch %q: %w", name, err)
	}
	var doc PatchDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("preset: parse patch %q: %w", name, err)
	}
	return &doc, nil
}

// Mode mirrors pkg/synth/modal.Mode's shape for YAML decoding without a
// dependency from preset on the modal package (preset is a leaf loader;
// callers convert Mode values into modal.Mode themselves).
type Mode struct {
	Ratio float64 `yaml:"ratio"`
	Q     float64 `yaml:"q"`
	Gain  float64 `yaml:"gain"`
}

// Material is a named modal-synthesis mode bank (spec §4.7).
type Material struct {
	Name  string `yaml:"name"`
	Modes []Mode `yaml:"modes"`
}

type materialsDoc struct {
	Materials []Material `yaml:"materials"`
}

// LoadMaterials parses patches/materials.yaml into the named mode banks.
func LoadMaterials() ([]Material, error) {
	data, err := patchFS.ReadFile("patches/materials.yaml")
	if err != nil {
		return nil, fmt.Errorf("preset: load materials: %w", err)
	}
	var doc materialsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("preset: parse materials: %w", err)
	}
	return doc.Materials, nil
}

// Algorithm is a human-readable label for one FM operator-routing
// algorithm index (spec §4.8).
type Algorithm struct {
	Index int    `yaml:"index"`
	Name  string `yaml:"name"`
}

type algorithmsDoc struct {
	Algorithms []Algorithm `yaml:"algorithms"`
}

// LoadFMAlgorithms parses patches/fm_algorithms.yaml.
func LoadFMAlgorithms() ([]Algorithm, error) {
	data, err := patchFS.ReadFile("patches/fm_algorithms.yaml")
	if err != nil {
		return nil, fmt.Errorf("preset: load fm algorithms: %w", err)
	}
	var doc algorithmsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("preset: parse fm algorithms: %w", err)
	}
	return doc.Algorithms, nil
}

// DrumNoteLabel is a display label for one drum-kit note (spec §4.11).
type DrumNoteLabel struct {
	Note  int    `yaml:"note"`
	Label string `yaml:"label"`
}

type drumKitDoc struct {
	Kit   string          `yaml:"kit"`
	Notes []DrumNoteLabel `yaml:"notes"`
}

// LoadDrumKitLabels parses patches/drumkit_909.yaml.
func LoadDrumKitLabels() (string, []DrumNoteLabel, error) {
	data, err := patchFS.ReadFile("patches/drumkit_909.yaml")
	if err != nil {
		return "", nil, fmt.Errorf("preset: load drum kit labels: %w", err)
	}
	var doc drumKitDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", nil, fmt.Errorf("preset: parse drum kit labels: %w", err)
	}
	return doc.Kit, doc.Notes, nil
}
