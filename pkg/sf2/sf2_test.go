package sf2

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/synthcore/pkg/generator"
)

// appendChunk writes a RIFF chunk: 4-char id, little-endian uint32 size,
// the payload, and a trailing pad byte on odd sizes.
func appendChunk(buf *bytes.Buffer, id string, payload []byte) {
	buf.WriteString(id)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(payload)))
	buf.Write(size[:])
	buf.Write(payload)
	if len(payload)%2 == 1 {
		buf.WriteByte(0)
	}
}

func appendListChunk(buf *bytes.Buffer, listType string, children []byte) {
	payload := append([]byte(listType), children...)
	appendChunk(buf, "LIST", payload)
}

func fixedField(name string, size int) []byte {
	b := make([]byte, size)
	copy(b, name)
	return b
}

func le16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// buildMinimalSF2 assembles a one-sample, one-instrument, one-preset
// SoundFont file by hand, mirroring the phdr/pbag/pgen/inst/ibag/igen/shdr
// layout spec §4.12/§6 describe.
func buildMinimalSF2(t *testing.T) []byte {
	t.Helper()

	// sdta.smpl: 4 int16 samples.
	var smpl bytes.Buffer
	for _, s := range []int16{1000, 2000, 3000, -1000} {
		smpl.Write(le16(uint16(s)))
	}
	var sdta bytes.Buffer
	appendChunk(&sdta, "smpl", smpl.Bytes())

	// phdr: Preset1 (bagIndex 0), terminal EOP (bagIndex 1).
	var phdr bytes.Buffer
	phdr.Write(fixedField("Preset1", 20))
	phdr.Write(le16(0)) // program
	phdr.Write(le16(0)) // bank
	phdr.Write(le16(0)) // bagIndex
	phdr.Write(make([]byte, 12))
	phdr.Write(fixedField("EOP", 20))
	phdr.Write(le16(0))
	phdr.Write(le16(0))
	phdr.Write(le16(1))
	phdr.Write(make([]byte, 12))

	// pbag: 2 entries (genIndex 0, genIndex 1 terminal).
	var pbag bytes.Buffer
	pbag.Write(le16(0))
	pbag.Write(le16(0))
	pbag.Write(le16(1))
	pbag.Write(le16(0))

	// pgen: one generator linking instrument 0.
	var pgen bytes.Buffer
	pgen.Write(le16(uint16(GenInstrument)))
	pgen.Write(le16(0))

	// inst: Inst1 (bagIndex 0), terminal EOI (bagIndex 1).
	var inst bytes.Buffer
	inst.Write(fixedField("Inst1", 20))
	inst.Write(le16(0))
	inst.Write(fixedField("EOI", 20))
	inst.Write(le16(1))

	// ibag: 2 entries.
	var ibag bytes.Buffer
	ibag.Write(le16(0))
	ibag.Write(le16(0))
	ibag.Write(le16(1))
	ibag.Write(le16(0))

	// igen: one generator linking sample 0.
	var igen bytes.Buffer
	igen.Write(le16(uint16(GenSampleID)))
	igen.Write(le16(0))

	// shdr: Sample1, terminal EOS.
	var shdr bytes.Buffer
	shdr.Write(fixedField("Sample1", 20))
	shdr.Write(le32(0))     // start
	shdr.Write(le32(4))     // end
	shdr.Write(le32(0))     // loop start
	shdr.Write(le32(4))     // loop end
	shdr.Write(le32(44100)) // sample rate
	shdr.WriteByte(60)      // original pitch
	shdr.WriteByte(0)       // pitch correction
	shdr.Write(le16(0))     // sample link
	shdr.Write(le16(1))     // sample type (mono)
	shdr.Write(fixedField("EOS", 20))
	shdr.Write(make([]byte, 26))

	var pdta bytes.Buffer
	appendChunk(&pdta, "phdr", phdr.Bytes())
	appendChunk(&pdta, "pbag", pbag.Bytes())
	appendChunk(&pdta, "pgen", pgen.Bytes())
	appendChunk(&pdta, "inst", inst.Bytes())
	appendChunk(&pdta, "ibag", ibag.Bytes())
	appendChunk(&pdta, "igen", igen.Bytes())
	appendChunk(&pdta, "shdr", shdr.Bytes())

	var body bytes.Buffer
	appendListChunk(&body, "sdta", sdta.Bytes())
	appendListChunk(&body, "pdta", pdta.Bytes())

	var riff bytes.Buffer
	riff.WriteString("RIFF")
	riff.Write(le32(uint32(4 + body.Len())))
	riff.WriteString("sfbk")
	riff.Write(body.Bytes())

	return riff.Bytes()
}

func TestLoadParsesMinimalSoundFont(t *testing.T) {
	font, err := Load(bytes.NewReader(buildMinimalSF2(t)))
	require.NoError(t, err)

	require.Len(t, font.Samples, 2) // Sample1 + terminal EOS
	assert.Equal(t, "Sample1", font.Samples[0].Name)
	assert.Equal(t, uint32(44100), font.Samples[0].SampleRate)

	require.Len(t, font.Instruments, 1)
	require.Len(t, font.Instruments[0].Zones, 1)
	assert.Equal(t, 0, font.Instruments[0].Zones[0].SampleIndex)

	require.Len(t, font.Presets, 1)
	require.Len(t, font.Presets[0].Zones, 1)
	assert.Equal(t, 0, font.Presets[0].Zones[0].InstrumentIndex)

	assert.Equal(t, []float32{1000.0 / 32768, 2000.0 / 32768, 3000.0 / 32768, -1000.0 / 32768}, font.SampleData)
}

func TestLoadRejectsNonRIFF(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("not a riff file at all")))
	assert.ErrorIs(t, err, ErrNotRIFF)
}

func TestLoadRejectsWrongForm(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	buf.Write(le32(4))
	buf.WriteString("WAVE")
	_, err := Load(bytes.NewReader(buf.Bytes()))
	assert.ErrorIs(t, err, ErrNotSoundFont)
}

func TestResolveZoneAndPlaybackRate(t *testing.T) {
	font, err := Load(bytes.NewReader(buildMinimalSF2(t)))
	require.NoError(t, err)

	preset := font.Presets[0]
	pz, _, ok := resolveZone(preset, 60, 100)
	require.True(t, ok)
	assert.Equal(t, 0, pz.InstrumentIndex)

	inst := font.Instruments[pz.InstrumentIndex]
	iz, ok := findInstrumentZone(inst, 60, 100)
	require.True(t, ok)
	assert.Equal(t, 0, iz.SampleIndex)

	sh := &font.Samples[iz.SampleIndex]
	gens := iz.Generators.Add(pz.Generators)

	rate := playbackRate(sh, gens, 60, 44100)
	assert.InDelta(t, 1.0, rate, 1e-9) // same note as root key, same sample rate

	rateOctaveUp := playbackRate(sh, gens, 72, 44100)
	assert.InDelta(t, 2.0, rateOctaveUp, 1e-9)
}

func TestTimecentsToSeconds(t *testing.T) {
	assert.Equal(t, 0.001, timecentsToSeconds(-32768))
	assert.InDelta(t, 1.0, timecentsToSeconds(0), 1e-9)
}

func TestSynthRendersSilenceWithoutFont(t *testing.T) {
	s := New(44100, 4)
	s.NoteOn(60, 100)
	buf := make([]float32, 64)
	s.Render(buf, 0, 64)
	for _, v := range buf {
		assert.Zero(t, v)
	}
}

func TestSynthRendersLoadedFont(t *testing.T) {
	s := New(44100, 4)
	f := writeTempSF2(t, buildMinimalSF2(t))
	require.NoError(t, s.Load(f))

	s.NoteOn(60, 100)
	buf := make([]float32, 8)
	s.Render(buf, 0, 8)

	var nonZero bool
	for _, v := range buf {
		if v != 0 {
			nonZero = true
		}
	}
	assert.True(t, nonZero)

	s.NoteOff(60)
	s.AllNotesOff()

	var _ generator.Generator = s
}

func writeTempSF2(t *testing.T, data []byte) string {
	t.Helper()
	f := t.TempDir() + "/test.sf2"
	require.NoError(t, os.WriteFile(f, data, 0o644))
	return f
}
