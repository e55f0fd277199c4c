package sf2

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
)

// SampleHeader is one shdr record (spec §3/§6): name, sample-data
// offsets into the shared PCM buffer, loop points, native sample rate
// and pitch.
type SampleHeader struct {
	Name            string
	Start, End      uint32
	LoopStart, LoopEnd uint32
	SampleRate      uint32
	OriginalPitch   uint8
	PitchCorrection int8
	SampleLink      uint16
	SampleType      uint16
}

// Zone is either an instrument zone or a preset zone: a key/velocity
// range filter, a generator set, and a link to the sample (instrument
// zones) or instrument (preset zones) it selects.
type Zone struct {
	KeyRange GenAmount
	VelRange GenAmount
	HasKeyRange, HasVelRange bool

	Generators GeneratorSet

	SampleIndex     int // instrument zone -> shdr index; -1 if global
	InstrumentIndex int // preset zone -> instrument index; -1 if global
}

func (z Zone) matches(note, velocity int) bool {
	if z.HasKeyRange && !(int(z.KeyRange.Lo) <= note && note <= int(z.KeyRange.Hi)) {
		return false
	}
	if z.HasVelRange && !(int(z.VelRange.Lo) <= velocity && velocity <= int(z.VelRange.Hi)) {
		return false
	}
	return true
}

// Instrument is one inst record plus its reconstructed zones.
type Instrument struct {
	Name  string
	Zones []Zone
}

// Preset is one phdr record plus its reconstructed zones.
type Preset struct {
	Name    string
	Program uint16
	Bank    uint16
	Zones   []Zone
}

// SoundFont is the fully parsed, in-memory SF2 file: the flat 16-bit PCM
// sample pool (converted to float32 in [-1,1]) and the preset/instrument
// tree rebuilt from the bag/generator index ranges.
type SoundFont struct {
	SampleData  []float32 // all samples concatenated, per shdr Start/End offsets
	Samples     []SampleHeader
	Instruments []Instrument
	Presets     []Preset
}

// rawRecords are the fixed-size flat arrays read directly off their
// chunks before zone reconstruction.
type phdrRecord struct {
	name     string
	program  uint16
	bank     uint16
	bagIndex uint16
}

type bagRecord struct {
	genIndex uint16
}

type genRecord struct {
	id     GenID
	amount GenAmount
}

type instRecord struct {
	name     string
	bagIndex uint16
}

// Load parses an SF2 file from r (spec §4.12's loader).
func Load(r io.Reader) (*SoundFont, error) {
	root, err := readRIFF(r)
	if err != nil {
		return nil, err
	}

	sdta, ok := root.findList("sdta")
	if !ok {
		return nil, fmt.Errorf("sf2: missing sdta chunk")
	}
	smpl, ok := sdta.find("smpl")
	if !ok {
		return nil, fmt.Errorf("sf2: missing sdta.smpl chunk")
	}
	sampleData := decodeSamples(smpl.data)

	pdta, ok := root.findList("pdta")
	if !ok {
		return nil, fmt.Errorf("sf2: missing pdta chunk")
	}

	phdrChunk, _ := pdta.find("phdr")
	pbagChunk, _ := pdta.find("pbag")
	pgenChunk, _ := pdta.find("pgen")
	instChunk, _ := pdta.find("inst")
	ibagChunk, _ := pdta.find("ibag")
	igenChunk, _ := pdta.find("igen")
	shdrChunk, _ := pdta.find("shdr")

	phdrs := parsePHDR(phdrChunk.data)
	pbags := parseBag(pbagChunk.data)
	pgens := parseGen(pgenChunk.data)
	insts := parseInst(instChunk.data)
	ibags := parseBag(ibagChunk.data)
	igens := parseGen(igenChunk.data)
	shdrs := parseSHDR(shdrChunk.data)

	// The terminal "EOI"/"EOP" records have no following entry and are
	// not themselves instruments or presets.
	instruments := make([]Instrument, 0, len(insts))
	for i := 0; i+1 < len(insts); i++ {
		zones := buildZones(insts[i].bagIndex, insts[i+1].bagIndex, ibags, igens, GenSampleID)
		instruments = append(instruments, Instrument{Name: insts[i].name, Zones: zones})
	}

	presets := make([]Preset, 0, len(phdrs))
	for i := 0; i+1 < len(phdrs); i++ {
		zones := buildZones(phdrs[i].bagIndex, phdrs[i+1].bagIndex, pbags, pgens, GenInstrument)
		presets = append(presets, Preset{Name: phdrs[i].name, Program: phdrs[i].program, Bank: phdrs[i].bank, Zones: zones})
	}

	return &SoundFont{
		SampleData:  sampleData,
		Samples:     shdrs,
		Instruments: instruments,
		Presets:     presets,
	}, nil
}

// decodeSamples converts the smpl chunk's raw little-endian int16 PCM
// into float32 in [-1,1] (spec §4.12: "read size/2 int16 samples").
func decodeSamples(raw []byte) []float32 {
	n := len(raw) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
		out[i] = float32(v) / 32768.0
	}
	return out
}

func fixedName(b []byte) string {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}
	return strings.TrimRight(string(b[:i]), " ")
}

func parsePHDR(data []byte) []phdrRecord {
	const recSize = 38
	n := len(data) / recSize
	out := make([]phdrRecord, n)
	for i := 0; i < n; i++ {
		r := data[i*recSize : (i+1)*recSize]
		out[i] = phdrRecord{
			name:     fixedName(r[0:20]),
			program:  binary.LittleEndian.Uint16(r[20:22]),
			bank:     binary.LittleEndian.Uint16(r[22:24]),
			bagIndex: binary.LittleEndian.Uint16(r[24:26]),
		}
	}
	return out
}

func parseInst(data []byte) []instRecord {
	const recSize = 22
	n := len(data) / recSize
	out := make([]instRecord, n)
	for i := 0; i < n; i++ {
		r := data[i*recSize : (i+1)*recSize]
		out[i] = instRecord{
			name:     fixedName(r[0:20]),
			bagIndex: binary.LittleEndian.Uint16(r[20:22]),
		}
	}
	return out
}

func parseBag(data []byte) []bagRecord {
	const recSize = 4
	n := len(data) / recSize
	out := make([]bagRecord, n)
	for i := 0; i < n; i++ {
		r := data[i*recSize : (i+1)*recSize]
		out[i] = bagRecord{genIndex: binary.LittleEndian.Uint16(r[0:2])}
	}
	return out
}

func parseGen(data []byte) []genRecord {
	const recSize = 4
	n := len(data) / recSize
	out := make([]genRecord, n)
	for i := 0; i < n; i++ {
		r := data[i*recSize : (i+1)*recSize]
		id := GenID(binary.LittleEndian.Uint16(r[0:2]))
		raw := binary.LittleEndian.Uint16(r[2:4])
		out[i] = genRecord{id: id, amount: decodeGenAmount(id, raw)}
	}
	return out
}

func parseSHDR(data []byte) []SampleHeader {
	const recSize = 46
	n := len(data) / recSize
	out := make([]SampleHeader, n)
	for i := 0; i < n; i++ {
		r := data[i*recSize : (i+1)*recSize]
		out[i] = SampleHeader{
			Name:            fixedName(r[0:20]),
			Start:           binary.LittleEndian.Uint32(r[20:24]),
			End:             binary.LittleEndian.Uint32(r[24:28]),
			LoopStart:       binary.LittleEndian.Uint32(r[28:32]),
			LoopEnd:         binary.LittleEndian.Uint32(r[32:36]),
			SampleRate:      binary.LittleEndian.Uint32(r[36:40]),
			OriginalPitch:   r[40],
			PitchCorrection: int8(r[41]),
			SampleLink:      binary.LittleEndian.Uint16(r[42:44]),
			SampleType:      binary.LittleEndian.Uint16(r[44:46]),
		}
	}
	return out
}

// buildZones reconstructs the zone[] for one header record (preset or
// instrument) from its [bagLo,bagHi) bag range, each bag's [genLo,genHi)
// generator range, per spec §4.12's "header[i].bagIndex..header[i+1]
// .bagIndex identifies zone range; zone's generator range comes from
// bag[b].genIndex..bag[b+1].genIndex" reconstruction rule. linkGen is
// GenInstrument for preset zones, GenSampleID for instrument zones: the
// generator that, if present, links this zone rather than filtering it
// (a zone with no link generator, no key/vel range and no other
// generators is dropped; a "global" zone that carries generators is
// kept, but zone selection never picks it because it links nothing, so
// its generators are not applied as defaults to the other zones).
func buildZones(bagLo, bagHi uint16, bags []bagRecord, gens []genRecord, linkGen GenID) []Zone {
	var zones []Zone
	for b := int(bagLo); b < int(bagHi) && b+1 < len(bags); b++ {
		genLo, genHi := bags[b].genIndex, bags[b+1].genIndex
		z := Zone{Generators: make(GeneratorSet), SampleIndex: -1, InstrumentIndex: -1}
		linked := false
		for g := int(genLo); g < int(genHi) && g < len(gens); g++ {
			rec := gens[g]
			switch rec.id {
			case GenKeyRange:
				z.KeyRange = rec.amount
				z.HasKeyRange = true
			case GenVelRange:
				z.VelRange = rec.amount
				z.HasVelRange = true
			case linkGen:
				linked = true
				if linkGen == GenInstrument {
					z.InstrumentIndex = int(rec.amount.Value)
				} else {
					z.SampleIndex = int(rec.amount.Value)
				}
			default:
				z.Generators[rec.id] = rec.amount.Value
			}
		}
		if linked || z.HasKeyRange || z.HasVelRange || len(z.Generators) > 0 {
			zones = append(zones, z)
		}
		_ = linked
	}
	return zones
}

// timecentsToSeconds converts an SF2 timecent generator value to seconds:
// 2^(tc/1200), floored at 0.001s per spec §4.12.
func timecentsToSeconds(tc int16) float64 {
	if tc <= -32768 {
		return 0
	}
	s := math.Pow(2.0, float64(tc)/1200.0)
	if s < 0.001 {
		return 0.001
	}
	return s
}
