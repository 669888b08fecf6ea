package metafile

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

const imcEntrySize = 6

// ImcEntry is one variant of one part of an object.
type ImcEntry struct {
	MaterialID          uint8  `json:"MaterialId"`
	DecalID             uint8  `json:"DecalId"`
	AttributeMask       uint16 `json:"AttributeMask"`
	SoundID             uint8  `json:"SoundId"`
	VfxID               uint8  `json:"VfxId"`
	MaterialAnimationID uint8  `json:"MaterialAnimationId"`
}

const (
	// MaxImcAttributeMask is the largest attribute mask an entry can hold.
	MaxImcAttributeMask = 0x3FF
	// MaxImcSoundID is the largest sound id an entry can hold.
	MaxImcSoundID = 0x3F
)

// Validate rejects values that do not fit the packed attribute/sound field.
func (e ImcEntry) Validate() error {
	if e.AttributeMask > MaxImcAttributeMask {
		return fmt.Errorf("imc attribute mask %#x exceeds %#x", e.AttributeMask, MaxImcAttributeMask)
	}
	if e.SoundID > MaxImcSoundID {
		return fmt.Errorf("imc sound id %d exceeds %d", e.SoundID, MaxImcSoundID)
	}
	return nil
}

func decodeImcEntry(b []byte) ImcEntry {
	packed := binary.LittleEndian.Uint16(b[2:])
	return ImcEntry{
		MaterialID:          b[0],
		DecalID:             b[1],
		AttributeMask:       packed & 0x3FF,
		SoundID:             uint8(packed >> 10),
		VfxID:               b[4],
		MaterialAnimationID: b[5],
	}
}

func (e ImcEntry) append(out []byte) []byte {
	out = append(out, e.MaterialID, e.DecalID)
	out = binary.LittleEndian.AppendUint16(out, e.AttributeMask&0x3FF|uint16(e.SoundID&0x3F)<<10)
	return append(out, e.VfxID, e.MaterialAnimationID)
}

// ImcFile is a variant table. Variant 0 is the default variant and is always
// present; parts are the bits set in the part mask.
type ImcFile struct {
	partMask uint16
	variants [][]ImcEntry
}

// NewImcFile returns a table with the given part mask and variant count, all
// entries zeroed.
func NewImcFile(partMask uint16, variantCount int) *ImcFile {
	f := &ImcFile{partMask: partMask, variants: make([][]ImcEntry, variantCount+1)}
	for i := range f.variants {
		f.variants[i] = make([]ImcEntry, f.parts())
	}
	return f
}

// ParseImc decodes an IMC table.
func ParseImc(data []byte) (*ImcFile, error) {
	if len(data) < 4 {
		return nil, &TableParseError{Reason: "header truncated"}
	}
	count := int(binary.LittleEndian.Uint16(data))
	f := &ImcFile{partMask: binary.LittleEndian.Uint16(data[2:])}
	parts := f.parts()
	if parts == 0 {
		return nil, &TableParseError{Reason: "empty part mask"}
	}
	if want := 4 + (count+1)*parts*imcEntrySize; len(data) != want {
		return nil, &TableParseError{Reason: fmt.Sprintf("size %d does not match %d variants of %d parts", len(data), count, parts)}
	}

	f.variants = make([][]ImcEntry, count+1)
	off := 4
	for v := range f.variants {
		f.variants[v] = make([]ImcEntry, parts)
		for p := 0; p < parts; p++ {
			f.variants[v][p] = decodeImcEntry(data[off:])
			off += imcEntrySize
		}
	}
	return f, nil
}

func (f *ImcFile) parts() int {
	return bits.OnesCount16(f.partMask)
}

func (f *ImcFile) Kind() Kind { return KindImc }

func (f *ImcFile) Clone() Table {
	c := &ImcFile{partMask: f.partMask, variants: make([][]ImcEntry, len(f.variants))}
	for i, v := range f.variants {
		c.variants[i] = append([]ImcEntry(nil), v...)
	}
	return c
}

func (f *ImcFile) Bytes() []byte {
	out := make([]byte, 0, 4+len(f.variants)*f.parts()*imcEntrySize)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(f.variants)-1))
	out = binary.LittleEndian.AppendUint16(out, f.partMask)
	for _, v := range f.variants {
		for _, e := range v {
			out = e.append(out)
		}
	}
	return out
}

// VariantCount returns the number of non-default variants.
func (f *ImcFile) VariantCount() int {
	return len(f.variants) - 1
}

// position maps a part index (bit number in the mask) to its slot in a variant.
func (f *ImcFile) position(part int) (int, error) {
	if part < 0 || part > 15 || f.partMask&(1<<uint(part)) == 0 {
		return 0, fmt.Errorf("part %d not present in mask %#x", part, f.partMask)
	}
	return bits.OnesCount16(f.partMask & (1<<uint(part) - 1)), nil
}

// Entry returns the entry for part and variant.
// Variants past the end read as the default variant.
func (f *ImcFile) Entry(part, variant int) (ImcEntry, error) {
	pos, err := f.position(part)
	if err != nil {
		return ImcEntry{}, err
	}
	if variant < 0 {
		return ImcEntry{}, fmt.Errorf("negative variant %d", variant)
	}
	if variant >= len(f.variants) {
		variant = 0
	}
	return f.variants[variant][pos], nil
}

// SetEntry stores e for part and variant, growing the table with copies of
// the default variant when variant is past the end.
func (f *ImcFile) SetEntry(part, variant int, e ImcEntry) error {
	pos, err := f.position(part)
	if err != nil {
		return err
	}
	if variant < 0 || variant > 0xFFFF {
		return fmt.Errorf("variant %d out of range", variant)
	}
	if err := e.Validate(); err != nil {
		return err
	}
	for len(f.variants) <= variant {
		f.variants = append(f.variants, append([]ImcEntry(nil), f.variants[0]...))
	}
	f.variants[variant][pos] = e
	return nil
}
