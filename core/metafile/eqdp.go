package metafile

import (
	"encoding/binary"
	"fmt"

	"mod-manager/core/gamedata"
)

const eqdpAbsentBlock = 0xFFFF

// EqdpShift returns the bit offset of slot's two bits in an EQDP entry.
func EqdpShift(slot gamedata.EquipSlot) (uint, error) {
	switch slot {
	case gamedata.SlotHead, gamedata.SlotEars:
		return 0, nil
	case gamedata.SlotBody, gamedata.SlotNeck:
		return 2, nil
	case gamedata.SlotHands, gamedata.SlotWrists:
		return 4, nil
	case gamedata.SlotLegs, gamedata.SlotRFinger:
		return 6, nil
	case gamedata.SlotFeet, gamedata.SlotLFinger:
		return 8, nil
	case gamedata.SlotHair:
		return 10, nil
	default:
		return 0, fmt.Errorf("slot %s has no eqdp bits", slot)
	}
}

// EqdpMask returns the bits of an EQDP entry that belong to slot.
func EqdpMask(slot gamedata.EquipSlot) (uint16, error) {
	shift, err := EqdpShift(slot)
	if err != nil {
		return 0, err
	}
	return 0b11 << shift, nil
}

// EqdpFile is an equipment or accessory deformer table for one gender-race.
type EqdpFile struct {
	identifier uint16
	blockSize  uint16
	offsets    []uint16
	data       []uint16
}

// NewEqdpFile returns a table with blockCount absent blocks.
func NewEqdpFile(identifier, blockSize, blockCount uint16) *EqdpFile {
	if blockSize == 0 {
		blockSize = BlockSize
	}
	offsets := make([]uint16, blockCount)
	for i := range offsets {
		offsets[i] = eqdpAbsentBlock
	}
	return &EqdpFile{identifier: identifier, blockSize: blockSize, offsets: offsets}
}

// ParseEqdp decodes an EQDP table.
func ParseEqdp(data []byte) (*EqdpFile, error) {
	if len(data) < 6 {
		return nil, &TableParseError{Reason: "header truncated"}
	}
	f := &EqdpFile{
		identifier: binary.LittleEndian.Uint16(data[0:]),
		blockSize:  binary.LittleEndian.Uint16(data[2:]),
	}
	if f.blockSize == 0 {
		return nil, &TableParseError{Reason: "block size is zero"}
	}
	count := int(binary.LittleEndian.Uint16(data[4:]))
	header := 6 + 2*count
	if len(data) < header {
		return nil, &TableParseError{Reason: fmt.Sprintf("block table truncated: %d blocks", count)}
	}
	if (len(data)-header)%2 != 0 {
		return nil, &TableParseError{Reason: "odd data length"}
	}

	f.offsets = make([]uint16, count)
	for i := range f.offsets {
		f.offsets[i] = binary.LittleEndian.Uint16(data[6+2*i:])
	}
	f.data = make([]uint16, (len(data)-header)/2)
	for i := range f.data {
		f.data[i] = binary.LittleEndian.Uint16(data[header+2*i:])
	}
	for i, off := range f.offsets {
		if off == eqdpAbsentBlock {
			continue
		}
		if int(off)+int(f.blockSize) > len(f.data) {
			return nil, &TableParseError{Reason: fmt.Sprintf("block %d at offset %d overruns data", i, off)}
		}
	}
	return f, nil
}

func (f *EqdpFile) Kind() Kind { return KindEqdp }

func (f *EqdpFile) Clone() Table {
	return &EqdpFile{
		identifier: f.identifier,
		blockSize:  f.blockSize,
		offsets:    append([]uint16(nil), f.offsets...),
		data:       append([]uint16(nil), f.data...),
	}
}

func (f *EqdpFile) Bytes() []byte {
	out := make([]byte, 0, 6+2*len(f.offsets)+2*len(f.data))
	out = binary.LittleEndian.AppendUint16(out, f.identifier)
	out = binary.LittleEndian.AppendUint16(out, f.blockSize)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(f.offsets)))
	for _, off := range f.offsets {
		out = binary.LittleEndian.AppendUint16(out, off)
	}
	for _, v := range f.data {
		out = binary.LittleEndian.AppendUint16(out, v)
	}
	return out
}

// Entry returns the full entry for setID. Missing blocks read as zero.
func (f *EqdpFile) Entry(setID uint16) uint16 {
	block := int(setID / f.blockSize)
	if block >= len(f.offsets) || f.offsets[block] == eqdpAbsentBlock {
		return 0
	}
	return f.data[int(f.offsets[block])+int(setID%f.blockSize)]
}

// SlotEntry returns the entry for setID reduced to the bits of slot.
func (f *EqdpFile) SlotEntry(setID uint16, slot gamedata.EquipSlot) (uint16, error) {
	mask, err := EqdpMask(slot)
	if err != nil {
		return 0, err
	}
	return f.Entry(setID) & mask, nil
}

// SetSlotEntry replaces the bits of slot in the entry for setID.
func (f *EqdpFile) SetSlotEntry(setID uint16, slot gamedata.EquipSlot, value uint16) error {
	mask, err := EqdpMask(slot)
	if err != nil {
		return err
	}
	block := int(setID / f.blockSize)
	if block >= len(f.offsets) {
		return fmt.Errorf("set id %d outside %d blocks", setID, len(f.offsets))
	}
	if f.offsets[block] == eqdpAbsentBlock {
		if value&mask == 0 {
			return nil
		}
		if len(f.data)+int(f.blockSize) >= eqdpAbsentBlock {
			return fmt.Errorf("no room for block %d", block)
		}
		f.offsets[block] = uint16(len(f.data))
		f.data = append(f.data, make([]uint16, f.blockSize)...)
	}
	idx := int(f.offsets[block]) + int(setID%f.blockSize)
	f.data[idx] = f.data[idx]&^mask | value&mask
	return nil
}
