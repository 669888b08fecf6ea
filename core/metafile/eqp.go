package metafile

import (
	"fmt"

	"mod-manager/core/gamedata"
)

// EqpMask returns the bits of an EQP entry that belong to slot.
func EqpMask(slot gamedata.EquipSlot) (uint64, error) {
	switch slot {
	case gamedata.SlotBody:
		return 0x0000_0000_0000_FFFF, nil
	case gamedata.SlotLegs:
		return 0x0000_0000_00FF_0000, nil
	case gamedata.SlotHands:
		return 0x0000_0000_FF00_0000, nil
	case gamedata.SlotFeet:
		return 0x0000_00FF_0000_0000, nil
	case gamedata.SlotHead:
		return 0xFFFF_FF00_0000_0000, nil
	default:
		return 0, fmt.Errorf("slot %s has no eqp bits", slot)
	}
}

// EqpFile is the equipment parameter table.
type EqpFile struct {
	blockedTable
}

// NewEqpFile returns a table holding only the first block.
func NewEqpFile() *EqpFile {
	return &EqpFile{blockedTable: newBlockedTable()}
}

// ParseEqp decodes an EQP table.
func ParseEqp(data []byte) (*EqpFile, error) {
	t, err := parseBlocked(data)
	if err != nil {
		return nil, err
	}
	return &EqpFile{blockedTable: t}, nil
}

func (f *EqpFile) Kind() Kind { return KindEqp }

func (f *EqpFile) Clone() Table {
	c := *f
	return &c
}

func (f *EqpFile) Bytes() []byte { return f.bytes() }

// Entry returns the full entry for setID.
func (f *EqpFile) Entry(setID uint16) uint64 { return f.entry(setID) }

// SlotEntry returns the entry for setID reduced to the bits of slot.
func (f *EqpFile) SlotEntry(setID uint16, slot gamedata.EquipSlot) (uint64, error) {
	mask, err := EqpMask(slot)
	if err != nil {
		return 0, err
	}
	return f.entry(setID) & mask, nil
}

// SetSlotEntry replaces the bits of slot in the entry for setID.
func (f *EqpFile) SetSlotEntry(setID uint16, slot gamedata.EquipSlot, value uint64) error {
	mask, err := EqpMask(slot)
	if err != nil {
		return err
	}
	current := f.entry(setID)
	return f.setEntry(setID, current&^mask|value&mask)
}
