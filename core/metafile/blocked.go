package metafile

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

const (
	// BlockSize is the number of entries per EQP/GMP block.
	BlockSize = 160
	// MaxBlocks is the number of blocks addressable by the presence mask.
	MaxBlocks = 64
	// MaxSetID is the highest set id an EQP/GMP table can hold.
	MaxSetID = BlockSize*MaxBlocks - 1
)

// blockedTable is the expanded form of the EQP and GMP layout: a u64 array
// whose first entry is a bitmask of the 160-entry blocks stored in the file.
// Absent blocks read as zero.
type blockedTable struct {
	present uint64
	entries [MaxBlocks * BlockSize]uint64
}

func newBlockedTable() blockedTable {
	return blockedTable{present: 1}
}

func parseBlocked(data []byte) (blockedTable, error) {
	var t blockedTable
	if len(data) < 8 || len(data)%8 != 0 {
		return t, &TableParseError{Reason: fmt.Sprintf("size %d is not a positive multiple of 8", len(data))}
	}
	t.present = binary.LittleEndian.Uint64(data)
	if t.present&1 == 0 {
		return t, &TableParseError{Reason: "first block missing"}
	}
	want := bits.OnesCount64(t.present) * BlockSize * 8
	if len(data) != want {
		return t, &TableParseError{Reason: fmt.Sprintf("size %d does not match %d present blocks", len(data), bits.OnesCount64(t.present))}
	}

	off := 0
	for b := 0; b < MaxBlocks; b++ {
		if t.present&(1<<uint(b)) == 0 {
			continue
		}
		for i := 0; i < BlockSize; i++ {
			t.entries[b*BlockSize+i] = binary.LittleEndian.Uint64(data[off:])
			off += 8
		}
	}
	t.entries[0] = 0
	return t, nil
}

func (t *blockedTable) entry(setID uint16) uint64 {
	if setID == 0 || int(setID) > MaxSetID {
		return 0
	}
	return t.entries[setID]
}

func (t *blockedTable) setEntry(setID uint16, value uint64) error {
	if setID == 0 {
		return fmt.Errorf("set id 0 is reserved")
	}
	if int(setID) > MaxSetID {
		return fmt.Errorf("set id %d exceeds %d", setID, MaxSetID)
	}
	block := uint(setID) / BlockSize
	if t.present&(1<<block) == 0 {
		if value == 0 {
			return nil
		}
		t.present |= 1 << block
	}
	t.entries[setID] = value
	return nil
}

func (t *blockedTable) bytes() []byte {
	out := make([]byte, 0, bits.OnesCount64(t.present)*BlockSize*8)
	for b := 0; b < MaxBlocks; b++ {
		if t.present&(1<<uint(b)) == 0 {
			continue
		}
		for i := 0; i < BlockSize; i++ {
			v := t.entries[b*BlockSize+i]
			if b == 0 && i == 0 {
				v = t.present
			}
			out = binary.LittleEndian.AppendUint64(out, v)
		}
	}
	return out
}
