package metafile

import (
	"encoding/binary"
	"fmt"
	"sort"

	"mod-manager/core/gamedata"
)

// EstEntry maps a set and gender-race to a skeleton id.
type EstEntry struct {
	SetID      uint16
	GenderRace gamedata.GenderRace
	Value      uint16
}

// EstFile is an extra skeleton table. Entries are kept ordered by
// (gender-race, set id).
type EstFile struct {
	entries []EstEntry
}

// NewEstFile returns an empty table.
func NewEstFile() *EstFile {
	return &EstFile{}
}

// ParseEst decodes an EST table.
func ParseEst(data []byte) (*EstFile, error) {
	if len(data) < 4 {
		return nil, &TableParseError{Reason: "header truncated"}
	}
	count := int(binary.LittleEndian.Uint32(data))
	if want := 4 + count*6; len(data) != want {
		return nil, &TableParseError{Reason: fmt.Sprintf("size %d does not match %d entries", len(data), count)}
	}
	f := &EstFile{entries: make([]EstEntry, count)}
	values := 4 + count*4
	for i := range f.entries {
		f.entries[i] = EstEntry{
			SetID:      binary.LittleEndian.Uint16(data[4+4*i:]),
			GenderRace: gamedata.GenderRace(binary.LittleEndian.Uint16(data[6+4*i:])),
			Value:      binary.LittleEndian.Uint16(data[values+2*i:]),
		}
	}
	return f, nil
}

func (f *EstFile) Kind() Kind { return KindEst }

func (f *EstFile) Clone() Table {
	return &EstFile{entries: append([]EstEntry(nil), f.entries...)}
}

func (f *EstFile) Bytes() []byte {
	out := make([]byte, 0, 4+6*len(f.entries))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(f.entries)))
	for _, e := range f.entries {
		out = binary.LittleEndian.AppendUint16(out, e.SetID)
		out = binary.LittleEndian.AppendUint16(out, uint16(e.GenderRace))
	}
	for _, e := range f.entries {
		out = binary.LittleEndian.AppendUint16(out, e.Value)
	}
	return out
}

// Len returns the number of stored entries.
func (f *EstFile) Len() int { return len(f.entries) }

func (f *EstFile) search(gr gamedata.GenderRace, setID uint16) (int, bool) {
	i := sort.Search(len(f.entries), func(i int) bool {
		e := f.entries[i]
		if e.GenderRace != gr {
			return e.GenderRace > gr
		}
		return e.SetID >= setID
	})
	return i, i < len(f.entries) && f.entries[i].GenderRace == gr && f.entries[i].SetID == setID
}

// Entry returns the skeleton id for (gr, setID), zero when absent.
func (f *EstFile) Entry(gr gamedata.GenderRace, setID uint16) uint16 {
	if i, ok := f.search(gr, setID); ok {
		return f.entries[i].Value
	}
	return 0
}

// SetEntry stores value for (gr, setID). A zero value removes the entry.
func (f *EstFile) SetEntry(gr gamedata.GenderRace, setID uint16, value uint16) {
	i, ok := f.search(gr, setID)
	switch {
	case ok && value == 0:
		f.entries = append(f.entries[:i], f.entries[i+1:]...)
	case ok:
		f.entries[i].Value = value
	case value != 0:
		f.entries = append(f.entries, EstEntry{})
		copy(f.entries[i+1:], f.entries[i:])
		f.entries[i] = EstEntry{SetID: setID, GenderRace: gr, Value: value}
	}
}
