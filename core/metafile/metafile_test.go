package metafile

import (
	"errors"
	"testing"

	"mod-manager/core/gamedata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqp_SlotEntryRoundTrip(t *testing.T) {
	f := NewEqpFile()
	require.NoError(t, f.SetSlotEntry(42, gamedata.SlotBody, 0x1234))
	require.NoError(t, f.SetSlotEntry(42, gamedata.SlotHead, 0xAB00_0000_0000_0000))

	parsed, err := ParseEqp(f.Bytes())
	require.NoError(t, err)

	body, err := parsed.SlotEntry(42, gamedata.SlotBody)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1234), body)
	assert.Equal(t, uint64(0xAB00_0000_0000_1234), parsed.Entry(42))
	assert.Equal(t, f.Bytes(), parsed.Bytes())
}

func TestEqp_MaterializesAbsentBlock(t *testing.T) {
	f := NewEqpFile()
	assert.Len(t, f.Bytes(), BlockSize*8)

	require.NoError(t, f.SetSlotEntry(400, gamedata.SlotLegs, 0), "zero write into absent block is a no-op")
	assert.Len(t, f.Bytes(), BlockSize*8)

	require.NoError(t, f.SetSlotEntry(400, gamedata.SlotLegs, 0x00FF_0000))
	assert.Len(t, f.Bytes(), 2*BlockSize*8)

	parsed, err := ParseEqp(f.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint64(0x00FF_0000), parsed.Entry(400))
}

func TestEqp_RejectsReservedAndUnknownSlot(t *testing.T) {
	f := NewEqpFile()
	assert.Error(t, f.SetSlotEntry(0, gamedata.SlotBody, 1))
	assert.Error(t, f.SetSlotEntry(1, gamedata.SlotEars, 1))
}

func TestParseBlocked_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"Empty", nil},
		{"NotMultipleOf8", make([]byte, 12)},
		{"FirstBlockMissing", make([]byte, BlockSize*8)},
		{"SizeMismatch", append([]byte{0x03, 0, 0, 0, 0, 0, 0, 0}, make([]byte, BlockSize*8-8)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGmp(tt.data)
			var parseErr *TableParseError
			assert.True(t, errors.As(err, &parseErr))
		})
	}
}

func TestEqdp_SetAndClone(t *testing.T) {
	f := NewEqdpFile(101, 160, 4)
	require.NoError(t, f.SetSlotEntry(42, gamedata.SlotHair, 0b01<<10))

	clone := f.Clone().(*EqdpFile)
	require.NoError(t, clone.SetSlotEntry(42, gamedata.SlotHair, 0))

	v, err := f.SlotEntry(42, gamedata.SlotHair)
	require.NoError(t, err)
	assert.Equal(t, uint16(0b01<<10), v)

	v, err = clone.SlotEntry(42, gamedata.SlotHair)
	require.NoError(t, err)
	assert.Zero(t, v)

	parsed, err := ParseEqdp(f.Bytes())
	require.NoError(t, err)
	assert.Equal(t, f.Bytes(), parsed.Bytes())
	assert.Equal(t, uint16(0b01<<10), parsed.Entry(42))
}

func TestEqdp_OutOfRange(t *testing.T) {
	f := NewEqdpFile(101, 160, 1)
	assert.Error(t, f.SetSlotEntry(500, gamedata.SlotBody, 1<<2))
	assert.Zero(t, f.Entry(500))
}

func TestParseEqdp_OverrunningBlock(t *testing.T) {
	data := []byte{
		0x65, 0x00, // identifier
		0x02, 0x00, // block size
		0x01, 0x00, // one block
		0x05, 0x00, // offset 5
		0x00, 0x00, 0x00, 0x00,
	}
	_, err := ParseEqdp(data)
	var parseErr *TableParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestEst_InsertUpdateRemove(t *testing.T) {
	f := NewEstFile()
	f.SetEntry(201, 5, 50)
	f.SetEntry(101, 7, 70)
	f.SetEntry(101, 3, 30)
	assert.Equal(t, 3, f.Len())

	parsed, err := ParseEst(f.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint16(30), parsed.Entry(101, 3))
	assert.Equal(t, uint16(50), parsed.Entry(201, 5))
	assert.Equal(t, []EstEntry{
		{SetID: 3, GenderRace: 101, Value: 30},
		{SetID: 7, GenderRace: 101, Value: 70},
		{SetID: 5, GenderRace: 201, Value: 50},
	}, parsed.entries)

	parsed.SetEntry(101, 7, 71)
	parsed.SetEntry(101, 3, 0)
	assert.Equal(t, 2, parsed.Len())
	assert.Equal(t, uint16(71), parsed.Entry(101, 7))
	assert.Zero(t, parsed.Entry(101, 3))
}

func TestImc_GrowsFromDefaultVariant(t *testing.T) {
	f := NewImcFile(0x1F, 1)
	def := ImcEntry{MaterialID: 1, AttributeMask: 0x3FF, SoundID: 3}
	for part := 0; part < 5; part++ {
		require.NoError(t, f.SetEntry(part, 0, def))
	}

	custom := ImcEntry{MaterialID: 7, VfxID: 2}
	require.NoError(t, f.SetEntry(gamedata.SlotLegs.PartIndex(), 4, custom))
	assert.Equal(t, 4, f.VariantCount())

	parsed, err := ParseImc(f.Bytes())
	require.NoError(t, err)

	got, err := parsed.Entry(3, 4)
	require.NoError(t, err)
	assert.Equal(t, custom, got)

	grown, err := parsed.Entry(1, 3)
	require.NoError(t, err)
	assert.Equal(t, def, grown)
}

func TestImc_MissingPart(t *testing.T) {
	f := NewImcFile(0x1, 0)
	assert.Error(t, f.SetEntry(2, 0, ImcEntry{}))
	_, err := f.Entry(2, 0)
	assert.Error(t, err)
}

func TestImc_RejectsValuesOutsidePackedField(t *testing.T) {
	f := NewImcFile(0x1F, 0)
	before := f.Bytes()

	err := f.SetEntry(1, 0, ImcEntry{AttributeMask: 0x7FF, SoundID: 1})
	assert.ErrorContains(t, err, "attribute mask")
	err = f.SetEntry(1, 0, ImcEntry{AttributeMask: 0x3FF, SoundID: 65})
	assert.ErrorContains(t, err, "sound id")
	assert.Equal(t, before, f.Bytes())

	edge := ImcEntry{AttributeMask: MaxImcAttributeMask, SoundID: MaxImcSoundID}
	require.NoError(t, f.SetEntry(1, 0, edge))
	parsed, err := ParseImc(f.Bytes())
	require.NoError(t, err)
	got, err := parsed.Entry(1, 0)
	require.NoError(t, err)
	assert.Equal(t, edge, got)
}

func TestParseDispatchesOnKind(t *testing.T) {
	table, err := Parse(KindFromPath("chara/xls/charadb/extra_top.est"), "chara/xls/charadb/extra_top.est", NewEstFile().Bytes())
	require.NoError(t, err)
	assert.Equal(t, KindEst, table.Kind())

	_, err = Parse(KindImc, "chara/equipment/e0001/e0001.imc", []byte{1})
	var parseErr *TableParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "chara/equipment/e0001/e0001.imc", parseErr.Path)
}
