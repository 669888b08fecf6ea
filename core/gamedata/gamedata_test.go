package gamedata

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGamePath(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    GamePath
		wantErr bool
	}{
		{"Lowercases", "Chara/Equipment/E0001.mdl", "chara/equipment/e0001.mdl", false},
		{"Backslashes", `chara\human\c0101\skin.tex`, "chara/human/c0101/skin.tex", false},
		{"LeadingSlash", "/ui/icon/000000.tex", "ui/icon/000000.tex", false},
		{"Empty", "   ", "", true},
		{"Traversal", "chara/../secret.tex", "", true},
		{"DoubleSlash", "chara//x.tex", "", true},
		{"NonASCII", "chara/é.tex", "", true},
		{"Drive", "C:/game/x.tex", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewGamePath(tt.raw)
			if tt.wantErr {
				var pathErr *PathError
				require.Error(t, err)
				assert.True(t, errors.As(err, &pathErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRelPath_PreservesCase(t *testing.T) {
	got, err := NewRelPath(`Textures\Hair_Red.tex`)
	require.NoError(t, err)
	assert.Equal(t, RelPath("Textures/Hair_Red.tex"), got)
}

func TestGenderRaceJSON(t *testing.T) {
	var v struct {
		A GenderRace `json:"a"`
		B GenderRace `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"0101","b":201}`), &v))
	assert.Equal(t, GenderRace(101), v.A)
	assert.Equal(t, GenderRace(201), v.B)

	out, err := json.Marshal(v.A)
	require.NoError(t, err)
	assert.Equal(t, `"0101"`, string(out))
}

func TestEquipSlotText(t *testing.T) {
	var slot EquipSlot
	require.NoError(t, json.Unmarshal([]byte(`"hair"`), &slot))
	assert.Equal(t, SlotHair, slot)
	assert.Error(t, json.Unmarshal([]byte(`"tail"`), &slot))
}

func TestTablePaths(t *testing.T) {
	assert.Equal(t, GamePath("chara/xls/charadb/equipmentdeformerparameter/c0101.eqdp"), EqdpPath(SlotHair, 101))
	assert.Equal(t, GamePath("chara/xls/charadb/accessorydeformerparameter/c0201.eqdp"), EqdpPath(SlotEars, 201))

	p, err := ImcPath(ObjectWeapon, 201, 1)
	require.NoError(t, err)
	assert.Equal(t, GamePath("chara/weapon/w0201/obj/body/b0001/b0001.imc"), p)

	_, err = ImcPath(ObjectUnknown, 1, 1)
	assert.Error(t, err)

	p, err = EstPath(EstBody)
	require.NoError(t, err)
	assert.Equal(t, GamePath("chara/xls/charadb/extra_top.est"), p)
}
