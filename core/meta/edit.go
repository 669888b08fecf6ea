package meta

import (
	"fmt"

	"mod-manager/core/gamedata"
	"mod-manager/core/metafile"
)

// TableKey identifies one shared table.
type TableKey struct {
	Kind metafile.Kind
	Path gamedata.GamePath
}

func (k TableKey) String() string {
	return k.Path.String()
}

// ImcEdit replaces one variant entry of one part of an object.
type ImcEdit struct {
	ObjectType  gamedata.ObjectType `json:"ObjectType"`
	PrimaryID   uint16              `json:"PrimaryId"`
	SecondaryID uint16              `json:"SecondaryId"`
	Slot        gamedata.EquipSlot  `json:"EquipSlot"`
	Variant     uint16              `json:"Variant"`
	Entry       metafile.ImcEntry   `json:"Entry"`
}

// EqpEdit replaces the bits of one slot in an equipment parameter entry.
type EqpEdit struct {
	SetID uint16             `json:"SetId"`
	Slot  gamedata.EquipSlot `json:"Slot"`
	Entry uint64             `json:"Entry"`
}

// EqdpEdit replaces the two bits of one slot in a deformer entry.
type EqdpEdit struct {
	SetID      uint16              `json:"SetId"`
	Slot       gamedata.EquipSlot  `json:"Slot"`
	GenderRace gamedata.GenderRace `json:"GenderRace"`
	Entry      uint16              `json:"Entry"`
}

// GmpEdit replaces a whole gimmick entry.
type GmpEdit struct {
	SetID uint16 `json:"SetId"`
	Entry uint64 `json:"Entry"`
}

// EstEdit replaces a skeleton id; zero removes the entry.
type EstEdit struct {
	Type       gamedata.EstType    `json:"Slot"`
	SetID      uint16              `json:"SetId"`
	GenderRace gamedata.GenderRace `json:"GenderRace"`
	Entry      uint16              `json:"Entry"`
}

// TableEdit is one structural modification of one field of a shared table.
type TableEdit struct {
	Kind metafile.Kind `json:"Type"`
	Imc  *ImcEdit      `json:"Imc,omitempty"`
	Eqp  *EqpEdit      `json:"Eqp,omitempty"`
	Eqdp *EqdpEdit     `json:"Eqdp,omitempty"`
	Gmp  *GmpEdit      `json:"Gmp,omitempty"`
	Est  *EstEdit      `json:"Est,omitempty"`
}

func NewImcEdit(e ImcEdit) TableEdit   { return TableEdit{Kind: metafile.KindImc, Imc: &e} }
func NewEqpEdit(e EqpEdit) TableEdit   { return TableEdit{Kind: metafile.KindEqp, Eqp: &e} }
func NewEqdpEdit(e EqdpEdit) TableEdit { return TableEdit{Kind: metafile.KindEqdp, Eqdp: &e} }
func NewGmpEdit(e GmpEdit) TableEdit   { return TableEdit{Kind: metafile.KindGmp, Gmp: &e} }
func NewEstEdit(e EstEdit) TableEdit   { return TableEdit{Kind: metafile.KindEst, Est: &e} }

// Validate checks that exactly the payload matching Kind is set and that its
// key addresses a real table field.
func (e TableEdit) Validate() error {
	set := 0
	for _, present := range []bool{e.Imc != nil, e.Eqp != nil, e.Eqdp != nil, e.Gmp != nil, e.Est != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("%s edit must carry exactly one payload, has %d", e.Kind, set)
	}

	switch e.Kind {
	case metafile.KindImc:
		if e.Imc == nil {
			return fmt.Errorf("imc edit without imc payload")
		}
		if _, err := imcPart(e.Imc); err != nil {
			return err
		}
		if err := e.Imc.Entry.Validate(); err != nil {
			return err
		}
	case metafile.KindEqp:
		if e.Eqp == nil {
			return fmt.Errorf("eqp edit without eqp payload")
		}
		if _, err := metafile.EqpMask(e.Eqp.Slot); err != nil {
			return err
		}
		if e.Eqp.SetID == 0 || int(e.Eqp.SetID) > metafile.MaxSetID {
			return fmt.Errorf("eqp set id %d out of range", e.Eqp.SetID)
		}
	case metafile.KindEqdp:
		if e.Eqdp == nil {
			return fmt.Errorf("eqdp edit without eqdp payload")
		}
		if _, err := metafile.EqdpMask(e.Eqdp.Slot); err != nil {
			return err
		}
		if e.Eqdp.GenderRace == 0 {
			return fmt.Errorf("eqdp edit without gender race")
		}
	case metafile.KindGmp:
		if e.Gmp == nil {
			return fmt.Errorf("gmp edit without gmp payload")
		}
		if e.Gmp.SetID == 0 || int(e.Gmp.SetID) > metafile.MaxSetID {
			return fmt.Errorf("gmp set id %d out of range", e.Gmp.SetID)
		}
	case metafile.KindEst:
		if e.Est == nil {
			return fmt.Errorf("est edit without est payload")
		}
		if _, err := gamedata.EstPath(e.Est.Type); err != nil {
			return err
		}
		if e.Est.GenderRace == 0 {
			return fmt.Errorf("est edit without gender race")
		}
	default:
		return fmt.Errorf("unknown edit kind %d", e.Kind)
	}
	return nil
}

// Table returns the key of the table the edit targets.
func (e TableEdit) Table() (TableKey, error) {
	if err := e.Validate(); err != nil {
		return TableKey{}, err
	}
	var (
		p   gamedata.GamePath
		err error
	)
	switch e.Kind {
	case metafile.KindImc:
		p, err = gamedata.ImcPath(e.Imc.ObjectType, e.Imc.PrimaryID, e.Imc.SecondaryID)
	case metafile.KindEqp:
		p = gamedata.EqpPath()
	case metafile.KindEqdp:
		p = gamedata.EqdpPath(e.Eqdp.Slot, e.Eqdp.GenderRace)
	case metafile.KindGmp:
		p = gamedata.GmpPath()
	case metafile.KindEst:
		p, err = gamedata.EstPath(e.Est.Type)
	}
	if err != nil {
		return TableKey{}, err
	}
	return TableKey{Kind: e.Kind, Path: p}, nil
}

// Field returns the identifier of the single table field the edit writes.
// Two edits with the same Field conflict.
func (e TableEdit) Field() string {
	switch e.Kind {
	case metafile.KindImc:
		if e.Imc != nil {
			return fmt.Sprintf("imc/%s/%04d/%04d/%s/%d", e.Imc.ObjectType, e.Imc.PrimaryID, e.Imc.SecondaryID, e.Imc.Slot, e.Imc.Variant)
		}
	case metafile.KindEqp:
		if e.Eqp != nil {
			return fmt.Sprintf("eqp/%s/%d", e.Eqp.Slot, e.Eqp.SetID)
		}
	case metafile.KindEqdp:
		if e.Eqdp != nil {
			return fmt.Sprintf("eqdp/%s/%s/%d", e.Eqdp.Slot, e.Eqdp.GenderRace, e.Eqdp.SetID)
		}
	case metafile.KindGmp:
		if e.Gmp != nil {
			return fmt.Sprintf("gmp/%d", e.Gmp.SetID)
		}
	case metafile.KindEst:
		if e.Est != nil {
			return fmt.Sprintf("est/%s/%s/%d", e.Est.Type, e.Est.GenderRace, e.Est.SetID)
		}
	}
	return "invalid/" + e.Kind.String()
}

func (e TableEdit) String() string {
	return e.Field()
}

func imcPart(e *ImcEdit) (int, error) {
	switch e.ObjectType {
	case gamedata.ObjectEquipment, gamedata.ObjectAccessory:
		part := e.Slot.PartIndex()
		if part < 0 || e.Slot.IsAccessory() != (e.ObjectType == gamedata.ObjectAccessory) {
			return 0, fmt.Errorf("slot %s does not belong to %s", e.Slot, e.ObjectType)
		}
		return part, nil
	case gamedata.ObjectWeapon, gamedata.ObjectMonster, gamedata.ObjectDemiHuman:
		return 0, nil
	default:
		return 0, fmt.Errorf("unknown object type %s", e.ObjectType)
	}
}
