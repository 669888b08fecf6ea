package gamedata

import "fmt"

// EqpPath returns the path of the equipment parameter table.
func EqpPath() GamePath {
	return "chara/xls/equipmentparameter/equipmentparameter.eqp"
}

// GmpPath returns the path of the gimmick parameter table.
func GmpPath() GamePath {
	return "chara/xls/equipmentparameter/gimmickparameter.gmp"
}

// EqdpPath returns the deformer table for a slot family and gender-race.
func EqdpPath(slot EquipSlot, gr GenderRace) GamePath {
	if slot.IsAccessory() {
		return GamePath(fmt.Sprintf("chara/xls/charadb/accessorydeformerparameter/c%04d.eqdp", uint16(gr)))
	}
	return GamePath(fmt.Sprintf("chara/xls/charadb/equipmentdeformerparameter/c%04d.eqdp", uint16(gr)))
}

// EstPath returns the extra skeleton table for t.
func EstPath(t EstType) (GamePath, error) {
	switch t {
	case EstFace:
		return "chara/xls/charadb/faceskeletontemplate.est", nil
	case EstHair:
		return "chara/xls/charadb/hairskeletontemplate.est", nil
	case EstHead:
		return "chara/xls/charadb/extra_met.est", nil
	case EstBody:
		return "chara/xls/charadb/extra_top.est", nil
	default:
		return "", fmt.Errorf("no est table for %s", t)
	}
}

// ImcPath returns the variant table for an object.
// secondary is only used by weapons, monsters and demihumans.
func ImcPath(t ObjectType, primary, secondary uint16) (GamePath, error) {
	switch t {
	case ObjectEquipment:
		return GamePath(fmt.Sprintf("chara/equipment/e%04d/e%04d.imc", primary, primary)), nil
	case ObjectAccessory:
		return GamePath(fmt.Sprintf("chara/accessory/a%04d/a%04d.imc", primary, primary)), nil
	case ObjectWeapon:
		return GamePath(fmt.Sprintf("chara/weapon/w%04d/obj/body/b%04d/b%04d.imc", primary, secondary, secondary)), nil
	case ObjectMonster:
		return GamePath(fmt.Sprintf("chara/monster/m%04d/obj/body/b%04d/b%04d.imc", primary, secondary, secondary)), nil
	case ObjectDemiHuman:
		return GamePath(fmt.Sprintf("chara/demihuman/d%04d/obj/equipment/e%04d/e%04d.imc", primary, secondary, secondary)), nil
	default:
		return "", fmt.Errorf("no imc table for %s", t)
	}
}
