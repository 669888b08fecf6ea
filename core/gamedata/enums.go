package gamedata

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ObjectType identifies the family of game objects an IMC table belongs to.
type ObjectType uint8

const (
	ObjectUnknown ObjectType = iota
	ObjectEquipment
	ObjectAccessory
	ObjectWeapon
	ObjectMonster
	ObjectDemiHuman
)

var objectTypeNames = map[ObjectType]string{
	ObjectEquipment: "Equipment",
	ObjectAccessory: "Accessory",
	ObjectWeapon:    "Weapon",
	ObjectMonster:   "Monster",
	ObjectDemiHuman: "DemiHuman",
}

func (t ObjectType) String() string {
	if name, ok := objectTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t ObjectType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ObjectType) UnmarshalText(text []byte) error {
	v, err := ParseObjectType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseObjectType parses a case-insensitive object type name.
func ParseObjectType(s string) (ObjectType, error) {
	for k, name := range objectTypeNames {
		if strings.EqualFold(name, s) {
			return k, nil
		}
	}
	return ObjectUnknown, fmt.Errorf("unknown object type %q", s)
}

// EquipSlot is a slot whose data lives in the equipment or accessory tables.
type EquipSlot uint8

const (
	SlotUnknown EquipSlot = iota
	SlotHead
	SlotBody
	SlotHands
	SlotLegs
	SlotFeet
	SlotEars
	SlotNeck
	SlotWrists
	SlotRFinger
	SlotLFinger
	SlotHair
)

var equipSlotNames = map[EquipSlot]string{
	SlotHead:    "Head",
	SlotBody:    "Body",
	SlotHands:   "Hands",
	SlotLegs:    "Legs",
	SlotFeet:    "Feet",
	SlotEars:    "Ears",
	SlotNeck:    "Neck",
	SlotWrists:  "Wrists",
	SlotRFinger: "RFinger",
	SlotLFinger: "LFinger",
	SlotHair:    "Hair",
}

func (s EquipSlot) String() string {
	if name, ok := equipSlotNames[s]; ok {
		return name
	}
	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s EquipSlot) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *EquipSlot) UnmarshalText(text []byte) error {
	v, err := ParseEquipSlot(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseEquipSlot parses a case-insensitive slot name.
func ParseEquipSlot(s string) (EquipSlot, error) {
	for k, name := range equipSlotNames {
		if strings.EqualFold(name, s) {
			return k, nil
		}
	}
	return SlotUnknown, fmt.Errorf("unknown equip slot %q", s)
}

// IsAccessory reports whether the slot is stored in the accessory tables.
func (s EquipSlot) IsAccessory() bool {
	switch s {
	case SlotEars, SlotNeck, SlotWrists, SlotRFinger, SlotLFinger:
		return true
	default:
		return false
	}
}

// PartIndex returns the position of the slot inside a five-part equipment or
// accessory IMC entry group, or -1 for slots that have no IMC part.
func (s EquipSlot) PartIndex() int {
	switch s {
	case SlotHead, SlotEars:
		return 0
	case SlotBody, SlotNeck:
		return 1
	case SlotHands, SlotWrists:
		return 2
	case SlotLegs, SlotRFinger:
		return 3
	case SlotFeet, SlotLFinger:
		return 4
	default:
		return -1
	}
}

// EstType selects one of the extra skeleton tables.
type EstType uint8

const (
	EstUnknown EstType = iota
	EstFace
	EstHair
	EstHead
	EstBody
)

var estTypeNames = map[EstType]string{
	EstFace: "Face",
	EstHair: "Hair",
	EstHead: "Head",
	EstBody: "Body",
}

func (t EstType) String() string {
	if name, ok := estTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t EstType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EstType) UnmarshalText(text []byte) error {
	for k, name := range estTypeNames {
		if strings.EqualFold(name, string(text)) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown est type %q", string(text))
}

// GenderRace is the four digit gender-race code, e.g. 0101 for midlander males.
type GenderRace uint16

func (g GenderRace) String() string {
	return fmt.Sprintf("%04d", uint16(g))
}

// ParseGenderRace parses codes written either as "0101" or "101".
func ParseGenderRace(s string) (GenderRace, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil || n == 0 || n > 9999 {
		return 0, fmt.Errorf("invalid gender race code %q", s)
	}
	return GenderRace(n), nil
}

// MarshalJSON writes the code as a zero-padded string.
func (g GenderRace) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

// UnmarshalJSON accepts both "0101" and 101.
func (g *GenderRace) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n uint16
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid gender race %s", string(data))
		}
		s = strconv.Itoa(int(n))
	}
	v, err := ParseGenderRace(s)
	if err != nil {
		return err
	}
	*g = v
	return nil
}
