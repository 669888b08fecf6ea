// Package gamedata holds the vocabulary shared by the resolution engine:
// normalized logical game paths, package-relative file paths, the enums that
// describe equipment and character data, and the builders that map a
// structural key to the game path of the shared binary table it lives in.
//
// # Paths
//
// A GamePath is the key of the effective map. Every path a package declares is
// normalized through NewGamePath before it takes part in conflict resolution, so
// "Chara\Equipment\e0001.mdl" and "chara/equipment/e0001.mdl" are the same key.
// Malformed input yields a *PathError and the caller drops that single
// association.
//
// # Tables
//
//	gamedata.EqpPath()                                  // chara/xls/equipmentparameter/equipmentparameter.eqp
//	gamedata.EqdpPath(gamedata.SlotBody, 101)           // .../equipmentdeformerparameter/c0101.eqdp
//	gamedata.ImcPath(gamedata.ObjectEquipment, 42, 0)   // chara/equipment/e0042/e0042.imc
package gamedata
