// Package resolver answers "which source serves this path" over HTTP.
//
// Lookups never wait for a rebuild: they read the last built snapshot of each
// assigned collection.
//
//	GET /resolve?path=chara/human/c0101/hair.tex&actor=Alice
//	GET /tables/chara/xls/charadb/equipmentdeformerparameter/c0101.eqdp?actor=Alice
package resolver
