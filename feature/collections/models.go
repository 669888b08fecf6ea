package collections

import (
	"time"

	"gorm.io/datatypes"
)

// CollectionRow is one persisted collection.
type CollectionRow struct {
	Name      string `gorm:"primaryKey;size:64"`
	CreatedAt time.Time
}

func (CollectionRow) TableName() string { return "collections" }

// SettingRow is the state of one package in one collection.
type SettingRow struct {
	Collection string `gorm:"primaryKey;size:64"`
	Package    string `gorm:"primaryKey;size:191"`
	Enabled    bool
	Priority   int
	// Options holds the selected option indices per group.
	Options datatypes.JSON
}

func (SettingRow) TableName() string { return "collection_settings" }

const (
	scopeDefault = "default"
	scopeForced  = "forced"
	scopeActor   = "actor"
)

// AssignmentRow maps a scope (and actor, for actor scopes) to a collection.
type AssignmentRow struct {
	Scope      string `gorm:"primaryKey;size:16"`
	Actor      string `gorm:"primaryKey;size:128"`
	Collection string `gorm:"size:64"`
}

func (AssignmentRow) TableName() string { return "collection_assignments" }
