package collections

import (
	"context"
	"encoding/json"
	"fmt"

	"mod-manager/core/collection"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository stores collections and assignments with GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository over db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the tables.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&CollectionRow{}, &SettingRow{}, &AssignmentRow{}); err != nil {
		return fmt.Errorf("failed to migrate collection tables: %w", err)
	}
	return nil
}

// LoadCollections returns every collection with its settings.
func (r *Repository) LoadCollections(ctx context.Context) ([]collection.Record, error) {
	db := r.db.WithContext(ctx)

	var rows []CollectionRow
	if err := db.Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	var settings []SettingRow
	if err := db.Order("collection, package").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to query collection settings: %w", err)
	}

	byName := make(map[string]map[string]collection.Settings, len(rows))
	for _, row := range rows {
		byName[row.Name] = make(map[string]collection.Settings)
	}
	for _, s := range settings {
		target, ok := byName[s.Collection]
		if !ok {
			continue
		}
		decoded := collection.Settings{Enabled: s.Enabled, Priority: s.Priority}
		if len(s.Options) > 0 {
			if err := json.Unmarshal(s.Options, &decoded.Options); err != nil {
				return nil, fmt.Errorf("failed to decode options of %s in %s: %w", s.Package, s.Collection, err)
			}
		}
		target[s.Package] = decoded
	}

	records := make([]collection.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, collection.Record{Name: row.Name, Settings: byName[row.Name]})
	}
	return records, nil
}

// SaveCollection replaces the stored settings of rec in one transaction.
func (r *Repository) SaveCollection(ctx context.Context, rec collection.Record) error {
	rows := make([]SettingRow, 0, len(rec.Settings))
	for id, s := range rec.Settings {
		row := SettingRow{Collection: rec.Name, Package: id, Enabled: s.Enabled, Priority: s.Priority}
		if len(s.Options) > 0 {
			data, err := json.Marshal(s.Options)
			if err != nil {
				return fmt.Errorf("failed to encode options of %s: %w", id, err)
			}
			row.Options = datatypes.JSON(data)
		}
		rows = append(rows, row)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&CollectionRow{Name: rec.Name}).Error; err != nil {
			return fmt.Errorf("failed to save collection %s: %w", rec.Name, err)
		}
		if err := tx.Where("collection = ?", rec.Name).Delete(&SettingRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear settings of %s: %w", rec.Name, err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 200).Error; err != nil {
			return fmt.Errorf("failed to save settings of %s: %w", rec.Name, err)
		}
		return nil
	})
}

// DeleteCollection removes a collection and its settings.
func (r *Repository) DeleteCollection(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection = ?", name).Delete(&SettingRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete settings of %s: %w", name, err)
		}
		if err := tx.Where("name = ?", name).Delete(&CollectionRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete collection %s: %w", name, err)
		}
		return nil
	})
}

// LoadAssignments returns the stored assignments. Nothing stored yields the
// defaults: Default for everyone, no forced collection.
func (r *Repository) LoadAssignments(ctx context.Context) (collection.Assignments, error) {
	var rows []AssignmentRow
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return collection.Assignments{}, fmt.Errorf("failed to query assignments: %w", err)
	}

	a := collection.Assignments{Default: collection.DefaultName, Forced: collection.EmptyName, Actors: map[string]string{}}
	for _, row := range rows {
		switch row.Scope {
		case scopeDefault:
			a.Default = row.Collection
		case scopeForced:
			a.Forced = row.Collection
		case scopeActor:
			a.Actors[row.Actor] = row.Collection
		}
	}
	return a, nil
}

// SaveAssignments replaces every stored assignment.
func (r *Repository) SaveAssignments(ctx context.Context, a collection.Assignments) error {
	rows := []AssignmentRow{
		{Scope: scopeDefault, Collection: a.Default},
		{Scope: scopeForced, Collection: a.Forced},
	}
	for actor, name := range a.Actors {
		rows = append(rows, AssignmentRow{Scope: scopeActor, Actor: actor, Collection: name})
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&AssignmentRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear assignments: %w", err)
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to save assignments: %w", err)
		}
		return nil
	})
}
