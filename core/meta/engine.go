package meta

import (
	"context"
	"fmt"
	"sort"

	"mod-manager/core/metafile"

	"go.uber.org/zap"
)

// DuplicateFieldError is returned by MergeForKey when two edits write the
// same field. Callers must resolve field conflicts before merging.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("field %s edited more than once", e.Field)
}

// Warning is a non-fatal problem met while merging.
type Warning struct {
	Table   string `json:"table"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Merged is the synthesized replacement for one table.
type Merged struct {
	Key      TableKey
	Blob     []byte
	Applied  []TableEdit
	Warnings []Warning
}

// Engine applies table edits on top of cached base tables.
type Engine struct {
	cache  *DefaultCache
	logger *zap.Logger
}

// NewEngine creates an engine over cache.
func NewEngine(cache *DefaultCache, logger *zap.Logger) *Engine {
	return &Engine{cache: cache, logger: logger}
}

// Cache returns the default table cache the engine reads from.
func (e *Engine) Cache() *DefaultCache {
	return e.cache
}

// GetDefault returns the shared template for key. It must not be mutated.
func (e *Engine) GetDefault(ctx context.Context, key TableKey) (metafile.Table, error) {
	return e.cache.Get(ctx, key)
}

// GetClone returns a deep copy of the template for key owned by the caller.
func (e *Engine) GetClone(ctx context.Context, key TableKey) (metafile.Table, error) {
	table, err := e.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return table.Clone(), nil
}

// CheckNoOp reports whether applying edit would leave the default unchanged.
// It returns false whenever the default cannot be read.
func (e *Engine) CheckNoOp(ctx context.Context, edit TableEdit) bool {
	key, err := edit.Table()
	if err != nil {
		return false
	}
	table, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Debug("No-op check skipped", zap.String("table", key.String()), zap.Error(err))
		return false
	}
	same, err := matches(table, edit)
	if err != nil {
		return false
	}
	return same
}

// MergeForKey applies the accepted edits for one table to a fresh clone and
// returns the serialized result. Edits that target another table or cannot be
// applied are skipped with a warning. A failure to load the base table is
// returned as an error and nothing is synthesized.
func (e *Engine) MergeForKey(ctx context.Context, key TableKey, edits []TableEdit) (*Merged, error) {
	ordered := append([]TableEdit(nil), edits...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Field() < ordered[j].Field()
	})
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Field() == ordered[i-1].Field() {
			return nil, &DuplicateFieldError{Field: ordered[i].Field()}
		}
	}

	table, err := e.GetClone(ctx, key)
	if err != nil {
		return nil, err
	}

	merged := &Merged{Key: key}
	for _, edit := range ordered {
		target, err := edit.Table()
		if err != nil {
			merged.Warnings = append(merged.Warnings, Warning{Table: key.String(), Field: edit.Field(), Message: err.Error()})
			continue
		}
		if target != key {
			merged.Warnings = append(merged.Warnings, Warning{Table: key.String(), Field: edit.Field(), Message: "edit targets " + target.String()})
			continue
		}
		if err := apply(table, edit); err != nil {
			merged.Warnings = append(merged.Warnings, Warning{Table: key.String(), Field: edit.Field(), Message: err.Error()})
			continue
		}
		merged.Applied = append(merged.Applied, edit)
	}
	for _, w := range merged.Warnings {
		e.logger.Warn("Table edit skipped", zap.String("table", w.Table), zap.String("field", w.Field), zap.String("reason", w.Message))
	}

	merged.Blob = table.Bytes()
	return merged, nil
}

func apply(table metafile.Table, edit TableEdit) error {
	switch edit.Kind {
	case metafile.KindImc:
		f, ok := table.(*metafile.ImcFile)
		if !ok {
			return errWrongTable(edit, table)
		}
		part, err := imcPart(edit.Imc)
		if err != nil {
			return err
		}
		return f.SetEntry(part, int(edit.Imc.Variant), edit.Imc.Entry)
	case metafile.KindEqp:
		f, ok := table.(*metafile.EqpFile)
		if !ok {
			return errWrongTable(edit, table)
		}
		return f.SetSlotEntry(edit.Eqp.SetID, edit.Eqp.Slot, edit.Eqp.Entry)
	case metafile.KindEqdp:
		f, ok := table.(*metafile.EqdpFile)
		if !ok {
			return errWrongTable(edit, table)
		}
		return f.SetSlotEntry(edit.Eqdp.SetID, edit.Eqdp.Slot, edit.Eqdp.Entry)
	case metafile.KindGmp:
		f, ok := table.(*metafile.GmpFile)
		if !ok {
			return errWrongTable(edit, table)
		}
		return f.SetEntry(edit.Gmp.SetID, edit.Gmp.Entry)
	case metafile.KindEst:
		f, ok := table.(*metafile.EstFile)
		if !ok {
			return errWrongTable(edit, table)
		}
		f.SetEntry(edit.Est.GenderRace, edit.Est.SetID, edit.Est.Entry)
		return nil
	default:
		return fmt.Errorf("unknown edit kind %s", edit.Kind)
	}
}

// matches reports whether the table already holds the value edit would write.
func matches(table metafile.Table, edit TableEdit) (bool, error) {
	switch edit.Kind {
	case metafile.KindImc:
		f, ok := table.(*metafile.ImcFile)
		if !ok {
			return false, errWrongTable(edit, table)
		}
		part, err := imcPart(edit.Imc)
		if err != nil {
			return false, err
		}
		current, err := f.Entry(part, int(edit.Imc.Variant))
		if err != nil {
			return false, err
		}
		return current == edit.Imc.Entry, nil
	case metafile.KindEqp:
		f, ok := table.(*metafile.EqpFile)
		if !ok {
			return false, errWrongTable(edit, table)
		}
		mask, err := metafile.EqpMask(edit.Eqp.Slot)
		if err != nil {
			return false, err
		}
		current, err := f.SlotEntry(edit.Eqp.SetID, edit.Eqp.Slot)
		return current == edit.Eqp.Entry&mask, err
	case metafile.KindEqdp:
		f, ok := table.(*metafile.EqdpFile)
		if !ok {
			return false, errWrongTable(edit, table)
		}
		mask, err := metafile.EqdpMask(edit.Eqdp.Slot)
		if err != nil {
			return false, err
		}
		current, err := f.SlotEntry(edit.Eqdp.SetID, edit.Eqdp.Slot)
		return current == edit.Eqdp.Entry&mask, err
	case metafile.KindGmp:
		f, ok := table.(*metafile.GmpFile)
		if !ok {
			return false, errWrongTable(edit, table)
		}
		return f.Entry(edit.Gmp.SetID) == edit.Gmp.Entry, nil
	case metafile.KindEst:
		f, ok := table.(*metafile.EstFile)
		if !ok {
			return false, errWrongTable(edit, table)
		}
		return f.Entry(edit.Est.GenderRace, edit.Est.SetID) == edit.Est.Entry, nil
	default:
		return false, fmt.Errorf("unknown edit kind %s", edit.Kind)
	}
}

func errWrongTable(edit TableEdit, table metafile.Table) error {
	return fmt.Errorf("%s edit cannot be applied to a %s table", edit.Kind, table.Kind())
}
