package schema

import (
	"errors"
	"fmt"
)

// ErrInvalidSnapshot indicates a structurally malformed snapshot. Validation
// failures are deterministic and not recoverable by the caller.
var ErrInvalidSnapshot = errors.New("invalid schema snapshot")

// Validate checks the structural invariants of a snapshot: every table has a
// non-nil column map, every index and foreign key refers to columns that
// exist, and foreign key column arities match.
func (s Snapshot) Validate() error {
	if s.Tables == nil {
		return fmt.Errorf("%w: tables map is nil", ErrInvalidSnapshot)
	}
	for name, table := range s.Tables {
		if name == "" {
			return fmt.Errorf("%w: empty table name", ErrInvalidSnapshot)
		}
		if table.Name != "" && table.Name != name {
			return fmt.Errorf("%w: table keyed %q is named %q", ErrInvalidSnapshot, name, table.Name)
		}
		if table.Columns == nil {
			return fmt.Errorf("%w: table %q has no column map", ErrInvalidSnapshot, name)
		}
		for colName := range table.Columns {
			if colName == "" {
				return fmt.Errorf("%w: table %q has a column with an empty name", ErrInvalidSnapshot, name)
			}
		}
		for idxName, idx := range table.Indexes {
			if len(idx.Columns) == 0 {
				return fmt.Errorf("%w: index %q on table %q covers no columns", ErrInvalidSnapshot, idxName, name)
			}
			for _, col := range idx.Columns {
				if _, ok := table.Columns[col]; !ok {
					return fmt.Errorf("%w: index %q on table %q references unknown column %q", ErrInvalidSnapshot, idxName, name, col)
				}
			}
		}
		for fkName, fk := range table.ForeignKeys {
			if len(fk.Columns) == 0 {
				return fmt.Errorf("%w: foreign key %q on table %q has no source columns", ErrInvalidSnapshot, fkName, name)
			}
			if len(fk.Columns) != len(fk.ReferencedColumns) {
				return fmt.Errorf("%w: foreign key %q on table %q has mismatched column counts", ErrInvalidSnapshot, fkName, name)
			}
			if fk.ReferencedTable == "" {
				return fmt.Errorf("%w: foreign key %q on table %q references no table", ErrInvalidSnapshot, fkName, name)
			}
			for _, col := range fk.Columns {
				if _, ok := table.Columns[col]; !ok {
					return fmt.Errorf("%w: foreign key %q on table %q references unknown column %q", ErrInvalidSnapshot, fkName, name, col)
				}
			}
		}
	}
	return nil
}
