// Package schema defines the immutable snapshot model of a database schema.
package schema

import (
	"sort"
	"strings"
)

// Snapshot describes a full schema at one point in time. A Snapshot is
// treated as immutable once constructed: the diff pipeline never mutates it.
type Snapshot struct {
	Tables map[string]TableDef `json:"tables"`
}

// TableDef describes a single table: its columns, indexes and foreign keys,
// each keyed by name.
type TableDef struct {
	Name        string                   `json:"name"`
	Columns     map[string]ColumnDef     `json:"columns"`
	Indexes     map[string]IndexDef      `json:"indexes,omitempty"`
	ForeignKeys map[string]ForeignKeyDef `json:"foreignKeys,omitempty"`
}

// ColumnDef describes a column.
type ColumnDef struct {
	Type          DataType `json:"type"`
	Nullable      bool     `json:"nullable,omitempty"`
	Default       *string  `json:"default,omitempty"`
	PrimaryKey    bool     `json:"primaryKey,omitempty"`
	Unique        bool     `json:"unique,omitempty"`
	AutoIncrement bool     `json:"autoIncrement,omitempty"`
}

// DataType is a semantic column type. Name is one of the portable type names
// (integer, bigint, string, text, boolean, decimal, float, timestamp, date);
// dialect-specific rendering happens in sqlgen.
type DataType struct {
	Name      string `json:"name"`
	Length    int    `json:"length,omitempty"`
	Precision int    `json:"precision,omitempty"`
	Scale     int    `json:"scale,omitempty"`
}

// IndexDef describes an index over an ordered list of columns.
type IndexDef struct {
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique,omitempty"`
	Type    string   `json:"type,omitempty"`
}

// ForeignKeyDef describes a foreign key constraint.
type ForeignKeyDef struct {
	Columns           []string `json:"columns"`
	ReferencedTable   string   `json:"referencedTable"`
	ReferencedColumns []string `json:"referencedColumns"`
	OnDelete          string   `json:"onDelete,omitempty"`
	OnUpdate          string   `json:"onUpdate,omitempty"`
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() Snapshot {
	return Snapshot{Tables: map[string]TableDef{}}
}

// TableNames returns the table names in sorted order.
func (s Snapshot) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ColumnNames returns the column names of a table in sorted order.
func (t TableDef) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for name := range t.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IndexNames returns the index names of a table in sorted order.
func (t TableDef) IndexNames() []string {
	names := make([]string, 0, len(t.Indexes))
	for name := range t.Indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForeignKeyNames returns the foreign key names of a table in sorted order.
func (t TableDef) ForeignKeyNames() []string {
	names := make([]string, 0, len(t.ForeignKeys))
	for name := range t.ForeignKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Equal reports whether two data types are identical.
func (d DataType) Equal(other DataType) bool {
	return d.Name == other.Name &&
		d.Length == other.Length &&
		d.Precision == other.Precision &&
		d.Scale == other.Scale
}

// Equal reports whether two column definitions are identical in every
// attribute the differ compares.
func (c ColumnDef) Equal(other ColumnDef) bool {
	if !c.Type.Equal(other.Type) {
		return false
	}
	if c.Nullable != other.Nullable ||
		c.PrimaryKey != other.PrimaryKey ||
		c.Unique != other.Unique ||
		c.AutoIncrement != other.AutoIncrement {
		return false
	}
	switch {
	case c.Default == nil && other.Default == nil:
		return true
	case c.Default == nil || other.Default == nil:
		return false
	default:
		return *c.Default == *other.Default
	}
}

// Identity returns the structural identity of an index: the sorted column
// list plus the uniqueness flag. Two indexes with the same identity are the
// same index regardless of their names.
func (i IndexDef) Identity() string {
	cols := append([]string(nil), i.Columns...)
	sort.Strings(cols)
	key := strings.Join(cols, ",")
	if i.Unique {
		key += ":unique"
	}
	return key
}

// Equal reports whether two index definitions are identical.
func (i IndexDef) Equal(other IndexDef) bool {
	if i.Unique != other.Unique || i.Type != other.Type {
		return false
	}
	if len(i.Columns) != len(other.Columns) {
		return false
	}
	for n, col := range i.Columns {
		if col != other.Columns[n] {
			return false
		}
	}
	return true
}

// Identity returns the structural identity of a foreign key: its source
// columns plus the referenced table.
func (f ForeignKeyDef) Identity() string {
	return strings.Join(f.Columns, ",") + "->" + f.ReferencedTable
}

// Equal reports whether two foreign key definitions are identical.
func (f ForeignKeyDef) Equal(other ForeignKeyDef) bool {
	if f.ReferencedTable != other.ReferencedTable ||
		f.OnDelete != other.OnDelete ||
		f.OnUpdate != other.OnUpdate {
		return false
	}
	if len(f.Columns) != len(other.Columns) || len(f.ReferencedColumns) != len(other.ReferencedColumns) {
		return false
	}
	for n, col := range f.Columns {
		if col != other.Columns[n] {
			return false
		}
	}
	for n, col := range f.ReferencedColumns {
		if col != other.ReferencedColumns[n] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the table definition. The sorter uses it when
// it has to split a foreign key out of a create action.
func (t TableDef) Clone() TableDef {
	out := TableDef{
		Name:        t.Name,
		Columns:     make(map[string]ColumnDef, len(t.Columns)),
		Indexes:     make(map[string]IndexDef, len(t.Indexes)),
		ForeignKeys: make(map[string]ForeignKeyDef, len(t.ForeignKeys)),
	}
	for name, col := range t.Columns {
		if col.Default != nil {
			v := *col.Default
			col.Default = &v
		}
		out.Columns[name] = col
	}
	for name, idx := range t.Indexes {
		idx.Columns = append([]string(nil), idx.Columns...)
		out.Indexes[name] = idx
	}
	for name, fk := range t.ForeignKeys {
		fk.Columns = append([]string(nil), fk.Columns...)
		fk.ReferencedColumns = append([]string(nil), fk.ReferencedColumns...)
		out.ForeignKeys[name] = fk
	}
	return out
}
