// Package diff compares schema snapshots and orders the resulting actions.
package diff

import (
	"fmt"
	"strings"

	"github.com/driftsql/driftsql/schema"
)

// Kind identifies the type of a schema change action.
type Kind string

const (
	KindCreateTable      Kind = "createTable"
	KindDropTable        Kind = "dropTable"
	KindAddColumn        Kind = "addColumn"
	KindRemoveColumn     Kind = "removeColumn"
	KindChangeColumn     Kind = "changeColumn"
	KindAddIndex         Kind = "addIndex"
	KindRemoveIndex      Kind = "removeIndex"
	KindAddForeignKey    Kind = "addForeignKey"
	KindRemoveForeignKey Kind = "removeForeignKey"
)

// Action is one atomic, reversible schema change. Every action carries its
// full payload, so forward and inverse statements can be rendered without
// consulting either snapshot again.
type Action interface {
	Kind() Kind
	// TableName is the table the action targets.
	TableName() string
	// Description is a one-line, human-readable summary used for change logs.
	Description() string
	// Destructive reports whether applying the action may lose data.
	Destructive() bool
}

// CreateTable creates a table with its full definition, including any
// indexes and foreign keys embedded at creation time.
type CreateTable struct {
	Table schema.TableDef
}

func (a CreateTable) Kind() Kind        { return KindCreateTable }
func (a CreateTable) TableName() string { return a.Table.Name }
func (a CreateTable) Description() string {
	return fmt.Sprintf("create table %s (%d columns)", a.Table.Name, len(a.Table.Columns))
}
func (a CreateTable) Destructive() bool { return false }

// DropTable drops a table. It carries the full definition so the inverse
// (recreating the table) can be rendered from the action alone.
type DropTable struct {
	Table schema.TableDef
}

func (a DropTable) Kind() Kind          { return KindDropTable }
func (a DropTable) TableName() string   { return a.Table.Name }
func (a DropTable) Description() string { return "drop table " + a.Table.Name }
func (a DropTable) Destructive() bool   { return true }

// AddColumn adds a column to an existing table.
type AddColumn struct {
	Table  string
	Column string
	Def    schema.ColumnDef
}

func (a AddColumn) Kind() Kind        { return KindAddColumn }
func (a AddColumn) TableName() string { return a.Table }
func (a AddColumn) Description() string {
	return fmt.Sprintf("add column %s.%s (%s)", a.Table, a.Column, a.Def.Type.Name)
}
func (a AddColumn) Destructive() bool { return false }

// RemoveColumn removes a column. The definition is kept for reversal.
type RemoveColumn struct {
	Table  string
	Column string
	Def    schema.ColumnDef
}

func (a RemoveColumn) Kind() Kind          { return KindRemoveColumn }
func (a RemoveColumn) TableName() string   { return a.Table }
func (a RemoveColumn) Description() string { return fmt.Sprintf("remove column %s.%s", a.Table, a.Column) }
func (a RemoveColumn) Destructive() bool   { return true }

// ChangeColumn alters a column. Both definitions are carried so the action
// is self-describing in either direction.
type ChangeColumn struct {
	Table  string
	Column string
	From   schema.ColumnDef
	To     schema.ColumnDef
}

func (a ChangeColumn) Kind() Kind        { return KindChangeColumn }
func (a ChangeColumn) TableName() string { return a.Table }
func (a ChangeColumn) Description() string {
	return fmt.Sprintf("change column %s.%s (%s -> %s)", a.Table, a.Column, describeType(a.From.Type), describeType(a.To.Type))
}
func (a ChangeColumn) Destructive() bool { return true }

// AddIndex creates an index.
type AddIndex struct {
	Table string
	Index string
	Def   schema.IndexDef
}

func (a AddIndex) Kind() Kind        { return KindAddIndex }
func (a AddIndex) TableName() string { return a.Table }
func (a AddIndex) Description() string {
	return fmt.Sprintf("add index %s on %s(%s)", a.Index, a.Table, strings.Join(a.Def.Columns, ", "))
}
func (a AddIndex) Destructive() bool { return false }

// RemoveIndex drops an index.
type RemoveIndex struct {
	Table string
	Index string
	Def   schema.IndexDef
}

func (a RemoveIndex) Kind() Kind          { return KindRemoveIndex }
func (a RemoveIndex) TableName() string   { return a.Table }
func (a RemoveIndex) Description() string { return fmt.Sprintf("remove index %s from %s", a.Index, a.Table) }
func (a RemoveIndex) Destructive() bool   { return false }

// AddForeignKey adds a foreign key constraint.
type AddForeignKey struct {
	Table string
	Name  string
	Def   schema.ForeignKeyDef
}

func (a AddForeignKey) Kind() Kind        { return KindAddForeignKey }
func (a AddForeignKey) TableName() string { return a.Table }
func (a AddForeignKey) Description() string {
	return fmt.Sprintf("add foreign key %s: %s(%s) -> %s(%s)",
		a.Name, a.Table, strings.Join(a.Def.Columns, ", "),
		a.Def.ReferencedTable, strings.Join(a.Def.ReferencedColumns, ", "))
}
func (a AddForeignKey) Destructive() bool { return false }

// RemoveForeignKey drops a foreign key constraint.
type RemoveForeignKey struct {
	Table string
	Name  string
	Def   schema.ForeignKeyDef
}

func (a RemoveForeignKey) Kind() Kind        { return KindRemoveForeignKey }
func (a RemoveForeignKey) TableName() string { return a.Table }
func (a RemoveForeignKey) Description() string {
	return fmt.Sprintf("remove foreign key %s from %s", a.Name, a.Table)
}
func (a RemoveForeignKey) Destructive() bool { return false }

func describeType(t schema.DataType) string {
	switch {
	case t.Length > 0:
		return fmt.Sprintf("%s(%d)", t.Name, t.Length)
	case t.Precision > 0:
		return fmt.Sprintf("%s(%d,%d)", t.Name, t.Precision, t.Scale)
	default:
		return t.Name
	}
}
