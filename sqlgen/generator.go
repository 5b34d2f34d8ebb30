// Package sqlgen renders ordered schema actions into SQL statements.
package sqlgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/driftsql/driftsql/diff"
	"github.com/driftsql/driftsql/schema"
)

var (
	// ErrUnsupportedProvider indicates an unknown database provider name.
	ErrUnsupportedProvider = errors.New("unsupported database provider")
	// ErrUnsupportedAction indicates an action the dialect cannot express,
	// e.g. altering a column on SQLite.
	ErrUnsupportedAction = errors.New("action not supported by dialect")
)

// Script is the rendered form of an ordered action sequence. Statements and
// Log are parallel: Log[i] describes Statements[i]. Most actions render to a
// single statement; an action that needs several (a created table's indexes
// on dialects without inline index syntax) contributes one log line per
// statement.
type Script struct {
	Statements []string
	Log        []string
}

// Generator renders actions for one SQL dialect. Rendering performs no
// semantic transformation: the statement parameters are the action payload
// verbatim.
type Generator interface {
	Dialect() string
	Generate(actions []diff.Action) (*Script, error)
}

// New returns the generator for the given provider.
func New(provider string) (Generator, error) {
	switch provider {
	case "postgres", "postgresql":
		return &postgresGenerator{}, nil
	case "mysql":
		return &mysqlGenerator{}, nil
	case "sqlite", "sqlite3":
		return &sqliteGenerator{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
}

// dialect is the per-provider surface the shared renderer drives.
type dialect interface {
	name() string
	quote(ident string) string
	typeSQL(t schema.DataType, autoIncrement bool) (string, error)
	inlineIndexes() bool
	changeColumn(a diff.ChangeColumn) ([]string, error)
	dropIndex(a diff.RemoveIndex) string
	addForeignKey(a diff.AddForeignKey) (string, error)
	dropForeignKey(a diff.RemoveForeignKey) (string, error)
	indexUsing(def schema.IndexDef) string
}

// generate is the shared rendering loop. An unknown action kind is a
// programming defect, surfaced as an error from the exhaustive switch.
func generate(d dialect, actions []diff.Action) (*Script, error) {
	script := &Script{}
	for _, action := range actions {
		statements, err := render(d, action)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", d.name(), action.Description(), err)
		}
		for _, stmt := range statements {
			script.Statements = append(script.Statements, stmt)
			script.Log = append(script.Log, action.Description())
		}
	}
	return script, nil
}

func render(d dialect, action diff.Action) ([]string, error) {
	switch a := action.(type) {
	case diff.CreateTable:
		return createTableSQL(d, a.Table)
	case diff.DropTable:
		return []string{fmt.Sprintf("DROP TABLE %s", d.quote(a.Table.Name))}, nil
	case diff.AddColumn:
		colSQL, err := columnSQL(d, a.Column, a.Def, false)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", d.quote(a.Table), colSQL)}, nil
	case diff.RemoveColumn:
		return []string{fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", d.quote(a.Table), d.quote(a.Column))}, nil
	case diff.ChangeColumn:
		return d.changeColumn(a)
	case diff.AddIndex:
		return []string{createIndexSQL(d, a.Table, a.Index, a.Def)}, nil
	case diff.RemoveIndex:
		return []string{d.dropIndex(a)}, nil
	case diff.AddForeignKey:
		stmt, err := d.addForeignKey(a)
		if err != nil {
			return nil, err
		}
		return []string{stmt}, nil
	case diff.RemoveForeignKey:
		stmt, err := d.dropForeignKey(a)
		if err != nil {
			return nil, err
		}
		return []string{stmt}, nil
	default:
		return nil, fmt.Errorf("unhandled action kind %q", action.Kind())
	}
}

func createTableSQL(d dialect, table schema.TableDef) ([]string, error) {
	var defs []string

	pkColumns := primaryKeyColumns(table)
	inlinePK := len(pkColumns) == 1

	for _, colName := range table.ColumnNames() {
		colSQL, err := columnSQL(d, colName, table.Columns[colName], inlinePK)
		if err != nil {
			return nil, err
		}
		defs = append(defs, colSQL)
	}

	if len(pkColumns) > 1 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", quoteList(d, pkColumns)))
	}

	for _, fkName := range table.ForeignKeyNames() {
		defs = append(defs, foreignKeyClause(d, fkName, table.ForeignKeys[fkName]))
	}

	if d.inlineIndexes() {
		for _, idxName := range table.IndexNames() {
			idx := table.Indexes[idxName]
			keyword := "INDEX"
			if idx.Unique {
				keyword = "UNIQUE INDEX"
			}
			defs = append(defs, fmt.Sprintf("%s %s (%s)", keyword, d.quote(idxName), quoteList(d, idx.Columns)))
		}
	}

	statements := []string{fmt.Sprintf("CREATE TABLE %s (%s)", d.quote(table.Name), strings.Join(defs, ", "))}

	if !d.inlineIndexes() {
		for _, idxName := range table.IndexNames() {
			statements = append(statements, createIndexSQL(d, table.Name, idxName, table.Indexes[idxName]))
		}
	}

	return statements, nil
}

func columnSQL(d dialect, name string, def schema.ColumnDef, inlinePK bool) (string, error) {
	typeSQL, err := d.typeSQL(def.Type, def.AutoIncrement)
	if err != nil {
		return "", err
	}
	sql := d.quote(name) + " " + typeSQL
	if inlinePK && def.PrimaryKey {
		sql += " PRIMARY KEY"
	}
	if !def.Nullable && !(inlinePK && def.PrimaryKey) {
		sql += " NOT NULL"
	}
	if def.Unique && !def.PrimaryKey {
		sql += " UNIQUE"
	}
	if def.Default != nil {
		sql += " DEFAULT " + *def.Default
	}
	return sql, nil
}

func createIndexSQL(d dialect, table, name string, def schema.IndexDef) string {
	keyword := "CREATE INDEX"
	if def.Unique {
		keyword = "CREATE UNIQUE INDEX"
	}
	sql := fmt.Sprintf("%s %s ON %s", keyword, d.quote(name), d.quote(table))
	if using := d.indexUsing(def); using != "" {
		sql += " " + using
	}
	sql += fmt.Sprintf(" (%s)", quoteList(d, def.Columns))
	return sql
}

func foreignKeyClause(d dialect, name string, fk schema.ForeignKeyDef) string {
	clause := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		d.quote(name), quoteList(d, fk.Columns), d.quote(fk.ReferencedTable), quoteList(d, fk.ReferencedColumns))
	if fk.OnDelete != "" {
		clause += " ON DELETE " + fk.OnDelete
	}
	if fk.OnUpdate != "" {
		clause += " ON UPDATE " + fk.OnUpdate
	}
	return clause
}

func primaryKeyColumns(table schema.TableDef) []string {
	var cols []string
	for _, colName := range table.ColumnNames() {
		if table.Columns[colName].PrimaryKey {
			cols = append(cols, colName)
		}
	}
	return cols
}

func quoteList(d dialect, idents []string) string {
	quoted := make([]string, len(idents))
	for i, ident := range idents {
		quoted[i] = d.quote(ident)
	}
	return strings.Join(quoted, ", ")
}
