package sqlgen

import (
	"fmt"

	"github.com/driftsql/driftsql/diff"
	"github.com/driftsql/driftsql/schema"
)

// sqliteGenerator renders actions as SQLite DDL. SQLite cannot alter a
// column in place or add a constraint to an existing table; those actions
// fail with ErrUnsupportedAction rather than emitting statements that the
// engine would reject.
type sqliteGenerator struct{}

func (g *sqliteGenerator) Dialect() string { return "sqlite" }

func (g *sqliteGenerator) Generate(actions []diff.Action) (*Script, error) {
	return generate(g, actions)
}

func (g *sqliteGenerator) name() string { return "sqlite" }

func (g *sqliteGenerator) quote(ident string) string {
	return `"` + ident + `"`
}

func (g *sqliteGenerator) typeSQL(t schema.DataType, autoIncrement bool) (string, error) {
	switch t.Name {
	case "integer", "bigint":
		return "INTEGER", nil
	case "string", "text":
		return "TEXT", nil
	case "boolean":
		return "INTEGER", nil
	case "decimal":
		return "NUMERIC", nil
	case "float":
		return "REAL", nil
	case "timestamp":
		return "DATETIME", nil
	case "date":
		return "DATE", nil
	default:
		return "", fmt.Errorf("unknown data type %q", t.Name)
	}
}

func (g *sqliteGenerator) inlineIndexes() bool { return false }

func (g *sqliteGenerator) changeColumn(a diff.ChangeColumn) ([]string, error) {
	return nil, fmt.Errorf("%w: SQLite cannot alter column %s.%s in place", ErrUnsupportedAction, a.Table, a.Column)
}

func (g *sqliteGenerator) dropIndex(a diff.RemoveIndex) string {
	return fmt.Sprintf("DROP INDEX %s", g.quote(a.Index))
}

func (g *sqliteGenerator) addForeignKey(a diff.AddForeignKey) (string, error) {
	return "", fmt.Errorf("%w: SQLite cannot add a foreign key to an existing table", ErrUnsupportedAction)
}

func (g *sqliteGenerator) dropForeignKey(a diff.RemoveForeignKey) (string, error) {
	return "", fmt.Errorf("%w: SQLite cannot drop a foreign key from an existing table", ErrUnsupportedAction)
}

func (g *sqliteGenerator) indexUsing(def schema.IndexDef) string { return "" }
