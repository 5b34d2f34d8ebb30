package sqlgen

import (
	"fmt"
	"strings"

	"github.com/driftsql/driftsql/diff"
	"github.com/driftsql/driftsql/schema"
)

// postgresGenerator renders actions as PostgreSQL DDL.
type postgresGenerator struct{}

func (g *postgresGenerator) Dialect() string { return "postgres" }

func (g *postgresGenerator) Generate(actions []diff.Action) (*Script, error) {
	return generate(g, actions)
}

func (g *postgresGenerator) name() string { return "postgres" }

func (g *postgresGenerator) quote(ident string) string {
	return `"` + ident + `"`
}

func (g *postgresGenerator) typeSQL(t schema.DataType, autoIncrement bool) (string, error) {
	switch t.Name {
	case "integer":
		if autoIncrement {
			return "SERIAL", nil
		}
		return "INTEGER", nil
	case "bigint":
		if autoIncrement {
			return "BIGSERIAL", nil
		}
		return "BIGINT", nil
	case "string":
		if t.Length > 0 {
			return fmt.Sprintf("VARCHAR(%d)", t.Length), nil
		}
		return "TEXT", nil
	case "text":
		return "TEXT", nil
	case "boolean":
		return "BOOLEAN", nil
	case "decimal":
		if t.Precision > 0 {
			return fmt.Sprintf("NUMERIC(%d,%d)", t.Precision, t.Scale), nil
		}
		return "NUMERIC", nil
	case "float":
		return "DOUBLE PRECISION", nil
	case "timestamp":
		return "TIMESTAMP", nil
	case "date":
		return "DATE", nil
	default:
		return "", fmt.Errorf("unknown data type %q", t.Name)
	}
}

func (g *postgresGenerator) inlineIndexes() bool { return false }

// changeColumn renders the new definition as a single multi-clause ALTER
// TABLE statement.
func (g *postgresGenerator) changeColumn(a diff.ChangeColumn) ([]string, error) {
	typeSQL, err := g.typeSQL(a.To.Type, false)
	if err != nil {
		return nil, err
	}

	col := g.quote(a.Column)
	clauses := []string{fmt.Sprintf("ALTER COLUMN %s TYPE %s", col, typeSQL)}
	if a.To.Nullable {
		clauses = append(clauses, fmt.Sprintf("ALTER COLUMN %s DROP NOT NULL", col))
	} else {
		clauses = append(clauses, fmt.Sprintf("ALTER COLUMN %s SET NOT NULL", col))
	}
	if a.To.Default != nil {
		clauses = append(clauses, fmt.Sprintf("ALTER COLUMN %s SET DEFAULT %s", col, *a.To.Default))
	} else {
		clauses = append(clauses, fmt.Sprintf("ALTER COLUMN %s DROP DEFAULT", col))
	}

	return []string{fmt.Sprintf("ALTER TABLE %s %s", g.quote(a.Table), strings.Join(clauses, ", "))}, nil
}

func (g *postgresGenerator) dropIndex(a diff.RemoveIndex) string {
	return fmt.Sprintf("DROP INDEX %s", g.quote(a.Index))
}

func (g *postgresGenerator) addForeignKey(a diff.AddForeignKey) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", g.quote(a.Table), foreignKeyClause(g, a.Name, a.Def)), nil
}

func (g *postgresGenerator) dropForeignKey(a diff.RemoveForeignKey) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", g.quote(a.Table), g.quote(a.Name)), nil
}

func (g *postgresGenerator) indexUsing(def schema.IndexDef) string {
	if def.Type == "" {
		return ""
	}
	return "USING " + def.Type
}
