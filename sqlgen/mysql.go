package sqlgen

import (
	"fmt"

	"github.com/driftsql/driftsql/diff"
	"github.com/driftsql/driftsql/schema"
)

// mysqlGenerator renders actions as MySQL DDL.
type mysqlGenerator struct{}

func (g *mysqlGenerator) Dialect() string { return "mysql" }

func (g *mysqlGenerator) Generate(actions []diff.Action) (*Script, error) {
	return generate(g, actions)
}

func (g *mysqlGenerator) name() string { return "mysql" }

func (g *mysqlGenerator) quote(ident string) string {
	return "`" + ident + "`"
}

func (g *mysqlGenerator) typeSQL(t schema.DataType, autoIncrement bool) (string, error) {
	var sql string
	switch t.Name {
	case "integer":
		sql = "INT"
	case "bigint":
		sql = "BIGINT"
	case "string":
		length := t.Length
		if length == 0 {
			length = 255
		}
		sql = fmt.Sprintf("VARCHAR(%d)", length)
	case "text":
		sql = "TEXT"
	case "boolean":
		sql = "TINYINT(1)"
	case "decimal":
		if t.Precision > 0 {
			sql = fmt.Sprintf("DECIMAL(%d,%d)", t.Precision, t.Scale)
		} else {
			sql = "DECIMAL"
		}
	case "float":
		sql = "DOUBLE"
	case "timestamp":
		sql = "DATETIME"
	case "date":
		sql = "DATE"
	default:
		return "", fmt.Errorf("unknown data type %q", t.Name)
	}
	if autoIncrement {
		sql += " AUTO_INCREMENT"
	}
	return sql, nil
}

func (g *mysqlGenerator) inlineIndexes() bool { return true }

// changeColumn renders as a single MODIFY COLUMN carrying the full new
// definition.
func (g *mysqlGenerator) changeColumn(a diff.ChangeColumn) ([]string, error) {
	colSQL, err := columnSQL(g, a.Column, a.To, false)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s", g.quote(a.Table), colSQL)}, nil
}

func (g *mysqlGenerator) dropIndex(a diff.RemoveIndex) string {
	return fmt.Sprintf("DROP INDEX %s ON %s", g.quote(a.Index), g.quote(a.Table))
}

func (g *mysqlGenerator) addForeignKey(a diff.AddForeignKey) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", g.quote(a.Table), foreignKeyClause(g, a.Name, a.Def)), nil
}

func (g *mysqlGenerator) dropForeignKey(a diff.RemoveForeignKey) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s", g.quote(a.Table), g.quote(a.Name)), nil
}

func (g *mysqlGenerator) indexUsing(def schema.IndexDef) string {
	if def.Type == "" {
		return ""
	}
	return "USING " + def.Type
}
