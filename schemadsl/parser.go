// Package schemadsl parses declarative schema definition files into
// snapshots.
//
// The language is a small block syntax:
//
//	table users {
//	    id    integer @pk @autoincrement
//	    email string(255) @unique
//	    bio   text?
//
//	    @@index(email)
//	}
//
//	table posts {
//	    id        integer @pk @autoincrement
//	    author_id integer
//	    title     string(255) @default("untitled")
//
//	    @@foreign(author_id) references users(id) ondelete cascade
//	}
package schemadsl

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/spf13/afero"

	"github.com/driftsql/driftsql/schema"
)

type fileNode struct {
	Tables []*tableNode `parser:"@@*"`
}

type tableNode struct {
	Name    string       `parser:"\"table\" @Ident LBrace"`
	Entries []*entryNode `parser:"@@* RBrace"`
}

type entryNode struct {
	Block  *blockNode  `parser:"( @@"`
	Column *columnNode `parser:"| @@ )"`
}

type columnNode struct {
	Name     string      `parser:"@Ident"`
	Type     string      `parser:"@Ident"`
	Args     []int       `parser:"( LParen @Number ( Comma @Number )* RParen )?"`
	Optional bool        `parser:"@Question?"`
	Attrs    []*attrNode `parser:"@@*"`
}

type attrNode struct {
	Name  string     `parser:"FieldAttr @Ident"`
	Value *valueNode `parser:"( LParen @@ RParen )?"`
}

type valueNode struct {
	Str   *string `parser:"( @String"`
	Num   *string `parser:"| @Number"`
	Ident *string `parser:"| @Ident )"`
}

type blockNode struct {
	Kind    string   `parser:"BlockAttr @Ident"`
	Columns []string `parser:"LParen @Ident ( Comma @Ident )* RParen"`
	Ref     *refNode `parser:"@@?"`
}

type refNode struct {
	Table    string   `parser:"\"references\" @Ident"`
	Columns  []string `parser:"LParen @Ident ( Comma @Ident )* RParen"`
	OnDelete string   `parser:"( \"ondelete\" @Ident )?"`
	OnUpdate string   `parser:"( \"onupdate\" @Ident )?"`
}

var parser = participle.MustBuild[fileNode](
	participle.Lexer(dslLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// Parse reads a schema definition and builds a validated snapshot.
func Parse(filename string, r io.Reader) (schema.Snapshot, error) {
	file, err := parser.Parse(filename, r)
	if err != nil {
		return schema.Snapshot{}, err
	}
	return convert(file)
}

// ParseString parses a schema definition from a string.
func ParseString(filename, input string) (schema.Snapshot, error) {
	return Parse(filename, strings.NewReader(input))
}

// ParseFile parses a schema definition file from the given filesystem.
func ParseFile(fs afero.Fs, path string) (schema.Snapshot, error) {
	f, err := fs.Open(path)
	if err != nil {
		return schema.Snapshot{}, fmt.Errorf("open schema file: %w", err)
	}
	defer f.Close()
	return Parse(path, f)
}

func convert(file *fileNode) (schema.Snapshot, error) {
	snap := schema.NewSnapshot()
	for _, table := range file.Tables {
		if _, exists := snap.Tables[table.Name]; exists {
			return schema.Snapshot{}, fmt.Errorf("duplicate table %q", table.Name)
		}
		def, err := convertTable(table)
		if err != nil {
			return schema.Snapshot{}, err
		}
		snap.Tables[table.Name] = def
	}
	if err := snap.Validate(); err != nil {
		return schema.Snapshot{}, err
	}
	return snap, nil
}

func convertTable(table *tableNode) (schema.TableDef, error) {
	def := schema.TableDef{
		Name:        table.Name,
		Columns:     map[string]schema.ColumnDef{},
		Indexes:     map[string]schema.IndexDef{},
		ForeignKeys: map[string]schema.ForeignKeyDef{},
	}

	for _, entry := range table.Entries {
		switch {
		case entry.Column != nil:
			col := entry.Column
			if _, exists := def.Columns[col.Name]; exists {
				return schema.TableDef{}, fmt.Errorf("table %q: duplicate column %q", table.Name, col.Name)
			}
			colDef, err := convertColumn(table.Name, col)
			if err != nil {
				return schema.TableDef{}, err
			}
			def.Columns[col.Name] = colDef

		case entry.Block != nil:
			block := entry.Block
			switch block.Kind {
			case "index", "unique":
				name := indexName(table.Name, block.Columns, block.Kind == "unique")
				def.Indexes[name] = schema.IndexDef{
					Columns: block.Columns,
					Unique:  block.Kind == "unique",
				}
			case "foreign":
				if block.Ref == nil {
					return schema.TableDef{}, fmt.Errorf("table %q: @@foreign needs a references clause", table.Name)
				}
				onDelete, err := referentialAction(block.Ref.OnDelete)
				if err != nil {
					return schema.TableDef{}, fmt.Errorf("table %q: %w", table.Name, err)
				}
				onUpdate, err := referentialAction(block.Ref.OnUpdate)
				if err != nil {
					return schema.TableDef{}, fmt.Errorf("table %q: %w", table.Name, err)
				}
				name := foreignKeyName(table.Name, block.Columns)
				def.ForeignKeys[name] = schema.ForeignKeyDef{
					Columns:           block.Columns,
					ReferencedTable:   block.Ref.Table,
					ReferencedColumns: block.Ref.Columns,
					OnDelete:          onDelete,
					OnUpdate:          onUpdate,
				}
			default:
				return schema.TableDef{}, fmt.Errorf("table %q: unknown block attribute @@%s", table.Name, block.Kind)
			}
		}
	}

	return def, nil
}

func convertColumn(table string, col *columnNode) (schema.ColumnDef, error) {
	dataType, err := convertType(col)
	if err != nil {
		return schema.ColumnDef{}, fmt.Errorf("table %q, column %q: %w", table, col.Name, err)
	}

	def := schema.ColumnDef{
		Type:     dataType,
		Nullable: col.Optional,
	}
	for _, attr := range col.Attrs {
		switch attr.Name {
		case "pk":
			def.PrimaryKey = true
		case "unique":
			def.Unique = true
		case "autoincrement":
			def.AutoIncrement = true
		case "default":
			if attr.Value == nil {
				return schema.ColumnDef{}, fmt.Errorf("table %q, column %q: @default needs a value", table, col.Name)
			}
			literal := defaultLiteral(attr.Value)
			def.Default = &literal
		default:
			return schema.ColumnDef{}, fmt.Errorf("table %q, column %q: unknown attribute @%s", table, col.Name, attr.Name)
		}
	}
	return def, nil
}

func convertType(col *columnNode) (schema.DataType, error) {
	switch col.Type {
	case "integer", "bigint", "text", "boolean", "float", "timestamp", "date":
		if len(col.Args) > 0 {
			return schema.DataType{}, fmt.Errorf("type %s takes no arguments", col.Type)
		}
		return schema.DataType{Name: col.Type}, nil
	case "string":
		t := schema.DataType{Name: "string"}
		if len(col.Args) > 1 {
			return schema.DataType{}, fmt.Errorf("type string takes at most one argument")
		}
		if len(col.Args) == 1 {
			t.Length = col.Args[0]
		}
		return t, nil
	case "decimal":
		t := schema.DataType{Name: "decimal"}
		switch len(col.Args) {
		case 0:
		case 2:
			t.Precision = col.Args[0]
			t.Scale = col.Args[1]
		default:
			return schema.DataType{}, fmt.Errorf("type decimal takes zero or two arguments")
		}
		return t, nil
	default:
		return schema.DataType{}, fmt.Errorf("unknown type %q", col.Type)
	}
}

// defaultLiteral renders an attribute value as a SQL literal: strings are
// single-quoted, numbers and identifiers pass through verbatim (so
// CURRENT_TIMESTAMP, true and false work).
func defaultLiteral(v *valueNode) string {
	switch {
	case v.Str != nil:
		return "'" + strings.ReplaceAll(*v.Str, "'", "''") + "'"
	case v.Num != nil:
		return *v.Num
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

func referentialAction(ident string) (string, error) {
	switch strings.ToLower(ident) {
	case "":
		return "", nil
	case "cascade":
		return "CASCADE", nil
	case "restrict":
		return "RESTRICT", nil
	case "noaction":
		return "NO ACTION", nil
	case "setnull":
		return "SET NULL", nil
	case "setdefault":
		return "SET DEFAULT", nil
	default:
		return "", fmt.Errorf("unknown referential action %q", ident)
	}
}

func indexName(table string, columns []string, unique bool) string {
	suffix := "idx"
	if unique {
		suffix = "key"
	}
	return fmt.Sprintf("%s_%s_%s", table, strings.Join(columns, "_"), suffix)
}

func foreignKeyName(table string, columns []string) string {
	return fmt.Sprintf("%s_%s_fkey", table, strings.Join(columns, "_"))
}
