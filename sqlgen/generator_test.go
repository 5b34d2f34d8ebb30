package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftsql/driftsql/diff"
	"github.com/driftsql/driftsql/schema"
)

func strPtr(s string) *string { return &s }

func ordersTable() schema.TableDef {
	return schema.TableDef{
		Name: "orders",
		Columns: map[string]schema.ColumnDef{
			"id":          {Type: schema.DataType{Name: "integer"}, PrimaryKey: true, AutoIncrement: true},
			"customer_id": {Type: schema.DataType{Name: "integer"}},
			"total":       {Type: schema.DataType{Name: "decimal", Precision: 10, Scale: 2}},
			"note":        {Type: schema.DataType{Name: "text"}, Nullable: true},
		},
		Indexes: map[string]schema.IndexDef{
			"orders_customer_id_idx": {Columns: []string{"customer_id"}},
		},
		ForeignKeys: map[string]schema.ForeignKeyDef{
			"orders_customer_id_fkey": {
				Columns:           []string{"customer_id"},
				ReferencedTable:   "customers",
				ReferencedColumns: []string{"id"},
				OnDelete:          "CASCADE",
			},
		},
	}
}

func TestNew(t *testing.T) {
	for _, provider := range []string{"postgres", "postgresql", "mysql", "sqlite", "sqlite3"} {
		gen, err := New(provider)
		require.NoError(t, err, provider)
		require.NotNil(t, gen)
	}

	_, err := New("oracle")
	require.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestPostgresCreateTable(t *testing.T) {
	gen, err := New("postgres")
	require.NoError(t, err)

	script, err := gen.Generate([]diff.Action{diff.CreateTable{Table: ordersTable()}})
	require.NoError(t, err)

	// One CREATE TABLE plus one CREATE INDEX; indexes are separate statements.
	require.Len(t, script.Statements, 2)
	assert.Equal(t,
		`CREATE TABLE "orders" (`+
			`"customer_id" INTEGER NOT NULL, `+
			`"id" SERIAL PRIMARY KEY, `+
			`"note" TEXT, `+
			`"total" NUMERIC(10,2) NOT NULL, `+
			`CONSTRAINT "orders_customer_id_fkey" FOREIGN KEY ("customer_id") REFERENCES "customers" ("id") ON DELETE CASCADE)`,
		script.Statements[0])
	assert.Equal(t,
		`CREATE INDEX "orders_customer_id_idx" ON "orders" ("customer_id")`,
		script.Statements[1])
}

func TestMySQLCreateTableInlinesIndexes(t *testing.T) {
	gen, err := New("mysql")
	require.NoError(t, err)

	script, err := gen.Generate([]diff.Action{diff.CreateTable{Table: ordersTable()}})
	require.NoError(t, err)

	require.Len(t, script.Statements, 1)
	assert.Contains(t, script.Statements[0], "INDEX `orders_customer_id_idx` (`customer_id`)")
	assert.Contains(t, script.Statements[0], "`id` INT AUTO_INCREMENT PRIMARY KEY")
	assert.Contains(t, script.Statements[0], "`total` DECIMAL(10,2) NOT NULL")
}

func TestCompositePrimaryKey(t *testing.T) {
	table := schema.TableDef{
		Name: "memberships",
		Columns: map[string]schema.ColumnDef{
			"user_id": {Type: schema.DataType{Name: "integer"}, PrimaryKey: true},
			"team_id": {Type: schema.DataType{Name: "integer"}, PrimaryKey: true},
		},
	}

	gen, err := New("postgres")
	require.NoError(t, err)
	script, err := gen.Generate([]diff.Action{diff.CreateTable{Table: table}})
	require.NoError(t, err)
	require.Len(t, script.Statements, 1)
	assert.Contains(t, script.Statements[0], `PRIMARY KEY ("team_id", "user_id")`)
	assert.NotContains(t, script.Statements[0], `"team_id" INTEGER PRIMARY KEY`)
}

func TestColumnActions(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		action   diff.Action
		want     string
	}{
		{
			name:     "postgres add column with default",
			provider: "postgres",
			action: diff.AddColumn{Table: "users", Column: "age", Def: schema.ColumnDef{
				Type: schema.DataType{Name: "integer"}, Default: strPtr("0"),
			}},
			want: `ALTER TABLE "users" ADD COLUMN "age" INTEGER NOT NULL DEFAULT 0`,
		},
		{
			name:     "postgres remove column",
			provider: "postgres",
			action:   diff.RemoveColumn{Table: "users", Column: "age", Def: schema.ColumnDef{Type: schema.DataType{Name: "integer"}}},
			want:     `ALTER TABLE "users" DROP COLUMN "age"`,
		},
		{
			name:     "postgres change column",
			provider: "postgres",
			action: diff.ChangeColumn{Table: "users", Column: "bio",
				From: schema.ColumnDef{Type: schema.DataType{Name: "string", Length: 100}},
				To:   schema.ColumnDef{Type: schema.DataType{Name: "text"}, Nullable: true},
			},
			want: `ALTER TABLE "users" ALTER COLUMN "bio" TYPE TEXT, ALTER COLUMN "bio" DROP NOT NULL, ALTER COLUMN "bio" DROP DEFAULT`,
		},
		{
			name:     "mysql change column",
			provider: "mysql",
			action: diff.ChangeColumn{Table: "users", Column: "bio",
				From: schema.ColumnDef{Type: schema.DataType{Name: "string", Length: 100}},
				To:   schema.ColumnDef{Type: schema.DataType{Name: "string", Length: 500}},
			},
			want: "ALTER TABLE `users` MODIFY COLUMN `bio` VARCHAR(500) NOT NULL",
		},
		{
			name:     "mysql drop index",
			provider: "mysql",
			action:   diff.RemoveIndex{Table: "users", Index: "users_email_idx", Def: schema.IndexDef{Columns: []string{"email"}}},
			want:     "DROP INDEX `users_email_idx` ON `users`",
		},
		{
			name:     "postgres drop index",
			provider: "postgres",
			action:   diff.RemoveIndex{Table: "users", Index: "users_email_idx", Def: schema.IndexDef{Columns: []string{"email"}}},
			want:     `DROP INDEX "users_email_idx"`,
		},
		{
			name:     "postgres unique index",
			provider: "postgres",
			action:   diff.AddIndex{Table: "users", Index: "users_email_key", Def: schema.IndexDef{Columns: []string{"email"}, Unique: true}},
			want:     `CREATE UNIQUE INDEX "users_email_key" ON "users" ("email")`,
		},
		{
			name:     "postgres index with method",
			provider: "postgres",
			action:   diff.AddIndex{Table: "events", Index: "events_payload_idx", Def: schema.IndexDef{Columns: []string{"payload"}, Type: "gin"}},
			want:     `CREATE INDEX "events_payload_idx" ON "events" USING gin ("payload")`,
		},
		{
			name:     "postgres drop foreign key",
			provider: "postgres",
			action:   diff.RemoveForeignKey{Table: "posts", Name: "posts_author_id_fkey"},
			want:     `ALTER TABLE "posts" DROP CONSTRAINT "posts_author_id_fkey"`,
		},
		{
			name:     "mysql drop foreign key",
			provider: "mysql",
			action:   diff.RemoveForeignKey{Table: "posts", Name: "posts_author_id_fkey"},
			want:     "ALTER TABLE `posts` DROP FOREIGN KEY `posts_author_id_fkey`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := New(tt.provider)
			require.NoError(t, err)
			script, err := gen.Generate([]diff.Action{tt.action})
			require.NoError(t, err)
			require.Len(t, script.Statements, 1)
			assert.Equal(t, tt.want, script.Statements[0])
		})
	}
}

func TestSQLiteUnsupportedActions(t *testing.T) {
	gen, err := New("sqlite")
	require.NoError(t, err)

	unsupported := []diff.Action{
		diff.ChangeColumn{Table: "users", Column: "bio",
			From: schema.ColumnDef{Type: schema.DataType{Name: "text"}},
			To:   schema.ColumnDef{Type: schema.DataType{Name: "string", Length: 100}},
		},
		diff.AddForeignKey{Table: "posts", Name: "fk", Def: schema.ForeignKeyDef{
			Columns: []string{"author_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"},
		}},
		diff.RemoveForeignKey{Table: "posts", Name: "fk"},
	}
	for _, action := range unsupported {
		_, err := gen.Generate([]diff.Action{action})
		assert.ErrorIs(t, err, ErrUnsupportedAction, action.Description())
	}

	// Plain DDL still works.
	script, err := gen.Generate([]diff.Action{
		diff.AddColumn{Table: "users", Column: "bio", Def: schema.ColumnDef{Type: schema.DataType{Name: "text"}, Nullable: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, `ALTER TABLE "users" ADD COLUMN "bio" TEXT`, script.Statements[0])
}

func TestScriptLogParallelsStatements(t *testing.T) {
	gen, err := New("postgres")
	require.NoError(t, err)

	create := diff.CreateTable{Table: ordersTable()}
	drop := diff.DropTable{Table: schema.TableDef{Name: "legacy", Columns: map[string]schema.ColumnDef{}}}
	script, err := gen.Generate([]diff.Action{create, drop})
	require.NoError(t, err)

	require.Len(t, script.Statements, 3)
	require.Len(t, script.Log, 3)
	// The create renders two statements; both carry the create's log line.
	assert.Equal(t, create.Description(), script.Log[0])
	assert.Equal(t, create.Description(), script.Log[1])
	assert.Equal(t, drop.Description(), script.Log[2])
}

type bogusAction struct{}

func (bogusAction) Kind() diff.Kind     { return diff.Kind("renameEverything") }
func (bogusAction) TableName() string   { return "users" }
func (bogusAction) Description() string { return "bogus" }
func (bogusAction) Destructive() bool   { return false }

func TestGenerateUnknownActionKindFails(t *testing.T) {
	gen, err := New("postgres")
	require.NoError(t, err)

	_, err = gen.Generate([]diff.Action{bogusAction{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unhandled action kind")
}

func TestGenerateUnknownTypeFails(t *testing.T) {
	gen, err := New("postgres")
	require.NoError(t, err)

	_, err = gen.Generate([]diff.Action{
		diff.AddColumn{Table: "users", Column: "blob", Def: schema.ColumnDef{Type: schema.DataType{Name: "geometry"}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geometry")
}
