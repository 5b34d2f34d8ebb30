package migrate

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftsql/driftsql/diff"
	"github.com/driftsql/driftsql/schema"
)

func usersSnapshot() schema.Snapshot {
	snap := schema.NewSnapshot()
	snap.Tables["users"] = schema.TableDef{
		Name: "users",
		Columns: map[string]schema.ColumnDef{
			"id":    {Type: schema.DataType{Name: "integer"}, PrimaryKey: true, AutoIncrement: true},
			"email": {Type: schema.DataType{Name: "string", Length: 255}, Unique: true},
		},
	}
	return snap
}

func blogSnapshot() schema.Snapshot {
	snap := usersSnapshot()
	snap.Tables["posts"] = schema.TableDef{
		Name: "posts",
		Columns: map[string]schema.ColumnDef{
			"id":        {Type: schema.DataType{Name: "integer"}, PrimaryKey: true, AutoIncrement: true},
			"author_id": {Type: schema.DataType{Name: "integer"}},
			"title":     {Type: schema.DataType{Name: "string", Length: 255}},
		},
		ForeignKeys: map[string]schema.ForeignKeyDef{
			"posts_author_id_fkey": {
				Columns:           []string{"author_id"},
				ReferencedTable:   "users",
				ReferencedColumns: []string{"id"},
			},
		},
	}
	return snap
}

func TestNewPlanInitialMigration(t *testing.T) {
	plan, err := NewPlan(schema.NewSnapshot(), blogSnapshot(), "postgres", "20260824120000_init", "init", "")
	require.NoError(t, err)

	require.True(t, plan.Artifact.HasChanges())
	assert.False(t, plan.Destructive)
	assert.Equal(t, "20260824120000_init", plan.Artifact.Revision)

	// Up creates users before posts (posts references users).
	require.Len(t, plan.Artifact.Up, 2)
	assert.Contains(t, plan.Artifact.Up[0], `CREATE TABLE "users"`)
	assert.Contains(t, plan.Artifact.Up[1], `CREATE TABLE "posts"`)

	// Down drops posts before users.
	require.Len(t, plan.Artifact.Down, 2)
	assert.Contains(t, plan.Artifact.Down[0], `DROP TABLE "posts"`)
	assert.Contains(t, plan.Artifact.Down[1], `DROP TABLE "users"`)

	assert.Len(t, plan.Artifact.Log, len(plan.Artifact.Up))
}

func TestNewPlanNoChanges(t *testing.T) {
	snap := blogSnapshot()
	plan, err := NewPlan(snap, snap, "postgres", "20260824120000_noop", "noop", "")
	require.NoError(t, err)
	assert.False(t, plan.Artifact.HasChanges())
	assert.Empty(t, plan.Actions)
}

func TestNewPlanDestructive(t *testing.T) {
	plan, err := NewPlan(blogSnapshot(), usersSnapshot(), "postgres", "20260824120000_drop_posts", "drop posts", "")
	require.NoError(t, err)

	assert.True(t, plan.Destructive)
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, diff.KindDropTable, plan.Actions[0].Kind())

	// The down script recreates the dropped table from the action payload.
	require.NotEmpty(t, plan.Artifact.Down)
	assert.Contains(t, plan.Artifact.Down[0], `CREATE TABLE "posts"`)
}

func TestNewPlanUnknownProvider(t *testing.T) {
	_, err := NewPlan(schema.NewSnapshot(), usersSnapshot(), "oracle", "r", "n", "")
	require.Error(t, err)
}

func TestNewRevisionID(t *testing.T) {
	id := NewRevisionID("Add Users Table!")
	assert.Regexp(t, regexp.MustCompile(`^\d{14}_add_users_table$`), id)

	id = NewRevisionID("  ")
	assert.Regexp(t, regexp.MustCompile(`^\d{14}_migration$`), id)
}

func TestArtifactMarkdown(t *testing.T) {
	artifact := &Artifact{
		Revision: "20260824120000_init",
		Name:     "init",
		Comment:  "first cut",
		Up:       []string{`CREATE TABLE "users" ("id" SERIAL PRIMARY KEY)`},
		Down:     []string{`DROP TABLE "users"`},
		Log:      []string{"create table users (1 columns)", "create table users (1 columns)"},
	}

	md := artifact.Markdown()
	assert.Contains(t, md, "# Migration 20260824120000_init")
	assert.Contains(t, md, "first cut")
	assert.Contains(t, md, "## Up")
	assert.Contains(t, md, "## Down")
	assert.Contains(t, md, "```sql")
	// Repeated log lines collapse to one bullet.
	assert.Equal(t, 1, strings.Count(md, "- create table users"))
}
