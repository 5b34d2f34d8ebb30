package diff

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftsql/driftsql/schema"
)

// apply replays actions against a snapshot, mimicking what a database would
// do with the rendered statements.
func apply(t *testing.T, snap schema.Snapshot, actions []Action) schema.Snapshot {
	t.Helper()

	next := schema.NewSnapshot()
	for name, table := range snap.Tables {
		next.Tables[name] = table.Clone()
	}

	for _, action := range actions {
		switch a := action.(type) {
		case CreateTable:
			require.NotContains(t, next.Tables, a.Table.Name)
			next.Tables[a.Table.Name] = a.Table.Clone()
		case DropTable:
			require.Contains(t, next.Tables, a.Table.Name)
			delete(next.Tables, a.Table.Name)
		case AddColumn:
			table := next.Tables[a.Table]
			require.NotContains(t, table.Columns, a.Column)
			table.Columns[a.Column] = a.Def
		case RemoveColumn:
			table := next.Tables[a.Table]
			require.Contains(t, table.Columns, a.Column)
			delete(table.Columns, a.Column)
		case ChangeColumn:
			table := next.Tables[a.Table]
			require.Contains(t, table.Columns, a.Column)
			table.Columns[a.Column] = a.To
		case AddIndex:
			table := next.Tables[a.Table]
			if table.Indexes == nil {
				table.Indexes = map[string]schema.IndexDef{}
				next.Tables[a.Table] = table
			}
			table.Indexes[a.Index] = a.Def
		case RemoveIndex:
			table := next.Tables[a.Table]
			require.Contains(t, table.Indexes, a.Index)
			delete(table.Indexes, a.Index)
		case AddForeignKey:
			table := next.Tables[a.Table]
			if table.ForeignKeys == nil {
				table.ForeignKeys = map[string]schema.ForeignKeyDef{}
				next.Tables[a.Table] = table
			}
			table.ForeignKeys[a.Name] = a.Def
		case RemoveForeignKey:
			table := next.Tables[a.Table]
			require.Contains(t, table.ForeignKeys, a.Name)
			delete(table.ForeignKeys, a.Name)
		default:
			t.Fatalf("unhandled action kind %q", action.Kind())
		}
	}
	return next
}

// normalize drops empty index and foreign key maps so snapshots that differ
// only in nil-versus-empty compare equal.
func normalize(snap schema.Snapshot) schema.Snapshot {
	out := schema.NewSnapshot()
	for name, table := range snap.Tables {
		clone := table.Clone()
		clone.Name = name
		if len(clone.Indexes) == 0 {
			clone.Indexes = nil
		}
		if len(clone.ForeignKeys) == 0 {
			clone.ForeignKeys = nil
		}
		out.Tables[name] = clone
	}
	return out
}

func TestDiffSortApplyRoundTrip(t *testing.T) {
	employees, teams := cyclicPair()
	before := snapshot(usersTable())
	after := snapshot(postsTable(), employees, teams, schema.TableDef{
		Name: "users",
		Columns: map[string]schema.ColumnDef{
			"id":   {Type: schema.DataType{Name: "integer"}, PrimaryKey: true, AutoIncrement: true},
			"name": {Type: schema.DataType{Name: "string", Length: 100}, Nullable: true},
		},
		Indexes: map[string]schema.IndexDef{
			"users_name_idx": {Columns: []string{"name"}},
		},
	})

	forward, err := Diff(before, after)
	require.NoError(t, err)
	ordered, err := Sort(forward)
	require.NoError(t, err)
	require.Equal(t, normalize(after), normalize(apply(t, before, ordered)))

	// And back again.
	reverse, err := Diff(after, before)
	require.NoError(t, err)
	reverseOrdered, err := Sort(reverse)
	require.NoError(t, err)
	require.Equal(t, normalize(before), normalize(apply(t, after, reverseOrdered)))
}
