package diff

import (
	"fmt"

	"github.com/driftsql/driftsql/schema"
)

// Diff compares two snapshots and returns the unordered set of actions that
// transform source into target. It is pure and deterministic: tables, and
// within a table columns, indexes and foreign keys, are enumerated in sorted
// name order, and Diff(X, X) is always empty.
//
// Renames are not detected: a renamed column surfaces as a remove plus an
// add.
func Diff(source, target schema.Snapshot) ([]Action, error) {
	if err := source.Validate(); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	var actions []Action

	// New tables carry their full definition, foreign keys included. Any
	// foreign key that cannot be embedded because of a creation cycle is
	// split out later by Sort.
	for _, name := range target.TableNames() {
		if _, ok := source.Tables[name]; !ok {
			def := target.Tables[name].Clone()
			def.Name = name
			actions = append(actions, CreateTable{Table: def})
		}
	}

	for _, name := range source.TableNames() {
		if _, ok := target.Tables[name]; !ok {
			def := source.Tables[name].Clone()
			def.Name = name
			actions = append(actions, DropTable{Table: def})
		}
	}

	for _, name := range source.TableNames() {
		targetTable, ok := target.Tables[name]
		if !ok {
			continue
		}
		actions = append(actions, diffTable(name, source.Tables[name], targetTable)...)
	}

	return actions, nil
}

func diffTable(name string, source, target schema.TableDef) []Action {
	var actions []Action
	actions = append(actions, diffColumns(name, source, target)...)
	actions = append(actions, diffIndexes(name, source, target)...)
	actions = append(actions, diffForeignKeys(name, source, target)...)
	return actions
}

func diffColumns(table string, source, target schema.TableDef) []Action {
	var actions []Action

	for _, colName := range target.ColumnNames() {
		if _, ok := source.Columns[colName]; !ok {
			actions = append(actions, AddColumn{Table: table, Column: colName, Def: target.Columns[colName]})
		}
	}

	for _, colName := range source.ColumnNames() {
		if _, ok := target.Columns[colName]; !ok {
			actions = append(actions, RemoveColumn{Table: table, Column: colName, Def: source.Columns[colName]})
		}
	}

	for _, colName := range source.ColumnNames() {
		targetCol, ok := target.Columns[colName]
		if !ok {
			continue
		}
		sourceCol := source.Columns[colName]
		if !sourceCol.Equal(targetCol) {
			actions = append(actions, ChangeColumn{Table: table, Column: colName, From: sourceCol, To: targetCol})
		}
	}

	return actions
}

// diffIndexes matches indexes by structural identity (sorted column list
// plus uniqueness), not by name, so renaming an index produces no action.
func diffIndexes(table string, source, target schema.TableDef) []Action {
	sourceByIdentity := make(map[string]string, len(source.Indexes))
	for _, idxName := range source.IndexNames() {
		sourceByIdentity[source.Indexes[idxName].Identity()] = idxName
	}
	targetByIdentity := make(map[string]string, len(target.Indexes))
	for _, idxName := range target.IndexNames() {
		targetByIdentity[target.Indexes[idxName].Identity()] = idxName
	}

	var actions []Action
	for _, idxName := range target.IndexNames() {
		idx := target.Indexes[idxName]
		if _, ok := sourceByIdentity[idx.Identity()]; !ok {
			actions = append(actions, AddIndex{Table: table, Index: idxName, Def: idx})
		}
	}
	for _, idxName := range source.IndexNames() {
		idx := source.Indexes[idxName]
		if _, ok := targetByIdentity[idx.Identity()]; !ok {
			actions = append(actions, RemoveIndex{Table: table, Index: idxName, Def: idx})
		}
	}
	return actions
}

// diffForeignKeys matches foreign keys by identity (source columns plus
// referenced table). A key whose identity survives but whose definition
// changed (referenced columns or referential actions) is replaced: removed
// then re-added.
func diffForeignKeys(table string, source, target schema.TableDef) []Action {
	sourceByIdentity := make(map[string]string, len(source.ForeignKeys))
	for _, fkName := range source.ForeignKeyNames() {
		sourceByIdentity[source.ForeignKeys[fkName].Identity()] = fkName
	}
	targetByIdentity := make(map[string]string, len(target.ForeignKeys))
	for _, fkName := range target.ForeignKeyNames() {
		targetByIdentity[target.ForeignKeys[fkName].Identity()] = fkName
	}

	var actions []Action
	for _, fkName := range target.ForeignKeyNames() {
		fk := target.ForeignKeys[fkName]
		sourceName, ok := sourceByIdentity[fk.Identity()]
		if !ok {
			actions = append(actions, AddForeignKey{Table: table, Name: fkName, Def: fk})
			continue
		}
		if sourceFK := source.ForeignKeys[sourceName]; !sourceFK.Equal(fk) {
			actions = append(actions,
				RemoveForeignKey{Table: table, Name: sourceName, Def: sourceFK},
				AddForeignKey{Table: table, Name: fkName, Def: fk},
			)
		}
	}
	for _, fkName := range source.ForeignKeyNames() {
		fk := source.ForeignKeys[fkName]
		if _, ok := targetByIdentity[fk.Identity()]; !ok {
			actions = append(actions, RemoveForeignKey{Table: table, Name: fkName, Def: fk})
		}
	}
	return actions
}
