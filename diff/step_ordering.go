package diff

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/driftsql/driftsql/schema"
)

// ErrCyclicDependency indicates an action set that cannot be linearized even
// after foreign keys inside creation or drop cycles have been split out.
var ErrCyclicDependency = errors.New("cyclic dependency between schema actions")

// CycleError reports the tables involved in an unresolvable cycle.
type CycleError struct {
	Tables []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic dependency between schema actions involving tables: %s", strings.Join(e.Tables, ", "))
}

func (e *CycleError) Unwrap() error { return ErrCyclicDependency }

// Sort returns the actions in a dependency-safe, deterministic total order.
// It never mutates its input; cycle-breaking produces rewritten copies.
//
// Ordering rules:
//   - any action on table T runs after T's createTable, if T is created in
//     the same batch;
//   - an addForeignKey (or a createTable with an embedded foreign key)
//     referencing table R runs after R's createTable, if R is created in the
//     same batch;
//   - a dropTable for T runs after every remove action that targets T or
//     references T as a foreign-key target, and after the drop of any table
//     whose definition still references T.
//
// Foreign keys between tables of one creation cycle are split out of their
// createTable actions and appended as separate addForeignKey actions; the
// mirror rule extracts removeForeignKey actions ahead of mutually-referencing
// dropTable actions. Ties are broken by input position, so sorting an
// already-ordered sequence is a no-op.
func Sort(actions []Action) ([]Action, error) {
	if len(actions) <= 1 {
		return append([]Action(nil), actions...), nil
	}

	actions = splitCyclicForeignKeys(actions)

	n := len(actions)
	adj := make([][]int, n)
	inDegree := make([]int, n)
	seen := make(map[[2]int]bool)

	addEdge := func(from, to int) {
		if from == to {
			return
		}
		key := [2]int{from, to}
		if seen[key] {
			return
		}
		seen[key] = true
		adj[from] = append(adj[from], to)
		inDegree[to]++
	}

	created := make(map[string]int)
	dropped := make(map[string]int)
	for i, action := range actions {
		switch action.Kind() {
		case KindCreateTable:
			created[action.TableName()] = i
		case KindDropTable:
			dropped[action.TableName()] = i
		}
	}

	for i, action := range actions {
		switch a := action.(type) {
		case CreateTable:
			for _, fkName := range a.Table.ForeignKeyNames() {
				if j, ok := created[a.Table.ForeignKeys[fkName].ReferencedTable]; ok {
					addEdge(j, i)
				}
			}
		case DropTable:
			for _, fkName := range a.Table.ForeignKeyNames() {
				if j, ok := dropped[a.Table.ForeignKeys[fkName].ReferencedTable]; ok {
					addEdge(i, j)
				}
			}
		case AddForeignKey:
			if j, ok := created[a.Table]; ok {
				addEdge(j, i)
			}
			if j, ok := created[a.Def.ReferencedTable]; ok {
				addEdge(j, i)
			}
		case RemoveForeignKey:
			if j, ok := created[a.Table]; ok {
				addEdge(j, i)
			}
			if j, ok := dropped[a.Table]; ok {
				addEdge(i, j)
			}
			if j, ok := dropped[a.Def.ReferencedTable]; ok {
				addEdge(i, j)
			}
		case AddColumn, ChangeColumn, AddIndex:
			if j, ok := created[action.TableName()]; ok {
				addEdge(j, i)
			}
		case RemoveColumn, RemoveIndex:
			if j, ok := created[action.TableName()]; ok {
				addEdge(j, i)
			}
			if j, ok := dropped[action.TableName()]; ok {
				addEdge(i, j)
			}
		}
	}

	// Kahn's algorithm; the ready queue is kept sorted by input index so the
	// differ's enumeration order survives wherever dependencies allow.
	var queue []int
	for i := 0; i < n; i++ {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	ordered := make([]Action, 0, n)
	for len(queue) > 0 {
		sort.Ints(queue)
		current := queue[0]
		queue = queue[1:]
		ordered = append(ordered, actions[current])
		for _, next := range adj[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(ordered) != n {
		stuck := map[string]bool{}
		for i := 0; i < n; i++ {
			if inDegree[i] > 0 {
				stuck[actions[i].TableName()] = true
			}
		}
		tables := make([]string, 0, len(stuck))
		for table := range stuck {
			tables = append(tables, table)
		}
		sort.Strings(tables)
		return nil, &CycleError{Tables: tables}
	}

	return ordered, nil
}

// splitCyclicForeignKeys breaks foreign-key cycles that create-order alone
// cannot linearize. Every foreign key between tables of one creation cycle
// is removed from its createTable payload and appended as an addForeignKey
// action; the symmetric transformation prepends removeForeignKey actions for
// cycles among dropTable actions. Input order is otherwise preserved.
func splitCyclicForeignKeys(actions []Action) []Action {
	createDefs := make(map[string][]string)
	dropDefs := make(map[string][]string)
	for _, action := range actions {
		switch a := action.(type) {
		case CreateTable:
			createDefs[a.Table.Name] = fkTargets(a.Table)
		case DropTable:
			dropDefs[a.Table.Name] = fkTargets(a.Table)
		}
	}

	cyclicCreates := tablesInCycles(createDefs)
	cyclicDrops := tablesInCycles(dropDefs)
	if len(cyclicCreates) == 0 && len(cyclicDrops) == 0 {
		return actions
	}

	var head, tail []Action
	out := make([]Action, 0, len(actions))
	for _, action := range actions {
		switch a := action.(type) {
		case CreateTable:
			component, ok := cyclicCreates[a.Table.Name]
			if !ok {
				out = append(out, action)
				continue
			}
			def := a.Table.Clone()
			for _, fkName := range a.Table.ForeignKeyNames() {
				fk := def.ForeignKeys[fkName]
				if component[fk.ReferencedTable] {
					delete(def.ForeignKeys, fkName)
					tail = append(tail, AddForeignKey{Table: def.Name, Name: fkName, Def: fk})
				}
			}
			out = append(out, CreateTable{Table: def})
		case DropTable:
			component, ok := cyclicDrops[a.Table.Name]
			if !ok {
				out = append(out, action)
				continue
			}
			def := a.Table.Clone()
			for _, fkName := range a.Table.ForeignKeyNames() {
				fk := def.ForeignKeys[fkName]
				if component[fk.ReferencedTable] {
					delete(def.ForeignKeys, fkName)
					head = append(head, RemoveForeignKey{Table: def.Name, Name: fkName, Def: fk})
				}
			}
			out = append(out, DropTable{Table: def})
		default:
			out = append(out, action)
		}
	}

	result := make([]Action, 0, len(head)+len(out)+len(tail))
	result = append(result, head...)
	result = append(result, out...)
	result = append(result, tail...)
	return result
}

func fkTargets(table schema.TableDef) []string {
	set := map[string]bool{}
	for _, name := range table.ForeignKeyNames() {
		set[table.ForeignKeys[name].ReferencedTable] = true
	}
	targets := make([]string, 0, len(set))
	for target := range set {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	return targets
}

// tablesInCycles finds the strongly connected components of the table
// reference graph and returns, for every table inside a multi-table
// component, the member set of its component. Self-references are left
// alone: a table may reference itself within a single statement.
func tablesInCycles(defs map[string][]string) map[string]map[string]bool {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	// Tarjan's algorithm, iterative state kept in maps keyed by table name.
	index := 0
	indices := map[string]int{}
	lowlink := map[string]int{}
	onStack := map[string]bool{}
	var stack []string
	var components [][]string

	var strongconnect func(v string)
	strongconnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range defs[v] {
			if _, ok := defs[w]; !ok {
				continue
			}
			if _, visited := indices[w]; !visited {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var component []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				component = append(component, w)
				if w == v {
					break
				}
			}
			components = append(components, component)
		}
	}

	for _, name := range names {
		if _, visited := indices[name]; !visited {
			strongconnect(name)
		}
	}

	result := map[string]map[string]bool{}
	for _, component := range components {
		if len(component) < 2 {
			continue
		}
		members := map[string]bool{}
		for _, name := range component {
			members[name] = true
		}
		for _, name := range component {
			result[name] = members
		}
	}
	return result
}
