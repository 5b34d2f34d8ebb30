// Package migrate assembles migration artifacts from schema snapshots and
// manages the migration directory.
package migrate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/driftsql/driftsql/diff"
	"github.com/driftsql/driftsql/schema"
	"github.com/driftsql/driftsql/sqlgen"
)

// Artifact is the paired forward/reverse statement sequences generated for
// one revision transition, plus metadata. Up applied to a database matching
// the previous snapshot yields the current one; Down restores the previous.
type Artifact struct {
	Revision string   `json:"revision"`
	Name     string   `json:"name"`
	Comment  string   `json:"comment,omitempty"`
	Up       []string `json:"up"`
	Down     []string `json:"down"`
	Log      []string `json:"log"`
}

// HasChanges reports whether the artifact contains any statements.
func (a *Artifact) HasChanges() bool {
	return len(a.Up) > 0 || len(a.Down) > 0
}

// Plan is an artifact together with the ordered forward actions it was
// rendered from and the snapshot it leads to.
type Plan struct {
	Artifact    *Artifact
	Actions     []diff.Action
	Destructive bool
	Snapshot    schema.Snapshot
}

// NewPlan diffs previous against current in both directions, orders both
// action sequences and renders them for the given provider.
func NewPlan(previous, current schema.Snapshot, provider, revision, name, comment string) (*Plan, error) {
	gen, err := sqlgen.New(provider)
	if err != nil {
		return nil, err
	}

	forward, err := diff.Diff(previous, current)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	reverse, err := diff.Diff(current, previous)
	if err != nil {
		return nil, fmt.Errorf("reverse diff: %w", err)
	}

	forwardOrdered, err := diff.Sort(forward)
	if err != nil {
		return nil, fmt.Errorf("order forward actions: %w", err)
	}
	reverseOrdered, err := diff.Sort(reverse)
	if err != nil {
		return nil, fmt.Errorf("order reverse actions: %w", err)
	}

	upScript, err := gen.Generate(forwardOrdered)
	if err != nil {
		return nil, fmt.Errorf("generate up script: %w", err)
	}
	downScript, err := gen.Generate(reverseOrdered)
	if err != nil {
		return nil, fmt.Errorf("generate down script: %w", err)
	}

	destructive := false
	for _, action := range forwardOrdered {
		if action.Destructive() {
			destructive = true
			break
		}
	}

	return &Plan{
		Artifact: &Artifact{
			Revision: revision,
			Name:     name,
			Comment:  comment,
			Up:       upScript.Statements,
			Down:     downScript.Statements,
			Log:      upScript.Log,
		},
		Actions:     forwardOrdered,
		Destructive: destructive,
		Snapshot:    current,
	}, nil
}

var revisionNameRe = regexp.MustCompile(`[^a-z0-9_]+`)

// NewRevisionID builds a timestamped revision identifier from a migration
// name, e.g. "20260824120301_add_users".
func NewRevisionID(name string) string {
	slug := revisionNameRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "migration"
	}
	return time.Now().UTC().Format("20060102150405") + "_" + slug
}

// Markdown renders the artifact as a markdown document: the change log
// followed by the up and down scripts. The CLI feeds it through a terminal
// markdown renderer in preview mode.
func (a *Artifact) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Migration %s\n\n", a.Revision)
	if a.Comment != "" {
		fmt.Fprintf(&b, "%s\n\n", a.Comment)
	}

	b.WriteString("## Changes\n\n")
	if len(a.Log) == 0 {
		b.WriteString("No changes.\n")
	}
	seen := map[string]bool{}
	for _, line := range a.Log {
		if seen[line] {
			continue
		}
		seen[line] = true
		fmt.Fprintf(&b, "- %s\n", line)
	}
	b.WriteString("\n## Up\n\n```sql\n")
	for _, stmt := range a.Up {
		b.WriteString(stmt)
		b.WriteString(";\n")
	}
	b.WriteString("```\n\n## Down\n\n```sql\n")
	for _, stmt := range a.Down {
		b.WriteString(stmt)
		b.WriteString(";\n")
	}
	b.WriteString("```\n")
	return b.String()
}
