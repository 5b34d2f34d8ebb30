package migrate

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

const (
	upFileName       = "up.sql"
	downFileName     = "down.sql"
	metadataFileName = "migration.json"
)

// WriteArtifact writes an artifact to <dir>/<revision>/ as up.sql, down.sql
// and migration.json.
func WriteArtifact(fs afero.Fs, dir string, artifact *Artifact) error {
	target := filepath.Join(dir, artifact.Revision)
	if err := fs.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("create migration directory: %w", err)
	}

	if err := afero.WriteFile(fs, filepath.Join(target, upFileName), scriptFile(artifact.Up), 0o644); err != nil {
		return fmt.Errorf("write up script: %w", err)
	}
	if err := afero.WriteFile(fs, filepath.Join(target, downFileName), scriptFile(artifact.Down), 0o644); err != nil {
		return fmt.Errorf("write down script: %w", err)
	}

	meta, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := afero.WriteFile(fs, filepath.Join(target, metadataFileName), append(meta, '\n'), 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// ReadArtifact loads an artifact back from its migration directory.
func ReadArtifact(fs afero.Fs, dir, revision string) (*Artifact, error) {
	data, err := afero.ReadFile(fs, filepath.Join(dir, revision, metadataFileName))
	if err != nil {
		return nil, fmt.Errorf("read migration %s: %w", revision, err)
	}
	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("parse migration %s: %w", revision, err)
	}
	return &artifact, nil
}

// ListRevisions returns the revisions present in the migration directory, in
// lexical (and therefore chronological) order.
func ListRevisions(fs afero.Fs, dir string) ([]string, error) {
	exists, err := afero.DirExists(fs, dir)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("read migration directory: %w", err)
	}
	var revisions []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ok, err := afero.Exists(fs, filepath.Join(dir, entry.Name(), metadataFileName))
		if err != nil {
			return nil, err
		}
		if ok {
			revisions = append(revisions, entry.Name())
		}
	}
	sort.Strings(revisions)
	return revisions, nil
}

// Prune removes migration directories whose revision is not in keep. It
// returns the removed revisions.
func Prune(fs afero.Fs, dir string, keep []string) ([]string, error) {
	keepSet := make(map[string]bool, len(keep))
	for _, revision := range keep {
		keepSet[revision] = true
	}
	revisions, err := ListRevisions(fs, dir)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, revision := range revisions {
		if keepSet[revision] {
			continue
		}
		if err := fs.RemoveAll(filepath.Join(dir, revision)); err != nil {
			return removed, fmt.Errorf("prune %s: %w", revision, err)
		}
		removed = append(removed, revision)
	}
	return removed, nil
}

func scriptFile(statements []string) []byte {
	var b strings.Builder
	for _, stmt := range statements {
		b.WriteString(stmt)
		b.WriteString(";\n")
	}
	return []byte(b.String())
}
