package migrate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/driftsql/driftsql/schema"
)

// stateFileName holds the snapshot the last generated migration leads to,
// so the next diff can resume from it without a database connection.
const stateFileName = "state.json"

// LoadState reads the recorded snapshot from the migration directory. A
// missing state file yields an empty snapshot (fresh schema).
func LoadState(fs afero.Fs, dir string) (schema.Snapshot, error) {
	data, err := afero.ReadFile(fs, filepath.Join(dir, stateFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return schema.NewSnapshot(), nil
		}
		return schema.Snapshot{}, fmt.Errorf("read schema state: %w", err)
	}
	snap, err := schema.Decode(data)
	if err != nil {
		return schema.Snapshot{}, fmt.Errorf("schema state: %w", err)
	}
	return snap, nil
}

// SaveState records the snapshot in the migration directory.
func SaveState(fs afero.Fs, dir string, snap schema.Snapshot) error {
	data, err := schema.Encode(snap)
	if err != nil {
		return fmt.Errorf("encode schema state: %w", err)
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create migration directory: %w", err)
	}
	if err := afero.WriteFile(fs, filepath.Join(dir, stateFileName), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write schema state: %w", err)
	}
	return nil
}
