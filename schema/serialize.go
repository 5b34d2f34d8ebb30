package schema

import (
	"encoding/json"
	"errors"
	"fmt"

	goversion "github.com/hashicorp/go-version"
)

// FormatVersion is the version of the serialized snapshot format. Snapshots
// persisted with a different major version are rejected on load.
const FormatVersion = "1.0.0"

// ErrIncompatibleFormat indicates a persisted snapshot written by an
// incompatible format version.
var ErrIncompatibleFormat = errors.New("incompatible snapshot format version")

// snapshotFile is the on-disk envelope around a snapshot.
type snapshotFile struct {
	Version string              `json:"version"`
	Tables  map[string]TableDef `json:"tables"`
}

// Encode serializes the snapshot with its format version. Map keys marshal
// in sorted order, so encoding is stable under re-serialization.
func Encode(s Snapshot) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(snapshotFile{
		Version: FormatVersion,
		Tables:  s.Tables,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a serialized snapshot, checking the format version.
func Decode(data []byte) (Snapshot, error) {
	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if file.Version == "" {
		return Snapshot{}, fmt.Errorf("%w: missing version field", ErrIncompatibleFormat)
	}
	stored, err := goversion.NewVersion(file.Version)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: bad version %q", ErrIncompatibleFormat, file.Version)
	}
	current := goversion.Must(goversion.NewVersion(FormatVersion))
	if stored.Segments()[0] != current.Segments()[0] {
		return Snapshot{}, fmt.Errorf("%w: stored %s, supported %s", ErrIncompatibleFormat, file.Version, FormatVersion)
	}
	snap := Snapshot{Tables: file.Tables}
	if snap.Tables == nil {
		snap.Tables = map[string]TableDef{}
	}
	if err := snap.Validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
