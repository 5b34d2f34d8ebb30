// Package history records applied revisions and their schema snapshots in a
// backing database.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/driftsql/driftsql/schema"
)

// ErrUnsupportedProvider indicates an unknown database provider name.
var ErrUnsupportedProvider = errors.New("unsupported database provider")

// ErrRevisionNotFound indicates a revision id with no history record.
var ErrRevisionNotFound = errors.New("revision not found")

// Revision is one recorded schema state transition. Snapshot holds the full
// serialized schema at this revision, so a later diff can resume from it
// without re-deriving the state.
type Revision struct {
	ID        string
	Name      string
	Comment   string
	Checksum  string
	AppliedAt time.Time
}

// Store persists revisions in a `_driftsql_revisions` table.
type Store struct {
	db       *sql.DB
	provider string
}

// NewStore creates a history store for the given provider. Supported
// providers: postgres, mysql, sqlite.
func NewStore(db *sql.DB, provider string) (*Store, error) {
	switch provider {
	case "postgres", "postgresql":
		provider = "postgres"
	case "mysql":
	case "sqlite", "sqlite3":
		provider = "sqlite"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
	return &Store{db: db, provider: provider}, nil
}

// Init creates the revision table if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.createTableSQL()); err != nil {
		return fmt.Errorf("create revision table: %w", err)
	}
	return nil
}

// Record stores a revision together with the snapshot it leads to.
func (s *Store) Record(ctx context.Context, rev Revision, snap schema.Snapshot) error {
	data, err := schema.Encode(snap)
	if err != nil {
		return fmt.Errorf("serialize snapshot: %w", err)
	}
	if rev.AppliedAt.IsZero() {
		rev.AppliedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, s.insertSQL(),
		rev.ID, rev.Name, rev.Comment, rev.Checksum, rev.AppliedAt, string(data))
	if err != nil {
		return fmt.Errorf("record revision %s: %w", rev.ID, err)
	}
	return nil
}

// Latest returns the most recently applied revision and its snapshot, or
// ErrRevisionNotFound when no revision has been recorded.
func (s *Store) Latest(ctx context.Context) (Revision, schema.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, s.selectLatestSQL())
	return s.scanRevision(row)
}

// Get returns one revision and its snapshot by id.
func (s *Store) Get(ctx context.Context, id string) (Revision, schema.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, s.selectByIDSQL(), id)
	return s.scanRevision(row)
}

// AppliedIDs returns the ids of all recorded revisions, oldest first.
func (s *Store) AppliedIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.selectIDsSQL())
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan revision id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Pending returns the revisions from the given list that have not been
// recorded yet, preserving order.
func (s *Store) Pending(ctx context.Context, revisions []string) ([]string, error) {
	applied, err := s.AppliedIDs(ctx)
	if err != nil {
		return nil, err
	}
	appliedSet := make(map[string]bool, len(applied))
	for _, id := range applied {
		appliedSet[id] = true
	}
	var pending []string
	for _, id := range revisions {
		if !appliedSet[id] {
			pending = append(pending, id)
		}
	}
	return pending, nil
}

func (s *Store) scanRevision(row *sql.Row) (Revision, schema.Snapshot, error) {
	var rev Revision
	var comment sql.NullString
	var snapshotJSON string
	err := row.Scan(&rev.ID, &rev.Name, &comment, &rev.Checksum, &rev.AppliedAt, &snapshotJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Revision{}, schema.Snapshot{}, ErrRevisionNotFound
		}
		return Revision{}, schema.Snapshot{}, fmt.Errorf("scan revision: %w", err)
	}
	rev.Comment = comment.String
	snap, err := schema.Decode([]byte(snapshotJSON))
	if err != nil {
		return Revision{}, schema.Snapshot{}, fmt.Errorf("revision %s: %w", rev.ID, err)
	}
	return rev, snap, nil
}

// Checksum computes the sha256 checksum of a statement sequence.
func Checksum(statements []string) string {
	hash := sha256.Sum256([]byte(strings.Join(statements, ";\n")))
	return hex.EncodeToString(hash[:])
}

func (s *Store) createTableSQL() string {
	switch s.provider {
	case "postgres":
		return `
			CREATE TABLE IF NOT EXISTS _driftsql_revisions (
				revision VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				comment TEXT,
				checksum VARCHAR(64) NOT NULL,
				applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				snapshot TEXT NOT NULL
			)
		`
	case "mysql":
		return `
			CREATE TABLE IF NOT EXISTS _driftsql_revisions (
				revision VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				comment TEXT,
				checksum VARCHAR(64) NOT NULL,
				applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				snapshot TEXT NOT NULL
			)
		`
	default:
		return `
			CREATE TABLE IF NOT EXISTS _driftsql_revisions (
				revision TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				comment TEXT,
				checksum TEXT NOT NULL,
				applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				snapshot TEXT NOT NULL
			)
		`
	}
}

func (s *Store) insertSQL() string {
	if s.provider == "postgres" {
		return `
			INSERT INTO _driftsql_revisions (revision, name, comment, checksum, applied_at, snapshot)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
	}
	return `
		INSERT INTO _driftsql_revisions (revision, name, comment, checksum, applied_at, snapshot)
		VALUES (?, ?, ?, ?, ?, ?)
	`
}

func (s *Store) selectLatestSQL() string {
	return `
		SELECT revision, name, comment, checksum, applied_at, snapshot
		FROM _driftsql_revisions
		ORDER BY revision DESC
		LIMIT 1
	`
}

func (s *Store) selectByIDSQL() string {
	if s.provider == "postgres" {
		return `
			SELECT revision, name, comment, checksum, applied_at, snapshot
			FROM _driftsql_revisions
			WHERE revision = $1
		`
	}
	return `
		SELECT revision, name, comment, checksum, applied_at, snapshot
		FROM _driftsql_revisions
		WHERE revision = ?
	`
}

func (s *Store) selectIDsSQL() string {
	return `
		SELECT revision
		FROM _driftsql_revisions
		ORDER BY revision ASC
	`
}
