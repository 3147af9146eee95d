package state

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite state store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{now: time.Now}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := ":memory:"
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema brings the schema up to date.
func (s *SQLiteStore) InitSchema() error {
	if err := s.Migrate(); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

func contentHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// SavePayload stores body as the latest payload of fileID.
func (s *SQLiteStore) SavePayload(fileID, source string, body []byte) (*Payload, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if fileID == "" {
		return nil, fmt.Errorf("file id is required")
	}

	p := &Payload{
		SnapshotID:  generateID(),
		FileID:      fileID,
		Source:      source,
		ContentHash: contentHash(body),
		Body:        body,
		FetchedAt:   s.now().UTC(),
	}

	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var latestID, latestHash string
	err = tx.QueryRowContext(ctx, `
		SELECT snapshot_id, content_hash FROM payloads
		WHERE file_id = ?
		ORDER BY fetched_at DESC, rowid DESC
		LIMIT 1
	`, fileID).Scan(&latestID, &latestHash)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get latest payload: %w", err)
	}

	if latestHash == p.ContentHash {
		p.SnapshotID = latestID
		_, err = tx.ExecContext(ctx,
			`UPDATE payloads SET fetched_at = ?, source = ? WHERE snapshot_id = ?`,
			p.FetchedAt.UnixNano(), p.Source, p.SnapshotID,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO payloads (snapshot_id, file_id, source, content_hash, body, fetched_at) VALUES (?, ?, ?, ?, ?, ?)`,
			p.SnapshotID, p.FileID, p.Source, p.ContentHash, p.Body, p.FetchedAt.UnixNano(),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save payload for %s: %w", fileID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return p, nil
}

// GetPayload returns the latest payload of fileID, or nil when none is stored.
func (s *SQLiteStore) GetPayload(fileID string) (*Payload, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(`
		SELECT snapshot_id, file_id, source, content_hash, body, fetched_at FROM payloads
		WHERE file_id = ?
		ORDER BY fetched_at DESC, rowid DESC
		LIMIT 1
	`, fileID)

	p, err := scanPayload(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payload for %s: %w", fileID, err)
	}
	return p, nil
}

// ListPayloads returns the latest payload of every file, by file id.
func (s *SQLiteStore) ListPayloads() ([]*Payload, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(`
		SELECT p.snapshot_id, p.file_id, p.source, p.content_hash, p.body, p.fetched_at
		FROM payloads p
		WHERE p.rowid = (
			SELECT q.rowid FROM payloads q
			WHERE q.file_id = p.file_id
			ORDER BY q.fetched_at DESC, q.rowid DESC
			LIMIT 1
		)
		ORDER BY p.file_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payloads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Payload
	for rows.Next() {
		p, err := scanPayload(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payload: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// DeleteOldPayloads keeps only the newest keep payloads of each file.
func (s *SQLiteStore) DeleteOldPayloads(keep int) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.Exec(`
		DELETE FROM payloads
		WHERE rowid NOT IN (
			SELECT q.rowid FROM payloads q
			WHERE q.file_id = payloads.file_id
			ORDER BY q.fetched_at DESC, q.rowid DESC
			LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("delete old payloads: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPayload(row scanner) (*Payload, error) {
	p := &Payload{}
	var fetchedAt int64
	if err := row.Scan(&p.SnapshotID, &p.FileID, &p.Source, &p.ContentHash, &p.Body, &fetchedAt); err != nil {
		return nil, err
	}
	p.FetchedAt = time.Unix(0, fetchedAt).UTC()
	return p, nil
}
