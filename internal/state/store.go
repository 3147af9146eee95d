// Package state caches raw Figma variables payloads in SQLite so the last
// good response of every file survives restarts and failed fetches.
package state

import "time"

// Payload is one stored response of the local variables endpoint.
type Payload struct {
	SnapshotID  string
	FileID      string
	Source      string
	ContentHash string
	Body        []byte
	FetchedAt   time.Time
}

// Store persists raw payloads per file id.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	// SavePayload stores body as the latest payload of fileID. Saving the
	// same content again only refreshes its timestamp.
	SavePayload(fileID, source string, body []byte) (*Payload, error)
	// GetPayload returns the latest payload of fileID, or nil when none is stored.
	GetPayload(fileID string) (*Payload, error)
	// ListPayloads returns the latest payload of every file, by file id.
	ListPayloads() ([]*Payload, error)
	// DeleteOldPayloads keeps only the newest keep payloads of each file.
	DeleteOldPayloads(keep int) error
}
