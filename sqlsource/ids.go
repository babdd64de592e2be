package sqlsource

import "github.com/google/uuid"

// RecordID identifies one stored configuration record.
// String alias enables type safety while keeping plain text storage.
type RecordID string

// NewRecordID generates a UUIDv7 record identifier. Time-ordering keeps
// sequential inserts clustered in B-tree indexes.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRecordID() RecordID {
	return RecordID(uuid.Must(uuid.NewV7()).String())
}
