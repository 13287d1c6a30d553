package property

import "context"

// PortfolioStore keeps a snapshot of the records owned by one console session
type PortfolioStore interface {
	// Save replaces the snapshot of sessionID
	Save(ctx context.Context, sessionID string, records []*Record) error
	// Load returns the snapshot of sessionID, or an empty slice when none exists
	Load(ctx context.Context, sessionID string) ([]*Record, error)
	// Delete drops the snapshot. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, sessionID string) error
}
