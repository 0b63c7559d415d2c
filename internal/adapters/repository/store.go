// Package repository defines the snapshot store contract around a matching
// run and its SQLite implementation.
//
// The engine itself performs no I/O: callers snapshot inputs, run the
// engine, and apply outputs atomically. Interleaving a second run against
// partially-applied results would double-assign capacity, so Apply writes
// everything in one transaction.
package repository

import (
	"context"

	"github.com/davral/homebid/internal/domain/model"
)

// Store provides read-all / write-all access around a matching run.
type Store interface {
	// Snapshot returns the unassigned applicants with decoded profiles and
	// the units with remaining capacity. Applicants whose stored profile
	// fails to decode are skipped, not fatal.
	Snapshot(ctx context.Context) ([]model.Applicant, []model.Unit, error)

	// Apply persists assignments atomically: assignment records, each
	// member's assigned/payment fields, and each unit's occupancy.
	Apply(ctx context.Context, assignments []model.Assignment) error

	Close() error
}
