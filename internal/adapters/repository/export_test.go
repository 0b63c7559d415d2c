package repository

import "context"

// InsertRawApplicant bypasses profile encoding so tests can plant rows the
// snapshot path must tolerate.
func (s *SQLiteStore) InsertRawApplicant(ctx context.Context, id, name, prefsJSON string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT OR REPLACE INTO applicants (id, name, allows_groups, assigned, assigned_unit, payment, preferences_json)
VALUES (?, ?, 0, 0, '', 0, ?)`, id, name, prefsJSON)
	return err
}
