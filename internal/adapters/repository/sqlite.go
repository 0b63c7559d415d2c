package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/davral/homebid/internal/domain/model"
	"github.com/davral/homebid/internal/domain/profile"
	"github.com/davral/homebid/pkg/logger"
	"github.com/google/uuid"
)

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets a custom logger for the store.
func WithLogger(log logger.Logger) Option {
	return func(s *SQLiteStore) {
		if log != nil {
			s.log = log
		}
	}
}

// SQLiteStore implements Store on a single SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	log logger.Logger
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS applicants (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  allows_groups INTEGER NOT NULL DEFAULT 0,
  assigned INTEGER NOT NULL DEFAULT 0,
  assigned_unit TEXT NOT NULL DEFAULT '',
  payment REAL NOT NULL DEFAULT 0,
  preferences_json TEXT NOT NULL DEFAULT '{}'
);`,
		`CREATE TABLE IF NOT EXISTS units (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  area_sqm REAL NOT NULL DEFAULT 0,
  window_count INTEGER NOT NULL DEFAULT 0,
  window_size_sqm REAL NOT NULL DEFAULT 0,
  directions_json TEXT NOT NULL DEFAULT '[]',
  bedrooms INTEGER NOT NULL DEFAULT 0,
  bathrooms REAL NOT NULL DEFAULT 0,
  dishwasher INTEGER NOT NULL DEFAULT 0,
  washer INTEGER NOT NULL DEFAULT 0,
  dryer INTEGER NOT NULL DEFAULT 0,
  capacity INTEGER NOT NULL DEFAULT 0,
  occupancy INTEGER NOT NULL DEFAULT 0,
  allows_sharing INTEGER NOT NULL DEFAULT 0
);`,
		`CREATE TABLE IF NOT EXISTS assignments (
  id TEXT PRIMARY KEY,
  round INTEGER NOT NULL,
  unit_id TEXT NOT NULL REFERENCES units(id),
  unit_name TEXT NOT NULL,
  capacity INTEGER NOT NULL,
  occupancy INTEGER NOT NULL,
  winning_bid REAL NOT NULL,
  second_bid REAL NOT NULL,
  payment_total REAL NOT NULL,
  created_at TEXT NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS assignment_members (
  assignment_id TEXT NOT NULL REFERENCES assignments(id),
  applicant_id TEXT NOT NULL REFERENCES applicants(id),
  name TEXT NOT NULL,
  payment REAL NOT NULL,
  adjusted_bid REAL NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_applicants_assigned ON applicants(assigned);`,
		`CREATE INDEX IF NOT EXISTS idx_members_assignment ON assignment_members(assignment_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns unassigned applicants and open units. Rows with an
// undecodable profile are logged and skipped.
func (s *SQLiteStore) Snapshot(ctx context.Context) ([]model.Applicant, []model.Unit, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, allows_groups, preferences_json
FROM applicants WHERE assigned = 0 ORDER BY id`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var applicants []model.Applicant
	for rows.Next() {
		var (
			a         model.Applicant
			allows    int
			prefsJSON string
		)
		if err := rows.Scan(&a.ID, &a.Name, &allows, &prefsJSON); err != nil {
			return nil, nil, err
		}
		a.AllowsGroups = allows != 0

		p, err := profile.Decode([]byte(prefsJSON))
		if err != nil {
			s.log.Warn(ctx, "skipping applicant with undecodable profile",
				logger.String("applicant", a.ID),
				logger.Error(err),
			)
			continue
		}
		a.Profile = p
		applicants = append(applicants, a)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	units, err := s.openUnits(ctx)
	if err != nil {
		return nil, nil, err
	}
	return applicants, units, nil
}

func (s *SQLiteStore) openUnits(ctx context.Context) ([]model.Unit, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, area_sqm, window_count, window_size_sqm, directions_json,
       bedrooms, bathrooms, dishwasher, washer, dryer,
       capacity, occupancy, allows_sharing
FROM units WHERE occupancy < capacity ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []model.Unit
	for rows.Next() {
		var (
			u                                  model.Unit
			dirsJSON                           string
			dishwasher, washer, dryer, sharing int
		)
		if err := rows.Scan(
			&u.ID, &u.Name, &u.AreaSqm, &u.WindowCount, &u.WindowSizeSum, &dirsJSON,
			&u.Bedrooms, &u.Bathrooms, &dishwasher, &washer, &dryer,
			&u.Capacity, &u.Occupancy, &sharing,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(dirsJSON), &u.Directions)
		u.HasDishwasher = dishwasher != 0
		u.HasWasher = washer != 0
		u.HasDryer = dryer != 0
		u.AllowsSharing = sharing != 0
		units = append(units, u)
	}
	return units, rows.Err()
}

// Apply writes assignments, member payment fields, and unit occupancy in
// one transaction. Assignments without an ID get one.
func (s *SQLiteStore) Apply(ctx context.Context, assignments []model.Assignment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)

	for i := range assignments {
		a := &assignments[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO assignments
(id, round, unit_id, unit_name, capacity, occupancy, winning_bid, second_bid, payment_total, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.Round, a.UnitID, a.UnitName, a.Capacity, a.Occupancy,
			a.WinningBid, a.SecondBid, a.PaymentTotal, now,
		); err != nil {
			return err
		}

		for _, m := range a.Members {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO assignment_members (assignment_id, applicant_id, name, payment, adjusted_bid)
VALUES (?, ?, ?, ?, ?)`,
				a.ID, m.ApplicantID, m.Name, m.Payment, m.AdjustedBid,
			); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
UPDATE applicants SET assigned = 1, assigned_unit = ?, payment = ? WHERE id = ?`,
				a.UnitID, m.Payment, m.ApplicantID,
			); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx, `UPDATE units SET occupancy = ? WHERE id = ?`, a.Occupancy, a.UnitID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: unit %s", ErrNotFound, a.UnitID)
		}
	}

	return tx.Commit()
}

// UpsertApplicants inserts or replaces applicant rows; used by seeding.
func (s *SQLiteStore) UpsertApplicants(ctx context.Context, applicants []model.Applicant) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO applicants (id, name, allows_groups, assigned, assigned_unit, payment, preferences_json)
VALUES (?, ?, ?, 0, '', 0, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range applicants {
		prefs, err := json.Marshal(a.Profile)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, a.ID, a.Name, boolInt(a.AllowsGroups), string(prefs)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpsertUnits inserts or replaces unit rows; used by seeding.
func (s *SQLiteStore) UpsertUnits(ctx context.Context, units []model.Unit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO units
(id, name, area_sqm, window_count, window_size_sqm, directions_json,
 bedrooms, bathrooms, dishwasher, washer, dryer, capacity, occupancy, allows_sharing)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, u := range units {
		dirs, err := json.Marshal(u.Directions)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			u.ID, u.Name, u.AreaSqm, u.WindowCount, u.WindowSizeSum, string(dirs),
			u.Bedrooms, u.Bathrooms, boolInt(u.HasDishwasher), boolInt(u.HasWasher), boolInt(u.HasDryer),
			u.Capacity, u.Occupancy, boolInt(u.AllowsSharing),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListAssignments returns stored assignments with their members, newest
// round first; used by the report command.
func (s *SQLiteStore) ListAssignments(ctx context.Context) ([]model.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, round, unit_id, unit_name, capacity, occupancy, winning_bid, second_bid, payment_total
FROM assignments ORDER BY round`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(&a.ID, &a.Round, &a.UnitID, &a.UnitName, &a.Capacity, &a.Occupancy,
			&a.WinningBid, &a.SecondBid, &a.PaymentTotal); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		members, err := s.assignmentMembers(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Members = members
	}
	return out, nil
}

func (s *SQLiteStore) assignmentMembers(ctx context.Context, assignmentID string) ([]model.MemberPayment, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT applicant_id, name, payment, adjusted_bid
FROM assignment_members WHERE assignment_id = ? ORDER BY applicant_id`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.MemberPayment
	for rows.Next() {
		var m model.MemberPayment
		if err := rows.Scan(&m.ApplicantID, &m.Name, &m.Payment, &m.AdjustedBid); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
