// Package dataset implements the snapshot store over plain JSON files,
// for batch CLI runs: applicant and unit tables in, an assignment table
// out. The engine never sees the files.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/davral/homebid/internal/domain/model"
	"github.com/davral/homebid/internal/domain/profile"
	"github.com/davral/homebid/pkg/logger"
	"github.com/google/uuid"
)

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithLogger sets a custom logger for the store.
func WithLogger(log logger.Logger) Option {
	return func(s *FileStore) {
		if log != nil {
			s.log = log
		}
	}
}

// FileStore reads applicants and units from JSON files and writes the
// resulting assignments to a third.
type FileStore struct {
	applicantsPath string
	unitsPath      string
	outPath        string
	log            logger.Logger
}

// New creates a FileStore over the three paths.
func New(applicantsPath, unitsPath, outPath string, opts ...Option) *FileStore {
	s := &FileStore{
		applicantsPath: applicantsPath,
		unitsPath:      unitsPath,
		outPath:        outPath,
		log:            logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// applicantRow keeps the preference payload raw so one bad profile skips
// that applicant instead of failing the whole file.
type applicantRow struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	AllowsGroups bool            `json:"allowsGroups"`
	Preferences  json.RawMessage `json:"preferences"`
}

// Snapshot loads both input files.
func (s *FileStore) Snapshot(ctx context.Context) ([]model.Applicant, []model.Unit, error) {
	raw, err := os.ReadFile(s.applicantsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read applicants: %w", err)
	}
	var rows []applicantRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, nil, fmt.Errorf("parse applicants: %w", err)
	}

	applicants := make([]model.Applicant, 0, len(rows))
	for _, r := range rows {
		p, err := profile.Decode(r.Preferences)
		if err != nil {
			s.log.Warn(ctx, "skipping applicant with undecodable profile",
				logger.String("applicant", r.ID),
				logger.Error(err),
			)
			continue
		}
		applicants = append(applicants, model.Applicant{
			ID:           r.ID,
			Name:         r.Name,
			AllowsGroups: r.AllowsGroups,
			Profile:      p,
		})
	}

	raw, err = os.ReadFile(s.unitsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read units: %w", err)
	}
	var units []model.Unit
	if err := json.Unmarshal(raw, &units); err != nil {
		return nil, nil, fmt.Errorf("parse units: %w", err)
	}

	open := units[:0]
	for _, u := range units {
		if u.Remaining() > 0 {
			open = append(open, u)
		}
	}
	return applicants, open, nil
}

// Apply writes the assignment table as indented JSON.
func (s *FileStore) Apply(_ context.Context, assignments []model.Assignment) error {
	for i := range assignments {
		if assignments[i].ID == "" {
			assignments[i].ID = uuid.NewString()
		}
	}
	out, err := json.MarshalIndent(assignments, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.outPath, append(out, '\n'), 0o644)
}

// Close is a no-op for file-backed stores.
func (s *FileStore) Close() error { return nil }
