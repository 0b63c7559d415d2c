// Package app provides the matching service: it snapshots inputs from a
// store, runs the auction engine, and applies the outputs atomically.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davral/homebid/internal/adapters/repository"
	"github.com/davral/homebid/internal/domain/auction"
	"github.com/davral/homebid/internal/domain/compat"
	"github.com/davral/homebid/internal/domain/grouping"
	"github.com/davral/homebid/internal/domain/model"
	"github.com/davral/homebid/internal/domain/valuation"
	"github.com/davral/homebid/pkg/logger"
	"github.com/davral/homebid/pkg/metrics"
)

// Summary is the operator-facing outcome of one matching run.
type Summary struct {
	Assignments []model.Assignment
	Rounds      int
	CapReached  bool

	// ExcludedApplicants lists applicants dropped for invalid profiles.
	ExcludedApplicants []string

	Duration time.Duration
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the snapshot store. Required before RunMatching.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCompatibilityThreshold sets the minimum pairwise score for groups.
func WithCompatibilityThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold >= 0 {
			s.threshold = threshold
		}
	}
}

// WithMaxGroupSize caps enumerated group size.
func WithMaxGroupSize(size int) Option {
	return func(s *Service) {
		if size >= 1 {
			s.maxGroupSize = size
		}
	}
}

// WithIterationCap bounds auction rounds.
func WithIterationCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.iterationCap = n
		}
	}
}

// WithDirectionRule selects the window-direction matching rule.
func WithDirectionRule(rule valuation.DirectionRule) Option {
	return func(s *Service) {
		if rule != "" {
			s.directionRule = rule
		}
	}
}

// Service wires the engine to a snapshot store. It is not designed for
// concurrent re-entrancy against one store: a second run must wait until
// the previous run's outputs are applied.
type Service struct {
	store repository.Store
	log   logger.Logger

	threshold     float64
	maxGroupSize  int
	iterationCap  int
	directionRule valuation.DirectionRule

	engine *auction.Engine
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		log:           logger.Discard(),
		threshold:     compat.DefaultThreshold,
		maxGroupSize:  5,
		iterationCap:  auction.DefaultIterationCap,
		directionRule: valuation.DirectionAnyOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = auction.New(
		auction.WithGenerator(grouping.NewGenerator(
			grouping.WithThreshold(s.threshold),
			grouping.WithMaxGroupSize(s.maxGroupSize),
		)),
		auction.WithAdjuster(valuation.NewAdjuster(
			valuation.WithDirectionRule(s.directionRule),
		)),
		auction.WithIterationCap(s.iterationCap),
		auction.WithLogger(s.log),
	)

	return s
}

// RunMatching performs one full snapshot -> compute -> apply cycle.
func (s *Service) RunMatching(ctx context.Context) (Summary, error) {
	if s.store == nil {
		return Summary{}, ErrNoStore
	}

	start := time.Now()

	applicants, units, err := s.store.Snapshot(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("snapshot: %w", err)
	}

	valid, excluded := s.filterApplicants(ctx, applicants)

	metrics.RecordMatchRun()
	metrics.UpdatePoolSize(len(valid))
	metrics.UpdateOpenUnits(len(units))

	s.log.Info(ctx, "starting matching run",
		logger.Int("applicants", len(valid)),
		logger.Int("units", len(units)),
		logger.Int("excluded", len(excluded)),
	)

	result, err := s.engine.Run(ctx, valid, units)
	if err != nil {
		return Summary{}, fmt.Errorf("auction: %w", err)
	}

	metrics.RecordRounds(result.Rounds)
	metrics.RecordGroupsGenerated(result.GroupsGenerated)
	metrics.RecordBidsEvaluated(result.BidsEvaluated)
	for _, a := range result.Assignments {
		metrics.RecordAssignment()
		metrics.RecordPayment(a.PaymentTotal)
	}
	if result.CapReached {
		metrics.RecordCapHit()
		s.log.Warn(ctx, "matching run hit the iteration cap; check configuration and input data",
			logger.Int("rounds", result.Rounds),
		)
	}

	for i := range result.Assignments {
		if result.Assignments[i].ID == "" {
			result.Assignments[i].ID = uuid.NewString()
		}
	}

	if err := s.store.Apply(ctx, result.Assignments); err != nil {
		return Summary{}, fmt.Errorf("apply: %w", err)
	}

	elapsed := time.Since(start)
	metrics.RecordRunDuration(float64(elapsed.Milliseconds()))

	s.log.Info(ctx, "matching run complete",
		logger.Int("rounds", result.Rounds),
		logger.Int("assignments", len(result.Assignments)),
		logger.Bool("capReached", result.CapReached),
	)

	return Summary{
		Assignments:        result.Assignments,
		Rounds:             result.Rounds,
		CapReached:         result.CapReached,
		ExcludedApplicants: excluded,
		Duration:           elapsed,
	}, nil
}

// filterApplicants drops applicants whose profile fails validation. A bad
// profile excludes only that applicant, never the run.
func (s *Service) filterApplicants(ctx context.Context, applicants []model.Applicant) ([]model.Applicant, []string) {
	valid := make([]model.Applicant, 0, len(applicants))
	var excluded []string
	for _, a := range applicants {
		if err := a.Profile.Validate(); err != nil {
			metrics.RecordInvalidProfile()
			s.log.Warn(ctx, "excluding applicant with invalid profile",
				logger.String("applicant", a.ID),
				logger.Error(err),
			)
			excluded = append(excluded, a.ID)
			continue
		}
		valid = append(valid, a)
	}
	return valid, excluded
}
